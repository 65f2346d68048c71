// Package circuitbreaker 连续失败熔断器
//
// 用于保护可降级的外部调用(如事件发布):下游连续失败达到阈值后快速失败,
// 冷却期过后放行一个试探请求,成功则恢复,失败则重新计时。
//
//	closed --(连续失败>=FailureThreshold)--> open
//	open   --(OpenTimeout到期)-------------> half-open
//	half-open --(试探成功)--> closed
//	half-open --(试探失败)--> open
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State 熔断器状态,数值用于指标上报
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var (
	// ErrOpen 熔断中,未调用下游
	ErrOpen = errors.New("circuit breaker is open")
	// ErrProbeInFlight 半开状态已有试探请求在执行
	ErrProbeInFlight = errors.New("circuit breaker probe in flight")
)

// Options 零值字段使用默认值
type Options struct {
	FailureThreshold uint32        // 默认5
	OpenTimeout      time.Duration // 默认30s
	// OnStateChange 在释放锁之后调用
	OnStateChange func(name string, from, to State)
}

// Breaker 并发安全
type Breaker struct {
	name      string
	threshold uint32
	cooldown  time.Duration
	onChange  func(name string, from, to State)
	now       func() time.Time

	mu       sync.Mutex
	state    State
	failures uint32
	openedAt time.Time
	probing  bool
}

// New 创建熔断器
func New(name string, opts Options) *Breaker {
	b := &Breaker{
		name:      name,
		threshold: opts.FailureThreshold,
		cooldown:  opts.OpenTimeout,
		onChange:  opts.OnStateChange,
		now:       time.Now,
	}
	if b.threshold == 0 {
		b.threshold = 5
	}
	if b.cooldown <= 0 {
		b.cooldown = 30 * time.Second
	}
	return b
}

// Name 熔断器名称
func (b *Breaker) Name() string { return b.name }

// Do 在熔断保护下执行fn
// 调用方自己取消的ctx不计入失败
func (b *Breaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.acquire(); err != nil {
		return err
	}

	err := fn(ctx)
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		b.release()
		return err
	}
	b.report(err == nil)
	return err
}

// State 当前状态(冷却期到期的open视为half-open)
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && b.cooledDown() {
		return StateHalfOpen
	}
	return b.state
}

// Failures 当前连续失败次数
func (b *Breaker) Failures() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

func (b *Breaker) acquire() error {
	b.mu.Lock()
	var from State
	changed := false

	switch b.state {
	case StateOpen:
		if !b.cooledDown() {
			b.mu.Unlock()
			return ErrOpen
		}
		from, changed = b.transition(StateHalfOpen)
		b.probing = true
	case StateHalfOpen:
		if b.probing {
			b.mu.Unlock()
			return ErrProbeInFlight
		}
		b.probing = true
	}
	b.mu.Unlock()

	if changed {
		b.notify(from, StateHalfOpen)
	}
	return nil
}

func (b *Breaker) release() {
	b.mu.Lock()
	b.probing = false
	b.mu.Unlock()
}

func (b *Breaker) report(success bool) {
	b.mu.Lock()
	b.probing = false

	var from, to State
	changed := false
	switch {
	case success:
		b.failures = 0
		if b.state == StateHalfOpen {
			to = StateClosed
			from, changed = b.transition(to)
		}
	case b.state == StateHalfOpen:
		to = StateOpen
		from, changed = b.transition(to)
	default:
		b.failures++
		if b.state == StateClosed && b.failures >= b.threshold {
			to = StateOpen
			from, changed = b.transition(to)
		}
	}
	b.mu.Unlock()

	if changed {
		b.notify(from, to)
	}
}

// transition 必须持有锁
func (b *Breaker) transition(to State) (State, bool) {
	from := b.state
	if from == to {
		return from, false
	}
	b.state = to
	if to == StateOpen {
		b.openedAt = b.now()
	}
	return from, true
}

func (b *Breaker) cooledDown() bool {
	return !b.now().Before(b.openedAt.Add(b.cooldown))
}

func (b *Breaker) notify(from, to State) {
	if b.onChange != nil {
		b.onChange(b.name, from, to)
	}
}
