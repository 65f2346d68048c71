// Package messaging 通过RabbitMQ发布图书领域事件
//
// 事件以JSON发布到Topic Exchange,路由键即事件类型(book.created / book.updated / book.deleted)
// 发布经过熔断器:RabbitMQ故障时快速失败,不拖慢HTTP请求
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/xiebiao/booklibrary/internal/domain/book"
	"github.com/xiebiao/booklibrary/internal/infrastructure/config"
	"github.com/xiebiao/booklibrary/pkg/circuitbreaker"
	"github.com/xiebiao/booklibrary/pkg/metrics"
)

// channel amqp.Channel中用到的方法,便于测试替换
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// EventMessage 事件消息体
type EventMessage struct {
	Type       string       `json:"type"`
	BookID     uint         `json:"bookId"`
	Book       *BookPayload `json:"book,omitempty"`
	OccurredAt time.Time    `json:"occurredAt"`
}

// BookPayload 事件中携带的图书快照
type BookPayload struct {
	ID              uint    `json:"id"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Author          string  `json:"author"`
	Genre           string  `json:"genre"`
	PublicationDate string  `json:"publicationDate"`
	IsBorrowed      bool    `json:"isBorrowed"`
	Price           float64 `json:"price"`
	Rating          float64 `json:"rating"`
}

// NewEventMessage 将领域事件转换为消息体
func NewEventMessage(e book.Event) EventMessage {
	msg := EventMessage{
		Type:       string(e.Type),
		BookID:     e.BookID,
		OccurredAt: e.OccurredAt.UTC(),
	}
	if e.Book != nil {
		msg.Book = &BookPayload{
			ID:              e.Book.ID,
			Title:           e.Book.Title,
			Description:     e.Book.Description,
			Author:          e.Book.Author,
			Genre:           e.Book.Genre,
			PublicationDate: e.Book.PublicationDate.Format("2006-01-02"),
			IsBorrowed:      e.Book.IsBorrowed,
			Price:           book.PriceToDecimal(e.Book.Price),
			Rating:          e.Book.Rating,
		}
	}
	return msg
}

// Publisher RabbitMQ事件发布者
type Publisher struct {
	conn     *amqp.Connection
	channel  channel
	exchange string
	timeout  time.Duration
	breaker  *circuitbreaker.Breaker
	log      *logrus.Logger
}

var _ book.EventPublisher = (*Publisher)(nil)

// NewPublisher 连接RabbitMQ并声明Exchange
func NewPublisher(cfg *config.Config, log *logrus.Logger) (*Publisher, func(), error) {
	conn, err := amqp.Dial(cfg.MQ.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("创建Channel失败: %w", err)
	}

	// Durable=true, AutoDelete=false, Internal=false, NoWait=false
	if err := ch.ExchangeDeclare(cfg.MQ.Exchange, cfg.MQ.ExchangeType, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("声明Exchange失败: %w", err)
	}

	p := newPublisher(ch, cfg.MQ, log)
	p.conn = conn

	log.WithFields(logrus.Fields{
		"exchange": cfg.MQ.Exchange,
		"type":     cfg.MQ.ExchangeType,
	}).Info("事件发布者已创建")

	return p, p.close, nil
}

func newPublisher(ch channel, cfg config.MQConfig, log *logrus.Logger) *Publisher {
	timeout := cfg.PublishTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	breaker := circuitbreaker.New("rabbitmq", circuitbreaker.Options{
		FailureThreshold: cfg.BreakerFailures,
		OpenTimeout:      cfg.BreakerOpenDelay,
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": name}, float64(to))
			log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("熔断器状态变化")
		},
	})

	return &Publisher{
		channel:  ch,
		exchange: cfg.Exchange,
		timeout:  timeout,
		breaker:  breaker,
		log:      log,
	}
}

// Publish 发布领域事件
func (p *Publisher) Publish(ctx context.Context, event book.Event) error {
	routingKey := string(event.Type)

	body, err := json.Marshal(NewEventMessage(event))
	if err != nil {
		return fmt.Errorf("消息序列化失败: %w", err)
	}

	err = p.breaker.Do(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()

		return p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
		})
	})

	switch {
	case err == nil:
		metrics.RecordEventPublished(routingKey, "success")
		p.log.WithFields(logrus.Fields{"routing_key": routingKey, "book_id": event.BookID}).Debug("事件已发布")
		return nil
	case errors.Is(err, circuitbreaker.ErrOpen), errors.Is(err, circuitbreaker.ErrProbeInFlight):
		metrics.RecordEventPublished(routingKey, "rejected")
		return fmt.Errorf("发布事件被熔断: %w", err)
	default:
		metrics.RecordEventPublished(routingKey, "failure")
		return fmt.Errorf("发布消息失败: %w", err)
	}
}

func (p *Publisher) close() {
	if err := p.channel.Close(); err != nil {
		p.log.WithError(err).Warn("关闭Channel失败")
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			p.log.WithError(err).Warn("关闭RabbitMQ连接失败")
		}
	}
}

// NoopPublisher 未启用消息队列时使用,丢弃所有事件
type NoopPublisher struct{}

var _ book.EventPublisher = NoopPublisher{}

// Publish 不做任何事
func (NoopPublisher) Publish(context.Context, book.Event) error { return nil }
