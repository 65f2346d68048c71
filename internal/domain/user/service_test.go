package user

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/booklibrary/pkg/errors"
)

// fakeRepository 内存版仓储
type fakeRepository struct {
	mu    sync.Mutex
	users map[string]*User
	next  uint
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{users: make(map[string]*User)}
}

func (r *fakeRepository) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Username]; ok {
		return apperrors.ErrUsernameDuplicate
	}
	r.next++
	u.ID = r.next
	r.users[u.Username] = u
	return nil
}

func (r *fakeRepository) FindByUsername(_ context.Context, username string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[username]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepository(), bcrypt.MinCost)

	t.Run("注册成功且密码已加密", func(t *testing.T) {
		u, err := svc.Register(ctx, "alice", "s3cretpass")
		require.NoError(t, err)
		assert.NotZero(t, u.ID)
		assert.NotEqual(t, "s3cretpass", u.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cretpass")))
	})

	t.Run("用户名重复", func(t *testing.T) {
		_, err := svc.Register(ctx, "alice", "an0therpass")
		assert.ErrorIs(t, err, apperrors.ErrUsernameDuplicate)
	})

	t.Run("用户名非法", func(t *testing.T) {
		for _, name := range []string{"ab", "has space", "名字"} {
			_, err := svc.Register(ctx, name, "s3cretpass")
			assert.ErrorIs(t, err, ErrInvalidUsername, name)
		}
	})

	t.Run("密码强度不足", func(t *testing.T) {
		for _, pw := range []string{"short1", "allletters", "12345678"} {
			_, err := svc.Register(ctx, "bob", pw)
			assert.ErrorIs(t, err, ErrWeakPassword, pw)
		}
	})
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepository(), bcrypt.MinCost)
	_, err := svc.Register(ctx, "alice", "s3cretpass")
	require.NoError(t, err)

	t.Run("正确密码", func(t *testing.T) {
		u, err := svc.Authenticate(ctx, "alice", "s3cretpass")
		require.NoError(t, err)
		assert.Equal(t, "alice", u.Username)
	})

	t.Run("密码错误", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "alice", "wrong")
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("用户不存在与密码错误不可区分", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "nobody", "s3cretpass")
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})
}

func TestService_EnsureUser(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := NewService(repo, bcrypt.MinCost)

	u, created, err := svc.EnsureUser(ctx, "test", "password")
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := svc.EnsureUser(ctx, "test", "other-password")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, u.ID, again.ID)

	// 已存在时不覆盖密码
	_, err = svc.Authenticate(ctx, "test", "password")
	assert.NoError(t, err)
}
