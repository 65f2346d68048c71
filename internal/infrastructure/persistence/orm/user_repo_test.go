package orm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/booklibrary/internal/domain/book"
	"github.com/xiebiao/booklibrary/internal/domain/user"
	apperrors "github.com/xiebiao/booklibrary/pkg/errors"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	u := user.NewUser("test", "$2a$04$hash")
	require.NoError(t, repo.Create(ctx, u))
	assert.NotZero(t, u.ID)

	t.Run("按用户名查询", func(t *testing.T) {
		got, err := repo.FindByUsername(ctx, "test")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, "$2a$04$hash", got.PasswordHash)
	})

	t.Run("用户名重复", func(t *testing.T) {
		err := repo.Create(ctx, user.NewUser("test", "other"))
		assert.ErrorIs(t, err, apperrors.ErrUsernameDuplicate)
	})

	t.Run("用户不存在", func(t *testing.T) {
		_, err := repo.FindByUsername(ctx, "ghost")
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}

func TestIsDuplicateError(t *testing.T) {
	assert.False(t, isDuplicateError(nil))
	assert.True(t, isDuplicateError(errors.New("Error 1062: Duplicate entry 'test' for key 'username'")))
	assert.True(t, isDuplicateError(errors.New("UNIQUE constraint failed: users.username")))
	assert.True(t, isDuplicateError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_username"`)))
	assert.False(t, isDuplicateError(errors.New("connection refused")))
}

func TestWrapDBError(t *testing.T) {
	cause := errors.New("connection reset")
	err := wrapDBError(cause, "查询图书失败")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDatabaseError))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "查询图书失败", apperrors.GetAppError(err).Message)

	err = wrapDBError(context.DeadlineExceeded, "查询图书失败")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnavailable))

	assert.Same(t, book.ErrBookNotFound, wrapDBError(book.ErrBookNotFound, "x"), "业务错误原样返回")
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%Go%", containsPattern("Go"))
	assert.Equal(t, "%100!%%", containsPattern("100%"))
	assert.Equal(t, "%a!_b%", containsPattern("a_b"))
	assert.Equal(t, "%wow!!%", containsPattern("wow!"))
}
