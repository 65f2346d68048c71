package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/booklibrary/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, gin.H{"id": 1})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, "success", resp.Message)
}

func TestCreated(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Created(c, "/api/v1/books/7", gin.H{"id": 7})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/v1/books/7", w.Header().Get("Location"))
}

func TestError(t *testing.T) {
	t.Run("业务错误映射为对应状态码", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		Error(c, apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在"))

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decode(t, w)
		assert.Equal(t, apperrors.ErrCodeBookNotFound, resp.Code)
		assert.Equal(t, "图书不存在", resp.Message)
		assert.Nil(t, resp.Data)
	})

	t.Run("未知错误不泄露内部信息", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		Error(c, errors.New("dial tcp 10.0.0.1:3306: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decode(t, w)
		assert.Equal(t, apperrors.ErrCodeInternal, resp.Code)
		assert.NotContains(t, resp.Message, "10.0.0.1")
	})
}

func TestNoContent(t *testing.T) {
	r := gin.New()
	r.DELETE("/x", func(c *gin.Context) { NoContent(c) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/x", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 0, TotalPages(5, 0))

	page := NewPageData([]int{1, 2}, 21, 3, 10)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, int64(21), page.TotalItems)

	empty := NewPageData[string](nil, 0, 1, 10)
	assert.NotNil(t, empty.Items, "空页序列化为[]")
	assert.Equal(t, 0, empty.TotalPages)
}
