package handler

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/booklibrary/internal/application/book"
	"github.com/xiebiao/booklibrary/internal/domain/book"
	"github.com/xiebiao/booklibrary/internal/interface/http/dto"
	apperrors "github.com/xiebiao/booklibrary/pkg/errors"
	"github.com/xiebiao/booklibrary/pkg/response"
)

// ProtectedMessage 受保护接口的响应内容
const ProtectedMessage = "This is a protected endpoint!"

// BookHandler 图书HTTP处理器
type BookHandler struct {
	listBooks   *appbook.ListBooksUseCase
	getBook     *appbook.GetBookUseCase
	searchBooks *appbook.SearchBooksUseCase
	createBook  *appbook.CreateBookUseCase
	updateBook  *appbook.UpdateBookUseCase
	deleteBook  *appbook.DeleteBookUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	listBooks *appbook.ListBooksUseCase,
	getBook *appbook.GetBookUseCase,
	searchBooks *appbook.SearchBooksUseCase,
	createBook *appbook.CreateBookUseCase,
	updateBook *appbook.UpdateBookUseCase,
	deleteBook *appbook.DeleteBookUseCase,
) *BookHandler {
	return &BookHandler{
		listBooks:   listBooks,
		getBook:     getBook,
		searchBooks: searchBooks,
		createBook:  createBook,
		updateBook:  updateBook,
		deleteBook:  deleteBook,
	}
}

// ListBooks 查询全部图书
// @Summary      图书列表
// @Description  按ID升序返回全部图书
// @Tags         图书
// @Produce      json
// @Param        api-version query string false "API版本" default(1.0)
// @Success      200 {object} response.Response{data=[]dto.BookResponse}
// @Failure      500 {object} response.Response "系统错误"
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	list, err := h.listBooks.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// GetBook 查询图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      400 {object} response.Response "ID格式错误"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	result, err := h.getBook.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// SearchBooks 条件搜索图书
// @Summary      搜索图书
// @Description  文本条件大小写不敏感的包含匹配(SQLite存储仅对ASCII字母忽略大小写);startDate与endDate同时提供时按出版日期过滤(含两端)
// @Tags         图书
// @Produce      json
// @Param        title       query string  false "书名包含"
// @Param        description query string  false "描述包含"
// @Param        author      query string  false "作者包含"
// @Param        genre       query string  false "类型包含"
// @Param        startDate   query string  false "出版日期起(YYYY-MM-DD)"
// @Param        endDate     query string  false "出版日期止(YYYY-MM-DD)"
// @Param        isBorrowed  query bool    false "是否已借出"
// @Param        minPrice    query number  false "最低价格"
// @Param        maxPrice    query number  false "最高价格"
// @Param        minRating   query number  false "最低评分"
// @Param        maxRating   query number  false "最高评分"
// @Param        sortBy      query string  false "排序: field | field asc | field desc | -field" default(Title)
// @Param        pageNumber  query int     false "页码" default(1) minimum(1)
// @Param        pageSize    query int     false "每页数量" default(10) minimum(1) maximum(100)
// @Success      200 {object} response.Response{data=dto.SearchBooksResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Router       /api/v1/books/search [get]
func (h *BookHandler) SearchBooks(c *gin.Context) {
	var q dto.SearchBooksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		if dto.HasTag(err, "sortby") {
			response.Error(c, book.ErrInvalidSort.WithMessage(fmt.Sprintf("不支持的排序: %q", c.Query("sortBy"))))
			return
		}
		response.BindError(c, err)
		return
	}

	result, err := h.searchBooks.Execute(c.Request.Context(), q.ToRequest())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateBook 创建图书
// @Summary      创建图书
// @Tags         图书
// @Accept       json
// @Produce      json
// @Param        request body dto.BookRequest true "图书信息"
// @Success      201 {object} response.Response{data=dto.BookResponse}
// @Header       201 {string} Location "新图书地址"
// @Failure      400 {object} response.Response "参数错误"
// @Router       /api/v1/books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req dto.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.createBook.Execute(c.Request.Context(), req.ToInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, fmt.Sprintf("/api/v1/books/%d", result.ID), result)
}

// UpdateBook 全量更新图书
// @Summary      更新图书
// @Description  PUT语义:请求体替换全部可修改字段
// @Tags         图书
// @Accept       json
// @Param        id      path int             true "图书ID"
// @Param        request body dto.BookRequest true "图书信息"
// @Success      204
// @Failure      400 {object} response.Response "参数错误"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	var req dto.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	if err := h.updateBook.Execute(c.Request.Context(), id, req.ToInput()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteBook 删除图书
// @Summary      删除图书
// @Tags         图书
// @Param        id path int true "图书ID"
// @Success      204
// @Failure      400 {object} response.Response "ID格式错误"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	if err := h.deleteBook.Execute(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Protected 需要登录才能访问的示例接口
// @Summary      受保护接口
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=string}
// @Failure      401 {object} response.Response "未登录或Token无效"
// @Router       /api/v1/books/protected [get]
func (h *BookHandler) Protected(c *gin.Context) {
	response.Success(c, ProtectedMessage)
}

// bookID 解析路径中的图书ID,失败时已写入400响应
func bookID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.Error(c, apperrors.ErrInvalidParams.WithMessage("无效的图书ID"))
		return 0, false
	}
	return uint(id), true
}
