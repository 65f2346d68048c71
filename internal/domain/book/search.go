package book

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"time"
)

// 分页默认值与上限
const (
	DefaultPageNumber = 1
	DefaultPageSize   = 10
	MaxPageSize       = 100
)

// SortField 可排序字段(对外名称)
type SortField string

const (
	SortByID              SortField = "id"
	SortByTitle           SortField = "title"
	SortByDescription     SortField = "description"
	SortByAuthor          SortField = "author"
	SortByGenre           SortField = "genre"
	SortByPublicationDate SortField = "publicationDate"
	SortByIsBorrowed      SortField = "isBorrowed"
	SortByPrice           SortField = "price"
	SortByRating          SortField = "rating"
)

// sortFields 小写名称 → 字段,用于大小写不敏感匹配
var sortFields = map[string]SortField{
	"id":              SortByID,
	"title":           SortByTitle,
	"description":     SortByDescription,
	"author":          SortByAuthor,
	"genre":           SortByGenre,
	"publicationdate": SortByPublicationDate,
	"isborrowed":      SortByIsBorrowed,
	"price":           SortByPrice,
	"rating":          SortByRating,
}

// SortFields 返回全部可排序字段(用于文档和错误提示)
func SortFields() []SortField {
	return []SortField{
		SortByID, SortByTitle, SortByDescription, SortByAuthor, SortByGenre,
		SortByPublicationDate, SortByIsBorrowed, SortByPrice, SortByRating,
	}
}

// Sort 排序规则
type Sort struct {
	Field SortField
	Desc  bool
}

// DefaultSort 默认按书名升序
var DefaultSort = Sort{Field: SortByTitle}

func (s Sort) String() string {
	if s.Desc {
		return string(s.Field) + " desc"
	}
	return string(s.Field) + " asc"
}

// ParseSort 解析排序表达式
// 支持的格式: "title"、"title asc"、"price desc"、"-price"; 空字符串返回默认排序
func ParseSort(expr string) (Sort, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return DefaultSort, nil
	}

	var desc bool
	if strings.HasPrefix(expr, "-") {
		desc = true
		expr = strings.TrimSpace(expr[1:])
	}

	parts := strings.Fields(expr)
	switch len(parts) {
	case 1:
	case 2:
		if desc {
			return Sort{}, invalidSort(expr)
		}
		switch strings.ToLower(parts[1]) {
		case "asc":
		case "desc":
			desc = true
		default:
			return Sort{}, invalidSort(expr)
		}
	default:
		return Sort{}, invalidSort(expr)
	}

	field, ok := sortFields[strings.ToLower(parts[0])]
	if !ok {
		return Sort{}, invalidSort(expr)
	}
	return Sort{Field: field, Desc: desc}, nil
}

func invalidSort(expr string) error {
	names := make([]string, 0, len(SortFields()))
	for _, f := range SortFields() {
		names = append(names, string(f))
	}
	return ErrInvalidSort.WithMessage(fmt.Sprintf("不支持的排序字段: %s, 可选: %s", expr, strings.Join(names, ", ")))
}

// SearchCriteria 搜索条件
// 指针字段为nil表示未指定,不参与过滤
type SearchCriteria struct {
	Title       string
	Description string
	Author      string
	Genre       string
	// 日期区间只有起止同时给出时才生效(闭区间)
	StartDate  *time.Time
	EndDate    *time.Time
	IsBorrowed *bool
	MinPrice   *int64 // 分
	MaxPrice   *int64 // 分
	MinRating  *float64
	MaxRating  *float64
	Sort       Sort
	PageNumber int
	PageSize   int
}

// Normalize 填充默认值并校验分页参数
func (c *SearchCriteria) Normalize() error {
	c.Title = strings.TrimSpace(c.Title)
	c.Description = strings.TrimSpace(c.Description)
	c.Author = strings.TrimSpace(c.Author)
	c.Genre = strings.TrimSpace(c.Genre)

	if c.Sort.Field == "" {
		c.Sort = DefaultSort
	}
	if c.PageNumber == 0 {
		c.PageNumber = DefaultPageNumber
	}
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	if c.PageNumber < 1 {
		return ErrInvalidPageNumber
	}
	if c.PageSize < 1 || c.PageSize > MaxPageSize {
		return ErrInvalidPageSize
	}
	return nil
}

// HasDateRange 是否按出版日期过滤
func (c SearchCriteria) HasDateRange() bool {
	return c.StartDate != nil && c.EndDate != nil
}

// Offset 分页偏移量
// 页码过大导致溢出时返回math.MaxInt64,必然越过最后一页
func (c SearchCriteria) Offset() int64 {
	if c.PageNumber < 1 || c.PageSize < 1 {
		return 0
	}
	page, size := int64(c.PageNumber-1), int64(c.PageSize)
	if page > math.MaxInt64/size {
		return math.MaxInt64
	}
	return page * size
}

// CacheKey 生成条件指纹,相同条件得到相同的key
func (c SearchCriteria) CacheKey() string {
	var b strings.Builder
	fmt.Fprintf(&b, "t=%s|d=%s|a=%s|g=%s",
		asciiLower(c.Title), asciiLower(c.Description),
		asciiLower(c.Author), asciiLower(c.Genre))
	if c.HasDateRange() {
		fmt.Fprintf(&b, "|from=%s|to=%s", c.StartDate.Format("2006-01-02"), c.EndDate.Format("2006-01-02"))
	}
	if c.IsBorrowed != nil {
		fmt.Fprintf(&b, "|borrowed=%t", *c.IsBorrowed)
	}
	if c.MinPrice != nil {
		fmt.Fprintf(&b, "|minp=%d", *c.MinPrice)
	}
	if c.MaxPrice != nil {
		fmt.Fprintf(&b, "|maxp=%d", *c.MaxPrice)
	}
	if c.MinRating != nil {
		fmt.Fprintf(&b, "|minr=%g", *c.MinRating)
	}
	if c.MaxRating != nil {
		fmt.Fprintf(&b, "|maxr=%g", *c.MaxRating)
	}
	fmt.Fprintf(&b, "|sort=%s|page=%d|size=%d", c.Sort, c.PageNumber, c.PageSize)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:16])
}

// asciiLower 只转换ASCII字母
// 与所有存储驱动都一致的大小写规则,非ASCII的大小写变体使用不同的key
func asciiLower(s string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}

// SearchResult 分页搜索结果
type SearchResult struct {
	Items      []*Book
	TotalItems int64
	PageNumber int
	PageSize   int
	TotalPages int
}

// NewSearchResult 根据总数计算总页数(向上取整)
func NewSearchResult(items []*Book, total int64, c SearchCriteria) *SearchResult {
	pages := 0
	if c.PageSize > 0 {
		pages = int((total + int64(c.PageSize) - 1) / int64(c.PageSize))
	}
	return &SearchResult{
		Items:      items,
		TotalItems: total,
		PageNumber: c.PageNumber,
		PageSize:   c.PageSize,
		TotalPages: pages,
	}
}
