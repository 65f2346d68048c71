package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	appbook "github.com/xiebiao/booklibrary/internal/application/book"
)

// BookRequest 创建/全量更新图书的请求体
// 价格单位为元,最多两位小数
type BookRequest struct {
	Title           string  `json:"title" binding:"notblank,max=200" example:"Dune"`
	Description     string  `json:"description" example:"A science fiction novel set on the desert planet Arrakis."`
	Author          string  `json:"author" binding:"notblank,max=100" example:"Frank Herbert"`
	Genre           string  `json:"genre" binding:"max=50" example:"Science Fiction"`
	PublicationDate Date    `json:"publicationDate" swaggertype:"string" example:"1965-08-01"`
	IsBorrowed      bool    `json:"isBorrowed" example:"false"`
	Price           float64 `json:"price" binding:"gte=0" example:"19.99"`
	Rating          float64 `json:"rating" binding:"gte=0,lte=5" example:"4.5"`
}

// ToInput 转换为应用层输入
func (r BookRequest) ToInput() appbook.BookInput {
	return appbook.BookInput{
		Title:           r.Title,
		Description:     r.Description,
		Author:          r.Author,
		Genre:           r.Genre,
		PublicationDate: time.Time(r.PublicationDate),
		IsBorrowed:      r.IsBorrowed,
		Price:           r.Price,
		Rating:          r.Rating,
	}
}

// BookResponse 图书响应(用于Swagger文档)
type BookResponse = appbook.BookDTO

// SearchBooksResponse 搜索响应(用于Swagger文档)
type SearchBooksResponse = appbook.SearchBooksResponse

// SearchBooksQuery 搜索查询参数
// 文本条件为空时忽略;日期区间需同时提供startDate和endDate
type SearchBooksQuery struct {
	Title       string     `form:"title" binding:"max=200"`
	Description string     `form:"description"`
	Author      string     `form:"author" binding:"max=100"`
	Genre       string     `form:"genre" binding:"max=50"`
	StartDate   *time.Time `form:"startDate" time_format:"2006-01-02" time_utc:"1"`
	EndDate     *time.Time `form:"endDate" time_format:"2006-01-02" time_utc:"1"`
	IsBorrowed  *bool      `form:"isBorrowed"`
	MinPrice    *float64   `form:"minPrice" binding:"omitempty,gte=0"`
	MaxPrice    *float64   `form:"maxPrice" binding:"omitempty,gte=0"`
	MinRating   *float64   `form:"minRating" binding:"omitempty,gte=0,lte=5"`
	MaxRating   *float64   `form:"maxRating" binding:"omitempty,gte=0,lte=5"`
	SortBy      string     `form:"sortBy" binding:"omitempty,sortby"`
	PageNumber  *int       `form:"pageNumber" binding:"omitempty,min=1"`
	PageSize    *int       `form:"pageSize" binding:"omitempty,min=1"`
}

// ToRequest 转换为应用层请求
func (q SearchBooksQuery) ToRequest() appbook.SearchBooksRequest {
	req := appbook.SearchBooksRequest{
		Title:       q.Title,
		Description: q.Description,
		Author:      q.Author,
		Genre:       q.Genre,
		StartDate:   q.StartDate,
		EndDate:     q.EndDate,
		IsBorrowed:  q.IsBorrowed,
		MinPrice:    q.MinPrice,
		MaxPrice:    q.MaxPrice,
		MinRating:   q.MinRating,
		MaxRating:   q.MaxRating,
		SortBy:      q.SortBy,
	}
	if q.PageNumber != nil {
		req.PageNumber = *q.PageNumber
	}
	if q.PageSize != nil {
		req.PageSize = *q.PageSize
	}
	return req
}

// dateLayouts 出版日期可接受的格式
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Date 出版日期
// 接受 2006-01-02、RFC3339 或不带时区的 2006-01-02T15:04:05,统一转为UTC
type Date time.Time

// UnmarshalJSON 解析日期,null或空串为零值
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("publicationDate必须是字符串: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*d = Date{}
		return nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*d = Date(t.UTC())
			return nil
		}
	}
	return fmt.Errorf("无法解析日期 %q,应为YYYY-MM-DD", s)
}

// MarshalJSON 输出YYYY-MM-DD
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(d).Format(appbook.DateLayout))
}
