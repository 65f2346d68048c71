package book

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// 字段长度上限（与数据库列定义一致）
const (
	MaxTitleLength  = 200
	MaxAuthorLength = 100
	MaxGenreLength  = 50
	MaxRating       = 5.0
)

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. 价格使用int64存储"分"为单位(避免浮点数精度问题),对外以两位小数展示
// 2. 删除为物理删除,不保留历史记录
// 3. 领域实体不依赖GORM tag,映射由infrastructure层完成
type Book struct {
	ID              uint
	Title           string
	Description     string
	Author          string
	Genre           string
	PublicationDate time.Time
	IsBorrowed      bool
	Price           int64 // 价格(单位:分)
	Rating          float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Attributes 图书的可修改属性
// 创建和全量更新共用同一组属性,校验规则只写一处
type Attributes struct {
	Title           string
	Description     string
	Author          string
	Genre           string
	PublicationDate time.Time
	IsBorrowed      bool
	Price           int64 // 分
	Rating          float64
}

// Validate 校验属性
// 业务规则:
// - 书名、作者必填,首尾空白不计
// - 长度不超过列定义
// - 价格>=0,评分在[0,5]
func (a *Attributes) Validate() error {
	a.Title = strings.TrimSpace(a.Title)
	a.Author = strings.TrimSpace(a.Author)
	a.Genre = strings.TrimSpace(a.Genre)

	switch {
	case a.Title == "":
		return ErrTitleRequired
	case utf8.RuneCountInString(a.Title) > MaxTitleLength:
		return ErrTitleTooLong
	case a.Author == "":
		return ErrAuthorRequired
	case utf8.RuneCountInString(a.Author) > MaxAuthorLength:
		return ErrAuthorTooLong
	case utf8.RuneCountInString(a.Genre) > MaxGenreLength:
		return ErrGenreTooLong
	case a.Price < 0:
		return ErrInvalidPrice
	case math.IsNaN(a.Rating) || a.Rating < 0 || a.Rating > MaxRating:
		return ErrInvalidRating
	}
	return nil
}

// NewBook 创建新图书(工厂方法)
func NewBook(attrs Attributes) (*Book, error) {
	if err := attrs.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	b := &Book{CreatedAt: now}
	b.apply(attrs, now)
	return b, nil
}

// Replace 全量替换可修改属性(PUT语义)
func (b *Book) Replace(attrs Attributes) error {
	if err := attrs.Validate(); err != nil {
		return err
	}
	b.apply(attrs, time.Now())
	return nil
}

func (b *Book) apply(attrs Attributes, now time.Time) {
	b.Title = attrs.Title
	b.Description = attrs.Description
	b.Author = attrs.Author
	b.Genre = attrs.Genre
	b.PublicationDate = attrs.PublicationDate
	b.IsBorrowed = attrs.IsBorrowed
	b.Price = attrs.Price
	b.Rating = attrs.Rating
	b.UpdatedAt = now
}

// PriceFromDecimal 元转分,四舍五入到分
func PriceFromDecimal(price float64) int64 {
	return int64(math.Round(price * 100))
}

// PriceToDecimal 分转元
func PriceToDecimal(cents int64) float64 {
	return float64(cents) / 100
}
