package book

import (
	"time"

	"github.com/xiebiao/booklibrary/internal/domain/book"
)

// DateLayout 出版日期的对外格式
const DateLayout = "2006-01-02"

// BookDTO 图书响应DTO
// 价格以元(两位小数)展示,内部以分存储
type BookDTO struct {
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

// NewBookDTO 实体转DTO
func NewBookDTO(b *book.Book) BookDTO {
	return BookDTO{
		ID:              b.ID,
		Title:           b.Title,
		Description:     b.Description,
		Author:          b.Author,
		Genre:           b.Genre,
		PublicationDate: b.PublicationDate.UTC().Format(DateLayout),
		IsBorrowed:      b.IsBorrowed,
		Price:           book.PriceToDecimal(b.Price),
		Rating:          b.Rating,
	}
}

func newBookDTOs(books []*book.Book) []BookDTO {
	list := make([]BookDTO, len(books))
	for i, b := range books {
		list[i] = NewBookDTO(b)
	}
	return list
}

// BookInput 创建/全量更新的输入
type BookInput struct {
	Title           string
	Description     string
	Author          string
	Genre           string
	PublicationDate time.Time
	IsBorrowed      bool
	Price           float64 // 元
	Rating          float64
}

func (in BookInput) attributes() book.Attributes {
	return book.Attributes{
		Title:           in.Title,
		Description:     in.Description,
		Author:          in.Author,
		Genre:           in.Genre,
		PublicationDate: in.PublicationDate.UTC(),
		IsBorrowed:      in.IsBorrowed,
		Price:           book.PriceFromDecimal(in.Price),
		Rating:          in.Rating,
	}
}
