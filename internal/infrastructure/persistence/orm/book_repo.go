package orm

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/booklibrary/internal/domain/book"
	apperrors "github.com/xiebiao/booklibrary/pkg/errors"
)

// sortColumns 排序字段 → 列名(白名单,防止SQL注入)
var sortColumns = map[book.SortField]string{
	book.SortByID:              "id",
	book.SortByTitle:           "title",
	book.SortByDescription:     "description",
	book.SortByAuthor:          "author",
	book.SortByGenre:           "genre",
	book.SortByPublicationDate: "publication_date",
	book.SortByIsBorrowed:      "is_borrowed",
	book.SortByPrice:           "price",
	book.SortByRating:          "rating",
}

// bookRepository 图书仓储实现(GORM)
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 把gorm.ErrRecordNotFound转换为book.ErrBookNotFound,其余错误包装为数据库错误
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return wrapDBError(err, "创建图书失败")
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	if err := dbFrom(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, wrapDBError(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

// FindAll 查询全部图书
func (r *bookRepository) FindAll(ctx context.Context) ([]*book.Book, error) {
	var models []BookModel
	if err := dbFrom(ctx, r.db).Order("id ASC").Find(&models).Error; err != nil {
		return nil, wrapDBError(err, "查询图书列表失败")
	}
	return toBookEntities(models), nil
}

// Update 全量更新图书
// Select("*")保证零值字段(false/0/空串)也会写入
func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)
	err := dbFrom(ctx, r.db).
		Model(&BookModel{ID: b.ID}).
		Select("*").
		Omit("id", "created_at").
		Updates(model).Error
	if err != nil {
		return wrapDBError(err, "更新图书失败")
	}

	b.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete 删除图书(物理删除)
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	result := dbFrom(ctx, r.db).Delete(&BookModel{}, id)
	if result.Error != nil {
		return wrapDBError(result.Error, "删除图书失败")
	}
	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}
	return nil
}

// Search 条件搜索
// 1. 依次叠加过滤条件,只有给出的条件才生效
// 2. 先在过滤后的结果上计数,再排序分页
// 3. 排序后追加id升序,保证分页稳定
func (r *bookRepository) Search(ctx context.Context, c book.SearchCriteria) ([]*book.Book, int64, error) {
	var total int64
	if err := r.filtered(ctx, c).Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err, "查询图书总数失败")
	}
	if total == 0 || c.Offset() >= total {
		return []*book.Book{}, total, nil
	}

	column, ok := sortColumns[c.Sort.Field]
	if !ok {
		return nil, 0, book.ErrInvalidSort
	}

	var models []BookModel
	err := r.filtered(ctx, c).
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: c.Sort.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Limit(c.PageSize).
		Offset(int(c.Offset())).
		Find(&models).Error
	if err != nil {
		return nil, 0, wrapDBError(err, "搜索图书失败")
	}

	return toBookEntities(models), total, nil
}

// filtered 构建带过滤条件的查询(每次调用返回新的查询链)
func (r *bookRepository) filtered(ctx context.Context, c book.SearchCriteria) *gorm.DB {
	query := dbFrom(ctx, r.db).Model(&BookModel{})

	// 文本字段: 大小写不敏感的包含匹配
	// 列和模式都经过数据库的LOWER; SQLite内置的LOWER只转换ASCII字母,
	// 因此在SQLite上非ASCII字符(如Ñ/ñ)按大小写敏感匹配
	for _, f := range []struct{ column, value string }{
		{"title", c.Title},
		{"description", c.Description},
		{"author", c.Author},
		{"genre", c.Genre},
	} {
		if f.value != "" {
			query = query.Where("LOWER("+f.column+") LIKE LOWER(?) ESCAPE '!'", containsPattern(f.value))
		}
	}

	// 出版日期: 起止同时给出才生效,按天闭区间
	if c.HasDateRange() {
		query = query.Where("publication_date >= ? AND publication_date < ?",
			c.StartDate.UTC(), c.EndDate.UTC().AddDate(0, 0, 1))
	}

	if c.IsBorrowed != nil {
		query = query.Where("is_borrowed = ?", *c.IsBorrowed)
	}
	if c.MinPrice != nil {
		query = query.Where("price >= ?", *c.MinPrice)
	}
	if c.MaxPrice != nil {
		query = query.Where("price <= ?", *c.MaxPrice)
	}
	if c.MinRating != nil {
		query = query.Where("rating >= ?", *c.MinRating)
	}
	if c.MaxRating != nil {
		query = query.Where("rating <= ?", *c.MaxRating)
	}

	return query
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:              b.ID,
		Title:           b.Title,
		Description:     b.Description,
		Author:          b.Author,
		Genre:           b.Genre,
		PublicationDate: b.PublicationDate.UTC(),
		IsBorrowed:      b.IsBorrowed,
		Price:           b.Price,
		Rating:          b.Rating,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:              model.ID,
		Title:           model.Title,
		Description:     model.Description,
		Author:          model.Author,
		Genre:           model.Genre,
		PublicationDate: model.PublicationDate.UTC(),
		IsBorrowed:      model.IsBorrowed,
		Price:           model.Price,
		Rating:          model.Rating,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

func toBookEntities(models []BookModel) []*book.Book {
	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books
}

// wrapDBError 包装数据库错误,隐藏实现细节
func wrapDBError(err error, message string) error {
	if apperrors.IsAppError(err) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.ErrUnavailable.WithMessage(message).WithCause(err)
	}
	return apperrors.ErrDatabaseError.WithMessage(message).WithCause(err)
}
