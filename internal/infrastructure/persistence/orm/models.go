package orm

import (
	"time"
)

// UserModel GORM用户模型
// infrastructure层的数据模型，domain/user/entity.go是领域实体，Repository负责转换
type UserModel struct {
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"uniqueIndex;size:50;not null;comment:用户名"`
	PasswordHash string    `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	CreatedAt    time.Time `gorm:"comment:创建时间"`
	UpdatedAt    time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// BookModel GORM图书模型
// 设计说明:
// 1. 价格使用int64存储"分"为单位
// 2. 书名、作者、类型建索引,支持过滤和排序
// 3. 不使用软删除,删除即物理删除
type BookModel struct {
	ID              uint      `gorm:"primaryKey"`
	Title           string    `gorm:"index;size:200;not null;comment:书名"`
	Description     string    `gorm:"type:text;comment:图书描述"`
	Author          string    `gorm:"index;size:100;not null;comment:作者"`
	Genre           string    `gorm:"index;size:50;comment:类型"`
	PublicationDate time.Time `gorm:"index;not null;comment:出版日期"`
	IsBorrowed      bool      `gorm:"not null;default:false;comment:是否已借出"`
	Price           int64     `gorm:"index;not null;default:0;comment:价格(分)"`
	Rating          float64   `gorm:"not null;default:0;comment:评分(0-5)"`
	CreatedAt       time.Time `gorm:"comment:创建时间"`
	UpdatedAt       time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}
