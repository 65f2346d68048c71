package dto

import (
	"errors"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/xiebiao/booklibrary/internal/domain/book"
)

var registerOnce sync.Once

// RegisterValidators 向gin的校验引擎注册自定义规则
//   - notblank: 去除首尾空白后非空
//   - sortby:   合法的排序表达式(见book.ParseSort)
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("notblank", validateNotBlank)
		_ = v.RegisterValidation("sortby", validateSortBy)
	})
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateSortBy(fl validator.FieldLevel) bool {
	_, err := book.ParseSort(fl.Field().String())
	return err == nil
}

// HasTag 判断校验错误中是否包含指定规则
func HasTag(err error, tag string) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		if fe.Tag() == tag {
			return true
		}
	}
	return false
}
