package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/booklibrary/pkg/errors"
	"github.com/xiebiao/booklibrary/pkg/response"
)

const (
	// SupportedVersionsHeader 响应中声明支持的版本
	SupportedVersionsHeader = "api-supported-versions"
	// VersionParam 客户端指定版本的查询参数/请求头
	VersionParam = "api-version"
)

// SupportedVersions 当前支持的API版本
var SupportedVersions = []string{"1.0"}

// APIVersion API版本中间件
// 未指定版本时按1.0处理;指定了不支持的版本返回400
func APIVersion() gin.HandlerFunc {
	supported := strings.Join(SupportedVersions, ", ")

	return func(c *gin.Context) {
		c.Header(SupportedVersionsHeader, supported)

		requested := c.Query(VersionParam)
		if requested == "" {
			requested = c.GetHeader(VersionParam)
		}
		if requested != "" && !isSupportedVersion(requested) {
			response.Error(c, apperrors.ErrUnsupportedVersion.WithMessage(
				"The HTTP resource does not support the API version '"+requested+"'."))
			return
		}
		c.Next()
	}
}

// isSupportedVersion "1"与"1.0"等价
func isSupportedVersion(v string) bool {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if !strings.Contains(v, ".") {
		v += ".0"
	}
	for _, s := range SupportedVersions {
		if s == v {
			return true
		}
	}
	return false
}
