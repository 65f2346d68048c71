package orm

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isDuplicateError 判断是否为唯一索引冲突
// TranslateError开启后驱动会转换为gorm.ErrDuplicatedKey，错误信息匹配用于兜底:
//   - MySQL 1062: Duplicate entry 'xxx' for key 'yyy'
//   - PostgreSQL 23505: duplicate key value violates unique constraint
//   - SQLite: UNIQUE constraint failed
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// likeEscaper 转义LIKE通配符，配合 ESCAPE '!' 使用（三种数据库都支持）
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern 生成包含匹配模式,大小写转换交给SQL的LOWER(与列使用同一规则)
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
