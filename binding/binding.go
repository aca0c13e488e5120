package binding

import (
	"regexp"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// LookupFunc 按列名取单元格文本，第二个返回值表示该列是否存在。
type LookupFunc func(column string) (string, bool)

// Map 把普通 map 包装为 LookupFunc。
func Map(values map[string]string) LookupFunc {
	return func(column string) (string, bool) {
		v, ok := values[column]
		return v, ok
	}
}

// Interpolate 将文本中的 ${列名} 替换为该行对应列的值。
// 列名按原样匹配（首尾空白忽略），允许包含空格与点号。
// lookup 为空或列不存在时保留原占位符。
func Interpolate(text string, lookup LookupFunc) string {
	if lookup == nil || !strings.Contains(text, "${") {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		column := columnOf(match)
		if column == "" {
			return match
		}
		if val, ok := lookup(column); ok {
			return val
		}
		return match
	})
}

// Placeholders 返回文本中引用的列名，按出现顺序去重。
func Placeholders(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, match := range exprPattern.FindAllString(text, -1) {
		column := columnOf(match)
		if column == "" || seen[column] {
			continue
		}
		seen[column] = true
		out = append(out, column)
	}
	return out
}

func columnOf(match string) string {
	groups := exprPattern.FindStringSubmatch(match)
	if len(groups) < 2 {
		return ""
	}
	return strings.TrimSpace(groups[1])
}
