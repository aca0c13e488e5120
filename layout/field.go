package layout

import (
	"strings"

	"github.com/ByLCY/cardpress/binding"
	"golang.org/x/text/unicode/norm"
)

// Lookup 满足 binding.LookupFunc 的签名。
func (r DataRow) Lookup(column string) (string, bool) {
	v, ok := r[column]
	return v, ok
}

// NormalizeText 对单元格文本做 NFC 规范化，并去掉首尾空白。
// 同一段文字的不同 Unicode 组合形式会因此得到相同的测量结果。
func NormalizeText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// Text 返回字段在某一行上要绘制的文本。
// 未设置 Template 时取 Column 列的值；否则展开模板中的 ${列名}。
func (f Field) Text(row DataRow) string {
	if f.Template == "" {
		return NormalizeText(row[f.Column])
	}
	return NormalizeText(binding.Interpolate(f.Template, row.Lookup))
}

// NewFields 为每个表头创建一个未框选的字段，样式取默认值。
func NewFields(headers []string) []Field {
	fields := make([]Field, 0, len(headers))
	for _, h := range headers {
		fields = append(fields, Field{Column: h, Style: DefaultStyle()})
	}
	return fields
}

// Columns 返回字段引用到的全部列名（包括模板中的占位符），按出现顺序去重。
func Columns(fields []Field) []string {
	var out []string
	seen := map[string]bool{}
	add := func(c string) {
		if c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for _, f := range fields {
		if f.Template == "" {
			add(f.Column)
			continue
		}
		for _, c := range binding.Placeholders(f.Template) {
			add(c)
		}
	}
	return out
}
