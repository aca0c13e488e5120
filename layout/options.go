package layout

import (
	"strings"
	"unicode"
)

// Measurer 负责测量给定字体下字符串的前进宽度（px）。
// 对同一字体文件与相同输入必须给出相同结果；预览与批量生成共用同一实现。
type Measurer interface {
	Measure(text string, font FontSpec) float64
}

// Painter 负责把一行文本以“顶部对齐”的约定画到 (x, y)：y 为字形顶部而非基线。
type Painter interface {
	FillText(text string, x, y float64, font FontSpec, color Color)
}

// MeasureFunc 让普通函数满足 Measurer 接口。
type MeasureFunc func(text string, font FontSpec) float64

func (f MeasureFunc) Measure(text string, font FontSpec) float64 { return f(text, font) }

// FontString 按 CSS font 简写语法输出字体描述，例如 `bold 16px "Sree Krushnadevaraya"`。
// 含空白的字族名需要加引号。
func FontString(font FontSpec) string {
	return font.Weight.String() + " " + formatNumber(font.Size) + "px " + QuoteFamily(font.Family)
}

// QuoteFamily 在字族名包含空白时为其加上双引号。
func QuoteFamily(family string) string {
	if strings.IndexFunc(family, unicode.IsSpace) < 0 {
		return family
	}
	return `"` + strings.ReplaceAll(family, `"`, `\"`) + `"`
}

