package layout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// 样式默认值。DefaultFamily 对应 fonts 包内置的 Go 字体。
const (
	DefaultFamily     = "Go"
	DefaultFontSize   = 16.0
	DefaultLineHeight = 1.2
	MinLineHeight     = 0.5
)

// ErrInvalidStyle 为所有样式校验错误的哨兵值，可通过 errors.Is 判断。
var ErrInvalidStyle = errors.New("字段样式不合法")

// StyleSpec 是样式在边界处的原始形态（来自 YAML/JSON/DSL），字段均可为空。
type StyleSpec struct {
	FontFamily        string  `json:"fontFamily,omitempty" yaml:"fontFamily,omitempty"`
	FontSize          float64 `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
	Color             string  `json:"color,omitempty" yaml:"color,omitempty"`
	Alignment         string  `json:"alignment,omitempty" yaml:"alignment,omitempty"`
	VerticalAlignment string  `json:"verticalAlignment,omitempty" yaml:"verticalAlignment,omitempty"`
	LineHeight        float64 `json:"lineHeight,omitempty" yaml:"lineHeight,omitempty"`
	Bold              string  `json:"bold,omitempty" yaml:"bold,omitempty"`
}

// DefaultStyle 返回全部取默认值的样式。
func DefaultStyle() Style {
	return Style{
		FontFamily: DefaultFamily,
		FontSize:   DefaultFontSize,
		LineHeight: DefaultLineHeight,
	}
}

// NewStyle 校验并规范化原始样式；空值取默认值，非法枚举或数值直接报错。
func NewStyle(spec StyleSpec) (Style, error) {
	st := DefaultStyle()
	if v := strings.TrimSpace(spec.FontFamily); v != "" {
		st.FontFamily = v
	}
	switch {
	case spec.FontSize < 0:
		return Style{}, fmt.Errorf("%w: fontSize 不能为负数（%g）", ErrInvalidStyle, spec.FontSize)
	case spec.FontSize > 0:
		st.FontSize = spec.FontSize
	}
	if v := strings.TrimSpace(spec.Color); v != "" {
		c, err := ParseColor(v)
		if err != nil {
			return Style{}, fmt.Errorf("%w: %v", ErrInvalidStyle, err)
		}
		st.Color = c
	}
	align, err := ParseAlign(spec.Alignment)
	if err != nil {
		return Style{}, err
	}
	st.Align = align
	valign, err := ParseVAlign(spec.VerticalAlignment)
	if err != nil {
		return Style{}, err
	}
	st.VAlign = valign
	switch {
	case spec.LineHeight < 0 || (spec.LineHeight > 0 && spec.LineHeight < MinLineHeight):
		return Style{}, fmt.Errorf("%w: lineHeight 必须 >= %g（%g）", ErrInvalidStyle, MinLineHeight, spec.LineHeight)
	case spec.LineHeight > 0:
		st.LineHeight = spec.LineHeight
	}
	weight, err := ParseWeight(spec.Bold)
	if err != nil {
		return Style{}, err
	}
	st.Weight = weight
	return st, nil
}

// MustStyle 与 NewStyle 相同，但出错时 panic，仅用于常量样式与测试。
func MustStyle(spec StyleSpec) Style {
	st, err := NewStyle(spec)
	if err != nil {
		panic(err)
	}
	return st
}

// Spec 把样式还原为边界形态，用于导出字段文件。
func (s Style) Spec() StyleSpec {
	bold := ""
	if s.Weight == WeightBold {
		bold = "true"
	}
	return StyleSpec{
		FontFamily:        s.FontFamily,
		FontSize:          s.FontSize,
		Color:             s.Color.Hex(),
		Alignment:         s.Align.String(),
		VerticalAlignment: s.VAlign.String(),
		LineHeight:        s.LineHeight,
		Bold:              bold,
	}
}

func ParseAlign(v string) (Align, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "center", "centre":
		return AlignCenter, nil
	case "left", "start":
		return AlignLeft, nil
	case "right", "end":
		return AlignRight, nil
	}
	return AlignCenter, fmt.Errorf("%w: 未知的水平对齐方式 %q", ErrInvalidStyle, v)
}

func ParseVAlign(v string) (VAlign, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "bottom":
		return VAlignBottom, nil
	case "top":
		return VAlignTop, nil
	case "middle", "center":
		return VAlignMiddle, nil
	}
	return VAlignBottom, fmt.Errorf("%w: 未知的垂直对齐方式 %q", ErrInvalidStyle, v)
}

// ParseWeight 接受 true/false/bold/normal 以及空串。
func ParseWeight(v string) (Weight, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "false", "normal", "regular", "400":
		return WeightNormal, nil
	case "true", "bold", "700":
		return WeightBold, nil
	}
	return WeightNormal, fmt.Errorf("%w: 未知的字重 %q", ErrInvalidStyle, v)
}

// ParseColor 解析 #rgb 与 #rrggbb 形式的十六进制颜色，# 可省略。
func ParseColor(value string) (Color, error) {
	v := strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(v) {
	case 3:
		v = strings.Repeat(v[0:1], 2) + strings.Repeat(v[1:2], 2) + strings.Repeat(v[2:3], 2)
	case 6:
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	return Color{R: int(n >> 16 & 0xff), G: int(n >> 8 & 0xff), B: int(n & 0xff)}, nil
}

// Hex 以 #rrggbb 形式输出颜色。
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", clampByte(c.R), clampByte(c.G), clampByte(c.B))
}

func clampByte(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
