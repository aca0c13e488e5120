package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/cardpress/dsl"
)

// Card 是从卡片 DSL 构建出的完整定义：模板路径、需要注册的字体与全部字段。
type Card struct {
	Name     string       `json:"name"`
	Version  string       `json:"version"`
	Template string       `json:"template,omitempty"`
	Fonts    []FontSource `json:"fonts,omitempty"`
	Fields   []Field      `json:"fields"`
}

// FontSource 描述一个待注册的字体文件。
type FontSource struct {
	Family string `json:"family" yaml:"family"`
	Weight Weight `json:"weight" yaml:"-"`
	Src    string `json:"src" yaml:"src"`
}

// 字段块中可用的属性名（含别名）。
var fieldKeys = map[string]string{
	"rect":               "rect",
	"font":               "font",
	"font-family":        "font",
	"size":               "size",
	"font-size":          "size",
	"color":              "color",
	"align":              "align",
	"alignment":          "align",
	"valign":             "valign",
	"vertical-alignment": "valign",
	"line-height":        "line-height",
	"bold":               "bold",
	"weight":             "bold",
	"text":               "text",
}

// BuildCard 把解析后的 DSL 文档转换为已校验的字段定义。
// 同名字段重复声明、未知属性或非法样式都会返回错误。
func BuildCard(doc *dsl.Document) (*Card, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	card := &Card{Name: doc.Name, Version: doc.Version, Template: doc.Template()}

	for _, decl := range doc.Fonts() {
		src, err := parseFontSource(decl)
		if err != nil {
			return nil, err
		}
		card.Fonts = append(card.Fonts, src)
	}

	seen := map[string]bool{}
	for _, decl := range doc.Fields() {
		column := strings.TrimSpace(string(decl.Column))
		if column == "" {
			return nil, fmt.Errorf("第 %d 行：字段列名为空", decl.Pos.Line)
		}
		if seen[column] {
			return nil, fmt.Errorf("第 %d 行：字段 %s 重复声明", decl.Pos.Line, column)
		}
		seen[column] = true

		field, err := buildField(column, decl.Block)
		if err != nil {
			return nil, fmt.Errorf("第 %d 行：字段 %s：%w", decl.Pos.Line, column, err)
		}
		card.Fields = append(card.Fields, field)
	}
	return card, nil
}

func buildField(column string, block *dsl.Block) (Field, error) {
	attrs, rectValue, err := collectAttributes(block)
	if err != nil {
		return Field{}, err
	}

	spec := StyleSpec{
		FontFamily:        attrs["font"],
		Color:             attrs["color"],
		Alignment:         attrs["align"],
		VerticalAlignment: attrs["valign"],
		Bold:              attrs["bold"],
	}
	if v := attrs["size"]; v != "" {
		l, ok := ParseRawLengthStr(v)
		if !ok {
			return Field{}, fmt.Errorf("%w: 字号 %q 无法解析", ErrInvalidStyle, v)
		}
		spec.FontSize = l.ToPX()
	}
	if v := attrs["line-height"]; v != "" {
		lh, ok := ParseLineHeight(v)
		if !ok {
			return Field{}, fmt.Errorf("%w: 行高 %q 无法解析", ErrInvalidStyle, v)
		}
		spec.LineHeight = lh
	}
	style, err := NewStyle(spec)
	if err != nil {
		return Field{}, err
	}

	field := Field{Column: column, Style: style, Template: attrs["text"]}
	if rectValue != nil {
		rect, err := parseRect(rectValue)
		if err != nil {
			return Field{}, err
		}
		field.Rect = &rect
	}
	return field, nil
}

// collectAttributes 把块内赋值展开为规范化后的属性表，后出现的同名属性覆盖前者。
// 属性名不区分大小写；rect 保留原始数组值单独返回。
func collectAttributes(block *dsl.Block) (map[string]string, *dsl.Value, error) {
	attrs := map[string]string{}
	var rect *dsl.Value
	if block == nil {
		return attrs, nil, nil
	}
	for _, a := range block.Assignments {
		key, ok := fieldKeys[strings.ToLower(a.Key)]
		if !ok {
			return nil, nil, fmt.Errorf("第 %d 行：未知属性 %s", a.Pos.Line, a.Key)
		}
		if key == "rect" {
			rect = a.Value
			continue
		}
		attrs[key] = a.Value.Raw()
	}
	return attrs, rect, nil
}

// parseRect 接受 [x, y, width, height] 形式的数组，数值可带 px 单位。
func parseRect(v *dsl.Value) (Rect, error) {
	if v.Array == nil || len(v.Array.Values) != 4 {
		return Rect{}, fmt.Errorf("rect 需要 [x, y, width, height] 四个数值")
	}
	var nums [4]float64
	for i, item := range v.Array.Values {
		l, ok := ParseRawLengthStr(item.Raw())
		if !ok {
			return Rect{}, fmt.Errorf("rect 第 %d 个数值 %q 无法解析", i+1, item.Raw())
		}
		nums[i] = l.ToPX()
	}
	rect := Rect{X: nums[0], Y: nums[1], Width: nums[2], Height: nums[3]}
	if rect.Empty() {
		return Rect{}, fmt.Errorf("rect 宽高必须为正数（%s×%s）", formatNumber(rect.Width), formatNumber(rect.Height))
	}
	return rect, nil
}

func parseFontSource(decl *dsl.FontDecl) (FontSource, error) {
	family := strings.TrimSpace(string(decl.Family))
	src := decl.Block.Get("src").Raw()
	if family == "" || src == "" {
		return FontSource{}, fmt.Errorf("第 %d 行：字体声明需要名称与 src", decl.Pos.Line)
	}
	weight, err := ParseWeight(decl.Block.Get("weight").Raw())
	if err != nil {
		return FontSource{}, fmt.Errorf("第 %d 行：%w", decl.Pos.Line, err)
	}
	return FontSource{Family: family, Weight: weight, Src: src}, nil
}

// ParseRectString 解析命令行中的 "x,y,w,h" 形式矩形。
func ParseRectString(s string) (Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Rect{}, fmt.Errorf("矩形 %q 需要 x,y,w,h 四个数值", s)
	}
	var nums [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Rect{}, fmt.Errorf("矩形 %q 第 %d 个数值无法解析: %w", s, i+1, err)
		}
		nums[i] = f
	}
	return Rect{X: nums[0], Y: nums[1], Width: nums[2], Height: nums[3]}, nil
}
