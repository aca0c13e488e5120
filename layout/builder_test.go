package layout

import (
	"errors"
	"strings"
	"testing"

	"github.com/ByLCY/cardpress/dsl"
)

// buildCard 是测试辅助：用给定 DSL 文本构建卡片定义。
func buildCard(t *testing.T, dslText string) *Card {
	t.Helper()
	doc, err := dsl.Parse(strings.NewReader(dslText))
	if err != nil {
		t.Fatalf("解析 DSL 失败: %v", err)
	}
	card, err := BuildCard(doc)
	if err != nil {
		t.Fatalf("构建字段失败: %v", err)
	}
	return card
}

func buildCardErr(t *testing.T, dslText string) error {
	t.Helper()
	doc, err := dsl.Parse(strings.NewReader(dslText))
	if err != nil {
		t.Fatalf("解析 DSL 失败: %v", err)
	}
	_, err = BuildCard(doc)
	return err
}

func eq(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-6
}

func TestBuildCardFields(t *testing.T) {
	card := buildCard(t, `card Invite v1 {
  template: "card.jpg"
  font "Sree Krushnadevaraya" { src: "fonts/sree.ttf" }
  font Go { src: "fonts/go-bold.ttf"; weight: bold }
  field Name {
    rect: [40, 60, 300, 80]
    font: "Sree Krushnadevaraya"
    size: 18pt
    color: #f00
    align: right
    valign: middle
    line-height: 1.5x
    bold: true
  }
  field City { text: "From ${City}" }
}`)
	if card.Name != "Invite" || card.Template != "card.jpg" {
		t.Fatalf("卡片头信息错误: %+v", card)
	}
	if len(card.Fonts) != 2 || card.Fonts[1].Weight != WeightBold || card.Fonts[0].Src != "fonts/sree.ttf" {
		t.Fatalf("字体声明错误: %+v", card.Fonts)
	}
	if len(card.Fields) != 2 {
		t.Fatalf("应有 2 个字段，实际 %d", len(card.Fields))
	}

	name := card.Fields[0]
	if !name.Placed() || *name.Rect != (Rect{X: 40, Y: 60, Width: 300, Height: 80}) {
		t.Fatalf("矩形错误: %+v", name.Rect)
	}
	st := name.Style
	if st.FontFamily != "Sree Krushnadevaraya" || !eq(st.FontSize, 24) {
		t.Fatalf("字体或字号错误: %+v", st)
	}
	if st.Color != (Color{R: 255}) || st.Align != AlignRight || st.VAlign != VAlignMiddle {
		t.Fatalf("颜色或对齐错误: %+v", st)
	}
	if !eq(st.LineHeight, 1.5) || st.Weight != WeightBold {
		t.Fatalf("行高或字重错误: %+v", st)
	}

	city := card.Fields[1]
	if city.Placed() {
		t.Fatalf("未写 rect 的字段应视为未框选")
	}
	if city.Style != DefaultStyle() {
		t.Fatalf("未写样式的字段应取默认样式: %+v", city.Style)
	}
	if got := city.Text(DataRow{"City": "Pune"}); got != "From Pune" {
		t.Fatalf("模板展开错误: %q", got)
	}
}

func TestBuildCardAttributeKeysIgnoreCase(t *testing.T) {
	card := buildCard(t, `card C v1 {
  field Name {
    Rect: [1, 2, 30, 40]
    ALIGN: left
  }
  field City {
    rect: [0, 0, 10, 10]
    RECT: [5, 6, 70, 80]
  }
}`)
	name := card.Fields[0]
	if !name.Placed() || *name.Rect != (Rect{X: 1, Y: 2, Width: 30, Height: 40}) {
		t.Fatalf("大写的 Rect 应被识别: %+v", name.Rect)
	}
	if name.Style.Align != AlignLeft {
		t.Fatalf("大写的 ALIGN 应被识别: %v", name.Style.Align)
	}
	if city := card.Fields[1]; city.Rect == nil || *city.Rect != (Rect{X: 5, Y: 6, Width: 70, Height: 80}) {
		t.Fatalf("后出现的 rect 应覆盖前者: %+v", city.Rect)
	}
}

func TestBuildCardRejectsInvalidInput(t *testing.T) {
	cases := map[string]string{
		"重复字段":  `card C v1 { field A { size: 10 }; field A { size: 12 } }`,
		"未知属性":  `card C v1 { field A { shadow: 2 } }`,
		"非法对齐":  `card C v1 { field A { align: justify } }`,
		"矩形数值不足": `card C v1 { field A { rect: [1, 2, 3] } }`,
		"零面积矩形": `card C v1 { field A { rect: [0, 0, 0, 10] } }`,
		"行高过小":  `card C v1 { field A { line-height: 0.2 } }`,
		"字体缺少路径": `card C v1 { font X { weight: bold } }`,
	}
	for name, src := range cases {
		if err := buildCardErr(t, src); err == nil {
			t.Fatalf("%s: 期望报错", name)
		}
	}
	err := buildCardErr(t, `card C v1 { field A { valign: sideways } }`)
	if !errors.Is(err, ErrInvalidStyle) {
		t.Fatalf("样式错误应包装 ErrInvalidStyle，实际 %v", err)
	}
}

func TestParseRectString(t *testing.T) {
	r, err := ParseRectString("0, 0, 200,50")
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if r != (Rect{Width: 200, Height: 50}) {
		t.Fatalf("矩形错误: %+v", r)
	}
	if _, err := ParseRectString("1,2,3"); err == nil {
		t.Fatalf("缺少数值时应报错")
	}
	if _, err := ParseRectString("1,2,x,4"); err == nil {
		t.Fatalf("非数值时应报错")
	}
}
