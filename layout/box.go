package layout

import (
	"math"
	"strings"
)

// PlanBox 对文本做自动适配并计算每一行的绘制原点。
// 原点为字形框左上角（顶部对齐基线约定），空行不会出现在 Lines 中。
func PlanBox(text string, rect Rect, style Style, m Measurer) Plan {
	res := Solve(text, rect, style, m)
	font := style.Font(res.FontSize)
	plan := Plan{Rect: rect, Result: res, Font: font, Color: style.Color}

	availW, availH := rect.Inner(Padding)
	lh := style.LineHeight
	if lh <= 0 {
		lh = DefaultLineHeight
	}
	size := res.FontSize
	n := len(res.Lines)
	total := 0.0
	if n > 0 {
		total = float64(n-1)*size*lh + size
	}

	startY := rect.Y + Padding
	switch style.VAlign {
	case VAlignTop:
	case VAlignMiddle:
		startY += math.Max(0, (availH-total)/2)
	default:
		startY += math.Max(0, availH-total)
	}

	for i, line := range res.Lines {
		if line == "" {
			continue
		}
		w := m.Measure(line, font)
		var x float64
		switch style.Align {
		case AlignLeft:
			x = rect.X + Padding
		case AlignRight:
			x = rect.X + rect.Width - Padding - w
		default:
			x = rect.X + Padding + (availW-w)/2
		}
		plan.Lines = append(plan.Lines, PlacedLine{
			Text:  line,
			X:     x,
			Y:     startY + float64(i)*size*lh,
			Width: w,
		})
	}
	return plan
}

// RenderBox 规划并绘制一个文本框。空白文本或空矩形不产生任何绘制调用，返回 false。
func RenderBox(p Painter, m Measurer, text string, rect Rect, style Style) (Plan, bool) {
	if strings.TrimSpace(text) == "" || rect.Empty() {
		return Plan{Rect: rect}, false
	}
	plan := PlanBox(text, rect, style, m)
	for _, line := range plan.Lines {
		p.FillText(line.Text, line.X, line.Y, plan.Font, plan.Color)
	}
	return plan, len(plan.Lines) > 0
}
