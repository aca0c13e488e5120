package layout

import "math"

// 自动适配参数，预览与批量生成共用同一组常量，保证两条路径选出相同字号。
const (
	Padding       = 5.0  // 矩形四周统一内边距（px）
	MinFontSize   = 8.0  // 字号下限
	ShrinkFactor  = 0.9  // 每轮缩小 10%
	MaxIterations = 50   // 最多尝试次数
	MaxStartSize  = 72.0 // 按矩形推算起始字号时的上限
)

// InitialFontSize 根据矩形尺寸推算起始字号：min(w/10, h/3, 72)。
func InitialFontSize(rect Rect) float64 {
	return math.Min(math.Min(rect.Width/10, rect.Height/3), MaxStartSize)
}

// Solve 是盒子渲染内部使用的适配：从样式请求的基准字号开始向下搜索。
func Solve(text string, rect Rect, style Style, m Measurer) Result {
	return fit(text, rect, style, style.FontSize, m)
}

// Fit 是独立的自动适配：从矩形推算的字号开始向下搜索。
// 与 Solve 的停止条件完全一致，起点不同时结果可能不同。
func Fit(text string, rect Rect, style Style, m Measurer) Result {
	return fit(text, rect, style, InitialFontSize(rect), m)
}

// SuggestFontSize 返回向下取整后的适配字号（不低于 MinFontSize），
// 用于为新框选的字段设定基准字号。
func SuggestFontSize(text string, rect Rect, style Style, m Measurer) float64 {
	if text == "" || rect.Empty() {
		return DefaultFontSize
	}
	return math.Max(MinFontSize, math.Floor(Fit(text, rect, style, m).FontSize))
}

func fit(text string, rect Rect, style Style, start float64, m Measurer) Result {
	availW, availH := rect.Inner(Padding)
	lh := style.LineHeight
	if lh <= 0 {
		lh = DefaultLineHeight
	}
	size := math.Max(start, MinFontSize)
	if math.IsNaN(size) || math.IsInf(size, 0) {
		size = MinFontSize
	}

	res := Result{}
	for i := 0; i < MaxIterations; i++ {
		font := style.Font(size)
		lines := BreakLines(text, availW, font, m)
		res.Attempts = append(res.Attempts, size)
		total := float64(len(lines)) * size * lh
		if total <= availH && widest(lines, font, m) <= availW {
			res.Lines = lines
			res.FontSize = size
			res.Fits = true
			return res
		}
		if size == MinFontSize {
			break
		}
		size = math.Max(MinFontSize, size*ShrinkFactor)
	}

	// 下限字号仍放不下：按下限重新折行并接受溢出
	res.Lines = BreakLines(text, availW, style.Font(MinFontSize), m)
	res.FontSize = MinFontSize
	res.Fits = false
	return res
}
