package layout

// 该文件定义字段、样式与排版结果，供自动适配、渲染、预览与批量生成共用。

// Rect 为模板图片像素坐标系下的矩形（非屏幕坐标，调用方需自行换算）。
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Empty 报告矩形是否为零面积或负面积；此类矩形视为“未设置”。
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Inner 返回扣除四周统一内边距后的可用宽高。
func (r Rect) Inner(padding float64) (width, height float64) {
	return r.Width - 2*padding, r.Height - 2*padding
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Align 为行内水平对齐方式。
type Align int

const (
	AlignCenter Align = iota
	AlignLeft
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignRight:
		return "right"
	default:
		return "center"
	}
}

// VAlign 为文本块在矩形内的垂直对齐方式。
type VAlign int

const (
	VAlignBottom VAlign = iota
	VAlignTop
	VAlignMiddle
)

func (v VAlign) String() string {
	switch v {
	case VAlignTop:
		return "top"
	case VAlignMiddle:
		return "middle"
	default:
		return "bottom"
	}
}

// Weight 为字重，仅区分常规与粗体。
type Weight int

const (
	WeightNormal Weight = iota
	WeightBold
)

func (w Weight) String() string {
	if w == WeightBold {
		return "bold"
	}
	return "normal"
}

// FontSpec 描述一次测量或绘制所用的字体：字族、像素字号与字重。
type FontSpec struct {
	Family string  `json:"family"`
	Size   float64 `json:"size"`
	Weight Weight  `json:"weight"`
}

// Style 是经过校验的字段样式，只能通过 NewStyle 构造。
type Style struct {
	FontFamily string  `json:"fontFamily"`
	FontSize   float64 `json:"fontSize"` // 请求的基准字号（px），并非最终字号
	Color      Color   `json:"color"`
	Align      Align   `json:"alignment"`
	VAlign     VAlign  `json:"verticalAlignment"`
	LineHeight float64 `json:"lineHeight"` // 行高倍数，>= 0.5
	Weight     Weight  `json:"weight"`
}

// Font 返回指定字号下该样式对应的字体描述。
func (s Style) Font(size float64) FontSpec {
	return FontSpec{Family: s.FontFamily, Size: size, Weight: s.Weight}
}

// Field 表示绑定到表格某一列的文本区域。
// Rect 为 nil 表示尚未在模板上框选；Template 为空时直接使用该列的值。
type Field struct {
	Column   string `json:"column"`
	Rect     *Rect  `json:"rect"`
	Style    Style  `json:"style"`
	Template string `json:"template,omitempty"`
}

// Placed 报告字段是否已经框选了有效矩形。
func (f Field) Placed() bool { return f.Rect != nil && !f.Rect.Empty() }

// DataRow 为一行表格数据：列名 -> 单元格文本。上传后即视为只读。
type DataRow map[string]string

// Result 为一次自动适配的结果，每次调用都重新计算，不做缓存。
type Result struct {
	Lines    []string  `json:"lines"`
	FontSize float64   `json:"fontSize"`
	Fits     bool      `json:"fits"`     // false 表示在最小字号下仍然溢出
	Attempts []float64 `json:"attempts"` // 依次尝试过的字号
}

// PlacedLine 为一行已经定位的文本，(X, Y) 为字形框左上角。
type PlacedLine struct {
	Text  string  `json:"text"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Width float64 `json:"width"`
}

// Plan 记录一个字段在一行数据上的完整绘制指令。
type Plan struct {
	Column string       `json:"column,omitempty"`
	Rect   Rect         `json:"rect"`
	Result Result       `json:"result"`
	Font   FontSpec     `json:"font"`
	Color  Color        `json:"color"`
	Lines  []PlacedLine `json:"lines"`
}
