package selector

import (
	"math"

	"github.com/ByLCY/cardpress/layout"
)

// 交互参数，单位为模板像素。
const (
	HitPadding    = 3
	HandleHitArea = 18
	MinSize       = 10
)

// Point 为模板像素坐标。
type Point struct {
	X, Y float64
}

// Handle 标识矩形上的缩放手柄。
type Handle int

const (
	HandleNone Handle = iota
	HandleTopLeft
	HandleTopRight
	HandleBottomLeft
	HandleBottomRight
	HandleTop
	HandleBottom
	HandleLeft
	HandleRight
)

var handleNames = [...]string{"none", "tl", "tr", "bl", "br", "t", "b", "l", "r"}

func (h Handle) String() string {
	if h < 0 || int(h) >= len(handleNames) {
		return "unknown"
	}
	return handleNames[h]
}

// HandlePoints 返回八个手柄的中心，顺序与命中检测顺序相同：左上、右上、左下、右下、上、下、左、右。
func HandlePoints(r layout.Rect) [8]Point {
	return [8]Point{
		{r.X, r.Y},
		{r.X + r.Width, r.Y},
		{r.X, r.Y + r.Height},
		{r.X + r.Width, r.Y + r.Height},
		{r.X + r.Width/2, r.Y},
		{r.X + r.Width/2, r.Y + r.Height},
		{r.X, r.Y + r.Height/2},
		{r.X + r.Width, r.Y + r.Height/2},
	}
}

// HandleAt 返回 (x, y) 命中的第一个手柄，没有命中时返回 HandleNone。
func HandleAt(r layout.Rect, x, y float64) Handle {
	for i, p := range HandlePoints(r) {
		if math.Abs(x-p.X) < HandleHitArea && math.Abs(y-p.Y) < HandleHitArea {
			return Handle(i + 1)
		}
	}
	return HandleNone
}

// HitTest 返回第一个包含 (x, y) 的字段下标（矩形向外扩 HitPadding），没有则返回 -1。
func HitTest(fields []layout.Field, x, y float64) int {
	for i, f := range fields {
		if f.Rect == nil {
			continue
		}
		r := *f.Rect
		if x >= r.X-HitPadding && x <= r.X+r.Width+HitPadding &&
			y >= r.Y-HitPadding && y <= r.Y+r.Height+HitPadding {
			return i
		}
	}
	return -1
}

// ToImage 把显示坐标换算为模板像素坐标；显示尺寸无效时原样返回。
func ToImage(x, y, displayW, displayH float64, imgW, imgH int) (float64, float64) {
	if displayW <= 0 || displayH <= 0 {
		return x, y
	}
	return x * float64(imgW) / displayW, y * float64(imgH) / displayH
}

// Resize 按手柄把矩形的对应边移到 p，对边保持不动。
func Resize(r layout.Rect, h Handle, p Point) layout.Rect {
	right, bottom := r.X+r.Width, r.Y+r.Height
	switch h {
	case HandleTopLeft:
		return layout.Rect{X: p.X, Y: p.Y, Width: right - p.X, Height: bottom - p.Y}
	case HandleTopRight:
		return layout.Rect{X: r.X, Y: p.Y, Width: p.X - r.X, Height: bottom - p.Y}
	case HandleBottomLeft:
		return layout.Rect{X: p.X, Y: r.Y, Width: right - p.X, Height: p.Y - r.Y}
	case HandleBottomRight:
		return layout.Rect{X: r.X, Y: r.Y, Width: p.X - r.X, Height: p.Y - r.Y}
	case HandleTop:
		return layout.Rect{X: r.X, Y: p.Y, Width: r.Width, Height: bottom - p.Y}
	case HandleBottom:
		return layout.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: p.Y - r.Y}
	case HandleLeft:
		return layout.Rect{X: p.X, Y: r.Y, Width: right - p.X, Height: r.Height}
	case HandleRight:
		return layout.Rect{X: r.X, Y: r.Y, Width: p.X - r.X, Height: r.Height}
	}
	return r
}

// Mode 为当前的指针交互状态。
type Mode int

const (
	Idle Mode = iota
	Drawing
	Dragging
	Resizing
)

func (m Mode) String() string {
	switch m {
	case Drawing:
		return "drawing"
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	}
	return "idle"
}

// Options 为可选的字号建议：新矩形分配给字段时，用示例行的文本估算基础字号。
type Options struct {
	Measurer layout.Measurer
	Sample   layout.DataRow
}

// Selector 在模板像素坐标上实现 画框 / 拖动 / 缩放 状态机。
// 它只替换字段的 Rect 指针，不会修改调用方传入的矩形。
type Selector struct {
	fields   []layout.Field
	selected int
	opts     Options

	mode   Mode
	handle Handle
	start  Point
	offset Point
	draft  *layout.Rect
}

// New 创建选择器，fields 会被复制。
func New(fields []layout.Field, opts Options) *Selector {
	return &Selector{fields: append([]layout.Field(nil), fields...), selected: -1, opts: opts}
}

// Fields 返回当前字段的副本。
func (s *Selector) Fields() []layout.Field {
	return append([]layout.Field(nil), s.fields...)
}

// Selected 返回选中字段的下标，-1 表示没有选中。
func (s *Selector) Selected() int { return s.selected }

// Select 选中指定字段；越界视为取消选中。
func (s *Selector) Select(i int) {
	if i < 0 || i >= len(s.fields) {
		i = -1
	}
	s.selected = i
}

// Mode 返回当前交互状态。
func (s *Selector) Mode() Mode { return s.mode }

// Handle 返回缩放中使用的手柄。
func (s *Selector) Handle() Handle { return s.handle }

// Draft 返回正在绘制的矩形，不在绘制状态时为 nil。
func (s *Selector) Draft() *layout.Rect {
	if s.draft == nil {
		return nil
	}
	d := *s.draft
	return &d
}

// Press 处理指针按下：命中选中字段的手柄则开始缩放，命中字段则开始拖动，否则取消选中并开始画框。
func (s *Selector) Press(x, y float64) {
	s.reset()
	p := Point{x, y}
	if i := HitTest(s.fields, x, y); i >= 0 {
		r := *s.fields[i].Rect
		s.selected = i
		s.start = p
		if h := HandleAt(r, x, y); h != HandleNone {
			s.mode, s.handle = Resizing, h
			return
		}
		s.mode = Dragging
		s.offset = Point{x - r.X, y - r.Y}
		return
	}
	s.selected = -1
	s.mode = Drawing
	s.start = p
}

// Move 处理指针移动，返回字段或草稿矩形是否发生变化。
func (s *Selector) Move(x, y float64) bool {
	p := Point{x, y}
	switch s.mode {
	case Resizing:
		if s.selected < 0 {
			return false
		}
		next := Resize(*s.fields[s.selected].Rect, s.handle, p)
		if next.Width <= MinSize || next.Height <= MinSize {
			return false
		}
		s.setRect(s.selected, next)
		return true
	case Dragging:
		if s.selected < 0 {
			return false
		}
		r := *s.fields[s.selected].Rect
		s.setRect(s.selected, layout.Rect{X: x - s.offset.X, Y: y - s.offset.Y, Width: r.Width, Height: r.Height})
		return true
	case Drawing:
		s.draft = &layout.Rect{
			X:      math.Min(s.start.X, p.X),
			Y:      math.Min(s.start.Y, p.Y),
			Width:  math.Abs(p.X - s.start.X),
			Height: math.Abs(p.Y - s.start.Y),
		}
		return true
	}
	return false
}

// Release 结束当前交互。草稿矩形宽高都大于 MinSize 时分配给第一个还没有矩形的字段并选中它，
// 返回该字段下标；没有分配时返回 -1。
func (s *Selector) Release() int {
	defer s.reset()
	if s.mode != Drawing || s.draft == nil || s.draft.Width <= MinSize || s.draft.Height <= MinSize {
		return -1
	}
	target := -1
	for i, f := range s.fields {
		if f.Rect == nil {
			target = i
			break
		}
	}
	if target < 0 {
		return -1
	}
	s.setRect(target, *s.draft)
	s.suggest(target)
	s.selected = target
	return target
}

func (s *Selector) setRect(i int, r layout.Rect) {
	s.fields[i].Rect = &r
}

func (s *Selector) suggest(i int) {
	if s.opts.Measurer == nil || s.opts.Sample == nil {
		return
	}
	f := &s.fields[i]
	text := f.Text(s.opts.Sample)
	if text == "" {
		return
	}
	f.Style.FontSize = layout.SuggestFontSize(text, *f.Rect, f.Style, s.opts.Measurer)
}

func (s *Selector) reset() {
	s.mode = Idle
	s.handle = HandleNone
	s.start = Point{}
	s.offset = Point{}
	s.draft = nil
}
