package canvasrenderer

import (
	"fmt"
	"image"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"golang.org/x/image/draw"

	"github.com/ByLCY/cardpress/layout"
	"github.com/ByLCY/cardpress/renderer"
)

// Renderer draws card text via github.com/tdewolff/canvas.
// One template pixel maps onto one canvas millimetre, rasterised at 1 dot per mm,
// so layout coordinates are used unchanged.
type Renderer struct {
	fonts *FontRegistry

	// text shaping is not safe for concurrent use
	shapeMu sync.Mutex
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Measurer   = (*Renderer)(nil)
)

// New creates a renderer backed by the given font registry.
func New(fonts *FontRegistry) *Renderer {
	return &Renderer{fonts: fonts}
}

// Fonts returns the registry the renderer resolves faces from.
func (r *Renderer) Fonts() *FontRegistry { return r.fonts }

// Measure 实现 layout.Measurer：返回文本在给定字体下的前进宽度（px）。
// 字体无法解析时返回 0，错误已由注册表记录。
func (r *Renderer) Measure(text string, font layout.FontSpec) float64 {
	if text == "" {
		return 0
	}
	face, err := r.fonts.Face(font, layout.Color{})
	if err != nil {
		r.fonts.warnOnce("measure:"+font.Family, "无法测量文本", "font", layout.FontString(font), "err", err)
		return 0
	}
	r.shapeMu.Lock()
	defer r.shapeMu.Unlock()
	return face.TextWidth(text)
}

// RenderCard 在模板副本上绘制一行数据的全部字段，返回合成后的图像与各字段的排版计划。
// 未框选的字段与空文本字段不产生任何绘制。模板本身不会被修改。
func (r *Renderer) RenderCard(tpl image.Image, fields []layout.Field, row layout.DataRow) (*image.RGBA, []layout.Plan, error) {
	if tpl == nil {
		return nil, nil, fmt.Errorf("模板图片为空")
	}
	b := tpl.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, nil, fmt.Errorf("模板图片尺寸无效：%dx%d", b.Dx(), b.Dy())
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), tpl, b.Min, draw.Src)

	c := canvas.New(float64(b.Dx()), float64(b.Dy()))
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与模板保持左上角为原点

	p := &layerPainter{r: r, ctx: ctx}
	var plans []layout.Plan
	for _, f := range fields {
		if !f.Placed() {
			continue
		}
		plan, painted := layout.RenderBox(p, r, f.Text(row), *f.Rect, f.Style)
		if p.err != nil {
			return nil, nil, fmt.Errorf("绘制字段 %s 失败: %w", f.Column, p.err)
		}
		if painted {
			plan.Column = f.Column
			plans = append(plans, plan)
		}
	}
	if len(plans) == 0 {
		return dst, nil, nil
	}

	layer := rasterizer.Draw(c, canvas.DPMM(1.0), canvas.DefaultColorSpace)
	draw.Draw(dst, dst.Bounds(), layer, layer.Bounds().Min, draw.Over)
	return dst, plans, nil
}

// layerPainter 实现 layout.Painter，把每一行文字画到透明的 canvas 图层上。
type layerPainter struct {
	r   *Renderer
	ctx *canvas.Context
	err error
}

func (p *layerPainter) FillText(text string, x, y float64, font layout.FontSpec, col layout.Color) {
	if p.err != nil {
		return
	}
	face, err := p.r.fonts.Face(font, col)
	if err != nil {
		p.err = err
		return
	}
	p.r.shapeMu.Lock()
	textLine := canvas.NewTextLine(face, text, canvas.Left)
	p.r.shapeMu.Unlock()

	// 基线位置：以行顶部 y 加上字体上升部（Ascent）
	baseline := y + face.Metrics().Ascent
	p.ctx.DrawText(x, baseline, textLine)
}
