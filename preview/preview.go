package preview

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"

	"github.com/ByLCY/cardpress/layout"
	"github.com/ByLCY/cardpress/renderer"
	"github.com/ByLCY/cardpress/selector"
)

// 叠加层的尺寸与颜色，与框选编辑器保持一致。
const (
	SelectedLineWidth = 5
	FieldLineWidth    = 3
	DraftLineWidth    = 4
	HandleSize        = 14
	LabelFontSize     = 14
	labelPadding      = 4
)

var (
	selectedColor = color.NRGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff}
	fieldColor    = color.NRGBA{R: 0x10, G: 0xb9, B: 0x81, A: 0xff}
	draftColor    = color.NRGBA{R: 0xef, G: 0x44, B: 0x44, A: 0xff}

	selectedFill = color.NRGBA{R: 59, G: 130, B: 246, A: 26} // 0.1
	fieldFill    = color.NRGBA{R: 16, G: 185, B: 129, A: 20} // 0.08
	draftFill    = color.NRGBA{R: 239, G: 68, B: 68, A: 38}  // 0.15
)

// Options 控制单行预览。
type Options struct {
	// Overlay 为 true 时在卡片上叠加字段矩形、选中手柄与列名标签。
	Overlay bool
	// Selected 为选中字段的下标，-1 表示没有选中。
	Selected int
	// Draft 为正在绘制、尚未分配给字段的矩形。
	Draft  *layout.Rect
	Logger *slog.Logger
}

// Render 用与批量生成相同的 renderer 渲染一行数据。
// 不开启叠加层时，返回的图像与计划和 renderer.RenderCard 完全相同。
func Render(r renderer.Renderer, tpl image.Image, fields []layout.Field, row layout.DataRow, opts Options) (*image.RGBA, []layout.Plan, error) {
	img, plans, err := r.RenderCard(tpl, fields, row)
	if err != nil {
		return nil, nil, fmt.Errorf("渲染预览失败: %w", err)
	}
	if opts.Logger != nil {
		for _, p := range plans {
			if !p.Result.Fits {
				opts.Logger.Warn("文本在最小字号下仍然溢出", "column", p.Column, "fontSize", p.Result.FontSize)
			}
		}
	}
	if opts.Overlay {
		if err := drawOverlay(img, fields, opts); err != nil {
			return nil, nil, err
		}
	}
	return img, plans, nil
}

// Plans 只计算排版结果而不绘制，跳过未框选与空文本的字段，顺序与 RenderCard 一致。
func Plans(m layout.Measurer, fields []layout.Field, row layout.DataRow) []layout.Plan {
	var plans []layout.Plan
	for _, f := range fields {
		if !f.Placed() {
			continue
		}
		text := f.Text(row)
		if strings.TrimSpace(text) == "" {
			continue
		}
		plan := layout.PlanBox(text, *f.Rect, f.Style, m)
		if len(plan.Lines) == 0 {
			continue
		}
		plan.Column = f.Column
		plans = append(plans, plan)
	}
	return plans
}

// Label 返回字段在叠加层上显示的名称。
func Label(f layout.Field, index int) string {
	if f.Column != "" {
		return f.Column
	}
	return fmt.Sprintf("Field %d", index+1)
}

var labelFont = sync.OnceValues(func() (*sfnt.Font, error) {
	return opentype.Parse(gobold.TTF)
})

func labelFace() (font.Face, error) {
	f, err := labelFont()
	if err != nil {
		return nil, fmt.Errorf("解析标签字体失败: %w", err)
	}
	return opentype.NewFace(f, &opentype.FaceOptions{Size: LabelFontSize, DPI: 72, Hinting: font.HintingFull})
}

func drawOverlay(img *image.RGBA, fields []layout.Field, opts Options) error {
	face, err := labelFace()
	if err != nil {
		return err
	}
	defer face.Close()

	dc := gg.NewContextForRGBA(img)
	dc.SetFontFace(face)
	for i, f := range fields {
		if f.Rect == nil {
			continue
		}
		r := *f.Rect
		selected := i == opts.Selected

		stroke, fill, width := fieldColor, fieldFill, float64(FieldLineWidth)
		if selected {
			stroke, fill, width = selectedColor, selectedFill, SelectedLineWidth
		}
		dc.SetDash()
		dc.SetLineWidth(width)
		dc.SetColor(stroke)
		dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
		dc.Stroke()
		dc.SetColor(fill)
		dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
		dc.Fill()

		if selected {
			for _, h := range selector.HandlePoints(r) {
				dc.SetColor(color.White)
				dc.DrawRectangle(h.X-HandleSize/2-1, h.Y-HandleSize/2-1, HandleSize+2, HandleSize+2)
				dc.Fill()
				dc.SetColor(selectedColor)
				dc.DrawRectangle(h.X-HandleSize/2, h.Y-HandleSize/2, HandleSize, HandleSize)
				dc.Fill()
			}
		}

		label := Label(f, i)
		tw, _ := dc.MeasureString(label)
		dc.SetColor(stroke)
		dc.DrawRectangle(r.X+5-labelPadding, r.Y-22-labelPadding, tw+labelPadding*2, 18+labelPadding*2)
		dc.Fill()
		dc.SetColor(color.White)
		dc.DrawString(label, r.X+5, r.Y-20)
	}

	if d := opts.Draft; d != nil {
		dc.SetColor(draftColor)
		dc.SetLineWidth(DraftLineWidth)
		dc.SetDash(8, 8)
		dc.DrawRectangle(d.X, d.Y, d.Width, d.Height)
		dc.Stroke()
		dc.SetDash()
		dc.SetColor(draftFill)
		dc.DrawRectangle(d.X, d.Y, d.Width, d.Height)
		dc.Fill()
	}
	return nil
}
