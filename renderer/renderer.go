package renderer

import (
	"image"

	"github.com/ByLCY/cardpress/layout"
)

// Renderer 把一行数据的全部字段绘制到模板副本上。
// 预览与批量生成共用同一个实现，Measure 与绘制使用同一套字体，保证两边结果一致。
type Renderer interface {
	layout.Measurer
	RenderCard(tpl image.Image, fields []layout.Field, row layout.DataRow) (*image.RGBA, []layout.Plan, error)
}
