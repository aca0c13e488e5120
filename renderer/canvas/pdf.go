package canvasrenderer

import (
	"fmt"
	"image"
	"io"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
)

// PageDPI 是卡片图片放入 PDF 页面时使用的分辨率。
const PageDPI = 96.0

// DocumentMeta 为 PDF 文档信息。
type DocumentMeta struct {
	Title   string
	Subject string
	Author  string
	Creator string
}

// PDFDocument 把卡片图片逐页写入一个 PDF，每页大小与卡片一致。
// 非并发安全，调用方需按顺序添加页面。
type PDFDocument struct {
	w      io.Writer
	meta   DocumentMeta
	writer *pdf.PDF
	pages  int
}

// NewPDFDocument 创建写入 w 的 PDF 文档；第一页在首次 AddPage 时创建。
func NewPDFDocument(w io.Writer, meta DocumentMeta) *PDFDocument {
	return &PDFDocument{w: w, meta: meta}
}

// AddPage 追加一页，页面尺寸按 PageDPI 由图片像素换算为毫米。
func (d *PDFDocument) AddPage(img image.Image) error {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("卡片图片尺寸无效：%dx%d", b.Dx(), b.Dy())
	}
	res := canvas.DPI(PageDPI)
	width := float64(b.Dx()) / res.DPMM()
	height := float64(b.Dy()) / res.DPMM()

	if d.writer == nil {
		d.writer = pdf.New(d.w, width, height, nil)
		d.applyMeta()
	} else {
		d.writer.NewPage(width, height)
	}

	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.DrawImage(0, 0, img, res)
	c.RenderTo(d.writer)
	d.pages++
	return nil
}

// Pages 返回已写入的页数。
func (d *PDFDocument) Pages() int { return d.pages }

// Close 结束文档。没有任何页面时返回错误，因为空 PDF 没有意义。
func (d *PDFDocument) Close() error {
	if d.writer == nil {
		return fmt.Errorf("缺少可渲染的页面")
	}
	if err := d.writer.Close(); err != nil {
		return fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return nil
}

func (d *PDFDocument) applyMeta() {
	d.writer.SetInfo(d.meta.Title, d.meta.Subject, "", d.meta.Author, d.meta.Creator)
}
