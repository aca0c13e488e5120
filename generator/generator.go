package generator

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/cardpress/config"
	"github.com/ByLCY/cardpress/layout"
	"github.com/ByLCY/cardpress/renderer"
	canvasrenderer "github.com/ByLCY/cardpress/renderer/canvas"
)

// ErrTemplate 表示模板图片无法解码，整批生成在处理任何一行之前终止。
var ErrTemplate = errors.New("模板图片无法解码")

// Job 描述一次批量生成。
type Job struct {
	Template []byte
	Fields   []layout.Field
	Rows     []layout.DataRow
	// Count 大于 0 且不超过行数时只处理前 Count 行，否则处理全部行。
	Count int
}

// Options 控制批量生成；零值字段取默认值。
type Options struct {
	Concurrency int
	Format      string // config.FormatZip 或 config.FormatPDF
	JPEGQuality int
	Title       string
	Logger      *slog.Logger
}

// RowError 记录单行渲染失败。
type RowError struct {
	Row int // 从 0 开始
	Err error
}

func (e RowError) Error() string { return fmt.Sprintf("第 %d 行: %v", e.Row+1, e.Err) }

// Report 汇总一次批量生成的结果。
type Report struct {
	Total    int
	Rendered int
	Failed   []RowError
	Elapsed  time.Duration
}

// Generator 以有界并发为每一行数据渲染一张卡片。
type Generator struct {
	r    renderer.Renderer
	opts Options
}

// New 创建生成器；renderer 与预览共用同一实现。
func New(r renderer.Renderer, opts Options) *Generator {
	if opts.Concurrency <= 0 {
		opts.Concurrency = config.DefaultConcurrency
	}
	if opts.JPEGQuality <= 0 {
		opts.JPEGQuality = config.DefaultJPEGQuality
	}
	if opts.Format == "" {
		opts.Format = config.FormatZip
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Generator{r: r, opts: opts}
}

// DecodeTemplate 解码模板图片（jpeg/png/gif/bmp/webp）。
func DecodeTemplate(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	return img, nil
}

// Generate 渲染全部行并写入 w。单行失败只记录并跳过；模板解码失败与归档写入失败是致命错误。
// 生成开始后不支持中途取消，已开始的行总会完成。
func (g *Generator) Generate(job Job, w io.Writer) (Report, error) {
	start := time.Now()
	tpl, err := DecodeTemplate(job.Template)
	if err != nil {
		return Report{}, err
	}

	rows := job.Rows
	if job.Count > 0 && job.Count < len(rows) {
		rows = rows[:job.Count]
	}

	var archive Archive
	switch g.opts.Format {
	case config.FormatZip:
		archive = newZipArchive(w, g.opts.JPEGQuality)
	case config.FormatPDF:
		archive = newPDFArchive(w, canvasrenderer.DocumentMeta{Title: g.opts.Title, Creator: "cardpress"}, g.opts.Concurrency, tpl.Bounds())
	default:
		return Report{}, fmt.Errorf("不支持的输出格式：%s", g.opts.Format)
	}

	results := make([]error, len(rows))
	var eg errgroup.Group
	eg.SetLimit(g.opts.Concurrency)
	for i, row := range rows {
		eg.Go(func() error {
			img, err := g.renderRow(tpl, job.Fields, row)
			if err != nil {
				results[i] = err
				g.opts.Logger.Warn("卡片渲染失败，已跳过", "row", i+1, "err", err)
				return archive.Skip(i)
			}
			return archive.Add(i, img)
		})
	}
	waitErr := eg.Wait()
	closeErr := archive.Close()

	report := Report{Total: len(rows), Elapsed: time.Since(start)}
	for i, err := range results {
		if err != nil {
			report.Failed = append(report.Failed, RowError{Row: i, Err: err})
		}
	}
	report.Rendered = report.Total - len(report.Failed)
	if waitErr != nil {
		return report, fmt.Errorf("写入归档失败: %w", waitErr)
	}
	if closeErr != nil {
		return report, fmt.Errorf("写入归档失败: %w", closeErr)
	}
	if report.Rendered == 0 {
		g.opts.Logger.Warn("没有生成任何卡片", "rows", report.Total, "format", g.opts.Format)
	}
	g.opts.Logger.Info("批量生成完成", "rows", report.Total, "rendered", report.Rendered, "failed", len(report.Failed), "elapsed", report.Elapsed)
	return report, nil
}

func (g *Generator) renderRow(tpl image.Image, fields []layout.Field, row layout.DataRow) (img image.Image, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("渲染时发生 panic: %v", p)
		}
	}()
	out, _, err := g.r.RenderCard(tpl, fields, row)
	if err != nil {
		return nil, err
	}
	return out, nil
}
