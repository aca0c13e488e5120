package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image/png"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ByLCY/cardpress/config"
	"github.com/ByLCY/cardpress/fonts"
	"github.com/ByLCY/cardpress/generator"
	"github.com/ByLCY/cardpress/layout"
	"github.com/ByLCY/cardpress/preview"
	canvasrenderer "github.com/ByLCY/cardpress/renderer/canvas"
	"github.com/ByLCY/cardpress/sheet"
)

const usage = `用法: cardpress <命令> [参数]

命令:
  generate  为数据表的每一行生成一张卡片（zip 或 pdf）
  preview   渲染单行预览 PNG，可叠加字段框
  fields    根据数据表表头输出字段文件骨架
  fit       对一段文本做自动适配并输出排版结果

使用 cardpress <命令> -h 查看各命令参数。
`

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "generate":
		err = runGenerate(args, logger)
	case "preview":
		err = runPreview(args, logger)
	case "fields":
		err = runFields(args)
	case "fit":
		err = runFit(args, logger)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "未知命令 %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s 失败: %v", cmd, err)
	}
}

// project 汇总一次命令需要的输入：配置、字段、模板与数据。
type project struct {
	cfg      *config.Config
	card     *layout.Card
	cardDir  string
	template []byte
	table    *sheet.Table
}

func loadProject(configPath, fieldsPath, templatePath, dataPath string) (*project, error) {
	p := &project{cfg: config.Default()}
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		p.cfg = cfg
	}

	if fieldsPath == "" {
		return nil, fmt.Errorf("缺少 -fields")
	}
	card, err := config.LoadCard(fieldsPath)
	if err != nil {
		return nil, err
	}
	p.card = card
	p.cardDir = filepath.Dir(fieldsPath)

	if templatePath == "" && card.Template != "" {
		templatePath = resolvePath(p.cardDir, card.Template)
	}
	if templatePath == "" {
		return nil, fmt.Errorf("缺少 -template，字段文件中也没有指定模板")
	}
	if p.template, err = os.ReadFile(templatePath); err != nil {
		return nil, fmt.Errorf("读取模板失败: %w", err)
	}

	if dataPath != "" {
		if p.table, err = sheet.ReadFile(dataPath); err != nil {
			return nil, fmt.Errorf("读取数据文件失败: %w", err)
		}
	}
	return p, nil
}

// newRenderer 注册内置字体、配置文件中的字体与字段文件声明的字体。
func (p *project) newRenderer(logger *slog.Logger) (*canvasrenderer.Renderer, error) {
	reg := canvasrenderer.NewFontRegistry(logger)
	if err := reg.RegisterBuiltins(); err != nil {
		return nil, err
	}
	for _, f := range p.cfg.Fonts {
		weight, err := layout.ParseWeight(string(f.Bold))
		if err != nil {
			return nil, err
		}
		if err := reg.RegisterFile(f.Family, weight, f.Src); err != nil {
			return nil, err
		}
	}
	if p.card != nil {
		for _, f := range p.card.Fonts {
			if err := reg.RegisterFile(f.Family, f.Weight, resolvePath(p.cardDir, f.Src)); err != nil {
				return nil, err
			}
		}
	}
	reg.SetDefault(p.cfg.DefaultFamily)
	return canvasrenderer.New(reg), nil
}

func resolvePath(dir, src string) string {
	if fonts.IsBuiltin(src) || filepath.IsAbs(src) {
		return src
	}
	return filepath.Join(dir, src)
}

func runGenerate(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	configPath := fs.String("config", "", "配置文件路径（YAML）")
	templatePath := fs.String("template", "", "模板图片路径，默认取字段文件中的 template")
	dataPath := fs.String("data", "", "数据文件路径（.xlsx 或 .csv）")
	fieldsPath := fs.String("fields", "", "字段文件路径（YAML/JSON 或 .cards）")
	output := fs.String("out", "output/cards.zip", "输出文件路径")
	count := fs.Int("count", 0, "只生成前 N 行，0 表示全部")
	format := fs.String("format", "", "输出格式 zip 或 pdf，覆盖配置文件")
	concurrency := fs.Int("concurrency", 0, "并发渲染数，覆盖配置文件")
	fs.Parse(args)

	p, err := loadProject(*configPath, *fieldsPath, *templatePath, *dataPath)
	if err != nil {
		return err
	}
	if p.table == nil {
		return fmt.Errorf("缺少 -data")
	}
	if *format != "" {
		p.cfg.Format = *format
	}
	if *concurrency > 0 {
		p.cfg.Concurrency = *concurrency
	}
	if err := p.cfg.Validate(); err != nil {
		return err
	}
	r, err := p.newRenderer(logger)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(*output), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	out, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("创建输出文件失败: %w", err)
	}
	g := generator.New(r, generator.Options{
		Concurrency: p.cfg.Concurrency,
		Format:      p.cfg.Format,
		JPEGQuality: p.cfg.JPEGQuality,
		Title:       p.card.Name,
		Logger:      logger,
	})
	report, genErr := g.Generate(generator.Job{
		Template: p.template,
		Fields:   p.card.Fields,
		Rows:     p.table.Rows,
		Count:    *count,
	}, out)
	closeErr := out.Close()
	if genErr != nil {
		os.Remove(*output)
		return genErr
	}
	if closeErr != nil {
		return fmt.Errorf("写入输出文件失败: %w", closeErr)
	}
	fmt.Printf("已生成 %d 张卡片（失败 %d 行）：%s\n", report.Rendered, len(report.Failed), *output)
	return nil
}

func runPreview(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	configPath := fs.String("config", "", "配置文件路径（YAML）")
	templatePath := fs.String("template", "", "模板图片路径，默认取字段文件中的 template")
	dataPath := fs.String("data", "", "数据文件路径（.xlsx 或 .csv）")
	fieldsPath := fs.String("fields", "", "字段文件路径（YAML/JSON 或 .cards）")
	output := fs.String("out", "output/preview.png", "PNG 输出路径")
	rowIndex := fs.Int("row", 0, "预览的数据行（从 0 开始）")
	overlay := fs.Bool("overlay", false, "叠加字段框与列名标签")
	selected := fs.Int("selected", -1, "叠加层中选中的字段下标")
	debug := fs.String("debug", "", "排版调试 JSON 输出路径")
	fs.Parse(args)

	p, err := loadProject(*configPath, *fieldsPath, *templatePath, *dataPath)
	if err != nil {
		return err
	}
	row := layout.DataRow{}
	if p.table != nil {
		if *rowIndex < 0 || *rowIndex >= len(p.table.Rows) {
			return fmt.Errorf("行号 %d 超出范围（共 %d 行）", *rowIndex, len(p.table.Rows))
		}
		row = p.table.Rows[*rowIndex]
	}
	tpl, err := generator.DecodeTemplate(p.template)
	if err != nil {
		return err
	}
	r, err := p.newRenderer(logger)
	if err != nil {
		return err
	}

	img, plans, err := preview.Render(r, tpl, p.card.Fields, row, preview.Options{
		Overlay:  *overlay,
		Selected: *selected,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	if *debug != "" {
		if err := writeDebug(plans, *debug); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(*output), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	f, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("创建输出文件失败: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("编码 PNG 失败: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("已生成预览：%s\n", *output)
	return nil
}

func runFields(args []string) error {
	fs := flag.NewFlagSet("fields", flag.ExitOnError)
	dataPath := fs.String("data", "", "数据文件路径（.xlsx 或 .csv）")
	templatePath := fs.String("template", "", "写入字段文件的模板路径")
	fs.Parse(args)

	if *dataPath == "" {
		return fmt.Errorf("缺少 -data")
	}
	table, err := sheet.ReadFile(*dataPath)
	if err != nil {
		return fmt.Errorf("读取数据文件失败: %w", err)
	}
	return config.WriteFields(os.Stdout, *templatePath, table.Fields())
}

func runFit(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("fit", flag.ExitOnError)
	text := fs.String("text", "", "要排版的文本")
	rectStr := fs.String("rect", "", "矩形 x,y,w,h（像素）")
	family := fs.String("family", layout.DefaultFamily, "字族")
	size := fs.Float64("size", 0, "基准字号（px），0 表示按矩形推算")
	lineHeight := fs.Float64("lh", layout.DefaultLineHeight, "行高倍数")
	bold := fs.Bool("bold", false, "使用粗体")
	align := fs.String("align", "center", "水平对齐 left/center/right")
	valign := fs.String("valign", "bottom", "垂直对齐 top/middle/bottom")
	fontPath := fs.String("font", "", "额外加载的字体文件，注册到 -family")
	fs.Parse(args)

	rect, err := layout.ParseRectString(*rectStr)
	if err != nil {
		return err
	}
	spec := layout.StyleSpec{
		FontFamily:        *family,
		FontSize:          *size,
		Alignment:         *align,
		VerticalAlignment: *valign,
		LineHeight:        *lineHeight,
	}
	if *bold {
		spec.Bold = "bold"
	}
	if *size == 0 {
		spec.FontSize = layout.InitialFontSize(rect)
	}
	style, err := layout.NewStyle(spec)
	if err != nil {
		return err
	}

	p := &project{cfg: config.Default()}
	if *fontPath != "" {
		p.cfg.Fonts = append(p.cfg.Fonts, config.FontConfig{Family: *family, Src: *fontPath, Bold: config.Flag(spec.Bold)})
	}
	r, err := p.newRenderer(logger)
	if err != nil {
		return err
	}

	out := struct {
		Suggested float64     `json:"suggestedFontSize"`
		Plan      layout.Plan `json:"plan"`
	}{
		Suggested: layout.SuggestFontSize(layout.NormalizeText(*text), rect, style, r),
		Plan:      layout.PlanBox(layout.NormalizeText(*text), rect, style, r),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeDebug(plans []layout.Plan, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(plans, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
