package canvasrenderer

import (
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/cardpress/fonts"
	"github.com/ByLCY/cardpress/layout"
)

// FontRegistry 持有已注册的字体族，显式创建后注入渲染器。
// 每个 (字族, 字重) 只加载一次，重复注册直接忽略；并发安全。
type FontRegistry struct {
	logger *slog.Logger

	mu            sync.RWMutex
	families      map[string]*familyEntry // 小写字族名
	defaultFamily string

	faceMu sync.Mutex
	faces  map[string]*canvas.FontFace

	warned sync.Map
}

type familyEntry struct {
	name   string
	family *canvas.FontFamily
	styles map[canvas.FontStyle]bool
}

// NewFontRegistry 创建一个空注册表。logger 为空时使用 slog.Default()。
func NewFontRegistry(logger *slog.Logger) *FontRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &FontRegistry{
		logger:        logger,
		families:      map[string]*familyEntry{},
		faces:         map[string]*canvas.FontFace{},
		defaultFamily: layout.DefaultFamily,
	}
}

// SetDefault 设置找不到字族时使用的默认字族。
func (fr *FontRegistry) SetDefault(family string) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	if family != "" {
		fr.defaultFamily = family
	}
}

// Register 加载一份字体数据到指定字族与字重。
func (fr *FontRegistry) Register(family string, weight layout.Weight, data []byte) error {
	family = strings.TrimSpace(family)
	if family == "" {
		return fmt.Errorf("字体缺少字族名")
	}
	style := fontStyle(weight)
	key := strings.ToLower(family)

	fr.mu.Lock()
	defer fr.mu.Unlock()
	entry, ok := fr.families[key]
	if ok && entry.styles[style] {
		return nil
	}
	if !ok {
		entry = &familyEntry{name: family, family: canvas.NewFontFamily(family), styles: map[canvas.FontStyle]bool{}}
	}
	if err := entry.family.LoadFont(data, 0, style); err != nil {
		return fmt.Errorf("加载字体 %s（%s）失败: %w", family, weight, err)
	}
	entry.styles[style] = true
	fr.families[key] = entry
	return nil
}

// RegisterFile 从文件或内置资源（builtin:名称）加载字体。
func (fr *FontRegistry) RegisterFile(family string, weight layout.Weight, src string) error {
	var (
		data []byte
		err  error
	)
	if fonts.IsBuiltin(src) {
		data, err = fonts.Load(src)
	} else {
		data, err = os.ReadFile(src)
	}
	if err != nil {
		return fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return fr.Register(family, weight, data)
}

// RegisterBuiltins 注册全部内置字体。
func (fr *FontRegistry) RegisterBuiltins() error {
	for _, b := range fonts.Builtins() {
		weight := layout.WeightNormal
		if b.Bold {
			weight = layout.WeightBold
		}
		if err := fr.Register(b.Family, weight, b.Data); err != nil {
			return err
		}
	}
	return nil
}

// Families 返回已注册的字族名。
func (fr *FontRegistry) Families() []string {
	fr.mu.RLock()
	defer fr.mu.RUnlock()
	out := make([]string, 0, len(fr.families))
	for _, e := range fr.families {
		out = append(out, e.name)
	}
	return out
}

// Has 报告字族是否已注册（不区分大小写）。
func (fr *FontRegistry) Has(family string) bool {
	fr.mu.RLock()
	defer fr.mu.RUnlock()
	_, ok := fr.families[strings.ToLower(strings.TrimSpace(family))]
	return ok
}

// Resolve 返回字族与字重对应的字体族和样式。
// 未注册的字族退回默认字族；请求粗体但只有常规体时使用常规体。两种情况各记录一次警告。
func (fr *FontRegistry) Resolve(family string, weight layout.Weight) (*canvas.FontFamily, canvas.FontStyle, error) {
	fr.mu.RLock()
	defer fr.mu.RUnlock()

	entry, ok := fr.families[strings.ToLower(strings.TrimSpace(family))]
	if !ok {
		entry, ok = fr.families[strings.ToLower(fr.defaultFamily)]
		if !ok {
			return nil, canvas.FontRegular, fmt.Errorf("字体 %s 未注册，且默认字体 %s 不可用", family, fr.defaultFamily)
		}
		fr.warnOnce("family:"+family, "字体未注册，使用默认字体", "family", family, "fallback", entry.name)
	}

	style := fontStyle(weight)
	if entry.styles[style] {
		return entry.family, style, nil
	}
	for s := range entry.styles {
		fr.warnOnce("style:"+entry.name+":"+weight.String(), "字重不可用，使用已加载的字重", "family", entry.name, "weight", weight.String())
		return entry.family, s, nil
	}
	return nil, canvas.FontRegular, fmt.Errorf("字体 %s 没有可用的字重", entry.name)
}

// Face 返回给定字体描述与颜色的字体面，字号由像素换算为 pt（1px = 1mm）。
func (fr *FontRegistry) Face(font layout.FontSpec, col layout.Color) (*canvas.FontFace, error) {
	key := layout.FontString(font) + " " + col.Hex()
	fr.faceMu.Lock()
	defer fr.faceMu.Unlock()
	if face, ok := fr.faces[key]; ok {
		return face, nil
	}
	family, style, err := fr.Resolve(font.Family, font.Weight)
	if err != nil {
		return nil, err
	}
	face := family.Face(layout.PxToCanvasPt(font.Size), colorFromLayout(col), style, canvas.FontNormal)
	fr.faces[key] = face
	return face, nil
}

func (fr *FontRegistry) warnOnce(key, msg string, args ...any) {
	if _, loaded := fr.warned.LoadOrStore(key, true); loaded {
		return
	}
	fr.logger.Warn(msg, args...)
}

func fontStyle(w layout.Weight) canvas.FontStyle {
	if w == layout.WeightBold {
		return canvas.FontBold
	}
	return canvas.FontRegular
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}
