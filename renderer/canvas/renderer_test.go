package canvasrenderer

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"math"
	"testing"

	"github.com/ByLCY/cardpress/fonts"
	"github.com/ByLCY/cardpress/layout"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	reg := NewFontRegistry(nil)
	if err := reg.RegisterBuiltins(); err != nil {
		t.Fatalf("register builtins: %v", err)
	}
	return New(reg)
}

func whiteTemplate(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	return img
}

func TestMeasureDeterministicAndScales(t *testing.T) {
	r := newTestRenderer(t)
	font := layout.FontSpec{Family: "Go", Size: 16}
	a := r.Measure("Hello World", font)
	b := r.Measure("Hello World", font)
	if a <= 0 || a != b {
		t.Fatalf("measure not deterministic: %g vs %g", a, b)
	}
	font.Size = 32
	double := r.Measure("Hello World", font)
	if diff := math.Abs(double-2*a) / (2 * a); diff > 0.01 {
		t.Fatalf("width should scale with size: 16px=%g 32px=%g", a, double)
	}
	if got := r.Measure("", font); got != 0 {
		t.Fatalf("empty text should measure 0, got %g", got)
	}
}

func TestUnknownFamilyFallsBackToDefault(t *testing.T) {
	r := newTestRenderer(t)
	want := r.Measure("Fallback", layout.FontSpec{Family: "Go", Size: 20})
	got := r.Measure("Fallback", layout.FontSpec{Family: "Sree Krushnadevaraya", Size: 20})
	if got != want {
		t.Fatalf("unknown family should measure with default: got %g want %g", got, want)
	}
}

func TestBoldFallsBackToRegular(t *testing.T) {
	reg := NewFontRegistry(nil)
	data, err := fonts.Load("go-regular")
	if err != nil {
		t.Fatalf("load font: %v", err)
	}
	if err := reg.Register("Go", layout.WeightNormal, data); err != nil {
		t.Fatalf("register: %v", err)
	}
	r := New(reg)
	regular := r.Measure("Weight", layout.FontSpec{Family: "Go", Size: 16})
	bold := r.Measure("Weight", layout.FontSpec{Family: "Go", Size: 16, Weight: layout.WeightBold})
	if regular != bold {
		t.Fatalf("bold without bold face should use regular: %g vs %g", regular, bold)
	}
}

func TestRegisterIsLoadOnce(t *testing.T) {
	reg := NewFontRegistry(nil)
	if err := reg.RegisterBuiltins(); err != nil {
		t.Fatalf("register builtins: %v", err)
	}
	// 已加载的 (字族, 字重) 不会再次解析数据
	if err := reg.Register("go", layout.WeightNormal, []byte("not a font")); err != nil {
		t.Fatalf("repeated registration should be a no-op, got %v", err)
	}
	if err := reg.Register("Broken", layout.WeightNormal, []byte("not a font")); err == nil {
		t.Fatalf("invalid font data should fail")
	}
	if !reg.Has("latin modern roman") || reg.Has("Broken") {
		t.Fatalf("unexpected registry contents: %v", reg.Families())
	}
}

func TestResolveWithoutDefaultFails(t *testing.T) {
	reg := NewFontRegistry(nil)
	if _, _, err := reg.Resolve("Go", layout.WeightNormal); err == nil {
		t.Fatalf("empty registry should not resolve")
	}
	r := New(reg)
	if got := r.Measure("x", layout.FontSpec{Family: "Go", Size: 16}); got != 0 {
		t.Fatalf("unresolvable font should measure 0, got %g", got)
	}
}

func TestRenderCardPaintsInsideRect(t *testing.T) {
	r := newTestRenderer(t)
	tpl := whiteTemplate(240, 120)
	orig := append([]uint8(nil), tpl.Pix...)
	rect := layout.Rect{X: 20, Y: 20, Width: 200, Height: 80}
	fields := []layout.Field{
		{Column: "Name", Rect: &rect, Style: layout.DefaultStyle()},
		{Column: "Unplaced", Style: layout.DefaultStyle()},
	}
	row := layout.DataRow{"Name": "Hello World", "Unplaced": "ignored"}

	out, plans, err := r.RenderCard(tpl, fields, row)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out.Bounds() != tpl.Bounds() {
		t.Fatalf("output size %v, want %v", out.Bounds(), tpl.Bounds())
	}
	if !bytes.Equal(tpl.Pix, orig) {
		t.Fatalf("template must not be modified")
	}
	if len(plans) != 1 || plans[0].Column != "Name" || len(plans[0].Lines) != 1 {
		t.Fatalf("unexpected plans: %+v", plans)
	}

	painted := 0
	b := out.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := out.RGBAAt(x, y)
			if c.R == 255 && c.G == 255 && c.B == 255 {
				continue
			}
			painted++
			if x < int(rect.X)-1 || x > int(rect.X+rect.Width)+1 || y < int(rect.Y)-1 || y > int(rect.Y+rect.Height)+1 {
				t.Fatalf("pixel (%d,%d) painted outside field rect", x, y)
			}
		}
	}
	if painted == 0 {
		t.Fatalf("expected text pixels to be painted")
	}
}

func TestRenderCardBlankTextLeavesTemplate(t *testing.T) {
	r := newTestRenderer(t)
	tpl := whiteTemplate(100, 50)
	rect := layout.Rect{Width: 100, Height: 50}
	fields := []layout.Field{{Column: "A", Rect: &rect, Style: layout.DefaultStyle()}}
	for _, v := range []string{"", "   "} {
		out, plans, err := r.RenderCard(tpl, fields, layout.DataRow{"A": v})
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		if len(plans) != 0 || !bytes.Equal(out.Pix, tpl.Pix) {
			t.Fatalf("blank text %q should paint nothing", v)
		}
	}
}

func TestRenderCardDeterministic(t *testing.T) {
	r := newTestRenderer(t)
	tpl := whiteTemplate(160, 90)
	rect := layout.Rect{X: 5, Y: 5, Width: 150, Height: 80}
	style := layout.MustStyle(layout.StyleSpec{Color: "#1a1a1a", Bold: "true", VerticalAlignment: "middle"})
	fields := []layout.Field{{Column: "T", Rect: &rect, Style: style}}
	row := layout.DataRow{"T": "Supercalifragilisticexpialidocious and more"}

	a, pa, err := r.RenderCard(tpl, fields, row)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	b, pb, err := r.RenderCard(tpl, fields, row)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Fatalf("renders differ")
	}
	if pa[0].Result.FontSize != pb[0].Result.FontSize || len(pa[0].Lines) != len(pb[0].Lines) {
		t.Fatalf("plans differ: %+v vs %+v", pa, pb)
	}
}

func TestRenderCardRejectsEmptyTemplate(t *testing.T) {
	r := newTestRenderer(t)
	if _, _, err := r.RenderCard(nil, nil, nil); err == nil {
		t.Fatalf("nil template should fail")
	}
	if _, _, err := r.RenderCard(image.NewRGBA(image.Rect(0, 0, 0, 0)), nil, nil); err == nil {
		t.Fatalf("empty template should fail")
	}
}

func TestPDFDocument(t *testing.T) {
	var buf bytes.Buffer
	doc := NewPDFDocument(&buf, DocumentMeta{Title: "cards", Creator: "cardpress"})
	if err := doc.Close(); err == nil {
		t.Fatalf("closing an empty document should fail")
	}
	doc = NewPDFDocument(&buf, DocumentMeta{Title: "cards"})
	for i := 0; i < 2; i++ {
		if err := doc.AddPage(whiteTemplate(96, 48)); err != nil {
			t.Fatalf("add page: %v", err)
		}
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if doc.Pages() != 2 || !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("unexpected pdf output: pages=%d prefix=%q", doc.Pages(), buf.Bytes()[:8])
	}
}

func TestFaceSizeMatchesPixels(t *testing.T) {
	r := newTestRenderer(t)
	face, err := r.Fonts().Face(layout.FontSpec{Family: "Go", Size: 16}, layout.Color{})
	if err != nil {
		t.Fatalf("face: %v", err)
	}
	if math.Abs(face.Size-16) > 1e-9 {
		t.Fatalf("a 16px face should be 16 canvas mm, got %.9f", face.Size)
	}
}
