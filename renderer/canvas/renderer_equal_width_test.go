package canvasrenderer

import (
	"reflect"
	"testing"

	"github.com/ByLCY/cardpress/layout"
)

// 当第一行宽度与可用宽度恰好相等且后面紧跟换行时，不应产生额外的空行。
func TestNoBlankLineWhenEqualWidthThenNewline(t *testing.T) {
	r := newTestRenderer(t)
	font := layout.FontSpec{Family: "Go", Size: 16}

	first := "SAMPLE-A"
	limit := r.Measure(first, font)
	if limit <= 0 {
		t.Fatalf("invalid measured width: %g", limit)
	}

	lines := layout.BreakLines(first+"\n"+"SAMPLE-B", limit, font, r)
	want := []string{"SAMPLE-A", "SAMPLE-B"}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("expected %q, got %q", want, lines)
	}
}

// 无空格的长串按真实字体逐字符折行后，每行都不超过可用宽度。
func TestBreakLinesWidthLimitWithRealFont(t *testing.T) {
	r := newTestRenderer(t)
	font := layout.FontSpec{Family: "Latin Modern Roman", Size: 16}
	limit := 60.0
	lines := layout.BreakLines("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", limit, font, r)
	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %q", lines)
	}
	for i, ln := range lines {
		if w := r.Measure(ln, font); w-limit > 1e-6 {
			t.Fatalf("line %d width exceeds limit: width=%g limit=%g", i, w, limit)
		}
	}
}
