package layout

import (
	"strconv"
	"strings"
)

// This file defines unit-safe helpers for font sizes and canvas conversions.

// Unit represents the original unit of a length value as written by the author.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers, read as pixels
	UnitPX               // template pixels
	UnitPT               // points (1pt = 4/3 px)
)

// Conversion constants. The canvas renderer maps one template pixel onto one
// canvas millimetre, so pixel sizes reach the font system as points via MmToPt.
const (
	PtToMm = 25.4 / 72.0
	MmToPt = 1.0 / PtToMm
	PtToPx = 96.0 / 72.0
	PxToPt = 72.0 / 96.0
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPX:
		return "px"
	case UnitPT:
		return "pt"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// ToPX converts this length to template pixels.
func (l Length) ToPX() float64 {
	if l.Unit == UnitPT {
		return l.Value * PtToPx
	}
	return l.Value
}

// ParseRawLengthStr parses a length string such as "24", "24px" or "18pt".
// ok is false when the numeric part is not a number.
func ParseRawLengthStr(value string) (Length, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, false
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"pt", UnitPT}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}

// ParseLineHeight parses a multiplier written as "1.2" or "1.2x".
func ParseLineHeight(value string) (float64, bool) {
	v := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(value)), "x")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// PxToCanvasPt converts a pixel font size into the point size handed to the canvas
// font system, given one pixel per canvas millimetre.
func PxToCanvasPt(px float64) float64 { return px * MmToPt }

func formatNumber(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
