package render

import (
	"github.com/matzehuels/orgtower/pkg/contact"
)

// Palette is the fill, stroke and text colour of a box.
type Palette struct {
	Fill   string
	Stroke string
	Text   string
}

var stancePalettes = map[contact.Stance]Palette{
	contact.StanceSupportive: {Fill: "#e7f5ec", Stroke: "#2f8f55", Text: "#143d25"},
	contact.StanceNeutral:    {Fill: "#fdf6e3", Stroke: "#b58900", Text: "#4d3a00"},
	contact.StanceResistant:  {Fill: "#fbeaea", Stroke: "#c0392b", Text: "#511812"},
	contact.StanceUnknown:    {Fill: "#f2f2f2", Stroke: "#8a8a8a", Text: "#333333"},
}

// RootPalette is used for the synthetic root when it is drawn.
var RootPalette = Palette{Fill: "#ffffff", Stroke: "#bbbbbb", Text: "#777777"}

// StancePalette returns the colours for a stance. Unrecognized stances use
// the Unknown palette.
func StancePalette(s contact.Stance) Palette {
	if p, ok := stancePalettes[s]; ok {
		return p
	}
	return stancePalettes[contact.StanceUnknown]
}

// StrokeWidth returns the outline width for a power level.
func StrokeWidth(p contact.PowerLevel) float64 {
	switch p {
	case contact.PowerHigh:
		return 3
	case contact.PowerLow:
		return 1
	default:
		return 2
	}
}

const (
	fontCharWidth = 0.55
	fontSizeMin   = 8.0
	fontSizeMax   = 16.0
)

// FontSize returns the largest size, within bounds, at which a label of n
// characters fits in width.
func FontSize(width float64, n int) float64 {
	n = max(1, n)
	return max(fontSizeMin, min(fontSizeMax, width/(float64(n)*fontCharWidth)))
}

// Truncate shortens label so it fits in width at fontSize, ending it with
// "..". Labels are cut on rune boundaries.
func Truncate(label string, width, fontSize float64) string {
	maxChars := max(3, int(width/(fontSize*fontCharWidth)))
	runes := []rune(label)
	if len(runes) <= maxChars {
		return label
	}
	return string(runes[:maxChars-2]) + ".."
}
