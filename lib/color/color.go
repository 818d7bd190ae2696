// Package color resolves user supplied CSS colors for the terminal front end.
package color

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mazznoer/csscolorparser"
)

// Parse accepts anything CSS does: hex, rgb(), hsl() and named colors.
func Parse(colorString string) (colorful.Color, error) {
	c, err := csscolorparser.Parse(colorString)
	if err != nil {
		return colorful.Color{}, err
	}
	return colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped(), nil
}

func Darken(c colorful.Color) colorful.Color {
	h, s, l := c.Hsl()
	// decrease luminance by 10%
	return colorful.Hsl(h, s, l-.1).Clamped()
}

// Highlight blends c toward accent. Used to mark the selected block.
func Highlight(c, accent colorful.Color) colorful.Color {
	return c.BlendLab(accent, .6).Clamped()
}

func LuminanceCategory(c colorful.Color) string {
	l := Luminance(c)

	switch {
	case l >= .88:
		return "bright"
	case l >= .55:
		return "normal"
	case l >= .30:
		return "dark"
	default:
		return "darker"
	}
}

func Luminance(c colorful.Color) float64 {
	return 0.299*c.R + 0.587*c.G + 0.114*c.B
}

// Contrast picks black or white, whichever reads better on c.
func Contrast(c colorful.Color) colorful.Color {
	switch LuminanceCategory(c) {
	case "bright", "normal":
		return colorful.Color{}
	default:
		return colorful.Color{R: 1, G: 1, B: 1}
	}
}
