package dbterm

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"oss.terrastruct.com/dragblock/lib/color"
)

// DefaultTheme is background, body, border, handle and accent, in that order.
const DefaultTheme = "#1e1e2e,#45475a,#cdd6f4,#f9e2af,#f38ba8"

type Theme struct {
	Background colorful.Color
	Body       colorful.Color
	Border     colorful.Color
	Handle     colorful.Color
	Accent     colorful.Color
}

// ParseTheme reads up to five comma separated CSS colors. Missing or empty entries
// keep the default.
func ParseTheme(s string) (Theme, error) {
	t, err := parseTheme(DefaultTheme, Theme{})
	if err != nil {
		return Theme{}, err
	}
	return parseTheme(s, t)
}

func parseTheme(s string, t Theme) (Theme, error) {
	if strings.TrimSpace(s) == "" {
		return t, nil
	}
	slots := []*colorful.Color{&t.Background, &t.Body, &t.Border, &t.Handle, &t.Accent}
	parts := strings.Split(s, ",")
	if len(parts) > len(slots) {
		return Theme{}, fmt.Errorf("theme takes at most %d colors, got %d", len(slots), len(parts))
	}
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		c, err := color.Parse(p)
		if err != nil {
			return Theme{}, fmt.Errorf("theme color %d %q: %w", i+1, p, err)
		}
		*slots[i] = c
	}
	return t, nil
}

// body is the fill of the block, highlighted while a gesture is in progress.
func (t Theme) body(selected bool) colorful.Color {
	if selected {
		return color.Highlight(t.Body, t.Accent)
	}
	return t.Body
}

func (t Theme) style(fg, bg colorful.Color) tcell.Style {
	return tcell.StyleDefault.Foreground(toTcell(fg)).Background(toTcell(bg))
}

func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
