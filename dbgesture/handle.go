package dbgesture

import (
	"fmt"
	"strings"

	"oss.terrastruct.com/dragblock/lib/geo"
)

const DefaultHandleSize = 14

// Handle identifies one of the nine interaction points of a block.
type Handle string

const (
	TopLeft      Handle = "tl"
	TopMiddle    Handle = "tm"
	TopRight     Handle = "tr"
	MiddleRight  Handle = "mr"
	BottomRight  Handle = "br"
	BottomMiddle Handle = "bm"
	BottomLeft   Handle = "bl"
	MiddleLeft   Handle = "ml"
	Center       Handle = "c"
)

// Handles lists every handle in default drawing order.
var Handles = []Handle{
	TopLeft,
	TopMiddle,
	TopRight,
	MiddleRight,
	BottomRight,
	BottomMiddle,
	BottomLeft,
	MiddleLeft,
	Center,
}

var handleNames = map[Handle]string{
	TopLeft:      "top-left",
	TopMiddle:    "top-middle",
	TopRight:     "top-right",
	MiddleRight:  "middle-right",
	BottomRight:  "bottom-right",
	BottomMiddle: "bottom-middle",
	BottomLeft:   "bottom-left",
	MiddleLeft:   "middle-left",
	Center:       "center",
}

// ParseHandle accepts both the short ("br") and long ("bottom-right") spelling.
func ParseHandle(s string) (Handle, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if _, ok := rules[Handle(s)]; ok {
		return Handle(s), nil
	}
	for h, name := range handleNames {
		if name == s {
			return h, nil
		}
	}
	return "", fmt.Errorf("unknown handle %q", s)
}

func (h Handle) Name() string {
	return handleNames[h]
}

func (h Handle) Family() Family {
	return rules[h].family
}

func (h Handle) Valid() bool {
	_, ok := rules[h]
	return ok
}

// Place locates the handle relative to the top left of a w by h block.
func (h Handle) Place(w, hgt, size float64) *geo.Point {
	r, ok := rules[h]
	if !ok {
		return geo.NewPoint(0, 0)
	}
	return r.place(w, hgt, size)
}

// Family groups handles that share lifecycle callbacks.
type Family int

const (
	Resize Family = iota
	Drag
)

func (f Family) String() string {
	switch f {
	case Resize:
		return "resize"
	case Drag:
		return "drag"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// edge says how a handle moves the block along one axis.
type edge int

const (
	// edgeFixed leaves the axis alone.
	edgeFixed edge = iota
	// edgeLeading moves the left (or top) edge, keeping the opposite edge in place.
	edgeLeading
	// edgeTrailing moves the right (or bottom) edge.
	edgeTrailing
	// edgeTranslate moves both edges, size unchanged.
	edgeTranslate
)

type rule struct {
	family     Family
	horizontal edge
	vertical   edge
	place      func(w, h, s float64) *geo.Point
}

var rules = map[Handle]rule{
	TopLeft: {
		family:     Resize,
		horizontal: edgeLeading,
		vertical:   edgeLeading,
		place: func(w, h, s float64) *geo.Point {
			return geo.NewPoint(0, 0)
		},
	},
	TopMiddle: {
		family:   Resize,
		vertical: edgeLeading,
		place: func(w, h, s float64) *geo.Point {
			return geo.NewPoint(w/2-s/2, 0)
		},
	},
	TopRight: {
		family:     Resize,
		horizontal: edgeTrailing,
		vertical:   edgeLeading,
		place: func(w, h, s float64) *geo.Point {
			return geo.NewPoint(w-s, 0)
		},
	},
	MiddleRight: {
		family:     Resize,
		horizontal: edgeTrailing,
		place: func(w, h, s float64) *geo.Point {
			return geo.NewPoint(w-s, h/2-s/2)
		},
	},
	BottomRight: {
		family:     Resize,
		horizontal: edgeTrailing,
		vertical:   edgeTrailing,
		place: func(w, h, s float64) *geo.Point {
			return geo.NewPoint(w-s, h-s)
		},
	},
	BottomMiddle: {
		family:   Resize,
		vertical: edgeTrailing,
		place: func(w, h, s float64) *geo.Point {
			return geo.NewPoint(w/2-s/2, h-s)
		},
	},
	BottomLeft: {
		family:     Resize,
		horizontal: edgeLeading,
		vertical:   edgeTrailing,
		place: func(w, h, s float64) *geo.Point {
			return geo.NewPoint(0, h-s)
		},
	},
	MiddleLeft: {
		family:     Resize,
		horizontal: edgeLeading,
		place: func(w, h, s float64) *geo.Point {
			return geo.NewPoint(0, h/2-s/2)
		},
	},
	Center: {
		family:     Drag,
		horizontal: edgeTranslate,
		vertical:   edgeTranslate,
		place: func(w, h, s float64) *geo.Point {
			return geo.NewPoint(w/2-s/2, h/2-s/2)
		},
	},
}
