package dbgesture

import (
	"oss.terrastruct.com/dragblock/dbstate"
	"oss.terrastruct.com/dragblock/lib/geo"
)

// Result is the outcome of applying one delta. A rejected axis kept its previous
// position and size.
type Result struct {
	Rect      dbstate.Rect
	Gated     bool
	RejectedX bool
	RejectedY bool
}

func (res Result) Rejected() bool {
	return res.RejectedX || res.RejectedY
}

// Apply computes the rectangle that follows r when handle h is dragged by d.
// It is pure: nothing is committed anywhere.
//
// Each axis is resolved on its own. A proposal that would shrink the block under its
// minimum size or push a moving edge outside the limitation is rejected whole for that
// axis, never truncated.
func Apply(h Handle, r dbstate.Rect, c dbstate.Constraints, d geo.Vector) Result {
	ru, ok := rules[h]
	if !ok || !enabled(ru.family, c) {
		return Result{Rect: r, Gated: true}
	}

	res := Result{Rect: r}
	if ru.horizontal != edgeFixed && c.Horizontal() {
		x, w, ok := ru.horizontal.resolve(r.X, r.W, d.X(), c.MinW, c.Limitation.MinX, c.Limitation.MaxRight)
		if ok {
			res.Rect.X, res.Rect.W = x, w
		} else {
			res.RejectedX = true
		}
	}
	if ru.vertical != edgeFixed && c.Vertical() {
		y, hgt, ok := ru.vertical.resolve(r.Y, r.H, d.Y(), c.MinH, c.Limitation.MinY, c.Limitation.MaxBottom)
		if ok {
			res.Rect.Y, res.Rect.H = y, hgt
		} else {
			res.RejectedY = true
		}
	}
	return res
}

func enabled(f Family, c dbstate.Constraints) bool {
	switch f {
	case Drag:
		return c.Draggable
	default:
		return c.Resizable
	}
}

// resolve returns the next position and size along one axis.
func (e edge) resolve(pos, size, d, minSize, minPos, maxEdge float64) (float64, float64, bool) {
	switch e {
	case edgeLeading:
		// Same as pos+size-(pos+d) but exact when d is 0.
		np, ns := pos+d, size-d
		if ns < minSize || np < minPos {
			return pos, size, false
		}
		return np, ns, true
	case edgeTrailing:
		ns := size + d
		if ns < minSize || pos+ns > maxEdge {
			return pos, size, false
		}
		return pos, ns, true
	case edgeTranslate:
		np := pos + d
		if np < minPos || np+size > maxEdge {
			return pos, size, false
		}
		return np, size, true
	}
	return pos, size, true
}
