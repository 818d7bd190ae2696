// Package dbstate holds the geometric state of a single block and the constraints
// its gestures are evaluated against.
//
// State does no validation of its own. Whatever commits to it (dbgesture) is
// responsible for only writing rectangles that satisfy Constraints.Satisfied.
package dbstate

import (
	"fmt"

	"oss.terrastruct.com/dragblock/lib/geo"
)

type Axis string

const (
	AxisX   Axis = "x"
	AxisY   Axis = "y"
	AxisAll Axis = "all"
)

func ParseAxis(s string) (Axis, error) {
	switch Axis(s) {
	case AxisX, AxisY, AxisAll:
		return Axis(s), nil
	case "":
		return AxisAll, nil
	}
	return "", fmt.Errorf(`unknown axis %q, expected one of "x", "y" or "all"`, s)
}

// Limitation bounds where the block's edges may go. MaxRight and MaxBottom are edges,
// not a width and height.
type Limitation struct {
	MinX      float64 `json:"minX"`
	MinY      float64 `json:"minY"`
	MaxRight  float64 `json:"maxRight"`
	MaxBottom float64 `json:"maxBottom"`
}

func (l Limitation) Box() *geo.Box {
	return geo.NewBox(geo.NewPoint(l.MinX, l.MinY), l.MaxRight-l.MinX, l.MaxBottom-l.MinY)
}

type Constraints struct {
	MinW       float64
	MinH       float64
	Limitation Limitation
	Axis       Axis
	Draggable  bool
	Resizable  bool
}

// Horizontal reports whether x and w may change.
func (c Constraints) Horizontal() bool {
	return c.Axis != AxisY
}

// Vertical reports whether y and h may change.
func (c Constraints) Vertical() bool {
	return c.Axis != AxisX
}

// Satisfied reports whether r is a valid resting state under c. An axis excluded by
// the axis lock is only held to the minimum size.
func (c Constraints) Satisfied(r Rect) bool {
	if r.W < c.MinW || r.H < c.MinH {
		return false
	}
	if c.Horizontal() && (r.X < c.Limitation.MinX || r.Right() > c.Limitation.MaxRight) {
		return false
	}
	if c.Vertical() && (r.Y < c.Limitation.MinY || r.Bottom() > c.Limitation.MaxBottom) {
		return false
	}
	return true
}

type Rect struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	W        float64 `json:"w"`
	H        float64 `json:"h"`
	Selected bool    `json:"selected"`
}

func (r Rect) Position() geo.Point {
	return geo.Point{X: r.X, Y: r.Y}
}

func (r Rect) Right() float64 {
	return r.X + r.W
}

func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

func (r Rect) Box() *geo.Box {
	return geo.NewBox(geo.NewPoint(r.X, r.Y), r.W, r.H)
}

// SameGeometry compares position and size, ignoring selection.
func (r Rect) SameGeometry(other Rect) bool {
	return r.X == other.X && r.Y == other.Y && r.W == other.W && r.H == other.H
}

func (r Rect) String() string {
	return fmt.Sprintf("x=%v y=%v w=%v h=%v selected=%v", r.X, r.Y, r.W, r.H, r.Selected)
}

// Observer is called synchronously after every write that changed the state.
type Observer func(prev, next Rect)

type State struct {
	r         Rect
	observers []Observer
}

// New floors the initial size to the minimums. Nothing else is checked.
func New(initial Rect, minW, minH float64) *State {
	if initial.W < minW {
		initial.W = minW
	}
	if initial.H < minH {
		initial.H = minH
	}
	initial.Selected = false
	return &State{r: initial}
}

func (s *State) Get() Rect {
	return s.r
}

// Set replaces the whole state.
func (s *State) Set(r Rect) {
	prev := s.r
	if prev == r {
		return
	}
	s.r = r
	for _, o := range s.observers {
		o(prev, r)
	}
}

func (s *State) SetSelected(selected bool) {
	r := s.r
	r.Selected = selected
	s.Set(r)
}

func (s *State) Observe(o Observer) {
	s.observers = append(s.observers, o)
}
