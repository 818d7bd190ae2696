package dbgesture

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"oss.terrastruct.com/dragblock/dbstate"
	"oss.terrastruct.com/dragblock/lib/geo"
)

func testConstraints() dbstate.Constraints {
	return dbstate.Constraints{
		MinW:       50,
		MinH:       50,
		Limitation: dbstate.Limitation{MinX: 0, MinY: 0, MaxRight: 300, MaxBottom: 300},
		Axis:       dbstate.AxisAll,
		Draggable:  true,
		Resizable:  true,
	}
}

func TestApply(t *testing.T) {
	t.Parallel()

	mid := dbstate.Rect{X: 100, Y: 100, W: 100, H: 100}

	tca := []struct {
		name      string
		handle    Handle
		delta     geo.Vector
		exp       dbstate.Rect
		rejectedX bool
		rejectedY bool
	}{
		{name: "tl_grow", handle: TopLeft, delta: geo.NewVector(-10, -20), exp: dbstate.Rect{X: 90, Y: 80, W: 110, H: 120}},
		{name: "tl_min_width", handle: TopLeft, delta: geo.NewVector(60, 0), exp: mid, rejectedX: true},
		{name: "tl_min_height_only", handle: TopLeft, delta: geo.NewVector(10, 60), exp: dbstate.Rect{X: 110, Y: 100, W: 90, H: 100}, rejectedY: true},
		{name: "tm", handle: TopMiddle, delta: geo.NewVector(5, -30), exp: dbstate.Rect{X: 100, Y: 70, W: 100, H: 130}},
		{name: "tm_limit", handle: TopMiddle, delta: geo.NewVector(0, -101), exp: mid, rejectedY: true},
		{name: "tr", handle: TopRight, delta: geo.NewVector(20, -10), exp: dbstate.Rect{X: 100, Y: 90, W: 120, H: 110}},
		{name: "tr_limit", handle: TopRight, delta: geo.NewVector(150, 0), exp: mid, rejectedX: true},
		{name: "mr_min_width", handle: MiddleRight, delta: geo.NewVector(-60, 0), exp: mid, rejectedX: true},
		{name: "mr_to_edge", handle: MiddleRight, delta: geo.NewVector(100, 40), exp: dbstate.Rect{X: 100, Y: 100, W: 200, H: 100}},
		{name: "br", handle: BottomRight, delta: geo.NewVector(10, 20), exp: dbstate.Rect{X: 100, Y: 100, W: 110, H: 120}},
		{name: "bm", handle: BottomMiddle, delta: geo.NewVector(50, 50), exp: dbstate.Rect{X: 100, Y: 100, W: 100, H: 150}},
		{name: "bm_limit", handle: BottomMiddle, delta: geo.NewVector(0, 101), exp: mid, rejectedY: true},
		{name: "bl", handle: BottomLeft, delta: geo.NewVector(-100, -50), exp: dbstate.Rect{X: 0, Y: 100, W: 200, H: 50}},
		{name: "ml_limit", handle: MiddleLeft, delta: geo.NewVector(-101, 0), exp: mid, rejectedX: true},
		{name: "ml", handle: MiddleLeft, delta: geo.NewVector(30, 0), exp: dbstate.Rect{X: 130, Y: 100, W: 70, H: 100}},
		{name: "center", handle: Center, delta: geo.NewVector(50, -100), exp: dbstate.Rect{X: 150, Y: 0, W: 100, H: 100}},
		{name: "center_partial", handle: Center, delta: geo.NewVector(201, 10), exp: dbstate.Rect{X: 100, Y: 110, W: 100, H: 100}, rejectedX: true},
	}

	for _, tc := range tca {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			res := Apply(tc.handle, mid, testConstraints(), tc.delta)
			assert.Equal(t, tc.exp, res.Rect)
			assert.Equal(t, tc.rejectedX, res.RejectedX, "rejected x")
			assert.Equal(t, tc.rejectedY, res.RejectedY, "rejected y")
			assert.False(t, res.Gated)
		})
	}
}

func TestApplyScenarios(t *testing.T) {
	t.Parallel()

	c := testConstraints()
	r := dbstate.Rect{X: 0, Y: 0, W: 100, H: 100}

	r = Apply(BottomRight, r, c, geo.NewVector(50, 50)).Rect
	assert.Equal(t, dbstate.Rect{X: 0, Y: 0, W: 150, H: 150}, r)

	r = Apply(MiddleLeft, r, c, geo.NewVector(40, 0)).Rect
	assert.Equal(t, dbstate.Rect{X: 40, Y: 0, W: 110, H: 150}, r)

	res := Apply(TopLeft, dbstate.Rect{X: 0, Y: 0, W: 150, H: 150}, c, geo.NewVector(-10, -10))
	assert.Equal(t, dbstate.Rect{X: 0, Y: 0, W: 150, H: 150}, res.Rect)
	assert.True(t, res.RejectedX)
	assert.True(t, res.RejectedY)

	res = Apply(MiddleRight, dbstate.Rect{W: 100, H: 100}, c, geo.NewVector(-60, 0))
	assert.Equal(t, 100.0, res.Rect.W)
}

func TestApplyAxisLock(t *testing.T) {
	t.Parallel()

	start := dbstate.Rect{X: 100, Y: 100, W: 100, H: 100}

	c := testConstraints()
	c.Axis = dbstate.AxisX
	assert.Equal(t, dbstate.Rect{X: 110, Y: 100, W: 100, H: 100}, Apply(Center, start, c, geo.NewVector(10, 10)).Rect)
	assert.Equal(t, dbstate.Rect{X: 100, Y: 100, W: 110, H: 100}, Apply(BottomRight, start, c, geo.NewVector(10, 10)).Rect)
	assert.Equal(t, start, Apply(TopMiddle, start, c, geo.NewVector(10, 10)).Rect)

	c.Axis = dbstate.AxisY
	assert.Equal(t, dbstate.Rect{X: 100, Y: 110, W: 100, H: 100}, Apply(Center, start, c, geo.NewVector(10, 10)).Rect)
	assert.Equal(t, dbstate.Rect{X: 100, Y: 90, W: 100, H: 110}, Apply(TopLeft, start, c, geo.NewVector(-10, -10)).Rect)
	res := Apply(MiddleRight, start, c, geo.NewVector(10, 10))
	assert.Equal(t, start, res.Rect)
	// A locked axis is skipped, not rejected.
	assert.False(t, res.Rejected())
}

func TestApplyGated(t *testing.T) {
	t.Parallel()

	start := dbstate.Rect{X: 100, Y: 100, W: 100, H: 100}

	c := testConstraints()
	c.Resizable = false
	for _, h := range Handles {
		res := Apply(h, start, c, geo.NewVector(10, 10))
		if h == Center {
			assert.False(t, res.Gated)
			assert.Equal(t, dbstate.Rect{X: 110, Y: 110, W: 100, H: 100}, res.Rect)
			continue
		}
		assert.True(t, res.Gated, h)
		assert.Equal(t, start, res.Rect, h)
	}

	c = testConstraints()
	c.Draggable = false
	res := Apply(Center, start, c, geo.NewVector(10, 10))
	assert.True(t, res.Gated)
	assert.Equal(t, start, res.Rect)

	res = Apply(Handle("nope"), start, testConstraints(), geo.NewVector(10, 10))
	assert.True(t, res.Gated)
	assert.Equal(t, start, res.Rect)
}

func TestApplyNullDelta(t *testing.T) {
	t.Parallel()

	rects := []dbstate.Rect{
		{X: 0, Y: 0, W: 50, H: 50},
		{X: 0.1, Y: 0.2, W: 60.3, H: 70.7},
		{X: 250, Y: 250, W: 50, H: 50},
	}
	for _, axis := range []dbstate.Axis{dbstate.AxisAll, dbstate.AxisX, dbstate.AxisY} {
		c := testConstraints()
		c.Axis = axis
		for _, r := range rects {
			for _, h := range Handles {
				assert.Equal(t, r, Apply(h, r, c, geo.NewVector(0, 0)).Rect, "%s %s %v", axis, h, r)
			}
		}
	}
}

// TestApplyInvariants walks random gestures and checks that no sequence escapes the
// constraints or touches a locked axis.
func TestApplyInvariants(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	for _, axis := range []dbstate.Axis{dbstate.AxisAll, dbstate.AxisX, dbstate.AxisY} {
		c := testConstraints()
		c.Axis = axis
		r := dbstate.Rect{X: 100, Y: 100, W: 100, H: 100}

		for i := 0; i < 5000; i++ {
			h := Handles[rng.Intn(len(Handles))]
			d := geo.NewVector(float64(rng.Intn(161)-80), float64(rng.Intn(161)-80))
			next := Apply(h, r, c, d).Rect

			if !c.Satisfied(next) {
				t.Fatalf("step %d: %s %v took %v to %v which violates the constraints", i, h, d, r, next)
			}
			switch axis {
			case dbstate.AxisX:
				if next.Y != r.Y || next.H != r.H {
					t.Fatalf("step %d: %s %v changed the locked y axis: %v -> %v", i, h, d, r, next)
				}
			case dbstate.AxisY:
				if next.X != r.X || next.W != r.W {
					t.Fatalf("step %d: %s %v changed the locked x axis: %v -> %v", i, h, d, r, next)
				}
			}
			r = next
		}
	}
}
