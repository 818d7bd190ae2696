// Package dbconnector turns a stream of absolute pointer samples into handle gestures.
//
// A press on a handle becomes a gesture once the pointer has travelled past the dead
// zone: OnStart fires, then OnMove with the travel since the previous sample, then
// OnEnd on release. A press that is released before that, on a handle or on the body,
// is reported to the target as a plain press.
package dbconnector

import (
	"context"

	"cdr.dev/slog"

	"oss.terrastruct.com/dragblock/dbgesture"
	"oss.terrastruct.com/dragblock/dbstate"
	"oss.terrastruct.com/dragblock/lib/env"
	"oss.terrastruct.com/dragblock/lib/geo"
	"oss.terrastruct.com/dragblock/lib/log"
)

// Target is the block the connector drives. *dbblock.Block implements it.
type Target interface {
	Rect() dbstate.Rect
	Registrations() []dbgesture.Registration
	Press(ctx context.Context, p geo.Point)
}

type Connector struct {
	target   Target
	deadZone float64

	down     bool
	start    geo.Point
	last     geo.Point
	hit      *dbgesture.Registration
	body     bool
	dragging bool
}

func New(t Target) *Connector {
	c := &Connector{target: t}
	if dz, ok := env.DeadZone(); ok {
		c.deadZone = dz
	}
	return c
}

// SetDeadZone sets the minimum travel before a press on a handle starts a gesture.
func (c *Connector) SetDeadZone(dz float64) {
	c.deadZone = dz
}

func (c *Connector) Dragging() (dbgesture.Handle, bool) {
	if !c.dragging {
		return "", false
	}
	return c.hit.Handle, true
}

// HitTest returns the handle under p. Handles registered later are drawn on top and
// win.
func (c *Connector) HitTest(p geo.Point) (*dbgesture.Registration, bool) {
	origin := c.target.Rect().Position()
	regs := c.target.Registrations()
	for i := len(regs) - 1; i >= 0; i-- {
		if regs[i].HitBox(origin).Contains(&p) {
			return &regs[i], true
		}
	}
	return nil, false
}

func (c *Connector) Down(ctx context.Context, p geo.Point) {
	if c.down {
		return
	}
	c.down = true
	c.start = p
	c.last = p
	c.dragging = false
	c.hit, _ = c.HitTest(p)
	c.body = c.hit == nil && c.target.Rect().Box().Contains(&p)
	if c.hit != nil {
		log.Debug(ctx, "pointer down on handle", slog.F("handle", c.hit.Handle), slog.F("at", p))
	}
}

func (c *Connector) Motion(ctx context.Context, p geo.Point) {
	if !c.down || c.hit == nil {
		return
	}
	if !c.dragging {
		if c.start.DistanceTo(&p) <= c.deadZone {
			return
		}
		c.dragging = true
		c.hit.OnStart(ctx)
	}
	if p.Equals(&c.last) {
		return
	}
	// Travel under the dead zone was never reported, so the first delta covers it.
	d := c.last.VectorTo(&p)
	c.last = p
	c.hit.OnMove(ctx, d)
}

func (c *Connector) Up(ctx context.Context, p geo.Point) {
	if !c.down {
		return
	}
	if c.dragging {
		c.Motion(ctx, p)
		c.hit.OnEnd(ctx)
	} else if c.hit != nil || c.body {
		c.target.Press(ctx, p)
	}
	c.reset()
}

// Cancel ends a gesture whose pointer source went away without a release, so the
// block does not stay selected.
func (c *Connector) Cancel(ctx context.Context) {
	if c.dragging {
		log.Debug(ctx, "gesture cancelled", slog.F("handle", c.hit.Handle))
		c.hit.OnEnd(ctx)
	}
	c.reset()
}

func (c *Connector) reset() {
	c.down = false
	c.hit = nil
	c.body = false
	c.dragging = false
}
