package dbgesture

import (
	"context"

	"cdr.dev/slog"

	"oss.terrastruct.com/dragblock/dbstate"
	"oss.terrastruct.com/dragblock/lib/geo"
	"oss.terrastruct.com/dragblock/lib/log"
)

// Event is what lifecycle callbacks receive.
//
// Position follows the block's reporting convention: the position before the gesture
// for a start, the position before the delta for a move and the position at call time
// for an end. Rect is always the state at the moment of the call, so a move callback
// that wants the committed geometry reads Rect instead.
type Event struct {
	Handle   Handle
	Position geo.Point
	Rect     dbstate.Rect
}

type Notify func(Event)

type Callbacks struct {
	OnStart Notify
	OnMove  Notify
	OnEnd   Notify
}

// Engine runs gestures against one State. Only one gesture may be active at a time and
// events must arrive in order: Start, any number of Move, End.
type Engine struct {
	state       *dbstate.State
	constraints dbstate.Constraints
	callbacks   map[Family]Callbacks

	active Handle
}

func NewEngine(state *dbstate.State, c dbstate.Constraints) *Engine {
	return &Engine{
		state:       state,
		constraints: c,
		callbacks:   make(map[Family]Callbacks),
	}
}

func (e *Engine) Constraints() dbstate.Constraints {
	return e.constraints
}

// SetConstraints takes effect from the next Move.
func (e *Engine) SetConstraints(c dbstate.Constraints) {
	e.constraints = c
}

func (e *Engine) SetCallbacks(f Family, cb Callbacks) {
	e.callbacks[f] = cb
}

// Active returns the handle of the gesture in progress.
func (e *Engine) Active() (Handle, bool) {
	return e.active, e.active != ""
}

func (e *Engine) Start(ctx context.Context, h Handle) {
	if !h.Valid() {
		log.Warn(ctx, "ignoring start on unknown handle", slog.F("handle", h))
		return
	}
	if e.active != "" {
		log.Warn(ctx, "ignoring start while a gesture is active", slog.F("handle", h), slog.F("active", e.active))
		return
	}
	pos := e.state.Get().Position()
	e.active = h
	e.state.SetSelected(true)
	log.Debug(ctx, "gesture started", slog.F("handle", h), slog.F("rect", e.state.Get()))

	e.notify(h, e.callbacks[h.Family()].OnStart, pos)
}

func (e *Engine) Move(ctx context.Context, h Handle, d geo.Vector) {
	if e.active != h {
		log.Debug(ctx, "ignoring move outside of its gesture", slog.F("handle", h), slog.F("active", e.active))
		return
	}

	prev := e.state.Get()
	res := Apply(h, prev, e.constraints, d)
	if res.Gated {
		return
	}
	if res.Rejected() {
		log.Debug(ctx, "delta rejected",
			slog.F("handle", h),
			slog.F("delta", d),
			slog.F("x", res.RejectedX),
			slog.F("y", res.RejectedY),
		)
	}
	e.state.Set(res.Rect)

	e.notify(h, e.callbacks[h.Family()].OnMove, prev.Position())
}

func (e *Engine) End(ctx context.Context, h Handle) {
	if e.active != h {
		log.Warn(ctx, "ignoring end outside of its gesture", slog.F("handle", h), slog.F("active", e.active))
		return
	}
	e.active = ""
	e.state.SetSelected(false)
	log.Debug(ctx, "gesture ended", slog.F("handle", h), slog.F("rect", e.state.Get()))

	e.notify(h, e.callbacks[h.Family()].OnEnd, e.state.Get().Position())
}

func (e *Engine) notify(h Handle, fn Notify, pos geo.Point) {
	if fn == nil {
		return
	}
	fn(Event{
		Handle:   h,
		Position: pos,
		Rect:     e.state.Get(),
	})
}

// Registration is everything a pointer front end needs to drive one handle.
type Registration struct {
	Handle Handle
	Size   float64
	// Offset is relative to the block's top left.
	Offset *geo.Point

	OnStart func(ctx context.Context)
	OnMove  func(ctx context.Context, d geo.Vector)
	OnEnd   func(ctx context.Context)
}

// HitBox returns the area covered by the handle when the block sits at origin.
func (r Registration) HitBox(origin geo.Point) *geo.Box {
	return geo.NewBox(geo.NewPoint(origin.X+r.Offset.X, origin.Y+r.Offset.Y), r.Size, r.Size)
}

// Register lays out hs against the current width and height. Offsets go stale as
// soon as the size changes, so callers re-register after every state change.
func (e *Engine) Register(hs []Handle, size float64) []Registration {
	r := e.state.Get()
	regs := make([]Registration, 0, len(hs))
	for _, h := range hs {
		h := h
		if !h.Valid() {
			continue
		}
		regs = append(regs, Registration{
			Handle: h,
			Size:   size,
			Offset: h.Place(r.W, r.H, size),
			OnStart: func(ctx context.Context) {
				e.Start(ctx, h)
			},
			OnMove: func(ctx context.Context, d geo.Vector) {
				e.Move(ctx, h, d)
			},
			OnEnd: func(ctx context.Context) {
				e.End(ctx, h)
			},
		})
	}
	return regs
}
