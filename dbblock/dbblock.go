// Package dbblock is the embedding surface of a drag and resize block: it resolves the
// configuration, owns the block's state and gesture engine, and maps the engine's
// lifecycle onto the seven public callbacks.
package dbblock

import (
	"context"

	"cdr.dev/slog"

	"oss.terrastruct.com/dragblock/dbgesture"
	"oss.terrastruct.com/dragblock/dbstate"
	"oss.terrastruct.com/dragblock/lib/geo"
	"oss.terrastruct.com/dragblock/lib/go2"
	"oss.terrastruct.com/dragblock/lib/log"
)

const (
	DefaultW      = 100
	DefaultH      = 100
	DefaultMinW   = 50
	DefaultMinH   = 50
	DefaultZIndex = 1
)

// PositionFunc receives the block position, see dbgesture.Event for which position.
type PositionFunc func(ev dbgesture.Event)

// Config is all optional. Nil pointers and zero values take the defaults.
type Config struct {
	X float64
	Y float64
	W *float64
	H *float64

	MinW *float64
	MinH *float64

	ZIndex *int
	Axis   dbstate.Axis

	// Limitation defaults to the origin through ScreenWidth by ScreenHeight.
	Limitation   *dbstate.Limitation
	ScreenWidth  float64
	ScreenHeight float64

	Disabled  bool
	Draggable *bool
	Resizable *bool

	// Handles is the ordered set of active handles. Nil means all nine.
	Handles    []dbgesture.Handle
	HandleSize *float64

	OnPress       func(p geo.Point)
	OnDragStart   PositionFunc
	OnDrag        PositionFunc
	OnDragEnd     PositionFunc
	OnResizeStart PositionFunc
	OnResize      PositionFunc
	OnResizeEnd   PositionFunc
}

func (cfg Config) withDefaults() Config {
	if cfg.W == nil {
		cfg.W = go2.Pointer(float64(DefaultW))
	}
	if cfg.H == nil {
		cfg.H = go2.Pointer(float64(DefaultH))
	}
	if cfg.MinW == nil {
		cfg.MinW = go2.Pointer(float64(DefaultMinW))
	}
	if cfg.MinH == nil {
		cfg.MinH = go2.Pointer(float64(DefaultMinH))
	}
	if cfg.ZIndex == nil {
		cfg.ZIndex = go2.Pointer(DefaultZIndex)
	}
	if cfg.Axis == "" {
		cfg.Axis = dbstate.AxisAll
	}
	if cfg.Limitation == nil {
		cfg.Limitation = &dbstate.Limitation{
			MaxRight:  cfg.ScreenWidth,
			MaxBottom: cfg.ScreenHeight,
		}
	}
	if cfg.Draggable == nil {
		cfg.Draggable = go2.Pointer(true)
	}
	if cfg.Resizable == nil {
		cfg.Resizable = go2.Pointer(true)
	}
	if cfg.Handles == nil {
		cfg.Handles = dbgesture.Handles
	}
	// Handles is a set: a repeat keeps the position of its first occurrence.
	hs := make([]dbgesture.Handle, 0, len(cfg.Handles))
	for _, h := range cfg.Handles {
		if !go2.Contains(hs, h) {
			hs = append(hs, h)
		}
	}
	cfg.Handles = hs
	if cfg.HandleSize == nil {
		cfg.HandleSize = go2.Pointer(float64(dbgesture.DefaultHandleSize))
	}
	return cfg
}

func (cfg Config) constraints() dbstate.Constraints {
	return dbstate.Constraints{
		MinW:       *cfg.MinW,
		MinH:       *cfg.MinH,
		Limitation: *cfg.Limitation,
		Axis:       cfg.Axis,
		Draggable:  *cfg.Draggable,
		Resizable:  *cfg.Resizable,
	}
}

type Block struct {
	cfg    Config
	state  *dbstate.State
	engine *dbgesture.Engine
}

func New(ctx context.Context, cfg Config) *Block {
	cfg = cfg.withDefaults()

	state := dbstate.New(dbstate.Rect{
		X: cfg.X,
		Y: cfg.Y,
		W: *cfg.W,
		H: *cfg.H,
	}, *cfg.MinW, *cfg.MinH)

	b := &Block{
		cfg:    cfg,
		state:  state,
		engine: dbgesture.NewEngine(state, cfg.constraints()),
	}
	b.engine.SetCallbacks(dbgesture.Drag, dbgesture.Callbacks{
		OnStart: dbgesture.Notify(cfg.OnDragStart),
		OnMove:  dbgesture.Notify(cfg.OnDrag),
		OnEnd:   dbgesture.Notify(cfg.OnDragEnd),
	})
	b.engine.SetCallbacks(dbgesture.Resize, dbgesture.Callbacks{
		OnStart: dbgesture.Notify(cfg.OnResizeStart),
		OnMove:  dbgesture.Notify(cfg.OnResize),
		OnEnd:   dbgesture.Notify(cfg.OnResizeEnd),
	})

	if !cfg.constraints().Satisfied(state.Get()) {
		log.Warn(ctx, "initial block does not satisfy its constraints", slog.F("rect", state.Get()), slog.F("limitation", *cfg.Limitation))
	}
	return b
}

func (b *Block) Rect() dbstate.Rect {
	return b.state.Get()
}

func (b *Block) Constraints() dbstate.Constraints {
	return b.engine.Constraints()
}

// SetConstraints replaces the limits gestures are evaluated against. The current
// rectangle is left as is.
func (b *Block) SetConstraints(c dbstate.Constraints) {
	b.cfg.MinW = go2.Pointer(c.MinW)
	b.cfg.MinH = go2.Pointer(c.MinH)
	b.cfg.Limitation = go2.Pointer(c.Limitation)
	b.cfg.Axis = c.Axis
	b.cfg.Draggable = go2.Pointer(c.Draggable)
	b.cfg.Resizable = go2.Pointer(c.Resizable)
	b.engine.SetConstraints(c)
}

// ZIndex is raised by one while the block is selected.
func (b *Block) ZIndex() int {
	if b.state.Get().Selected {
		return *b.cfg.ZIndex + 1
	}
	return *b.cfg.ZIndex
}

func (b *Block) Disabled() bool {
	return b.cfg.Disabled
}

func (b *Block) SetDisabled(disabled bool) {
	b.cfg.Disabled = disabled
}

// Active returns the handle of the gesture in progress.
func (b *Block) Active() (dbgesture.Handle, bool) {
	return b.engine.Active()
}

// Registrations returns the active handles laid out against the current size. A
// disabled block exposes none.
func (b *Block) Registrations() []dbgesture.Registration {
	if b.cfg.Disabled {
		return nil
	}
	return b.engine.Register(b.cfg.Handles, *b.cfg.HandleSize)
}

// Registration returns the single handle h, false if it is not active.
func (b *Block) Registration(h dbgesture.Handle) (dbgesture.Registration, bool) {
	for _, r := range b.Registrations() {
		if r.Handle == h {
			return r, true
		}
	}
	return dbgesture.Registration{}, false
}

func (b *Block) HandleSize() float64 {
	return *b.cfg.HandleSize
}

// Press reports a press that never turned into a gesture.
func (b *Block) Press(ctx context.Context, p geo.Point) {
	log.Debug(ctx, "press", slog.F("at", p))
	if b.cfg.OnPress != nil {
		b.cfg.OnPress(p)
	}
}

// Observe registers fn to run after every state change, e.g. to re-render.
func (b *Block) Observe(fn dbstate.Observer) {
	b.state.Observe(fn)
}
