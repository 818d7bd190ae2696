// Package dbterm runs a block in a terminal. One cell is one unit: the block is laid
// out on the cell grid and every handle is a single cell.
package dbterm

import (
	"context"
	"fmt"

	"cdr.dev/slog"
	"github.com/gdamore/tcell/v2"

	"oss.terrastruct.com/xdefer"

	"oss.terrastruct.com/dragblock/dbblock"
	"oss.terrastruct.com/dragblock/dbconnector"
	"oss.terrastruct.com/dragblock/dbgesture"
	"oss.terrastruct.com/dragblock/dbstate"
	"oss.terrastruct.com/dragblock/lib/color"
	"oss.terrastruct.com/dragblock/lib/env"
	"oss.terrastruct.com/dragblock/lib/geo"
	"oss.terrastruct.com/dragblock/lib/go2"
	"oss.terrastruct.com/dragblock/lib/log"
)

// Cell sized defaults. Odd sizes keep the middle handles on whole cells.
const (
	DefaultW    = 21
	DefaultH    = 9
	DefaultMinW = 5
	DefaultMinH = 3

	// DeadZone is used unless DRAGBLOCK_DEAD_ZONE is set. Cells are coarse, so one
	// cell of travel already starts a gesture.
	DeadZone = 0
)

const (
	handleRune = '■'
	centerRune = '✥'
)

type Session struct {
	screen tcell.Screen
	theme  Theme
	block  *dbblock.Block
	conn   *dbconnector.Connector

	// fitScreen keeps the limitation in sync with the screen size.
	fitScreen bool
	pressed   bool
	status    string
}

// NewScreen initializes the real terminal. Callers must Fini it.
func NewScreen() (_ tcell.Screen, err error) {
	defer xdefer.Errorf(&err, "failed to initialize terminal")

	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewSession takes an initialized screen. The callbacks in cfg still run, after the
// session has updated its status line.
func NewSession(ctx context.Context, screen tcell.Screen, cfg dbblock.Config, theme Theme) *Session {
	s := &Session{
		screen:    screen,
		theme:     theme,
		fitScreen: cfg.Limitation == nil,
	}

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
	cfg.HandleSize = go2.Pointer(1.0)
	if s.fitScreen {
		cfg.Limitation = go2.Pointer(s.screenLimitation())
	}

	onPress := cfg.OnPress
	cfg.OnPress = func(p geo.Point) {
		s.status = fmt.Sprintf("press %s", p.FormattedCoordinates())
		if onPress != nil {
			onPress(p)
		}
	}
	cfg.OnDragStart = s.report("drag start", cfg.OnDragStart)
	cfg.OnDrag = s.report("drag", cfg.OnDrag)
	cfg.OnDragEnd = s.report("drag end", cfg.OnDragEnd)
	cfg.OnResizeStart = s.report("resize start", cfg.OnResizeStart)
	cfg.OnResize = s.report("resize", cfg.OnResize)
	cfg.OnResizeEnd = s.report("resize end", cfg.OnResizeEnd)

	ctx = log.Named(ctx, "term")
	s.block = dbblock.New(ctx, cfg)
	s.block.Observe(func(prev, next dbstate.Rect) {
		if !prev.SameGeometry(next) {
			log.Debug(ctx, "block changed", slog.F("from", prev.String()), slog.F("to", next.String()))
		}
	})
	s.conn = dbconnector.New(s.block)
	if _, ok := env.DeadZone(); !ok {
		s.conn.SetDeadZone(DeadZone)
	}
	return s
}

func (s *Session) report(what string, next dbblock.PositionFunc) dbblock.PositionFunc {
	return func(ev dbgesture.Event) {
		s.status = fmt.Sprintf("%s %s: %s", what, ev.Handle.Name(), ev.Rect)
		if next != nil {
			next(ev)
		}
	}
}

// screenLimitation is the whole screen minus the status line.
func (s *Session) screenLimitation() dbstate.Limitation {
	w, h := s.screen.Size()
	return dbstate.Limitation{
		MaxRight:  float64(w),
		MaxBottom: float64(go2.Max(h-1, 0)),
	}
}

// fitLimitation is the screen limitation widened to the block's current extent. A
// screen that shrank under the block would otherwise reject every trailing edge change
// that does not bring the whole block back inside at once.
func (s *Session) fitLimitation(ctx context.Context) dbstate.Limitation {
	lim := s.screenLimitation()
	r := s.block.Rect()
	if r.Right() <= lim.MaxRight && r.Bottom() <= lim.MaxBottom {
		return lim
	}
	log.Warn(ctx, "screen is smaller than the block", slog.F("limitation", lim), slog.F("block", r.String()))
	lim.MaxRight = go2.Max(lim.MaxRight, r.Right())
	lim.MaxBottom = go2.Max(lim.MaxBottom, r.Bottom())
	return lim
}

func (s *Session) Block() *dbblock.Block {
	return s.block
}

func (s *Session) Status() string {
	return s.status
}

// Run draws and handles events until the user quits or ctx is done.
func (s *Session) Run(ctx context.Context) error {
	s.screen.EnableMouse()
	defer s.screen.DisableMouse()
	s.screen.HideCursor()
	s.Draw()

	done := make(chan struct{})
	defer close(done)
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := s.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			s.conn.Cancel(ctx)
			return nil
		case ev := <-events:
			if s.HandleEvent(ctx, ev) {
				s.conn.Cancel(ctx)
				return nil
			}
		}
	}
}

// HandleEvent applies ev and redraws. It returns true when the user asked to quit.
func (s *Session) HandleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q')) {
			return true
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		p := cellCenter(x, y)
		if ev.Buttons()&tcell.Button1 != 0 {
			if !s.pressed {
				s.pressed = true
				s.conn.Down(ctx, p)
			} else {
				s.conn.Motion(ctx, p)
			}
		} else if s.pressed {
			s.pressed = false
			s.conn.Up(ctx, p)
		}
	case *tcell.EventResize:
		s.screen.Sync()
		if s.fitScreen {
			c := s.block.Constraints()
			c.Limitation = s.fitLimitation(ctx)
			s.block.SetConstraints(c)
			log.Debug(ctx, "screen resized", slog.F("limitation", c.Limitation))
		}
	}
	s.Draw()
	return false
}

// cellCenter maps a cell to the point at its center so that a single cell handle at a
// whole offset is hit by exactly one cell.
func cellCenter(x, y int) geo.Point {
	return geo.Point{X: float64(x) + .5, Y: float64(y) + .5}
}

func (s *Session) Draw() {
	bg := s.theme.style(s.theme.Border, s.theme.Background)
	s.screen.SetStyle(bg)
	s.screen.Clear()

	r := s.block.Rect()
	pos := r.Position()
	tl := pos.Floor()
	br := geo.NewPoint(r.Right(), r.Bottom()).Floor()
	x0, y0 := int(tl.X), int(tl.Y)
	x1, y1 := int(br.X)-1, int(br.Y)-1

	body := s.theme.body(r.Selected)
	border := s.theme.style(s.theme.Border, body)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			s.screen.SetContent(x, y, borderRune(x, y, x0, y0, x1, y1), nil, border)
		}
	}

	idle := s.theme.style(s.theme.Handle, body)
	grabbed := s.theme.style(color.Contrast(s.theme.Accent), s.theme.Accent)
	active, dragging := s.conn.Dragging()
	for _, reg := range s.block.Registrations() {
		cell := reg.HitBox(pos).TopLeft.Floor()
		ch := handleRune
		if reg.Handle == dbgesture.Center {
			ch = centerRune
		}
		st := idle
		if dragging && active == reg.Handle {
			st = grabbed
		}
		s.screen.SetContent(int(cell.X), int(cell.Y), ch, nil, st)
	}

	_, h := s.screen.Size()
	line := s.status
	if line == "" {
		line = fmt.Sprintf("%s  (drag the handles, q to quit)", r)
	}
	drawText(s.screen, 0, h-1, line, s.theme.style(s.theme.Border, color.Darken(s.theme.Background)))

	s.screen.Show()
}

func borderRune(x, y, x0, y0, x1, y1 int) rune {
	switch {
	case x == x0 && y == y0:
		return '┌'
	case x == x1 && y == y0:
		return '┐'
	case x == x0 && y == y1:
		return '└'
	case x == x1 && y == y1:
		return '┘'
	case y == y0 || y == y1:
		return '─'
	case x == x0 || x == x1:
		return '│'
	}
	return ' '
}

// drawText clips text at the right edge of the screen.
func drawText(screen tcell.Screen, x, y int, text string, st tcell.Style) {
	w, _ := screen.Size()
	runes := []rune(text)
	for _, r := range runes[:go2.Min(len(runes), go2.Max(w-x, 0))] {
		screen.SetContent(x, y, r, nil, st)
		x++
	}
}
