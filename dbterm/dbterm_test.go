package dbterm

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oss.terrastruct.com/dragblock/dbblock"
	"oss.terrastruct.com/dragblock/dbgesture"
	"oss.terrastruct.com/dragblock/dbstate"
	"oss.terrastruct.com/dragblock/lib/log"
)

func newTestSession(t *testing.T, cfg dbblock.Config) (context.Context, tcell.SimulationScreen, *Session) {
	ctx := log.WithTB(context.Background(), t, nil)

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 25)

	theme, err := ParseTheme("")
	require.NoError(t, err)
	return ctx, screen, NewSession(ctx, screen, cfg, theme)
}

func mouse(x, y int, down bool) *tcell.EventMouse {
	btn := tcell.ButtonNone
	if down {
		btn = tcell.Button1
	}
	return tcell.NewEventMouse(x, y, btn, tcell.ModNone)
}

func rowText(screen tcell.Screen, y int) string {
	w, _ := screen.Size()
	var sb strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := screen.GetContent(x, y)
		sb.WriteRune(r)
	}
	return strings.TrimRight(sb.String(), " ")
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	_, _, s := newTestSession(t, dbblock.Config{X: 10, Y: 5})

	assert.Equal(t, dbstate.Rect{X: 10, Y: 5, W: 21, H: 9}, s.Block().Rect())
	c := s.Block().Constraints()
	assert.Equal(t, dbstate.Limitation{MaxRight: 80, MaxBottom: 24}, c.Limitation)
	assert.Equal(t, 5.0, c.MinW)
	assert.Equal(t, 3.0, c.MinH)
	assert.Equal(t, 1.0, s.Block().HandleSize())
}

func TestDrag(t *testing.T) {
	t.Parallel()

	ctx, screen, s := newTestSession(t, dbblock.Config{X: 10, Y: 5})

	// The center handle of a 21x9 block sits 10,4 cells in.
	assert.False(t, s.HandleEvent(ctx, mouse(20, 9, true)))
	assert.False(t, s.HandleEvent(ctx, mouse(25, 11, true)))

	r := s.Block().Rect()
	assert.True(t, r.Selected)
	_, _, st, _ := screen.GetContent(17, 9)
	_, cellBg, _ := st.Decompose()
	assert.Equal(t, toTcell(s.theme.body(true)), cellBg)
	ch, _, _, _ := screen.GetContent(25, 11)
	assert.Equal(t, centerRune, ch)

	assert.False(t, s.HandleEvent(ctx, mouse(25, 11, false)))
	assert.Equal(t, dbstate.Rect{X: 15, Y: 7, W: 21, H: 9}, s.Block().Rect())
	assert.Equal(t, "drag end center: x=15 y=7 w=21 h=9 selected=false", s.Status())

	ch, _, _, _ = screen.GetContent(15, 7)
	assert.Equal(t, handleRune, ch)
	ch, _, _, _ = screen.GetContent(16, 7)
	assert.Equal(t, '─', ch)
	ch, _, _, _ = screen.GetContent(15, 8)
	assert.Equal(t, '│', ch)
	assert.Equal(t, s.Status(), rowText(screen, 24))
}

func TestResize(t *testing.T) {
	t.Parallel()

	ctx, screen, s := newTestSession(t, dbblock.Config{X: 10, Y: 5})

	s.HandleEvent(ctx, mouse(30, 13, true))
	s.HandleEvent(ctx, mouse(34, 15, true))
	s.HandleEvent(ctx, mouse(34, 15, false))

	assert.Equal(t, dbstate.Rect{X: 10, Y: 5, W: 25, H: 11}, s.Block().Rect())
	assert.Equal(t, "resize end bottom-right: x=10 y=5 w=25 h=11 selected=false", s.Status())
	ch, _, _, _ := screen.GetContent(34, 15)
	assert.Equal(t, handleRune, ch)

	// Shrinking under the minimum is rejected whole.
	s.HandleEvent(ctx, mouse(34, 15, true))
	s.HandleEvent(ctx, mouse(10, 15, true))
	s.HandleEvent(ctx, mouse(10, 15, false))
	assert.Equal(t, dbstate.Rect{X: 10, Y: 5, W: 25, H: 11}, s.Block().Rect())
}

func TestLimitedByScreen(t *testing.T) {
	t.Parallel()

	ctx, screen, s := newTestSession(t, dbblock.Config{X: 10, Y: 5})

	s.HandleEvent(ctx, mouse(20, 9, true))
	s.HandleEvent(ctx, mouse(75, 9, true))
	s.HandleEvent(ctx, mouse(75, 9, false))
	assert.Equal(t, dbstate.Rect{X: 10, Y: 5, W: 21, H: 9}, s.Block().Rect())

	screen.SetSize(40, 20)
	s.HandleEvent(ctx, tcell.NewEventResize(40, 20))
	assert.Equal(t, dbstate.Limitation{MaxRight: 40, MaxBottom: 19}, s.Block().Constraints().Limitation)

	s.HandleEvent(ctx, mouse(20, 9, true))
	s.HandleEvent(ctx, mouse(29, 9, true))
	s.HandleEvent(ctx, mouse(29, 9, false))
	assert.Equal(t, dbstate.Rect{X: 19, Y: 5, W: 21, H: 9}, s.Block().Rect())
}

func TestScreenShrunkUnderBlock(t *testing.T) {
	t.Parallel()

	ctx, screen, s := newTestSession(t, dbblock.Config{X: 10, Y: 5})

	screen.SetSize(25, 10)
	s.HandleEvent(ctx, tcell.NewEventResize(25, 10))
	assert.Equal(t, dbstate.Limitation{MaxRight: 31, MaxBottom: 14}, s.Block().Constraints().Limitation)

	// A one cell shrink from the bottom right stays accepted.
	s.HandleEvent(ctx, mouse(30, 13, true))
	s.HandleEvent(ctx, mouse(29, 12, true))
	s.HandleEvent(ctx, mouse(29, 12, false))
	assert.Equal(t, dbstate.Rect{X: 10, Y: 5, W: 20, H: 8}, s.Block().Rect())

	// Growing past the old extent is still rejected.
	s.HandleEvent(ctx, mouse(29, 12, true))
	s.HandleEvent(ctx, mouse(32, 12, true))
	s.HandleEvent(ctx, mouse(32, 12, false))
	assert.Equal(t, dbstate.Rect{X: 10, Y: 5, W: 20, H: 8}, s.Block().Rect())
}

func TestDeadZoneFromEnv(t *testing.T) {
	t.Setenv("DRAGBLOCK_DEAD_ZONE", "5")

	ctx, _, s := newTestSession(t, dbblock.Config{X: 10, Y: 5})

	s.HandleEvent(ctx, mouse(20, 9, true))
	s.HandleEvent(ctx, mouse(21, 9, true))
	assert.Equal(t, dbstate.Rect{X: 10, Y: 5, W: 21, H: 9}, s.Block().Rect())
	_, dragging := s.conn.Dragging()
	assert.False(t, dragging)

	// Past the dead zone the first move covers all the travel so far.
	s.HandleEvent(ctx, mouse(27, 9, true))
	assert.Equal(t, dbstate.Rect{X: 17, Y: 5, W: 21, H: 9, Selected: true}, s.Block().Rect())
	s.HandleEvent(ctx, mouse(27, 9, false))
	assert.Equal(t, "drag end center: x=17 y=5 w=21 h=9 selected=false", s.Status())
}

func TestFixedLimitation(t *testing.T) {
	t.Parallel()

	ctx, screen, s := newTestSession(t, dbblock.Config{
		Limitation: &dbstate.Limitation{MaxRight: 30, MaxBottom: 20},
		Handles:    []dbgesture.Handle{dbgesture.Center},
	})

	screen.SetSize(100, 40)
	s.HandleEvent(ctx, tcell.NewEventResize(100, 40))
	assert.Equal(t, dbstate.Limitation{MaxRight: 30, MaxBottom: 20}, s.Block().Constraints().Limitation)

	// Only the center handle is active, the corner is plain body.
	s.HandleEvent(ctx, mouse(0, 0, true))
	s.HandleEvent(ctx, mouse(3, 3, true))
	s.HandleEvent(ctx, mouse(3, 3, false))
	assert.Equal(t, dbstate.Rect{W: 21, H: 9}, s.Block().Rect())
	assert.Equal(t, "press 3,3", s.Status())
}

func TestQuit(t *testing.T) {
	t.Parallel()

	ctx, _, s := newTestSession(t, dbblock.Config{})

	assert.False(t, s.HandleEvent(ctx, tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)))
	assert.True(t, s.HandleEvent(ctx, tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
	assert.True(t, s.HandleEvent(ctx, tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
	assert.True(t, s.HandleEvent(ctx, tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)))
}

func TestRun(t *testing.T) {
	t.Parallel()

	ctx, screen, s := newTestSession(t, dbblock.Config{X: 10, Y: 5})

	screen.InjectMouse(20, 9, tcell.Button1, tcell.ModNone)
	screen.InjectMouse(22, 10, tcell.Button1, tcell.ModNone)
	screen.InjectMouse(22, 10, tcell.ButtonNone, tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("session did not quit")
	}
	assert.Equal(t, dbstate.Rect{X: 12, Y: 6, W: 21, H: 9}, s.Block().Rect())
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	ctx, _, s := newTestSession(t, dbblock.Config{})
	ctx, cancel := context.WithCancel(ctx)
	cancel()

	assert.NoError(t, s.Run(ctx))
	assert.False(t, s.Block().Rect().Selected)
}

func TestParseTheme(t *testing.T) {
	t.Parallel()

	def, err := ParseTheme("")
	require.NoError(t, err)

	th, err := ParseTheme(" , red ,,, #0000ff")
	require.NoError(t, err)
	assert.Equal(t, def.Background, th.Background)
	assert.Equal(t, colorful.Color{R: 1}, th.Body)
	assert.Equal(t, def.Border, th.Border)
	assert.Equal(t, colorful.Color{B: 1}, th.Accent)

	_, err = ParseTheme("red,red,red,red,red,red")
	assert.EqualError(t, err, "theme takes at most 5 colors, got 6")

	_, err = ParseTheme("#zzz")
	assert.ErrorContains(t, err, `theme color 1 "#zzz"`)

	assert.NotEqual(t, def.body(false), def.body(true))
	assert.Equal(t, tcell.NewRGBColor(255, 0, 0), toTcell(colorful.Color{R: 1}))
}
