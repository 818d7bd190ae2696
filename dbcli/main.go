package dbcli

import (
	"context"
	"errors"
	"fmt"

	"cdr.dev/slog"
	"github.com/spf13/pflag"

	"oss.terrastruct.com/xdefer"

	"oss.terrastruct.com/dragblock/dbblock"
	"oss.terrastruct.com/dragblock/dbgesture"
	"oss.terrastruct.com/dragblock/dbscript"
	"oss.terrastruct.com/dragblock/dbstate"
	"oss.terrastruct.com/dragblock/dbterm"
	"oss.terrastruct.com/dragblock/lib/go2"
	"oss.terrastruct.com/dragblock/lib/log"
	"oss.terrastruct.com/dragblock/lib/version"
	"oss.terrastruct.com/dragblock/lib/xmain"
)

var subcommands = []string{"play", "replay", "validate", "handles", "version"}

type flags struct {
	debug      *bool
	version    *bool
	watch      *bool
	axis       *string
	theme      *string
	x          *float64
	y          *float64
	width      *float64
	height     *float64
	minW       *float64
	minH       *float64
	handleSize *float64
	zIndex     *int64
	draggable  *bool
	resizable  *bool
}

func Run(ctx context.Context, ms *xmain.State) (err error) {
	ctx = log.Ensure(ctx)
	defer log.Sync(ctx)

	f, err := registerFlags(ms)
	if err != nil {
		return err
	}

	err = ms.Opts.Flags.Parse(ms.Opts.Args)
	if !errors.Is(err, pflag.ErrHelp) && err != nil {
		return xmain.UsageErrorf("failed to parse flags: %v", err)
	}
	if errors.Is(err, pflag.ErrHelp) {
		help(ms)
		return nil
	}

	if *f.debug {
		ctx = log.Leveled(ctx, slog.LevelDebug)
	}

	args := ms.Opts.Flags.Args()
	if len(args) == 0 {
		if *f.version {
			fmt.Fprintln(ms.Stdout, version.Version)
			return nil
		}
		help(ms)
		return nil
	}
	if !go2.Contains(subcommands, args[0]) {
		return xmain.UsageErrorf("unknown subcommand %q, expected one of %v", args[0], subcommands)
	}

	switch args[0] {
	case "version":
		if len(args) > 1 {
			return xmain.UsageErrorf("version subcommand accepts no arguments")
		}
		fmt.Fprintln(ms.Stdout, version.Version)
		return nil
	case "handles":
		if len(args) > 1 {
			return xmain.UsageErrorf("handles subcommand accepts no arguments")
		}
		return handlesCmd(ms, f)
	case "validate":
		if len(args) != 2 {
			return xmain.UsageErrorf("validate subcommand takes exactly one script")
		}
		return validateCmd(ms, args[1])
	case "replay":
		return replayCmd(ctx, ms, f, args[1:])
	default:
		if len(args) > 1 {
			return xmain.UsageErrorf("play subcommand accepts no arguments")
		}
		return playCmd(ctx, ms, f)
	}
}

func registerFlags(ms *xmain.State) (*flags, error) {
	var f flags
	var err error

	f.debug, err = ms.Opts.Bool("DEBUG", "debug", "d", false, "print debug logs.")
	if err != nil {
		return nil, err
	}
	f.version, err = ms.Opts.Bool("", "version", "v", false, "get the version")
	if err != nil {
		return nil, err
	}
	f.watch, err = ms.Opts.Bool("DRAGBLOCK_WATCH", "watch", "w", false, "replay again whenever the script changes.")
	if err != nil {
		return nil, err
	}
	f.axis = ms.Opts.String("DRAGBLOCK_AXIS", "axis", "a", string(dbstate.AxisAll), `the axis the block may change along: "x", "y" or "all"`)
	f.theme = ms.Opts.String("DRAGBLOCK_THEME", "theme", "t", dbterm.DefaultTheme, "comma separated CSS colors for the background, body, border, handles and accent")
	f.x, err = ms.Opts.Float64("", "x", "", 0, "initial left edge")
	if err != nil {
		return nil, err
	}
	f.y, err = ms.Opts.Float64("", "y", "", 0, "initial top edge")
	if err != nil {
		return nil, err
	}
	f.width, err = ms.Opts.Float64("", "width", "", 0, "initial width, 0 for the default")
	if err != nil {
		return nil, err
	}
	f.height, err = ms.Opts.Float64("", "height", "", 0, "initial height, 0 for the default")
	if err != nil {
		return nil, err
	}
	f.minW, err = ms.Opts.Float64("DRAGBLOCK_MIN_W", "min-w", "", 0, "minimum width, 0 for the default")
	if err != nil {
		return nil, err
	}
	f.minH, err = ms.Opts.Float64("DRAGBLOCK_MIN_H", "min-h", "", 0, "minimum height, 0 for the default")
	if err != nil {
		return nil, err
	}
	f.handleSize, err = ms.Opts.Float64("", "handle-size", "", dbgesture.DefaultHandleSize, "edge length of a handle, used by the handles subcommand")
	if err != nil {
		return nil, err
	}
	f.zIndex, err = ms.Opts.Int64("DRAGBLOCK_Z_INDEX", "z-index", "", dbblock.DefaultZIndex, "stacking order of the block, raised by one while selected")
	if err != nil {
		return nil, err
	}
	f.draggable, err = ms.Opts.Bool("", "draggable", "", true, "whether the center handle moves the block")
	if err != nil {
		return nil, err
	}
	f.resizable, err = ms.Opts.Bool("", "resizable", "", true, "whether the edge and corner handles resize the block")
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *flags) blockConfig() (dbblock.Config, error) {
	axis, err := dbstate.ParseAxis(*f.axis)
	if err != nil {
		return dbblock.Config{}, xmain.UsageErrorf("-a[xis]: %v", err)
	}
	cfg := dbblock.Config{
		X:         *f.x,
		Y:         *f.y,
		Axis:      axis,
		ZIndex:    go2.Pointer(int(*f.zIndex)),
		Draggable: go2.Pointer(*f.draggable),
		Resizable: go2.Pointer(*f.resizable),
	}
	if *f.width > 0 {
		cfg.W = go2.Pointer(*f.width)
	}
	if *f.height > 0 {
		cfg.H = go2.Pointer(*f.height)
	}
	if *f.minW > 0 {
		cfg.MinW = go2.Pointer(*f.minW)
	}
	if *f.minH > 0 {
		cfg.MinH = go2.Pointer(*f.minH)
	}
	return cfg, nil
}

func playCmd(ctx context.Context, ms *xmain.State, f *flags) (err error) {
	defer xdefer.Errorf(&err, "failed to play")

	cfg, err := f.blockConfig()
	if err != nil {
		return err
	}
	theme, err := dbterm.ParseTheme(*f.theme)
	if err != nil {
		return xmain.UsageErrorf("-t[heme]: %v", err)
	}

	screen, err := dbterm.NewScreen()
	if err != nil {
		return err
	}
	// The screen owns the terminal until Fini.
	tctx := log.Discard(ctx)
	s := dbterm.NewSession(tctx, screen, cfg, theme)
	err = s.Run(tctx)
	screen.Fini()
	if err != nil {
		return err
	}
	ms.Log.Info.Printf("final block: %s, z-index %d", s.Block().Rect(), s.Block().ZIndex())
	return nil
}

func handlesCmd(ms *xmain.State, f *flags) error {
	w, h := float64(dbblock.DefaultW), float64(dbblock.DefaultH)
	if *f.width > 0 {
		w = *f.width
	}
	if *f.height > 0 {
		h = *f.height
	}
	if *f.handleSize <= 0 {
		return xmain.UsageErrorf("--handle-size must be positive, got %v", *f.handleSize)
	}

	fmt.Fprintf(ms.Stdout, "# %vx%v block, handle size %v\n", w, h, *f.handleSize)
	for _, hd := range dbgesture.Handles {
		p := hd.Place(w, h, *f.handleSize)
		fmt.Fprintf(ms.Stdout, "%-2s %-13s %-6s %v,%v\n", hd, hd.Name(), hd.Family(), p.X, p.Y)
	}
	return nil
}

func validateCmd(ms *xmain.State, inputPath string) (err error) {
	defer xdefer.Errorf(&err, "failed to validate %s", ms.HumanPath(inputPath))

	b, err := ms.ReadPath(inputPath)
	if err != nil {
		return err
	}
	s, err := dbscript.Parse(b)
	if err != nil {
		return err
	}
	ms.Log.Success.Printf("%s is valid: %d gestures", ms.HumanPath(inputPath), len(s.Gestures))
	return nil
}

func replayCmd(ctx context.Context, ms *xmain.State, f *flags, args []string) error {
	if len(args) == 0 {
		return xmain.UsageErrorf("replay subcommand takes a script")
	} else if len(args) > 2 {
		return xmain.UsageErrorf("too many arguments passed")
	}
	inputPath := args[0]
	outputPath := "-"
	if len(args) == 2 {
		outputPath = args[1]
	}

	if *f.watch {
		if inputPath == "-" {
			return xmain.UsageErrorf("-w[atch] cannot be combined with reading input from stdin")
		}
		w, err := newWatcher(ms, inputPath, func(ctx context.Context) error {
			return replay(ctx, ms, inputPath, outputPath, false)
		})
		if err != nil {
			return err
		}
		return w.run(ctx)
	}
	return replay(ctx, ms, inputPath, outputPath, true)
}

// replay writes the trace even when a gesture fails, up to and including the last
// step that ran. Stdout is only closed when closeStdout is set.
func replay(ctx context.Context, ms *xmain.State, inputPath, outputPath string, closeStdout bool) (err error) {
	defer xdefer.Errorf(&err, "failed to replay %s", ms.HumanPath(inputPath))

	b, err := ms.ReadPath(inputPath)
	if err != nil {
		return err
	}
	s, err := dbscript.Parse(b)
	if err != nil {
		return err
	}

	steps, replayErr := dbscript.Replay(ctx, s)
	trace := dbscript.FormatTrace(steps)
	if outputPath == "-" && !closeStdout {
		_, err = ms.Stdout.Write(trace)
	} else {
		err = ms.WritePath(outputPath, trace)
	}
	if err != nil {
		return err
	}
	if replayErr != nil {
		return fmt.Errorf("partial trace written: %w", replayErr)
	}

	if len(steps) > 0 {
		ms.Log.Debug.Printf("final block: %s", steps[len(steps)-1].Rect)
	}
	if outputPath != "-" {
		ms.Log.Success.Printf("replayed %d gestures from %s to %s", len(s.Gestures), ms.HumanPath(inputPath), ms.HumanPath(outputPath))
	}
	return nil
}
