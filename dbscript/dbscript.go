// Package dbscript replays recorded gestures against a block without a pointer device.
package dbscript

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/multierr"

	"oss.terrastruct.com/xdefer"

	"oss.terrastruct.com/dragblock/dbblock"
	"oss.terrastruct.com/dragblock/dbgesture"
	"oss.terrastruct.com/dragblock/dbstate"
	"oss.terrastruct.com/dragblock/lib/geo"
)

type Script struct {
	Block    BlockSpec `json:"block"`
	Gestures []Gesture `json:"gestures"`
}

type BlockSpec struct {
	X          float64             `json:"x"`
	Y          float64             `json:"y"`
	W          *float64            `json:"w,omitempty"`
	H          *float64            `json:"h,omitempty"`
	MinW       *float64            `json:"minW,omitempty"`
	MinH       *float64            `json:"minH,omitempty"`
	Axis       string              `json:"axis,omitempty"`
	Limitation *dbstate.Limitation `json:"limitation,omitempty"`
	Disabled   bool                `json:"disabled,omitempty"`
	Draggable  *bool               `json:"draggable,omitempty"`
	Resizable  *bool               `json:"resizable,omitempty"`
	Handles    []string            `json:"handles,omitempty"`
}

// Gesture is one start, one move per delta, one end. Press gestures carry no deltas
// and only report a press.
type Gesture struct {
	Handle string      `json:"handle,omitempty"`
	Deltas [][]float64 `json:"deltas,omitempty"`
	Press  *geo.Point  `json:"press,omitempty"`
}

func Parse(b []byte) (_ *Script, err error) {
	defer xdefer.Errorf(&err, "failed to parse gesture script")

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()

	var s Script
	if err := dec.Decode(&s); err != nil {
		return nil, err
	}
	offset := dec.InputOffset()
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected content after the script at offset %d", offset)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate reports every structural problem at once. Geometry is not checked: a
// block that starts outside its limitation is legal, it just cannot move.
func (s *Script) Validate() error {
	var err error
	if _, aerr := dbstate.ParseAxis(s.Block.Axis); aerr != nil {
		err = multierr.Append(err, fmt.Errorf("block: %w", aerr))
	}
	if s.Block.Limitation == nil {
		err = multierr.Append(err, fmt.Errorf("block: limitation is required"))
	}
	seen := make(map[dbgesture.Handle]int, len(s.Block.Handles))
	for i, h := range s.Block.Handles {
		hd, herr := dbgesture.ParseHandle(h)
		if herr != nil {
			err = multierr.Append(err, fmt.Errorf("block.handles[%d]: %w", i, herr))
			continue
		}
		if j, ok := seen[hd]; ok {
			err = multierr.Append(err, fmt.Errorf("block.handles[%d]: %q repeats block.handles[%d]", i, h, j))
			continue
		}
		seen[hd] = i
	}
	for i, g := range s.Gestures {
		if g.Press != nil {
			if g.Handle != "" || len(g.Deltas) > 0 {
				err = multierr.Append(err, fmt.Errorf("gestures[%d]: a press takes no handle or deltas", i))
			}
			continue
		}
		if _, herr := dbgesture.ParseHandle(g.Handle); herr != nil {
			err = multierr.Append(err, fmt.Errorf("gestures[%d]: %w", i, herr))
		}
		for j, d := range g.Deltas {
			if len(d) != 2 {
				err = multierr.Append(err, fmt.Errorf("gestures[%d].deltas[%d]: expected [dx, dy], got %d components", i, j, len(d)))
			}
		}
	}
	return err
}

func (s *Script) Config() (dbblock.Config, error) {
	axis, err := dbstate.ParseAxis(s.Block.Axis)
	if err != nil {
		return dbblock.Config{}, err
	}
	cfg := dbblock.Config{
		X:          s.Block.X,
		Y:          s.Block.Y,
		W:          s.Block.W,
		H:          s.Block.H,
		MinW:       s.Block.MinW,
		MinH:       s.Block.MinH,
		Axis:       axis,
		Limitation: s.Block.Limitation,
		Disabled:   s.Block.Disabled,
		Draggable:  s.Block.Draggable,
		Resizable:  s.Block.Resizable,
	}
	for _, hs := range s.Block.Handles {
		h, err := dbgesture.ParseHandle(hs)
		if err != nil {
			return dbblock.Config{}, err
		}
		cfg.Handles = append(cfg.Handles, h)
	}
	return cfg, nil
}

type Kind string

const (
	KindStart Kind = "start"
	KindMove  Kind = "move"
	KindEnd   Kind = "end"
	KindPress Kind = "press"
)

// Step is the block state right after one event.
type Step struct {
	Gesture int              `json:"gesture"`
	Handle  dbgesture.Handle `json:"handle,omitempty"`
	Kind    Kind             `json:"kind"`
	Rect    dbstate.Rect     `json:"rect"`
}

func (s Step) String() string {
	h := string(s.Handle)
	if h == "" {
		h = "-"
	}
	r := s.Rect
	return fmt.Sprintf("%d %s %s x=%v y=%v w=%v h=%v selected=%v", s.Gesture, h, s.Kind, r.X, r.Y, r.W, r.H, r.Selected)
}

// Replay drives a fresh block through every gesture, using the same registrations a
// pointer front end would.
func Replay(ctx context.Context, s *Script) (_ []Step, err error) {
	defer xdefer.Errorf(&err, "failed to replay gesture script")

	cfg, err := s.Config()
	if err != nil {
		return nil, err
	}
	b := dbblock.New(ctx, cfg)

	var steps []Step
	for i, g := range s.Gestures {
		if g.Press != nil {
			b.Press(ctx, *g.Press)
			steps = append(steps, Step{Gesture: i, Kind: KindPress, Rect: b.Rect()})
			continue
		}

		h, err := dbgesture.ParseHandle(g.Handle)
		if err != nil {
			return steps, err
		}
		reg, ok := b.Registration(h)
		if !ok {
			return steps, fmt.Errorf("gestures[%d]: handle %q is not active on this block", i, h.Name())
		}

		reg.OnStart(ctx)
		steps = append(steps, Step{Gesture: i, Handle: h, Kind: KindStart, Rect: b.Rect()})
		for _, d := range g.Deltas {
			reg.OnMove(ctx, geo.NewVector(d...))
			steps = append(steps, Step{Gesture: i, Handle: h, Kind: KindMove, Rect: b.Rect()})
		}
		reg.OnEnd(ctx)
		steps = append(steps, Step{Gesture: i, Handle: h, Kind: KindEnd, Rect: b.Rect()})
	}
	return steps, nil
}

func FormatTrace(steps []Step) []byte {
	var sb strings.Builder
	for _, s := range steps {
		sb.WriteString(s.String())
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}
