package dbcli

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"oss.terrastruct.com/dragblock/lib/xmain"
)

// watcher reruns fn every time inputPath changes. Runs happen on the watch loop's
// goroutine, one at a time.
type watcher struct {
	ms        *xmain.State
	inputPath string
	fn        func(context.Context) error

	fw *fsnotify.Watcher
}

func newWatcher(ms *xmain.State, inputPath string, fn func(context.Context) error) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &watcher{
		ms:        ms,
		inputPath: inputPath,
		fn:        fn,
		fw:        fw,
	}, nil
}

func (w *watcher) run(ctx context.Context) error {
	defer w.fw.Close()
	err := w.watchLoop(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (w *watcher) replay(ctx context.Context) {
	if err := w.fn(ctx); err != nil {
		w.ms.Log.Error.Print(err)
	}
}

func (w *watcher) watchLoop(ctx context.Context) error {
	lastModified, err := w.ensureAddWatch(ctx, w.inputPath)
	if err != nil {
		return err
	}
	w.ms.Log.Info.Printf("replaying %v...", w.ms.HumanPath(w.inputPath))
	w.replay(ctx)

	eatBurstTimer := time.NewTimer(0)
	<-eatBurstTimer.C
	pollTicker := time.NewTicker(time.Second * 10)
	defer pollTicker.Stop()

	changed := false

	for {
		select {
		case <-pollTicker.C:
			// Editors that replace the file on save can leave us watching an inode that
			// no longer exists, without an event saying so.
			mt, err := w.ensureAddWatch(ctx, w.inputPath)
			if err != nil {
				return err
			}
			if !mt.Equal(lastModified) {
				lastModified = mt
				w.ms.Log.Info.Printf("detected missed change in %s: replaying...", w.ms.HumanPath(w.inputPath))
				w.replay(ctx)
			}
		case ev, ok := <-w.fw.Events:
			if !ok {
				return errors.New("fsnotify watcher closed")
			}
			w.ms.Log.Debug.Printf("received file system event %v", ev)
			mt, err := w.ensureAddWatch(ctx, w.inputPath)
			if err != nil {
				return err
			}
			if ev.Op == fsnotify.Chmod && mt.Equal(lastModified) {
				// Benign Chmod.
				continue
			}
			lastModified = mt
			changed = true
			// Wait for a quiet period so one save that produces several events replays
			// once, and never against a half written file.
			eatBurstTimer.Reset(time.Millisecond * 16)
		case <-eatBurstTimer.C:
			if !changed {
				continue
			}
			changed = false
			w.ms.Log.Info.Printf("detected change in %s: replaying...", w.ms.HumanPath(w.inputPath))
			w.replay(ctx)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return errors.New("fsnotify watcher closed")
			}
			w.ms.Log.Error.Printf("fsnotify error: %v", err)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ensureAddWatch retries with backoff until path can be watched, e.g. while an editor
// is in the middle of replacing it.
func (w *watcher) ensureAddWatch(ctx context.Context, path string) (time.Time, error) {
	interval := time.Millisecond * 16
	tc := time.NewTimer(0)
	<-tc.C
	for {
		mt, err := w.addWatch(path)
		if err == nil {
			return mt, nil
		}
		if interval >= time.Second {
			w.ms.Log.Error.Printf("failed to watch %q: %v (retrying in %v)", w.ms.HumanPath(path), err, interval)
		}

		tc.Reset(interval)
		select {
		case <-tc.C:
			if interval < time.Second {
				interval = time.Second
			}
			if interval < time.Second*16 {
				interval *= 2
			}
		case <-ctx.Done():
			return time.Time{}, ctx.Err()
		}
	}
}

func (w *watcher) addWatch(path string) (time.Time, error) {
	err := w.fw.Add(path)
	if err != nil {
		return time.Time{}, err
	}
	d, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return d.ModTime(), nil
}
