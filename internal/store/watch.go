package store

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDebounce is how long the uploads directory must stay quiet before a
// change is reported.
var WatchDebounce = 250 * time.Millisecond

// Watch calls onChange after files in the uploads directory are created,
// written, removed or renamed. Bursts of events collapse into one call.
// It blocks until ctx is done.
func (s Store) Watch(ctx context.Context, onChange func()) error {
	if err := s.Ensure(); err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(s.uploadsDir()); err != nil {
		return err
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(WatchDebounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(WatchDebounce)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger().WithError(err).Warn("uploads watcher")
		case <-fire:
			fire = nil
			onChange()
		}
	}
}
