package assets

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports writes to a fixed set of asset files. Events arrive on C
// as the configured (slash-separated) paths; bursts from editors saving in
// several writes are coalesced into one event after the burst settles, so
// the file is only ever read in its final state.
type Watcher struct {
	// C delivers the configured path of each changed file.
	C chan string

	fsw   *fsnotify.Watcher
	done  chan struct{}
	files map[string]string // absolute path -> configured path
	delay time.Duration
}

// NewWatcher watches the given paths beneath the dir source. The parent
// directories are watched rather than the files themselves so that editors
// replacing files atomically keep triggering events.
func NewWatcher(src *DirSource, paths []string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: %w", err)
	}

	w := &Watcher{
		C:     make(chan string, 8),
		fsw:   fsw,
		done:  make(chan struct{}),
		files: make(map[string]string, len(paths)),
		delay: 200 * time.Millisecond,
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := src.Resolve(p)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		w.files[filepath.Clean(abs)] = p
		dirs[filepath.Dir(abs)] = true
	}
	for d := range dirs {
		if err := fsw.Add(d); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", d, err)
		}
	}

	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	pending := make(map[string]bool)
	timer := time.NewTimer(w.delay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case e, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			abs := filepath.Clean(e.Name)
			cfg, watched := w.files[abs]
			if !watched {
				continue
			}
			// Held until delay passes without another write, so a save
			// made in several writes is delivered once, settled.
			pending[cfg] = true
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.delay)

		case <-timer.C:
			for cfg := range pending {
				select {
				case w.C <- cfg:
					delete(pending, cfg)
				default:
					// Main loop is behind; retried after another delay.
				}
			}
			if len(pending) > 0 {
				timer.Reset(w.delay)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("asset watch error", "err", err)

		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() {
	close(w.done)
	w.fsw.Close()
}
