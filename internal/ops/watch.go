package ops

import (
	"context"
	"os"
	"time"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// Watcher reloads a config file when its modification time advances.
type Watcher struct {
	path     string
	interval time.Duration
	lastMod  time.Time
}

// NewWatcher records the current modification time of path as the baseline,
// so any later edit is picked up by Run.
func NewWatcher(path string, interval time.Duration) (*Watcher, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "stat config %s", path)
	}
	return &Watcher{path: path, interval: interval, lastMod: info.ModTime()}, nil
}

// Run polls every interval and calls update with each reloaded config until ctx
// is done. Invalid files are logged and skipped.
func (w *Watcher) Run(ctx context.Context, update func(Loaded)) {
	if w.interval <= 0 {
		return
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			info, err := os.Stat(w.path)
			if err != nil {
				logs.Errorf("config stat failed, err: %+v", err)
				continue
			}
			if !info.ModTime().After(w.lastMod) {
				continue
			}
			w.lastMod = info.ModTime()
			loaded, err := Load(w.path)
			if err != nil {
				logs.Errorf("config reload failed, err: %+v", err)
				continue
			}
			update(loaded)
			logs.Infof("config reloaded: %s", w.path)
		}
	}
}
