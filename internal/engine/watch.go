package engine

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads scripts when files under the scripts path change. Reloads
// are marshalled onto the heartbeat through the scheduler, so container
// swaps never race a running queue. Close the returned watcher to stop.
func (e *Engine) Watch() (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(e.cfg.ScriptsPath); err != nil {
		watcher.Close()
		return nil, err
	}
	go e.watchLoop(watcher)
	return watcher, nil
}

func (e *Engine) watchLoop(watcher *fsnotify.Watcher) {
	// Editors fire bursts of events per save; coalesce them behind a short
	// settle timer before reloading once.
	var settle *time.Timer
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !isScriptFile(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			slog.Debug("script file changed",
				slog.String("file", event.Name),
				slog.String("op", event.Op.String()))
			if settle != nil {
				settle.Stop()
			}
			settle = time.AfterFunc(250*time.Millisecond, func() {
				e.sched.OnTick(func() {
					if err := e.ReloadScripts(); err != nil {
						slog.Error("script reload failed", slog.Any("error", err))
					}
				})
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Error("script watcher error", slog.Any("error", err))
		}
	}
}

func isScriptFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yml" || ext == ".yaml"
}
