package client

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/exp/slog"
)

// WatchStore следит за каталогом локального хранилища и после паузы
// в debounce шлет сигнал в возвращаемый канал. Канал закрывается при
// отмене ctx.
func WatchStore(ctx context.Context, dataPath string, debounce time.Duration, log *slog.Logger) (<-chan struct{}, error) {
	log = log.With("component", "watcher")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(dataPath)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	base := filepath.Base(dataPath)
	out := make(chan struct{}, 1)

	go func() {
		defer close(out)
		defer watcher.Close()

		timer := time.NewTimer(debounce)
		timer.Stop()

		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !relevant(event, base) {
					continue
				}
				log.Debug("store changed", "name", event.Name, "op", event.Op.String())
				timer.Reset(debounce)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Error("fsnotify error", "error", err)
			case <-timer.C:
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()

	return out, nil
}

// relevant файл базы или ее журнал WAL. Файл -shm меняется и при чтении.
func relevant(event fsnotify.Event, base string) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	name := filepath.Base(event.Name)
	return name == base || name == base+"-wal"
}
