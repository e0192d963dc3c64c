package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"studyhub/internal/timer"
)

// WatchTimerDefaults republishes the YAML timer settings at path to feed
// whenever the file is written or replaced, until ctx is cancelled. The
// parent directory is watched so editors that save by rename are seen.
func WatchTimerDefaults(ctx context.Context, path string, feed *timer.SettingsFeed) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create settings watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch settings dir: %w", err)
	}

	go func() {
		defer watcher.Close()
		target := filepath.Clean(path)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				settings, err := LoadTimerDefaults(path)
				if err != nil {
					log.Printf("reload timer settings: %v", err)
					continue
				}
				if err := feed.Publish(settings); err != nil {
					log.Printf("apply timer settings: %v", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("settings watcher: %v", err)
			}
		}
	}()
	return nil
}
