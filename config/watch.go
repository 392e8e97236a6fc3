package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads path into l whenever it changes and then calls onChange with
// the reload result. The parent directory is watched so editors that replace
// the file atomically are observed. Watch blocks until ctx is done.
func (l *Loader) Watch(ctx context.Context, path string, onChange func(error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() {
		_ = w.Close()
	}()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			err := l.LoadFile(abs)
			if err != nil {
				slog.WarnContext(ctx, "config.reload", slog.String("path", abs), slog.String("err", err.Error()))
			}
			if onChange != nil {
				onChange(err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.DebugContext(ctx, "config.watch", slog.String("err", err.Error()))
		}
	}
}
