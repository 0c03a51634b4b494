package store

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch blocks until ctx is done, reloading the rules file whenever it
// changes on disk and handing each successful result to onLoad. Reload
// failures are logged and skipped, so a broken edit never touches the
// caller's serving rules.
//
// The watch is registered on the parent directory: atomic replace-by-rename
// (the common editor and configmap update pattern) replaces the inode, and
// a watch on the file itself would go stale.
func (f *FileSource) Watch(ctx context.Context, onLoad func(*LoadResult)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		return err
	}
	f.log.Info().Str("path", f.path).Msg("watching rules file")

	target, err := filepath.Abs(f.path)
	if err != nil {
		target = f.path
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || name != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !f.Changed() {
				continue
			}
			res, err := f.Load(ctx)
			if err != nil {
				f.log.Error().Err(err).Str("path", f.path).Msg("reload failed, keeping current rules")
				continue
			}
			f.log.Info().Int("rules", len(res.Rules)).Int("dropped", len(res.Dropped)).
				Msg("rules file reloaded")
			onLoad(res)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.log.Warn().Err(err).Msg("rules watcher error")
		}
	}
}
