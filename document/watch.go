package document

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// osRooted is satisfied by providers backed by a real directory.
type osRooted interface {
	Root() string
}

// Watch runs an fsnotify watcher over the document's backing directory
// until ctx is cancelled, calling onChange after external edits. Change
// bursts are debounced, since a single save touches many entries.
// Directories created at runtime are added to the watch list.
//
// Only works for providers backed by the local file system.
func (d *Document) Watch(ctx context.Context, onChange func()) error {
	rooted, ok := d.prov.(osRooted)
	if !ok {
		return fmt.Errorf("provider has no OS directory to watch")
	}
	root := filepath.Join(rooted.Root(), filepath.FromSlash(d.dir))

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	d.log.Info().Str("root", root).Msg("watcher started")

	// pending debounces event bursts into one onChange call
	var pending *time.Timer
	var pendingCh <-chan time.Time
	schedule := func() {
		if pending == nil {
			pending = time.NewTimer(200 * time.Millisecond)
			pendingCh = pending.C
		} else {
			pending.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if pending != nil {
				pending.Stop()
			}
			d.log.Info().Msg("watcher stopped")
			return nil

		case <-pendingCh:
			onChange()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op.Has(fsnotify.Create) {
				// new directories need their own watch
				if err := addDirsRecursive(w, ev.Name); err != nil {
					d.log.Debug().Err(err).Str("path", ev.Name).Msg("watch add failed")
				}
			}
			schedule()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			d.log.Warn().Err(err).Msg("watcher error")
		}
	}
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil || !entry.IsDir() {
			return nil //nolint:nilerr // transient entries vanish mid-walk
		}
		return w.Add(p)
	})
}
