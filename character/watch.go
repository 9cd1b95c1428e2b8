package character

import (
	"context"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the character file whenever it changes on disk and
// passes each valid reload to onChange. Invalid edits are logged and the
// previous character stays in effect. Watch returns after the watcher is
// installed; the loop stops when ctx is cancelled.
func Watch(ctx context.Context, path string, onChange func(*Character)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory: editors replace files instead of writing in
	// place, which would drop a watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return err
	}

	target := filepath.Clean(path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
					continue
				}
				c, err := Load(path)
				if err != nil {
					log.Printf("[CHARACTER] reload failed, keeping previous: %v", err)
					continue
				}
				log.Printf("[CHARACTER] reloaded %q", c.Name)
				onChange(c)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[CHARACTER] watch error: %v", err)
			}
		}
	}()
	return nil
}
