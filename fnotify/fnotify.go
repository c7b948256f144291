// Package fnotify reports debounced changes to a set of files.
package fnotify

import (
	"context"
	"log"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/fsnotify.v1"
)

const DefaultDebounce = 250 * time.Millisecond

// A Notifier watches files and reports each changed file once its writes
// have settled for Debounce.
type Notifier struct {
	name     string
	Debounce time.Duration
}

func New(name string) *Notifier {
	return &Notifier{
		name:     name,
		Debounce: DefaultDebounce,
	}
}

// Watch sends the names of changed files to changes until ctx is done or the
// watcher fails. Files that are removed and recreated (editor saves) stay
// watched.
func (n *Notifier) Watch(ctx context.Context, files []string, changes chan<- string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "fsnotify")
	}
	defer watcher.Close()
	for _, f := range files {
		if err := watcher.Add(f); err != nil {
			return errors.Wrapf(err, "watch %s", f)
		}
	}

	pending := map[string]bool{}
	debounce := time.NewTimer(n.Debounce)
	defer debounce.Stop()
	fire := func() <-chan time.Time {
		if len(pending) == 0 {
			return nil
		}
		return debounce.C
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !debounce.Stop() {
				select {
				case <-debounce.C:
				default:
				}
			}
			debounce.Reset(n.Debounce)
			pending[event.Name] = true
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				if err := watcher.Add(event.Name); err != nil {
					log.Println("watcher", n.name, "cannot re-monitor", event.Name, err)
				}
			}
		case <-fire():
			for file := range pending {
				delete(pending, file)
				select {
				case changes <- file:
				case <-ctx.Done():
					return nil
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return errors.Wrapf(err, "watcher %s", n.name)
		case <-ctx.Done():
			return nil
		}
	}
}
