package config

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"field-fighter/internal/combat"
)

const reloadSettle = 100 * time.Millisecond

// RulesWatcher reloads an archetype rule file whenever it changes on disk and
// hands each successfully parsed table to a callback. Parse failures keep the
// previous rules and are logged.
type RulesWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onReload func(combat.RuleTable)
	closeCh  chan struct{}
	done     chan struct{}
	once     sync.Once
}

// WatchArchetypes starts watching path. The directory is watched rather than
// the file so editors that replace the file on save are picked up.
func WatchArchetypes(path string, onReload func(combat.RuleTable)) (*RulesWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, err
	}

	rw := &RulesWatcher{
		path:     filepath.Clean(path),
		watcher:  w,
		onReload: onReload,
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	go rw.run()
	return rw, nil
}

// Close stops the watcher and waits for the loop to exit.
func (rw *RulesWatcher) Close() error {
	var err error
	rw.once.Do(func() {
		close(rw.closeCh)
		err = rw.watcher.Close()
		<-rw.done
	})
	return err
}

func (rw *RulesWatcher) run() {
	defer close(rw.done)

	// editors emit several events per save; reload once they settle
	settle := time.NewTimer(time.Hour)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case event, ok := <-rw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != rw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			settle.Reset(reloadSettle)
		case <-settle.C:
			rw.reload()
		case err, ok := <-rw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("⚠️ Archetype watcher error: %v", err)
		case <-rw.closeCh:
			return
		}
	}
}

func (rw *RulesWatcher) reload() {
	rules, err := LoadArchetypes(rw.path)
	if err != nil {
		log.Printf("⚠️ Archetype reload failed, keeping previous rules: %v", err)
		return
	}
	log.Printf("🔄 Archetype rules reloaded from %s (%d archetypes)", rw.path, len(rules))
	if rw.onReload != nil {
		rw.onReload(rules)
	}
}
