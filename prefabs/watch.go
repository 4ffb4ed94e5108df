package prefabs

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rotisserie/eris"
)

const (
	KindScene  = "scenes"
	KindScript = "scripts"
)

// Change names a scene or script file that was written on disk.
type Change struct {
	Kind string
	Name string
	Path string
}

// Watcher reports edits to the scene and script directories of a Source.
type Watcher struct {
	watcher *fsnotify.Watcher
	Changes chan Change
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once

	debounce time.Duration
}

// NewWatcher watches src.Dir/scenes and src.Dir/scripts. Missing directories
// are skipped, but at least one must exist.
func NewWatcher(src Source) (*Watcher, error) {
	if src.Dir == "" {
		return nil, eris.New("prefabs: watch needs a disk directory")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, eris.Wrap(err, "prefabs: create watcher")
	}

	watched := 0
	for _, kind := range []string{KindScene, KindScript} {
		dir := filepath.Join(src.Dir, kind)
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, eris.Wrapf(err, "prefabs: watch %s", dir)
		}
		watched++
	}
	if watched == 0 {
		_ = w.Close()
		return nil, eris.Errorf("prefabs: nothing to watch under %s", src.Dir)
	}

	watcher := &Watcher{
		watcher:  w,
		Changes:  make(chan Change, 16),
		Errors:   make(chan error, 1),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
		debounce: 100 * time.Millisecond,
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Changes)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			change, ok := classify(event.Name)
			if !ok {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < w.debounce {
				continue
			}
			last[event.Name] = now
			select {
			case w.Changes <- change:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

func classify(path string) (Change, bool) {
	kind := filepath.Base(filepath.Dir(path))
	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case kind == KindScene && (ext == ".yaml" || ext == ".yml"):
	case kind == KindScript && ext == ".tengo":
	default:
		return Change{}, false
	}
	return Change{Kind: kind, Name: name, Path: path}, true
}
