package watcher

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tobiasfrejo/rv-thesis-supporting-material/internal/util"
)

// DefaultDebounce is how long the watcher waits for writes to settle
const DefaultDebounce = 200 * time.Millisecond

// Event is a change to a watched trace file
type Event struct {
	Path      string
	Operation string
}

// FileWatcher reports changes to trace files, batched per quiet period
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	match    func(path string) bool
	files    map[string]struct{}
	debounce time.Duration
	events   chan []Event
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// NewFileWatcher watches paths. Directories are watched recursively and
// report every file accepted by match; a file path is watched through its
// directory and reports only itself. A nil match accepts every file.
func NewFileWatcher(paths []string, match func(string) bool, debounce time.Duration) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if match == nil {
		match = func(string) bool { return true }
	}

	fw := &FileWatcher{
		watcher:  watcher,
		match:    match,
		files:    make(map[string]struct{}),
		debounce: debounce,
		events:   make(chan []Event, 16),
		done:     make(chan struct{}),
	}

	for _, path := range paths {
		if err := fw.addPath(path); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	fw.wg.Add(1)
	go fw.processEvents()

	return fw, nil
}

func (fw *FileWatcher) addPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		fw.files[abs] = struct{}{}
		return fw.watcher.Add(filepath.Dir(abs))
	}

	return filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return fw.watcher.Add(p)
		}
		return nil
	})
}

func (fw *FileWatcher) accepts(name string) bool {
	if len(fw.files) > 0 {
		abs, err := filepath.Abs(name)
		if err == nil {
			if _, ok := fw.files[abs]; ok {
				return true
			}
		}
	}
	return fw.watchesDir(filepath.Dir(name)) && fw.match(name)
}

// watchesDir reports whether dir was added as a directory, not on behalf of a file
func (fw *FileWatcher) watchesDir(dir string) bool {
	for f := range fw.files {
		if filepath.Dir(f) == dir {
			return false
		}
	}
	return true
}

func (fw *FileWatcher) processEvents() {
	defer fw.wg.Done()
	defer close(fw.events)

	pending := make(map[string]string)
	timer := time.NewTimer(fw.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	flush := func() {
		if len(pending) == 0 {
			return
		}
		batch := make([]Event, 0, len(pending))
		for path, op := range pending {
			batch = append(batch, Event{Path: path, Operation: op})
		}
		sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
		pending = make(map[string]string)

		select {
		case fw.events <- batch:
		case <-fw.done:
		}
	}

	for {
		select {
		case <-fw.done:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !fw.accepts(event.Name) {
				continue
			}
			util.LogDebugf("Trace file changed: %s (%s)", event.Name, event.Op)
			pending[event.Name] = event.Op.String()
			timer.Reset(fw.debounce)

		case <-timer.C:
			flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			util.LogError("File monitoring error", util.F("error", err.Error()))
		}
	}
}

// Events delivers batches of changes. The channel is closed by Close.
func (fw *FileWatcher) Events() <-chan []Event {
	return fw.events
}

// Close stops watching and waits for the event loop to exit
func (fw *FileWatcher) Close() error {
	var err error
	fw.once.Do(func() {
		close(fw.done)
		err = fw.watcher.Close()
		fw.wg.Wait()
	})
	return err
}
