package config

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a config file whenever it changes on disk.
// Only the most recent result is kept; a reader that falls behind sees the latest config.
type Watcher struct {
	path string
	fsw  *fsnotify.Watcher

	updates chan *Config
	errors  chan error

	closeCh   chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Watch starts watching path. The parent directory is watched so editors that
// replace the file by rename are still seen; the directory must exist.
func Watch(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		path:    abs,
		fsw:     fsw,
		updates: make(chan *Config, 1),
		errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}

	w.wg.Add(1)
	go w.processLoop()
	return w, nil
}

// Updates delivers each successfully loaded and validated config
func (w *Watcher) Updates() <-chan *Config {
	return w.updates
}

// Errors delivers load and watch failures; the previous config stays in effect
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher. Safe to call more than once
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.closeCh)
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) processLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
				continue
			}
			w.reload()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			send(w.errors, err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		send(w.errors, err)
		return
	}
	send(w.updates, cfg)
}

// send replaces any unread value with v
func send[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
