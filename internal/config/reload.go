package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/famish99/mpdc/internal/mpdlog"
)

// Holder keeps the current Config behind a mutex and, when started,
// watches its backing file for changes, reloading and notifying
// listeners on write. The Key Resolver's trie-builder is the expected
// subscriber: a config edit on disk must rebuild the trie before the
// next keypress is resolved against it.
type Holder struct {
	mu   sync.RWMutex
	cfg  *Config
	path string

	watcher *fsnotify.Watcher

	listenersMu sync.Mutex
	listeners   []chan<- *Config
}

// NewHolder wraps an already-loaded Config for path (the file Watch
// watches and Reload re-reads via LoadConfig).
func NewHolder(cfg *Config, path string) *Holder {
	return &Holder{cfg: cfg, path: path}
}

// Get returns the current configuration.
func (h *Holder) Get() *Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cfg
}

// RegisterListener subscribes ch to receive the new Config after
// every successful reload. Sends are non-blocking; a full channel
// skips that notification with a warning log instead of stalling the
// watcher loop.
func (h *Holder) RegisterListener(ch chan<- *Config) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	h.listeners = append(h.listeners, ch)
}

// Reload re-reads the config file and, if it parses, swaps it in and
// notifies listeners. A parse failure keeps the previous config and
// returns the error.
func (h *Holder) Reload() error {
	cfg, err := LoadConfig(h.path)
	if err != nil {
		mpdlog.Logger.Error().Err(err).Str("path", h.path).Msg("config reload failed")
		return err
	}

	h.mu.Lock()
	h.cfg = cfg
	h.mu.Unlock()

	h.notifyListeners(cfg)
	mpdlog.Logger.Info().Str("path", h.path).Msg("config reloaded")
	return nil
}

func (h *Holder) notifyListeners(cfg *Config) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	for _, ch := range h.listeners {
		select {
		case ch <- cfg:
		default:
			mpdlog.Logger.Warn().Msg("config reload listener channel full, dropping notification")
		}
	}
}

// Watch starts a background goroutine watching the config file's
// directory (so editors that replace-by-rename are handled) and
// reloads on Write/Create/Rename events, debounced so a burst of
// filesystem events produces one reload. Stops when ctx is canceled.
func (h *Holder) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	h.watcher = watcher

	dir := filepath.Dir(h.path)
	file := filepath.Base(h.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return err
	}

	go h.watchLoop(ctx, file)
	return nil
}

func (h *Holder) watchLoop(ctx context.Context, file string) {
	const debounce = 500 * time.Millisecond
	var timer *time.Timer

	defer func() {
		if timer != nil {
			timer.Stop()
		}
		_ = h.watcher.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != file {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				if err := h.Reload(); err != nil {
					mpdlog.Logger.Error().Err(err).Msg("automatic config reload failed")
				}
			})
		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			mpdlog.Logger.Error().Err(err).Msg("config watcher error")
		}
	}
}
