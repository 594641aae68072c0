// Package tables loads the scoring reference tables and, optionally, keeps
// them in sync with the file they were loaded from.
package tables

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/turtacn/gridrisk/internal/config"
	"github.com/turtacn/gridrisk/internal/domain/reference"
	"github.com/turtacn/gridrisk/internal/domain/service"
	"github.com/turtacn/gridrisk/pkg/logger"
)

const defaultDebounce = 200 * time.Millisecond

// ReloadingTables is a service.TablesProvider whose snapshot is replaced
// atomically when the backing file changes. Readers never see a partially
// loaded document; an invalid document keeps the previous snapshot.
type ReloadingTables struct {
	path     string
	current  atomic.Pointer[reference.Tables]
	logger   logger.Logger
	debounce time.Duration

	mu        sync.Mutex
	listeners []func(*reference.Tables)
}

var _ service.TablesProvider = (*ReloadingTables)(nil)

// NewProvider returns the tables provider described by cfg: the built-in
// defaults when no path is set, a fixed snapshot of the file otherwise, or
// a ReloadingTables when watch_tables is on. Invalid tables fail here.
func NewProvider(cfg config.ScoringConfig, log logger.Logger) (service.TablesProvider, error) {
	if cfg.TablesPath == "" {
		log.Info(context.Background(), "Using built-in scoring tables", logger.Fields{"version": reference.DefaultVersion})
		return service.NewStaticTables(reference.Defaults()), nil
	}
	if !cfg.WatchTables {
		t, err := reference.LoadFile(cfg.TablesPath)
		if err != nil {
			return nil, err
		}
		log.Info(context.Background(), "Scoring tables loaded", logger.Fields{"path": cfg.TablesPath, "version": t.Version})
		return service.NewStaticTables(t), nil
	}
	return NewReloadingTables(cfg.TablesPath, log)
}

// NewReloadingTables loads path once; call Watch to follow later edits.
func NewReloadingTables(path string, log logger.Logger) (*ReloadingTables, error) {
	t, err := reference.LoadFile(path)
	if err != nil {
		return nil, err
	}
	r := &ReloadingTables{
		path:     path,
		logger:   log.WithComponent("tables"),
		debounce: defaultDebounce,
	}
	r.current.Store(t)
	return r, nil
}

// Current returns the active snapshot.
func (r *ReloadingTables) Current() *reference.Tables {
	return r.current.Load()
}

// OnReload registers fn to run after every successful reload.
func (r *ReloadingTables) OnReload(fn func(*reference.Tables)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Reload re-reads the file. On failure the previous snapshot stays active.
func (r *ReloadingTables) Reload(ctx context.Context) error {
	t, err := reference.LoadFile(r.path)
	if err != nil {
		r.logger.Error(ctx, "Ignoring invalid scoring tables", err, logger.Fields{"path": r.path})
		return err
	}
	r.current.Store(t)
	r.logger.Info(ctx, "Scoring tables reloaded", logger.Fields{"path": r.path, "version": t.Version})

	r.mu.Lock()
	listeners := append([]func(*reference.Tables){}, r.listeners...)
	r.mu.Unlock()
	for _, fn := range listeners {
		fn(t)
	}
	return nil
}

// Watch follows the file until ctx is cancelled. The parent directory is
// watched because editors and config-map mounts replace files by rename.
func (r *ReloadingTables) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		return err
	}
	target := filepath.Clean(r.path)

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending bool
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			// Debounce: editors emit several events per save.
			if timer == nil {
				timer = time.NewTimer(r.debounce)
			} else {
				timer.Reset(r.debounce)
			}
			timerC = timer.C
			pending = true
		case <-timerC:
			if pending {
				pending = false
				_ = r.Reload(ctx)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn(ctx, "Tables watcher error", logger.Fields{"error": err.Error()})
		}
	}
}
