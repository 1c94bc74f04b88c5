package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Manager holds the active configuration and reloads it when the config
// file changes on disk.
type Manager struct {
	mu             sync.RWMutex
	config         *Config
	onConfigReload func()

	watcher  *fsnotify.Watcher
	stopOnce sync.Once
	done     chan struct{}
}

func NewManager() (*Manager, error) {
	cfg, err := Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Manager{
		config: cfg,
		done:   make(chan struct{}),
	}, nil
}

func (m *Manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// SetOnConfigReload registers a callback invoked after every successful
// reload. Call before StartWatching.
func (m *Manager) SetOnConfigReload(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onConfigReload = fn
}

// StartWatching watches the config file's directory for changes. Editors
// replace files instead of rewriting them, so watching the directory
// catches rename-based saves too.
func (m *Manager) StartWatching(ctx context.Context) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(configPath)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	m.watcher = watcher

	go m.watch(ctx, configPath)
	return nil
}

func (m *Manager) watch(ctx context.Context, configPath string) {
	// Debounce: editors fire several events per save
	var reloadTimer *time.Timer
	defer func() {
		if reloadTimer != nil {
			reloadTimer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(configPath) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			reloadTimer = time.AfterFunc(200*time.Millisecond, m.reload)

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Config: watcher error: %v", err)

		case <-ctx.Done():
			return
		case <-m.done:
			return
		}
	}
}

func (m *Manager) reload() {
	cfg, err := Load()
	if err != nil {
		log.Printf("Config: reload failed, keeping previous configuration: %v", err)
		return
	}

	if err := cfg.Validate(); err != nil {
		log.Printf("Config: reloaded config is invalid, keeping previous configuration: %v", err)
		return
	}

	m.mu.Lock()
	m.config = cfg
	fn := m.onConfigReload
	m.mu.Unlock()

	log.Printf("Config: configuration reloaded")

	if fn != nil {
		fn()
	}
}

func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.done)
		if m.watcher != nil {
			m.watcher.Close()
		}
	})
}
