package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"marionettist/pkg/logging"
)

// Watcher reloads the configuration when config.yaml changes on disk, so
// metric specs can be tuned between experiment runs without a restart.
type Watcher struct {
	configPath string
	onChange   func(Config)
	watcher    *fsnotify.Watcher
}

// NewWatcher creates a watcher over the config directory. onChange is
// invoked with every successfully reloaded configuration.
func NewWatcher(configPath string, onChange func(Config)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(configPath); err != nil {
		fsWatcher.Close()
		return nil, err
	}
	return &Watcher{configPath: configPath, onChange: onChange, watcher: fsWatcher}, nil
}

// Run blocks until the context is done, reloading on every write to
// config.yaml. A reload failure keeps the previous configuration active.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	logging.Info("ConfigWatcher", "Watching %s for configuration changes", w.configPath)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != configFileName {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			config, err := LoadConfig(w.configPath)
			if err != nil {
				logging.Warn("ConfigWatcher", "Ignoring invalid configuration change: %v", err)
				continue
			}
			logging.Info("ConfigWatcher", "Configuration reloaded")
			w.onChange(config)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("ConfigWatcher", "Watch error: %v", err)
		}
	}
}
