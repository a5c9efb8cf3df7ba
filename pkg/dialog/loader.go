package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"dario.cat/mergo"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// DefaultDialogName is the definition the engine runs.
const DefaultDialogName = "order"

// Loader loads and optionally hot-reloads dialog definitions from YAML files.
// Every file is overlaid on DefaultDefinition.
type Loader struct {
	dir string

	mu   sync.RWMutex
	defs map[string]*Definition
}

// NewLoader creates a new dialog loader for the given directory. An empty
// dir serves only the built-in definition.
func NewLoader(dir string) *Loader {
	return &Loader{
		dir:  dir,
		defs: make(map[string]*Definition),
	}
}

// LoadAll loads all .yaml and .yml files from the configured directory.
// On error the previously loaded set stays active.
func (l *Loader) LoadAll() (map[string]*Definition, error) {
	if l.dir == "" {
		return l.All(), nil
	}

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read dialog dir %q: %w", l.dir, err)
	}

	result := make(map[string]*Definition)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(l.dir, entry.Name())
		def, err := l.loadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load %q: %w", path, err)
		}
		result[def.Name] = def
	}

	l.mu.Lock()
	l.defs = result
	l.mu.Unlock()

	return result, nil
}

// Get returns a loaded definition by name.
func (l *Loader) Get(name string) (*Definition, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	def, ok := l.defs[name]
	return def, ok
}

// All returns all loaded definitions.
func (l *Loader) All() map[string]*Definition {
	l.mu.RLock()
	defer l.mu.RUnlock()
	result := make(map[string]*Definition, len(l.defs))
	for k, v := range l.defs {
		result[k] = v
	}
	return result
}

// Definition returns the loaded order definition, or the built-in one.
func (l *Loader) Definition() *Definition {
	if def, ok := l.Get(DefaultDialogName); ok {
		return def
	}
	def := DefaultDefinition()
	return &def
}

func (l *Loader) loadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var overlay Definition
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	if overlay.Name == "" {
		overlay.Name = DefaultDialogName
	}

	def := DefaultDefinition()
	if err := mergo.Merge(&def, overlay, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("overlay defaults: %w", err)
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}

	return &def, nil
}

// WatchAndReload starts watching the dialog directory for changes and reloads.
// This blocks until ctx is done.
func (l *Loader) WatchAndReload(ctx context.Context) error {
	if l.dir == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(l.dir); err != nil {
		return fmt.Errorf("watch dir %q: %w", l.dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) {
				ext := filepath.Ext(event.Name)
				if ext == ".yaml" || ext == ".yml" {
					if _, err := l.LoadAll(); err != nil {
						slog.WarnContext(ctx, "dialog reload failed, keeping previous definitions",
							slog.String("error", err.Error()))
					}
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
