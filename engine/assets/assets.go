package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/spaghettifunk/hyperion/engine/assets/loaders"
	"github.com/spaghettifunk/hyperion/engine/core"
	"github.com/spaghettifunk/hyperion/engine/resources"
)

// Asset is one loaded resource with its identity and origin path.
type Asset struct {
	ID       uuid.UUID
	Name     string
	FullPath string
	Data     interface{}
}

// AssetManager resolves names below a base path, decodes files through
// the typed loaders, and watches shader sources for hot reload.
type AssetManager struct {
	basePath string

	mu     sync.Mutex
	assets map[string]*Asset

	watcher        *fsnotify.Watcher
	watchCallbacks map[string]func(path string)
}

func NewAssetManager(basePath string) (*AssetManager, error) {
	info, err := os.Stat(basePath)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("asset base path %q is not a directory", basePath)
	}

	am := &AssetManager{
		basePath:       basePath,
		assets:         make(map[string]*Asset),
		watchCallbacks: make(map[string]func(string)),
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		core.LogWarn("ASSETS: file watcher unavailable, shader hot-reload disabled: %s", err)
	} else {
		am.watcher = watcher
		go am.watchLoop()
	}

	return am, nil
}

func (am *AssetManager) resolve(name string) string {
	return filepath.Join(am.basePath, name)
}

// LoadImage decodes an image file into the renderer's in-memory form.
func (am *AssetManager) LoadImage(name string) (*resources.Image, error) {
	path := am.resolve(name)
	image, err := loaders.LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image %q: %w", name, err)
	}
	am.register(name, path, image)
	return image, nil
}

// LoadMaterialDefinition parses a yaml material definition file.
func (am *AssetManager) LoadMaterialDefinition(name string) (*loaders.MaterialDefinition, error) {
	path := am.resolve(name)
	def, err := loaders.LoadMaterialDefinition(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load material %q: %w", name, err)
	}
	am.register(name, path, def)
	return def, nil
}

// LoadShaderSource reads a GLSL snippet file as text.
func (am *AssetManager) LoadShaderSource(name string) (string, error) {
	path := am.resolve(name)
	source, err := loaders.LoadShaderSource(path)
	if err != nil {
		return "", fmt.Errorf("failed to load shader source %q: %w", name, err)
	}
	am.register(name, path, source)
	return source, nil
}

// WatchShader re-invokes onChange whenever the shader source file is
// rewritten on disk. No-op when the watcher is unavailable.
func (am *AssetManager) WatchShader(name string, onChange func(path string)) {
	if am.watcher == nil {
		return
	}
	path := am.resolve(name)

	am.mu.Lock()
	am.watchCallbacks[path] = onChange
	am.mu.Unlock()

	if err := am.watcher.Add(path); err != nil {
		core.LogWarn("ASSETS: cannot watch %q: %s", path, err)
	}
}

func (am *AssetManager) watchLoop() {
	for {
		select {
		case event, ok := <-am.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			am.mu.Lock()
			callback := am.watchCallbacks[event.Name]
			am.mu.Unlock()
			if callback != nil {
				callback(event.Name)
			}
		case err, ok := <-am.watcher.Errors:
			if !ok {
				return
			}
			core.LogWarn("ASSETS: watcher error: %s", err)
		}
	}
}

func (am *AssetManager) register(name, path string, data interface{}) {
	am.mu.Lock()
	defer am.mu.Unlock()
	am.assets[name] = &Asset{
		ID:       uuid.New(),
		Name:     name,
		FullPath: path,
		Data:     data,
	}
}

// Lookup returns a previously loaded asset by name.
func (am *AssetManager) Lookup(name string) *Asset {
	am.mu.Lock()
	defer am.mu.Unlock()
	return am.assets[name]
}

func (am *AssetManager) Shutdown() error {
	if am.watcher != nil {
		return am.watcher.Close()
	}
	return nil
}
