package systems

import (
	"fmt"

	"github.com/spaghettifunk/hyperion/engine/core"
	"github.com/spaghettifunk/hyperion/engine/resources"
)

/** @brief The camera system configuration. */
type CameraSystemConfig struct {
	/** @brief The maximum number of registered cameras. */
	MaxCameraCount int
}

/** @brief The name of the default camera. */
const DefaultCameraName = "default"

// CameraSystem keeps named cameras so host code can address them
// without holding pointers.
type CameraSystem struct {
	config  *CameraSystemConfig
	cameras map[string]*resources.Camera
}

func NewCameraSystem(config *CameraSystemConfig) (*CameraSystem, error) {
	if config.MaxCameraCount == 0 {
		return nil, fmt.Errorf("NewCameraSystem - config.MaxCameraCount must be greater than 0")
	}

	cs := &CameraSystem{
		config:  config,
		cameras: make(map[string]*resources.Camera),
	}

	defaultCamera := resources.DefaultCamera()
	cs.cameras[DefaultCameraName] = &defaultCamera

	return cs, nil
}

// Acquire returns the named camera, creating it on first use.
func (cs *CameraSystem) Acquire(name string) *resources.Camera {
	if camera, ok := cs.cameras[name]; ok {
		return camera
	}
	if len(cs.cameras) >= cs.config.MaxCameraCount {
		core.LogError("RENDER: camera count limit reached (%d)", cs.config.MaxCameraCount)
		return cs.cameras[DefaultCameraName]
	}
	camera := resources.DefaultCamera()
	cs.cameras[name] = &camera
	return &camera
}

// Default returns the default camera.
func (cs *CameraSystem) Default() *resources.Camera {
	return cs.cameras[DefaultCameraName]
}

// Release removes a named camera. The default camera is kept.
func (cs *CameraSystem) Release(name string) {
	if name == DefaultCameraName {
		return
	}
	delete(cs.cameras, name)
}

func (cs *CameraSystem) Shutdown() error {
	cs.cameras = make(map[string]*resources.Camera)
	return nil
}
