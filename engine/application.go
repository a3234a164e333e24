package engine

import (
	"fmt"
	"os"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/hyperion/engine/core"
	"github.com/spaghettifunk/hyperion/engine/platform"
	"github.com/spaghettifunk/hyperion/engine/systems"
)

type ApplicationConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX int
	// Window starting position y axis, if applicable.
	StartPosY int
	// Window starting width, if applicable.
	StartWidth int
	// Window starting height, if applicable.
	StartHeight int
	// The application name used in windowing, if applicable.
	Name string

	// Renderer settings.
	AssetBasePath    string
	ShadowResolution int
	MaxLightCount    int
	MaxShadowMaps    int
	DrawCallCapacity int
}

// applicationConfigFile is the TOML form of the configuration.
type applicationConfigFile struct {
	Window struct {
		X      int    `toml:"x"`
		Y      int    `toml:"y"`
		Width  int    `toml:"width"`
		Height int    `toml:"height"`
		Title  string `toml:"title"`
	} `toml:"window"`
	Render struct {
		AssetBasePath    string `toml:"asset_base_path"`
		ShadowResolution int    `toml:"shadow_resolution"`
		MaxLightCount    int    `toml:"max_light_count"`
		MaxShadowMaps    int    `toml:"max_shadow_maps"`
		DrawCallCapacity int    `toml:"draw_call_capacity"`
	} `toml:"render"`
}

// LoadApplicationConfig reads a TOML config file. Missing fields keep
// their zero value and fall back to defaults at startup.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file applicationConfigFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("invalid config file %q: %w", path, err)
	}
	return &ApplicationConfig{
		StartPosX:        file.Window.X,
		StartPosY:        file.Window.Y,
		StartWidth:       file.Window.Width,
		StartHeight:      file.Window.Height,
		Name:             file.Window.Title,
		AssetBasePath:    file.Render.AssetBasePath,
		ShadowResolution: file.Render.ShadowResolution,
		MaxLightCount:    file.Render.MaxLightCount,
		MaxShadowMaps:    file.Render.MaxShadowMaps,
		DrawCallCapacity: file.Render.DrawCallCapacity,
	}, nil
}

func (c *ApplicationConfig) applyDefaults() {
	if c.StartWidth == 0 {
		c.StartWidth = 1280
	}
	if c.StartHeight == 0 {
		c.StartHeight = 720
	}
	if c.Name == "" {
		c.Name = "Hyperion"
	}
	if c.AssetBasePath == "" {
		wd, err := os.Getwd()
		if err == nil {
			c.AssetBasePath = wd
		}
	}
	if c.ShadowResolution == 0 {
		c.ShadowResolution = 2048
	}
	if c.MaxLightCount == 0 {
		c.MaxLightCount = 256
	}
	if c.MaxShadowMaps == 0 {
		c.MaxShadowMaps = 32
	}
	if c.DrawCallCapacity == 0 {
		c.DrawCallCapacity = 1024
	}
}

type applicationState struct {
	GameInstance  *Game
	IsRunning     bool
	IsSuspended   bool
	PlatformState *platform.Platform
	Width         int
	Height        int
	Metrics       *core.Metrics
	Uptime        *core.Clock
	LastTime      float64
}

var newApplication sync.Once

var appState *applicationState

func ApplicationCreate(gameInstance *Game) error {
	if appState != nil {
		return fmt.Errorf("application already initialized")
	}

	newApplication.Do(func() {
		appState = &applicationState{
			GameInstance: gameInstance,
			Metrics:      core.NewMetrics(),
			Uptime:       core.NewClock(),
			IsRunning:    true,
		}
	})

	config := gameInstance.ApplicationConfig
	config.applyDefaults()

	p, err := platform.New()
	if err != nil {
		return err
	}
	appState.PlatformState = p

	if err := p.Startup(config.Name, config.StartPosX, config.StartPosY,
		config.StartWidth, config.StartHeight); err != nil {
		return err
	}

	appState.Width = config.StartWidth
	appState.Height = config.StartHeight

	sm, err := systems.NewSystemManager(&systems.SystemManagerConfig{
		Width:            config.StartWidth,
		Height:           config.StartHeight,
		AssetBasePath:    config.AssetBasePath,
		ShadowResolution: config.ShadowResolution,
		MaxLightCount:    config.MaxLightCount,
		MaxShadowMaps:    config.MaxShadowMaps,
		DrawCallCapacity: config.DrawCallCapacity,
	})
	if err != nil {
		return err
	}
	gameInstance.SystemManager = sm

	p.SetResizeCallback(func(w, h int) {
		appState.Width = w
		appState.Height = h
		sm.OnResize(w, h)
		if gameInstance.FnOnResize != nil {
			if err := gameInstance.FnOnResize(w, h); err != nil {
				core.LogError(err.Error())
			}
		}
	})

	if gameInstance.FnInitialize != nil {
		if err := gameInstance.FnInitialize(); err != nil {
			return err
		}
	}

	return nil
}

func ApplicationRun() error {
	game := appState.GameInstance
	p := appState.PlatformState

	appState.Uptime.Start()
	appState.LastTime = p.Time()

	for appState.IsRunning && !p.ShouldClose() {
		p.PollEvents()

		now := p.Time()
		delta := now - appState.LastTime
		appState.LastTime = now
		appState.Metrics.Update(delta)

		game.SystemManager.RendererSystem.SetFrameTime(float32(delta))
		game.SystemManager.MaterialSystem.ProcessReloads()

		if !appState.IsSuspended {
			if game.FnUpdate != nil {
				if err := game.FnUpdate(delta); err != nil {
					core.LogError("game update failed: %s", err)
					appState.IsRunning = false
					break
				}
			}
			if game.FnRender != nil {
				if err := game.FnRender(delta); err != nil {
					core.LogError("game render failed: %s", err)
					appState.IsRunning = false
					break
				}
			}
			p.SwapBuffers()
		}
	}

	appState.IsRunning = false
	appState.Uptime.Update()
	core.LogInfo("application ran for %.1fs (avg %.2fms/frame, %.0f fps)",
		appState.Uptime.Elapsed()/1e9, appState.Metrics.FrameTime(), appState.Metrics.FPS())
	return nil
}

func ApplicationShutdown() error {
	if appState == nil {
		return nil
	}
	appState.IsRunning = false
	if appState.GameInstance.SystemManager != nil {
		if err := appState.GameInstance.SystemManager.Shutdown(); err != nil {
			core.LogError(err.Error())
		}
	}
	return appState.PlatformState.Shutdown()
}
