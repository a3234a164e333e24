package systems

import (
	"github.com/spaghettifunk/hyperion/engine/assets"
	"github.com/spaghettifunk/hyperion/engine/renderer/opengl"
)

// SystemManager wires every renderer system together over one GL
// pipeline. Construction order follows the dependency chain: GPU
// pipeline first, leaf systems next, the frame frontend last.
type SystemManager struct {
	Pipeline *opengl.Pipeline

	AssetManager *assets.AssetManager

	TextureSystem     *TextureSystem
	ShaderSystem      *ShaderSystem
	MaterialSystem    *MaterialSystem
	MeshSystem        *MeshSystem
	CameraSystem      *CameraSystem
	EnvironmentSystem *EnvironmentSystem
	LightSystem       *LightSystem
	DrawCallSystem    *DrawCallSystem
	RendererSystem    *RendererSystem
}

// SystemManagerConfig carries the renderer-wide settings.
type SystemManagerConfig struct {
	Width  int
	Height int

	AssetBasePath    string
	ShadowResolution int
	MaxLightCount    int
	MaxShadowMaps    int
	DrawCallCapacity int
}

func NewSystemManager(config *SystemManagerConfig) (*SystemManager, error) {
	pipeline, err := opengl.NewPipeline()
	if err != nil {
		return nil, err
	}

	assetManager, err := assets.NewAssetManager(config.AssetBasePath)
	if err != nil {
		return nil, err
	}

	ts, err := NewTextureSystem(&TextureSystemConfig{
		MaxTextureCount: 65536,
	}, pipeline)
	if err != nil {
		return nil, err
	}

	ss, err := NewShaderSystem(&ShaderSystemConfig{
		MaxShaderCount: 1024,
	}, pipeline)
	if err != nil {
		return nil, err
	}

	mats, err := NewMaterialSystem(assetManager, ts, ss)
	if err != nil {
		return nil, err
	}

	ms, err := NewMeshSystem(&MeshSystemConfig{
		MaxMeshCount: 4096,
	}, pipeline)
	if err != nil {
		return nil, err
	}

	cs, err := NewCameraSystem(&CameraSystemConfig{
		MaxCameraCount: 61,
	})
	if err != nil {
		return nil, err
	}

	es, err := NewEnvironmentSystem(pipeline)
	if err != nil {
		return nil, err
	}

	ls, err := NewLightSystem(&LightSystemConfig{
		MaxLightCount:     config.MaxLightCount,
		MaxShadowMapCount: config.MaxShadowMaps,
		ShadowResolution:  config.ShadowResolution,
	}, pipeline)
	if err != nil {
		return nil, err
	}

	dcs, err := NewDrawCallSystem(&DrawCallSystemConfig{
		InitialCapacity: config.DrawCallCapacity,
	}, pipeline)
	if err != nil {
		return nil, err
	}

	rs, err := NewRendererSystem(&RendererSystemConfig{
		Width:  config.Width,
		Height: config.Height,
	}, pipeline)
	if err != nil {
		return nil, err
	}
	rs.Wire(dcs, ls, es, ss, ts)

	return &SystemManager{
		Pipeline:          pipeline,
		AssetManager:      assetManager,
		TextureSystem:     ts,
		ShaderSystem:      ss,
		MaterialSystem:    mats,
		MeshSystem:        ms,
		CameraSystem:      cs,
		EnvironmentSystem: es,
		LightSystem:       ls,
		DrawCallSystem:    dcs,
		RendererSystem:    rs,
	}, nil
}

func (sm *SystemManager) OnResize(width, height int) {
	sm.RendererSystem.OnResize(width, height)
}

func (sm *SystemManager) Shutdown() error {
	if err := sm.RendererSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.DrawCallSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.LightSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.EnvironmentSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.CameraSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.MeshSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.MaterialSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.ShaderSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.TextureSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.AssetManager.Shutdown(); err != nil {
		return err
	}
	sm.Pipeline.Destroy()
	return nil
}
