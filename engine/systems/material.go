package systems

import (
	"sync"

	"github.com/spaghettifunk/hyperion/engine/assets"
	"github.com/spaghettifunk/hyperion/engine/assets/loaders"
	"github.com/spaghettifunk/hyperion/engine/core"
	"github.com/spaghettifunk/hyperion/engine/math"
	"github.com/spaghettifunk/hyperion/engine/resources"
)

/** @brief The name of the default material. */
const DefaultMaterialName string = "default"

// MaterialSystem builds materials from yaml definitions, resolving
// texture file references through the asset manager. Shader snippet
// files are watched; edits are recompiled on the GL thread at the next
// ProcessReloads.
type MaterialSystem struct {
	assetManager  *assets.AssetManager
	textureSystem *TextureSystem
	shaderSystem  *ShaderSystem

	reloadMu      sync.Mutex
	pendingReload []func()
}

func NewMaterialSystem(am *assets.AssetManager, ts *TextureSystem, ss *ShaderSystem) (*MaterialSystem, error) {
	return &MaterialSystem{
		assetManager:  am,
		textureSystem: ts,
		shaderSystem:  ss,
	}, nil
}

// Default returns the neutral material value.
func (ms *MaterialSystem) Default() resources.Material {
	return resources.DefaultMaterial()
}

// AcquireFromFile loads a yaml material definition and builds the
// material. Missing textures fall back to the defaults.
func (ms *MaterialSystem) AcquireFromFile(name string) (resources.Material, error) {
	def, err := ms.assetManager.LoadMaterialDefinition(name)
	if err != nil {
		return resources.DefaultMaterial(), err
	}
	return ms.FromDefinition(def)
}

// FromDefinition converts a parsed definition into a material.
func (ms *MaterialSystem) FromDefinition(def *loaders.MaterialDefinition) (resources.Material, error) {
	material := resources.DefaultMaterial()

	material.Albedo.Color = math.NewColor(def.AlbedoColor[0], def.AlbedoColor[1], def.AlbedoColor[2], def.AlbedoColor[3])
	material.Emission.Color = math.NewColor(def.EmissionColor[0], def.EmissionColor[1], def.EmissionColor[2], def.EmissionColor[3])
	material.Emission.Energy = def.EmissionEnergy
	material.ORM.Occlusion = def.Occlusion
	material.ORM.Roughness = def.Roughness
	material.ORM.Metalness = def.Metalness
	material.Normal.Scale = def.NormalScale
	material.AlphaCutOff = def.AlphaCutOff
	material.Depth.PrePass = def.PrePass

	if def.AlbedoTexture != "" {
		if image, err := ms.assetManager.LoadImage(def.AlbedoTexture); err == nil {
			material.Albedo.Texture = ms.textureSystem.CreateFromImage(image)
		}
	}
	if def.EmissionTexture != "" {
		if image, err := ms.assetManager.LoadImage(def.EmissionTexture); err == nil {
			material.Emission.Texture = ms.textureSystem.CreateFromImage(image)
		}
	}
	if def.ORMTexture != "" {
		if image, err := ms.assetManager.LoadImage(def.ORMTexture); err == nil {
			material.ORM.Texture = ms.textureSystem.CreateFromImage(image)
		}
	}
	if def.NormalTexture != "" {
		if image, err := ms.assetManager.LoadImage(def.NormalTexture); err == nil {
			material.Normal.Texture = ms.textureSystem.CreateFromImage(image)
		}
	}

	switch def.Shading {
	case "unlit":
		material.Shading = resources.ShadingUnlit
	case "wireframe":
		material.Shading = resources.ShadingWireframe
	}

	switch def.Blend {
	case "alpha":
		material.Blend = resources.BlendAlpha
	case "add":
		material.Blend = resources.BlendAdditive
	case "mul":
		material.Blend = resources.BlendMultiply
	}

	switch def.Cull {
	case "front":
		material.Cull = resources.CullFront
	case "none":
		material.Cull = resources.CullNone
	}

	if def.ShaderVertex != "" || def.ShaderFragment != "" {
		vertexCode, fragmentCode := ms.loadShaderSnippets(def)
		material.Shader = ms.shaderSystem.CreateMaterialShader(vertexCode, fragmentCode)
		ms.watchShaderSnippets(def, material.Shader)
	}

	return material, nil
}

func (ms *MaterialSystem) loadShaderSnippets(def *loaders.MaterialDefinition) (string, string) {
	vertexCode := ""
	fragmentCode := ""
	if def.ShaderVertex != "" {
		vertexCode, _ = ms.assetManager.LoadShaderSource(def.ShaderVertex)
	}
	if def.ShaderFragment != "" {
		fragmentCode, _ = ms.assetManager.LoadShaderSource(def.ShaderFragment)
	}
	return vertexCode, fragmentCode
}

// watchShaderSnippets re-reads and recompiles the material shader when
// either snippet file changes on disk. The watcher fires on its own
// goroutine, so the recompilation is queued for the GL thread.
func (ms *MaterialSystem) watchShaderSnippets(def *loaders.MaterialDefinition, shader *resources.MaterialShader) {
	if shader == nil {
		return
	}

	reload := func(path string) {
		ms.reloadMu.Lock()
		ms.pendingReload = append(ms.pendingReload, func() {
			vertexCode, fragmentCode := ms.loadShaderSnippets(def)
			ms.shaderSystem.ReloadMaterialShader(shader, vertexCode, fragmentCode)
			core.LogInfo("RENDER: reloaded material shader after change to %q", path)
		})
		ms.reloadMu.Unlock()
	}

	if def.ShaderVertex != "" {
		ms.assetManager.WatchShader(def.ShaderVertex, reload)
	}
	if def.ShaderFragment != "" {
		ms.assetManager.WatchShader(def.ShaderFragment, reload)
	}
}

// ProcessReloads runs queued shader recompilations. Called once per
// frame from the application loop, on the thread owning the context.
func (ms *MaterialSystem) ProcessReloads() {
	ms.reloadMu.Lock()
	pending := ms.pendingReload
	ms.pendingReload = nil
	ms.reloadMu.Unlock()

	for _, reload := range pending {
		reload()
	}
}

func (ms *MaterialSystem) Shutdown() error {
	return nil
}
