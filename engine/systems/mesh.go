package systems

import (
	"fmt"

	"github.com/spaghettifunk/hyperion/engine/core"
	"github.com/spaghettifunk/hyperion/engine/math"
	"github.com/spaghettifunk/hyperion/engine/renderer/opengl"
	"github.com/spaghettifunk/hyperion/engine/resources"
)

/** @brief Configuration for the mesh system. */
type MeshSystemConfig struct {
	/** @brief The maximum number of meshes held in the system. */
	MaxMeshCount int
}

// MeshSystem owns every mesh, dynamic mesh, instance buffer and model.
// Destroy calls are idempotent on nil handles.
type MeshSystem struct {
	config   *MeshSystemConfig
	pipeline *opengl.Pipeline
	ids      *core.IdentifierPool

	meshes          map[*resources.Mesh]uint32
	dynamicMeshes   map[*resources.DynamicMesh]uint32
	instanceBuffers map[*resources.InstanceBuffer]struct{}
	models          map[*resources.Model]struct{}
}

func NewMeshSystem(config *MeshSystemConfig, pipeline *opengl.Pipeline) (*MeshSystem, error) {
	if config.MaxMeshCount == 0 {
		return nil, fmt.Errorf("NewMeshSystem - config.MaxMeshCount must be greater than 0")
	}
	return &MeshSystem{
		config:          config,
		pipeline:        pipeline,
		ids:             core.NewIdentifierPool(),
		meshes:          make(map[*resources.Mesh]uint32),
		dynamicMeshes:   make(map[*resources.DynamicMesh]uint32),
		instanceBuffers: make(map[*resources.InstanceBuffer]struct{}),
		models:          make(map[*resources.Model]struct{}),
	}, nil
}

// CreateMesh uploads vertices (and optional triangle indices) as a
// static mesh. Returns nil on invalid input.
func (ms *MeshSystem) CreateMesh(vertices []math.Vertex3D, indices []uint32) *resources.Mesh {
	if len(ms.meshes) >= ms.config.MaxMeshCount {
		core.LogError("RENDER: mesh count limit reached (%d)", ms.config.MaxMeshCount)
		return nil
	}
	mesh := resources.NewMesh(ms.pipeline, vertices, indices)
	if mesh == nil {
		return nil
	}
	ms.meshes[mesh] = ms.ids.Acquire(mesh)
	return mesh
}

// CreateDynamicMesh allocates an immediate-mode mesh.
func (ms *MeshSystem) CreateDynamicMesh(initialCapacity int) *resources.DynamicMesh {
	mesh := resources.NewDynamicMesh(ms.pipeline, initialCapacity)
	ms.dynamicMeshes[mesh] = ms.ids.Acquire(mesh)
	return mesh
}

// CreateInstanceBuffer allocates an empty instance buffer.
func (ms *MeshSystem) CreateInstanceBuffer() *resources.InstanceBuffer {
	buffer := resources.NewInstanceBuffer(ms.pipeline)
	ms.instanceBuffers[buffer] = struct{}{}
	return buffer
}

// CreateModel assembles a model from existing meshes.
func (ms *MeshSystem) CreateModel(meshes []*resources.Mesh, materials []resources.Material, meshMaterials []int) *resources.Model {
	model := resources.NewModel(meshes, materials, meshMaterials)
	if model == nil {
		return nil
	}
	ms.models[model] = struct{}{}
	return model
}

func (ms *MeshSystem) DestroyMesh(mesh *resources.Mesh) {
	if mesh == nil {
		return
	}
	id, ok := ms.meshes[mesh]
	if !ok {
		return
	}
	delete(ms.meshes, mesh)
	if err := ms.ids.Release(id); err != nil {
		core.LogWarn(err.Error())
	}
	mesh.Destroy()
}

func (ms *MeshSystem) DestroyDynamicMesh(mesh *resources.DynamicMesh) {
	if mesh == nil {
		return
	}
	id, ok := ms.dynamicMeshes[mesh]
	if !ok {
		return
	}
	delete(ms.dynamicMeshes, mesh)
	if err := ms.ids.Release(id); err != nil {
		core.LogWarn(err.Error())
	}
	mesh.Destroy()
}

func (ms *MeshSystem) DestroyInstanceBuffer(buffer *resources.InstanceBuffer) {
	if buffer == nil {
		return
	}
	if _, ok := ms.instanceBuffers[buffer]; !ok {
		return
	}
	delete(ms.instanceBuffers, buffer)
	buffer.Destroy()
}

// DestroyModel releases the model and the meshes it owns. The meshes
// are removed from the system as well.
func (ms *MeshSystem) DestroyModel(model *resources.Model) {
	if model == nil {
		return
	}
	if _, ok := ms.models[model]; !ok {
		return
	}
	delete(ms.models, model)
	for _, mesh := range model.Meshes {
		ms.DestroyMesh(mesh)
	}
	model.Meshes = nil
}

func (ms *MeshSystem) Shutdown() error {
	for model := range ms.models {
		model.Meshes = nil
	}
	for mesh := range ms.meshes {
		mesh.Destroy()
	}
	for mesh := range ms.dynamicMeshes {
		mesh.Destroy()
	}
	for buffer := range ms.instanceBuffers {
		buffer.Destroy()
	}
	ms.models = make(map[*resources.Model]struct{})
	ms.meshes = make(map[*resources.Mesh]uint32)
	ms.dynamicMeshes = make(map[*resources.DynamicMesh]uint32)
	ms.instanceBuffers = make(map[*resources.InstanceBuffer]struct{})
	return nil
}
