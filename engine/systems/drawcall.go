package systems

import (
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/spaghettifunk/hyperion/engine/containers"
	"github.com/spaghettifunk/hyperion/engine/core"
	"github.com/spaghettifunk/hyperion/engine/math"
	"github.com/spaghettifunk/hyperion/engine/renderer/opengl"
	"github.com/spaghettifunk/hyperion/engine/resources"
)

/** @brief Draw call categories, issued in bucket order. */
type DrawType int

const (
	/** @brief Purely opaque objects. */
	DrawOpaque DrawType = iota
	/** @brief Objects rendered with a depth pre-pass (opaque or transparent). */
	DrawPrepass
	/** @brief Transparent objects. */
	DrawTransparent
	drawTypeCount
)

/** @brief Shared CPU data, one per submit call. */
type SharedData struct {
	Transform math.Transform
	Sphere    math.BoundingSphere

	Instances     *resources.InstanceBuffer
	InstanceCount int

	/** @brief First-element offset in the per-frame bone buffer; <0 = no animation. */
	BoneMatrixOffset int

	UniqueDataIndex int
	UniqueDataCount int
}

/** @brief Unique CPU data, one per mesh within a submit. */
type UniqueData struct {
	Mesh     resources.VariantMesh
	Material resources.Material
	OBB      math.OrientedBoundingBox

	/** @brief Material-shader textures captured at submit time. */
	Textures resources.TextureArray
	/** @brief Dynamic uniform range of the material shader; -1 = none. */
	DynamicRangeIndex int

	SharedDataIndex int
	UniqueDataIndex int

	Type DrawType
}

// gpuSharedData is the std430 shared draw record (§ binding 0).
type gpuSharedData struct {
	MatModel   math.Mat4
	MatNormal  math.Mat4
	BoneOffset int32
	Instancing int32
	Skinning   int32
	_          int32
}

// gpuUniqueData is the std430 unique draw record (§ binding 1).
type gpuUniqueData struct {
	AlbedoColor    math.Vec4
	EmissionColor  math.Vec3
	EmissionEnergy float32
	AOLightAffect  float32
	Occlusion      float32
	Roughness      float32
	Metalness      float32
	NormalScale    float32
	AlphaCutOff    float32
	DepthOffset    float32
	DepthScale     float32
	TexOffset      math.Vec2
	TexScale       math.Vec2
	Billboard      int32
	LayerMask      uint32
	_              [2]uint32
}

// std430 compatibility: records must be multiples of 16 bytes.
const _ = -(unsafe.Sizeof(gpuSharedData{}) % 16)
const _ = -(unsafe.Sizeof(gpuUniqueData{}) % 16)

// boneRing streams per-frame bone matrices through a 3-slot buffer
// ring so a frame in flight never reads a buffer being rewritten.
type boneRing struct {
	ring          *containers.ObjectRing[*opengl.Buffer]
	temp          []math.Mat4
	currentOffset int
}

const boneMat4Size = int(unsafe.Sizeof(math.Mat4{}))

func newBoneRing(pl *opengl.Pipeline) *boneRing {
	return &boneRing{
		ring: containers.NewObjectRing[*opengl.Buffer](3, func() *opengl.Buffer {
			return opengl.NewBuffer(pl, gl.SHADER_STORAGE_BUFFER, 1024*boneMat4Size, nil, gl.DYNAMIC_DRAW)
		}),
		temp: make([]math.Mat4, 0, 256),
	}
}

// upload multiplies offsets by poses and appends the result to the
// active buffer, returning the first-element offset.
func (br *boneRing) upload(offsets, poses []math.Mat4) int {
	count := len(offsets)
	if count == 0 || count != len(poses) {
		core.LogWarn("RENDER: bone offset and pose counts differ (%d vs %d)", len(offsets), len(poses))
		return -1
	}

	if cap(br.temp) < count {
		br.temp = make([]math.Mat4, count)
	}
	br.temp = br.temp[:count]
	math.Mat4MulBatch(br.temp, offsets, poses)

	buffer := *br.ring.Active()
	byteOffset := br.currentOffset * boneMat4Size
	buffer.Reserve((br.currentOffset+count)*boneMat4Size, true)
	buffer.Upload(byteOffset, count*boneMat4Size, unsafe.Pointer(&br.temp[0]))

	offset := br.currentOffset
	br.currentOffset += count
	return offset
}

func (br *boneRing) clear() {
	br.ring.Rotate()
	br.currentOffset = 0
}

func (br *boneRing) buffer() *opengl.Buffer {
	return *br.ring.Active()
}

func (br *boneRing) destroy() {
	br.ring.ForEach(func(b **opengl.Buffer) {
		(*b).Destroy()
	})
}

/** @brief Configuration for the draw-call system. */
type DrawCallSystemConfig struct {
	/** @brief Expected number of draw calls per frame; buffers grow past it. */
	InitialCapacity int
}

// DrawCallSystem owns the per-frame draw queue end to end: submit,
// upload, cull, sort and issue. Records live exactly one frame.
type DrawCallSystem struct {
	pipeline *opengl.Pipeline

	sharedData []SharedData
	uniqueData []UniqueData

	uniqueVisible *containers.BucketArray[int]

	sortKeysCenterDist   []float32
	sortKeysFarthestDist []float32

	sharedBuffer *opengl.Buffer
	uniqueBuffer *opengl.Buffer
	bones        *boneRing
}

func NewDrawCallSystem(config *DrawCallSystemConfig, pipeline *opengl.Pipeline) (*DrawCallSystem, error) {
	capacity := config.InitialCapacity
	if capacity <= 0 {
		capacity = 256
	}

	dcs := &DrawCallSystem{
		pipeline:      pipeline,
		sharedData:    make([]SharedData, 0, capacity),
		uniqueData:    make([]UniqueData, 0, capacity),
		uniqueVisible: containers.NewBucketArray[int](int(drawTypeCount), capacity),
		sharedBuffer:  opengl.NewBuffer(pipeline, gl.SHADER_STORAGE_BUFFER, capacity*int(unsafe.Sizeof(gpuSharedData{})), nil, gl.DYNAMIC_DRAW),
		uniqueBuffer:  opengl.NewBuffer(pipeline, gl.SHADER_STORAGE_BUFFER, capacity*int(unsafe.Sizeof(gpuUniqueData{})), nil, gl.DYNAMIC_DRAW),
		bones:         newBoneRing(pipeline),
	}

	return dcs, nil
}

// drawTypeOf classifies a material into its bucket: prepass overrides,
// then blend mode decides.
func drawTypeOf(material *resources.Material) DrawType {
	if material.Depth.PrePass {
		return DrawPrepass
	}
	if material.Blend == resources.BlendOpaque {
		return DrawOpaque
	}
	return DrawTransparent
}

/* --- Submission --- */

// PushMesh appends one shared record and one unique record.
func (dcs *DrawCallSystem) PushMesh(mesh resources.VariantMesh, instances *resources.InstanceBuffer, instanceCount int, material *resources.Material, transform math.Transform) {
	if !mesh.IsValid() {
		core.LogError("RENDER: draw submitted with a nil mesh (dropped)")
		return
	}

	sharedIndex := len(dcs.sharedData)
	uniqueIndex := len(dcs.uniqueData)

	dcs.sharedData = append(dcs.sharedData, SharedData{
		Transform:        transform,
		Sphere:           math.NewBoundingSphere(mesh.AABB(), transform),
		Instances:        instances,
		InstanceCount:    instanceCount,
		BoneMatrixOffset: -1,
		UniqueDataIndex:  uniqueIndex,
		UniqueDataCount:  1,
	})

	unique := UniqueData{
		Mesh:              mesh,
		Material:          *material,
		OBB:               math.NewOrientedBoundingBox(mesh.AABB(), transform),
		DynamicRangeIndex: -1,
		SharedDataIndex:   sharedIndex,
		UniqueDataIndex:   uniqueIndex,
		Type:              drawTypeOf(material),
	}

	if material.Shader != nil {
		unique.Textures = material.Shader.GetTextures()
		unique.DynamicRangeIndex = material.Shader.DynamicRangeIndex()
	}

	dcs.uniqueData = append(dcs.uniqueData, unique)
}

// PushModel appends one shared record and one unique record per mesh.
// Skinned models stage their bone matrices first.
func (dcs *DrawCallSystem) PushModel(model *resources.Model, instances *resources.InstanceBuffer, instanceCount int, transform math.Transform) {
	if model == nil || len(model.Meshes) == 0 {
		core.LogError("RENDER: draw submitted with a nil or empty model (dropped)")
		return
	}

	boneMatrixOffset := -1
	if model.BoneCount() > 0 {
		if pose := model.CurrentPose(); pose != nil {
			boneMatrixOffset = dcs.bones.upload(model.BoneOffsets, pose)
		}
	}

	sharedIndex := len(dcs.sharedData)
	uniqueIndex := len(dcs.uniqueData)

	dcs.sharedData = append(dcs.sharedData, SharedData{
		Transform:        transform,
		Sphere:           math.NewBoundingSphere(model.AABB, transform),
		Instances:        instances,
		InstanceCount:    instanceCount,
		BoneMatrixOffset: boneMatrixOffset,
		UniqueDataIndex:  uniqueIndex,
		UniqueDataCount:  len(model.Meshes),
	})

	for i, mesh := range model.Meshes {
		material := &model.Materials[model.MeshMaterials[i]]

		unique := UniqueData{
			Mesh:              resources.VariantFromMesh(mesh),
			Material:          *material,
			OBB:               math.NewOrientedBoundingBox(model.AABB, transform),
			DynamicRangeIndex: -1,
			SharedDataIndex:   sharedIndex,
			UniqueDataIndex:   len(dcs.uniqueData),
			Type:              drawTypeOf(material),
		}

		if material.Shader != nil {
			unique.Textures = material.Shader.GetTextures()
			unique.DynamicRangeIndex = material.Shader.DynamicRangeIndex()
		}

		dcs.uniqueData = append(dcs.uniqueData, unique)
	}
}

// Clear drops every per-frame record and rotates the bone ring.
// Called at frame begin so an aborted frame rolls back cleanly.
func (dcs *DrawCallSystem) Clear() {
	dcs.sharedData = dcs.sharedData[:0]
	dcs.uniqueData = dcs.uniqueData[:0]
	dcs.uniqueVisible.Clear()
	if dcs.bones != nil {
		dcs.bones.clear()
	}
}

/* --- Upload --- */

// Upload packs every record into the GPU layout and writes both
// storage buffers through invalidating maps.
func (dcs *DrawCallSystem) Upload() {
	sharedCount := len(dcs.sharedData)
	uniqueCount := len(dcs.uniqueData)
	if sharedCount == 0 {
		return
	}

	sharedBytes := sharedCount * int(unsafe.Sizeof(gpuSharedData{}))
	uniqueBytes := uniqueCount * int(unsafe.Sizeof(gpuUniqueData{}))

	dcs.sharedBuffer.Reserve(sharedBytes, false)
	dcs.uniqueBuffer.Reserve(uniqueBytes, false)

	sharedPtr := dcs.sharedBuffer.MapRange(0, sharedBytes, gl.MAP_WRITE_BIT|gl.MAP_INVALIDATE_RANGE_BIT)
	uniquePtr := dcs.uniqueBuffer.MapRange(0, uniqueBytes, gl.MAP_WRITE_BIT|gl.MAP_INVALIDATE_RANGE_BIT)
	if sharedPtr == nil || uniquePtr == nil {
		if sharedPtr != nil {
			dcs.sharedBuffer.Unmap()
		}
		if uniquePtr != nil {
			dcs.uniqueBuffer.Unmap()
		}
		core.LogError("RENDER: draw call buffer mapping failed; frame dropped")
		return
	}

	sharedOut := unsafe.Slice((*gpuSharedData)(sharedPtr), sharedCount)
	uniqueOut := unsafe.Slice((*gpuUniqueData)(uniquePtr), uniqueCount)

	for i := range dcs.sharedData {
		shared := &dcs.sharedData[i]

		out := &sharedOut[i]
		out.MatModel = shared.Transform.ToMat4()
		out.MatNormal = shared.Transform.ToNormalMat4()
		out.BoneOffset = int32(shared.BoneMatrixOffset)
		out.Instancing = 0
		if shared.InstanceCount > 0 {
			out.Instancing = 1
		}
		out.Skinning = 0
		if shared.BoneMatrixOffset >= 0 {
			out.Skinning = 1
		}

		for j := shared.UniqueDataIndex; j < shared.UniqueDataIndex+shared.UniqueDataCount; j++ {
			unique := &dcs.uniqueData[j]
			material := &unique.Material

			gpu := &uniqueOut[j]
			gpu.AlbedoColor = material.Albedo.Color.ToVec4()
			gpu.EmissionColor = material.Emission.Color.ToVec3()
			gpu.EmissionEnergy = material.Emission.Energy
			gpu.AOLightAffect = material.ORM.AOLightAffect
			gpu.Occlusion = material.ORM.Occlusion
			gpu.Roughness = material.ORM.Roughness
			gpu.Metalness = material.ORM.Metalness
			gpu.NormalScale = material.Normal.Scale
			gpu.AlphaCutOff = material.AlphaCutOff
			gpu.DepthOffset = material.Depth.Offset
			gpu.DepthScale = material.Depth.Scale
			gpu.TexOffset = material.TexOffset
			gpu.TexScale = material.TexScale
			gpu.Billboard = int32(material.Billboard)
			gpu.LayerMask = uint32(unique.Mesh.LayerMask())
		}
	}

	dcs.sharedBuffer.Unmap()
	dcs.uniqueBuffer.Unmap()
}

/* --- Culling --- */

// Culling classifies every shared record's sphere against the frustum,
// refining border cases per unique OBB. Instanced submissions bypass
// the frustum (instance positions are unknown at submission time).
// A nil frustum disables the spatial test entirely.
func (dcs *DrawCallSystem) Culling(frustum *math.Frustum, cullMask resources.Layer) {
	dcs.uniqueVisible.Clear()

	for s := range dcs.sharedData {
		shared := &dcs.sharedData[s]
		end := shared.UniqueDataIndex + shared.UniqueDataCount

		if shared.InstanceCount > 0 || frustum == nil {
			for i := shared.UniqueDataIndex; i < end; i++ {
				u := &dcs.uniqueData[i]
				if cullMask&u.Mesh.LayerMask() != 0 {
					dcs.uniqueVisible.EmplaceIndex(int(u.Type), i)
				}
			}
			continue
		}

		containment := frustum.ClassifySphere(shared.Sphere)
		if containment == math.FrustumOutside {
			continue
		}

		needsObbTest := containment == math.FrustumIntersect

		for i := shared.UniqueDataIndex; i < end; i++ {
			u := &dcs.uniqueData[i]
			if cullMask&u.Mesh.LayerMask() == 0 {
				continue
			}
			if !needsObbTest || frustum.ContainsObb(u.OBB) {
				dcs.uniqueVisible.EmplaceIndex(int(u.Type), i)
			}
		}
	}
}

/* --- Sorting --- */

// Sorting orders the visible buckets: opaque and prepass front to back
// by squared center distance, transparent back to front by squared
// farthest-point distance. Buckets without their sort flag keep
// submission order.
func (dcs *DrawCallSystem) Sorting(viewFrustum *math.ViewFrustum, sortOpaque, sortPrepass, sortTransparent bool) {
	if sortOpaque || sortPrepass {
		count := len(dcs.uniqueData)
		dcs.sortKeysCenterDist = growFloats(dcs.sortKeysCenterDist, count)

		for i := 0; i < count; i++ {
			unique := &dcs.uniqueData[i]
			shared := &dcs.sharedData[unique.SharedDataIndex]
			dcs.sortKeysCenterDist[i] = viewFrustum.DistanceSqToCenterPoint(unique.Mesh.AABB(), shared.Transform)
		}

		if sortOpaque {
			dcs.uniqueVisible.Sort(int(DrawOpaque), func(a, b int) bool {
				return dcs.sortKeysCenterDist[a] < dcs.sortKeysCenterDist[b]
			})
		}
		if sortPrepass {
			dcs.uniqueVisible.Sort(int(DrawPrepass), func(a, b int) bool {
				return dcs.sortKeysCenterDist[a] < dcs.sortKeysCenterDist[b]
			})
		}
	}

	if sortTransparent {
		count := len(dcs.uniqueData)
		dcs.sortKeysFarthestDist = growFloats(dcs.sortKeysFarthestDist, count)

		for i := 0; i < count; i++ {
			unique := &dcs.uniqueData[i]
			shared := &dcs.sharedData[unique.SharedDataIndex]
			dcs.sortKeysFarthestDist[i] = viewFrustum.DistanceSqToFarthestPoint(unique.Mesh.AABB(), shared.Transform)
		}

		dcs.uniqueVisible.Sort(int(DrawTransparent), func(a, b int) bool {
			return dcs.sortKeysFarthestDist[a] > dcs.sortKeysFarthestDist[b]
		})
	}
}

func growFloats(s []float32, n int) []float32 {
	if cap(s) < n {
		return make([]float32, n)
	}
	return s[:n]
}

/* --- Issue --- */

// Draw resolves the mesh variant and issues the draw command,
// attaching instance buffers around it when present.
func (dcs *DrawCallSystem) Draw(unique *UniqueData, shared *SharedData) {
	buffer, primitive, vertexCount, indexCount := unique.Mesh.Resolve()
	if buffer == nil || !buffer.VAO().IsValid() {
		return
	}

	glPrimitive := primitiveToGL(primitive)
	useInstancing := shared.Instances != nil && shared.InstanceCount > 0
	hasEBO := buffer.EBO().IsValid()

	dcs.pipeline.BindVertexArray(buffer.VAO())
	if useInstancing {
		buffer.BindInstances(shared.Instances)
	}

	if hasEBO {
		if useInstancing {
			dcs.pipeline.DrawElementsInstanced(glPrimitive, gl.UNSIGNED_INT, int32(indexCount), int32(shared.InstanceCount))
		} else {
			dcs.pipeline.DrawElements(glPrimitive, gl.UNSIGNED_INT, int32(indexCount))
		}
	} else {
		if useInstancing {
			dcs.pipeline.DrawInstanced(glPrimitive, int32(vertexCount), int32(shared.InstanceCount))
		} else {
			dcs.pipeline.Draw(glPrimitive, int32(vertexCount))
		}
	}

	if useInstancing {
		buffer.UnbindInstances()
	}
}

// DrawShadow issues every shadow-casting record into the currently
// bound atlas slice for one light face.
func (dcs *DrawCallSystem) DrawShadow(light *resources.Light, face int, shaderSystem *ShaderSystem, shadowCulling bool) {
	pl := dcs.pipeline
	shadowCullMask := light.ShadowCullMask()

	lightPosRange := math.NewVec4(0, 0, 0, 0)
	if light.Type() == resources.LightOmni {
		pos := light.Position()
		lightPosRange = math.NewVec4(pos.X, pos.Y, pos.Z, light.Range())
	}

	for i := range dcs.uniqueData {
		unique := &dcs.uniqueData[i]

		if unique.Mesh.ShadowCastMode() == resources.ShadowCastDisabled {
			continue
		}
		if shadowCullMask&unique.Mesh.LayerMask() == 0 {
			continue
		}

		shared := &dcs.sharedData[unique.SharedDataIndex]

		// Instanced draws bypass the frustum test like in view culling.
		if shadowCulling && shared.InstanceCount == 0 && !light.IsInsideShadowFrustum(unique.OBB, face) {
			continue
		}

		shader := unique.Material.Shader
		if shader == nil {
			shader = shaderSystem.DefaultMaterialShader()
		}
		program := shader.Program(resources.SceneShadow)

		pl.UseProgram(program)
		pl.SetCullMode(shadowFaceCull(unique.Mesh.ShadowFaceMode(), unique.Material.Cull))

		pl.SetUniformInt1(0, int32(unique.SharedDataIndex))
		pl.SetUniformInt1(1, int32(unique.UniqueDataIndex))
		pl.SetUniformMat4(2, light.ViewProj(face))
		pl.SetUniformFloat4(3, lightPosRange)

		shader.BindUniforms(unique.DynamicRangeIndex)

		dcs.Draw(unique, shared)
	}
}

/* --- Accessors --- */

func (dcs *DrawCallSystem) SharedData() []SharedData  { return dcs.sharedData }
func (dcs *DrawCallSystem) UniqueData() []UniqueData  { return dcs.uniqueData }
func (dcs *DrawCallSystem) SharedBuffer() *opengl.Buffer { return dcs.sharedBuffer }
func (dcs *DrawCallSystem) UniqueBuffer() *opengl.Buffer { return dcs.uniqueBuffer }
func (dcs *DrawCallSystem) BoneBuffer() *opengl.Buffer   { return dcs.bones.buffer() }

// VisibleBucket returns the visible unique indices of one category,
// in issue order.
func (dcs *DrawCallSystem) VisibleBucket(drawType DrawType) []int {
	return dcs.uniqueVisible.Category(int(drawType))
}

func (dcs *DrawCallSystem) Shutdown() error {
	dcs.sharedBuffer.Destroy()
	dcs.uniqueBuffer.Destroy()
	dcs.bones.destroy()
	return nil
}
