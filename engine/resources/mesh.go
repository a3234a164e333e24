package resources

import (
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/spaghettifunk/hyperion/engine/core"
	"github.com/spaghettifunk/hyperion/engine/math"
	"github.com/spaghettifunk/hyperion/engine/renderer/opengl"
)

// Vertex attribute locations shared by every scene shader variant.
const (
	attrPosition = 0
	attrTexcoord = 1
	attrNormal   = 2
	attrTangent  = 3
	attrColor    = 4
	attrBoneIDs  = 5
	attrWeights  = 6

	// Instance attributes; the matrix spans four consecutive locations.
	attrInstanceMat0   = 7
	attrInstanceColor  = 11
	attrInstanceCustom = 12
)

// Descriptor slot indices inside a mesh VAO.
const (
	slotVertices       = 0
	slotInstanceMatrix = 1
	slotInstanceColor  = 2
	slotInstanceCustom = 3
)

/**
 * @brief The GPU residency of a mesh: VAO plus vertex and optional
 * index buffer, with pre-declared instance attribute slots that fall
 * back to identity defaults when no instance buffer is bound.
 */
type VertexBuffer struct {
	vao *opengl.VertexArray
	vbo *opengl.Buffer
	ebo *opengl.Buffer
}

func NewVertexBuffer(pl *opengl.Pipeline, vertices []math.Vertex3D, indices []uint32) *VertexBuffer {
	vb := &VertexBuffer{}

	if len(vertices) == 0 {
		core.LogError("RENDER: cannot create a vertex buffer without vertices")
		return vb
	}

	vb.vbo = opengl.NewBufferFrom(pl, gl.ARRAY_BUFFER, vertices, gl.STATIC_DRAW)
	if len(indices) > 0 {
		vb.ebo = opengl.NewBufferFrom(pl, gl.ELEMENT_ARRAY_BUFFER, indices, gl.STATIC_DRAW)
	}

	vb.vao = opengl.NewVertexArray(pl, vb.ebo, vertexBufferLayout(vb.vbo))
	return vb
}

// NewDynamicVertexBuffer allocates an empty, growable vertex buffer
// for immediate-mode meshes.
func NewDynamicVertexBuffer(pl *opengl.Pipeline, initialCapacity int) *VertexBuffer {
	vb := &VertexBuffer{}
	size := initialCapacity * int(unsafe.Sizeof(math.Vertex3D{}))
	if size <= 0 {
		size = int(unsafe.Sizeof(math.Vertex3D{}))
	}
	vb.vbo = opengl.NewBuffer(pl, gl.ARRAY_BUFFER, size, nil, gl.DYNAMIC_DRAW)
	vb.vao = opengl.NewVertexArray(pl, nil, vertexBufferLayout(vb.vbo))
	return vb
}

func vertexBufferLayout(vbo *opengl.Buffer) []opengl.VertexBufferDesc {
	var v math.Vertex3D
	stride := int32(unsafe.Sizeof(v))

	vertexAttrs := []opengl.VertexAttribute{
		{Location: attrPosition, Size: 3, Type: gl.FLOAT, Stride: stride, Offset: int(unsafe.Offsetof(v.Position))},
		{Location: attrTexcoord, Size: 2, Type: gl.FLOAT, Stride: stride, Offset: int(unsafe.Offsetof(v.Texcoord))},
		{Location: attrNormal, Size: 3, Type: gl.FLOAT, Stride: stride, Offset: int(unsafe.Offsetof(v.Normal)), DefaultValue: [4]float32{0, 0, 1, 0}},
		{Location: attrTangent, Size: 4, Type: gl.FLOAT, Stride: stride, Offset: int(unsafe.Offsetof(v.Tangent)), DefaultValue: [4]float32{1, 0, 0, 1}},
		{Location: attrColor, Size: 4, Type: gl.FLOAT, Stride: stride, Offset: int(unsafe.Offsetof(v.Colour)), DefaultValue: [4]float32{1, 1, 1, 1}},
		{Location: attrBoneIDs, Size: 4, Type: gl.INT, Stride: stride, Offset: int(unsafe.Offsetof(v.BoneIDs))},
		{Location: attrWeights, Size: 4, Type: gl.FLOAT, Stride: stride, Offset: int(unsafe.Offsetof(v.Weights))},
	}

	matStride := int32(unsafe.Sizeof(math.Mat4{}))
	matrixAttrs := make([]opengl.VertexAttribute, 4)
	for i := 0; i < 4; i++ {
		var def [4]float32
		def[i] = 1
		matrixAttrs[i] = opengl.VertexAttribute{
			Location:     uint32(attrInstanceMat0 + i),
			Size:         4,
			Type:         gl.FLOAT,
			Stride:       matStride,
			Offset:       i * 16,
			Divisor:      1,
			DefaultValue: def,
		}
	}

	return []opengl.VertexBufferDesc{
		{Buffer: vbo, Attributes: vertexAttrs},
		{Buffer: nil, Attributes: matrixAttrs},
		{Buffer: nil, Attributes: []opengl.VertexAttribute{
			{Location: attrInstanceColor, Size: 4, Type: gl.FLOAT, Stride: 16, Divisor: 1, DefaultValue: [4]float32{1, 1, 1, 1}},
		}},
		{Buffer: nil, Attributes: []opengl.VertexAttribute{
			{Location: attrInstanceCustom, Size: 4, Type: gl.FLOAT, Stride: 16, Divisor: 1},
		}},
	}
}

func (vb *VertexBuffer) VAO() *opengl.VertexArray { return vb.vao }
func (vb *VertexBuffer) VBO() *opengl.Buffer      { return vb.vbo }
func (vb *VertexBuffer) EBO() *opengl.Buffer      { return vb.ebo }

// BindInstances attaches the enabled per-instance arrays of the given
// buffer to the instance descriptor slots. Disabled slots keep their
// attribute defaults.
func (vb *VertexBuffer) BindInstances(instances *InstanceBuffer) {
	vb.vao.BindVertexBuffer(slotInstanceMatrix, instances.EnabledBuffer(InstanceDataMatrix))
	vb.vao.BindVertexBuffer(slotInstanceColor, instances.EnabledBuffer(InstanceDataColor))
	vb.vao.BindVertexBuffer(slotInstanceCustom, instances.EnabledBuffer(InstanceDataCustom))
}

// UnbindInstances detaches all instance arrays, restoring defaults.
func (vb *VertexBuffer) UnbindInstances() {
	vb.vao.UnbindVertexBuffer(slotInstanceMatrix)
	vb.vao.UnbindVertexBuffer(slotInstanceColor)
	vb.vao.UnbindVertexBuffer(slotInstanceCustom)
}

func (vb *VertexBuffer) Destroy() {
	if vb.vao != nil {
		vb.vao.Destroy()
	}
	if vb.vbo != nil {
		vb.vbo.Destroy()
	}
	if vb.ebo != nil {
		vb.ebo.Destroy()
	}
}

/**
 * @brief A non-mutable GPU mesh. The vertex buffer must be non-empty;
 * the index buffer is either absent or triangle-aligned.
 */
type Mesh struct {
	Buffer *VertexBuffer

	Vertices []math.Vertex3D
	Indices  []uint32

	VertexCount int
	IndexCount  int

	Primitive      PrimitiveType
	ShadowCastMode ShadowCastMode
	ShadowFaceMode ShadowFaceMode
	AABB           math.BoundingBox
	LayerMask      Layer
}

func NewMesh(pl *opengl.Pipeline, vertices []math.Vertex3D, indices []uint32) *Mesh {
	if len(vertices) == 0 {
		core.LogError("RENDER: cannot create a mesh without vertices")
		return nil
	}
	if len(indices)%3 != 0 {
		core.LogError("RENDER: mesh index count %d is not divisible by 3", len(indices))
		return nil
	}

	mesh := &Mesh{
		Buffer:         NewVertexBuffer(pl, vertices, indices),
		Vertices:       vertices,
		Indices:        indices,
		VertexCount:    len(vertices),
		IndexCount:     len(indices),
		Primitive:      PrimitiveTriangles,
		ShadowCastMode: ShadowCastEnabled,
		ShadowFaceMode: ShadowFaceAuto,
		LayerMask:      Layer01,
	}
	mesh.AABB = computeAABB(vertices)
	return mesh
}

func (m *Mesh) Destroy() {
	if m == nil {
		return
	}
	if m.Buffer != nil {
		m.Buffer.Destroy()
		m.Buffer = nil
	}
}

func computeAABB(vertices []math.Vertex3D) math.BoundingBox {
	box := math.BoundingBox{
		Min: math.NewVec3(+math.K_INFINITY, +math.K_INFINITY, +math.K_INFINITY),
		Max: math.NewVec3(-math.K_INFINITY, -math.K_INFINITY, -math.K_INFINITY),
	}
	for i := range vertices {
		box.Min = box.Min.Min(vertices[i].Position)
		box.Max = box.Max.Max(vertices[i].Position)
	}
	return box
}

/**
 * @brief A mutable mesh built by an immediate-mode begin/end sequence.
 * Draw submissions between Begin and End are undefined.
 */
type DynamicMesh struct {
	ShadowCastMode ShadowCastMode
	ShadowFaceMode ShadowFaceMode
	LayerMask      Layer

	vertices      []math.Vertex3D
	buffer        *VertexBuffer
	boundingBox   math.BoundingBox
	currentVertex math.Vertex3D
	primitive     PrimitiveType
	building      bool
}

func NewDynamicMesh(pl *opengl.Pipeline, initialCapacity int) *DynamicMesh {
	return &DynamicMesh{
		ShadowCastMode: ShadowCastEnabled,
		ShadowFaceMode: ShadowFaceAuto,
		LayerMask:      Layer01,
		vertices:       make([]math.Vertex3D, 0, initialCapacity),
		buffer:         NewDynamicVertexBuffer(pl, initialCapacity),
	}
}

func (dm *DynamicMesh) Begin(primitive PrimitiveType) {
	dm.vertices = dm.vertices[:0]
	dm.currentVertex = math.Vertex3D{
		Normal:  math.NewVec3Back(),
		Tangent: math.NewVec4(1, 0, 0, 1),
		Colour:  math.ColorWhite,
	}
	dm.primitive = primitive
	dm.building = true
}

// End uploads the CPU vertex array to the GPU and recomputes the AABB.
func (dm *DynamicMesh) End() {
	if !dm.building {
		core.LogWarn("RENDER: DynamicMesh.End called without Begin")
		return
	}
	dm.building = false

	if len(dm.vertices) == 0 {
		dm.boundingBox = math.BoundingBox{}
		return
	}

	size := len(dm.vertices) * int(unsafe.Sizeof(math.Vertex3D{}))
	dm.buffer.vbo.Reserve(size, false)
	dm.buffer.vbo.Upload(0, size, unsafe.Pointer(&dm.vertices[0]))

	dm.boundingBox = computeAABB(dm.vertices)
}

func (dm *DynamicMesh) SetTexCoord(texcoord math.Vec2) {
	dm.currentVertex.Texcoord = texcoord
}

func (dm *DynamicMesh) SetNormal(normal math.Vec3) {
	dm.currentVertex.Normal = normal
}

func (dm *DynamicMesh) SetTangent(tangent math.Vec4) {
	dm.currentVertex.Tangent = tangent
}

func (dm *DynamicMesh) SetColor(color math.Color) {
	dm.currentVertex.Colour = color
}

func (dm *DynamicMesh) AddVertex(position math.Vec3) {
	dm.currentVertex.Position = position
	dm.vertices = append(dm.vertices, dm.currentVertex)
}

func (dm *DynamicMesh) Primitive() PrimitiveType     { return dm.primitive }
func (dm *DynamicMesh) AABB() math.BoundingBox       { return dm.boundingBox }
func (dm *DynamicMesh) Buffer() *VertexBuffer        { return dm.buffer }
func (dm *DynamicMesh) VertexCount() int             { return len(dm.vertices) }

func (dm *DynamicMesh) Destroy() {
	if dm == nil {
		return
	}
	if dm.buffer != nil {
		dm.buffer.Destroy()
		dm.buffer = nil
	}
}

/**
 * @brief Up to three parallel per-instance GPU arrays (transform
 * matrix, color, custom vec4), each independently enabled. Enabled
 * slots must cover at least the instance count passed at draw time.
 */
type InstanceBuffer struct {
	pl      *opengl.Pipeline
	buffers [3]struct {
		buffer  *opengl.Buffer
		enabled bool
	}
}

var instanceTypeSizes = [3]int{
	int(unsafe.Sizeof(math.Mat4{})),
	int(unsafe.Sizeof(math.Color{})),
	int(unsafe.Sizeof(math.Vec4{})),
}

func NewInstanceBuffer(pl *opengl.Pipeline) *InstanceBuffer {
	return &InstanceBuffer{pl: pl}
}

func instanceSlot(dataType InstanceData) int {
	switch dataType {
	case InstanceDataMatrix:
		return 0
	case InstanceDataColor:
		return 1
	case InstanceDataCustom:
		return 2
	}
	return -1
}

// Update uploads count elements of one array type at the given element
// offset, allocating or growing the backing buffer as needed.
func (ib *InstanceBuffer) Update(dataType InstanceData, data unsafe.Pointer, offset, count int, keepData bool) {
	slot := instanceSlot(dataType)
	if slot < 0 {
		core.LogError("RENDER: invalid instance data type 0x%x", dataType)
		return
	}

	byteOffset := offset * instanceTypeSizes[slot]
	byteCount := count * instanceTypeSizes[slot]

	info := &ib.buffers[slot]
	if !info.buffer.IsValid() {
		info.buffer = opengl.NewBuffer(ib.pl, gl.ARRAY_BUFFER, byteOffset+byteCount, nil, gl.DYNAMIC_DRAW)
	} else {
		info.buffer.Reserve(byteOffset+byteCount, keepData)
	}

	info.buffer.Upload(byteOffset, byteCount, data)
}

// Reserve grows the named arrays to hold count elements.
func (ib *InstanceBuffer) Reserve(bitfield InstanceData, count int, keepData bool) {
	for slot := 0; slot < 3; slot++ {
		if bitfield&(1<<slot) == 0 {
			continue
		}
		info := &ib.buffers[slot]
		size := count * instanceTypeSizes[slot]
		if !info.buffer.IsValid() {
			info.buffer = opengl.NewBuffer(ib.pl, gl.ARRAY_BUFFER, size, nil, gl.DYNAMIC_DRAW)
		} else {
			info.buffer.Reserve(size, keepData)
		}
	}
}

// SetEnabled toggles the named arrays on or off for subsequent draws.
func (ib *InstanceBuffer) SetEnabled(bitfield InstanceData, enabled bool) {
	for slot := 0; slot < 3; slot++ {
		if bitfield&(1<<slot) != 0 {
			ib.buffers[slot].enabled = enabled
		}
	}
}

// EnabledBuffer returns the buffer for a type if enabled, nil otherwise.
func (ib *InstanceBuffer) EnabledBuffer(dataType InstanceData) *opengl.Buffer {
	slot := instanceSlot(dataType)
	if slot < 0 || !ib.buffers[slot].enabled {
		return nil
	}
	return ib.buffers[slot].buffer
}

func (ib *InstanceBuffer) Destroy() {
	if ib == nil {
		return
	}
	for slot := range ib.buffers {
		if ib.buffers[slot].buffer != nil {
			ib.buffers[slot].buffer.Destroy()
		}
	}
}

/**
 * @brief A tagged union over the two mesh representations. Exactly one
 * member is set; the draw path branches on the tag.
 */
type VariantMesh struct {
	static  *Mesh
	dynamic *DynamicMesh
}

func VariantFromMesh(mesh *Mesh) VariantMesh {
	return VariantMesh{static: mesh}
}

func VariantFromDynamicMesh(mesh *DynamicMesh) VariantMesh {
	return VariantMesh{dynamic: mesh}
}

func (vm VariantMesh) Static() *Mesh         { return vm.static }
func (vm VariantMesh) Dynamic() *DynamicMesh { return vm.dynamic }

func (vm VariantMesh) IsValid() bool {
	return vm.static != nil || vm.dynamic != nil
}

func (vm VariantMesh) AABB() math.BoundingBox {
	if vm.static != nil {
		return vm.static.AABB
	}
	return vm.dynamic.AABB()
}

func (vm VariantMesh) LayerMask() Layer {
	if vm.static != nil {
		return vm.static.LayerMask
	}
	return vm.dynamic.LayerMask
}

func (vm VariantMesh) ShadowCastMode() ShadowCastMode {
	if vm.static != nil {
		return vm.static.ShadowCastMode
	}
	return vm.dynamic.ShadowCastMode
}

func (vm VariantMesh) ShadowFaceMode() ShadowFaceMode {
	if vm.static != nil {
		return vm.static.ShadowFaceMode
	}
	return vm.dynamic.ShadowFaceMode
}

// Resolve returns the draw parameters of whichever mesh is held.
func (vm VariantMesh) Resolve() (buffer *VertexBuffer, primitive PrimitiveType, vertexCount, indexCount int) {
	if vm.static != nil {
		return vm.static.Buffer, vm.static.Primitive, vm.static.VertexCount, vm.static.IndexCount
	}
	return vm.dynamic.Buffer(), vm.dynamic.Primitive(), vm.dynamic.VertexCount(), 0
}
