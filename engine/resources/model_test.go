package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/hyperion/engine/math"
)

func testMeshWithAABB(min, max math.Vec3) *Mesh {
	return &Mesh{
		AABB:      math.NewBoundingBox(min, max),
		LayerMask: Layer01,
	}
}

func TestNewModelValidation(t *testing.T) {
	meshA := testMeshWithAABB(math.NewVec3(-1, -1, -1), math.NewVec3(1, 1, 1))
	meshB := testMeshWithAABB(math.NewVec3(2, 0, 0), math.NewVec3(4, 1, 1))
	materials := []Material{DefaultMaterial()}

	// Mesh/material-map length mismatch is rejected.
	assert.Nil(t, NewModel([]*Mesh{meshA, meshB}, materials, []int{0}))

	// Out-of-range material index is rejected.
	assert.Nil(t, NewModel([]*Mesh{meshA}, materials, []int{3}))

	model := NewModel([]*Mesh{meshA, meshB}, materials, []int{0, 0})
	require.NotNil(t, model)

	// The model AABB spans all meshes.
	assert.Equal(t, math.NewVec3(-1, -1, -1), model.AABB.Min)
	assert.Equal(t, math.NewVec3(4, 1, 1), model.AABB.Max)
}

func TestModelCurrentPose(t *testing.T) {
	mesh := testMeshWithAABB(math.NewVec3(-1, -1, -1), math.NewVec3(1, 1, 1))
	model := NewModel([]*Mesh{mesh}, []Material{DefaultMaterial()}, []int{0})
	require.NotNil(t, model)

	// No skeleton: no pose.
	assert.Nil(t, model.CurrentPose())

	bones := []BoneInfo{{Name: "root", Parent: -1}, {Name: "arm", Parent: 0}}
	bind := []math.Mat4{math.NewMat4Identity(), math.NewMat4Identity()}
	offsets := []math.Mat4{math.NewMat4Identity(), math.NewMat4Identity()}
	model.SetSkeleton(bones, bind, offsets)

	// Bind pose without an animation.
	assert.Equal(t, bind, model.CurrentPose())

	// Override pose wins in custom mode.
	override := []math.Mat4{math.NewMat4Translation(math.NewVec3(1, 0, 0)), math.NewMat4Identity()}
	model.BoneOverride = override
	model.AnimMode = AnimCustom
	assert.Equal(t, override, model.CurrentPose())

	// Internal animation samples the clamped current frame.
	model.AnimMode = AnimInternal
	pose0 := []math.Mat4{math.NewMat4Identity(), math.NewMat4Identity()}
	pose1 := []math.Mat4{math.NewMat4Translation(math.NewVec3(0, 1, 0)), math.NewMat4Identity()}
	model.Anim = &ModelAnimation{
		Name:             "walk",
		BoneCount:        2,
		FrameCount:       2,
		FrameGlobalPoses: [][]math.Mat4{pose0, pose1},
	}
	model.AnimFrame = 1
	assert.Equal(t, pose1, model.CurrentPose())

	model.AnimFrame = 99
	assert.Equal(t, pose1, model.CurrentPose())
}

func TestSkeletonArrayLengthMismatch(t *testing.T) {
	mesh := testMeshWithAABB(math.NewVec3(-1, -1, -1), math.NewVec3(1, 1, 1))
	model := NewModel([]*Mesh{mesh}, []Material{DefaultMaterial()}, []int{0})
	require.NotNil(t, model)

	model.SetSkeleton([]BoneInfo{{Name: "root", Parent: -1}}, nil, nil)
	assert.Zero(t, model.BoneCount())
}

func TestVariantMeshAccessors(t *testing.T) {
	mesh := testMeshWithAABB(math.NewVec3(-2, 0, 0), math.NewVec3(2, 1, 1))
	mesh.ShadowCastMode = ShadowCastOnly
	mesh.ShadowFaceMode = ShadowFaceBoth
	mesh.LayerMask = Layer03

	vm := VariantFromMesh(mesh)
	assert.True(t, vm.IsValid())
	assert.Equal(t, mesh.AABB, vm.AABB())
	assert.Equal(t, Layer03, vm.LayerMask())
	assert.Equal(t, ShadowCastOnly, vm.ShadowCastMode())
	assert.Equal(t, ShadowFaceBoth, vm.ShadowFaceMode())

	var empty VariantMesh
	assert.False(t, empty.IsValid())
}

func TestDefaultMaterial(t *testing.T) {
	m := DefaultMaterial()
	assert.Equal(t, math.ColorWhite, m.Albedo.Color)
	assert.Equal(t, float32(1), m.ORM.Occlusion)
	assert.Equal(t, float32(1), m.ORM.Roughness)
	assert.Equal(t, float32(0), m.ORM.Metalness)
	assert.Equal(t, BlendOpaque, m.Blend)
	assert.Equal(t, CullBack, m.Cull)
	assert.False(t, m.Depth.PrePass)
	assert.Nil(t, m.Shader)
}
