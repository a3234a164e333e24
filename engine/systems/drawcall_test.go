package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/hyperion/engine/containers"
	"github.com/spaghettifunk/hyperion/engine/math"
	"github.com/spaghettifunk/hyperion/engine/resources"
)

// newTestDrawCallSystem builds a system without GPU buffers; the
// submit, cull and sort paths never touch them.
func newTestDrawCallSystem() *DrawCallSystem {
	return &DrawCallSystem{
		uniqueVisible: containers.NewBucketArray[int](int(drawTypeCount), 16),
	}
}

func testMesh(center math.Vec3, half float32) resources.VariantMesh {
	mesh := &resources.Mesh{
		AABB: math.NewBoundingBox(
			center.Sub(math.NewVec3(half, half, half)),
			center.Add(math.NewVec3(half, half, half)),
		),
		LayerMask: resources.Layer01,
	}
	return resources.VariantFromMesh(mesh)
}

func testViewFrustum() *math.ViewFrustum {
	position := math.NewVec3(0, 0, 10)
	view := math.NewMat4LookAt(position, math.NewVec3Zero(), math.NewVec3Up())
	proj := math.NewMat4Perspective(math.K_PI/3, 1.0, 0.1, 100.0)
	vf := math.NewViewFrustum(position, view.Mul(proj))
	return &vf
}

func TestDrawTypePromotionRules(t *testing.T) {
	opaque := resources.DefaultMaterial()
	assert.Equal(t, DrawOpaque, drawTypeOf(&opaque))

	alpha := resources.DefaultMaterial()
	alpha.Blend = resources.BlendAlpha
	assert.Equal(t, DrawTransparent, drawTypeOf(&alpha))

	add := resources.DefaultMaterial()
	add.Blend = resources.BlendAdditive
	assert.Equal(t, DrawTransparent, drawTypeOf(&add))

	// The prepass flag wins over the blend mode.
	prepass := resources.DefaultMaterial()
	prepass.Depth.PrePass = true
	assert.Equal(t, DrawPrepass, drawTypeOf(&prepass))

	prepassAlpha := resources.DefaultMaterial()
	prepassAlpha.Blend = resources.BlendAlpha
	prepassAlpha.Depth.PrePass = true
	assert.Equal(t, DrawPrepass, drawTypeOf(&prepassAlpha))
}

func TestPushMeshRecords(t *testing.T) {
	dcs := newTestDrawCallSystem()
	material := resources.DefaultMaterial()

	dcs.PushMesh(testMesh(math.NewVec3Zero(), 1), nil, 0, &material, math.TransformIdentity())
	require.Len(t, dcs.SharedData(), 1)
	require.Len(t, dcs.UniqueData(), 1)

	shared := dcs.SharedData()[0]
	unique := dcs.UniqueData()[0]
	assert.Equal(t, 0, unique.SharedDataIndex)
	assert.Equal(t, 0, shared.UniqueDataIndex)
	assert.Equal(t, 1, shared.UniqueDataCount)
	assert.Equal(t, -1, shared.BoneMatrixOffset)
	assert.Equal(t, -1, unique.DynamicRangeIndex)

	// Invariant: every unique points at a valid shared record.
	for _, u := range dcs.UniqueData() {
		assert.Less(t, u.SharedDataIndex, len(dcs.SharedData()))
	}
}

func TestPushModelRecords(t *testing.T) {
	dcs := newTestDrawCallSystem()

	meshA := testMesh(math.NewVec3Zero(), 1).Static()
	meshB := testMesh(math.NewVec3(2, 0, 0), 1).Static()
	opaque := resources.DefaultMaterial()
	alpha := resources.DefaultMaterial()
	alpha.Blend = resources.BlendAlpha

	model := resources.NewModel(
		[]*resources.Mesh{meshA, meshB},
		[]resources.Material{opaque, alpha},
		[]int{0, 1},
	)
	require.NotNil(t, model)

	dcs.PushModel(model, nil, 0, math.TransformIdentity())
	require.Len(t, dcs.SharedData(), 1)
	require.Len(t, dcs.UniqueData(), 2)

	assert.Equal(t, 2, dcs.SharedData()[0].UniqueDataCount)
	assert.Equal(t, DrawOpaque, dcs.UniqueData()[0].Type)
	assert.Equal(t, DrawTransparent, dcs.UniqueData()[1].Type)
	assert.Equal(t, 0, dcs.UniqueData()[1].SharedDataIndex)
}

func TestCullingZeroMaskYieldsNothing(t *testing.T) {
	dcs := newTestDrawCallSystem()
	material := resources.DefaultMaterial()
	dcs.PushMesh(testMesh(math.NewVec3Zero(), 1), nil, 0, &material, math.TransformIdentity())

	vf := testViewFrustum()
	dcs.Culling(&vf.Frustum, resources.LayerNone)

	assert.Empty(t, dcs.VisibleBucket(DrawOpaque))
	assert.Empty(t, dcs.VisibleBucket(DrawPrepass))
	assert.Empty(t, dcs.VisibleBucket(DrawTransparent))
}

func TestCullingDiscardsOutsideSphere(t *testing.T) {
	dcs := newTestDrawCallSystem()
	material := resources.DefaultMaterial()

	dcs.PushMesh(testMesh(math.NewVec3Zero(), 1), nil, 0, &material, math.TransformIdentity())
	dcs.PushMesh(testMesh(math.NewVec3Zero(), 1), nil, 0, &material, math.TransformFromPosition(math.NewVec3(0, 0, 200)))

	vf := testViewFrustum()
	dcs.Culling(&vf.Frustum, resources.LayerAll)

	require.Len(t, dcs.VisibleBucket(DrawOpaque), 1)
	assert.Equal(t, 0, dcs.VisibleBucket(DrawOpaque)[0])
}

func TestCullingInstancedBypassesFrustum(t *testing.T) {
	dcs := newTestDrawCallSystem()
	material := resources.DefaultMaterial()

	// Far outside the frustum, but instanced: positions are unknown at
	// submission time, so the record must survive.
	dcs.PushMesh(testMesh(math.NewVec3Zero(), 1), &resources.InstanceBuffer{}, 8, &material, math.TransformFromPosition(math.NewVec3(0, 0, 500)))

	vf := testViewFrustum()
	dcs.Culling(&vf.Frustum, resources.LayerAll)

	assert.Len(t, dcs.VisibleBucket(DrawOpaque), 1)
}

func TestCullingNilFrustumKeepsAll(t *testing.T) {
	dcs := newTestDrawCallSystem()
	material := resources.DefaultMaterial()

	dcs.PushMesh(testMesh(math.NewVec3Zero(), 1), nil, 0, &material, math.TransformFromPosition(math.NewVec3(0, 0, 500)))
	dcs.Culling(nil, resources.LayerAll)

	assert.Len(t, dcs.VisibleBucket(DrawOpaque), 1)
}

// Front-to-back: the opaque bucket's first entry is the closer mesh.
func TestSortingOpaqueFrontToBack(t *testing.T) {
	dcs := newTestDrawCallSystem()
	material := resources.DefaultMaterial()

	// Camera is at z=10: distance 5 first, then distance 2.
	dcs.PushMesh(testMesh(math.NewVec3Zero(), 0.5), nil, 0, &material, math.TransformFromPosition(math.NewVec3(0, 0, 5)))
	dcs.PushMesh(testMesh(math.NewVec3Zero(), 0.5), nil, 0, &material, math.TransformFromPosition(math.NewVec3(0, 0, 8)))

	vf := testViewFrustum()
	dcs.Culling(&vf.Frustum, resources.LayerAll)
	dcs.Sorting(vf, true, false, false)

	bucket := dcs.VisibleBucket(DrawOpaque)
	require.Len(t, bucket, 2)
	assert.Equal(t, 1, bucket[0], "the distance-2 mesh must come first")
	assert.Equal(t, 0, bucket[1])
}

// Back-to-front: the transparent bucket's first entry is the farther
// mesh.
func TestSortingTransparentBackToFront(t *testing.T) {
	dcs := newTestDrawCallSystem()
	material := resources.DefaultMaterial()
	material.Blend = resources.BlendAlpha

	dcs.PushMesh(testMesh(math.NewVec3Zero(), 0.5), nil, 0, &material, math.TransformFromPosition(math.NewVec3(0, 0, 8)))
	dcs.PushMesh(testMesh(math.NewVec3Zero(), 0.5), nil, 0, &material, math.TransformFromPosition(math.NewVec3(0, 0, 5)))

	vf := testViewFrustum()
	dcs.Culling(&vf.Frustum, resources.LayerAll)
	dcs.Sorting(vf, false, false, true)

	bucket := dcs.VisibleBucket(DrawTransparent)
	require.Len(t, bucket, 2)
	assert.Equal(t, 1, bucket[0], "the distance-5 mesh must come first")
	assert.Equal(t, 0, bucket[1])
}

// Buckets without their sort flag keep submission order.
func TestSortingRespectsFlags(t *testing.T) {
	dcs := newTestDrawCallSystem()
	material := resources.DefaultMaterial()

	dcs.PushMesh(testMesh(math.NewVec3Zero(), 0.5), nil, 0, &material, math.TransformFromPosition(math.NewVec3(0, 0, 5)))
	dcs.PushMesh(testMesh(math.NewVec3Zero(), 0.5), nil, 0, &material, math.TransformFromPosition(math.NewVec3(0, 0, 8)))

	vf := testViewFrustum()
	dcs.Culling(&vf.Frustum, resources.LayerAll)
	dcs.Sorting(vf, false, false, false)

	bucket := dcs.VisibleBucket(DrawOpaque)
	require.Len(t, bucket, 2)
	assert.Equal(t, 0, bucket[0])
	assert.Equal(t, 1, bucket[1])
}

func TestClearDropsRecords(t *testing.T) {
	dcs := newTestDrawCallSystem()
	material := resources.DefaultMaterial()
	dcs.PushMesh(testMesh(math.NewVec3Zero(), 1), nil, 0, &material, math.TransformIdentity())

	dcs.Clear()

	assert.Empty(t, dcs.SharedData())
	assert.Empty(t, dcs.UniqueData())
	assert.Empty(t, dcs.VisibleBucket(DrawOpaque))
}
