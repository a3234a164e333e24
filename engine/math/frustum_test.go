package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testViewFrustum() ViewFrustum {
	position := NewVec3(0, 0, 10)
	view := NewMat4LookAt(position, NewVec3Zero(), NewVec3Up())
	proj := NewMat4Perspective(K_PI/3, 1.0, 0.1, 100.0)
	return NewViewFrustum(position, view.Mul(proj))
}

func TestFrustumClassifySphere(t *testing.T) {
	vf := testViewFrustum()

	inside := BoundingSphere{Center: NewVec3(0, 0, 0), Radius: 1}
	assert.Equal(t, FrustumInside, vf.ClassifySphere(inside))

	outside := BoundingSphere{Center: NewVec3(0, 0, 200), Radius: 1}
	assert.Equal(t, FrustumOutside, vf.ClassifySphere(outside))

	// Straddling the near plane.
	straddling := BoundingSphere{Center: NewVec3(0, 0, 10), Radius: 5}
	assert.Equal(t, FrustumIntersect, vf.ClassifySphere(straddling))
}

func TestFrustumContainsPoint(t *testing.T) {
	vf := testViewFrustum()
	assert.True(t, vf.ContainsPoint(NewVec3(0, 0, 0)))
	assert.False(t, vf.ContainsPoint(NewVec3(0, 0, 20)))
	assert.False(t, vf.ContainsPoint(NewVec3(500, 0, 0)))
}

func TestFrustumContainsObb(t *testing.T) {
	vf := testViewFrustum()
	aabb := NewBoundingBox(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))

	visible := NewOrientedBoundingBox(aabb, TransformIdentity())
	assert.True(t, vf.ContainsObb(visible))

	behind := NewOrientedBoundingBox(aabb, TransformFromPosition(NewVec3(0, 0, 50)))
	assert.False(t, vf.ContainsObb(behind))
}

func TestBoundingSphereFromTransformedAabb(t *testing.T) {
	aabb := NewBoundingBox(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))
	tr := TransformFromPositionRotationScale(NewVec3(5, 0, 0), NewQuatIdentity(), NewVec3(2, 2, 2))

	sphere := NewBoundingSphere(aabb, tr)
	assert.True(t, sphere.Center.Compare(NewVec3(5, 0, 0), 1e-5))
	require.InDelta(t, float64(NewVec3(2, 2, 2).Length()), float64(sphere.Radius), 1e-4)
}

func TestSortKeyDistances(t *testing.T) {
	vf := testViewFrustum()
	aabb := NewBoundingBox(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))

	near := TransformFromPosition(NewVec3(0, 0, 8))  // distance 2
	far := TransformFromPosition(NewVec3(0, 0, 5))   // distance 5

	nearCenter := vf.DistanceSqToCenterPoint(aabb, near)
	farCenter := vf.DistanceSqToCenterPoint(aabb, far)
	assert.Less(t, nearCenter, farCenter)
	assert.InDelta(t, 4.0, float64(nearCenter), 1e-4)
	assert.InDelta(t, 25.0, float64(farCenter), 1e-4)

	// Farthest-point distance always exceeds center distance.
	assert.Greater(t, vf.DistanceSqToFarthestPoint(aabb, near), nearCenter)
}
