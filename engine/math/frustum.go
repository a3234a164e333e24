package math

import "github.com/chewxy/math32"

/* ------------------------------------------
 * Bounding volumes derived from a transformed AABB
 * ------------------------------------------ */

/**
 * @brief An oriented bounding box: a local AABB carried into world
 * space by a rigid-plus-scale transform. The axes keep the scale as
 * their length so the extents stay in local units.
 */
type OrientedBoundingBox struct {
	Center  Vec3
	Axes    [3]Vec3
	Extents Vec3
}

func NewOrientedBoundingBox(aabb BoundingBox, transform Transform) OrientedBoundingBox {
	localCenter := aabb.Center()
	scaledCenter := localCenter.Mul(transform.Scale)

	var obb OrientedBoundingBox
	obb.Center = scaledCenter.Rotate(transform.Rotation).Add(transform.Translation)
	obb.Axes[0] = NewVec3(transform.Scale.X, 0, 0).Rotate(transform.Rotation)
	obb.Axes[1] = NewVec3(0, transform.Scale.Y, 0).Rotate(transform.Rotation)
	obb.Axes[2] = NewVec3(0, 0, transform.Scale.Z).Rotate(transform.Rotation)
	obb.Extents = aabb.HalfExtents()
	return obb
}

/** @brief A world-space bounding sphere enclosing a transformed AABB. */
type BoundingSphere struct {
	Center Vec3
	Radius float32
}

func NewBoundingSphere(aabb BoundingBox, transform Transform) BoundingSphere {
	localCenter := aabb.Center()
	rotatedCenter := localCenter.Mul(transform.Scale).Rotate(transform.Rotation)

	var sphere BoundingSphere
	sphere.Center = transform.Translation.Add(rotatedCenter)
	sphere.Radius = aabb.HalfExtents().Mul(transform.Scale).Length()
	return sphere
}

/* ------------------------------------------
 * Frustum
 * ------------------------------------------ */

type FrustumContainment int

const (
	FrustumOutside FrustumContainment = iota
	FrustumIntersect
	FrustumInside
)

// Frustum holds the six clip planes of a view-projection matrix.
// Plane equations are stored as (normal, d) with normal pointing inward;
// a point p is inside a plane when dot(normal, p) + d >= 0.
type Frustum struct {
	Planes [6]Vec4
}

// NewFrustumFromMatrix extracts and normalizes the clip planes of the
// given view-projection matrix (Gribb/Hartmann).
func NewFrustumFromMatrix(viewProj Mat4) Frustum {
	m := viewProj.Data
	col := func(j int) Vec4 {
		return Vec4{X: m[0*4+j], Y: m[1*4+j], Z: m[2*4+j], W: m[3*4+j]}
	}

	c0, c1, c2, c3 := col(0), col(1), col(2), col(3)

	var f Frustum
	f.Planes[0] = planeNormalize(c3.Add(c0))                  // left
	f.Planes[1] = planeNormalize(c3.Add(c0.MulScalar(-1)))    // right
	f.Planes[2] = planeNormalize(c3.Add(c1))                  // bottom
	f.Planes[3] = planeNormalize(c3.Add(c1.MulScalar(-1)))    // top
	f.Planes[4] = planeNormalize(c3.Add(c2))                  // near
	f.Planes[5] = planeNormalize(c3.Add(c2.MulScalar(-1)))    // far
	return f
}

func planeNormalize(p Vec4) Vec4 {
	length := NewVec3(p.X, p.Y, p.Z).Length()
	if length == 0 {
		return p
	}
	return p.MulScalar(1.0 / length)
}

func planeDistance(plane Vec4, point Vec3) float32 {
	return plane.X*point.X + plane.Y*point.Y + plane.Z*point.Z + plane.W
}

// ClassifySphere tests the sphere against all six planes.
func (f *Frustum) ClassifySphere(sphere BoundingSphere) FrustumContainment {
	result := FrustumInside
	for i := 0; i < 6; i++ {
		dist := planeDistance(f.Planes[i], sphere.Center)
		if dist < -sphere.Radius {
			return FrustumOutside
		}
		if dist < sphere.Radius {
			result = FrustumIntersect
		}
	}
	return result
}

// ContainsSphere reports whether any part of the sphere is inside.
func (f *Frustum) ContainsSphere(sphere BoundingSphere) bool {
	return f.ClassifySphere(sphere) != FrustumOutside
}

// ContainsPoint reports whether the point is inside all planes.
func (f *Frustum) ContainsPoint(point Vec3) bool {
	for i := 0; i < 6; i++ {
		if planeDistance(f.Planes[i], point) < 0 {
			return false
		}
	}
	return true
}

// ContainsObb conservatively tests an oriented bounding box by
// projecting it onto each plane normal.
func (f *Frustum) ContainsObb(obb OrientedBoundingBox) bool {
	for i := 0; i < 6; i++ {
		n := NewVec3(f.Planes[i].X, f.Planes[i].Y, f.Planes[i].Z)
		radius := math32.Abs(n.Dot(obb.Axes[0]))*obb.Extents.X +
			math32.Abs(n.Dot(obb.Axes[1]))*obb.Extents.Y +
			math32.Abs(n.Dot(obb.Axes[2]))*obb.Extents.Z
		if planeDistance(f.Planes[i], obb.Center) < -radius {
			return false
		}
	}
	return true
}

// ContainsAabb tests a local-space AABB carried by a transform.
func (f *Frustum) ContainsAabb(aabb BoundingBox, transform Transform) bool {
	return f.ContainsObb(NewOrientedBoundingBox(aabb, transform))
}

/* ------------------------------------------
 * View frustum (camera frustum + eye position for sorting)
 * ------------------------------------------ */

type ViewFrustum struct {
	Frustum
	Position Vec3
}

func NewViewFrustum(position Vec3, viewProj Mat4) ViewFrustum {
	return ViewFrustum{
		Frustum:  NewFrustumFromMatrix(viewProj),
		Position: position,
	}
}

// DistanceSqToCenterPoint returns the squared distance from the eye to
// the world-space center of the given AABB. Used as the front-to-back
// sort key for opaque and prepass draws.
func (vf *ViewFrustum) DistanceSqToCenterPoint(aabb BoundingBox, transform Transform) float32 {
	center := aabb.Center().Mul(transform.Scale).Rotate(transform.Rotation).Add(transform.Translation)
	return vf.Position.DistanceSquared(center)
}

// DistanceSqToFarthestPoint returns the squared distance from the eye
// to the farthest corner of the transformed AABB. Used as the
// back-to-front sort key for transparent draws.
func (vf *ViewFrustum) DistanceSqToFarthestPoint(aabb BoundingBox, transform Transform) float32 {
	m := transform.ToMat4()
	farthest := float32(0)
	for _, corner := range aabb.Corners() {
		d := vf.Position.DistanceSquared(corner.Transform(m))
		if d > farthest {
			farthest = d
		}
	}
	return farthest
}
