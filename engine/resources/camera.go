package resources

import (
	"github.com/chewxy/math32"

	"github.com/spaghettifunk/hyperion/engine/math"
)

/** @brief Camera projection type. */
type Projection int

const (
	ProjectionPerspective Projection = iota
	ProjectionOrthographic
)

/**
 * @brief A camera in 3D space: position, orientation, projection
 * parameters and layer culling.
 */
type Camera struct {
	Position math.Vec3
	Rotation math.Quaternion

	NearPlane float32
	FarPlane  float32
	/** @brief Vertical field of view in radians; orthographic projection uses it as the full view height. */
	FOV float32

	Projection Projection

	/** @brief Layers rendered by this camera. */
	CullMask Layer
}

// DefaultCamera looks down -Z from the origin with a 60 degree FOV.
func DefaultCamera() Camera {
	return Camera{
		Rotation:   math.NewQuatIdentity(),
		NearPlane:  0.05,
		FarPlane:   4000.0,
		FOV:        math.DegToRad(60.0),
		Projection: ProjectionPerspective,
		CullMask:   LayerAll,
	}
}

// LookAt orients the camera towards a target point.
func (c *Camera) LookAt(target, up math.Vec3) {
	// Derive the quaternion from the look-at basis.
	forward := target.Sub(c.Position).Normalized()
	right := up.Cross(forward.Neg()).Normalized()
	newUp := forward.Neg().Cross(right)

	m := math.NewMat4Identity()
	m.Data[0] = right.X
	m.Data[1] = right.Y
	m.Data[2] = right.Z
	m.Data[4] = newUp.X
	m.Data[5] = newUp.Y
	m.Data[6] = newUp.Z
	m.Data[8] = -forward.X
	m.Data[9] = -forward.Y
	m.Data[10] = -forward.Z

	c.Rotation = matToQuat(m)
}

func matToQuat(m math.Mat4) math.Quaternion {
	trace := m.Data[0] + m.Data[5] + m.Data[10]
	var q math.Quaternion
	if trace > 0 {
		s := 0.5 / math32.Sqrt(trace+1.0)
		q.W = 0.25 / s
		q.X = (m.Data[6] - m.Data[9]) * s
		q.Y = (m.Data[8] - m.Data[2]) * s
		q.Z = (m.Data[1] - m.Data[4]) * s
	} else if m.Data[0] > m.Data[5] && m.Data[0] > m.Data[10] {
		s := 2.0 * math32.Sqrt(1.0+m.Data[0]-m.Data[5]-m.Data[10])
		q.W = (m.Data[6] - m.Data[9]) / s
		q.X = 0.25 * s
		q.Y = (m.Data[4] + m.Data[1]) / s
		q.Z = (m.Data[8] + m.Data[2]) / s
	} else if m.Data[5] > m.Data[10] {
		s := 2.0 * math32.Sqrt(1.0+m.Data[5]-m.Data[0]-m.Data[10])
		q.W = (m.Data[8] - m.Data[2]) / s
		q.X = (m.Data[4] + m.Data[1]) / s
		q.Y = 0.25 * s
		q.Z = (m.Data[9] + m.Data[6]) / s
	} else {
		s := 2.0 * math32.Sqrt(1.0+m.Data[10]-m.Data[0]-m.Data[5])
		q.W = (m.Data[1] - m.Data[4]) / s
		q.X = (m.Data[8] + m.Data[2]) / s
		q.Y = (m.Data[9] + m.Data[6]) / s
		q.Z = 0.25 * s
	}
	return q.Normalized()
}

// Forward returns the view direction.
func (c *Camera) Forward() math.Vec3 {
	return math.NewVec3Forward().Rotate(c.Rotation)
}

// ViewMatrix builds the world-to-view matrix.
func (c *Camera) ViewMatrix() math.Mat4 {
	target := c.Position.Add(c.Forward())
	up := math.NewVec3Up().Rotate(c.Rotation)
	return math.NewMat4LookAt(c.Position, target, up)
}

// ProjectionMatrix builds the projection for the given aspect ratio.
func (c *Camera) ProjectionMatrix(aspect float32) math.Mat4 {
	if c.Projection == ProjectionOrthographic {
		halfH := c.FOV * 0.5
		halfW := halfH * aspect
		return math.NewMat4Orthographic(-halfW, halfW, -halfH, halfH, c.NearPlane, c.FarPlane)
	}
	return math.NewMat4Perspective(c.FOV, aspect, c.NearPlane, c.FarPlane)
}

// ViewProj composes view and projection for the given aspect ratio.
func (c *Camera) ViewProj(aspect float32) math.Mat4 {
	return c.ViewMatrix().Mul(c.ProjectionMatrix(aspect))
}
