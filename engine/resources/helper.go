package resources

import (
	"github.com/spaghettifunk/hyperion/engine/math"
)

// CubeView returns the canonical view matrix of one cubemap face,
// looking outward from eye.
func CubeView(face int, eye math.Vec3) math.Mat4 {
	dirs := [6]math.Vec3{
		{X: 1}, {X: -1},
		{Y: 1}, {Y: -1},
		{Z: 1}, {Z: -1},
	}
	ups := [6]math.Vec3{
		{Y: -1}, {Y: -1},
		{Z: 1}, {Z: -1},
		{Y: -1}, {Y: -1},
	}
	return math.NewMat4LookAt(eye, eye.Add(dirs[face]), ups[face])
}

// CubeProj returns the fixed 90 degree square projection used for
// cubemap rendering.
func CubeProj(near, far float32) math.Mat4 {
	return math.NewMat4Perspective(math.K_PI/2.0, 1.0, near, far)
}
