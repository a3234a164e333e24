package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMat4IdentityMul(t *testing.T) {
	m := NewMat4Translation(NewVec3(1, 2, 3))
	assert.Equal(t, m, m.Mul(NewMat4Identity()))
	assert.Equal(t, m, NewMat4Identity().Mul(m))
}

func TestMat4Inverse(t *testing.T) {
	m := NewMat4Translation(NewVec3(4, -2, 7)).Mul(NewMat4Scale(NewVec3(2, 2, 2)))
	inv := m.Inverse()

	p := NewVec3(1, 2, 3)
	back := p.Transform(m).Transform(inv)
	assert.True(t, back.Compare(p, 1e-4), "expected %v, got %v", p, back)
}

func TestVec3TransformTranslation(t *testing.T) {
	m := NewMat4Translation(NewVec3(5, 0, 0))
	out := NewVec3(1, 1, 1).Transform(m)
	assert.True(t, out.Compare(NewVec3(6, 1, 1), 1e-6))
}

func TestLookAtMovesTargetToNegativeZ(t *testing.T) {
	view := NewMat4LookAt(NewVec3(0, 0, 2), NewVec3Zero(), NewVec3Up())
	out := NewVec3Zero().Transform(view)
	assert.InDelta(t, 0.0, float64(out.X), 1e-5)
	assert.InDelta(t, 0.0, float64(out.Y), 1e-5)
	assert.InDelta(t, -2.0, float64(out.Z), 1e-5)
}

func TestQuaternionRotation(t *testing.T) {
	q := NewQuatFromAxisAngle(NewVec3Up(), K_PI/2, true)
	out := NewVec3(1, 0, 0).Rotate(q)
	// Rotating +X by 90 degrees around +Y lands on -Z.
	assert.True(t, out.Compare(NewVec3(0, 0, -1), 1e-5), "got %v", out)
}

func TestTransformToMat4Composition(t *testing.T) {
	tr := TransformFromPositionRotationScale(
		NewVec3(1, 2, 3),
		NewQuatFromAxisAngle(NewVec3Up(), K_PI/2, true),
		NewVec3(2, 2, 2),
	)
	m := tr.ToMat4()

	// scale, then rotate, then translate
	out := NewVec3(1, 0, 0).Transform(m)
	expected := NewVec3(1, 2, 3).Add(NewVec3(0, 0, -2))
	assert.True(t, out.Compare(expected, 1e-4), "got %v, want %v", out, expected)
}

func TestBoundingBoxMergeAndCenter(t *testing.T) {
	a := NewBoundingBox(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))
	b := NewBoundingBox(NewVec3(0, 0, 0), NewVec3(3, 1, 1))
	merged := a.Merge(b)
	assert.Equal(t, NewVec3(-1, -1, -1), merged.Min)
	assert.Equal(t, NewVec3(3, 1, 1), merged.Max)
	assert.Equal(t, NewVec3(1, 0, 0), merged.Center())
}

func TestClampAndAlignUp(t *testing.T) {
	assert.Equal(t, 5, Clamp(7, 0, 5))
	assert.Equal(t, 0, Clamp(-1, 0, 5))
	assert.Equal(t, float32(2.5), Clamp(float32(2.5), float32(0), float32(5)))

	assert.Equal(t, 256, AlignUp(1, 256))
	assert.Equal(t, 256, AlignUp(256, 256))
	assert.Equal(t, 512, AlignUp(257, 256))
	assert.Equal(t, 0, AlignUp(0, 256))
}

func TestColorLerp(t *testing.T) {
	c := ColorBlack.Lerp(ColorWhite, 0.5)
	assert.InDelta(t, 0.5, float64(c.R), 1e-6)
	assert.InDelta(t, 1.0, float64(c.A), 1e-6)
}
