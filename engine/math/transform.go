package math

func TransformIdentity() Transform {
	return Transform{
		Translation: NewVec3Zero(),
		Rotation:    NewQuatIdentity(),
		Scale:       NewVec3One(),
	}
}

func TransformFromPosition(position Vec3) Transform {
	t := TransformIdentity()
	t.Translation = position
	return t
}

func TransformFromPositionRotationScale(position Vec3, rotation Quaternion, scale Vec3) Transform {
	return Transform{
		Translation: position,
		Rotation:    rotation,
		Scale:       scale,
	}
}

// ToMat4 builds the world matrix as scale, then rotation, then translation.
func (t Transform) ToMat4() Mat4 {
	m := NewMat4Scale(t.Scale).Mul(t.Rotation.ToMat4())
	m.Data[12] = t.Translation.X
	m.Data[13] = t.Translation.Y
	m.Data[14] = t.Translation.Z
	return m
}

// ToNormalMat4 returns the inverse-transpose of the world matrix with the
// translation removed, suitable for transforming normals. The result is
// returned as a Mat4 so it can be uploaded directly into std430 records.
func (t Transform) ToNormalMat4() Mat4 {
	m := t.ToMat4()
	m.Data[12] = 0
	m.Data[13] = 0
	m.Data[14] = 0
	n := NewMat4Transposed(m.Inverse())
	n.Data[3] = 0
	n.Data[7] = 0
	n.Data[11] = 0
	n.Data[12] = 0
	n.Data[13] = 0
	n.Data[14] = 0
	n.Data[15] = 1
	return n
}
