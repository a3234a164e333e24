package resources

import (
	"github.com/spaghettifunk/hyperion/engine/core"
	"github.com/spaghettifunk/hyperion/engine/math"
)

/**
 * @brief Bone metadata: name and parent index (-1 if root).
 */
type BoneInfo struct {
	Name   string
	Parent int
}

/**
 * @brief A skeletal animation: per-frame global bone poses in model
 * space, plus the skeleton the poses refer to.
 */
type ModelAnimation struct {
	Name       string
	BoneCount  int
	FrameCount int

	Bones []BoneInfo

	// FrameGlobalPoses[frame][bone] are global matrices in model space.
	FrameGlobalPoses [][]math.Mat4
	// FrameLocalPoses[frame][bone] are TRS transforms relative to the
	// parent bone.
	FrameLocalPoses [][]math.Transform
}

/**
 * @brief A composite of meshes and materials with optional skeleton.
 * Invariants: len(Meshes) == len(MeshMaterials); each MeshMaterials[i]
 * is a valid index into Materials; the bone arrays are either all
 * present or all absent.
 */
type Model struct {
	Meshes        []*Mesh
	Materials     []Material
	MeshMaterials []int

	AABB math.BoundingBox

	// BoneOverride is an optional user-supplied pose replacing internal
	// animation sampling.
	BoneOverride []math.Mat4
	// BoneBindPose is the default pose of non-animated skinned models.
	BoneBindPose []math.Mat4
	// BoneOffsets are the inverse-bind matrices, one per bone.
	BoneOffsets []math.Mat4

	Bones []BoneInfo

	Anim      *ModelAnimation
	AnimMode  AnimMode
	AnimFrame float32
}

// NewModel assembles a model from meshes and materials. The AABB spans
// all meshes.
func NewModel(meshes []*Mesh, materials []Material, meshMaterials []int) *Model {
	if len(meshes) == 0 {
		core.LogError("RENDER: cannot create a model without meshes")
		return nil
	}
	if len(meshes) != len(meshMaterials) {
		core.LogError("RENDER: model mesh count %d does not match material map length %d",
			len(meshes), len(meshMaterials))
		return nil
	}
	for _, mi := range meshMaterials {
		if mi < 0 || mi >= len(materials) {
			core.LogError("RENDER: model material index %d out of range", mi)
			return nil
		}
	}

	model := &Model{
		Meshes:        meshes,
		Materials:     materials,
		MeshMaterials: meshMaterials,
		AnimMode:      AnimInternal,
	}

	model.AABB = meshes[0].AABB
	for _, mesh := range meshes[1:] {
		model.AABB = model.AABB.Merge(mesh.AABB)
	}

	return model
}

func (m *Model) BoneCount() int {
	return len(m.Bones)
}

// SetSkeleton attaches bone data. All three arrays must have matching
// lengths.
func (m *Model) SetSkeleton(bones []BoneInfo, bindPose, offsets []math.Mat4) {
	if len(bones) != len(bindPose) || len(bones) != len(offsets) {
		core.LogError("RENDER: skeleton arrays must have matching lengths (%d, %d, %d)",
			len(bones), len(bindPose), len(offsets))
		return
	}
	m.Bones = bones
	m.BoneBindPose = bindPose
	m.BoneOffsets = offsets
}

// CurrentPose resolves the world-pose matrices to skin with this
// frame, according to the animation mode. Returns nil when the model
// has no usable pose.
func (m *Model) CurrentPose() []math.Mat4 {
	if len(m.Bones) == 0 {
		return nil
	}

	switch m.AnimMode {
	case AnimCustom:
		if len(m.BoneOverride) > 0 {
			return m.BoneOverride
		}
	case AnimInternal:
		if m.Anim != nil {
			if m.Anim.BoneCount != len(m.Bones) {
				core.LogWarn("RENDER: model and animation bone counts differ (%d vs %d)",
					len(m.Bones), m.Anim.BoneCount)
				return m.BoneBindPose
			}
			frame := int(m.AnimFrame)
			if frame < 0 {
				frame = 0
			}
			if frame >= m.Anim.FrameCount {
				frame = m.Anim.FrameCount - 1
			}
			return m.Anim.FrameGlobalPoses[frame]
		}
	}

	return m.BoneBindPose
}

func (m *Model) Destroy() {
	if m == nil {
		return
	}
	for _, mesh := range m.Meshes {
		mesh.Destroy()
	}
	m.Meshes = nil
}
