package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

// IVec4 represents a 4D integer vector, used for bone indices.
type IVec4 struct {
	X, Y, Z, W int32
}

/** @brief A quaternion, used to represent rotational orientation. */
type Quaternion Vec4

/** @brief a 4x4 matrix, typically used to represent object transformations. */
type Mat4 struct {
	/** @brief The matrix elements */
	Data [16]float32
}

/** @brief An RGBA color with float components in [0, 1] (HDR values may exceed 1). */
type Color struct {
	R, G, B, A float32
}

/**
 * @brief Represents an axis-aligned bounding box in 3D space,
 * defined by its minimum and maximum corners.
 */
type BoundingBox struct {
	Min Vec3
	Max Vec3
}

/**
 * @brief Represents a single vertex in 3D space.
 */
type Vertex3D struct {
	/** @brief The position of the vertex */
	Position Vec3
	/** @brief The texture coordinate of the vertex. */
	Texcoord Vec2
	/** @brief The normal of the vertex. */
	Normal Vec3
	/** @brief The tangent of the vertex, w holds the bitangent sign. */
	Tangent Vec4
	/** @brief The colour of the vertex. */
	Colour Color
	/** @brief The bone indices affecting this vertex. */
	BoneIDs IVec4
	/** @brief The bone weights affecting this vertex. */
	Weights Vec4
}

/**
 * @brief Represents a single vertex in 2D space.
 */
type Vertex2D struct {
	/** @brief The position of the vertex */
	Position Vec2
	/** @brief The texture coordinate of the vertex. */
	Texcoord Vec2
	/** @brief The colour of the vertex. */
	Colour Color
}

/**
 * @brief Represents the transform of an object in the world
 * as translation, rotation and scale. There is no parenting;
 * the renderer consumes flat world transforms only.
 */
type Transform struct {
	/** @brief The position in the world. */
	Translation Vec3
	/** @brief The rotation in the world. */
	Rotation Quaternion
	/** @brief The scale of the object. */
	Scale Vec3
}
