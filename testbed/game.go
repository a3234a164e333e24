package testbed

import (
	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/spaghettifunk/hyperion/engine"
	"github.com/spaghettifunk/hyperion/engine/math"
	"github.com/spaghettifunk/hyperion/engine/resources"
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	camera      *resources.Camera
	environment resources.Environment

	cubeMesh     *resources.Mesh
	floorMesh    *resources.Mesh
	material     resources.Material
	glassMat     resources.Material
	sun          *resources.Light
	lamp         *resources.Light
	skyCubemap   *resources.Cubemap
	skyProbe     *resources.ReflectionProbe
	spinAngle    float32
}

func NewTestGame() *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: &engine.ApplicationConfig{
				StartPosX:   100,
				StartPosY:   100,
				StartWidth:  1280,
				StartHeight: 720,
				Name:        "Hyperion Testbed",
			},
			State: &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render

	return tg
}

func (tg *TestGame) Initialize() error {
	state := tg.State.(*gameState)
	sm := tg.SystemManager

	state.camera = sm.CameraSystem.Default()
	state.camera.Position = math.NewVec3(0, 2, 6)
	state.camera.LookAt(math.NewVec3Zero(), math.NewVec3Up())

	state.environment = resources.DefaultEnvironment()
	state.environment.Bounds = math.NewBoundingBox(math.NewVec3(-20, -2, -20), math.NewVec3(20, 10, 20))
	state.environment.SSAO.Enabled = true
	state.environment.Bloom.Mode = resources.BloomAdditive

	// Procedural sky and its reflection probe.
	state.skyCubemap = resources.NewEmptyCubemap(sm.Pipeline, 512, gl.RGBA16F, false)
	state.skyCubemap.GenerateSkybox(resources.DefaultSkybox(), sm.ShaderSystem.SkyboxGen())
	state.skyProbe = resources.NewReflectionProbe(sm.Pipeline, state.skyCubemap,
		sm.ShaderSystem.Prefilter(), sm.ShaderSystem.Irradiance())
	state.environment.Sky.Cubemap = state.skyCubemap
	state.environment.Sky.Probe = state.skyProbe

	state.cubeMesh = sm.MeshSystem.CreateMesh(cubeVertices(1.0), cubeIndices())
	state.floorMesh = sm.MeshSystem.CreateMesh(planeVertices(20.0), planeIndices())

	state.material = sm.MaterialSystem.Default()
	state.material.ORM.Roughness = 0.4
	state.material.ORM.Metalness = 0.1

	state.glassMat = sm.MaterialSystem.Default()
	state.glassMat.Albedo.Color = math.NewColor(0.4, 0.6, 0.9, 0.5)
	state.glassMat.Blend = resources.BlendAlpha

	state.sun = sm.LightSystem.CreateLight(resources.LightDirectional)
	state.sun.SetDirection(math.NewVec3(-0.4, -1.0, -0.3).Normalized())
	state.sun.SetEnergy(2.0)
	state.sun.SetShadowActive(true)
	state.sun.SetActive(true)

	state.lamp = sm.LightSystem.CreateLight(resources.LightOmni)
	state.lamp.SetPosition(math.NewVec3(2, 3, 2))
	state.lamp.SetColor(math.NewColor(1.0, 0.7, 0.4, 1))
	state.lamp.SetRange(12)
	state.lamp.SetShadowActive(true)
	state.lamp.SetShadowUpdateMode(resources.ShadowUpdateInterval)
	state.lamp.SetShadowUpdateIntervalSec(0.1)
	state.lamp.SetActive(true)

	return nil
}

func (tg *TestGame) Update(deltaTime float64) error {
	state := tg.State.(*gameState)
	state.spinAngle += float32(deltaTime)
	return nil
}

func (tg *TestGame) Render(deltaTime float64) error {
	state := tg.State.(*gameState)
	renderer := tg.SystemManager.RendererSystem

	renderer.Begin3D(state.camera, &state.environment, nil)

	floorTransform := math.TransformFromPosition(math.NewVec3(0, -1, 0))
	renderer.DrawMesh(state.floorMesh, &state.material, floorTransform)

	spin := math.NewQuatFromAxisAngle(math.NewVec3Up(), state.spinAngle, true)
	cubeTransform := math.TransformFromPositionRotationScale(
		math.NewVec3(0, 0.5, 0), spin, math.NewVec3One())
	renderer.DrawMesh(state.cubeMesh, &state.material, cubeTransform)

	glassTransform := math.TransformFromPosition(math.NewVec3(1.5, 0.5, 1.5))
	renderer.DrawMesh(state.cubeMesh, &state.glassMat, glassTransform)

	renderer.End3D()
	return nil
}

/* --- Procedural test geometry --- */

func cubeVertices(size float32) []math.Vertex3D {
	h := size * 0.5
	faces := []struct {
		normal  math.Vec3
		tangent math.Vec4
		corners [4]math.Vec3
	}{
		{math.NewVec3(0, 0, 1), math.NewVec4(1, 0, 0, 1), [4]math.Vec3{{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h}}},
		{math.NewVec3(0, 0, -1), math.NewVec4(-1, 0, 0, 1), [4]math.Vec3{{h, -h, -h}, {-h, -h, -h}, {-h, h, -h}, {h, h, -h}}},
		{math.NewVec3(1, 0, 0), math.NewVec4(0, 0, -1, 1), [4]math.Vec3{{h, -h, h}, {h, -h, -h}, {h, h, -h}, {h, h, h}}},
		{math.NewVec3(-1, 0, 0), math.NewVec4(0, 0, 1, 1), [4]math.Vec3{{-h, -h, -h}, {-h, -h, h}, {-h, h, h}, {-h, h, -h}}},
		{math.NewVec3(0, 1, 0), math.NewVec4(1, 0, 0, 1), [4]math.Vec3{{-h, h, h}, {h, h, h}, {h, h, -h}, {-h, h, -h}}},
		{math.NewVec3(0, -1, 0), math.NewVec4(1, 0, 0, 1), [4]math.Vec3{{-h, -h, -h}, {h, -h, -h}, {h, -h, h}, {-h, -h, h}}},
	}

	uvs := [4]math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}

	var vertices []math.Vertex3D
	for _, face := range faces {
		for i, corner := range face.corners {
			vertices = append(vertices, math.Vertex3D{
				Position: corner,
				Texcoord: uvs[i],
				Normal:   face.normal,
				Tangent:  face.tangent,
				Colour:   math.ColorWhite,
			})
		}
	}
	return vertices
}

func cubeIndices() []uint32 {
	var indices []uint32
	for face := uint32(0); face < 6; face++ {
		base := face * 4
		indices = append(indices, base, base+1, base+2, base+2, base+3, base)
	}
	return indices
}

func planeVertices(size float32) []math.Vertex3D {
	h := size * 0.5
	corners := [4]math.Vec3{{X: -h, Z: h}, {X: h, Z: h}, {X: h, Z: -h}, {X: -h, Z: -h}}
	uvs := [4]math.Vec2{{X: 0, Y: 0}, {X: 8, Y: 0}, {X: 8, Y: 8}, {X: 0, Y: 8}}

	var vertices []math.Vertex3D
	for i := range corners {
		vertices = append(vertices, math.Vertex3D{
			Position: corners[i],
			Texcoord: uvs[i],
			Normal:   math.NewVec3Up(),
			Tangent:  math.NewVec4(1, 0, 0, 1),
			Colour:   math.ColorWhite,
		})
	}
	return vertices
}

func planeIndices() []uint32 {
	return []uint32{0, 1, 2, 2, 3, 0}
}
