package loaders

import (
	"os"

	"gopkg.in/yaml.v3"
)

// MaterialDefinition is the on-disk form of a material: texture file
// names plus the scalar and mode settings. Unset fields keep the
// default material values.
type MaterialDefinition struct {
	Name string `yaml:"name"`

	AlbedoTexture   string     `yaml:"albedo_texture"`
	AlbedoColor     [4]float32 `yaml:"albedo_color"`
	EmissionTexture string     `yaml:"emission_texture"`
	EmissionColor   [4]float32 `yaml:"emission_color"`
	EmissionEnergy  float32    `yaml:"emission_energy"`
	ORMTexture      string     `yaml:"orm_texture"`
	NormalTexture   string     `yaml:"normal_texture"`

	Occlusion   float32 `yaml:"occlusion"`
	Roughness   float32 `yaml:"roughness"`
	Metalness   float32 `yaml:"metalness"`
	NormalScale float32 `yaml:"normal_scale"`
	AlphaCutOff float32 `yaml:"alpha_cutoff"`

	Shading string `yaml:"shading"` // lit | unlit | wireframe
	Blend   string `yaml:"blend"`   // opaque | alpha | add | mul
	Cull    string `yaml:"cull"`    // back | front | none
	PrePass bool   `yaml:"prepass"`

	ShaderVertex   string `yaml:"shader_vertex"`
	ShaderFragment string `yaml:"shader_fragment"`
}

// LoadMaterialDefinition parses a yaml material file.
func LoadMaterialDefinition(path string) (*MaterialDefinition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	def := &MaterialDefinition{
		AlbedoColor:   [4]float32{1, 1, 1, 1},
		EmissionColor: [4]float32{1, 1, 1, 1},
		Occlusion:     1,
		Roughness:     1,
		NormalScale:   1,
		AlphaCutOff:   1e-6,
	}
	if err := yaml.Unmarshal(raw, def); err != nil {
		return nil, err
	}
	return def, nil
}
