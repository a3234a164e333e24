package loaders

import "os"

// LoadShaderSource reads a GLSL snippet file as text.
func LoadShaderSource(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
