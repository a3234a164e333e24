package opengl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/spaghettifunk/hyperion/engine/core"
)

// ShaderStage is one compiled GL shader object, released once linked
// into a program.
type ShaderStage struct {
	id uint32
}

// NewShaderStage compiles one stage. Defines are injected right after
// the #version directive as `#define NAME`.
func NewShaderStage(stageType uint32, source string, defines ...string) *ShaderStage {
	s := &ShaderStage{}

	if len(defines) > 0 {
		var sb strings.Builder
		for _, def := range defines {
			sb.WriteString("#define ")
			sb.WriteString(def)
			sb.WriteString("\n")
		}
		if idx := strings.Index(source, "\n"); idx >= 0 && strings.HasPrefix(source, "#version") {
			source = source[:idx+1] + sb.String() + source[idx+1:]
		} else {
			source = sb.String() + source
		}
	}

	s.id = gl.CreateShader(stageType)
	if s.id == 0 {
		core.LogError("GPU: failed to create shader object")
		return s
	}

	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(s.id, 1, csources, nil)
	free()
	gl.CompileShader(s.id)

	var status int32
	gl.GetShaderiv(s.id, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(s.id, gl.INFO_LOG_LENGTH, &logLength)
		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(s.id, logLength, nil, gl.Str(infoLog))
		core.LogError("GPU: shader compilation failed: %s", infoLog)
		gl.DeleteShader(s.id)
		s.id = 0
	}

	return s
}

func (s *ShaderStage) IsValid() bool {
	return s != nil && s.id != 0
}

func (s *ShaderStage) Destroy() {
	if s.id != 0 {
		gl.DeleteShader(s.id)
		s.id = 0
	}
}

// Program owns one linked GL program.
type Program struct {
	id uint32
}

// NewProgram links the given stages, then deletes the stage objects.
func NewProgram(stages ...*ShaderStage) *Program {
	p := &Program{}

	for _, stage := range stages {
		if !stage.IsValid() {
			core.LogError("GPU: cannot link program with invalid shader stage")
			return p
		}
	}

	p.id = gl.CreateProgram()
	if p.id == 0 {
		core.LogError("GPU: failed to create program object")
		return p
	}

	for _, stage := range stages {
		gl.AttachShader(p.id, stage.id)
	}
	gl.LinkProgram(p.id)
	for _, stage := range stages {
		gl.DetachShader(p.id, stage.id)
		stage.Destroy()
	}

	var status int32
	gl.GetProgramiv(p.id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(p.id, gl.INFO_LOG_LENGTH, &logLength)
		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(p.id, logLength, nil, gl.Str(infoLog))
		core.LogError("GPU: program link failed: %s", infoLog)
		gl.DeleteProgram(p.id)
		p.id = 0
	}

	return p
}

func (p *Program) Destroy() {
	if p.id != 0 {
		gl.DeleteProgram(p.id)
		p.id = 0
	}
}

func (p *Program) IsValid() bool {
	return p != nil && p.id != 0
}

func (p *Program) ID() uint32 {
	return p.id
}

// GetUniformLocation returns -1 when the uniform does not exist.
func (p *Program) GetUniformLocation(name string) int32 {
	if !p.IsValid() {
		return -1
	}
	return gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
}

// GetUniformBlockIndex returns -1 when the block does not exist.
func (p *Program) GetUniformBlockIndex(name string) int32 {
	if !p.IsValid() {
		return -1
	}
	index := gl.GetUniformBlockIndex(p.id, gl.Str(name+"\x00"))
	if index == gl.INVALID_INDEX {
		return -1
	}
	return int32(index)
}

// GetUniformBlockSize returns the byte size the GL compiler assigned to
// a uniform block.
func (p *Program) GetUniformBlockSize(blockIndex int32) int {
	if !p.IsValid() || blockIndex < 0 {
		return 0
	}
	var size int32
	gl.GetActiveUniformBlockiv(p.id, uint32(blockIndex), gl.UNIFORM_BLOCK_DATA_SIZE, &size)
	return int(size)
}

// SetUniformBlockBinding assigns a uniform block to a binding point.
func (p *Program) SetUniformBlockBinding(blockIndex int32, binding int) {
	if !p.IsValid() || blockIndex < 0 {
		return
	}
	gl.UniformBlockBinding(p.id, uint32(blockIndex), uint32(binding))
}

// SetStorageBlockBinding assigns a named shader-storage block to a
// binding point; missing blocks are ignored.
func (p *Program) SetStorageBlockBinding(name string, binding int) {
	if !p.IsValid() {
		return
	}
	index := gl.GetProgramResourceIndex(p.id, gl.SHADER_STORAGE_BLOCK, gl.Str(name+"\x00"))
	if index == gl.INVALID_INDEX {
		return
	}
	gl.ShaderStorageBlockBinding(p.id, index, uint32(binding))
}

// BuildProgram compiles a vertex and fragment pair and links them,
// reporting which program failed on error.
func BuildProgram(name, vertexSrc, fragmentSrc string, defines ...string) (*Program, error) {
	vs := NewShaderStage(gl.VERTEX_SHADER, vertexSrc, defines...)
	fs := NewShaderStage(gl.FRAGMENT_SHADER, fragmentSrc, defines...)
	program := NewProgram(vs, fs)
	if !program.IsValid() {
		return program, fmt.Errorf("failed to build program %q", name)
	}
	return program, nil
}
