package platform

import (
	"runtime"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/spaghettifunk/hyperion/engine/core"
)

func init() {
	// GLFW event handling and the GL context must stay on the main OS
	// thread.
	runtime.LockOSThread()
}

// Platform owns the window and the GL context. The renderer only
// consumes a surface to present into and a monotonic clock.
type Platform struct {
	Window *glfw.Window

	onResize func(width, height int)
}

func New() (*Platform, error) {
	return &Platform{}, nil
}

// Startup creates the window with a 4.6 core context and loads the GL
// function pointers.
func (p *Platform) Startup(applicationName string, x, y, width, height int) error {
	if err := glfw.Init(); err != nil {
		core.LogFatal("failed to initialize glfw: %s", err)
		return err
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 6)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(width, height, applicationName, nil, nil)
	if err != nil {
		core.LogFatal("failed to create window: %s", err)
		return err
	}
	window.MakeContextCurrent()
	p.Window = window

	if err := gl.Init(); err != nil {
		core.LogFatal("failed to load OpenGL: %s", err)
		return err
	}

	p.Window.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		if p.onResize != nil {
			p.onResize(w, h)
		}
	})
	p.Window.SetPos(x, y)
	p.Window.Show()

	glfw.SwapInterval(1)

	return nil
}

// SetResizeCallback registers the framebuffer resize handler.
func (p *Platform) SetResizeCallback(fn func(width, height int)) {
	p.onResize = fn
}

// PollEvents pumps the window event queue.
func (p *Platform) PollEvents() {
	glfw.PollEvents()
}

// SwapBuffers presents the backbuffer.
func (p *Platform) SwapBuffers() {
	p.Window.SwapBuffers()
}

// ShouldClose reports whether the user requested a close.
func (p *Platform) ShouldClose() bool {
	return p.Window.ShouldClose()
}

// RequestClose flags the window for closing.
func (p *Platform) RequestClose() {
	p.Window.SetShouldClose(true)
}

// Time returns the monotonic time in seconds since glfw init.
func (p *Platform) Time() float64 {
	return glfw.GetTime()
}

func (p *Platform) Shutdown() error {
	glfw.Terminate()
	return nil
}
