// Package display is the glfw window that backs the Vulkan presentation
// surface of a vkcore renderer.
package display

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/vkcore"
)

func init() {
	// glfw and the Vulkan loader must stay on the main thread.
	runtime.LockOSThread()
}

// Init initializes glfw and points the Vulkan loader at glfw's instance proc
// address. Call it on the main thread before creating a Core.
func Init() error {
	if err := glfw.Init(); err != nil {
		return errors.Wrap(err, "init glfw")
	}
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		glfw.Terminate()
		return errors.Wrap(err, "init vulkan loader")
	}
	return nil
}

func Terminate() {
	glfw.Terminate()
}

//Display is a window without a client API context, it implements vkcore.SurfaceProvider
type Display struct {
	window *glfw.Window
}

var _ vkcore.SurfaceProvider = (*Display)(nil)

func NewDisplay(config vkcore.WindowConfig) (*Display, error) {
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(config.Width, config.Height, config.Title, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create window")
	}
	return &Display{window: window}, nil
}

func (d *Display) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	ptr, err := d.window.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, errors.Wrap(err, "create window surface")
	}
	return vk.SurfaceFromPointer(ptr), nil
}

func (d *Display) FramebufferSize() (width, height int) {
	return d.window.GetFramebufferSize()
}

func (d *Display) RequiredInstanceExtensions() []string {
	return d.window.GetRequiredInstanceExtensions()
}

func (d *Display) Window() *glfw.Window { return d.window }

// ShouldClose polls pending window events and reports whether the user asked
// to close the window.
func (d *Display) ShouldClose() bool {
	glfw.PollEvents()
	return d.window.ShouldClose()
}

func (d *Display) Destroy() {
	if d.window != nil {
		d.window.Destroy()
		d.window = nil
	}
}
