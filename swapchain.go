package vkcore

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// DepthFormat is the depth attachment format of every swapchain.
const DepthFormat = vk.FormatD32Sfloat

//Swapchain owns the presentable images of the surface together with everything sized to them: image
//views, the depth attachment, the render pass and one framebuffer per image
type Swapchain struct {
	core     *Core
	surfaces SurfaceProvider

	handle       vk.Swapchain
	format       vk.SurfaceFormat
	presentMode  vk.PresentMode
	extent       vk.Extent2D
	images       []vk.Image
	views        []vk.ImageView
	depth        *Image
	renderPass   vk.RenderPass
	framebuffers []vk.Framebuffer
}

func NewSwapchain(core *Core, surfaces SurfaceProvider) (*Swapchain, error) {
	if !core.initialized() {
		return nil, contractError("create swapchain", ErrNotInitialized)
	}
	sc := &Swapchain{core: core, surfaces: surfaces}
	if err := sc.init(vk.NullSwapchain); err != nil {
		sc.Destroy()
		return nil, err
	}
	return sc, nil
}

func (sc *Swapchain) init(old vk.Swapchain) error {
	core := sc.core
	support, err := core.devices.SwapchainSupport()
	if err != nil {
		return core.logs.failure(KindFatal, "query swapchain support", "", err)
	}
	if !support.Adequate() {
		return core.logs.failure(KindFatal, "create swapchain", "", errors.New("surface has no formats or present modes"))
	}
	caps := support.Capabilities

	sc.format = chooseSurfaceFormat(support.Formats)
	sc.presentMode = choosePresentMode(support.PresentModes, core.config.PresentModePreference())
	width, height := sc.surfaces.FramebufferSize()
	sc.extent = chooseExtent(caps, width, height)

	handle, err := core.driver.CreateSwapchain(core.Device(), SwapchainRequest{
		Surface:     core.devices.Surface(),
		MinImages:   chooseImageCount(caps, uint32(core.config.SwapchainDepth)),
		Format:      sc.format,
		Extent:      sc.extent,
		PresentMode: sc.presentMode,
		Transform:   choosePreTransform(caps),
		Alpha:       chooseCompositeAlpha(caps),
		Families:    core.devices.QueueFamilyIndices().Unique(),
		Old:         old,
	})
	if old != vk.NullSwapchain {
		core.driver.DestroySwapchain(core.Device(), old)
	}
	if err != nil {
		return core.logs.failure(KindFatal, "create swapchain", "", err)
	}
	sc.handle = handle

	sc.images, err = core.driver.SwapchainImages(core.Device(), sc.handle)
	if err != nil {
		return core.logs.failure(KindFatal, "get swapchain images", "", err)
	}
	for _, image := range sc.images {
		view, err := core.driver.CreateImageView(core.Device(), ViewRequest{
			Image:  image,
			Type:   vk.ImageViewType2d,
			Format: sc.format.Format,
			Aspect: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			Layers: 1,
		})
		if err != nil {
			return core.logs.failure(KindFatal, "create swapchain image view", "", err)
		}
		sc.views = append(sc.views, view)
	}

	sc.depth, err = NewDepthImage(core, sc.extent.Width, sc.extent.Height, DepthFormat)
	if err != nil {
		return err
	}

	sc.renderPass, err = core.driver.CreateRenderPass(core.Device(), sc.format.Format, DepthFormat)
	if err != nil {
		return core.logs.failure(KindFatal, "create render pass", "", err)
	}

	for _, view := range sc.views {
		fb, err := core.driver.CreateFramebuffer(core.Device(), sc.renderPass, []vk.ImageView{view, sc.depth.View()}, sc.extent)
		if err != nil {
			return core.logs.failure(KindFatal, "create framebuffer", "", err)
		}
		sc.framebuffers = append(sc.framebuffers, fb)
	}
	core.logs.Info.Printf("swapchain %dx%d, %d images, present mode %d", sc.extent.Width, sc.extent.Height, len(sc.images), sc.presentMode)
	return nil
}

// Recreate waits for the device to go idle and rebuilds the swapchain for the
// current surface size. The old swapchain is handed to the driver for reuse.
func (sc *Swapchain) Recreate() error {
	if err := sc.core.devices.WaitIdle(); err != nil {
		return err
	}
	old := sc.handle
	sc.destroyFrames()
	sc.handle = vk.NullSwapchain
	return sc.init(old)
}

// Acquire returns the index of the next presentable image and signals
// available once it can be rendered to. ErrOutOfDate means Recreate.
func (sc *Swapchain) Acquire(available *Semaphore) (uint32, error) {
	index, err := sc.core.driver.AcquireNextImage(sc.core.Device(), sc.handle, available.Handle())
	if err == ErrOutOfDate {
		return 0, err
	}
	if err != nil {
		return 0, sc.core.logs.failure(KindFatal, "acquire swapchain image", "", err)
	}
	return index, nil
}

// Present queues image index for presentation once finished is signaled.
func (sc *Swapchain) Present(index uint32, finished *Semaphore) error {
	err := sc.core.driver.QueuePresent(sc.core.devices.PresentQueue(), sc.handle, index, finished.Handle())
	if err == ErrOutOfDate {
		return err
	}
	if err != nil {
		return sc.core.logs.failure(KindFatal, "present swapchain image", "", err)
	}
	return nil
}

func (sc *Swapchain) Handle() vk.Swapchain                { return sc.handle }
func (sc *Swapchain) Framebuffer(i uint32) vk.Framebuffer { return sc.framebuffers[i] }
func (sc *Swapchain) RenderPass() vk.RenderPass           { return sc.renderPass }
func (sc *Swapchain) Extent() vk.Extent2D                 { return sc.extent }
func (sc *Swapchain) Format() vk.SurfaceFormat            { return sc.format }
func (sc *Swapchain) PresentMode() vk.PresentMode         { return sc.presentMode }
func (sc *Swapchain) ImageCount() int                     { return len(sc.images) }

func (sc *Swapchain) destroyFrames() {
	core := sc.core
	for _, fb := range sc.framebuffers {
		core.driver.DestroyFramebuffer(core.Device(), fb)
	}
	sc.framebuffers = nil
	if sc.renderPass != vk.NullRenderPass {
		core.driver.DestroyRenderPass(core.Device(), sc.renderPass)
		sc.renderPass = vk.NullRenderPass
	}
	if sc.depth != nil {
		sc.depth.Destroy()
		sc.depth = nil
	}
	for _, view := range sc.views {
		core.driver.DestroyImageView(core.Device(), view)
	}
	sc.views = nil
	sc.images = nil
}

func (sc *Swapchain) Destroy() {
	sc.destroyFrames()
	if sc.handle != vk.NullSwapchain {
		sc.core.driver.DestroySwapchain(sc.core.Device(), sc.handle)
		sc.handle = vk.NullSwapchain
	}
}

func chooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, f := range formats {
		if f.Format == vk.FormatB8g8r8a8Srgb && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f
		}
	}
	format := formats[0]
	if format.Format == vk.FormatUndefined {
		format.Format = vk.FormatB8g8r8a8Unorm
	}
	return format
}

// FIFO is the only present mode every surface supports.
func choosePresentMode(modes []vk.PresentMode, preferred vk.PresentMode) vk.PresentMode {
	for _, mode := range modes {
		if mode == preferred {
			return mode
		}
	}
	return vk.PresentModeFifo
}

func chooseExtent(caps SurfaceCapabilities, width, height int) vk.Extent2D {
	if caps.CurrentExtent.Width != vk.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clampUint32(uint32(width), caps.MinExtent.Width, caps.MaxExtent.Width),
		Height: clampUint32(uint32(height), caps.MinExtent.Height, caps.MaxExtent.Height),
	}
}

// A max image count of zero means no upper bound.
func chooseImageCount(caps SurfaceCapabilities, depth uint32) uint32 {
	if caps.MaxImageCount > 0 && depth > caps.MaxImageCount {
		return caps.MaxImageCount
	}
	if depth < caps.MinImageCount {
		return caps.MinImageCount
	}
	return depth
}

func choosePreTransform(caps SurfaceCapabilities) vk.SurfaceTransformFlagBits {
	if vk.SurfaceTransformFlagBits(caps.SupportedTransforms)&vk.SurfaceTransformIdentityBit != 0 {
		return vk.SurfaceTransformIdentityBit
	}
	return caps.CurrentTransform
}

// One of these is guaranteed to be supported.
func chooseCompositeAlpha(caps SurfaceCapabilities) vk.CompositeAlphaFlagBits {
	for _, alpha := range []vk.CompositeAlphaFlagBits{
		vk.CompositeAlphaOpaqueBit,
		vk.CompositeAlphaPreMultipliedBit,
		vk.CompositeAlphaPostMultipliedBit,
		vk.CompositeAlphaInheritBit,
	} {
		if caps.SupportedCompositeAlpha&vk.CompositeAlphaFlags(alpha) != 0 {
			return alpha
		}
	}
	return vk.CompositeAlphaOpaqueBit
}

func clampUint32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
