package vkcore

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

const cubeFaces = 6

// ImageSpec describes a device-local, optimally tiled image.
type ImageSpec struct {
	Width, Height uint32
	Format        vk.Format
	Usage         vk.ImageUsageFlags
	Aspect        vk.ImageAspectFlags
	Cube          bool
}

//Image bundles a device local image with its memory, view and optional sampler. The layout field
//tracks the last transition issued for the image and is the only source of truth for it.
type Image struct {
	core    *Core
	handle  vk.Image
	memory  vk.DeviceMemory
	view    vk.ImageView
	sampler vk.Sampler
	width   uint32
	height  uint32
	format  vk.Format
	layers  uint32
	aspect  vk.ImageAspectFlags
	layout  vk.ImageLayout
}

// NewEmptyImage creates an image and its view without uploading any data.
func NewEmptyImage(core *Core, spec ImageSpec) (*Image, error) {
	im, err := createImage(core, spec)
	if err != nil {
		return nil, err
	}
	if err := im.createView(); err != nil {
		im.Destroy()
		return nil, err
	}
	return im, nil
}

// NewDepthImage creates a depth attachment. Depth images enter the
// depth-stencil attachment layout directly, the render pass clears them.
func NewDepthImage(core *Core, width, height uint32, format vk.Format) (*Image, error) {
	im, err := NewEmptyImage(core, ImageSpec{
		Width:  width,
		Height: height,
		Format: format,
		Usage:  vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		Aspect: vk.ImageAspectFlags(vk.ImageAspectDepthBit),
	})
	if err != nil {
		return nil, err
	}
	im.layout = vk.ImageLayoutDepthStencilAttachmentOptimal
	return im, nil
}

// NewTexture2D uploads tightly packed pixels into a sampled 2D texture with a
// clamp-to-edge sampler.
func NewTexture2D(core *Core, width, height uint32, format vk.Format, pixels []byte) (*Image, error) {
	return newTexture(core, width, height, format, pixels, 1, vk.SamplerAddressModeClampToEdge)
}

// NewTexture2DFromFile decodes an image file into an sRGB texture with a
// repeating sampler.
func NewTexture2DFromFile(core *Core, path string) (*Image, error) {
	width, height, pixels, err := DecodeRGBA(path)
	if err != nil {
		return nil, core.logs.failure(KindFatal, "load texture", path, err)
	}
	return newTexture(core, width, height, vk.FormatR8g8b8a8Srgb, pixels, 1, vk.SamplerAddressModeRepeat)
}

// NewTextureCube uploads six packed faces, in +X -X +Y -Y +Z -Z order, with
// a single staging buffer and one copy per face.
func NewTextureCube(core *Core, packed *PackedImages) (*Image, error) {
	if packed.Count() != cubeFaces {
		return nil, contractError("create cube texture",
			errors.Errorf("need %d faces, got %d", cubeFaces, packed.Count()))
	}
	width, height := packed.Width(), packed.Height()
	if width != height {
		return nil, contractError("create cube texture",
			errors.Wrapf(ErrInvalidSize, "faces are %dx%d, not square", width, height))
	}
	face := int(width) * int(height) * 4
	for i, entry := range packed.Entries() {
		if entry.Length != face {
			return nil, contractError("create cube texture",
				errors.Wrapf(ErrInvalidSize, "face %d holds %d bytes, a %dx%d face needs %d", i, entry.Length, width, height, face))
		}
	}
	return newTexture(core, packed.Width(), packed.Height(), vk.FormatR8g8b8a8Srgb,
		packed.Bytes(), cubeFaces, vk.SamplerAddressModeClampToEdge)
}

// NewTextureCubeFromFiles decodes and packs one file per face.
func NewTextureCubeFromFiles(core *Core, paths []string) (*Image, error) {
	packed, err := LoadPackedImages(paths, core.config.MaxPackedBytes, core.logs)
	if err != nil {
		return nil, err
	}
	return NewTextureCube(core, packed)
}

// NewTextureCubeFromFile loads a vertical strip holding the six faces top to
// bottom.
func NewTextureCubeFromFile(core *Core, path string) (*Image, error) {
	width, height, pixels, err := DecodeRGBA(path)
	if err != nil {
		return nil, core.logs.failure(KindFatal, "load cube texture", path, err)
	}
	if height != width*cubeFaces {
		return nil, core.logs.failure(KindFatal, "load cube texture", path,
			errors.Errorf("%dx%d is not a vertical strip of %d square faces", width, height, cubeFaces))
	}
	packed := NewPackedImages(core.config.MaxPackedBytes)
	if err := packed.AddStrip(width, width, pixels, cubeFaces); err != nil {
		return nil, core.logs.failure(KindFatal, "pack cube texture", path, err)
	}
	return NewTextureCube(core, packed)
}

func newTexture(core *Core, width, height uint32, format vk.Format, pixels []byte, faces uint32, mode vk.SamplerAddressMode) (*Image, error) {
	bpp, ok := bytesPerPixel(format)
	if !ok {
		return nil, contractError("create texture", errors.Wrapf(ErrUnsupportedFormat, "format %d", format))
	}
	if need := int(width) * int(height) * bpp * int(faces); need == 0 || len(pixels) < need {
		return nil, contractError("create texture",
			errors.Wrapf(ErrInvalidSize, "%dx%dx%d texture needs %d bytes, got %d", width, height, faces, need, len(pixels)))
	}

	staging, err := NewBuffer(core, TransferBuffer, len(pixels), pixels)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy()

	im, err := createImage(core, ImageSpec{
		Width:  width,
		Height: height,
		Format: format,
		Usage:  vk.ImageUsageFlags(vk.ImageUsageTransferDstBit | vk.ImageUsageTransferSrcBit | vk.ImageUsageSampledBit),
		Aspect: vk.ImageAspectFlags(vk.ImageAspectColorBit),
		Cube:   faces == cubeFaces,
	})
	if err != nil {
		return nil, err
	}

	steps := []func() error{
		im.createView,
		func() error { return im.TransitionLayout(vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal) },
		func() error { return im.copyFromBuffer(staging, faces) },
		func() error { return im.TransitionLayout(vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal) },
		func() error { return im.createSampler(mode) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			im.Destroy()
			return nil, err
		}
	}
	return im, nil
}

func createImage(core *Core, spec ImageSpec) (*Image, error) {
	if !core.initialized() {
		return nil, contractError("create image", ErrNotInitialized)
	}
	if spec.Width == 0 || spec.Height == 0 {
		return nil, contractError("create image", errors.Wrapf(ErrInvalidSize, "%dx%d", spec.Width, spec.Height))
	}
	layers := uint32(1)
	var flags vk.ImageCreateFlags
	if spec.Cube {
		layers = cubeFaces
		flags = vk.ImageCreateFlags(vk.ImageCreateCubeCompatibleBit)
	}

	driver, device := core.driver, core.Device()
	handle, err := driver.CreateImage(device, ImageRequest{
		Width:  spec.Width,
		Height: spec.Height,
		Format: spec.Format,
		Tiling: vk.ImageTilingOptimal,
		Usage:  spec.Usage,
		Layers: layers,
		Flags:  flags,
	})
	if err != nil {
		return nil, core.logs.failure(KindFatal, "create image", "", err)
	}
	reqs := driver.ImageMemoryRequirements(device, handle)
	typeIndex, err := core.devices.FindMemoryType(reqs.TypeBits, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		driver.DestroyImage(device, handle)
		return nil, core.logs.failure(KindFatal, "allocate image memory", "", err)
	}
	memory, err := driver.AllocateMemory(device, reqs.Size, typeIndex)
	if err != nil {
		driver.DestroyImage(device, handle)
		return nil, core.logs.failure(KindFatal, "allocate image memory", "", err)
	}
	if err := driver.BindImageMemory(device, handle, memory); err != nil {
		driver.DestroyImage(device, handle)
		driver.FreeMemory(device, memory)
		return nil, core.logs.failure(KindRecoverable, "bind image memory", "", err)
	}

	return &Image{
		core:   core,
		handle: handle,
		memory: memory,
		width:  spec.Width,
		height: spec.Height,
		format: spec.Format,
		layers: layers,
		aspect: spec.Aspect,
		layout: vk.ImageLayoutUndefined,
	}, nil
}

func (im *Image) createView() error {
	viewType := vk.ImageViewType2d
	if im.layers == cubeFaces {
		viewType = vk.ImageViewTypeCube
	}
	view, err := im.core.driver.CreateImageView(im.core.Device(), ViewRequest{
		Image:  im.handle,
		Type:   viewType,
		Format: im.format,
		Aspect: im.aspect,
		Layers: im.layers,
	})
	if err != nil {
		return im.core.logs.failure(KindFatal, "create image view", "", err)
	}
	im.view = view
	return nil
}

func (im *Image) createSampler(mode vk.SamplerAddressMode) error {
	anisotropy := im.core.config.MaxAnisotropy
	if limit := im.core.devices.Properties().MaxSamplerAnisotropy; limit > 0 && limit < anisotropy {
		anisotropy = limit
	}
	sampler, err := im.core.driver.CreateSampler(im.core.Device(), SamplerRequest{
		AddressMode:   mode,
		MaxAnisotropy: anisotropy,
	})
	if err != nil {
		return im.core.logs.failure(KindFatal, "create texture sampler", "", err)
	}
	im.sampler = sampler
	return nil
}

// TransitionLayout records one barrier in a one-shot command buffer and waits
// for it. oldLayout must be the layout the image is currently tracked in.
func (im *Image) TransitionLayout(oldLayout, newLayout vk.ImageLayout) error {
	if oldLayout != im.layout {
		return contractError("transition image layout",
			errors.Errorf("image is in %s layout, not %s", layoutName(im.layout), layoutName(oldLayout)))
	}
	masks, err := LayoutBarrier(oldLayout, newLayout)
	if err != nil {
		return im.core.logs.failure(KindFatal, "transition image layout", "", err)
	}
	err = im.core.RunOneShot(func(cmd *CommandBuffer) error {
		im.core.driver.CmdPipelineBarrier(cmd.Handle(), ImageBarrier{
			Image:     im.handle,
			OldLayout: oldLayout,
			NewLayout: newLayout,
			SrcAccess: masks.SrcAccess,
			DstAccess: masks.DstAccess,
			SrcStage:  masks.SrcStage,
			DstStage:  masks.DstStage,
			Aspect:    im.aspect,
			Levels:    1,
			Layers:    im.layers,
		})
		return nil
	})
	if err != nil {
		return err
	}
	im.layout = newLayout
	return nil
}

// TransitionTo moves the image from its tracked layout to newLayout.
func (im *Image) TransitionTo(newLayout vk.ImageLayout) error {
	return im.TransitionLayout(im.layout, newLayout)
}

//Face i of the staging data starts at (size / faces) * i
func (im *Image) copyFromBuffer(buffer *Buffer, faces uint32) error {
	faceSize := buffer.Size() / vk.DeviceSize(faces)
	regions := make([]ImageCopy, faces)
	for face := uint32(0); face < faces; face++ {
		regions[face] = ImageCopy{
			BufferOffset: faceSize * vk.DeviceSize(face),
			Layer:        face,
			Width:        im.width,
			Height:       im.height,
			Aspect:       im.aspect,
		}
	}
	return im.core.RunOneShot(func(cmd *CommandBuffer) error {
		im.core.driver.CmdCopyBufferToImage(cmd.Handle(), buffer.Handle(), im.handle, regions)
		return nil
	})
}

// Readback copies every layer of a sampled color image back to host memory,
// layers laid out one after the other. The image returns to the shader read
// layout afterwards.
func (im *Image) Readback() ([]byte, error) {
	if im.layout != vk.ImageLayoutShaderReadOnlyOptimal {
		return nil, contractError("read back image",
			errors.Errorf("image is in %s layout", layoutName(im.layout)))
	}
	bpp, ok := bytesPerPixel(im.format)
	if !ok {
		return nil, contractError("read back image", errors.Wrapf(ErrUnsupportedFormat, "format %d", im.format))
	}
	layerSize := int(im.width) * int(im.height) * bpp
	staging, err := NewBuffer(im.core, TransferBuffer, layerSize*int(im.layers), nil)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy()

	if err := im.TransitionTo(vk.ImageLayoutTransferSrcOptimal); err != nil {
		return nil, err
	}
	regions := make([]ImageCopy, im.layers)
	for layer := range regions {
		regions[layer] = ImageCopy{
			BufferOffset: vk.DeviceSize(layerSize * layer),
			Layer:        uint32(layer),
			Width:        im.width,
			Height:       im.height,
			Aspect:       im.aspect,
		}
	}
	err = im.core.RunOneShot(func(cmd *CommandBuffer) error {
		im.core.driver.CmdCopyImageToBuffer(cmd.Handle(), im.handle, staging.Handle(), regions)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := im.TransitionTo(vk.ImageLayoutShaderReadOnlyOptimal); err != nil {
		return nil, err
	}
	return staging.Read()
}

func (im *Image) Handle() vk.Image            { return im.handle }
func (im *Image) View() vk.ImageView          { return im.view }
func (im *Image) Sampler() vk.Sampler         { return im.sampler }
func (im *Image) Width() uint32               { return im.width }
func (im *Image) Height() uint32              { return im.height }
func (im *Image) Format() vk.Format           { return im.format }
func (im *Image) Layers() uint32              { return im.layers }
func (im *Image) Layout() vk.ImageLayout      { return im.layout }
func (im *Image) Aspect() vk.ImageAspectFlags { return im.aspect }

// Destroy releases the view, image, memory and sampler, in that order, each
// only if it was created.
func (im *Image) Destroy() {
	driver, device := im.core.driver, im.core.Device()
	if im.view != nil {
		driver.DestroyImageView(device, im.view)
		im.view = nil
	}
	if im.handle != nil {
		driver.DestroyImage(device, im.handle)
		im.handle = nil
	}
	if im.memory != nil {
		driver.FreeMemory(device, im.memory)
		im.memory = nil
	}
	if im.sampler != nil {
		driver.DestroySampler(device, im.sampler)
		im.sampler = nil
	}
}

func bytesPerPixel(format vk.Format) (int, bool) {
	switch format {
	case vk.FormatR8g8b8a8Srgb, vk.FormatR8g8b8a8Unorm,
		vk.FormatB8g8r8a8Srgb, vk.FormatB8g8r8a8Unorm:
		return 4, true
	}
	return 0, false
}
