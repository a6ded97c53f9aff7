package vkcore

import (
	vk "github.com/vulkan-go/vulkan"
)

// Driver is the set of graphics API primitives the core is built from. Handles
// and enums are vulkan-go types, creation parameters are the small request
// structs below. VulkanDriver forwards every call to the Vulkan loader.
type Driver interface {
	CreateInstance(req InstanceRequest) (vk.Instance, error)
	DestroyInstance(instance vk.Instance)
	InstanceExtensions() ([]string, error)
	InstanceLayers() ([]string, error)

	EnumeratePhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, error)
	PhysicalDeviceProperties(gpu vk.PhysicalDevice) PhysicalDeviceProperties
	PhysicalDeviceFeatures(gpu vk.PhysicalDevice) DeviceFeatures
	MemoryTypes(gpu vk.PhysicalDevice) []MemoryType
	QueueFamilies(gpu vk.PhysicalDevice) []vk.QueueFlags
	DeviceExtensions(gpu vk.PhysicalDevice) ([]string, error)
	SurfaceSupport(gpu vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, error)
	SurfaceCapabilities(gpu vk.PhysicalDevice, surface vk.Surface) (SurfaceCapabilities, error)
	SurfaceFormats(gpu vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, error)
	SurfacePresentModes(gpu vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, error)
	DestroySurface(instance vk.Instance, surface vk.Surface)

	CreateDevice(gpu vk.PhysicalDevice, req DeviceRequest) (vk.Device, error)
	DeviceQueue(device vk.Device, family uint32) vk.Queue
	DeviceWaitIdle(device vk.Device) error
	DestroyDevice(device vk.Device)

	CreateBuffer(device vk.Device, size vk.DeviceSize, usage vk.BufferUsageFlags) (vk.Buffer, error)
	BufferMemoryRequirements(device vk.Device, buffer vk.Buffer) MemoryRequirements
	BindBufferMemory(device vk.Device, buffer vk.Buffer, memory vk.DeviceMemory) error
	DestroyBuffer(device vk.Device, buffer vk.Buffer)

	AllocateMemory(device vk.Device, size vk.DeviceSize, typeIndex uint32) (vk.DeviceMemory, error)
	WriteMemory(device vk.Device, memory vk.DeviceMemory, data []byte) error
	ReadMemory(device vk.Device, memory vk.DeviceMemory, size vk.DeviceSize) ([]byte, error)
	FreeMemory(device vk.Device, memory vk.DeviceMemory)

	CreateImage(device vk.Device, req ImageRequest) (vk.Image, error)
	ImageMemoryRequirements(device vk.Device, image vk.Image) MemoryRequirements
	BindImageMemory(device vk.Device, image vk.Image, memory vk.DeviceMemory) error
	DestroyImage(device vk.Device, image vk.Image)
	CreateImageView(device vk.Device, req ViewRequest) (vk.ImageView, error)
	DestroyImageView(device vk.Device, view vk.ImageView)
	CreateSampler(device vk.Device, req SamplerRequest) (vk.Sampler, error)
	DestroySampler(device vk.Device, sampler vk.Sampler)

	CreateCommandPool(device vk.Device, family uint32) (vk.CommandPool, error)
	DestroyCommandPool(device vk.Device, pool vk.CommandPool)
	AllocateCommandBuffer(device vk.Device, pool vk.CommandPool) (vk.CommandBuffer, error)
	FreeCommandBuffer(device vk.Device, pool vk.CommandPool, cmd vk.CommandBuffer)
	BeginCommandBuffer(cmd vk.CommandBuffer, oneShot bool) error
	EndCommandBuffer(cmd vk.CommandBuffer) error
	ResetCommandBuffer(cmd vk.CommandBuffer) error

	CmdPipelineBarrier(cmd vk.CommandBuffer, barrier ImageBarrier)
	CmdCopyBuffer(cmd vk.CommandBuffer, src, dst vk.Buffer, size vk.DeviceSize)
	CmdCopyBufferToImage(cmd vk.CommandBuffer, src vk.Buffer, dst vk.Image, regions []ImageCopy)
	CmdCopyImageToBuffer(cmd vk.CommandBuffer, src vk.Image, dst vk.Buffer, regions []ImageCopy)
	CmdBeginRenderPass(cmd vk.CommandBuffer, begin RenderPassBegin)
	CmdEndRenderPass(cmd vk.CommandBuffer)
	CmdSetViewport(cmd vk.CommandBuffer, extent vk.Extent2D)
	CmdBindPipeline(cmd vk.CommandBuffer, pipeline vk.Pipeline)
	CmdBindVertexBuffer(cmd vk.CommandBuffer, buffer vk.Buffer)
	CmdBindIndexBuffer(cmd vk.CommandBuffer, buffer vk.Buffer)
	CmdPushConstants(cmd vk.CommandBuffer, layout vk.PipelineLayout, stages vk.ShaderStageFlags, data []byte)
	CmdDrawIndexed(cmd vk.CommandBuffer, indexCount uint32)

	CreateFence(device vk.Device, signaled bool) (vk.Fence, error)
	WaitForFence(device vk.Device, fence vk.Fence, timeout uint64) error
	ResetFence(device vk.Device, fence vk.Fence) error
	FenceSignaled(device vk.Device, fence vk.Fence) (bool, error)
	DestroyFence(device vk.Device, fence vk.Fence)
	CreateSemaphore(device vk.Device) (vk.Semaphore, error)
	DestroySemaphore(device vk.Device, semaphore vk.Semaphore)
	QueueSubmit(queue vk.Queue, submit Submission, fence vk.Fence) error

	CreateSwapchain(device vk.Device, req SwapchainRequest) (vk.Swapchain, error)
	SwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, error)
	AcquireNextImage(device vk.Device, swapchain vk.Swapchain, signal vk.Semaphore) (uint32, error)
	QueuePresent(queue vk.Queue, swapchain vk.Swapchain, index uint32, wait vk.Semaphore) error
	DestroySwapchain(device vk.Device, swapchain vk.Swapchain)
	CreateRenderPass(device vk.Device, color, depth vk.Format) (vk.RenderPass, error)
	DestroyRenderPass(device vk.Device, pass vk.RenderPass)
	CreateFramebuffer(device vk.Device, pass vk.RenderPass, views []vk.ImageView, extent vk.Extent2D) (vk.Framebuffer, error)
	DestroyFramebuffer(device vk.Device, framebuffer vk.Framebuffer)
}

type InstanceRequest struct {
	AppName     string
	Extensions  []string
	Layers      []string
	Portability bool
}

// PhysicalDeviceProperties is the part of the device properties and limits
// the core reads.
type PhysicalDeviceProperties struct {
	Name                 string
	Type                 vk.PhysicalDeviceType
	APIVersion           uint32
	MaxSamplerAnisotropy float32
	MaxPushConstantsSize uint32
}

type DeviceFeatures struct {
	SamplerAnisotropy bool
}

type MemoryType struct {
	Flags vk.MemoryPropertyFlags
	Heap  uint32
}

type MemoryRequirements struct {
	Size      vk.DeviceSize
	Alignment vk.DeviceSize
	TypeBits  uint32
}

type SurfaceCapabilities struct {
	MinImageCount           uint32
	MaxImageCount           uint32
	CurrentExtent           vk.Extent2D
	MinExtent               vk.Extent2D
	MaxExtent               vk.Extent2D
	CurrentTransform        vk.SurfaceTransformFlagBits
	SupportedTransforms     vk.SurfaceTransformFlags
	SupportedCompositeAlpha vk.CompositeAlphaFlags
}

type DeviceRequest struct {
	Families   []uint32
	Extensions []string
	Layers     []string
	Features   DeviceFeatures
}

type ImageRequest struct {
	Width, Height uint32
	Format        vk.Format
	Tiling        vk.ImageTiling
	Usage         vk.ImageUsageFlags
	Layers        uint32
	Flags         vk.ImageCreateFlags
}

type ViewRequest struct {
	Image  vk.Image
	Type   vk.ImageViewType
	Format vk.Format
	Aspect vk.ImageAspectFlags
	Layers uint32
}

type SamplerRequest struct {
	AddressMode   vk.SamplerAddressMode
	MaxAnisotropy float32
}

//ImageBarrier is a single image memory barrier over every mip level and array layer
type ImageBarrier struct {
	Image     vk.Image
	OldLayout vk.ImageLayout
	NewLayout vk.ImageLayout
	SrcAccess vk.AccessFlags
	DstAccess vk.AccessFlags
	SrcStage  vk.PipelineStageFlags
	DstStage  vk.PipelineStageFlags
	Aspect    vk.ImageAspectFlags
	Levels    uint32
	Layers    uint32
}

// ImageCopy is one buffer <-> image region covering a single array layer.
type ImageCopy struct {
	BufferOffset vk.DeviceSize
	Layer        uint32
	Width        uint32
	Height       uint32
	Aspect       vk.ImageAspectFlags
}

type Submission struct {
	Cmd       vk.CommandBuffer
	WaitStage vk.PipelineStageFlags
	Wait      vk.Semaphore
	Signal    vk.Semaphore
}

type SwapchainRequest struct {
	Surface     vk.Surface
	MinImages   uint32
	Format      vk.SurfaceFormat
	Extent      vk.Extent2D
	PresentMode vk.PresentMode
	Transform   vk.SurfaceTransformFlagBits
	Alpha       vk.CompositeAlphaFlagBits
	Families    []uint32
	Old         vk.Swapchain
}

type RenderPassBegin struct {
	RenderPass  vk.RenderPass
	Framebuffer vk.Framebuffer
	Extent      vk.Extent2D
	ClearColor  [4]float32
}
