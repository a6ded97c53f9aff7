package vkcore

import (
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

const engineName = "vkcore"

// instanceCreateEnumeratePortability is VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
const instanceCreateEnumeratePortability = 0x00000001

// VulkanDriver implements Driver on the Vulkan loader. vk.Init or
// vk.SetGetInstanceProcAddr must have run before the first call.
type VulkanDriver struct{}

func NewVulkanDriver() *VulkanDriver {
	return &VulkanDriver{}
}

func (d *VulkanDriver) CreateInstance(req InstanceRequest) (vk.Instance, error) {
	var flags vk.InstanceCreateFlags
	if req.Portability {
		flags = vk.InstanceCreateFlags(instanceCreateEnumeratePortability)
	}
	var instance vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		Flags: flags,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         uint32(vk.MakeVersion(1, 1, 0)),
			ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
			PApplicationName:   safeString(req.AppName),
			PEngineName:        safeString(engineName),
		},
		EnabledExtensionCount:   uint32(len(req.Extensions)),
		PpEnabledExtensionNames: safeStrings(req.Extensions),
		EnabledLayerCount:       uint32(len(req.Layers)),
		PpEnabledLayerNames:     safeStrings(req.Layers),
	}, nil, &instance)
	if isError(ret) {
		return nil, NewError(ret)
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, errors.Wrap(err, "load instance functions")
	}
	return instance, nil
}

func (d *VulkanDriver) DestroyInstance(instance vk.Instance) {
	vk.DestroyInstance(instance, nil)
}

// InstanceExtensions gets a list of instance extensions available on the platform.
func (d *VulkanDriver) InstanceExtensions() (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateInstanceExtensionProperties("", &count, nil)
	if isError(ret) {
		return nil, NewError(ret)
	}
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateInstanceExtensionProperties("", &count, list)
	if isError(ret) {
		return nil, NewError(ret)
	}
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, err
}

// InstanceLayers gets a list of validation layers available on the platform.
func (d *VulkanDriver) InstanceLayers() (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateInstanceLayerProperties(&count, nil)
	if isError(ret) {
		return nil, NewError(ret)
	}
	list := make([]vk.LayerProperties, count)
	ret = vk.EnumerateInstanceLayerProperties(&count, list)
	if isError(ret) {
		return nil, NewError(ret)
	}
	for _, layer := range list {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, err
}

func (d *VulkanDriver) EnumeratePhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	var count uint32
	ret := vk.EnumeratePhysicalDevices(instance, &count, nil)
	if isError(ret) {
		return nil, NewError(ret)
	}
	if count == 0 {
		return nil, nil
	}
	gpus := make([]vk.PhysicalDevice, count)
	ret = vk.EnumeratePhysicalDevices(instance, &count, gpus)
	if isError(ret) {
		return nil, NewError(ret)
	}
	return gpus[:count], nil
}

func (d *VulkanDriver) PhysicalDeviceProperties(gpu vk.PhysicalDevice) PhysicalDeviceProperties {
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(gpu, &props)
	props.Deref()
	props.Limits.Deref()
	return PhysicalDeviceProperties{
		Name:                 vk.ToString(props.DeviceName[:]),
		Type:                 props.DeviceType,
		APIVersion:           props.ApiVersion,
		MaxSamplerAnisotropy: props.Limits.MaxSamplerAnisotropy,
		MaxPushConstantsSize: props.Limits.MaxPushConstantsSize,
	}
}

func (d *VulkanDriver) PhysicalDeviceFeatures(gpu vk.PhysicalDevice) DeviceFeatures {
	var features vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(gpu, &features)
	features.Deref()
	return DeviceFeatures{SamplerAnisotropy: features.SamplerAnisotropy == vk.True}
}

func (d *VulkanDriver) MemoryTypes(gpu vk.PhysicalDevice) []MemoryType {
	var props vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(gpu, &props)
	props.Deref()
	types := make([]MemoryType, props.MemoryTypeCount)
	for i := range types {
		props.MemoryTypes[i].Deref()
		types[i] = MemoryType{
			Flags: props.MemoryTypes[i].PropertyFlags,
			Heap:  props.MemoryTypes[i].HeapIndex,
		}
	}
	return types
}

func (d *VulkanDriver) QueueFamilies(gpu vk.PhysicalDevice) []vk.QueueFlags {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, nil)
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, props)
	flags := make([]vk.QueueFlags, count)
	for i := range props {
		props[i].Deref()
		flags[i] = props[i].QueueFlags
	}
	return flags
}

// DeviceExtensions gets a list of extensions available on the provided physical device.
func (d *VulkanDriver) DeviceExtensions(gpu vk.PhysicalDevice) (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateDeviceExtensionProperties(gpu, "", &count, nil)
	if isError(ret) {
		return nil, NewError(ret)
	}
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateDeviceExtensionProperties(gpu, "", &count, list)
	if isError(ret) {
		return nil, NewError(ret)
	}
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, err
}

func (d *VulkanDriver) SurfaceSupport(gpu vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, error) {
	var supported vk.Bool32
	ret := vk.GetPhysicalDeviceSurfaceSupport(gpu, family, surface, &supported)
	if isError(ret) {
		return false, NewError(ret)
	}
	return supported.B(), nil
}

func (d *VulkanDriver) SurfaceCapabilities(gpu vk.PhysicalDevice, surface vk.Surface) (SurfaceCapabilities, error) {
	var caps vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(gpu, surface, &caps)
	if isError(ret) {
		return SurfaceCapabilities{}, NewError(ret)
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	return SurfaceCapabilities{
		MinImageCount:           caps.MinImageCount,
		MaxImageCount:           caps.MaxImageCount,
		CurrentExtent:           caps.CurrentExtent,
		MinExtent:               caps.MinImageExtent,
		MaxExtent:               caps.MaxImageExtent,
		CurrentTransform:        caps.CurrentTransform,
		SupportedTransforms:     caps.SupportedTransforms,
		SupportedCompositeAlpha: caps.SupportedCompositeAlpha,
	}, nil
}

func (d *VulkanDriver) SurfaceFormats(gpu vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, error) {
	var count uint32
	ret := vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &count, nil)
	if isError(ret) {
		return nil, NewError(ret)
	}
	formats := make([]vk.SurfaceFormat, count)
	ret = vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &count, formats)
	if isError(ret) {
		return nil, NewError(ret)
	}
	for i := range formats {
		formats[i].Deref()
	}
	return formats, nil
}

func (d *VulkanDriver) SurfacePresentModes(gpu vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, error) {
	var count uint32
	ret := vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &count, nil)
	if isError(ret) {
		return nil, NewError(ret)
	}
	modes := make([]vk.PresentMode, count)
	ret = vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &count, modes)
	if isError(ret) {
		return nil, NewError(ret)
	}
	return modes, nil
}

func (d *VulkanDriver) DestroySurface(instance vk.Instance, surface vk.Surface) {
	vk.DestroySurface(instance, surface, nil)
}

func (d *VulkanDriver) CreateDevice(gpu vk.PhysicalDevice, req DeviceRequest) (vk.Device, error) {
	queueInfos := make([]vk.DeviceQueueCreateInfo, 0, len(req.Families))
	for _, family := range req.Families {
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}
	var features vk.PhysicalDeviceFeatures
	if req.Features.SamplerAnisotropy {
		features.SamplerAnisotropy = vk.True
	}
	var device vk.Device
	ret := vk.CreateDevice(gpu, &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(req.Extensions)),
		PpEnabledExtensionNames: safeStrings(req.Extensions),
		EnabledLayerCount:       uint32(len(req.Layers)),
		PpEnabledLayerNames:     safeStrings(req.Layers),
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{features},
	}, nil, &device)
	if isError(ret) {
		return nil, NewError(ret)
	}
	return device, nil
}

func (d *VulkanDriver) DeviceQueue(device vk.Device, family uint32) vk.Queue {
	var queue vk.Queue
	vk.GetDeviceQueue(device, family, 0, &queue)
	return queue
}

func (d *VulkanDriver) DeviceWaitIdle(device vk.Device) error {
	return NewError(vk.DeviceWaitIdle(device))
}

func (d *VulkanDriver) DestroyDevice(device vk.Device) {
	vk.DestroyDevice(device, nil)
}

func (d *VulkanDriver) CreateBuffer(device vk.Device, size vk.DeviceSize, usage vk.BufferUsageFlags) (vk.Buffer, error) {
	var buffer vk.Buffer
	ret := vk.CreateBuffer(device, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}, nil, &buffer)
	if isError(ret) {
		return nil, NewError(ret)
	}
	return buffer, nil
}

func (d *VulkanDriver) BufferMemoryRequirements(device vk.Device, buffer vk.Buffer) MemoryRequirements {
	var reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(device, buffer, &reqs)
	reqs.Deref()
	return MemoryRequirements{Size: reqs.Size, Alignment: reqs.Alignment, TypeBits: reqs.MemoryTypeBits}
}

func (d *VulkanDriver) BindBufferMemory(device vk.Device, buffer vk.Buffer, memory vk.DeviceMemory) error {
	return NewError(vk.BindBufferMemory(device, buffer, memory, 0))
}

func (d *VulkanDriver) DestroyBuffer(device vk.Device, buffer vk.Buffer) {
	vk.DestroyBuffer(device, buffer, nil)
}

func (d *VulkanDriver) AllocateMemory(device vk.Device, size vk.DeviceSize, typeIndex uint32) (vk.DeviceMemory, error) {
	var memory vk.DeviceMemory
	ret := vk.AllocateMemory(device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  size,
		MemoryTypeIndex: typeIndex,
	}, nil, &memory)
	if isError(ret) {
		return nil, NewError(ret)
	}
	return memory, nil
}

// WriteMemory maps the first len(data) bytes of memory and copies data in.
func (d *VulkanDriver) WriteMemory(device vk.Device, memory vk.DeviceMemory, data []byte) error {
	var ptr unsafe.Pointer
	ret := vk.MapMemory(device, memory, 0, vk.DeviceSize(len(data)), 0, &ptr)
	if isError(ret) {
		return NewError(ret)
	}
	n := vk.Memcopy(ptr, data)
	vk.UnmapMemory(device, memory)
	if n != len(data) {
		return errors.Errorf("failed to copy data, %d != %d", n, len(data))
	}
	return nil
}

func (d *VulkanDriver) ReadMemory(device vk.Device, memory vk.DeviceMemory, size vk.DeviceSize) ([]byte, error) {
	var ptr unsafe.Pointer
	ret := vk.MapMemory(device, memory, 0, size, 0, &ptr)
	if isError(ret) {
		return nil, NewError(ret)
	}
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(ptr), int(size)))
	vk.UnmapMemory(device, memory)
	return out, nil
}

func (d *VulkanDriver) FreeMemory(device vk.Device, memory vk.DeviceMemory) {
	vk.FreeMemory(device, memory, nil)
}

func (d *VulkanDriver) CreateImage(device vk.Device, req ImageRequest) (vk.Image, error) {
	var image vk.Image
	ret := vk.CreateImage(device, &vk.ImageCreateInfo{
		SType:         vk.StructureTypeImageCreateInfo,
		Flags:         req.Flags,
		ImageType:     vk.ImageType2d,
		Format:        req.Format,
		Extent:        vk.Extent3D{Width: req.Width, Height: req.Height, Depth: 1},
		MipLevels:     1,
		ArrayLayers:   req.Layers,
		Samples:       vk.SampleCount1Bit,
		Tiling:        req.Tiling,
		Usage:         req.Usage,
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil, &image)
	if isError(ret) {
		return nil, NewError(ret)
	}
	return image, nil
}

func (d *VulkanDriver) ImageMemoryRequirements(device vk.Device, image vk.Image) MemoryRequirements {
	var reqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(device, image, &reqs)
	reqs.Deref()
	return MemoryRequirements{Size: reqs.Size, Alignment: reqs.Alignment, TypeBits: reqs.MemoryTypeBits}
}

func (d *VulkanDriver) BindImageMemory(device vk.Device, image vk.Image, memory vk.DeviceMemory) error {
	return NewError(vk.BindImageMemory(device, image, memory, 0))
}

func (d *VulkanDriver) DestroyImage(device vk.Device, image vk.Image) {
	vk.DestroyImage(device, image, nil)
}

func (d *VulkanDriver) CreateImageView(device vk.Device, req ViewRequest) (vk.ImageView, error) {
	var view vk.ImageView
	ret := vk.CreateImageView(device, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    req.Image,
		ViewType: req.Type,
		Format:   req.Format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleR,
			G: vk.ComponentSwizzleG,
			B: vk.ComponentSwizzleB,
			A: vk.ComponentSwizzleA,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: req.Aspect,
			LevelCount: 1,
			LayerCount: req.Layers,
		},
	}, nil, &view)
	if isError(ret) {
		return nil, NewError(ret)
	}
	return view, nil
}

func (d *VulkanDriver) DestroyImageView(device vk.Device, view vk.ImageView) {
	vk.DestroyImageView(device, view, nil)
}

func (d *VulkanDriver) CreateSampler(device vk.Device, req SamplerRequest) (vk.Sampler, error) {
	var sampler vk.Sampler
	ret := vk.CreateSampler(device, &vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		AddressModeU:            req.AddressMode,
		AddressModeV:            req.AddressMode,
		AddressModeW:            req.AddressMode,
		AnisotropyEnable:        vk.True,
		MaxAnisotropy:           req.MaxAnisotropy,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		BorderColor:             vk.BorderColorIntOpaqueWhite,
		UnnormalizedCoordinates: vk.False,
	}, nil, &sampler)
	if isError(ret) {
		return nil, NewError(ret)
	}
	return sampler, nil
}

func (d *VulkanDriver) DestroySampler(device vk.Device, sampler vk.Sampler) {
	vk.DestroySampler(device, sampler, nil)
}

func (d *VulkanDriver) CreateCommandPool(device vk.Device, family uint32) (vk.CommandPool, error) {
	var pool vk.CommandPool
	ret := vk.CreateCommandPool(device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: family,
		// ResetCommandBufferBit allows command buffers to be reset individually.
		Flags: vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}, nil, &pool)
	if isError(ret) {
		return nil, NewError(ret)
	}
	return pool, nil
}

func (d *VulkanDriver) DestroyCommandPool(device vk.Device, pool vk.CommandPool) {
	vk.DestroyCommandPool(device, pool, nil)
}

func (d *VulkanDriver) AllocateCommandBuffer(device vk.Device, pool vk.CommandPool) (vk.CommandBuffer, error) {
	buffers := make([]vk.CommandBuffer, 1)
	ret := vk.AllocateCommandBuffers(device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}, buffers)
	if isError(ret) {
		return nil, NewError(ret)
	}
	return buffers[0], nil
}

func (d *VulkanDriver) FreeCommandBuffer(device vk.Device, pool vk.CommandPool, cmd vk.CommandBuffer) {
	vk.FreeCommandBuffers(device, pool, 1, []vk.CommandBuffer{cmd})
}

func (d *VulkanDriver) BeginCommandBuffer(cmd vk.CommandBuffer, oneShot bool) error {
	var flags vk.CommandBufferUsageFlags
	if oneShot {
		flags = vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)
	}
	return NewError(vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: flags,
	}))
}

func (d *VulkanDriver) EndCommandBuffer(cmd vk.CommandBuffer) error {
	return NewError(vk.EndCommandBuffer(cmd))
}

func (d *VulkanDriver) ResetCommandBuffer(cmd vk.CommandBuffer) error {
	return NewError(vk.ResetCommandBuffer(cmd,
		vk.CommandBufferResetFlags(vk.CommandBufferResetReleaseResourcesBit)))
}

func (d *VulkanDriver) CmdPipelineBarrier(cmd vk.CommandBuffer, b ImageBarrier) {
	vk.CmdPipelineBarrier(cmd, b.SrcStage, b.DstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       b.SrcAccess,
		DstAccessMask:       b.DstAccess,
		OldLayout:           b.OldLayout,
		NewLayout:           b.NewLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               b.Image,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: b.Aspect,
			LevelCount: b.Levels,
			LayerCount: b.Layers,
		},
	}})
}

func (d *VulkanDriver) CmdCopyBuffer(cmd vk.CommandBuffer, src, dst vk.Buffer, size vk.DeviceSize) {
	vk.CmdCopyBuffer(cmd, src, dst, 1, []vk.BufferCopy{{Size: size}})
}

func bufferImageCopies(regions []ImageCopy) []vk.BufferImageCopy {
	copies := make([]vk.BufferImageCopy, len(regions))
	for i, r := range regions {
		copies[i] = vk.BufferImageCopy{
			BufferOffset: r.BufferOffset,
			ImageSubresource: vk.ImageSubresourceLayers{
				AspectMask:     r.Aspect,
				BaseArrayLayer: r.Layer,
				LayerCount:     1,
			},
			ImageExtent: vk.Extent3D{Width: r.Width, Height: r.Height, Depth: 1},
		}
	}
	return copies
}

func (d *VulkanDriver) CmdCopyBufferToImage(cmd vk.CommandBuffer, src vk.Buffer, dst vk.Image, regions []ImageCopy) {
	vk.CmdCopyBufferToImage(cmd, src, dst, vk.ImageLayoutTransferDstOptimal,
		uint32(len(regions)), bufferImageCopies(regions))
}

func (d *VulkanDriver) CmdCopyImageToBuffer(cmd vk.CommandBuffer, src vk.Image, dst vk.Buffer, regions []ImageCopy) {
	vk.CmdCopyImageToBuffer(cmd, src, vk.ImageLayoutTransferSrcOptimal, dst,
		uint32(len(regions)), bufferImageCopies(regions))
}

func (d *VulkanDriver) CmdBeginRenderPass(cmd vk.CommandBuffer, begin RenderPassBegin) {
	clearValues := []vk.ClearValue{
		vk.NewClearValue(begin.ClearColor[:]),
		vk.NewClearDepthStencil(1.0, 0),
	}
	vk.CmdBeginRenderPass(cmd, &vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  begin.RenderPass,
		Framebuffer: begin.Framebuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{},
			Extent: begin.Extent,
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}, vk.SubpassContentsInline)
}

func (d *VulkanDriver) CmdEndRenderPass(cmd vk.CommandBuffer) {
	vk.CmdEndRenderPass(cmd)
}

// CmdSetViewport sets the viewport and scissor to cover extent.
func (d *VulkanDriver) CmdSetViewport(cmd vk.CommandBuffer, extent vk.Extent2D) {
	vk.CmdSetViewport(cmd, 0, 1, []vk.Viewport{{
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}})
	vk.CmdSetScissor(cmd, 0, 1, []vk.Rect2D{{
		Offset: vk.Offset2D{},
		Extent: extent,
	}})
}

func (d *VulkanDriver) CmdBindPipeline(cmd vk.CommandBuffer, pipeline vk.Pipeline) {
	vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, pipeline)
}

func (d *VulkanDriver) CmdBindVertexBuffer(cmd vk.CommandBuffer, buffer vk.Buffer) {
	vk.CmdBindVertexBuffers(cmd, 0, 1, []vk.Buffer{buffer}, []vk.DeviceSize{0})
}

func (d *VulkanDriver) CmdBindIndexBuffer(cmd vk.CommandBuffer, buffer vk.Buffer) {
	vk.CmdBindIndexBuffer(cmd, buffer, 0, vk.IndexTypeUint32)
}

func (d *VulkanDriver) CmdPushConstants(cmd vk.CommandBuffer, layout vk.PipelineLayout, stages vk.ShaderStageFlags, data []byte) {
	if len(data) == 0 {
		return
	}
	vk.CmdPushConstants(cmd, layout, stages, 0, uint32(len(data)), unsafe.Pointer(&data[0]))
}

func (d *VulkanDriver) CmdDrawIndexed(cmd vk.CommandBuffer, indexCount uint32) {
	vk.CmdDrawIndexed(cmd, indexCount, 1, 0, 0, 0)
}

func (d *VulkanDriver) CreateFence(device vk.Device, signaled bool) (vk.Fence, error) {
	var flags vk.FenceCreateFlags
	if signaled {
		flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var fence vk.Fence
	ret := vk.CreateFence(device, &vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: flags,
	}, nil, &fence)
	if isError(ret) {
		return vk.NullFence, NewError(ret)
	}
	return fence, nil
}

func (d *VulkanDriver) WaitForFence(device vk.Device, fence vk.Fence, timeout uint64) error {
	return NewError(vk.WaitForFences(device, 1, []vk.Fence{fence}, vk.True, timeout))
}

func (d *VulkanDriver) ResetFence(device vk.Device, fence vk.Fence) error {
	return NewError(vk.ResetFences(device, 1, []vk.Fence{fence}))
}

func (d *VulkanDriver) FenceSignaled(device vk.Device, fence vk.Fence) (bool, error) {
	ret := vk.GetFenceStatus(device, fence)
	switch ret {
	case vk.Success:
		return true, nil
	case vk.NotReady:
		return false, nil
	}
	return false, NewError(ret)
}

func (d *VulkanDriver) DestroyFence(device vk.Device, fence vk.Fence) {
	vk.DestroyFence(device, fence, nil)
}

func (d *VulkanDriver) CreateSemaphore(device vk.Device) (vk.Semaphore, error) {
	var semaphore vk.Semaphore
	ret := vk.CreateSemaphore(device, &vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}, nil, &semaphore)
	if isError(ret) {
		return vk.NullSemaphore, NewError(ret)
	}
	return semaphore, nil
}

func (d *VulkanDriver) DestroySemaphore(device vk.Device, semaphore vk.Semaphore) {
	vk.DestroySemaphore(device, semaphore, nil)
}

func (d *VulkanDriver) QueueSubmit(queue vk.Queue, s Submission, fence vk.Fence) error {
	info := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{s.Cmd},
	}
	if s.Wait != vk.NullSemaphore {
		info.WaitSemaphoreCount = 1
		info.PWaitSemaphores = []vk.Semaphore{s.Wait}
		info.PWaitDstStageMask = []vk.PipelineStageFlags{s.WaitStage}
	}
	if s.Signal != vk.NullSemaphore {
		info.SignalSemaphoreCount = 1
		info.PSignalSemaphores = []vk.Semaphore{s.Signal}
	}
	return NewError(vk.QueueSubmit(queue, 1, []vk.SubmitInfo{info}, fence))
}

func (d *VulkanDriver) CreateSwapchain(device vk.Device, req SwapchainRequest) (vk.Swapchain, error) {
	sharing := vk.SharingModeExclusive
	var families []uint32
	if len(req.Families) > 1 {
		sharing = vk.SharingModeConcurrent
		families = req.Families
	}
	var swapchain vk.Swapchain
	ret := vk.CreateSwapchain(device, &vk.SwapchainCreateInfo{
		SType:                 vk.StructureTypeSwapchainCreateInfo,
		Surface:               req.Surface,
		MinImageCount:         req.MinImages,
		ImageFormat:           req.Format.Format,
		ImageColorSpace:       req.Format.ColorSpace,
		ImageExtent:           req.Extent,
		ImageUsage:            vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:          req.Transform,
		CompositeAlpha:        req.Alpha,
		ImageArrayLayers:      1,
		ImageSharingMode:      sharing,
		QueueFamilyIndexCount: uint32(len(families)),
		PQueueFamilyIndices:   families,
		PresentMode:           req.PresentMode,
		OldSwapchain:          req.Old,
		Clipped:               vk.True,
	}, nil, &swapchain)
	if isError(ret) {
		return vk.NullSwapchain, NewError(ret)
	}
	return swapchain, nil
}

func (d *VulkanDriver) SwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, error) {
	var count uint32
	ret := vk.GetSwapchainImages(device, swapchain, &count, nil)
	if isError(ret) {
		return nil, NewError(ret)
	}
	images := make([]vk.Image, count)
	ret = vk.GetSwapchainImages(device, swapchain, &count, images)
	if isError(ret) {
		return nil, NewError(ret)
	}
	return images, nil
}

// AcquireNextImage returns ErrOutOfDate when the swapchain no longer matches
// the surface. A suboptimal acquire still signals and is reported as success.
func (d *VulkanDriver) AcquireNextImage(device vk.Device, swapchain vk.Swapchain, signal vk.Semaphore) (uint32, error) {
	var index uint32
	ret := vk.AcquireNextImage(device, swapchain, vk.MaxUint64, signal, vk.NullFence, &index)
	switch ret {
	case vk.Success, vk.Suboptimal:
		return index, nil
	case vk.ErrorOutOfDate:
		return 0, ErrOutOfDate
	}
	return 0, NewError(ret)
}

func (d *VulkanDriver) QueuePresent(queue vk.Queue, swapchain vk.Swapchain, index uint32, wait vk.Semaphore) error {
	info := vk.PresentInfo{
		SType:          vk.StructureTypePresentInfo,
		SwapchainCount: 1,
		PSwapchains:    []vk.Swapchain{swapchain},
		PImageIndices:  []uint32{index},
	}
	if wait != vk.NullSemaphore {
		info.WaitSemaphoreCount = 1
		info.PWaitSemaphores = []vk.Semaphore{wait}
	}
	switch ret := vk.QueuePresent(queue, &info); ret {
	case vk.Success:
		return nil
	case vk.ErrorOutOfDate, vk.Suboptimal:
		return ErrOutOfDate
	default:
		return NewError(ret)
	}
}

func (d *VulkanDriver) DestroySwapchain(device vk.Device, swapchain vk.Swapchain) {
	vk.DestroySwapchain(device, swapchain, nil)
}

func safeString(s string) string {
	if len(s) == 0 || s[len(s)-1] != '\x00' {
		return s + "\x00"
	}
	return s
}

func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = safeString(list[i])
	}
	return out
}
