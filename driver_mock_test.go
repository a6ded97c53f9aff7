package vkcore

import (
	"bytes"
	"fmt"
	"testing"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

var errInjected = errors.New("injected failure")

// Fake handles are addresses counted up from a low page the Go heap never
// uses. Handle types point at incomplete C structs, so reflection refuses
// anything that lives on the Go heap.
const handleBase = 0x10000

var handleCount uintptr

func newHandle() unsafe.Pointer {
	handleCount++
	return unsafe.Add(unsafe.Pointer(nil), handleBase+handleCount*8)
}

type mockGPU struct {
	name          string
	kind          vk.PhysicalDeviceType
	families      []vk.QueueFlags
	present       map[uint32]bool
	extensions    []string
	formats       []vk.SurfaceFormat
	modes         []vk.PresentMode
	caps          SurfaceCapabilities
	anisotropy    bool
	maxAnisotropy float32
	memoryTypes   []MemoryType
}

func defaultMemoryTypes() []MemoryType {
	return []MemoryType{
		{Flags: vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)},
		{Flags: vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit), Heap: 1},
	}
}

func newMockGPU(name string, kind vk.PhysicalDeviceType) *mockGPU {
	return &mockGPU{
		name:       name,
		kind:       kind,
		families:   []vk.QueueFlags{vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueTransferBit)},
		present:    map[uint32]bool{0: true},
		extensions: []string{SwapchainExtension},
		formats: []vk.SurfaceFormat{
			{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		},
		modes: []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox},
		caps: SurfaceCapabilities{
			MinImageCount:           2,
			MaxImageCount:           8,
			CurrentExtent:           vk.Extent2D{Width: 800, Height: 600},
			MinExtent:               vk.Extent2D{Width: 1, Height: 1},
			MaxExtent:               vk.Extent2D{Width: 4096, Height: 4096},
			CurrentTransform:        vk.SurfaceTransformIdentityBit,
			SupportedTransforms:     vk.SurfaceTransformFlags(vk.SurfaceTransformIdentityBit),
			SupportedCompositeAlpha: vk.CompositeAlphaFlags(vk.CompositeAlphaOpaqueBit),
		},
		anisotropy:    true,
		maxAnisotropy: 16,
		memoryTypes:   defaultMemoryTypes(),
	}
}

type mockMemory struct {
	data        []byte
	hostVisible bool
}

type mockBuffer struct {
	size   vk.DeviceSize
	usage  vk.BufferUsageFlags
	memory vk.DeviceMemory
}

type mockImage struct {
	req    ImageRequest
	memory vk.DeviceMemory
	layout vk.ImageLayout
}

type mockCmd struct {
	recording bool
	oneShot   bool
	ops       []func()
}

type mockDraw struct {
	pipeline vk.Pipeline
	vertex   vk.Buffer
	index    vk.Buffer
	count    uint32
	push     []byte
}

//mockDriver is an in-memory Driver. Recorded commands run when they are submitted, so copies,
//layout changes, fences and semaphores behave the way the GPU would order them
type mockDriver struct {
	t *testing.T

	gpus        []*mockGPU
	gpuHandles  []vk.PhysicalDevice
	gpuByHandle map[vk.PhysicalDevice]*mockGPU
	selected    *mockGPU

	instanceExtensions []string
	instanceLayers     []string
	instanceReq        InstanceRequest
	deviceReq          DeviceRequest
	queues             map[uint32]vk.Queue

	memory     map[vk.DeviceMemory]*mockMemory
	buffers    map[vk.Buffer]*mockBuffer
	images     map[vk.Image]*mockImage
	views      map[vk.ImageView]ViewRequest
	samplers   map[vk.Sampler]SamplerRequest
	cmds       map[vk.CommandBuffer]*mockCmd
	fences     map[vk.Fence]bool
	semaphores map[vk.Semaphore]bool
	swapchains map[vk.Swapchain]SwapchainRequest
	swapImages map[vk.Swapchain][]vk.Image
	passes     map[vk.RenderPass]bool
	fbs        map[vk.Framebuffer][]vk.ImageView

	memoryTypeBits uint32
	fail           map[string]error
	calls          map[string]int
	destroyed      []string
	violations     []string
	barriers       []ImageBarrier
	submissions    []Submission
	renderPasses   []RenderPassBegin
	draws          []mockDraw
	presented      []uint32

	boundPipeline vk.Pipeline
	boundVertex   vk.Buffer
	boundIndex    vk.Buffer
	pushed        []byte

	acquireErrs []error
	presentErrs []error
	nextImage   uint32
}

var _ Driver = (*mockDriver)(nil)

func newMockDriver(t *testing.T, gpus ...*mockGPU) *mockDriver {
	if len(gpus) == 0 {
		gpus = []*mockGPU{newMockGPU("mock discrete", vk.PhysicalDeviceTypeDiscreteGpu)}
	}
	m := &mockDriver{
		t:                  t,
		gpus:               gpus,
		gpuByHandle:        make(map[vk.PhysicalDevice]*mockGPU),
		instanceExtensions: []string{"VK_KHR_surface", "VK_KHR_xcb_surface"},
		instanceLayers:     []string{"VK_LAYER_KHRONOS_validation"},
		queues:             make(map[uint32]vk.Queue),
		memory:             make(map[vk.DeviceMemory]*mockMemory),
		buffers:            make(map[vk.Buffer]*mockBuffer),
		images:             make(map[vk.Image]*mockImage),
		views:              make(map[vk.ImageView]ViewRequest),
		samplers:           make(map[vk.Sampler]SamplerRequest),
		cmds:               make(map[vk.CommandBuffer]*mockCmd),
		fences:             make(map[vk.Fence]bool),
		semaphores:         make(map[vk.Semaphore]bool),
		swapchains:         make(map[vk.Swapchain]SwapchainRequest),
		swapImages:         make(map[vk.Swapchain][]vk.Image),
		passes:             make(map[vk.RenderPass]bool),
		fbs:                make(map[vk.Framebuffer][]vk.ImageView),
		memoryTypeBits:     ^uint32(0),
		fail:               make(map[string]error),
		calls:              make(map[string]int),
	}
	for _, gpu := range gpus {
		h := vk.PhysicalDevice(newHandle())
		m.gpuHandles = append(m.gpuHandles, h)
		m.gpuByHandle[h] = gpu
	}
	return m
}

func (m *mockDriver) call(name string) error {
	m.calls[name]++
	return m.fail[name]
}

func (m *mockDriver) violation(format string, args ...interface{}) {
	m.violations = append(m.violations, fmt.Sprintf(format, args...))
}

func (m *mockDriver) gpu(h vk.PhysicalDevice) *mockGPU {
	gpu, ok := m.gpuByHandle[h]
	if !ok {
		m.t.Fatalf("unknown physical device %v", h)
	}
	return gpu
}

// live reports how many resources of every kind have not been destroyed.
func (m *mockDriver) live() map[string]int {
	return map[string]int{
		"memory":    len(m.memory),
		"buffer":    len(m.buffers),
		"image":     len(m.images),
		"view":      len(m.views),
		"sampler":   len(m.samplers),
		"cmd":       len(m.cmds),
		"fence":     len(m.fences),
		"semaphore": len(m.semaphores),
	}
}

func (m *mockDriver) requireNoLeaks(t *testing.T) {
	t.Helper()
	for kind, n := range m.live() {
		require.Zerof(t, n, "%d live %s objects", n, kind)
	}
}

func (m *mockDriver) requireNoViolations(t *testing.T) {
	t.Helper()
	require.Empty(t, m.violations)
}

func (m *mockDriver) imageData(h vk.Image) []byte {
	return m.memory[m.images[h].memory].data
}

func (m *mockDriver) bufferData(h vk.Buffer) []byte {
	b := m.buffers[h]
	return m.memory[b.memory].data[:b.size]
}

func (m *mockDriver) CreateInstance(req InstanceRequest) (vk.Instance, error) {
	if err := m.call("CreateInstance"); err != nil {
		return nil, err
	}
	m.instanceReq = req
	return vk.Instance(newHandle()), nil
}

func (m *mockDriver) DestroyInstance(instance vk.Instance) {
	m.call("DestroyInstance")
	m.destroyed = append(m.destroyed, "instance")
}

func (m *mockDriver) InstanceExtensions() ([]string, error) {
	return m.instanceExtensions, m.call("InstanceExtensions")
}

func (m *mockDriver) InstanceLayers() ([]string, error) {
	return m.instanceLayers, m.call("InstanceLayers")
}

func (m *mockDriver) EnumeratePhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	if err := m.call("EnumeratePhysicalDevices"); err != nil {
		return nil, err
	}
	return m.gpuHandles, nil
}

func (m *mockDriver) PhysicalDeviceProperties(h vk.PhysicalDevice) PhysicalDeviceProperties {
	m.call("PhysicalDeviceProperties")
	gpu := m.gpu(h)
	return PhysicalDeviceProperties{
		Name:                 gpu.name,
		Type:                 gpu.kind,
		APIVersion:           uint32(vk.MakeVersion(1, 2, 0)),
		MaxSamplerAnisotropy: gpu.maxAnisotropy,
		MaxPushConstantsSize: 128,
	}
}

func (m *mockDriver) PhysicalDeviceFeatures(h vk.PhysicalDevice) DeviceFeatures {
	m.call("PhysicalDeviceFeatures")
	return DeviceFeatures{SamplerAnisotropy: m.gpu(h).anisotropy}
}

func (m *mockDriver) MemoryTypes(h vk.PhysicalDevice) []MemoryType {
	m.call("MemoryTypes")
	return m.gpu(h).memoryTypes
}

func (m *mockDriver) QueueFamilies(h vk.PhysicalDevice) []vk.QueueFlags {
	m.call("QueueFamilies")
	return m.gpu(h).families
}

func (m *mockDriver) DeviceExtensions(h vk.PhysicalDevice) ([]string, error) {
	if err := m.call("DeviceExtensions"); err != nil {
		return nil, err
	}
	return m.gpu(h).extensions, nil
}

func (m *mockDriver) SurfaceSupport(h vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, error) {
	if err := m.call("SurfaceSupport"); err != nil {
		return false, err
	}
	return m.gpu(h).present[family], nil
}

func (m *mockDriver) SurfaceCapabilities(h vk.PhysicalDevice, surface vk.Surface) (SurfaceCapabilities, error) {
	if err := m.call("SurfaceCapabilities"); err != nil {
		return SurfaceCapabilities{}, err
	}
	return m.gpu(h).caps, nil
}

func (m *mockDriver) SurfaceFormats(h vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, error) {
	if err := m.call("SurfaceFormats"); err != nil {
		return nil, err
	}
	return m.gpu(h).formats, nil
}

func (m *mockDriver) SurfacePresentModes(h vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, error) {
	if err := m.call("SurfacePresentModes"); err != nil {
		return nil, err
	}
	return m.gpu(h).modes, nil
}

func (m *mockDriver) DestroySurface(instance vk.Instance, surface vk.Surface) {
	m.call("DestroySurface")
	m.destroyed = append(m.destroyed, "surface")
}

func (m *mockDriver) CreateDevice(h vk.PhysicalDevice, req DeviceRequest) (vk.Device, error) {
	if err := m.call("CreateDevice"); err != nil {
		return nil, err
	}
	m.deviceReq = req
	m.selected = m.gpu(h)
	return vk.Device(newHandle()), nil
}

func (m *mockDriver) DeviceQueue(device vk.Device, family uint32) vk.Queue {
	m.call("DeviceQueue")
	if q, ok := m.queues[family]; ok {
		return q
	}
	q := vk.Queue(newHandle())
	m.queues[family] = q
	return q
}

func (m *mockDriver) DeviceWaitIdle(device vk.Device) error {
	return m.call("DeviceWaitIdle")
}

func (m *mockDriver) DestroyDevice(device vk.Device) {
	m.call("DestroyDevice")
	m.destroyed = append(m.destroyed, "device")
}

func (m *mockDriver) CreateBuffer(device vk.Device, size vk.DeviceSize, usage vk.BufferUsageFlags) (vk.Buffer, error) {
	if err := m.call("CreateBuffer"); err != nil {
		return nil, err
	}
	h := vk.Buffer(newHandle())
	m.buffers[h] = &mockBuffer{size: size, usage: usage}
	return h, nil
}

func (m *mockDriver) BufferMemoryRequirements(device vk.Device, buffer vk.Buffer) MemoryRequirements {
	m.call("BufferMemoryRequirements")
	return MemoryRequirements{Size: m.buffers[buffer].size, Alignment: 16, TypeBits: m.memoryTypeBits}
}

func (m *mockDriver) BindBufferMemory(device vk.Device, buffer vk.Buffer, memory vk.DeviceMemory) error {
	if err := m.call("BindBufferMemory"); err != nil {
		return err
	}
	m.buffers[buffer].memory = memory
	return nil
}

func (m *mockDriver) DestroyBuffer(device vk.Device, buffer vk.Buffer) {
	m.call("DestroyBuffer")
	if _, ok := m.buffers[buffer]; !ok {
		m.violation("destroy of unknown buffer")
	}
	delete(m.buffers, buffer)
	m.destroyed = append(m.destroyed, "buffer")
}

func (m *mockDriver) AllocateMemory(device vk.Device, size vk.DeviceSize, typeIndex uint32) (vk.DeviceMemory, error) {
	if err := m.call("AllocateMemory"); err != nil {
		return nil, err
	}
	flags := m.selected.memoryTypes[typeIndex].Flags
	h := vk.DeviceMemory(newHandle())
	m.memory[h] = &mockMemory{
		data:        make([]byte, size),
		hostVisible: flags&vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit) != 0,
	}
	return h, nil
}

func (m *mockDriver) WriteMemory(device vk.Device, memory vk.DeviceMemory, data []byte) error {
	if err := m.call("WriteMemory"); err != nil {
		return err
	}
	mem := m.memory[memory]
	if !mem.hostVisible {
		return errors.New("memory is not host visible")
	}
	copy(mem.data, data)
	return nil
}

func (m *mockDriver) ReadMemory(device vk.Device, memory vk.DeviceMemory, size vk.DeviceSize) ([]byte, error) {
	if err := m.call("ReadMemory"); err != nil {
		return nil, err
	}
	mem := m.memory[memory]
	if !mem.hostVisible {
		return nil, errors.New("memory is not host visible")
	}
	return append([]byte(nil), mem.data[:size]...), nil
}

func (m *mockDriver) FreeMemory(device vk.Device, memory vk.DeviceMemory) {
	m.call("FreeMemory")
	if _, ok := m.memory[memory]; !ok {
		m.violation("free of unknown memory")
	}
	delete(m.memory, memory)
	m.destroyed = append(m.destroyed, "memory")
}

func (m *mockDriver) CreateImage(device vk.Device, req ImageRequest) (vk.Image, error) {
	if err := m.call("CreateImage"); err != nil {
		return nil, err
	}
	h := vk.Image(newHandle())
	m.images[h] = &mockImage{req: req, layout: vk.ImageLayoutUndefined}
	return h, nil
}

func (m *mockDriver) ImageMemoryRequirements(device vk.Device, image vk.Image) MemoryRequirements {
	m.call("ImageMemoryRequirements")
	req := m.images[image].req
	return MemoryRequirements{
		Size:      vk.DeviceSize(req.Width * req.Height * 4 * req.Layers),
		Alignment: 256,
		TypeBits:  m.memoryTypeBits,
	}
}

func (m *mockDriver) BindImageMemory(device vk.Device, image vk.Image, memory vk.DeviceMemory) error {
	if err := m.call("BindImageMemory"); err != nil {
		return err
	}
	m.images[image].memory = memory
	return nil
}

func (m *mockDriver) DestroyImage(device vk.Device, image vk.Image) {
	m.call("DestroyImage")
	if _, ok := m.images[image]; !ok {
		m.violation("destroy of unknown image")
	}
	delete(m.images, image)
	m.destroyed = append(m.destroyed, "image")
}

func (m *mockDriver) CreateImageView(device vk.Device, req ViewRequest) (vk.ImageView, error) {
	if err := m.call("CreateImageView"); err != nil {
		return nil, err
	}
	h := vk.ImageView(newHandle())
	m.views[h] = req
	return h, nil
}

func (m *mockDriver) DestroyImageView(device vk.Device, view vk.ImageView) {
	m.call("DestroyImageView")
	delete(m.views, view)
	m.destroyed = append(m.destroyed, "view")
}

func (m *mockDriver) CreateSampler(device vk.Device, req SamplerRequest) (vk.Sampler, error) {
	if err := m.call("CreateSampler"); err != nil {
		return nil, err
	}
	h := vk.Sampler(newHandle())
	m.samplers[h] = req
	return h, nil
}

func (m *mockDriver) DestroySampler(device vk.Device, sampler vk.Sampler) {
	m.call("DestroySampler")
	delete(m.samplers, sampler)
	m.destroyed = append(m.destroyed, "sampler")
}

func (m *mockDriver) CreateCommandPool(device vk.Device, family uint32) (vk.CommandPool, error) {
	if err := m.call("CreateCommandPool"); err != nil {
		return nil, err
	}
	return vk.CommandPool(newHandle()), nil
}

func (m *mockDriver) DestroyCommandPool(device vk.Device, pool vk.CommandPool) {
	m.call("DestroyCommandPool")
	m.destroyed = append(m.destroyed, "command pool")
}

func (m *mockDriver) AllocateCommandBuffer(device vk.Device, pool vk.CommandPool) (vk.CommandBuffer, error) {
	if err := m.call("AllocateCommandBuffer"); err != nil {
		return nil, err
	}
	h := vk.CommandBuffer(newHandle())
	m.cmds[h] = &mockCmd{}
	return h, nil
}

func (m *mockDriver) FreeCommandBuffer(device vk.Device, pool vk.CommandPool, cmd vk.CommandBuffer) {
	m.call("FreeCommandBuffer")
	delete(m.cmds, cmd)
}

func (m *mockDriver) BeginCommandBuffer(cmd vk.CommandBuffer, oneShot bool) error {
	if err := m.call("BeginCommandBuffer"); err != nil {
		return err
	}
	c := m.cmds[cmd]
	if c.recording {
		m.violation("begin on a recording command buffer")
	}
	c.recording = true
	c.oneShot = oneShot
	c.ops = nil
	return nil
}

func (m *mockDriver) EndCommandBuffer(cmd vk.CommandBuffer) error {
	if err := m.call("EndCommandBuffer"); err != nil {
		return err
	}
	m.cmds[cmd].recording = false
	return nil
}

func (m *mockDriver) ResetCommandBuffer(cmd vk.CommandBuffer) error {
	if err := m.call("ResetCommandBuffer"); err != nil {
		return err
	}
	m.cmds[cmd].ops = nil
	return nil
}

func (m *mockDriver) record(cmd vk.CommandBuffer, op func()) {
	c := m.cmds[cmd]
	if !c.recording {
		m.violation("command recorded outside a recording session")
		return
	}
	c.ops = append(c.ops, op)
}

func (m *mockDriver) CmdPipelineBarrier(cmd vk.CommandBuffer, barrier ImageBarrier) {
	m.call("CmdPipelineBarrier")
	m.record(cmd, func() {
		im := m.images[barrier.Image]
		if barrier.OldLayout != vk.ImageLayoutUndefined && im.layout != barrier.OldLayout {
			m.violation("barrier from layout %d but image is in %d", barrier.OldLayout, im.layout)
		}
		im.layout = barrier.NewLayout
		m.barriers = append(m.barriers, barrier)
	})
}

func (m *mockDriver) CmdCopyBuffer(cmd vk.CommandBuffer, src, dst vk.Buffer, size vk.DeviceSize) {
	m.call("CmdCopyBuffer")
	m.record(cmd, func() {
		copy(m.bufferData(dst)[:size], m.bufferData(src)[:size])
	})
}

func (m *mockDriver) CmdCopyBufferToImage(cmd vk.CommandBuffer, src vk.Buffer, dst vk.Image, regions []ImageCopy) {
	m.call("CmdCopyBufferToImage")
	m.record(cmd, func() {
		im := m.images[dst]
		if im.layout != vk.ImageLayoutTransferDstOptimal {
			m.violation("copy to image in layout %d", im.layout)
		}
		from, to := m.bufferData(src), m.imageData(dst)
		for _, r := range regions {
			n := int(r.Width * r.Height * 4)
			at := int(r.Layer) * n
			copy(to[at:at+n], from[r.BufferOffset:int(r.BufferOffset)+n])
		}
	})
}

func (m *mockDriver) CmdCopyImageToBuffer(cmd vk.CommandBuffer, src vk.Image, dst vk.Buffer, regions []ImageCopy) {
	m.call("CmdCopyImageToBuffer")
	m.record(cmd, func() {
		im := m.images[src]
		if im.layout != vk.ImageLayoutTransferSrcOptimal {
			m.violation("copy from image in layout %d", im.layout)
		}
		from, to := m.imageData(src), m.bufferData(dst)
		for _, r := range regions {
			n := int(r.Width * r.Height * 4)
			at := int(r.Layer) * n
			copy(to[r.BufferOffset:int(r.BufferOffset)+n], from[at:at+n])
		}
	})
}

func (m *mockDriver) CmdBeginRenderPass(cmd vk.CommandBuffer, begin RenderPassBegin) {
	m.call("CmdBeginRenderPass")
	m.renderPasses = append(m.renderPasses, begin)
}

func (m *mockDriver) CmdEndRenderPass(cmd vk.CommandBuffer) {
	m.call("CmdEndRenderPass")
}

func (m *mockDriver) CmdSetViewport(cmd vk.CommandBuffer, extent vk.Extent2D) {
	m.call("CmdSetViewport")
}

func (m *mockDriver) CmdBindPipeline(cmd vk.CommandBuffer, pipeline vk.Pipeline) {
	m.call("CmdBindPipeline")
	m.boundPipeline = pipeline
}

func (m *mockDriver) CmdBindVertexBuffer(cmd vk.CommandBuffer, buffer vk.Buffer) {
	m.call("CmdBindVertexBuffer")
	m.boundVertex = buffer
}

func (m *mockDriver) CmdBindIndexBuffer(cmd vk.CommandBuffer, buffer vk.Buffer) {
	m.call("CmdBindIndexBuffer")
	m.boundIndex = buffer
}

func (m *mockDriver) CmdPushConstants(cmd vk.CommandBuffer, layout vk.PipelineLayout, stages vk.ShaderStageFlags, data []byte) {
	m.call("CmdPushConstants")
	m.pushed = append([]byte(nil), data...)
}

func (m *mockDriver) CmdDrawIndexed(cmd vk.CommandBuffer, indexCount uint32) {
	m.call("CmdDrawIndexed")
	m.draws = append(m.draws, mockDraw{
		pipeline: m.boundPipeline,
		vertex:   m.boundVertex,
		index:    m.boundIndex,
		count:    indexCount,
		push:     m.pushed,
	})
}

func (m *mockDriver) CreateFence(device vk.Device, signaled bool) (vk.Fence, error) {
	if err := m.call("CreateFence"); err != nil {
		return vk.NullFence, err
	}
	h := vk.Fence(newHandle())
	m.fences[h] = signaled
	return h, nil
}

// WaitForFence fails on an unsignaled fence: work runs at submit, so such a
// wait would never return on a real device.
func (m *mockDriver) WaitForFence(device vk.Device, fence vk.Fence, timeout uint64) error {
	if err := m.call("WaitForFence"); err != nil {
		return err
	}
	if !m.fences[fence] {
		m.violation("wait on a fence that is never signaled")
		return errors.New("fence wait would block forever")
	}
	return nil
}

func (m *mockDriver) ResetFence(device vk.Device, fence vk.Fence) error {
	if err := m.call("ResetFence"); err != nil {
		return err
	}
	m.fences[fence] = false
	return nil
}

func (m *mockDriver) FenceSignaled(device vk.Device, fence vk.Fence) (bool, error) {
	return m.fences[fence], m.call("FenceSignaled")
}

func (m *mockDriver) DestroyFence(device vk.Device, fence vk.Fence) {
	m.call("DestroyFence")
	delete(m.fences, fence)
}

func (m *mockDriver) CreateSemaphore(device vk.Device) (vk.Semaphore, error) {
	if err := m.call("CreateSemaphore"); err != nil {
		return vk.NullSemaphore, err
	}
	h := vk.Semaphore(newHandle())
	m.semaphores[h] = false
	return h, nil
}

func (m *mockDriver) DestroySemaphore(device vk.Device, semaphore vk.Semaphore) {
	m.call("DestroySemaphore")
	delete(m.semaphores, semaphore)
}

func (m *mockDriver) consume(semaphore vk.Semaphore, what string) {
	if semaphore == vk.NullSemaphore {
		return
	}
	if !m.semaphores[semaphore] {
		m.violation("%s waits on an unsignaled semaphore", what)
	}
	m.semaphores[semaphore] = false
}

func (m *mockDriver) QueueSubmit(queue vk.Queue, submit Submission, fence vk.Fence) error {
	if err := m.call("QueueSubmit"); err != nil {
		return err
	}
	c := m.cmds[submit.Cmd]
	if c.recording {
		m.violation("submit of a command buffer that is still recording")
	}
	if fence != vk.NullFence && m.fences[fence] {
		m.violation("submit with a fence that is already signaled")
	}
	m.consume(submit.Wait, "submit")
	for _, op := range c.ops {
		op()
	}
	if submit.Signal != vk.NullSemaphore {
		m.semaphores[submit.Signal] = true
	}
	if fence != vk.NullFence {
		m.fences[fence] = true
	}
	m.submissions = append(m.submissions, submit)
	return nil
}

func (m *mockDriver) CreateSwapchain(device vk.Device, req SwapchainRequest) (vk.Swapchain, error) {
	if err := m.call("CreateSwapchain"); err != nil {
		return vk.NullSwapchain, err
	}
	h := vk.Swapchain(newHandle())
	m.swapchains[h] = req
	images := make([]vk.Image, req.MinImages)
	for i := range images {
		images[i] = vk.Image(newHandle())
	}
	m.swapImages[h] = images
	return h, nil
}

func (m *mockDriver) SwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, error) {
	return m.swapImages[swapchain], m.call("SwapchainImages")
}

func (m *mockDriver) AcquireNextImage(device vk.Device, swapchain vk.Swapchain, signal vk.Semaphore) (uint32, error) {
	m.call("AcquireNextImage")
	if len(m.acquireErrs) > 0 {
		err := m.acquireErrs[0]
		m.acquireErrs = m.acquireErrs[1:]
		if err != nil {
			return 0, err
		}
	}
	if m.semaphores[signal] {
		m.violation("acquire signals a semaphore that is already signaled")
	}
	m.semaphores[signal] = true
	index := m.nextImage % uint32(len(m.swapImages[swapchain]))
	m.nextImage++
	return index, nil
}

func (m *mockDriver) QueuePresent(queue vk.Queue, swapchain vk.Swapchain, index uint32, wait vk.Semaphore) error {
	m.call("QueuePresent")
	m.consume(wait, "present")
	m.presented = append(m.presented, index)
	if len(m.presentErrs) > 0 {
		err := m.presentErrs[0]
		m.presentErrs = m.presentErrs[1:]
		return err
	}
	return nil
}

func (m *mockDriver) DestroySwapchain(device vk.Device, swapchain vk.Swapchain) {
	m.call("DestroySwapchain")
	delete(m.swapchains, swapchain)
	delete(m.swapImages, swapchain)
}

func (m *mockDriver) CreateRenderPass(device vk.Device, color, depth vk.Format) (vk.RenderPass, error) {
	if err := m.call("CreateRenderPass"); err != nil {
		return vk.NullRenderPass, err
	}
	h := vk.RenderPass(newHandle())
	m.passes[h] = true
	return h, nil
}

func (m *mockDriver) DestroyRenderPass(device vk.Device, pass vk.RenderPass) {
	m.call("DestroyRenderPass")
	delete(m.passes, pass)
}

func (m *mockDriver) CreateFramebuffer(device vk.Device, pass vk.RenderPass, views []vk.ImageView, extent vk.Extent2D) (vk.Framebuffer, error) {
	if err := m.call("CreateFramebuffer"); err != nil {
		return vk.NullFramebuffer, err
	}
	h := vk.Framebuffer(newHandle())
	m.fbs[h] = views
	return h, nil
}

func (m *mockDriver) DestroyFramebuffer(device vk.Device, framebuffer vk.Framebuffer) {
	m.call("DestroyFramebuffer")
	delete(m.fbs, framebuffer)
}

type mockSurface struct {
	width, height int
	extensions    []string
	err           error
	created       int
}

func newMockSurface() *mockSurface {
	return &mockSurface{width: 800, height: 600, extensions: []string{"VK_KHR_surface"}}
}

func (s *mockSurface) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	s.created++
	if s.err != nil {
		return vk.NullSurface, s.err
	}
	return vk.Surface(newHandle()), nil
}

func (s *mockSurface) FramebufferSize() (int, int)          { return s.width, s.height }
func (s *mockSurface) RequiredInstanceExtensions() []string { return s.extensions }

// newTestCore returns an initialized Core on a mock driver. The log output is
// captured in the returned buffer.
func newTestCore(t *testing.T, gpus ...*mockGPU) (*Core, *mockDriver, *bytes.Buffer) {
	t.Helper()
	driver := newMockDriver(t, gpus...)
	var out bytes.Buffer
	core := NewCore(DefaultConfig(), driver, NewLogs(&out))
	surface := newMockSurface()
	require.NoError(t, core.CreateInstance(surface))
	require.NoError(t, core.Init(surface))
	return core, driver, &out
}
