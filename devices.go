package vkcore

import (
	"slices"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// SurfaceProvider is the windowing collaborator: it creates the presentation
// surface and reports the framebuffer size and the instance extensions it needs.
type SurfaceProvider interface {
	CreateSurface(instance vk.Instance) (vk.Surface, error)
	FramebufferSize() (width, height int)
	RequiredInstanceExtensions() []string
}

type SwapchainSupport struct {
	Capabilities SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// Adequate reports whether at least one surface format and one present mode
// exist.
func (s SwapchainSupport) Adequate() bool {
	return len(s.Formats) > 0 && len(s.PresentModes) > 0
}

//Devices negotiates and owns the physical device, logical device, queues and presentation surface
//of a Core. Once Init succeeds, later Init calls are logged and ignored.
type Devices struct {
	driver   Driver
	logs     *Logs
	required []string
	layers   []string

	instance    vk.Instance
	surface     vk.Surface
	physical    vk.PhysicalDevice
	properties  PhysicalDeviceProperties
	memoryTypes []MemoryType
	indices     QueueFamilyIndices
	enabled     []string

	device        vk.Device
	graphicsQueue vk.Queue
	presentQueue  vk.Queue
}

func NewDevices(driver Driver, logs *Logs, requiredExtensions []string) *Devices {
	return &Devices{
		driver:   driver,
		logs:     logs,
		required: requiredExtensions,
		indices:  NewQueueFamilyIndices(),
	}
}

// Init creates the surface, picks the physical device, then creates the
// logical device and fetches its queues. A failed Init leaves nothing behind
// and may be retried.
func (d *Devices) Init(instance vk.Instance, surfaces SurfaceProvider) error {
	if d.device != nil {
		d.logs.Info.Println("device has already been initialized")
		return nil
	}
	d.instance = instance
	err := d.createSurface(surfaces)
	if err == nil {
		err = d.pickPhysicalDevice()
	}
	if err == nil {
		err = d.createLogicalDevice()
	}
	if err != nil {
		d.Destroy()
		return err
	}
	return nil
}

func (d *Devices) createSurface(surfaces SurfaceProvider) error {
	surface, err := surfaces.CreateSurface(d.instance)
	if err != nil {
		return d.logs.failure(KindFatal, "create window surface", "", err)
	}
	d.surface = surface
	return nil
}

func (d *Devices) pickPhysicalDevice() error {
	gpus, err := d.driver.EnumeratePhysicalDevices(d.instance)
	if err != nil {
		return d.logs.failure(KindFatal, "enumerate physical devices", "", err)
	}
	if len(gpus) == 0 {
		return d.logs.failure(KindFatal, "pick physical device", "", ErrNoDevices)
	}

	best, bestScore := -1, -1
	for i, gpu := range gpus {
		if !d.IsDeviceSuitable(gpu) {
			continue
		}
		if score := deviceScore(d.driver.PhysicalDeviceProperties(gpu).Type); score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return d.logs.failure(KindFatal, "pick physical device", "", ErrNoSuitableDevice)
	}

	d.physical = gpus[best]
	d.properties = d.driver.PhysicalDeviceProperties(d.physical)
	d.memoryTypes = d.driver.MemoryTypes(d.physical)
	d.logs.Info.Printf("selected GPU %q (%s)", d.properties.Name, deviceTypeName(d.properties.Type))
	return nil
}

//Prefer dedicated hardware, enumeration order breaks ties
func deviceScore(kind vk.PhysicalDeviceType) int {
	switch kind {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return 4
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return 3
	case vk.PhysicalDeviceTypeVirtualGpu:
		return 2
	case vk.PhysicalDeviceTypeCpu:
		return 1
	}
	return 0
}

func deviceTypeName(kind vk.PhysicalDeviceType) string {
	switch kind {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "discrete"
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "integrated"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "virtual"
	case vk.PhysicalDeviceTypeCpu:
		return "cpu"
	}
	return "other"
}

// IsDeviceSuitable requires complete queue families, every required device
// extension, an adequate swapchain and sampler anisotropy. Swapchain support is
// only queried once the extensions are known to be present.
func (d *Devices) IsDeviceSuitable(gpu vk.PhysicalDevice) bool {
	indices := findQueueFamilies(d.driver, d.logs, gpu, d.surface)
	extensionsSupported := d.checkDeviceExtensionSupport(gpu)

	swapchainAdequate := false
	if extensionsSupported {
		support, err := d.querySwapchainSupport(gpu)
		swapchainAdequate = err == nil && support.Adequate()
	}

	features := d.driver.PhysicalDeviceFeatures(gpu)
	return indices.IsComplete() && extensionsSupported && swapchainAdequate && features.SamplerAnisotropy
}

func (d *Devices) checkDeviceExtensionSupport(gpu vk.PhysicalDevice) bool {
	available, err := d.driver.DeviceExtensions(gpu)
	if err != nil {
		d.logs.Warn.Printf("device extension query: %v", err)
		return false
	}
	ok, _ := NewExtensionSet(nil, d.required, available).HasRequired()
	return ok
}

func (d *Devices) querySwapchainSupport(gpu vk.PhysicalDevice) (SwapchainSupport, error) {
	var support SwapchainSupport
	var err error
	if support.Capabilities, err = d.driver.SurfaceCapabilities(gpu, d.surface); err != nil {
		return support, err
	}
	if support.Formats, err = d.driver.SurfaceFormats(gpu, d.surface); err != nil {
		return support, err
	}
	if support.PresentModes, err = d.driver.SurfacePresentModes(gpu, d.surface); err != nil {
		return support, err
	}
	return support, nil
}

func (d *Devices) createLogicalDevice() error {
	d.indices = findQueueFamilies(d.driver, d.logs, d.physical, d.surface)

	available, err := d.driver.DeviceExtensions(d.physical)
	if err != nil {
		return d.logs.failure(KindFatal, "query device extensions", "", err)
	}
	exts := NewExtensionSet(nil, d.required, available)
	if ok, missing := exts.HasRequired(); !ok {
		return d.logs.failure(KindFatal, "create logical device", "",
			errors.Wrapf(ErrMissingExtensions, "%v", missing))
	}
	enabled := exts.Enabled()
	if exts.Has(PortabilitySubset) && !slices.Contains(enabled, PortabilitySubset) {
		enabled = append(enabled, PortabilitySubset)
	}

	device, err := d.driver.CreateDevice(d.physical, DeviceRequest{
		Families:   d.indices.Unique(),
		Extensions: enabled,
		Layers:     d.layers,
		Features:   DeviceFeatures{SamplerAnisotropy: true},
	})
	if err != nil {
		return d.logs.failure(KindFatal, "create logical device", "", err)
	}
	d.device = device
	d.enabled = enabled
	d.graphicsQueue = d.driver.DeviceQueue(device, uint32(d.indices.Graphics))
	d.presentQueue = d.driver.DeviceQueue(device, uint32(d.indices.Present))
	return nil
}

// QueueFamilyIndices searches the queue families of the selected device again.
func (d *Devices) QueueFamilyIndices() QueueFamilyIndices {
	return findQueueFamilies(d.driver, d.logs, d.physical, d.surface)
}

// SwapchainSupport queries the surface of the selected device again, the
// result reflects the current window state.
func (d *Devices) SwapchainSupport() (SwapchainSupport, error) {
	support, err := d.querySwapchainSupport(d.physical)
	if err != nil {
		return support, d.logs.failure(KindFatal, "query swapchain support", "", err)
	}
	return support, nil
}

// FindMemoryType returns the first memory type allowed by typeBits whose
// flags contain every bit of props.
func (d *Devices) FindMemoryType(typeBits uint32, props vk.MemoryPropertyFlags) (uint32, error) {
	for i, t := range d.memoryTypes {
		if typeBits&(1<<uint(i)) != 0 && t.Flags&props == props {
			return uint32(i), nil
		}
	}
	return 0, errors.Wrapf(ErrNoMemoryType, "type bits %#x, properties %#x", typeBits, props)
}

func (d *Devices) PhysicalDevice() vk.PhysicalDevice    { return d.physical }
func (d *Devices) Properties() PhysicalDeviceProperties { return d.properties }
func (d *Devices) MemoryTypes() []MemoryType            { return d.memoryTypes }
func (d *Devices) Device() vk.Device                    { return d.device }
func (d *Devices) GraphicsQueue() vk.Queue              { return d.graphicsQueue }
func (d *Devices) PresentQueue() vk.Queue               { return d.presentQueue }
func (d *Devices) Surface() vk.Surface                  { return d.surface }
func (d *Devices) EnabledExtensions() []string          { return d.enabled }

func (d *Devices) WaitIdle() error {
	if d.device == nil {
		return nil
	}
	if err := d.driver.DeviceWaitIdle(d.device); err != nil {
		return d.logs.failure(KindFatal, "wait for device idle", "", err)
	}
	return nil
}

// Destroy releases the logical device, then the surface.
func (d *Devices) Destroy() {
	if d.device != nil {
		d.driver.DestroyDevice(d.device)
		d.device = nil
	}
	if d.surface != vk.NullSurface {
		d.driver.DestroySurface(d.instance, d.surface)
		d.surface = vk.NullSurface
	}
	d.physical = nil
	d.properties = PhysicalDeviceProperties{}
	d.memoryTypes = nil
	d.indices = NewQueueFamilyIndices()
	d.enabled = nil
	d.graphicsQueue = nil
	d.presentQueue = nil
}
