package vkcore

import (
	"slices"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

//Core is the device context every resource is created against. It owns the configuration, loggers,
//graphics driver, Vulkan instance, negotiated devices and the command pool used for one-shot transfer
//work. A Core is constructed explicitly and handed to constructors, nothing in the package is global.
type Core struct {
	config   *Config
	driver   Driver
	logs     *Logs
	layers   []string
	instance vk.Instance
	devices  *Devices
	transfer *CommandPool
}

func NewCore(config *Config, driver Driver, logs *Logs) *Core {
	return &Core{
		config:  config,
		driver:  driver,
		logs:    logs,
		devices: NewDevices(driver, logs, config.DeviceExtensions),
	}
}

// CreateInstance negotiates instance extensions and validation layers and
// creates the Vulkan instance. Extensions the surface provider needs are
// required, configured ones are wanted.
func (c *Core) CreateInstance(surfaces SurfaceProvider) error {
	if c.instance != nil {
		c.logs.Info.Println("instance has already been created")
		return nil
	}

	actual, err := c.driver.InstanceExtensions()
	if err != nil {
		return c.logs.failure(KindFatal, "enumerate instance extensions", "", err)
	}
	exts := NewExtensionSet(c.config.InstanceExtensions, surfaces.RequiredInstanceExtensions(), actual)
	if ok, missing := exts.HasRequired(); !ok {
		return c.logs.failure(KindFatal, "create instance", "",
			errors.Wrapf(ErrMissingExtensions, "%v", missing))
	}
	if ok, missing := exts.HasWanted(); !ok {
		c.logs.Warn.Printf("instance extensions not available: %v", missing)
	}
	enabled := exts.Enabled()
	portability := exts.Has(portabilityEnumeration)
	if portability && !slices.Contains(enabled, portabilityEnumeration) {
		enabled = append(enabled, portabilityEnumeration)
	}

	var layers []string
	if c.config.Validation {
		available, err := c.driver.InstanceLayers()
		if err != nil {
			c.logs.Warn.Printf("enumerate validation layers: %v", err)
		}
		set := NewExtensionSet(c.config.ValidationLayers, nil, available)
		if ok, missing := set.HasWanted(); !ok {
			c.logs.Warn.Printf("validation layers not available: %v", missing)
		}
		layers = set.Enabled()
	}

	instance, err := c.driver.CreateInstance(InstanceRequest{
		AppName:     c.config.Name,
		Extensions:  enabled,
		Layers:      layers,
		Portability: portability,
	})
	if err != nil {
		return c.logs.failure(KindFatal, "create instance", "", err)
	}
	c.instance = instance
	c.layers = layers
	c.devices.layers = layers
	c.logs.Info.Printf("created instance with extensions %v and layers %v", enabled, layers)
	return nil
}

// Init runs device negotiation against the surface and prepares the transfer
// command pool. A second call is a logged no-op.
func (c *Core) Init(surfaces SurfaceProvider) error {
	if c.instance == nil {
		return contractError("init core", errors.New("instance has not been created"))
	}
	if err := c.devices.Init(c.instance, surfaces); err != nil {
		return err
	}
	if c.transfer != nil {
		return nil
	}
	pool, err := NewCommandPool(c, uint32(c.devices.indices.Graphics), c.devices.GraphicsQueue())
	if err != nil {
		return err
	}
	c.transfer = pool
	return nil
}

func (c *Core) Config() *Config       { return c.config }
func (c *Core) Driver() Driver        { return c.driver }
func (c *Core) Logs() *Logs           { return c.logs }
func (c *Core) Instance() vk.Instance { return c.instance }
func (c *Core) Devices() *Devices     { return c.devices }
func (c *Core) Device() vk.Device     { return c.devices.Device() }

func (c *Core) initialized() bool {
	return c.devices.Device() != nil && c.transfer != nil
}

// Destroy waits for the device to idle and releases the transfer pool,
// devices and instance. Resources created against the Core must be destroyed
// first.
func (c *Core) Destroy() {
	if err := c.devices.WaitIdle(); err != nil {
		c.logs.Warn.Printf("destroy: %v", err)
	}
	if c.transfer != nil {
		c.transfer.Destroy()
		c.transfer = nil
	}
	c.devices.Destroy()
	if c.instance != nil {
		c.driver.DestroyInstance(c.instance)
		c.instance = nil
	}
}
