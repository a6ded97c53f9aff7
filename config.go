package vkcore

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// DefaultMaxPackedBytes is the staging ceiling for batched image uploads,
// enough for twenty 2048x2048 RGBA images.
const DefaultMaxPackedBytes = 2048 * 2048 * 4 * 20

// SwapchainExtension is the only device extension the core requires by default.
const SwapchainExtension = "VK_KHR_swapchain"

var presentModes = map[string]vk.PresentMode{
	"immediate":    vk.PresentModeImmediate,
	"mailbox":      vk.PresentModeMailbox,
	"fifo":         vk.PresentModeFifo,
	"fifo_relaxed": vk.PresentModeFifoRelaxed,
}

type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

//Config holds the application level tunables of a Core. Zero values are not
//meaningful, start from DefaultConfig or LoadConfig.
type Config struct {
	Name               string       `toml:"name"`
	Window             WindowConfig `toml:"window"`
	Validation         bool         `toml:"validation"`
	ValidationLayers   []string     `toml:"validation_layers"`
	InstanceExtensions []string     `toml:"instance_extensions"`
	DeviceExtensions   []string     `toml:"device_extensions"`
	SwapchainDepth     int          `toml:"swapchain_depth"`
	FramesInFlight     int          `toml:"frames_in_flight"`
	PresentMode        string       `toml:"present_mode"`
	MaxPackedBytes     int          `toml:"max_packed_bytes"`
	MaxAnisotropy      float32      `toml:"max_anisotropy"`
	LogDir             string       `toml:"log_dir"`
	ClearColor         []float32    `toml:"clear_color"`
}

func DefaultConfig() *Config {
	return &Config{
		Name: "vkcore",
		Window: WindowConfig{
			Title:  "vkcore",
			Width:  1280,
			Height: 720,
		},
		ValidationLayers: []string{"VK_LAYER_KHRONOS_validation"},
		DeviceExtensions: []string{SwapchainExtension},
		SwapchainDepth:   3,
		FramesInFlight:   2,
		PresentMode:      "fifo",
		MaxPackedBytes:   DefaultMaxPackedBytes,
		MaxAnisotropy:    16,
		LogDir:           "logs",
		ClearColor:       []float32{0, 0, 0, 1},
	}
}

// LoadConfig reads a TOML file over DefaultConfig. Keys missing from the file
// keep their default.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal encodes the config back to TOML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "encode config")
	}
	return data, nil
}

func (c *Config) Validate() error {
	switch {
	case c.SwapchainDepth <= 0:
		return errors.Errorf("swapchain_depth must be positive, got %d", c.SwapchainDepth)
	case c.FramesInFlight <= 0:
		return errors.Errorf("frames_in_flight must be positive, got %d", c.FramesInFlight)
	case c.MaxPackedBytes <= 0:
		return errors.Errorf("max_packed_bytes must be positive, got %d", c.MaxPackedBytes)
	case c.MaxAnisotropy < 1:
		return errors.Errorf("max_anisotropy must be at least 1, got %g", c.MaxAnisotropy)
	case len(c.ClearColor) != 4:
		return errors.Errorf("clear_color needs 4 components, got %d", len(c.ClearColor))
	}
	if _, ok := presentModes[c.PresentMode]; !ok {
		return errors.Errorf("unknown present_mode %q", c.PresentMode)
	}
	return nil
}

// PresentModePreference maps the configured name onto a present mode.
func (c *Config) PresentModePreference() vk.PresentMode {
	if mode, ok := presentModes[c.PresentMode]; ok {
		return mode
	}
	return vk.PresentModeFifo
}
