package vkcore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{SwapchainExtension}, cfg.DeviceExtensions)
	assert.Equal(t, 3, cfg.SwapchainDepth)
	assert.Equal(t, DefaultMaxPackedBytes, cfg.MaxPackedBytes)
	assert.Equal(t, vk.PresentModeFifo, cfg.PresentModePreference())
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
name = "viewer"
present_mode = "mailbox"
frames_in_flight = 3

[window]
width = 640
`))
	require.NoError(t, err)
	assert.Equal(t, "viewer", cfg.Name)
	assert.Equal(t, vk.PresentModeMailbox, cfg.PresentModePreference())
	assert.Equal(t, 3, cfg.FramesInFlight)
	assert.Equal(t, 640, cfg.Window.Width)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, 3, cfg.SwapchainDepth)
}

func TestParseConfigRejects(t *testing.T) {
	for name, data := range map[string]string{
		"present mode": `present_mode = "vsync"`,
		"depth":        `swapchain_depth = 0`,
		"frames":       `frames_in_flight = -1`,
		"capacity":     `max_packed_bytes = 0`,
		"anisotropy":   `max_anisotropy = 0.5`,
		"clear color":  `clear_color = [0.0, 0.0]`,
		"invalid toml": `name = `,
	} {
		_, err := ParseConfig([]byte(data))
		assert.Error(t, err, name)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Name = "roundtrip"
	cfg.Validation = true
	cfg.InstanceExtensions = []string{"VK_EXT_debug_utils"}
	cfg.PresentMode = "immediate"
	cfg.ClearColor = []float32{0.25, 0.5, 0.75, 1}

	data, err := cfg.Marshal()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "vkcore.toml")
	require.NoError(t, os.WriteFile(path, data, 0644))
	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
