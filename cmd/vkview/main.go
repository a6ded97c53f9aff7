// Command vkview opens a window and drives the vkcore frame loop, clearing and
// presenting every frame. Textures given on the command line are uploaded
// at startup.
package main

import (
	"flag"
	"os"
	"strings"

	"github.com/andewx/vkcore"
	"github.com/andewx/vkcore/display"
)

func main() {
	configPath := flag.String("config", "", "TOML configuration file")
	texture := flag.String("texture", "", "image file uploaded as a 2D texture")
	cube := flag.String("cube", "", "comma separated face images, or one vertical strip, uploaded as a cube map")
	flag.Parse()

	logs := vkcore.NewLogs(os.Stderr)

	config := vkcore.DefaultConfig()
	if *configPath != "" {
		var err error
		config, err = vkcore.LoadConfig(*configPath)
		logs.Fatal(err)
	}
	if config.LogDir != "" {
		fileLogs, err := vkcore.NewFileLogs(config.LogDir)
		logs.Fatal(err)
		defer fileLogs.Close()
		logs = fileLogs
	}

	logs.Fatal(display.Init())
	defer display.Terminate()

	// Fatal exits without running defers, so every Fatal below gets the
	// whole chain.
	cleanup := teardown{display.Terminate}

	window, err := display.NewDisplay(config.Window)
	logs.Fatal(err, cleanup...)
	defer window.Destroy()
	cleanup.push(window.Destroy)

	core := vkcore.NewCore(config, vkcore.NewVulkanDriver(), logs)
	logs.Fatal(core.CreateInstance(window), cleanup...)
	cleanup.push(core.Destroy)
	logs.Fatal(core.Init(window), cleanup...)
	defer core.Destroy()

	var images []*vkcore.Image
	destroyImages := func() {
		for _, im := range images {
			im.Destroy()
		}
		images = nil
	}
	defer destroyImages()
	cleanup.push(destroyImages)

	if *texture != "" {
		im, err := vkcore.NewTexture2DFromFile(core, *texture)
		logs.Fatal(err, cleanup...)
		images = append(images, im)
	}
	if *cube != "" {
		var im *vkcore.Image
		if paths := strings.Split(*cube, ","); len(paths) > 1 {
			im, err = vkcore.NewTextureCubeFromFiles(core, paths)
		} else {
			im, err = vkcore.NewTextureCubeFromFile(core, *cube)
		}
		logs.Fatal(err, cleanup...)
		images = append(images, im)
	}

	var renderer vkcore.Renderer = vkcore.NewForwardRenderer(core, window, nil)
	logs.Fatal(renderer.Init(), cleanup...)
	defer renderer.Destroy()
	cleanup.push(renderer.Destroy)

	logs.Info.Printf("%s running on %s", config.Name, core.Devices().Properties().Name)
	for !window.ShouldClose() {
		logs.Fatal(frame(renderer), cleanup...)
	}
}

// teardown releases what exists so far, newest first.
type teardown []func()

func (t *teardown) push(f func()) { *t = append(teardown{f}, *t...) }

func frame(r vkcore.Renderer) error {
	if err := r.Begin(); err != nil {
		return err
	}
	if err := r.RenderScene(); err != nil {
		return err
	}
	if err := r.End(); err != nil {
		return err
	}
	return r.Present()
}
