package vkcore

import (
	vk "github.com/vulkan-go/vulkan"
	lin "github.com/xlab/linmath"
)

// Renderer is the frame loop capability callers hold. A frame is
// Begin, any number of SubmitModel calls, RenderScene, End and Present.
type Renderer interface {
	Init() error
	Begin() error
	SubmitModel(model Renderable, transform *lin.Mat4x4)
	RenderScene() error
	End() error
	Present() error
	Destroy()
}

// PipelineProvider supplies the graphics pipeline the renderer draws with.
// The pipeline layout must declare a 64 byte vertex stage push constant range
// for the model-view-projection matrix.
type PipelineProvider interface {
	Pipeline() vk.Pipeline
	Layout() vk.PipelineLayout
}

//ForwardRenderer draws every queued model in one render pass over the swapchain image. It keeps
//FramesInFlight frames, each frame's fence is waited on before the frame is recorded again
type ForwardRenderer struct {
	core     *Core
	surfaces SurfaceProvider
	pipeline PipelineProvider

	pool      *CommandPool
	swapchain *Swapchain
	frames    []*frame
	current   int
	image     uint32
	skip      bool

	queue      RenderQueue
	camera     Camera
	clearColor [4]float32
}

var _ Renderer = (*ForwardRenderer)(nil)

// NewForwardRenderer returns an uninitialized renderer. pipeline may be nil
// for a renderer that only clears and presents.
func NewForwardRenderer(core *Core, surfaces SurfaceProvider, pipeline PipelineProvider) *ForwardRenderer {
	r := &ForwardRenderer{
		core:     core,
		surfaces: surfaces,
		pipeline: pipeline,
		camera:   NewCamera(),
	}
	copy(r.clearColor[:], core.config.ClearColor)
	return r
}

func (r *ForwardRenderer) Init() error {
	if r.swapchain != nil {
		r.core.logs.Info.Println("renderer has already been initialized")
		return nil
	}
	if !r.core.initialized() {
		return contractError("init renderer", ErrNotInitialized)
	}
	devices := r.core.devices
	indices := devices.QueueFamilyIndices()
	pool, err := NewCommandPool(r.core, uint32(indices.Graphics), devices.GraphicsQueue())
	if err != nil {
		return err
	}
	r.pool = pool

	if r.swapchain, err = NewSwapchain(r.core, r.surfaces); err != nil {
		r.Destroy()
		return err
	}
	for i := 0; i < r.core.config.FramesInFlight; i++ {
		f, err := newFrame(r.pool)
		if err != nil {
			r.Destroy()
			return err
		}
		r.frames = append(r.frames, f)
	}
	return nil
}

func (r *ForwardRenderer) SetCamera(camera Camera)        { r.camera = camera }
func (r *ForwardRenderer) Camera() *Camera                { return &r.camera }
func (r *ForwardRenderer) SetClearColor(c [4]float32)     { r.clearColor = c }
func (r *ForwardRenderer) Swapchain() *Swapchain          { return r.swapchain }
func (r *ForwardRenderer) Queue() *RenderQueue            { return &r.queue }
func (r *ForwardRenderer) CurrentFrame() int              { return r.current }
func (r *ForwardRenderer) SetPipeline(p PipelineProvider) { r.pipeline = p }

// Begin waits until the current frame's previous submission retired, acquires
// a swapchain image and opens the render pass. An out of date swapchain is
// rebuilt and the frame is skipped.
func (r *ForwardRenderer) Begin() error {
	if r.swapchain == nil {
		return contractError("begin frame", ErrNotInitialized)
	}
	f := r.frames[r.current]
	if err := f.cmd.Wait(); err != nil {
		return err
	}
	index, err := r.swapchain.Acquire(f.imageAvailable)
	if err == ErrOutOfDate {
		r.core.logs.Info.Println("swapchain out of date, recreating")
		r.skip = true
		return r.swapchain.Recreate()
	}
	if err != nil {
		return err
	}
	r.skip = false
	r.image = index

	if err := f.cmd.BeginRecording(); err != nil {
		return err
	}
	driver := r.core.driver
	driver.CmdBeginRenderPass(f.cmd.Handle(), RenderPassBegin{
		RenderPass:  r.swapchain.RenderPass(),
		Framebuffer: r.swapchain.Framebuffer(index),
		Extent:      r.swapchain.Extent(),
		ClearColor:  r.clearColor,
	})
	driver.CmdSetViewport(f.cmd.Handle(), r.swapchain.Extent())
	return nil
}

func (r *ForwardRenderer) SubmitModel(model Renderable, transform *lin.Mat4x4) {
	r.queue.Submit(model, transform)
}

// RenderScene drains the queue and records one indexed draw per command in
// submission order. Commands queued for a skipped frame are dropped.
func (r *ForwardRenderer) RenderScene() error {
	commands := r.queue.Drain()
	if r.skip {
		return nil
	}
	f := r.frames[r.current]
	if f.cmd.State() != CommandRecording {
		return contractError("render scene", ErrNotRecording)
	}
	if len(commands) == 0 {
		return nil
	}
	if r.pipeline == nil {
		return contractError("render scene", ErrNoPipeline)
	}

	driver := r.core.driver
	cmd := f.cmd.Handle()
	driver.CmdBindPipeline(cmd, r.pipeline.Pipeline())
	for i := range commands {
		c := &commands[i]
		mvp := r.camera.MVP(&c.Transform)
		driver.CmdBindVertexBuffer(cmd, c.Model.VertexBuffer().Handle())
		driver.CmdBindIndexBuffer(cmd, c.Model.IndexBuffer().Handle())
		driver.CmdPushConstants(cmd, r.pipeline.Layout(), vk.ShaderStageFlags(vk.ShaderStageVertexBit), matrixBytes(&mvp))
		driver.CmdDrawIndexed(cmd, c.Model.IndexCount())
	}
	return nil
}

// End closes the render pass and submits the frame. The submission waits for
// the acquired image at the color attachment output stage.
func (r *ForwardRenderer) End() error {
	if r.skip {
		return nil
	}
	f := r.frames[r.current]
	if f.cmd.State() != CommandRecording {
		return contractError("end frame", ErrNotRecording)
	}
	r.core.driver.CmdEndRenderPass(f.cmd.Handle())
	if err := f.cmd.EndRecording(); err != nil {
		return err
	}
	return f.cmd.Submit(vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit), f.imageAvailable, f.renderFinished, false)
}

// Present hands the rendered image to the presentation engine and advances
// to the next frame in flight.
func (r *ForwardRenderer) Present() error {
	if r.skip {
		r.skip = false
		return nil
	}
	f := r.frames[r.current]
	err := r.swapchain.Present(r.image, f.renderFinished)
	r.current = (r.current + 1) % len(r.frames)
	if err == ErrOutOfDate {
		r.core.logs.Info.Println("swapchain out of date on present, recreating")
		return r.swapchain.Recreate()
	}
	return err
}

func (r *ForwardRenderer) Destroy() {
	if err := r.core.devices.WaitIdle(); err != nil {
		r.core.logs.Warn.Printf("destroy renderer: %v", err)
	}
	for _, f := range r.frames {
		f.destroy()
	}
	r.frames = nil
	if r.swapchain != nil {
		r.swapchain.Destroy()
		r.swapchain = nil
	}
	if r.pool != nil {
		r.pool.Destroy()
		r.pool = nil
	}
	r.queue.Drain()
}
