package vkcore

// frame is the per frame in flight state. Its command buffer fence guards
// reuse, the semaphores order acquire -> render -> present on the GPU.
type frame struct {
	cmd            *CommandBuffer
	imageAvailable *Semaphore
	renderFinished *Semaphore
}

func newFrame(pool *CommandPool) (*frame, error) {
	f := &frame{}
	var err error
	if f.cmd, err = pool.NewCommandBuffer(); err != nil {
		return nil, err
	}
	if f.imageAvailable, err = NewSemaphore(pool.core); err != nil {
		f.destroy()
		return nil, err
	}
	if f.renderFinished, err = NewSemaphore(pool.core); err != nil {
		f.destroy()
		return nil, err
	}
	return f, nil
}

func (f *frame) destroy() {
	if f.cmd != nil {
		f.cmd.Destroy()
	}
	f.imageAvailable.Destroy()
	f.renderFinished.Destroy()
}
