package vkcore

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

type CommandState int

const (
	CommandIdle CommandState = iota
	CommandRecording
	CommandRecorded
	CommandSubmitted
)

func (s CommandState) String() string {
	switch s {
	case CommandIdle:
		return "idle"
	case CommandRecording:
		return "recording"
	case CommandRecorded:
		return "recorded"
	case CommandSubmitted:
		return "submitted"
	}
	return fmt.Sprintf("CommandState(%d)", int(s))
}

//CommandBuffer pairs a primary command buffer with the fence signaled when its submission completes.
//A submitted buffer has to be waited on before it can be recorded again.
type CommandBuffer struct {
	pool    *CommandPool
	handle  vk.CommandBuffer
	fence   vk.Fence
	state   CommandState
	oneShot bool
}

func newCommandBuffer(pool *CommandPool, oneShot bool) (*CommandBuffer, error) {
	core := pool.core
	handle, err := core.driver.AllocateCommandBuffer(core.Device(), pool.pool)
	if err != nil {
		return nil, core.logs.failure(KindFatal, "allocate command buffer", "", err)
	}
	fence, err := core.driver.CreateFence(core.Device(), false)
	if err != nil {
		core.driver.FreeCommandBuffer(core.Device(), pool.pool, handle)
		return nil, core.logs.failure(KindFatal, "create fence", "", err)
	}
	return &CommandBuffer{
		pool:    pool,
		handle:  handle,
		fence:   fence,
		oneShot: oneShot,
	}, nil
}

func (cb *CommandBuffer) Handle() vk.CommandBuffer { return cb.handle }
func (cb *CommandBuffer) Fence() vk.Fence          { return cb.fence }
func (cb *CommandBuffer) State() CommandState      { return cb.state }

// BeginRecording resets the buffer and opens a recording session.
func (cb *CommandBuffer) BeginRecording() error {
	switch cb.state {
	case CommandRecording:
		return contractError("begin recording", ErrAlreadyRecording)
	case CommandSubmitted:
		return contractError("begin recording", ErrFenceNotWaited)
	}
	core := cb.pool.core
	if err := core.driver.ResetCommandBuffer(cb.handle); err != nil {
		return core.logs.failure(KindFatal, "reset command buffer", "", err)
	}
	if err := core.driver.BeginCommandBuffer(cb.handle, cb.oneShot); err != nil {
		return core.logs.failure(KindFatal, "begin command buffer", "", err)
	}
	cb.state = CommandRecording
	return nil
}

func (cb *CommandBuffer) EndRecording() error {
	if cb.state != CommandRecording {
		return contractError("end recording", ErrNotRecording)
	}
	core := cb.pool.core
	if err := core.driver.EndCommandBuffer(cb.handle); err != nil {
		return core.logs.failure(KindFatal, "end command buffer", "", err)
	}
	cb.state = CommandRecorded
	return nil
}

// Submit sends the recording to the pool's queue. The submission waits on
// wait at waitStage and signals signal, either semaphore may be nil. With
// waitFence the call blocks until the GPU is done and the buffer is idle again.
func (cb *CommandBuffer) Submit(waitStage vk.PipelineStageFlags, wait, signal *Semaphore, waitFence bool) error {
	if cb.state != CommandRecorded {
		return contractError("submit command buffer", ErrNotRecorded)
	}
	core := cb.pool.core
	err := core.driver.QueueSubmit(cb.pool.queue, Submission{
		Cmd:       cb.handle,
		WaitStage: waitStage,
		Wait:      wait.Handle(),
		Signal:    signal.Handle(),
	}, cb.fence)
	if err != nil {
		return core.logs.failure(KindFatal, "submit to queue", "", err)
	}
	cb.state = CommandSubmitted
	if waitFence {
		return cb.Wait()
	}
	return nil
}

// Wait blocks on the fence of a submitted buffer, without timeout, and resets
// it. It does nothing for a buffer that is not in flight.
func (cb *CommandBuffer) Wait() error {
	if cb.state != CommandSubmitted {
		return nil
	}
	core := cb.pool.core
	if err := core.driver.WaitForFence(core.Device(), cb.fence, vk.MaxUint64); err != nil {
		return core.logs.failure(KindFatal, "wait for fence", "", err)
	}
	if err := core.driver.ResetFence(core.Device(), cb.fence); err != nil {
		return core.logs.failure(KindFatal, "reset fence", "", err)
	}
	cb.state = CommandIdle
	return nil
}

// Done polls the fence without blocking.
func (cb *CommandBuffer) Done() (bool, error) {
	if cb.state != CommandSubmitted {
		return true, nil
	}
	core := cb.pool.core
	return core.driver.FenceSignaled(core.Device(), cb.fence)
}

// Destroy waits for an in-flight submission, then frees the buffer and its fence.
func (cb *CommandBuffer) Destroy() {
	if cb.handle == nil {
		return
	}
	core := cb.pool.core
	if err := cb.Wait(); err != nil {
		core.logs.Warn.Printf("destroy command buffer: %v", err)
	}
	core.driver.FreeCommandBuffer(core.Device(), cb.pool.pool, cb.handle)
	core.driver.DestroyFence(core.Device(), cb.fence)
	cb.handle = nil
	cb.fence = vk.NullFence
	cb.state = CommandIdle
}
