package vkcore

import (
	vk "github.com/vulkan-go/vulkan"
)

//CommandPool owns a resettable command pool for one queue family and the queue its buffers submit to
type CommandPool struct {
	core   *Core
	pool   vk.CommandPool
	family uint32
	queue  vk.Queue
}

func NewCommandPool(core *Core, family uint32, queue vk.Queue) (*CommandPool, error) {
	pool, err := core.driver.CreateCommandPool(core.Device(), family)
	if err != nil {
		return nil, core.logs.failure(KindFatal, "create command pool", "", err)
	}
	return &CommandPool{
		core:   core,
		pool:   pool,
		family: family,
		queue:  queue,
	}, nil
}

func (p *CommandPool) Handle() vk.CommandPool { return p.pool }
func (p *CommandPool) Family() uint32         { return p.family }
func (p *CommandPool) Queue() vk.Queue        { return p.queue }

// NewCommandBuffer allocates a reusable command buffer with its own fence.
func (p *CommandPool) NewCommandBuffer() (*CommandBuffer, error) {
	return newCommandBuffer(p, false)
}

func (p *CommandPool) Destroy() {
	if p.pool == nil {
		return
	}
	p.core.driver.DestroyCommandPool(p.core.Device(), p.pool)
	p.pool = nil
}
