package vkcore

import (
	vk "github.com/vulkan-go/vulkan"
)

// Semaphore orders work between queue submissions and presentation on the GPU.
type Semaphore struct {
	core   *Core
	handle vk.Semaphore
}

func NewSemaphore(core *Core) (*Semaphore, error) {
	handle, err := core.driver.CreateSemaphore(core.Device())
	if err != nil {
		return nil, core.logs.failure(KindFatal, "create semaphore", "", err)
	}
	return &Semaphore{core: core, handle: handle}, nil
}

// Handle is nil safe, a nil *Semaphore yields the null handle.
func (s *Semaphore) Handle() vk.Semaphore {
	if s == nil {
		return vk.NullSemaphore
	}
	return s.handle
}

func (s *Semaphore) Destroy() {
	if s == nil || s.handle == vk.NullSemaphore {
		return
	}
	s.core.driver.DestroySemaphore(s.core.Device(), s.handle)
	s.handle = vk.NullSemaphore
}
