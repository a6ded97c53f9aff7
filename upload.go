package vkcore

import (
	vk "github.com/vulkan-go/vulkan"
)

// RunOneShot records one isolated operation into a fresh one-time-submit
// command buffer from the transfer pool, submits it to the graphics queue and
// blocks until its fence signals. The buffer is freed before returning.
func (c *Core) RunOneShot(record func(cmd *CommandBuffer) error) error {
	if !c.initialized() {
		return contractError("run one-shot commands", ErrNotInitialized)
	}
	cmd, err := newCommandBuffer(c.transfer, true)
	if err != nil {
		return err
	}
	defer cmd.Destroy()

	if err := cmd.BeginRecording(); err != nil {
		return err
	}
	if err := record(cmd); err != nil {
		return err
	}
	if err := cmd.EndRecording(); err != nil {
		return err
	}
	return cmd.Submit(0, nil, nil, true)
}

// uploadBuffer stages data in host-visible memory and copies it into a new
// device-local buffer. The staging buffer is gone when this returns.
func (c *Core) uploadBuffer(usage BufferUsage, data []byte) (*Buffer, error) {
	staging, err := NewBuffer(c, TransferBuffer, len(data), data)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy()

	target, err := allocateBuffer(c, usage, len(data))
	if err != nil {
		return nil, err
	}
	err = c.RunOneShot(func(cmd *CommandBuffer) error {
		c.driver.CmdCopyBuffer(cmd.Handle(), staging.Handle(), target.Handle(), vk.DeviceSize(len(data)))
		return nil
	})
	if err != nil {
		target.Destroy()
		return nil, err
	}
	return target, nil
}

// UploadVertices creates a device-local vertex buffer holding vertices.
func (c *Core) UploadVertices(vertices []Vertex) (*Buffer, error) {
	return NewBufferFrom(c, VertexBuffer, vertices)
}

// UploadIndices creates a device-local 32-bit index buffer.
func (c *Core) UploadIndices(indices []uint32) (*Buffer, error) {
	return NewBufferFrom(c, IndexBuffer, indices)
}
