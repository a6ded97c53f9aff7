package vkcore

import (
	"fmt"
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// BufferUsage tags what a buffer is for. The tag decides the Vulkan usage
// flags and the memory properties it is allocated with.
type BufferUsage int

const (
	VertexBuffer BufferUsage = iota
	IndexBuffer
	// TransferBuffer is a host-visible staging buffer, source or destination of copies.
	TransferBuffer
	// UniformBuffer is host-visible and coherent so it can be rewritten every frame.
	UniformBuffer
)

func (u BufferUsage) String() string {
	switch u {
	case VertexBuffer:
		return "vertex"
	case IndexBuffer:
		return "index"
	case TransferBuffer:
		return "transfer"
	case UniformBuffer:
		return "uniform"
	}
	return fmt.Sprintf("BufferUsage(%d)", int(u))
}

func (u BufferUsage) flags() vk.BufferUsageFlags {
	switch u {
	case VertexBuffer:
		return vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit | vk.BufferUsageTransferDstBit)
	case IndexBuffer:
		return vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit | vk.BufferUsageTransferDstBit)
	case UniformBuffer:
		return vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit)
	}
	return vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit | vk.BufferUsageTransferDstBit)
}

func (u BufferUsage) memoryProperties() vk.MemoryPropertyFlags {
	if u.HostVisible() {
		return vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	}
	return vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
}

// HostVisible reports whether buffers of this usage can be mapped by the CPU.
func (u BufferUsage) HostVisible() bool {
	return u == TransferBuffer || u == UniformBuffer
}

//Buffer is a memory backed buffer. Its size and usage are fixed at creation and it is destroyed exactly once
type Buffer struct {
	core   *Core
	handle vk.Buffer
	memory vk.DeviceMemory
	usage  BufferUsage
	size   vk.DeviceSize
}

// NewBuffer creates a buffer of size bytes. When data is given its first size
// bytes are copied in: host-visible usages are written through a mapping,
// device-local ones through a staging buffer and a one-shot copy.
func NewBuffer(core *Core, usage BufferUsage, size int, data []byte) (*Buffer, error) {
	if size <= 0 {
		return nil, contractError("create buffer", errors.Wrapf(ErrInvalidSize, "%d bytes", size))
	}
	if data != nil && len(data) < size {
		return nil, contractError("create buffer",
			errors.Wrapf(ErrInvalidSize, "%d bytes of data for a %d byte buffer", len(data), size))
	}
	if data != nil && !usage.HostVisible() {
		return core.uploadBuffer(usage, data[:size])
	}

	b, err := allocateBuffer(core, usage, size)
	if err != nil {
		return nil, err
	}
	if data != nil {
		if err := core.driver.WriteMemory(core.Device(), b.memory, data[:size]); err != nil {
			b.Destroy()
			return nil, core.logs.failure(KindFatal, "map buffer memory", "", err)
		}
	}
	return b, nil
}

// NewBufferFrom creates a buffer holding elems, its size is len(elems) times
// the element stride.
func NewBufferFrom[T any](core *Core, usage BufferUsage, elems []T) (*Buffer, error) {
	if len(elems) == 0 {
		return nil, contractError("create buffer", errors.Wrap(ErrInvalidSize, "no elements"))
	}
	return NewBuffer(core, usage, len(elems)*int(unsafe.Sizeof(elems[0])), sliceBytes(elems))
}

func sliceBytes[T any](elems []T) []byte {
	if len(elems) == 0 {
		return nil
	}
	size := len(elems) * int(unsafe.Sizeof(elems[0]))
	return unsafe.Slice((*byte)(unsafe.Pointer(&elems[0])), size)
}

func allocateBuffer(core *Core, usage BufferUsage, size int) (*Buffer, error) {
	if !core.initialized() {
		return nil, contractError("create buffer", ErrNotInitialized)
	}
	driver, device := core.driver, core.Device()

	handle, err := driver.CreateBuffer(device, vk.DeviceSize(size), usage.flags())
	if err != nil {
		return nil, core.logs.failure(KindFatal, "create buffer", "", err)
	}
	reqs := driver.BufferMemoryRequirements(device, handle)
	typeIndex, err := core.devices.FindMemoryType(reqs.TypeBits, usage.memoryProperties())
	if err != nil {
		driver.DestroyBuffer(device, handle)
		return nil, core.logs.failure(KindFatal, "allocate buffer memory", "", err)
	}
	memory, err := driver.AllocateMemory(device, reqs.Size, typeIndex)
	if err != nil {
		driver.DestroyBuffer(device, handle)
		return nil, core.logs.failure(KindFatal, "allocate buffer memory", "", err)
	}
	if err := driver.BindBufferMemory(device, handle, memory); err != nil {
		driver.DestroyBuffer(device, handle)
		driver.FreeMemory(device, memory)
		return nil, core.logs.failure(KindFatal, "bind buffer memory", "", err)
	}

	return &Buffer{
		core:   core,
		handle: handle,
		memory: memory,
		usage:  usage,
		size:   vk.DeviceSize(size),
	}, nil
}

func (b *Buffer) Handle() vk.Buffer       { return b.handle }
func (b *Buffer) Memory() vk.DeviceMemory { return b.memory }
func (b *Buffer) Usage() BufferUsage      { return b.usage }
func (b *Buffer) Size() vk.DeviceSize     { return b.size }
func (b *Buffer) Destroyed() bool         { return b.handle == nil }

// Read copies the contents of a host-visible buffer.
func (b *Buffer) Read() ([]byte, error) {
	if !b.usage.HostVisible() {
		return nil, contractError("read buffer", errors.Errorf("%s buffers are not host visible", b.usage))
	}
	data, err := b.core.driver.ReadMemory(b.core.Device(), b.memory, b.size)
	if err != nil {
		return nil, b.core.logs.failure(KindFatal, "map buffer memory", "", err)
	}
	return data, nil
}

// Destroy releases the buffer and its memory. Later calls do nothing.
func (b *Buffer) Destroy() {
	if b.handle == nil {
		return
	}
	b.core.driver.DestroyBuffer(b.core.Device(), b.handle)
	b.core.driver.FreeMemory(b.core.Device(), b.memory)
	b.handle = nil
	b.memory = nil
}
