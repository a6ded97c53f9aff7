package vkcore

import (
	"unsafe"

	lin "github.com/xlab/linmath"
)

// VulkanProjectionMat converts an OpenGL style projection matrix to Vulkan style projection matrix.
// Vulkan has a topLeft clipSpace with [0, 1] depth range instead of [-1, 1].
//
// linmath outputs projection matrices in GL style clipSpace,
// perform a simple fixup step to change the projection to Vulkan style.
func VulkanProjectionMat(m *lin.Mat4x4, proj *lin.Mat4x4) {
	// Flip Y, then z' = z/2 + w/2. Column major.
	clip := lin.Mat4x4{
		{1, 0, 0, 0},
		{0, -1, 0, 0},
		{0, 0, 0.5, 0},
		{0, 0, 0.5, 1},
	}
	m.Mult(&clip, proj)
}

// Camera holds the view and the Vulkan style projection of a frame.
type Camera struct {
	View       lin.Mat4x4
	Projection lin.Mat4x4
}

func NewCamera() Camera {
	var c Camera
	c.View.Identity()
	c.Projection.Identity()
	return c
}

// SetPerspective builds a GL perspective and converts it for Vulkan.
func (c *Camera) SetPerspective(fovY, aspect, near, far float32) {
	var gl lin.Mat4x4
	gl.Perspective(fovY, aspect, near, far)
	VulkanProjectionMat(&c.Projection, &gl)
}

func (c *Camera) LookAt(eye, center, up lin.Vec3) {
	c.View.LookAt(&eye, &center, &up)
}

// MVP is projection * view * model.
func (c *Camera) MVP(model *lin.Mat4x4) lin.Mat4x4 {
	var vp, mvp lin.Mat4x4
	vp.Mult(&c.Projection, &c.View)
	mvp.Mult(&vp, model)
	return mvp
}

func matrixBytes(m *lin.Mat4x4) []byte {
	out := make([]byte, unsafe.Sizeof(*m))
	copy(out, unsafe.Slice((*byte)(unsafe.Pointer(&m[0][0])), len(out)))
	return out
}
