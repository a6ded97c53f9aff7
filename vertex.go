package vkcore

import (
	"unsafe"

	lin "github.com/xlab/linmath"
)

// Vertex is the interleaved layout of every mesh vertex buffer.
type Vertex struct {
	Pos    lin.Vec3
	Color  lin.Vec3
	Normal lin.Vec3
	UV     lin.Vec2
}

// VertexStride is the byte size of one Vertex in a vertex buffer.
const VertexStride = uint32(unsafe.Sizeof(Vertex{}))

// Equal compares all four attributes.
func (v Vertex) Equal(o Vertex) bool {
	return v.Pos == o.Pos && v.Color == o.Color && v.Normal == o.Normal && v.UV == o.UV
}

// DedupeVertices collapses equal vertices and returns the unique vertices in
// first-seen order with an index list that rebuilds the input.
func DedupeVertices(vertices []Vertex) ([]Vertex, []uint32) {
	seen := make(map[Vertex]uint32, len(vertices))
	unique := make([]Vertex, 0, len(vertices))
	indices := make([]uint32, 0, len(vertices))
	for _, v := range vertices {
		index, ok := seen[v]
		if !ok {
			index = uint32(len(unique))
			seen[v] = index
			unique = append(unique, v)
		}
		indices = append(indices, index)
	}
	return unique, indices
}
