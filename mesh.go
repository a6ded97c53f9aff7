package vkcore

// Renderable is anything the renderer can draw with one indexed draw call.
type Renderable interface {
	VertexBuffer() *Buffer
	IndexBuffer() *Buffer
	IndexCount() uint32
}

//Mesh owns the device local vertex and index buffers of one piece of geometry
type Mesh struct {
	vertices   *Buffer
	indices    *Buffer
	indexCount uint32
}

func NewMesh(core *Core, vertices []Vertex, indices []uint32) (*Mesh, error) {
	m := &Mesh{}
	if err := m.Load(core, vertices, indices); err != nil {
		return nil, err
	}
	return m, nil
}

// Load uploads geometry into a mesh that has no buffers yet. Loading twice is
// an error, Destroy the mesh first.
func (m *Mesh) Load(core *Core, vertices []Vertex, indices []uint32) error {
	if m.vertices != nil || m.indices != nil {
		return contractError("load mesh", ErrMeshLoaded)
	}
	vb, err := core.UploadVertices(vertices)
	if err != nil {
		return err
	}
	ib, err := core.UploadIndices(indices)
	if err != nil {
		vb.Destroy()
		return err
	}
	m.vertices, m.indices = vb, ib
	m.indexCount = uint32(len(indices))
	return nil
}

func (m *Mesh) VertexBuffer() *Buffer { return m.vertices }
func (m *Mesh) IndexBuffer() *Buffer  { return m.indices }
func (m *Mesh) IndexCount() uint32    { return m.indexCount }

func (m *Mesh) Destroy() {
	if m.vertices != nil {
		m.vertices.Destroy()
		m.vertices = nil
	}
	if m.indices != nil {
		m.indices.Destroy()
		m.indices = nil
	}
	m.indexCount = 0
}

// Material holds the textures a model samples.
type Material struct {
	Albedo *Image
}

func NewMaterialFromFile(core *Core, path string) (*Material, error) {
	texture, err := NewTexture2DFromFile(core, path)
	if err != nil {
		return nil, err
	}
	return &Material{Albedo: texture}, nil
}

func (m *Material) Destroy() {
	if m.Albedo != nil {
		m.Albedo.Destroy()
		m.Albedo = nil
	}
}

// Model is a mesh drawn with a material.
type Model struct {
	Mesh     *Mesh
	Material *Material
}

func (m *Model) VertexBuffer() *Buffer { return m.Mesh.VertexBuffer() }
func (m *Model) IndexBuffer() *Buffer  { return m.Mesh.IndexBuffer() }
func (m *Model) IndexCount() uint32    { return m.Mesh.IndexCount() }

func (m *Model) Destroy() {
	if m.Mesh != nil {
		m.Mesh.Destroy()
	}
	if m.Material != nil {
		m.Material.Destroy()
	}
}
