package scene

import "github.com/Faultbox/etcalpha/internal/engine/texture"

// Program identifies a linked shader program. Zero is never valid.
type Program uint32

// Geometry identifies vertex data uploaded by CreateQuad. Zero is never
// valid.
type Geometry uint32

// Device is the graphics API surface the sample drives. The desktop
// renderer and the mobile GLES context both implement it.
type Device interface {
	texture.Uploader

	// ActiveTexture selects the texture unit later binds apply to.
	ActiveTexture(unit int)
	// EnableBlending turns on src*srcAlpha + dst*(1-srcAlpha) blending.
	EnableBlending()

	// CompileProgram compiles and links a vertex/fragment pair.
	CompileProgram(vertexSrc, fragmentSrc string) (Program, error)
	UseProgram(p Program)
	DeleteProgram(p Program)
	// AttribLocation and UniformLocation return -1 for names the linked
	// program does not use.
	AttribLocation(p Program, name string) int32
	UniformLocation(p Program, name string) int32
	// Uniform1i sets an int (sampler) uniform of the program in use.
	Uniform1i(location int32, v int)

	ClearColor(r, g, b, a float32)
	// Clear clears the color and depth buffers.
	Clear()
	Viewport(width, height int)

	// CreateQuad uploads q and binds its positions to the position
	// attribute and, unless texCoord is -1, its coordinates to texCoord.
	CreateQuad(q *Quad, position, texCoord int32) (Geometry, error)
	// DrawQuad draws g as an indexed triangle strip.
	DrawQuad(g Geometry)
	DeleteGeometry(g Geometry)
}

// Quad is the indexed triangle strip the textures are drawn on.
type Quad struct {
	Positions []float32 // x, y, z per vertex
	TexCoords []float32 // s, t per vertex
	Indices   []uint8
}

// VertexCount returns the number of vertices in q.
func (q *Quad) VertexCount() int {
	return len(q.Positions) / 3
}

// FullscreenQuad covers the viewport. Texture row 0 maps to the top edge.
func FullscreenQuad() *Quad {
	return &Quad{
		Positions: []float32{
			-1, -1, 0,
			1, -1, 0,
			-1, 1, 0,
			1, 1, 0,
		},
		TexCoords: []float32{
			0, 1,
			1, 1,
			0, 0,
			1, 0,
		},
		Indices: []uint8{0, 1, 2, 3},
	}
}
