// Package renderer implements the sample's graphics device on desktop
// OpenGL 4.1 core.
package renderer

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"go.uber.org/zap"

	"github.com/Faultbox/etcalpha/internal/engine/scene"
	"github.com/Faultbox/etcalpha/internal/engine/texture"
	"github.com/Faultbox/etcalpha/internal/logger"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// compressedRGB8ETC2 is GL_COMPRESSED_RGB8_ETC2 (GL 4.3, ARB_ES3_compatibility).
// ETC1 blocks are valid ETC2 RGB8 blocks.
const compressedRGB8ETC2 = 0x9274

// maxLevelUnset is the GL default of TEXTURE_MAX_LEVEL.
const maxLevelUnset = 1000

// ErrGL is wrapped around glGetError codes.
var ErrGL = errors.New("OpenGL error")

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

type quadBuffers struct {
	vao        uint32
	positions  uint32
	texCoords  uint32
	indices    uint32
	indexCount int32
}

// Renderer implements scene.Device on the current OpenGL context.
type Renderer struct {
	config Config
	etc2   bool

	quads    map[scene.Geometry]*quadBuffers
	nextQuad scene.Geometry
}

var _ scene.Device = (*Renderer)(nil)

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		quads:  make(map[scene.Geometry]*quadBuffers),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	r.etc2 = hasETC2(version)
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
		zap.Bool("etc2", r.etc2),
	)

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	return r, nil
}

// hasETC2 reports whether the context samples ETC2 RGB8 natively.
func hasETC2(version string) bool {
	var major, minor int
	if _, err := fmt.Sscanf(version, "%d.%d", &major, &minor); err == nil {
		if major > 4 || (major == 4 && minor >= 3) {
			return true
		}
	}

	var n int32
	gl.GetIntegerv(gl.NUM_EXTENSIONS, &n)
	for i := int32(0); i < n; i++ {
		ext := gl.GoStr(gl.GetStringi(gl.EXTENSIONS, uint32(i)))
		if ext == "GL_ARB_ES3_compatibility" {
			return true
		}
	}
	return false
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	for g := range r.quads {
		r.DeleteGeometry(g)
	}
}

// Viewport handles window resize.
func (r *Renderer) Viewport(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("viewport resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// CreateTexture implements texture.Uploader.
func (r *Renderer) CreateTexture() (texture.Handle, error) {
	var id uint32
	gl.GenTextures(1, &id)
	if id == 0 {
		return 0, fmt.Errorf("%w: glGenTextures returned 0", ErrGL)
	}

	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	return texture.Handle(id), nil
}

// BindTexture implements texture.Uploader.
func (r *Renderer) BindTexture(h texture.Handle) {
	gl.BindTexture(gl.TEXTURE_2D, uint32(h))
}

// UploadImage2D implements texture.Uploader. Luminance is stored as R8
// swizzled to (r, r, r, 1), which samples like GLES LUMINANCE.
func (r *Renderer) UploadImage2D(h texture.Handle, level, width, height int, format texture.PixelFormat, data []byte) error {
	if want := width * height * format.BytesPerPixel(); len(data) != want || want == 0 {
		return fmt.Errorf("upload of %dx%d %s: %d bytes, expected %d", width, height, format, len(data), want)
	}

	gl.BindTexture(gl.TEXTURE_2D, uint32(h))
	switch format {
	case texture.FormatLuminance:
		gl.TexImage2D(gl.TEXTURE_2D, int32(level), gl.R8, int32(width), int32(height), 0,
			gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(data))
		swizzle := [4]int32{gl.RED, gl.RED, gl.RED, gl.ONE}
		gl.TexParameteriv(gl.TEXTURE_2D, gl.TEXTURE_SWIZZLE_RGBA, &swizzle[0])
	case texture.FormatRGBA:
		gl.TexImage2D(gl.TEXTURE_2D, int32(level), gl.RGBA8, int32(width), int32(height), 0,
			gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(data))
	default:
		return fmt.Errorf("unsupported pixel format %s", format)
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAX_LEVEL, int32(level))
	return checkError("glTexImage2D")
}

// UploadCompressed2D implements texture.Uploader.
func (r *Renderer) UploadCompressed2D(h texture.Handle, level, width, height int, format texture.CompressedFormat, data []byte) error {
	if format != texture.FormatETC1 || !r.etc2 {
		return fmt.Errorf("%w: %s", texture.ErrCompressedUnsupported, format)
	}

	gl.BindTexture(gl.TEXTURE_2D, uint32(h))
	gl.CompressedTexImage2D(gl.TEXTURE_2D, int32(level), compressedRGB8ETC2,
		int32(width), int32(height), 0, int32(len(data)), gl.Ptr(data))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAX_LEVEL, int32(level))
	return checkError("glCompressedTexImage2D")
}

// GenerateMipmaps implements texture.Uploader.
func (r *Renderer) GenerateMipmaps(h texture.Handle) error {
	gl.BindTexture(gl.TEXTURE_2D, uint32(h))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAX_LEVEL, maxLevelUnset)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	return checkError("glGenerateMipmap")
}

// DeleteTexture implements texture.Uploader.
func (r *Renderer) DeleteTexture(h texture.Handle) {
	id := uint32(h)
	gl.DeleteTextures(1, &id)
}

// SupportsCompressed implements texture.Uploader.
func (r *Renderer) SupportsCompressed(format texture.CompressedFormat) bool {
	return format == texture.FormatETC1 && r.etc2
}

// ActiveTexture implements scene.Device.
func (r *Renderer) ActiveTexture(unit int) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
}

// EnableBlending implements scene.Device.
func (r *Renderer) EnableBlending() {
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
}

// CompileProgram implements scene.Device.
func (r *Renderer) CompileProgram(vertexSrc, fragmentSrc string) (scene.Program, error) {
	p, err := compileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return 0, err
	}
	logger.Debug("shader program created", zap.Uint32("program", p))
	return scene.Program(p), nil
}

// UseProgram implements scene.Device.
func (r *Renderer) UseProgram(p scene.Program) {
	gl.UseProgram(uint32(p))
}

// DeleteProgram implements scene.Device.
func (r *Renderer) DeleteProgram(p scene.Program) {
	gl.DeleteProgram(uint32(p))
}

// AttribLocation implements scene.Device.
func (r *Renderer) AttribLocation(p scene.Program, name string) int32 {
	return gl.GetAttribLocation(uint32(p), gl.Str(name+"\x00"))
}

// UniformLocation implements scene.Device.
func (r *Renderer) UniformLocation(p scene.Program, name string) int32 {
	return gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00"))
}

// Uniform1i implements scene.Device.
func (r *Renderer) Uniform1i(location int32, v int) {
	gl.Uniform1i(location, int32(v))
}

// ClearColor implements scene.Device.
func (r *Renderer) ClearColor(red, green, blue, alpha float32) {
	gl.ClearColor(red, green, blue, alpha)
}

// Clear implements scene.Device.
func (r *Renderer) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// CreateQuad implements scene.Device.
func (r *Renderer) CreateQuad(q *scene.Quad, position, texCoord int32) (scene.Geometry, error) {
	if position < 0 {
		return 0, fmt.Errorf("invalid position attribute %d", position)
	}

	b := &quadBuffers{indexCount: int32(len(q.Indices))}

	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)

	gl.GenBuffers(1, &b.positions)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.positions)
	gl.BufferData(gl.ARRAY_BUFFER, len(q.Positions)*4, unsafe.Pointer(&q.Positions[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointer(uint32(position), 3, gl.FLOAT, false, 0, nil)
	gl.EnableVertexAttribArray(uint32(position))

	if texCoord >= 0 && len(q.TexCoords) > 0 {
		gl.GenBuffers(1, &b.texCoords)
		gl.BindBuffer(gl.ARRAY_BUFFER, b.texCoords)
		gl.BufferData(gl.ARRAY_BUFFER, len(q.TexCoords)*4, unsafe.Pointer(&q.TexCoords[0]), gl.STATIC_DRAW)
		gl.VertexAttribPointer(uint32(texCoord), 2, gl.FLOAT, false, 0, nil)
		gl.EnableVertexAttribArray(uint32(texCoord))
	}

	gl.GenBuffers(1, &b.indices)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.indices)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(q.Indices), unsafe.Pointer(&q.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if err := checkError("creating quad"); err != nil {
		r.deleteBuffers(b)
		return 0, err
	}

	r.nextQuad++
	r.quads[r.nextQuad] = b
	logger.Debug("quad created",
		zap.Uint32("vao", b.vao),
		zap.Int("vertices", q.VertexCount()),
	)
	return r.nextQuad, nil
}

// DrawQuad implements scene.Device.
func (r *Renderer) DrawQuad(g scene.Geometry) {
	b, ok := r.quads[g]
	if !ok {
		return
	}
	gl.BindVertexArray(b.vao)
	gl.DrawElements(gl.TRIANGLE_STRIP, b.indexCount, gl.UNSIGNED_BYTE, nil)
	gl.BindVertexArray(0)
}

// DeleteGeometry implements scene.Device.
func (r *Renderer) DeleteGeometry(g scene.Geometry) {
	if b, ok := r.quads[g]; ok {
		r.deleteBuffers(b)
		delete(r.quads, g)
	}
}

func (r *Renderer) deleteBuffers(b *quadBuffers) {
	for _, buf := range []uint32{b.positions, b.texCoords, b.indices} {
		if buf != 0 {
			gl.DeleteBuffers(1, &buf)
		}
	}
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
	}
}

// checkError drains glGetError.
func checkError(op string) error {
	var codes []string
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		codes = append(codes, fmt.Sprintf("0x%04x", code))
	}
	if len(codes) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s: %s", ErrGL, op, strings.Join(codes, ", "))
}
