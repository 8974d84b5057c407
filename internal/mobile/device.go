// Package mobile implements the sample's graphics device and asset source
// on golang.org/x/mobile (OpenGL ES 2.0, Android assets).
package mobile

import (
	"encoding/binary"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/mobile/exp/f32"
	"golang.org/x/mobile/exp/gl/glutil"
	"golang.org/x/mobile/gl"

	"github.com/Faultbox/etcalpha/internal/engine/scene"
	"github.com/Faultbox/etcalpha/internal/engine/texture"
	"github.com/Faultbox/etcalpha/internal/logger"
)

// etc1RGB8OES is GL_ETC1_RGB8_OES from OES_compressed_ETC1_RGB8_texture.
const etc1RGB8OES = 0x8D64

const etc1Extension = "GL_OES_compressed_ETC1_RGB8_texture"

// quadBuffers holds one quad. GLES 2.0 has no vertex array objects, so the
// attribute pointers are set again on every draw.
type quadBuffers struct {
	positions  gl.Buffer
	texCoords  gl.Buffer
	indices    gl.Buffer
	indexCount int
	position   gl.Attrib
	texCoord   gl.Attrib
	hasTex     bool
}

// Device implements scene.Device on an x/mobile GL context.
type Device struct {
	ctx  gl.Context
	etc1 bool
	log  *zap.Logger

	programs    map[scene.Program]gl.Program
	nextProgram scene.Program
	quads       map[scene.Geometry]*quadBuffers
	nextQuad    scene.Geometry
}

var _ scene.Device = (*Device)(nil)

// NewDevice wraps ctx, which must stay current for the Device's lifetime.
func NewDevice(ctx gl.Context) *Device {
	d := &Device{
		ctx:      ctx,
		log:      logger.Named("gles"),
		programs: make(map[scene.Program]gl.Program),
		quads:    make(map[scene.Geometry]*quadBuffers),
	}

	exts := ctx.GetString(gl.EXTENSIONS)
	d.etc1 = hasExtension(exts, etc1Extension)
	d.log.Info("OpenGL ES initialized",
		zap.String("version", ctx.GetString(gl.VERSION)),
		zap.String("renderer", ctx.GetString(gl.RENDERER)),
		zap.Bool("etc1", d.etc1),
	)

	ctx.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	return d
}

func hasExtension(list, name string) bool {
	for _, ext := range strings.Fields(list) {
		if ext == name {
			return true
		}
	}
	return false
}

// Release deletes every program and quad still alive.
func (d *Device) Release() {
	for g := range d.quads {
		d.DeleteGeometry(g)
	}
	for p := range d.programs {
		d.DeleteProgram(p)
	}
}

// CreateTexture implements texture.Uploader.
func (d *Device) CreateTexture() (texture.Handle, error) {
	t := d.ctx.CreateTexture()
	if t.Value == 0 {
		return 0, fmt.Errorf("glGenTextures returned 0")
	}
	d.ctx.BindTexture(gl.TEXTURE_2D, t)
	d.ctx.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_NEAREST)
	d.ctx.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	d.ctx.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	d.ctx.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	return texture.Handle(t.Value), nil
}

// BindTexture implements texture.Uploader.
func (d *Device) BindTexture(h texture.Handle) {
	d.ctx.BindTexture(gl.TEXTURE_2D, gl.Texture{Value: uint32(h)})
}

// UploadImage2D implements texture.Uploader.
func (d *Device) UploadImage2D(h texture.Handle, level, width, height int, format texture.PixelFormat, data []byte) error {
	if want := width * height * format.BytesPerPixel(); len(data) != want || want == 0 {
		return fmt.Errorf("upload of %dx%d %s: %d bytes, expected %d", width, height, format, len(data), want)
	}

	var glFormat gl.Enum
	switch format {
	case texture.FormatLuminance:
		glFormat = gl.LUMINANCE
	case texture.FormatRGBA:
		glFormat = gl.RGBA
	default:
		return fmt.Errorf("unsupported pixel format %s", format)
	}

	d.BindTexture(h)
	d.ctx.TexImage2D(gl.TEXTURE_2D, level, int(glFormat), width, height, glFormat, gl.UNSIGNED_BYTE, data)
	return d.checkError("glTexImage2D")
}

// UploadCompressed2D implements texture.Uploader.
func (d *Device) UploadCompressed2D(h texture.Handle, level, width, height int, format texture.CompressedFormat, data []byte) error {
	if format != texture.FormatETC1 || !d.etc1 {
		return fmt.Errorf("%w: %s", texture.ErrCompressedUnsupported, format)
	}
	d.BindTexture(h)
	d.ctx.CompressedTexImage2D(gl.TEXTURE_2D, level, etc1RGB8OES, width, height, 0, data)
	return d.checkError("glCompressedTexImage2D")
}

// GenerateMipmaps implements texture.Uploader.
func (d *Device) GenerateMipmaps(h texture.Handle) error {
	d.BindTexture(h)
	d.ctx.GenerateMipmap(gl.TEXTURE_2D)
	return d.checkError("glGenerateMipmap")
}

// DeleteTexture implements texture.Uploader.
func (d *Device) DeleteTexture(h texture.Handle) {
	d.ctx.DeleteTexture(gl.Texture{Value: uint32(h)})
}

// SupportsCompressed implements texture.Uploader.
func (d *Device) SupportsCompressed(format texture.CompressedFormat) bool {
	return format == texture.FormatETC1 && d.etc1
}

// ActiveTexture implements scene.Device.
func (d *Device) ActiveTexture(unit int) {
	d.ctx.ActiveTexture(gl.TEXTURE0 + gl.Enum(unit))
}

// EnableBlending implements scene.Device.
func (d *Device) EnableBlending() {
	d.ctx.Enable(gl.BLEND)
	d.ctx.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
}

// CompileProgram implements scene.Device.
func (d *Device) CompileProgram(vertexSrc, fragmentSrc string) (scene.Program, error) {
	p, err := glutil.CreateProgram(d.ctx, vertexSrc, fragmentSrc)
	if err != nil {
		return 0, err
	}
	d.nextProgram++
	d.programs[d.nextProgram] = p
	d.log.Debug("shader program created", zap.Uint32("program", p.Value))
	return d.nextProgram, nil
}

// UseProgram implements scene.Device.
func (d *Device) UseProgram(p scene.Program) {
	if prog, ok := d.programs[p]; ok {
		d.ctx.UseProgram(prog)
	}
}

// DeleteProgram implements scene.Device.
func (d *Device) DeleteProgram(p scene.Program) {
	if prog, ok := d.programs[p]; ok {
		d.ctx.DeleteProgram(prog)
		delete(d.programs, p)
	}
}

// AttribLocation implements scene.Device.
func (d *Device) AttribLocation(p scene.Program, name string) int32 {
	prog, ok := d.programs[p]
	if !ok {
		return -1
	}
	// GetAttribLocation returns -1 reinterpreted as unsigned.
	return int32(d.ctx.GetAttribLocation(prog, name).Value)
}

// UniformLocation implements scene.Device.
func (d *Device) UniformLocation(p scene.Program, name string) int32 {
	prog, ok := d.programs[p]
	if !ok {
		return -1
	}
	return d.ctx.GetUniformLocation(prog, name).Value
}

// Uniform1i implements scene.Device.
func (d *Device) Uniform1i(location int32, v int) {
	d.ctx.Uniform1i(gl.Uniform{Value: location}, v)
}

// ClearColor implements scene.Device.
func (d *Device) ClearColor(r, g, b, a float32) {
	d.ctx.ClearColor(r, g, b, a)
}

// Clear implements scene.Device.
func (d *Device) Clear() {
	d.ctx.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Viewport implements scene.Device.
func (d *Device) Viewport(width, height int) {
	d.ctx.Viewport(0, 0, width, height)
}

// CreateQuad implements scene.Device.
func (d *Device) CreateQuad(q *scene.Quad, position, texCoord int32) (scene.Geometry, error) {
	if position < 0 {
		return 0, fmt.Errorf("invalid position attribute %d", position)
	}

	b := &quadBuffers{
		indexCount: len(q.Indices),
		position:   gl.Attrib{Value: uint(position)},
	}

	b.positions = d.ctx.CreateBuffer()
	d.ctx.BindBuffer(gl.ARRAY_BUFFER, b.positions)
	d.ctx.BufferData(gl.ARRAY_BUFFER, f32.Bytes(binary.LittleEndian, q.Positions...), gl.STATIC_DRAW)

	if texCoord >= 0 && len(q.TexCoords) > 0 {
		b.hasTex = true
		b.texCoord = gl.Attrib{Value: uint(texCoord)}
		b.texCoords = d.ctx.CreateBuffer()
		d.ctx.BindBuffer(gl.ARRAY_BUFFER, b.texCoords)
		d.ctx.BufferData(gl.ARRAY_BUFFER, f32.Bytes(binary.LittleEndian, q.TexCoords...), gl.STATIC_DRAW)
	}

	b.indices = d.ctx.CreateBuffer()
	d.ctx.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.indices)
	d.ctx.BufferData(gl.ELEMENT_ARRAY_BUFFER, q.Indices, gl.STATIC_DRAW)

	if err := d.checkError("creating quad"); err != nil {
		d.deleteBuffers(b)
		return 0, err
	}

	d.nextQuad++
	d.quads[d.nextQuad] = b
	return d.nextQuad, nil
}

// DrawQuad implements scene.Device.
func (d *Device) DrawQuad(g scene.Geometry) {
	b, ok := d.quads[g]
	if !ok {
		return
	}

	d.ctx.BindBuffer(gl.ARRAY_BUFFER, b.positions)
	d.ctx.VertexAttribPointer(b.position, 3, gl.FLOAT, false, 0, 0)
	d.ctx.EnableVertexAttribArray(b.position)

	if b.hasTex {
		d.ctx.BindBuffer(gl.ARRAY_BUFFER, b.texCoords)
		d.ctx.VertexAttribPointer(b.texCoord, 2, gl.FLOAT, false, 0, 0)
		d.ctx.EnableVertexAttribArray(b.texCoord)
	}

	d.ctx.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.indices)
	d.ctx.DrawElements(gl.TRIANGLE_STRIP, b.indexCount, gl.UNSIGNED_BYTE, 0)
}

// DeleteGeometry implements scene.Device.
func (d *Device) DeleteGeometry(g scene.Geometry) {
	if b, ok := d.quads[g]; ok {
		d.deleteBuffers(b)
		delete(d.quads, g)
	}
}

func (d *Device) deleteBuffers(b *quadBuffers) {
	d.ctx.DeleteBuffer(b.positions)
	if b.hasTex {
		d.ctx.DeleteBuffer(b.texCoords)
	}
	d.ctx.DeleteBuffer(b.indices)
}

// checkError drains glGetError.
func (d *Device) checkError(op string) error {
	var codes []string
	for code := d.ctx.GetError(); code != gl.NO_ERROR; code = d.ctx.GetError() {
		codes = append(codes, fmt.Sprintf("0x%04x", uint32(code)))
	}
	if len(codes) == 0 {
		return nil
	}
	return fmt.Errorf("OpenGL ES error: %s: %s", op, strings.Join(codes, ", "))
}
