// Package scene sets up and draws the ETC1 + separate alpha sample: an
// ETC1 mip chain on texture unit 0, an uncompressed alpha image on unit 1,
// merged by the fragment shader over a blended quad.
package scene

import (
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/etcalpha/internal/config"
	"github.com/Faultbox/etcalpha/internal/engine/shader"
	"github.com/Faultbox/etcalpha/internal/engine/texture"
	"github.com/Faultbox/etcalpha/internal/logger"
)

// Attribute and uniform names the shaders must use.
const (
	AttribPosition = "a_v4Position"
	AttribTexCoord = "a_v2TexCoord"
	UniformTexture = "u_s2dTexture"
	UniformAlpha   = "u_s2dAlpha"
)

// Texture units of the two images.
const (
	TextureUnitRGB   = 0
	TextureUnitAlpha = 1
)

// Setup errors.
var (
	ErrETCUnsupported   = errors.New("ETC1 not supported")
	ErrMissingAttribute = errors.New("attribute not found")
	ErrMissingUniform   = errors.New("uniform not found")
)

// Config names the sample's assets and fixed render state.
type Config struct {
	ResourceDir    string
	TexturePrefix  string
	ImageExt       string
	AlphaExt       string
	MipLevels      int
	VertexShader   string
	FragmentShader string
	ClearColor     [4]float32
	ETCFallback    bool
}

// FromConfig converts the sample section of the application config.
func FromConfig(c config.SampleConfig) Config {
	return Config{
		ResourceDir:    c.ResourceDir,
		TexturePrefix:  c.TexturePrefix,
		ImageExt:       c.ImageExt,
		AlphaExt:       c.AlphaExt,
		MipLevels:      c.MipLevels,
		VertexShader:   c.VertexShader,
		FragmentShader: c.FragmentShader,
		ClearColor:     c.ClearColor,
		ETCFallback:    c.ETCFallback,
	}
}

// TexturePath returns the path prefix of the RGB mip chain files.
func (c Config) TexturePath() string {
	return filepath.Join(c.ResourceDir, c.TexturePrefix)
}

// AlphaName returns the file name of the level 0 alpha image.
func (c Config) AlphaName() string {
	return texture.MipPath(c.TexturePrefix, 0, c.AlphaExt)
}

// VertexPath returns the path of the vertex shader.
func (c Config) VertexPath() string {
	return filepath.Join(c.ResourceDir, c.VertexShader)
}

// FragmentPath returns the path of the fragment shader.
func (c Config) FragmentPath() string {
	return filepath.Join(c.ResourceDir, c.FragmentShader)
}

// bindings are the resolved locations of one linked program. -1 marks an
// optional binding the program does not use.
type bindings struct {
	position     int32
	texCoord     int32
	sampler      int32
	alphaSampler int32
}

// Scene owns every GPU object of the sample. The zero handles mark objects
// not created yet or already released.
type Scene struct {
	dev Device
	cfg Config

	rgb     texture.Handle
	alpha   texture.Handle
	program Program
	quad    Geometry
	locs    bindings
}

// Setup builds the scene in the order the sample always has: check ETC1
// support, enable blending, load the RGB chain on unit 0 and the alpha
// image on unit 1, build the program and its bindings, set the clear color
// and upload the quad. On failure everything created so far is released.
func Setup(dev Device, cfg Config) (*Scene, error) {
	log := logger.Named("scene")

	if !dev.SupportsCompressed(texture.FormatETC1) {
		if !cfg.ETCFallback {
			return nil, ErrETCUnsupported
		}
		log.Warn("ETC1 not supported by device, decoding on the CPU")
	}

	s := &Scene{dev: dev, cfg: cfg}

	dev.EnableBlending()

	dev.ActiveTexture(TextureUnitRGB)
	rgb, err := texture.LoadCompressedMipmaps(dev, cfg.TexturePath(), cfg.ImageExt, texture.MipmapOptions{
		MaxLevels:      cfg.MipLevels,
		DecodeFallback: cfg.ETCFallback,
	})
	if err != nil {
		if errors.Is(err, texture.ErrCompressedUnsupported) {
			err = fmt.Errorf("%w: %w", ErrETCUnsupported, err)
		}
		return nil, fmt.Errorf("loading RGB texture: %w", err)
	}
	s.rgb = rgb

	// Only level 0 of the alpha image ships; the device derives the rest.
	dev.ActiveTexture(TextureUnitAlpha)
	alpha, err := texture.LoadAlpha(dev, filepath.Join(cfg.ResourceDir, cfg.AlphaName()))
	if err != nil {
		s.Close()
		return nil, err
	}
	s.alpha = alpha

	program, locs, err := s.buildProgram()
	if err != nil {
		s.Close()
		return nil, err
	}
	s.program, s.locs = program, locs

	c := cfg.ClearColor
	dev.ClearColor(c[0], c[1], c[2], c[3])

	quad, err := dev.CreateQuad(FullscreenQuad(), locs.position, locs.texCoord)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating quad: %w", err)
	}
	s.quad = quad

	log.Debug("scene ready",
		zap.Uint32("rgb", uint32(s.rgb)),
		zap.Uint32("alpha", uint32(s.alpha)),
		zap.Uint32("program", uint32(s.program)),
	)
	return s, nil
}

// buildProgram reads, compiles and binds the shader pair. The new program
// is left in use.
func (s *Scene) buildProgram() (Program, bindings, error) {
	vertexSrc, err := shader.LoadSource(s.cfg.VertexPath())
	if err != nil {
		return 0, bindings{}, err
	}
	fragmentSrc, err := shader.LoadSource(s.cfg.FragmentPath())
	if err != nil {
		return 0, bindings{}, err
	}

	p, err := s.dev.CompileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return 0, bindings{}, fmt.Errorf("building program: %w", err)
	}
	s.dev.UseProgram(p)

	locs, err := resolveBindings(s.dev, p)
	if err != nil {
		s.dev.DeleteProgram(p)
		return 0, bindings{}, err
	}
	return p, locs, nil
}

// resolveBindings looks up the program's inputs and points the samplers
// at their texture units. p must be in use.
func resolveBindings(dev Device, p Program) (bindings, error) {
	log := logger.Named("scene")
	var b bindings

	b.position = dev.AttribLocation(p, AttribPosition)
	if b.position < 0 {
		return b, fmt.Errorf("%w: %q", ErrMissingAttribute, AttribPosition)
	}

	b.texCoord = dev.AttribLocation(p, AttribTexCoord)
	if b.texCoord < 0 {
		log.Warn("attribute not found", zap.String("name", AttribTexCoord))
	}

	b.sampler = dev.UniformLocation(p, UniformTexture)
	if b.sampler < 0 {
		log.Warn("uniform not found", zap.String("name", UniformTexture))
	} else {
		dev.Uniform1i(b.sampler, TextureUnitRGB)
	}

	b.alphaSampler = dev.UniformLocation(p, UniformAlpha)
	if b.alphaSampler < 0 {
		return b, fmt.Errorf("%w: %q", ErrMissingUniform, UniformAlpha)
	}
	dev.Uniform1i(b.alphaSampler, TextureUnitAlpha)

	return b, nil
}

// Render draws one frame.
func (s *Scene) Render() {
	d := s.dev
	d.Clear()
	d.UseProgram(s.program)

	d.ActiveTexture(TextureUnitRGB)
	d.BindTexture(s.rgb)
	d.ActiveTexture(TextureUnitAlpha)
	d.BindTexture(s.alpha)

	d.DrawQuad(s.quad)
}

// Resize updates the viewport.
func (s *Scene) Resize(width, height int) {
	s.dev.Viewport(width, height)
}

// ReloadProgram rebuilds the program from the shader files. The running
// program and quad are replaced only when the new ones are complete.
func (s *Scene) ReloadProgram() error {
	program, locs, err := s.buildProgram()
	if err != nil {
		s.dev.UseProgram(s.program)
		return err
	}

	quad, err := s.dev.CreateQuad(FullscreenQuad(), locs.position, locs.texCoord)
	if err != nil {
		s.dev.DeleteProgram(program)
		s.dev.UseProgram(s.program)
		return fmt.Errorf("creating quad: %w", err)
	}

	s.dev.DeleteGeometry(s.quad)
	s.dev.DeleteProgram(s.program)
	s.program, s.locs, s.quad = program, locs, quad

	logger.Named("scene").Info("shaders reloaded", zap.Uint32("program", uint32(program)))
	return nil
}

// HasTexCoords reports whether the program reads texture coordinates.
func (s *Scene) HasTexCoords() bool {
	return s.locs.texCoord >= 0
}

// Close releases every GPU object. It is safe to call more than once.
func (s *Scene) Close() {
	d := s.dev
	if s.quad != 0 {
		d.DeleteGeometry(s.quad)
		s.quad = 0
	}
	if s.program != 0 {
		d.DeleteProgram(s.program)
		s.program = 0
	}
	if s.alpha != 0 {
		d.DeleteTexture(s.alpha)
		s.alpha = 0
	}
	if s.rgb != 0 {
		d.DeleteTexture(s.rgb)
		s.rgb = 0
	}
}
