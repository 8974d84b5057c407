package scene_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/etcalpha/internal/engine/scene"
	"github.com/Faultbox/etcalpha/internal/engine/texture/texturetest"
)

// fakeDevice is a scene.Device recording every call into the embedded
// Recorder's log.
type fakeDevice struct {
	*texturetest.Recorder

	attribs  map[string]int32
	uniforms map[string]int32

	compileErr error
	quadErr    error

	programs    map[scene.Program]bool
	nextProgram scene.Program
	quads       map[scene.Geometry]bool
	nextQuad    scene.Geometry

	uniformValues map[int32]int
	vertexSrc     string
	fragmentSrc   string
	clearColor    [4]float32
	viewport      [2]int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		Recorder: texturetest.NewRecorder(),
		attribs: map[string]int32{
			scene.AttribPosition: 0,
			scene.AttribTexCoord: 1,
		},
		uniforms: map[string]int32{
			scene.UniformTexture: 3,
			scene.UniformAlpha:   4,
		},
		programs:      make(map[scene.Program]bool),
		quads:         make(map[scene.Geometry]bool),
		uniformValues: make(map[int32]int),
	}
}

func (d *fakeDevice) ActiveTexture(unit int) {
	d.Record(texturetest.Call{Op: "ActiveTexture", Arg: unit})
}

func (d *fakeDevice) EnableBlending() {
	d.Record(texturetest.Call{Op: "EnableBlending"})
}

func (d *fakeDevice) CompileProgram(vertexSrc, fragmentSrc string) (scene.Program, error) {
	d.Record(texturetest.Call{Op: "CompileProgram"})
	if d.compileErr != nil {
		return 0, d.compileErr
	}
	d.vertexSrc, d.fragmentSrc = vertexSrc, fragmentSrc
	d.nextProgram++
	d.programs[d.nextProgram] = true
	return d.nextProgram, nil
}

func (d *fakeDevice) UseProgram(p scene.Program) {
	d.Record(texturetest.Call{Op: "UseProgram", Arg: int(p)})
}

func (d *fakeDevice) DeleteProgram(p scene.Program) {
	delete(d.programs, p)
	d.Record(texturetest.Call{Op: "DeleteProgram", Arg: int(p)})
}

func (d *fakeDevice) AttribLocation(p scene.Program, name string) int32 {
	if loc, ok := d.attribs[name]; ok {
		return loc
	}
	return -1
}

func (d *fakeDevice) UniformLocation(p scene.Program, name string) int32 {
	if loc, ok := d.uniforms[name]; ok {
		return loc
	}
	return -1
}

func (d *fakeDevice) Uniform1i(location int32, v int) {
	d.uniformValues[location] = v
	d.Record(texturetest.Call{Op: "Uniform1i", Arg: v})
}

func (d *fakeDevice) ClearColor(r, g, b, a float32) {
	d.clearColor = [4]float32{r, g, b, a}
	d.Record(texturetest.Call{Op: "ClearColor"})
}

func (d *fakeDevice) Clear() {
	d.Record(texturetest.Call{Op: "Clear"})
}

func (d *fakeDevice) Viewport(width, height int) {
	d.viewport = [2]int{width, height}
	d.Record(texturetest.Call{Op: "Viewport", Width: width, Height: height})
}

func (d *fakeDevice) CreateQuad(q *scene.Quad, position, texCoord int32) (scene.Geometry, error) {
	d.Record(texturetest.Call{Op: "CreateQuad", Arg: int(texCoord)})
	if d.quadErr != nil {
		return 0, d.quadErr
	}
	d.nextQuad++
	d.quads[d.nextQuad] = true
	return d.nextQuad, nil
}

func (d *fakeDevice) DrawQuad(g scene.Geometry) {
	d.Record(texturetest.Call{Op: "DrawQuad", Arg: int(g)})
}

func (d *fakeDevice) DeleteGeometry(g scene.Geometry) {
	delete(d.quads, g)
	d.Record(texturetest.Call{Op: "DeleteGeometry", Arg: int(g)})
}

// indexOf returns the position of the first call named op with the given
// Arg, or -1.
func (d *fakeDevice) indexOf(op string, arg int) int {
	for i, c := range d.Calls {
		if c.Op == op && c.Arg == arg {
			return i
		}
	}
	return -1
}

const testVertexShader = `attribute vec4 a_v4Position;
attribute vec2 a_v2TexCoord;
varying vec2 v_v2TexCoord;
void main() { v_v2TexCoord = a_v2TexCoord; gl_Position = a_v4Position; }
`

const testFragmentShader = `precision mediump float;
uniform sampler2D u_s2dTexture;
uniform sampler2D u_s2dAlpha;
varying vec2 v_v2TexCoord;
void main() {
    gl_FragColor = vec4(texture2D(u_s2dTexture, v_v2TexCoord).rgb, texture2D(u_s2dAlpha, v_v2TexCoord).r);
}
`

// writeResources lays out a complete resource directory: a 16x16 RGB
// chain of five levels, its alpha image and both shaders.
func writeResources(t *testing.T) scene.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := scene.Config{
		ResourceDir:    dir,
		TexturePrefix:  "good_uncompressed_mip_",
		ImageExt:       ".pkm",
		AlphaExt:       "_alpha.pgm",
		MipLevels:      9,
		VertexShader:   "ETCUncompressedAlpha_dualtex.vert",
		FragmentShader: "ETCUncompressedAlpha_dualtex.frag",
		ClearColor:     [4]float32{0.125, 0.25, 0.5, 1.0},
	}

	if err := texturetest.WriteMipChain(cfg.TexturePath(), cfg.ImageExt, 16, 16, 5); err != nil {
		t.Fatalf("failed to write mip chain: %v", err)
	}
	if err := texturetest.WriteAlpha(filepath.Join(dir, cfg.AlphaName()), 16, 16, 200); err != nil {
		t.Fatalf("failed to write alpha: %v", err)
	}
	writeShaders(t, cfg, testVertexShader, testFragmentShader)
	return cfg
}

func writeShaders(t *testing.T, cfg scene.Config, vertex, fragment string) {
	t.Helper()
	if err := os.WriteFile(cfg.VertexPath(), []byte(vertex), 0644); err != nil {
		t.Fatalf("failed to write vertex shader: %v", err)
	}
	if err := os.WriteFile(cfg.FragmentPath(), []byte(fragment), 0644); err != nil {
		t.Fatalf("failed to write fragment shader: %v", err)
	}
}

var errBoom = errors.New("boom")
