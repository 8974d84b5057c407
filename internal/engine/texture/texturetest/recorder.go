// Package texturetest provides a recording texture.Uploader for tests.
package texturetest

import (
	"fmt"

	"github.com/Faultbox/etcalpha/internal/engine/texture"
)

// Call is one recorded Uploader invocation.
type Call struct {
	Op         string
	Handle     texture.Handle
	Level      int
	Width      int
	Height     int
	Format     texture.PixelFormat
	Compressed texture.CompressedFormat
	Data       []byte

	// Arg and Name carry the arguments of calls recorded through Record.
	Arg  int
	Name string
}

// Recorder implements texture.Uploader in memory.
type Recorder struct {
	// ETC1 controls SupportsCompressed(texture.FormatETC1).
	ETC1 bool
	// FailOn makes the named operation return the given error.
	FailOn map[string]error

	Calls   []Call
	next    texture.Handle
	live    map[texture.Handle]bool
	deleted []texture.Handle
}

// NewRecorder returns a Recorder with ETC1 support enabled.
func NewRecorder() *Recorder {
	return &Recorder{
		ETC1:   true,
		FailOn: make(map[string]error),
		live:   make(map[texture.Handle]bool),
	}
}

func (r *Recorder) fail(op string) error {
	if err, ok := r.FailOn[op]; ok {
		return err
	}
	return nil
}

// CreateTexture implements texture.Uploader.
func (r *Recorder) CreateTexture() (texture.Handle, error) {
	if err := r.fail("CreateTexture"); err != nil {
		return 0, err
	}
	r.next++
	r.live[r.next] = true
	r.Calls = append(r.Calls, Call{Op: "CreateTexture", Handle: r.next})
	return r.next, nil
}

// BindTexture implements texture.Uploader.
func (r *Recorder) BindTexture(h texture.Handle) {
	r.Calls = append(r.Calls, Call{Op: "BindTexture", Handle: h})
}

// UploadImage2D implements texture.Uploader.
func (r *Recorder) UploadImage2D(h texture.Handle, level, width, height int, format texture.PixelFormat, data []byte) error {
	if err := r.fail("UploadImage2D"); err != nil {
		return err
	}
	if want := width * height * format.BytesPerPixel(); len(data) != want {
		return fmt.Errorf("upload of %dx%d %s: %d bytes, expected %d", width, height, format, len(data), want)
	}
	r.Calls = append(r.Calls, Call{
		Op: "UploadImage2D", Handle: h, Level: level, Width: width, Height: height,
		Format: format, Data: append([]byte(nil), data...),
	})
	return nil
}

// UploadCompressed2D implements texture.Uploader.
func (r *Recorder) UploadCompressed2D(h texture.Handle, level, width, height int, format texture.CompressedFormat, data []byte) error {
	if err := r.fail("UploadCompressed2D"); err != nil {
		return err
	}
	r.Calls = append(r.Calls, Call{
		Op: "UploadCompressed2D", Handle: h, Level: level, Width: width, Height: height,
		Compressed: format, Data: append([]byte(nil), data...),
	})
	return nil
}

// GenerateMipmaps implements texture.Uploader.
func (r *Recorder) GenerateMipmaps(h texture.Handle) error {
	if err := r.fail("GenerateMipmaps"); err != nil {
		return err
	}
	r.Calls = append(r.Calls, Call{Op: "GenerateMipmaps", Handle: h})
	return nil
}

// DeleteTexture implements texture.Uploader.
func (r *Recorder) DeleteTexture(h texture.Handle) {
	delete(r.live, h)
	r.deleted = append(r.deleted, h)
	r.Calls = append(r.Calls, Call{Op: "DeleteTexture", Handle: h})
}

// SupportsCompressed implements texture.Uploader.
func (r *Recorder) SupportsCompressed(format texture.CompressedFormat) bool {
	return format == texture.FormatETC1 && r.ETC1
}

// Record appends a call made on a device wrapping the Recorder, so one log
// holds every operation in order.
func (r *Recorder) Record(c Call) {
	r.Calls = append(r.Calls, c)
}

// Live returns the number of textures created and not deleted.
func (r *Recorder) Live() int {
	return len(r.live)
}

// Deleted returns the handles passed to DeleteTexture, in order.
func (r *Recorder) Deleted() []texture.Handle {
	return r.deleted
}

// Ops returns the names of the recorded calls.
func (r *Recorder) Ops() []string {
	ops := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		ops[i] = c.Op
	}
	return ops
}

// Find returns the recorded calls named op.
func (r *Recorder) Find(op string) []Call {
	var out []Call
	for _, c := range r.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}
