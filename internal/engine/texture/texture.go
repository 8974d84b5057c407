// Package texture provides image decoding and texture upload utilities.
//
// Uploading goes through the Uploader interface so the same loaders serve
// the desktop OpenGL renderer, the mobile GLES context and tests.
package texture

import "fmt"

// Handle identifies a texture object created by an Uploader. Zero is never
// a valid handle.
type Handle uint32

// PixelFormat is the layout of uncompressed pixel data.
type PixelFormat int

// Uncompressed pixel formats.
const (
	FormatLuminance PixelFormat = iota // 1 byte per pixel
	FormatRGBA                         // 4 bytes per pixel
)

// BytesPerPixel returns the size of a single pixel.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case FormatLuminance:
		return 1
	case FormatRGBA:
		return 4
	default:
		return 0
	}
}

func (f PixelFormat) String() string {
	switch f {
	case FormatLuminance:
		return "luminance"
	case FormatRGBA:
		return "rgba"
	default:
		return fmt.Sprintf("PixelFormat(%d)", int(f))
	}
}

// CompressedFormat is a GPU block compression format.
type CompressedFormat int

// Compressed formats.
const (
	FormatETC1 CompressedFormat = iota
)

func (f CompressedFormat) String() string {
	switch f {
	case FormatETC1:
		return "etc1"
	default:
		return fmt.Sprintf("CompressedFormat(%d)", int(f))
	}
}

// Uploader is the graphics API surface the loaders need. Implementations
// own GL state; every method is called from the rendering thread.
type Uploader interface {
	// CreateTexture allocates a new 2D texture object.
	CreateTexture() (Handle, error)
	// BindTexture binds h to the 2D target of the active texture unit.
	BindTexture(h Handle)
	// UploadImage2D specifies one mip level from uncompressed data.
	UploadImage2D(h Handle, level, width, height int, format PixelFormat, data []byte) error
	// UploadCompressed2D specifies one mip level from compressed blocks.
	UploadCompressed2D(h Handle, level, width, height int, format CompressedFormat, data []byte) error
	// GenerateMipmaps derives every level below 0 from level 0.
	GenerateMipmaps(h Handle) error
	// DeleteTexture releases h.
	DeleteTexture(h Handle)
	// SupportsCompressed reports whether format can be sampled directly.
	SupportsCompressed(format CompressedFormat) bool
}
