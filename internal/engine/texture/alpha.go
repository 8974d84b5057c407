package texture

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/etcalpha/internal/logger"
	"github.com/Faultbox/etcalpha/pkg/formats"
)

// ErrFileOpen is returned when a texture file cannot be opened.
var ErrFileOpen = errors.New("cannot open texture file")

// LoadAlpha loads a single-channel PGM file as a luminance texture.
//
// Only mip level 0 comes from the file; the remaining levels are generated
// by the uploader. Header and payload errors from pkg/formats are returned
// unchanged (test with errors.Is). On failure no texture is left allocated.
func LoadAlpha(up Uploader, path string) (Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w %s: %w", ErrFileOpen, path, err)
	}
	defer f.Close()

	h, err := LoadAlphaFrom(up, f)
	if err != nil {
		return 0, fmt.Errorf("loading alpha %s: %w", path, err)
	}
	return h, nil
}

// LoadAlphaFrom is LoadAlpha over an already opened stream.
func LoadAlphaFrom(up Uploader, r io.Reader) (Handle, error) {
	img, err := formats.DecodePGM(r)
	if err != nil {
		return 0, err
	}

	h, err := up.CreateTexture()
	if err != nil {
		return 0, err
	}

	up.BindTexture(h)
	if err := up.UploadImage2D(h, 0, img.Width, img.Height, FormatLuminance, img.Pix); err != nil {
		up.DeleteTexture(h)
		return 0, fmt.Errorf("uploading alpha level 0: %w", err)
	}
	if err := up.GenerateMipmaps(h); err != nil {
		up.DeleteTexture(h)
		return 0, fmt.Errorf("generating alpha mipmaps: %w", err)
	}

	logger.Debug("alpha texture loaded",
		zap.Uint32("texture", uint32(h)),
		zap.Int("width", img.Width),
		zap.Int("height", img.Height),
	)
	return h, nil
}
