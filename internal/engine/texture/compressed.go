package texture

import (
	"errors"
	"fmt"
	"math/bits"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/etcalpha/internal/logger"
	"github.com/Faultbox/etcalpha/pkg/formats"
)

// Compressed mip chain errors.
var (
	ErrCompressedUnsupported = errors.New("compressed format not supported by device")
	ErrMipChain              = errors.New("inconsistent mip chain")
)

// MipmapOptions controls LoadCompressedMipmaps.
type MipmapOptions struct {
	// MaxLevels caps the number of levels read. Zero means the full chain
	// down to 1x1.
	MaxLevels int
	// DecodeFallback decodes ETC1 on the CPU when the device cannot sample
	// it, instead of failing.
	DecodeFallback bool
}

// MipPath returns the file name of one level of an externally authored
// chain: <prefix><level><ext>.
func MipPath(prefix string, level int, ext string) string {
	return fmt.Sprintf("%s%d%s", prefix, level, ext)
}

// MipLevelCount returns the number of levels in a full chain for a
// width x height base image.
func MipLevelCount(width, height int) int {
	return bits.Len(uint(max(width, height, 1)))
}

// ChainLength returns how many levels of a chain with a width x height
// base are loaded: the full chain, capped by maxLevels when positive.
func ChainLength(width, height, maxLevels int) int {
	levels := MipLevelCount(width, height)
	if maxLevels > 0 && levels > maxLevels {
		levels = maxLevels
	}
	return levels
}

// LoadCompressedMipmaps loads an ETC1 texture whose every mip level is a
// separate PKM file, <prefix>0<ext> being the base level. Each level is
// uploaded as authored; no mipmap generation is requested.
func LoadCompressedMipmaps(up Uploader, prefix, ext string, opts MipmapOptions) (Handle, error) {
	direct := up.SupportsCompressed(FormatETC1)
	if !direct && !opts.DecodeFallback {
		return 0, fmt.Errorf("%w: %s", ErrCompressedUnsupported, FormatETC1)
	}

	base, err := readPKM(MipPath(prefix, 0, ext))
	if err != nil {
		return 0, err
	}

	width, height := int(base.Header.Width), int(base.Header.Height)
	levels := ChainLength(width, height, opts.MaxLevels)

	h, err := up.CreateTexture()
	if err != nil {
		return 0, err
	}
	up.BindTexture(h)

	for level := 0; level < levels; level++ {
		pkm := base
		if level > 0 {
			if pkm, err = readPKM(MipPath(prefix, level, ext)); err != nil {
				up.DeleteTexture(h)
				return 0, err
			}
		}

		w, hgt := max(width>>level, 1), max(height>>level, 1)
		if int(pkm.Header.Width) != w || int(pkm.Header.Height) != hgt {
			up.DeleteTexture(h)
			return 0, fmt.Errorf("%w: level %d is %dx%d, expected %dx%d",
				ErrMipChain, level, pkm.Header.Width, pkm.Header.Height, w, hgt)
		}

		if err := uploadETC1Level(up, h, level, w, hgt, pkm.Data, direct); err != nil {
			up.DeleteTexture(h)
			return 0, fmt.Errorf("uploading level %d: %w", level, err)
		}
	}

	logger.Debug("compressed texture loaded",
		zap.Uint32("texture", uint32(h)),
		zap.String("prefix", prefix),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("levels", levels),
		zap.Bool("cpu_decoded", !direct),
	)
	return h, nil
}

func readPKM(path string) (*formats.PKM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrFileOpen, path, err)
	}
	pkm, err := formats.ParsePKM(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pkm, nil
}

// uploadETC1Level uploads the blocks as-is, or as RGBA decoded on the CPU.
func uploadETC1Level(up Uploader, h Handle, level, width, height int, data []byte, direct bool) error {
	if direct {
		return up.UploadCompressed2D(h, level, width, height, FormatETC1, data)
	}
	img, err := formats.DecodeETC1(data, width, height)
	if err != nil {
		return err
	}
	return up.UploadImage2D(h, level, width, height, FormatRGBA, img.Pix)
}
