package texture

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/Faultbox/etcalpha/pkg/formats"
)

// ErrSizeMismatch is returned when the RGB and alpha images differ in size.
var ErrSizeMismatch = errors.New("rgb and alpha sizes differ")

// CombineAlpha merges RGB from rgb with the alpha samples, the same way the
// dual-texture fragment shader does. Used for offline previews.
func CombineAlpha(rgb image.Image, alpha *formats.PGM) (*image.NRGBA, error) {
	b := rgb.Bounds()
	if b.Dx() != alpha.Width || b.Dy() != alpha.Height {
		return nil, fmt.Errorf("%w: rgb %dx%d, alpha %dx%d",
			ErrSizeMismatch, b.Dx(), b.Dy(), alpha.Width, alpha.Height)
	}

	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), rgb, b.Min, draw.Src)

	for y := 0; y < alpha.Height; y++ {
		for x := 0; x < alpha.Width; x++ {
			out.Pix[out.PixOffset(x, y)+3] = alpha.Pix[y*alpha.Width+x]
		}
	}
	return out, nil
}

// AlphaMipChain builds on the CPU the chain a GPU derives from level 0 when
// asked to generate mipmaps. Level 0 is alpha itself; every further level
// halves each dimension (never below 1) down to 1x1.
func AlphaMipChain(alpha *formats.PGM) []*formats.PGM {
	levels := MipLevelCount(alpha.Width, alpha.Height)
	chain := make([]*formats.PGM, 0, levels)
	chain = append(chain, alpha)

	src := alpha.Gray()
	for level := 1; level < levels; level++ {
		w := max(alpha.Width>>level, 1)
		h := max(alpha.Height>>level, 1)
		dst := image.NewGray(image.Rect(0, 0, w, h))
		draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

		chain = append(chain, &formats.PGM{Width: w, Height: h, Pix: dst.Pix})
		src = dst
	}
	return chain
}
