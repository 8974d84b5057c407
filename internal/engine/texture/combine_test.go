package texture_test

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/Faultbox/etcalpha/internal/engine/texture"
	"github.com/Faultbox/etcalpha/pkg/formats"
)

func TestCombineAlpha(t *testing.T) {
	rgb := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	rgb.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	rgb.SetNRGBA(1, 0, color.NRGBA{R: 40, G: 50, B: 60, A: 255})
	alpha := &formats.PGM{Width: 2, Height: 1, Pix: []byte{128, 0}}

	out, err := texture.CombineAlpha(rgb, alpha)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c := out.NRGBAAt(0, 0); c != (color.NRGBA{R: 10, G: 20, B: 30, A: 128}) {
		t.Errorf("pixel 0: got %v", c)
	}
	if c := out.NRGBAAt(1, 0); c != (color.NRGBA{R: 40, G: 50, B: 60, A: 0}) {
		t.Errorf("pixel 1: got %v", c)
	}
}

func TestCombineAlpha_SizeMismatch(t *testing.T) {
	rgb := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	alpha := &formats.PGM{Width: 2, Height: 2, Pix: make([]byte, 4)}

	if _, err := texture.CombineAlpha(rgb, alpha); !errors.Is(err, texture.ErrSizeMismatch) {
		t.Errorf("expected ErrSizeMismatch, got %v", err)
	}
}

func TestAlphaMipChain(t *testing.T) {
	alpha := &formats.PGM{Width: 8, Height: 2, Pix: make([]byte, 16)}
	for i := range alpha.Pix {
		alpha.Pix[i] = 200
	}

	chain := texture.AlphaMipChain(alpha)
	sizes := [][2]int{{8, 2}, {4, 1}, {2, 1}, {1, 1}}
	if len(chain) != len(sizes) {
		t.Fatalf("expected %d levels, got %d", len(sizes), len(chain))
	}
	for i, lvl := range chain {
		if lvl.Width != sizes[i][0] || lvl.Height != sizes[i][1] {
			t.Errorf("level %d: expected %dx%d, got %dx%d", i, sizes[i][0], sizes[i][1], lvl.Width, lvl.Height)
		}
		if len(lvl.Pix) != lvl.Width*lvl.Height {
			t.Errorf("level %d: %d samples for %dx%d", i, len(lvl.Pix), lvl.Width, lvl.Height)
		}
		// A constant image stays constant under filtering.
		for _, v := range lvl.Pix {
			if v != 200 {
				t.Errorf("level %d: expected 200, got %d", i, v)
				break
			}
		}
	}
	if chain[0] != alpha {
		t.Error("level 0 should be the source image")
	}
}
