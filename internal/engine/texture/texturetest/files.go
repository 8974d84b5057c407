package texturetest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Faultbox/etcalpha/internal/engine/texture"
	"github.com/Faultbox/etcalpha/pkg/formats"
)

// WriteMipChain writes levels PKM files <prefix><level><ext> holding zero
// ETC1 blocks, halving width x height at each level.
func WriteMipChain(prefix, ext string, width, height, levels int) error {
	for level := 0; level < levels; level++ {
		w, h := max(width>>level, 1), max(height>>level, 1)
		data := append(formats.EncodePKMHeader(w, h), make([]byte, formats.ETC1DataSize(w, h))...)
		if err := os.WriteFile(texture.MipPath(prefix, level, ext), data, 0644); err != nil {
			return fmt.Errorf("writing level %d: %w", level, err)
		}
	}
	return nil
}

// WriteAlpha writes a width x height PGM filled with value.
func WriteAlpha(path string, width, height int, value byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	pix := make([]byte, width*height)
	for i := range pix {
		pix[i] = value
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := formats.EncodePGM(f, &formats.PGM{Width: width, Height: height, Pix: pix}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
