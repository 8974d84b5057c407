package formats

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
)

// ErrTruncatedETC1Data is returned when fewer blocks are supplied than the
// image size requires.
var ErrTruncatedETC1Data = errors.New("truncated ETC1 data")

// etc1ModifierTable holds the intensity modifiers for the eight table
// codewords, ordered by pixel index (+small, +large, -small, -large).
var etc1ModifierTable = [8][4]int{
	{2, 8, -2, -8},
	{5, 17, -5, -17},
	{9, 29, -9, -29},
	{13, 42, -13, -42},
	{18, 60, -18, -60},
	{24, 80, -24, -80},
	{33, 106, -33, -106},
	{47, 183, -47, -183},
}

// etc1DiffTable maps the 3-bit signed delta of differential mode.
var etc1DiffTable = [8]int{0, 1, 2, 3, -4, -3, -2, -1}

// etc1SubBlock maps a pixel index (x*4+y) to its sub-block for flip=0
// (two 2x4 halves) and flip=1 (two 4x2 halves).
var etc1SubBlock = [2][16]int{
	{0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1},
	{0, 0, 1, 1, 0, 0, 1, 1, 0, 0, 1, 1, 0, 0, 1, 1},
}

// ETC1DataSize returns the number of bytes of ETC1 blocks covering a
// width x height image.
func ETC1DataSize(width, height int) int {
	bw := max((width+3)/4, 1)
	bh := max((height+3)/4, 1)
	return bw * bh * 8
}

// DecodeETC1 decodes ETC1 RGB blocks into an opaque NRGBA image. It is used
// where the GPU cannot sample ETC1 directly and by offline preview tools.
func DecodeETC1(src []byte, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidImageSize, width, height)
	}
	if need := ETC1DataSize(width, height); len(src) < need {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrTruncatedETC1Data, len(src), need)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	blocksX := max((width+3)/4, 1)
	blocksY := max((height+3)/4, 1)

	offset := 0
	for by := 0; by < blocksY; by++ {
		for bx := 0; bx < blocksX; bx++ {
			v := binary.BigEndian.Uint64(src[offset : offset+8])
			offset += 8
			decodeETC1Block(img, v, bx*4, by*4)
		}
	}
	return img, nil
}

// decodeETC1Block writes one 4x4 block at (x0, y0), clipped to the image.
func decodeETC1Block(img *image.NRGBA, v uint64, x0, y0 int) {
	flip := (v >> 32) & 1
	diff := (v >> 33) & 1

	var base [2][3]int
	for c := uint(0); c < 3; c++ {
		if diff == 0 {
			a := (v >> (60 - c*8)) & 15
			b := (v >> (56 - c*8)) & 15
			base[0][c] = int(a<<4 | a)
			base[1][c] = int(b<<4 | b)
		} else {
			a := int((v >> (59 - c*8)) & 31)
			b := a + etc1DiffTable[(v>>(56-c*8))&7]
			b = clamp(b, 0, 31)
			base[0][c] = a<<3 | a>>2
			base[1][c] = b<<3 | b>>2
		}
	}

	codes := [2][4]int{
		etc1ModifierTable[(v>>37)&7],
		etc1ModifierTable[(v>>34)&7],
	}

	bounds := img.Bounds()
	i := uint(0)
	for x := x0; x < x0+4; x++ {
		for y := y0; y < y0+4; y++ {
			if x < bounds.Max.X && y < bounds.Max.Y {
				block := etc1SubBlock[flip][i]
				idx := ((v >> i) & 1) | ((v >> (15 + i)) & 2)
				shift := codes[block][idx]
				k := img.PixOffset(x, y)
				img.Pix[k+0] = uint8(clamp(base[block][0]+shift, 0, 255))
				img.Pix[k+1] = uint8(clamp(base[block][1]+shift, 0, 255))
				img.Pix[k+2] = uint8(clamp(base[block][2]+shift, 0, 255))
				img.Pix[k+3] = 0xff
			}
			i++
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
