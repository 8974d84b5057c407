package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"strconv"
)

// PGM format errors.
var (
	ErrMalformedHeader  = errors.New("malformed header")
	ErrUnsupportedRange = errors.New("only 8-bit full-range samples supported")
	ErrTruncatedData    = errors.New("declared dimensions exceed available data")
	ErrInvalidImageSize = errors.New("invalid image dimensions")
)

// PGMMagic is the magic token of a binary portable graymap.
const PGMMagic = "P5"

// PGMMaxValue is the only maximum sample value accepted. The texture
// compression tool always writes 8-bit full-range alpha.
const PGMMaxValue = 255

// MaxPGMSamples bounds width*height so a corrupt header cannot request
// an absurd allocation. Either side may be long as long as the product
// stays within it.
const MaxPGMSamples = 1 << 28

// maxDigits limits the width and height fields.
const maxDigits = 10

// PGMHeader is the textual header of a binary PGM file.
type PGMHeader struct {
	Magic    string
	Width    int
	Height   int
	MaxValue int
}

// PixelCount returns the number of samples following the header.
func (h PGMHeader) PixelCount() int {
	return h.Width * h.Height
}

// PGM is a single-channel 8-bit image, row-major, top row first.
type PGM struct {
	Width  int
	Height int
	Pix    []byte // Width*Height samples, no padding
}

// Gray returns the samples wrapped as an *image.Gray sharing Pix.
func (p *PGM) Gray() *image.Gray {
	return &image.Gray{
		Pix:    p.Pix,
		Stride: p.Width,
		Rect:   image.Rect(0, 0, p.Width, p.Height),
	}
}

// ReadPGMHeader parses "<magic> <width> <height> <maxval>" and consumes the
// single separator byte that ends the header. On return r is positioned at
// the first payload byte.
//
// Comment lines starting with '#' are skipped between fields, as netpbm
// allows.
func ReadPGMHeader(r *bufio.Reader) (PGMHeader, error) {
	var h PGMHeader

	magic, err := readToken(r)
	if err != nil {
		return h, fmt.Errorf("%w: reading magic: %v", ErrMalformedHeader, err)
	}
	if magic != PGMMagic {
		return h, fmt.Errorf("%w: magic %q, expected %q", ErrMalformedHeader, magic, PGMMagic)
	}
	h.Magic = magic

	fields := []struct {
		name     string
		dst      *int
		saturate bool
	}{
		{"width", &h.Width, false},
		{"height", &h.Height, false},
		{"maximum value", &h.MaxValue, true},
	}
	for _, f := range fields {
		v, err := readNumber(r, f.saturate)
		if err != nil {
			return h, fmt.Errorf("%w: reading %s: %v", ErrMalformedHeader, f.name, err)
		}
		*f.dst = v
	}

	if h.Width <= 0 || h.Height <= 0 {
		return h, fmt.Errorf("%w: dimensions %dx%d", ErrMalformedHeader, h.Width, h.Height)
	}
	if h.Width > MaxPGMSamples/h.Height {
		return h, fmt.Errorf("%w: dimensions %dx%d exceed %d samples", ErrMalformedHeader, h.Width, h.Height, MaxPGMSamples)
	}
	if h.MaxValue != PGMMaxValue {
		if h.MaxValue == math.MaxInt {
			return h, fmt.Errorf("%w: maximum value out of range", ErrUnsupportedRange)
		}
		return h, fmt.Errorf("%w: maximum value %d", ErrUnsupportedRange, h.MaxValue)
	}

	// Exactly one whitespace or control byte ends the header.
	sep, err := r.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return h, fmt.Errorf("%w: no data after header", ErrTruncatedData)
		}
		return h, err
	}
	if !isSeparator(sep) {
		return h, fmt.Errorf("%w: separator byte 0x%02x", ErrMalformedHeader, sep)
	}

	return h, nil
}

// DecodePGM reads a PGM header and its width*height payload in one bulk read.
func DecodePGM(r io.Reader) (*PGM, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	h, err := ReadPGMHeader(br)
	if err != nil {
		return nil, err
	}

	pix := make([]byte, h.PixelCount())
	n, err := io.ReadFull(br, pix)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: read %d of %d bytes", ErrTruncatedData, n, len(pix))
		}
		return nil, fmt.Errorf("reading PGM payload: %w", err)
	}

	return &PGM{Width: h.Width, Height: h.Height, Pix: pix}, nil
}

// ParsePGM parses a PGM file from raw bytes.
func ParsePGM(data []byte) (*PGM, error) {
	return DecodePGM(bytes.NewReader(data))
}

// EncodePGM writes img as a binary PGM with maximum value 255.
func EncodePGM(w io.Writer, img *PGM) error {
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidImageSize, img.Width, img.Height)
	}
	if len(img.Pix) != img.Width*img.Height {
		return fmt.Errorf("%w: have %d samples, need %d", ErrInvalidImageSize, len(img.Pix), img.Width*img.Height)
	}
	if _, err := fmt.Fprintf(w, "%s\n%d %d\n%d\n", PGMMagic, img.Width, img.Height, PGMMaxValue); err != nil {
		return err
	}
	_, err := w.Write(img.Pix)
	return err
}

// readToken skips whitespace and comments, then returns the next run of
// non-space bytes. The byte ending the token is left unread.
func readToken(r *bufio.Reader) (string, error) {
	if err := skipSpace(r); err != nil {
		return "", err
	}
	var tok []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && len(tok) > 0 {
				return string(tok), nil
			}
			return "", err
		}
		if isSpace(b) {
			_ = r.UnreadByte()
			return string(tok), nil
		}
		tok = append(tok, b)
	}
}

// readNumber skips whitespace and comments, then reads decimal digits. The
// byte ending the number is left unread. Numbers longer than maxDigits
// fail, or read as math.MaxInt when saturate is set.
func readNumber(r *bufio.Reader, saturate bool) (int, error) {
	if err := skipSpace(r); err != nil {
		return 0, err
	}
	var digits []byte
	overflow := false
	for {
		b, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, err
		}
		if b < '0' || b > '9' {
			_ = r.UnreadByte()
			break
		}
		if len(digits) == maxDigits {
			if !saturate {
				return 0, fmt.Errorf("number too long")
			}
			overflow = true
			continue
		}
		digits = append(digits, b)
	}
	if len(digits) == 0 {
		return 0, fmt.Errorf("expected number")
	}
	v, err := strconv.Atoi(string(digits))
	if saturate && (overflow || err != nil) {
		return math.MaxInt, nil
	}
	return v, err
}

// skipSpace consumes whitespace and '#' comments up to the next token.
func skipSpace(r *bufio.Reader) error {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		switch {
		case isSpace(b):
			continue
		case b == '#':
			if _, err := r.ReadBytes('\n'); err != nil {
				return err
			}
		default:
			return r.UnreadByte()
		}
	}
}

// isSeparator reports whether b may end the header: whitespace or any
// other control byte.
func isSeparator(b byte) bool {
	return b <= 0x20 || b == 0x7f
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}
