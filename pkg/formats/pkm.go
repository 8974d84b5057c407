package formats

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// PKM format errors.
var (
	ErrInvalidPKMMagic       = errors.New("invalid PKM magic: expected 'PKM '")
	ErrUnsupportedPKMVersion = errors.New("unsupported PKM version")
	ErrUnsupportedPKMType    = errors.New("unsupported PKM data type")
	ErrTruncatedPKMData      = errors.New("truncated PKM data")
)

// PKMHeaderSize is the size of the fixed PKM header.
const PKMHeaderSize = 16

// PKMTypeETC1RGB is the only data type written for ETC1 textures.
const PKMTypeETC1RGB = 0

// PKMHeader describes an ETC1 texture stored in a PKM container.
// All fields are big-endian on disk.
type PKMHeader struct {
	Version        string // "10"
	DataType       uint16
	ExtendedWidth  uint16 // Width rounded up to a multiple of 4
	ExtendedHeight uint16 // Height rounded up to a multiple of 4
	Width          uint16
	Height         uint16
}

// DataSize returns the byte size of the ETC1 payload.
func (h PKMHeader) DataSize() int {
	return ETC1DataSize(int(h.ExtendedWidth), int(h.ExtendedHeight))
}

// PKM is a parsed PKM file.
type PKM struct {
	Header PKMHeader
	Data   []byte // ETC1 blocks, 8 bytes per 4x4 block
}

// ParsePKM parses a PKM file from raw bytes.
func ParsePKM(data []byte) (*PKM, error) {
	if len(data) < PKMHeaderSize {
		return nil, ErrTruncatedPKMData
	}

	if string(data[0:4]) != "PKM " {
		return nil, ErrInvalidPKMMagic
	}

	h := PKMHeader{
		Version:        string(data[4:6]),
		DataType:       binary.BigEndian.Uint16(data[6:8]),
		ExtendedWidth:  binary.BigEndian.Uint16(data[8:10]),
		ExtendedHeight: binary.BigEndian.Uint16(data[10:12]),
		Width:          binary.BigEndian.Uint16(data[12:14]),
		Height:         binary.BigEndian.Uint16(data[14:16]),
	}

	if h.Version != "10" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPKMVersion, h.Version)
	}
	if h.DataType != PKMTypeETC1RGB {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedPKMType, h.DataType)
	}
	if h.Width == 0 || h.Height == 0 || h.ExtendedWidth < h.Width || h.ExtendedHeight < h.Height ||
		h.ExtendedWidth%4 != 0 || h.ExtendedHeight%4 != 0 {
		return nil, fmt.Errorf("%w: %dx%d (extended %dx%d)", ErrInvalidImageSize,
			h.Width, h.Height, h.ExtendedWidth, h.ExtendedHeight)
	}

	size := h.DataSize()
	payload := data[PKMHeaderSize:]
	if len(payload) < size {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrTruncatedPKMData, len(payload), size)
	}

	return &PKM{Header: h, Data: payload[:size]}, nil
}

// ParsePKMFile parses a PKM file from disk.
func ParsePKMFile(path string) (*PKM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading PKM file: %w", err)
	}
	return ParsePKM(data)
}

// EncodePKMHeader returns the 16 header bytes for an ETC1 image of the given
// size.
func EncodePKMHeader(width, height int) []byte {
	b := make([]byte, PKMHeaderSize)
	copy(b[0:6], "PKM 10")
	binary.BigEndian.PutUint16(b[6:8], PKMTypeETC1RGB)
	binary.BigEndian.PutUint16(b[8:10], uint16((width+3)&^3))
	binary.BigEndian.PutUint16(b[10:12], uint16((height+3)&^3))
	binary.BigEndian.PutUint16(b[12:14], uint16(width))
	binary.BigEndian.PutUint16(b[14:16], uint16(height))
	return b
}
