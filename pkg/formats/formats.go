// Package formats provides parsers for the texture files shipped with the
// sample: PGM single-channel alpha images and PKM containers holding ETC1
// compressed RGB data.
package formats

// Note: PGM (uncompressed alpha) is implemented in pgm.go
// Note: PKM (ETC1 container) is implemented in pkm.go, block decoding in etc1.go
