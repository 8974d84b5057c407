package mobile

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"golang.org/x/mobile/asset"
)

// AssetSource serves files packaged in the app's assets directory.
type AssetSource struct{}

// Open implements assets.Source. The platform reports a missing asset in
// its own words, so every open failure is treated as fs.ErrNotExist.
func (AssetSource) Open(name string) (io.ReadCloser, error) {
	f, err := asset.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", fs.ErrNotExist, name, err)
	}
	return f, nil
}

func (AssetSource) String() string {
	return "apk"
}
