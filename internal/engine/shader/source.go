// Package shader loads GLSL sources, adapts GLSL ES 1.00 sources to the
// desktop core profile and watches source files for hot reload.
package shader

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrEmptySource is returned for a shader file with no code in it.
var ErrEmptySource = errors.New("empty shader source")

// Stage is a programmable pipeline stage.
type Stage int

// Shader stages.
const (
	Vertex Stage = iota
	Fragment
)

func (s Stage) String() string {
	switch s {
	case Vertex:
		return "vertex"
	case Fragment:
		return "fragment"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// LoadSource reads a shader source file.
func LoadSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading shader %s: %w", path, err)
	}
	src := string(data)
	if strings.TrimSpace(src) == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptySource, path)
	}
	return src, nil
}
