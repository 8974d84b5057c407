package shader

import (
	"regexp"
	"strings"
)

// CoreVersion is the directive written by ToCore.
const CoreVersion = "#version 410 core"

// FragColor is the output variable replacing gl_FragColor in translated
// fragment shaders.
const FragColor = "fragColor"

var (
	reAttribute = regexp.MustCompile(`\battribute\b`)
	reVarying   = regexp.MustCompile(`\bvarying\b`)
	reTexture2D = regexp.MustCompile(`\btexture2D\s*\(`)
	reFragColor = regexp.MustCompile(`\bgl_FragColor\b`)
)

// IsES reports whether src is GLSL ES 1.00: either "#version 100" or no
// version directive at all.
func IsES(src string) bool {
	v := versionLine(src)
	if v == "" {
		return true
	}
	fields := strings.Fields(v)
	return len(fields) > 1 && fields[1] == "100"
}

// ToCore rewrites a GLSL ES 1.00 shader for a desktop core profile
// context. Sources already declaring another version are returned as is.
func ToCore(src string, stage Stage) string {
	if !IsES(src) {
		return src
	}

	var out []string
	out = append(out, CoreVersion)
	if stage == Fragment {
		out = append(out, "out vec4 "+FragColor+";")
	}

	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#version") || strings.HasPrefix(trimmed, "precision ") {
			continue
		}

		switch stage {
		case Vertex:
			line = reAttribute.ReplaceAllString(line, "in")
			line = reVarying.ReplaceAllString(line, "out")
		case Fragment:
			line = reVarying.ReplaceAllString(line, "in")
			line = reFragColor.ReplaceAllString(line, FragColor)
		}
		line = reTexture2D.ReplaceAllString(line, "texture(")
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// versionLine returns the "#version" directive of src, or "".
func versionLine(src string) string {
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#version") {
			return trimmed
		}
	}
	return ""
}
