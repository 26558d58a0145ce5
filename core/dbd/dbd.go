package dbd

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// PlaceholderName is the display name LoadFile falls back to when the
// filename cannot be represented as text.
const PlaceholderName = "PLACEHOLDER"

// LoadFile reads and parses a .dbd file. The display name is the path's
// basename, or PlaceholderName when the basename is not representable.
//
// Failures stay in two separate channels: read failures come back as the
// *fs.PathError from the os package, parse failures as *ParseError.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(path)
	if name == "." || name == string(filepath.Separator) || !utf8.ValidString(name) {
		name = PlaceholderName
	}

	return Parse(string(data), name)
}

// Locate recovers the suffix of contents starting at a parse position: skip
// line newline-delimited segments, then index column bytes into the
// remainder. Line 0 indexes directly into the full text. It reports false
// when the position does not exist in contents, so it never panics on a
// foreign location.
func Locate(contents string, line, column int) (string, bool) {
	if line < 0 || column < 0 {
		return "", false
	}

	for ; line > 0; line-- {
		j := strings.IndexByte(contents, '\n')
		if j < 0 {
			return "", false
		}
		contents = contents[j+1:]
	}

	if column > len(contents) {
		return "", false
	}
	return contents[column:], true
}
