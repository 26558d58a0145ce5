package dbd

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// buildGrammar is the participle grammar for one BUILD list token: a version
// literal, or a range of two literals joined by '-'.
// Examples: "3.3.5.12340", "0.5.3.3368-0.5.3.3494"
//
//nolint:govet // participle grammar tags are not standard struct tags
type buildGrammar struct {
	From versionLit  `@@`
	To   *versionLit `( "-" @@ )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type versionLit struct {
	Major int `@Int "."`
	Minor int `@Int "."`
	Patch int `@Int "."`
	Build int `@Int`
}

// version narrows the literal's components to their storage widths.
// Major/minor/patch are byte-sized, build is 16-bit; anything wider is not a
// well-formed build token.
func (l *versionLit) version() (Version, bool) {
	if l.Major > 0xFF || l.Minor > 0xFF || l.Patch > 0xFF || l.Build > 0xFFFF {
		return Version{}, false
	}
	return NewVersion(uint8(l.Major), uint8(l.Minor), uint8(l.Patch), uint16(l.Build)), true
}

// buildLexer defines the lexer for BUILD tokens.
var buildLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `[.\-]`},
})

// buildParser is the participle parser for BUILD tokens.
var buildParser = participle.MustBuild[buildGrammar](
	participle.Lexer(buildLexer),
)

// parseBuildToken parses one comma-separated BUILD token into either an
// exact version or a range.
func parseBuildToken(token string) (Version, *VersionRange, bool) {
	parsed, err := buildParser.ParseString("", token)
	if err != nil {
		return Version{}, nil, false
	}

	from, ok := parsed.From.version()
	if !ok {
		return Version{}, nil, false
	}

	if parsed.To != nil {
		to, ok := parsed.To.version()
		if !ok {
			return Version{}, nil, false
		}
		return Version{}, &VersionRange{From: from, To: to}, true
	}

	return from, nil, true
}

// ParseVersion parses a "major.minor.patch.build" literal such as
// "3.3.5.12340".
func ParseVersion(s string) (Version, error) {
	v, r, ok := parseBuildToken(s)
	if !ok || r != nil {
		return Version{}, fmt.Errorf("invalid version literal %q", s)
	}
	return v, nil
}
