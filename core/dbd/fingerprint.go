package dbd

import (
	"encoding/hex"
	"strings"

	"github.com/zeebo/blake3"
)

// Fingerprint returns the BLAKE3 hash of the definition's canonical text as
// a hex string. Definitions with the same builds, layouts, and entries hash
// identically regardless of how their source was formatted, which makes the
// fingerprint usable for spotting identical shapes across files.
func (d *Definition) Fingerprint() string {
	var b strings.Builder
	emitDefinition(&b, d)
	return fingerprint(b.String())
}

// Fingerprint is the resolved-tier counterpart of Definition.Fingerprint.
func (d *ResolvedDefinition) Fingerprint() string {
	var b strings.Builder
	emitResolvedDefinition(&b, d)
	return fingerprint(b.String())
}

func fingerprint(canonical string) string {
	sum := blake3.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
