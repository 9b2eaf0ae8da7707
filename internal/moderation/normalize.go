package moderation

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes raw user text before any rule runs: NFKC
// compatibility normalization (fullwidth digits, ligatures, etc.) followed
// by Unicode case folding, re-normalized so the result is a fixed point:
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	s := norm.NFKC.String(raw)
	// A Caser is stateful; build one per call.
	s = cases.Fold().String(s)
	return norm.NFKC.String(s)
}
