// Package textnorm folds free-form user text into comparable keys.
package textnorm

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StringTransformer is the seam used to inject transform failures in tests.
type StringTransformer interface {
	TransformString(t transform.Transformer, s string) (string, int, error)
}

type defaultTransformer struct{}

func (defaultTransformer) TransformString(t transform.Transformer, s string) (string, int, error) {
	return transform.String(t, s)
}

var transformer StringTransformer = defaultTransformer{}

// Fold removes diacritics, lowercases and trims s ("Québec " -> "quebec").
func Fold(s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", fmt.Errorf("input string is not valid UTF-8")
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transformer.TransformString(t, s)
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(result)), nil
}

// Key is Fold for comparisons that cannot fail: on error it falls back to a
// plain lowercase of the trimmed input.
func Key(s string) string {
	folded, err := Fold(s)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return folded
}

// Slugify turns a display name into a URL slug: "Appliance Repair" -> "appliance-repair".
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range Key(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		case r == '&' || r == '\'':
			// dropped, "Lawn & Snow" -> "lawn-snow"
		default:
			pendingDash = true
		}
	}
	return b.String()
}
