package main

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

type cryptogram struct {
	text   []rune // uppercased ciphertext
	width  int    // substitution width, ciphertext runes per plaintext letter
	ngrams []string
}

// newCryptogram uppercases line and splits it into non-overlapping
// windows of width runes. The distinct windows are kept in the order they
// first appear; a trailing partial window is ignored.
func newCryptogram(line string, width int) (cryptogram, error) {
	cg := cryptogram{width: width}

	if width < 1 {
		return cg, fmt.Errorf("substitution width %d: %w", width, ErrInvalidWidth)
	}

	cg.text = []rune(strings.ToUpper(line))
	if len(cg.text) < width {
		return cg, fmt.Errorf("%d characters with substitution width %d: %w", len(cg.text), width, ErrCiphertextTooShort)
	}

	seen := make(map[string]bool)
	for i := 0; i+width <= len(cg.text); i += width {
		g := string(cg.text[i : i+width])
		if seen[g] {
			continue
		}
		seen[g] = true
		cg.ngrams = append(cg.ngrams, g)
	}

	if len(cg.ngrams) > len(alphabet) {
		return cg, fmt.Errorf("%d distinct n-grams of width %d: %w", len(cg.ngrams), width, ErrAlphabetOverflow)
	}

	return cg, nil
}

// initialKey assigns every distinct ciphertext n-gram to a slot picked by
// a random permutation of the alphabet. Unused slots stay empty.
func (cg cryptogram) initialKey(rng *rand.Rand) keyMap {
	var k keyMap
	slots := rng.Perm(len(k))
	for i, g := range cg.ngrams {
		k[slots[i]] = g
	}
	return k
}

// decode applies k to the ciphertext.
func (cg cryptogram) decode(k keyMap) string {
	return buildPlaintext(cg.text, k)
}

func (cg cryptogram) String() string {
	return string(cg.text)
}

// buildPlaintext walks text in windows of the key's width. A window found
// in the key becomes its plaintext letter, any other window becomes one
// unknownGlyph per rune so the output stays aligned with the ciphertext.
func buildPlaintext(text []rune, k keyMap) string {
	n := k.width()
	inv := k.inverse()
	unknown := strings.Repeat(unknownGlyph, n)

	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i+n <= len(text); i += n {
		if c, ok := inv[string(text[i:i+n])]; ok {
			b.WriteByte(c)
		} else {
			b.WriteString(unknown)
		}
	}
	return b.String()
}
