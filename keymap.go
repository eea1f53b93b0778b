package main

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// unknownGlyph stands in for every character of a ciphertext window that
// the key does not map.
const unknownGlyph = "_"

// keyMap holds one cipher n-gram per plaintext letter, indexed A..Z. An
// empty slot means the letter has no cipher n-gram assigned.
type keyMap [26]string

var rxKey = regexp.MustCompile(`^([A-Z])=([^\s,=]+)$`)

// parseKeyMap reads a key written as letter=ngram pairs separated by
// commas or whitespace, for example "A=ZY,B=XW". Every token must be a
// complete pair.
func parseKeyMap(line string) (keyMap, error) {
	var k keyMap

	tokens := strings.FieldsFunc(strings.ToUpper(line), func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(tokens) == 0 {
		return k, fmt.Errorf("%w: no letter=ngram pairs in %q", ErrInvalidKey, line)
	}

	for _, tok := range tokens {
		m := rxKey.FindStringSubmatch(tok)
		if m == nil {
			return k, fmt.Errorf("%w: %q is not a letter=ngram pair", ErrInvalidKey, tok)
		}

		i := m[1][0] - 'A'
		if m[2] == unknownGlyph {
			continue
		}
		if k[i] != "" {
			return k, fmt.Errorf("%w: letter %s assigned twice", ErrInvalidKey, m[1])
		}
		k[i] = m[2]
	}

	if err := k.validate(); err != nil {
		return k, err
	}
	return k, nil
}

// width is the rune length of the first assigned n-gram, or 1 for an
// empty key.
func (k keyMap) width() int {
	for _, g := range k {
		if g != "" {
			return utf8.RuneCountInString(g)
		}
	}
	return 1
}

// validate checks that no n-gram appears in two slots and that every
// assigned n-gram has the same width.
func (k keyMap) validate() error {
	w := k.width()
	seen := make(map[string]byte, len(k))

	for i, g := range k {
		if g == "" {
			continue
		}
		if n := utf8.RuneCountInString(g); n != w {
			return fmt.Errorf("%w: %c=%s has width %d, want %d", ErrInvalidKey, alphabet[i], g, n, w)
		}
		if c, ok := seen[g]; ok {
			return fmt.Errorf("%w: %s mapped to both %c and %c", ErrInvalidKey, g, c, alphabet[i])
		}
		seen[g] = alphabet[i]
	}
	return nil
}

func (k keyMap) inverse() map[string]byte {
	inv := make(map[string]byte, len(k))
	for i, g := range k {
		if g != "" {
			inv[g] = alphabet[i]
		}
	}
	return inv
}

func (k *keyMap) swap(i, j int) {
	k[i], k[j] = k[j], k[i]
}

// ngrams returns the assigned n-grams in slot order.
func (k keyMap) ngrams() []string {
	var ret []string
	for _, g := range k {
		if g != "" {
			ret = append(ret, g)
		}
	}
	return ret
}

func (k keyMap) String() string {
	var b strings.Builder

	for i, g := range k {
		if i > 0 {
			b.WriteByte(' ')
		}
		if g == "" {
			g = unknownGlyph
		}
		fmt.Fprintf(&b, "%c=%s", alphabet[i], g)
	}

	return b.String()
}
