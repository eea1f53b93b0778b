package main

import "errors"

var (
	ErrInvalidWidth       = errors.New("width must be at least 1")
	ErrCiphertextTooShort = errors.New("ciphertext shorter than one substitution window")
	ErrCorpusTooShort     = errors.New("corpus shorter than the model width")
	ErrAlphabetOverflow   = errors.New("more than 26 distinct ciphertext n-grams")
	ErrInvalidKey         = errors.New("invalid key")
)
