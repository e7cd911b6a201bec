package trie

import "errors"

var (
	// ErrInvalidKey is returned when a key contains a symbol outside the alphabet.
	ErrInvalidKey = errors.New("invalid key")
)
