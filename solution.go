package main

import (
	"fmt"
)

// solution is the state one local search ended in.
type solution struct {
	key          keyMap
	plaintext    string
	fitness      float64
	restart      int
	mutations    int // candidate keys evaluated
	improvements int // candidates accepted
}

func (s solution) String() string {
	return s.key.String()
}

func (s solution) decodedString() string {
	return fmt.Sprintf("Fitness: %0.4f  Restart: %d  %s", s.fitness, s.restart, s.plaintext)
}
