package main

import (
	"fmt"
	"io"
	"sort"
)

// solutionSet keeps the nr fittest distinct plaintexts seen so far.
type solutionSet struct {
	set  []solution
	seen map[string]bool
	nr   int
}

func newSolutionSet(size int) solutionSet {
	if size < 1 {
		size = 1
	}
	return solutionSet{make([]solution, 0, size+1), make(map[string]bool), size}
}

// return true if we added s to the set
func (ss *solutionSet) add(s solution) bool {
	if ss.seen[s.plaintext] {
		return false
	}
	ss.seen[s.plaintext] = true

	if len(ss.set) >= ss.nr {
		if s.fitness <= ss.set[len(ss.set)-1].fitness {
			return false
		}
	}

	ss.set = append(ss.set, s)
	sort.SliceStable(ss.set, func(i, j int) bool { return ss.set[i].fitness > ss.set[j].fitness })

	if len(ss.set) > ss.nr {
		ss.set = ss.set[:ss.nr]
	}

	return true
}

func (ss solutionSet) best() (solution, bool) {
	if len(ss.set) == 0 {
		return solution{}, false
	}
	return ss.set[0], true
}

func (ss solutionSet) dump(w io.Writer, includeKey bool) error {
	for _, s := range ss.set {
		if _, err := fmt.Fprintln(w, s.decodedString()); err != nil {
			return err
		}
		if includeKey {
			if _, err := fmt.Fprintln(w, "key", s); err != nil {
				return err
			}
		}
	}
	return nil
}
