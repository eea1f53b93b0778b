package main

import (
	"context"
	"math/rand/v2"

	"go.uber.org/zap"
)

// defaultPlateau is how many consecutive non-improving mutations end a
// local search.
const defaultPlateau = 1000

type fitnessFunc interface {
	fitness(plaintext string) float64
}

type solver struct {
	cg      cryptogram
	score   fitnessFunc
	plateau int
	rng     *rand.Rand
	log     *zap.Logger
}

func newSolver(cg cryptogram, score fitnessFunc, plateau int, rng *rand.Rand, log *zap.Logger) *solver {
	if plateau < 0 {
		plateau = defaultPlateau
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &solver{
		cg:      cg,
		score:   score,
		plateau: plateau,
		rng:     rng,
		log:     log,
	}
}

// climb runs one local search from a fresh random key. It swaps two
// random slots at a time and keeps the swap only when fitness strictly
// improves, stopping once more than s.plateau swaps in a row failed to
// improve. The bool is false if ctx ended the search first.
func (s *solver) climb(ctx context.Context, restart int) (solution, bool) {
	k := s.cg.initialKey(s.rng)
	cur := solution{
		key:       k,
		plaintext: s.cg.decode(k),
		restart:   restart,
	}
	cur.fitness = s.score.fitness(cur.plaintext)

	stale := 0
	for stale <= s.plateau {
		if ctx.Err() != nil {
			return cur, false
		}

		cand := cur.key
		cand.swap(s.rng.IntN(len(cand)), s.rng.IntN(len(cand)))
		pt := s.cg.decode(cand)
		f := s.score.fitness(pt)
		cur.mutations++

		if f > cur.fitness {
			cur.key = cand
			cur.plaintext = pt
			cur.fitness = f
			cur.improvements++
			stale = 0
		} else {
			stale++
		}
	}

	return cur, true
}

// run restarts the local search until ctx is done or maxRestarts searches
// have finished (0 means no limit). Each finished search is sent on sch.
func (s *solver) run(ctx context.Context, maxRestarts int, sch chan<- solution) {
	for restart := 1; maxRestarts < 1 || restart <= maxRestarts; restart++ {
		sol, ok := s.climb(ctx, restart)
		if !ok {
			return
		}

		s.log.Debug("local search plateaued",
			zap.Int("restart", restart),
			zap.Float64("fitness", sol.fitness),
			zap.Int("mutations", sol.mutations),
			zap.Int("improvements", sol.improvements))

		select {
		case sch <- sol:
		case <-ctx.Done():
			return
		}
	}
}
