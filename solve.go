package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// solveStream solves the ciphertexts in r, one per line. Blank lines and
// lines starting with '#' are skipped. A ciphertext that cannot be solved
// is logged and skipped unless strict is set, in which case its error is
// returned. A value on interrupt abandons the current ciphertext only.
func solveStream(ctx context.Context, cfg *Config, sc scorer, r io.Reader, out io.Writer, interrupt <-chan os.Signal, strict bool, log *zap.Logger) error {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lno := 0
	for s.Scan() {
		lno++
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimRight(s.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		cg, err := newCryptogram(line, cfg.NgramSSC)
		if err != nil {
			if strict {
				return err
			}
			log.Warn("skipping ciphertext", zap.Int("line", lno), zap.Error(err))
			continue
		}

		if err := solveOne(ctx, cfg, cg, sc, uint64(lno), out, interrupt, log); err != nil {
			return err
		}
	}
	return s.Err()
}

// solveOne hill-climbs a single ciphertext until ctx ends, interrupt
// fires, or the restart or runtime budget is spent. Every finished
// restart is printed as it arrives, followed by the best solutions.
func solveOne(ctx context.Context, cfg *Config, cg cryptogram, sc scorer, stream uint64, out io.Writer, interrupt <-chan os.Signal, log *zap.Logger) error {
	maxRuntime, err := cfg.maxRuntime()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if maxRuntime > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, maxRuntime)
		defer cancelTimeout()
	}

	var watch sync.WaitGroup
	watch.Add(1)
	go func() {
		defer watch.Done()
		select {
		case <-interrupt:
			cancel()
		case <-ctx.Done():
		}
	}()
	defer watch.Wait()
	defer cancel()

	log.Info("solving ciphertext",
		zap.Uint64("line", stream),
		zap.Int("length", len(cg.text)),
		zap.Int("ngrams", len(cg.ngrams)),
		zap.Uint64("seed", cfg.Search.Seed))

	sv := newSolver(cg, sc, cfg.Search.Plateau, rand.New(rand.NewPCG(cfg.Search.Seed, stream)), log)
	ss := newSolutionSet(cfg.Search.TopN)
	sch := make(chan solution)
	mutations, restarts := 0, 0

	start := time.Now()
	if _, err := fmt.Fprintf(out, "\n%v\n", cg); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(sch)
		sv.run(gctx, cfg.Search.MaxRestarts, sch)
		return nil
	})
	g.Go(func() error {
		for sol := range sch {
			restarts++
			mutations += sol.mutations
			ss.add(sol)
			if _, err := fmt.Fprintf(out, "\n%s\n%s  Fitness: %0.4f\n", sol.plaintext, sol.key, sol.fitness); err != nil {
				return err
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if _, ok := ss.best(); ok {
		if _, err := fmt.Fprintf(out, "\nTop %d:\n", len(ss.set)); err != nil {
			return err
		}
		if err := ss.dump(out, true); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(out, "Evaluated", humanize.Comma(int64(mutations)), "mutations over",
		humanize.Comma(int64(restarts)), "restarts in", time.Since(start).Round(time.Millisecond))
	return err
}
