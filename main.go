package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile    string
	cfg        = DefaultConfig()
	verbose    bool
	inputFile  string
	keyLine    string
	topModel   int
	cpuprofile string
	memprofile string

	// Flag values, copied onto cfg when set explicitly
	corpusFiles []string
	ngramSSC    int
	ngramFreq   int
	scoreWidth  int
	penalty     float64
	plateau     int
	seed        uint64
	maxRestarts int
	maxRuntime  time.Duration
	topN        int

	logger = zap.NewNop()
)

// newRootCmd builds the command tree. Flags are bound to the package
// level flag values above.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ngramsub [flags] [CIPHERTEXT...]",
		Short: "Recover n-gram simple substitution keys by hill climbing",
		Long: `ngramsub searches for the key of a simple substitution cipher in which
every fixed-width group of ciphertext characters stands for one plaintext
letter. Candidate keys are scored against n-gram statistics from a
reference corpus and improved by random slot swaps, restarting each time
the search plateaus.

Ciphertexts are taken from the arguments, or read one per line from
--input or stdin. Ctrl-C moves on to the next ciphertext.`,
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
		RunE: runSolve,
	}

	decodeCmd := &cobra.Command{
		Use:   "decode --key KEY CIPHERTEXT",
		Short: "Apply a key to a ciphertext and print the plaintext and its fitness",
		Example: `  ngramsub decode --key "A=ZY,B=XW" ZYXWXW
  ngramsub decode --key "A=Z B=Y" ZYZ`,
		Args: cobra.ExactArgs(1),
		RunE: runDecode,
	}

	modelCmd := &cobra.Command{
		Use:   "model",
		Short: "Print the most frequent n-grams of the corpus",
		Args:  cobra.NoArgs,
		RunE:  runModel,
	}

	def := DefaultConfig()

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "YAML config file")
	pf.StringSliceVarP(&corpusFiles, "corpus", "c", def.Corpus, "Reference corpus file (.txt, .pdf, .docx), repeatable")
	pf.IntVar(&ngramSSC, "ngram-ssc", def.NgramSSC, "Ciphertext characters per plaintext letter")
	pf.IntVarP(&ngramFreq, "ngram-freq", "n", def.NgramFreq, "N-gram width of the language model, e.g. 3 for trigrams")
	pf.IntVar(&scoreWidth, "score-width", def.ScoreWidth, "N-gram width used to score plaintext (0 = --ngram-freq)")
	pf.Float64Var(&penalty, "penalty", def.Penalty, "Score subtracted for every n-gram missing from the corpus")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	f := rootCmd.Flags()
	f.StringVarP(&inputFile, "input", "i", "", "Read ciphertexts, one per line, from this file")
	f.IntVar(&plateau, "plateau", def.Search.Plateau, "Non-improving mutations before restarting")
	f.Uint64Var(&seed, "seed", def.Search.Seed, "Random seed (0 = from the clock)")
	f.IntVarP(&maxRestarts, "max-restarts", "s", def.Search.MaxRestarts, "Stop after this many restarts per ciphertext (0 = never)")
	f.DurationVarP(&maxRuntime, "max-runtime", "r", 0, "Move on after this amount of time per ciphertext. Ex: 30s or 1m")
	f.IntVar(&topN, "topn", def.Search.TopN, "Display top N solutions when a ciphertext is done")
	f.StringVar(&cpuprofile, "cpuprofile", "", "Write cpu profile to 'file'")
	f.StringVar(&memprofile, "memprofile", "", "Write memory profile to 'file'")

	decodeCmd.Flags().StringVarP(&keyLine, "key", "k", "", "Key as letter=ngram pairs, e.g. A=ZY,B=XW")
	_ = decodeCmd.MarkFlagRequired("key")

	modelCmd.Flags().IntVar(&topModel, "top", 26, "Number of n-grams to print (0 = all)")

	rootCmd.AddCommand(decodeCmd, modelCmd)
	return rootCmd
}

// setup loads the config file, lays explicitly set flags over it and
// starts the logger.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := LoadConfig(cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	flags := cmd.Flags()
	if flags.Changed("corpus") {
		cfg.Corpus = corpusFiles
	}
	if flags.Changed("ngram-ssc") {
		cfg.NgramSSC = ngramSSC
	}
	if flags.Changed("ngram-freq") {
		cfg.NgramFreq = ngramFreq
	}
	if flags.Changed("score-width") {
		cfg.ScoreWidth = scoreWidth
	}
	if flags.Changed("penalty") {
		cfg.Penalty = penalty
	}
	if flags.Changed("plateau") {
		cfg.Search.Plateau = plateau
	}
	if flags.Changed("seed") {
		cfg.Search.Seed = seed
	}
	if flags.Changed("max-restarts") {
		cfg.Search.MaxRestarts = maxRestarts
	}
	if flags.Changed("max-runtime") {
		cfg.Search.MaxRuntime = maxRuntime.String()
	}
	if flags.Changed("topn") {
		cfg.Search.TopN = topN
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if logger, err = newLogger(cfg.Logging, verbose); err != nil {
		return err
	}
	return nil
}

// loadScorer reads the corpus and builds the language model it scores
// against.
func loadScorer() (scorer, error) {
	start := time.Now()
	corpus, err := readCorpus(cfg.Corpus)
	if err != nil {
		return scorer{}, err
	}
	if len(corpus) < cfg.NgramFreq {
		return scorer{}, fmt.Errorf("%d characters with model width %d: %w", len(corpus), cfg.NgramFreq, ErrCorpusTooShort)
	}

	model, err := buildModel(corpus, cfg.NgramFreq)
	if err != nil {
		return scorer{}, err
	}

	logger.Info("language model built",
		zap.Strings("corpus", cfg.Corpus),
		zap.Int("characters", len(corpus)),
		zap.Int("width", model.width),
		zap.Int("ngrams", model.size()),
		zap.Int("windows", model.total),
		zap.Duration("elapsed", time.Since(start)))

	if model.size() == 0 {
		logger.Warn("language model is empty, every n-gram will score the penalty")
	}
	if w := cfg.scoreWidth(); w != model.width {
		logger.Warn("score width differs from model width, lookups will miss",
			zap.Int("score_width", w),
			zap.Int("model_width", model.width))
	}

	return scorer{model: model, width: cfg.scoreWidth(), penalty: cfg.Penalty}, nil
}

func runSolve(cmd *cobra.Command, args []string) error {
	if cpuprofile != "" {
		f, err := os.Create(cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	sc, err := loadScorer()
	if err != nil {
		return err
	}

	if cfg.Search.Seed == 0 {
		cfg.Search.Seed = uint64(time.Now().UnixNano())
		logger.Info("random seed chosen", zap.Uint64("seed", cfg.Search.Seed))
	}

	var in io.Reader
	strict := false
	switch {
	case len(args) > 0:
		in = strings.NewReader(strings.Join(args, "\n"))
		strict = true
	case inputFile != "":
		f, err := os.Open(inputFile)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	default:
		in = cmd.InOrStdin()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT)
	defer signal.Stop(sigs)

	if err := solveStream(ctx, cfg, sc, in, cmd.OutOrStdout(), sigs, strict, logger); err != nil {
		return err
	}

	if memprofile != "" {
		f, err := os.Create(memprofile)
		if err != nil {
			return fmt.Errorf("could not create memory profile: %w", err)
		}
		defer f.Close()
		runtime.GC() // get up-to-date statistics
		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("could not write memory profile: %w", err)
		}
	}
	return nil
}

func runDecode(cmd *cobra.Command, args []string) error {
	k, err := parseKeyMap(keyLine)
	if err != nil {
		return err
	}

	text := []rune(strings.ToUpper(args[0]))
	if len(text) < k.width() {
		return fmt.Errorf("%d characters with key width %d: %w", len(text), k.width(), ErrCiphertextTooShort)
	}

	sc, err := loadScorer()
	if err != nil {
		return err
	}

	pt := buildPlaintext(text, k)
	fmt.Fprintln(cmd.OutOrStdout(), pt)
	fmt.Fprintf(cmd.OutOrStdout(), "%s  Fitness: %0.4f\n", k, sc.fitness(pt))
	return nil
}

func runModel(cmd *cobra.Command, args []string) error {
	sc, err := loadScorer()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, f := range sc.model.top(topModel) {
		fmt.Fprintf(out, "%s %8d %8.4f\n", f.ngram, f.count, f.logP)
	}
	return nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
