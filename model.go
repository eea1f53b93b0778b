package main

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// languageModel maps every n-gram seen in the corpus to the log10 of its
// empirical probability. It is read-only once built.
type languageModel struct {
	width  int
	total  int
	counts map[string]int
	logP   map[string]float64
}

// buildModel counts every width-long window of corpus, stepping one
// character at a time. Windows containing a space are skipped so n-grams
// never cross a word boundary. corpus is expected to be normalized.
func buildModel(corpus string, width int) (*languageModel, error) {
	if width < 1 {
		return nil, fmt.Errorf("model width %d: %w", width, ErrInvalidWidth)
	}

	m := &languageModel{
		width:  width,
		counts: make(map[string]int),
		logP:   make(map[string]float64),
	}

	for i := 0; i+width <= len(corpus); i++ {
		g := corpus[i : i+width]
		if strings.IndexByte(g, ' ') >= 0 {
			continue
		}
		m.counts[g]++
		m.total++
	}

	for g, n := range m.counts {
		m.logP[g] = math.Log10(float64(n) / float64(m.total))
	}

	return m, nil
}

func (m *languageModel) logProb(g string) (float64, bool) {
	p, ok := m.logP[g]
	return p, ok
}

func (m *languageModel) size() int {
	return len(m.counts)
}

type ngramCount struct {
	ngram string
	count int
	logP  float64
}

// top returns the n most frequent n-grams, ties broken lexically. n < 1
// returns all of them.
func (m *languageModel) top(n int) []ngramCount {
	freq := make([]ngramCount, 0, len(m.counts))
	for g, c := range m.counts {
		freq = append(freq, ngramCount{g, c, m.logP[g]})
	}

	sort.Slice(freq, func(i, j int) bool {
		if freq[i].count != freq[j].count {
			return freq[i].count > freq[j].count
		}
		return freq[i].ngram < freq[j].ngram
	})

	if n > 0 && n < len(freq) {
		freq = freq[:n]
	}
	return freq
}

// scorer measures how closely a plaintext resembles the corpus language.
type scorer struct {
	model   *languageModel
	width   int
	penalty float64 // subtracted for every window missing from the model
}

// fitness sums the log probability of every overlapping width-long
// window starting before the last width characters of plaintext.
// Plaintext no longer than width scores 0.
func (s scorer) fitness(plaintext string) float64 {
	var f float64
	for i := 0; i+s.width < len(plaintext); i++ {
		if p, ok := s.model.logProb(plaintext[i : i+s.width]); ok {
			f += p
		} else {
			f -= s.penalty
		}
	}
	return f
}
