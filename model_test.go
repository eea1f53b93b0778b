package main

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildModel(t *testing.T) {
	m, err := buildModel("ABAB AB", 2)
	require.NoError(t, err)

	// AB BA AB | AB; windows holding the space are skipped.
	assert.Equal(t, 4, m.total)
	assert.Equal(t, map[string]int{"AB": 3, "BA": 1}, m.counts)

	p, ok := m.logProb("AB")
	require.True(t, ok)
	assert.InDelta(t, math.Log10(0.75), p, 1e-12)

	_, ok = m.logProb("B ")
	assert.False(t, ok)
}

func TestBuildModelDeterministic(t *testing.T) {
	corpus := normalizeCorpus(strings.Repeat("the quick brown fox jumps over the lazy dog ", 20))

	a, err := buildModel(corpus, 3)
	require.NoError(t, err)
	b, err := buildModel(corpus, 3)
	require.NoError(t, err)

	assert.Equal(t, a.logP, b.logP)
	assert.Equal(t, a.top(0), b.top(0))
}

func TestBuildModelShortCorpus(t *testing.T) {
	m, err := buildModel("AB", 3)
	require.NoError(t, err)
	assert.Equal(t, 0, m.size())

	sc := scorer{model: m, width: 3, penalty: 8}
	assert.Equal(t, -8.0, sc.fitness("ABCD"))
}

func TestBuildModelInvalidWidth(t *testing.T) {
	_, err := buildModel("ABC", 0)
	assert.True(t, errors.Is(err, ErrInvalidWidth))
}

func TestModelTop(t *testing.T) {
	m, err := buildModel("AAB ABB CC", 1)
	require.NoError(t, err)

	top := m.top(2)
	require.Len(t, top, 2)
	assert.Equal(t, "A", top[0].ngram)
	assert.Equal(t, 3, top[0].count)
	assert.Equal(t, "B", top[1].ngram)

	// n < 1 returns every n-gram.
	assert.Len(t, m.top(0), 3)
}

func TestFitnessWindows(t *testing.T) {
	m, err := buildModel("THE", 3)
	require.NoError(t, err)
	sc := scorer{model: m, width: 3, penalty: 8}

	// Windows start before the last three characters: THE, HEX.
	assert.InDelta(t, 0-8.0, sc.fitness("THEXY"), 1e-12)
	assert.Equal(t, 0.0, sc.fitness("THE"), "length equal to width scores no windows")
	assert.Equal(t, 0.0, sc.fitness("TH"))
}

func TestFitnessPenaltyConfigurable(t *testing.T) {
	m, err := buildModel("ABC", 1)
	require.NoError(t, err)

	assert.InDelta(t, -6.0, scorer{model: m, width: 1, penalty: 2}.fitness("XYZW"), 1e-12)
}

func TestFitnessMonotonic(t *testing.T) {
	m, err := buildModel("AAAAAAAA BBB CC", 3)
	require.NoError(t, err)
	sc := scorer{model: m, width: 3, penalty: 8}

	best := m.top(1)[0].ngram
	require.Equal(t, "AAA", best)

	assert.Greater(t, sc.fitness(strings.Repeat(best, 4)), sc.fitness(strings.Repeat("ZZZ", 4)))
}

func TestFitnessIdempotent(t *testing.T) {
	corpus := normalizeCorpus("Now we are engaged in a great civil war, testing whether that nation can long endure.")
	m, err := buildModel(corpus, 2)
	require.NoError(t, err)
	sc := scorer{model: m, width: 2, penalty: 8}

	pt := "THATNATIONMIGHTLIVE"
	first := sc.fitness(pt)
	second := sc.fitness(pt)
	assert.Equal(t, math.Float64bits(first), math.Float64bits(second))
}
