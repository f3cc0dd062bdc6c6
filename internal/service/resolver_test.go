package service

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genopilot-report-server/internal/domain"
	"github.com/genopilot-report-server/internal/mapping"
)

const dataDir = "../../data"

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	store, err := mapping.Load(dataDir)
	require.NoError(t, err)
	return NewResolver(testLogger(), store)
}

func TestResolveDPYDWildType(t *testing.T) {
	resolver := newTestResolver(t)

	result, err := resolver.Resolve(domain.GeneDPYD, "*1/*1")
	require.NoError(t, err)

	assert.Equal(t, domain.PhenotypeNormal, result.Phenotype)
	assert.Equal(t, "*1/*1", result.Diplotype)
	assert.Equal(t, "Use standard fluoropyrimidine dosing per the product label.", result.Recommendation)
	assert.Equal(t, "Fluorouracil, capecitabine, tegafur", result.Drug)
	assert.True(t, result.Known)
}

func TestResolveCYP2D6PoorMetabolizer(t *testing.T) {
	resolver := newTestResolver(t)

	result, err := resolver.Resolve(domain.GeneCYP2D6, "*4/*4")
	require.NoError(t, err)

	assert.Equal(t, "Poor Metabolizer", result.Phenotype)
	assert.Equal(t, "Avoid tamoxifen; recommend an alternative endocrine therapy such as an aromatase inhibitor.",
		result.Recommendation)
}

func TestResolveNormalizesInput(t *testing.T) {
	resolver := newTestResolver(t)

	// Allele order and case must not matter.
	a, err := resolver.Resolve(domain.GeneCYP2D6, "*10/*4")
	require.NoError(t, err)
	b, err := resolver.Resolve(domain.GeneCYP2D6, " *4/*10 ")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, "*4/*10", a.Diplotype)
	assert.Equal(t, "Intermediate Metabolizer", a.Phenotype)
}

func TestResolveIdempotent(t *testing.T) {
	resolver := newTestResolver(t)

	first, err := resolver.Resolve(domain.GeneUGT1A1, "*1/*28")
	require.NoError(t, err)
	second, err := resolver.Resolve(domain.GeneUGT1A1, "*1/*28")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestResolveUnknownCombination(t *testing.T) {
	resolver := newTestResolver(t)

	tests := []struct {
		name  string
		gene  domain.Gene
		input string
	}{
		{"Free text", domain.GeneUGT1A1, "unknown-genotype-xyz"},
		{"Unknown star pair", domain.GeneDPYD, "*98/*99"},
		{"Unknown CYP2D6 allele", domain.GeneCYP2D6, "*1/*99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolver.Resolve(tt.gene, tt.input)
			assert.True(t, domain.IsUnknownCombination(err), "got error %v", err)
		})
	}
}

func TestResolveMalformedInput(t *testing.T) {
	resolver := newTestResolver(t)

	tests := []struct {
		name  string
		input string
	}{
		{"Empty input", ""},
		{"Whitespace only", "   "},
		{"Three alleles", "*1/*2/*3"},
		{"Empty allele", "/*1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolver.Resolve(domain.GeneCYP2D6, tt.input)
			assert.True(t, domain.IsValidation(err), "got error %v", err)
		})
	}
}

func TestResolveCYP2D6ActivityScoreFallback(t *testing.T) {
	resolver := newTestResolver(t)

	// *3/*6 is absent from the phenotype table; both alleles are known
	// no-function stars, so the activity score classifies it.
	result, err := resolver.Resolve(domain.GeneCYP2D6, "*3/*6")
	require.NoError(t, err)
	assert.Equal(t, domain.PhenotypePoor, result.Phenotype)

	result, err = resolver.Resolve(domain.GeneCYP2D6, "*1/*35")
	require.NoError(t, err)
	assert.Equal(t, domain.PhenotypeNormal, result.Phenotype)

	result, err = resolver.Resolve(domain.GeneCYP2D6, "*5/*10")
	require.NoError(t, err)
	assert.Equal(t, domain.PhenotypeIntermediate, result.Phenotype)
}

func TestResolveRecommendationFallback(t *testing.T) {
	// A store with no recommendation rows at all forces the sentinel.
	dir := t.TempDir()
	writeFile(t, dir, mapping.MarkersFile, `{"DPYD": [], "UGT1A1": [], "CYP2D6": []}`)
	writeFile(t, dir, mapping.CYP2D6StarsFile, `["*1", "*4"]`)
	writeFile(t, dir, mapping.CYP2D6PhenoFile, `[]`)
	writeFile(t, dir, mapping.RecsFile, `[]`)

	store, err := mapping.Load(dir)
	require.NoError(t, err)
	resolver := NewResolver(testLogger(), store)

	result, err := resolver.Resolve(domain.GeneCYP2D6, "*4/*4")
	require.NoError(t, err)
	assert.Equal(t, domain.PhenotypePoor, result.Phenotype)
	assert.Equal(t, domain.RecommendationFallback, result.Recommendation)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestCleanRecommendation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Strips citations and URLs",
			input: "Reduce dose by 50%. [CPIC 2017] See https://cpicpgx.org/guidelines/ for details.",
			want:  "Reduce dose by 50%. See for details.",
		},
		{
			name:  "Collapses whitespace",
			input: "  Standard   dosing.  ",
			want:  "Standard dosing.",
		},
		{
			name:  "Only noise becomes empty",
			input: "[PMID 12345] https://example.org/x",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanRecommendation(tt.input))
		})
	}
}
