package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genopilot-report-server/internal/domain"
)

const dataDir = "../../data"

func loadStore(t *testing.T) *Store {
	t.Helper()
	store, err := Load(dataDir)
	require.NoError(t, err)
	return store
}

func TestLoadGenotypeTables(t *testing.T) {
	store := loadStore(t)

	tests := []struct {
		gene      domain.Gene
		diplotype string
		want      string
	}{
		{domain.GeneDPYD, "*1/*1", domain.PhenotypeNormal},
		{domain.GeneDPYD, "*1/*2A", domain.PhenotypeIntermediate},
		{domain.GeneDPYD, "*2A/*13", domain.PhenotypePoor},
		{domain.GeneDPYD, "*1/HAPB3", domain.PhenotypeIntermediate},
		{domain.GeneUGT1A1, "*1/*1", domain.PhenotypeNormal},
		{domain.GeneUGT1A1, "*1/*28", domain.PhenotypeIntermediate},
		{domain.GeneUGT1A1, "*28/*80", domain.PhenotypePoor},
	}

	for _, tt := range tests {
		got, ok := store.GenotypePhenotype(tt.gene, tt.diplotype)
		assert.True(t, ok, "%s %s should be in the table", tt.gene, tt.diplotype)
		assert.Equal(t, tt.want, got, "%s %s", tt.gene, tt.diplotype)
	}

	_, ok := store.GenotypePhenotype(domain.GeneDPYD, "*98/*99")
	assert.False(t, ok)
}

func TestCYP2D6Phenotype(t *testing.T) {
	store := loadStore(t)

	pheno, ok := store.CYP2D6Phenotype("*4/*4")
	assert.True(t, ok)
	assert.Equal(t, "Poor Metabolizer", pheno)

	pheno, ok = store.CYP2D6Phenotype("*1/*1")
	assert.True(t, ok)
	assert.Equal(t, "Normal Metabolizer", pheno)

	_, ok = store.CYP2D6Phenotype("*3/*6")
	assert.False(t, ok, "diplotype absent from the table")
}

func TestStarAlleles(t *testing.T) {
	store := loadStore(t)

	dpyd := store.StarAlleles(domain.GeneDPYD)
	assert.Equal(t, []string{"*1", "*2A", "*13", "HAPB3"}, dpyd)

	ugt := store.StarAlleles(domain.GeneUGT1A1)
	assert.Contains(t, ugt, "*28", "*28 is always selectable for UGT1A1")
	assert.Contains(t, ugt, "*80")

	assert.True(t, store.KnownStar(domain.GeneCYP2D6, "*41"))
	assert.True(t, store.KnownStar(domain.GeneCYP2D6, " *41 "), "normalized before lookup")
	assert.False(t, store.KnownStar(domain.GeneCYP2D6, "*99"))
}

func TestRecommendation(t *testing.T) {
	store := loadStore(t)

	text, ok := store.Recommendation(domain.GeneDPYD, domain.PhenotypePoor)
	assert.True(t, ok)
	assert.Contains(t, text, "Avoid fluoropyrimidines")

	// Containment fallback: a longer computed phenotype still matches its row.
	text, ok = store.Recommendation(domain.GeneCYP2D6, "Likely Poor Metabolizer")
	assert.True(t, ok)
	assert.Contains(t, text, "Avoid tamoxifen")

	_, ok = store.Recommendation(domain.GeneDPYD, "Rapid Metabolizer")
	assert.False(t, ok)
}

func TestLoadMissingDir(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoadMalformedArtifact(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, MarkersFile), []byte("{not json"), 0644))

	_, err := Load(dir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), MarkersFile)
}
