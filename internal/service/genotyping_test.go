package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genopilot-report-server/internal/domain"
)

func TestDPYDFromMarkers(t *testing.T) {
	resolver := newTestResolver(t)

	tests := []struct {
		name   string
		values map[string]string
		want   string
	}{
		{
			name:   "No calls means wild type",
			values: map[string]string{},
			want:   "*1/*1",
		},
		{
			name:   "All reference calls",
			values: map[string]string{"DPYD c.1905+1G>A": "G/G", "DPYD c.1679T>G": "T/T"},
			want:   "*1/*1",
		},
		{
			name:   "Heterozygous variant is one event",
			values: map[string]string{"DPYD c.1905+1G>A": "G/A"},
			want:   "*1/*2A",
		},
		{
			name:   "Heterozygous in reversed order",
			values: map[string]string{"DPYD c.1905+1G>A": "A/G"},
			want:   "*1/*2A",
		},
		{
			name:   "Homozygous variant is two events",
			values: map[string]string{"DPYD c.1905+1G>A": "A/A"},
			want:   "*2A/*2A",
		},
		{
			name: "Two heterozygous markers",
			values: map[string]string{
				"DPYD c.1905+1G>A": "G/A",
				"DPYD c.1679T>G":   "T/G",
			},
			want: "*2A/*13",
		},
		{
			name:   "Marker without star designation contributes no event",
			values: map[string]string{"DPYD c.2846A>T": "A/T"},
			want:   "*1/*1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diplotype, polymorphisms, err := resolver.DiplotypeFromMarkers(domain.GeneDPYD, tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, diplotype)
			// One polymorphism line per defined marker, calls filled in.
			assert.Len(t, polymorphisms, 4)
			assert.Contains(t, polymorphisms[0], "rs3918290")
		})
	}
}

func TestUGT1A1FromGenotype(t *testing.T) {
	resolver := newTestResolver(t)

	tests := []struct {
		name    string
		call    string
		want    string
		wantErr bool
	}{
		{"Homozygous reference", "C/C", "*1/*1", false},
		{"Heterozygous", "C/T", "*1/*28", false},
		{"Heterozygous reversed", "T/C", "*1/*28", false},
		{"Homozygous variant", "T/T", "*28/*28", false},
		{"Unrecognized call", "G/A", "", true},
		{"No call", "-/-", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diplotype, polymorphisms, err := resolver.DiplotypeFromMarkers(
				domain.GeneUGT1A1, map[string]string{"UGT1A1 c.-364C>T": tt.call})
			if (err != nil) != tt.wantErr {
				t.Errorf("DiplotypeFromMarkers() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				assert.True(t, domain.IsValidation(err), "got error %v", err)
				return
			}
			assert.Equal(t, tt.want, diplotype)
			require.Len(t, polymorphisms, 1)
			assert.Contains(t, polymorphisms[0], "rs887829")
		})
	}
}

func TestCYP2D6FromMarkers(t *testing.T) {
	resolver := newTestResolver(t)

	diplotype, polymorphisms, err := resolver.DiplotypeFromMarkers(domain.GeneCYP2D6,
		map[string]string{"CYP2D6 1846G>A": "G/A"})
	require.NoError(t, err)
	assert.Equal(t, "*1/*4", diplotype)
	assert.Len(t, polymorphisms, 3)

	// Marker-mode diplotype feeds straight into the lookup engine.
	result, err := resolver.Resolve(domain.GeneCYP2D6, diplotype)
	require.NoError(t, err)
	assert.Equal(t, "Intermediate Metabolizer", result.Phenotype)
}
