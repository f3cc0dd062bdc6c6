package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseGene(t *testing.T) {
	tests := []struct {
		input   string
		want    Gene
		wantErr bool
	}{
		{"DPYD", GeneDPYD, false},
		{"dpyd", GeneDPYD, false},
		{" cyp2d6 ", GeneCYP2D6, false},
		{"Ugt1a1", GeneUGT1A1, false},
		{"BRCA1", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseGene(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseGene(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseGene(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDrugOfInterest(t *testing.T) {
	assert.Equal(t, "Fluorouracil, capecitabine, tegafur", GeneDPYD.DrugOfInterest())
	assert.Equal(t, "Irinotecan", GeneUGT1A1.DrugOfInterest())
	assert.Equal(t, "Tamoxifen", GeneCYP2D6.DrugOfInterest())
}

func TestPatientFullName(t *testing.T) {
	assert.Equal(t, "Jane Doe", Patient{FirstName: "Jane", LastName: "Doe"}.FullName())
	assert.Equal(t, "Jane", Patient{FirstName: "Jane"}.FullName())
	assert.Equal(t, "", Patient{}.FullName())
}

func TestReportResultOrdered(t *testing.T) {
	result := ReportResult{Markers: map[Gene]MarkerResult{
		GeneUGT1A1: {Gene: GeneUGT1A1},
		GeneDPYD:   {Gene: GeneDPYD},
		GeneCYP2D6: {Gene: GeneCYP2D6},
	}}

	ordered := result.Ordered()
	assert.Len(t, ordered, 3)
	assert.Equal(t, GeneDPYD, ordered[0].Gene)
	assert.Equal(t, GeneCYP2D6, ordered[1].Gene)
	assert.Equal(t, GeneUGT1A1, ordered[2].Gene)
}
