package domain

import (
	"fmt"
	"strings"
)

// Gene identifies one of the pharmacogenomic markers covered by a report.
type Gene string

const (
	GeneDPYD   Gene = "DPYD"
	GeneUGT1A1 Gene = "UGT1A1"
	GeneCYP2D6 Gene = "CYP2D6"
)

// Genes lists all genes in report order.
var Genes = []Gene{GeneDPYD, GeneCYP2D6, GeneUGT1A1}

// String returns the gene symbol.
func (g Gene) String() string {
	return string(g)
}

// ParseGene parses a gene symbol case-insensitively.
func ParseGene(s string) (Gene, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DPYD":
		return GeneDPYD, nil
	case "UGT1A1":
		return GeneUGT1A1, nil
	case "CYP2D6":
		return GeneCYP2D6, nil
	}
	return "", fmt.Errorf("unknown gene symbol: %q", s)
}

// DrugOfInterest returns the drug(s) whose dosing the gene's phenotype informs.
func (g Gene) DrugOfInterest() string {
	switch g {
	case GeneDPYD:
		return "Fluorouracil, capecitabine, tegafur"
	case GeneUGT1A1:
		return "Irinotecan"
	case GeneCYP2D6:
		return "Tamoxifen"
	}
	return ""
}

// InputMode distinguishes how a marker value was entered.
type InputMode string

const (
	// InputModeGenotype means per-marker ref/alt genotype calls.
	InputModeGenotype InputMode = "genotype"
	// InputModeDiplotype means a star-allele pair such as "*1/*28".
	InputModeDiplotype InputMode = "diplotype"
)

// Metabolizer phenotype classifications.
const (
	PhenotypeNormal        = "Normal Metabolizer"
	PhenotypeIntermediate  = "Intermediate Metabolizer"
	PhenotypePoor          = "Poor Metabolizer"
	PhenotypeUltrarapid    = "Ultrarapid Metabolizer"
	PhenotypeIndeterminate = "Indeterminate"
)

// RecommendationFallback is rendered when a phenotype has no recommendation
// entry in the loaded guideline tables.
const RecommendationFallback = "No specific recommendation is available in the loaded guidelines " +
	"for this phenotype/diplotype. Follow the product label and monitor closely."

// NotAvailable substitutes report placeholders that have no value.
const NotAvailable = "N/A"

// MarkerDefinition describes one genotyping assay column for a gene, as
// delivered by the data extraction step in markers.json.
type MarkerDefinition struct {
	Column  string   `json:"column"`
	RSID    string   `json:"rsid"`
	Ref     string   `json:"ref"`
	Var     string   `json:"var"`
	Star    string   `json:"star"`
	Options []string `json:"options"`
}

// Patient holds the patient metadata fields printed on the report.
type Patient struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	RecordNumber string `json:"record_number"`
	Sex          string `json:"sex"`
	BirthDate    string `json:"birth_date"`
}

// FullName joins first and last name, trimming when either is empty.
func (p Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Clinical holds the clinical context fields printed on the report.
type Clinical struct {
	CurrentIllness  string `json:"current_illness"`
	OtherConditions string `json:"other_conditions"`
	Treatment       string `json:"treatment"`
}

// ReportRequest is one report submission: patient/clinical metadata plus the
// user-entered genotype or diplotype string per gene. It is not persisted;
// only the resulting report record is.
type ReportRequest struct {
	Patient  Patient  `json:"patient"`
	Clinical Clinical `json:"clinical"`
	// Markers maps gene to a user-entered diplotype string.
	Markers map[Gene]string `json:"markers"`
	// Genotypes maps gene to per-marker genotype calls for marker-mode
	// entry; used for a gene only when Markers has no value for it.
	Genotypes map[Gene]map[string]string `json:"genotypes,omitempty"`
}

// MarkerResult is the outcome of resolving a single marker input.
type MarkerResult struct {
	Gene           Gene   `json:"gene"`
	Diplotype      string `json:"diplotype"`
	Phenotype      string `json:"phenotype"`
	Recommendation string `json:"recommendation"`
	Drug           string `json:"drug"`
	// Known is false when the input matched no table entry.
	Known bool `json:"known"`
}

// ReportResult aggregates the per-gene results for one report. It is consumed
// once by the renderer and then discarded.
type ReportResult struct {
	Markers       map[Gene]MarkerResult `json:"markers"`
	Polymorphisms []string              `json:"polymorphisms"`
}

// Ordered returns the marker results in report order, skipping absent genes.
func (r ReportResult) Ordered() []MarkerResult {
	out := make([]MarkerResult, 0, len(r.Markers))
	for _, g := range Genes {
		if m, ok := r.Markers[g]; ok {
			out = append(out, m)
		}
	}
	return out
}
