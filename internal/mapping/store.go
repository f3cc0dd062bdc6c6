// Package mapping loads the pre-extracted pharmacogenomic lookup tables and
// exposes them as immutable in-memory maps. The JSON artifacts are produced
// by an external extraction step from the source spreadsheet; this package
// only consumes them. All lookups use canonical keys (see domain
// normalization helpers), pre-computed once at load.
package mapping

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/genopilot-report-server/internal/domain"
)

// Data artifact file names expected under the data directory.
const (
	MarkersFile     = "markers.json"
	CYP2D6StarsFile = "cyp2d6_stars.json"
	CYP2D6PhenoFile = "cyp2d6_pheno.json"
	RecsFile        = "recs.json"
)

// CYP2D6PhenoRow is one row of the CYP2D6 diplotype-to-phenotype table.
// JSON keys match the source spreadsheet column headers.
type CYP2D6PhenoRow struct {
	Diplotype string `json:"CYP2D6 Diplotype"`
	Phenotype string `json:"Coded Diplotype/Phenotype Summary"`
}

// RecommendationRow is one row of the guideline recommendation table.
type RecommendationRow struct {
	Gene      string `json:"Gene"`
	Phenotype string `json:"Phenotype"`
	RecText   string `json:"RecText"`
}

// UGT1A1 alleles with decreased enzyme function (*80 is a tag allele in
// strong LD with *28).
var ugt1a1Decreased = map[string]bool{
	"*28": true, "*80": true, "*6": true, "*37": true,
}

// Store holds the loaded tables. It is read-only after Load and safe for
// concurrent use.
type Store struct {
	markers   map[domain.Gene][]domain.MarkerDefinition
	stars     map[domain.Gene][]string
	starSet   map[domain.Gene]map[string]bool
	genotypes map[domain.Gene]map[string]string // canonical diplotype -> phenotype (DPYD, UGT1A1)
	cyp2d6    map[string]string                 // canonical diplotype -> phenotype
	recs      map[string]string                 // gene|phenotype -> recommendation text
	recRows   []RecommendationRow
}

// Load reads the four data artifacts from dir and builds the lookup tables.
// Any missing or malformed artifact is a fatal startup error.
func Load(dir string) (*Store, error) {
	s := &Store{
		markers:   make(map[domain.Gene][]domain.MarkerDefinition),
		stars:     make(map[domain.Gene][]string),
		starSet:   make(map[domain.Gene]map[string]bool),
		genotypes: make(map[domain.Gene]map[string]string),
		cyp2d6:    make(map[string]string),
		recs:      make(map[string]string),
	}

	var markers map[string][]domain.MarkerDefinition
	if err := readJSON(filepath.Join(dir, MarkersFile), &markers); err != nil {
		return nil, err
	}
	for name, defs := range markers {
		gene, err := domain.ParseGene(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", MarkersFile, err)
		}
		s.markers[gene] = defs
	}

	var cypStars []string
	if err := readJSON(filepath.Join(dir, CYP2D6StarsFile), &cypStars); err != nil {
		return nil, err
	}

	var cypPheno []CYP2D6PhenoRow
	if err := readJSON(filepath.Join(dir, CYP2D6PhenoFile), &cypPheno); err != nil {
		return nil, err
	}
	for _, row := range cypPheno {
		key, err := domain.NormalizeDiplotype(row.Diplotype)
		if err != nil {
			return nil, fmt.Errorf("%s: diplotype %q: %w", CYP2D6PhenoFile, row.Diplotype, err)
		}
		s.cyp2d6[key] = row.Phenotype
	}

	if err := readJSON(filepath.Join(dir, RecsFile), &s.recRows); err != nil {
		return nil, err
	}
	for _, row := range s.recRows {
		gene, err := domain.ParseGene(row.Gene)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", RecsFile, err)
		}
		s.recs[recKey(gene, row.Phenotype)] = row.RecText
	}

	s.collectStars(cypStars)
	s.materializeGenotypeTables()
	return s, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading data file: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// collectStars derives the selectable star-allele sets per gene. DPYD and
// UGT1A1 come from the marker definitions (always keeping *1; UGT1A1 always
// exposes *28); CYP2D6 comes from its own artifact.
func (s *Store) collectStars(cypStars []string) {
	s.setStars(domain.GeneDPYD, s.markerStars(domain.GeneDPYD))
	s.setStars(domain.GeneUGT1A1, append(s.markerStars(domain.GeneUGT1A1), "*28"))

	cyp := []string{"*1"}
	for _, st := range cypStars {
		cyp = append(cyp, domain.NormalizeKey(st))
	}
	s.setStars(domain.GeneCYP2D6, cyp)
}

func (s *Store) markerStars(gene domain.Gene) []string {
	stars := []string{"*1"}
	for _, m := range s.markers[gene] {
		st := domain.NormalizeKey(m.Star)
		if st == "" || st == "-" {
			continue
		}
		// first token only: the extraction sometimes carries trailing notes
		stars = append(stars, strings.Fields(st)[0])
	}
	return stars
}

func (s *Store) setStars(gene domain.Gene, stars []string) {
	set := make(map[string]bool, len(stars))
	var uniq []string
	for _, st := range stars {
		if st == "" || set[st] {
			continue
		}
		set[st] = true
		uniq = append(uniq, st)
	}
	sort.Slice(uniq, func(i, j int) bool { return domain.AlleleLess(uniq[i], uniq[j]) })
	s.starSet[gene] = set
	s.stars[gene] = uniq
}

// materializeGenotypeTables builds the flat diplotype-to-phenotype maps for
// DPYD and UGT1A1 over every pair of known alleles, so lookups are plain map
// hits and anything outside the table is an unknown combination.
func (s *Store) materializeGenotypeTables() {
	s.genotypes[domain.GeneDPYD] = pairTable(s.stars[domain.GeneDPYD], func(a1, a2 string) string {
		n := 0
		if a1 != "*1" {
			n++
		}
		if a2 != "*1" {
			n++
		}
		return countPhenotype(n)
	})
	s.genotypes[domain.GeneUGT1A1] = pairTable(s.stars[domain.GeneUGT1A1], func(a1, a2 string) string {
		n := 0
		if ugt1a1Decreased[a1] {
			n++
		}
		if ugt1a1Decreased[a2] {
			n++
		}
		return countPhenotype(n)
	})
}

func pairTable(stars []string, classify func(a1, a2 string) string) map[string]string {
	table := make(map[string]string, len(stars)*len(stars)/2+len(stars))
	for i, a1 := range stars {
		for _, a2 := range stars[i:] {
			key, err := domain.NormalizeDiplotype(a1 + "/" + a2)
			if err != nil {
				continue
			}
			table[key] = classify(a1, a2)
		}
	}
	return table
}

// countPhenotype maps the number of reduced/no-function alleles to a
// metabolizer phenotype: 0 normal, 1 intermediate, 2 poor.
func countPhenotype(n int) string {
	switch n {
	case 0:
		return domain.PhenotypeNormal
	case 1:
		return domain.PhenotypeIntermediate
	default:
		return domain.PhenotypePoor
	}
}

func recKey(gene domain.Gene, phenotype string) string {
	return string(gene) + "|" + domain.NormalizeKey(phenotype)
}

// Markers returns the marker definitions for a gene.
func (s *Store) Markers(gene domain.Gene) []domain.MarkerDefinition {
	return s.markers[gene]
}

// StarAlleles returns the known star alleles for a gene in human order.
func (s *Store) StarAlleles(gene domain.Gene) []string {
	return s.stars[gene]
}

// KnownStar reports whether allele is a known star allele for gene.
func (s *Store) KnownStar(gene domain.Gene, allele string) bool {
	return s.starSet[gene][domain.NormalizeKey(allele)]
}

// GenotypePhenotype looks up the phenotype for a canonical diplotype key of
// DPYD or UGT1A1.
func (s *Store) GenotypePhenotype(gene domain.Gene, key string) (string, bool) {
	p, ok := s.genotypes[gene][key]
	return p, ok
}

// CYP2D6Phenotype looks up the phenotype for a canonical CYP2D6 diplotype.
func (s *Store) CYP2D6Phenotype(key string) (string, bool) {
	p, ok := s.cyp2d6[key]
	return p, ok
}

// Recommendation returns the guideline recommendation text for a gene and
// phenotype. Exact phenotype match is tried first, then a containment scan,
// mirroring the tolerant matching of the source extraction.
func (s *Store) Recommendation(gene domain.Gene, phenotype string) (string, bool) {
	if text, ok := s.recs[recKey(gene, phenotype)]; ok {
		return text, true
	}
	want := domain.NormalizeKey(phenotype)
	for _, row := range s.recRows {
		if !strings.EqualFold(row.Gene, string(gene)) {
			continue
		}
		have := domain.NormalizeKey(row.Phenotype)
		if have != "" && (strings.Contains(want, have) || strings.Contains(have, want)) {
			return row.RecText, true
		}
	}
	return "", false
}
