package service

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/genopilot-report-server/internal/domain"
	"github.com/genopilot-report-server/internal/mapping"
)

// Resolver is the lookup engine: it maps a user-entered genotype/diplotype
// string for a gene to a phenotype and recommendation using the immutable
// tables of the mapping store. It has no side effects and is safe for
// concurrent use.
type Resolver struct {
	logger *logrus.Logger
	store  *mapping.Store
}

// NewResolver creates a new lookup engine over the given tables.
func NewResolver(logger *logrus.Logger, store *mapping.Store) *Resolver {
	return &Resolver{logger: logger, store: store}
}

// CYP2D6 activity scores for the heuristic fallback when a diplotype is not
// in the phenotype table.
var (
	cyp2d6NoFunction = map[string]bool{
		"*3": true, "*4": true, "*5": true, "*6": true, "*7": true,
		"*14": true, "*15": true, "*19": true, "*59": true,
	}
	cyp2d6Reduced = map[string]bool{
		"*10": true, "*17": true, "*29": true, "*41": true, "*56B": true,
	}
)

// Resolve maps a raw marker input to its phenotype and recommendation.
// Empty or syntactically invalid input yields a ValidationError before any
// lookup; input that matches no table key yields an UnknownCombinationError.
func (r *Resolver) Resolve(gene domain.Gene, rawInput string) (domain.MarkerResult, error) {
	if strings.TrimSpace(rawInput) == "" {
		return domain.MarkerResult{}, domain.NewValidationError(
			string(gene), "marker input must not be empty", rawInput)
	}

	key, err := domain.NormalizeDiplotype(rawInput)
	if err != nil {
		// Inputs that are not an allele pair at all cannot match any key:
		// report them as unknown combinations. Broken pair syntax (three
		// alleles, empty allele) stays a validation error.
		if !strings.Contains(rawInput, "/") {
			return domain.MarkerResult{}, &domain.UnknownCombinationError{Gene: gene, Input: rawInput}
		}
		return domain.MarkerResult{}, err
	}

	var (
		phenotype string
		ok        bool
	)
	switch gene {
	case domain.GeneCYP2D6:
		phenotype, ok = r.store.CYP2D6Phenotype(key)
		if !ok {
			phenotype, ok = r.cyp2d6ActivityScore(key)
			if ok {
				r.logger.WithFields(logrus.Fields{
					"gene":      gene,
					"diplotype": key,
					"phenotype": phenotype,
				}).Debug("CYP2D6 diplotype absent from table, used activity score")
			}
		}
	case domain.GeneDPYD, domain.GeneUGT1A1:
		phenotype, ok = r.store.GenotypePhenotype(gene, key)
	default:
		return domain.MarkerResult{}, domain.NewValidationError(
			"gene", "unsupported gene", string(gene))
	}
	if !ok {
		return domain.MarkerResult{}, &domain.UnknownCombinationError{Gene: gene, Input: rawInput}
	}

	result := domain.MarkerResult{
		Gene:           gene,
		Diplotype:      key,
		Phenotype:      phenotype,
		Recommendation: r.recommendation(gene, phenotype),
		Drug:           gene.DrugOfInterest(),
		Known:          true,
	}

	r.logger.WithFields(logrus.Fields{
		"gene":      gene,
		"diplotype": key,
		"phenotype": phenotype,
	}).Debug("Marker resolved")

	return result, nil
}

// recommendation looks up the guideline text for a phenotype. A missing
// entry is non-fatal: the fixed fallback sentinel is returned instead.
func (r *Resolver) recommendation(gene domain.Gene, phenotype string) string {
	text, ok := r.store.Recommendation(gene, phenotype)
	if !ok {
		return domain.RecommendationFallback
	}
	clean := CleanRecommendation(text)
	if clean == "" {
		return domain.RecommendationFallback
	}
	return clean
}

// cyp2d6ActivityScore classifies a CYP2D6 diplotype absent from the table by
// summing per-allele activity. Only alleles known to the star set qualify;
// anything else stays an unknown combination.
func (r *Resolver) cyp2d6ActivityScore(key string) (string, bool) {
	a1, a2, err := domain.SplitDiplotype(key)
	if err != nil {
		return "", false
	}
	if !r.store.KnownStar(domain.GeneCYP2D6, a1) || !r.store.KnownStar(domain.GeneCYP2D6, a2) {
		return "", false
	}
	score := alleleActivity(a1) + alleleActivity(a2)
	switch {
	case score == 0:
		return domain.PhenotypePoor, true
	case score <= 1.0:
		return domain.PhenotypeIntermediate, true
	case score <= 2.25:
		return domain.PhenotypeNormal, true
	default:
		return domain.PhenotypeUltrarapid, true
	}
}

func alleleActivity(star string) float64 {
	switch {
	case cyp2d6NoFunction[star]:
		return 0
	case cyp2d6Reduced[star]:
		return 0.5
	default:
		return 1.0
	}
}
