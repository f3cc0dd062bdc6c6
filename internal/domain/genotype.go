package domain

import (
	"strconv"
	"strings"
)

// Normalization policy for matching user input against stored table keys:
// keys are trimmed, upper-cased, and allele pairs are put into a canonical
// order, so "*10/*4" and "*4/*10" (or "t/c" and "C/T") hit the same row.
// The same treatment is applied to table keys at load time.

// NormalizeKey trims and upper-cases a lookup key.
func NormalizeKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// SplitDiplotype splits a diplotype string into its two alleles. The input
// must be exactly two non-empty alleles separated by a single slash.
func SplitDiplotype(s string) (string, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", NewValidationError("diplotype", "diplotype must not be empty", s)
	}
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return "", "", NewValidationError("diplotype", "diplotype must be two alleles separated by '/'", s)
	}
	a1 := NormalizeKey(parts[0])
	a2 := NormalizeKey(parts[1])
	if a1 == "" || a2 == "" {
		return "", "", NewValidationError("diplotype", "diplotype allele must not be empty", s)
	}
	return a1, a2, nil
}

// NormalizeDiplotype returns the canonical form of a diplotype string:
// trimmed, upper-cased, alleles ordered numerically then lexically.
func NormalizeDiplotype(s string) (string, error) {
	a1, a2, err := SplitDiplotype(s)
	if err != nil {
		return "", err
	}
	if AlleleLess(a2, a1) {
		a1, a2 = a2, a1
	}
	return a1 + "/" + a2, nil
}

// NormalizeGenotype canonicalizes a per-marker base call such as "T/C".
// Base alleles are ordered lexically so heterozygous calls match either way.
func NormalizeGenotype(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", NewValidationError("genotype", "genotype must not be empty", s)
	}
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return "", NewValidationError("genotype", "genotype must be two alleles separated by '/'", s)
	}
	a1 := NormalizeKey(parts[0])
	a2 := NormalizeKey(parts[1])
	if a1 == "" || a2 == "" {
		return "", NewValidationError("genotype", "genotype allele must not be empty", s)
	}
	if a2 < a1 {
		a1, a2 = a2, a1
	}
	return a1 + "/" + a2, nil
}

// AlleleLess orders star alleles in human order: *1 < *2 < *2A < *10 < HAPB3.
// Star alleles sort by numeric prefix first, then by suffix; named alleles
// (no leading '*') sort after star alleles, lexically.
func AlleleLess(a, b string) bool {
	an, as, aStar := splitStar(a)
	bn, bs, bStar := splitStar(b)
	if aStar != bStar {
		return aStar
	}
	if aStar && an != bn {
		return an < bn
	}
	if as != bs {
		return as < bs
	}
	return a < b
}

// splitStar splits a star allele into numeric prefix and suffix.
// "*2A" yields (2, "A", true); "HAPB3" yields (0, "HAPB3", false).
func splitStar(s string) (int, string, bool) {
	if !strings.HasPrefix(s, "*") {
		return 0, s, false
	}
	rest := s[1:]
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, rest, false
	}
	n, err := strconv.Atoi(rest[:i])
	if err != nil {
		return 0, rest, false
	}
	return n, rest[i:], true
}
