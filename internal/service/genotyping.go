package service

import (
	"fmt"
	"strings"

	"github.com/genopilot-report-server/internal/domain"
)

// Marker-mode genotyping: converts per-marker ref/alt genotype calls into a
// star-allele diplotype that is then resolved against the tables. A
// heterozygous variant call counts one star event, a homozygous-alt call
// counts two; zero events means wild type *1/*1.

// noCall is the placeholder for a marker without a genotype call.
const noCall = "-/-"

// DiplotypeFromMarkers derives a diplotype for gene from genotype calls
// keyed by marker column name, and returns it together with the polymorphism
// lines recorded on the report.
func (r *Resolver) DiplotypeFromMarkers(gene domain.Gene, values map[string]string) (string, []string, error) {
	if gene == domain.GeneUGT1A1 {
		return r.ugt1a1FromGenotype(values)
	}

	var events, polymorphisms []string
	for _, m := range r.store.Markers(gene) {
		call := values[m.Column]
		if call == "" {
			call = noCall
		}
		polymorphisms = append(polymorphisms, fmt.Sprintf("%s (%s): %s", m.Column, m.RSID, call))

		star := firstToken(m.Star)
		alt := firstAllele(m.Var)
		if star == "" || star == "-" || alt == "" || alt == "-" || call == noCall {
			continue
		}

		norm, err := domain.NormalizeGenotype(call)
		if err != nil {
			return "", nil, err
		}
		het, _ := domain.NormalizeGenotype(m.Ref + "/" + alt)
		hom, _ := domain.NormalizeGenotype(alt + "/" + alt)
		switch norm {
		case het:
			events = append(events, domain.NormalizeKey(star))
		case hom:
			events = append(events, domain.NormalizeKey(star), domain.NormalizeKey(star))
		}
	}

	switch len(events) {
	case 0:
		return "*1/*1", polymorphisms, nil
	case 1:
		return "*1/" + events[0], polymorphisms, nil
	default:
		return events[0] + "/" + events[1], polymorphisms, nil
	}
}

// ugt1a1FromGenotype interprets the UGT1A1 rs887829 tag call (in strong LD
// with *28): C/C is *1/*1, C/T is *1/*28, T/T is *28/*28.
func (r *Resolver) ugt1a1FromGenotype(values map[string]string) (string, []string, error) {
	markers := r.store.Markers(domain.GeneUGT1A1)
	if len(markers) == 0 {
		return "", nil, domain.NewValidationError("UGT1A1", "no marker definitions loaded", nil)
	}
	m := markers[0]
	call := values[m.Column]
	if call == "" {
		call = noCall
	}
	polymorphisms := []string{fmt.Sprintf("%s (%s): %s", m.Column, m.RSID, call)}

	norm, err := domain.NormalizeGenotype(call)
	if err != nil {
		return "", nil, err
	}
	switch norm {
	case "C/C":
		return "*1/*1", polymorphisms, nil
	case "C/T":
		return "*1/*28", polymorphisms, nil
	case "T/T":
		return "*28/*28", polymorphisms, nil
	}
	return "", nil, domain.NewValidationError(m.Column, "unrecognized genotype call", call)
}

// firstToken returns the first whitespace-separated token; the extraction
// sometimes carries trailing notes in the star column.
func firstToken(s string) string {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// firstAllele returns the first alternative allele from a var column that
// may list several separated by '/', ',' or whitespace.
func firstAllele(s string) string {
	f := func(r rune) bool {
		return r == '/' || r == ',' || r == ' ' || r == '\t'
	}
	fields := strings.FieldsFunc(strings.TrimSpace(s), f)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
