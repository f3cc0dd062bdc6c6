// Package render fills the fixed DOCX report template with resolved marker
// results and patient metadata, producing the downloadable document.
package render

import (
	"bytes"
	"os"
	"strings"
	"sync"

	docx "github.com/lukasjarosch/go-docx"
	"github.com/sirupsen/logrus"

	"github.com/genopilot-report-server/internal/domain"
)

// Meta carries the report header fields.
type Meta struct {
	SampleCode  string
	RequestDate string
	ReportDate  string
	GeneratedAt string
	Version     string
}

// Renderer substitutes named placeholders in the report template. Template
// bytes are read once and cached; each render opens a fresh document from
// the cached bytes, so renders are deterministic and concurrency-safe.
type Renderer struct {
	logger       *logrus.Logger
	templatePath string

	loadOnce sync.Once
	template []byte
	loadErr  error
}

// NewRenderer creates a renderer for the template at templatePath. The
// template is not read until the first render.
func NewRenderer(logger *logrus.Logger, templatePath string) *Renderer {
	return &Renderer{logger: logger, templatePath: templatePath}
}

// Render fills the template with the given results and metadata and returns
// the document bytes. A missing or unparsable template is a
// TemplateLoadError, distinct from any lookup outcome; no document is
// produced in that case.
func (r *Renderer) Render(result domain.ReportResult, patient domain.Patient, clinical domain.Clinical, meta Meta) ([]byte, error) {
	tmpl, err := r.templateBytes()
	if err != nil {
		return nil, &domain.TemplateLoadError{Path: r.templatePath, Err: err}
	}

	doc, err := docx.OpenBytes(tmpl)
	if err != nil {
		return nil, &domain.TemplateLoadError{Path: r.templatePath, Err: err}
	}

	if err := doc.ReplaceAll(r.placeholders(result, patient, clinical, meta)); err != nil {
		return nil, &domain.TemplateLoadError{Path: r.templatePath, Err: err}
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, &domain.TemplateLoadError{Path: r.templatePath, Err: err}
	}

	r.logger.WithFields(logrus.Fields{
		"template": r.templatePath,
		"bytes":    buf.Len(),
	}).Debug("Report rendered")

	return buf.Bytes(), nil
}

func (r *Renderer) templateBytes() ([]byte, error) {
	r.loadOnce.Do(func() {
		r.template, r.loadErr = os.ReadFile(r.templatePath)
	})
	return r.template, r.loadErr
}

// placeholders builds the substitution map. Placeholders without a value
// render as the explicit N/A marker rather than blank.
func (r *Renderer) placeholders(result domain.ReportResult, patient domain.Patient, clinical domain.Clinical, meta Meta) docx.PlaceholderMap {
	m := docx.PlaceholderMap{
		"patient_name":              orNA(patient.FullName()),
		"patient_record":            orNA(patient.RecordNumber),
		"patient_sex":               orNA(patient.Sex),
		"patient_birth_date":        orNA(patient.BirthDate),
		"clinical_current_illness":  orNA(clinical.CurrentIllness),
		"clinical_other_conditions": orNA(clinical.OtherConditions),
		"clinical_treatment":        orNA(clinical.Treatment),
		"polymorphisms":             orNA(strings.Join(result.Polymorphisms, "; ")),
		"sample_code":               orNA(meta.SampleCode),
		"request_date":              orNA(meta.RequestDate),
		"report_date":               orNA(meta.ReportDate),
		"generated_at":              orNA(meta.GeneratedAt),
		"version":                   orNA(meta.Version),
	}
	for _, gene := range domain.Genes {
		prefix := strings.ToLower(string(gene))
		res := result.Markers[gene]
		m[prefix+"_diplotype"] = orNA(res.Diplotype)
		m[prefix+"_phenotype"] = orNA(res.Phenotype)
		m[prefix+"_recommendation"] = orNA(res.Recommendation)
		m[prefix+"_drug"] = orNA(res.Drug)
	}
	return m
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return domain.NotAvailable
	}
	return s
}
