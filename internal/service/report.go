package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/genopilot-report-server/internal/domain"
	"github.com/genopilot-report-server/internal/render"
	"github.com/genopilot-report-server/internal/reportstore"
)

// ReportVersion is printed on generated reports.
const ReportVersion = "0.5.0"

// MarkerResolver is the lookup engine surface the report service needs.
type MarkerResolver interface {
	Resolve(gene domain.Gene, rawInput string) (domain.MarkerResult, error)
	DiplotypeFromMarkers(gene domain.Gene, values map[string]string) (string, []string, error)
}

// GeneratedReport is the outcome of one report generation.
type GeneratedReport struct {
	ID        string              `json:"id"`
	FileName  string              `json:"file_name"`
	Document  []byte              `json:"-"`
	Result    domain.ReportResult `json:"result"`
	CreatedAt time.Time           `json:"created_at"`
}

// ReportService orchestrates report generation: validate the request,
// resolve every marker, render the document, and persist the audit record.
type ReportService struct {
	logger   *logrus.Logger
	resolver MarkerResolver
	renderer *render.Renderer
	store    reportstore.Store
	now      func() time.Time
}

// NewReportService creates a new report service.
func NewReportService(logger *logrus.Logger, resolver MarkerResolver, renderer *render.Renderer, store reportstore.Store) *ReportService {
	return &ReportService{
		logger:   logger,
		resolver: resolver,
		renderer: renderer,
		store:    store,
		now:      time.Now,
	}
}

// Generate runs the full report workflow for one request. Marker-level
// failures (empty input, bad syntax, unknown combination) are collected
// across all genes and returned joined, so the caller can surface every
// problem at once. Template and store failures pass through as their
// distinct error kinds.
func (s *ReportService) Generate(ctx context.Context, req domain.ReportRequest) (*GeneratedReport, error) {
	startTime := s.now()

	result := domain.ReportResult{Markers: make(map[domain.Gene]domain.MarkerResult)}
	var markerErrs []error
	for _, gene := range domain.Genes {
		res, polymorphisms, err := s.resolveGene(gene, req)
		if err != nil {
			markerErrs = append(markerErrs, err)
			continue
		}
		result.Markers[gene] = res
		result.Polymorphisms = append(result.Polymorphisms, polymorphisms...)
	}
	if len(markerErrs) > 0 {
		return nil, errors.Join(markerErrs...)
	}

	meta := render.Meta{
		SampleCode:  req.Patient.RecordNumber,
		RequestDate: startTime.Format("02/01/2006"),
		ReportDate:  startTime.Format("02/01/2006"),
		GeneratedAt: startTime.Format("2006-01-02 15:04"),
		Version:     ReportVersion,
	}
	document, err := s.renderer.Render(result, req.Patient, req.Clinical, meta)
	if err != nil {
		return nil, err
	}

	report := &GeneratedReport{
		ID:        uuid.NewString(),
		FileName:  reportFileName(req.Patient, startTime),
		Document:  document,
		Result:    result,
		CreatedAt: startTime.UTC(),
	}

	if err := s.store.Save(ctx, &reportstore.Record{
		ID:           report.ID,
		PatientName:  req.Patient.FullName(),
		RecordNumber: req.Patient.RecordNumber,
		FileName:     report.FileName,
		Result:       result,
		Document:     document,
		CreatedAt:    report.CreatedAt,
	}); err != nil {
		return nil, fmt.Errorf("saving report record: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"report_id":       report.ID,
		"file_name":       report.FileName,
		"processing_time": time.Since(startTime),
	}).Info("Report generated")

	return report, nil
}

// resolveGene resolves one gene from whichever entry mode the request used:
// a diplotype string, or per-marker genotype calls.
func (s *ReportService) resolveGene(gene domain.Gene, req domain.ReportRequest) (domain.MarkerResult, []string, error) {
	if input, ok := req.Markers[gene]; ok && strings.TrimSpace(input) != "" {
		res, err := s.resolver.Resolve(gene, input)
		if err != nil {
			return domain.MarkerResult{}, nil, err
		}
		return res, []string{fmt.Sprintf("%s diplotype (manual entry): %s", gene, res.Diplotype)}, nil
	}

	if calls, ok := req.Genotypes[gene]; ok && len(calls) > 0 {
		diplotype, polymorphisms, err := s.resolver.DiplotypeFromMarkers(gene, calls)
		if err != nil {
			return domain.MarkerResult{}, nil, err
		}
		res, err := s.resolver.Resolve(gene, diplotype)
		if err != nil {
			return domain.MarkerResult{}, nil, err
		}
		return res, polymorphisms, nil
	}

	return domain.MarkerResult{}, nil, domain.NewValidationError(
		string(gene), "marker input is required", nil)
}

// reportFileName builds the download name, e.g.
// GenoPilot_Jane_Doe_20260830_1215.docx.
func reportFileName(patient domain.Patient, t time.Time) string {
	name := sanitizeFileName(patient.FullName())
	if name == "" {
		name = "Patient"
	}
	return fmt.Sprintf("GenoPilot_%s_%s.docx", name, t.Format("20060102_1504"))
}

func sanitizeFileName(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	return b.String()
}
