package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/genopilot-report-server/internal/domain"
	"github.com/genopilot-report-server/internal/reportstore"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// resolveRequest is the body of POST /api/v1/resolve.
type resolveRequest struct {
	Gene  string `json:"gene" binding:"required"`
	Input string `json:"input" binding:"required"`
}

// generateReportRequest is the body of POST /api/v1/reports. Gene keys are
// case-insensitive symbols; each gene needs either a diplotype string in
// markers or per-marker genotype calls in genotypes.
type generateReportRequest struct {
	Patient   domain.Patient               `json:"patient"`
	Clinical  domain.Clinical              `json:"clinical"`
	Markers   map[string]string            `json:"markers"`
	Genotypes map[string]map[string]string `json:"genotypes"`
}

// handleMarkers returns the selector metadata the entry form needs: marker
// definitions and known star alleles per gene.
func (s *Server) handleMarkers(c *gin.Context) {
	genes := make(map[string]gin.H, len(domain.Genes))
	for _, g := range domain.Genes {
		genes[string(g)] = gin.H{
			"drug":         g.DrugOfInterest(),
			"markers":      s.tables.Markers(g),
			"star_alleles": s.tables.StarAlleles(g),
		}
	}
	c.JSON(http.StatusOK, gin.H{"genes": genes})
}

// handleResolve previews a single marker lookup without generating a report.
func (s *Server) handleResolve(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, domain.NewValidationError("body", err.Error(), nil))
		return
	}

	gene, err := domain.ParseGene(req.Gene)
	if err != nil {
		s.writeError(c, domain.NewValidationError("gene", err.Error(), req.Gene))
		return
	}

	result, err := s.resolver.Resolve(gene, req.Input)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleGenerateReport resolves all markers, renders the DOCX report, stores
// the audit record, and returns the document for download.
func (s *Server) handleGenerateReport(c *gin.Context) {
	var req generateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, domain.NewValidationError("body", err.Error(), nil))
		return
	}

	request := domain.ReportRequest{
		Patient:   req.Patient,
		Clinical:  req.Clinical,
		Markers:   make(map[domain.Gene]string),
		Genotypes: make(map[domain.Gene]map[string]string),
	}
	for name, input := range req.Markers {
		gene, err := domain.ParseGene(name)
		if err != nil {
			s.writeError(c, domain.NewValidationError("markers", err.Error(), name))
			return
		}
		request.Markers[gene] = input
	}
	for name, calls := range req.Genotypes {
		gene, err := domain.ParseGene(name)
		if err != nil {
			s.writeError(c, domain.NewValidationError("genotypes", err.Error(), name))
			return
		}
		request.Genotypes[gene] = calls
	}

	report, err := s.reports.Generate(c.Request.Context(), request)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.Header("X-Report-ID", report.ID)
	c.Header("Content-Disposition", `attachment; filename="`+report.FileName+`"`)
	c.Data(http.StatusOK, docxContentType, report.Document)
}

// handleListReports returns the newest report records.
func (s *Server) handleListReports(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(c, domain.NewValidationError("limit", "limit must be a positive integer", raw))
			return
		}
		limit = n
	}

	records, err := s.records.List(c.Request.Context(), limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if records == nil {
		records = []*reportstore.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"reports": records, "count": len(records)})
}

// handleGetReport returns one report record without document bytes.
func (s *Server) handleGetReport(c *gin.Context) {
	rec, err := s.records.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	rec.Document = nil
	c.JSON(http.StatusOK, rec)
}

// handleDownloadReport re-serves the stored document of a past report.
func (s *Server) handleDownloadReport(c *gin.Context) {
	rec, err := s.records.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+rec.FileName+`"`)
	c.Data(http.StatusOK, docxContentType, rec.Document)
}

// handleDeleteReport removes a stored report record.
func (s *Server) handleDeleteReport(c *gin.Context) {
	if err := s.records.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// writeError maps error kinds to HTTP status codes and a standardized body.
func (s *Server) writeError(c *gin.Context, err error) {
	var (
		status int
		code   string
	)
	switch {
	case err == reportstore.ErrNotFound:
		status, code = http.StatusNotFound, domain.ErrStore
	case domain.IsValidation(err):
		status, code = http.StatusBadRequest, domain.ErrMalformedInput
	case domain.IsUnknownCombination(err):
		status, code = http.StatusUnprocessableEntity, domain.ErrUnknownCombination
	case domain.IsTemplateLoad(err):
		status, code = http.StatusInternalServerError, domain.ErrTemplateLoad
	default:
		status, code = http.StatusInternalServerError, domain.ErrInternalServer
	}

	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).Error("Request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": domain.NewReportError(code, err.Error(), ""),
	})
}
