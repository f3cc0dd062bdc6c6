// Package testutil provides shared helpers for package tests.
package testutil

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Patient: {patient_name} ({patient_record})</w:t></w:r></w:p>
<w:p><w:r><w:t>Sex: {patient_sex} Born: {patient_birth_date}</w:t></w:r></w:p>
<w:p><w:r><w:t>Illness: {clinical_current_illness}</w:t></w:r></w:p>
<w:p><w:r><w:t>Conditions: {clinical_other_conditions}</w:t></w:r></w:p>
<w:p><w:r><w:t>Treatment: {clinical_treatment}</w:t></w:r></w:p>
<w:p><w:r><w:t>DPYD: {dpyd_diplotype} {dpyd_phenotype} {dpyd_drug}</w:t></w:r></w:p>
<w:p><w:r><w:t>{dpyd_recommendation}</w:t></w:r></w:p>
<w:p><w:r><w:t>CYP2D6: {cyp2d6_diplotype} {cyp2d6_phenotype} {cyp2d6_drug}</w:t></w:r></w:p>
<w:p><w:r><w:t>{cyp2d6_recommendation}</w:t></w:r></w:p>
<w:p><w:r><w:t>UGT1A1: {ugt1a1_diplotype} {ugt1a1_phenotype} {ugt1a1_drug}</w:t></w:r></w:p>
<w:p><w:r><w:t>{ugt1a1_recommendation}</w:t></w:r></w:p>
<w:p><w:r><w:t>Polymorphisms: {polymorphisms}</w:t></w:r></w:p>
<w:p><w:r><w:t>Sample {sample_code} requested {request_date} reported {report_date}</w:t></w:r></w:p>
<w:p><w:r><w:t>Generated {generated_at} v{version}</w:t></w:r></w:p>
</w:body>
</w:document>`

// ReportTemplateBytes builds a minimal DOCX document containing every
// placeholder the renderer substitutes.
func ReportTemplateBytes(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, part := range []struct {
		name, body string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/document.xml", documentXML},
	} {
		w, err := zw.Create(part.name)
		if err != nil {
			t.Fatalf("creating %s: %v", part.name, err)
		}
		if _, err := w.Write([]byte(part.body)); err != nil {
			t.Fatalf("writing %s: %v", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing template archive: %v", err)
	}
	return buf.Bytes()
}

// WriteReportTemplate writes the minimal template into dir and returns its
// path.
func WriteReportTemplate(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "report_template.docx")
	if err := os.WriteFile(path, ReportTemplateBytes(t), 0o644); err != nil {
		t.Fatalf("writing template: %v", err)
	}
	return path
}

// DocumentXML extracts word/document.xml from rendered DOCX bytes.
func DocumentXML(t *testing.T, document []byte) string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(document), int64(len(document)))
	if err != nil {
		t.Fatalf("opening rendered document: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("opening word/document.xml: %v", err)
		}
		defer rc.Close()
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			t.Fatalf("reading word/document.xml: %v", err)
		}
		return buf.String()
	}
	t.Fatal("rendered document has no word/document.xml")
	return ""
}
