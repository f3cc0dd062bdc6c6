// Package reportstore persists generated report records so past reports can
// be listed and re-downloaded.
package reportstore

import (
	"context"
	"errors"
	"time"

	"github.com/genopilot-report-server/internal/domain"
)

// ErrNotFound is returned when no record exists for the requested ID.
var ErrNotFound = errors.New("report record not found")

// Record is one generated report: who it was for, what was resolved, and the
// rendered document bytes.
type Record struct {
	ID           string              `json:"id"`
	PatientName  string              `json:"patient_name"`
	RecordNumber string              `json:"record_number"`
	FileName     string              `json:"file_name"`
	Result       domain.ReportResult `json:"result"`
	Document     []byte              `json:"-"`
	CreatedAt    time.Time           `json:"created_at"`
}

// Store is the persistence interface for report records.
type Store interface {
	// Save persists a new record.
	Save(ctx context.Context, rec *Record) error

	// Get retrieves a record by ID, including document bytes.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns up to limit records, newest first, without document bytes.
	List(ctx context.Context, limit int) ([]*Record, error)

	// Delete removes a record by ID.
	Delete(ctx context.Context, id string) error

	// Count returns the total number of records.
	Count(ctx context.Context) (int, error)

	// Close releases the underlying database handle.
	Close() error
}
