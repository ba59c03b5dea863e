// internal/repository/interfaces.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"printer-bridge/internal/model"
)

var (
	// ErrJobNotFound is returned when no journal entry has the requested id
	ErrJobNotFound = errors.New("print job not found")
	// ErrDuplicateJob is returned when a job id is journaled twice
	ErrDuplicateJob = errors.New("print job already journaled")
)

// JobRepository defines print-job journal operations
type JobRepository interface {
	Create(ctx context.Context, job *model.PrintJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.PrintJob, error)
	List(ctx context.Context, filter *JobFilter) ([]*model.PrintJob, int, error)
	Stats(ctx context.Context, since time.Time) (*JobStats, error)
	DeleteOlderThan(ctx context.Context, olderThan time.Time) (int64, error)
}

// JobFilter represents journal listing filters
type JobFilter struct {
	Identifier *string          `json:"identifier,omitempty"`
	Status     *model.JobStatus `json:"status,omitempty"`
	StartDate  *time.Time       `json:"start_date,omitempty"`
	EndDate    *time.Time       `json:"end_date,omitempty"`
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
}

// JobStats summarizes journaled jobs
type JobStats struct {
	Total         int     `json:"total"`
	Succeeded     int     `json:"succeeded"`
	Failed        int     `json:"failed"`
	Rejected      int     `json:"rejected"`
	TotalBytes    int64   `json:"total_bytes"`
	AvgDurationMs float64 `json:"avg_duration_ms"`
}
