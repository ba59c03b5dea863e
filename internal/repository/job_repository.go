// internal/repository/job_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"printer-bridge/internal/model"
	"printer-bridge/internal/utils"
)

const uniqueViolation = "23505"

const jobColumns = `id, identifier, interface, emulation, command_count, byte_count,
	status, fault_code, error_message, duration_ms, created_at`

// Querier is the subset of *sql.DB the repository needs
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// jobRepository implements JobRepository on PostgreSQL
type jobRepository struct {
	db     Querier
	logger *utils.ServiceLogger
}

// NewJobRepository creates a new job repository
func NewJobRepository(db Querier, logger *zap.Logger) JobRepository {
	return &jobRepository{
		db:     db,
		logger: utils.NewServiceLogger(logger, "job-repository"),
	}
}

// Create journals a completed job
func (r *jobRepository) Create(ctx context.Context, job *model.PrintJob) error {
	query := `
		INSERT INTO print_jobs (` + jobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	args := []interface{}{
		job.ID, job.Identifier, job.Interface, job.Emulation,
		job.CommandCount, job.ByteCount, job.Status, job.FaultCode,
		job.ErrorMessage, job.DurationMs, job.CreatedAt,
	}
	startTime := time.Now()
	_, err := r.db.ExecContext(ctx, query, args...)
	r.logger.LogDatabaseQuery(query, args, time.Since(startTime), err)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", ErrDuplicateJob, job.ID)
		}
		return fmt.Errorf("failed to create print job: %w", err)
	}

	return nil
}

// GetByID retrieves a job by id
func (r *jobRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PrintJob, error) {
	query := `SELECT ` + jobColumns + ` FROM print_jobs WHERE id = $1`

	job, err := scanJob(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
		}
		return nil, fmt.Errorf("failed to get print job: %w", err)
	}
	return job, nil
}

// List retrieves jobs newest first with filtering and pagination
func (r *jobRepository) List(ctx context.Context, filter *JobFilter) ([]*model.PrintJob, int, error) {
	if filter == nil {
		filter = &JobFilter{}
	}
	whereClause, args := buildJobWhere(filter)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM print_jobs %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count print jobs: %w", err)
	}

	limit, offset := pagination(filter)
	query := fmt.Sprintf(`
		SELECT %s
		FROM print_jobs %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, jobColumns, whereClause, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	startTime := time.Now()
	rows, err := r.db.QueryContext(ctx, query, args...)
	r.logger.LogDatabaseQuery(query, args, time.Since(startTime), err)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list print jobs: %w", err)
	}
	defer rows.Close()

	jobs := []*model.PrintJob{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			r.logger.Error("Failed to scan print job row", zap.Error(err))
			continue
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate print jobs: %w", err)
	}

	return jobs, total, nil
}

// Stats summarizes jobs created since the given time
func (r *jobRepository) Stats(ctx context.Context, since time.Time) (*JobStats, error) {
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3),
			COUNT(*) FILTER (WHERE status = $4),
			COALESCE(SUM(byte_count), 0),
			COALESCE(AVG(duration_ms), 0)
		FROM print_jobs WHERE created_at >= $1
	`

	args := []interface{}{since, model.JobStatusSuccess, model.JobStatusFailed, model.JobStatusRejected}
	stats := &JobStats{}
	startTime := time.Now()
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&stats.Total, &stats.Succeeded, &stats.Failed, &stats.Rejected, &stats.TotalBytes, &stats.AvgDurationMs)
	r.logger.LogDatabaseQuery(query, args, time.Since(startTime), err)
	if err != nil {
		return nil, fmt.Errorf("failed to get print job stats: %w", err)
	}
	return stats, nil
}

// DeleteOlderThan removes journal entries past retention
func (r *jobRepository) DeleteOlderThan(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `DELETE FROM print_jobs WHERE created_at < $1`
	startTime := time.Now()
	result, err := r.db.ExecContext(ctx, query, olderThan)
	r.logger.LogDatabaseQuery(query, []interface{}{olderThan}, time.Since(startTime), err)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old print jobs: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*model.PrintJob, error) {
	job := &model.PrintJob{}
	var faultCode, errorMessage sql.NullString
	err := row.Scan(
		&job.ID, &job.Identifier, &job.Interface, &job.Emulation,
		&job.CommandCount, &job.ByteCount, &job.Status, &faultCode,
		&errorMessage, &job.DurationMs, &job.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if faultCode.Valid {
		job.FaultCode = &faultCode.String
	}
	if errorMessage.Valid {
		job.ErrorMessage = &errorMessage.String
	}
	return job, nil
}

// buildJobWhere renders the filter as a WHERE clause with positional args
func buildJobWhere(filter *JobFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	add := func(condition string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if filter.Identifier != nil {
		add("identifier = $%d", *filter.Identifier)
	}
	if filter.Status != nil {
		add("status = $%d", *filter.Status)
	}
	if filter.StartDate != nil {
		add("created_at >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("created_at <= $%d", *filter.EndDate)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func pagination(filter *JobFilter) (limit, offset int) {
	limit = filter.PerPage
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	return limit, (page - 1) * limit
}
