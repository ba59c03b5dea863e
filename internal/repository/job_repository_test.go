// internal/repository/job_repository_test.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"printer-bridge/internal/model"
)

// execQuerier answers ExecContext only
type execQuerier struct {
	result sql.Result
	err    error
	query  string
}

func (q *execQuerier) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	q.query = query
	return q.result, q.err
}

func (q *execQuerier) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, errors.New("not implemented")
}

func (q *execQuerier) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}

func TestBuildJobWhere(t *testing.T) {
	clause, args := buildJobWhere(&JobFilter{})
	assert.Empty(t, clause)
	assert.Empty(t, args)

	identifier := "192.0.2.10:9100"
	status := model.JobStatusFailed
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	clause, args = buildJobWhere(&JobFilter{Identifier: &identifier, Status: &status, StartDate: &start})
	assert.Equal(t, "WHERE identifier = $1 AND status = $2 AND created_at >= $3", clause)
	assert.Equal(t, []interface{}{identifier, status, start}, args)
}

func TestPagination(t *testing.T) {
	tests := []struct {
		filter JobFilter
		limit  int
		offset int
	}{
		{JobFilter{}, 50, 0},
		{JobFilter{Page: 3, PerPage: 20}, 20, 40},
		{JobFilter{Page: -1, PerPage: 10000}, 500, 0},
	}

	for _, tt := range tests {
		limit, offset := pagination(&tt.filter)
		assert.Equal(t, tt.limit, limit)
		assert.Equal(t, tt.offset, offset)
	}
}

func TestCreateLogsFailedQuery(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	db := &execQuerier{err: errors.New("connection reset")}
	repo := NewJobRepository(db, zap.New(core))

	err := repo.Create(context.Background(), &model.PrintJob{ID: uuid.New(), Status: model.JobStatusSuccess})
	require.ErrorContains(t, err, "failed to create print job")

	entries := logs.FilterMessage("Database query failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, db.query, entries[0].ContextMap()["query"])
	assert.Equal(t, "job-repository", entries[0].ContextMap()["service"])
}

func TestDeleteOlderThanLogsQuery(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	repo := NewJobRepository(&execQuerier{result: driverResult(4)}, zap.New(core))

	deleted, err := repo.DeleteOlderThan(context.Background(), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)
	assert.Equal(t, 1, logs.FilterMessage("Database query executed").Len())
}

type driverResult int64

func (r driverResult) LastInsertId() (int64, error) { return 0, nil }
func (r driverResult) RowsAffected() (int64, error) { return int64(r), nil }
