// internal/model/operation.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the outcome of a print job
type JobStatus string

const (
	JobStatusSuccess  JobStatus = "SUCCESS"
	JobStatusFailed   JobStatus = "FAILED"
	JobStatusRejected JobStatus = "REJECTED"
)

// PrintJob is a journal entry for one print call
type PrintJob struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	Identifier   string        `json:"identifier" db:"identifier"`
	Interface    InterfaceType `json:"interface" db:"interface"`
	Emulation    Emulation     `json:"emulation" db:"emulation"`
	CommandCount int           `json:"command_count" db:"command_count"`
	ByteCount    int           `json:"byte_count" db:"byte_count"`
	Status       JobStatus     `json:"status" db:"status"`
	FaultCode    *string       `json:"fault_code,omitempty" db:"fault_code"`
	ErrorMessage *string       `json:"error_message,omitempty" db:"error_message"`
	DurationMs   int           `json:"duration_ms" db:"duration_ms"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
}

// NewPrintJob creates a journal entry for the current connection
func NewPrintJob(settings ConnectionSettings, emulation Emulation, commandCount int) *PrintJob {
	return &PrintJob{
		ID:           uuid.New(),
		Identifier:   settings.Identifier,
		Interface:    settings.Interface,
		Emulation:    emulation,
		CommandCount: commandCount,
		CreatedAt:    time.Now(),
	}
}

// Complete records the outcome of the job
func (j *PrintJob) Complete(status JobStatus, byteCount int, faultCode string, err error) {
	j.Status = status
	j.ByteCount = byteCount
	j.DurationMs = int(time.Since(j.CreatedAt).Milliseconds())
	if faultCode != "" {
		j.FaultCode = &faultCode
	}
	if err != nil {
		msg := err.Error()
		j.ErrorMessage = &msg
	}
}
