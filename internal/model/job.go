package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/makeasinger/scales/internal/theory"
)

// Job status
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCanceled  JobStatus = "canceled"
)

// Job types
const (
	JobTypePitchTable = "pitchtable"
)

// Job represents a background job in the system
type Job struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Status      JobStatus       `json:"status"`
	Progress    int             `json:"progress"`
	CurrentStep string          `json:"currentStep,omitempty"`
	Error       *string         `json:"error,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	StartedAt   *time.Time      `json:"startedAt,omitempty"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
	RetryCount  int             `json:"retryCount"`
}

// Finished reports whether the job reached a terminal status.
func (j *Job) Finished() bool {
	switch j.Status {
	case JobStatusSucceeded, JobStatusFailed, JobStatusCanceled:
		return true
	}
	return false
}

// PitchTableJobPayload contains the data for a pitch-table job
type PitchTableJobPayload struct {
	ScaleID   uuid.UUID         `json:"scaleId"`
	Name      string            `json:"name"`
	Intervals []theory.Interval `json:"intervals"`
}

// PitchTableRow is the scale spelled from one root
type PitchTableRow struct {
	Root    theory.Pitch   `json:"root"`
	Pitches []theory.Pitch `json:"pitches"`
	Spelled []string       `json:"spelled"`
}

// PitchTableResult is the output of a completed pitch-table job
type PitchTableResult struct {
	ScaleID     uuid.UUID       `json:"scaleId"`
	Name        string          `json:"name"`
	Rows        []PitchTableRow `json:"rows"`
	DownloadURL string          `json:"downloadUrl,omitempty"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

// JobStartResponse is returned when a job is queued
type JobStartResponse struct {
	JobID     string    `json:"jobId"`
	Status    JobStatus `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// JobStatusResponse represents the status of a job
type JobStatusResponse struct {
	JobID       string     `json:"jobId"`
	Type        string     `json:"type"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`
	CurrentStep string     `json:"currentStep,omitempty"`
	Error       *string    `json:"error"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt"`
	RetryCount  int        `json:"retryCount"`
}

// JobCancelResponse represents the response when canceling a job
type JobCancelResponse struct {
	Success bool      `json:"success"`
	JobID   string    `json:"jobId"`
	Status  JobStatus `json:"status"`
}
