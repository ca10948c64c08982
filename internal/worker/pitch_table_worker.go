package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hibiken/asynq"
	"github.com/makeasinger/scales/internal/logger"
	"github.com/makeasinger/scales/internal/model"
	"github.com/makeasinger/scales/internal/service"
	"github.com/makeasinger/scales/internal/theory"
	"github.com/makeasinger/scales/internal/websocket"
)

// ResultStore publishes a finished table and returns its download URL
type ResultStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// PitchTableWorker spells a scale from every letter and accidental
type PitchTableWorker struct {
	jobs  *service.JobService
	hub   *websocket.Hub
	store ResultStore
}

// NewPitchTableWorker creates the worker; store may be nil.
func NewPitchTableWorker(jobs *service.JobService, hub *websocket.Hub, store ResultStore) *PitchTableWorker {
	return &PitchTableWorker{
		jobs:  jobs,
		hub:   hub,
		store: store,
	}
}

// ProcessTask handles pitchtable:generate tasks
func (w *PitchTableWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var task service.PitchTableTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		// nothing to retry
		return fmt.Errorf("failed to unmarshal task payload: %v: %w", err, asynq.SkipRetry)
	}

	jobID := task.JobID
	fields := logger.Fields{"job_id": jobID}

	if retried, ok := asynq.GetRetryCount(ctx); ok && retried > 0 {
		if err := w.jobs.IncrementRetry(ctx, jobID); err != nil {
			logger.Warn("Failed to count retry", logger.Fields{"job_id": jobID, "error": err.Error()})
		}
	}

	logger.Info("Starting pitch table job", fields)

	var payload model.PitchTableJobPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		w.failJob(ctx, jobID, "Invalid payload")
		return fmt.Errorf("failed to unmarshal pitch table payload: %v: %w", err, asynq.SkipRetry)
	}

	result, err := w.build(ctx, jobID, &payload)
	if errors.Is(err, service.ErrJobCanceled) {
		logger.Info("Pitch table job canceled", fields)
		return nil
	}
	if err != nil {
		return err
	}

	if w.store != nil {
		w.publish(ctx, jobID, result)
	}

	// a cancel during publish wins over the result
	err = w.jobs.CompleteJob(ctx, jobID, result)
	if errors.Is(err, service.ErrJobCanceled) {
		logger.Info("Pitch table job canceled before completion", fields)
		return nil
	}
	if err != nil {
		w.failJob(ctx, jobID, "Failed to save result")
		return err
	}

	w.hub.BroadcastComplete(jobID, result)

	logger.Info("Pitch table job completed", logger.Fields{"job_id": jobID, "rows": len(result.Rows)})
	return nil
}

func (w *PitchTableWorker) build(ctx context.Context, jobID string, payload *model.PitchTableJobPayload) (*model.PitchTableResult, error) {
	letters := theory.PitchClassB - theory.PitchClassC + 1
	result := &model.PitchTableResult{
		ScaleID: payload.ScaleID,
		Name:    payload.Name,
		Rows:    make([]model.PitchTableRow, 0, int(letters)*len(service.PitchTableAccidentals)),
	}

	for class := theory.PitchClassC; class <= theory.PitchClassB; class++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		step := fmt.Sprintf("Spelling from %s", class)
		progress := int(class+1) * 100 / int(letters+1)

		err := w.jobs.UpdateJobProgress(ctx, jobID, progress, step)
		if errors.Is(err, service.ErrJobCanceled) || errors.Is(err, service.ErrJobNotFound) {
			return nil, err
		}
		if err != nil {
			logger.Warn("Failed to update progress", logger.Fields{"job_id": jobID, "error": err.Error()})
		}
		w.hub.BroadcastProgress(jobID, progress, model.JobStatusRunning, step)

		result.Rows = append(result.Rows, service.PitchTableRows(class, payload.Intervals)...)
	}

	result.GeneratedAt = time.Now().UTC()
	return result, nil
}

// publish uploads the table; a failed upload leaves the result without a link
func (w *PitchTableWorker) publish(ctx context.Context, jobID string, result *model.PitchTableResult) {
	data, err := json.Marshal(result)
	if err != nil {
		logger.Error("Failed to marshal pitch table", err, logger.Fields{"job_id": jobID})
		return
	}

	key := fmt.Sprintf("pitch-tables/%s/%s.json", result.ScaleID, jobID)
	url, err := w.store.Upload(ctx, key, bytes.NewReader(data), "application/json")
	if err != nil {
		logger.Warn("Failed to publish pitch table", logger.Fields{"job_id": jobID, "error": err.Error()})
		return
	}
	result.DownloadURL = url
}

func (w *PitchTableWorker) failJob(ctx context.Context, jobID, errMsg string) {
	err := w.jobs.FailJob(ctx, jobID, errMsg)
	if errors.Is(err, service.ErrJobCanceled) {
		return
	}
	if err != nil {
		logger.Error("Failed to mark job as failed", err, logger.Fields{"job_id": jobID})
	}
	w.hub.BroadcastError(jobID, "PITCH_TABLE_FAILED", errMsg)
}
