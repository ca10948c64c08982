package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/makeasinger/scales/internal/logger"
	"github.com/makeasinger/scales/internal/model"
	"github.com/makeasinger/scales/internal/theory"
	"github.com/redis/go-redis/v9"
)

const (
	TaskTypePitchTable = "pitchtable:generate"
	QueuePitchTable    = "pitchtable"
	jobTTL             = 24 * time.Hour

	maxJobUpdateAttempts = 10
)

// Enqueuer is the part of *asynq.Client the job service needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// JobService queues pitch-table jobs and keeps their records in Redis.
type JobService struct {
	redis    *redis.Client
	enqueuer Enqueuer
	scales   *ScaleService
}

func NewJobService(redisClient *redis.Client, enqueuer Enqueuer, scales *ScaleService) *JobService {
	return &JobService{
		redis:    redisClient,
		enqueuer: enqueuer,
		scales:   scales,
	}
}

// StartPitchTable queues a job spelling the scale from every common root
func (s *JobService) StartPitchTable(ctx context.Context, scaleID uuid.UUID) (*model.JobStartResponse, error) {
	scale, err := s.scales.Get(ctx, scaleID)
	if err != nil {
		return nil, err
	}

	jobID := uuid.New().String()
	now := time.Now().UTC()

	payloadBytes, err := json.Marshal(&model.PitchTableJobPayload{
		ScaleID:   scale.ID,
		Name:      scale.PrimaryName(),
		Intervals: scale.Intervals,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	job := &model.Job{
		ID:        jobID,
		Type:      model.JobTypePitchTable,
		Status:    model.JobStatusQueued,
		Payload:   payloadBytes,
		CreatedAt: now,
	}
	if err := s.saveJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	task, err := NewPitchTableTask(jobID, payloadBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	_, err = s.enqueuer.EnqueueContext(ctx, task,
		asynq.Queue(QueuePitchTable),
		asynq.MaxRetry(3),
		asynq.Retention(jobTTL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	logger.Info("Pitch table job queued", logger.Fields{"job_id": jobID, "scale_id": scaleID.String()})

	return &model.JobStartResponse{
		JobID:     jobID,
		Status:    model.JobStatusQueued,
		CreatedAt: now,
	}, nil
}

// GetStatus returns the current status of a job
func (s *JobService) GetStatus(ctx context.Context, jobID string) (*model.JobStatusResponse, error) {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	return &model.JobStatusResponse{
		JobID:       job.ID,
		Type:        job.Type,
		Status:      job.Status,
		Progress:    job.Progress,
		CurrentStep: job.CurrentStep,
		Error:       job.Error,
		CreatedAt:   job.CreatedAt,
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
		RetryCount:  job.RetryCount,
	}, nil
}

// GetResult returns the pitch table of a completed job
func (s *JobService) GetResult(ctx context.Context, jobID string) (*model.PitchTableResult, error) {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status != model.JobStatusSucceeded {
		return nil, ErrJobNotCompleted
	}

	var result model.PitchTableResult
	if err := json.Unmarshal(job.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return &result, nil
}

// Cancel marks a queued or running job as canceled; the worker stops at its next step
func (s *JobService) Cancel(ctx context.Context, jobID string) (*model.JobCancelResponse, error) {
	err := s.updateJob(ctx, jobID, func(job *model.Job) error {
		if job.Finished() {
			return ErrJobAlreadyFinished
		}
		job.Status = model.JobStatusCanceled
		now := time.Now().UTC()
		job.CompletedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &model.JobCancelResponse{
		Success: true,
		JobID:   jobID,
		Status:  model.JobStatusCanceled,
	}, nil
}

// UpdateJobProgress records progress and moves a queued job to running.
// It returns ErrJobCanceled once the job has been canceled.
func (s *JobService) UpdateJobProgress(ctx context.Context, jobID string, progress int, step string) error {
	return s.updateJob(ctx, jobID, func(job *model.Job) error {
		if job.Status == model.JobStatusCanceled {
			return ErrJobCanceled
		}

		job.Progress = progress
		job.CurrentStep = step

		if job.Status == model.JobStatusQueued {
			job.Status = model.JobStatusRunning
			now := time.Now().UTC()
			job.StartedAt = &now
		}
		return nil
	})
}

// CompleteJob stores the result and marks the job succeeded.
// A canceled job keeps its status and ErrJobCanceled is returned.
func (s *JobService) CompleteJob(ctx context.Context, jobID string, result interface{}) error {
	resultBytes, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return s.updateJob(ctx, jobID, func(job *model.Job) error {
		if job.Status == model.JobStatusCanceled {
			return ErrJobCanceled
		}

		job.Status = model.JobStatusSucceeded
		job.Progress = 100
		job.CurrentStep = ""
		job.Result = resultBytes
		now := time.Now().UTC()
		job.CompletedAt = &now
		return nil
	})
}

// FailJob marks the job failed with a message
func (s *JobService) FailJob(ctx context.Context, jobID string, errMsg string) error {
	return s.updateJob(ctx, jobID, func(job *model.Job) error {
		if job.Status == model.JobStatusCanceled {
			return ErrJobCanceled
		}

		job.Status = model.JobStatusFailed
		job.Error = &errMsg
		now := time.Now().UTC()
		job.CompletedAt = &now
		return nil
	})
}

// IncrementRetry counts a re-delivery of the job's task
func (s *JobService) IncrementRetry(ctx context.Context, jobID string) error {
	return s.updateJob(ctx, jobID, func(job *model.Job) error {
		job.RetryCount++
		return nil
	})
}

// updateJob applies mutate to the stored record inside a WATCH/MULTI transaction,
// retrying when another writer touched the key first.
func (s *JobService) updateJob(ctx context.Context, jobID string, mutate func(job *model.Job) error) error {
	key := jobKey(jobID)

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrJobNotFound
			}
			return err
		}

		var job model.Job
		if err := json.Unmarshal(data, &job); err != nil {
			return err
		}
		if err := mutate(&job); err != nil {
			return err
		}

		updated, err := json.Marshal(&job)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, jobTTL)
			return nil
		})
		return err
	}

	for i := 0; i < maxJobUpdateAttempts; i++ {
		err := s.redis.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("failed to update job %s: %w", jobID, redis.TxFailedErr)
}

// GetJob loads the raw job record
func (s *JobService) GetJob(ctx context.Context, jobID string) (*model.Job, error) {
	data, err := s.redis.Get(ctx, jobKey(jobID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}

	var job model.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *JobService) saveJob(ctx context.Context, job *model.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, jobKey(job.ID), data, jobTTL).Err()
}

func jobKey(jobID string) string {
	return fmt.Sprintf("job:%s", jobID)
}

// PitchTableTask is the asynq task body
type PitchTableTask struct {
	JobID   string          `json:"jobId"`
	Payload json.RawMessage `json:"payload"`
}

func NewPitchTableTask(jobID string, payload []byte) (*asynq.Task, error) {
	data, err := json.Marshal(PitchTableTask{JobID: jobID, Payload: payload})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypePitchTable, data), nil
}

// PitchTableAccidentals are the accidentals tried on each letter when building a table.
var PitchTableAccidentals = []theory.Accidental{theory.Flat, theory.Natural, theory.Sharp}

// PitchTableRows spells the intervals from every accidental of one letter.
func PitchTableRows(class theory.PitchClass, intervals []theory.Interval) []model.PitchTableRow {
	rows := make([]model.PitchTableRow, 0, len(PitchTableAccidentals))
	for _, acc := range PitchTableAccidentals {
		root := theory.NewPitch(class, acc)
		pitches := theory.GenerateScalePitches(root, intervals)
		rows = append(rows, model.PitchTableRow{
			Root:    root,
			Pitches: pitches,
			Spelled: Spell(pitches),
		})
	}
	return rows
}
