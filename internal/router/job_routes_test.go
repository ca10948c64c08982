package router

import (
	"context"
	"net/http"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEnqueuer struct {
	count int
}

func (e *countingEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	e.count++
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

func TestPitchTableJobRoutes(t *testing.T) {
	enq := &countingEnqueuer{}
	ta := setupJobsApp(t, enq)
	id := createDorian(t, ta)

	resp := doRequest(t, ta.app, http.MethodPost, "/api/scales/"+id+"/pitch-table", "", nil)
	assertStatus(t, resp, http.StatusUnauthorized)

	resp = ta.doAuthRequest(t, http.MethodPost, "/api/scales/"+id+"/pitch-table", "")
	assertStatus(t, resp, http.StatusAccepted)
	started := parseJSON(t, resp)
	assert.Equal(t, "queued", started["status"])
	assert.Equal(t, 1, enq.count)

	jobID, ok := started["jobId"].(string)
	require.True(t, ok)

	resp = doRequest(t, ta.app, http.MethodGet, "/api/jobs/"+jobID, "", nil)
	assertStatus(t, resp, http.StatusOK)
	assert.Equal(t, "pitchtable", parseJSON(t, resp)["type"])

	resp = doRequest(t, ta.app, http.MethodGet, "/api/jobs/"+jobID+"/result", "", nil)
	assertStatus(t, resp, http.StatusBadRequest)
	assert.Equal(t, "JOB_NOT_READY", errorCode(t, resp))

	resp = ta.doAuthRequest(t, http.MethodPost, "/api/jobs/"+jobID+"/cancel", "")
	assertStatus(t, resp, http.StatusOK)
	assert.Equal(t, "canceled", parseJSON(t, resp)["status"])

	resp = ta.doAuthRequest(t, http.MethodPost, "/api/jobs/"+jobID+"/cancel", "")
	assertStatus(t, resp, http.StatusBadRequest)

	resp = doRequest(t, ta.app, http.MethodGet, "/api/jobs/missing", "", nil)
	assertStatus(t, resp, http.StatusNotFound)
}
