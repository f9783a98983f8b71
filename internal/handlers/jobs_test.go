package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/rando-engine/pkg/queue"
)

type fakeQueue struct {
	mu   sync.Mutex
	jobs []*queue.Job
	err  error
}

func (f *fakeQueue) Enqueue(_ context.Context, job *queue.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakeQueue) Depth(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.jobs), nil
}

func TestJobsHandler(t *testing.T) {
	q := &fakeQueue{}
	h := NewJobsHandler(testStorage(t), q, nil, "sm", testLogger())

	rr := do(t, h, http.MethodPost, "/v1/jobs", `{"items": ["Morph"], "techs": ["canIBJ"], "start": "Ship"}`)
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())

	resp := decode[JobResponse](t, rr)
	assert.Equal(t, "sm", resp.World)
	assert.Equal(t, 1, resp.Depth)
	_, err := uuid.Parse(resp.ID)
	assert.NoError(t, err)

	require.Len(t, q.jobs, 1)
	job := q.jobs[0]
	assert.Equal(t, resp.ID, job.ID)
	assert.Equal(t, []string{"Morph"}, job.Items)
	assert.Equal(t, []string{"canIBJ"}, job.Techs)
	assert.Equal(t, "Ship", job.Start)
	assert.False(t, job.EnqueuedAt.IsZero())

	rr = do(t, h, http.MethodPost, "/v1/jobs", `{"region_id": 9, "node_id": 1}`)
	require.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, 2, decode[JobResponse](t, rr).Depth)
}

func TestJobsHandler_Errors(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		body     string
		queueErr error
		status   int
	}{
		{"wrong method", http.MethodGet, "", nil, http.StatusMethodNotAllowed},
		{"malformed", http.MethodPost, `{"items": 3}`, nil, http.StatusBadRequest},
		{"no origin", http.MethodPost, `{"items": []}`, nil, http.StatusBadRequest},
		{"unknown start", http.MethodPost, `{"start": "Shipp"}`, nil, http.StatusNotFound},
		{"unknown world", http.MethodPost, `{"world": "z3", "start": "Ship"}`, nil, http.StatusNotFound},
		{"queue down", http.MethodPost, `{"start": "Ship"}`, errors.New("connection refused"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &fakeQueue{err: tt.queueErr}
			h := NewJobsHandler(testStorage(t), q, nil, "sm", testLogger())
			rr := do(t, h, tt.method, "/v1/jobs", tt.body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
			assert.Empty(t, q.jobs, "rejected requests are not queued")
		})
	}
}
