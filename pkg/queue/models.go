package queue

import (
	"encoding/json"
	"errors"
	"time"
)

// Job is a reachability query queued for background computation. Workers
// store the answer in the result cache, where a later identical query finds
// it.
type Job struct {
	ID    string   `json:"id"`
	World string   `json:"world"`
	Items []string `json:"items"`
	Techs []string `json:"techs"`

	// Origin: Start by node name, or RegionID and NodeID.
	Start    string `json:"start,omitempty"`
	RegionID *int   `json:"region_id,omitempty"`
	NodeID   *int   `json:"node_id,omitempty"`

	EnqueuedAt time.Time `json:"enqueued_at"`
}

// ErrMissingJobID is returned by FromJSON for a job without an id.
var ErrMissingJobID = errors.New("job has no id")

// ToJSON converts the job to JSON bytes for Redis
func (j *Job) ToJSON() ([]byte, error) {
	return json.Marshal(j)
}

// FromJSON parses a job from JSON bytes
func FromJSON(data []byte) (*Job, error) {
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, err
	}
	if job.ID == "" {
		return nil, ErrMissingJobID
	}
	return &job, nil
}
