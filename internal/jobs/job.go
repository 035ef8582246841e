// Package jobs tracks one AI processing request end to end, independent of
// which queue currently holds it, so a client can poll a stable status.
package jobs

import "time"

// Status enumerates a Job's lifecycle states.
type Status string

const (
	StatusQueued     Status = "QUEUED"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusRetrying   Status = "RETRYING"
)

var jobTransitions = map[Status]map[Status]bool{
	StatusQueued:     {StatusProcessing: true},
	StatusProcessing: {StatusCompleted: true, StatusFailed: true, StatusRetrying: true},
	StatusRetrying:   {StatusQueued: true},
	StatusCompleted:  {},
	StatusFailed:     {},
}

// IsJobTransitionValid reports whether from -> to is an adjacent, allowed Job transition.
func IsJobTransitionValid(from, to Status) bool {
	edges, ok := jobTransitions[from]
	if !ok {
		return false
	}
	return edges[to]
}

// Job is one AI processing request's tracked state.
type Job struct {
	ID             string    `json:"id"`
	TenantID       string    `json:"tenant_id"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Status         Status    `json:"status"`
	RetryCount     int       `json:"retry_count"`
	MaxRetries     int       `json:"max_retries"`
	NextRetryAt    time.Time `json:"next_retry_at,omitempty"`
	Result         string    `json:"result,omitempty"`
	Error          string    `json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// New creates a QUEUED job.
func New(id, tenantID, conversationID string, maxRetries int) *Job {
	now := time.Now()
	return &Job{
		ID:             id,
		TenantID:       tenantID,
		ConversationID: conversationID,
		Status:         StatusQueued,
		MaxRetries:     maxRetries,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// TransitionTo applies a Job status transition, rejecting non-adjacent moves without mutation.
func (j *Job) TransitionTo(to Status) error {
	if !IsJobTransitionValid(j.Status, to) {
		return &InvalidTransitionError{From: j.Status, To: to}
	}
	j.Status = to
	j.UpdatedAt = time.Now()
	return nil
}

// IsTerminal reports whether the job has reached COMPLETED or exhausted FAILED.
func (j *Job) IsTerminal() bool {
	return len(jobTransitions[j.Status]) == 0
}

// InvalidTransitionError reports a rejected Job status transition.
type InvalidTransitionError struct {
	From, To Status
}

func (e *InvalidTransitionError) Error() string {
	return "invalid job transition: " + string(e.From) + " -> " + string(e.To)
}
