package jobs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokowa/commerce-agent/internal/jobs"
)

func TestNewJobStartsQueued(t *testing.T) {
	job := jobs.New("job-1", "tenant-1", "conv-1", 3)

	assert.Equal(t, jobs.StatusQueued, job.Status)
	assert.False(t, job.IsTerminal())
}

func TestJobTransitionHappyPathToCompleted(t *testing.T) {
	job := jobs.New("job-1", "tenant-1", "", 3)

	require.NoError(t, job.TransitionTo(jobs.StatusProcessing))
	require.NoError(t, job.TransitionTo(jobs.StatusCompleted))
	assert.True(t, job.IsTerminal())
}

func TestJobTransitionRetryLoopsBackToQueued(t *testing.T) {
	job := jobs.New("job-1", "tenant-1", "", 3)

	require.NoError(t, job.TransitionTo(jobs.StatusProcessing))
	require.NoError(t, job.TransitionTo(jobs.StatusRetrying))
	require.NoError(t, job.TransitionTo(jobs.StatusQueued))
	assert.Equal(t, jobs.StatusQueued, job.Status)
}

func TestJobTransitionRejectsSkippedState(t *testing.T) {
	job := jobs.New("job-1", "tenant-1", "", 3)

	err := job.TransitionTo(jobs.StatusCompleted)

	assert.Error(t, err)
	assert.Equal(t, jobs.StatusQueued, job.Status)
}

func TestJobTransitionRejectsFromTerminalState(t *testing.T) {
	job := jobs.New("job-1", "tenant-1", "", 3)
	require.NoError(t, job.TransitionTo(jobs.StatusProcessing))
	require.NoError(t, job.TransitionTo(jobs.StatusFailed))

	assert.True(t, job.IsTerminal())
	assert.Error(t, job.TransitionTo(jobs.StatusQueued))
}

func TestIsJobTransitionValidUnknownFromState(t *testing.T) {
	assert.False(t, jobs.IsJobTransitionValid("BOGUS", jobs.StatusQueued))
}
