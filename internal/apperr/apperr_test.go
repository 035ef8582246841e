package apperr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tokowa/commerce-agent/internal/apperr"
)

func TestNewErrorCarriesKindAndMessage(t *testing.T) {
	err := apperr.NotFound("tenant not found")

	assert.Equal(t, "tenant not found", err.Error())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestWrapIncludesCauseInMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperr.Fatal(cause, "get tenant")

	assert.Contains(t, err.Error(), "get tenant")
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, apperr.KindFatal, apperr.KindOf(err))
}

func TestWrapWithNilCauseBehavesLikeNew(t *testing.T) {
	err := apperr.TransientInfra(nil, "publish task")

	assert.Equal(t, "publish task", err.Error())
	assert.Equal(t, apperr.KindTransientInfra, apperr.KindOf(err))
}

func TestUnwrapExposesCauseToErrorsIs(t *testing.T) {
	sentinel := errors.New("boom")
	err := apperr.Fatal(sentinel, "update tenant")

	assert.True(t, errors.Is(err, sentinel))
}

func TestKindOfDefaultsToFatalForPlainErrors(t *testing.T) {
	assert.Equal(t, apperr.KindFatal, apperr.KindOf(errors.New("unwrapped")))
}
