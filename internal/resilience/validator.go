package resilience

import (
	"regexp"
	"strings"
)

// Quality classifies a candidate LLM response.
type Quality string

const (
	QualityValid           Quality = "valid"
	QualityEmpty           Quality = "empty"
	QualityWhitespaceOnly  Quality = "whitespace_only"
	QualityTooShort        Quality = "too_short"
	QualityErrorIndicator  Quality = "error_indicator"
)

// DefaultMinLength is the default minimum acceptable response length.
const DefaultMinLength = 10

// Validation is the outcome of Validate.
type Validation struct {
	IsValid bool
	Quality Quality
	Reason  string
}

var errorIndicatorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^error:`),
	regexp.MustCompile(`(?i)^sorry,? i (can't|cannot|am unable)`),
	regexp.MustCompile(`(?i)^as an ai`),
	regexp.MustCompile(`(?i)^\[truncated\]`),
}

// Validate classifies a candidate response string, using minLength (or
// DefaultMinLength if <= 0) as the too-short threshold.
func Validate(response string, minLength int) Validation {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}

	if response == "" {
		return Validation{IsValid: false, Quality: QualityEmpty, Reason: "response is empty"}
	}

	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		return Validation{IsValid: false, Quality: QualityWhitespaceOnly, Reason: "response is whitespace only"}
	}

	if len(trimmed) < minLength {
		return Validation{IsValid: false, Quality: QualityTooShort, Reason: "response shorter than minimum length"}
	}

	for _, pattern := range errorIndicatorPatterns {
		if pattern.MatchString(trimmed) {
			return Validation{IsValid: false, Quality: QualityErrorIndicator, Reason: "response matches an error-indicator pattern"}
		}
	}

	return Validation{IsValid: true, Quality: QualityValid}
}

// IsRetryableFailure reports whether a failed Validation belongs to a
// transient class worth retrying (empty, whitespace_only, too_short).
// error_indicator failures are not retried.
func IsRetryableFailure(v Validation) bool {
	switch v.Quality {
	case QualityEmpty, QualityWhitespaceOnly, QualityTooShort:
		return true
	default:
		return false
	}
}
