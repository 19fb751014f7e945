package searchgoat

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrNoMoreItems     = errors.New("no more items")
	ErrJobNotCompleted = errors.New("job is not in completed state")
	ErrNilJob          = errors.New("job is nil")
)

// ConfigurationError indicates missing or invalid local setup. It is raised
// before any network activity and names every missing field at once.
type ConfigurationError struct {
	Missing []string
	Reason  string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("configuration error: missing required settings: %s", strings.Join(e.Missing, ", "))
	}

	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// AuthenticationError indicates a failed credential exchange or a repeated
// 401 after one re-authentication attempt.
type AuthenticationError struct {
	Status int
	Detail string
}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("authentication failed: %s (status: %d)", e.Detail, e.Status)
	}

	return fmt.Sprintf("authentication failed: %s", e.Detail)
}

// QuerySyntaxError indicates the service rejected the query shape (HTTP 400).
type QuerySyntaxError struct {
	Detail string
}

// Error implements the error interface.
func (e *QuerySyntaxError) Error() string {
	return fmt.Sprintf("invalid query: %s", e.Detail)
}

// JobTimeoutError indicates the client-side wait exceeded its timeout. The
// remote job keeps running; poll again later or cancel it explicitly.
type JobTimeoutError struct {
	JobID   string
	Timeout time.Duration
}

// Error implements the error interface.
func (e *JobTimeoutError) Error() string {
	return fmt.Sprintf("job %s did not complete within %s", e.JobID, e.Timeout)
}

// JobFailedError indicates the job reached the failed terminal state, with
// the service-reported reason.
type JobFailedError struct {
	JobID  string
	Reason string
}

// Error implements the error interface.
func (e *JobFailedError) Error() string {
	return fmt.Sprintf("job %s failed: %s", e.JobID, e.Reason)
}

// JobCanceledError indicates the job reached the canceled terminal state.
type JobCanceledError struct {
	JobID string
}

// Error implements the error interface.
func (e *JobCanceledError) Error() string {
	return fmt.Sprintf("job %s was canceled", e.JobID)
}

// RateLimitError indicates HTTP 429. RetryAfter carries the wait the service
// asked for; the client never retries on its own.
type RateLimitError struct {
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
}

// NetworkError wraps a connection or timeout failure from the transport.
// These are always eligible for caller-level retry.
type NetworkError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServiceError indicates an unexpected server fault (5xx or an unrecognized
// 4xx), carrying status and body for diagnostics.
type ServiceError struct {
	Status int
	Body   []byte
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	body := string(e.Body)
	if len(body) > 512 {
		body = body[:512] + "..."
	}

	return fmt.Sprintf("service error (status: %d): %s", e.Status, body)
}

// IsConfiguration checks if the error is a configuration error.
func IsConfiguration(err error) bool {
	target := &ConfigurationError{}

	return errors.As(err, &target)
}

// IsAuthentication checks if the error is an authentication error.
func IsAuthentication(err error) bool {
	target := &AuthenticationError{}

	return errors.As(err, &target)
}

// IsQuerySyntax checks if the error is a query syntax error.
func IsQuerySyntax(err error) bool {
	target := &QuerySyntaxError{}

	return errors.As(err, &target)
}

// IsJobTimeout checks if the error is a client-side wait timeout.
func IsJobTimeout(err error) bool {
	target := &JobTimeoutError{}

	return errors.As(err, &target)
}

// IsJobFailed checks if the error is a server-side job failure.
func IsJobFailed(err error) bool {
	target := &JobFailedError{}

	return errors.As(err, &target)
}

// IsJobCanceled checks if the error is a job cancellation.
func IsJobCanceled(err error) bool {
	target := &JobCanceledError{}

	return errors.As(err, &target)
}

// IsRateLimit checks if the error is a rate limit error.
func IsRateLimit(err error) bool {
	target := &RateLimitError{}

	return errors.As(err, &target)
}

// IsNetwork checks if the error is a transient transport failure.
func IsNetwork(err error) bool {
	target := &NetworkError{}

	return errors.As(err, &target)
}

// IsService checks if the error is an unexpected server fault.
func IsService(err error) bool {
	target := &ServiceError{}

	return errors.As(err, &target)
}
