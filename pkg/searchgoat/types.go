package searchgoat

import "time"

// JobState represents the lifecycle state of a search job.
type JobState string

const (
	// JobStateNew means the job was accepted but has not started running.
	JobStateNew JobState = "new"
	// JobStateQueued means the job is waiting for resources.
	JobStateQueued JobState = "queued"
	// JobStateRunning means the search is in progress.
	JobStateRunning JobState = "running"
	// JobStateCompleted means results are ready for retrieval.
	JobStateCompleted JobState = "completed"
	// JobStateFailed means the search encountered a server-side error.
	JobStateFailed JobState = "failed"
	// JobStateCanceled means the search was stopped before completion.
	JobStateCanceled JobState = "canceled"
)

// IsTerminal reports whether no further state transition can occur.
func (s JobState) IsTerminal() bool {
	return s == JobStateCompleted || s == JobStateFailed || s == JobStateCanceled
}

// Job represents a submitted search job. State transitions are driven
// exclusively by polling the job-status endpoint; the client never infers
// state from elapsed time.
type Job struct {
	ID       string   `json:"id"       yaml:"id"`
	Query    string   `json:"query"    yaml:"query"`
	Earliest string   `json:"earliest" yaml:"earliest"`
	Latest   string   `json:"latest"   yaml:"latest"`
	State    JobState `json:"state"    yaml:"state"`

	// RecordCount is populated from the final status response once the job
	// reaches the completed state.
	RecordCount int64 `json:"record_count" yaml:"record_count"`
}

// Record is one search result event as decoded from the service. Values are
// JSON-shaped: bool, json.Number, string, nil, or nested maps/slices.
type Record map[string]interface{}

// SubmitOptions configures job submission.
type SubmitOptions struct {
	// Earliest is the start of the time range, either a relative expression
	// like "-1h" or an absolute timestamp. Defaults to "-1h".
	Earliest string
	// Latest is the end of the time range. Defaults to "now".
	Latest string
}

// WaitOptions configures status polling.
type WaitOptions struct {
	// PollInterval is the sleep between status checks. Defaults to 2s.
	PollInterval time.Duration
	// Timeout bounds the cumulative client-side wait. Defaults to 5m.
	// On expiry the remote job keeps running.
	Timeout time.Duration
}

// StreamOptions configures paginated retrieval.
type StreamOptions struct {
	// PageSize is the number of records requested per page. Defaults to 1000.
	PageSize int
}

// QueryOptions configures the one-call Query composition.
type QueryOptions struct {
	Earliest     string
	Latest       string
	PollInterval time.Duration
	Timeout      time.Duration
	PageSize     int
}

// Defaults applied when options are omitted.
const (
	DefaultEarliest     = "-1h"
	DefaultLatest       = "now"
	DefaultPollInterval = 2 * time.Second
	DefaultWaitTimeout  = 5 * time.Minute
	DefaultPageSize     = 1000
)
