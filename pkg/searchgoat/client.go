package searchgoat

import (
	"context"
	"time"
)

// Client is the public surface of the search-job client. Every method takes a
// context and suspends only on network I/O; run calls on separate goroutines
// to overlap independent jobs. One client instance shares a single cached
// token across all of its jobs.
type Client interface {
	// Submit validates and submits a query, returning the job in whatever
	// state the service reports immediately.
	Submit(ctx context.Context, query string, opts *SubmitOptions) (*Job, error)

	// Status performs a single status poll and returns an updated snapshot.
	Status(ctx context.Context, jobID string) (*Job, error)

	// Wait polls until the job reaches a terminal state or the timeout
	// elapses. Completed returns nil and populates job.RecordCount; failed,
	// canceled, and timeout surface as JobFailedError, JobCanceledError, and
	// JobTimeoutError respectively. Timeout never cancels the remote job.
	Wait(ctx context.Context, job *Job, opts *WaitOptions) error

	// Cancel requests server-side cancellation from any non-terminal state.
	// It does not wait for the transition; a subsequent Wait observes it.
	Cancel(ctx context.Context, job *Job) error

	// Retrieve drains all result pages for a completed job into memory,
	// preserving original row order. Idempotent on a completed job.
	Retrieve(ctx context.Context, job *Job) (*ResultSet, error)

	// Stream returns a single-pass iterator over individual records that
	// holds at most one page in memory. Abandoning the iterator stops all
	// further page fetches.
	Stream(ctx context.Context, job *Job, opts *StreamOptions) (*ResultIterator, error)

	// Query is the submit + wait + retrieve composition.
	Query(ctx context.Context, query string, opts *QueryOptions) (*ResultSet, error)
}

// ResultIterator is a lazy, single-pass cursor over a completed job's
// records. It fetches the next page only after the current one is consumed.
type ResultIterator struct {
	next func(ctx context.Context) (Record, error)
	stop func()
}

// NewResultIterator wires an iterator over a page-fetching source. Intended
// for use by the client implementation.
func NewResultIterator(next func(ctx context.Context) (Record, error), stop func()) *ResultIterator {
	return &ResultIterator{next: next, stop: stop}
}

// Next returns the next record, or ErrNoMoreItems once the cursor chain is
// exhausted. Fetching the following page happens lazily inside Next.
func (it *ResultIterator) Next(ctx context.Context) (Record, error) {
	return it.next(ctx)
}

// Close releases the iterator early. No further pages are fetched.
func (it *ResultIterator) Close() {
	if it.stop != nil {
		it.stop()
	}
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a searchgoat.Client.
//
// # Credentials
//
// ClientID, ClientSecret, OrgID, and Workspace are all required. Use
// sgclient.NewFromEnv to resolve them from CRIBL_* environment variables and
// an optional dotenv file instead of filling them in by hand.
//
// # Endpoints
//
// APIEndpoint defaults to the workspace/org-derived search API base URL.
// AuthURL defaults to the Cribl.Cloud token endpoint. Both are overridable,
// which is how tests point the client at stub servers.
//
// # Retries
//
// The client performs no implicit retries except re-authenticating once after
// a 401. RetryMax enables transport-level retries for callers who want them.
type Config struct {
	// ClientID: OAuth2 client ID from Cribl.Cloud.
	ClientID string
	// ClientSecret: OAuth2 client secret paired with ClientID.
	ClientSecret string
	// OrgID: organization identifier.
	OrgID string
	// Workspace: workspace name.
	Workspace string

	// AuthURL: OAuth2 token endpoint. Defaults to
	// "https://login.cribl.cloud/oauth/token".
	AuthURL string
	// APIEndpoint: search API base URL. Defaults to
	// "https://{workspace}-{orgID}.cribl.cloud/api/v1/m/default_search".
	APIEndpoint string

	// HTTPTimeout: per-request transport timeout. Prefer context deadlines
	// on individual calls; this is a safety net. Defaults to 30s.
	HTTPTimeout time.Duration
	// RetryMax: maximum transport-level retries for transient failures.
	// 0 (the default) disables implicit retries entirely.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMax time.Duration
	// Debug: enables verbose HTTP request/response logging when a Logger is set.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
}

// DefaultAuthURL is the Cribl.Cloud OAuth2 token endpoint.
const DefaultAuthURL = "https://login.cribl.cloud/oauth/token"
