package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/searchgoat-io/searchgoat-go/pkg/searchgoat"
)

// submitRequest is the job-submission payload.
type submitRequest struct {
	Query      string `json:"query"`
	Earliest   string `json:"earliest"`
	Latest     string `json:"latest"`
	SampleRate int    `json:"sampleRate"`
}

// jobItem is one entry of the items envelope returned by the job endpoints.
type jobItem struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	NumEvents int64  `json:"numEvents"`
	Error     string `json:"error"`
}

// itemsEnvelope wraps every job endpoint response.
type itemsEnvelope struct {
	Items []jobItem `json:"items"`
}

// Submit implements searchgoat.Client.Submit.
func (c *Client) Submit(ctx context.Context, query string, opts *searchgoat.SubmitOptions) (*searchgoat.Job, error) {
	if query == "" {
		return nil, &searchgoat.QuerySyntaxError{Detail: "query must not be empty"}
	}

	earliest := searchgoat.DefaultEarliest
	latest := searchgoat.DefaultLatest

	if opts != nil {
		if opts.Earliest != "" {
			earliest = opts.Earliest
		}

		if opts.Latest != "" {
			latest = opts.Latest
		}
	}

	resp, err := c.httpClient.Post(ctx, "/search/jobs", &submitRequest{
		Query:      query,
		Earliest:   earliest,
		Latest:     latest,
		SampleRate: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("submitting job: %w", err)
	}

	item, err := firstItem(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing submit response: %w", err)
	}

	state := searchgoat.JobState(item.Status)
	if state == "" {
		state = searchgoat.JobStateNew
	}

	if c.logger != nil {
		c.logger.Debug("Submitted search job", map[string]interface{}{
			"job_id": item.ID,
			"state":  string(state),
		})
	}

	return &searchgoat.Job{
		ID:       item.ID,
		Query:    query,
		Earliest: earliest,
		Latest:   latest,
		State:    state,
	}, nil
}

// Status implements searchgoat.Client.Status. It performs exactly one status
// poll and returns a fresh snapshot; terminal states are reported as data,
// not errors.
func (c *Client) Status(ctx context.Context, jobID string) (*searchgoat.Job, error) {
	item, err := c.status(ctx, jobID)
	if err != nil {
		return nil, err
	}

	job := &searchgoat.Job{
		ID:    jobID,
		State: searchgoat.JobState(item.Status),
	}

	if job.State == searchgoat.JobStateCompleted {
		job.RecordCount = item.NumEvents
	}

	return job, nil
}

// status fetches the raw status item, keeping the failure reason available
// for Wait's error mapping.
func (c *Client) status(ctx context.Context, jobID string) (*jobItem, error) {
	resp, err := c.httpClient.Get(ctx, "/search/jobs/"+jobID+"/status", nil)
	if err != nil {
		return nil, fmt.Errorf("getting status for job %s: %w", jobID, err)
	}

	item, err := firstItem(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing status for job %s: %w", jobID, err)
	}

	return item, nil
}

// Wait implements searchgoat.Client.Wait. The first status check happens
// immediately; subsequent checks follow the poll interval, so a job that
// transitions after k polls is observed with exactly k+1 checks. The timeout
// bounds only the client-side wait; the remote job keeps running.
func (c *Client) Wait(ctx context.Context, job *searchgoat.Job, opts *searchgoat.WaitOptions) error {
	if job == nil {
		return searchgoat.ErrNilJob
	}

	pollInterval := searchgoat.DefaultPollInterval
	timeout := searchgoat.DefaultWaitTimeout

	if opts != nil {
		if opts.PollInterval > 0 {
			pollInterval = opts.PollInterval
		}

		if opts.Timeout > 0 {
			timeout = opts.Timeout
		}
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		item, err := c.status(waitCtx, job.ID)
		if err != nil {
			if waitCtx.Err() != nil && ctx.Err() == nil {
				return &searchgoat.JobTimeoutError{JobID: job.ID, Timeout: timeout}
			}

			return err
		}

		job.State = searchgoat.JobState(item.Status)

		switch job.State {
		case searchgoat.JobStateCompleted:
			job.RecordCount = item.NumEvents

			return nil
		case searchgoat.JobStateFailed:
			reason := item.Error
			if reason == "" {
				reason = "unknown error"
			}

			return &searchgoat.JobFailedError{JobID: job.ID, Reason: reason}
		case searchgoat.JobStateCanceled:
			return &searchgoat.JobCanceledError{JobID: job.ID}
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() == nil {
				return &searchgoat.JobTimeoutError{JobID: job.ID, Timeout: timeout}
			}

			return fmt.Errorf("waiting for job %s: %w", job.ID, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Cancel implements searchgoat.Client.Cancel. It requests server-side
// cancellation and returns without waiting for the transition; a subsequent
// Wait observes the canceled state.
func (c *Client) Cancel(ctx context.Context, job *searchgoat.Job) error {
	if job == nil {
		return searchgoat.ErrNilJob
	}

	_, err := c.httpClient.Post(ctx, "/search/jobs/"+job.ID+"/cancel", nil)
	if err != nil {
		return fmt.Errorf("canceling job %s: %w", job.ID, err)
	}

	return nil
}

// Query implements searchgoat.Client.Query, the submit + wait + retrieve
// composition.
func (c *Client) Query(ctx context.Context, query string, opts *searchgoat.QueryOptions) (*searchgoat.ResultSet, error) {
	var (
		submitOpts searchgoat.SubmitOptions
		waitOpts   searchgoat.WaitOptions
		pageSize   int
	)

	if opts != nil {
		submitOpts.Earliest = opts.Earliest
		submitOpts.Latest = opts.Latest
		waitOpts.PollInterval = opts.PollInterval
		waitOpts.Timeout = opts.Timeout
		pageSize = opts.PageSize
	}

	job, err := c.Submit(ctx, query, &submitOpts)
	if err != nil {
		return nil, err
	}

	err = c.Wait(ctx, job, &waitOpts)
	if err != nil {
		return nil, err
	}

	return c.retrieve(ctx, job, pageSize)
}

// firstItem decodes an items envelope and returns its first entry.
func firstItem(body []byte) (*jobItem, error) {
	var envelope itemsEnvelope

	err := json.Unmarshal(body, &envelope)
	if err != nil {
		return nil, err
	}

	if len(envelope.Items) == 0 {
		return nil, errors.New("response contained no items")
	}

	return &envelope.Items[0], nil
}
