package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/searchgoat-io/searchgoat-go/internal/http"
	"github.com/searchgoat-io/searchgoat-go/pkg/searchgoat"
)

// pager walks a completed job's result pages in strict offset order. The
// service returns NDJSON: the first line is page metadata carrying
// totalEventCount, the remaining lines are event records.
type pager struct {
	client   *Client
	jobID    string
	pageSize int
	offset   int64
	// total is the service-reported event count, -1 until the first page.
	total int64
	done  bool
}

func newPager(client *Client, jobID string, pageSize int) *pager {
	if pageSize <= 0 {
		pageSize = searchgoat.DefaultPageSize
	}

	return &pager{
		client:   client,
		jobID:    jobID,
		pageSize: pageSize,
		total:    -1,
	}
}

// nextPage fetches the next page of records. It returns nil once the cursor
// chain is exhausted.
func (p *pager) nextPage(ctx context.Context) ([]searchgoat.Record, error) {
	if p.done {
		return nil, nil
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(p.pageSize))
	query.Set("offset", strconv.FormatInt(p.offset, 10))

	resp, err := p.client.httpClient.Do(ctx, &http.Request{
		Method: "GET",
		Path:   "/search/jobs/" + p.jobID + "/results",
		Query:  query,
		Accept: "application/x-ndjson",
	})
	if err != nil {
		return nil, fmt.Errorf("fetching results for job %s: %w", p.jobID, err)
	}

	records, total, err := parseResultsPage(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing results for job %s: %w", p.jobID, err)
	}

	p.total = total
	p.offset += int64(p.pageSize)

	if len(records) == 0 || p.offset >= p.total {
		p.done = true
	}

	return records, nil
}

// Retrieve implements searchgoat.Client.Retrieve. It requires the job to be
// in the completed state and concatenates all pages in original row order.
// Memory grows with total result size; use Stream for bounded memory.
func (c *Client) Retrieve(ctx context.Context, job *searchgoat.Job) (*searchgoat.ResultSet, error) {
	return c.retrieve(ctx, job, 0)
}

func (c *Client) retrieve(ctx context.Context, job *searchgoat.Job, pageSize int) (*searchgoat.ResultSet, error) {
	if job == nil {
		return nil, searchgoat.ErrNilJob
	}

	if job.State != searchgoat.JobStateCompleted {
		return nil, fmt.Errorf("%w: job %s is %s", searchgoat.ErrJobNotCompleted, job.ID, job.State)
	}

	pages := newPager(c, job.ID, pageSize)

	var records []searchgoat.Record

	for {
		page, err := pages.nextPage(ctx)
		if err != nil {
			return nil, err
		}

		if page == nil {
			break
		}

		records = append(records, page...)
	}

	return searchgoat.NewResultSet(records), nil
}

// Stream implements searchgoat.Client.Stream. The iterator yields records
// from the current page before fetching the next, so at most one page is
// resident. Abandoning or closing the iterator fetches nothing further.
func (c *Client) Stream(ctx context.Context, job *searchgoat.Job, opts *searchgoat.StreamOptions) (*searchgoat.ResultIterator, error) {
	if job == nil {
		return nil, searchgoat.ErrNilJob
	}

	if job.State != searchgoat.JobStateCompleted {
		return nil, fmt.Errorf("%w: job %s is %s", searchgoat.ErrJobNotCompleted, job.ID, job.State)
	}

	pageSize := 0
	if opts != nil {
		pageSize = opts.PageSize
	}

	pages := newPager(c, job.ID, pageSize)

	var (
		buffer []searchgoat.Record
		closed bool
	)

	next := func(ctx context.Context) (searchgoat.Record, error) {
		if closed {
			return nil, searchgoat.ErrNoMoreItems
		}

		for len(buffer) == 0 {
			if pages.done {
				closed = true

				return nil, searchgoat.ErrNoMoreItems
			}

			page, err := pages.nextPage(ctx)
			if err != nil {
				return nil, err
			}

			buffer = page
		}

		record := buffer[0]
		buffer = buffer[1:]

		return record, nil
	}

	stop := func() {
		closed = true
		buffer = nil
	}

	return searchgoat.NewResultIterator(next, stop), nil
}

// parseResultsPage splits an NDJSON page into its metadata line and records.
// Numbers are decoded as json.Number so the columnar layer can distinguish
// integers from floats.
func parseResultsPage(body []byte) ([]searchgoat.Record, int64, error) {
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var (
		records []searchgoat.Record
		total   int64
		first   = true
	)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		if first {
			first = false

			var metadata struct {
				TotalEventCount int64 `json:"totalEventCount"`
			}

			err := json.Unmarshal(line, &metadata)
			if err != nil {
				return nil, 0, fmt.Errorf("parsing page metadata: %w", err)
			}

			total = metadata.TotalEventCount

			continue
		}

		record, err := decodeRecord(line)
		if err != nil {
			return nil, 0, err
		}

		records = append(records, record)
	}

	err := scanner.Err()
	if err != nil {
		return nil, 0, fmt.Errorf("reading page: %w", err)
	}

	return records, total, nil
}

// decodeRecord decodes one NDJSON event line.
func decodeRecord(line []byte) (searchgoat.Record, error) {
	decoder := json.NewDecoder(bytes.NewReader(line))
	decoder.UseNumber()

	var record searchgoat.Record

	err := decoder.Decode(&record)
	if err != nil {
		return nil, fmt.Errorf("parsing record: %w", err)
	}

	return record, nil
}
