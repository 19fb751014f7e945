package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchgoat-io/searchgoat-go/pkg/searchgoat"
)

// resultsServer serves a fixed corpus of records as paginated NDJSON, the way
// the results endpoint does, and counts page fetches.
func resultsServer(t *testing.T, total int) (*httptest.Server, *atomic.Int64) {
	t.Helper()

	var fetches atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/jobs/job-1/results", r.URL.Path)
		assert.Equal(t, "application/x-ndjson", r.Header.Get("Accept"))

		fetches.Add(1)

		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		require.NoError(t, err)

		offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
		require.NoError(t, err)

		var page strings.Builder

		page.WriteString(fmt.Sprintf(`{"totalEventCount":%d}`+"\n", total))

		for i := offset; i < offset+limit && i < total; i++ {
			page.WriteString(fmt.Sprintf(`{"_time":%d,"sequence":%d,"host":"host-%d"}`+"\n", 1700000000+int64(i), i, i%3))
		}

		w.Header().Set("Content-Type", "application/x-ndjson")
		_, _ = w.Write([]byte(page.String()))
	}))

	return server, &fetches
}

func TestClient_Retrieve(t *testing.T) {
	t.Parallel()

	t.Run("concatenates pages in order", func(t *testing.T) {
		t.Parallel()

		// 237 records at page size 100 means pages of 100, 100 and 37.
		server, fetches := resultsServer(t, 237)
		defer server.Close()

		client := newTestClient(t, server.URL)

		job := &searchgoat.Job{ID: "job-1", State: searchgoat.JobStateCompleted, RecordCount: 237}

		results, err := client.retrieve(context.Background(), job, 100)
		require.NoError(t, err)
		assert.Equal(t, 237, results.Len())
		assert.Equal(t, int64(3), fetches.Load())

		for i, record := range results.Records() {
			sequence, ok := record["sequence"].(json.Number)
			require.True(t, ok)
			assert.Equal(t, strconv.Itoa(i), sequence.String())
		}
	})

	t.Run("empty result set", func(t *testing.T) {
		t.Parallel()

		server, fetches := resultsServer(t, 0)
		defer server.Close()

		client := newTestClient(t, server.URL)

		job := &searchgoat.Job{ID: "job-1", State: searchgoat.JobStateCompleted}

		results, err := client.Retrieve(context.Background(), job)
		require.NoError(t, err)
		assert.Zero(t, results.Len())
		assert.Equal(t, int64(1), fetches.Load())
	})

	t.Run("rejects non-completed jobs", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, "http://127.0.0.1:1")

		_, err := client.Retrieve(context.Background(), &searchgoat.Job{ID: "job-1", State: searchgoat.JobStateRunning})
		require.Error(t, err)
		assert.ErrorIs(t, err, searchgoat.ErrJobNotCompleted)
	})

	t.Run("nil job", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, "http://127.0.0.1:1")

		_, err := client.Retrieve(context.Background(), nil)
		assert.ErrorIs(t, err, searchgoat.ErrNilJob)
	})
}

func TestClient_Stream(t *testing.T) {
	t.Parallel()

	t.Run("yields every record in order", func(t *testing.T) {
		t.Parallel()

		server, fetches := resultsServer(t, 237)
		defer server.Close()

		client := newTestClient(t, server.URL)

		job := &searchgoat.Job{ID: "job-1", State: searchgoat.JobStateCompleted, RecordCount: 237}

		iterator, err := client.Stream(context.Background(), job, &searchgoat.StreamOptions{PageSize: 100})
		require.NoError(t, err)
		defer iterator.Close()

		count := 0

		for {
			record, err := iterator.Next(context.Background())
			if errors.Is(err, searchgoat.ErrNoMoreItems) {
				break
			}

			require.NoError(t, err)

			sequence, ok := record["sequence"].(json.Number)
			require.True(t, ok)
			assert.Equal(t, strconv.Itoa(count), sequence.String())

			count++
		}

		assert.Equal(t, 237, count)
		assert.Equal(t, int64(3), fetches.Load())

		// Exhausted iterators keep reporting the sentinel.
		_, err = iterator.Next(context.Background())
		assert.ErrorIs(t, err, searchgoat.ErrNoMoreItems)
	})

	t.Run("fetches pages lazily", func(t *testing.T) {
		t.Parallel()

		server, fetches := resultsServer(t, 237)
		defer server.Close()

		client := newTestClient(t, server.URL)

		job := &searchgoat.Job{ID: "job-1", State: searchgoat.JobStateCompleted}

		iterator, err := client.Stream(context.Background(), job, &searchgoat.StreamOptions{PageSize: 100})
		require.NoError(t, err)
		defer iterator.Close()

		// Creating the iterator fetches nothing.
		assert.Equal(t, int64(0), fetches.Load())

		for i := 0; i < 50; i++ {
			_, err = iterator.Next(context.Background())
			require.NoError(t, err)
		}

		// Half of the first page consumed: one fetch, one page resident.
		assert.Equal(t, int64(1), fetches.Load())
	})

	t.Run("close stops further fetching", func(t *testing.T) {
		t.Parallel()

		server, fetches := resultsServer(t, 237)
		defer server.Close()

		client := newTestClient(t, server.URL)

		job := &searchgoat.Job{ID: "job-1", State: searchgoat.JobStateCompleted}

		iterator, err := client.Stream(context.Background(), job, &searchgoat.StreamOptions{PageSize: 100})
		require.NoError(t, err)

		_, err = iterator.Next(context.Background())
		require.NoError(t, err)

		iterator.Close()

		_, err = iterator.Next(context.Background())
		assert.ErrorIs(t, err, searchgoat.ErrNoMoreItems)
		assert.Equal(t, int64(1), fetches.Load())
	})

	t.Run("rejects non-completed jobs", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, "http://127.0.0.1:1")

		_, err := client.Stream(context.Background(), &searchgoat.Job{ID: "job-1", State: searchgoat.JobStateQueued}, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, searchgoat.ErrJobNotCompleted)
	})
}

func TestParseResultsPage(t *testing.T) {
	t.Parallel()

	t.Run("metadata line plus records", func(t *testing.T) {
		t.Parallel()

		body := []byte(`{"totalEventCount":5}` + "\n" +
			`{"_time":1700000000,"level":"info"}` + "\n" +
			"\n" +
			`{"_time":1700000001,"level":"warn"}` + "\n")

		records, total, err := parseResultsPage(body)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		require.Len(t, records, 2)
		assert.Equal(t, "info", records[0]["level"])
		assert.Equal(t, "warn", records[1]["level"])
	})

	t.Run("numbers decode as json.Number", func(t *testing.T) {
		t.Parallel()

		records, _, err := parseResultsPage([]byte(`{"totalEventCount":1}` + "\n" + `{"bytes":1024,"ratio":0.5}` + "\n"))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, json.Number("1024"), records[0]["bytes"])
		assert.Equal(t, json.Number("0.5"), records[0]["ratio"])
	})

	t.Run("malformed metadata", func(t *testing.T) {
		t.Parallel()

		_, _, err := parseResultsPage([]byte("not json\n"))
		require.Error(t, err)
	})

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()

		records, total, err := parseResultsPage(nil)
		require.NoError(t, err)
		assert.Empty(t, records)
		assert.Zero(t, total)
	})
}
