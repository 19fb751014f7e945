// Package searchgoat provides types, interfaces, and helpers for running
// Cribl Search jobs from Go.
//
// # Overview
//
// The searchgoat package defines the domain types (Job, Record, ResultSet)
// and the Client interface covering the full search-job lifecycle: submit a
// query, poll its status, retrieve or stream paginated results, and
// materialize them as an in-memory columnar table or a Parquet/CSV file. A
// concrete implementation is provided by the sgclient package, which wires
// credential resolution, authentication, and transport. Most consumers should
// import sgclient to construct a client and then work with the interfaces
// exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/searchgoat-io/searchgoat-go/pkg/sgclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := sgclient.NewFromEnv()
//	  if err != nil { log.Fatal(err) }
//
//	  results, err := cli.Query(ctx, `cribl dataset="logs" | limit 1000`, nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = results.Save("results.parquet")
//	}
//
// # Job lifecycle
//
// Submit returns a Job tracked by the remote service; Wait polls its status
// at a fixed cadence until a terminal state or a client-side timeout. The
// stepwise form gives full control:
//
//	job, err := cli.Submit(ctx, `cribl dataset="logs"`, &searchgoat.SubmitOptions{Earliest: "-24h"})
//	if err != nil { /* handle error */ }
//	err = cli.Wait(ctx, job, nil)
//
// # Streaming
//
// Stream yields one record at a time while holding at most one page in
// memory, for result sets that should not be materialized at once:
//
//	it, err := cli.Stream(ctx, job, nil)
//	for {
//	  record, err := it.Next(ctx)
//	  if errors.Is(err, searchgoat.ErrNoMoreItems) { break }
//	  if err != nil { /* handle error */ }
//	  _ = record
//	}
//
// # Errors
//
// Failures are distinct types carrying diagnostic context: job id for
// lifecycle errors, HTTP status for transport errors, the service-supplied
// retry-after for rate limits. Helpers such as IsJobTimeout, IsJobFailed, and
// IsRateLimit make it easy to branch on them, since remediation differs for
// "timed out waiting", "failed server-side", and "was canceled".
package searchgoat
