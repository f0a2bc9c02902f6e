// Package metrics exposes observability hooks for CMS traffic, pagination and
// the listing cache.
package metrics

import "time"

// ResultLabel enumerates outcome categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultNotFound ResultLabel = "not_found"
	ResultError    ResultLabel = "error"
	ResultRejected ResultLabel = "rejected"
)

// Recorder is implemented by metric sinks. NoopRecorder is used when metrics
// are not configured.
type Recorder interface {
	ObserveFetch(op string, d time.Duration, result ResultLabel)
	IncSkippedDocument(reason string)
	IncPageLoad(result ResultLabel)
	IncCacheLookup(hit bool)
	IncStaleServe()
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) ObserveFetch(string, time.Duration, ResultLabel) {}
func (NoopRecorder) IncSkippedDocument(string)                       {}
func (NoopRecorder) IncPageLoad(ResultLabel)                         {}
func (NoopRecorder) IncCacheLookup(bool)                             {}
func (NoopRecorder) IncStaleServe()                                  {}
