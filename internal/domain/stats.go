package domain

import (
	"sync"
	"time"
)

// RunStats accumulates per-run crawl counters. One instance is created
// per crawl run and passed through the pipeline; extraction callbacks
// run on collector goroutines, so all updates are mutex guarded.
type RunStats struct {
	mu sync.Mutex

	startTime time.Time

	listPages     int
	detailPages   int
	duplicates    int
	rejected      int
	degenerateIDs int
	fetchErrors   int
}

// NewRunStats creates a new stats accumulator for one crawl run.
func NewRunStats() *RunStats {
	return &RunStats{startTime: time.Now()}
}

// IncrListPages counts one fetched search-results page.
func (s *RunStats) IncrListPages() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listPages++
}

// IncrDetailPages counts one fetched program detail page.
func (s *RunStats) IncrDetailPages() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detailPages++
}

// IncrDuplicates counts one record skipped as a within-batch duplicate.
func (s *RunStats) IncrDuplicates() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duplicates++
}

// IncrRejected counts one record rejected by the minimal-content rule.
func (s *RunStats) IncrRejected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejected++
}

// IncrDegenerateIDs counts one record whose locator had no identity marker.
func (s *RunStats) IncrDegenerateIDs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.degenerateIDs++
}

// IncrFetchErrors counts one failed HTTP request.
func (s *RunStats) IncrFetchErrors() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchErrors++
}

// RunStatsSummary is an immutable copy of the counters for reporting.
type RunStatsSummary struct {
	StartTime     time.Time     `json:"start_time"`
	Duration      time.Duration `json:"duration"`
	ListPages     int           `json:"list_pages"`
	DetailPages   int           `json:"detail_pages"`
	Duplicates    int           `json:"duplicates"`
	Rejected      int           `json:"rejected"`
	DegenerateIDs int           `json:"degenerate_ids"`
	FetchErrors   int           `json:"fetch_errors"`
}

// Summary returns a copy of the current counters.
func (s *RunStats) Summary() RunStatsSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return RunStatsSummary{
		StartTime:     s.startTime,
		Duration:      time.Since(s.startTime),
		ListPages:     s.listPages,
		DetailPages:   s.detailPages,
		Duplicates:    s.duplicates,
		Rejected:      s.rejected,
		DegenerateIDs: s.degenerateIDs,
		FetchErrors:   s.fetchErrors,
	}
}
