package ranking

import (
	"sync"
	"time"

	"marionettist/internal/metrics"
)

// MaxReportedConfigurations caps how many ranked entries are handed out for
// presentation and download.
const MaxReportedConfigurations = 5

// AbnTestResult is the complete outcome of one experiment run.
type AbnTestResult struct {
	RunID              string                       `json:"runId"`
	StartedAt          time.Time                    `json:"startedAt"`
	CompletedAt        time.Time                    `json:"completedAt"`
	TimeSlice          time.Duration                `json:"timeSlice"`
	ConfigurationCount int                          `json:"configurationCount"`
	MetricsOrder       metrics.MetricsConfiguration `json:"-"`
	Ranked             []RankedSystemConfiguration  `json:"ranked"`
}

// TopRanked returns at most n ranked entries, never more than
// MaxReportedConfigurations.
func (r AbnTestResult) TopRanked(n int) []RankedSystemConfiguration {
	if n > MaxReportedConfigurations || n <= 0 {
		n = MaxReportedConfigurations
	}
	if n > len(r.Ranked) {
		n = len(r.Ranked)
	}
	out := make([]RankedSystemConfiguration, n)
	copy(out, r.Ranked[:n])
	return out
}

// ResultsStorage holds exactly one experiment result, the most recent run
// overwrites the previous one.
type ResultsStorage struct {
	mu     sync.Mutex
	result *AbnTestResult
}

// NewResultsStorage creates an empty single-slot storage.
func NewResultsStorage() *ResultsStorage {
	return &ResultsStorage{}
}

// Store replaces the stored result.
func (s *ResultsStorage) Store(result AbnTestResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = &result
}

// Latest returns the stored result, if any run has completed.
func (s *ResultsStorage) Latest() (AbnTestResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return AbnTestResult{}, false
	}
	return *s.result, true
}

// Clear drops the stored result.
func (s *ResultsStorage) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = nil
}
