package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	scheduleRuns        int
	matchesProcessed    int
	ratingUpdates       int
	batchFailures       int
	processingDurations []float64
	startupTime         float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		processingDurations: make([]float64, 0),
	}
}

func (m *Mock) IncScheduleRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduleRuns++
}

func (m *Mock) IncMatchesProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesProcessed++
}

func (m *Mock) IncRatingUpdates() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratingUpdates++
}

func (m *Mock) IncBatchFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchFailures++
}

func (m *Mock) ObserveProcessingDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processingDurations = append(m.processingDurations, duration)
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// ScheduleRuns returns the number of times IncScheduleRuns was called.
func (m *Mock) ScheduleRuns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scheduleRuns
}

// MatchesProcessed returns the number of times IncMatchesProcessed was called.
func (m *Mock) MatchesProcessed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesProcessed
}

// RatingUpdates returns the number of times IncRatingUpdates was called.
func (m *Mock) RatingUpdates() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ratingUpdates
}

// BatchFailures returns the number of times IncBatchFailures was called.
func (m *Mock) BatchFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batchFailures
}
