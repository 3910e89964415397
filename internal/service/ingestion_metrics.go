package service

import (
	"fmt"
	"sync"
	"time"
)

// IngestionMetrics tracks statistics about comparison ingestion
type IngestionMetrics struct {
	mu               sync.RWMutex
	StartTime        time.Time
	Duration         time.Duration
	TotalRecords     int
	StoredRecords    int
	ValidationErrors int
	Errors           int
}

// NewIngestionMetrics creates a new metrics tracker
func NewIngestionMetrics() *IngestionMetrics {
	return &IngestionMetrics{
		StartTime: time.Now(),
	}
}

// Merge adds another tracker's counts into this one
func (m *IngestionMetrics) Merge(other *IngestionMetrics) {
	other.mu.RLock()
	defer other.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRecords += other.TotalRecords
	m.StoredRecords += other.StoredRecords
	m.ValidationErrors += other.ValidationErrors
	m.Errors += other.Errors
}

// RecordStored increments the stored record count
func (m *IngestionMetrics) RecordStored(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StoredRecords += n
}

// RecordValidationError increments the validation error count
func (m *IngestionMetrics) RecordValidationError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ValidationErrors++
}

// RecordError increments the error count
func (m *IngestionMetrics) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors++
}

// String returns a formatted string representation of metrics
func (m *IngestionMetrics) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	storedRate := float64(0)
	if m.TotalRecords > 0 {
		storedRate = float64(m.StoredRecords) / float64(m.TotalRecords) * 100
	}

	return fmt.Sprintf(
		"IngestionMetrics{Total=%d, Stored=%d (%.1f%%), ValidationErrors=%d, Errors=%d, Duration=%v}",
		m.TotalRecords,
		m.StoredRecords,
		storedRate,
		m.ValidationErrors,
		m.Errors,
		m.Duration,
	)
}
