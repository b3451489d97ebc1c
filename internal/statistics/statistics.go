package statistics

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Statistics contains the counters of one import run.
type Statistics struct {
	TotalFilesFound   int64
	FilesCopied       int64
	FilesPlanned      int64
	FilesWithErrors   int64
	FilesWithoutDates int64
	FilesOverwritten  int64

	BucketsCreated int64
	BytesCopied    int64

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Errors []StatError

	mutex sync.RWMutex
}

// StatError represents an error that occurred while importing a file.
type StatError struct {
	FilePath  string
	Operation string
	Error     string
	Timestamp time.Time
}

// NewStatistics returns a new Statistics instance.
func NewStatistics() *Statistics {
	return &Statistics{
		StartTime: time.Now(),
		Errors:    make([]StatError, 0),
	}
}

// IncrementFilesFound increases the count of found files by 1.
func (s *Statistics) IncrementFilesFound() {
	atomic.AddInt64(&s.TotalFilesFound, 1)
}

// IncrementFilesCopied increases the count of copied files by 1.
func (s *Statistics) IncrementFilesCopied() {
	atomic.AddInt64(&s.FilesCopied, 1)
}

// IncrementFilesPlanned increases the count of dry-run copies by 1.
func (s *Statistics) IncrementFilesPlanned() {
	atomic.AddInt64(&s.FilesPlanned, 1)
}

// IncrementFilesWithErrors increases the count of files with errors by 1.
func (s *Statistics) IncrementFilesWithErrors() {
	atomic.AddInt64(&s.FilesWithErrors, 1)
}

// IncrementFilesWithoutDates increases the count of files without a usable capture time by 1.
func (s *Statistics) IncrementFilesWithoutDates() {
	atomic.AddInt64(&s.FilesWithoutDates, 1)
}

// IncrementFilesOverwritten increases the count of destinations replaced by a later copy by 1.
func (s *Statistics) IncrementFilesOverwritten() {
	atomic.AddInt64(&s.FilesOverwritten, 1)
}

// IncrementBucketsCreated increases the count of created date buckets by 1.
func (s *Statistics) IncrementBucketsCreated() {
	atomic.AddInt64(&s.BucketsCreated, 1)
}

// AddBytesCopied adds n to the total bytes copied.
func (s *Statistics) AddBytesCopied(n int64) {
	atomic.AddInt64(&s.BytesCopied, n)
}

// AddError records an error that occurred during processing.
func (s *Statistics) AddError(filePath, operation, errorMsg string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.Errors = append(s.Errors, StatError{
		FilePath:  filePath,
		Operation: operation,
		Error:     errorMsg,
		Timestamp: time.Now(),
	})
}

// Finalize records the end time and duration of the run.
func (s *Statistics) Finalize() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
}

// GetSummary returns a formatted summary of the run.
func (s *Statistics) GetSummary() string {
	s.mutex.RLock()
	duration := s.Duration
	s.mutex.RUnlock()

	return fmt.Sprintf(`Import Summary:

Files:
		Found: %d
		Copied: %d
		Planned (dry-run): %d
		Overwritten: %d
		Errors: %d
		Without Dates: %d

Destination:
		Buckets Created: %d
		Bytes Copied: %s

Duration: %v`,
		atomic.LoadInt64(&s.TotalFilesFound),
		atomic.LoadInt64(&s.FilesCopied),
		atomic.LoadInt64(&s.FilesPlanned),
		atomic.LoadInt64(&s.FilesOverwritten),
		atomic.LoadInt64(&s.FilesWithErrors),
		atomic.LoadInt64(&s.FilesWithoutDates),
		atomic.LoadInt64(&s.BucketsCreated),
		formatBytes(atomic.LoadInt64(&s.BytesCopied)),
		duration)
}

// GetErrorSummary returns a summary of errors that occurred during processing.
func (s *Statistics) GetErrorSummary() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if len(s.Errors) == 0 {
		return "No errors occurred during processing"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Errors (%d total):\n", len(s.Errors))
	for i, err := range s.Errors {
		if i >= 10 {
			fmt.Fprintf(&b, "  ... and %d more errors\n", len(s.Errors)-10)
			break
		}
		fmt.Fprintf(&b, "  [%s] %s: %s - %s\n",
			err.Timestamp.Format("15:04:05"),
			err.Operation,
			err.FilePath,
			err.Error)
	}
	return b.String()
}

// GetFilesWithErrors returns the number of recorded errors.
func (s *Statistics) GetFilesWithErrors() int64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return int64(len(s.Errors))
}

// formatBytes returns a human-readable string for a byte count.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
