package errors

import (
	stderrors "errors"
	"sort"
	"sync"
	"time"
)

// Code represents a typed error code surfaced to users and in reports.
type Code string

// Estimator error codes.
const (
	ErrInvalidTopology      Code = "INVALID_TOPOLOGY"
	ErrDocumentMalformed    Code = "DOCUMENT_MALFORMED"
	ErrClusterNotFound      Code = "CLUSTER_NOT_FOUND"
	ErrCommandFailed        Code = "COMMAND_FAILED"
	ErrPriceNotFound        Code = "PRICE_NOT_FOUND"
	ErrNoGPUMatch           Code = "NO_GPU_MATCH"
	ErrHardwareLookupFailed Code = "HARDWARE_LOOKUP_FAILED"
	ErrNotifyFailed         Code = "NOTIFY_FAILED"
	ErrReportWriteFailed    Code = "REPORT_WRITE_FAILED"
)

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// RealClock uses the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time { return time.Now() }

// EstimatorError represents a typed error with code, component, and optional wrapped error.
type EstimatorError struct {
	Code      Code   `json:"code"`
	Message   string `json:"message"`
	Component string `json:"component"`
	Timestamp int64  `json:"timestamp"`
	Err       error  `json:"-"`
}

// New builds an EstimatorError stamped with the current time.
func New(code Code, component, message string, err error) *EstimatorError {
	return &EstimatorError{
		Code:      code,
		Message:   message,
		Component: component,
		Timestamp: time.Now().UnixMilli(),
		Err:       err,
	}
}

// Error implements the error interface.
func (e *EstimatorError) Error() string {
	if e.Err != nil {
		return e.Component + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Component + ": " + e.Message
}

// Unwrap returns the wrapped error for errors.Is/As compatibility.
func (e *EstimatorError) Unwrap() error {
	return e.Err
}

// CodeOf returns the Code of the first EstimatorError in err's chain, or "".
func CodeOf(err error) Code {
	var ee *EstimatorError
	if stderrors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

// HasCode reports whether err's chain carries the given code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// WarningCollector is a thread-safe store for non-fatal issues seen during a
// single run. Warnings are keyed by Code+Component+Message; re-reporting the
// same warning only refreshes its timestamp.
type WarningCollector struct {
	mu      sync.Mutex
	clock   Clock
	entries map[string]EstimatorError
}

// NewWarningCollector creates a WarningCollector with the given clock.
func NewWarningCollector(clock Clock) *WarningCollector {
	return &WarningCollector{
		clock:   clock,
		entries: make(map[string]EstimatorError),
	}
}

// key builds the dedup key for a warning.
func key(w EstimatorError) string {
	return string(w.Code) + "|" + w.Component + "|" + w.Message
}

// Report stores or refreshes a warning. Safe to call on a nil collector.
func (wc *WarningCollector) Report(w EstimatorError) {
	if wc == nil {
		return
	}
	wc.mu.Lock()
	defer wc.mu.Unlock()

	w.Timestamp = wc.clock.Now().UnixMilli()
	wc.entries[key(w)] = w
}

// Warnings returns all collected warnings ordered by code, component, message.
func (wc *WarningCollector) Warnings() []EstimatorError {
	wc.mu.Lock()
	defer wc.mu.Unlock()

	result := make([]EstimatorError, 0, len(wc.entries))
	for _, e := range wc.entries {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		return key(result[i]) < key(result[j])
	})
	return result
}

// Messages returns each warning rendered as "CODE component: message".
func (wc *WarningCollector) Messages() []string {
	warnings := wc.Warnings()
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, string(w.Code)+" "+w.Component+": "+w.Message)
	}
	return out
}

// Codes returns a deduplicated, sorted list of collected codes.
func (wc *WarningCollector) Codes() []string {
	wc.mu.Lock()
	defer wc.mu.Unlock()

	seen := make(map[Code]struct{})
	codes := make([]string, 0)
	for _, e := range wc.entries {
		if _, ok := seen[e.Code]; !ok {
			seen[e.Code] = struct{}{}
			codes = append(codes, string(e.Code))
		}
	}
	sort.Strings(codes)
	return codes
}

// Clear removes all collected warnings.
func (wc *WarningCollector) Clear() {
	wc.mu.Lock()
	defer wc.mu.Unlock()

	wc.entries = make(map[string]EstimatorError)
}
