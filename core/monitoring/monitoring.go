// Package monitoring reports unexpected errors, such as model inference
// failures, to an external error tracker.
package monitoring

import (
	"sync"
	"time"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

var (
	mu       sync.RWMutex
	current  Monitor = NopMonitor{}
	defaults map[string]string
)

// Init sets the global monitor implementation. Nil is ignored.
func Init(m Monitor) {
	if m == nil {
		return
	}
	mu.Lock()
	current = m
	mu.Unlock()
}

// SetDefaultTags attaches tags, such as the loaded model version, to every
// captured error. Per-call tags win on conflicts.
func SetDefaultTags(tags map[string]string) {
	cp := make(map[string]string, len(tags))
	for k, v := range tags {
		cp[k] = v
	}
	mu.Lock()
	defaults = cp
	mu.Unlock()
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	mu.RLock()
	m, base := current, defaults
	mu.RUnlock()
	if len(base) > 0 {
		merged := make(map[string]string, len(base)+len(tags))
		for k, v := range base {
			merged[k] = v
		}
		for k, v := range tags {
			merged[k] = v
		}
		tags = merged
	}
	m.CaptureException(err, tags)
}

// Recover captures panics in goroutines.
func Recover() {
	mu.RLock()
	m := current
	mu.RUnlock()
	m.Recover()
}

// Flush flushes buffered events.
func Flush(d time.Duration) {
	mu.RLock()
	m := current
	mu.RUnlock()
	m.Flush(d)
}
