package source

import (
	"testing"

	xlogger "ChainPulse/pkg/logger"
)

// nopMetrics satisfies the metrics port for adapter tests.
type nopMetrics struct{}

func (nopMetrics) RecordFetch(string, string)     {}
func (nopMetrics) RecordError(string)             {}
func (nopMetrics) RecordBlockHeight(int64)        {}
func (nopMetrics) RecordMerged(string, int)       {}
func (nopMetrics) RecordLatency(string, float64)  {}

func newTestLogger(t *testing.T) *xlogger.Logger {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}
