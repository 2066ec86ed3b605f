package receipt

import (
	"log/slog"
	"sync"
)

// DiagnosticKind classifies a recovered, non-fatal problem
type DiagnosticKind string

const (
	// InputAnomaly reports a malformed numeric field that was coerced
	InputAnomaly DiagnosticKind = "input_anomaly"
	// ResourceUnavailable reports an optional resource, such as the logo, that was skipped
	ResourceUnavailable DiagnosticKind = "resource_unavailable"
)

// Diagnostic is a single event on the diagnostic channel.
// Attrs are slog-style key/value pairs.
type Diagnostic struct {
	Kind    DiagnosticKind
	Message string
	Attrs   []any
}

// DiagnosticSink receives diagnostics emitted while rendering
type DiagnosticSink interface {
	Report(d Diagnostic)
}

// SlogSink writes diagnostics as warnings to a slog logger.
// A nil Logger uses slog.Default().
type SlogSink struct {
	Logger *slog.Logger
}

// Report implements DiagnosticSink
func (s SlogSink) Report(d Diagnostic) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	args := append([]any{"kind", string(d.Kind)}, d.Attrs...)
	logger.Warn(d.Message, args...)
}

// Collector keeps every diagnostic it receives. Safe for concurrent use.
type Collector struct {
	mu          sync.Mutex
	diagnostics []Diagnostic
}

// Report implements DiagnosticSink
func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diagnostics = append(c.diagnostics, d)
}

// Diagnostics returns a copy of the collected diagnostics
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.diagnostics))
	copy(out, c.diagnostics)
	return out
}

// Tee fans a diagnostic out to several sinks
type Tee []DiagnosticSink

// Report implements DiagnosticSink
func (t Tee) Report(d Diagnostic) {
	for _, sink := range t {
		sink.Report(d)
	}
}

type discardSink struct{}

func (discardSink) Report(Diagnostic) {}
