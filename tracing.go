package mindful

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// ──────────────────────────────────────────────
// Tracing — structured span system
// ──────────────────────────────────────────────

// SpanKind represents the type of span.
type SpanKind string

const (
	SpanKindAgent     SpanKind = "agent"
	SpanKindLLM       SpanKind = "llm"
	SpanKindTool      SpanKind = "tool"
	SpanKindGuardrail SpanKind = "guardrail"
	SpanKindHandoff   SpanKind = "handoff"
)

// Span represents a single unit of work.
type Span struct {
	SpanID     string                 `json:"span_id"`
	TraceID    string                 `json:"trace_id"`
	ParentID   string                 `json:"parent_id,omitempty"`
	Name       string                 `json:"name"`
	Kind       SpanKind               `json:"kind"`
	StartTime  time.Time              `json:"start_time"`
	EndTime    time.Time              `json:"end_time,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
	Children   []*Span                `json:"children,omitempty"`
	Status     string                 `json:"status"` // "running", "ok", "error"
	Error      string                 `json:"error,omitempty"`
	mu         sync.Mutex
}

// DurationMs returns the span duration in milliseconds.
func (s *Span) DurationMs() float64 {
	end := s.EndTime
	if end.IsZero() {
		end = time.Now()
	}
	return float64(end.Sub(s.StartTime).Microseconds()) / 1000.0
}

// End marks the span as finished.
func (s *Span) End(status string, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.EndTime = time.Now()
	s.Status = status
	s.Error = errMsg
}

// SetAttribute sets a key-value attribute on the span.
func (s *Span) SetAttribute(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Attributes == nil {
		s.Attributes = make(map[string]interface{})
	}
	s.Attributes[key] = value
}

// AddChild adds a child span.
func (s *Span) AddChild(child *Span) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Children = append(s.Children, child)
}

// SpanExporter exports finished root spans.
type SpanExporter interface {
	Export(span *Span)
}

// NullSpanExporter discards all spans.
type NullSpanExporter struct{}

func (e *NullSpanExporter) Export(span *Span) {}

// ConsoleSpanExporter prints spans to log.
type ConsoleSpanExporter struct{}

func (e *ConsoleSpanExporter) Export(span *Span) {
	log.Printf("[Trace] %s %s | %s | %.1fms",
		span.Kind, span.Name, span.Status, span.DurationMs())
}

// CallbackSpanExporter calls a function for each span.
type CallbackSpanExporter struct {
	Fn func(span *Span)
}

func (e *CallbackSpanExporter) Export(span *Span) {
	e.Fn(span)
}

// Tracer creates and manages spans.
type Tracer struct {
	exporter SpanExporter
	enabled  bool
	traceID  string
	stack    []*Span
	exported atomic.Int64
	mu       sync.Mutex
}

// NewTracer creates a tracer. A nil exporter discards spans.
func NewTracer(exporter SpanExporter, enabled bool) *Tracer {
	if exporter == nil {
		exporter = &NullSpanExporter{}
	}
	return &Tracer{exporter: exporter, enabled: enabled}
}

// Enabled reports whether the tracer records spans.
func (t *Tracer) Enabled() bool {
	return t != nil && t.enabled
}

// ExportedCount returns the number of root spans exported so far.
func (t *Tracer) ExportedCount() int64 {
	return t.exported.Load()
}

// NewTrace starts a new trace.
func (t *Tracer) NewTrace() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.traceID = uuid.NewString()
	t.stack = nil
	return t.traceID
}

// StartSpan creates and starts a new span nested under the current one.
func (t *Tracer) StartSpan(name string, kind SpanKind, attrs map[string]interface{}) *Span {
	if !t.enabled {
		return &Span{Name: name, Kind: kind, Status: "ok"}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.traceID == "" {
		t.traceID = uuid.NewString()
	}

	parentID := ""
	if len(t.stack) > 0 {
		parentID = t.stack[len(t.stack)-1].SpanID
	}

	span := &Span{
		SpanID:     uuid.NewString(),
		TraceID:    t.traceID,
		ParentID:   parentID,
		Name:       name,
		Kind:       kind,
		StartTime:  time.Now(),
		Attributes: attrs,
		Status:     "running",
	}

	if len(t.stack) > 0 {
		t.stack[len(t.stack)-1].AddChild(span)
	}
	t.stack = append(t.stack, span)
	return span
}

// EndSpan ends the span and exports it when it is a root span.
func (t *Tracer) EndSpan(span *Span, status string, errMsg string) {
	if !t.enabled {
		return
	}

	span.End(status, errMsg)

	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.stack) > 0 && t.stack[len(t.stack)-1] == span {
		t.stack = t.stack[:len(t.stack)-1]
	}

	if span.ParentID == "" {
		t.exported.Inc()
		t.exporter.Export(span)
	}
}

// Convenience constructors

func (t *Tracer) AgentSpan(name string) *Span {
	return t.StartSpan(name, SpanKindAgent, nil)
}

func (t *Tracer) LLMSpan(model string, attrs map[string]interface{}) *Span {
	name := "llm"
	if model != "" {
		name = fmt.Sprintf("llm:%s", model)
	}
	if attrs == nil {
		attrs = make(map[string]interface{})
	}
	if model != "" {
		attrs["model"] = model
	}
	return t.StartSpan(name, SpanKindLLM, attrs)
}

func (t *Tracer) ToolSpan(toolName string, attrs map[string]interface{}) *Span {
	return t.StartSpan(fmt.Sprintf("tool:%s", toolName), SpanKindTool, attrs)
}

func (t *Tracer) GuardrailSpan(name string) *Span {
	return t.StartSpan(fmt.Sprintf("guardrail:%s", name), SpanKindGuardrail, nil)
}

func (t *Tracer) HandoffSpan(from, to string) *Span {
	return t.StartSpan(fmt.Sprintf("handoff:%s->%s", from, to), SpanKindHandoff, nil)
}
