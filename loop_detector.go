package mindful

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// ──────────────────────────────────────────────
// Loop Detector — repetitive tool call patterns
// ──────────────────────────────────────────────
//
// A stuck model re-assessing the same message or re-fetching the same
// hotline list burns turns without helping the user. The detector flags
// identical repeats, flooding of one tool, and ping-pong alternation.
// Repeat budgets are per tool: a repeated detect_crisis is merely
// wasteful, but a repeated log_mood writes a duplicate ledger entry and
// skews the trend, so it gets no slack at all.

// LoopDetectorConfig controls loop detection behavior.
type LoopDetectorConfig struct {
	Enabled             bool
	MaxRepeatCalls      int // consecutive identical calls allowed, default 3
	MaxSameToolInWindow int // calls to one tool within the window, default 5
	WindowSize          int // sliding window size, default 10

	// RepeatLimits overrides MaxRepeatCalls for individual tools.
	RepeatLimits map[string]int
}

// DefaultLoopDetectorConfig returns the budgets tuned for the support
// toolkit.
func DefaultLoopDetectorConfig() LoopDetectorConfig {
	return LoopDetectorConfig{
		Enabled:             true,
		MaxRepeatCalls:      3,
		MaxSameToolInWindow: 5,
		WindowSize:          10,
		RepeatLimits: map[string]int{
			// Logging the same mood twice duplicates the entry.
			ToolLogMood: 1,
		},
	}
}

// LoopWarning describes a detected loop pattern.
type LoopWarning struct {
	Type    string // "repeat" / "flood" / "ping_pong"
	Message string
}

// LoopDetector tracks the tool calls of one agent run. Not safe for
// concurrent use; each Run gets its own detector.
type LoopDetector struct {
	config LoopDetectorConfig
	names  []string
	prints []string
}

// NewLoopDetector creates a detector with the given config.
func NewLoopDetector(config ...LoopDetectorConfig) *LoopDetector {
	cfg := DefaultLoopDetectorConfig()
	if len(config) > 0 {
		cfg = config[0]
	}
	return &LoopDetector{config: cfg}
}

func (d *LoopDetector) repeatLimit(name string) int {
	if limit, ok := d.config.RepeatLimits[name]; ok {
		return limit
	}
	return d.config.MaxRepeatCalls
}

// Check reports whether executing the call now would continue a loop.
// Returns nil when the call should proceed.
func (d *LoopDetector) Check(name string, args map[string]interface{}) *LoopWarning {
	if !d.config.Enabled {
		return nil
	}
	print := callFingerprint(name, args)
	n := len(d.names)

	if limit := d.repeatLimit(name); limit > 0 {
		tail := 0
		for i := n - 1; i >= 0 && d.prints[i] == print; i-- {
			tail++
		}
		if tail >= limit {
			return &LoopWarning{
				Type:    "repeat",
				Message: fmt.Sprintf("%s already ran %d time(s) with these exact arguments", name, tail),
			}
		}
	}

	if d.config.MaxSameToolInWindow > 0 {
		start := n - d.config.WindowSize
		if start < 0 {
			start = 0
		}
		count := 0
		for _, seen := range d.names[start:] {
			if seen == name {
				count++
			}
		}
		if count >= d.config.MaxSameToolInWindow {
			return &LoopWarning{
				Type:    "flood",
				Message: fmt.Sprintf("%s ran %d times in the last %d calls", name, count, n-start),
			}
		}
	}

	// A/B/A followed by B again is alternation without progress.
	if n >= 3 && name != d.names[n-1] && name == d.names[n-2] && d.names[n-1] == d.names[n-3] {
		return &LoopWarning{
			Type:    "ping_pong",
			Message: fmt.Sprintf("alternating between %s and %s without progress", d.names[n-1], name),
		}
	}

	return nil
}

// Record adds an executed call to the history.
func (d *LoopDetector) Record(name string, args map[string]interface{}) {
	d.names = append(d.names, name)
	d.prints = append(d.prints, callFingerprint(name, args))

	keep := d.config.WindowSize * 2
	if keep < 20 {
		keep = 20
	}
	if len(d.names) > keep {
		d.names = d.names[len(d.names)-keep:]
		d.prints = d.prints[len(d.prints)-keep:]
	}
}

// Reset clears the history.
func (d *LoopDetector) Reset() {
	d.names = nil
	d.prints = nil
}

// callFingerprint identifies a call by tool name plus canonicalized
// arguments. json.Marshal sorts map keys, so argument order never
// changes the fingerprint.
func callFingerprint(name string, args map[string]interface{}) string {
	payload, _ := json.Marshal(args)
	sum := sha256.Sum256(append([]byte(name+"\x00"), payload...))
	return fmt.Sprintf("%x", sum[:8])
}
