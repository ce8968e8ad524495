package mindful

import (
	"fmt"
	"sync"
)

// ──────────────────────────────────────────────
// Guardrails — input/output safety checks
// ──────────────────────────────────────────────

// InputGuardrailTriggered is returned when an input guardrail blocks.
type InputGuardrailTriggered struct {
	GuardrailName string
	Reason        string
}

func (e *InputGuardrailTriggered) Error() string {
	return fmt.Sprintf("Input guardrail triggered: %s — %s", e.GuardrailName, e.Reason)
}

// OutputGuardrailTriggered is returned when an output guardrail blocks.
type OutputGuardrailTriggered struct {
	GuardrailName string
	Reason        string
}

func (e *OutputGuardrailTriggered) Error() string {
	return fmt.Sprintf("Output guardrail triggered: %s — %s", e.GuardrailName, e.Reason)
}

// GuardrailContext is passed to guardrail functions.
type GuardrailContext struct {
	Text  string
	Extra map[string]interface{}
}

// GuardrailResult holds the result of a guardrail check.
type GuardrailResult struct {
	Passed        bool
	Reason        string
	GuardrailName string
	Metadata      map[string]interface{}
}

// GuardrailFunc is the signature for guardrail check functions.
type GuardrailFunc func(ctx *GuardrailContext) *GuardrailResult

type guardrailDef struct {
	name string
	fn   GuardrailFunc
}

// GuardrailManager manages input and output guardrails. Guards run in
// registration order; the first failure wins. Metadata from passing
// guards is merged into the final result so non-blocking guards (like
// crisis awareness) can annotate without stopping the conversation.
type GuardrailManager struct {
	inputGuards  []guardrailDef
	outputGuards []guardrailDef
	mu           sync.RWMutex
}

// NewGuardrailManager creates an empty guardrail manager.
func NewGuardrailManager() *GuardrailManager {
	return &GuardrailManager{}
}

// AddInput registers an input guardrail.
func (g *GuardrailManager) AddInput(name string, fn GuardrailFunc) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inputGuards = append(g.inputGuards, guardrailDef{name: name, fn: fn})
}

// AddOutput registers an output guardrail.
func (g *GuardrailManager) AddOutput(name string, fn GuardrailFunc) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.outputGuards = append(g.outputGuards, guardrailDef{name: name, fn: fn})
}

// InputCount returns the number of input guardrails.
func (g *GuardrailManager) InputCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.inputGuards)
}

// OutputCount returns the number of output guardrails.
func (g *GuardrailManager) OutputCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.outputGuards)
}

// CheckInput runs all input guardrails. Returns *InputGuardrailTriggered
// on the first failure.
func (g *GuardrailManager) CheckInput(text string, extra map[string]interface{}) error {
	result := g.CheckInputSafe(text, extra)
	if !result.Passed {
		return &InputGuardrailTriggered{GuardrailName: result.GuardrailName, Reason: result.Reason}
	}
	return nil
}

// CheckOutput runs all output guardrails. Returns *OutputGuardrailTriggered
// on the first failure.
func (g *GuardrailManager) CheckOutput(text string, extra map[string]interface{}) error {
	result := g.CheckOutputSafe(text, extra)
	if !result.Passed {
		return &OutputGuardrailTriggered{GuardrailName: result.GuardrailName, Reason: result.Reason}
	}
	return nil
}

// CheckInputSafe runs input guardrails and returns the merged result
// instead of an error.
func (g *GuardrailManager) CheckInputSafe(text string, extra map[string]interface{}) *GuardrailResult {
	g.mu.RLock()
	guards := make([]guardrailDef, len(g.inputGuards))
	copy(guards, g.inputGuards)
	g.mu.RUnlock()
	return runGuards(guards, text, extra)
}

// CheckOutputSafe runs output guardrails and returns the merged result.
func (g *GuardrailManager) CheckOutputSafe(text string, extra map[string]interface{}) *GuardrailResult {
	g.mu.RLock()
	guards := make([]guardrailDef, len(g.outputGuards))
	copy(guards, g.outputGuards)
	g.mu.RUnlock()
	return runGuards(guards, text, extra)
}

func runGuards(guards []guardrailDef, text string, extra map[string]interface{}) *GuardrailResult {
	if extra == nil {
		extra = make(map[string]interface{})
	}
	merged := &GuardrailResult{Passed: true}

	for _, guard := range guards {
		result := guard.fn(&GuardrailContext{Text: text, Extra: extra})
		if result == nil {
			continue
		}
		if len(result.Metadata) > 0 {
			if merged.Metadata == nil {
				merged.Metadata = make(map[string]interface{})
			}
			for k, v := range result.Metadata {
				merged.Metadata[k] = v
			}
		}
		if !result.Passed {
			merged.Passed = false
			merged.Reason = result.Reason
			merged.GuardrailName = guard.name
			if merged.GuardrailName == "" {
				merged.GuardrailName = result.GuardrailName
			}
			return merged
		}
	}
	return merged
}

// ─── Built-in guards ───

// CrisisAwarenessGuard returns an input guardrail that runs the detector
// on every message. It never blocks: the assessment is attached to the
// result metadata under "crisis_assessment" so the host can escalate.
// Crisis handling itself belongs to the crisis agent, not a tripwire.
func CrisisAwarenessGuard(d *CrisisDetector) GuardrailFunc {
	return func(ctx *GuardrailContext) *GuardrailResult {
		assessment := d.Assess(ctx.Text)
		return &GuardrailResult{
			Passed: true,
			Metadata: map[string]interface{}{
				"crisis_assessment": assessment,
			},
		}
	}
}
