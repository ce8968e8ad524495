package mindful

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ──────────────────────────────────────────────
// Handoff — cross-agent delegation contracts
// ──────────────────────────────────────────────

// HandoffMessage is the cross-agent message format.
type HandoffMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// HandoffError is a structured handoff error.
type HandoffError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func (e *HandoffError) Error() string { return e.Code + ": " + e.Message }

// HandoffRequest is the delegation request contract.
type HandoffRequest struct {
	FromAgent     string           `json:"from_agent"`
	ToAgent       string           `json:"to_agent"`
	Reason        string           `json:"reason"`
	RequestID     string           `json:"request_id"`
	SessionID     string           `json:"session_id,omitempty"`
	DeadlineMs    int              `json:"deadline_ms"`
	HopCount      int              `json:"hop_count"`
	VisitedAgents []string         `json:"visited_agents,omitempty"`
	Messages      []HandoffMessage `json:"messages,omitempty"`
	ExtraContext  string           `json:"extra_context,omitempty"`
}

// NewHandoffRequest creates a request with a generated request ID and the
// default deadline.
func NewHandoffRequest(from, to, reason string) *HandoffRequest {
	return &HandoffRequest{
		FromAgent:  from,
		ToAgent:    to,
		Reason:     reason,
		RequestID:  uuid.NewString(),
		DeadlineMs: 30000,
	}
}

// HandoffResult is the delegation result contract.
type HandoffResult struct {
	Output     string                 `json:"output"`
	AgentID    string                 `json:"agent_id"`
	Status     string                 `json:"status"` // "success", "error", "timeout"
	Error      *HandoffError          `json:"error,omitempty"`
	Usage      map[string]interface{} `json:"usage,omitempty"`
	DurationMs float64                `json:"duration_ms"`
	RequestID  string                 `json:"request_id"`
	CacheHit   bool                   `json:"cache_hit"`
}

func handoffErrorResult(req *HandoffRequest, code, message string) *HandoffResult {
	retryable := code == "TIMEOUT" || code == "MODEL_ERROR"
	return &HandoffResult{
		AgentID:   req.ToAgent,
		Status:    "error",
		Error:     &HandoffError{Code: code, Message: message, Retryable: retryable},
		RequestID: req.RequestID,
	}
}

// ──────────────────────────────────────────────
// HandoffPolicy — loop guard and timeouts
// ──────────────────────────────────────────────

// HandoffPolicy bounds delegation depth and duration.
type HandoffPolicy struct {
	MaxHopCount    int
	DefaultTimeout int // ms
}

// NewHandoffPolicy creates a policy with defaults.
func NewHandoffPolicy() *HandoffPolicy {
	return &HandoffPolicy{MaxHopCount: 3, DefaultTimeout: 30000}
}

// CheckLoop validates the loop guard against the next hop.
func (p *HandoffPolicy) CheckLoop(req *HandoffRequest) *HandoffError {
	nextHop := req.HopCount + 1
	if nextHop > p.MaxHopCount {
		return &HandoffError{Code: "LOOP_DETECTED", Message: fmt.Sprintf("Max hop count exceeded: %d > %d", nextHop, p.MaxHopCount)}
	}
	if containsStr(req.VisitedAgents, req.ToAgent) {
		return &HandoffError{Code: "LOOP_DETECTED", Message: fmt.Sprintf("Agent %s already visited", req.ToAgent)}
	}
	return nil
}

func containsStr(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}

// ──────────────────────────────────────────────
// AgentDirectory
// ──────────────────────────────────────────────

// AgentDirectory holds the agents reachable by delegation.
type AgentDirectory struct {
	mu     sync.RWMutex
	agents map[string]*Agent
}

// NewAgentDirectory creates an empty directory.
func NewAgentDirectory() *AgentDirectory {
	return &AgentDirectory{agents: make(map[string]*Agent)}
}

// Register adds an agent. Later registrations with the same ID win.
func (d *AgentDirectory) Register(a *Agent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.agents[a.ID] = a
	log.Printf("[AgentDirectory] Registered: %s", a.ID)
}

// Get retrieves an agent by ID, or nil.
func (d *AgentDirectory) Get(id string) *Agent {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.agents[id]
}

// IDs returns all registered agent IDs.
func (d *AgentDirectory) IDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ids := make([]string, 0, len(d.agents))
	for id := range d.agents {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of registered agents.
func (d *AgentDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.agents)
}

// ──────────────────────────────────────────────
// Idempotency cache
// ──────────────────────────────────────────────

// HandoffIdempotencyCache deduplicates handoffs by request ID so a
// retried delegation returns the first result instead of re-running the
// target agent.
type HandoffIdempotencyCache struct {
	mu    sync.Mutex
	cache map[string]*idempEntry
	ttl   time.Duration
}

type idempEntry struct {
	result *HandoffResult
	ts     time.Time
}

func NewHandoffIdempotencyCache(ttl time.Duration) *HandoffIdempotencyCache {
	return &HandoffIdempotencyCache{cache: make(map[string]*idempEntry), ttl: ttl}
}

// Peek returns the cached result for a request ID without storing
// anything.
func (c *HandoffIdempotencyCache) Peek(requestID string) (*HandoffResult, bool) {
	if requestID == "" {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanup()
	if e, ok := c.cache[requestID]; ok {
		cached := *e.result
		cached.CacheHit = true
		return &cached, true
	}
	return nil, false
}

func (c *HandoffIdempotencyCache) GetOrSet(requestID string, result *HandoffResult) (*HandoffResult, bool) {
	if requestID == "" {
		return result, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanup()
	if e, ok := c.cache[requestID]; ok {
		cached := *e.result
		cached.CacheHit = true
		return &cached, true
	}
	c.cache[requestID] = &idempEntry{result: result, ts: time.Now()}
	return result, false
}

func (c *HandoffIdempotencyCache) cleanup() {
	now := time.Now()
	for k, e := range c.cache {
		if now.Sub(e.ts) > c.ttl {
			delete(c.cache, k)
		}
	}
}

// ──────────────────────────────────────────────
// HandoffEngine
// ──────────────────────────────────────────────

// HandoffEngine executes delegations between agents with loop guarding
// and timeouts.
type HandoffEngine struct {
	Directory *AgentDirectory
	Policy    *HandoffPolicy
	Tracer    *Tracer
	Cache     *HandoffIdempotencyCache
}

// NewHandoffEngine creates an engine over a directory. A nil policy gets
// defaults.
func NewHandoffEngine(directory *AgentDirectory, policy *HandoffPolicy) *HandoffEngine {
	if policy == nil {
		policy = NewHandoffPolicy()
	}
	return &HandoffEngine{Directory: directory, Policy: policy}
}

// Handoff executes the delegation pipeline: resolve target, loop guard,
// timeout, run target agent.
func (e *HandoffEngine) Handoff(ctx context.Context, req *HandoffRequest) *HandoffResult {
	start := time.Now()

	target := e.Directory.Get(req.ToAgent)
	if target == nil {
		return handoffErrorResult(req, "NOT_FOUND", "Agent not found: "+req.ToAgent)
	}

	if err := e.Policy.CheckLoop(req); err != nil {
		return handoffErrorResult(req, err.Code, err.Message)
	}

	if e.Cache != nil {
		if cached, hit := e.Cache.Peek(req.RequestID); hit {
			return cached
		}
	}

	var span *Span
	if e.Tracer.Enabled() {
		span = e.Tracer.HandoffSpan(req.FromAgent, req.ToAgent)
	}

	deadlineMs := req.DeadlineMs
	if deadlineMs <= 0 {
		deadlineMs = e.Policy.DefaultTimeout
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, time.Duration(deadlineMs)*time.Millisecond)
	defer cancel()

	resultCh := make(chan *HandoffResult, 1)
	go func() {
		resultCh <- e.runAgent(target, req)
	}()

	select {
	case result := <-resultCh:
		result.DurationMs = float64(time.Since(start).Milliseconds())
		result.RequestID = req.RequestID
		if e.Cache != nil {
			result, _ = e.Cache.GetOrSet(req.RequestID, result)
		}
		if span != nil {
			status := "ok"
			errMsg := ""
			if result.Error != nil {
				status, errMsg = "error", result.Error.Message
			}
			e.Tracer.EndSpan(span, status, errMsg)
		}
		return result
	case <-ctx.Done():
		if span != nil {
			e.Tracer.EndSpan(span, "error", "timeout")
		}
		return &HandoffResult{
			AgentID:    req.ToAgent,
			Status:     "timeout",
			Error:      &HandoffError{Code: "TIMEOUT", Message: "Handoff timed out", Retryable: true},
			DurationMs: float64(time.Since(start).Milliseconds()),
			RequestID:  req.RequestID,
		}
	}
}

func (e *HandoffEngine) runAgent(target *Agent, req *HandoffRequest) (res *HandoffResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[HandoffEngine] Agent %s panic: %v", req.ToAgent, r)
			res = handoffErrorResult(req, "MODEL_ERROR", fmt.Sprintf("agent panic: %v", r))
		}
	}()

	if target.LLMFn == nil {
		return handoffErrorResult(req, "MODEL_ERROR", "Agent has no LLM function")
	}

	// The last user message is the input; the reason covers delegations
	// that arrive without one. Earlier messages become history.
	userInput := req.Reason
	inputIdx := -1
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			userInput = req.Messages[i].Content
			inputIdx = i
			break
		}
	}
	var history []map[string]interface{}
	for i, m := range req.Messages {
		if i == inputIdx {
			continue
		}
		history = append(history, map[string]interface{}{"role": m.Role, "content": m.Content})
	}

	extra := map[string]interface{}{
		"hop_count":      req.HopCount + 1,
		"visited_agents": append(append([]string{}, req.VisitedAgents...), req.FromAgent),
	}
	if req.SessionID != "" {
		extra["session_id"] = req.SessionID
	}

	result := target.RespondWithExtra(userInput, history, req.ExtraContext, extra)

	if result.StoppedReason == "error" {
		return handoffErrorResult(req, "MODEL_ERROR", result.FinalOutput)
	}

	return &HandoffResult{
		Output:  result.FinalOutput,
		AgentID: req.ToAgent,
		Status:  "success",
		Usage: map[string]interface{}{
			"total_turns": result.TotalTurns,
			"tool_calls":  result.ToolCallsCount,
		},
	}
}
