package mindful

import (
	"fmt"
	"testing"
)

// ══════════════════════════════════════════════
// Middleware
// ══════════════════════════════════════════════

func TestMiddleware_OnionOrder(t *testing.T) {
	p := NewMiddlewarePipeline()
	var order []string
	p.Use(func(ctx *MiddlewareContext, next NextFunc) {
		order = append(order, "a-before")
		next()
		order = append(order, "a-after")
	})
	p.Use(func(ctx *MiddlewareContext, next NextFunc) {
		order = append(order, "b-before")
		next()
		order = append(order, "b-after")
	})

	p.Execute(&MiddlewareContext{}, func() { order = append(order, "core") })

	want := []string{"a-before", "b-before", "core", "b-after", "a-after"}
	if len(order) != len(want) {
		t.Fatalf("unexpected order: %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestMiddleware_CanIntercept(t *testing.T) {
	p := NewMiddlewarePipeline()
	p.Use(func(ctx *MiddlewareContext, next NextFunc) {
		// never calls next
	})

	ran := false
	ctx := &MiddlewareContext{}
	p.Execute(ctx, func() { ran = true; ctx.Handled = true })

	if ran || ctx.Handled {
		t.Fatal("intercepting middleware must prevent the core handler")
	}
}

func TestMiddleware_SessionTurnWrapped(t *testing.T) {
	s := NewSession(NewMemoryStore())
	agent, _ := NewAgentBuilder("a", "A").LLM(scriptedLLM(makeFinalResp("hi"))).Build()

	var sawResult bool
	s.Use(func(ctx *MiddlewareContext, next NextFunc) {
		if ctx.Result != nil {
			t.Fatal("result must not exist before next()")
		}
		next()
		sawResult = ctx.Result != nil && ctx.Result.FinalOutput == "hi"
	})

	if _, err := s.Converse(agent, "hello"); err != nil {
		t.Fatal(err)
	}
	if !sawResult {
		t.Fatal("middleware must observe the turn result after next()")
	}
}

func TestMiddleware_CrisisEscalation(t *testing.T) {
	store := NewMemoryStore()
	kit := NewToolkit(store)
	coordinator, err := NewCoordinator(scriptedLLM(makeFinalResp("help is available")), kit, "sess-esc")
	if err != nil {
		t.Fatal(err)
	}

	s := NewSessionWithID(store, "sess-esc")
	var escalated string
	s.Use(CrisisEscalationMiddleware(func(sessionID string, a *CrisisAssessment) {
		escalated = fmt.Sprintf("%s:%s", sessionID, a.SeverityLevel)
	}))

	if _, err := s.Converse(coordinator, "I want to die and I have a gun"); err != nil {
		t.Fatal(err)
	}
	if escalated != "sess-esc:CRITICAL" {
		t.Fatalf("expected critical escalation, got %q", escalated)
	}

	escalated = ""
	if _, err := s.Converse(coordinator, "just checking in, feeling fine"); err != nil {
		t.Fatal(err)
	}
	if escalated != "" {
		t.Fatalf("benign turn must not escalate, got %q", escalated)
	}
}

// ══════════════════════════════════════════════
// HistoryCompressor
// ══════════════════════════════════════════════

func TestCompressor_BelowThresholdUntouched(t *testing.T) {
	c := NewHistoryCompressor(func(msgs []map[string]interface{}) (string, error) {
		t.Fatal("summarizer must not run below threshold")
		return "", nil
	})

	s := NewSession(NewMemoryStore())
	history := []map[string]interface{}{
		{"role": "user", "content": "short"},
	}
	if got := c.Compress(s, history); len(got) != 1 {
		t.Fatalf("short history must pass through, got %d", len(got))
	}
}

func makeLongHistory(n int) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, map[string]interface{}{
			"role":    "user",
			"content": fmt.Sprintf("message %d: today I kept thinking about work and could not settle down at all", i),
		})
	}
	return out
}

func TestCompressor_SummarizesOlderMessages(t *testing.T) {
	calls := 0
	c := NewHistoryCompressor(func(msgs []map[string]interface{}) (string, error) {
		calls++
		return fmt.Sprintf("summary of %d messages", len(msgs)), nil
	}, CompressorConfig{WindowSize: 4, TokenThreshold: 10, SummaryVersion: "v1"})

	s := NewSession(NewMemoryStore())
	history := makeLongHistory(10)

	got := c.Compress(s, history)
	if len(got) != 5 {
		t.Fatalf("expected summary + 4 recent, got %d", len(got))
	}
	if got[0]["role"] != "system" {
		t.Fatalf("first message must be the summary: %v", got[0])
	}
	if content := got[0]["content"].(string); content != "Summary of the earlier conversation:\nsummary of 6 messages" {
		t.Fatalf("unexpected summary content: %q", content)
	}

	// same history: cached summary, no second model call
	c.Compress(s, history)
	if calls != 1 {
		t.Fatalf("expected cached summary on second pass, got %d calls", calls)
	}

	// more history: cache no longer covers the older slice, re-summarize
	c.Compress(s, makeLongHistory(12))
	if calls != 2 {
		t.Fatalf("expected re-summarization when coverage changes, got %d calls", calls)
	}
}

func TestCompressor_FailsOpen(t *testing.T) {
	c := NewHistoryCompressor(func(msgs []map[string]interface{}) (string, error) {
		return "", fmt.Errorf("model down")
	}, CompressorConfig{WindowSize: 2, TokenThreshold: 10})

	s := NewSession(NewMemoryStore())
	history := makeLongHistory(6)
	if got := c.Compress(s, history); len(got) != 6 {
		t.Fatalf("failed summarization must keep original history, got %d", len(got))
	}
}

func TestCompressor_SessionIntegration(t *testing.T) {
	store := NewMemoryStore()
	s := NewSessionWithID(store, "sess-comp")
	for i := 0; i < 10; i++ {
		if err := s.AddMessage("user", fmt.Sprintf("long message %d about a stressful week that keeps repeating itself", i)); err != nil {
			t.Fatal(err)
		}
	}

	var promptLen int
	agent, _ := NewAgentBuilder("a", "A").
		LLM(func(messages, tools []map[string]interface{}) (*LLMMessage, error) {
			promptLen = len(messages)
			return makeFinalResp("ok"), nil
		}).
		Build()

	s.SetCompressor(NewHistoryCompressor(func(msgs []map[string]interface{}) (string, error) {
		return "they had a stressful week", nil
	}, CompressorConfig{WindowSize: 3, TokenThreshold: 10}))

	if _, err := s.Converse(agent, "new message"); err != nil {
		t.Fatal(err)
	}
	// summary + 3 recent + current user input
	if promptLen != 5 {
		t.Fatalf("expected compressed prompt of 5 messages, got %d", promptLen)
	}
}
