package mindful

import (
	"fmt"
	"strings"
	"testing"
)

// ══════════════════════════════════════════════
// AgentLoop
// ══════════════════════════════════════════════

func makeFinalResp(content string) *LLMMessage {
	return &LLMMessage{Content: content}
}

func makeToolCallResp(callID, name, argsJSON string) *LLMMessage {
	tc := ToolCallInput{ID: callID}
	tc.Function.Name = name
	tc.Function.Arguments = argsJSON
	return &LLMMessage{ToolCalls: []ToolCallInput{tc}}
}

// scriptedLLM returns responses in order, then repeats the last one.
func scriptedLLM(responses ...*LLMMessage) LLMFunc {
	i := 0
	return func(messages, tools []map[string]interface{}) (*LLMMessage, error) {
		resp := responses[i]
		if i < len(responses)-1 {
			i++
		}
		return resp, nil
	}
}

func TestAgentLoop_DirectAnswer(t *testing.T) {
	loop := NewAgentLoop(scriptedLLM(makeFinalResp("hello")), NewToolRegistry(), "sys", 5)
	result := loop.Run("hi", nil, "")

	if result.FinalOutput != "hello" {
		t.Fatalf("expected hello, got %q", result.FinalOutput)
	}
	if result.StoppedReason != "completed" {
		t.Fatalf("expected completed, got %s", result.StoppedReason)
	}
	if result.TotalTurns != 1 {
		t.Fatalf("expected 1 turn, got %d", result.TotalTurns)
	}
}

func TestAgentLoop_ToolCallThenAnswer(t *testing.T) {
	store := NewMemoryStore()
	registry := NewToolRegistry()
	NewToolkit(store).RegisterAll(registry, "sess-1")

	loop := NewAgentLoop(scriptedLLM(
		makeToolCallResp("call_1", ToolDetectCrisis, `{"text":"there is no hope left"}`),
		makeFinalResp("assessment done"),
	), registry, "sys", 5)

	result := loop.Run("check this", nil, "")

	if result.FinalOutput != "assessment done" {
		t.Fatalf("unexpected final output: %q", result.FinalOutput)
	}
	if result.ToolCallsCount != 1 {
		t.Fatalf("expected 1 tool call, got %d", result.ToolCallsCount)
	}
	if result.TotalTurns != 2 {
		t.Fatalf("expected 2 turns, got %d", result.TotalTurns)
	}
	first := result.Turns[0]
	if len(first.ToolCalls) != 1 || first.ToolCalls[0].ToolName != ToolDetectCrisis {
		t.Fatalf("expected detect_crisis call in first turn, got %+v", first)
	}
	if !strings.Contains(first.ToolCalls[0].Result, `"severity_level":"MODERATE"`) {
		t.Fatalf("tool result not JSON-serialized assessment: %s", first.ToolCalls[0].Result)
	}
}

func TestAgentLoop_ToolResultFedBack(t *testing.T) {
	registry := NewToolRegistry()
	registry.Register(&Tool{
		Name:        "echo",
		Description: "echoes",
		Parameters:  []ToolParam{{Name: "v", Type: "string", Required: true}},
		Handler: func(ctx *ToolContext, args map[string]interface{}) (interface{}, error) {
			return "echo:" + args["v"].(string), nil
		},
	})

	var sawToolMsg bool
	llm := func(messages, tools []map[string]interface{}) (*LLMMessage, error) {
		for _, m := range messages {
			if m["role"] == "tool" && m["content"] == "echo:ping" {
				sawToolMsg = true
			}
		}
		if !sawToolMsg {
			return makeToolCallResp("c1", "echo", `{"v":"ping"}`), nil
		}
		return makeFinalResp("done"), nil
	}

	result := NewAgentLoop(llm, registry, "", 5).Run("go", nil, "")
	if !sawToolMsg {
		t.Fatal("tool result was not fed back to the model")
	}
	if result.FinalOutput != "done" {
		t.Fatalf("unexpected output: %q", result.FinalOutput)
	}
}

func TestAgentLoop_MaxTurns(t *testing.T) {
	registry := NewToolRegistry()
	registry.Register(&Tool{
		Name:        "noop",
		Description: "does nothing",
		Handler: func(ctx *ToolContext, args map[string]interface{}) (interface{}, error) {
			return "ok", nil
		},
	})

	// Model always asks for another tool call.
	loop := NewAgentLoop(scriptedLLM(
		makeToolCallResp("c", "noop", `{}`),
	), registry, "", 3)

	result := loop.Run("loop forever", nil, "")
	if result.StoppedReason != "max_turns" {
		t.Fatalf("expected max_turns, got %s", result.StoppedReason)
	}
	if result.TotalTurns != 3 {
		t.Fatalf("expected 3 turns, got %d", result.TotalTurns)
	}
}

func TestAgentLoop_LLMError(t *testing.T) {
	llm := func(messages, tools []map[string]interface{}) (*LLMMessage, error) {
		return nil, fmt.Errorf("model unavailable")
	}
	result := NewAgentLoop(llm, NewToolRegistry(), "", 5).Run("hi", nil, "")
	if result.StoppedReason != "error" {
		t.Fatalf("expected error stop, got %s", result.StoppedReason)
	}
	if !strings.Contains(result.FinalOutput, "model unavailable") {
		t.Fatalf("error not surfaced: %q", result.FinalOutput)
	}
}

func TestAgentLoop_ToolErrorFedBack(t *testing.T) {
	registry := NewToolRegistry()
	registry.Register(&Tool{
		Name:        "flaky",
		Description: "always fails",
		Handler: func(ctx *ToolContext, args map[string]interface{}) (interface{}, error) {
			return nil, fmt.Errorf("boom")
		},
	})

	loop := NewAgentLoop(scriptedLLM(
		makeToolCallResp("c1", "flaky", `{}`),
		makeFinalResp("recovered"),
	), registry, "", 5)

	result := loop.Run("try", nil, "")
	if result.FinalOutput != "recovered" {
		t.Fatalf("loop must continue after a tool error, got %q", result.FinalOutput)
	}
	if result.Turns[0].ToolCalls[0].Error != "boom" {
		t.Fatalf("tool error not recorded: %+v", result.Turns[0].ToolCalls[0])
	}
}

func TestAgentLoop_InputGuardrailBlocks(t *testing.T) {
	guards := NewGuardrailManager()
	guards.AddInput("blocker", func(ctx *GuardrailContext) *GuardrailResult {
		return &GuardrailResult{Passed: false, Reason: "no"}
	})

	called := false
	llm := func(messages, tools []map[string]interface{}) (*LLMMessage, error) {
		called = true
		return makeFinalResp("should not happen"), nil
	}

	loop := NewAgentLoop(llm, NewToolRegistry(), "", 5)
	loop.Guardrails = guards
	result := loop.Run("anything", nil, "")

	if result.StoppedReason != "guardrail" {
		t.Fatalf("expected guardrail stop, got %s", result.StoppedReason)
	}
	if called {
		t.Fatal("model must not be called when input is blocked")
	}
}

func TestAgentLoop_OutputGuardrailBlocks(t *testing.T) {
	guards := NewGuardrailManager()
	guards.AddOutput("no_forbidden", func(ctx *GuardrailContext) *GuardrailResult {
		if strings.Contains(ctx.Text, "forbidden") {
			return &GuardrailResult{Passed: false, Reason: "bad output"}
		}
		return &GuardrailResult{Passed: true}
	})

	loop := NewAgentLoop(scriptedLLM(makeFinalResp("forbidden words")), NewToolRegistry(), "", 5)
	loop.Guardrails = guards
	result := loop.Run("hi", nil, "")

	if result.StoppedReason != "guardrail" {
		t.Fatalf("expected guardrail stop, got %s", result.StoppedReason)
	}
}

func TestAgentLoop_GuardrailMetadataExposed(t *testing.T) {
	guards := NewGuardrailManager()
	guards.AddInput("crisis_awareness", CrisisAwarenessGuard(NewCrisisDetector()))

	loop := NewAgentLoop(scriptedLLM(makeFinalResp("ok")), NewToolRegistry(), "", 5)
	loop.Guardrails = guards
	result := loop.Run("I feel no hope at all", nil, "")

	a, ok := result.Metadata["crisis_assessment"].(*CrisisAssessment)
	if !ok {
		t.Fatalf("expected crisis assessment in metadata, got %T", result.Metadata["crisis_assessment"])
	}
	if a.SeverityLevel != SeverityModerate {
		t.Fatalf("expected MODERATE, got %s", a.SeverityLevel)
	}
}

func TestAgentLoop_ExtraReachesToolContext(t *testing.T) {
	registry := NewToolRegistry()
	var gotSession string
	registry.Register(&Tool{
		Name:        "who",
		Description: "reads session",
		Handler: func(ctx *ToolContext, args map[string]interface{}) (interface{}, error) {
			gotSession, _ = ctx.Extra["session_id"].(string)
			return "ok", nil
		},
	})

	loop := NewAgentLoop(scriptedLLM(
		makeToolCallResp("c1", "who", `{}`),
		makeFinalResp("done"),
	), registry, "", 5)
	loop.Extra = map[string]interface{}{"session_id": "sess-42"}

	loop.Run("go", nil, "")
	if gotSession != "sess-42" {
		t.Fatalf("expected session_id in tool context, got %q", gotSession)
	}
}

func TestAgentLoop_ConversationHistoryIncluded(t *testing.T) {
	var sawHistory bool
	llm := func(messages, tools []map[string]interface{}) (*LLMMessage, error) {
		for _, m := range messages {
			if m["role"] == "assistant" && m["content"] == "earlier reply" {
				sawHistory = true
			}
		}
		return makeFinalResp("ok"), nil
	}

	history := []map[string]interface{}{
		{"role": "user", "content": "earlier question"},
		{"role": "assistant", "content": "earlier reply"},
	}
	NewAgentLoop(llm, NewToolRegistry(), "sys", 5).Run("next", history, "")

	if !sawHistory {
		t.Fatal("conversation history must be included in the prompt")
	}
}

func TestAgentLoop_TracerCountsRootSpans(t *testing.T) {
	tracer := NewTracer(&NullSpanExporter{}, true)
	loop := NewAgentLoop(scriptedLLM(makeFinalResp("ok")), NewToolRegistry(), "", 5)
	loop.Tracer = tracer

	loop.Run("hi", nil, "")
	if tracer.ExportedCount() != 1 {
		t.Fatalf("expected 1 exported root span, got %d", tracer.ExportedCount())
	}
}
