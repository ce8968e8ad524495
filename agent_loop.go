package mindful

import (
	"encoding/json"
	"fmt"
	"log"
)

// ──────────────────────────────────────────────
// Agent Loop — ReAct automatic reasoning cycle
// ──────────────────────────────────────────────
//
// Core flow: User Input → LLM → [tool_calls?] → Execute → Feed back → LLM → ... → Final Output
//
// Usage:
//
//	loop := mindful.NewAgentLoop(myLLMFn, registry, "You are a support agent.", 10)
//	result := loop.Run("I'm feeling anxious", nil, "")
//	fmt.Println(result.FinalOutput)

// ToolCallInput represents a single tool call requested by the model,
// in OpenAI function-calling shape.
type ToolCallInput struct {
	ID       string `json:"id"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"` // JSON string
	} `json:"function"`
}

// LLMMessage represents one model response.
type LLMMessage struct {
	Content   string          `json:"content"`
	ToolCalls []ToolCallInput `json:"tool_calls,omitempty"`
}

// LLMFunc is the function signature for calling the hosted model. It
// receives the message history and the tools schema and returns one
// LLMMessage. All model invocation and session mechanics live behind
// this boundary.
type LLMFunc func(messages []map[string]interface{}, tools []map[string]interface{}) (*LLMMessage, error)

// ToolCallRecord records a single tool invocation.
type ToolCallRecord struct {
	ToolName  string                 `json:"tool_name"`
	Arguments map[string]interface{} `json:"arguments"`
	Result    string                 `json:"result"`
	Error     string                 `json:"error,omitempty"`
	CallID    string                 `json:"call_id"`
}

// TurnRecord records a single model turn.
type TurnRecord struct {
	TurnNumber int              `json:"turn_number"`
	LLMOutput  string           `json:"llm_output,omitempty"`
	ToolCalls  []ToolCallRecord `json:"tool_calls,omitempty"`
	IsFinal    bool             `json:"is_final"`
}

// AgentLoopResult is the final result of an AgentLoop run.
type AgentLoopResult struct {
	FinalOutput    string                   `json:"final_output"`
	Turns          []TurnRecord             `json:"turns"`
	ToolCallsCount int                      `json:"tool_calls_count"`
	TotalTurns     int                      `json:"total_turns"`
	StoppedReason  string                   `json:"stopped_reason"` // "completed", "max_turns", "guardrail", "error"
	Messages       []map[string]interface{} `json:"messages"`
	Metadata       map[string]interface{}   `json:"metadata,omitempty"` // guardrail annotations etc.
}

// AgentLoop implements the ReAct reasoning cycle over a tool registry.
type AgentLoop struct {
	LLMFn        LLMFunc
	ToolRegistry *ToolRegistry
	SystemPrompt string
	MaxTurns     int
	Guardrails   *GuardrailManager
	Tracer       *Tracer

	// LoopConfig enables repetitive-tool-call detection. Nil disables it.
	// Each Run gets a fresh detector.
	LoopConfig *LoopDetectorConfig

	// Extra is copied into every ToolContext so handlers can see
	// session-level values (e.g. "session_id").
	Extra map[string]interface{}
}

// NewAgentLoop creates a new agent loop.
func NewAgentLoop(llmFn LLMFunc, registry *ToolRegistry, systemPrompt string, maxTurns int) *AgentLoop {
	if maxTurns <= 0 {
		maxTurns = 10
	}
	return &AgentLoop{
		LLMFn:        llmFn,
		ToolRegistry: registry,
		SystemPrompt: systemPrompt,
		MaxTurns:     maxTurns,
	}
}

// Run executes the agent loop for one user input.
func (a *AgentLoop) Run(userInput string, conversationHistory []map[string]interface{}, extraContext string) *AgentLoopResult {
	var agentSpan *Span
	if a.Tracer.Enabled() {
		a.Tracer.NewTrace()
		agentSpan = a.Tracer.AgentSpan("agent_loop")
		defer func() {
			a.Tracer.EndSpan(agentSpan, agentSpan.Status, agentSpan.Error)
		}()
	}

	result := &AgentLoopResult{}

	// --- Input guardrails ---
	if a.Guardrails != nil && a.Guardrails.InputCount() > 0 {
		var gs *Span
		if a.Tracer.Enabled() {
			gs = a.Tracer.GuardrailSpan("input_guardrails")
		}
		checked := a.Guardrails.CheckInputSafe(userInput, a.Extra)
		if len(checked.Metadata) > 0 {
			result.Metadata = checked.Metadata
		}
		if !checked.Passed {
			err := &InputGuardrailTriggered{GuardrailName: checked.GuardrailName, Reason: checked.Reason}
			if gs != nil {
				a.Tracer.EndSpan(gs, "error", err.Error())
			}
			if agentSpan != nil {
				agentSpan.Status = "error"
				agentSpan.Error = err.Error()
			}
			result.StoppedReason = "guardrail"
			result.FinalOutput = err.Error()
			return result
		}
		if gs != nil {
			a.Tracer.EndSpan(gs, "ok", "")
		}
	}

	// Build initial messages
	var messages []map[string]interface{}

	if a.SystemPrompt != "" {
		messages = append(messages, map[string]interface{}{"role": "system", "content": a.SystemPrompt})
	}
	if extraContext != "" {
		messages = append(messages, map[string]interface{}{"role": "system", "content": extraContext})
	}
	messages = append(messages, conversationHistory...)
	messages = append(messages, map[string]interface{}{"role": "user", "content": userInput})

	var toolsSchema []map[string]interface{}
	if a.ToolRegistry != nil && a.ToolRegistry.Len() > 0 {
		toolsSchema = a.ToolRegistry.ToOpenAISchema()
	}

	var loopDetector *LoopDetector
	if a.LoopConfig != nil {
		loopDetector = NewLoopDetector(*a.LoopConfig)
	}

	turnNumber := 0

	for turnNumber < a.MaxTurns {
		turnNumber++
		turn := TurnRecord{TurnNumber: turnNumber}

		// --- Model call ---
		var llmSpan *Span
		if a.Tracer.Enabled() {
			llmSpan = a.Tracer.LLMSpan("", map[string]interface{}{"turn": turnNumber})
		}
		llmResp, err := a.LLMFn(messages, toolsSchema)
		if llmSpan != nil {
			status, errMsg := "ok", ""
			if err != nil {
				status, errMsg = "error", err.Error()
			}
			a.Tracer.EndSpan(llmSpan, status, errMsg)
		}
		if err != nil {
			log.Printf("[AgentLoop] LLM error at turn %d: %v", turnNumber, err)
			result.StoppedReason = "error"
			result.FinalOutput = fmt.Sprintf("Error: %v", err)
			break
		}

		turn.LLMOutput = llmResp.Content

		// --- Final output (no tool calls) ---
		if len(llmResp.ToolCalls) == 0 {
			if a.Guardrails != nil && a.Guardrails.OutputCount() > 0 && llmResp.Content != "" {
				var gs *Span
				if a.Tracer.Enabled() {
					gs = a.Tracer.GuardrailSpan("output_guardrails")
				}
				if err := a.Guardrails.CheckOutput(llmResp.Content, a.Extra); err != nil {
					if gs != nil {
						a.Tracer.EndSpan(gs, "error", err.Error())
					}
					if agentSpan != nil {
						agentSpan.Status = "error"
						agentSpan.Error = err.Error()
					}
					result.StoppedReason = "guardrail"
					result.FinalOutput = err.Error()
					break
				}
				if gs != nil {
					a.Tracer.EndSpan(gs, "ok", "")
				}
			}

			turn.IsFinal = true
			result.FinalOutput = llmResp.Content
			result.StoppedReason = "completed"
			result.Turns = append(result.Turns, turn)
			break
		}

		// --- Execute tool calls ---
		assistantMsg := map[string]interface{}{
			"role":    "assistant",
			"content": llmResp.Content,
		}
		var serializedCalls []map[string]interface{}
		for _, tc := range llmResp.ToolCalls {
			serializedCalls = append(serializedCalls, map[string]interface{}{
				"id":   tc.ID,
				"type": "function",
				"function": map[string]string{
					"name":      tc.Function.Name,
					"arguments": tc.Function.Arguments,
				},
			})
		}
		assistantMsg["tool_calls"] = serializedCalls
		messages = append(messages, assistantMsg)

		for _, tc := range llmResp.ToolCalls {
			funcName := tc.Function.Name
			var funcArgs map[string]interface{}
			json.Unmarshal([]byte(tc.Function.Arguments), &funcArgs)
			if funcArgs == nil {
				funcArgs = make(map[string]interface{})
			}

			record := ToolCallRecord{
				ToolName:  funcName,
				Arguments: funcArgs,
				CallID:    tc.ID,
			}

			if loopDetector != nil {
				if warning := loopDetector.Check(funcName, funcArgs); warning != nil {
					log.Printf("[AgentLoop] Loop warning (%s): %s", warning.Type, warning.Message)
					record.Error = warning.Message
					turn.ToolCalls = append(turn.ToolCalls, record)
					messages = append(messages, map[string]interface{}{
						"role":         "tool",
						"tool_call_id": tc.ID,
						"content":      fmt.Sprintf("Warning: %s. Do not repeat this call; answer with what you already have.", warning.Message),
					})
					continue
				}
				loopDetector.Record(funcName, funcArgs)
			}

			var toolSpan *Span
			if a.Tracer.Enabled() {
				toolSpan = a.Tracer.ToolSpan(funcName, funcArgs)
			}
			ctx := &ToolContext{ToolName: funcName, CallID: tc.ID, Extra: make(map[string]interface{})}
			for k, v := range a.Extra {
				ctx.Extra[k] = v
			}
			toolResult, toolErr := a.ToolRegistry.Execute(funcName, funcArgs, ctx)
			if toolSpan != nil {
				status, errMsg := "ok", ""
				if toolErr != nil {
					status, errMsg = "error", toolErr.Error()
				}
				a.Tracer.EndSpan(toolSpan, status, errMsg)
			}

			var toolResultStr string
			if toolErr != nil {
				record.Error = toolErr.Error()
				toolResultStr = fmt.Sprintf("Error: %v", toolErr)
				log.Printf("[AgentLoop] Tool %s failed: %v", funcName, toolErr)
			} else {
				switch v := toolResult.(type) {
				case string:
					toolResultStr = v
				default:
					b, _ := json.Marshal(v)
					toolResultStr = string(b)
				}
				record.Result = toolResultStr
			}

			turn.ToolCalls = append(turn.ToolCalls, record)
			result.ToolCallsCount++

			messages = append(messages, map[string]interface{}{
				"role":         "tool",
				"tool_call_id": tc.ID,
				"content":      toolResultStr,
			})
		}

		result.Turns = append(result.Turns, turn)
	}

	if turnNumber >= a.MaxTurns && result.StoppedReason == "" {
		result.StoppedReason = "max_turns"
		if len(result.Turns) > 0 && result.Turns[len(result.Turns)-1].LLMOutput != "" {
			result.FinalOutput = result.Turns[len(result.Turns)-1].LLMOutput
		}
	}

	result.TotalTurns = turnNumber
	result.Messages = messages
	return result
}
