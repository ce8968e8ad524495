package mindful

import (
	"fmt"
	"strings"
)

// ──────────────────────────────────────────────
// Agent — a persona over the agent loop
// ──────────────────────────────────────────────

// Agent binds a persona (instructions, tools, sub-agents) to the agent
// loop. Agents are cheap to build and safe for concurrent Respond calls;
// conversation state lives in the Session, not the Agent.
type Agent struct {
	ID          string
	DisplayName string
	Description string

	LLMFn        LLMFunc
	Tools        *ToolRegistry
	SystemPrompt string
	MaxTurns     int
	Guardrails   *GuardrailManager
	Tracer       *Tracer

	// engine is set when the agent has sub-agents and owns the
	// delegate_to_* tools.
	engine *HandoffEngine
	subIDs []string
}

// SubAgentIDs returns the IDs of this agent's sub-agents.
func (a *Agent) SubAgentIDs() []string {
	out := make([]string, len(a.subIDs))
	copy(out, a.subIDs)
	return out
}

// Respond runs one turn of the agent for the given input.
func (a *Agent) Respond(userInput string, history []map[string]interface{}, extraContext string) *AgentLoopResult {
	return a.RespondWithExtra(userInput, history, extraContext, nil)
}

// RespondWithExtra runs one turn with session values (session_id,
// hop_count, visited_agents) made visible to tool handlers.
func (a *Agent) RespondWithExtra(userInput string, history []map[string]interface{}, extraContext string, extra map[string]interface{}) *AgentLoopResult {
	loop := NewAgentLoop(a.LLMFn, a.Tools, a.SystemPrompt, a.MaxTurns)
	loop.Guardrails = a.Guardrails
	loop.Tracer = a.Tracer
	loop.Extra = extra
	return loop.Run(userInput, history, extraContext)
}

// ──────────────────────────────────────────────
// AgentBuilder — fluent construction
// ──────────────────────────────────────────────

// AgentBuilder assembles an Agent: identity, model function, tools,
// guardrails, and sub-agents for delegation.
//
// Usage:
//
//	agent, err := mindful.NewAgentBuilder("support_agent", "Support Agent").
//	    Description("Emotional support and coping strategies").
//	    LLM(llmFn).
//	    SystemPrompt(instructions).
//	    Use(toolkit.LogMoodTool(sessionID)).
//	    Build()
type AgentBuilder struct {
	id           string
	displayName  string
	description  string
	tools        map[string]*Tool
	toolOrder    []string
	llmFn        LLMFunc
	systemPrompt string
	maxTurns     int
	guardrails   *GuardrailManager
	tracer       *Tracer
	subAgents    []*Agent
	policy       *HandoffPolicy
}

// NewAgentBuilder creates a builder for the given agent identity.
func NewAgentBuilder(id, displayName string) *AgentBuilder {
	return &AgentBuilder{
		id:          id,
		displayName: displayName,
		tools:       make(map[string]*Tool),
		maxTurns:    10,
	}
}

func (b *AgentBuilder) Description(d string) *AgentBuilder { b.description = d; return b }

// Tool registers a runtime tool inline.
func (b *AgentBuilder) Tool(name, description string, handler ToolHandlerFunc, params ...ToolParam) *AgentBuilder {
	return b.Use(&Tool{
		Name:        name,
		Description: description,
		Parameters:  params,
		Handler:     handler,
	})
}

// Use registers a prebuilt tool (e.g. from a Toolkit).
func (b *AgentBuilder) Use(t *Tool) *AgentBuilder {
	if _, exists := b.tools[t.Name]; !exists {
		b.toolOrder = append(b.toolOrder, t.Name)
	}
	b.tools[t.Name] = t
	return b
}

func (b *AgentBuilder) LLM(fn LLMFunc) *AgentBuilder                     { b.llmFn = fn; return b }
func (b *AgentBuilder) SystemPrompt(p string) *AgentBuilder              { b.systemPrompt = p; return b }
func (b *AgentBuilder) MaxTurns(n int) *AgentBuilder                     { b.maxTurns = n; return b }
func (b *AgentBuilder) WithGuardrails(g *GuardrailManager) *AgentBuilder { b.guardrails = g; return b }
func (b *AgentBuilder) WithTracer(t *Tracer) *AgentBuilder               { b.tracer = t; return b }
func (b *AgentBuilder) WithHandoffPolicy(p *HandoffPolicy) *AgentBuilder { b.policy = p; return b }

// SubAgent adds a delegation target. Each sub-agent is exposed to the
// model as a delegate_to_<id> tool.
func (b *AgentBuilder) SubAgent(a *Agent) *AgentBuilder {
	b.subAgents = append(b.subAgents, a)
	return b
}

// Build validates and assembles the agent.
func (b *AgentBuilder) Build() (*Agent, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	reg := NewToolRegistry()
	for _, name := range b.toolOrder {
		reg.Register(b.tools[name])
	}

	agent := &Agent{
		ID:           b.id,
		DisplayName:  b.displayName,
		Description:  b.description,
		LLMFn:        b.llmFn,
		Tools:        reg,
		SystemPrompt: b.systemPrompt,
		MaxTurns:     b.maxTurns,
		Guardrails:   b.guardrails,
		Tracer:       b.tracer,
	}

	if len(b.subAgents) > 0 {
		directory := NewAgentDirectory()
		for _, sub := range b.subAgents {
			directory.Register(sub)
			agent.subIDs = append(agent.subIDs, sub.ID)
		}
		engine := NewHandoffEngine(directory, b.policy)
		engine.Tracer = b.tracer
		agent.engine = engine

		for _, sub := range b.subAgents {
			reg.Register(delegateTool(agent, sub, engine))
		}
	}

	return agent, nil
}

func (b *AgentBuilder) validate() error {
	if b.id == "" {
		return fmt.Errorf("agent id is required")
	}
	if b.displayName == "" {
		return fmt.Errorf("agent display_name is required")
	}

	seen := make(map[string]bool)
	for _, sub := range b.subAgents {
		if sub.ID == "" {
			return fmt.Errorf("sub-agent id is required")
		}
		lower := strings.ToLower(sub.ID)
		if seen[lower] {
			return fmt.Errorf("duplicate sub-agent id: %q", sub.ID)
		}
		seen[lower] = true
		if _, clash := b.tools[DelegateToolName(sub.ID)]; clash {
			return fmt.Errorf("tool name %q collides with delegation to %q", DelegateToolName(sub.ID), sub.ID)
		}
	}
	return nil
}

// ──────────────────────────────────────────────
// Delegation tools
// ──────────────────────────────────────────────

// DelegateToolName returns the tool name the model calls to reach a
// sub-agent.
func DelegateToolName(agentID string) string {
	return "delegate_to_" + agentID
}

func delegateTool(parent *Agent, sub *Agent, engine *HandoffEngine) *Tool {
	desc := fmt.Sprintf("Delegate the conversation to %s.", sub.DisplayName)
	if sub.Description != "" {
		desc += " " + sub.Description
	}
	return &Tool{
		Name:        DelegateToolName(sub.ID),
		Description: desc,
		Parameters: []ToolParam{
			{Name: "message", Type: "string", Description: "The user message to hand to the specialist", Required: true},
		},
		Handler: func(ctx *ToolContext, args map[string]interface{}) (interface{}, error) {
			message, err := stringArg(args, "message")
			if err != nil {
				return nil, err
			}

			req := NewHandoffRequest(parent.ID, sub.ID, "routing")
			req.Messages = []HandoffMessage{{Role: "user", Content: message}}
			if h, ok := ctx.Extra["hop_count"].(int); ok {
				req.HopCount = h
			}
			if v, ok := ctx.Extra["visited_agents"].([]string); ok {
				req.VisitedAgents = v
			}
			if sid, ok := ctx.Extra["session_id"].(string); ok {
				req.SessionID = sid
			}

			result := engine.Handoff(ctx.Ctx, req)
			if result.Error != nil {
				return nil, result.Error
			}
			return result.Output, nil
		},
	}
}
