package mindful

// ──────────────────────────────────────────────
// Personas — the five support agents
// ──────────────────────────────────────────────

// Agent IDs.
const (
	AgentTriage      = "triage_agent"
	AgentCrisis      = "crisis_agent"
	AgentSupport     = "support_agent"
	AgentResource    = "resource_agent"
	AgentCoordinator = "mindfulai_coordinator"
)

// NewTriageAgent builds the first-contact persona. It carries only the
// crisis detection tool: triage assesses, it does not treat.
func NewTriageAgent(llm LLMFunc, kit *Toolkit) (*Agent, error) {
	return NewAgentBuilder(AgentTriage, "Triage Agent").
		Description("First-contact triage agent that assesses urgency and routes to appropriate specialized agents").
		LLM(llm).
		SystemPrompt(TriageInstructions).
		Use(kit.DetectCrisisTool()).
		Build()
}

// NewCrisisAgent builds the emergency-response persona with the crisis
// resource lookup tool.
func NewCrisisAgent(llm LLMFunc, kit *Toolkit) (*Agent, error) {
	return NewAgentBuilder(AgentCrisis, "Crisis Agent").
		Description("Specialized crisis intervention agent for emergency mental health situations").
		LLM(llm).
		SystemPrompt(CrisisInstructions).
		Use(kit.CrisisResourcesTool()).
		Build()
}

// NewSupportAgent builds the ongoing-support persona with mood logging
// and coping strategy tools. The session ID binds the mood ledger to the
// conversation. A tone guard annotates every message so the host can
// shape prompts without blocking anything.
func NewSupportAgent(llm LLMFunc, kit *Toolkit, sessionID string) (*Agent, error) {
	guards := NewGuardrailManager()
	guards.AddInput("tone_awareness", ToneAwarenessGuard(NewToneDetector()))

	return NewAgentBuilder(AgentSupport, "Support Agent").
		Description("Supportive agent providing empathetic conversation, coping strategies, and mood tracking").
		LLM(llm).
		SystemPrompt(SupportInstructions).
		WithGuardrails(guards).
		Use(kit.LogMoodTool(sessionID)).
		Use(kit.CopingStrategiesTool()).
		Build()
}

// NewResourceAgent builds the resource-navigation persona.
func NewResourceAgent(llm LLMFunc, kit *Toolkit) (*Agent, error) {
	return NewAgentBuilder(AgentResource, "Resource Agent").
		Description("Resource specialist helping users find and access mental health services").
		LLM(llm).
		SystemPrompt(ResourceInstructions).
		Use(kit.CrisisResourcesTool()).
		Build()
}

// NewCoordinator builds the orchestrator with the four specialist
// personas as delegation targets. The coordinator carries no domain
// tools of its own, only delegate_to_* tools, and runs the crisis
// awareness guard on every incoming message so severe inputs are
// annotated even before the model routes them.
func NewCoordinator(llm LLMFunc, kit *Toolkit, sessionID string) (*Agent, error) {
	triage, err := NewTriageAgent(llm, kit)
	if err != nil {
		return nil, err
	}
	crisis, err := NewCrisisAgent(llm, kit)
	if err != nil {
		return nil, err
	}
	support, err := NewSupportAgent(llm, kit, sessionID)
	if err != nil {
		return nil, err
	}
	resource, err := NewResourceAgent(llm, kit)
	if err != nil {
		return nil, err
	}

	guards := NewGuardrailManager()
	guards.AddInput("crisis_awareness", CrisisAwarenessGuard(kit.Detector))

	return NewAgentBuilder(AgentCoordinator, "MindfulAI Coordinator").
		Description("Main coordinator that orchestrates the multi-agent mental health support system").
		LLM(llm).
		SystemPrompt(CoordinatorInstructions).
		WithGuardrails(guards).
		SubAgent(triage).
		SubAgent(crisis).
		SubAgent(support).
		SubAgent(resource).
		Build()
}
