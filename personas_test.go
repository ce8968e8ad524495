package mindful

import (
	"strings"
	"testing"
)

// ══════════════════════════════════════════════
// Personas
// ══════════════════════════════════════════════

func personaKit() *Toolkit {
	return NewToolkit(NewMemoryStore())
}

func TestPersonas_TriageTools(t *testing.T) {
	a, err := NewTriageAgent(scriptedLLM(makeFinalResp("ok")), personaKit())
	if err != nil {
		t.Fatal(err)
	}
	if a.ID != AgentTriage {
		t.Fatalf("unexpected id: %s", a.ID)
	}
	if !a.Tools.Contains(ToolDetectCrisis) || a.Tools.Len() != 1 {
		t.Fatalf("triage must carry exactly detect_crisis, got %v", a.Tools.Names())
	}
}

func TestPersonas_CrisisTools(t *testing.T) {
	a, err := NewCrisisAgent(scriptedLLM(makeFinalResp("ok")), personaKit())
	if err != nil {
		t.Fatal(err)
	}
	if !a.Tools.Contains(ToolGetCrisisResources) || a.Tools.Len() != 1 {
		t.Fatalf("crisis agent must carry exactly get_crisis_resources, got %v", a.Tools.Names())
	}
}

func TestPersonas_SupportTools(t *testing.T) {
	a, err := NewSupportAgent(scriptedLLM(makeFinalResp("ok")), personaKit(), "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if !a.Tools.Contains(ToolLogMood) || !a.Tools.Contains(ToolGetCopingStrats) || a.Tools.Len() != 2 {
		t.Fatalf("support agent tools wrong: %v", a.Tools.Names())
	}
}

func TestPersonas_ResourceTools(t *testing.T) {
	a, err := NewResourceAgent(scriptedLLM(makeFinalResp("ok")), personaKit())
	if err != nil {
		t.Fatal(err)
	}
	if !a.Tools.Contains(ToolGetCrisisResources) || a.Tools.Len() != 1 {
		t.Fatalf("resource agent tools wrong: %v", a.Tools.Names())
	}
}

func TestPersonas_CoordinatorDelegatesOnly(t *testing.T) {
	c, err := NewCoordinator(scriptedLLM(makeFinalResp("ok")), personaKit(), "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		DelegateToolName(AgentTriage),
		DelegateToolName(AgentCrisis),
		DelegateToolName(AgentSupport),
		DelegateToolName(AgentResource),
	}
	for _, name := range want {
		if !c.Tools.Contains(name) {
			t.Fatalf("coordinator missing %s", name)
		}
	}
	if c.Tools.Len() != len(want) {
		t.Fatalf("coordinator must carry only delegate tools, got %v", c.Tools.Names())
	}
	if len(c.SubAgentIDs()) != 4 {
		t.Fatalf("expected 4 sub-agents, got %v", c.SubAgentIDs())
	}
}

func TestPersonas_CoordinatorCrisisGuardAnnotates(t *testing.T) {
	c, err := NewCoordinator(scriptedLLM(makeFinalResp("routing...")), personaKit(), "sess-1")
	if err != nil {
		t.Fatal(err)
	}

	result := c.Respond("I want to die tonight", nil, "")
	if result.StoppedReason != "completed" {
		t.Fatalf("crisis guard must not block, got %s", result.StoppedReason)
	}
	a, ok := result.Metadata["crisis_assessment"].(*CrisisAssessment)
	if !ok {
		t.Fatal("coordinator must annotate crisis assessment")
	}
	if a.SeverityLevel != SeverityCritical {
		t.Fatalf("expected CRITICAL for keyword + severe modifier, got %s", a.SeverityLevel)
	}
}

func TestPersonas_CoordinatorRoutesToSupport(t *testing.T) {
	store := NewMemoryStore()
	kit := NewToolkit(store)

	// Support agent logs a mood entry, then answers.
	supportLLM := scriptedLLM(
		makeToolCallResp("s1", ToolLogMood, `{"mood_score":4,"emotions":["anxious"]}`),
		makeFinalResp("thanks for sharing"),
	)
	support, err := NewSupportAgent(supportLLM, kit, "sess-route")
	if err != nil {
		t.Fatal(err)
	}

	coordLLM := scriptedLLM(
		makeToolCallResp("c1", DelegateToolName(AgentSupport), `{"message":"I feel anxious today"}`),
		makeFinalResp("routed to support"),
	)
	coordinator, err := NewAgentBuilder(AgentCoordinator, "MindfulAI Coordinator").
		LLM(coordLLM).
		SystemPrompt(CoordinatorInstructions).
		SubAgent(support).
		Build()
	if err != nil {
		t.Fatal(err)
	}

	result := coordinator.Respond("I feel anxious today", nil, "")
	if result.FinalOutput != "routed to support" {
		t.Fatalf("unexpected final: %q", result.FinalOutput)
	}
	if got := result.Turns[0].ToolCalls[0].Result; got != "thanks for sharing" {
		t.Fatalf("support reply not surfaced: %q", got)
	}

	// The mood entry landed in the session ledger bound at build time.
	ledger := NewMoodLedger(store)
	n, err := ledger.Len("sess-route")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 mood entry, got %d", n)
	}
}

func TestPersonas_InstructionsNameTheirTools(t *testing.T) {
	// Prompt content and tool wiring must not drift apart.
	cases := []struct {
		instructions string
		tool         string
	}{
		{TriageInstructions, ToolDetectCrisis},
		{CrisisInstructions, ToolGetCrisisResources},
		{SupportInstructions, ToolLogMood},
		{SupportInstructions, ToolGetCopingStrats},
		{ResourceInstructions, ToolGetCrisisResources},
		{CoordinatorInstructions, DelegateToolName(AgentTriage)},
	}
	for _, c := range cases {
		if !strings.Contains(c.instructions, c.tool) {
			t.Fatalf("instructions do not mention %s", c.tool)
		}
	}
}
