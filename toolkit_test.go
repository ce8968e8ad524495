package mindful

import (
	"encoding/json"
	"testing"
)

// ══════════════════════════════════════════════
// Toolkit — the four tools through the registry
// ══════════════════════════════════════════════

func testToolkitRegistry(t *testing.T) *ToolRegistry {
	t.Helper()
	reg := NewToolRegistry()
	NewToolkit(NewMemoryStore()).RegisterAll(reg, "test-session")
	return reg
}

func TestToolkit_RegistersFourTools(t *testing.T) {
	reg := testToolkitRegistry(t)
	if reg.Len() != 4 {
		t.Fatalf("expected 4 tools, got %d", reg.Len())
	}
	for _, name := range []string{ToolDetectCrisis, ToolLogMood, ToolGetCrisisResources, ToolGetCopingStrats} {
		if !reg.Contains(name) {
			t.Fatalf("missing tool %q", name)
		}
	}
}

func TestToolkit_DetectCrisisExecute(t *testing.T) {
	reg := testToolkitRegistry(t)
	result, err := reg.Execute(ToolDetectCrisis, map[string]interface{}{
		"text": "I want to die and I have a gun",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	a, ok := result.(*CrisisAssessment)
	if !ok {
		t.Fatalf("expected *CrisisAssessment, got %T", result)
	}
	if a.SeverityLevel != SeverityCritical {
		t.Fatalf("expected CRITICAL, got %s", a.SeverityLevel)
	}
	// Tool results must serialize to the documented JSON shape.
	b, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{"is_crisis", "severity_level", "matched_keywords", "confidence_score", "timestamp"} {
		if _, ok := decoded[field]; !ok {
			t.Fatalf("missing JSON field %q", field)
		}
	}
}

func TestToolkit_LogMoodCoercesJSONArguments(t *testing.T) {
	reg := testToolkitRegistry(t)
	// JSON decoding hands numbers over as float64 and arrays as []interface{}.
	result, err := reg.Execute(ToolLogMood, map[string]interface{}{
		"mood_score": float64(7),
		"emotions":   []interface{}{"hopeful", "tired"},
		"notes":      "slept well",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	res := result.(*MoodLogResult)
	if res.Entry.MoodScore != 7 {
		t.Fatalf("expected score 7, got %d", res.Entry.MoodScore)
	}
	if len(res.Entry.Emotions) != 2 || res.Entry.Emotions[0] != "hopeful" {
		t.Fatalf("unexpected emotions: %v", res.Entry.Emotions)
	}
	if res.TotalEntries != 1 {
		t.Fatalf("expected total 1, got %d", res.TotalEntries)
	}
}

func TestToolkit_LogMoodNotesDefault(t *testing.T) {
	reg := testToolkitRegistry(t)
	result, err := reg.Execute(ToolLogMood, map[string]interface{}{
		"mood_score": float64(5),
		"emotions":   []interface{}{"calm"},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.(*MoodLogResult).Entry.Notes != "" {
		t.Fatal("notes must default to empty string")
	}
}

func TestToolkit_LogMoodMissingRequired(t *testing.T) {
	reg := testToolkitRegistry(t)
	_, err := reg.Execute(ToolLogMood, map[string]interface{}{
		"emotions": []interface{}{"sad"},
	}, nil)
	if err == nil {
		t.Fatal("expected error for missing mood_score")
	}
}

func TestToolkit_ResourcesDefaultLocation(t *testing.T) {
	reg := testToolkitRegistry(t)
	result, err := reg.Execute(ToolGetCrisisResources, map[string]interface{}{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	res := result.(*ResourceLookup)
	if res.Location != "us" {
		t.Fatalf("expected default location us, got %q", res.Location)
	}
	if len(res.Resources) == 0 {
		t.Fatal("expected resources")
	}
}

func TestToolkit_StrategiesFallback(t *testing.T) {
	reg := testToolkitRegistry(t)
	result, err := reg.Execute(ToolGetCopingStrats, map[string]interface{}{
		"situation": "spiders",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	res := result.(*StrategyLookup)
	if len(res.Strategies) != 4 {
		t.Fatalf("expected stress fallback list, got %v", res.Strategies)
	}
	if res.Note == "" {
		t.Fatal("expected disclaimer note")
	}
}

func TestToolkit_SessionBinding(t *testing.T) {
	store := NewMemoryStore()
	tk := NewToolkit(store)

	regA := NewToolRegistry()
	tk.RegisterAll(regA, "session-a")
	regB := NewToolRegistry()
	tk.RegisterAll(regB, "session-b")

	args := map[string]interface{}{"mood_score": float64(4), "emotions": []interface{}{"flat"}}
	if _, err := regA.Execute(ToolLogMood, args, nil); err != nil {
		t.Fatal(err)
	}
	result, err := regB.Execute(ToolLogMood, map[string]interface{}{
		"mood_score": float64(9), "emotions": []interface{}{"great"},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.(*MoodLogResult).TotalEntries != 1 {
		t.Fatal("sessions must keep separate ledgers")
	}
}
