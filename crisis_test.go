package mindful

import (
	"strings"
	"testing"
)

// ══════════════════════════════════════════════
// CrisisDetector
// ══════════════════════════════════════════════

func TestCrisisDetector_NoKeywords(t *testing.T) {
	d := NewCrisisDetector()
	a := d.Assess("I had a pretty good day at work today")
	if a.IsCrisis {
		t.Fatal("expected is_crisis=false")
	}
	if a.SeverityLevel != SeverityLow {
		t.Fatalf("expected LOW, got %s", a.SeverityLevel)
	}
	if a.ConfidenceScore != 0 {
		t.Fatalf("expected confidence 0, got %v", a.ConfidenceScore)
	}
	if len(a.MatchedKeywords) != 0 {
		t.Fatalf("expected no matches, got %v", a.MatchedKeywords)
	}
}

func TestCrisisDetector_EmptyInput(t *testing.T) {
	d := NewCrisisDetector()
	a := d.Assess("")
	if a.IsCrisis || a.SeverityLevel != SeverityLow {
		t.Fatal("empty input must classify LOW")
	}
}

func TestCrisisDetector_SingleSevereKeyword(t *testing.T) {
	// One severe hit, no crisis hits: score 2.0 → HIGH, confidence 0.4.
	d := NewCrisisDetector()
	a := d.Assess("I took some pills for my headache")
	if a.SeverityLevel != SeverityHigh {
		t.Fatalf("expected HIGH, got %s", a.SeverityLevel)
	}
	if !a.IsCrisis {
		t.Fatal("expected is_crisis=true")
	}
	if a.ConfidenceScore != 0.4 {
		t.Fatalf("expected confidence 0.4, got %v", a.ConfidenceScore)
	}
}

func TestCrisisDetector_SingleCrisisKeyword(t *testing.T) {
	// Score 1.0 → MODERATE.
	d := NewCrisisDetector()
	a := d.Assess("sometimes I feel there is no hope")
	if a.SeverityLevel != SeverityModerate {
		t.Fatalf("expected MODERATE, got %s", a.SeverityLevel)
	}
	if !a.IsCrisis {
		t.Fatal("MODERATE counts as crisis")
	}
}

func TestCrisisDetector_CriticalBoundary(t *testing.T) {
	// One crisis (1.0) + one severe (2.0) = exactly 3.0 → CRITICAL.
	d := NewCrisisDetector()
	a := d.Assess("I want to die and I have a gun")
	if a.SeverityLevel != SeverityCritical {
		t.Fatalf("expected CRITICAL at score 3.0, got %s", a.SeverityLevel)
	}
	if a.ConfidenceScore != 0.6 {
		t.Fatalf("expected confidence 0.6, got %v", a.ConfidenceScore)
	}
}

func TestCrisisDetector_ConfidenceCap(t *testing.T) {
	d := NewCrisisDetector()
	a := d.Assess("suicide kill myself end it all want to die pills gun tonight right now")
	if a.ConfidenceScore != 1.0 {
		t.Fatalf("expected capped confidence 1.0, got %v", a.ConfidenceScore)
	}
	if a.SeverityLevel != SeverityCritical {
		t.Fatalf("expected CRITICAL, got %s", a.SeverityLevel)
	}
}

func TestCrisisDetector_MatchOrder(t *testing.T) {
	// Crisis-list matches come before severe-list matches, each in list order.
	d := NewCrisisDetectorWithKeywords(
		[]string{"alpha", "beta"},
		[]string{"gamma", "delta"},
	)
	a := d.Assess("delta beta gamma alpha")
	want := []string{"alpha", "beta", "gamma", "delta"}
	if len(a.MatchedKeywords) != len(want) {
		t.Fatalf("expected %v, got %v", want, a.MatchedKeywords)
	}
	for i := range want {
		if a.MatchedKeywords[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, a.MatchedKeywords)
		}
	}
}

func TestCrisisDetector_CaseInsensitive(t *testing.T) {
	d := NewCrisisDetector()
	lower := d.Assess("i want to die")
	upper := d.Assess("I WANT TO DIE")
	if lower.SeverityLevel != upper.SeverityLevel {
		t.Fatal("matching must be case-insensitive")
	}
	if lower.ConfidenceScore != upper.ConfidenceScore {
		t.Fatal("scores must match regardless of case")
	}
}

func TestCrisisDetector_CountedOncePerKeyword(t *testing.T) {
	d := NewCrisisDetector()
	once := d.Assess("no hope")
	thrice := d.Assess(strings.Repeat("no hope ", 3))
	if once.ConfidenceScore != thrice.ConfidenceScore {
		t.Fatal("a keyword must be counted once regardless of multiplicity")
	}
}

func TestCrisisDetector_Deterministic(t *testing.T) {
	d := NewCrisisDetector()
	a := d.Assess("I can't go on tonight")
	b := d.Assess("I can't go on tonight")
	if a.SeverityLevel != b.SeverityLevel || a.ConfidenceScore != b.ConfidenceScore {
		t.Fatal("assessment must be deterministic")
	}
}
