package mindful

import (
	"strings"
	"time"
)

// ──────────────────────────────────────────────
// Crisis Detector — rule-based keyword scoring
// ──────────────────────────────────────────────

// SeverityLevel classifies the urgency of a crisis assessment.
type SeverityLevel string

const (
	SeverityLow      SeverityLevel = "LOW"
	SeverityModerate SeverityLevel = "MODERATE"
	SeverityHigh     SeverityLevel = "HIGH"
	SeverityCritical SeverityLevel = "CRITICAL"
)

// CrisisAssessment is the result of scanning one message.
type CrisisAssessment struct {
	IsCrisis        bool          `json:"is_crisis"`
	SeverityLevel   SeverityLevel `json:"severity_level"`
	MatchedKeywords []string      `json:"matched_keywords"`
	ConfidenceScore float64       `json:"confidence_score"`
	Timestamp       time.Time     `json:"timestamp"`
}

// CrisisDetector scores text against two disjoint keyword lists:
// crisis phrases (weight 1.0) and severe/immediacy phrases (weight 2.0).
// Matching is case-insensitive substring search, counted once per keyword
// regardless of how often it occurs.
type CrisisDetector struct {
	crisisKeywords []string
	severeKeywords []string
}

// NewCrisisDetector creates a detector with the default keyword lists.
func NewCrisisDetector() *CrisisDetector {
	return NewCrisisDetectorWithKeywords(DefaultCrisisKeywords, DefaultSevereKeywords)
}

// NewCrisisDetectorWithKeywords creates a detector with custom lists.
// Match order in the assessment follows list order, crisis list first.
func NewCrisisDetectorWithKeywords(crisis, severe []string) *CrisisDetector {
	return &CrisisDetector{crisisKeywords: crisis, severeKeywords: severe}
}

// Assess scans text and returns a fresh assessment. It is deterministic
// given the text and keyword lists, has no side effects, and never fails:
// empty input yields score 0 and SeverityLow.
func (d *CrisisDetector) Assess(text string) *CrisisAssessment {
	lower := strings.ToLower(text)

	var matched []string
	crisisHits := 0
	for _, kw := range d.crisisKeywords {
		if strings.Contains(lower, kw) {
			matched = append(matched, kw)
			crisisHits++
		}
	}
	severeHits := 0
	for _, kw := range d.severeKeywords {
		if strings.Contains(lower, kw) {
			matched = append(matched, kw)
			severeHits++
		}
	}

	score := float64(crisisHits)*1.0 + float64(severeHits)*2.0

	var severity SeverityLevel
	switch {
	case score >= 3.0:
		severity = SeverityCritical
	case score >= 1.5:
		severity = SeverityHigh
	case score >= 0.5:
		severity = SeverityModerate
	default:
		severity = SeverityLow
	}

	confidence := score / 5.0
	if confidence > 1.0 {
		confidence = 1.0
	}

	return &CrisisAssessment{
		IsCrisis:        severity != SeverityLow,
		SeverityLevel:   severity,
		MatchedKeywords: matched,
		ConfidenceScore: confidence,
		Timestamp:       time.Now(),
	}
}
