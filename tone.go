package mindful

import (
	"fmt"
	"strings"
)

// ──────────────────────────────────────────────
// Emotional Tone Detector — lightweight rule-based scoring
// ──────────────────────────────────────────────

// EmotionalTone holds the detected emotional tone and confidence.
type EmotionalTone struct {
	Tone       string             `json:"tone"`       // neutral/anxious/sad/angry/hopeful
	Confidence float64            `json:"confidence"` // 0.0-1.0
	Scores     map[string]float64 `json:"scores"`     // all tone scores
}

type weightedKeyword struct {
	keyword string
	weight  float64
}

// ToneDetector estimates the emotional tone of a message via weighted
// keyword scoring. It is a coarse signal for prompt shaping, not an
// assessment: crisis language is the CrisisDetector's job, and the two
// must never be conflated.
type ToneDetector struct {
	patterns map[string][]weightedKeyword
}

// NewToneDetector creates a detector with the built-in patterns.
func NewToneDetector() *ToneDetector {
	return &ToneDetector{patterns: defaultTonePatterns()}
}

func defaultTonePatterns() map[string][]weightedKeyword {
	return map[string][]weightedKeyword{
		"anxious": {
			{keyword: "anxious", weight: 0.5}, {keyword: "panic", weight: 0.5},
			{keyword: "worried", weight: 0.4}, {keyword: "nervous", weight: 0.4},
			{keyword: "on edge", weight: 0.4}, {keyword: "racing", weight: 0.3},
			{keyword: "can't relax", weight: 0.4}, {keyword: "overwhelmed", weight: 0.4},
		},
		"sad": {
			{keyword: "sad", weight: 0.4}, {keyword: "lonely", weight: 0.4},
			{keyword: "empty", weight: 0.4}, {keyword: "down", weight: 0.3},
			{keyword: "crying", weight: 0.4}, {keyword: "miserable", weight: 0.4},
			{keyword: "numb", weight: 0.4}, {keyword: "disappointed", weight: 0.3},
		},
		"angry": {
			{keyword: "angry", weight: 0.5}, {keyword: "furious", weight: 0.5},
			{keyword: "frustrated", weight: 0.4}, {keyword: "fed up", weight: 0.4},
			{keyword: "unfair", weight: 0.3}, {keyword: "hate", weight: 0.3},
		},
		// Lower weight: needs multiple hits, guards against politeness
		// and sarcasm reading as genuine improvement.
		"hopeful": {
			{keyword: "better", weight: 0.3}, {keyword: "hopeful", weight: 0.3},
			{keyword: "grateful", weight: 0.3}, {keyword: "improving", weight: 0.3},
			{keyword: "proud", weight: 0.3}, {keyword: "looking forward", weight: 0.3},
		},
	}
}

// Detect analyzes the message for emotional tone.
func (d *ToneDetector) Detect(text string) *EmotionalTone {
	lower := strings.ToLower(text)
	scores := map[string]float64{
		"neutral": 0,
		"anxious": 0,
		"sad":     0,
		"angry":   0,
		"hopeful": 0,
	}

	for tone, keywords := range d.patterns {
		for _, kw := range keywords {
			if strings.Contains(lower, kw.keyword) {
				scores[tone] += kw.weight
			}
		}
	}

	// Repeated exclamation marks amplify the leading tone a little.
	exclamCount := strings.Count(text, "!")
	if exclamCount >= 2 {
		boost := float64(exclamCount) * 0.1
		if boost > 0.2 {
			boost = 0.2
		}
		if top := maxTone(scores); top != "neutral" {
			scores[top] += boost
		}
	}

	topTone := "neutral"
	topScore := 0.0
	for tone, score := range scores {
		if tone == "neutral" {
			continue
		}
		if score > topScore {
			topScore = score
			topTone = tone
		}
	}

	confidence := topScore
	if confidence > 1.0 {
		confidence = 1.0
	}
	if confidence < 0.3 {
		topTone = "neutral"
		confidence = 0
	}

	return &EmotionalTone{Tone: topTone, Confidence: confidence, Scores: scores}
}

// FormatForPrompt returns a gentle tone hint for prompt injection, or ""
// when neutral.
func (t *EmotionalTone) FormatForPrompt() string {
	if t.Tone == "neutral" || t.Confidence < 0.3 {
		return ""
	}
	hints := map[string]string{
		"anxious": "The user sounds anxious. Keep your response calm, concrete, and steady.",
		"sad":     "The user sounds low. Be warm and validating before offering suggestions.",
		"angry":   "The user sounds frustrated. Stay patient and do not argue.",
		"hopeful": "The user sounds more hopeful. Reinforce the progress they describe.",
	}
	hint, ok := hints[t.Tone]
	if !ok {
		return ""
	}
	return fmt.Sprintf("[Tone] %s", hint)
}

func maxTone(scores map[string]float64) string {
	top := "neutral"
	topScore := 0.0
	for tone, score := range scores {
		if tone == "neutral" {
			continue
		}
		if score > topScore {
			topScore = score
			top = tone
		}
	}
	return top
}

// ToneAwarenessGuard returns an input guardrail that never blocks and
// attaches the detected tone to the result metadata under
// "emotional_tone".
func ToneAwarenessGuard(d *ToneDetector) GuardrailFunc {
	return func(ctx *GuardrailContext) *GuardrailResult {
		tone := d.Detect(ctx.Text)
		return &GuardrailResult{
			Passed: true,
			Metadata: map[string]interface{}{
				"emotional_tone": tone,
			},
		}
	}
}
