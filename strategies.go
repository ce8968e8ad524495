package mindful

import "strings"

// ──────────────────────────────────────────────
// Strategy Catalog — coping strategy lookup
// ──────────────────────────────────────────────

// strategyFallbackKey is used for unrecognized situations. It is a fixed
// catalog property, not a caller-supplied default.
const strategyFallbackKey = "stress"

// strategyNote is attached to every lookup result.
const strategyNote = "These are immediate coping strategies. For ongoing concerns, please consult a mental health professional."

// defaultCopingStrategies holds the built-in ordered suggestion lists.
var defaultCopingStrategies = map[string][]string{
	"anxiety": {
		"Deep breathing: 4-7-8 technique (inhale 4s, hold 7s, exhale 8s)",
		"Grounding: Name 5 things you see, 4 you hear, 3 you feel, 2 you smell, 1 you taste",
		"Progressive muscle relaxation",
		"Take a short walk or do light stretching",
	},
	"panic": {
		"Find a safe, quiet space",
		"Focus on slow, deep breaths",
		"Ground yourself physically (feet on floor, hands on solid surface)",
		"Remind yourself: 'This will pass, I am safe'",
	},
	"depression": {
		"Break tasks into smallest possible steps",
		"Reach out to one person, even just a text",
		"Get outside for 5 minutes if possible",
		"Do one small self-care activity",
	},
	"stress": {
		"Take a 5-minute break from the stressor",
		"Write down what's bothering you",
		"Do a brief physical activity",
		"Practice mindful breathing",
	},
	"overwhelm": {
		"Stop and take 3 deep breaths",
		"Make a list, prioritize just one thing",
		"Remove yourself from the situation temporarily if possible",
		"Ask for help with one specific task",
	},
}

// StrategyLookup is the result of a catalog lookup.
type StrategyLookup struct {
	Situation  string   `json:"situation"`
	Strategies []string `json:"strategies"`
	Note       string   `json:"note"`
}

// StrategyCatalog maps situation keys (case-insensitive) to ordered
// suggestion lists. Immutable after construction.
type StrategyCatalog struct {
	entries map[string][]string
}

// NewStrategyCatalog creates a catalog with the built-in five situations
// (anxiety, panic, depression, stress, overwhelm).
func NewStrategyCatalog() *StrategyCatalog {
	return NewStrategyCatalogFrom(defaultCopingStrategies)
}

// NewStrategyCatalogFrom creates a catalog from the given entries.
// The entries must include the "stress" fallback key.
func NewStrategyCatalogFrom(entries map[string][]string) *StrategyCatalog {
	copied := make(map[string][]string, len(entries))
	for k, v := range entries {
		list := make([]string, len(v))
		copy(list, v)
		copied[strings.ToLower(k)] = list
	}
	return &StrategyCatalog{entries: copied}
}

// Lookup returns the suggestion list for a situation (case-insensitive).
// Unrecognized situations fall back to the "stress" list. The note is the
// same fixed disclaimer on every response.
func (c *StrategyCatalog) Lookup(situation string) *StrategyLookup {
	key := strings.ToLower(situation)
	list, ok := c.entries[key]
	if !ok {
		list = c.entries[strategyFallbackKey]
	}

	strategies := make([]string, len(list))
	copy(strategies, list)

	return &StrategyLookup{
		Situation:  situation,
		Strategies: strategies,
		Note:       strategyNote,
	}
}
