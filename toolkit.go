package mindful

import "fmt"

// ──────────────────────────────────────────────
// Toolkit — the four support tools
// ──────────────────────────────────────────────

// Tool names exposed to the model.
const (
	ToolDetectCrisis       = "detect_crisis"
	ToolLogMood            = "log_mood"
	ToolGetCrisisResources = "get_crisis_resources"
	ToolGetCopingStrats    = "get_coping_strategies"
)

// Toolkit bundles the detector, ledger, and catalogs behind the four
// callable tools. One Toolkit can serve many sessions: the session ID is
// bound when the tools are built, so each conversation gets its own
// ledger namespace.
type Toolkit struct {
	Detector   *CrisisDetector
	Ledger     *MoodLedger
	Resources  *ResourceCatalog
	Strategies *StrategyCatalog
}

// NewToolkit creates a toolkit with default detector and catalogs over
// the given store.
func NewToolkit(store Store) *Toolkit {
	return &Toolkit{
		Detector:   NewCrisisDetector(),
		Ledger:     NewMoodLedger(store),
		Resources:  NewResourceCatalog(),
		Strategies: NewStrategyCatalog(),
	}
}

// DetectCrisisTool returns the crisis detection tool.
func (k *Toolkit) DetectCrisisTool() *Tool {
	return &Tool{
		Name:        ToolDetectCrisis,
		Description: "Analyzes text for crisis indicators and returns a risk assessment with severity level and matched keywords.",
		Parameters: []ToolParam{
			{Name: "text", Type: "string", Description: "User message to analyze", Required: true},
		},
		Handler: func(ctx *ToolContext, args map[string]interface{}) (interface{}, error) {
			text, err := stringArg(args, "text")
			if err != nil {
				return nil, err
			}
			return k.Detector.Assess(text), nil
		},
	}
}

// LogMoodTool returns the mood logging tool bound to a session.
func (k *Toolkit) LogMoodTool(sessionID string) *Tool {
	return &Tool{
		Name:        ToolLogMood,
		Description: "Logs a mood entry with score, emotions, and optional notes; returns the entry, the current trend, and the total entry count.",
		Parameters: []ToolParam{
			{Name: "mood_score", Type: "integer", Description: "Numeric mood score (1-10, where 1=very bad, 10=excellent)", Required: true},
			{Name: "emotions", Type: "array", Description: "Emotion words, e.g. [\"anxious\", \"hopeful\"]", Required: true},
			{Name: "notes", Type: "string", Description: "Optional additional context", Required: false, Default: ""},
		},
		Handler: func(ctx *ToolContext, args map[string]interface{}) (interface{}, error) {
			score, err := intArg(args, "mood_score")
			if err != nil {
				return nil, err
			}
			emotions, err := stringSliceArg(args, "emotions")
			if err != nil {
				return nil, err
			}
			notes, err := stringArg(args, "notes")
			if err != nil {
				return nil, err
			}
			return k.Ledger.Log(sessionID, score, emotions, notes)
		},
	}
}

// CrisisResourcesTool returns the resource lookup tool.
func (k *Toolkit) CrisisResourcesTool() *Tool {
	return &Tool{
		Name:        ToolGetCrisisResources,
		Description: "Retrieves crisis hotlines and contact information for a location. Unrecognized locations fall back to US plus international contacts.",
		Parameters: []ToolParam{
			{Name: "location", Type: "string", Description: "Geographic location (us, international, ...)", Required: false, Default: "us"},
		},
		Handler: func(ctx *ToolContext, args map[string]interface{}) (interface{}, error) {
			location, err := stringArg(args, "location")
			if err != nil {
				return nil, err
			}
			return k.Resources.Lookup(location), nil
		},
	}
}

// CopingStrategiesTool returns the coping strategy lookup tool.
func (k *Toolkit) CopingStrategiesTool() *Tool {
	return &Tool{
		Name:        ToolGetCopingStrats,
		Description: "Returns evidence-based coping strategies for a situation (anxiety, panic, depression, stress, overwhelm).",
		Parameters: []ToolParam{
			{Name: "situation", Type: "string", Description: "The situation to address", Required: true,
				Enum: []string{"anxiety", "panic", "depression", "stress", "overwhelm"}},
		},
		Handler: func(ctx *ToolContext, args map[string]interface{}) (interface{}, error) {
			situation, err := stringArg(args, "situation")
			if err != nil {
				return nil, err
			}
			return k.Strategies.Lookup(situation), nil
		},
	}
}

// RegisterAll registers all four tools for the given session.
func (k *Toolkit) RegisterAll(reg *ToolRegistry, sessionID string) {
	reg.Register(k.DetectCrisisTool())
	reg.Register(k.LogMoodTool(sessionID))
	reg.Register(k.CrisisResourcesTool())
	reg.Register(k.CopingStrategiesTool())
}

// ─── Argument coercion ───
//
// Arguments arrive from JSON, so numbers are float64 and arrays are
// []interface{}. Coercion failures are tool-boundary errors; the domain
// operations themselves never fail on their documented input space.

func stringArg(args map[string]interface{}, name string) (string, error) {
	v, ok := args[name]
	if !ok {
		return "", fmt.Errorf("missing argument %q", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string, got %T", name, v)
	}
	return s, nil
}

func intArg(args map[string]interface{}, name string) (int, error) {
	v, ok := args[name]
	if !ok {
		return 0, fmt.Errorf("missing argument %q", name)
	}
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("argument %q must be a number, got %T", name, v)
	}
}

func stringSliceArg(args map[string]interface{}, name string) ([]string, error) {
	v, ok := args[name]
	if !ok {
		return nil, fmt.Errorf("missing argument %q", name)
	}
	switch list := v.(type) {
	case []string:
		return list, nil
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("argument %q must contain only strings, got %T", name, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("argument %q must be an array, got %T", name, v)
	}
}
