package mindful

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

// ──────────────────────────────────────────────
// Gemini — hosted model adapter
// ──────────────────────────────────────────────

// GeminiLLM adapts the Gemini API to the LLMFunc boundary the agent
// loop consumes.
type GeminiLLM struct {
	client *genai.Client
	model  string
}

// NewGeminiLLM creates a Gemini-backed model function.
func NewGeminiLLM(ctx context.Context, apiKey, model string) (*GeminiLLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiLLM{client: client, model: model}, nil
}

// Model returns the configured model name.
func (g *GeminiLLM) Model() string { return g.model }

// Func returns the LLMFunc for agent loops. Each call uses a background
// context; use FuncCtx to propagate cancellation.
func (g *GeminiLLM) Func() LLMFunc {
	return g.FuncCtx(context.Background())
}

// FuncCtx returns an LLMFunc bound to the given context.
func (g *GeminiLLM) FuncCtx(ctx context.Context) LLMFunc {
	return func(messages []map[string]interface{}, tools []map[string]interface{}) (*LLMMessage, error) {
		system, contents := geminiContents(messages)

		config := &genai.GenerateContentConfig{}
		if system != "" {
			config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
		}
		if len(tools) > 0 {
			config.Tools = geminiTools(tools)
		}

		resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
		if err != nil {
			return nil, fmt.Errorf("gemini generate: %w", err)
		}
		return geminiToLLMMessage(resp), nil
	}
}

// ─── Message conversion ───

// geminiContents converts loop messages to Gemini contents. System
// messages are concatenated into the system instruction; tool results
// become function responses, matched back to their call by ID.
func geminiContents(messages []map[string]interface{}) (string, []*genai.Content) {
	var systemParts []string
	var contents []*genai.Content
	callNames := make(map[string]string) // tool_call_id -> function name

	for _, m := range messages {
		role, _ := m["role"].(string)
		content, _ := m["content"].(string)

		switch role {
		case "system":
			if content != "" {
				systemParts = append(systemParts, content)
			}

		case "user":
			contents = append(contents, genai.NewContentFromText(content, genai.RoleUser))

		case "assistant":
			var parts []*genai.Part
			if content != "" {
				parts = append(parts, genai.NewPartFromText(content))
			}
			if rawCalls, ok := m["tool_calls"].([]map[string]interface{}); ok {
				for _, call := range rawCalls {
					id, _ := call["id"].(string)
					fn, _ := call["function"].(map[string]string)
					name := fn["name"]
					callNames[id] = name

					args := map[string]interface{}{}
					json.Unmarshal([]byte(fn["arguments"]), &args)
					parts = append(parts, genai.NewPartFromFunctionCall(name, args))
				}
			}
			if len(parts) > 0 {
				contents = append(contents, genai.NewContentFromParts(parts, genai.RoleModel))
			}

		case "tool":
			callID, _ := m["tool_call_id"].(string)
			name := callNames[callID]
			response := map[string]interface{}{}
			if err := json.Unmarshal([]byte(content), &response); err != nil {
				response = map[string]interface{}{"result": content}
			}
			part := genai.NewPartFromFunctionResponse(name, response)
			contents = append(contents, genai.NewContentFromParts([]*genai.Part{part}, genai.RoleUser))
		}
	}

	return strings.Join(systemParts, "\n\n"), contents
}

// geminiToLLMMessage converts a Gemini response to the loop contract.
func geminiToLLMMessage(resp *genai.GenerateContentResponse) *LLMMessage {
	msg := &LLMMessage{}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return msg
	}

	var text []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			text = append(text, part.Text)
		}
		if part.FunctionCall != nil {
			args, _ := json.Marshal(part.FunctionCall.Args)
			tc := ToolCallInput{ID: part.FunctionCall.ID}
			if tc.ID == "" {
				tc.ID = uuid.NewString()
			}
			tc.Function.Name = part.FunctionCall.Name
			tc.Function.Arguments = string(args)
			msg.ToolCalls = append(msg.ToolCalls, tc)
		}
	}
	msg.Content = strings.Join(text, "")
	return msg
}

// ─── Tool schema conversion ───

// geminiTools converts OpenAI-format tool schemas to Gemini function
// declarations.
func geminiTools(tools []map[string]interface{}) []*genai.Tool {
	var decls []*genai.FunctionDeclaration
	for _, t := range tools {
		fn, ok := t["function"].(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := fn["name"].(string)
		description, _ := fn["description"].(string)

		decl := &genai.FunctionDeclaration{
			Name:        name,
			Description: description,
		}
		if params, ok := fn["parameters"].(map[string]interface{}); ok {
			decl.Parameters = geminiSchema(params)
		}
		decls = append(decls, decl)
	}
	if len(decls) == 0 {
		return nil
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

func geminiSchema(schema map[string]interface{}) *genai.Schema {
	out := &genai.Schema{}
	if t, ok := schema["type"].(string); ok {
		out.Type = geminiType(t)
	}
	if d, ok := schema["description"].(string); ok {
		out.Description = d
	}
	if enum, ok := schema["enum"].([]string); ok {
		out.Enum = enum
	}
	if props, ok := schema["properties"].(map[string]interface{}); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if p, ok := raw.(map[string]interface{}); ok {
				out.Properties[name] = geminiSchema(p)
			}
		}
	}
	if required, ok := schema["required"].([]string); ok {
		out.Required = required
	}
	return out
}

func geminiType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}
