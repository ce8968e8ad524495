package mindful

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ──────────────────────────────────────────────
// Session — per-conversation state
// ──────────────────────────────────────────────

const defaultMaxHistory = 40

// SessionMessage is one stored conversation message.
type SessionMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session tracks one conversation: its ID and the message history. The
// history lives in the Store so sessions survive process restarts when
// backed by Redis, and the same ID keys the mood ledger namespace.
type Session struct {
	ID         string
	MaxHistory int

	store      Store
	middleware MiddlewarePipeline
	compressor *HistoryCompressor
}

// NewSession creates a session with a generated ID.
func NewSession(store Store) *Session {
	return NewSessionWithID(store, uuid.NewString())
}

// NewSessionWithID opens a session with a known ID, e.g. to resume a
// prior conversation.
func NewSessionWithID(store Store, id string) *Session {
	return &Session{ID: id, MaxHistory: defaultMaxHistory, store: store}
}

func (s *Session) namespace() string {
	return "session:" + s.ID
}

// AddMessage appends a message and trims the history to MaxHistory.
func (s *Session) AddMessage(role, content string) error {
	msg := SessionMessage{Role: role, Content: content, Timestamp: time.Now().UTC()}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal session message: %w", err)
	}
	if err := s.store.Append(s.namespace(), "messages", string(data)); err != nil {
		return err
	}
	max := s.MaxHistory
	if max <= 0 {
		max = defaultMaxHistory
	}
	return s.store.TrimList(s.namespace(), "messages", max)
}

// Messages returns the stored history, oldest first.
func (s *Session) Messages() ([]SessionMessage, error) {
	raw, err := s.store.GetList(s.namespace(), "messages", 0, 0)
	if err != nil {
		return nil, err
	}
	out := make([]SessionMessage, 0, len(raw))
	for _, item := range raw {
		var msg SessionMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue // skip corrupt entries rather than losing the session
		}
		out = append(out, msg)
	}
	return out, nil
}

// History returns the stored messages in the role/content shape the
// agent loop consumes.
func (s *Session) History() ([]map[string]interface{}, error) {
	msgs, err := s.Messages()
	if err != nil {
		return nil, err
	}
	out := make([]map[string]interface{}, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, map[string]interface{}{"role": m.Role, "content": m.Content})
	}
	return out, nil
}

// Len returns the number of stored messages.
func (s *Session) Len() (int, error) {
	return s.store.ListLength(s.namespace(), "messages")
}

// Clear drops the conversation history. The mood ledger is separate and
// survives a cleared transcript.
func (s *Session) Clear() error {
	return s.store.ClearList(s.namespace(), "messages")
}

// Use appends a middleware to the session's Converse pipeline.
func (s *Session) Use(mw MiddlewareFunc) {
	s.middleware.Use(mw)
}

// SetCompressor enables history compression for long conversations.
func (s *Session) SetCompressor(c *HistoryCompressor) {
	s.compressor = c
}

// Converse runs one turn of the agent against this session: history in,
// both sides of the exchange recorded after the agent answers. Registered
// middleware wraps the turn.
func (s *Session) Converse(agent *Agent, userInput string) (*AgentLoopResult, error) {
	history, err := s.History()
	if err != nil {
		return nil, err
	}
	if s.compressor != nil {
		history = s.compressor.Compress(s, history)
	}

	ctx := &MiddlewareContext{
		Session: s,
		Agent:   agent,
		Input:   userInput,
		Extra:   make(map[string]interface{}),
	}

	var recordErr error
	s.middleware.Execute(ctx, func() {
		ctx.Handled = true
		ctx.Result = agent.RespondWithExtra(ctx.Input, history, "", map[string]interface{}{
			"session_id": s.ID,
		})

		if err := s.AddMessage("user", ctx.Input); err != nil {
			recordErr = err
			return
		}
		if ctx.Result.FinalOutput != "" {
			recordErr = s.AddMessage("assistant", ctx.Result.FinalOutput)
		}
	})
	if recordErr != nil {
		return ctx.Result, recordErr
	}
	return ctx.Result, nil
}
