package mindful

import (
	"fmt"
	"log"
	"strconv"
	"unicode/utf8"
)

// ──────────────────────────────────────────────
// History Compressor — long-conversation summarization
// ──────────────────────────────────────────────

// SummarizeFn calls the model to summarize older conversation messages.
type SummarizeFn func(messages []map[string]interface{}) (string, error)

// EstimateTokensFn estimates the token count of conversation history.
// The default is rune count / 3; callers can plug a real tokenizer.
type EstimateTokensFn func(history []map[string]interface{}) int

// CompressorConfig controls history compression behavior.
type CompressorConfig struct {
	WindowSize       int              // recent messages to keep intact, default 6
	TokenThreshold   int              // compress only when estimated tokens exceed this, default 6000
	SummaryVersion   string           // cache version tag, change to invalidate, default "v1"
	EstimateTokensFn EstimateTokensFn // pluggable token estimator, nil = default
}

// DefaultCompressorConfig returns production defaults.
func DefaultCompressorConfig() CompressorConfig {
	return CompressorConfig{
		WindowSize:     6,
		TokenThreshold: 6000,
		SummaryVersion: "v1",
	}
}

// HistoryCompressor replaces the older part of a long conversation with
// a model-written summary so support sessions can run for hours without
// outgrowing the prompt. Summaries are cached in the session's store and
// reused until more messages age out of the recent window.
type HistoryCompressor struct {
	config      CompressorConfig
	summarizeFn SummarizeFn
}

// NewHistoryCompressor creates a compressor. SummarizeFn is required.
func NewHistoryCompressor(fn SummarizeFn, config ...CompressorConfig) *HistoryCompressor {
	cfg := DefaultCompressorConfig()
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = 6
	}
	if cfg.SummaryVersion == "" {
		cfg.SummaryVersion = "v1"
	}
	return &HistoryCompressor{config: cfg, summarizeFn: fn}
}

// Compress returns the history to send to the model. Compression is
// best-effort: on any failure the original history is returned.
func (c *HistoryCompressor) Compress(s *Session, history []map[string]interface{}) []map[string]interface{} {
	if len(history) <= c.config.WindowSize {
		return history
	}
	if c.estimateTokens(history) < c.config.TokenThreshold {
		return history
	}

	older := history[:len(history)-c.config.WindowSize]
	recent := history[len(history)-c.config.WindowSize:]

	summaryKey := "summary:" + c.config.SummaryVersion
	coveredKey := summaryKey + ":covered"

	cached, _ := s.store.Get(s.namespace(), summaryKey)
	coveredRaw, _ := s.store.Get(s.namespace(), coveredKey)
	covered, _ := strconv.Atoi(coveredRaw)
	if cached != "" && covered == len(older) {
		return buildCompressedHistory(cached, recent)
	}

	summary, err := c.summarizeFn(older)
	if err != nil || summary == "" {
		log.Printf("[HistoryCompressor] Summarization failed, keeping full history: %v", err)
		return history
	}

	s.store.Set(s.namespace(), summaryKey, summary)
	s.store.Set(s.namespace(), coveredKey, strconv.Itoa(len(older)))
	log.Printf("[HistoryCompressor] Compressed %d messages | session=%s", len(older), s.ID)

	return buildCompressedHistory(summary, recent)
}

func (c *HistoryCompressor) estimateTokens(history []map[string]interface{}) int {
	if c.config.EstimateTokensFn != nil {
		return c.config.EstimateTokensFn(history)
	}
	runes := 0
	for _, m := range history {
		if content, ok := m["content"].(string); ok {
			runes += utf8.RuneCountInString(content)
		}
	}
	return runes / 3
}

func buildCompressedHistory(summary string, recent []map[string]interface{}) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(recent)+1)
	out = append(out, map[string]interface{}{
		"role":    "system",
		"content": fmt.Sprintf("Summary of the earlier conversation:\n%s", summary),
	})
	return append(out, recent...)
}
