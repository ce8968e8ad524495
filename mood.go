package mindful

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// ──────────────────────────────────────────────
// Mood Ledger — append-only, session-scoped
// ──────────────────────────────────────────────

// TrendStatus marks whether a trend could be computed.
type TrendStatus string

const (
	TrendInsufficientData TrendStatus = "insufficient_data"
	TrendCalculated       TrendStatus = "calculated"
)

// TrendDirection summarizes recent movement of mood scores.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// trendWindow is the maximum number of newest entries a trend considers.
const trendWindow = 7

// MoodEntry is one logged mood observation. Entries are never mutated or
// deleted after creation; ledger order is chronological order.
type MoodEntry struct {
	Timestamp time.Time `json:"timestamp"`
	MoodScore int       `json:"mood_score"`
	Emotions  []string  `json:"emotions"`
	Notes     string    `json:"notes"`
}

// MoodTrend is recomputed from the ledger tail on every log call and
// never stored. When Status is insufficient_data no other field is set.
type MoodTrend struct {
	Status          TrendStatus    `json:"status"`
	AverageScore    float64        `json:"average_score,omitempty"`
	Direction       TrendDirection `json:"direction,omitempty"`
	EntriesAnalyzed int            `json:"entries_analyzed,omitempty"`
}

// MoodLogResult is returned by Log.
type MoodLogResult struct {
	Entry        MoodEntry `json:"entry"`
	Trend        MoodTrend `json:"trend"`
	TotalEntries int       `json:"total_entries"`
}

// MoodLedger records mood entries per session in an injected Store.
//
// Every operation takes an explicit session ID, so two sessions never
// observe each other's entries. Sharing one fixed session ID across all
// callers reproduces a single shared process-wide ledger.
//
// MoodScore is stored as given. The expected range is 1-10 but the ledger
// neither rejects nor clamps out-of-range values.
type MoodLedger struct {
	store Store
}

// NewMoodLedger creates a ledger over the given store.
func NewMoodLedger(store Store) *MoodLedger {
	return &MoodLedger{store: store}
}

func moodNamespace(sessionID string) string {
	return "mood:" + sessionID
}

// Log appends an entry with the current timestamp and returns it together
// with the freshly computed trend and the session's total entry count.
func (l *MoodLedger) Log(sessionID string, moodScore int, emotions []string, notes string) (*MoodLogResult, error) {
	if emotions == nil {
		emotions = []string{}
	}
	entry := MoodEntry{
		Timestamp: time.Now(),
		MoodScore: moodScore,
		Emotions:  emotions,
		Notes:     notes,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("marshal mood entry: %w", err)
	}

	ns := moodNamespace(sessionID)
	if err := l.store.Append(ns, "entries", string(data)); err != nil {
		return nil, fmt.Errorf("append mood entry: %w", err)
	}

	total, err := l.store.ListLength(ns, "entries")
	if err != nil {
		return nil, err
	}

	trend, err := l.Trend(sessionID)
	if err != nil {
		return nil, err
	}

	return &MoodLogResult{Entry: entry, Trend: *trend, TotalEntries: total}, nil
}

// Len returns the number of entries logged for a session.
func (l *MoodLedger) Len(sessionID string) (int, error) {
	return l.store.ListLength(moodNamespace(sessionID), "entries")
}

// Entries returns all entries for a session in chronological order.
func (l *MoodLedger) Entries(sessionID string) ([]MoodEntry, error) {
	raw, err := l.store.GetList(moodNamespace(sessionID), "entries", 0, 0)
	if err != nil {
		return nil, err
	}
	entries := make([]MoodEntry, 0, len(raw))
	for _, r := range raw {
		var e MoodEntry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			return nil, fmt.Errorf("decode mood entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Trend computes the mood trend over at most the newest trendWindow
// entries of the session's ledger.
func (l *MoodLedger) Trend(sessionID string) (*MoodTrend, error) {
	ns := moodNamespace(sessionID)
	total, err := l.store.ListLength(ns, "entries")
	if err != nil {
		return nil, err
	}
	if total < 2 {
		return &MoodTrend{Status: TrendInsufficientData}, nil
	}

	offset := 0
	if total > trendWindow {
		offset = total - trendWindow
	}
	raw, err := l.store.GetList(ns, "entries", trendWindow, offset)
	if err != nil {
		return nil, err
	}

	scores := make([]int, 0, len(raw))
	for _, r := range raw {
		var e MoodEntry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			return nil, fmt.Errorf("decode mood entry: %w", err)
		}
		scores = append(scores, e.MoodScore)
	}

	return computeTrend(scores), nil
}

// computeTrend derives the trend from the windowed scores.
//
// With >=3 scores: the mean of the last 3 is compared against the mean of
// everything before them (or the single oldest score when the window holds
// exactly 3). A gap above 1 point in either direction moves the trend off
// stable. With exactly 2 scores the direction is stable unconditionally.
func computeTrend(scores []int) *MoodTrend {
	if len(scores) < 2 {
		return &MoodTrend{Status: TrendInsufficientData}
	}

	sum := 0
	for _, s := range scores {
		sum += s
	}
	avg := math.Round(float64(sum)/float64(len(scores))*100) / 100

	direction := TrendStable
	if len(scores) >= 3 {
		recent := mean(scores[len(scores)-3:])
		var older float64
		if len(scores) > 3 {
			older = mean(scores[:len(scores)-3])
		} else {
			older = float64(scores[0])
		}
		switch {
		case recent > older+1:
			direction = TrendImproving
		case recent < older-1:
			direction = TrendDeclining
		}
	}

	return &MoodTrend{
		Status:          TrendCalculated,
		AverageScore:    avg,
		Direction:       direction,
		EntriesAnalyzed: len(scores),
	}
}

func mean(scores []int) float64 {
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / float64(len(scores))
}
