package chat

import (
	"fmt"
	"slices"

	"docqa/internal/config"
	"docqa/internal/models"
)

// HistoryPolicy decides how much of the conversation is carried into the
// next question.
type HistoryPolicy string

const (
	// RetainLastTurn keeps only the most recent turn. Prompt size stays flat.
	RetainLastTurn HistoryPolicy = config.HistoryLastTurn
	// RetainAllTurns keeps every turn. Prompt size grows with each question.
	RetainAllTurns HistoryPolicy = config.HistoryAllTurns
)

func ParseHistoryPolicy(s string) (HistoryPolicy, error) {
	switch p := HistoryPolicy(s); p {
	case RetainLastTurn, RetainAllTurns:
		return p, nil
	case "":
		return RetainLastTurn, nil
	default:
		return "", fmt.Errorf("unknown history policy %q (want %s or %s)", s, RetainLastTurn, RetainAllTurns)
	}
}

type History struct {
	policy HistoryPolicy
	turns  []models.Turn
}

func NewHistory(policy HistoryPolicy) *History {
	return &History{policy: policy}
}

// Record adds a completed turn according to the policy. Under RetainLastTurn
// the history is replaced, not appended to.
func (h *History) Record(turn models.Turn) {
	if h.policy == RetainAllTurns {
		h.turns = append(h.turns, turn)
		return
	}
	h.turns = []models.Turn{turn}
}

// Turns returns a copy of the recorded turns, oldest first.
func (h *History) Turns() []models.Turn {
	return slices.Clone(h.turns)
}
