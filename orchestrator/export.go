package orchestrator

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Eeman1113/Hivemind/agent"
)

// SessionExport is the serialized form of a complete research session.
type SessionExport struct {
	SessionID          uuid.UUID         `json:"session_id"`
	Topic              string            `json:"topic"`
	Timestamp          time.Time         `json:"timestamp"`
	Agents             []agent.Summary   `json:"agents"`
	DiscussionLog      []TranscriptEntry `json:"discussion_log"`
	SatisfactionScores map[string]int    `json:"satisfaction_scores"`
	TotalInteractions  int               `json:"total_interactions"`
}

// Export snapshots the session: topic, per-agent summaries, the full
// transcript, and the latest satisfaction scores.
func (o *Orchestrator) Export() *SessionExport {
	summaries := make([]agent.Summary, 0, len(o.roster))
	for _, a := range o.roster {
		summaries = append(summaries, a.Summary())
	}
	return &SessionExport{
		SessionID:          o.sessionID,
		Topic:              o.topic,
		Timestamp:          time.Now(),
		Agents:             summaries,
		DiscussionLog:      o.Transcript(),
		SatisfactionScores: o.SatisfactionScores(),
		TotalInteractions:  len(o.transcript),
	}
}

// WriteExport serializes the session snapshot to path as indented JSON.
func (o *Orchestrator) WriteExport(path string) error {
	raw, err := json.MarshalIndent(o.Export(), "", "  ")
	if err != nil {
		return fmt.Errorf("orchestrator: failed to serialize session: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("orchestrator: failed to write session file: %w", err)
	}
	o.logger.Info("session exported", zap.String("path", path))
	return nil
}

// LoadExport reads a session snapshot previously written by WriteExport.
func LoadExport(path string) (*SessionExport, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: failed to read session file: %w", err)
	}
	var export SessionExport
	if err := json.Unmarshal(raw, &export); err != nil {
		return nil, fmt.Errorf("orchestrator: failed to parse session file: %w", err)
	}
	return &export, nil
}
