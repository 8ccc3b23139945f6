// Package store persists completed research sessions to a SQLite archive.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Eeman1113/Hivemind/orchestrator"
)

// ErrSessionNotFound is returned when no archived session matches.
var ErrSessionNotFound = errors.New("store: session not found")

// SessionRecord is the archived row for one research session. The full
// export is kept as a JSON payload; the indexed columns exist for listing
// and lookup.
type SessionRecord struct {
	ID                uint   `gorm:"primaryKey"`
	SessionID         string `gorm:"uniqueIndex;size:36"`
	Topic             string `gorm:"index"`
	TotalInteractions int
	MeanSatisfaction  float64
	Payload           []byte `gorm:"type:blob"`
	CreatedAt         int64  `gorm:"autoCreateTime"`
}

// Archive stores research sessions in SQLite through GORM.
type Archive struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open opens (or creates) the archive at path and migrates the schema.
// Use ":memory:" for an ephemeral archive.
func Open(path string, logger *zap.Logger) (*Archive, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("store: failed to open archive: %w", err)
	}
	if err := db.AutoMigrate(&SessionRecord{}); err != nil {
		return nil, fmt.Errorf("store: failed to migrate archive: %w", err)
	}
	return &Archive{
		db:     db,
		logger: logger.With(zap.String("component", "session_archive")),
	}, nil
}

// Save archives a session export. Saving the same session again replaces
// the previous record.
func (a *Archive) Save(export *orchestrator.SessionExport) error {
	payload, err := json.Marshal(export)
	if err != nil {
		return fmt.Errorf("store: failed to serialize session: %w", err)
	}

	var mean float64
	if len(export.SatisfactionScores) > 0 {
		var sum int
		for _, s := range export.SatisfactionScores {
			sum += s
		}
		mean = float64(sum) / float64(len(export.SatisfactionScores))
	}

	record := SessionRecord{
		SessionID:         export.SessionID.String(),
		Topic:             export.Topic,
		TotalInteractions: export.TotalInteractions,
		MeanSatisfaction:  mean,
		Payload:           payload,
	}

	err = a.db.Where("session_id = ?", record.SessionID).
		Assign(map[string]any{
			"topic":              record.Topic,
			"total_interactions": record.TotalInteractions,
			"mean_satisfaction":  record.MeanSatisfaction,
			"payload":            record.Payload,
		}).
		FirstOrCreate(&SessionRecord{}, SessionRecord{SessionID: record.SessionID}).Error
	if err != nil {
		return fmt.Errorf("store: failed to save session: %w", err)
	}

	a.logger.Info("session archived",
		zap.String("session_id", record.SessionID),
		zap.String("topic", record.Topic),
	)
	return nil
}

// Load retrieves an archived session export by session ID.
func (a *Archive) Load(sessionID string) (*orchestrator.SessionExport, error) {
	var record SessionRecord
	err := a.db.Where("session_id = ?", sessionID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("store: failed to load session: %w", err)
	}

	var export orchestrator.SessionExport
	if err := json.Unmarshal(record.Payload, &export); err != nil {
		return nil, fmt.Errorf("store: corrupt session payload: %w", err)
	}
	return &export, nil
}

// SessionInfo is a listing row without the payload.
type SessionInfo struct {
	SessionID         string
	Topic             string
	TotalInteractions int
	MeanSatisfaction  float64
}

// List returns the most recently archived sessions, newest first.
func (a *Archive) List(limit int) ([]SessionInfo, error) {
	if limit <= 0 {
		limit = 20
	}
	var records []SessionRecord
	err := a.db.Order("id DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("store: failed to list sessions: %w", err)
	}

	out := make([]SessionInfo, 0, len(records))
	for _, r := range records {
		out = append(out, SessionInfo{
			SessionID:         r.SessionID,
			Topic:             r.Topic,
			TotalInteractions: r.TotalInteractions,
			MeanSatisfaction:  r.MeanSatisfaction,
		})
	}
	return out, nil
}
