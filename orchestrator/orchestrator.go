// Package orchestrator coordinates a roster of research agents through the
// research lifecycle: brainstorming, retrieval-backed research, structured
// discussion, satisfaction evaluation, self-improvement, and document
// synthesis. All phases drive agents strictly sequentially in roster order.
package orchestrator

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Eeman1113/Hivemind/agent"
	"github.com/Eeman1113/Hivemind/internal/metrics"
	"github.com/Eeman1113/Hivemind/retrieval"
)

// Phase identifies which lifecycle phase produced a transcript entry.
type Phase string

const (
	PhaseBrainstorm Phase = "brainstorm"
	PhaseResearch   Phase = "research"
	PhaseDiscussion Phase = "discussion"
	PhaseEvaluation Phase = "evaluation"
)

var (
	// ErrEmptyRoster is returned by phases that need at least one agent.
	ErrEmptyRoster = errors.New("orchestrator: no agents in roster")
	// ErrNoTopic is returned by phases that need a research topic.
	ErrNoTopic = errors.New("orchestrator: research topic not set")
	// ErrNoRounds is returned when a phase is asked to run zero rounds.
	ErrNoRounds = errors.New("orchestrator: rounds must be positive")
	// ErrDuplicateAgent is returned when an agent name is already rostered.
	ErrDuplicateAgent = errors.New("orchestrator: agent name already in roster")
)

// TranscriptEntry is one immutable record in the shared session transcript.
// Round is nil for phases that have no round structure.
type TranscriptEntry struct {
	ID        uuid.UUID `json:"id"`
	Round     *int      `json:"round,omitempty"`
	AgentName string    `json:"agent"`
	Phase     Phase     `json:"type"`
	Topic     string    `json:"topic,omitempty"`
	Query     string    `json:"query,omitempty"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Config tunes the coordination engine.
type Config struct {
	// TargetSatisfaction is the mean score (out of 10) that counts as
	// consensus.
	TargetSatisfaction float64
	// MaxSearchResults caps retrieval results per query.
	MaxSearchResults int
}

// DefaultConfig returns the standard engine tuning.
func DefaultConfig() Config {
	return Config{TargetSatisfaction: 8, MaxSearchResults: 3}
}

// Orchestrator coordinates the agent roster through research sessions.
// It is not safe for concurrent use.
type Orchestrator struct {
	cfg       Config
	searcher  retrieval.Searcher
	collector *metrics.Collector
	logger    *zap.Logger

	sessionID    uuid.UUID
	createdAt    time.Time
	topic        string
	roster       []*agent.ResearchAgent
	transcript   []TranscriptEntry
	satisfaction map[string]int
}

// New creates a coordination engine. searcher may be nil if the research
// phase is never used; collector may be nil to disable metrics.
func New(cfg Config, searcher retrieval.Searcher, collector *metrics.Collector, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TargetSatisfaction <= 0 {
		cfg.TargetSatisfaction = 8
	}
	if cfg.MaxSearchResults <= 0 {
		cfg.MaxSearchResults = 3
	}
	return &Orchestrator{
		cfg:          cfg,
		searcher:     searcher,
		collector:    collector,
		logger:       logger.With(zap.String("component", "orchestrator")),
		sessionID:    uuid.New(),
		createdAt:    time.Now(),
		satisfaction: make(map[string]int),
	}
}

// SessionID returns the unique identifier of this session.
func (o *Orchestrator) SessionID() uuid.UUID { return o.sessionID }

// AddAgent rosters an agent. Names must be unique; the new agent starts at
// a neutral satisfaction score.
func (o *Orchestrator) AddAgent(a *agent.ResearchAgent) error {
	for _, existing := range o.roster {
		if existing.Name() == a.Name() {
			return fmt.Errorf("%w: %q", ErrDuplicateAgent, a.Name())
		}
	}
	o.roster = append(o.roster, a)
	o.satisfaction[a.Name()] = 5
	o.logger.Info("agent rostered",
		zap.String("agent", a.Name()),
		zap.String("specialty", a.Specialty()),
	)
	return nil
}

// Agents returns the roster in rostering order.
func (o *Orchestrator) Agents() []*agent.ResearchAgent {
	return append([]*agent.ResearchAgent{}, o.roster...)
}

// SetTopic sets the research topic for the session.
func (o *Orchestrator) SetTopic(topic string) {
	o.topic = topic
	o.logger.Info("research topic set", zap.String("topic", topic))
}

// Topic returns the current research topic.
func (o *Orchestrator) Topic() string { return o.topic }

// Transcript returns a copy of the shared session transcript in append
// order.
func (o *Orchestrator) Transcript() []TranscriptEntry {
	return append([]TranscriptEntry{}, o.transcript...)
}

// SatisfactionScores returns a copy of the latest per-agent scores.
func (o *Orchestrator) SatisfactionScores() map[string]int {
	out := make(map[string]int, len(o.satisfaction))
	for k, v := range o.satisfaction {
		out[k] = v
	}
	return out
}

func (o *Orchestrator) appendEntry(e TranscriptEntry) {
	e.ID = uuid.New()
	e.Timestamp = time.Now()
	o.transcript = append(o.transcript, e)
}

func (o *Orchestrator) recordPhase(phase string, start time.Time, err error) {
	if o.collector == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	o.collector.RecordPhase(phase, status, time.Since(start))
}

// skipTurn logs and counts an agent turn dropped because its gateway call
// failed. round 0 means the phase has no round structure.
func (o *Orchestrator) skipTurn(phase Phase, agentName string, round int, err error) {
	fields := []zap.Field{
		zap.String("phase", string(phase)),
		zap.String("agent", agentName),
		zap.Error(err),
	}
	if round > 0 {
		fields = append(fields, zap.Int("round", round))
	}
	o.logger.Warn("agent turn failed, skipping", fields...)
	if o.collector != nil {
		o.collector.RecordTurnFailure(string(phase))
	}
}

func (o *Orchestrator) requireRosterAndTopic() error {
	if len(o.roster) == 0 {
		return ErrEmptyRoster
	}
	if o.topic == "" {
		return ErrNoTopic
	}
	return nil
}

func intPtr(v int) *int { return &v }
