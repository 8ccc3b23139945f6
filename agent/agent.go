// Package agent implements the self-improving research agent. Each agent
// wraps a persona, a specialty, and a revisable instruction prompt, and
// produces responses through the llm.Provider gateway.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Eeman1113/Hivemind/llm"
	"github.com/Eeman1113/Hivemind/types"
)

// ContextWindow is the fixed sliding window of prior conversation messages
// forwarded to the gateway. The most recent messages are kept; older ones
// are dropped first.
const ContextWindow = 10

// Config describes one research agent.
type Config struct {
	// Name is the agent's persona, unique within a roster.
	Name string
	// Specialty is the agent's area of expertise.
	Specialty string
	// Model selects the gateway backend model.
	Model string
	// Temperature for completions.
	Temperature float32
}

// Exchange is one prompt/response pair in the agent's private history.
// Failed exchanges are recorded too, flagged so downstream consumers can
// exclude them from context.
type Exchange struct {
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
	Failed    bool      `json:"failed,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Note is a free-text research finding.
type Note struct {
	Text      string    `json:"note"`
	Timestamp time.Time `json:"timestamp"`
}

// InstructionRevision is one superseded instruction prompt, kept as an
// audit trail so revisions can be inspected and rolled back.
type InstructionRevision struct {
	Text       string    `json:"text"`
	ReplacedAt time.Time `json:"replaced_at"`
}

// RevisionReport summarizes one self-improvement pass.
type RevisionReport struct {
	AgentName string `json:"agent_name"`
	Revision  int    `json:"revision"`
	OldLength int    `json:"old_length"`
	NewLength int    `json:"new_length"`
}

// Summary is a pure projection of the agent's activity.
type Summary struct {
	Name               string `json:"name"`
	Specialty          string `json:"specialty"`
	Conversations      int    `json:"conversations"`
	ResearchNotes      int    `json:"research_notes"`
	Improvements       int    `json:"improvements"`
	SystemPromptLength int    `json:"system_prompt_length"`
}

// ResearchAgent is an autonomous research agent that can discuss, analyze
// retrieval results, and rewrite its own operating instructions.
//
// ResearchAgent is not safe for concurrent use; the coordination engine
// drives agents strictly sequentially.
type ResearchAgent struct {
	cfg      Config
	provider llm.Provider
	logger   *zap.Logger

	instructions        string
	instructionsHistory []InstructionRevision
	history             []Exchange
	notes               []Note
	revisionCount       int
}

// New creates a research agent with its initial instruction prompt derived
// from name and specialty.
func New(cfg Config, provider llm.Provider, logger *zap.Logger) *ResearchAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResearchAgent{
		cfg:          cfg,
		provider:     provider,
		logger:       logger.With(zap.String("component", "agent"), zap.String("agent", cfg.Name)),
		instructions: initialInstructions(cfg.Name, cfg.Specialty),
	}
}

func initialInstructions(name, specialty string) string {
	return fmt.Sprintf(`You are %s, an expert AI researcher specializing in %s.

Your role in this research team:
- Collaborate with other AI researchers to produce high-quality research papers
- Contribute insights from your specialty area
- Critically evaluate ideas and proposals
- Search for relevant information when needed
- Help structure and write sections of research papers
- Be concise but thorough in your responses

You can improve your own system prompt by analyzing what works and what doesn't.
When suggesting prompt improvements, focus on making yourself more effective at research tasks.

Current specialty: %s
Research approach: Rigorous, evidence-based, collaborative`, name, specialty, specialty)
}

// Name returns the agent's persona name.
func (a *ResearchAgent) Name() string { return a.cfg.Name }

// Specialty returns the agent's area of expertise.
func (a *ResearchAgent) Specialty() string { return a.cfg.Specialty }

// Model returns the agent's backend model selector.
func (a *ResearchAgent) Model() string { return a.cfg.Model }

// Respond builds the effective message sequence (instructions, at most the
// last ContextWindow context messages, then the prompt) and delegates to
// the gateway. The exchange is appended to private history regardless of
// outcome; gateway failures surface as a typed error, never as response
// text.
func (a *ResearchAgent) Respond(ctx context.Context, prompt string, contextMsgs []types.Message) (string, error) {
	messages := make([]types.Message, 0, len(contextMsgs)+2)
	messages = append(messages, types.NewSystemMessage(a.instructions))
	messages = append(messages, types.TailWindow(contextMsgs, ContextWindow)...)
	messages = append(messages, types.NewUserMessage(prompt))

	resp, err := a.provider.Completion(ctx, &llm.ChatRequest{
		Model:       a.cfg.Model,
		Messages:    messages,
		Temperature: a.cfg.Temperature,
	})
	if err != nil {
		a.history = append(a.history, Exchange{
			Prompt:    prompt,
			Failed:    true,
			Timestamp: time.Now(),
		})
		a.logger.Warn("gateway call failed", zap.Error(err))
		return "", fmt.Errorf("agent %q response failed: %w", a.cfg.Name, err)
	}

	text := resp.Message.Content
	a.history = append(a.history, Exchange{
		Prompt:    prompt,
		Response:  text,
		Timestamp: time.Now(),
	})
	return text, nil
}

// ReviseInstructions asks the gateway to rewrite the agent's own
// instruction prompt given recent usage counters and optional feedback.
// The suggestion replaces the instructions verbatim; the superseded prompt
// is appended to the revision history. On gateway failure no state changes.
func (a *ResearchAgent) ReviseInstructions(ctx context.Context, feedback string) (*RevisionReport, error) {
	prompt := a.buildRevisionPrompt(feedback)

	resp, err := a.provider.Completion(ctx, &llm.ChatRequest{
		Model: a.cfg.Model,
		Messages: []types.Message{
			types.NewSystemMessage("You are a meta-AI that improves AI system prompts."),
			types.NewUserMessage(prompt),
		},
		Temperature: a.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("agent %q instruction revision failed: %w", a.cfg.Name, err)
	}

	old := a.instructions
	a.instructionsHistory = append(a.instructionsHistory, InstructionRevision{
		Text:       old,
		ReplacedAt: time.Now(),
	})
	a.instructions = strings.TrimSpace(resp.Message.Content)
	a.revisionCount++

	a.logger.Info("instructions revised",
		zap.Int("revision", a.revisionCount),
		zap.Int("old_length", len(old)),
		zap.Int("new_length", len(a.instructions)),
	)

	return &RevisionReport{
		AgentName: a.cfg.Name,
		Revision:  a.revisionCount,
		OldLength: len(old),
		NewLength: len(a.instructions),
	}, nil
}

func (a *ResearchAgent) buildRevisionPrompt(feedback string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Analyze your current system prompt and suggest an improved version.

Current System Prompt:
%s

Recent Performance Context:
- You've been part of %d discussions
- Specialty: %s
- Improvement iteration: %d
`, a.instructions, len(a.history), a.cfg.Specialty, a.revisionCount)

	if feedback != "" {
		fmt.Fprintf(&b, "\nFeedback received: %s\n", feedback)
	}

	b.WriteString(`
Suggest an improved system prompt that makes you more effective at:
1. Contributing specialized knowledge
2. Collaborating with other agents
3. Critical thinking and analysis
4. Research paper writing

Respond with ONLY the new system prompt, nothing else.`)
	return b.String()
}

// RecordNote appends a research finding.
func (a *ResearchAgent) RecordNote(text string) {
	a.notes = append(a.notes, Note{Text: text, Timestamp: time.Now()})
}

// Notes returns the agent's research notes in recording order.
func (a *ResearchAgent) Notes() []Note { return a.notes }

// History returns the agent's private prompt/response history.
func (a *ResearchAgent) History() []Exchange { return a.history }

// Instructions returns the current operating prompt.
func (a *ResearchAgent) Instructions() string { return a.instructions }

// SetInstructions replaces the operating prompt directly, keeping the old
// value in the revision history. Used for custom personas.
func (a *ResearchAgent) SetInstructions(text string) {
	a.instructionsHistory = append(a.instructionsHistory, InstructionRevision{
		Text:       a.instructions,
		ReplacedAt: time.Now(),
	})
	a.instructions = text
}

// InstructionsHistory returns all superseded instruction prompts.
func (a *ResearchAgent) InstructionsHistory() []InstructionRevision {
	return a.instructionsHistory
}

// RevisionCount returns how many self-improvement passes have run.
func (a *ResearchAgent) RevisionCount() int { return a.revisionCount }

// Summary returns a pure projection of the agent's activity.
func (a *ResearchAgent) Summary() Summary {
	return Summary{
		Name:               a.cfg.Name,
		Specialty:          a.cfg.Specialty,
		Conversations:      len(a.history),
		ResearchNotes:      len(a.notes),
		Improvements:       a.revisionCount,
		SystemPromptLength: len(a.instructions),
	}
}
