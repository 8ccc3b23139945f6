// Package hivemind provides a top-level convenience entry point for
// assembling a research team with minimal boilerplate.
//
// Usage:
//
//	import "github.com/Eeman1113/Hivemind"
//
//	engine, err := hivemind.New(
//	    hivemind.WithTopic("Ethical Considerations in Large Language Models"),
//	    hivemind.WithAgent("Dr. Neural", "Neural Networks and Deep Learning"),
//	    hivemind.WithAgent("Dr. Ethics", "AI Ethics and Safety"),
//	)
//
// With no provider option the engine talks to a local Ollama server using
// the default model.
package hivemind

import (
	"go.uber.org/zap"

	"github.com/Eeman1113/Hivemind/agent"
	"github.com/Eeman1113/Hivemind/config"
	"github.com/Eeman1113/Hivemind/llm"
	"github.com/Eeman1113/Hivemind/llm/providers/ollama"
	"github.com/Eeman1113/Hivemind/llm/retry"
	"github.com/Eeman1113/Hivemind/orchestrator"
	"github.com/Eeman1113/Hivemind/retrieval"
)

// Option configures the engine created by New.
type Option func(*builder)

type builder struct {
	topic    string
	agents   []agent.Config
	provider llm.Provider
	searcher retrieval.Searcher
	logger   *zap.Logger
	cfg      orchestrator.Config
	model    string
}

// WithTopic sets the research topic.
func WithTopic(topic string) Option {
	return func(b *builder) { b.topic = topic }
}

// WithAgent rosters an agent by name and specialty using the default model.
func WithAgent(name, specialty string) Option {
	return func(b *builder) {
		b.agents = append(b.agents, agent.Config{Name: name, Specialty: specialty})
	}
}

// WithProvider sets a pre-built model gateway for all agents.
func WithProvider(p llm.Provider) Option {
	return func(b *builder) { b.provider = p }
}

// WithSearcher sets the retrieval backend for the research phase.
func WithSearcher(s retrieval.Searcher) Option {
	return func(b *builder) { b.searcher = s }
}

// WithModel overrides the default model name.
func WithModel(model string) Option {
	return func(b *builder) { b.model = model }
}

// WithLogger sets a custom zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *builder) { b.logger = logger }
}

// WithTargetSatisfaction overrides the consensus threshold.
func WithTargetSatisfaction(target float64) Option {
	return func(b *builder) { b.cfg.TargetSatisfaction = target }
}

// New assembles a coordination engine from the options. Agents share one
// gateway; the default team is used when no agents are given.
func New(opts ...Option) (*orchestrator.Orchestrator, error) {
	defaults := config.DefaultConfig()

	b := &builder{
		cfg:   orchestrator.DefaultConfig(),
		model: defaults.LLM.Model,
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.provider == nil {
		base := ollama.New(ollama.Config{
			Host:         defaults.LLM.Host,
			DefaultModel: b.model,
			Timeout:      defaults.LLM.Timeout,
		}, b.logger)
		b.provider = retry.Wrap(base, nil, b.logger)
	}
	if b.searcher == nil {
		b.searcher = retrieval.NewArxivClient(b.logger)
	}

	engine := orchestrator.New(b.cfg, b.searcher, nil, b.logger)
	if b.topic != "" {
		engine.SetTopic(b.topic)
	}

	specs := b.agents
	if len(specs) == 0 {
		for _, s := range defaults.Team {
			specs = append(specs, agent.Config{Name: s.Name, Specialty: s.Specialty})
		}
	}
	for _, spec := range specs {
		if spec.Model == "" {
			spec.Model = b.model
		}
		if spec.Temperature == 0 {
			spec.Temperature = float32(defaults.LLM.Temperature)
		}
		a := agent.New(spec, b.provider, b.logger)
		if err := engine.AddAgent(a); err != nil {
			return nil, err
		}
	}

	return engine, nil
}
