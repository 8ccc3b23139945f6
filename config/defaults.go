// Default values for every configuration section.
package config

import "time"

// DefaultConfig returns the default configuration, including the default
// research team roster.
func DefaultConfig() *Config {
	return &Config{
		LLM:       DefaultLLMConfig(),
		Research:  DefaultResearchConfig(),
		Team:      DefaultTeam(),
		Retrieval: DefaultRetrievalConfig(),
		Store:     DefaultStoreConfig(),
		Output:    DefaultOutputConfig(),
		Log:       DefaultLogConfig(),
		Metrics:   DefaultMetricsConfig(),
	}
}

// DefaultLLMConfig returns the default gateway configuration.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Host:        "http://localhost:11434",
		Model:       "llama3.1",
		Temperature: 0.7,
		Timeout:     2 * time.Minute,
		MaxRetries:  3,
	}
}

// DefaultResearchConfig returns the default engine configuration.
func DefaultResearchConfig() ResearchConfig {
	return ResearchConfig{
		TargetSatisfaction:   8,
		BrainstormRounds:     3,
		DiscussionRounds:     2,
		MaxImprovementCycles: 2,
	}
}

// DefaultTeam returns the default five-agent research roster.
func DefaultTeam() []AgentSpec {
	return []AgentSpec{
		{Name: "Dr. Neural", Specialty: "Neural Networks and Deep Learning", Model: "llama3.1"},
		{Name: "Dr. Ethics", Specialty: "AI Ethics and Safety", Model: "llama3.1"},
		{Name: "Dr. NLP", Specialty: "Natural Language Processing", Model: "llama3.1"},
		{Name: "Dr. Vision", Specialty: "Computer Vision and Multimodal AI", Model: "llama3.1"},
		{Name: "Dr. RL", Specialty: "Reinforcement Learning", Model: "llama3.1"},
	}
}

// DefaultRetrievalConfig returns the default search configuration.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		MaxResults: 5,
		Timeout:    30 * time.Second,
		Cache: CacheConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			DB:      0,
			TTL:     time.Hour,
		},
	}
}

// DefaultStoreConfig returns the default session archive configuration.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Enabled: false,
		Path:    "hivemind.db",
	}
}

// DefaultOutputConfig returns the default export destinations.
func DefaultOutputConfig() OutputConfig {
	return OutputConfig{
		DocumentPath: "research_paper.md",
		SessionPath:  "research_session.json",
	}
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:       "info",
		Format:      "json",
		OutputPaths: []string{"stdout"},
	}
}

// DefaultMetricsConfig returns the default metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled: false,
		Addr:    ":9091",
	}
}
