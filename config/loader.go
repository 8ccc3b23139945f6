// Package config provides unified configuration loading for Hivemind.
// Priority: defaults -> YAML file -> environment variables.
//
// Usage:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("hivemind.yaml").
//	    WithEnvPrefix("HIVEMIND").
//	    Load()
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete Hivemind configuration.
type Config struct {
	// LLM configures the model gateway.
	LLM LLMConfig `yaml:"llm" env:"LLM"`

	// Research configures the coordination engine.
	Research ResearchConfig `yaml:"research" env:"RESEARCH"`

	// Team is the default agent roster.
	Team []AgentSpec `yaml:"team" env:"-"`

	// Retrieval configures the search backend and its cache.
	Retrieval RetrievalConfig `yaml:"retrieval" env:"RETRIEVAL"`

	// Store configures the optional session archive.
	Store StoreConfig `yaml:"store" env:"STORE"`

	// Output configures document and session export paths.
	Output OutputConfig `yaml:"output" env:"OUTPUT"`

	// Log configures logging.
	Log LogConfig `yaml:"log" env:"LOG"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics" env:"METRICS"`
}

// LLMConfig configures the model gateway.
type LLMConfig struct {
	// Host is the Ollama server URL.
	Host string `yaml:"host" env:"HOST"`
	// Model is the default model for all agents.
	Model string `yaml:"model" env:"MODEL"`
	// Temperature for completions.
	Temperature float64 `yaml:"temperature" env:"TEMPERATURE"`
	// Timeout per gateway call.
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// MaxRetries for retryable gateway errors.
	MaxRetries int `yaml:"max_retries" env:"MAX_RETRIES"`
	// RequestsPerSecond rate-limits gateway calls (0 disables).
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"REQUESTS_PER_SECOND"`
}

// ResearchConfig configures the coordination engine.
type ResearchConfig struct {
	// TargetSatisfaction is the consensus threshold on the 1-10 scale.
	TargetSatisfaction int `yaml:"target_satisfaction" env:"TARGET_SATISFACTION"`
	// BrainstormRounds is the default number of brainstorm rounds.
	BrainstormRounds int `yaml:"brainstorm_rounds" env:"BRAINSTORM_ROUNDS"`
	// DiscussionRounds is the default number of discussion rounds.
	DiscussionRounds int `yaml:"discussion_rounds" env:"DISCUSSION_ROUNDS"`
	// MaxImprovementCycles bounds the improve/re-evaluate loop.
	MaxImprovementCycles int `yaml:"max_improvement_cycles" env:"MAX_IMPROVEMENT_CYCLES"`
}

// AgentSpec describes one roster member.
type AgentSpec struct {
	Name      string `yaml:"name"`
	Specialty string `yaml:"specialty"`
	Model     string `yaml:"model"`
}

// RetrievalConfig configures search and its cache.
type RetrievalConfig struct {
	// MaxResults per query.
	MaxResults int `yaml:"max_results" env:"MAX_RESULTS"`
	// Timeout per search call.
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// Cache configures the Redis read-through cache.
	Cache CacheConfig `yaml:"cache" env:"CACHE"`
}

// CacheConfig configures the Redis retrieval cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" env:"ENABLED"`
	Addr    string        `yaml:"addr" env:"ADDR"`
	DB      int           `yaml:"db" env:"DB"`
	TTL     time.Duration `yaml:"ttl" env:"TTL"`
}

// StoreConfig configures the optional SQLite session archive.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED"`
	Path    string `yaml:"path" env:"PATH"`
}

// OutputConfig configures export destinations.
type OutputConfig struct {
	// DocumentPath is where the rendered document is written.
	DocumentPath string `yaml:"document_path" env:"DOCUMENT_PATH"`
	// SessionPath is where the session export JSON is written.
	SessionPath string `yaml:"session_path" env:"SESSION_PATH"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level: debug, info, warn, error.
	Level string `yaml:"level" env:"LEVEL"`
	// Format: json, console.
	Format string `yaml:"format" env:"FORMAT"`
	// OutputPaths for the logger.
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED"`
	Addr    string `yaml:"addr" env:"ADDR"`
}

// Loader loads configuration with builder-style options.
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  "HIVEMIND",
		validators: make([]func(*Config) error, 0),
	}
}

// WithConfigPath sets the YAML config file path.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix sets the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator adds a configuration validator.
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load loads the configuration. Priority: defaults -> file -> env.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}
		envKey := prefix + "_" + envTag

		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}
		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}

	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}

	return nil
}

// MustLoad loads the configuration and panics on failure.
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	var errs []string

	if c.Research.TargetSatisfaction < 1 || c.Research.TargetSatisfaction > 10 {
		errs = append(errs, "target_satisfaction must be in [1,10]")
	}
	if c.Research.BrainstormRounds <= 0 {
		errs = append(errs, "brainstorm_rounds must be positive")
	}
	if c.Research.DiscussionRounds <= 0 {
		errs = append(errs, "discussion_rounds must be positive")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, "temperature must be between 0 and 2")
	}
	if c.Retrieval.MaxResults <= 0 {
		errs = append(errs, "retrieval max_results must be positive")
	}
	for _, a := range c.Team {
		if a.Name == "" || a.Specialty == "" {
			errs = append(errs, "team members need both name and specialty")
			break
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}
