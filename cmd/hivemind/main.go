// Hivemind entry point.
//
// Usage:
//
//	hivemind run --topic "..."             # run a full research session
//	hivemind run --config hivemind.yaml    # with a config file
//	hivemind sessions                      # list archived sessions
//	hivemind version                       # show version info
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Eeman1113/Hivemind/agent"
	"github.com/Eeman1113/Hivemind/config"
	"github.com/Eeman1113/Hivemind/internal/metrics"
	"github.com/Eeman1113/Hivemind/llm"
	"github.com/Eeman1113/Hivemind/llm/providers/ollama"
	"github.com/Eeman1113/Hivemind/llm/retry"
	"github.com/Eeman1113/Hivemind/orchestrator"
	"github.com/Eeman1113/Hivemind/report"
	"github.com/Eeman1113/Hivemind/retrieval"
	"github.com/Eeman1113/Hivemind/store"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		runResearch(os.Args[2:])
	case "sessions":
		runSessions(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runResearch(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	topic := fs.String("topic", "", "Research topic (required)")
	queriesFlag := fs.String("queries", "", "Comma-separated search queries (defaults to the topic)")
	discussionTopic := fs.String("discussion", "Research methodology and approach", "Structured discussion topic")
	fs.Parse(args)

	if *topic == "" {
		fmt.Fprintln(os.Stderr, "Error: --topic is required")
		fs.Usage()
		os.Exit(1)
	}

	loader := config.NewLoader()
	if *configPath != "" {
		loader = loader.WithConfigPath(*configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	logger.Info("starting hivemind",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
		zap.String("topic", *topic),
	)

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		collector = metrics.NewCollector("hivemind", reg, logger)
		go serveMetrics(cfg.Metrics.Addr, reg, logger)
	}

	provider := buildProvider(cfg, collector, logger)
	searcher := buildSearcher(cfg, logger)

	engine := orchestrator.New(orchestrator.Config{
		TargetSatisfaction: float64(cfg.Research.TargetSatisfaction),
		MaxSearchResults:   cfg.Retrieval.MaxResults,
	}, searcher, collector, logger)
	engine.SetTopic(*topic)

	for _, spec := range cfg.Team {
		model := spec.Model
		if model == "" {
			model = cfg.LLM.Model
		}
		a := agent.New(agent.Config{
			Name:        spec.Name,
			Specialty:   spec.Specialty,
			Model:       model,
			Temperature: float32(cfg.LLM.Temperature),
		}, provider, logger)
		if err := engine.AddAgent(a); err != nil {
			fatal(logger, "failed to roster agent", err)
		}
	}

	queries := []string{*topic}
	if *queriesFlag != "" {
		queries = queries[:0]
		for _, q := range strings.Split(*queriesFlag, ",") {
			if q = strings.TrimSpace(q); q != "" {
				queries = append(queries, q)
			}
		}
	}

	ctx := context.Background()
	if err := runWorkflow(ctx, engine, cfg, queries, *discussionTopic, logger); err != nil {
		fatal(logger, "research session failed", err)
	}

	if err := finishSession(ctx, engine, cfg, logger); err != nil {
		fatal(logger, "failed to finalize session", err)
	}

	logger.Info("research session complete",
		zap.String("document", cfg.Output.DocumentPath),
		zap.String("session", cfg.Output.SessionPath),
		zap.Float64("mean_satisfaction", engine.MeanSatisfaction()),
	)
}

// runWorkflow drives the full research lifecycle: brainstorm, research,
// discussion, then evaluation with bounded improvement cycles until the
// roster reaches consensus.
func runWorkflow(ctx context.Context, engine *orchestrator.Orchestrator, cfg *config.Config, queries []string, discussionTopic string, logger *zap.Logger) error {
	if _, err := engine.Brainstorm(ctx, cfg.Research.BrainstormRounds); err != nil {
		return fmt.Errorf("brainstorm phase: %w", err)
	}

	if _, err := engine.Research(ctx, queries); err != nil {
		return fmt.Errorf("research phase: %w", err)
	}

	if _, err := engine.Discuss(ctx, discussionTopic, cfg.Research.DiscussionRounds); err != nil {
		return fmt.Errorf("discussion phase: %w", err)
	}

	if _, err := engine.EvaluateSatisfaction(ctx); err != nil {
		return fmt.Errorf("evaluation phase: %w", err)
	}

	for cycle := 1; !engine.CheckConsensus() && cycle <= cfg.Research.MaxImprovementCycles; cycle++ {
		logger.Info("consensus not reached, running improvement cycle",
			zap.Int("cycle", cycle),
			zap.Float64("mean_satisfaction", engine.MeanSatisfaction()),
		)

		if _, err := engine.ImproveAgents(ctx); err != nil {
			return fmt.Errorf("improvement cycle %d: %w", cycle, err)
		}
		if _, err := engine.Discuss(ctx, discussionTopic, 1); err != nil {
			return fmt.Errorf("improvement cycle %d discussion: %w", cycle, err)
		}
		if _, err := engine.EvaluateSatisfaction(ctx); err != nil {
			return fmt.Errorf("improvement cycle %d evaluation: %w", cycle, err)
		}
	}

	return nil
}

// finishSession synthesizes the document, renders it, and exports the
// session, archiving it when the store is enabled.
func finishSession(ctx context.Context, engine *orchestrator.Orchestrator, cfg *config.Config, logger *zap.Logger) error {
	doc, err := engine.SynthesizeSections(ctx, nil)
	if err != nil {
		return fmt.Errorf("document synthesis: %w", err)
	}

	rendered, err := report.NewMarkdownRenderer().Render(doc)
	if err != nil {
		return fmt.Errorf("document rendering: %w", err)
	}
	if err := os.WriteFile(cfg.Output.DocumentPath, rendered, 0o644); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}

	if err := engine.WriteExport(cfg.Output.SessionPath); err != nil {
		return err
	}

	if cfg.Store.Enabled {
		archive, err := store.Open(cfg.Store.Path, logger)
		if err != nil {
			return err
		}
		if err := archive.Save(engine.Export()); err != nil {
			return err
		}
	}

	return nil
}

func runSessions(args []string) {
	fs := flag.NewFlagSet("sessions", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	limit := fs.Int("limit", 20, "Maximum sessions to list")
	fs.Parse(args)

	loader := config.NewLoader()
	if *configPath != "" {
		loader = loader.WithConfigPath(*configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	archive, err := store.Open(cfg.Store.Path, zap.NewNop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open archive: %v\n", err)
		os.Exit(1)
	}

	infos, err := archive.List(*limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list sessions: %v\n", err)
		os.Exit(1)
	}

	if len(infos) == 0 {
		fmt.Println("No archived sessions.")
		return
	}
	for _, info := range infos {
		fmt.Printf("%s  %-40s  interactions=%d  satisfaction=%.1f\n",
			info.SessionID, info.Topic, info.TotalInteractions, info.MeanSatisfaction)
	}
}

func buildProvider(cfg *config.Config, collector *metrics.Collector, logger *zap.Logger) llm.Provider {
	var provider llm.Provider = ollama.New(ollama.Config{
		Host:              cfg.LLM.Host,
		DefaultModel:      cfg.LLM.Model,
		Timeout:           cfg.LLM.Timeout,
		RequestsPerSecond: cfg.LLM.RequestsPerSecond,
	}, logger)

	policy := retry.DefaultPolicy()
	policy.MaxRetries = cfg.LLM.MaxRetries
	provider = retry.Wrap(provider, policy, logger)

	if collector != nil {
		provider = llm.Instrument(provider, collector)
	}
	return provider
}

func buildSearcher(cfg *config.Config, logger *zap.Logger) retrieval.Searcher {
	var searcher retrieval.Searcher = retrieval.NewArxivClient(logger,
		retrieval.WithHTTPTimeout(cfg.Retrieval.Timeout))

	if cfg.Retrieval.Cache.Enabled {
		client := goredis.NewClient(&goredis.Options{
			Addr: cfg.Retrieval.Cache.Addr,
			DB:   cfg.Retrieval.Cache.DB,
		})
		searcher = retrieval.NewCachedSearcher(searcher, client, cfg.Retrieval.Cache.TTL, logger)
	}
	return searcher
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	logger.Info("metrics endpoint listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("metrics endpoint stopped", zap.Error(err))
	}
}

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoding = "console"
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	outputPaths := cfg.OutputPaths
	if len(outputPaths) == 0 {
		outputPaths = []string{"stdout"}
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      outputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := zapConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func fatal(logger *zap.Logger, msg string, err error) {
	logger.Error(msg, zap.Error(err))
	logger.Sync()
	os.Exit(1)
}

func printVersion() {
	fmt.Printf("Hivemind %s\n", Version)
	fmt.Printf("  Build time: %s\n", BuildTime)
	fmt.Printf("  Git commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`Hivemind - multi-agent research coordination engine

Usage:
  hivemind run --topic "..." [--config file] [--queries q1,q2] [--discussion topic]
  hivemind sessions [--config file] [--limit n]
  hivemind version
  hivemind help`)
}
