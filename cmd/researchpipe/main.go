package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/arclab-ai/researchpipe/internal/chunker"
	"github.com/arclab-ai/researchpipe/internal/config"
	"github.com/arclab-ai/researchpipe/internal/domain"
	logpkg "github.com/arclab-ai/researchpipe/internal/logger"
	"github.com/arclab-ai/researchpipe/internal/metrics"
	"github.com/arclab-ai/researchpipe/internal/pool"
	memindex "github.com/arclab-ai/researchpipe/internal/repository/index/memory"
	redisindex "github.com/arclab-ai/researchpipe/internal/repository/index/redis"
	chiTransport "github.com/arclab-ai/researchpipe/internal/transport/chi"
	openaiTransport "github.com/arclab-ai/researchpipe/internal/transport/openai"
	"github.com/arclab-ai/researchpipe/internal/usecase/agents"
	"github.com/arclab-ai/researchpipe/internal/usecase/contextbuild"
	"github.com/arclab-ai/researchpipe/internal/usecase/evaluate"
	experimentuc "github.com/arclab-ai/researchpipe/internal/usecase/experiment"
	ingestuc "github.com/arclab-ai/researchpipe/internal/usecase/ingest"
	"github.com/arclab-ai/researchpipe/internal/usecase/pipeline"
)

const serveNamespace = "default"

func main() {
	var (
		experimentsPath = flag.String("experiments", "", "run an experiment sweep from this YAML file and exit")
		outPath         = flag.String("out", "results.csv", "CSV output path for sweep mode")
		sourcesFlag     = flag.String("sources", "", "glob of .txt sources to ingest at startup (serve mode)")
	)
	flag.Parse()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting researchpipe",
		zap.String("env", env),
		zap.String("index_driver", cfg.Index.Driver),
		zap.Int("workers", cfg.Pipeline.Workers),
	)

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterModelMetrics()

	providerCfg := openaiTransport.Config{
		APIKey:  cfg.Models.Provider.APIKey,
		BaseURL: cfg.Models.Provider.BaseURL,
	}
	embedder := openaiTransport.NewEmbedder(
		providerCfg, cfg.Models.Embedding.Model, cfg.Models.Embedding.Dimensions, logger)
	summarizer := openaiTransport.NewSummarizer(providerCfg, cfg.Models.Summarizer.Model, logger)
	generator := openaiTransport.NewGenerator(providerCfg, cfg.Models.Generator.Model, logger)

	ctx := context.Background()

	var index domain.VectorIndex
	switch cfg.Index.Driver {
	case "redis":
		redisIdx, err := redisindex.New(redisindex.Config{
			Addrs:     cfg.Index.Addrs,
			Password:  cfg.Index.Password,
			KeyPrefix: cfg.Index.KeyPrefix,
		}, embedder)
		if err != nil {
			logger.Fatal("Failed to create redis index", zap.Error(err))
		}
		defer redisIdx.Close()
		if err := redisIdx.WaitForReady(ctx, time.Duration(cfg.Index.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Redis not ready", zap.Error(err))
		}
		logger.Info("Connected to redis index")
		index = redisIdx
	case "memory":
		index = memindex.New(embedder)
	default:
		logger.Fatal("Unknown index driver", zap.String("driver", cfg.Index.Driver))
	}

	// One shared worker pool across summarization and validation fan-outs.
	sharedPool := pool.New(cfg.Pipeline.Workers)

	split := chunker.New(cfg.Pipeline.ChunkSize, cfg.Pipeline.ChunkOverlap)
	ingest := ingestuc.New(embedder, index, split, logger).
		WithBatchSize(cfg.Pipeline.EmbedBatchSize)

	factory := &pipelineFactory{
		index:  index,
		summ:   summarizer,
		gen:    generator,
		ingest: ingest,
		pool:   sharedPool,
		cfg:    cfg,
		logger: logger,
	}

	if *experimentsPath != "" {
		if err := runSweep(ctx, cfg, factory, *experimentsPath, *outPath, logger); err != nil {
			logger.Fatal("Sweep failed", zap.Error(err))
		}
		return
	}

	serve(ctx, cfg, factory, embedder, *sourcesFlag, logger)
}

// pipelineFactory builds namespace-bound pipelines over the shared model
// bindings and worker pool. Each call ingests the experiment's sources into
// its own namespace first.
type pipelineFactory struct {
	index  domain.VectorIndex
	summ   domain.Summarizer
	gen    domain.Generator
	ingest *ingestuc.Service
	pool   *pool.Pool
	cfg    config.Config
	logger *zap.Logger
}

var _ experimentuc.Factory = (*pipelineFactory)(nil)

func (f *pipelineFactory) New(
	ctx context.Context, namespace string, sources []string, k int,
) (experimentuc.Pipeline, error) {
	if len(sources) > 0 {
		if _, err := f.ingest.Sources(ctx, namespace, sources); err != nil {
			return nil, err
		}
	}
	return f.build(namespace, k), nil
}

func (f *pipelineFactory) build(namespace string, k int) *pipeline.Service {
	builder := contextbuild.New(f.index, f.summ, f.pool, namespace, f.logger).
		WithSummaryBounds(f.cfg.Models.Summarizer.MaxLength, f.cfg.Models.Summarizer.MinLength)
	orchestrator := agents.New(f.gen, f.pool, domain.SamplingParams{
		Temperature:  f.cfg.Models.Generator.Temperature,
		TopP:         f.cfg.Models.Generator.TopP,
		MaxNewTokens: f.cfg.Models.Generator.MaxNewTokens,
	}, f.logger)
	return pipeline.New(builder, orchestrator, k, f.logger)
}

func serve(
	ctx context.Context,
	cfg config.Config,
	factory *pipelineFactory,
	health domain.HealthChecker,
	sources string,
	logger *zap.Logger,
) {
	if sources != "" {
		n, err := factory.ingest.Sources(ctx, serveNamespace, []string{sources})
		if err != nil {
			logger.Fatal("Startup ingestion failed", zap.Error(err))
		}
		logger.Info("Startup ingestion done", zap.Int("chunks", n))
	}

	p := factory.build(serveNamespace, cfg.Pipeline.RetrievalK)
	evaluator := evaluate.New(factory.index, serveNamespace)

	server := chiTransport.NewServer(
		p, evaluator, health,
		cfg.Pipeline.RetrievalK, cfg.Pipeline.SupportThreshold, logger,
	)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func runSweep(
	ctx context.Context,
	cfg config.Config,
	factory *pipelineFactory,
	experimentsPath, outPath string,
	logger *zap.Logger,
) error {
	experiments, err := config.LoadExperiments(experimentsPath)
	if err != nil {
		return err
	}

	runner := experimentuc.NewRunner(factory, cfg.Pipeline.MaxHypotheses, logger)
	results, err := runner.Sweep(ctx, experiments)
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer func() { _ = out.Close() }()

	w := csv.NewWriter(out)
	header := []string{
		"experiment", "runtime_s", "num_hypotheses",
		"min_score", "max_score", "mean_score", "std_score",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, res := range results {
		summary := experimentuc.SummarizeScores(res.Scores)
		row := []string{
			res.Name,
			strconv.FormatFloat(res.Runtime.Seconds(), 'f', 2, 64),
			strconv.Itoa(len(res.Hypotheses)),
			formatScore(summary.Min, summary.Valid),
			formatScore(summary.Max, summary.Valid),
			formatScore(summary.Mean, summary.Valid),
			formatScore(summary.Std, summary.Valid),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
		fmt.Printf("%s: runtime=%.2fs hypotheses=%d mean_score=%s\n",
			res.Name, res.Runtime.Seconds(), len(res.Hypotheses), formatScore(summary.Mean, summary.Valid))
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	logger.Info("Sweep complete", zap.Int("experiments", len(results)), zap.String("out", outPath))
	return nil
}

// formatScore renders an absent statistic as an empty CSV cell.
func formatScore(v float64, valid bool) string {
	if !valid {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
