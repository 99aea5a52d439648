package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rfpcruncher/engine/api"
	"github.com/rfpcruncher/engine/cache"
	"github.com/rfpcruncher/engine/common/logger"
	"github.com/rfpcruncher/engine/config"
	"github.com/rfpcruncher/engine/embedding"
	"github.com/rfpcruncher/engine/ingest"
	"github.com/rfpcruncher/engine/llm"
	"github.com/rfpcruncher/engine/matcher"
	"github.com/rfpcruncher/engine/pipeline"
	"github.com/rfpcruncher/engine/prompt"
	"github.com/rfpcruncher/engine/qastore"
	"github.com/rfpcruncher/engine/retriever"
	"github.com/rfpcruncher/engine/vectordb"
	"github.com/rfpcruncher/engine/verifier"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	console := flag.Bool("console", false, "human readable log output")
	flag.Parse()

	// .env is optional, real deployments set the environment directly.
	_ = godotenv.Load()

	if *console {
		logger.UseConsoleWriter()
	}
	logger.SetLevel(parseLevel(*logLevel))

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		logger.Errorf("fatal: %v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := qastore.Open(cfg.Store.Path, cfg.Store.Sheet)
	if err != nil {
		return fmt.Errorf("open QA store: %w", err)
	}
	logger.Infof("loaded %d curated answers from %s", store.Len(), cfg.Store.Path)

	embedder, err := embedding.NewProvider(cfg.Embedding)
	if err != nil {
		return err
	}
	generator, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return err
	}
	vstore, err := vectordb.NewProvider(cfg.VectorDB)
	if err != nil {
		return err
	}
	defer vstore.Close()
	if err := vstore.Init(ctx, cfg.Embedding.Dimensions); err != nil {
		return fmt.Errorf("init vector store: %w", err)
	}

	cacheTTL := time.Duration(cfg.Matching.CacheTTLSeconds) * time.Second
	semantic := &matcher.EmbeddingStrategy{
		Store:     store,
		Provider:  embedder,
		Cache:     cache.NewLRU(cfg.Matching.CacheSize, cacheTTL),
		Threshold: cfg.Matching.EmbeddingThreshold,
		CacheTTL:  cacheTTL,
	}
	cascade := matcher.NewCascade(
		&matcher.ExactStrategy{Store: store},
		semantic,
		&matcher.FuzzyStrategy{Store: store, Threshold: cfg.Matching.FuzzyThreshold},
	)

	prompts := &prompt.Builder{}
	engine := pipeline.New(cfg, pipeline.Deps{
		Store:     store,
		Cascade:   cascade,
		Semantic:  semantic,
		Retriever: &retriever.VectorRetriever{Embed: embedder, Store: vstore, TopK: cfg.RAG.TopK},
		Generator: generator,
		Prompts:   prompts,
		Verifier:  &verifier.Verifier{Provider: generator, Prompts: prompts},
	})
	ingestor := &ingest.Ingestor{
		Embed:     embedder,
		Store:     vstore,
		ChunkSize: cfg.RAG.Splitter.ChunkSize,
	}

	return api.NewServer(cfg, engine, ingestor).Run(ctx)
}

func parseLevel(s string) logger.LogLevel {
	switch s {
	case "debug":
		return logger.LevelDebug
	case "warn":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}
