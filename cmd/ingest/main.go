package main

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"quiz-byte/internal/adapter/embedding"
	"quiz-byte/internal/adapter/search"
	"quiz-byte/internal/config"
	"quiz-byte/internal/extractor"
	"quiz-byte/internal/logger"
	"quiz-byte/internal/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	var (
		file  = flag.String("file", "", "Path of the text or PDF file to ingest (required)")
		title = flag.String("title", "", "Document title (defaults to the file name)")
		docID = flag.String("doc", "", "Document id (defaults to a new ULID)")
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: ingest -file path [-title t] [-doc id]")
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	content, err := os.ReadFile(*file)
	if err != nil {
		appLogger.Fatal("Failed to read file", zap.String("file", *file), zap.Error(err))
	}

	name := filepath.Base(*file)
	text, err := extractor.New(appLogger.Named("extractor")).Extract(ctx, name, mime.TypeByExtension(filepath.Ext(name)), content)
	if err != nil {
		appLogger.Fatal("Failed to extract text", zap.String("file", *file), zap.Error(err))
	}

	if *title == "" {
		*title = name
	}

	esClient, err := search.NewElasticClient(cfg.Elastic)
	if err != nil {
		appLogger.Fatal("Failed to create Elasticsearch client", zap.Error(err))
	}
	store := search.NewElasticStore(esClient, cfg.Elastic, appLogger.Named("elastic"))
	embedder, _ := embedding.Setup(ctx, cfg, appLogger.Named("embedding"))

	result, err := service.NewIngestService(store, embedder, cfg.Ingest, appLogger.Named("ingest")).Ingest(ctx, *docID, *title, text)
	if err != nil {
		appLogger.Fatal("Ingestion failed", zap.Error(err))
	}

	appLogger.Info("Ingestion complete",
		zap.String("doc_id", result.DocumentID),
		zap.String("title", result.Title),
		zap.Int("chunks_indexed", result.ChunksIndexed),
		zap.Int("text_len", result.TextLength),
	)
	fmt.Println(result.DocumentID)
}
