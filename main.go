package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/nsqio/go-nsq"

	"newsdesk/features/article"
	"newsdesk/features/search"
	"newsdesk/internal/adapter/gemini"
	wstore "newsdesk/internal/adapter/weaviate"
	"newsdesk/internal/app"
	"newsdesk/internal/config"
	"newsdesk/internal/enrich"
	"newsdesk/internal/fetch"
	"newsdesk/internal/llm"
	"newsdesk/internal/logger"
	"newsdesk/internal/middleware"
	"newsdesk/internal/pipeline"
	"newsdesk/internal/worker"
)

func main() {
	handler := logger.NewContextHandler(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(slog.New(handler))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	mode := "enrich"
	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "enrich", "fetch", "worker", "serve":
			mode = args[0]
			args = args[1:]
		}
	}

	switch mode {
	case "enrich":
		runEnrich(cfg, args)
	case "fetch":
		runFetch(cfg, args)
	case "worker":
		runWorker(cfg)
	case "serve":
		runServe(cfg)
	}
}

// runEnrich reads raw articles as JSONL, enriches them and writes
// enriched JSONL. Exit code 2 means the input held no records at all;
// per-item failures only show up in the final report.
func runEnrich(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("enrich", flag.ExitOnError)
	inPath := fs.String("in", "-", "input JSONL file, - for stdin")
	outPath := fs.String("out", "-", "output JSONL file, - for stdout")
	_ = fs.Parse(args)

	ctx := context.Background()

	var in io.Reader = os.Stdin
	if *inPath != "-" {
		f, err := os.Open(*inPath)
		if err != nil {
			slog.Error("failed to open input", "path", *inPath, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	var out io.Writer = os.Stdout
	if *outPath != "-" {
		f, err := os.Create(*outPath)
		if err != nil {
			slog.Error("failed to create output", "path", *outPath, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	summarizer, closeCaller, err := buildSummarizer(ctx, cfg)
	if err != nil {
		slog.Error("failed to build summarizer", "error", err)
		os.Exit(1)
	}
	defer closeCaller()

	sink := pipeline.NewJSONLSink(out)
	runner := pipeline.NewRunner(summarizer, sink)

	report, err := runner.Run(ctx, in)
	if flushErr := sink.Flush(); flushErr != nil {
		slog.Error("failed to flush output", "error", flushErr)
	}

	slog.Info("run finished",
		"processed", report.Processed,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"duplicates", report.Duplicates,
		"elapsed", report.Elapsed.Round(time.Millisecond).String(),
		"items_per_second", report.Throughput,
	)

	if err != nil {
		if errors.Is(err, pipeline.ErrNoInput) {
			slog.Error("no input records found")
			os.Exit(2)
		}
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// runFetch pulls the configured feeds and either prints raw articles as
// JSONL or publishes them to NSQ for the worker to enrich.
func runFetch(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	publish := fs.Bool("publish", false, "publish to NSQ instead of printing JSONL")
	fullText := fs.Bool("full-text", false, "extract article body from the linked page")
	_ = fs.Parse(args)

	ctx := context.Background()

	sources, err := fetch.ParseSources(cfg.FeedURLs)
	if err != nil {
		slog.Error("invalid FEED_URLS", "error", err)
		os.Exit(1)
	}

	fetcher := fetch.New(fetch.Options{
		Concurrency:  cfg.FetchConcurrency,
		RatePerSec:   cfg.FetchRatePerSecond,
		MaxPerSource: cfg.MaxArticlesPerSource,
		FullText:     *fullText,
	}, slog.Default())

	articles := fetcher.FetchAll(ctx, sources)
	slog.Info("fetch finished", "sources", len(sources), "articles", len(articles))
	for name, s := range article.ComputeStats(articles) {
		slog.Info("source stats", "source", name, "count", s.Count, "max_words", s.MaxWords, "max_chars", s.MaxChars)
	}

	if !*publish {
		enc := json.NewEncoder(os.Stdout)
		for i := range articles {
			if err := enc.Encode(&articles[i]); err != nil {
				slog.Error("failed to encode article", "error", err)
				os.Exit(1)
			}
		}
		return
	}

	producer, err := nsq.NewProducer(cfg.NSQDHost, nsq.NewConfig())
	if err != nil {
		slog.Error("failed to create NSQ producer", "error", err)
		os.Exit(1)
	}
	defer producer.Stop()

	published := 0
	for i := range articles {
		body, err := json.Marshal(worker.NewsMessage{Article: articles[i]})
		if err != nil {
			slog.Error("failed to marshal article", "url", articles[i].URL, "error", err)
			continue
		}
		if err := producer.Publish(config.TopicNewsFetched, body); err != nil {
			slog.Error("failed to publish article", "url", articles[i].URL, "error", err)
			continue
		}
		published++
	}
	slog.Info("articles published", "count", published, "topic", config.TopicNewsFetched)
}

// runWorker consumes raw articles from NSQ, enriches them and writes the
// result to Postgres and the vector store.
func runWorker(cfg *config.Config) {
	ctx := context.Background()

	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer deps.Close()

	embedder, err := gemini.NewEmbedder(ctx, cfg.GeminiAPIKey, "")
	if err != nil {
		slog.Error("failed to create embedder", "error", err)
		os.Exit(1)
	}
	defer embedder.Close()

	summarizer, closeCaller, err := buildSummarizer(ctx, cfg)
	if err != nil {
		slog.Error("failed to build summarizer", "error", err)
		os.Exit(1)
	}
	defer closeCaller()

	repo := article.NewPostgresRepo(deps.DB)
	sink := pipeline.Multi(
		pipeline.SinkFunc(func(ctx context.Context, item *article.Enriched) error {
			return repo.Save(ctx, item)
		}),
		worker.NewEmbedSink(embedder, wstore.NewStore(deps.Weaviate)),
	)
	runner := pipeline.NewRunner(summarizer, sink)

	consumer, err := nsq.NewConsumer(config.TopicNewsFetched, config.ChannelEnricher, nsq.NewConfig())
	if err != nil {
		slog.Error("failed to create NSQ consumer", "error", err)
		os.Exit(1)
	}
	consumer.AddHandler(worker.NewConsumer(runner))

	if err := consumer.ConnectToNSQLookupd(cfg.NSQLookupd); err != nil {
		slog.Error("failed to connect to NSQLookupd", "error", err)
		os.Exit(1)
	}
	slog.Info("worker connected", "topic", config.TopicNewsFetched, "channel", config.ChannelEnricher)

	<-consumer.StopChan
}

// runServe exposes search, QA and stats over HTTP.
func runServe(cfg *config.Config) {
	ctx := context.Background()

	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer deps.Close()

	embedder, err := gemini.NewEmbedder(ctx, cfg.GeminiAPIKey, "")
	if err != nil {
		slog.Error("failed to create embedder", "error", err)
		os.Exit(1)
	}
	defer embedder.Close()

	caller, err := llm.NewGeminiCaller(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.LLMCallTimeout())
	if err != nil {
		slog.Error("failed to create gemini caller", "error", err)
		os.Exit(1)
	}
	defer caller.Close()

	queryLogger, err := search.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = search.NewQueryLogger(os.Stdout)
	}

	retried := llm.WithRetry(caller, llm.RetryConfig{
		MaxAttempts: cfg.LLMMaxAttempts,
		JitterMin:   cfg.LLMBackoffMin(),
		JitterMax:   cfg.LLMBackoffMax(),
	})
	svc := search.NewService(embedder, wstore.NewStore(deps.Weaviate), retried, queryLogger)
	handler := search.NewHandler(svc)

	http.Handle("GET /search", middleware.CorrelationID(http.HandlerFunc(handler.Search)))
	http.Handle("POST /ask", middleware.CorrelationID(http.HandlerFunc(handler.Ask)))
	http.Handle("GET /stats", middleware.CorrelationID(http.HandlerFunc(handler.Stats)))
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	slog.Info("server starting", "addr", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// buildSummarizer wires the Gemini caller, the retry wrapper and the
// chunked summarization protocol. The returned func closes the client.
func buildSummarizer(ctx context.Context, cfg *config.Config) (*enrich.Summarizer, func(), error) {
	caller, err := llm.NewGeminiCaller(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.LLMCallTimeout())
	if err != nil {
		return nil, nil, err
	}

	retried := llm.WithRetry(caller, llm.RetryConfig{
		MaxAttempts: cfg.LLMMaxAttempts,
		JitterMin:   cfg.LLMBackoffMin(),
		JitterMax:   cfg.LLMBackoffMax(),
	})

	summarizer := enrich.New(retried, enrich.Options{
		SingleShotCharLimit: cfg.SingleShotCharLimit,
		ChunkChars:          cfg.ChunkChars,
		ChunkOverlap:        cfg.ChunkOverlap,
		MaxChunks:           cfg.MaxChunks,
	})
	return summarizer, func() { _ = caller.Close() }, nil
}
