package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/redis/go-redis/v9"

	"github.com/kirillkom/docmeta/internal/config"
	"github.com/kirillkom/docmeta/internal/core/domain"
	"github.com/kirillkom/docmeta/internal/core/ports"
	"github.com/kirillkom/docmeta/internal/core/usecase"
	"github.com/kirillkom/docmeta/internal/infrastructure/cache"
	"github.com/kirillkom/docmeta/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/docmeta/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/docmeta/internal/infrastructure/llm"
	"github.com/kirillkom/docmeta/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/docmeta/internal/infrastructure/llm/openai"
	"github.com/kirillkom/docmeta/internal/infrastructure/queue/nats"
	"github.com/kirillkom/docmeta/internal/infrastructure/repository/memory"
	"github.com/kirillkom/docmeta/internal/infrastructure/resilience"
	"github.com/kirillkom/docmeta/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/docmeta/internal/observability/metrics"
)

type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Metrics  *metrics.PipelineMetrics
	Registry *domain.Registry

	Cache     ports.ResponseCache
	Store     ports.ResultStore
	Output    *localfs.Storage
	PlainText ports.TextExtractor

	ProcessUC ports.DocumentProcessor
	ReadUC    ports.DocumentReader
	ActionsUC ports.ActionLister

	closeFns []func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{Config: cfg, Logger: logger}

	registry, err := config.LoadRegistry(cfg.DocumentTypesFile)
	if err != nil {
		return nil, fmt.Errorf("load document types: %w", err)
	}
	app.Registry = registry

	responseCache, err := app.openCache(ctx)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("init response cache: %w", err)
	}
	app.Cache = responseCache

	generator, provider, err := newGenerator(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	output, err := localfs.New(cfg.OutputDir)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("init output storage: %w", err)
	}
	app.Output = output

	var publisher ports.ResultPublisher
	if strings.TrimSpace(cfg.NATSSubject) != "" {
		pub, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
			Logger:             logger,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("init result publisher: %w", err)
		}
		app.closeFns = append(app.closeFns, pub.Close)
		publisher = pub
	}

	app.Metrics = metrics.NewPipelineMetrics("docmeta")
	app.Store = memory.NewResultStore(0)
	app.PlainText = plaintext.NewExtractor()

	client := llm.NewClient(generator, responseCache, llm.Options{
		Provider:    provider,
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
		Retry:       retryConfig(cfg, logger),
		RateLimit:   cfg.LLMRateLimitRPS,
		Observer:    app.Metrics,
		Logger:      logger,
	})

	classifier := usecase.NewClassifier(client, registry, cfg.ClassifyTextBudget, logger)
	extractor := usecase.NewExtractor(client, registry, usecase.ExtractorBudgets{
		Discovery: cfg.DiscoverTextBudget,
		Extract:   cfg.ExtractTextBudget,
	}, logger)

	app.ProcessUC = usecase.NewPipeline(pdf.NewExtractor(), classifier, extractor, registry, usecase.PipelineOptions{
		Store:     app.Store,
		Publisher: publisher,
		Observer:  app.Metrics,
		Logger:    logger,
	})
	queries := usecase.NewDocumentQueries(app.Store, registry, logger)
	app.ReadUC = queries
	app.ActionsUC = queries

	return app, nil
}

func (a *App) Close() {
	for i := len(a.closeFns) - 1; i >= 0; i-- {
		a.closeFns[i]()
	}
	a.closeFns = nil
}

func retryConfig(cfg config.Config, logger *slog.Logger) resilience.Config {
	if logger == nil {
		logger = slog.Default()
	}
	retryCfg := resilience.DefaultConfig()
	if cfg.LLMRetryBackoff > 0 {
		retryCfg.RetryInitialBackoff = cfg.LLMRetryBackoff
		retryCfg.RetryMaxBackoff = 4 * cfg.LLMRetryBackoff
	}
	retryCfg.BreakerEnabled = cfg.LLMBreakerEnabled
	retryCfg.OnRetry = func(operation string, attempt int, wait time.Duration, err error) {
		logger.Warn("retry_attempt",
			"operation", operation,
			"attempt", attempt,
			"wait", wait.String(),
			"error", err,
		)
	}
	return retryCfg
}

func newGenerator(cfg config.Config) (ports.ModelGenerator, string, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.LLMProvider)) {
	case "", "ollama":
		return ollama.New(cfg.OllamaURL, cfg.OllamaGenModel), "ollama", nil
	case "openai":
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" && strings.TrimSpace(cfg.OpenAIBaseURL) == "" {
			return nil, "", fmt.Errorf("openai provider requires OPENAI_API_KEY or OPENAI_BASE_URL")
		}
		return openai.New(openai.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		}), "openai", nil
	default:
		return nil, "", fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLMProvider)
	}
}

// OpenCache builds the configured response cache without the rest of the
// application. The CLI cache commands use it.
func OpenCache(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.ResponseCache, func(), error) {
	app := &App{Config: cfg, Logger: logger}
	if app.Logger == nil {
		app.Logger = slog.Default()
	}
	c, err := app.openCache(ctx)
	if err != nil {
		app.Close()
		return nil, func() {}, err
	}
	return c, app.Close, nil
}

func (a *App) openCache(ctx context.Context) (ports.ResponseCache, error) {
	cfg := a.Config
	if !cfg.CacheEnabled {
		a.Logger.Info("llm_cache_disabled")
		return cache.Disabled{}, nil
	}
	opts := cache.Options{TTL: cfg.CacheTTL, Logger: a.Logger}

	var (
		c   ports.ResponseCache
		err error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.CacheBackend)) {
	case "", "file":
		c, err = cache.NewFileCache(cfg.CacheDir, opts)
	case "memory":
		c = cache.NewMemoryCache(opts)
	case "redis":
		var client *redis.Client
		err = waitReady(ctx, "redis", func() error {
			var openErr error
			client, openErr = cache.OpenRedis(ctx, cfg.RedisURL)
			return openErr
		})
		if err == nil {
			a.closeFns = append(a.closeFns, func() { _ = client.Close() })
			c = cache.NewRedisCache(client, opts)
		}
	case "postgres":
		var db *sql.DB
		err = waitReady(ctx, "postgres", func() error {
			var openErr error
			db, openErr = cache.OpenDB(cfg.PostgresDSN)
			return openErr
		})
		if err == nil {
			a.closeFns = append(a.closeFns, func() { _ = db.Close() })
			pg := cache.NewPostgresCache(db, opts)
			if err = pg.EnsureSchema(ctx); err == nil {
				c = pg
			}
		}
	default:
		err = fmt.Errorf("unsupported CACHE_BACKEND %q", cfg.CacheBackend)
	}
	if err != nil {
		return nil, err
	}

	if pruneErr := c.Prune(ctx); pruneErr != nil {
		a.Logger.Warn("llm_cache_prune_failed", "error", pruneErr)
	}
	return c, nil
}

// waitReady retries connecting to a cache store that may still be starting.
func waitReady(ctx context.Context, backend string, connect func() error) error {
	err := retry.Do(
		connect,
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("connect %s cache: %w", backend, err)
	}
	return nil
}
