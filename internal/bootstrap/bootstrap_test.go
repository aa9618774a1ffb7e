package bootstrap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kirillkom/docmeta/internal/config"
	"github.com/kirillkom/docmeta/internal/infrastructure/cache"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		LLMProvider:        "ollama",
		OllamaURL:          "http://127.0.0.1:1",
		OllamaGenModel:     "test-model",
		LLMTemperature:     0.3,
		LLMMaxTokens:       1024,
		CacheEnabled:       true,
		CacheBackend:       "file",
		CacheDir:           t.TempDir(),
		CacheTTL:           time.Hour,
		ClassifyTextBudget: 2000,
		DiscoverTextBudget: 3000,
		ExtractTextBudget:  4000,
		OutputDir:          t.TempDir(),
	}
}

func TestNewWiresDefaultApplication(t *testing.T) {
	app, err := New(context.Background(), testConfig(t), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Close()

	if _, ok := app.Cache.(*cache.FileCache); !ok {
		t.Fatalf("expected file cache, got %T", app.Cache)
	}
	if app.ProcessUC == nil || app.ReadUC == nil || app.ActionsUC == nil {
		t.Fatalf("use cases must be wired")
	}
	if len(app.Registry.Candidates()) != 3 {
		t.Fatalf("expected built-in registry, got %v", app.Registry.Candidates())
	}
}

func TestNewSelectsCacheBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.CacheEnabled = false
	c, closeFn, err := OpenCache(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("OpenCache() error = %v", err)
	}
	closeFn()
	if _, ok := c.(cache.Disabled); !ok {
		t.Fatalf("expected disabled cache, got %T", c)
	}

	cfg.CacheEnabled = true
	cfg.CacheBackend = "memory"
	c, closeFn, err = OpenCache(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("OpenCache() error = %v", err)
	}
	closeFn()
	if _, ok := c.(*cache.MemoryCache); !ok {
		t.Fatalf("expected memory cache, got %T", c)
	}

	cfg.CacheBackend = "sqlite"
	if _, _, err := OpenCache(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for unsupported backend")
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLMProvider = "bard"
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for unsupported provider")
	}

	cfg.LLMProvider = "openai"
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for openai without credentials")
	}
}

func TestRetryConfigScalesBackoffUnit(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLMRetryBackoff = 10 * time.Millisecond
	got := retryConfig(cfg, nil)
	if got.RetryMaxAttempts != 3 || got.RetryInitialBackoff != 10*time.Millisecond || got.RetryMaxBackoff != 40*time.Millisecond {
		t.Fatalf("unexpected retry config %+v", got)
	}
}

func TestWaitReadyReturnsLastError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	calls := 0
	err := waitReady(ctx, "redis", func() error {
		calls++
		if calls < 2 {
			return errors.New("connection refused")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("waitReady() error = %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}
