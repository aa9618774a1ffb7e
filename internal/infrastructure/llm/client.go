// Package llm implements the model client shared by every pipeline stage.
package llm

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/kirillkom/docmeta/internal/core/domain"
	"github.com/kirillkom/docmeta/internal/core/ports"
	"github.com/kirillkom/docmeta/internal/infrastructure/cache"
	"github.com/kirillkom/docmeta/internal/infrastructure/resilience"
)

// JSONSuffix is appended to prompts that carry a response schema.
const JSONSuffix = "\n\nPlease respond with valid JSON only."

var errEmptyResponse = errors.New("empty model response")

// Observer receives call-level measurements. metrics.PipelineMetrics satisfies it.
type Observer interface {
	RecordCacheLookup(hit bool)
	RecordAttempt(provider, outcome string)
	ObserveCall(provider, outcome string, duration time.Duration)
}

type noopObserver struct{}

func (noopObserver) RecordCacheLookup(bool) {}
func (noopObserver) RecordAttempt(string, string) {}
func (noopObserver) ObserveCall(string, string, time.Duration) {}

type Options struct {
	Provider    string
	Temperature float64
	MaxTokens   int
	// Retry controls the attempt budget and backoff. Zero values take
	// resilience defaults: 3 attempts, 1s then 2s.
	Retry resilience.Config
	// RateLimit caps remote attempts per second. Zero disables limiting.
	RateLimit float64
	Observer  Observer
	Logger    *slog.Logger
}

// Client is the ports.ModelClient used by classification and extraction.
type Client struct {
	generator ports.ModelGenerator
	cache     ports.ResponseCache
	executor  *resilience.Executor
	limiter   *rate.Limiter
	opts      Options
}

func NewClient(generator ports.ModelGenerator, responseCache ports.ResponseCache, opts Options) *Client {
	if responseCache == nil {
		responseCache = cache.Disabled{}
	}
	if opts.Observer == nil {
		opts.Observer = noopObserver{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if strings.TrimSpace(opts.Provider) == "" {
		opts.Provider = "unknown"
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		generator: generator,
		cache:     responseCache,
		executor:  resilience.NewExecutor(opts.Retry),
		limiter:   limiter,
		opts:      opts,
	}
}

// Call returns the raw model text for prompt. A cached response is returned
// without contacting the provider; a fresh response is cached once.
func (c *Client) Call(ctx context.Context, prompt string, schema *domain.SchemaDescriptor) (string, error) {
	key := cache.Key(prompt, schema)
	if payload, ok := c.cache.Get(ctx, key); ok {
		c.opts.Observer.RecordCacheLookup(true)
		c.opts.Logger.Debug("llm_cache_hit", "key", key)
		return payload, nil
	}
	c.opts.Observer.RecordCacheLookup(false)

	req := ports.GenerateRequest{
		Prompt:      prompt,
		Schema:      schema,
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	}
	if schema != nil {
		req.Prompt = prompt + JSONSuffix
	}

	start := time.Now()
	var (
		response string
		attempts atomic.Int32
	)
	err := c.executor.Execute(ctx, "llm.generate", func(ctx context.Context) error {
		attempts.Add(1)
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		text, err := c.generator.Generate(ctx, req)
		if err == nil && strings.TrimSpace(text) == "" {
			err = errEmptyResponse
		}
		if err != nil {
			c.opts.Observer.RecordAttempt(c.opts.Provider, "error")
			return err
		}
		c.opts.Observer.RecordAttempt(c.opts.Provider, "success")
		response = text
		return nil
	}, resilience.RetryUnlessCanceled)
	if err != nil {
		c.opts.Observer.ObserveCall(c.opts.Provider, "failure", time.Since(start))
		c.opts.Logger.Error("llm_call_failed",
			"provider", c.opts.Provider,
			"attempts", attempts.Load(),
			"error", err,
		)
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", domain.WrapError(domain.ErrModelUnavailable, "llm.call", err)
	}
	c.opts.Observer.ObserveCall(c.opts.Provider, "success", time.Since(start))

	if err := c.cache.Set(ctx, key, response); err != nil {
		c.opts.Logger.Warn("llm_cache_write_failed", "key", key, "error", err)
	}
	return response, nil
}
