// Package cache memoises tokenization results in a shared key-value store so
// that re-running the miner over an overlapping corpus skips POS tagging for
// texts it has seen. Keys embed the tokenizer version; a tagger change never
// reads stale tokens.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/resilience"
)

// KeyPrefix starts every token cache key.
const KeyPrefix = "tokens:"

// Backend is the subset of the Redis client the cache needs.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Lookup results reported to Options.OnResult.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"
)

// Options tune a TokenCache.
type Options struct {
	TTL time.Duration
	// IsMiss reports whether a backend error means "key not found".
	IsMiss   func(error) bool
	OnResult func(result string)
	Breaker  *resilience.CircuitBreaker
}

// TokenCache is a corpus.TextTokenizer that consults Backend before
// delegating to the wrapped tokenizer. Backend failures degrade to direct
// tokenization; they never fail the run. A hit skips the wrapped
// tokenizer entirely, so its exclusion hook does not fire for cached texts.
type TokenCache struct {
	next    corpus.TextTokenizer
	backend Backend
	version string
	opts    Options
	group   singleflight.Group
	logger  *slog.Logger
}

func New(next corpus.TextTokenizer, backend Backend, version string, opts Options) *TokenCache {
	if opts.IsMiss == nil {
		opts.IsMiss = func(error) bool { return false }
	}
	if opts.Breaker == nil {
		opts.Breaker = resilience.NewCircuitBreaker("token-cache", resilience.CircuitBreakerConfig{})
	}
	return &TokenCache{
		next:    next,
		backend: backend,
		version: version,
		opts:    opts,
		logger:  slog.Default().With("component", "token-cache", "version", version),
	}
}

// Key returns the cache key of text under version.
func Key(version, text string) string {
	sum := sha256.Sum256([]byte(text))
	return KeyPrefix + version + ":" + hex.EncodeToString(sum[:])
}

// Tokenize returns cached sentences for text or computes and stores them.
// Concurrent calls for the same text share one computation.
func (c *TokenCache) Tokenize(ctx context.Context, text string) ([][]string, error) {
	key := Key(c.version, text)
	v, err, _ := c.group.Do(key, func() (any, error) {
		if sentences, ok := c.lookup(ctx, key); ok {
			return sentences, nil
		}
		sentences, err := c.next.Tokenize(ctx, text)
		if err != nil {
			return nil, err
		}
		c.store(ctx, key, sentences)
		return sentences, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([][]string), nil
}

func (c *TokenCache) lookup(ctx context.Context, key string) ([][]string, bool) {
	var raw string
	err := c.opts.Breaker.Execute(func() error {
		var err error
		raw, err = c.backend.Get(ctx, key)
		return err
	}, c.opts.IsMiss)
	switch {
	case err == nil:
	case c.opts.IsMiss(err):
		c.report(ResultMiss)
		return nil, false
	default:
		c.report(ResultError)
		c.logger.Debug("token cache lookup failed", "error", err)
		return nil, false
	}
	var sentences [][]string
	if err := json.Unmarshal([]byte(raw), &sentences); err != nil {
		c.report(ResultError)
		c.logger.Warn("discarding corrupt token cache entry", "key", key, "error", err)
		return nil, false
	}
	c.report(ResultHit)
	return sentences, true
}

func (c *TokenCache) store(ctx context.Context, key string, sentences [][]string) {
	data, err := json.Marshal(sentences)
	if err != nil {
		return
	}
	err = c.opts.Breaker.Execute(func() error {
		return c.backend.Set(ctx, key, string(data), c.opts.TTL)
	})
	if err != nil {
		c.logger.Debug("token cache store failed", "error", err)
	}
}

func (c *TokenCache) report(result string) {
	if c.opts.OnResult != nil {
		c.opts.OnResult(result)
	}
}
