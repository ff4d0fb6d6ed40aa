package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/internal/cache"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/internal/dataset"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/internal/pipeline"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/internal/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/resilience"
)

type flags struct {
	config     string
	input      string
	output     string
	fromRun    string
	flushCache bool
	check      bool
}

func main() {
	var f flags
	flag.StringVar(&f.config, "config", "configs/miner.yaml", "path to config file")
	flag.StringVar(&f.input, "input", "", "JSON Lines dataset to mine")
	flag.StringVar(&f.output, "output", "", "candidate table path (overrides output.path, empty for stdout)")
	flag.StringVar(&f.fromRun, "from-run", "", "export a stored run instead of mining")
	flag.BoolVar(&f.flushCache, "flush-token-cache", false, "drop cached tokens of the selected tagger before mining")
	flag.BoolVar(&f.check, "check", false, "check the enabled dependencies and exit")
	flag.Parse()

	cfg, err := config.Load(f.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(apperrors.ExitCode(err))
	}
	if f.output != "" {
		cfg.Output.Path = f.output
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(prometheus.NewRegistry())
		if cfg.Metrics.PushURL == "" {
			shutdown, err := m.StartServer(cfg.Metrics.Port)
			if err != nil {
				slog.Warn("metrics server disabled", "error", err)
			} else {
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = shutdown(shutdownCtx)
				}()
			}
		}
	}

	runIDs, err := run(ctx, cfg, f, m)
	code := apperrors.ExitCode(err)
	if m != nil {
		m.RunsTotal.WithLabelValues(status(code)).Inc()
		if cfg.Metrics.PushURL != "" {
			pushID := ""
			if len(runIDs) == 1 {
				pushID = runIDs[0]
			}
			if perr := m.Push(context.Background(), cfg.Metrics.PushURL, cfg.Metrics.Job, pushID); perr != nil {
				slog.Warn("metrics push failed", "error", perr)
			}
		}
	}
	if err != nil {
		slog.Error("mining failed", "stage", apperrors.Stage(err), "error", err, "exit_code", code)
		stop()
		os.Exit(code)
	}
}

func run(ctx context.Context, cfg *config.Config, f flags, m *metrics.Metrics) ([]string, error) {
	if f.check {
		return nil, preflight(ctx, cfg)
	}
	if f.fromRun != "" {
		return []string{f.fromRun}, exportStoredRun(ctx, cfg, f.fromRun)
	}
	if f.input == "" {
		return nil, apperrors.New(apperrors.ErrConfiguration, "config", "-input is required")
	}

	tok := newTokenizer(cfg, m)
	version := tok.Version()
	var textTok corpus.TextTokenizer = tok
	if cfg.Redis.Enabled {
		rc, closeCache, err := newTokenCache(ctx, cfg, tok, f.flushCache, m)
		if err != nil {
			slog.Warn("token cache disabled", "error", err)
		} else {
			defer closeCache()
			textTok = rc
		}
	}

	p, err := pipeline.New(textTok, version, cfg, m)
	if err != nil {
		return nil, err
	}

	data, err := dataset.ReadFile(f.input)
	if err != nil {
		return nil, err
	}
	for _, w := range data.Warnings {
		slog.Debug("data quality", "document", w.DocumentID, "field", w.Field, "message", w.Message)
		if m != nil {
			m.DataQualityWarnings.WithLabelValues(w.Field).Inc()
		}
	}
	if len(data.Warnings) > 0 {
		slog.Warn("dataset warnings", "warnings", len(data.Warnings), "documents", len(data.Documents))
	}

	sinks, err := openSinks(ctx, cfg, m)
	if err != nil {
		return nil, err
	}
	defer sinks.Close()

	clusters := cfg.Analysis.Clusters
	if len(clusters) == 0 {
		clusters = []string{""}
	}
	var runIDs []string
	for _, cluster := range clusters {
		docs := data.Documents
		if cluster != "" {
			docs = corpus.FilterCluster(docs, cluster)
			if len(docs) == 0 {
				slog.Warn("cluster has no documents, skipping", "cluster", cluster)
				continue
			}
		}
		res, err := p.Run(ctx, cluster, docs)
		if err != nil {
			return runIDs, err
		}
		runIDs = append(runIDs, res.Run.ID)
		if err := sinks.Write(ctx, res, len(clusters) > 1); err != nil {
			return runIDs, err
		}
	}
	return runIDs, nil
}

func newTokenizer(cfg *config.Config, m *metrics.Metrics) *tokenizer.Tokenizer {
	var tagger tokenizer.Tagger = tokenizer.NewProseTagger()
	if cfg.Tokenizer.Tagger == config.TaggerRules {
		tagger = tokenizer.NewRuleTagger()
	}
	var opts []tokenizer.Option
	if m != nil {
		opts = append(opts, tokenizer.WithExcludeHook(func(rule string) {
			m.TokensExcluded.WithLabelValues(rule).Inc()
		}))
	}
	return tokenizer.New(tagger, opts...)
}

func newTokenCache(ctx context.Context, cfg *config.Config, tok *tokenizer.Tokenizer, flush bool, m *metrics.Metrics) (*cache.TokenCache, func(), error) {
	rc, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if flush {
		pattern := cache.KeyPrefix + tok.Version() + ":*"
		n, err := rc.FlushByPattern(ctx, pattern)
		if err != nil {
			_ = rc.Close()
			return nil, nil, err
		}
		slog.Info("token cache flushed", "pattern", pattern, "deleted", n)
	}
	breakerCfg := resilience.CircuitBreakerConfig{}
	opts := cache.Options{TTL: cfg.Redis.CacheTTL, IsMiss: redis.IsNilError}
	if m != nil {
		breakerCfg.OnStateChange = func(name string, s resilience.State) {
			m.CircuitBreakerState.WithLabelValues(name).Set(float64(s))
		}
		opts.OnResult = func(result string) {
			m.TokenCacheRequests.WithLabelValues(result).Inc()
		}
	}
	opts.Breaker = resilience.NewCircuitBreaker("token-cache", breakerCfg)
	closeFn := func() {
		if err := rc.Close(); err != nil {
			slog.Warn("closing redis", "error", err)
		}
	}
	return cache.New(tok, rc, tok.Version(), opts), closeFn, nil
}

func status(code int) string {
	switch code {
	case apperrors.ExitOK:
		return "ok"
	case apperrors.ExitConfiguration:
		return "configuration"
	case apperrors.ExitInvariant:
		return "invariant"
	case apperrors.ExitInput:
		return "input"
	default:
		return "failure"
	}
}
