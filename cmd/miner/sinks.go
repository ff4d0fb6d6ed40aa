package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/internal/export"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/internal/pipeline"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/internal/store"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/postgres"
)

// sinks fans a finished run out to every configured destination. CSV is
// always written; Postgres and Kafka only when enabled.
type sinks struct {
	output    config.OutputConfig
	store     *store.Store
	db        *postgres.Client
	publisher *export.Publisher
	producers []*kafka.Producer
	metrics   *metrics.Metrics
}

func openSinks(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*sinks, error) {
	s := &sinks{output: cfg.Output, metrics: m}
	if cfg.Postgres.Enabled {
		db, err := postgres.New(cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrUnavailable, err)
		}
		s.db = db
		s.store = store.New(db)
		if err := s.store.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
	}
	if cfg.Kafka.Enabled {
		candidates := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.Candidates)
		complete := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.RunComplete)
		s.producers = append(s.producers, candidates, complete)
		s.publisher = export.NewPublisher(candidates, complete, export.PublisherConfig{})
	}
	return s, nil
}

// Write stores res in every sink. perCluster suffixes file names with the
// cluster so that runs do not overwrite each other.
func (s *sinks) Write(ctx context.Context, res *pipeline.Result, perCluster bool) error {
	cluster := ""
	if perCluster {
		cluster = res.Run.Cluster
	}
	err := s.writeTable(clusterPath(s.output.Path, cluster), func(w io.Writer) error {
		return export.WriteCandidates(w, res.Table)
	})
	s.count("csv", err)
	if err != nil {
		return err
	}
	if res.Search != nil && s.output.SearchPath != "" {
		err := export.WriteFile(clusterPath(s.output.SearchPath, cluster), func(w io.Writer) error {
			return export.WriteOccurrences(w, res.Search.Occurrences)
		})
		s.count("search-csv", err)
		if err != nil {
			return err
		}
	}
	if s.store != nil {
		err := s.store.SaveRun(ctx, res.Run, res.Table)
		s.count("postgres", err)
		if err != nil {
			return err
		}
	}
	if s.publisher != nil {
		err := s.publisher.PublishRun(ctx, res.Run, res.Table)
		s.count("kafka", err)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *sinks) writeTable(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}
	return export.WriteFile(path, write)
}

func (s *sinks) count(sink string, err error) {
	if s.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.SinkWrites.WithLabelValues(sink, status).Inc()
}

func (s *sinks) Close() {
	for _, p := range s.producers {
		if err := p.Close(); err != nil {
			slog.Warn("closing kafka producer", "error", err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			slog.Warn("closing postgres", "error", err)
		}
	}
}

// clusterPath turns "out/terms.csv" into "out/terms-<cluster>.csv".
func clusterPath(path, cluster string) string {
	if path == "" || cluster == "" {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + cluster + ext
}

// exportStoredRun writes a run loaded from Postgres to the configured output.
func exportStoredRun(ctx context.Context, cfg *config.Config, runID string) error {
	if !cfg.Postgres.Enabled {
		return apperrors.New(apperrors.ErrConfiguration, "config", "-from-run needs postgres.enabled")
	}
	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrUnavailable, err)
	}
	defer db.Close()
	run, table, err := store.New(db).LoadRun(ctx, runID)
	if err != nil {
		return err
	}
	slog.Info("exporting stored run", "run_id", run.ID, "cluster", run.Cluster, "candidates", len(table))
	s := &sinks{output: cfg.Output}
	return s.writeTable(cfg.Output.Path, func(w io.Writer) error {
		return export.WriteCandidates(w, table)
	})
}
