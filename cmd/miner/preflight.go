package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/redis"
)

// preflight checks every enabled dependency and prints the report as JSON.
func preflight(ctx context.Context, cfg *config.Config) error {
	checker := health.NewChecker(5 * time.Second)
	if cfg.Postgres.Enabled {
		checker.Register("postgres", func(ctx context.Context) error {
			db, err := postgres.New(cfg.Postgres)
			if err != nil {
				return err
			}
			defer db.Close()
			return db.Ping(ctx)
		})
	}
	if cfg.Redis.Enabled {
		checker.Register("redis", func(ctx context.Context) error {
			rc, err := redis.NewClient(ctx, cfg.Redis)
			if err != nil {
				return err
			}
			defer rc.Close()
			return rc.Ping(ctx)
		})
	}
	if cfg.Kafka.Enabled {
		checker.Register("kafka", func(ctx context.Context) error {
			return kafka.Ping(ctx, cfg.Kafka.Brokers)
		})
	}
	report := checker.Run(ctx)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}
	return report.Err()
}
