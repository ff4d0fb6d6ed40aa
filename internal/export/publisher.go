package export

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/internal/candidate"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/internal/store"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/resilience"
)

// EventPublisher is implemented by *kafka.Producer.
type EventPublisher interface {
	Publish(ctx context.Context, event kafka.Event) error
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// CandidateEvent carries one row of the candidate table.
type CandidateEvent struct {
	RunID    string `json:"run_id"`
	Cluster  string `json:"cluster,omitempty"`
	Position int    `json:"position"`
	candidate.Candidate
}

// RunCompleteEvent is published after every candidate of a run.
type RunCompleteEvent struct {
	RunID      string         `json:"run_id"`
	Cluster    string         `json:"cluster,omitempty"`
	Documents  int            `json:"documents"`
	Tokens     int            `json:"tokens"`
	Threshold  int            `json:"threshold"`
	Warnings   int            `json:"warnings"`
	Candidates int            `json:"candidates"`
	ByOrder    map[string]int `json:"candidates_by_order"`
	FinishedAt time.Time      `json:"finished_at"`
}

// PublisherConfig tunes batching and the retry of each write.
type PublisherConfig struct {
	BatchSize int
	Timeout   time.Duration
	Retry     resilience.RetryConfig
}

// Publisher sends a finished run to two topics: candidates, then the
// completion event. Events are keyed by run id so a run stays on one
// partition and in table order.
type Publisher struct {
	candidates EventPublisher
	complete   EventPublisher
	cfg        PublisherConfig
	now        func() time.Time
	logger     *slog.Logger
}

func NewPublisher(candidates, complete EventPublisher, cfg PublisherConfig) *Publisher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Publisher{
		candidates: candidates,
		complete:   complete,
		cfg:        cfg,
		now:        time.Now,
		logger:     slog.Default().With("component", "result-publisher"),
	}
}

// PublishRun publishes table in batches, then the completion event.
func (p *Publisher) PublishRun(ctx context.Context, run store.Run, table candidate.Table) error {
	for start := 0; start < len(table); start += p.cfg.BatchSize {
		end := min(start+p.cfg.BatchSize, len(table))
		batch := make([]kafka.Event, 0, end-start)
		for i := start; i < end; i++ {
			batch = append(batch, kafka.Event{
				Key: run.ID,
				Value: CandidateEvent{
					RunID:     run.ID,
					Cluster:   run.Cluster,
					Position:  i,
					Candidate: table[i],
				},
			})
		}
		if err := p.send(ctx, "publish-candidates", func(ctx context.Context) error {
			return p.candidates.PublishBatch(ctx, batch)
		}); err != nil {
			return fmt.Errorf("publishing candidates %d-%d of run %s: %w", start, end-1, run.ID, err)
		}
	}

	counts := table.CountByOrder()
	byOrder := make(map[string]int, len(counts)-1)
	for order := 1; order < len(counts); order++ {
		byOrder[strconv.Itoa(order)] = counts[order]
	}
	event := kafka.Event{
		Key: run.ID,
		Value: RunCompleteEvent{
			RunID:      run.ID,
			Cluster:    run.Cluster,
			Documents:  run.Documents,
			Tokens:     run.Tokens,
			Threshold:  run.Threshold,
			Warnings:   run.Warnings,
			Candidates: len(table),
			ByOrder:    byOrder,
			FinishedAt: p.now().UTC(),
		},
	}
	if err := p.send(ctx, "publish-run-complete", func(ctx context.Context) error {
		return p.complete.Publish(ctx, event)
	}); err != nil {
		return fmt.Errorf("publishing completion of run %s: %w", run.ID, err)
	}
	p.logger.Info("run published", "run_id", run.ID, "candidates", len(table))
	return nil
}

func (p *Publisher) send(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	return resilience.Retry(ctx, name, p.cfg.Retry, func() error {
		return resilience.WithTimeout(ctx, p.cfg.Timeout, name, fn)
	})
}
