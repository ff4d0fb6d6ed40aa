package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestHandlerExposesMiningMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.RunsTotal.WithLabelValues("ok").Inc()
	m.TokensExcluded.WithLabelValues("stop-word").Add(3)
	m.CandidatesByOrder.WithLabelValues("2").Set(17)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`mining_runs_total{status="ok"} 1`,
		`mining_tokens_excluded_total{rule="stop-word"} 3`,
		`mining_candidates{order="2"} 17`,
		"# HELP mining_tokens_excluded_total Tokens removed from the analysis stream by exclusion rule. Texts served from the token cache are not counted.",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in exposition", want)
		}
	}
}

func TestNewIsolatedRegistries(t *testing.T) {
	// Two runs in one process must not collide on registration.
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}

func TestPush(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := New(prometheus.NewRegistry())
	m.DocumentsProcessed.Add(12)
	if err := m.Push(context.Background(), srv.URL, "terminology-miner", "abc123"); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if gotPath != "/metrics/job/terminology-miner/run_id/abc123" {
		t.Errorf("unexpected push path %q", gotPath)
	}
	if gotBody == "" {
		t.Error("expected a non-empty push body")
	}
}

func TestPushFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	m := New(prometheus.NewRegistry())
	if err := m.Push(context.Background(), srv.URL, "job", ""); err == nil {
		t.Error("expected error on 500 response")
	}
}
