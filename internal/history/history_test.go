package history_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/evolveapp/statusprobe/internal/history"
	"github.com/evolveapp/statusprobe/internal/probe"
)

func latency(ms int64) *int64 {
	return &ms
}

func parseTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("failed to parse time: %s", err)
	}
	return ts
}

func TestHistory_Add(t *testing.T) {
	h := history.New()

	results := []probe.Result{
		{Name: "healthz", Status: probe.StatusOK, LatencyMS: latency(50), Region: "gha"},
		{Name: "readyz", Status: probe.StatusOK, LatencyMS: latency(70), Region: "gha"},
	}
	h.Add(results, parseTime(t, "2025-01-01T12:00:00Z"))

	if len(h.Checks) != 1 {
		t.Fatalf("unexpected record count: %d", len(h.Checks))
	}

	want := history.DailySummary{
		"2025-01-01": {
			"healthz": {Up: 1, Down: 0, TotalLatencyMS: 50, CheckCount: 1},
			"readyz":  {Up: 1, Down: 0, TotalLatencyMS: 70, CheckCount: 1},
		},
	}
	if diff := cmp.Diff(want, h.DailySummary); diff != "" {
		t.Errorf("unexpected daily summary:\n%s", diff)
	}
}

func TestHistory_Add_failureWithoutLatency(t *testing.T) {
	h := history.New()

	h.Add([]probe.Result{
		{Name: "healthz", Status: probe.StatusFail, Region: "gha", Error: "Timeout"},
	}, parseTime(t, "2025-01-01T12:00:00Z"))
	h.Add([]probe.Result{
		{Name: "healthz", Status: probe.StatusFail, LatencyMS: latency(120), Region: "gha", Error: "HTTP 500"},
	}, parseTime(t, "2025-01-01T12:02:00Z"))

	got := h.DailySummary["2025-01-01"]["healthz"]
	want := history.DayStats{Up: 0, Down: 2, TotalLatencyMS: 120, CheckCount: 1}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected stats:\n%s", diff)
	}
}

func TestHistory_Prune(t *testing.T) {
	h := history.New()
	now := parseTime(t, "2025-04-01T00:00:00Z")

	timestamps := []string{
		"2024-12-01T00:00:00Z",
		"2025-01-01T00:00:00Z",
		"2025-03-31T23:59:59Z",
	}
	for _, ts := range timestamps {
		h.Add([]probe.Result{
			{Name: "healthz", Status: probe.StatusOK, LatencyMS: latency(10)},
		}, parseTime(t, ts))
	}

	h.Prune(90, now)

	cutoff := now.AddDate(0, 0, -90)
	for _, r := range h.Checks {
		if r.Timestamp.Before(cutoff) {
			t.Errorf("record at %s survived the cutoff", r.Timestamp)
		}
	}
	if len(h.Checks) != 2 {
		t.Errorf("unexpected record count after prune: %d", len(h.Checks))
	}

	cutoffDate := cutoff.Format(history.DateLayout)
	for date := range h.DailySummary {
		if date < cutoffDate {
			t.Errorf("summary date %s survived the cutoff", date)
		}
	}
	if _, ok := h.DailySummary["2024-12-01"]; ok {
		t.Errorf("stale summary date was kept")
	}
	if _, ok := h.DailySummary["2025-03-31"]; !ok {
		t.Errorf("recent summary date was dropped")
	}
}

func TestHistory_Prune_idempotent(t *testing.T) {
	h := history.New()
	now := parseTime(t, "2025-04-01T00:00:00Z")

	for _, ts := range []string{"2024-11-01T00:00:00Z", "2025-02-01T00:00:00Z", "2025-03-01T00:00:00Z"} {
		h.Add([]probe.Result{
			{Name: "healthz", Status: probe.StatusOK, LatencyMS: latency(10)},
		}, parseTime(t, ts))
	}

	h.Prune(90, now)

	before := h
	beforeChecks := append([]history.Record{}, h.Checks...)

	h.Prune(90, now)

	if diff := cmp.Diff(beforeChecks, h.Checks); diff != "" {
		t.Errorf("second prune changed the records:\n%s", diff)
	}
	if diff := cmp.Diff(before.DailySummary, h.DailySummary); diff != "" {
		t.Errorf("second prune changed the summary:\n%s", diff)
	}
}

func TestHistory_RecomputeDailySummary(t *testing.T) {
	h := history.New()

	runs := []struct {
		ts      string
		results []probe.Result
	}{
		{"2025-01-01T00:00:00Z", []probe.Result{
			{Name: "healthz", Status: probe.StatusOK, LatencyMS: latency(40)},
			{Name: "readyz", Status: probe.StatusFail, Error: "Timeout"},
		}},
		{"2025-01-01T00:02:00Z", []probe.Result{
			{Name: "healthz", Status: probe.StatusOK, LatencyMS: latency(60)},
			{Name: "readyz", Status: probe.StatusOK, LatencyMS: latency(90)},
		}},
		{"2025-01-02T00:00:00Z", []probe.Result{
			{Name: "healthz", Status: probe.StatusFail, LatencyMS: latency(800), Error: "HTTP 503"},
			{Name: "readyz", Status: probe.StatusOK, LatencyMS: latency(80)},
		}},
	}
	for _, run := range runs {
		h.Add(run.results, parseTime(t, run.ts))
	}

	if diff := cmp.Diff(h.RecomputeDailySummary(), h.DailySummary); diff != "" {
		t.Errorf("incremental summary diverged from recomputation:\n%s", diff)
	}
}

func TestDayStats(t *testing.T) {
	s := history.DayStats{Up: 3, Down: 1, TotalLatencyMS: 300, CheckCount: 3}

	if p := s.UptimePercent(); p != 75 {
		t.Errorf("unexpected uptime: %f", p)
	}
	if l := s.AvgLatencyMS(); l != 100 {
		t.Errorf("unexpected average latency: %d", l)
	}

	var zero history.DayStats
	if zero.UptimePercent() != 0 || zero.AvgLatencyMS() != 0 {
		t.Errorf("zero stats should report zero")
	}
}
