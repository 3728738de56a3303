package history

import (
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"

	"github.com/evolveapp/statusprobe/internal/probe"
)

const (
	// TimeLayout is the timestamp format used in the history file.
	TimeLayout = "2006-01-02T15:04:05Z"

	// DateLayout is the key format of the daily summary.
	DateLayout = "2006-01-02"
)

// EndpointStatus is the per-endpoint cell of one history record.
type EndpointStatus struct {
	Status    probe.Status `json:"status"`
	LatencyMS *int64       `json:"latency_ms"`
}

// Record is the outcome of one run: a timestamp plus one cell per endpoint.
//
// It marshals as a flat JSON object whose "timestamp" key sits next to one
// key per endpoint name, so it needs a hand-written codec.
type Record struct {
	Timestamp time.Time
	Endpoints map[string]EndpointStatus
}

// MarshalJSON implements json.Marshaler.
// Endpoint keys are written in sorted order so the file is stable.
func (r Record) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, len(r.Endpoints))
	for name := range r.Endpoints {
		names = append(names, name)
	}
	sort.Strings(names)

	buf := []byte(`{"timestamp":`)

	ts, err := json.Marshal(r.Timestamp.UTC().Format(TimeLayout))
	if err != nil {
		return nil, err
	}
	buf = append(buf, ts...)

	for _, name := range names {
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		cell, err := json.Marshal(r.Endpoints[name])
		if err != nil {
			return nil, err
		}
		buf = append(buf, ',')
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, cell...)
	}

	return append(buf, '}'), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Endpoints = make(map[string]EndpointStatus, len(raw))

	for key, value := range raw {
		if key == "timestamp" {
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return err
			}
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %w", err)
			}
			r.Timestamp = t.UTC()
			continue
		}

		var cell EndpointStatus
		if err := json.Unmarshal(value, &cell); err != nil {
			return err
		}
		r.Endpoints[key] = cell
	}

	return nil
}

// DayStats is the rollup of one endpoint on one date.
type DayStats struct {
	Up             int   `json:"up"`
	Down           int   `json:"down"`
	TotalLatencyMS int64 `json:"total_latency_ms"`
	CheckCount     int   `json:"check_count"`
}

// UptimePercent reports the share of successful checks on this date.
func (s DayStats) UptimePercent() float64 {
	total := s.Up + s.Down
	if total == 0 {
		return 0
	}
	return float64(s.Up) / float64(total) * 100
}

// AvgLatencyMS reports the mean latency of the checks that recorded one.
func (s DayStats) AvgLatencyMS() int64 {
	if s.CheckCount == 0 {
		return 0
	}
	return s.TotalLatencyMS / int64(s.CheckCount)
}

// DailySummary maps date to endpoint name to that day's rollup.
type DailySummary map[string]map[string]DayStats

// History is the full persisted state: the run-by-run records plus the
// daily rollup maintained incrementally alongside them.
type History struct {
	Checks       []Record     `json:"checks"`
	DailySummary DailySummary `json:"daily_summary"`
}

// New returns an empty History.
func New() History {
	return History{
		Checks:       []Record{},
		DailySummary: DailySummary{},
	}
}

// Add appends one record built from the results of a run, and folds the run
// into the daily summary. Call it exactly once per run, after all probing
// is done.
func (h *History) Add(results []probe.Result, ts time.Time) {
	ts = ts.UTC()

	record := Record{
		Timestamp: ts,
		Endpoints: make(map[string]EndpointStatus, len(results)),
	}

	date := ts.Format(DateLayout)
	if h.DailySummary == nil {
		h.DailySummary = DailySummary{}
	}
	if h.DailySummary[date] == nil {
		h.DailySummary[date] = map[string]DayStats{}
	}

	for _, r := range results {
		cell := EndpointStatus{Status: r.Status}
		if r.LatencyMS != nil {
			v := *r.LatencyMS
			cell.LatencyMS = &v
		}
		record.Endpoints[r.Name] = cell

		stats := h.DailySummary[date][r.Name]
		if r.Status == probe.StatusOK {
			stats.Up++
		} else {
			stats.Down++
		}
		if r.LatencyMS != nil {
			stats.TotalLatencyMS += *r.LatencyMS
			stats.CheckCount++
		}
		h.DailySummary[date][r.Name] = stats
	}

	h.Checks = append(h.Checks, record)
}

// Prune drops everything older than the retention window. It truncates
// both structures with the same cutoff and never recomputes the summary,
// so the two stay consistent with each other.
func (h *History) Prune(retentionDays int, now time.Time) {
	cutoff := now.UTC().Add(-time.Duration(retentionDays) * 24 * time.Hour)

	kept := h.Checks[:0]
	for _, r := range h.Checks {
		if !r.Timestamp.Before(cutoff) {
			kept = append(kept, r)
		}
	}
	h.Checks = kept

	cutoffDate := cutoff.Format(DateLayout)
	for date := range h.DailySummary {
		if date < cutoffDate {
			delete(h.DailySummary, date)
		}
	}
}

// RecomputeDailySummary derives the daily summary from scratch from the
// records. The incremental summary kept by Add must always equal this.
func (h History) RecomputeDailySummary() DailySummary {
	summary := DailySummary{}

	for _, r := range h.Checks {
		date := r.Timestamp.Format(DateLayout)
		if summary[date] == nil {
			summary[date] = map[string]DayStats{}
		}

		for name, cell := range r.Endpoints {
			stats := summary[date][name]
			if cell.Status == probe.StatusOK {
				stats.Up++
			} else {
				stats.Down++
			}
			if cell.LatencyMS != nil {
				stats.TotalLatencyMS += *cell.LatencyMS
				stats.CheckCount++
			}
			summary[date][name] = stats
		}
	}

	return summary
}
