package report

import (
	"io"
	"time"

	"github.com/goccy/go-json"

	"github.com/evolveapp/statusprobe/internal/override"
	"github.com/evolveapp/statusprobe/internal/probe"
)

const (
	// Version of the published document schema.
	Version = 1

	// TTLSeconds tells consumers how long the document stays fresh.
	TTLSeconds = 120

	// TimeLayout is the generated_at format: UTC, second precision.
	TimeLayout = "2006-01-02T15:04:05Z"
)

// Document is the published status artifact, rebuilt from scratch on every
// run.
type Document struct {
	Version     int                 `json:"version"`
	GeneratedAt string              `json:"generated_at"`
	TTLSeconds  int                 `json:"ttl_seconds"`
	Overall     Overall             `json:"overall"`
	Message     string              `json:"message"`
	Incidents   []override.Incident `json:"incidents"`
	Checks      []probe.Result      `json:"checks"`
}

// New assembles the published document from the run's checks and the
// operator override. The override masks the computed verdict when present
// but never mixes with it; incidents always come from the override.
func New(checks []probe.Result, ov override.Document, now time.Time) Document {
	doc := Document{
		Version:     Version,
		GeneratedAt: now.UTC().Format(TimeLayout),
		TTLSeconds:  TTLSeconds,
		Overall:     Aggregate(checks),
		Incidents:   ov.Incidents,
		Checks:      checks,
	}

	if ov.Overall != nil {
		if o, ok := ParseOverall(*ov.Overall); ok {
			doc.Overall = o
		}
	}
	if ov.Message != nil {
		doc.Message = *ov.Message
	}

	if doc.Incidents == nil {
		doc.Incidents = []override.Incident{}
	}
	if doc.Checks == nil {
		doc.Checks = []probe.Result{}
	}

	return doc
}

// FailSafe builds the document published when the run itself broke: a
// declared outage with a single synthetic check that carries the error.
func FailSafe(runErr error, region string, now time.Time) Document {
	return Document{
		Version:     Version,
		GeneratedAt: now.UTC().Format(TimeLayout),
		TTLSeconds:  TTLSeconds,
		Overall:     OverallOutage,
		Message:     "Status check script error",
		Incidents:   []override.Incident{},
		Checks: []probe.Result{
			{
				Name:   "script",
				Status: probe.StatusFail,
				Region: region,
				Error:  runErr.Error(),
			},
		},
	}
}

// Write emits the document as indented JSON.
func (d Document) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
