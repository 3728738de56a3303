package override_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/evolveapp/statusprobe/internal/override"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "override.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to prepare file: %s", err)
	}
	return path
}

func TestResolver_Load(t *testing.T) {
	path := writeFile(t, `{
		"overall": "outage",
		"message": "Planned maintenance",
		"incidents": [
			{
				"id": "inc-1",
				"title": "Database failover",
				"status": "monitoring",
				"impact": "major",
				"created_at": "2025-01-01T10:00:00Z",
				"updates": [
					{"timestamp": "2025-01-01T10:00:00Z", "message": "Investigating"},
					{"timestamp": "2025-01-01T10:30:00Z", "message": "Failover complete", "status": "monitoring"}
				]
			}
		]
	}`)

	doc := override.NewResolver(path, nil).Load()

	if doc.Overall == nil || *doc.Overall != "outage" {
		t.Errorf("unexpected overall: %v", doc.Overall)
	}
	if doc.Message == nil || *doc.Message != "Planned maintenance" {
		t.Errorf("unexpected message: %v", doc.Message)
	}
	if len(doc.Incidents) != 1 {
		t.Fatalf("unexpected incident count: %d", len(doc.Incidents))
	}

	inc := doc.Incidents[0]
	if inc.Status != override.StatusMonitoring {
		t.Errorf("unexpected status: %s", inc.Status)
	}
	if inc.Impact != override.ImpactMajor {
		t.Errorf("unexpected impact: %s", inc.Impact)
	}

	last, ok := inc.LatestUpdate()
	if !ok {
		t.Fatalf("expected an update")
	}
	if last.Message != "Failover complete" {
		t.Errorf("unexpected latest update: %q", last.Message)
	}
}

func TestResolver_Load_missing(t *testing.T) {
	doc := override.NewResolver(filepath.Join(t.TempDir(), "nope.json"), nil).Load()

	if diff := cmp.Diff(override.Neutral(), doc); diff != "" {
		t.Errorf("missing file should load as neutral:\n%s", diff)
	}
}

func TestResolver_Load_corrupt(t *testing.T) {
	path := writeFile(t, `{"overall": `)

	doc := override.NewResolver(path, nil).Load()

	if diff := cmp.Diff(override.Neutral(), doc); diff != "" {
		t.Errorf("corrupt file should load as neutral:\n%s", diff)
	}
}

func TestResolver_Load_unknownEnums(t *testing.T) {
	path := writeFile(t, `{
		"incidents": [
			{"id": "inc-1", "title": "x", "status": "exploded", "impact": "apocalyptic", "created_at": "2025-01-01T00:00:00Z"}
		]
	}`)

	doc := override.NewResolver(path, nil).Load()

	if doc.Incidents[0].Status != override.StatusInvestigating {
		t.Errorf("unknown status should normalize: %s", doc.Incidents[0].Status)
	}
	if doc.Incidents[0].Impact != override.ImpactNone {
		t.Errorf("unknown impact should normalize: %s", doc.Incidents[0].Impact)
	}
	if doc.Incidents[0].Updates == nil {
		t.Errorf("updates should never be nil")
	}
}

func TestParseIncidentStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want override.IncidentStatus
	}{
		{"investigating", override.StatusInvestigating},
		{"identified", override.StatusIdentified},
		{"monitoring", override.StatusMonitoring},
		{"resolved", override.StatusResolved},
		{"", override.StatusInvestigating},
		{"nonsense", override.StatusInvestigating},
	}

	for _, tt := range tests {
		if got := override.ParseIncidentStatus(tt.raw); got != tt.want {
			t.Errorf("ParseIncidentStatus(%q) = %s", tt.raw, got)
		}
	}
}
