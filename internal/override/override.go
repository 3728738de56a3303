package override

import (
	"os"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// IncidentStatus is the lifecycle stage of an incident.
type IncidentStatus string

const (
	StatusInvestigating IncidentStatus = "investigating"
	StatusIdentified    IncidentStatus = "identified"
	StatusMonitoring    IncidentStatus = "monitoring"
	StatusResolved      IncidentStatus = "resolved"
)

// ParseIncidentStatus parses a status string.
// Unknown values parse as StatusInvestigating.
func ParseIncidentStatus(raw string) IncidentStatus {
	switch IncidentStatus(raw) {
	case StatusIdentified, StatusMonitoring, StatusResolved:
		return IncidentStatus(raw)
	default:
		return StatusInvestigating
	}
}

// IncidentImpact is the operator-declared severity of an incident.
type IncidentImpact string

const (
	ImpactNone     IncidentImpact = "none"
	ImpactMinor    IncidentImpact = "minor"
	ImpactMajor    IncidentImpact = "major"
	ImpactCritical IncidentImpact = "critical"
)

// ParseIncidentImpact parses an impact string.
// Unknown values parse as ImpactNone.
func ParseIncidentImpact(raw string) IncidentImpact {
	switch IncidentImpact(raw) {
	case ImpactMinor, ImpactMajor, ImpactCritical:
		return IncidentImpact(raw)
	default:
		return ImpactNone
	}
}

// Update is one entry in an incident's timeline.
type Update struct {
	Timestamp string         `json:"timestamp"`
	Message   string         `json:"message"`
	Status    IncidentStatus `json:"status,omitempty"`
}

// Incident is an operator-written incident entry.
// Timestamps stay as the strings the operator wrote; this program passes
// them through to the published document unchanged.
type Incident struct {
	ID                 string         `json:"id"`
	Title              string         `json:"title"`
	Status             IncidentStatus `json:"status"`
	Impact             IncidentImpact `json:"impact,omitempty"`
	CreatedAt          string         `json:"created_at"`
	ResolvedAt         string         `json:"resolved_at,omitempty"`
	Updates            []Update       `json:"updates"`
	AffectedComponents []string       `json:"affected_components,omitempty"`
}

// LatestUpdate returns the newest update entry, or false when there is none.
// Updates are kept in the order they were written, oldest first.
func (i Incident) LatestUpdate() (Update, bool) {
	if len(i.Updates) == 0 {
		return Update{}, false
	}
	return i.Updates[len(i.Updates)-1], true
}

// Document is the operator-supplied override. Any field that is present
// masks the computed value; absent fields leave the computed value alone.
type Document struct {
	Overall   *string    `json:"overall"`
	Message   *string    `json:"message"`
	Incidents []Incident `json:"incidents"`
}

// Neutral returns the override that overrides nothing.
func Neutral() Document {
	return Document{Incidents: []Incident{}}
}

// Resolver reads the override file. The file is written by operators, not
// by this program.
type Resolver struct {
	path   string
	logger *zap.Logger
}

func NewResolver(path string, logger *zap.Logger) Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Resolver{path: path, logger: logger}
}

// Load reads the override document. A missing, unreadable, or corrupt
// file yields the neutral override; operator input never fails a run.
func (r Resolver) Load() Document {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Warn("failed to read override, using neutral default",
				zap.String("path", r.path),
				zap.Error(err))
		}
		return Neutral()
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		r.logger.Warn("override file is corrupt, using neutral default",
			zap.String("path", r.path),
			zap.Error(err))
		return Neutral()
	}

	if doc.Incidents == nil {
		doc.Incidents = []Incident{}
	}
	for i := range doc.Incidents {
		doc.Incidents[i].Status = ParseIncidentStatus(string(doc.Incidents[i].Status))
		if impact := doc.Incidents[i].Impact; impact != "" {
			doc.Incidents[i].Impact = ParseIncidentImpact(string(impact))
		}
		if doc.Incidents[i].Updates == nil {
			doc.Incidents[i].Updates = []Update{}
		}
	}

	return doc
}
