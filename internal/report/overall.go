package report

import (
	"github.com/evolveapp/statusprobe/internal/probe"
)

const (
	// OverallOK means every check passed.
	OverallOK Overall = iota

	// OverallDegraded means exactly one check failed.
	OverallDegraded

	// OverallOutage means two or more checks failed.
	OverallOutage
)

// Overall is the aggregate verdict over all checks of one run.
type Overall int8

// ParseOverall parses an overall status string.
// The second value reports whether the input was a valid overall status.
func ParseOverall(raw string) (Overall, bool) {
	switch raw {
	case "ok":
		return OverallOK, true
	case "degraded":
		return OverallDegraded, true
	case "outage":
		return OverallOutage, true
	default:
		return OverallOutage, false
	}
}

// String makes Overall a string.
func (o Overall) String() string {
	switch o {
	case OverallOK:
		return "ok"
	case OverallDegraded:
		return "degraded"
	default:
		return "outage"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Overall) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
//
// This function always returns nil. Unsupported input parses as
// OverallOutage.
func (o *Overall) UnmarshalText(text []byte) error {
	*o, _ = ParseOverall(string(text))
	return nil
}

// Aggregate reduces the checks of one run to the overall verdict.
// Every check counts the same; the endpoint's critical flag does not
// change the weight of its failure.
func Aggregate(checks []probe.Result) Overall {
	failures := 0
	for _, c := range checks {
		if c.Status == probe.StatusFail {
			failures++
		}
	}

	switch failures {
	case 0:
		return OverallOK
	case 1:
		return OverallDegraded
	default:
		return OverallOutage
	}
}
