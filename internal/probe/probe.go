package probe

// Endpoint is one health-check target.
//
// Critical is carried from configuration but does not change how failures
// are counted. Every endpoint weighs the same in the overall verdict.
type Endpoint struct {
	Name     string `mapstructure:"name" json:"name"`
	URL      string `mapstructure:"url" json:"url"`
	Critical bool   `mapstructure:"critical" json:"critical"`
}

const (
	// StatusFail means the endpoint did not answer with a 2xx response.
	StatusFail Status = iota

	// StatusOK means the endpoint answered with a 2xx response.
	StatusOK
)

// Status is the outcome of a single check.
type Status int8

// ParseStatus parses a status string.
//
// Anything that is not "ok" parses as StatusFail.
func ParseStatus(raw string) Status {
	if raw == "ok" {
		return StatusOK
	}
	return StatusFail
}

// String makes Status a string.
func (s Status) String() string {
	if s == StatusOK {
		return "ok"
	}
	return "fail"
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
//
// This function always returns nil.
func (s *Status) UnmarshalText(text []byte) error {
	*s = ParseStatus(string(text))
	return nil
}

// Result is the outcome of checking one endpoint.
type Result struct {
	Name string `json:"name"`

	Status Status `json:"status"`

	// LatencyMS is the elapsed time of the attempt that produced the final
	// status. It is nil when no attempt got an HTTP response at all.
	LatencyMS *int64 `json:"latency_ms"`

	Region string `json:"region"`

	Error string `json:"error,omitempty"`
}
