package errkind_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/evolveapp/statusprobe/internal/errkind"
)

func TestError(t *testing.T) {
	tests := []struct {
		kind    error
		from    error
		format  string
		args    []interface{}
		message string
	}{
		{
			errkind.IO,
			errors.New("permission denied"),
			"write %s",
			[]interface{}{"history.json"},
			"write history.json: permission denied",
		},
		{
			errkind.Timeout,
			nil,
			"Timeout",
			nil,
			"Timeout",
		},
		{
			errkind.HTTPStatus,
			nil,
			"HTTP %d",
			[]interface{}{503},
			"HTTP 503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			err := errkind.New(tt.kind, tt.from, tt.format, tt.args...)

			if err.Error() != tt.message {
				t.Errorf("unexpected message: %s", err)
			}

			if !errors.Is(err, tt.kind) {
				t.Errorf("error is %#v but reports as not", tt.kind)
			}

			if tt.from != nil && !errors.Is(err, tt.from) {
				t.Errorf("error wraps %#v but reports as not", tt.from)
			}
		})
	}
}

func TestError_kindsAreExclusive(t *testing.T) {
	kinds := []error{
		errkind.Timeout,
		errkind.Connect,
		errkind.HTTPStatus,
		errkind.Transport,
		errkind.Parse,
		errkind.IO,
	}

	for i, kind := range kinds {
		err := errkind.New(kind, nil, "test %d", i)

		for j, other := range kinds {
			if i == j {
				continue
			}
			if errors.Is(err, other) {
				t.Errorf("%v reports as %v", kind, other)
			}
		}
	}
}

func TestError_wrapped(t *testing.T) {
	inner := errkind.New(errkind.Connect, nil, "Connection failed")
	outer := fmt.Errorf("probe healthz: %w", inner)

	if !errors.Is(outer, errkind.Connect) {
		t.Errorf("wrapped error lost its kind")
	}
}
