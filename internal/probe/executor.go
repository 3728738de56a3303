package probe

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/evolveapp/statusprobe/internal/errkind"
)

var (
	UserAgent = "statusprobe health check"
)

const (
	REDIRECT_MAX    = 10
	DEFAULT_TIMEOUT = 5 * time.Second
)

var (
	ErrRedirectLoopDetected = errors.New("redirect loop detected")
)

func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) > REDIRECT_MAX {
		return ErrRedirectLoopDetected
	}
	return nil
}

// Config is the set of knobs for an Executor.
type Config struct {
	// Region tag stamped onto every Result.
	Region string

	// Timeout bounds each attempt, not the whole ladder.
	Timeout time.Duration

	// FallbackHost, when set, is tried after every attempt on the
	// endpoint's own host has failed.
	FallbackHost string

	// FallbackPaths maps a primary path to the alternate paths that are
	// tried when the primary answers not-found.
	FallbackPaths map[string][]string
}

// Executor checks endpoints over HTTP and classifies the outcomes.
// Errors never escape it; every check produces exactly one Result.
type Executor struct {
	client *http.Client
	conf   Config
	logger *zap.Logger
}

func NewExecutor(conf Config, logger *zap.Logger) *Executor {
	if conf.Timeout <= 0 {
		conf.Timeout = DEFAULT_TIMEOUT
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Executor{
		client: &http.Client{
			Transport: &http.Transport{
				DisableKeepAlives: true,
			},
			CheckRedirect: checkRedirect,
		},
		conf:   conf,
		logger: logger,
	}
}

// ExecuteAll checks every endpoint and returns one Result per endpoint, in
// the given order. Checks run concurrently since no result depends on
// another.
func (x *Executor) ExecuteAll(ctx context.Context, endpoints []Endpoint) []Result {
	results := make([]Result, len(endpoints))

	var wg sync.WaitGroup
	for i, ep := range endpoints {
		wg.Add(1)
		go func(i int, ep Endpoint) {
			defer wg.Done()
			results[i] = x.Check(ctx, ep)
		}(i, ep)
	}
	wg.Wait()

	return results
}

// Check probes a single endpoint, walking the fallback ladder until an
// attempt answers 2xx or the ladder is exhausted.
func (x *Executor) Check(ctx context.Context, ep Endpoint) Result {
	result := Result{Name: ep.Name, Status: StatusFail, Region: x.conf.Region}

	u, err := url.Parse(ep.URL)
	if err != nil {
		result.Error = errkind.New(errkind.Parse, err, "invalid URL").Error()
		return result
	}
	if u.Path == "" {
		u.Path = "/"
	}

	last, lastErr := x.headOrGet(ctx, u)
	if lastErr == nil && is2xx(last.code) {
		return finalize(result, last, nil)
	}

	// A not-found answer usually means the health route moved.
	// Walk the declared alternates on the same host first.
	if lastErr == nil && (last.code == http.StatusNotFound || last.code == http.StatusGone) {
		for _, alt := range x.conf.FallbackPaths[u.Path] {
			last, lastErr = x.headOrGet(ctx, withPath(u, alt))
			if lastErr == nil && is2xx(last.code) {
				return finalize(result, last, nil)
			}
		}
	}

	if x.conf.FallbackHost != "" {
		for _, p := range append([]string{u.Path}, x.conf.FallbackPaths[u.Path]...) {
			last, lastErr = x.headOrGet(ctx, withHost(withPath(u, p), x.conf.FallbackHost))
			if lastErr == nil && is2xx(last.code) {
				return finalize(result, last, nil)
			}
		}
	}

	result = finalize(result, last, lastErr)

	x.logger.Debug("check failed",
		zap.String("endpoint", ep.Name),
		zap.String("error", result.Error))

	return result
}

type attempt struct {
	code      int
	latencyMS int64
}

// headOrGet issues a lightweight HEAD probe, falling back to GET when the
// server rejects the method.
func (x *Executor) headOrGet(ctx context.Context, u *url.URL) (attempt, error) {
	a, err := x.attempt(ctx, http.MethodHead, u)
	if err == nil && (a.code == http.StatusMethodNotAllowed || a.code == http.StatusNotImplemented) {
		return x.attempt(ctx, http.MethodGet, u)
	}
	return a, err
}

func (x *Executor) attempt(ctx context.Context, method string, u *url.URL) (attempt, error) {
	ctx, cancel := context.WithTimeout(ctx, x.conf.Timeout)
	defer cancel()

	// Mark the request as synthetic traffic. The marker lives in the query
	// string only, so path matching on the ladder is unaffected.
	target := *u
	qs := target.Query()
	qs.Set("synthetic", "1")
	target.RawQuery = qs.Encode()

	req, err := http.NewRequestWithContext(ctx, method, target.String(), nil)
	if err != nil {
		return attempt{}, errkind.New(errkind.Transport, err, "")
	}
	req.Header.Set("User-Agent", UserAgent)

	st := time.Now()
	resp, err := x.client.Do(req)
	latency := time.Since(st).Milliseconds()

	if err != nil {
		return attempt{}, classify(err)
	}

	io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
	resp.Body.Close()

	return attempt{code: resp.StatusCode, latencyMS: latency}, nil
}

// finalize fills the latency and error fields from the last attempt.
// Latency always belongs to the attempt that decided the status; it stays
// nil when no attempt got an HTTP response at all.
func finalize(r Result, a attempt, err error) Result {
	if err != nil {
		r.Error = err.Error()
		return r
	}

	r.LatencyMS = &a.latencyMS
	if is2xx(a.code) {
		r.Status = StatusOK
	} else {
		r.Error = errkind.New(errkind.HTTPStatus, nil, "HTTP %d", a.code).Error()
	}
	return r
}

func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errkind.New(errkind.Timeout, nil, "Timeout")
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return errkind.New(errkind.Timeout, nil, "Timeout")
	}

	dnsErr := &net.DNSError{}
	opErr := &net.OpError{}

	if errors.As(err, &dnsErr) {
		return errkind.New(errkind.Connect, nil, "Connection failed")
	}
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return errkind.New(errkind.Connect, nil, "Connection failed")
	}

	return errkind.New(errkind.Transport, err, "")
}

func is2xx(code int) bool {
	return 200 <= code && code <= 299
}

func withPath(u *url.URL, path string) *url.URL {
	ucopy := *u
	ucopy.Path = path
	return &ucopy
}

func withHost(u *url.URL, host string) *url.URL {
	ucopy := *u
	ucopy.Host = host
	return &ucopy
}
