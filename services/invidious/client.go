package invidious

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuzutube/gateway/utils"
	"go.uber.org/zap"
)

const (
	defaultTimeout  = 5 * time.Second
	deadlineMargin  = time.Second
	outcomeSuccess  = "success"
	outcomeExhaust  = "exhausted"
	outcomeRejected = "malformed"
)

// Recorder receives per-attempt and per-resolution observations.
type Recorder interface {
	ObserveAttempt(instance, outcome string, elapsed time.Duration)
	ObserveResolution(kind, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveAttempt(string, string, time.Duration) {}
func (nopRecorder) ObserveResolution(string, string)             {}

// Options configures a Client. Instances is copied at construction.
type Options struct {
	Instances []string
	// Timeout bounds a single instance attempt.
	Timeout time.Duration
	// ResolveDeadline bounds a whole pass. Values below
	// Timeout*len(Instances) plus a one second margin are raised to it.
	ResolveDeadline time.Duration
	UserAgent       string

	Transport Transport
	Recorder  Recorder
	Logger    *zap.Logger
}

// Client resolves logical resources against an ordered list of instances,
// returning the first instance that answers. It holds no mutable state and
// is safe for concurrent use.
type Client struct {
	instances []string
	timeout   time.Duration
	deadline  time.Duration
	transport Transport
	recorder  Recorder
	logger    *zap.Logger
}

// NewClient creates a Client. A nil Transport gets a RestyTransport.
func NewClient(opts Options) (*Client, error) {
	if len(opts.Instances) == 0 {
		return nil, errors.New("invidious: at least one instance is required")
	}

	instances := make([]string, len(opts.Instances))
	for i, instance := range opts.Instances {
		instance = strings.TrimRight(strings.TrimSpace(instance), "/")
		if instance == "" {
			return nil, fmt.Errorf("invidious: instance %d is empty", i)
		}
		instances[i] = instance
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	// The pass deadline never undercuts one full attempt per instance.
	deadline := timeout*time.Duration(len(instances)) + deadlineMargin
	if opts.ResolveDeadline > deadline {
		deadline = opts.ResolveDeadline
	}

	c := &Client{
		instances: instances,
		timeout:   timeout,
		deadline:  deadline,
		transport: opts.Transport,
		recorder:  opts.Recorder,
		logger:    opts.Logger,
	}
	if c.transport == nil {
		c.transport = NewRestyTransport(opts.UserAgent, timeout)
	}
	if c.recorder == nil {
		c.recorder = nopRecorder{}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c, nil
}

// Instances returns a copy of the configured instance list in trial order.
func (c *Client) Instances() []string {
	return append([]string(nil), c.instances...)
}

// Resolve fetches path (one of /videos/{id}, /search, /channels/{id},
// /playlists/{id}) with params from the first instance that answers with a
// 2xx status and a JSON body. The payload is returned verbatim.
func (c *Client) Resolve(ctx context.Context, path string, params map[string]string) (json.RawMessage, error) {
	req, err := ParseRequest(path, params)
	if err != nil {
		c.recorder.ObserveResolution("unknown", outcomeRejected)
		return nil, err
	}
	return resolve(ctx, c, req, decodeRaw)
}

// Video fetches GET /videos/{id}.
func (c *Client) Video(ctx context.Context, id string) (*Video, error) {
	return resolve(ctx, c, VideoRequest(id), decodeValidated[Video])
}

// Search fetches GET /search?q={query}.
func (c *Client) Search(ctx context.Context, query string) ([]SearchItem, error) {
	return resolve(ctx, c, SearchRequest(query), decodeSearch)
}

// Channel fetches GET /channels/{id}.
func (c *Client) Channel(ctx context.Context, id string) (*Channel, error) {
	return resolve(ctx, c, ChannelRequest(id), decodeValidated[Channel])
}

// Playlist fetches GET /playlists/{id}.
func (c *Client) Playlist(ctx context.Context, id string) (*Playlist, error) {
	return resolve(ctx, c, PlaylistRequest(id), decodeValidated[Playlist])
}

// Result holds the typed payload of a Fetch; only the field matching Kind
// is set.
type Result struct {
	Kind     Kind
	Video    *Video
	Search   []SearchItem
	Channel  *Channel
	Playlist *Playlist
}

// Fetch resolves req into the typed shape for its kind.
func (c *Client) Fetch(ctx context.Context, req Request) (*Result, error) {
	res := &Result{Kind: req.Kind}
	var err error
	switch req.Kind {
	case KindVideo:
		res.Video, err = resolve(ctx, c, req, decodeValidated[Video])
	case KindSearch:
		res.Search, err = resolve(ctx, c, req, decodeSearch)
	case KindChannel:
		res.Channel, err = resolve(ctx, c, req, decodeValidated[Channel])
	case KindPlaylist:
		res.Playlist, err = resolve(ctx, c, req, decodeValidated[Playlist])
	default:
		err = fmt.Errorf("%w: unknown resource kind %q", ErrMalformedRequest, req.Kind)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// resolve runs one fallback pass. Instances are attempted strictly in order,
// each exactly once, and the first success wins.
func resolve[T any](ctx context.Context, c *Client, req Request, decode func([]byte) (T, error)) (T, error) {
	var zero T
	if err := req.Validate(); err != nil {
		c.recorder.ObserveResolution(string(req.Kind), outcomeRejected)
		return zero, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.deadline)
	defer cancel()

	resolutionID := uuid.NewString()
	log := c.logger.With(
		zap.String("resolution_id", resolutionID),
		zap.String("kind", string(req.Kind)),
		zap.String("path", req.String()),
	)

	var payload T
	state := Start()
	for !state.Done() {
		instance := c.instances[state.Index]
		value, failure := attempt(ctx, c, instance, req, decode)
		if failure == nil {
			payload = value
			log.Debug("instance answered",
				zap.String("instance", instance),
				zap.Int("attempt", state.Index+1))
		} else {
			log.Warn("instance unavailable",
				zap.String("instance", instance),
				zap.Int("attempt", state.Index+1),
				zap.String("failure", string(failure.Kind)),
				zap.Int("status", failure.StatusCode),
				zap.Duration("elapsed", failure.Elapsed),
				zap.Error(failure.Err))
		}
		state = Next(state, len(c.instances), failure)
	}

	if state.Phase == PhaseSucceeded {
		c.recorder.ObserveResolution(string(req.Kind), outcomeSuccess)
		return payload, nil
	}

	c.recorder.ObserveResolution(string(req.Kind), outcomeExhaust)
	exhausted := &AllInstancesUnavailableError{
		ResolutionID: resolutionID,
		Path:         req.String(),
		Failures:     state.Failures,
	}
	log.Error("all instances unavailable",
		zap.Strings("instances", exhausted.Instances()))
	return zero, exhausted
}

// attempt performs one GET against one instance. Any failure is returned as
// an *InstanceError and never aborts the pass.
func attempt[T any](ctx context.Context, c *Client, instance string, req Request, decode func([]byte) (T, error)) (T, *InstanceError) {
	var zero T
	start := time.Now()

	fail := func(kind FailureKind, status int, err error) (T, *InstanceError) {
		elapsed := time.Since(start)
		c.recorder.ObserveAttempt(instance, string(kind), elapsed)
		return zero, &InstanceError{
			Instance:   instance,
			Kind:       kind,
			StatusCode: status,
			Elapsed:    elapsed,
			Err:        err,
		}
	}

	if err := ctx.Err(); err != nil {
		return fail(FailureCanceled, 0, err)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.transport.Get(attemptCtx, req.URL(instance))
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return fail(FailureTimeout, 0, err)
		case ctx.Err() != nil:
			return fail(FailureCanceled, 0, err)
		case isTimeout(err):
			return fail(FailureTimeout, 0, err)
		default:
			return fail(FailureNetwork, 0, err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(FailureStatus, resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	value, err := decode(resp.Body)
	if err != nil {
		return fail(FailureParse, resp.StatusCode, err)
	}

	c.recorder.ObserveAttempt(instance, outcomeSuccess, time.Since(start))
	return value, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func decodeRaw(body []byte) (json.RawMessage, error) {
	if !json.Valid(body) {
		return nil, errors.New("response body is not valid JSON")
	}
	return json.RawMessage(append([]byte(nil), body...)), nil
}

func decodeSearch(body []byte) ([]SearchItem, error) {
	var items []SearchItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}
	if items == nil {
		items = []SearchItem{}
	}
	return items, nil
}

// decodeValidated decodes into a fresh T and checks its validate tags, so a
// payload missing its identity field counts as a parse failure.
func decodeValidated[T any](body []byte) (*T, error) {
	v := new(T)
	if err := json.Unmarshal(body, v); err != nil {
		return nil, fmt.Errorf("decode %T: %w", *v, err)
	}
	if err := utils.ValidateStruct(v); err != nil {
		return nil, fmt.Errorf("decode %T: %w", *v, err)
	}
	return v, nil
}
