package invidious

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeTransport answers from a function and records every URL it was asked for.
type fakeTransport struct {
	mu    sync.Mutex
	calls []string
	fn    func(ctx context.Context, rawURL string) (*Response, error)
}

func (f *fakeTransport) Get(ctx context.Context, rawURL string) (*Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, rawURL)
	f.mu.Unlock()
	return f.fn(ctx, rawURL)
}

func (f *fakeTransport) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type observation struct {
	key     string
	outcome string
}

// recorder captures metric observations in order.
type recorder struct {
	mu          sync.Mutex
	attempts    []observation
	resolutions []observation
}

func (r *recorder) ObserveAttempt(instance, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, observation{instance, outcome})
}

func (r *recorder) ObserveResolution(kind, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolutions = append(r.resolutions, observation{kind, outcome})
}

// slowServer never answers before the client gives up.
func slowServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func statusServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func jsonServer(t *testing.T, body string, seen *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			seen.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, opts Options) *Client {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = zaptest.NewLogger(t)
	}
	c, err := NewClient(opts)
	require.NoError(t, err)
	return c
}

func TestResolve_FallsThroughToFirstHealthyInstance(t *testing.T) {
	x := slowServer(t)
	y := statusServer(t, http.StatusInternalServerError)
	z := jsonServer(t, `{"videoId":"abc","title":"Test"}`, nil)

	rec := &recorder{}
	client := newTestClient(t, Options{
		Instances: []string{x.URL, y.URL, z.URL},
		Timeout:   100 * time.Millisecond,
		Recorder:  rec,
	})

	payload, err := client.Resolve(context.Background(), "/videos/abc", nil)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &got))
	assert.Equal(t, "abc", got["videoId"])
	assert.Equal(t, "Test", got["title"])

	require.Len(t, rec.attempts, 3)
	assert.Equal(t, observation{x.URL, string(FailureTimeout)}, rec.attempts[0])
	assert.Equal(t, observation{y.URL, string(FailureStatus)}, rec.attempts[1])
	assert.Equal(t, observation{z.URL, outcomeSuccess}, rec.attempts[2])
	assert.Equal(t, []observation{{string(KindVideo), outcomeSuccess}}, rec.resolutions)
}

func TestResolve_SingleInstanceNotFound(t *testing.T) {
	x := statusServer(t, http.StatusNotFound)
	client := newTestClient(t, Options{Instances: []string{x.URL}, Timeout: time.Second})

	payload, err := client.Resolve(context.Background(), "/videos/abc", nil)
	assert.Nil(t, payload)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllInstancesUnavailable)

	var exhausted *AllInstancesUnavailableError
	require.True(t, errors.As(err, &exhausted))
	require.Len(t, exhausted.Failures, 1)
	assert.Equal(t, x.URL, exhausted.Failures[0].Instance)
	assert.Equal(t, FailureStatus, exhausted.Failures[0].Kind)
	assert.Equal(t, http.StatusNotFound, exhausted.Failures[0].StatusCode)
	assert.NotEmpty(t, exhausted.ResolutionID)
	assert.Equal(t, "/videos/abc", exhausted.Path)
}

func TestResolve_StopsAtFirstSuccess(t *testing.T) {
	var first, second atomic.Int32
	a := jsonServer(t, `{"videoId":"abc"}`, &first)
	b := jsonServer(t, `{"videoId":"abc"}`, &second)

	client := newTestClient(t, Options{Instances: []string{a.URL, b.URL}, Timeout: time.Second})

	_, err := client.Resolve(context.Background(), "/videos/abc", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), first.Load())
	assert.Equal(t, int32(0), second.Load())
}

func TestResolve_AttemptsEachInstanceOnce(t *testing.T) {
	ft := &fakeTransport{fn: func(context.Context, string) (*Response, error) {
		return &Response{StatusCode: http.StatusBadGateway}, nil
	}}
	instances := []string{"https://a.example", "https://b.example", "https://c.example"}
	client := newTestClient(t, Options{Instances: instances, Transport: ft})

	_, err := client.Resolve(context.Background(), "/channels/UC1", nil)

	var exhausted *AllInstancesUnavailableError
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, instances, exhausted.Instances())
	assert.Equal(t, []string{
		"https://a.example/api/v1/channels/UC1",
		"https://b.example/api/v1/channels/UC1",
		"https://c.example/api/v1/channels/UC1",
	}, ft.Calls())
}

func TestResolve_MalformedRequestMakesNoAttempt(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		params map[string]string
	}{
		{name: "unknown path", path: "/trending"},
		{name: "missing id", path: "/videos/"},
		{name: "id with its own query", path: "/videos/abc?x=1", params: map[string]string{"local": "US"}},
		{name: "parent segment id", path: "/videos/.."},
		{name: "search without q", path: "/search"},
		{name: "search with other params only", path: "/search", params: map[string]string{"page": "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := &fakeTransport{fn: func(context.Context, string) (*Response, error) {
				t.Fatal("transport must not be called")
				return nil, nil
			}}
			rec := &recorder{}
			client := newTestClient(t, Options{Instances: []string{"https://a.example"}, Transport: ft, Recorder: rec})

			_, err := client.Resolve(context.Background(), tt.path, tt.params)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedRequest)
			assert.NotErrorIs(t, err, ErrAllInstancesUnavailable)
			assert.Empty(t, ft.Calls())
			require.Len(t, rec.resolutions, 1)
			assert.Equal(t, outcomeRejected, rec.resolutions[0].outcome)
		})
	}
}

func TestResolve_ClassifiesFailures(t *testing.T) {
	tests := []struct {
		name         string
		response     *Response
		err          error
		expectedKind FailureKind
	}{
		{name: "network error", err: errors.New("connection refused"), expectedKind: FailureNetwork},
		{name: "deadline", err: context.DeadlineExceeded, expectedKind: FailureTimeout},
		{name: "server error", response: &Response{StatusCode: 503}, expectedKind: FailureStatus},
		{name: "redirect status", response: &Response{StatusCode: 302}, expectedKind: FailureStatus},
		{name: "invalid json", response: &Response{StatusCode: 200, Body: []byte("<html>")}, expectedKind: FailureParse},
		{name: "empty body", response: &Response{StatusCode: 200}, expectedKind: FailureParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := &fakeTransport{fn: func(context.Context, string) (*Response, error) {
				return tt.response, tt.err
			}}
			client := newTestClient(t, Options{Instances: []string{"https://a.example"}, Transport: ft})

			_, err := client.Resolve(context.Background(), "/videos/abc", nil)

			var exhausted *AllInstancesUnavailableError
			require.True(t, errors.As(err, &exhausted))
			require.Len(t, exhausted.Failures, 1)
			assert.Equal(t, tt.expectedKind, exhausted.Failures[0].Kind)
		})
	}
}

func TestResolve_PassesParamsThrough(t *testing.T) {
	var gotPath, gotQuery, gotPage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		gotPage = r.URL.Query().Get("page")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := newTestClient(t, Options{Instances: []string{srv.URL}, Timeout: time.Second})

	payload, err := client.Resolve(context.Background(), "/search", map[string]string{"q": "lofi beats", "page": "2"})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(payload))
	assert.Equal(t, "/api/v1/search", gotPath)
	assert.Equal(t, "lofi beats", gotQuery)
	assert.Equal(t, "2", gotPage)
}

func TestResolve_CanceledContextMakesNoNetworkCall(t *testing.T) {
	ft := &fakeTransport{fn: func(context.Context, string) (*Response, error) {
		return &Response{StatusCode: 200, Body: []byte(`{"videoId":"abc"}`)}, nil
	}}
	client := newTestClient(t, Options{Instances: []string{"https://a.example", "https://b.example"}, Transport: ft})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Resolve(ctx, "/videos/abc", nil)

	var exhausted *AllInstancesUnavailableError
	require.True(t, errors.As(err, &exhausted))
	require.Len(t, exhausted.Failures, 2)
	for _, f := range exhausted.Failures {
		assert.Equal(t, FailureCanceled, f.Kind)
		assert.ErrorIs(t, f, context.Canceled)
	}
	assert.Empty(t, ft.Calls())
}

func TestResolve_CancelMidPassSkipsRemainingInstances(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ft := &fakeTransport{fn: func(ctx context.Context, _ string) (*Response, error) {
		cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	client := newTestClient(t, Options{
		Instances: []string{"https://a.example", "https://b.example", "https://c.example"},
		Transport: ft,
	})

	_, err := client.Resolve(ctx, "/videos/abc", nil)

	var exhausted *AllInstancesUnavailableError
	require.True(t, errors.As(err, &exhausted))
	require.Len(t, exhausted.Failures, 3)
	for _, f := range exhausted.Failures {
		assert.Equal(t, FailureCanceled, f.Kind)
	}
	assert.Len(t, ft.Calls(), 1)
}

func TestResolve_ShortDeadlineStillTriesEveryInstance(t *testing.T) {
	ft := &fakeTransport{fn: func(ctx context.Context, rawURL string) (*Response, error) {
		if strings.HasPrefix(rawURL, "https://slow.example") {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return &Response{StatusCode: 200, Body: []byte(`{"videoId":"abc"}`)}, nil
	}}
	client := newTestClient(t, Options{
		Instances:       []string{"https://slow.example", "https://up.example"},
		Timeout:         100 * time.Millisecond,
		ResolveDeadline: 10 * time.Millisecond,
		Transport:       ft,
	})

	assert.Equal(t, 2*100*time.Millisecond+deadlineMargin, client.deadline)

	video, err := client.Video(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", video.VideoID)
	assert.Len(t, ft.Calls(), 2)
}

func TestResolve_CallerDeadlineIsATimeout(t *testing.T) {
	ft := &fakeTransport{fn: func(ctx context.Context, _ string) (*Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	client := newTestClient(t, Options{
		Instances: []string{"https://a.example", "https://b.example"},
		Timeout:   time.Second,
		Transport: ft,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Resolve(ctx, "/videos/abc", nil)

	var exhausted *AllInstancesUnavailableError
	require.True(t, errors.As(err, &exhausted))
	require.Len(t, exhausted.Failures, 2)
	assert.Equal(t, FailureTimeout, exhausted.Failures[0].Kind)
	assert.Equal(t, FailureCanceled, exhausted.Failures[1].Kind)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
	assert.Len(t, ft.Calls(), 1)
}

func TestResolve_IdempotentOnHealthyList(t *testing.T) {
	var aHits, bHits atomic.Int32
	a := jsonServer(t, `{"videoId":"A"}`, &aHits)
	b := jsonServer(t, `{"videoId":"B"}`, &bHits)

	client := newTestClient(t, Options{Instances: []string{a.URL, b.URL}, Timeout: time.Second})

	first, err := client.Resolve(context.Background(), "/videos/abc", nil)
	require.NoError(t, err)
	second, err := client.Resolve(context.Background(), "/videos/abc", nil)
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
	assert.Equal(t, int32(2), aHits.Load())
	assert.Zero(t, bHits.Load())
}

func TestResolve_TrialOrderDecidesWinner(t *testing.T) {
	var aHits, bHits atomic.Int32
	a := jsonServer(t, `{"videoId":"A"}`, &aHits)
	b := jsonServer(t, `{"videoId":"B"}`, &bHits)

	tests := []struct {
		name      string
		instances []string
		want      string
	}{
		{"a first", []string{a.URL, b.URL}, `{"videoId":"A"}`},
		{"b first", []string{b.URL, a.URL}, `{"videoId":"B"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, Options{Instances: tt.instances, Timeout: time.Second})

			payload, err := client.Resolve(context.Background(), "/videos/abc", nil)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(payload))
		})
	}

	assert.Equal(t, int32(1), aHits.Load())
	assert.Equal(t, int32(1), bHits.Load())
}

func TestClient_TypedResources(t *testing.T) {
	bodies := map[string]string{
		"/api/v1/videos/abc": `{
			"videoId":"abc","title":"Test","author":"Someone","authorId":"UC1",
			"formatStreams":[{"url":"https://cdn.example/abc.mp4"}],
			"authorThumbnails":[{"url":"https://img/32","width":32,"height":32},{"url":"https://img/100","width":100,"height":100}]
		}`,
		"/api/v1/search":         `[{"type":"video","videoId":"v1","title":"One","videoThumbnails":[{"url":"https://img/v1"}]},{"type":"channel","author":"Chan"}]`,
		"/api/v1/channels/UC1":   `{"author":"Someone","authorId":"UC1","latestVideos":[{"videoId":"v1","title":"One"}]}`,
		"/api/v1/playlists/PL1":  `{"playlistId":"PL1","title":"Mix","videoCount":1,"videos":[{"videoId":"v1","title":"One"}]}`,
		"/api/v1/videos/missing": `{"title":"no id"}`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	client := newTestClient(t, Options{Instances: []string{srv.URL}, Timeout: time.Second})
	ctx := context.Background()

	t.Run("video", func(t *testing.T) {
		video, err := client.Video(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, "abc", video.VideoID)
		assert.Equal(t, "https://cdn.example/abc.mp4", video.PlayableURL())

		thumb, ok := video.AuthorThumbnail(100, 100)
		require.True(t, ok)
		assert.Equal(t, "https://img/100", thumb.URL)
	})

	t.Run("video missing identity is a parse failure", func(t *testing.T) {
		_, err := client.Video(ctx, "missing")

		var exhausted *AllInstancesUnavailableError
		require.True(t, errors.As(err, &exhausted))
		assert.Equal(t, FailureParse, exhausted.Failures[0].Kind)
	})

	t.Run("search", func(t *testing.T) {
		items, err := client.Search(ctx, "one")
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "v1", items[0].VideoID)
		assert.Equal(t, "https://img/v1", items[0].Thumbnail())
		assert.Equal(t, "channel", items[1].Type)
	})

	t.Run("channel", func(t *testing.T) {
		channel, err := client.Channel(ctx, "UC1")
		require.NoError(t, err)
		assert.Equal(t, "UC1", channel.AuthorID)
		assert.Len(t, channel.LatestVideos, 1)
	})

	t.Run("playlist", func(t *testing.T) {
		playlist, err := client.Playlist(ctx, "PL1")
		require.NoError(t, err)
		assert.Equal(t, "Mix", playlist.Title)
		assert.Len(t, playlist.Videos, 1)
	})

	t.Run("fetch dispatches on kind", func(t *testing.T) {
		res, err := client.Fetch(ctx, PlaylistRequest("PL1"))
		require.NoError(t, err)
		assert.Equal(t, KindPlaylist, res.Kind)
		require.NotNil(t, res.Playlist)
		assert.Nil(t, res.Video)
		assert.Nil(t, res.Channel)
	})

	t.Run("fetch rejects unknown kind", func(t *testing.T) {
		_, err := client.Fetch(ctx, Request{Kind: "comments", Path: "/comments/abc"})
		assert.ErrorIs(t, err, ErrMalformedRequest)
	})
}

func TestClient_SearchNullIsEmpty(t *testing.T) {
	ft := &fakeTransport{fn: func(context.Context, string) (*Response, error) {
		return &Response{StatusCode: 200, Body: []byte(`null`)}, nil
	}}
	client := newTestClient(t, Options{Instances: []string{"https://a.example"}, Transport: ft})

	items, err := client.Search(context.Background(), "nothing")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestNewClient(t *testing.T) {
	t.Run("requires an instance", func(t *testing.T) {
		_, err := NewClient(Options{})
		assert.Error(t, err)
	})

	t.Run("rejects blank instance", func(t *testing.T) {
		_, err := NewClient(Options{Instances: []string{"https://a.example", "  "}})
		assert.Error(t, err)
	})

	t.Run("deadline below one attempt per instance is raised", func(t *testing.T) {
		c, err := NewClient(Options{
			Instances:       []string{"https://a.example", "https://b.example"},
			Timeout:         300 * time.Millisecond,
			ResolveDeadline: 100 * time.Millisecond,
		})
		require.NoError(t, err)
		assert.Equal(t, 600*time.Millisecond+deadlineMargin, c.deadline)
	})

	t.Run("longer deadline is kept", func(t *testing.T) {
		c, err := NewClient(Options{
			Instances:       []string{"https://a.example"},
			Timeout:         time.Second,
			ResolveDeadline: time.Minute,
		})
		require.NoError(t, err)
		assert.Equal(t, time.Minute, c.deadline)
	})

	t.Run("defaults", func(t *testing.T) {
		c, err := NewClient(Options{Instances: []string{"https://a.example/", "https://b.example"}})
		require.NoError(t, err)
		assert.Equal(t, defaultTimeout, c.timeout)
		assert.Equal(t, 2*defaultTimeout+deadlineMargin, c.deadline)
		assert.IsType(t, &RestyTransport{}, c.transport)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.Instances())
	})

	t.Run("instance list is copied", func(t *testing.T) {
		instances := []string{"https://a.example"}
		c, err := NewClient(Options{Instances: instances})
		require.NoError(t, err)

		instances[0] = "https://changed.example"
		got := c.Instances()
		got[0] = "https://mutated.example"

		assert.Equal(t, []string{"https://a.example"}, c.Instances())
	})
}
