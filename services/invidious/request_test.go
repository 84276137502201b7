package invidious

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		query        map[string]string
		expectedKind Kind
		expectError  bool
	}{
		{name: "video", path: "/videos/abc", expectedKind: KindVideo},
		{name: "search", path: "/search", query: map[string]string{"q": "lofi"}, expectedKind: KindSearch},
		{name: "channel", path: "/channels/UC123", expectedKind: KindChannel},
		{name: "playlist", path: "/playlists/PL123", expectedKind: KindPlaylist},
		{name: "video without id", path: "/videos/", expectError: true},
		{name: "nested video path", path: "/videos/abc/comments", expectError: true},
		{name: "search without query", path: "/search", expectError: true},
		{name: "search with blank query", path: "/search", query: map[string]string{"q": "   "}, expectError: true},
		{name: "id carrying a query", path: "/videos/abc?x=1", expectError: true},
		{name: "id carrying a fragment", path: "/channels/UC1#about", expectError: true},
		{name: "dot segment", path: "/playlists/.", expectError: true},
		{name: "parent segment", path: "/videos/..", expectError: true},
		{name: "unknown resource", path: "/trending", expectError: true},
		{name: "empty path", path: "", expectError: true},
		{name: "missing leading slash", path: "videos/abc", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseRequest(tt.path, tt.query)

			if tt.expectError {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformedRequest))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedKind, req.Kind)
			assert.Equal(t, tt.path, req.Path)
		})
	}
}

func TestRequestURL(t *testing.T) {
	tests := []struct {
		name     string
		req      Request
		instance string
		expected string
	}{
		{
			name:     "video",
			req:      VideoRequest("abc"),
			instance: "https://inv.example",
			expected: "https://inv.example/api/v1/videos/abc",
		},
		{
			name:     "trailing slash on instance",
			req:      ChannelRequest("UC1"),
			instance: "https://inv.example/",
			expected: "https://inv.example/api/v1/channels/UC1",
		},
		{
			name:     "search query is encoded",
			req:      SearchRequest("lofi beats & chill"),
			instance: "https://inv.example",
			expected: "https://inv.example/api/v1/search?q=lofi+beats+%26+chill",
		},
		{
			name:     "id is path escaped",
			req:      PlaylistRequest("a/b"),
			instance: "https://inv.example",
			expected: "https://inv.example/api/v1/playlists/a%2Fb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.req.URL(tt.instance))
		})
	}
}

func TestRequestBuildersAreValid(t *testing.T) {
	for _, req := range []Request{
		VideoRequest("abc"),
		SearchRequest("q"),
		ChannelRequest("UC1"),
		PlaylistRequest("a/b"),
	} {
		assert.NoError(t, req.Validate(), req.String())
	}
}

func TestRequestString(t *testing.T) {
	assert.Equal(t, "/videos/abc", VideoRequest("abc").String())
	assert.Equal(t, "/search?q=cats", SearchRequest("cats").String())
}

func TestRequestValidate_UnknownKind(t *testing.T) {
	err := Request{Kind: "comments", Path: "/comments/abc"}.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedRequest)
}
