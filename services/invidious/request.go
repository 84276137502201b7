package invidious

import (
	"fmt"
	"net/url"
	"strings"
)

// APIPrefix is prepended to every resource path on an instance.
const APIPrefix = "/api/v1"

// Kind identifies one of the logical resources the client understands.
type Kind string

const (
	KindVideo    Kind = "video"
	KindSearch   Kind = "search"
	KindChannel  Kind = "channel"
	KindPlaylist Kind = "playlist"
)

// Request is a logical resource request: a path relative to APIPrefix plus
// query parameters passed through verbatim.
type Request struct {
	Kind  Kind
	Path  string
	Query map[string]string
}

// VideoRequest builds the request for GET /videos/{id}.
func VideoRequest(id string) Request {
	return Request{Kind: KindVideo, Path: "/videos/" + url.PathEscape(id)}
}

// SearchRequest builds the request for GET /search?q={query}.
func SearchRequest(query string) Request {
	return Request{Kind: KindSearch, Path: "/search", Query: map[string]string{"q": query}}
}

// ChannelRequest builds the request for GET /channels/{id}.
func ChannelRequest(id string) Request {
	return Request{Kind: KindChannel, Path: "/channels/" + url.PathEscape(id)}
}

// PlaylistRequest builds the request for GET /playlists/{id}.
func PlaylistRequest(id string) Request {
	return Request{Kind: KindPlaylist, Path: "/playlists/" + url.PathEscape(id)}
}

// ParseRequest classifies a raw path into one of the four recognized shapes.
// Anything else is ErrMalformedRequest.
func ParseRequest(path string, query map[string]string) (Request, error) {
	req := Request{Path: path, Query: query}

	switch {
	case path == "/search":
		req.Kind = KindSearch
	case hasEntity(path, "/videos/"):
		req.Kind = KindVideo
	case hasEntity(path, "/channels/"):
		req.Kind = KindChannel
	case hasEntity(path, "/playlists/"):
		req.Kind = KindPlaylist
	default:
		return Request{}, fmt.Errorf("%w: unrecognized path %q", ErrMalformedRequest, path)
	}

	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

// Validate checks the request is well formed for its kind.
func (r Request) Validate() error {
	switch r.Kind {
	case KindSearch:
		if strings.TrimSpace(r.Query["q"]) == "" {
			return fmt.Errorf("%w: search requires a non-empty q parameter", ErrMalformedRequest)
		}
	case KindVideo, KindChannel, KindPlaylist:
		prefix := "/" + string(r.Kind) + "s/"
		if !hasEntity(r.Path, prefix) {
			return fmt.Errorf("%w: %s path must look like %s{id}, got %q", ErrMalformedRequest, r.Kind, prefix, r.Path)
		}
	default:
		return fmt.Errorf("%w: unknown resource kind %q", ErrMalformedRequest, r.Kind)
	}
	return nil
}

// Encode serializes the query parameters. Empty when there are none.
func (r Request) Encode() string {
	if len(r.Query) == 0 {
		return ""
	}
	values := make(url.Values, len(r.Query))
	for k, v := range r.Query {
		values.Set(k, v)
	}
	return values.Encode()
}

// URL builds the full request URL against one instance base URL.
func (r Request) URL(instance string) string {
	u := strings.TrimRight(instance, "/") + APIPrefix + r.Path
	if q := r.Encode(); q != "" {
		u += "?" + q
	}
	return u
}

// String is used in log lines and error messages.
func (r Request) String() string {
	if q := r.Encode(); q != "" {
		return r.Path + "?" + q
	}
	return r.Path
}

func hasEntity(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	id := strings.TrimPrefix(path, prefix)
	if id == "" || id == "." || id == ".." {
		return false
	}
	// The id is one path segment; query and fragment belong in Request.Query.
	return !strings.ContainsAny(id, "/?#")
}
