package catalog

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/yuzutube/gateway/services"
	"github.com/yuzutube/gateway/services/invidious"
	"go.uber.org/zap"
)

// Query parameter names accepted from browsers, in dispatch precedence.
const (
	ParamVideo    = "v"
	ParamSearch   = "q"
	ParamChannel  = "channelid"
	ParamPlaylist = "list"
)

// authorThumbnailSize is the avatar size shown next to a video.
const authorThumbnailSize = 100

// Resolver is the part of *invidious.Client the catalog needs.
type Resolver interface {
	Fetch(ctx context.Context, req invidious.Request) (*invidious.Result, error)
	Probe(ctx context.Context) []invidious.ProbeResult
	Instances() []string
}

// Service turns browser query parameters into resolved, view-ready pages.
type Service struct {
	resolver Resolver
	logger   *zap.Logger
}

// NewService creates a new catalog service
func NewService(resolver Resolver, logger *zap.Logger) *Service {
	return &Service{
		resolver: resolver,
		logger:   logger,
	}
}

// RequestFromQuery picks the resource to load from browser query parameters.
// Precedence is v, then q, then channelid, then list. With none present it
// returns a validation error matching services.ErrMissingParameter.
func RequestFromQuery(values url.Values) (invidious.Request, error) {
	switch {
	case values.Get(ParamVideo) != "":
		return invidious.VideoRequest(values.Get(ParamVideo)), nil
	case strings.TrimSpace(values.Get(ParamSearch)) != "":
		return invidious.SearchRequest(values.Get(ParamSearch)), nil
	case values.Get(ParamChannel) != "":
		return invidious.ChannelRequest(values.Get(ParamChannel)), nil
	case values.Get(ParamPlaylist) != "":
		return invidious.PlaylistRequest(values.Get(ParamPlaylist)), nil
	}
	return invidious.Request{}, services.ErrMissingParameter.
		Derive("one of v, q, channelid or list is required", nil).
		WithDetail("parameters", []string{ParamVideo, ParamSearch, ParamChannel, ParamPlaylist})
}

// Browse resolves req and builds its page.
func (s *Service) Browse(ctx context.Context, req invidious.Request) (*Page, error) {
	result, err := s.resolver.Fetch(ctx, req)
	if err != nil {
		return nil, s.translate(req, err)
	}
	return buildPage(req, result), nil
}

// Instances returns the configured instance list in trial order.
func (s *Service) Instances() []string {
	return s.resolver.Instances()
}

// Probe reports instance reachability and whether any instance is up.
func (s *Service) Probe(ctx context.Context) ([]invidious.ProbeResult, bool) {
	results := s.resolver.Probe(ctx)
	return results, invidious.AnyHealthy(results)
}

// translate maps client errors onto the domain sentinels.
func (s *Service) translate(req invidious.Request, err error) error {
	var exhausted *invidious.AllInstancesUnavailableError
	switch {
	case errors.Is(err, invidious.ErrMalformedRequest):
		return services.ErrMalformedRequest.Derive("", err)

	case errors.As(err, &exhausted):
		reasons := make([]map[string]interface{}, 0, len(exhausted.Failures))
		for _, f := range exhausted.Failures {
			reason := map[string]interface{}{
				"instance": f.Instance,
				"kind":     string(f.Kind),
			}
			if f.StatusCode != 0 {
				reason["status"] = f.StatusCode
			}
			reasons = append(reasons, reason)
		}
		return services.ErrInstancesUnavailable.Derive("", err).
			WithDetail("resolution_id", exhausted.ResolutionID).
			WithDetail("path", exhausted.Path).
			WithDetail("failures", reasons)

	default:
		s.logger.Error("unexpected resolve error",
			zap.String("path", req.String()),
			zap.Error(err))
		return services.ErrInternal.Derive("failed to resolve resource", err)
	}
}
