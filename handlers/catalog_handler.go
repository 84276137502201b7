package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/yuzutube/gateway/services/catalog"
	"github.com/yuzutube/gateway/services/invidious"
	"github.com/yuzutube/gateway/utils"
	"go.uber.org/zap"
)

// WatchQuery is the query string of GET /api/v1/watch
type WatchQuery struct {
	VideoID string `validate:"required"`
}

// SearchQuery is the query string of GET /api/v1/search
type SearchQuery struct {
	Query string `validate:"required"`
}

// ChannelQuery is the query string of GET /api/v1/channel
type ChannelQuery struct {
	ChannelID string `validate:"required"`
}

// PlaylistQuery is the query string of GET /api/v1/playlist
type PlaylistQuery struct {
	PlaylistID string `validate:"required"`
}

// CatalogService defines the interface for page resolution
type CatalogService interface {
	// Browse resolves a request into a view-ready page
	Browse(ctx context.Context, req invidious.Request) (*catalog.Page, error)
}

// CatalogHandler serves the video, search, channel and playlist pages
type CatalogHandler struct {
	service CatalogService
	logger  *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(service CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger,
	}
}

// HandleBrowse handles GET /api/v1/browse
// Dispatches on v, q, channelid, list in that order.
func (h *CatalogHandler) HandleBrowse(w http.ResponseWriter, r *http.Request) {
	req, err := catalog.RequestFromQuery(r.URL.Query())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	h.serve(w, r, req)
}

// HandleWatch handles GET /api/v1/watch?v={id}
func (h *CatalogHandler) HandleWatch(w http.ResponseWriter, r *http.Request) {
	q := WatchQuery{VideoID: r.URL.Query().Get(catalog.ParamVideo)}
	if err := utils.ValidateStruct(q); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}
	h.serve(w, r, invidious.VideoRequest(q.VideoID))
}

// HandleSearch handles GET /api/v1/search?q={query}
func (h *CatalogHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := SearchQuery{Query: strings.TrimSpace(r.URL.Query().Get(catalog.ParamSearch))}
	if err := utils.ValidateStruct(q); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}
	h.serve(w, r, invidious.SearchRequest(q.Query))
}

// HandleChannel handles GET /api/v1/channel?channelid={id}
func (h *CatalogHandler) HandleChannel(w http.ResponseWriter, r *http.Request) {
	q := ChannelQuery{ChannelID: r.URL.Query().Get(catalog.ParamChannel)}
	if err := utils.ValidateStruct(q); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}
	h.serve(w, r, invidious.ChannelRequest(q.ChannelID))
}

// HandlePlaylist handles GET /api/v1/playlist?list={id}
func (h *CatalogHandler) HandlePlaylist(w http.ResponseWriter, r *http.Request) {
	q := PlaylistQuery{PlaylistID: r.URL.Query().Get(catalog.ParamPlaylist)}
	if err := utils.ValidateStruct(q); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}
	h.serve(w, r, invidious.PlaylistRequest(q.PlaylistID))
}

func (h *CatalogHandler) serve(w http.ResponseWriter, r *http.Request, req invidious.Request) {
	page, err := h.service.Browse(r.Context(), req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if err := utils.WriteOK(w, page); err != nil {
		h.logger.Error("failed to write page response",
			zap.String("path", req.String()),
			zap.Error(err))
	}
}
