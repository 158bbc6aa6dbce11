package attraction

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-walking-tours/internal/api"
	"github.com/FACorreiaa/go-walking-tours/internal/api/auth"
	"github.com/FACorreiaa/go-walking-tours/internal/api/mapbox"
	"github.com/FACorreiaa/go-walking-tours/internal/api/overpass"
	"github.com/FACorreiaa/go-walking-tours/internal/types"
)

const maxListLimit = 500

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// GetAttractions godoc
// @Summary      List stored attractions
// @Tags         Attractions
// @Produce      json
// @Param        bbox      query string false "minLng,minLat,maxLng,maxLat"
// @Param        category  query string false "Category name, e.g. MUSEUM"
// @Param        limit     query int    false "Maximum number of results"
// @Success      200 {array}  types.Attraction
// @Failure      400 {object} api.ErrorBody
// @Failure      500 {object} api.ErrorBody
// @Security     BearerAuth
// @Router       /attractions [get]
func (h *Handler) GetAttractions(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AttractionHandler").Start(r.Context(), "GetAttractions", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/attractions"),
	))
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetAttractions"))

	q := r.URL.Query()
	filter := types.AttractionFilter{Category: q.Get("category"), Limit: maxListLimit}
	if raw := q.Get("bbox"); raw != "" {
		bbox, err := types.ParseBBox(raw)
		if err != nil {
			l.WarnContext(ctx, "Invalid bbox", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		filter.BBox = &bbox
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			api.ErrorResponse(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = min(n, maxListLimit)
	}

	attractions, err := h.service.GetAttractions(ctx, filter)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list attractions", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve attractions")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, attractions)
}

// GetAttractionsByLocation godoc
// @Summary      Ingest attractions within walking distance of a location
// @Tags         Attractions
// @Produce      json
// @Param        locationCoords query string false "lon,lat"
// @Param        locationQuery  query string false "Free-text place, used when locationCoords is absent"
// @Param        duration       query int    true  "Walking time in minutes"
// @Success      200 {array}  types.Attraction
// @Failure      400 {object} api.ErrorBody
// @Failure      500 {object} api.ErrorBody
// @Security     BearerAuth
// @Router       /attractions/by-location [get]
func (h *Handler) GetAttractionsByLocation(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AttractionHandler").Start(r.Context(), "GetAttractionsByLocation", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/attractions/by-location"),
	))
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetAttractionsByLocation"))

	if userID, ok := auth.GetUserIDFromContext(ctx); ok {
		span.SetAttributes(semconv.EnduserIDKey.String(userID))
	}

	q := r.URL.Query()
	minutes, err := strconv.Atoi(q.Get("duration"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "duration must be an integer number of minutes")
		return
	}
	start, err := h.service.ResolveLocation(ctx, q.Get("locationCoords"), q.Get("locationQuery"))
	if err != nil {
		l.WarnContext(ctx, "Could not resolve location", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	attractions, err := h.service.IngestByLocation(ctx, start, minutes)
	if errors.Is(err, mapbox.ErrNoIsochrone) {
		// nothing reachable from start, same as an area with no attractions
		l.InfoContext(ctx, "No walking area around location", slog.String("start", start.String()))
		api.WriteJSONResponse(w, r, http.StatusOK, []types.Attraction{})
		return
	}
	if err != nil {
		h.writeIngestError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, attractions)
}

// IngestArea godoc
// @Summary      Ingest attractions inside a polygon
// @Tags         Attractions
// @Accept       json
// @Produce      json
// @Param        request body types.IngestAreaRequest true "GeoJSON polygon and categories"
// @Success      200 {array}  types.Attraction
// @Failure      400 {object} api.ErrorBody
// @Failure      500 {object} api.ErrorBody
// @Security     BearerAuth
// @Router       /attractions/ingest [post]
func (h *Handler) IngestArea(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AttractionHandler").Start(r.Context(), "IngestArea", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/attractions/ingest"),
	))
	defer span.End()
	l := h.logger.With(slog.String("handler", "IngestArea"))

	var req types.IngestAreaRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid ingestion request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	attractions, err := h.service.IngestArea(ctx, req.Polygon, req.Categories)
	if err != nil {
		h.writeIngestError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, attractions)
}

func (h *Handler) writeIngestError(w http.ResponseWriter, r *http.Request, l *slog.Logger, err error) {
	switch {
	case errors.Is(err, overpass.ErrInvalidPolygon), errors.Is(err, ErrInvalidDuration):
		l.WarnContext(r.Context(), "Rejected ingestion input", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
	default:
		l.ErrorContext(r.Context(), "Ingestion failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to ingest attractions")
	}
}

// GetAttraction godoc
// @Summary      Get one stored attraction
// @Tags         Attractions
// @Produce      json
// @Param        attractionID path int true "OSM element id"
// @Success      200 {object} types.Attraction
// @Failure      404 {object} api.ErrorBody
// @Security     BearerAuth
// @Router       /attractions/{attractionID} [get]
func (h *Handler) GetAttraction(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AttractionHandler").Start(r.Context(), "GetAttraction", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/attractions/{attractionID}"),
	))
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetAttraction"))

	id, err := strconv.ParseInt(chi.URLParam(r, "attractionID"), 10, 64)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid attraction id")
		return
	}

	a, err := h.service.GetAttraction(ctx, id)
	if errors.Is(err, ErrNotFound) {
		api.ErrorResponse(w, r, http.StatusNotFound, "Attraction not found")
		return
	}
	if err != nil {
		l.ErrorContext(ctx, "Failed to load attraction", slog.Int64("osm_id", id), slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve attraction")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, a)
}

// ArticleResponse carries a generated visitor article.
type ArticleResponse struct {
	Language types.Language `json:"language"`
	Article  string         `json:"article"`
}

// GenerateArticle godoc
// @Summary      Generate a visitor article from the attraction's encyclopedia entry
// @Tags         Attractions
// @Produce      json
// @Param        attractionID path  int    true  "OSM element id"
// @Param        language     query string false "en_US or ru_RU"
// @Success      200 {object} ArticleResponse
// @Failure      404 {object} api.ErrorBody
// @Security     BearerAuth
// @Router       /attractions/{attractionID}/article [post]
func (h *Handler) GenerateArticle(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AttractionHandler").Start(r.Context(), "GenerateArticle", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/attractions/{attractionID}/article"),
	))
	defer span.End()
	l := h.logger.With(slog.String("handler", "GenerateArticle"))

	id, err := strconv.ParseInt(chi.URLParam(r, "attractionID"), 10, 64)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid attraction id")
		return
	}
	lang, ok := types.ParseLanguage(r.URL.Query().Get("language"))
	if !ok {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Unsupported language")
		return
	}

	article, err := h.service.GenerateArticle(ctx, id, lang)
	switch {
	case errors.Is(err, ErrNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, "Attraction not found")
	case errors.Is(err, ErrNoArticle):
		api.ErrorResponse(w, r, http.StatusNotFound, "No encyclopedia article for this attraction")
	case err != nil:
		l.ErrorContext(ctx, "Failed to generate article", slog.Int64("osm_id", id), slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to generate article")
	default:
		api.WriteJSONResponse(w, r, http.StatusOK, ArticleResponse{Language: lang, Article: article})
	}
}
