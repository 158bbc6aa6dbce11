package itinerary

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-walking-tours/internal/api"
	"github.com/FACorreiaa/go-walking-tours/internal/api/attraction"
	"github.com/FACorreiaa/go-walking-tours/internal/api/auth"
	"github.com/FACorreiaa/go-walking-tours/internal/api/mapbox"
	"github.com/FACorreiaa/go-walking-tours/internal/types"
)

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

// ContentResponse carries one stop's narration.
type ContentResponse struct {
	Language types.Language `json:"language"`
	Text     string         `json:"text"`
}

func (h *Handler) start(r *http.Request, name, route string) (context.Context, trace.Span, *slog.Logger) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), name, trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String(route),
	))
	if userID, ok := auth.GetUserIDFromContext(ctx); ok {
		span.SetAttributes(semconv.EnduserIDKey.String(userID))
	}
	return ctx, span, h.logger.With(slog.String("handler", name))
}

// CreateItinerary godoc
// @Summary      Build and save an itinerary from stored attractions
// @Tags         Itineraries
// @Accept       json
// @Produce      json
// @Param        request body types.CreateItineraryRequest true "Attraction ids, optional start point and title"
// @Success      201 {object} types.CreatedResponse
// @Failure      400 {object} api.ErrorBody
// @Failure      422 {object} api.ErrorBody
// @Failure      500 {object} api.ErrorBody
// @Security     BearerAuth
// @Router       /itineraries [post]
func (h *Handler) CreateItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span, l := h.start(r, "CreateItinerary", "/itineraries")
	defer span.End()
	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req types.CreateItineraryRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.service.Create(ctx, userID, req)
	switch {
	case errors.Is(err, ErrEmptySelection), errors.Is(err, attraction.ErrUnknownLocation):
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrCannotBuild):
		l.WarnContext(ctx, "Itinerary could not be built", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusUnprocessableEntity, "No itinerary can be built from these attractions")
	case err != nil:
		l.ErrorContext(ctx, "Failed to create itinerary", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create itinerary")
	default:
		api.WriteJSONResponse(w, r, http.StatusCreated, types.CreatedResponse{ID: id})
	}
}

// StoreItinerary godoc
// @Summary      Save a client-supplied itinerary
// @Tags         Itineraries
// @Accept       json
// @Produce      json
// @Param        request body types.StoreItineraryRequest true "Itinerary to store"
// @Success      201 {object} types.CreatedResponse
// @Failure      400 {object} api.ErrorBody
// @Failure      500 {object} api.ErrorBody
// @Security     BearerAuth
// @Router       /itineraries/store [post]
func (h *Handler) StoreItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span, l := h.start(r, "StoreItinerary", "/itineraries/store")
	defer span.End()
	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req types.StoreItineraryRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.service.Store(ctx, userID, req.Itinerary)
	switch {
	case errors.Is(err, ErrInvalidItinerary):
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
	case err != nil:
		l.ErrorContext(ctx, "Failed to store itinerary", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to store itinerary")
	default:
		api.WriteJSONResponse(w, r, http.StatusCreated, types.CreatedResponse{ID: id})
	}
}

// ListItineraries godoc
// @Summary      List the caller's itineraries
// @Tags         Itineraries
// @Produce      json
// @Success      200 {array}  types.Itinerary
// @Failure      500 {object} api.ErrorBody
// @Security     BearerAuth
// @Router       /itineraries [get]
func (h *Handler) ListItineraries(w http.ResponseWriter, r *http.Request) {
	ctx, span, l := h.start(r, "ListItineraries", "/itineraries")
	defer span.End()
	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	itineraries, err := h.service.List(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list itineraries", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve itineraries")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, itineraries)
}

// SuggestItineraries godoc
// @Summary      Suggest themed walking tours around a location
// @Tags         Itineraries
// @Produce      json
// @Param        locationCoords query string false "lon,lat"
// @Param        locationQuery  query string false "Free-text place, used when locationCoords is absent"
// @Param        duration       query int    true  "Walking time in minutes"
// @Success      200 {array}  types.Itinerary
// @Failure      400 {object} api.ErrorBody
// @Failure      500 {object} api.ErrorBody
// @Security     BearerAuth
// @Router       /itineraries/suggested [get]
func (h *Handler) SuggestItineraries(w http.ResponseWriter, r *http.Request) {
	ctx, span, l := h.start(r, "SuggestItineraries", "/itineraries/suggested")
	defer span.End()

	q := r.URL.Query()
	minutes, err := strconv.Atoi(q.Get("duration"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "duration must be an integer number of minutes")
		return
	}

	suggestions, err := h.service.Suggest(ctx, q.Get("locationCoords"), q.Get("locationQuery"), minutes)
	switch {
	case errors.Is(err, attraction.ErrUnknownLocation), errors.Is(err, attraction.ErrInvalidDuration):
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, mapbox.ErrNoIsochrone):
		l.InfoContext(ctx, "No walking area around location")
		api.WriteJSONResponse(w, r, http.StatusOK, []types.Itinerary{})
	case err != nil:
		l.ErrorContext(ctx, "Failed to suggest itineraries", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to suggest itineraries")
	default:
		api.WriteJSONResponse(w, r, http.StatusOK, suggestions)
	}
}

// GetItinerary godoc
// @Summary      Get one of the caller's itineraries
// @Tags         Itineraries
// @Produce      json
// @Param        itineraryID path string true "Itinerary id"
// @Success      200 {object} types.Itinerary
// @Failure      404 {object} api.ErrorBody
// @Security     BearerAuth
// @Router       /itineraries/{itineraryID} [get]
func (h *Handler) GetItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span, l := h.start(r, "GetItinerary", "/itineraries/{itineraryID}")
	defer span.End()
	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "itineraryID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid itinerary id")
		return
	}

	it, err := h.service.Get(ctx, userID, id)
	if errors.Is(err, ErrItineraryNotFound) {
		api.ErrorResponse(w, r, http.StatusNotFound, "Itinerary not found")
		return
	}
	if err != nil {
		l.ErrorContext(ctx, "Failed to load itinerary", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve itinerary")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, it)
}

// DeleteItinerary godoc
// @Summary      Delete one of the caller's itineraries
// @Tags         Itineraries
// @Param        itineraryID path string true "Itinerary id"
// @Success      204
// @Failure      404 {object} api.ErrorBody
// @Security     BearerAuth
// @Router       /itineraries/{itineraryID} [delete]
func (h *Handler) DeleteItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span, l := h.start(r, "DeleteItinerary", "/itineraries/{itineraryID}")
	defer span.End()
	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "itineraryID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid itinerary id")
		return
	}

	err = h.service.Delete(ctx, userID, id)
	if errors.Is(err, ErrItineraryNotFound) {
		api.ErrorResponse(w, r, http.StatusNotFound, "Itinerary not found")
		return
	}
	if err != nil {
		l.ErrorContext(ctx, "Failed to delete itinerary", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete itinerary")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GenerateContent godoc
// @Summary      Generate the spoken narration for one stop
// @Tags         Itineraries
// @Produce      json
// @Param        itineraryID  path  string true  "Itinerary id"
// @Param        attractionID path  int    true  "OSM element id of the stop"
// @Param        language     query string false "en_US or ru_RU"
// @Success      200 {object} ContentResponse
// @Failure      404 {object} api.ErrorBody
// @Failure      500 {object} api.ErrorBody
// @Security     BearerAuth
// @Router       /itineraries/{itineraryID}/items/{attractionID}/content [post]
func (h *Handler) GenerateContent(w http.ResponseWriter, r *http.Request) {
	ctx, span, l := h.start(r, "GenerateContent", "/itineraries/{itineraryID}/items/{attractionID}/content")
	defer span.End()
	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	id, attractionID, lang, ok := itemParams(w, r)
	if !ok {
		return
	}

	text, err := h.service.GenerateContent(ctx, userID, id, attractionID, lang)
	if status, msg := itemErrorStatus(err); status != 0 {
		api.ErrorResponse(w, r, status, msg)
		return
	}
	if err != nil {
		l.ErrorContext(ctx, "Failed to generate narration", slog.Int64("osm_id", attractionID), slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to generate narration")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, ContentResponse{Language: lang, Text: text})
}

// GenerateAudio godoc
// @Summary      Synthesize the narration of one stop
// @Tags         Itineraries
// @Produce      json
// @Param        itineraryID  path  string true  "Itinerary id"
// @Param        attractionID path  int    true  "OSM element id of the stop"
// @Param        language     query string false "en_US or ru_RU"
// @Success      200 {object} types.AudioResponse
// @Failure      404 {object} api.ErrorBody
// @Failure      409 {object} api.ErrorBody
// @Failure      500 {object} api.ErrorBody
// @Security     BearerAuth
// @Router       /itineraries/{itineraryID}/items/{attractionID}/audio [post]
func (h *Handler) GenerateAudio(w http.ResponseWriter, r *http.Request) {
	ctx, span, l := h.start(r, "GenerateAudio", "/itineraries/{itineraryID}/items/{attractionID}/audio")
	defer span.End()
	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	id, attractionID, lang, ok := itemParams(w, r)
	if !ok {
		return
	}

	audio, err := h.service.GenerateAudio(ctx, userID, id, attractionID, lang)
	if status, msg := itemErrorStatus(err); status != 0 {
		api.ErrorResponse(w, r, status, msg)
		return
	}
	if err != nil {
		l.ErrorContext(ctx, "Failed to synthesize audio", slog.Int64("osm_id", attractionID), slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to synthesize audio")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.AudioResponse{Language: lang, Audio: audio})
}

func itemParams(w http.ResponseWriter, r *http.Request) (uuid.UUID, int64, types.Language, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "itineraryID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid itinerary id")
		return uuid.Nil, 0, "", false
	}
	attractionID, err := strconv.ParseInt(chi.URLParam(r, "attractionID"), 10, 64)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid attraction id")
		return uuid.Nil, 0, "", false
	}
	lang, ok := types.ParseLanguage(r.URL.Query().Get("language"))
	if !ok {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Unsupported language")
		return uuid.Nil, 0, "", false
	}
	return id, attractionID, lang, true
}

// itemErrorStatus maps expected item errors to a response; 0 means err is
// nil or unexpected.
func itemErrorStatus(err error) (int, string) {
	switch {
	case err == nil:
		return 0, ""
	case errors.Is(err, ErrItineraryNotFound):
		return http.StatusNotFound, "Itinerary not found"
	case errors.Is(err, ErrItemNotFound):
		return http.StatusNotFound, "Attraction is not part of this itinerary"
	case errors.Is(err, ErrNoNarration):
		return http.StatusConflict, "Generate the narration before requesting audio"
	default:
		return 0, ""
	}
}
