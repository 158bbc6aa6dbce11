package itinerary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-walking-tours/internal/api/attraction"
	"github.com/FACorreiaa/go-walking-tours/internal/types"
)

var (
	ErrEmptySelection   = errors.New("at least one attraction id is required")
	ErrCannotBuild      = errors.New("no itinerary can be built from the selection")
	ErrInvalidItinerary = errors.New("itinerary must contain at least one item")
	ErrItemNotFound     = errors.New("attraction is not part of the itinerary")
	ErrNoNarration      = errors.New("item has no narration in the requested language")
)

// AttractionSource is the slice of the attraction service itineraries need.
type AttractionSource interface {
	GetAttractionsByIDs(ctx context.Context, ids []int64) ([]types.Attraction, error)
	GetAttraction(ctx context.Context, id int64) (*types.Attraction, error)
	IngestByLocation(ctx context.Context, start types.Coordinates, minutes int) ([]types.Attraction, error)
	WikipediaArticle(ctx context.Context, id int64) (string, error)
	ResolveLocation(ctx context.Context, coords, query string) (types.Coordinates, error)
}

type Narrator interface {
	Narrate(ctx context.Context, req types.NarrationRequest) (string, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text string, lang types.Language) (string, error)
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Create(ctx context.Context, userID string, req types.CreateItineraryRequest) (uuid.UUID, error)
	Store(ctx context.Context, userID string, it types.Itinerary) (uuid.UUID, error)
	Get(ctx context.Context, userID string, id uuid.UUID) (*types.Itinerary, error)
	List(ctx context.Context, userID string) ([]types.Itinerary, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) error
	Suggest(ctx context.Context, coords, query string, minutes int) ([]types.Itinerary, error)
	GenerateContent(ctx context.Context, userID string, id uuid.UUID, attractionID int64, lang types.Language) (string, error)
	GenerateAudio(ctx context.Context, userID string, id uuid.UUID, attractionID int64, lang types.Language) (string, error)
}

type Dependencies struct {
	Repository  Repository
	Attractions AttractionSource
	Builder     *Builder
	Suggestions *SuggestionPipeline
	Narrator    Narrator
	Speech      Synthesizer
}

type ServiceImpl struct {
	logger *slog.Logger
	deps   Dependencies
}

func NewServiceImpl(deps Dependencies, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		deps:   deps,
	}
}

// Create builds an itinerary from stored attractions and saves it for
// userID. Ids without a stored, placed attraction are ignored.
func (s *ServiceImpl) Create(ctx context.Context, userID string, req types.CreateItineraryRequest) (uuid.UUID, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Create", trace.WithAttributes(
		semconv.EnduserIDKey.String(userID),
		attribute.Int("attractions.requested", len(req.AttractionIDs)),
	))
	defer span.End()

	if len(req.AttractionIDs) == 0 {
		return uuid.Nil, ErrEmptySelection
	}

	var start *types.Coordinates
	if req.StartPointCoords != "" {
		c, err := s.deps.Attractions.ResolveLocation(ctx, req.StartPointCoords, "")
		if err != nil {
			return uuid.Nil, err
		}
		start = &c
	}

	stored, err := s.deps.Attractions.GetAttractionsByIDs(ctx, req.AttractionIDs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Attraction lookup failed")
		return uuid.Nil, fmt.Errorf("failed to load attractions: %w", err)
	}
	placed := make([]types.Attraction, 0, len(stored))
	for _, a := range stored {
		if a.Coordinates != nil {
			placed = append(placed, a)
		}
	}

	it, err := s.deps.Builder.Build(ctx, placed, start)
	if err != nil {
		span.RecordError(err)
		s.logger.WarnContext(ctx, "Itinerary build failed", slog.Any("error", err))
		return uuid.Nil, fmt.Errorf("%w: %v", ErrCannotBuild, err)
	}
	if it == nil {
		return uuid.Nil, ErrCannotBuild
	}
	if title := strings.TrimSpace(req.Title); title != "" {
		it.Title = title
	}
	it.UserID = userID

	id, err := s.deps.Repository.Save(ctx, *it)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Save failed")
		return uuid.Nil, err
	}
	s.logger.InfoContext(ctx, "Itinerary created", slog.String("id", id.String()), slog.Int("items", len(it.Items)))
	span.SetStatus(codes.Ok, "Itinerary created")
	return id, nil
}

// Store saves a client-supplied itinerary. Items are renumbered by their
// given sequence so the stored order is contiguous.
func (s *ServiceImpl) Store(ctx context.Context, userID string, it types.Itinerary) (uuid.UUID, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Store", trace.WithAttributes(
		semconv.EnduserIDKey.String(userID),
	))
	defer span.End()

	if len(it.Items) == 0 {
		return uuid.Nil, ErrInvalidItinerary
	}
	items := append([]types.ItineraryItem(nil), it.Items...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Sequence < items[j].Sequence })
	renumber(items)
	it.Items = items
	it.UserID = userID

	id, err := s.deps.Repository.Save(ctx, it)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Save failed")
		return uuid.Nil, err
	}
	span.SetStatus(codes.Ok, "Itinerary stored")
	return id, nil
}

// Get returns the itinerary only to its owner; anyone else gets
// ErrItineraryNotFound.
func (s *ServiceImpl) Get(ctx context.Context, userID string, id uuid.UUID) (*types.Itinerary, error) {
	it, err := s.deps.Repository.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if it.UserID != userID {
		return nil, ErrItineraryNotFound
	}
	return it, nil
}

func (s *ServiceImpl) List(ctx context.Context, userID string) ([]types.Itinerary, error) {
	return s.deps.Repository.ListByUser(ctx, userID)
}

func (s *ServiceImpl) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	if err := s.deps.Repository.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Itinerary deleted", slog.String("id", id.String()))
	return nil
}

// Suggest ingests the walking area around a location and groups it into
// themed itineraries starting there. Nothing is saved.
func (s *ServiceImpl) Suggest(ctx context.Context, coords, query string, minutes int) ([]types.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Suggest", trace.WithAttributes(
		attribute.Int("minutes", minutes),
	))
	defer span.End()

	start, err := s.deps.Attractions.ResolveLocation(ctx, coords, query)
	if err != nil {
		return nil, err
	}
	batch, err := s.deps.Attractions.IngestByLocation(ctx, start, minutes)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Ingestion failed")
		return nil, err
	}

	suggestions := s.deps.Suggestions.Suggest(ctx, batch, &start)
	span.SetAttributes(attribute.Int("itineraries.count", len(suggestions)))
	span.SetStatus(codes.Ok, "Suggestions built")
	return suggestions, nil
}

// GenerateContent writes the spoken narration for one stop and stores it on
// the item. Existing narration in lang is returned as is.
func (s *ServiceImpl) GenerateContent(ctx context.Context, userID string, id uuid.UUID, attractionID int64, lang types.Language) (string, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "GenerateContent", trace.WithAttributes(
		attribute.String("itinerary.id", id.String()),
		attribute.Int64("attraction.id", attractionID),
		attribute.String("language", string(lang)),
	))
	defer span.End()

	it, item, err := s.item(ctx, userID, id, attractionID)
	if err != nil {
		return "", err
	}
	if text := item.Text[lang]; text != "" {
		return text, nil
	}

	subject, err := s.subject(ctx, *item)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	article, err := s.deps.Attractions.WikipediaArticle(ctx, attractionID)
	switch {
	case errors.Is(err, attraction.ErrNoArticle), errors.Is(err, attraction.ErrNotFound):
		s.logger.InfoContext(ctx, "Narrating without encyclopedia article",
			slog.Int64("osm_id", attractionID), slog.Any("reason", err))
		article = ""
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, "Article lookup failed")
		return "", err
	}

	stops := make([]string, len(it.Items))
	for i, stop := range it.Items {
		stops[i] = stop.Name
	}

	text, err := s.deps.Narrator.Narrate(ctx, types.NarrationRequest{
		Attraction:      subject,
		Article:         article,
		Language:        lang,
		TourTitle:       it.Title,
		TourDescription: it.Description,
		Stops:           stops,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Narration failed")
		return "", fmt.Errorf("failed to generate narration: %w", err)
	}

	if err := s.deps.Repository.SetItemText(ctx, id, attractionID, lang, text); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Save failed")
		return "", err
	}
	span.SetStatus(codes.Ok, "Narration generated")
	return text, nil
}

// GenerateAudio speaks the item's narration in lang and stores the encoded
// audio on the item.
func (s *ServiceImpl) GenerateAudio(ctx context.Context, userID string, id uuid.UUID, attractionID int64, lang types.Language) (string, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "GenerateAudio", trace.WithAttributes(
		attribute.String("itinerary.id", id.String()),
		attribute.Int64("attraction.id", attractionID),
		attribute.String("language", string(lang)),
	))
	defer span.End()

	_, item, err := s.item(ctx, userID, id, attractionID)
	if err != nil {
		return "", err
	}
	if audio := item.Audio[lang]; audio != "" {
		return audio, nil
	}
	text := item.Text[lang]
	if text == "" {
		return "", ErrNoNarration
	}

	audio, err := s.deps.Speech.Synthesize(ctx, text, lang)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Synthesis failed")
		return "", fmt.Errorf("failed to synthesize narration: %w", err)
	}
	if err := s.deps.Repository.SetItemAudio(ctx, id, attractionID, lang, audio); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Save failed")
		return "", err
	}
	span.SetStatus(codes.Ok, "Audio generated")
	return audio, nil
}

func (s *ServiceImpl) item(ctx context.Context, userID string, id uuid.UUID, attractionID int64) (*types.Itinerary, *types.ItineraryItem, error) {
	it, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	item := it.Item(attractionID)
	if item == nil {
		return nil, nil, ErrItemNotFound
	}
	return it, item, nil
}

// subject prefers the stored attraction and falls back to the copy kept on
// the item, which is all a client-stored itinerary may have.
func (s *ServiceImpl) subject(ctx context.Context, item types.ItineraryItem) (types.Attraction, error) {
	a, err := s.deps.Attractions.GetAttraction(ctx, item.AttractionID)
	if err == nil {
		return *a, nil
	}
	if !errors.Is(err, attraction.ErrNotFound) {
		return types.Attraction{}, err
	}
	coords := item.Coordinates
	return types.Attraction{
		ExternalID:  item.AttractionID,
		Name:        item.Name,
		Coordinates: &coords,
		Description: item.Description,
		Images:      item.Images,
	}, nil
}
