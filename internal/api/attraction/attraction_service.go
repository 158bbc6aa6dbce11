package attraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-walking-tours/app/observability/metrics"
	"github.com/FACorreiaa/go-walking-tours/internal/api/overpass"
	"github.com/FACorreiaa/go-walking-tours/internal/types"
)

const maxIsochroneMinutes = 60

var (
	ErrInvalidDuration = fmt.Errorf("duration must be between 1 and %d minutes", maxIsochroneMinutes)
	ErrNoArticle       = errors.New("attraction has no encyclopedia article")
	ErrUnknownLocation = errors.New("location could not be resolved")
)

type AreaSearcher interface {
	Search(ctx context.Context, polygon types.Polygon, categories []string) ([]overpass.Element, error)
}

type IsochroneProvider interface {
	Isochrone(ctx context.Context, start types.Coordinates, minutes int) (types.Polygon, error)
}

type Geocoder interface {
	Geocode(ctx context.Context, query string) ([]types.Place, error)
}

type ArticleSource interface {
	Article(ctx context.Context, tag string) (string, error)
}

type ArticleWriter interface {
	WriteArticle(ctx context.Context, article string, lang types.Language) (string, error)
}

// Enricher runs the enrichment stages over an ingestion batch.
type Enricher interface {
	Run(ctx context.Context, batch []types.Attraction) error
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	IngestArea(ctx context.Context, polygon types.Polygon, categories []string) ([]types.Attraction, error)
	IngestByLocation(ctx context.Context, start types.Coordinates, minutes int) ([]types.Attraction, error)
	GetAttractions(ctx context.Context, filter types.AttractionFilter) ([]types.Attraction, error)
	GetAttractionsByIDs(ctx context.Context, ids []int64) ([]types.Attraction, error)
	GetAttraction(ctx context.Context, id int64) (*types.Attraction, error)
	WikipediaArticle(ctx context.Context, id int64) (string, error)
	GenerateArticle(ctx context.Context, id int64, lang types.Language) (string, error)
	ResolveLocation(ctx context.Context, coords, query string) (types.Coordinates, error)
}

// Dependencies groups the collaborators of the ingestion service.
type Dependencies struct {
	Repository Repository
	Searcher   AreaSearcher
	Isochrones IsochroneProvider
	Geocoder   Geocoder
	Enricher   Enricher
	Articles   ArticleSource
	Writer     ArticleWriter
}

type ServiceImpl struct {
	deps              Dependencies
	defaultCategories []string
	maxAttractions    int
	logger            *slog.Logger
}

func NewServiceImpl(deps Dependencies, defaultCategories []string, maxAttractions int, logger *slog.Logger) *ServiceImpl {
	if len(defaultCategories) == 0 {
		defaultCategories = []string{overpass.AllCategories}
	}
	return &ServiceImpl{
		deps:              deps,
		defaultCategories: defaultCategories,
		maxAttractions:    maxAttractions,
		logger:            logger,
	}
}

// IngestArea runs search, normalization, enrichment and persistence for one
// polygon and returns the enriched batch.
func (s *ServiceImpl) IngestArea(ctx context.Context, polygon types.Polygon, categories []string) ([]types.Attraction, error) {
	ctx, span := otel.Tracer("AttractionService").Start(ctx, "IngestArea", trace.WithAttributes(
		attribute.StringSlice("categories", categories),
	))
	defer span.End()

	if len(categories) == 0 {
		categories = s.defaultCategories
	}

	elements, err := s.deps.Searcher.Search(ctx, polygon, categories)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Search failed")
		return nil, err
	}

	batch := Normalize(elements)
	if s.maxAttractions > 0 && len(batch) > s.maxAttractions {
		s.logger.InfoContext(ctx, "Truncating ingestion batch",
			slog.Int("found", len(batch)), slog.Int("max", s.maxAttractions))
		batch = batch[:s.maxAttractions]
	}
	metrics.Get().AttractionsIngestedTotal.Add(ctx, int64(len(batch)))
	span.SetAttributes(attribute.Int("batch.size", len(batch)))

	if len(batch) == 0 {
		span.SetStatus(codes.Ok, "Nothing found")
		return batch, nil
	}

	if err := s.deps.Enricher.Run(ctx, batch); err != nil {
		s.logger.ErrorContext(ctx, "Enrichment aborted", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Enrichment failed")
		return nil, err
	}

	persisted := s.Persist(ctx, batch)
	s.logger.InfoContext(ctx, "Ingestion complete",
		slog.Int("attractions", len(batch)), slog.Int("persisted", persisted))
	span.SetAttributes(attribute.Int("persisted", persisted))
	span.SetStatus(codes.Ok, "Area ingested")
	return batch, nil
}

// Persist upserts every dirty attraction. A failing record is logged and
// skipped. It returns the number of records written.
func (s *ServiceImpl) Persist(ctx context.Context, batch []types.Attraction) int {
	m := metrics.Get()
	written := 0
	for i := range batch {
		a := &batch[i]
		if !a.IsDirty() {
			continue
		}
		if _, err := s.deps.Repository.Upsert(ctx, *a); err != nil {
			m.AttractionUpsertErrorTotal.Add(ctx, 1)
			s.logger.WarnContext(ctx, "Skipping attraction that failed to persist",
				slog.Int64("osm_id", a.ExternalID), slog.Any("error", err))
			continue
		}
		written++
	}
	m.AttractionsPersistedTotal.Add(ctx, int64(written))
	return written
}

// IngestByLocation ingests everything reachable on foot from start within
// minutes.
func (s *ServiceImpl) IngestByLocation(ctx context.Context, start types.Coordinates, minutes int) ([]types.Attraction, error) {
	ctx, span := otel.Tracer("AttractionService").Start(ctx, "IngestByLocation", trace.WithAttributes(
		attribute.String("start", start.String()),
		attribute.Int("minutes", minutes),
	))
	defer span.End()

	if minutes < 1 || minutes > maxIsochroneMinutes {
		return nil, ErrInvalidDuration
	}

	polygon, err := s.deps.Isochrones.Isochrone(ctx, start, minutes)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Isochrone failed")
		return nil, fmt.Errorf("failed to compute walking area: %w", err)
	}

	return s.IngestArea(ctx, polygon, nil)
}

func (s *ServiceImpl) GetAttractions(ctx context.Context, filter types.AttractionFilter) ([]types.Attraction, error) {
	attractions, err := s.deps.Repository.FindAll(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list attractions", slog.Any("error", err))
		return nil, err
	}
	return attractions, nil
}

// GetAttractionsByIDs returns stored attractions in the order of ids. Unknown
// ids are skipped.
func (s *ServiceImpl) GetAttractionsByIDs(ctx context.Context, ids []int64) ([]types.Attraction, error) {
	stored, err := s.deps.Repository.FindByExternalIDs(ctx, ids)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load attractions", slog.Any("error", err))
		return nil, err
	}
	byID := make(map[int64]types.Attraction, len(stored))
	for _, a := range stored {
		byID[a.ExternalID] = a
	}

	out := make([]types.Attraction, 0, len(stored))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		a, ok := byID[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, a)
	}
	return out, nil
}

func (s *ServiceImpl) GetAttraction(ctx context.Context, id int64) (*types.Attraction, error) {
	return s.deps.Repository.FindByExternalID(ctx, id)
}

// WikipediaArticle returns the attraction's stored article text, fetching and
// storing it on first use.
func (s *ServiceImpl) WikipediaArticle(ctx context.Context, id int64) (string, error) {
	ctx, span := otel.Tracer("AttractionService").Start(ctx, "WikipediaArticle", trace.WithAttributes(
		attribute.Int64("attraction.id", id),
	))
	defer span.End()

	a, err := s.deps.Repository.FindByExternalID(ctx, id)
	if err != nil {
		return "", err
	}
	if a.WikipediaContent != "" {
		return a.WikipediaContent, nil
	}
	if a.Wikipedia == "" {
		return "", ErrNoArticle
	}

	text, err := s.deps.Articles.Article(ctx, a.Wikipedia)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Article fetch failed")
		return "", fmt.Errorf("%w: %v", ErrNoArticle, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoArticle
	}

	if err := s.deps.Repository.UpdateWikipediaContent(ctx, id, text); err != nil {
		s.logger.WarnContext(ctx, "Failed to store wikipedia content",
			slog.Int64("osm_id", id), slog.Any("error", err))
	}
	span.SetStatus(codes.Ok, "Article loaded")
	return text, nil
}

// GenerateArticle writes a visitor article from the encyclopedia text.
func (s *ServiceImpl) GenerateArticle(ctx context.Context, id int64, lang types.Language) (string, error) {
	source, err := s.WikipediaArticle(ctx, id)
	if err != nil {
		return "", err
	}
	article, err := s.deps.Writer.WriteArticle(ctx, source, lang)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to generate article",
			slog.Int64("osm_id", id), slog.Any("error", err))
		return "", err
	}
	return article, nil
}

// ResolveLocation accepts either "lon,lat" coordinates or a free-text query
// geocoded to its first candidate.
func (s *ServiceImpl) ResolveLocation(ctx context.Context, coords, query string) (types.Coordinates, error) {
	if coords != "" {
		c, err := types.ParseCoordinates(coords)
		if err != nil {
			return types.Coordinates{}, fmt.Errorf("%w: %v", ErrUnknownLocation, err)
		}
		return c, nil
	}
	if strings.TrimSpace(query) == "" {
		return types.Coordinates{}, ErrUnknownLocation
	}

	places, err := s.deps.Geocoder.Geocode(ctx, query)
	if err != nil {
		s.logger.WarnContext(ctx, "Forward geocode failed", slog.String("query", query), slog.Any("error", err))
		return types.Coordinates{}, fmt.Errorf("%w: %v", ErrUnknownLocation, err)
	}
	for _, p := range places {
		if p.Coordinates != nil {
			return *p.Coordinates, nil
		}
	}
	return types.Coordinates{}, ErrUnknownLocation
}
