package itinerary

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-walking-tours/internal/types"
)

const (
	maxTourStops      = 10
	suggestionWorkers = 3
)

type TourSuggester interface {
	SuggestTours(ctx context.Context, attractions []types.AttractionSummary) ([]types.TourSuggestion, error)
}

// SuggestionPipeline groups a batch into themed tours and builds one
// itinerary per tour.
type SuggestionPipeline struct {
	suggester TourSuggester
	builder   *Builder
	logger    *slog.Logger
}

func NewSuggestionPipeline(suggester TourSuggester, builder *Builder, logger *slog.Logger) *SuggestionPipeline {
	return &SuggestionPipeline{suggester: suggester, builder: builder, logger: logger}
}

// Suggest never fails: a failed or malformed grouping yields no itineraries,
// and a tour whose route cannot be built is skipped.
func (p *SuggestionPipeline) Suggest(ctx context.Context, batch []types.Attraction, start *types.Coordinates) []types.Itinerary {
	ctx, span := otel.Tracer("SuggestionPipeline").Start(ctx, "Suggest")
	defer span.End()

	placed := make([]types.Attraction, 0, len(batch))
	for _, a := range batch {
		if a.Coordinates != nil {
			placed = append(placed, a)
		}
	}
	span.SetAttributes(attribute.Int("attractions.count", len(placed)))
	if len(placed) < 2 {
		return []types.Itinerary{}
	}

	summaries := make([]types.AttractionSummary, len(placed))
	for i, a := range placed {
		summaries[i] = types.SummaryOf(a)
	}

	tours, err := p.suggester.SuggestTours(ctx, summaries)
	if err != nil {
		p.logger.WarnContext(ctx, "Tour suggestion failed, returning no itineraries", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Suggestion failed")
		return []types.Itinerary{}
	}

	built := make([]*types.Itinerary, len(tours))
	var g errgroup.Group
	g.SetLimit(suggestionWorkers)
	for i, tour := range tours {
		members := tourMembers(placed, tour)
		if len(members) < 2 {
			continue
		}
		g.Go(func() error {
			it, err := p.builder.Build(ctx, members, start)
			if err != nil {
				p.logger.WarnContext(ctx, "Skipping tour without a route",
					slog.String("title", tour.Title), slog.Any("error", err))
				return nil
			}
			if it == nil {
				return nil
			}
			it.Title = tour.Title
			it.Description = strings.TrimSpace(tour.Description)
			built[i] = it
			return nil
		})
	}
	_ = g.Wait()

	out := make([]types.Itinerary, 0, len(built))
	for _, it := range built {
		if it != nil {
			out = append(out, *it)
		}
	}
	span.SetAttributes(attribute.Int("itineraries.count", len(out)))
	span.SetStatus(codes.Ok, "Suggestions built")
	return out
}

// tourMembers filters the batch to the tour's ids, keeping batch order and at
// most maxTourStops attractions.
func tourMembers(batch []types.Attraction, tour types.TourSuggestion) []types.Attraction {
	wanted := make(map[int64]struct{}, len(tour.Attractions))
	for _, m := range tour.Attractions {
		wanted[m.ExternalID] = struct{}{}
	}
	var members []types.Attraction
	for _, a := range batch {
		if _, ok := wanted[a.ExternalID]; !ok {
			continue
		}
		delete(wanted, a.ExternalID)
		members = append(members, a)
		if len(members) == maxTourStops {
			break
		}
	}
	return members
}
