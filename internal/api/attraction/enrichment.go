package attraction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelmetric "go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-walking-tours/app/observability/metrics"
	"github.com/FACorreiaa/go-walking-tours/internal/types"
)

// Stage enriches a whole ingestion batch in place. Only a returned error
// aborts the run; per-item provider failures are logged by the stage.
type Stage interface {
	Name() string
	Enrich(ctx context.Context, batch []types.Attraction) error
}

type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, at types.Coordinates) ([]types.Place, error)
}

type DescriptionGenerator interface {
	GenerateDescriptions(ctx context.Context, attractions []types.AttractionSummary) ([]types.GeneratedDescription, error)
}

type ImageResolver interface {
	ImageReferences(ctx context.Context, wikidataID string) ([]string, error)
}

// Pipeline runs its stages strictly in order. Each stage waits for all of
// its per-item work before the next one starts.
type Pipeline struct {
	stages []Stage
	logger *slog.Logger
}

func NewPipeline(logger *slog.Logger, stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages, logger: logger}
}

// NewEnrichmentPipeline wires the standard stage order: store merge, address,
// description, images.
func NewEnrichmentPipeline(repo Repository, geocoder ReverseGeocoder, describer DescriptionGenerator,
	images ImageResolver, concurrency int, logger *slog.Logger) *Pipeline {
	return NewPipeline(logger,
		&StoreMergeStage{repo: repo, logger: logger},
		&AddressStage{geocoder: geocoder, concurrency: concurrency, logger: logger},
		&DescriptionStage{describer: describer, logger: logger},
		&ImageStage{images: images, concurrency: concurrency, logger: logger},
	)
}

func (p *Pipeline) Run(ctx context.Context, batch []types.Attraction) error {
	ctx, span := otel.Tracer("EnrichmentPipeline").Start(ctx, "Run")
	defer span.End()
	span.SetAttributes(attribute.Int("batch.size", len(batch)))

	m := metrics.Get()
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Cancelled")
			return err
		}

		start := time.Now()
		err := stage.Enrich(ctx, batch)
		m.EnrichmentStageSeconds.Record(ctx, time.Since(start).Seconds(),
			otelmetric.WithAttributes(attribute.String("stage", stage.Name())))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Stage failed")
			return fmt.Errorf("enrichment stage %s failed: %w", stage.Name(), err)
		}
		p.logger.DebugContext(ctx, "Enrichment stage complete",
			slog.String("stage", stage.Name()), slog.Duration("took", time.Since(start)))
	}

	span.SetStatus(codes.Ok, "Batch enriched")
	return nil
}

// StoreMergeStage copies persisted content onto the batch with a single
// lookup. A failed lookup is fatal so stored descriptions are never replaced
// by regenerated ones.
type StoreMergeStage struct {
	repo   Repository
	logger *slog.Logger
}

func (s *StoreMergeStage) Name() string { return "store_merge" }

func (s *StoreMergeStage) Enrich(ctx context.Context, batch []types.Attraction) error {
	if len(batch) == 0 {
		return nil
	}
	ids := make([]int64, len(batch))
	for i := range batch {
		ids[i] = batch[i].ExternalID
	}

	stored, err := s.repo.FindByExternalIDs(ctx, ids)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to look up stored attractions", slog.Any("error", err))
		return err
	}

	byID := make(map[int64]types.Attraction, len(stored))
	for _, a := range stored {
		byID[a.ExternalID] = a
	}
	for i := range batch {
		existing, ok := byID[batch[i].ExternalID]
		if !ok {
			continue
		}
		if existing.Address != "" {
			batch[i].Address = existing.Address
		}
		if existing.Description != "" {
			batch[i].Description = existing.Description
		}
		if len(existing.Images) > 0 {
			batch[i].Images = append([]string(nil), existing.Images...)
		}
		batch[i].ChangeKind = types.ChangeUpdate
	}
	s.logger.DebugContext(ctx, "Merged stored attractions", slog.Int("matched", len(byID)), slog.Int("batch", len(batch)))
	return nil
}

// AddressStage reverse-geocodes attractions without an address and adopts
// the result only when the geocoder returns exactly one candidate.
type AddressStage struct {
	geocoder    ReverseGeocoder
	concurrency int
	logger      *slog.Logger
}

func (s *AddressStage) Name() string { return "address" }

func (s *AddressStage) Enrich(ctx context.Context, batch []types.Attraction) error {
	var g errgroup.Group
	g.SetLimit(limit(s.concurrency))

	for i := range batch {
		a := &batch[i]
		if a.Address != "" || a.Coordinates == nil {
			continue
		}
		at := *a.Coordinates
		g.Go(func() error {
			places, err := s.geocoder.ReverseGeocode(ctx, at)
			if err != nil {
				s.logger.WarnContext(ctx, "Reverse geocode failed",
					slog.Int64("osm_id", a.ExternalID), slog.Any("error", err))
				return nil
			}
			if len(places) != 1 || places[0].FullAddress == "" {
				s.logger.DebugContext(ctx, "Ambiguous reverse geocode result",
					slog.Int64("osm_id", a.ExternalID), slog.Int("candidates", len(places)))
				return nil
			}
			a.Address = places[0].FullAddress
			a.MarkDirty()
			return nil
		})
	}
	return g.Wait()
}

// DescriptionStage fills missing descriptions with one generation request for
// the whole batch. A failed request leaves every description unset.
type DescriptionStage struct {
	describer DescriptionGenerator
	logger    *slog.Logger
}

func (s *DescriptionStage) Name() string { return "description" }

func (s *DescriptionStage) Enrich(ctx context.Context, batch []types.Attraction) error {
	pending := make(map[int64][]int)
	var summaries []types.AttractionSummary
	for i := range batch {
		if batch[i].Description != "" {
			continue
		}
		id := batch[i].ExternalID
		if _, seen := pending[id]; !seen {
			summaries = append(summaries, types.SummaryOf(batch[i]))
		}
		pending[id] = append(pending[id], i)
	}
	if len(summaries) == 0 {
		return nil
	}

	generated, err := s.describer.GenerateDescriptions(ctx, summaries)
	if err != nil {
		s.logger.WarnContext(ctx, "Description generation failed, leaving descriptions unset",
			slog.Int("requested", len(summaries)), slog.Any("error", err))
		return nil
	}

	matched := 0
	for _, d := range generated {
		for _, i := range pending[d.ExternalID] {
			if batch[i].Description != "" {
				continue
			}
			batch[i].Description = d.Description
			batch[i].MarkDirty()
			matched++
		}
	}
	s.logger.DebugContext(ctx, "Descriptions generated",
		slog.Int("requested", len(summaries)), slog.Int("matched", matched))
	return nil
}

// ImageStage resolves knowledge-base image statements for attractions that
// have none yet.
type ImageStage struct {
	images      ImageResolver
	concurrency int
	logger      *slog.Logger
}

func (s *ImageStage) Name() string { return "images" }

func (s *ImageStage) Enrich(ctx context.Context, batch []types.Attraction) error {
	var g errgroup.Group
	g.SetLimit(limit(s.concurrency))

	for i := range batch {
		a := &batch[i]
		if len(a.Images) > 0 || a.Wikidata == "" {
			continue
		}
		id := a.Wikidata
		g.Go(func() error {
			refs, err := s.images.ImageReferences(ctx, id)
			if err != nil {
				s.logger.WarnContext(ctx, "Image lookup failed",
					slog.Int64("osm_id", a.ExternalID), slog.String("wikidata", id), slog.Any("error", err))
				return nil
			}
			for _, ref := range refs {
				a.Images = append(a.Images, ref)
				a.MarkDirty()
			}
			return nil
		})
	}
	return g.Wait()
}

func limit(concurrency int) int {
	if concurrency <= 0 {
		return 1
	}
	return concurrency
}
