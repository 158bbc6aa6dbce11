package attraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelmetric "go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/go-walking-tours/app/db"
	"github.com/FACorreiaa/go-walking-tours/app/observability/metrics"
	"github.com/FACorreiaa/go-walking-tours/internal/types"
)

var ErrNotFound = errors.New("attraction not found")

var _ Repository = (*RepositoryImpl)(nil)

// Repository is the keyed attraction store. Upsert is idempotent per
// external id.
type Repository interface {
	FindByExternalIDs(ctx context.Context, ids []int64) ([]types.Attraction, error)
	FindByExternalID(ctx context.Context, id int64) (*types.Attraction, error)
	FindAll(ctx context.Context, filter types.AttractionFilter) ([]types.Attraction, error)
	Upsert(ctx context.Context, a types.Attraction) (inserted bool, err error)
	UpdateWikipediaContent(ctx context.Context, id int64, content string) error
}

type RepositoryImpl struct {
	logger *slog.Logger
	db     database.Querier
}

func NewRepository(db database.Querier, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		db:     db,
	}
}

const attractionColumns = `external_id, name, lon IS NOT NULL AS has_coords, COALESCE(lon, 0), COALESCE(lat, 0),
	address, categories, description, wikidata, wikipedia, wikipedia_content, wikimedia, images, website`

func scanAttraction(row pgx.Row) (types.Attraction, error) {
	var (
		a         types.Attraction
		hasCoords bool
		lon, lat  float64
	)
	if err := row.Scan(&a.ExternalID, &a.Name, &hasCoords, &lon, &lat,
		&a.Address, &a.Categories, &a.Description, &a.Wikidata, &a.Wikipedia,
		&a.WikipediaContent, &a.Wikimedia, &a.Images, &a.Website); err != nil {
		return types.Attraction{}, err
	}
	if hasCoords {
		c := types.NewCoordinates(lon, lat)
		a.Coordinates = &c
	}
	if a.Categories == nil {
		a.Categories = []string{}
	}
	if a.Images == nil {
		a.Images = []string{}
	}
	return a, nil
}

func (r *RepositoryImpl) observe(ctx context.Context, query string, start time.Time) {
	metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(),
		otelmetric.WithAttributes(attribute.String("query", query)))
}

// FindByExternalIDs loads every stored attraction in ids with one query.
func (r *RepositoryImpl) FindByExternalIDs(ctx context.Context, ids []int64) ([]types.Attraction, error) {
	ctx, span := otel.Tracer("AttractionRepository").Start(ctx, "FindByExternalIDs", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.Int("ids.count", len(ids)),
	))
	defer span.End()

	if len(ids) == 0 {
		return nil, nil
	}

	defer r.observe(ctx, "attractions_by_ids", time.Now())
	rows, err := r.db.Query(ctx, `SELECT `+attractionColumns+` FROM attractions WHERE external_id = ANY($1)`, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Query failed")
		return nil, fmt.Errorf("failed to query attractions by id: %w", err)
	}
	defer rows.Close()

	var out []types.Attraction
	for rows.Next() {
		a, err := scanAttraction(rows)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan attraction: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to iterate attractions: %w", err)
	}

	span.SetStatus(codes.Ok, "Attractions found")
	return out, nil
}

func (r *RepositoryImpl) FindByExternalID(ctx context.Context, id int64) (*types.Attraction, error) {
	ctx, span := otel.Tracer("AttractionRepository").Start(ctx, "FindByExternalID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.Int64("attraction.id", id),
	))
	defer span.End()

	defer r.observe(ctx, "attraction_by_id", time.Now())
	a, err := scanAttraction(r.db.QueryRow(ctx, `SELECT `+attractionColumns+` FROM attractions WHERE external_id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Query failed")
		return nil, fmt.Errorf("failed to get attraction %d: %w", id, err)
	}
	return &a, nil
}

// FindAll lists stored attractions ordered by id.
func (r *RepositoryImpl) FindAll(ctx context.Context, filter types.AttractionFilter) ([]types.Attraction, error) {
	ctx, span := otel.Tracer("AttractionRepository").Start(ctx, "FindAll", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
	))
	defer span.End()

	var (
		where []string
		args  []any
	)
	if filter.BBox != nil {
		b := *filter.BBox
		args = append(args, b.MinLng(), b.MinLat(), b.MaxLng(), b.MaxLat())
		where = append(where, fmt.Sprintf("lon BETWEEN $%d AND $%d AND lat BETWEEN $%d AND $%d",
			len(args)-3, len(args)-1, len(args)-2, len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("$%d = ANY(categories)", len(args)))
	}

	query := `SELECT ` + attractionColumns + ` FROM attractions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY external_id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	defer r.observe(ctx, "attractions_list", time.Now())
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Query failed")
		return nil, fmt.Errorf("failed to list attractions: %w", err)
	}
	defer rows.Close()

	out := []types.Attraction{}
	for rows.Next() {
		a, err := scanAttraction(rows)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan attraction: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to iterate attractions: %w", err)
	}

	span.SetAttributes(attribute.Int("results.count", len(out)))
	span.SetStatus(codes.Ok, "Attractions listed")
	return out, nil
}

// Upsert writes a by external id and reports whether a new row was created.
// Stored wikipedia content is left untouched.
func (r *RepositoryImpl) Upsert(ctx context.Context, a types.Attraction) (bool, error) {
	ctx, span := otel.Tracer("AttractionRepository").Start(ctx, "Upsert", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.Int64("attraction.id", a.ExternalID),
		attribute.String("change", a.ChangeKind.String()),
	))
	defer span.End()

	var lon, lat *float64
	if a.Coordinates != nil {
		x, y := a.Coordinates.Lon(), a.Coordinates.Lat()
		lon, lat = &x, &y
	}
	categories := a.Categories
	if categories == nil {
		categories = []string{}
	}
	images := a.Images
	if images == nil {
		images = []string{}
	}

	query := `
		INSERT INTO attractions (
			external_id, name, lon, lat, address, categories, description,
			wikidata, wikipedia, wikimedia, images, website
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (external_id) DO UPDATE SET
			name = EXCLUDED.name,
			lon = EXCLUDED.lon,
			lat = EXCLUDED.lat,
			address = EXCLUDED.address,
			categories = EXCLUDED.categories,
			description = EXCLUDED.description,
			wikidata = EXCLUDED.wikidata,
			wikipedia = EXCLUDED.wikipedia,
			wikimedia = EXCLUDED.wikimedia,
			images = EXCLUDED.images,
			website = EXCLUDED.website,
			updated_at = NOW()
		RETURNING (xmax = 0) AS inserted`

	defer r.observe(ctx, "attraction_upsert", time.Now())
	var inserted bool
	if err := r.db.QueryRow(ctx, query,
		a.ExternalID, a.Name, lon, lat, a.Address, categories, a.Description,
		a.Wikidata, a.Wikipedia, a.Wikimedia, images, a.Website,
	).Scan(&inserted); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Upsert failed")
		return false, fmt.Errorf("failed to upsert attraction %d: %w", a.ExternalID, err)
	}

	span.SetStatus(codes.Ok, "Attraction upserted")
	return inserted, nil
}

func (r *RepositoryImpl) UpdateWikipediaContent(ctx context.Context, id int64, content string) error {
	ctx, span := otel.Tracer("AttractionRepository").Start(ctx, "UpdateWikipediaContent", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.Int64("attraction.id", id),
	))
	defer span.End()

	defer r.observe(ctx, "attraction_wikipedia_content", time.Now())
	tag, err := r.db.Exec(ctx,
		`UPDATE attractions SET wikipedia_content = $2, updated_at = NOW() WHERE external_id = $1`, id, content)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Update failed")
		return fmt.Errorf("failed to store wikipedia content for %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
