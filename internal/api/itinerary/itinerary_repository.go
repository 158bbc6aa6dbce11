package itinerary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
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

var ErrItineraryNotFound = errors.New("itinerary not found")

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	Save(ctx context.Context, it types.Itinerary) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Itinerary, error)
	ListByUser(ctx context.Context, userID string) ([]types.Itinerary, error)
	SetItemText(ctx context.Context, id uuid.UUID, attractionID int64, lang types.Language, text string) error
	SetItemAudio(ctx context.Context, id uuid.UUID, attractionID int64, lang types.Language, audio string) error
	Delete(ctx context.Context, id uuid.UUID, userID string) error
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

func (r *RepositoryImpl) observe(ctx context.Context, query string, start time.Time) {
	metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(),
		otelmetric.WithAttributes(attribute.String("query", query)))
}

// Save stores the itinerary and its items in one transaction.
func (r *RepositoryImpl) Save(ctx context.Context, it types.Itinerary) (uuid.UUID, error) {
	ctx, span := otel.Tracer("ItineraryRepository").Start(ctx, "Save", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.Int("items.count", len(it.Items)),
	))
	defer span.End()
	defer r.observe(ctx, "itinerary_save", time.Now())

	route, err := json.Marshal(nonNilRoute(it.Route))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode route: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		span.RecordError(err)
		return uuid.Nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var id uuid.UUID
	if err := tx.QueryRow(ctx, `
		INSERT INTO itineraries (user_id, title, description, duration_minutes, distance_meters, route)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		it.UserID, it.Title, it.Description, it.Duration, it.Distance, string(route),
	).Scan(&id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Insert failed")
		return uuid.Nil, fmt.Errorf("failed to insert itinerary: %w", err)
	}

	for _, item := range it.Items {
		text, err := json.Marshal(nonNilMap(item.Text))
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to encode item text: %w", err)
		}
		audio, err := json.Marshal(nonNilMap(item.Audio))
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to encode item audio: %w", err)
		}
		images := item.Images
		if images == nil {
			images = []string{}
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO itinerary_items (
				itinerary_id, attraction_id, sequence, is_last, name, lon, lat,
				description, images, duration, text, audio
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			id, item.AttractionID, item.Sequence, item.IsLast, item.Name,
			item.Coordinates.Lon(), item.Coordinates.Lat(), item.Description, images,
			item.Duration, string(text), string(audio),
		); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Item insert failed")
			return uuid.Nil, fmt.Errorf("failed to insert itinerary item %d: %w", item.AttractionID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return uuid.Nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.InfoContext(ctx, "Itinerary saved", slog.String("id", id.String()), slog.Int("items", len(it.Items)))
	span.SetStatus(codes.Ok, "Itinerary saved")
	return id, nil
}

const itineraryColumns = `id, user_id, title, description, duration_minutes, distance_meters, route, created_at`

func scanItinerary(row pgx.Row) (types.Itinerary, error) {
	var (
		it    types.Itinerary
		route []byte
	)
	if err := row.Scan(&it.ID, &it.UserID, &it.Title, &it.Description, &it.Duration, &it.Distance, &route, &it.CreatedAt); err != nil {
		return types.Itinerary{}, err
	}
	if err := json.Unmarshal(route, &it.Route); err != nil {
		return types.Itinerary{}, fmt.Errorf("failed to decode route: %w", err)
	}
	it.Items = []types.ItineraryItem{}
	return it, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, id uuid.UUID) (*types.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryRepository").Start(ctx, "Get", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("itinerary.id", id.String()),
	))
	defer span.End()
	defer r.observe(ctx, "itinerary_get", time.Now())

	it, err := scanItinerary(r.db.QueryRow(ctx, `SELECT `+itineraryColumns+` FROM itineraries WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrItineraryNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Query failed")
		return nil, fmt.Errorf("failed to get itinerary: %w", err)
	}

	items, err := r.items(ctx, []uuid.UUID{id})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	it.Items = items[id]
	if it.Items == nil {
		it.Items = []types.ItineraryItem{}
	}
	return &it, nil
}

// ListByUser returns the user's itineraries, newest first, with their items.
func (r *RepositoryImpl) ListByUser(ctx context.Context, userID string) ([]types.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryRepository").Start(ctx, "ListByUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		semconv.EnduserIDKey.String(userID),
	))
	defer span.End()
	defer r.observe(ctx, "itinerary_list", time.Now())

	rows, err := r.db.Query(ctx,
		`SELECT `+itineraryColumns+` FROM itineraries WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Query failed")
		return nil, fmt.Errorf("failed to list itineraries: %w", err)
	}
	out := []types.Itinerary{}
	for rows.Next() {
		it, err := scanItinerary(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan itinerary: %w", err)
		}
		out = append(out, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate itineraries: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, len(out))
	for i := range out {
		ids[i] = out[i].ID
	}
	items, err := r.items(ctx, ids)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	for i := range out {
		if its := items[out[i].ID]; its != nil {
			out[i].Items = its
		}
	}
	return out, nil
}

func (r *RepositoryImpl) items(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]types.ItineraryItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT itinerary_id, attraction_id, sequence, is_last, name, lon, lat,
		       description, images, duration, text, audio
		FROM itinerary_items
		WHERE itinerary_id = ANY($1)
		ORDER BY itinerary_id, sequence`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query itinerary items: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]types.ItineraryItem, len(ids))
	for rows.Next() {
		var (
			owner       uuid.UUID
			item        types.ItineraryItem
			lon, lat    float64
			text, audio []byte
		)
		if err := rows.Scan(&owner, &item.AttractionID, &item.Sequence, &item.IsLast, &item.Name, &lon, &lat,
			&item.Description, &item.Images, &item.Duration, &text, &audio); err != nil {
			return nil, fmt.Errorf("failed to scan itinerary item: %w", err)
		}
		item.Coordinates = types.NewCoordinates(lon, lat)
		if err := json.Unmarshal(text, &item.Text); err != nil {
			return nil, fmt.Errorf("failed to decode item text: %w", err)
		}
		if err := json.Unmarshal(audio, &item.Audio); err != nil {
			return nil, fmt.Errorf("failed to decode item audio: %w", err)
		}
		if item.Images == nil {
			item.Images = []string{}
		}
		out[owner] = append(out[owner], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate itinerary items: %w", err)
	}
	return out, nil
}

func (r *RepositoryImpl) SetItemText(ctx context.Context, id uuid.UUID, attractionID int64, lang types.Language, text string) error {
	return r.setItemContent(ctx, "text", id, attractionID, lang, text)
}

func (r *RepositoryImpl) SetItemAudio(ctx context.Context, id uuid.UUID, attractionID int64, lang types.Language, audio string) error {
	return r.setItemContent(ctx, "audio", id, attractionID, lang, audio)
}

// setItemContent merges one language entry into the item's text or audio
// map. column is never user input.
func (r *RepositoryImpl) setItemContent(ctx context.Context, column string, id uuid.UUID, attractionID int64, lang types.Language, value string) error {
	ctx, span := otel.Tracer("ItineraryRepository").Start(ctx, "SetItemContent", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("column", column),
		attribute.String("itinerary.id", id.String()),
		attribute.Int64("attraction.id", attractionID),
	))
	defer span.End()
	defer r.observe(ctx, "itinerary_item_"+column, time.Now())

	query := fmt.Sprintf(`UPDATE itinerary_items SET %[1]s = %[1]s || jsonb_build_object($3::text, $4::text)
		WHERE itinerary_id = $1 AND attraction_id = $2`, column)
	tag, err := r.db.Exec(ctx, query, id, attractionID, string(lang), value)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Update failed")
		return fmt.Errorf("failed to update item %s: %w", column, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItineraryNotFound
	}
	return nil
}

// Delete removes an itinerary owned by userID. Items cascade.
func (r *RepositoryImpl) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	ctx, span := otel.Tracer("ItineraryRepository").Start(ctx, "Delete", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("itinerary.id", id.String()),
	))
	defer span.End()
	defer r.observe(ctx, "itinerary_delete", time.Now())

	tag, err := r.db.Exec(ctx, `DELETE FROM itineraries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Delete failed")
		return fmt.Errorf("failed to delete itinerary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItineraryNotFound
	}
	return nil
}

func nonNilRoute(route []types.Coordinates) []types.Coordinates {
	if route == nil {
		return []types.Coordinates{}
	}
	return route
}

func nonNilMap(m map[types.Language]string) map[types.Language]string {
	if m == nil {
		return map[types.Language]string{}
	}
	return m
}
