package overpass

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-walking-tours/internal/api/external"
	"github.com/FACorreiaa/go-walking-tours/internal/types"
)

// Client queries an Overpass interpreter endpoint.
type Client struct {
	http    *external.Client
	baseURL string
	table   CategoryTable
	logger  *slog.Logger
}

// NewClient builds a client. The external client is expected to pace
// requests; the interpreter endpoints ask for roughly 100ms between queries.
func NewClient(httpClient *external.Client, baseURL string, table CategoryTable, logger *slog.Logger) *Client {
	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		table:   table,
		logger:  logger,
	}
}

// Fetch runs one category query and labels every element with its category.
func (c *Client) Fetch(ctx context.Context, q Query) ([]Element, error) {
	u := c.baseURL + "?" + url.Values{"data": {q.String()}}.Encode()

	var resp response
	if err := c.http.GetJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("failed to query category %s: %w", q.Category.Name, err)
	}
	for i := range resp.Elements {
		resp.Elements[i].Categories = []string{q.Category.Name}
	}
	return resp.Elements, nil
}

// Search issues one query per resolved category over the polygon and returns
// the de-duplicated union. An invalid polygon fails before any request; a
// failing category is logged and contributes nothing.
func (c *Client) Search(ctx context.Context, polygon types.Polygon, categories []string) ([]Element, error) {
	ctx, span := otel.Tracer("OverpassClient").Start(ctx, "Search", trace.WithAttributes(
		attribute.StringSlice("categories", categories),
		attribute.String("category_table.version", c.table.Version),
	))
	defer span.End()

	queries, err := BuildQueries(polygon, categories, c.table)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid polygon")
		return nil, err
	}

	var all []Element
	for _, q := range queries {
		elements, err := c.Fetch(ctx, q)
		if err != nil {
			if ctx.Err() != nil {
				span.RecordError(ctx.Err())
				span.SetStatus(codes.Error, "search cancelled")
				return nil, ctx.Err()
			}
			c.logger.WarnContext(ctx, "Overpass category query failed",
				slog.String("category", q.Category.Name), slog.Any("error", err))
			continue
		}
		all = append(all, elements...)
	}

	deduped := Deduplicate(all)
	span.SetAttributes(
		attribute.Int("elements.raw", len(all)),
		attribute.Int("elements.unique", len(deduped)),
	)
	span.SetStatus(codes.Ok, "search completed")
	return deduped, nil
}
