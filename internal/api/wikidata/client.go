package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/go-walking-tours/internal/api/external"
)

// ImageProperty is the wikidata "image" property.
const ImageProperty = "P18"

const commonsMedia = "commonsMedia"

var itemID = regexp.MustCompile(`^Q[1-9][0-9]*$`)

// Client reads items from the Wikibase REST API.
type Client struct {
	http    *external.Client
	baseURL string
	cache   *cache.Cache
	logger  *slog.Logger
}

func NewClient(httpClient *external.Client, baseURL string, cacheTTL time.Duration, logger *slog.Logger) *Client {
	if cacheTTL <= 0 {
		cacheTTL = 24 * time.Hour
	}
	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		cache:   cache.New(cacheTTL, time.Hour),
		logger:  logger,
	}
}

type Item struct {
	ID         string                 `json:"id"`
	Statements map[string][]Statement `json:"statements"`
}

type Statement struct {
	Property struct {
		ID       string `json:"id"`
		DataType string `json:"data_type"`
	} `json:"property"`
	Value struct {
		Type    string          `json:"type"`
		Content json.RawMessage `json:"content"`
	} `json:"value"`
}

// Item fetches one item by its Q-id.
func (c *Client) Item(ctx context.Context, id string) (*Item, error) {
	if !itemID.MatchString(id) {
		return nil, fmt.Errorf("invalid wikidata item id %q", id)
	}
	var item Item
	if err := c.http.GetJSON(ctx, c.baseURL+"/entities/items/"+url.PathEscape(id), &item); err != nil {
		return nil, fmt.Errorf("failed to fetch wikidata item %s: %w", id, err)
	}
	return &item, nil
}

// ImageReferences returns the commons file names of the item's image
// statements, in statement order.
func (c *Client) ImageReferences(ctx context.Context, id string) ([]string, error) {
	if cached, found := c.cache.Get(id); found {
		return cached.([]string), nil
	}

	item, err := c.Item(ctx, id)
	if err != nil {
		return nil, err
	}

	var images []string
	for _, st := range item.Statements[ImageProperty] {
		if st.Property.DataType != commonsMedia {
			continue
		}
		var name string
		if err := json.Unmarshal(st.Value.Content, &name); err != nil || name == "" {
			c.logger.DebugContext(ctx, "Skipping non-string image statement", slog.String("item", id))
			continue
		}
		images = append(images, name)
	}
	c.cache.Set(id, images, cache.DefaultExpiration)
	return images, nil
}
