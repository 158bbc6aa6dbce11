package attraction

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/FACorreiaa/go-walking-tours/internal/api/overpass"
	"github.com/FACorreiaa/go-walking-tours/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) ReverseGeocode(ctx context.Context, at types.Coordinates) ([]types.Place, error) {
	args := m.Called(ctx, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Place), args.Error(1)
}

func (m *MockGeocoder) Geocode(ctx context.Context, query string) ([]types.Place, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Place), args.Error(1)
}

type MockDescriptionGenerator struct {
	mock.Mock
}

func (m *MockDescriptionGenerator) GenerateDescriptions(ctx context.Context, attractions []types.AttractionSummary) ([]types.GeneratedDescription, error) {
	args := m.Called(ctx, attractions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.GeneratedDescription), args.Error(1)
}

type MockImageResolver struct {
	mock.Mock
}

func (m *MockImageResolver) ImageReferences(ctx context.Context, wikidataID string) ([]string, error) {
	args := m.Called(ctx, wikidataID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockAreaSearcher struct {
	mock.Mock
}

func (m *MockAreaSearcher) Search(ctx context.Context, polygon types.Polygon, categories []string) ([]overpass.Element, error) {
	args := m.Called(ctx, polygon, categories)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]overpass.Element), args.Error(1)
}

type MockIsochroneProvider struct {
	mock.Mock
}

func (m *MockIsochroneProvider) Isochrone(ctx context.Context, start types.Coordinates, minutes int) (types.Polygon, error) {
	args := m.Called(ctx, start, minutes)
	return args.Get(0).(types.Polygon), args.Error(1)
}

type MockArticleSource struct {
	mock.Mock
}

func (m *MockArticleSource) Article(ctx context.Context, tag string) (string, error) {
	args := m.Called(ctx, tag)
	return args.String(0), args.Error(1)
}

type MockArticleWriter struct {
	mock.Mock
}

func (m *MockArticleWriter) WriteArticle(ctx context.Context, article string, lang types.Language) (string, error) {
	args := m.Called(ctx, article, lang)
	return args.String(0), args.Error(1)
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FindByExternalIDs(ctx context.Context, ids []int64) ([]types.Attraction, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Attraction), args.Error(1)
}

func (m *MockRepository) FindByExternalID(ctx context.Context, id int64) (*types.Attraction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Attraction), args.Error(1)
}

func (m *MockRepository) FindAll(ctx context.Context, filter types.AttractionFilter) ([]types.Attraction, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Attraction), args.Error(1)
}

func (m *MockRepository) Upsert(ctx context.Context, a types.Attraction) (bool, error) {
	args := m.Called(ctx, a)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) UpdateWikipediaContent(ctx context.Context, id int64, content string) error {
	args := m.Called(ctx, id, content)
	return args.Error(0)
}

// memoryRepository is a keyed in-memory store with the same upsert
// semantics as the SQL repository.
type memoryRepository struct {
	mu      sync.Mutex
	records map[int64]types.Attraction
	lookups int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{records: map[int64]types.Attraction{}}
}

func (r *memoryRepository) FindByExternalIDs(_ context.Context, ids []int64) ([]types.Attraction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	var out []types.Attraction
	for _, id := range ids {
		if a, ok := r.records[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memoryRepository) FindByExternalID(_ context.Context, id int64) (*types.Attraction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (r *memoryRepository) FindAll(_ context.Context, _ types.AttractionFilter) ([]types.Attraction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.Attraction, 0, len(r.records))
	for _, a := range r.records {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExternalID < out[j].ExternalID })
	return out, nil
}

func (r *memoryRepository) Upsert(_ context.Context, a types.Attraction) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, found := r.records[a.ExternalID]
	a.WikipediaContent = existing.WikipediaContent
	a.ChangeKind = types.ChangeNone
	r.records[a.ExternalID] = a
	return !found, nil
}

func (r *memoryRepository) UpdateWikipediaContent(_ context.Context, id int64, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.records[id]
	if !ok {
		return ErrNotFound
	}
	a.WikipediaContent = content
	r.records[id] = a
	return nil
}
