package attraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-walking-tours/internal/api/mapbox"
	"github.com/FACorreiaa/go-walking-tours/internal/api/overpass"
	"github.com/FACorreiaa/go-walking-tours/internal/types"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) IngestArea(ctx context.Context, polygon types.Polygon, categories []string) ([]types.Attraction, error) {
	args := m.Called(ctx, polygon, categories)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Attraction), args.Error(1)
}

func (m *MockService) IngestByLocation(ctx context.Context, start types.Coordinates, minutes int) ([]types.Attraction, error) {
	args := m.Called(ctx, start, minutes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Attraction), args.Error(1)
}

func (m *MockService) GetAttractions(ctx context.Context, filter types.AttractionFilter) ([]types.Attraction, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Attraction), args.Error(1)
}

func (m *MockService) GetAttractionsByIDs(ctx context.Context, ids []int64) ([]types.Attraction, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Attraction), args.Error(1)
}

func (m *MockService) GetAttraction(ctx context.Context, id int64) (*types.Attraction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Attraction), args.Error(1)
}

func (m *MockService) WikipediaArticle(ctx context.Context, id int64) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockService) GenerateArticle(ctx context.Context, id int64, lang types.Language) (string, error) {
	args := m.Called(ctx, id, lang)
	return args.String(0), args.Error(1)
}

func (m *MockService) ResolveLocation(ctx context.Context, coords, query string) (types.Coordinates, error) {
	args := m.Called(ctx, coords, query)
	return args.Get(0).(types.Coordinates), args.Error(1)
}

func setupHandlerTest() (*chi.Mux, *MockService) {
	service := new(MockService)
	h := NewHandler(service, testLogger())
	r := chi.NewRouter()
	r.Get("/attractions", h.GetAttractions)
	r.Get("/attractions/by-location", h.GetAttractionsByLocation)
	r.Post("/attractions/ingest", h.IngestArea)
	r.Get("/attractions/{attractionID}", h.GetAttraction)
	r.Post("/attractions/{attractionID}/article", h.GenerateArticle)
	return r, service
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHandler_GetAttractions(t *testing.T) {
	router, service := setupHandlerTest()
	bbox := types.BBox{30.2, 59.9, 30.4, 60}
	service.On("GetAttractions", mock.Anything, types.AttractionFilter{BBox: &bbox, Category: "MUSEUM", Limit: 20}).
		Return([]types.Attraction{{ExternalID: 101, Name: "Winter Palace", Images: []string{}, Categories: []string{}}}, nil).Once()

	rr := serve(router, http.MethodGet, "/attractions?bbox=30.2,59.9,30.4,60&category=MUSEUM&limit=20", "")

	require.Equal(t, http.StatusOK, rr.Code)
	var got []types.Attraction
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, int64(101), got[0].ExternalID)
	service.AssertExpectations(t)
}

func TestHandler_GetAttractions_BadInput(t *testing.T) {
	router, service := setupHandlerTest()

	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/attractions?bbox=1,2,3", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/attractions?limit=-1", "").Code)
	service.AssertNotCalled(t, "GetAttractions", mock.Anything, mock.Anything)
}

func TestHandler_IngestArea(t *testing.T) {
	router, service := setupHandlerTest()
	service.On("IngestArea", mock.Anything, testPolygon, []string{"MUSEUM"}).Return([]types.Attraction{}, nil).Once()

	body, err := json.Marshal(types.IngestAreaRequest{Polygon: testPolygon, Categories: []string{"MUSEUM"}})
	require.NoError(t, err)
	rr := serve(router, http.MethodPost, "/attractions/ingest", string(body))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
	service.AssertExpectations(t)
}

func TestHandler_IngestArea_Errors(t *testing.T) {
	router, service := setupHandlerTest()
	service.On("IngestArea", mock.Anything, types.Polygon{Type: "Point"}, []string(nil)).
		Return(nil, fmt.Errorf("%w: geometry type", overpass.ErrInvalidPolygon)).Once()
	service.On("IngestArea", mock.Anything, testPolygon, []string(nil)).
		Return(nil, errors.New("enrichment stage store_merge failed")).Once()

	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodPost, "/attractions/ingest", `{"polygon":{"type":"Point"}}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodPost, "/attractions/ingest", `{"unknown":1}`).Code)

	body, _ := json.Marshal(types.IngestAreaRequest{Polygon: testPolygon})
	assert.Equal(t, http.StatusInternalServerError, serve(router, http.MethodPost, "/attractions/ingest", string(body)).Code)
	service.AssertExpectations(t)
}

func TestHandler_GetAttractionsByLocation(t *testing.T) {
	router, service := setupHandlerTest()
	start := types.NewCoordinates(30.3146, 59.9398)
	service.On("ResolveLocation", mock.Anything, "30.3146,59.9398", "").Return(start, nil).Once()
	service.On("IngestByLocation", mock.Anything, start, 15).Return([]types.Attraction{}, nil).Once()

	rr := serve(router, http.MethodGet, "/attractions/by-location?locationCoords=30.3146,59.9398&duration=15", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = serve(router, http.MethodGet, "/attractions/by-location?locationCoords=30.3146,59.9398", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	service.AssertExpectations(t)
}

func TestHandler_GetAttractionsByLocation_NoWalkingArea(t *testing.T) {
	router, service := setupHandlerTest()
	start := types.NewCoordinates(30.3146, 59.9398)
	service.On("ResolveLocation", mock.Anything, "30.3146,59.9398", "").Return(start, nil).Once()
	service.On("IngestByLocation", mock.Anything, start, 15).
		Return(nil, fmt.Errorf("failed to compute walking area: %w", mapbox.ErrNoIsochrone)).Once()

	rr := serve(router, http.MethodGet, "/attractions/by-location?locationCoords=30.3146,59.9398&duration=15", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
	service.AssertExpectations(t)
}

func TestHandler_GetAttraction_NotFound(t *testing.T) {
	router, service := setupHandlerTest()
	service.On("GetAttraction", mock.Anything, int64(5)).Return(nil, ErrNotFound).Once()

	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/attractions/5", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/attractions/abc", "").Code)
	service.AssertExpectations(t)
}

func TestHandler_GenerateArticle(t *testing.T) {
	router, service := setupHandlerTest()
	service.On("GenerateArticle", mock.Anything, int64(101), types.LanguageRussian).Return("Статья", nil).Once()
	service.On("GenerateArticle", mock.Anything, int64(102), types.LanguageEnglish).Return("", ErrNoArticle).Once()

	rr := serve(router, http.MethodPost, "/attractions/101/article?language=ru_RU", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var got ArticleResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, ArticleResponse{Language: types.LanguageRussian, Article: "Статья"}, got)

	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodPost, "/attractions/102/article", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodPost, "/attractions/101/article?language=de_DE", "").Code)
	service.AssertExpectations(t)
}
