package itinerary

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/FACorreiaa/go-walking-tours/internal/types"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Save(ctx context.Context, it types.Itinerary) (uuid.UUID, error) {
	args := m.Called(ctx, it)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRepository) Get(ctx context.Context, id uuid.UUID) (*types.Itinerary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Itinerary), args.Error(1)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID string) ([]types.Itinerary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Itinerary), args.Error(1)
}

func (m *MockRepository) SetItemText(ctx context.Context, id uuid.UUID, attractionID int64, lang types.Language, text string) error {
	return m.Called(ctx, id, attractionID, lang, text).Error(0)
}

func (m *MockRepository) SetItemAudio(ctx context.Context, id uuid.UUID, attractionID int64, lang types.Language, audio string) error {
	return m.Called(ctx, id, attractionID, lang, audio).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	return m.Called(ctx, id, userID).Error(0)
}

type MockAttractionSource struct {
	mock.Mock
}

func (m *MockAttractionSource) GetAttractionsByIDs(ctx context.Context, ids []int64) ([]types.Attraction, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Attraction), args.Error(1)
}

func (m *MockAttractionSource) GetAttraction(ctx context.Context, id int64) (*types.Attraction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Attraction), args.Error(1)
}

func (m *MockAttractionSource) IngestByLocation(ctx context.Context, start types.Coordinates, minutes int) ([]types.Attraction, error) {
	args := m.Called(ctx, start, minutes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Attraction), args.Error(1)
}

func (m *MockAttractionSource) WikipediaArticle(ctx context.Context, id int64) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockAttractionSource) ResolveLocation(ctx context.Context, coords, query string) (types.Coordinates, error) {
	args := m.Called(ctx, coords, query)
	return args.Get(0).(types.Coordinates), args.Error(1)
}

type MockNarrator struct {
	mock.Mock
}

func (m *MockNarrator) Narrate(ctx context.Context, req types.NarrationRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type MockSynthesizer struct {
	mock.Mock
}

func (m *MockSynthesizer) Synthesize(ctx context.Context, text string, lang types.Language) (string, error) {
	args := m.Called(ctx, text, lang)
	return args.String(0), args.Error(1)
}
