package generativeAI

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-walking-tours/internal/types"
)

type MockContentGenerator struct {
	mock.Mock
}

func (m *MockContentGenerator) GenerateContent(ctx context.Context, parts []string, config *genai.GenerateContentConfig) (string, error) {
	args := m.Called(ctx, parts, config)
	return args.String(0), args.Error(1)
}

func setupContentServiceTest() (*ServiceImpl, *MockContentGenerator) {
	gen := new(MockContentGenerator)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(gen, logger), gen
}

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain array", `[{"a":1}]`, `[{"a":1}]`},
		{"fenced json", "```json\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding prose", "Here you go: [1,2] done", `[1,2]`},
		{"object containing array", `{"items":[1]}`, `{"items":[1]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanJSONResponse(tt.in))
		})
	}
}

func TestGenerateDescriptions(t *testing.T) {
	service, gen := setupContentServiceTest()
	summaries := []types.AttractionSummary{{ExternalID: 1, Name: "Winter Palace"}, {ExternalID: 2, Name: "Bronze Horseman"}}

	gen.On("GenerateContent", mock.Anything, mock.MatchedBy(func(parts []string) bool {
		return len(parts) == 2 && parts[0] == descriptionPrompt
	}), mock.MatchedBy(func(cfg *genai.GenerateContentConfig) bool {
		return cfg.ResponseMIMEType == "application/json" && cfg.ResponseSchema == descriptionSchema
	})).Return("```json\n[{\"osm_id\":1,\"description\":\" Former royal residence. \"},{\"osm_id\":2,\"description\":\"\"}]\n```", nil).Once()

	got, err := service.GenerateDescriptions(context.Background(), summaries)
	require.NoError(t, err)
	assert.Equal(t, []types.GeneratedDescription{{ExternalID: 1, Description: "Former royal residence."}}, got)
	gen.AssertExpectations(t)
}

func TestGenerateDescriptions_Malformed(t *testing.T) {
	service, gen := setupContentServiceTest()
	gen.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return("not json", nil).Once()

	_, err := service.GenerateDescriptions(context.Background(), []types.AttractionSummary{{ExternalID: 1}})
	assert.True(t, errors.Is(err, ErrMalformedResponse))
	gen.AssertExpectations(t)
}

func TestGenerateDescriptions_EmptyBatch(t *testing.T) {
	service, gen := setupContentServiceTest()

	got, err := service.GenerateDescriptions(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	gen.AssertNotCalled(t, "GenerateContent", mock.Anything, mock.Anything, mock.Anything)
}

func TestSuggestTours(t *testing.T) {
	service, gen := setupContentServiceTest()
	raw := `[
	  {"title":"Imperial Palaces","description":"Focus on the tsars.","attraction_ids":[{"osm_id":1,"name":"Winter Palace"}]},
	  {"title":"  ","description":"untitled","attraction_ids":[{"osm_id":2,"name":"x"}]},
	  {"title":"Empty","description":"none","attraction_ids":[]}
	]`
	gen.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return(raw, nil).Once()

	got, err := service.SuggestTours(context.Background(), []types.AttractionSummary{{ExternalID: 1}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Imperial Palaces", got[0].Title)
	assert.Equal(t, []types.TourMember{{ExternalID: 1, Name: "Winter Palace"}}, got[0].Attractions)
	gen.AssertExpectations(t)
}

func TestSuggestTours_GeneratorError(t *testing.T) {
	service, gen := setupContentServiceTest()
	gen.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("quota exceeded")).Once()

	_, err := service.SuggestTours(context.Background(), []types.AttractionSummary{{ExternalID: 1}})
	require.Error(t, err)
	gen.AssertExpectations(t)
}

func TestNarrate(t *testing.T) {
	service, gen := setupContentServiceTest()
	req := types.NarrationRequest{
		Attraction: types.Attraction{ExternalID: 7, Name: "Kazan Cathedral", Description: "A cathedral."},
		Article:    "Built between 1801 and 1811.",
		Language:   types.LanguageRussian,
		TourTitle:  "Churches",
		Stops:      []string{"Kazan Cathedral", "St Isaac's Cathedral"},
	}

	gen.On("GenerateContent", mock.Anything, mock.MatchedBy(func(parts []string) bool {
		return len(parts) == 2 &&
			assert.Contains(t, parts[0], "Kazan Cathedral") &&
			assert.Contains(t, parts[1], "Built between 1801 and 1811.")
	}), mock.MatchedBy(func(cfg *genai.GenerateContentConfig) bool {
		system := cfg.SystemInstruction.Parts[0].Text
		return cfg.ResponseSchema == nil &&
			assert.Contains(t, system, "Russian") &&
			assert.Contains(t, system, "Kazan Cathedral; St Isaac's Cathedral")
	})).Return("  Welcome.  ", nil).Once()

	text, err := service.Narrate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Welcome.", text)
	gen.AssertExpectations(t)
}

func TestWriteArticle_EmptyInput(t *testing.T) {
	service, gen := setupContentServiceTest()

	_, err := service.WriteArticle(context.Background(), "  ", types.LanguageEnglish)
	require.Error(t, err)
	gen.AssertNotCalled(t, "GenerateContent", mock.Anything, mock.Anything, mock.Anything)
}
