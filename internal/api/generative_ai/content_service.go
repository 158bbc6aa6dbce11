package generativeAI

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-walking-tours/internal/types"
)

var ErrMalformedResponse = errors.New("generative model returned malformed JSON")

// Service turns attraction data into generated text.
type Service interface {
	GenerateDescriptions(ctx context.Context, attractions []types.AttractionSummary) ([]types.GeneratedDescription, error)
	SuggestTours(ctx context.Context, attractions []types.AttractionSummary) ([]types.TourSuggestion, error)
	Narrate(ctx context.Context, req types.NarrationRequest) (string, error)
	WriteArticle(ctx context.Context, article string, lang types.Language) (string, error)
}

type ServiceImpl struct {
	generator ContentGenerator
	logger    *slog.Logger
}

var _ Service = (*ServiceImpl)(nil)

func NewService(generator ContentGenerator, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{generator: generator, logger: logger}
}

var descriptionSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"osm_id":      {Type: genai.TypeInteger},
			"description": {Type: genai.TypeString},
		},
		Required: []string{"osm_id", "description"},
	},
}

var suggestionSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":       {Type: genai.TypeString},
			"description": {Type: genai.TypeString},
			"attraction_ids": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"osm_id": {Type: genai.TypeInteger},
						"name":   {Type: genai.TypeString},
					},
					Required: []string{"osm_id", "name"},
				},
			},
		},
		Required: []string{"title", "description", "attraction_ids"},
	},
}

// GenerateDescriptions requests one annotation per attraction in a single
// call. Entries without text are dropped.
func (s *ServiceImpl) GenerateDescriptions(ctx context.Context, attractions []types.AttractionSummary) ([]types.GeneratedDescription, error) {
	ctx, span := otel.Tracer("GenerativeAIService").Start(ctx, "GenerateDescriptions")
	defer span.End()
	span.SetAttributes(attribute.Int("attractions.count", len(attractions)))

	if len(attractions) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(attractions)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal payload")
		return nil, fmt.Errorf("failed to marshal attractions: %w", err)
	}

	raw, err := s.generator.GenerateContent(ctx, []string{descriptionPrompt, string(payload)}, jsonConfig("", descriptionSchema))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Generation failed")
		return nil, err
	}

	descriptions, err := parseDescriptions(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "Discarding malformed description response", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Malformed response")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Descriptions generated")
	return descriptions, nil
}

func parseDescriptions(raw string) ([]types.GeneratedDescription, error) {
	var parsed []types.GeneratedDescription
	if err := json.Unmarshal([]byte(cleanJSONResponse(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	out := parsed[:0]
	for _, d := range parsed {
		d.Description = strings.TrimSpace(d.Description)
		if d.ExternalID == 0 || d.Description == "" {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// SuggestTours asks the model to group attractions into themed tours.
func (s *ServiceImpl) SuggestTours(ctx context.Context, attractions []types.AttractionSummary) ([]types.TourSuggestion, error) {
	ctx, span := otel.Tracer("GenerativeAIService").Start(ctx, "SuggestTours")
	defer span.End()
	span.SetAttributes(attribute.Int("attractions.count", len(attractions)))

	if len(attractions) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(attractions)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal payload")
		return nil, fmt.Errorf("failed to marshal attractions: %w", err)
	}

	raw, err := s.generator.GenerateContent(ctx, []string{suggestionPrompt, string(payload)}, jsonConfig("", suggestionSchema))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Generation failed")
		return nil, err
	}

	suggestions, err := parseSuggestions(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "Discarding malformed tour suggestions", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Malformed response")
		return nil, err
	}

	span.SetAttributes(attribute.Int("suggestions.count", len(suggestions)))
	span.SetStatus(codes.Ok, "Tours suggested")
	return suggestions, nil
}

func parseSuggestions(raw string) ([]types.TourSuggestion, error) {
	var parsed []types.TourSuggestion
	if err := json.Unmarshal([]byte(cleanJSONResponse(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	out := parsed[:0]
	for _, t := range parsed {
		t.Title = strings.TrimSpace(t.Title)
		if t.Title == "" || len(t.Attractions) == 0 {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// Narrate writes the spoken script for one stop of a tour.
func (s *ServiceImpl) Narrate(ctx context.Context, req types.NarrationRequest) (string, error) {
	ctx, span := otel.Tracer("GenerativeAIService").Start(ctx, "Narrate")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("attraction.id", req.Attraction.ExternalID),
		attribute.String("language", string(req.Language)),
	)

	system := fmt.Sprintf(narrationSystem, req.TourTitle, req.TourDescription,
		strings.Join(req.Stops, "; "), languageName(req.Language))
	parts := []string{fmt.Sprintf(narrationPrompt, req.Attraction.Name)}
	if ref := referenceMaterial(req); ref != "" {
		parts = append(parts, ref)
	}

	text, err := s.generator.GenerateContent(ctx, parts, textConfig(system))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Generation failed")
		return "", err
	}
	span.SetStatus(codes.Ok, "Narration generated")
	return strings.TrimSpace(text), nil
}

func referenceMaterial(req types.NarrationRequest) string {
	var b strings.Builder
	if req.Attraction.Description != "" {
		b.WriteString(req.Attraction.Description)
		b.WriteString("\n")
	}
	if req.Attraction.Address != "" {
		b.WriteString("Address: ")
		b.WriteString(req.Attraction.Address)
		b.WriteString("\n")
	}
	if req.Article != "" {
		b.WriteString(req.Article)
	}
	return strings.TrimSpace(b.String())
}

// WriteArticle condenses an encyclopedia article into a visitor guide.
func (s *ServiceImpl) WriteArticle(ctx context.Context, article string, lang types.Language) (string, error) {
	ctx, span := otel.Tracer("GenerativeAIService").Start(ctx, "WriteArticle")
	defer span.End()

	if strings.TrimSpace(article) == "" {
		return "", errors.New("no article text to rewrite")
	}

	text, err := s.generator.GenerateContent(ctx,
		[]string{fmt.Sprintf(articlePrompt, languageName(lang)), article}, textConfig(""))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Generation failed")
		return "", err
	}
	span.SetStatus(codes.Ok, "Article generated")
	return strings.TrimSpace(text), nil
}
