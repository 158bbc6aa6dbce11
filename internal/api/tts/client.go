package tts

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/FACorreiaa/go-walking-tours/internal/api/external"
	"github.com/FACorreiaa/go-walking-tours/internal/types"
)

var ErrEmptyAudio = errors.New("speech synthesis returned no audio")

type voice struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name"`
	SSMLGender   string `json:"ssmlGender"`
}

var voices = map[types.Language]voice{
	types.LanguageEnglish: {LanguageCode: "en-US", Name: "en-US-Standard-J", SSMLGender: "MALE"},
	types.LanguageRussian: {LanguageCode: "ru-RU", Name: "ru-RU-Standard-D", SSMLGender: "MALE"},
}

// Client calls the Google Cloud text:synthesize endpoint.
type Client struct {
	http    *external.Client
	baseURL string
	apiKey  string
	logger  *slog.Logger
}

func NewClient(httpClient *external.Client, baseURL, apiKey string, logger *slog.Logger) *Client {
	return &Client{http: httpClient, baseURL: baseURL, apiKey: apiKey, logger: logger}
}

type synthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice       voice `json:"voice"`
	AudioConfig struct {
		AudioEncoding    string   `json:"audioEncoding"`
		EffectsProfileID []string `json:"effectsProfileId,omitempty"`
	} `json:"audioConfig"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

// Synthesize renders text as MP3 and returns the base64 payload.
func (c *Client) Synthesize(ctx context.Context, text string, lang types.Language) (string, error) {
	v, ok := voices[lang]
	if !ok {
		return "", fmt.Errorf("no voice configured for language %s", lang)
	}

	var req synthesizeRequest
	req.Input.Text = text
	req.Voice = v
	req.AudioConfig.AudioEncoding = "MP3"
	req.AudioConfig.EffectsProfileID = []string{"headphone-class-device"}

	var resp synthesizeResponse
	u := c.baseURL + "?" + url.Values{"key": {c.apiKey}}.Encode()
	if err := c.http.PostJSON(ctx, u, req, &resp); err != nil {
		return "", fmt.Errorf("failed to synthesize speech: %w", err)
	}
	if resp.AudioContent == "" {
		return "", ErrEmptyAudio
	}
	if _, err := base64.StdEncoding.DecodeString(resp.AudioContent); err != nil {
		return "", fmt.Errorf("speech synthesis returned invalid base64: %w", err)
	}
	return resp.AudioContent, nil
}
