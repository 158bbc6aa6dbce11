package wikidata

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-walking-tours/internal/api/external"
)

const hermitageItem = `{
  "id": "Q132783",
  "statements": {
    "P18": [
      {"property": {"id": "P18", "data_type": "commonsMedia"}, "value": {"type": "value", "content": "Winter Palace Panorama 4.jpg"}},
      {"property": {"id": "P18", "data_type": "commonsMedia"}, "value": {"type": "somevalue"}},
      {"property": {"id": "P18", "data_type": "string"}, "value": {"type": "value", "content": "not-media.jpg"}},
      {"property": {"id": "P18", "data_type": "commonsMedia"}, "value": {"type": "value", "content": "Hermitage hall.jpg"}}
    ],
    "P31": [
      {"property": {"id": "P31", "data_type": "wikibase-item"}, "value": {"type": "value", "content": "Q33506"}}
    ]
  }
}`

func setupWikidataTest(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(external.New(external.Options{Name: "wikidata"}, logger), srv.URL, time.Hour, logger)
}

func TestClient_ImageReferences(t *testing.T) {
	var calls atomic.Int32
	client := setupWikidataTest(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/entities/items/Q132783", r.URL.Path)
		_, _ = w.Write([]byte(hermitageItem))
	})

	images, err := client.ImageReferences(context.Background(), "Q132783")
	require.NoError(t, err)
	assert.Equal(t, []string{"Winter Palace Panorama 4.jpg", "Hermitage hall.jpg"}, images)

	_, err = client.ImageReferences(context.Background(), "Q132783")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_ImageReferences_NoImageStatement(t *testing.T) {
	client := setupWikidataTest(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"Q1","statements":{}}`))
	})

	images, err := client.ImageReferences(context.Background(), "Q1")
	require.NoError(t, err)
	assert.Empty(t, images)
}

func TestClient_ImageReferences_InvalidID(t *testing.T) {
	client := setupWikidataTest(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := client.ImageReferences(context.Background(), "../Q1")
	require.Error(t, err)
}

func TestClient_ImageReferences_NotFound(t *testing.T) {
	client := setupWikidataTest(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":"item-not-found"}`, http.StatusNotFound)
	})

	_, err := client.ImageReferences(context.Background(), "Q999999999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
