package wikipedia

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-walking-tours/internal/api/external"
)

func setupWikipediaTest(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	// every language resolves to the same test server
	return NewClient(external.New(external.Options{Name: "wikipedia"}, logger), srv.URL+"/%s/w/api.php", logger)
}

func TestParseTag(t *testing.T) {
	lang, title, err := ParseTag("en:Winter Palace")
	require.NoError(t, err)
	assert.Equal(t, "en", lang)
	assert.Equal(t, "Winter Palace", title)

	lang, title, err = ParseTag("ru:Эрмитаж: история")
	require.NoError(t, err)
	assert.Equal(t, "ru", lang)
	assert.Equal(t, "Эрмитаж: история", title)

	for _, bad := range []string{"Winter Palace", "en:", ":Title", "EN!:Title"} {
		_, _, err := ParseTag(bad)
		assert.True(t, errors.Is(err, ErrInvalidTag), bad)
	}
}

func TestClient_Article(t *testing.T) {
	client := setupWikipediaTest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ru/w/api.php", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "parse", q.Get("action"))
		assert.Equal(t, "2", q.Get("formatversion"))
		assert.Equal(t, "Зимний дворец", q.Get("page"))
		_, _ = w.Write([]byte(`{"parse":{"title":"Зимний дворец","pageid":1,
			"text":"<div><p>The <b>Winter Palace</b> is a palace.<sup>[1]</sup></p><table><tr><td>infobox</td></tr></table><h2>History</h2><p>Built   in 1754.</p></div>"}}`))
	})

	text, err := client.Article(context.Background(), "ru:Зимний дворец")
	require.NoError(t, err)
	assert.Equal(t, "The Winter Palace is a palace.\nHistory\nBuilt in 1754.", text)
}

func TestClient_Page_MissingPage(t *testing.T) {
	client := setupWikipediaTest(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"code":"missingtitle","info":"The page you specified doesn't exist."}}`))
	})

	_, err := client.Page(context.Background(), "en:No Such Page")
	assert.True(t, errors.Is(err, ErrMissingPage))
}
