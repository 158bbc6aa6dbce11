package wikipedia

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/FACorreiaa/go-walking-tours/internal/api/external"
)

var (
	ErrInvalidTag  = errors.New(`wikipedia tag must be "lang:Title"`)
	ErrMissingPage = errors.New("wikipedia response has no page text")
)

var langCode = regexp.MustCompile(`^[a-z]{2,3}(-[a-z]+)?$`)

// skipped elements hold navigation, references and markup rather than prose.
var skipped = map[string]struct{}{
	"script": {}, "style": {}, "table": {}, "sup": {}, "figure": {}, "math": {},
}

// Client fetches rendered articles through the MediaWiki parse action.
type Client struct {
	http *external.Client
	// baseURL takes the language subdomain, e.g. "https://%s.wikipedia.org/w/api.php".
	baseURL string
	logger  *slog.Logger
}

func NewClient(httpClient *external.Client, baseURL string, logger *slog.Logger) *Client {
	return &Client{http: httpClient, baseURL: baseURL, logger: logger}
}

type Page struct {
	Language string
	Title    string
	HTML     string
}

type parseResponse struct {
	Parse *struct {
		Title  string `json:"title"`
		PageID int64  `json:"pageid"`
		Text   string `json:"text"`
	} `json:"parse"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// ParseTag splits an OSM wikipedia tag ("en:Winter Palace"). Titles may
// contain colons.
func ParseTag(tag string) (lang, title string, err error) {
	lang, title, ok := strings.Cut(tag, ":")
	lang = strings.TrimSpace(lang)
	title = strings.TrimSpace(title)
	if !ok || title == "" || !langCode.MatchString(lang) {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidTag, tag)
	}
	return lang, title, nil
}

// Page fetches the rendered article for an OSM wikipedia tag.
func (c *Client) Page(ctx context.Context, tag string) (*Page, error) {
	lang, title, err := ParseTag(tag)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("action", "parse")
	q.Set("format", "json")
	q.Set("formatversion", "2")
	q.Set("redirects", "1")
	q.Set("page", title)

	var resp parseResponse
	if err := c.http.GetJSON(ctx, fmt.Sprintf(c.baseURL, lang)+"?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch wikipedia page %s: %w", tag, err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrMissingPage, resp.Error.Code, resp.Error.Info)
	}
	if resp.Parse == nil || resp.Parse.Text == "" {
		return nil, ErrMissingPage
	}
	return &Page{Language: lang, Title: resp.Parse.Title, HTML: resp.Parse.Text}, nil
}

// Article returns the article's prose as plain text, one paragraph per line.
func (c *Client) Article(ctx context.Context, tag string) (string, error) {
	page, err := c.Page(ctx, tag)
	if err != nil {
		return "", err
	}
	return PlainText(page.HTML)
}

// PlainText extracts paragraph and heading text from rendered article HTML.
func PlainText(fragment string) (string, error) {
	root, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("failed to parse article html: %w", err)
	}

	var paragraphs []string
	var block strings.Builder
	flush := func() {
		text := strings.Join(strings.Fields(block.String()), " ")
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
		block.Reset()
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if _, skip := skipped[n.Data]; skip {
				return
			}
		}
		if n.Type == html.TextNode {
			block.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "h2", "h3", "h4", "li", "div":
				flush()
			}
		}
	}
	walk(root)
	flush()

	return strings.Join(paragraphs, "\n"), nil
}
