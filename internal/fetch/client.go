// internal/fetch/client.go
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"go.uber.org/zap"

	"go-roast/internal/config"
	"go-roast/internal/logger"
)

// Reason names why no HTML is available for a page.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonBadRequest  Reason = "bad_request"
	ReasonNetwork     Reason = "network_error"
	ReasonStatus      Reason = "non_success_status"
	ReasonContentType Reason = "non_html_content"
	ReasonRead        Reason = "read_error"
)

// Snippet is the outcome of a best-effort page fetch. An empty HTML field is
// the normal "no HTML available" outcome, with Reason saying why.
type Snippet struct {
	HTML        string
	Reason      Reason
	StatusCode  int
	ContentType string
	Truncated   bool
}

// OK reports whether any HTML was obtained.
func (s Snippet) OK() bool {
	return s.HTML != ""
}

// Options configures a Client. Zero values fall back to sensible defaults.
type Options struct {
	Timeout       time.Duration // 0 keeps the transport default
	UserAgent     string
	SnippetLength int
	Mode          string
	MaxPageBytes  int64
}

// OptionsFromConfig maps the fetch config section onto Options.
func OptionsFromConfig(cfg config.FetchConfig) Options {
	return Options{
		Timeout:       cfg.Timeout,
		UserAgent:     cfg.UserAgent,
		SnippetLength: cfg.SnippetLength,
		Mode:          cfg.SnippetMode,
		MaxPageBytes:  cfg.MaxPageBytes,
	}
}

// Client fetches page HTML for prompt building. It never returns errors;
// every failure collapses into a Snippet without HTML.
type Client struct {
	httpClient    *http.Client
	userAgent     string
	snippetLength int
	mode          string
	maxBytes      int64
	logger        *zap.Logger
}

// NewClient creates a new page fetcher
func NewClient(opts Options, log *zap.Logger) *Client {
	if opts.SnippetLength <= 0 {
		opts.SnippetLength = 8000
	}
	if opts.MaxPageBytes <= 0 {
		opts.MaxPageBytes = 5 << 20
	}
	if opts.Mode == "" {
		opts.Mode = config.SnippetModeRaw
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		userAgent:     opts.UserAgent,
		snippetLength: opts.SnippetLength,
		mode:          opts.Mode,
		maxBytes:      opts.MaxPageBytes,
		logger:        log.Named("fetch"),
	}
}

// Fetch retrieves rawURL and returns at most SnippetLength characters of its HTML.
func (c *Client) Fetch(ctx context.Context, rawURL string) Snippet {
	snippet := c.fetch(ctx, rawURL)
	if snippet.OK() {
		c.logger.Debug("page fetched",
			logger.RequestField(ctx),
			zap.String("url", rawURL),
			zap.Int("status", snippet.StatusCode),
			zap.Bool("truncated", snippet.Truncated))
	} else {
		c.logger.Info("no HTML available",
			logger.RequestField(ctx),
			zap.String("url", rawURL),
			zap.String("reason", string(snippet.Reason)),
			zap.Int("status", snippet.StatusCode),
			zap.String("content_type", snippet.ContentType))
	}
	return snippet
}

func (c *Client) fetch(ctx context.Context, rawURL string) Snippet {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Snippet{Reason: ReasonBadRequest}
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Snippet{Reason: ReasonNetwork}
	}
	defer resp.Body.Close()

	out := Snippet{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		out.Reason = ReasonStatus
		return out
	}
	if !strings.Contains(strings.ToLower(out.ContentType), "text/html") {
		out.Reason = ReasonContentType
		return out
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		out.Reason = ReasonRead
		return out
	}

	html := c.extract(ctx, resp.Request.URL, body)
	out.HTML, out.Truncated = truncate(html, c.snippetLength)
	return out
}

// extract applies the snippet mode. Extraction problems fall back to the raw body.
func (c *Client) extract(ctx context.Context, pageURL *url.URL, body []byte) string {
	switch c.mode {
	case config.SnippetModeStripped:
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			break
		}
		doc.Find("script, style, noscript, svg, template, iframe").Remove()
		stripped, err := doc.Html()
		if err != nil {
			break
		}
		return stripped

	case config.SnippetModeReadable:
		article, err := readability.FromReader(bytes.NewReader(body), pageURL)
		if err != nil {
			c.logger.Debug("readability failed, using raw HTML", logger.RequestField(ctx), zap.Error(err))
			break
		}
		if strings.TrimSpace(article.Content) != "" {
			return article.Content
		}
	}
	return string(body)
}

// truncate cuts s to at most n characters (runes).
func truncate(s string, n int) (string, bool) {
	count := 0
	for i := range s {
		if count == n {
			return s[:i], true
		}
		count++
	}
	return s, false
}
