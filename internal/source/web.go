package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

const (
	defaultStoryLinkSelector = "a.stitle"
	defaultChapterSelector   = "select#chap_select option"
	defaultContentSelector   = "#storytext"
	defaultPageCap           = 200
	webTimeout               = 30 * time.Second
)

// WebConfig holds configuration for the web provider.
type WebConfig struct {
	IndexURL  string
	UserAgent string

	// StoryLinkSelector finds story links on the index page.
	StoryLinkSelector string
	// ChapterSelector finds chapter options on a story's first page.
	ChapterSelector string
	// ContentSelector scopes the paragraph search on a page. Empty means
	// every <p> on the page.
	ContentSelector string

	// PageCap bounds the number of pages fetched, chapter one pages included.
	PageCap int
	// Delay is the minimum time between two requests.
	Delay time.Duration

	// OnPlan, when set, receives the page count once the crawl is planned.
	OnPlan func(pages int)

	HTTPClient *http.Client
}

// WebProvider crawls a story index: every linked story, then every chapter
// page of that story.
type WebProvider struct {
	cfg        WebConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewWebProvider creates a new web provider.
func NewWebProvider(cfg WebConfig) *WebProvider {
	if cfg.StoryLinkSelector == "" {
		cfg.StoryLinkSelector = defaultStoryLinkSelector
	}
	if cfg.ChapterSelector == "" {
		cfg.ChapterSelector = defaultChapterSelector
	}
	if cfg.PageCap <= 0 {
		cfg.PageCap = defaultPageCap
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: webTimeout}
	}

	limit := rate.Inf
	if cfg.Delay > 0 {
		limit = rate.Every(cfg.Delay)
	}

	return &WebProvider{
		cfg:        cfg,
		httpClient: client,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// DefaultWebConfig returns the selectors used by fanfiction-style archives.
func DefaultWebConfig() WebConfig {
	return WebConfig{
		StoryLinkSelector: defaultStoryLinkSelector,
		ChapterSelector:   defaultChapterSelector,
		ContentSelector:   defaultContentSelector,
		PageCap:           defaultPageCap,
	}
}

// Name returns the provider name.
func (w *WebProvider) Name() string {
	return "web"
}

// Documents fetches the index and yields one document per chapter page. Only
// an unreachable index is fatal.
func (w *WebProvider) Documents(ctx context.Context, fn func(Document) error) error {
	pages, prefetched, err := w.plan(ctx)
	if err != nil {
		return err
	}

	if w.cfg.OnPlan != nil {
		w.cfg.OnPlan(len(pages))
	}

	for _, page := range pages {
		doc, ok := prefetched[page]
		if !ok {
			doc, err = w.fetch(ctx, page)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				slog.Warn("page fetch failed, skipping", "url", page, "error", err)
				continue
			}
		}

		d := w.document(page, doc)
		if len(d.Paragraphs) == 0 {
			slog.Debug("page has no paragraphs", "url", page)
			continue
		}
		if err := fn(d); err != nil {
			return err
		}
	}

	return nil
}

// Pages returns the deduplicated, capped page URLs the crawl would visit.
func (w *WebProvider) Pages(ctx context.Context) ([]string, error) {
	pages, _, err := w.plan(ctx)
	return pages, err
}

// plan discovers story and chapter URLs. Chapter one pages are fetched while
// planning, so they are returned for reuse.
func (w *WebProvider) plan(ctx context.Context) ([]string, map[string]*goquery.Document, error) {
	base, err := url.Parse(w.cfg.IndexURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse index url: %w", err)
	}

	index, err := w.fetch(ctx, w.cfg.IndexURL)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch index: %w", err)
	}

	stories := storyLinks(index, w.cfg.StoryLinkSelector, base)
	slog.Debug("found stories", "index", w.cfg.IndexURL, "count", len(stories))

	var pages []string
	seen := make(map[string]bool)
	prefetched := make(map[string]*goquery.Document)

	add := func(u string) bool {
		if seen[u] {
			return true
		}
		if len(pages) >= w.cfg.PageCap {
			return false
		}
		seen[u] = true
		pages = append(pages, u)
		return true
	}

	for _, story := range stories {
		if !add(story) {
			break
		}

		first, err := w.fetch(ctx, story)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			slog.Warn("story fetch failed, skipping chapters", "url", story, "error", err)
			continue
		}
		prefetched[story] = first

		for _, value := range chapterValues(first, w.cfg.ChapterSelector) {
			if !add(ChapterURL(story, value)) {
				break
			}
		}
	}

	slog.Debug("planned crawl", "stories", len(stories), "pages", len(pages))
	return pages, prefetched, nil
}

// ChapterURL swaps the "/1/" chapter segment of a story URL for value.
func ChapterURL(storyURL, value string) string {
	return strings.Replace(storyURL, "/1/", "/"+value+"/", 1)
}

func (w *WebProvider) fetch(ctx context.Context, u string) (*goquery.Document, error) {
	if err := w.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if w.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", w.cfg.UserAgent)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", u, resp.StatusCode)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}

func (w *WebProvider) document(page string, doc *goquery.Document) Document {
	selector := "p"
	if w.cfg.ContentSelector != "" {
		selector = w.cfg.ContentSelector + " p"
	}

	d := Document{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		URL:   page,
	}

	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if lines := splitLines(s.Text()); len(lines) > 0 {
			d.Paragraphs = append(d.Paragraphs, lines)
		}
	})

	return d
}

func storyLinks(doc *goquery.Document, selector string, base *url.URL) []string {
	var links []string
	seen := make(map[string]bool)

	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			slog.Debug("bad story link", "href", href, "error", err)
			return
		}
		abs := base.ResolveReference(ref).String()
		if !seen[abs] {
			seen[abs] = true
			links = append(links, abs)
		}
	})

	return links
}

func chapterValues(doc *goquery.Document, selector string) []string {
	var values []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr("value"); ok && strings.TrimSpace(v) != "" {
			values = append(values, strings.TrimSpace(v))
		}
	})
	return values
}

// splitLines breaks text on newlines and drops blank lines.
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
