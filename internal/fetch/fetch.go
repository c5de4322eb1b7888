package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"newsdesk/features/article"
	"newsdesk/internal/canonical"
)

// Source is one configured feed.
type Source struct {
	Name string
	URL  string
}

// ParseSources parses the FEED_URLS format: entries separated by ";" or
// newlines, each "Name|URL". An entry without a name falls back to the
// feed's host.
func ParseSources(raw string) ([]Source, error) {
	entries := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ';' || r == '\n'
	})

	sources := make([]Source, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		name, feedURL, found := strings.Cut(entry, "|")
		if !found {
			feedURL = name
			name = ""
		}
		name = strings.TrimSpace(name)
		feedURL = strings.TrimSpace(feedURL)

		if feedURL == "" {
			return nil, fmt.Errorf("feed entry %q has no URL", entry)
		}
		if name == "" {
			parsed, err := url.Parse(feedURL)
			if err != nil || parsed.Host == "" {
				return nil, fmt.Errorf("feed entry %q is not a valid URL", entry)
			}
			name = parsed.Host
		}

		sources = append(sources, Source{Name: name, URL: feedURL})
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no feed sources configured")
	}
	return sources, nil
}

// Options tunes the fetcher. Zero values fall back to sane defaults.
type Options struct {
	Concurrency  int
	RatePerSec   float64
	MaxPerSource int
	FullText     bool
}

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.RatePerSec <= 0 {
		o.RatePerSec = 1
	}
	if o.MaxPerSource <= 0 {
		o.MaxPerSource = 20
	}
	return o
}

// Fetcher pulls articles from RSS/Atom feeds, optionally extracting full
// text from the linked page when the feed only carries a summary.
type Fetcher struct {
	parser  *gofeed.Parser
	limiter *rate.Limiter
	opts    Options
	logger  *slog.Logger
}

func New(opts Options, logger *slog.Logger) *Fetcher {
	opts = opts.withDefaults()
	return &Fetcher{
		parser:  gofeed.NewParser(),
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSec), 1),
		opts:    opts,
		logger:  logger,
	}
}

// FetchAll fetches every source concurrently. A failing source is logged
// and skipped; the remaining sources still produce articles.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source) []article.Article {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		articles []article.Article
	)

	sem := make(chan struct{}, f.opts.Concurrency)
	for _, src := range sources {
		wg.Add(1)
		sem <- struct{}{}
		go func(src Source) {
			defer wg.Done()
			defer func() { <-sem }()

			items, err := f.FetchSource(ctx, src)
			if err != nil {
				f.logger.Error("feed fetch failed", "source", src.Name, "url", src.URL, "error", err)
				return
			}

			mu.Lock()
			articles = append(articles, items...)
			mu.Unlock()
		}(src)
	}
	wg.Wait()

	return articles
}

// FetchSource fetches and maps a single feed.
func (f *Fetcher) FetchSource(ctx context.Context, src Source) ([]article.Article, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := f.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", src.URL, err)
	}

	items := feed.Items
	if len(items) > f.opts.MaxPerSource {
		items = items[:f.opts.MaxPerSource]
	}

	articles := make([]article.Article, 0, len(items))
	for _, entry := range items {
		a := itemToArticle(src, entry)
		if a.URL == "" || a.Title == "" {
			continue
		}

		if f.opts.FullText && a.Content == "" {
			if err := f.limiter.Wait(ctx); err != nil {
				return articles, err
			}
			content, err := f.extractFullText(ctx, a.URL)
			if err != nil {
				f.logger.Warn("full text extraction failed", "url", a.URL, "error", err)
			} else {
				a.Content = content
			}
		}

		articles = append(articles, a)
	}
	return articles, nil
}

const fullTextTimeout = 30 * time.Second

// extractFullText downloads the linked page and runs readability over
// it. The request inherits ctx so cancellation stops in-flight fetches.
func (f *Fetcher) extractFullText(ctx context.Context, pageURL string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, fullTextTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch page %s: status %d", pageURL, resp.StatusCode)
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	page, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", pageURL, err)
	}
	return page.TextContent, nil
}

func itemToArticle(src Source, entry *gofeed.Item) article.Article {
	published := time.Now().UTC()
	if entry.PublishedParsed != nil {
		published = *entry.PublishedParsed
	} else if entry.UpdatedParsed != nil {
		published = *entry.UpdatedParsed
	}

	authors := make([]string, 0, len(entry.Authors))
	for _, au := range entry.Authors {
		if au != nil && au.Name != "" {
			authors = append(authors, au.Name)
		}
	}

	return article.Article{
		ID:          canonical.Identity(entry.Title, canonical.URL(entry.Link)),
		Source:      src.Name,
		URL:         entry.Link,
		Title:       entry.Title,
		Description: strings.TrimSpace(entry.Description),
		Content:     strings.TrimSpace(entry.Content),
		PublishedAt: published.Format(time.RFC3339),
		Authors:     authors,
		Tags:        entry.Categories,
	}
}
