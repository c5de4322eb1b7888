package article

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalid = errors.New("invalid article")

// Sentiment labels form a small closed set; anything a model returns
// outside of it is normalized to Neutral.
const (
	SentimentPositive = "Positive"
	SentimentNegative = "Negative"
	SentimentNeutral  = "Neutral"
	SentimentMixed    = "Mixed"
)

// Article is a raw fetched item as delivered by an upstream fetcher.
// Only source, url and title are guaranteed; the id may be stamped by an
// upstream canonicalization step or computed during enrichment.
type Article struct {
	ID          string   `json:"id,omitempty"`
	Source      string   `json:"source"`
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Content     string   `json:"content,omitempty"`
	PublishedAt string   `json:"published_at,omitempty"`
	Authors     []string `json:"authors,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Language    string   `json:"language,omitempty"`
}

// Validate checks the fields every pipeline stage relies on.
func (a *Article) Validate() error {
	if a.Source == "" {
		return fmt.Errorf("%w: missing source", ErrInvalid)
	}
	if a.URL == "" {
		return fmt.Errorf("%w: missing url", ErrInvalid)
	}
	if a.Title == "" {
		return fmt.Errorf("%w: missing title", ErrInvalid)
	}
	return nil
}

// BodyText picks the text field used for summarization and stats:
// content, else description, else title. First non-empty wins.
func (a *Article) BodyText() string {
	if strings.TrimSpace(a.Content) != "" {
		return a.Content
	}
	if strings.TrimSpace(a.Description) != "" {
		return a.Description
	}
	return a.Title
}

// Enriched is an Article after summarization: identity stamped, summary,
// topics and sentiment attached. Written once and immutable afterwards.
type Enriched struct {
	ID          string   `json:"id"`
	Source      string   `json:"source"`
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Content     string   `json:"content,omitempty"`
	PublishedAt string   `json:"published_at,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Topics      []string `json:"topics"`
	Sentiment   string   `json:"sentiment"`
}

// BodyText mirrors Article.BodyText for the enriched form.
func (e *Enriched) BodyText() string {
	if strings.TrimSpace(e.Content) != "" {
		return e.Content
	}
	if strings.TrimSpace(e.Description) != "" {
		return e.Description
	}
	return e.Title
}
