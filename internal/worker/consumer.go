package worker

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nsqio/go-nsq"

	"newsdesk/features/article"
	"newsdesk/internal/middleware"
)

// Enricher is the slice of the pipeline the consumer drives.
type Enricher interface {
	Process(ctx context.Context, a *article.Article) (*article.Enriched, bool, error)
}

// NewsMessage is the payload published on the news.fetched topic.
type NewsMessage struct {
	Article       article.Article `json:"article"`
	CorrelationID string          `json:"correlation_id,omitempty"`
}

// Consumer enriches articles arriving over NSQ. Malformed or invalid
// messages are dropped, not requeued; transient enrichment failures are
// logged and dropped too, because the same article will arrive again on
// the next fetch cycle.
type Consumer struct {
	enricher Enricher
}

func NewConsumer(e Enricher) *Consumer {
	return &Consumer{enricher: e}
}

func (h *Consumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var msg NewsMessage
	if err := json.Unmarshal(m.Body, &msg); err != nil {
		// Poison pill: invalid JSON, don't retry
		slog.Error("poison pill: invalid json", "error", err)
		return nil
	}

	correlationID := msg.CorrelationID
	if correlationID == "" {
		correlationID = uuid.New().String()
	}

	ctx := middleware.WithCorrelationID(context.Background(), correlationID)

	enriched, written, err := h.enricher.Process(ctx, &msg.Article)
	if err != nil {
		slog.ErrorContext(ctx, "enrichment failed", "url", msg.Article.URL, "error", err)
		return nil
	}
	if !written {
		slog.InfoContext(ctx, "duplicate article skipped", "id", msg.Article.ID, "url", msg.Article.URL)
		return nil
	}

	slog.InfoContext(ctx, "article enriched", "id", enriched.ID, "source", enriched.Source)
	return nil
}
