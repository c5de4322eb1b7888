package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nsqio/go-nsq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"newsdesk/features/article"
	"newsdesk/internal/enrich"
	"newsdesk/internal/pipeline"
	"newsdesk/internal/worker"
)

type MockEnricher struct {
	mock.Mock
}

func (m *MockEnricher) Process(ctx context.Context, a *article.Article) (*article.Enriched, bool, error) {
	args := m.Called(ctx, a)
	var enriched *article.Enriched
	if args.Get(0) != nil {
		enriched = args.Get(0).(*article.Enriched)
	}
	return enriched, args.Bool(1), args.Error(2)
}

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	var vec []float32
	if args.Get(0) != nil {
		vec = args.Get(0).([]float32)
	}
	return vec, args.Error(1)
}

type MockVectorStore struct {
	mock.Mock
}

func (m *MockVectorStore) StoreArticle(ctx context.Context, item *article.Enriched, vec []float32) error {
	return m.Called(ctx, item, vec).Error(0)
}

func TestConsumer_HandleMessage(t *testing.T) {
	e := new(MockEnricher)
	consumer := worker.NewConsumer(e)

	msg := worker.NewsMessage{
		Article: article.Article{
			Source: "BBC",
			URL:    "https://example.com/story",
			Title:  "A story",
		},
		CorrelationID: "corr-1",
	}
	body, _ := json.Marshal(msg)

	e.On("Process", mock.Anything, mock.MatchedBy(func(a *article.Article) bool {
		return a.URL == "https://example.com/story" && a.Source == "BBC"
	})).Return(&article.Enriched{ID: "id1", Source: "BBC"}, true, nil)

	err := consumer.HandleMessage(&nsq.Message{Body: body})

	assert.NoError(t, err)
	e.AssertExpectations(t)
}

func TestConsumer_EmptyBody(t *testing.T) {
	e := new(MockEnricher)
	consumer := worker.NewConsumer(e)

	err := consumer.HandleMessage(&nsq.Message{Body: nil})

	assert.NoError(t, err)
	e.AssertNotCalled(t, "Process")
}

func TestConsumer_PoisonPill(t *testing.T) {
	e := new(MockEnricher)
	consumer := worker.NewConsumer(e)

	err := consumer.HandleMessage(&nsq.Message{Body: []byte("not json")})

	assert.NoError(t, err) // ack, never requeue
	e.AssertNotCalled(t, "Process")
}

func TestConsumer_EnrichmentFailureIsDropped(t *testing.T) {
	e := new(MockEnricher)
	consumer := worker.NewConsumer(e)

	body, _ := json.Marshal(worker.NewsMessage{Article: article.Article{Source: "s", URL: "u", Title: "t"}})
	e.On("Process", mock.Anything, mock.Anything).Return(nil, false, errors.New("llm down"))

	err := consumer.HandleMessage(&nsq.Message{Body: body})

	assert.NoError(t, err)
	e.AssertExpectations(t)
}

func TestConsumer_DuplicateSkipped(t *testing.T) {
	e := new(MockEnricher)
	consumer := worker.NewConsumer(e)

	body, _ := json.Marshal(worker.NewsMessage{Article: article.Article{ID: "dup", Source: "s", URL: "u", Title: "t"}})
	e.On("Process", mock.Anything, mock.Anything).Return(nil, false, nil)

	err := consumer.HandleMessage(&nsq.Message{Body: body})

	assert.NoError(t, err)
	e.AssertExpectations(t)
}

type stubSummarizer struct{}

func (stubSummarizer) Summarize(ctx context.Context, title, body string) (enrich.Analysis, error) {
	return enrich.Analysis{Summary: "s", Topics: []string{}, Sentiment: article.SentimentNeutral}, nil
}

func TestConsumer_RedeliveredMessage(t *testing.T) {
	writes := 0
	sink := pipeline.SinkFunc(func(ctx context.Context, item *article.Enriched) error {
		writes++
		return nil
	})
	consumer := worker.NewConsumer(pipeline.NewRunner(stubSummarizer{}, sink))

	body, _ := json.Marshal(worker.NewsMessage{
		Article: article.Article{Source: "BBC", URL: "https://example.com/story", Title: "A story"},
	})

	require.NoError(t, consumer.HandleMessage(&nsq.Message{Body: body}))
	require.NoError(t, consumer.HandleMessage(&nsq.Message{Body: body}))
	assert.Equal(t, 1, writes)
}

func TestEmbedSink_Write(t *testing.T) {
	e := new(MockEmbedder)
	s := new(MockVectorStore)
	sink := worker.NewEmbedSink(e, s)

	item := &article.Enriched{
		ID:        "id1",
		Source:    "BBC",
		URL:       "https://example.com/story",
		Title:     "A story",
		Summary:   "Short summary.",
		Topics:    []string{"markets", "tech"},
		Sentiment: article.SentimentNeutral,
	}

	e.On("Embed", mock.Anything, mock.MatchedBy(func(text string) bool {
		return assert.Contains(t, text, "Title: A story") &&
			assert.Contains(t, text, "Topics: markets, tech") &&
			assert.Contains(t, text, "Short summary.")
	})).Return([]float32{0.1, 0.2}, nil)
	s.On("StoreArticle", mock.Anything, item, []float32{0.1, 0.2}).Return(nil)

	err := sink.Write(context.Background(), item)

	assert.NoError(t, err)
	e.AssertExpectations(t)
	s.AssertExpectations(t)
}

func TestEmbedSink_EmbedFailure(t *testing.T) {
	e := new(MockEmbedder)
	s := new(MockVectorStore)
	sink := worker.NewEmbedSink(e, s)

	e.On("Embed", mock.Anything, mock.Anything).Return(nil, errors.New("quota"))

	err := sink.Write(context.Background(), &article.Enriched{ID: "id1", Title: "t"})

	assert.Error(t, err)
	s.AssertNotCalled(t, "StoreArticle")
}
