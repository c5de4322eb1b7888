package weaviate

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/weaviate/weaviate/entities/models"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"

	"newsdesk/features/article"
	"newsdesk/features/search"
	"newsdesk/internal/vector"
)

// Store persists enriched articles in Weaviate, one object per article,
// and serves hybrid search over them.
type Store struct {
	client *weaviate.Client
}

func NewStore(client *weaviate.Client) *Store {
	return &Store{client: client}
}

// StoreArticle writes one enriched article with its embedding. Ordered
// topics are flattened to a comma-joined string for the store; the
// archive keeps the structured form.
func (s *Store) StoreArticle(ctx context.Context, item *article.Enriched, vec []float32) error {
	props := sanitizeMetadata(map[string]any{
		"articleId":   item.ID,
		"source":      item.Source,
		"url":         item.URL,
		"title":       item.Title,
		"content":     item.BodyText(),
		"summary":     item.Summary,
		"topics":      item.Topics,
		"sentiment":   item.Sentiment,
		"publishedAt": item.PublishedAt,
	})

	_, err := s.client.Data().Creator().
		WithClassName(vector.ClassNewsArticle).
		WithProperties(props).
		WithVector(vec).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("store article %s: %w", item.ID, err)
	}
	return nil
}

var searchFields = []graphql.Field{
	{Name: "articleId"},
	{Name: "source"},
	{Name: "url"},
	{Name: "title"},
	{Name: "content"},
	{Name: "summary"},
	{Name: "topics"},
	{Name: "sentiment"},
	{Name: "_additional", Fields: []graphql.Field{{Name: "score"}}},
}

func (s *Store) Search(ctx context.Context, query string, vec []float32, alpha float32, limit int) ([]search.Result, error) {
	hybrid := s.client.GraphQL().HybridArgumentBuilder().
		WithQuery(query).
		WithVector(vec).
		WithAlpha(alpha)

	res, err := s.client.GraphQL().Get().
		WithClassName(vector.ClassNewsArticle).
		WithHybrid(hybrid).
		WithLimit(limit).
		WithFields(searchFields...).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %v", res.Errors)
	}

	return extractResults(res.Data), nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	res, err := s.client.GraphQL().Aggregate().
		WithClassName(vector.ClassNewsArticle).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, err
	}
	if len(res.Errors) > 0 {
		return 0, fmt.Errorf("graphql error: %v", res.Errors)
	}

	agg, ok := res.Data["Aggregate"].(map[string]any)
	if !ok {
		return 0, nil
	}
	classes, ok := agg[vector.ClassNewsArticle].([]any)
	if !ok || len(classes) == 0 {
		return 0, nil
	}
	entry, ok := classes[0].(map[string]any)
	if !ok {
		return 0, nil
	}
	meta, ok := entry["meta"].(map[string]any)
	if !ok {
		return 0, nil
	}
	count, _ := meta["count"].(float64)
	return int(count), nil
}

// extractResults walks the loosely typed GraphQL response into Results.
func extractResults(data map[string]models.JSONObject) []search.Result {
	var results []search.Result

	get, ok := data["Get"].(map[string]any)
	if !ok {
		return results
	}
	objects, ok := get[vector.ClassNewsArticle].([]any)
	if !ok {
		return results
	}

	for _, obj := range objects {
		props, ok := obj.(map[string]any)
		if !ok {
			continue
		}

		r := search.Result{}
		r.ID, _ = props["articleId"].(string)
		r.Source, _ = props["source"].(string)
		r.URL, _ = props["url"].(string)
		r.Title, _ = props["title"].(string)
		r.Content, _ = props["content"].(string)
		r.Summary, _ = props["summary"].(string)
		r.Topics, _ = props["topics"].(string)
		r.Sentiment, _ = props["sentiment"].(string)

		if additional, ok := props["_additional"].(map[string]any); ok {
			// Weaviate returns hybrid scores as strings in some versions
			// and numbers in others.
			switch score := additional["score"].(type) {
			case string:
				if f, err := strconv.ParseFloat(score, 32); err == nil {
					r.Score = float32(f)
				}
			case float64:
				r.Score = float32(score)
			}
		}

		results = append(results, r)
	}
	return results
}

// sanitizeMetadata flattens property values to what the store accepts:
// nils are dropped, string slices joined with ", ", nested maps
// stringified, scalars passed through.
func sanitizeMetadata(meta map[string]any) map[string]any {
	clean := make(map[string]any, len(meta))
	for k, v := range meta {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			clean[k] = val
		case []string:
			clean[k] = strings.Join(val, ", ")
		case map[string]any:
			clean[k] = fmt.Sprintf("%v", val)
		default:
			clean[k] = val
		}
	}
	return clean
}
