package vector

import (
	"context"

	"github.com/weaviate/weaviate/entities/models"
)

// ClassNewsArticle is the Weaviate class holding one object per enriched
// article. Vectors are supplied by the pipeline, not a vectorizer module.
const ClassNewsArticle = "NewsArticle"

// SchemaClient is the narrow slice of the Weaviate schema API we use.
type SchemaClient interface {
	ClassExists(ctx context.Context, className string) (bool, error)
	CreateClass(ctx context.Context, class *models.Class) error
	GetClass(ctx context.Context, className string) (*models.Class, error)
	AddProperty(ctx context.Context, className string, property *models.Property) error
}

var articleProperties = []*models.Property{
	{Name: "articleId", DataType: []string{"string"}}, // content identity, exact match
	{Name: "source", DataType: []string{"string"}},
	{Name: "url", DataType: []string{"string"}},
	{Name: "title", DataType: []string{"text"}},
	{Name: "content", DataType: []string{"text"}},
	{Name: "summary", DataType: []string{"text"}},
	{Name: "topics", DataType: []string{"text"}},
	{Name: "sentiment", DataType: []string{"string"}},
	{Name: "publishedAt", DataType: []string{"string"}},
}

// EnsureSchema creates the article class when missing and backfills any
// properties added since the class was first created.
func EnsureSchema(ctx context.Context, client SchemaClient) error {
	exists, err := client.ClassExists(ctx, ClassNewsArticle)
	if err != nil {
		return err
	}

	if !exists {
		class := &models.Class{
			Class:       ClassNewsArticle,
			Description: "An enriched news article",
			Vectorizer:  "none",
			Properties:  articleProperties,
		}
		return client.CreateClass(ctx, class)
	}

	class, err := client.GetClass(ctx, ClassNewsArticle)
	if err != nil {
		return err
	}

	existing := make(map[string]bool, len(class.Properties))
	for _, p := range class.Properties {
		existing[p.Name] = true
	}
	for _, p := range articleProperties {
		if !existing[p.Name] {
			if err := client.AddProperty(ctx, ClassNewsArticle, p); err != nil {
				return err
			}
		}
	}
	return nil
}
