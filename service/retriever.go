package service

import (
	"context"
	"fmt"
	"log"

	"defesadigital-backend/models"
	"defesadigital-backend/repository"

	"github.com/google/generative-ai-go/genai"
)

// KnowledgeStore retrieves legal articles relevant to a fine category.
// Implementations return an empty slice (not an error) when nothing
// matches, and are safe for concurrent use.
type KnowledgeStore interface {
	Search(ctx context.Context, category models.FineType, query string, limit int) ([]models.LegalArticle, error)
}

const embeddingModelName = "gemini-embedding-001"

// ArticleRetriever is the database-backed KnowledgeStore: it embeds the
// query via Gemini and runs a pgvector similarity search, degrading to a
// quality-ordered category listing when the embedding service is
// unavailable.
type ArticleRetriever struct {
	repo         *repository.LegalArticleRepository
	geminiClient *genai.Client // nil disables vector search
}

// NewArticleRetriever creates a retriever over the article repository.
// The Gemini client may be nil; retrieval then uses the keyword path only.
func NewArticleRetriever(repo *repository.LegalArticleRepository, geminiClient *genai.Client) *ArticleRetriever {
	return &ArticleRetriever{
		repo:         repo,
		geminiClient: geminiClient,
	}
}

// Search implements KnowledgeStore.
func (r *ArticleRetriever) Search(ctx context.Context, category models.FineType, query string, limit int) ([]models.LegalArticle, error) {
	if r.repo == nil {
		return nil, fmt.Errorf("legal article repository not set")
	}
	if limit <= 0 {
		limit = 4
	}

	if r.geminiClient != nil && query != "" {
		embedding, err := r.embedQuery(ctx, query)
		if err != nil {
			log.Printf("Warning: query embedding failed, using category listing: %v", err)
		} else {
			return r.repo.SearchByCategory(ctx, embedding, category, limit)
		}
	}

	return r.repo.ListByCategory(ctx, category, limit)
}

func (r *ArticleRetriever) embedQuery(ctx context.Context, query string) ([]float32, error) {
	em := r.geminiClient.EmbeddingModel(embeddingModelName)
	em.TaskType = genai.TaskTypeRetrievalQuery

	res, err := em.EmbedContent(ctx, genai.Text(query))
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("embedding response empty")
	}

	return res.Embedding.Values, nil
}
