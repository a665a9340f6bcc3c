package repository

import (
	"context"
	"fmt"
	"strings"

	"defesadigital-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

const embeddingDimensions = 768

// LegalArticleRepository handles database operations for the legal
// knowledge base. Articles are written by the offline ingestion command
// and read-only at request time.
type LegalArticleRepository struct {
	db *pgxpool.Pool
}

// NewLegalArticleRepository creates a new legal article repository
func NewLegalArticleRepository(db *pgxpool.Pool) *LegalArticleRepository {
	return &LegalArticleRepository{db: db}
}

// formatVector formats an embedding vector as a string for pgx
func formatVector(embedding []float32) string {
	if len(embedding) == 0 {
		return "[]"
	}
	parts := make([]string, 0, len(embedding))
	for _, v := range embedding {
		parts = append(parts, fmt.Sprintf("%.6f", v))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

const articleColumns = `
		id,
		article_number,
		title,
		category,
		summary,
		contestation_reasons,
		source_url,
		accessed_at,
		quality_score`

// SearchByCategory performs a vector similarity search within a category.
// An empty result is not an error.
func (r *LegalArticleRepository) SearchByCategory(
	ctx context.Context,
	embedding []float32,
	category models.FineType,
	limit int,
) ([]models.LegalArticle, error) {
	if len(embedding) != embeddingDimensions {
		return nil, fmt.Errorf("embedding must be %d dimensions, got %d", embeddingDimensions, len(embedding))
	}

	query := fmt.Sprintf(`
		SELECT %s,
			embedding <=> $1::vector AS distance
		FROM legal_articles
		WHERE category = $2
		ORDER BY embedding <=> $1::vector
		LIMIT $3`, articleColumns)

	rows, err := r.db.Query(ctx, query, formatVector(embedding), category, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query legal articles: %w", err)
	}
	defer rows.Close()

	var articles []models.LegalArticle
	for rows.Next() {
		var article models.LegalArticle
		err := rows.Scan(
			&article.ID,
			&article.ArticleNumber,
			&article.Title,
			&article.Category,
			&article.Summary,
			&article.ContestationReasons,
			&article.SourceURL,
			&article.AccessedAt,
			&article.QualityScore,
			&article.Distance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan legal article: %w", err)
		}
		articles = append(articles, article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating legal articles: %w", err)
	}

	return articles, nil
}

// ListByCategory returns the highest-quality articles for a category.
// Used when embeddings are unavailable; ordering is deterministic.
func (r *LegalArticleRepository) ListByCategory(
	ctx context.Context,
	category models.FineType,
	limit int,
) ([]models.LegalArticle, error) {
	query := fmt.Sprintf(`
		SELECT %s,
			0.0 AS distance
		FROM legal_articles
		WHERE category = $1
		ORDER BY quality_score DESC, article_number
		LIMIT $2`, articleColumns)

	rows, err := r.db.Query(ctx, query, category, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query legal articles: %w", err)
	}
	defer rows.Close()

	var articles []models.LegalArticle
	for rows.Next() {
		var article models.LegalArticle
		err := rows.Scan(
			&article.ID,
			&article.ArticleNumber,
			&article.Title,
			&article.Category,
			&article.Summary,
			&article.ContestationReasons,
			&article.SourceURL,
			&article.AccessedAt,
			&article.QualityScore,
			&article.Distance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan legal article: %w", err)
		}
		articles = append(articles, article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating legal articles: %w", err)
	}

	return articles, nil
}

// Insert stores one ingested article with its embedding.
func (r *LegalArticleRepository) Insert(ctx context.Context, article *models.LegalArticle, embedding []float32) error {
	if len(embedding) != embeddingDimensions {
		return fmt.Errorf("embedding must be %d dimensions, got %d", embeddingDimensions, len(embedding))
	}

	query := `
		INSERT INTO legal_articles (
			article_number, title, category, summary, contestation_reasons,
			source_url, accessed_at, quality_score, embedding
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::vector)
		RETURNING id`

	return r.db.QueryRow(
		ctx, query,
		article.ArticleNumber,
		article.Title,
		article.Category,
		article.Summary,
		article.ContestationReasons,
		article.SourceURL,
		article.AccessedAt,
		article.QualityScore,
		formatVector(embedding),
	).Scan(&article.ID)
}

// CountBySource returns how many articles were ingested from a source URL.
// The ingestion command uses it to skip already processed documents.
func (r *LegalArticleRepository) CountBySource(ctx context.Context, sourceURL string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM legal_articles WHERE source_url = $1", sourceURL).Scan(&count)
	return count, err
}
