package models

import (
	"time"

	"github.com/google/uuid"
)

// LegalArticle is a categorized snippet of legislation or guidance from the
// knowledge base. Articles are immutable after ingestion.
type LegalArticle struct {
	ID                  uuid.UUID `json:"id"`
	ArticleNumber       string    `json:"article_number"` // e.g. "Artigo 48.º"
	Title               string    `json:"title"`
	Category            FineType  `json:"category"`
	Summary             string    `json:"summary"`
	ContestationReasons []string  `json:"contestation_reasons"`
	SourceURL           string    `json:"source_url"`
	AccessedAt          time.Time `json:"accessed_at"`
	QualityScore        float64   `json:"quality_score"` // 0..1, assigned at ingestion
	Distance            float64   `json:"distance,omitempty"` // vector similarity distance
}
