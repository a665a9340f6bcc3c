package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// GenerationPath records which path produced a defense document.
type GenerationPath string

const (
	PathGenerative GenerationPath = "generative"
	PathTemplate   GenerationPath = "template"
)

// DefenseDocument is the output of the generation pipeline: the composed
// letter plus generation metadata. Created fresh per request; persistence
// is the caller's responsibility.
type DefenseDocument struct {
	Content         string         `json:"content"`
	Path            GenerationPath `json:"path"`
	TemplateID      string         `json:"template_id,omitempty"` // empty on the generative path
	ArticleIDs      []uuid.UUID    `json:"article_ids"`
	NoArticlesFound bool           `json:"no_articles_found"`
	ManualFields    []string       `json:"manual_fields,omitempty"`
	QualityScore    float64        `json:"quality_score"`
	Duration        time.Duration  `json:"duration_ns"`
	GeneratedAt     time.Time      `json:"generated_at"`
}

// CaseStatus represents the lifecycle status of a defense case.
type CaseStatus string

const (
	CaseStatusDraft      CaseStatus = "draft"
	CaseStatusInProgress CaseStatus = "in_progress"
	CaseStatusCompleted  CaseStatus = "completed"
	CaseStatusArchived   CaseStatus = "archived"
)

// CitedArticles is the list of article IDs recorded on a completed case.
type CitedArticles []uuid.UUID

// Value implements driver.Valuer for JSONB
func (c CitedArticles) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements sql.Scanner for JSONB
func (c *CitedArticles) Scan(value interface{}) error {
	if value == nil {
		*c = make(CitedArticles, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*c = make(CitedArticles, 0)
		return nil
	}

	if len(bytes) == 0 {
		*c = make(CitedArticles, 0)
		return nil
	}

	return json.Unmarshal(bytes, c)
}

// DefenseCase is the persisted entity around one fine: the intake record,
// the generated letter and its archive location.
type DefenseCase struct {
	ID     uuid.UUID  `json:"id"`
	Status CaseStatus `json:"status"`

	// Intake (from OCR/API)
	InfractionCode string  `json:"infraction_code"`
	FineDate       string  `json:"fine_date"`
	Location       string  `json:"location"`
	InfractorName  string  `json:"infractor_name"`
	FineAmount     float64 `json:"fine_amount"`
	Notes          *string `json:"notes,omitempty"`

	// Generation output
	GeneratedLetter *string         `json:"generated_letter,omitempty"`
	LetterPath      *string         `json:"letter_path,omitempty"` // archive storage path
	GenerationPath  *GenerationPath `json:"generation_path,omitempty"`
	QualityScore    *float64        `json:"quality_score,omitempty"`
	CitedArticles   CitedArticles   `json:"cited_articles"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// FineRecord builds the read-only record the pipeline consumes.
func (d *DefenseCase) FineRecord() FineRecord {
	return FineRecord{
		ID:             d.ID,
		InfractionCode: d.InfractionCode,
		Date:           d.FineDate,
		Location:       d.Location,
		InfractorName:  d.InfractorName,
		FineAmount:     d.FineAmount,
		Notes:          d.Notes,
	}
}
