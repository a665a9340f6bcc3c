package repository

import (
	"context"
	"fmt"
	"time"

	"defesadigital-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefenseCaseRepository handles database operations for defense cases
type DefenseCaseRepository struct {
	db *pgxpool.Pool
}

// NewDefenseCaseRepository creates a new defense case repository
func NewDefenseCaseRepository(db *pgxpool.Pool) *DefenseCaseRepository {
	return &DefenseCaseRepository{db: db}
}

// Create creates a new defense case
func (r *DefenseCaseRepository) Create(ctx context.Context, defenseCase *models.DefenseCase) error {
	query := `
		INSERT INTO defense_cases (
			status, infraction_code, fine_date, location, infractor_name,
			fine_amount, notes, generated_letter, letter_path,
			generation_path, quality_score, cited_articles
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		) RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		defenseCase.Status,
		defenseCase.InfractionCode,
		defenseCase.FineDate,
		defenseCase.Location,
		defenseCase.InfractorName,
		defenseCase.FineAmount,
		defenseCase.Notes,
		defenseCase.GeneratedLetter,
		defenseCase.LetterPath,
		defenseCase.GenerationPath,
		defenseCase.QualityScore,
		defenseCase.CitedArticles,
	).Scan(&defenseCase.ID, &defenseCase.CreatedAt, &defenseCase.UpdatedAt)

	return err
}

// GetByID retrieves a defense case by ID
func (r *DefenseCaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.DefenseCase, error) {
	defenseCase := &models.DefenseCase{}
	query := `
		SELECT id, status, infraction_code, fine_date, location, infractor_name,
			fine_amount, notes, generated_letter, letter_path,
			generation_path, quality_score, cited_articles,
			created_at, updated_at, completed_at
		FROM defense_cases
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&defenseCase.ID,
		&defenseCase.Status,
		&defenseCase.InfractionCode,
		&defenseCase.FineDate,
		&defenseCase.Location,
		&defenseCase.InfractorName,
		&defenseCase.FineAmount,
		&defenseCase.Notes,
		&defenseCase.GeneratedLetter,
		&defenseCase.LetterPath,
		&defenseCase.GenerationPath,
		&defenseCase.QualityScore,
		&defenseCase.CitedArticles,
		&defenseCase.CreatedAt,
		&defenseCase.UpdatedAt,
		&defenseCase.CompletedAt,
	)

	if err != nil {
		return nil, err
	}

	return defenseCase, nil
}

// Update updates a defense case
func (r *DefenseCaseRepository) Update(ctx context.Context, defenseCase *models.DefenseCase) error {
	query := `
		UPDATE defense_cases SET
			status = $2,
			infraction_code = $3,
			fine_date = $4,
			location = $5,
			infractor_name = $6,
			fine_amount = $7,
			notes = $8,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(
		ctx, query,
		defenseCase.ID,
		defenseCase.Status,
		defenseCase.InfractionCode,
		defenseCase.FineDate,
		defenseCase.Location,
		defenseCase.InfractorName,
		defenseCase.FineAmount,
		defenseCase.Notes,
	).Scan(&defenseCase.UpdatedAt)

	return err
}

// UpdateGeneratedLetter stores a finished generation result on the case
// and marks it completed.
func (r *DefenseCaseRepository) UpdateGeneratedLetter(
	ctx context.Context,
	id uuid.UUID,
	doc *models.DefenseDocument,
	letterPath *string,
) error {
	now := time.Now()
	query := `
		UPDATE defense_cases SET
			status = $2,
			generated_letter = $3,
			letter_path = $4,
			generation_path = $5,
			quality_score = $6,
			cited_articles = $7,
			completed_at = $8,
			updated_at = $8
		WHERE id = $1`

	_, err := r.db.Exec(
		ctx, query,
		id,
		models.CaseStatusCompleted,
		doc.Content,
		letterPath,
		doc.Path,
		doc.QualityScore,
		models.CitedArticles(doc.ArticleIDs),
		now,
	)
	return err
}

// List retrieves defense cases, optionally filtered by status
func (r *DefenseCaseRepository) List(ctx context.Context, status *models.CaseStatus, limit, offset int) ([]*models.DefenseCase, error) {
	query := `
		SELECT id, status, infraction_code, fine_date, location, infractor_name,
			fine_amount, notes, generated_letter, letter_path,
			generation_path, quality_score, cited_articles,
			created_at, updated_at, completed_at
		FROM defense_cases`

	args := []interface{}{}
	argIndex := 1

	if status != nil {
		query += fmt.Sprintf(" WHERE status = $%d", argIndex)
		args = append(args, *status)
		argIndex++
	}

	query += " ORDER BY created_at DESC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, limit)
		argIndex++
		if offset > 0 {
			query += fmt.Sprintf(" OFFSET $%d", argIndex)
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cases []*models.DefenseCase
	for rows.Next() {
		defenseCase := &models.DefenseCase{}
		err := rows.Scan(
			&defenseCase.ID,
			&defenseCase.Status,
			&defenseCase.InfractionCode,
			&defenseCase.FineDate,
			&defenseCase.Location,
			&defenseCase.InfractorName,
			&defenseCase.FineAmount,
			&defenseCase.Notes,
			&defenseCase.GeneratedLetter,
			&defenseCase.LetterPath,
			&defenseCase.GenerationPath,
			&defenseCase.QualityScore,
			&defenseCase.CitedArticles,
			&defenseCase.CreatedAt,
			&defenseCase.UpdatedAt,
			&defenseCase.CompletedAt,
		)
		if err != nil {
			return nil, err
		}
		cases = append(cases, defenseCase)
	}

	return cases, rows.Err()
}

// Delete deletes a defense case
func (r *DefenseCaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM defense_cases WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
