package service

import (
	"context"
	"errors"

	"defesadigital-backend/models"
	"defesadigital-backend/repository"

	"github.com/google/uuid"
)

// CaseService handles business logic for defense cases
type CaseService struct {
	caseRepo *repository.DefenseCaseRepository
}

// CaseServiceOption is a functional option for CaseService
type CaseServiceOption func(*CaseService)

// CaseWithRepository sets the defense case repository
func CaseWithRepository(repo *repository.DefenseCaseRepository) CaseServiceOption {
	return func(s *CaseService) {
		s.caseRepo = repo
	}
}

// NewCaseService creates a new case service
func NewCaseService(opts ...CaseServiceOption) *CaseService {
	s := &CaseService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCaseRequest represents a request to create a defense case
type CreateCaseRequest struct {
	InfractionCode string
	FineDate       string
	Location       string
	InfractorName  string
	FineAmount     float64
	Notes          *string
}

// CreateCaseResult represents the result of creating a defense case
type CreateCaseResult struct {
	Case *models.DefenseCase
}

// CreateCase creates a new defense case from intake data.
func (s *CaseService) CreateCase(ctx context.Context, req CreateCaseRequest) (*CreateCaseResult, error) {
	if s.caseRepo == nil {
		return nil, errors.New("defense case repository not set")
	}

	defenseCase := &models.DefenseCase{
		Status:         models.CaseStatusDraft,
		InfractionCode: req.InfractionCode,
		FineDate:       req.FineDate,
		Location:       req.Location,
		InfractorName:  req.InfractorName,
		FineAmount:     req.FineAmount,
		Notes:          req.Notes,
		CitedArticles:  models.CitedArticles{},
	}

	if err := s.caseRepo.Create(ctx, defenseCase); err != nil {
		return nil, err
	}

	return &CreateCaseResult{Case: defenseCase}, nil
}

// GetCaseRequest represents a request to get a defense case
type GetCaseRequest struct {
	ID uuid.UUID
}

// GetCaseResult represents the result of getting a defense case
type GetCaseResult struct {
	Case *models.DefenseCase
}

// GetCase retrieves a defense case by ID
func (s *CaseService) GetCase(ctx context.Context, req GetCaseRequest) (*GetCaseResult, error) {
	if s.caseRepo == nil {
		return nil, errors.New("defense case repository not set")
	}

	defenseCase, err := s.caseRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	return &GetCaseResult{Case: defenseCase}, nil
}

// UpdateCaseRequest represents a request to update a defense case
type UpdateCaseRequest struct {
	Case *models.DefenseCase
}

// UpdateCaseResult represents the result of updating a defense case
type UpdateCaseResult struct {
	Case *models.DefenseCase
}

// UpdateCase updates a defense case
func (s *CaseService) UpdateCase(ctx context.Context, req UpdateCaseRequest) (*UpdateCaseResult, error) {
	if s.caseRepo == nil {
		return nil, errors.New("defense case repository not set")
	}

	if err := s.caseRepo.Update(ctx, req.Case); err != nil {
		return nil, err
	}

	return &UpdateCaseResult{Case: req.Case}, nil
}

// DeleteCaseRequest represents a request to delete a defense case
type DeleteCaseRequest struct {
	ID uuid.UUID
}

// DeleteCase deletes a defense case and its jobs (cascade).
func (s *CaseService) DeleteCase(ctx context.Context, req DeleteCaseRequest) error {
	if s.caseRepo == nil {
		return errors.New("defense case repository not set")
	}
	return s.caseRepo.Delete(ctx, req.ID)
}

// ListCasesRequest represents a request to list defense cases
type ListCasesRequest struct {
	Status *models.CaseStatus
	Limit  int
	Offset int
}

// ListCasesResult represents the result of listing defense cases
type ListCasesResult struct {
	Cases []*models.DefenseCase
}

// ListCases lists defense cases
func (s *CaseService) ListCases(ctx context.Context, req ListCasesRequest) (*ListCasesResult, error) {
	if s.caseRepo == nil {
		return nil, errors.New("defense case repository not set")
	}

	cases, err := s.caseRepo.List(ctx, req.Status, req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}

	return &ListCasesResult{Cases: cases}, nil
}
