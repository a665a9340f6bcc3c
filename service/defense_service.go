package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"defesadigital-backend/catalog"
	"defesadigital-backend/models"
	"defesadigital-backend/repository"
	"defesadigital-backend/storage"

	"github.com/google/uuid"
)

var (
	ErrCaseNotFound        = errors.New("defense case not found")
	ErrMissingRequiredData = errors.New("defense case missing required data for generation")
	ErrJobCreationFailed   = errors.New("failed to create generation job")
	ErrJobNotFound         = errors.New("generation job not found")
)

const (
	defaultTopArticles      = 4
	defaultRetrievalTimeout = 10 * time.Second

	stepRetrievingContext = "Retrieving Legal Context"
	stepDraftingLetter    = "Drafting Defense Letter"
	stepArchivingLetter   = "Archiving Letter"
)

// GenerationOptions tunes one generation request.
type GenerationOptions struct {
	Style             Style
	Difficulty        models.Difficulty
	IncludePrecedents bool
	ExtraNotes        *string
}

// DefenseService is the defense generation pipeline plus the surrounding
// job orchestration. Generate itself is stateless and write-free; the
// job path persists its output.
type DefenseService struct {
	caseRepo *repository.DefenseCaseRepository
	jobRepo  *repository.GenerationJobRepository
	catalog  *catalog.Catalog
	store    KnowledgeStore
	backend  GenerativeBackend // nil disables the generative path
	letters  storage.Storage   // nil disables letter archiving

	composer         Composer
	topArticles      int
	retrievalTimeout time.Duration
}

// DefenseServiceOption is a functional option for DefenseService
type DefenseServiceOption func(*DefenseService)

// WithCaseRepository sets the defense case repository
func WithCaseRepository(repo *repository.DefenseCaseRepository) DefenseServiceOption {
	return func(s *DefenseService) {
		s.caseRepo = repo
	}
}

// WithGenerationJobRepository sets the generation job repository
func WithGenerationJobRepository(repo *repository.GenerationJobRepository) DefenseServiceOption {
	return func(s *DefenseService) {
		s.jobRepo = repo
	}
}

// WithTemplateCatalog sets the template catalog
func WithTemplateCatalog(c *catalog.Catalog) DefenseServiceOption {
	return func(s *DefenseService) {
		s.catalog = c
	}
}

// WithKnowledgeStore sets the legal knowledge store
func WithKnowledgeStore(store KnowledgeStore) DefenseServiceOption {
	return func(s *DefenseService) {
		s.store = store
	}
}

// WithGenerativeBackend enables the generative path
func WithGenerativeBackend(backend GenerativeBackend) DefenseServiceOption {
	return func(s *DefenseService) {
		s.backend = backend
	}
}

// WithLetterStorage enables letter archiving
func WithLetterStorage(letters storage.Storage) DefenseServiceOption {
	return func(s *DefenseService) {
		s.letters = letters
	}
}

// WithTopArticles sets how many articles are retrieved per request
func WithTopArticles(n int) DefenseServiceOption {
	return func(s *DefenseService) {
		s.topArticles = n
	}
}

// NewDefenseService creates a new defense service
func NewDefenseService(opts ...DefenseServiceOption) *DefenseService {
	s := &DefenseService{
		topArticles:      defaultTopArticles,
		retrievalTimeout: defaultRetrievalTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate produces a defense document for the fine record. For any record
// with a resolvable fine type and a loadable template it returns a
// document; every generative backend failure is absorbed into the template
// path. Only an unknown fine type or a missing template surfaces an error.
func (s *DefenseService) Generate(
	ctx context.Context,
	record models.FineRecord,
	opts GenerationOptions,
) (*models.DefenseDocument, error) {
	if s.catalog == nil {
		return nil, errors.New("template catalog not set")
	}

	start := time.Now()

	category, err := models.ResolveFineType(record.InfractionCode)
	if err != nil {
		return nil, err
	}

	articles := s.retrieveArticles(ctx, category, record)

	if s.backend != nil {
		doc, err := s.generateWithBackend(ctx, record, category, articles, opts)
		if err == nil {
			doc.Duration = time.Since(start)
			return doc, nil
		}
		log.Printf("Warning: generative path failed for case %s, falling back to template: %v", record.ID, err)
	}

	tmpl, err := s.catalog.Get(category, opts.Difficulty)
	if err != nil {
		return nil, err
	}

	content, manual := s.composer.Compose(record, category, tmpl, articles, opts)

	doc := &models.DefenseDocument{
		Content:         content,
		Path:            models.PathTemplate,
		TemplateID:      tmpl.ID,
		ArticleIDs:      articleIDs(articles),
		NoArticlesFound: len(articles) == 0,
		ManualFields:    manual,
		QualityScore:    qualityScore(models.PathTemplate, len(articles), len(manual)),
		Duration:        time.Since(start),
		GeneratedAt:     time.Now(),
	}
	return doc, nil
}

// retrieveArticles queries the knowledge store with a bounded timeout.
// Retrieval failures and cancellation degrade to zero articles rather than
// failing the request; the document records the degradation explicitly.
func (s *DefenseService) retrieveArticles(ctx context.Context, category models.FineType, record models.FineRecord) []models.LegalArticle {
	if s.store == nil {
		return nil
	}

	limit := s.topArticles
	if limit <= 0 {
		limit = defaultTopArticles
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.retrievalTimeout)
	defer cancel()

	query := buildRetrievalQuery(category, record)
	articles, err := s.store.Search(queryCtx, category, query, limit)
	if err != nil {
		log.Printf("Warning: article retrieval failed for category %s: %v. Continuing without legal context.", category, err)
		return nil
	}
	return articles
}

// buildRetrievalQuery builds a sanitized similarity query from the record.
func buildRetrievalQuery(category models.FineType, record models.FineRecord) string {
	parts := []string{
		string(category),
		sanitizePromptField(record.InfractionCode),
		sanitizePromptField(record.Location),
	}
	if record.Notes != nil {
		parts = append(parts, sanitizePromptField(*record.Notes))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// generateWithBackend runs the generative path with the already retrieved
// legal context.
func (s *DefenseService) generateWithBackend(
	ctx context.Context,
	record models.FineRecord,
	category models.FineType,
	articles []models.LegalArticle,
	opts GenerationOptions,
) (*models.DefenseDocument, error) {
	prompt := BuildDefensePrompt(record, category, articles, opts)

	content, err := s.backend.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: blank completion", ErrGenerativeBackend)
	}

	return &models.DefenseDocument{
		Content:         content,
		Path:            models.PathGenerative,
		ArticleIDs:      articleIDs(articles),
		NoArticlesFound: len(articles) == 0,
		QualityScore:    qualityScore(models.PathGenerative, len(articles), 0),
		GeneratedAt:     time.Now(),
	}, nil
}

// qualityScore is a placeholder heuristic: a per-path baseline degraded by
// missing legal context and unfilled manual fields, clamped to [0.1, 0.95].
func qualityScore(path models.GenerationPath, articleCount, manualCount int) float64 {
	score := 0.75
	if path == models.PathGenerative {
		score = 0.85
	}
	if articleCount == 0 {
		score -= 0.15
	}
	score -= 0.02 * float64(manualCount)

	if score < 0.1 {
		score = 0.1
	}
	if score > 0.95 {
		score = 0.95
	}
	return score
}

func articleIDs(articles []models.LegalArticle) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(articles))
	for _, article := range articles {
		ids = append(ids, article.ID)
	}
	return ids
}

// StartGenerationRequest represents a request to start letter generation
type StartGenerationRequest struct {
	CaseID  uuid.UUID
	Options GenerationOptions
}

// StartGenerationResult represents the result of creating a generation job
type StartGenerationResult struct {
	JobID uuid.UUID
}

// StartGeneration validates the case, creates a generation job, and
// returns immediately; ProcessGeneration does the slow work in the
// background. Caller-correctable problems (missing data, unknown fine
// type) surface here, before a job exists.
func (s *DefenseService) StartGeneration(
	ctx context.Context,
	req StartGenerationRequest,
) (*StartGenerationResult, error) {
	if s.caseRepo == nil {
		return nil, errors.New("defense case repository not set")
	}
	if s.jobRepo == nil {
		return nil, errors.New("generation job repository not set")
	}

	defenseCase, err := s.caseRepo.GetByID(ctx, req.CaseID)
	if err != nil {
		return nil, ErrCaseNotFound
	}

	if defenseCase.InfractorName == "" || defenseCase.InfractionCode == "" || defenseCase.Location == "" {
		return nil, ErrMissingRequiredData
	}
	if _, err := models.ResolveFineType(defenseCase.InfractionCode); err != nil {
		return nil, err
	}

	job := &models.GenerationJob{
		CaseID: req.CaseID,
		Status: models.JobStatusPending,
		Steps: models.GenerationSteps{
			{Name: stepRetrievingContext, Status: "pending"},
			{Name: stepDraftingLetter, Status: "pending"},
			{Name: stepArchivingLetter, Status: "pending"},
		},
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, ErrJobCreationFailed
	}

	return &StartGenerationResult{JobID: job.ID}, nil
}

// ProcessGeneration performs the actual generation work in the background.
// Runs in a goroutine; errors are recorded on the job, not returned to an
// HTTP client.
func (s *DefenseService) ProcessGeneration(ctx context.Context, jobID uuid.UUID, opts GenerationOptions) error {
	if s.jobRepo == nil {
		return errors.New("generation job repository not set")
	}
	if s.caseRepo == nil {
		return errors.New("defense case repository not set")
	}

	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load generation job: %w", err)
	}

	defenseCase, err := s.caseRepo.GetByID(ctx, job.CaseID)
	if err != nil {
		s.markJobFailed(ctx, jobID, "failed to load case: "+err.Error())
		return err
	}

	if err := s.jobRepo.UpdateStatus(ctx, jobID, models.JobStatusInProgress); err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	// Retrieval and drafting happen inside Generate; the step updates
	// bracket it for the polling client.
	if err := s.updateStepStatus(ctx, jobID, stepRetrievingContext, "in_progress"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	doc, err := s.Generate(ctx, defenseCase.FineRecord(), opts)
	if err != nil {
		s.markJobFailed(ctx, jobID, "generation failed: "+err.Error())
		return err
	}

	if err := s.updateStepStatus(ctx, jobID, stepRetrievingContext, "completed"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}
	if err := s.updateStepStatus(ctx, jobID, stepDraftingLetter, "completed"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	if err := s.updateStepStatus(ctx, jobID, stepArchivingLetter, "in_progress"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	letterPath := s.archiveLetter(ctx, defenseCase.ID, doc)

	if err := s.caseRepo.UpdateGeneratedLetter(ctx, defenseCase.ID, doc, letterPath); err != nil {
		s.markJobFailed(ctx, jobID, "failed to store generated letter: "+err.Error())
		return err
	}

	if err := s.updateStepStatus(ctx, jobID, stepArchivingLetter, "completed"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	if err := s.jobRepo.Complete(ctx, jobID); err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	return nil
}

// archiveLetter uploads the letter text to the archive. Archiving is
// best-effort: a failure is logged, the generated letter is still stored
// on the case.
func (s *DefenseService) archiveLetter(ctx context.Context, caseID uuid.UUID, doc *models.DefenseDocument) *string {
	if s.letters == nil {
		return nil
	}

	filename := fmt.Sprintf("defesa_%s.txt", caseID)
	path, err := s.letters.Upload(ctx, caseID, filename, strings.NewReader(doc.Content))
	if err != nil {
		log.Printf("Warning: failed to archive letter for case %s: %v", caseID, err)
		return nil
	}
	return &path
}

// GetJobStatusRequest represents a request to get job status
type GetJobStatusRequest struct {
	JobID uuid.UUID
}

// GetJobStatusResult represents the result of getting job status
type GetJobStatusResult struct {
	Job *models.GenerationJob
}

// GetJobStatus retrieves the status of a generation job
func (s *DefenseService) GetJobStatus(
	ctx context.Context,
	req GetJobStatusRequest,
) (*GetJobStatusResult, error) {
	if s.jobRepo == nil {
		return nil, errors.New("generation job repository not set")
	}

	job, err := s.jobRepo.GetByID(ctx, req.JobID)
	if err != nil {
		return nil, ErrJobNotFound
	}

	return &GetJobStatusResult{Job: job}, nil
}

// updateStepStatus updates the status of a specific step in the generation job
func (s *DefenseService) updateStepStatus(ctx context.Context, jobID uuid.UUID, stepName, status string) error {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}

	steps := job.Steps
	var currentStep string
	if job.CurrentStep != nil {
		currentStep = *job.CurrentStep
	}

	for i := range steps {
		if steps[i].Name == stepName {
			steps[i].Status = status
			if status == "in_progress" {
				currentStep = stepName
			}
			break
		}
	}

	return s.jobRepo.UpdateProgress(ctx, jobID, currentStep, steps)
}

// markJobFailed marks a job as failed with an error message
func (s *DefenseService) markJobFailed(ctx context.Context, jobID uuid.UUID, errorMessage string) {
	if err := s.jobRepo.Fail(ctx, jobID, errorMessage); err != nil {
		log.Printf("Warning: failed to mark job %s as failed: %v", jobID, err)
	}
}
