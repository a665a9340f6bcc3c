package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"defesadigital-backend/models"
	"defesadigital-backend/service"
	"defesadigital-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DefenseHandler handles HTTP requests for defense cases and generation
type DefenseHandler struct {
	caseService    *service.CaseService
	defenseService *service.DefenseService
	letters        storage.Storage
}

// NewDefenseHandler creates a new defense handler
func NewDefenseHandler(caseService *service.CaseService, defenseService *service.DefenseService, letters storage.Storage) *DefenseHandler {
	return &DefenseHandler{
		caseService:    caseService,
		defenseService: defenseService,
		letters:        letters,
	}
}

// CreateCaseRequest represents the request body for creating a defense case
type CreateCaseRequest struct {
	InfractionCode string  `json:"infraction_code" binding:"required"`
	FineDate       string  `json:"fine_date" binding:"required"`
	Location       string  `json:"location" binding:"required"`
	InfractorName  string  `json:"infractor_name" binding:"required"`
	FineAmount     float64 `json:"fine_amount" binding:"required"`
	Notes          *string `json:"notes"`
}

// CreateCase handles POST /api/cases
func (h *DefenseHandler) CreateCase(c *gin.Context) {
	var req CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	serviceReq := service.CreateCaseRequest{
		InfractionCode: req.InfractionCode,
		FineDate:       req.FineDate,
		Location:       req.Location,
		InfractorName:  req.InfractorName,
		FineAmount:     req.FineAmount,
		Notes:          req.Notes,
	}

	result, err := h.caseService.CreateCase(c.Request.Context(), serviceReq)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CREATE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    result.Case,
	})
}

// GetCase handles GET /api/cases/:id
func (h *DefenseHandler) GetCase(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	result, err := h.caseService.GetCase(c.Request.Context(), service.GetCaseRequest{ID: id})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Defense case not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Case,
	})
}

// ListCases handles GET /api/cases
func (h *DefenseHandler) ListCases(c *gin.Context) {
	var status *models.CaseStatus
	if s := c.Query("status"); s != "" {
		cs := models.CaseStatus(s)
		status = &cs
	}

	limit := 50
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		limit = l
	}
	offset := 0
	if o, err := strconv.Atoi(c.Query("offset")); err == nil && o > 0 {
		offset = o
	}

	result, err := h.caseService.ListCases(c.Request.Context(), service.ListCasesRequest{
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LIST_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Cases,
	})
}

// UpdateCaseRequest represents the request body for updating a defense case
type UpdateCaseRequest struct {
	Status         string   `json:"status"`
	InfractionCode string   `json:"infraction_code"`
	FineDate       string   `json:"fine_date"`
	Location       string   `json:"location"`
	InfractorName  string   `json:"infractor_name"`
	FineAmount     *float64 `json:"fine_amount"`
	Notes          *string  `json:"notes"`
}

// UpdateCase handles PUT /api/cases/:id
func (h *DefenseHandler) UpdateCase(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	getResult, err := h.caseService.GetCase(c.Request.Context(), service.GetCaseRequest{ID: id})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Defense case not found",
			},
		})
		return
	}

	defenseCase := getResult.Case

	var req UpdateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	if req.Status != "" {
		defenseCase.Status = models.CaseStatus(req.Status)
	}
	if req.InfractionCode != "" {
		defenseCase.InfractionCode = req.InfractionCode
	}
	if req.FineDate != "" {
		defenseCase.FineDate = req.FineDate
	}
	if req.Location != "" {
		defenseCase.Location = req.Location
	}
	if req.InfractorName != "" {
		defenseCase.InfractorName = req.InfractorName
	}
	if req.FineAmount != nil {
		defenseCase.FineAmount = *req.FineAmount
	}
	if req.Notes != nil {
		defenseCase.Notes = req.Notes
	}

	updateResult, err := h.caseService.UpdateCase(c.Request.Context(), service.UpdateCaseRequest{Case: defenseCase})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPDATE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    updateResult.Case,
	})
}

// DeleteCase handles DELETE /api/cases/:id
func (h *DefenseHandler) DeleteCase(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.caseService.DeleteCase(c.Request.Context(), service.DeleteCaseRequest{ID: id}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DELETE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// GenerateDefenseRequest represents the optional request body for generation
type GenerateDefenseRequest struct {
	Style             string  `json:"style"`
	Difficulty        string  `json:"difficulty"`
	IncludePrecedents bool    `json:"include_precedents"`
	ExtraNotes        *string `json:"extra_notes"`
}

// GenerateDefense handles POST /api/cases/:id/generate
func (h *DefenseHandler) GenerateDefense(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	// JSON body is optional; a missing or malformed body means defaults
	var reqBody GenerateDefenseRequest
	if err := c.ShouldBindJSON(&reqBody); err != nil && err != io.EOF {
		reqBody = GenerateDefenseRequest{}
	}

	opts := service.GenerationOptions{
		Style:             service.Style(reqBody.Style),
		Difficulty:        models.Difficulty(reqBody.Difficulty),
		IncludePrecedents: reqBody.IncludePrecedents,
		ExtraNotes:        reqBody.ExtraNotes,
	}

	// Create job (synchronous, fast)
	result, err := h.defenseService.StartGeneration(c.Request.Context(), service.StartGenerationRequest{
		CaseID:  id,
		Options: opts,
	})
	if err != nil {
		status := http.StatusInternalServerError
		code := "GENERATION_FAILED"
		switch {
		case errors.Is(err, service.ErrCaseNotFound):
			status, code = http.StatusNotFound, "NOT_FOUND"
		case errors.Is(err, service.ErrMissingRequiredData):
			status, code = http.StatusUnprocessableEntity, "MISSING_REQUIRED_DATA"
		case errors.Is(err, models.ErrUnknownFineType):
			status, code = http.StatusUnprocessableEntity, "UNKNOWN_FINE_TYPE"
		}
		c.JSON(status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": err.Error(),
			},
		})
		return
	}

	// Spawn background goroutine for actual processing.
	// Use background context (not request context) to avoid cancellation.
	go func() {
		bgCtx := context.Background()
		if err := h.defenseService.ProcessGeneration(bgCtx, result.JobID, opts); err != nil {
			// Error is stored in job.ErrorMessage; clients poll status
			log.Printf("Generation job %s failed: %v", result.JobID, err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"data": gin.H{
			"job_id":  result.JobID,
			"status":  "pending",
			"message": "Generation job created. Poll /api/jobs/:id for updates.",
		},
	})
}

// GetJobStatus handles GET /api/jobs/:id
func (h *DefenseHandler) GetJobStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	result, err := h.defenseService.GetJobStatus(c.Request.Context(), service.GetJobStatusRequest{JobID: id})
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Generation job not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RETRIEVAL_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Job,
	})
}

// DownloadLetter handles GET /api/cases/:id/letter
func (h *DefenseHandler) DownloadLetter(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	result, err := h.caseService.GetCase(c.Request.Context(), service.GetCaseRequest{ID: id})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Defense case not found",
			},
		})
		return
	}

	defenseCase := result.Case
	if defenseCase.LetterPath == nil || h.letters == nil {
		// Archive missing; fall back to the stored letter text
		if defenseCase.GeneratedLetter == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NO_LETTER",
					"message": "No generated letter for this case",
				},
			})
			return
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(*defenseCase.GeneratedLetter))
		return
	}

	reader, err := h.letters.Download(c.Request.Context(), *defenseCase.LetterPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DOWNLOAD_FAILED",
				"message": err.Error(),
			},
		})
		return
	}
	defer reader.Close()

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		log.Printf("Warning: failed to stream letter for case %s: %v", id, err)
	}
}

// parseIDParam parses the :id path parameter, writing the error response
// itself on failure.
func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid ID format",
			},
		})
		return uuid.Nil, false
	}
	return id, true
}
