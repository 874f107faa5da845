package handlers

import (
	"errors"
	"net/http"

	"lexanswer-backend/models"
	"lexanswer-backend/service"

	"github.com/gin-gonic/gin"
)

// QueryHandler handles HTTP requests for queries and answer validation
type QueryHandler struct {
	queryService   *service.QueryService
	qualityService *service.QualityService
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(queryService *service.QueryService, qualityService *service.QualityService) *QueryHandler {
	return &QueryHandler{
		queryService:   queryService,
		qualityService: qualityService,
	}
}

// QueryRequest represents the request body for a question
type QueryRequest struct {
	Question     string                    `json:"question" binding:"required"`
	Jurisdiction string                    `json:"jurisdiction"`
	History      []models.ConversationTurn `json:"history"`
	Validate     bool                      `json:"validate"`
}

// Query handles POST /api/query. A model failure is distinguished from a
// bad request so the caller can tell "no answer available" apart from
// "technical failure".
func (h *QueryHandler) Query(c *gin.Context) {
	var req QueryRequest
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

	result, err := h.queryService.Query(c.Request.Context(), service.QueryRequest{
		Question:     req.Question,
		Jurisdiction: req.Jurisdiction,
		History:      req.History,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyQuestion):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "EMPTY_QUESTION",
					"message": err.Error(),
				},
			})
		case errors.Is(err, service.ErrGenerationFailed), errors.Is(err, service.ErrRetrievalFailed):
			c.JSON(http.StatusBadGateway, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UPSTREAM_FAILURE",
					"message": err.Error(),
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "QUERY_FAILED",
					"message": err.Error(),
				},
			})
		}
		return
	}

	response := gin.H{
		"success": true,
		"data":    result,
	}
	if req.Validate {
		response["quality"] = h.qualityService.Validate(c.Request.Context(), result.Question, result.Answer, result.Chunks)
	}

	c.JSON(http.StatusOK, response)
}

// ValidateRequest represents the request body for offline answer validation
type ValidateRequest struct {
	Question string         `json:"question" binding:"required"`
	Answer   string         `json:"answer" binding:"required"`
	Chunks   []models.Chunk `json:"chunks"`
}

// Validate handles POST /api/validate
func (h *QueryHandler) Validate(c *gin.Context) {
	var req ValidateRequest
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

	report := h.qualityService.Validate(c.Request.Context(), req.Question, req.Answer, req.Chunks)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
	})
}
