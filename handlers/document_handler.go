package handlers

import (
	"errors"
	"net/http"

	"lexanswer-backend/models"
	"lexanswer-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DocumentHandler handles HTTP requests for document ingestion and deletion
type DocumentHandler struct {
	ingestService *service.IngestService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(ingestService *service.IngestService) *DocumentHandler {
	return &DocumentHandler{ingestService: ingestService}
}

// IngestDocumentRequest represents the request body for ingesting a document
type IngestDocumentRequest struct {
	Title        string `json:"title" binding:"required"`
	Jurisdiction string `json:"jurisdiction"`
	DocType      string `json:"doc_type"`
	Text         string `json:"text" binding:"required"`
}

// IngestDocument handles POST /api/documents
func (h *DocumentHandler) IngestDocument(c *gin.Context) {
	var req IngestDocumentRequest
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

	doc := models.Document{
		Title:        req.Title,
		Jurisdiction: req.Jurisdiction,
		DocType:      models.DocumentType(req.DocType),
		Text:         req.Text,
	}

	result, err := h.ingestService.Ingest(c.Request.Context(), doc)
	if err != nil {
		if errors.Is(err, service.ErrEmptyDocument) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "EMPTY_DOCUMENT",
					"message": err.Error(),
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INGEST_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    result,
	})
}

// DeleteDocument handles DELETE /api/documents/:id
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_DOCUMENT_ID",
				"message": "Invalid document id format",
			},
		})
		return
	}

	if err := h.ingestService.DeleteDocument(c.Request.Context(), docID); err != nil {
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
