package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"accountant-backend/internal/models"
	"accountant-backend/internal/repository"
	"accountant-backend/internal/services/extraction"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var allowedExtensions = map[string]bool{
	".pdf": true, ".png": true, ".jpg": true, ".jpeg": true,
	".gif": true, ".bmp": true, ".tiff": true,
}

type ReceiptHandler struct {
	receipts     *repository.ReceiptRepository
	processor    *extraction.Processor
	uploadFolder string
	maxFileSize  int64
	logger       *slog.Logger
}

func NewReceiptHandler(receipts *repository.ReceiptRepository, processor *extraction.Processor, uploadFolder string, maxFileSize int64, logger *slog.Logger) *ReceiptHandler {
	return &ReceiptHandler{
		receipts:     receipts,
		processor:    processor,
		uploadFolder: uploadFolder,
		maxFileSize:  maxFileSize,
		logger:       logger,
	}
}

// Upload stores the document, creates a pending receipt and queues
// extraction in the background.
func (h *ReceiptHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("file type %s not allowed", ext)})
		return
	}
	if header.Size > h.maxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return
	}

	if err := os.MkdirAll(h.uploadFolder, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
		return
	}
	safeName := fmt.Sprintf("%s_%s", time.Now().Format("20060102_150405"), filepath.Base(header.Filename))
	path := filepath.Join(h.uploadFolder, safeName)

	out, err := os.Create(path)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
		return
	}
	defer out.Close()
	if _, err := out.ReadFrom(file); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
		return
	}

	receipt := &models.Receipt{
		ID:               uuid.New(),
		Source:           "manual",
		FilePath:         path,
		OriginalFilename: header.Filename,
		Status:           models.ReceiptStatusPending,
		Currency:         "NOK",
		CreatedAt:        time.Now().UTC(),
	}
	if err := h.receipts.Create(c.Request.Context(), receipt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	go func() {
		if err := h.processor.ProcessReceipt(context.Background(), receipt.ID); err != nil {
			h.logger.Error("background receipt processing failed",
				"receipt_id", receipt.ID, "error", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"id":      receipt.ID.String(),
		"message": "receipt uploaded and queued for processing",
	})
}

func (h *ReceiptHandler) List(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	receipts, err := h.receipts.List(c.Request.Context(), c.Query("status"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": receipts})
}

func (h *ReceiptHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid receipt ID"})
		return
	}

	receipt, err := h.receipts.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "receipt not found"})
		return
	}
	c.JSON(http.StatusOK, receipt)
}

// Process re-queues extraction for a receipt, e.g. after an error.
func (h *ReceiptHandler) Process(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid receipt ID"})
		return
	}
	if _, err := h.receipts.GetByID(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "receipt not found"})
		return
	}

	go func() {
		if err := h.processor.ProcessReceipt(context.Background(), id); err != nil {
			h.logger.Error("background receipt processing failed",
				"receipt_id", id, "error", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"message": "receipt queued for processing"})
}
