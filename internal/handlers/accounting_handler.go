package handler

import (
	"context"
	"log/slog"
	"net/http"

	"accountant-backend/internal/repository"
	"accountant-backend/internal/services/fiken"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AccountingHandler struct {
	service *fiken.Service
	entries *repository.AccountingEntryRepository
	logger  *slog.Logger
}

func NewAccountingHandler(service *fiken.Service, entries *repository.AccountingEntryRepository, logger *slog.Logger) *AccountingHandler {
	return &AccountingHandler{service: service, entries: entries, logger: logger}
}

// SyncReceipt queues one receipt for posting to the accounting ledger.
func (h *AccountingHandler) SyncReceipt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("receiptId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid receipt ID"})
		return
	}

	go func() {
		if err := h.service.SyncReceipt(context.Background(), id); err != nil {
			h.logger.Error("background accounting sync failed",
				"receipt_id", id, "error", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"message": "accounting sync started"})
}

// SyncAll queues every matched receipt without a synced entry.
func (h *AccountingHandler) SyncAll(c *gin.Context) {
	go func() {
		if _, err := h.service.SyncAllMatched(context.Background()); err != nil {
			h.logger.Error("background accounting sync-all failed", "error", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"message": "accounting sync started"})
}

func (h *AccountingHandler) ListEntries(c *gin.Context) {
	limit := queryInt(c, "limit", 50)

	entries, err := h.entries.List(c.Request.Context(), c.Query("status"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}
