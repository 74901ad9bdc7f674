package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"accountant-backend/internal/repository"
	"accountant-backend/internal/services/folio"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	payments *repository.PaymentRepository
	syncer   *folio.Syncer
	logger   *slog.Logger
}

func NewPaymentHandler(payments *repository.PaymentRepository, syncer *folio.Syncer, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, syncer: syncer, logger: logger}
}

// Sync kicks off a background payment import from the bank feed.
func (h *PaymentHandler) Sync(c *gin.Context) {
	daysBack := queryInt(c, "days_back", 30)

	go func() {
		if _, err := h.syncer.SyncPayments(context.Background(), daysBack); err != nil {
			h.logger.Error("background payment sync failed", "error", err)
		}
		if _, err := h.syncer.SyncTransactions(context.Background(), daysBack); err != nil {
			h.logger.Error("background transaction sync failed", "error", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"message": "payment sync started"})
}

func (h *PaymentHandler) List(c *gin.Context) {
	limit := queryInt(c, "limit", 50)

	payments, err := h.payments.List(c.Request.Context(), c.Query("status"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": payments})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
