package handler

import (
	"net/http"

	"accountant-backend/internal/repository"
	"accountant-backend/internal/services/fiken"
	"accountant-backend/internal/services/folio"

	"github.com/gin-gonic/gin"
)

type StatusHandler struct {
	receipts *repository.ReceiptRepository
	payments *repository.PaymentRepository
	entries  *repository.AccountingEntryRepository
	folio    *folio.Client
	fiken    *fiken.Client
}

func NewStatusHandler(receipts *repository.ReceiptRepository, payments *repository.PaymentRepository, entries *repository.AccountingEntryRepository, folioClient *folio.Client, fikenClient *fiken.Client) *StatusHandler {
	return &StatusHandler{
		receipts: receipts,
		payments: payments,
		entries:  entries,
		folio:    folioClient,
		fiken:    fikenClient,
	}
}

// Status reports entity counts by status and external service connectivity.
func (h *StatusHandler) Status(c *gin.Context) {
	ctx := c.Request.Context()

	receiptCounts, err := h.receipts.CountByStatus(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	paymentCounts, err := h.payments.CountByStatus(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	entryCounts, err := h.entries.CountByStatus(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"receipts":           receiptCounts,
		"payments":           paymentCounts,
		"accounting_entries": entryCounts,
		"folio_connected":    h.folio.TestConnection(ctx),
		"fiken_connected":    h.fiken.TestConnection(ctx),
	})
}
