package handler

import (
	"errors"
	"net/http"
	"time"

	"accountant-backend/internal/models"
	"accountant-backend/internal/repository"
	"accountant-backend/internal/services/matching"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MatchHandler struct {
	engine *matching.Engine
	store  *repository.ReconciliationStore
	feed   matching.LedgerFeed
}

func NewMatchHandler(engine *matching.Engine, store *repository.ReconciliationStore, feed matching.LedgerFeed) *MatchHandler {
	return &MatchHandler{engine: engine, store: store, feed: feed}
}

// AutoMatch runs one reconciliation pass over unmatched payments.
func (h *MatchHandler) AutoMatch(c *gin.Context) {
	matched, err := h.engine.AutoMatch(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"matched_count": matched})
}

// ManualMatch pairs an explicit payment and receipt.
func (h *MatchHandler) ManualMatch(c *gin.Context) {
	var payload struct {
		PaymentID string `json:"payment_id"`
		ReceiptID string `json:"receipt_id"`
		Notes     string `json:"notes"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	paymentID, err := uuid.Parse(payload.PaymentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment ID"})
		return
	}
	receiptID, err := uuid.Parse(payload.ReceiptID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid receipt ID"})
		return
	}

	match, err := h.engine.ManualMatch(c.Request.Context(), paymentID, receiptID, payload.Notes)
	if err != nil {
		if errors.Is(err, matching.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "payment or receipt not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"match_id": match.ID.String(),
		"message":  "manual match created",
	})
}

// ExpenseMatch reconciles recent ledger expenses against receipts.
func (h *MatchHandler) ExpenseMatch(c *gin.Context) {
	daysBack := queryInt(c, "days_back", 30)

	matches, err := h.engine.ExpenseMatch(c.Request.Context(), daysBack)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": len(matches),
		"matches": matches,
	})
}

// UnmatchedExpenses lists recent outbound ledger entries for review.
func (h *MatchHandler) UnmatchedExpenses(c *gin.Context) {
	daysBack := queryInt(c, "days_back", 30)

	end := time.Now().UTC()
	entries, err := h.feed.Entries(c.Request.Context(),
		end.AddDate(0, 0, -daysBack), end, models.LedgerOutbound)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	c.JSON(http.StatusOK, gin.H{
		"count":        len(entries),
		"total_amount": total,
		"expenses":     entries,
	})
}

// ListMatches returns recent match rows.
func (h *MatchHandler) ListMatches(c *gin.Context) {
	limit := queryInt(c, "limit", 50)

	matches, err := h.store.ListMatches(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": matches})
}
