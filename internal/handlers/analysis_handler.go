package handler

import (
	"net/http"
	"time"

	"accountant-backend/internal/repository"
	"accountant-backend/internal/services/analysis"

	"github.com/gin-gonic/gin"
)

type AnalysisHandler struct {
	service      *analysis.Service
	transactions *repository.TransactionRepository
}

func NewAnalysisHandler(service *analysis.Service, transactions *repository.TransactionRepository) *AnalysisHandler {
	return &AnalysisHandler{service: service, transactions: transactions}
}

// RunDeep runs a deep analysis over the requested period (default: last 90
// days) and returns the stored report.
func (h *AnalysisHandler) RunDeep(c *gin.Context) {
	var payload struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}
	_ = c.BindJSON(&payload)

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -90)
	if payload.StartDate != "" {
		if t, err := time.Parse("2006-01-02", payload.StartDate); err == nil {
			start = t
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date, expected YYYY-MM-DD"})
			return
		}
	}
	if payload.EndDate != "" {
		if t, err := time.Parse("2006-01-02", payload.EndDate); err == nil {
			end = t
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date, expected YYYY-MM-DD"})
			return
		}
	}

	report, err := h.service.Run(c.Request.Context(), start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *AnalysisHandler) ListReports(c *gin.Context) {
	limit := queryInt(c, "limit", 20)

	reports, err := h.transactions.ListReports(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": reports})
}
