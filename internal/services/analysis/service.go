// Package analysis runs AI-assisted spend analysis over imported
// transaction history and stores the results as analysis reports.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"accountant-backend/internal/models"
	"accountant-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ChatCompleter is the slice of the LLM client the analyzer needs.
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type Service struct {
	llm          ChatCompleter
	transactions *repository.TransactionRepository
	model        string
	logger       *slog.Logger
}

func NewService(llm ChatCompleter, transactions *repository.TransactionRepository, model string, logger *slog.Logger) *Service {
	return &Service{llm: llm, transactions: transactions, model: model, logger: logger}
}

// CategoryTotal is one category's share of spending in the period.
type CategoryTotal struct {
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage float64         `json:"percentage"`
}

// MerchantTotal is one merchant's total spending in the period.
type MerchantTotal struct {
	Merchant string          `json:"merchant"`
	Amount   decimal.Decimal `json:"amount"`
}

// Summary aggregates a transaction window before the AI pass.
type Summary struct {
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetCashflow   decimal.Decimal `json:"net_cashflow"`
	Categories    []CategoryTotal `json:"categories"`
	TopMerchants  []MerchantTotal `json:"top_merchants"`
}

const topMerchantCount = 10

// Summarize aggregates transactions in [start, end].
func Summarize(transactions []models.Transaction) Summary {
	income := decimal.Zero
	expenses := decimal.Zero
	byCategory := make(map[string]decimal.Decimal)
	byMerchant := make(map[string]decimal.Decimal)

	for _, tx := range transactions {
		amount := tx.Amount.Abs()
		switch tx.Type {
		case models.TransactionTypeIncome:
			income = income.Add(amount)
		case models.TransactionTypeExpense:
			expenses = expenses.Add(amount)
			category := tx.Category
			if category == "" {
				category = "Uncategorized"
			}
			byCategory[category] = byCategory[category].Add(amount)
			if tx.Merchant != "" {
				byMerchant[tx.Merchant] = byMerchant[tx.Merchant].Add(amount)
			}
		}
	}

	summary := Summary{
		TotalIncome:   income,
		TotalExpenses: expenses,
		NetCashflow:   income.Sub(expenses),
	}

	for category, amount := range byCategory {
		pct := 0.0
		if !expenses.IsZero() {
			pct, _ = amount.Div(expenses).Mul(decimal.NewFromInt(100)).Round(1).Float64()
		}
		summary.Categories = append(summary.Categories, CategoryTotal{
			Category:   category,
			Amount:     amount,
			Percentage: pct,
		})
	}
	sort.Slice(summary.Categories, func(i, j int) bool {
		if summary.Categories[i].Amount.Equal(summary.Categories[j].Amount) {
			return summary.Categories[i].Category < summary.Categories[j].Category
		}
		return summary.Categories[i].Amount.GreaterThan(summary.Categories[j].Amount)
	})

	for merchant, amount := range byMerchant {
		summary.TopMerchants = append(summary.TopMerchants, MerchantTotal{
			Merchant: merchant,
			Amount:   amount,
		})
	}
	sort.Slice(summary.TopMerchants, func(i, j int) bool {
		if summary.TopMerchants[i].Amount.Equal(summary.TopMerchants[j].Amount) {
			return summary.TopMerchants[i].Merchant < summary.TopMerchants[j].Merchant
		}
		return summary.TopMerchants[i].Amount.GreaterThan(summary.TopMerchants[j].Amount)
	})
	if len(summary.TopMerchants) > topMerchantCount {
		summary.TopMerchants = summary.TopMerchants[:topMerchantCount]
	}

	return summary
}

// Run aggregates the period, asks the model for insights and persists the
// report. An AI failure still stores the numeric breakdowns.
func (s *Service) Run(ctx context.Context, start, end time.Time) (*models.AnalysisReport, error) {
	began := time.Now()

	transactions, err := s.transactions.Between(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	summary := Summarize(transactions)

	categoryJSON, _ := json.Marshal(summary.Categories)
	merchantJSON, _ := json.Marshal(summary.TopMerchants)

	report := &models.AnalysisReport{
		ID:                uuid.New(),
		ReportType:        "deep_analysis",
		StartDate:         start,
		EndDate:           end,
		AIModel:           s.model,
		TotalIncome:       summary.TotalIncome,
		TotalExpenses:     summary.TotalExpenses,
		NetCashflow:       summary.NetCashflow,
		CategoryBreakdown: datatypes.JSON(categoryJSON),
		MerchantBreakdown: datatypes.JSON(merchantJSON),
		CreatedAt:         time.Now().UTC(),
	}

	insights, err := s.generateInsights(ctx, summary, len(transactions))
	if err != nil {
		s.logger.Warn("insight generation failed, storing breakdowns only", "error", err)
	} else {
		report.AIInsights = insights
	}

	report.ProcessingTime = time.Since(began).Seconds()
	if err := s.transactions.CreateReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to store analysis report: %w", err)
	}

	s.logger.Info("analysis report created",
		"report_id", report.ID, "transactions", len(transactions),
		"net_cashflow", report.NetCashflow)
	return report, nil
}

func (s *Service) generateInsights(ctx context.Context, summary Summary, txCount int) (datatypes.JSON, error) {
	summaryJSON, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`Analyze this spending summary covering %d transactions:

%s

Return a JSON object:
{
  "insights": ["notable observations about spending patterns"],
  "anomalies": ["unusual transactions or category spikes"],
  "recommendations": ["concrete suggestions to improve cashflow"]
}`, txCount, summaryJSON)

	raw, err := s.llm.Complete(ctx,
		"You are a financial analyst. Respond with ONLY a valid JSON object.", prompt)
	if err != nil {
		return nil, err
	}

	// Validate it is JSON before persisting.
	var check map[string]any
	if err := json.Unmarshal([]byte(raw), &check); err != nil {
		return nil, fmt.Errorf("unparseable insight output: %w", err)
	}
	return datatypes.JSON(raw), nil
}
