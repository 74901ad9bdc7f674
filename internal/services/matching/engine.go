package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"accountant-backend/internal/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a manual match references a payment or
// receipt that does not exist.
var ErrNotFound = errors.New("record not found")

// acceptThreshold is the minimum adjudicator confidence for a match to be
// committed.
const acceptThreshold = 0.6

// Store is the persistence surface the engine needs. Listings must be
// ordered deterministically (ascending id); CommitMatch must apply the match
// row and both status flips atomically.
type Store interface {
	UnmatchedPayments(ctx context.Context) ([]models.Payment, error)
	ProcessedReceipts(ctx context.Context) ([]models.Receipt, error)
	GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	GetReceipt(ctx context.Context, id uuid.UUID) (*models.Receipt, error)
	CommitMatch(ctx context.Context, match *models.PaymentMatch) error
}

// LedgerFeed supplies booked activity from the external bank feed.
type LedgerFeed interface {
	Entries(ctx context.Context, start, end time.Time, direction models.LedgerDirection) ([]models.LedgerEntry, error)
}

// ExpenseMatchResult is one accepted expense/receipt pairing from an
// expense-match run.
type ExpenseMatchResult struct {
	Expense    models.LedgerEntry `json:"expense"`
	Receipt    models.Receipt     `json:"receipt"`
	Confidence float64            `json:"confidence"`
}

// Engine runs reconciliation over payments, ledger expenses and receipts.
// All collaborators are injected; runs serialize behind runMu so two
// overlapping runs cannot claim the same receipt.
type Engine struct {
	store       Store
	adjudicator Adjudicator
	feed        LedgerFeed
	logger      *slog.Logger

	runMu sync.Mutex
}

func NewEngine(store Store, adjudicator Adjudicator, feed LedgerFeed, logger *slog.Logger) *Engine {
	return &Engine{
		store:       store,
		adjudicator: adjudicator,
		feed:        feed,
		logger:      logger,
	}
}

// AutoMatch pairs unmatched payments with processed receipts. Each payment's
// remaining candidate set goes to the adjudicator; an accepted judgment
// commits the match with the adjudicator's confidence. Committed receipts
// leave the candidate pool immediately, so one receipt is consumed by at
// most one payment per run. Per-pair failures are logged and skipped.
func (e *Engine) AutoMatch(ctx context.Context) (int, error) {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	payments, err := e.store.UnmatchedPayments(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load unmatched payments: %w", err)
	}
	pool, err := e.store.ProcessedReceipts(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load processed receipts: %w", err)
	}

	matched := 0
	for _, payment := range payments {
		if len(pool) == 0 {
			break
		}

		summary := PaymentSummary{
			Amount:      payment.Amount,
			Currency:    "NOK",
			PaymentDate: payment.PaymentDate,
			Reference:   payment.Reference,
			Counterpart: payment.CounterpartName,
		}

		judgment, err := e.adjudicator.Adjudicate(ctx, summary, pool)
		if err != nil {
			e.logger.Warn("adjudication failed, skipping payment",
				"payment_id", payment.ID, "error", err)
			continue
		}
		if judgment == nil || judgment.MatchedReceiptID == nil || judgment.Confidence <= acceptThreshold {
			continue
		}

		receipt := takeFromPool(&pool, *judgment.MatchedReceiptID)
		if receipt == nil {
			e.logger.Warn("adjudicator returned a receipt outside the candidate pool",
				"payment_id", payment.ID, "receipt_id", *judgment.MatchedReceiptID)
			continue
		}

		paymentID := payment.ID
		match := &models.PaymentMatch{
			ReceiptID:        receipt.ID,
			PaymentID:        &paymentID,
			MatchConfidence:  judgment.Confidence,
			MatchType:        judgment.MatchType,
			MatchedAmount:    payment.Amount,
			AIMatchReasoning: judgment.Reasoning,
		}
		if err := e.store.CommitMatch(ctx, match); err != nil {
			e.logger.Error("failed to commit match, skipping pair",
				"payment_id", payment.ID, "receipt_id", receipt.ID, "error", err)
			pool = append(pool, *receipt) // receipt stays available
			continue
		}

		e.logger.Info("matched payment to receipt",
			"payment_id", payment.ID, "receipt_id", receipt.ID,
			"confidence", judgment.Confidence, "match_type", judgment.MatchType)
		matched++
	}
	return matched, nil
}

// ExpenseMatch pulls outbound ledger entries from the last daysBack days and
// matches them against processed receipts. The heuristic selector narrows to
// a single candidate, the adjudicator verifies it, and the committed match
// records the heuristic score.
func (e *Engine) ExpenseMatch(ctx context.Context, daysBack int) ([]ExpenseMatchResult, error) {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -daysBack)
	expenses, err := e.feed.Entries(ctx, start, end, models.LedgerOutbound)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ledger expenses: %w", err)
	}

	pool, err := e.store.ProcessedReceipts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load processed receipts: %w", err)
	}

	results := make([]ExpenseMatchResult, 0)
	for _, expense := range expenses {
		if len(pool) == 0 {
			break
		}

		best, score := SelectCandidate(Candidate{
			Amount:   expense.Amount,
			Date:     expense.Date,
			Merchant: expense.Merchant,
		}, pool)
		if best == nil {
			continue
		}

		summary := PaymentSummary{
			Amount:      expense.Amount,
			Currency:    "NOK",
			PaymentDate: expense.Date,
			Reference:   expense.Description,
			Counterpart: expense.Merchant,
		}
		judgment, err := e.adjudicator.Adjudicate(ctx, summary, []models.Receipt{*best})
		if err != nil {
			e.logger.Warn("adjudication failed, skipping expense",
				"expense_id", expense.ID, "error", err)
			continue
		}
		if judgment == nil || judgment.MatchedReceiptID == nil || judgment.Confidence <= acceptThreshold {
			continue
		}

		match := &models.PaymentMatch{
			ReceiptID:       best.ID,
			MatchConfidence: score, // heuristic score, not the adjudicator's
			MatchType:       models.MatchTypeExpense,
			MatchedAmount:   expense.Amount,
			AIMatchReasoning: fmt.Sprintf(
				"Matched ledger expense to receipt. Merchant: %s, date diff: %d days",
				expense.Merchant, dayDiff(expense.Date, best.InvoiceDate)),
		}
		if err := e.store.CommitMatch(ctx, match); err != nil {
			e.logger.Error("failed to commit expense match, skipping pair",
				"expense_id", expense.ID, "receipt_id", best.ID, "error", err)
			continue
		}

		results = append(results, ExpenseMatchResult{
			Expense:    expense,
			Receipt:    *best,
			Confidence: score,
		})
		removeFromPool(&pool, best.ID)
	}
	return results, nil
}

// ManualMatch pairs an explicit payment and receipt, bypassing all scoring.
// Both statuses are force-set to matched regardless of their prior state.
func (e *Engine) ManualMatch(ctx context.Context, paymentID, receiptID uuid.UUID, notes string) (*models.PaymentMatch, error) {
	payment, err := e.store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("payment %s: %w", paymentID, ErrNotFound)
	}
	receipt, err := e.store.GetReceipt(ctx, receiptID)
	if err != nil {
		return nil, fmt.Errorf("receipt %s: %w", receiptID, ErrNotFound)
	}

	pid := payment.ID
	match := &models.PaymentMatch{
		ReceiptID:       receipt.ID,
		PaymentID:       &pid,
		MatchConfidence: 1.0,
		MatchType:       models.MatchTypeManual,
		MatchedAmount:   payment.Amount,
		IsManual:        true,
		ManualNotes:     notes,
	}
	if err := e.store.CommitMatch(ctx, match); err != nil {
		return nil, fmt.Errorf("failed to commit manual match: %w", err)
	}

	e.logger.Info("manual match created",
		"payment_id", payment.ID, "receipt_id", receipt.ID)
	return match, nil
}

func takeFromPool(pool *[]models.Receipt, id uuid.UUID) *models.Receipt {
	for i := range *pool {
		if (*pool)[i].ID == id {
			receipt := (*pool)[i]
			*pool = append((*pool)[:i], (*pool)[i+1:]...)
			return &receipt
		}
	}
	return nil
}

func removeFromPool(pool *[]models.Receipt, id uuid.UUID) {
	takeFromPool(pool, id)
}

func dayDiff(date time.Time, invoiceDate *time.Time) int {
	if invoiceDate == nil {
		return 0
	}
	return int(math.Abs(date.Sub(*invoiceDate).Hours()) / 24)
}
