package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"accountant-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentSummary is the payment-side context handed to the adjudicator.
type PaymentSummary struct {
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	PaymentDate time.Time       `json:"payment_date"`
	Reference   string          `json:"reference"`
	Counterpart string          `json:"counterpart"`
}

// Judgment is the adjudicator's verdict on a candidate short-list. A nil
// MatchedReceiptID means the model declined to match.
type Judgment struct {
	MatchedReceiptID *uuid.UUID
	Confidence       float64
	Reasoning        string
	MatchType        string
}

// Adjudicator gives a secondary judgment over heuristic candidates.
type Adjudicator interface {
	Adjudicate(ctx context.Context, payment PaymentSummary, candidates []models.Receipt) (*Judgment, error)
}

// ChatCompleter is the slice of the LLM client the adjudicator needs.
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// AIAdjudicator asks the language model to pick the best receipt for a
// payment and validates the returned JSON at the boundary.
type AIAdjudicator struct {
	llm ChatCompleter
}

func NewAIAdjudicator(llm ChatCompleter) *AIAdjudicator {
	return &AIAdjudicator{llm: llm}
}

const adjudicatorSystemPrompt = "You are an expert accountant matching payments to receipts. " +
	"Respond with ONLY a valid JSON object, no surrounding text or markdown."

func (a *AIAdjudicator) Adjudicate(ctx context.Context, payment PaymentSummary, candidates []models.Receipt) (*Judgment, error) {
	type receiptSummary struct {
		ID            string  `json:"id"`
		Vendor        string  `json:"vendor"`
		Amount        string  `json:"amount"`
		Date          *string `json:"date"`
		InvoiceNumber string  `json:"invoice_number"`
	}

	summaries := make([]receiptSummary, 0, len(candidates))
	for _, r := range candidates {
		s := receiptSummary{
			ID:            r.ID.String(),
			Vendor:        r.VendorName,
			Amount:        r.TotalAmount.String(),
			InvoiceNumber: r.InvoiceNumber,
		}
		if r.InvoiceDate != nil {
			d := r.InvoiceDate.Format("2006-01-02")
			s.Date = &d
		}
		summaries = append(summaries, s)
	}

	summariesJSON, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal receipt summaries: %w", err)
	}

	prompt := fmt.Sprintf(`Match this payment to the most likely receipt:

Payment:
- Amount: %s %s
- Date: %s
- Reference: %s
- Payer: %s

Available Receipts:
%s

Return a JSON object:
{
  "matched_receipt_id": "ID of matched receipt or null",
  "confidence": 0.0,
  "reasoning": "Explanation of the match",
  "match_type": "exact|fuzzy|none"
}`,
		payment.Amount.String(), payment.Currency,
		payment.PaymentDate.Format("2006-01-02"),
		payment.Reference, payment.Counterpart,
		summariesJSON)

	raw, err := a.llm.Complete(ctx, adjudicatorSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("adjudication call failed: %w", err)
	}

	return parseJudgment(raw)
}

// parseJudgment validates the model's loosely-typed JSON into a Judgment.
// Malformed output is an error, never a panic.
func parseJudgment(raw string) (*Judgment, error) {
	var payload struct {
		MatchedReceiptID any    `json:"matched_receipt_id"`
		Confidence       any    `json:"confidence"`
		Reasoning        string `json:"reasoning"`
		MatchType        string `json:"match_type"`
	}

	cleaned := stripCodeFence(raw)
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("unparseable adjudicator output: %w", err)
	}

	judgment := &Judgment{
		Reasoning: payload.Reasoning,
		MatchType: payload.MatchType,
	}

	confidence, err := coerceFloat(payload.Confidence)
	if err != nil {
		return nil, fmt.Errorf("invalid confidence in adjudicator output: %w", err)
	}
	if confidence < 0 || confidence > 1 {
		return nil, fmt.Errorf("confidence %v out of range", confidence)
	}
	judgment.Confidence = confidence

	if id := coerceString(payload.MatchedReceiptID); id != "" && id != "null" && id != "none" {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid receipt id %q in adjudicator output: %w", id, err)
		}
		judgment.MatchedReceiptID = &parsed
	}

	if judgment.MatchType == "" || judgment.MatchType == "none" {
		judgment.MatchType = models.MatchTypeFuzzy
	}
	return judgment, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func coerceFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case string:
		return strconv.ParseFloat(n, 64)
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

func coerceString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
