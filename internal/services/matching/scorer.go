package matching

import (
	"strings"
	"time"

	"accountant-backend/internal/models"

	"github.com/shopspring/decimal"
)

// Candidate is the payment-side input to the scorer: one bank payment or one
// outbound ledger expense reduced to the three factors the heuristic uses.
type Candidate struct {
	Amount   decimal.Decimal
	Date     time.Time
	Merchant string
}

// minimumFloor is the lowest heuristic score a receipt may have and still be
// selected as a candidate.
const minimumFloor = 0.5

// Sub-scores in hundredths. Amount carries weight 0.40, date proximity 0.30
// and vendor similarity 0.30; summing in hundredths keeps totals exact.
const (
	amountExact    = 40
	amountNear     = 35 // within one currency unit
	amountRelative = 30 // within 2%

	dateSame     = 30
	dateWithin3  = 25
	dateWithin7  = 20
	dateWithin14 = 10

	vendorExact     = 30
	vendorSubstring = 25
	vendorToken     = 20
)

var (
	oneUnit     = decimal.NewFromInt(1)
	relativeTol = decimal.NewFromFloat(0.02)
)

// Score computes the heuristic match confidence in [0, 1] between a
// payment-like candidate and a receipt.
func Score(p Candidate, r *models.Receipt) float64 {
	total := amountScore(p.Amount, r.TotalAmount) +
		dateScore(p.Date, r.InvoiceDate) +
		vendorScore(p.Merchant, r.VendorName)

	if total > 100 {
		total = 100
	}
	return float64(total) / 100
}

func amountScore(paymentAmount, receiptAmount decimal.Decimal) int {
	a := paymentAmount.Abs()
	b := receiptAmount.Abs()
	diff := a.Sub(b).Abs()

	switch {
	case a.Equal(b):
		return amountExact
	case diff.LessThan(oneUnit):
		return amountNear
	case !b.IsZero() && diff.Div(b).LessThan(relativeTol):
		return amountRelative
	default:
		return 0
	}
}

func dateScore(paymentDate time.Time, invoiceDate *time.Time) int {
	if invoiceDate == nil {
		return 0
	}

	diff := paymentDate.Sub(*invoiceDate)
	if diff < 0 {
		diff = -diff
	}
	days := int(diff.Hours() / 24)

	switch {
	case days == 0:
		return dateSame
	case days <= 3:
		return dateWithin3
	case days <= 7:
		return dateWithin7
	case days <= 14:
		return dateWithin14
	default:
		return 0
	}
}

func vendorScore(merchant, vendor string) int {
	m := strings.ToLower(strings.TrimSpace(merchant))
	v := strings.ToLower(strings.TrimSpace(vendor))

	if m == "" || v == "" {
		return 0
	}
	if m == v {
		return vendorExact
	}
	if strings.Contains(v, m) || strings.Contains(m, v) {
		return vendorSubstring
	}
	for _, token := range strings.Fields(m) {
		if strings.Contains(v, token) {
			return vendorToken
		}
	}
	return 0
}

// SelectCandidate picks the single best receipt for the candidate. Receipts
// are evaluated in the order given (the store lists them by ascending id) and
// only a strictly higher score replaces the current best, so the first
// receipt holding the top score wins. Returns nil unless the best score
// clears the 0.5 floor.
func SelectCandidate(p Candidate, receipts []models.Receipt) (*models.Receipt, float64) {
	var best *models.Receipt
	bestScore := 0.0

	for i := range receipts {
		score := Score(p, &receipts[i])
		if score > bestScore && score > minimumFloor {
			best = &receipts[i]
			bestScore = score
		}
	}
	return best, bestScore
}
