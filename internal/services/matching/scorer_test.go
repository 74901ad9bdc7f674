package matching

import (
	"testing"
	"time"

	"accountant-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func receipt(amount string, invoiceDate *time.Time, vendor string) *models.Receipt {
	return &models.Receipt{
		ID:          uuid.New(),
		VendorName:  vendor,
		TotalAmount: decimal.RequireFromString(amount),
		InvoiceDate: invoiceDate,
		Status:      models.ReceiptStatusProcessed,
	}
}

func TestScorePerfectMatch(t *testing.T) {
	p := Candidate{
		Amount:   decimal.RequireFromString("1000.00"),
		Date:     date(2024, 3, 1),
		Merchant: "ACME AS",
	}
	r := receipt("1000.00", datePtr(2024, 3, 1), "Acme AS")

	assert.Equal(t, 1.0, Score(p, r))
}

func TestScoreNoOverlap(t *testing.T) {
	p := Candidate{
		Amount:   decimal.RequireFromString("1000.00"),
		Date:     date(2024, 3, 1),
		Merchant: "Acme AS",
	}
	r := receipt("1200.00", datePtr(2024, 4, 1), "Globex Industries")

	assert.Equal(t, 0.0, Score(p, r))
}

func TestScoreOneDayOff(t *testing.T) {
	p := Candidate{
		Amount:   decimal.RequireFromString("1000.00"),
		Date:     date(2024, 3, 1),
		Merchant: "Acme AS",
	}
	r := receipt("1000.00", datePtr(2024, 3, 2), "Acme AS")

	// amount 0.40 + date 0.25 (1 day) + vendor 0.30
	assert.Equal(t, 0.95, Score(p, r))
}

func TestScoreAmountFivePercentOff(t *testing.T) {
	p := Candidate{
		Amount:   decimal.RequireFromString("1000.00"),
		Date:     date(2024, 3, 1),
		Merchant: "Acme AS",
	}
	r := receipt("1050.00", datePtr(2024, 3, 2), "Acme AS")

	// amount fails both tolerances; date 0.25 + vendor 0.30
	assert.Equal(t, 0.55, Score(p, r))
}

func TestScoreAmountTolerances(t *testing.T) {
	tests := []struct {
		name          string
		payment       string
		receiptAmount string
		want          float64
	}{
		{"exact", "500.00", "500.00", 0.40},
		{"within one unit", "500.00", "500.50", 0.35},
		{"negative payment equals receipt", "-500.00", "500.00", 0.40},
		{"within two percent", "985.00", "1000.00", 0.30},
		{"outside both tolerances", "900.00", "1000.00", 0.0},
		{"zero receipt amount", "5.00", "0.00", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Candidate{Amount: decimal.RequireFromString(tt.payment)}
			r := receipt(tt.receiptAmount, nil, "")
			assert.Equal(t, tt.want, Score(p, r))
		})
	}
}

func TestScoreDateBuckets(t *testing.T) {
	tests := []struct {
		name string
		days int
		want float64
	}{
		{"same day", 0, 0.30},
		{"three days", 3, 0.25},
		{"seven days", 7, 0.20},
		{"fourteen days", 14, 0.10},
		{"fifteen days", 15, 0.0},
		{"three days earlier", -3, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Candidate{
				Amount: decimal.RequireFromString("1.00"),
				Date:   date(2024, 3, 15).AddDate(0, 0, tt.days),
			}
			r := receipt("999.00", datePtr(2024, 3, 15), "")
			assert.Equal(t, tt.want, Score(p, r))
		})
	}
}

func TestScoreMissingInvoiceDate(t *testing.T) {
	p := Candidate{
		Amount: decimal.RequireFromString("1.00"),
		Date:   date(2024, 3, 15),
	}
	r := receipt("999.00", nil, "")
	assert.Equal(t, 0.0, Score(p, r))
}

func TestScoreVendorSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		merchant string
		vendor   string
		want     float64
	}{
		{"case-insensitive equality", "acme as", "ACME AS", 0.30},
		{"merchant substring of vendor", "Acme", "Acme AS Oslo", 0.25},
		{"vendor substring of merchant", "Acme AS Oslo", "Acme", 0.25},
		{"shared token", "Acme Invoice 42", "Nordic Acme Group", 0.20},
		{"no overlap", "Acme", "Globex", 0.0},
		{"empty merchant", "", "Acme", 0.0},
		{"empty vendor", "Acme", "", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Candidate{
				Amount:   decimal.RequireFromString("1.00"),
				Merchant: tt.merchant,
			}
			r := receipt("999.00", nil, tt.vendor)
			assert.Equal(t, tt.want, Score(p, r))
		})
	}
}

func TestScoreIsDeterministicAndBounded(t *testing.T) {
	p := Candidate{
		Amount:   decimal.RequireFromString("1000.00"),
		Date:     date(2024, 3, 1),
		Merchant: "Acme AS",
	}
	r := receipt("1000.00", datePtr(2024, 3, 1), "Acme AS Oslo")

	first := Score(p, r)
	for i := 0; i < 10; i++ {
		score := Score(p, r)
		assert.Equal(t, first, score)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}

func TestSelectCandidateEnforcesFloor(t *testing.T) {
	p := Candidate{
		Amount:   decimal.RequireFromString("1000.00"),
		Date:     date(2024, 3, 1),
		Merchant: "Acme AS",
	}
	// Amount matches nothing; best possible is 0.30 + 0.30 = 0.60 without
	// amount, so make every factor weak instead.
	pool := []models.Receipt{
		*receipt("500.00", datePtr(2024, 2, 1), "Globex"),
		*receipt("700.00", datePtr(2024, 1, 10), "Initech"),
	}

	best, score := SelectCandidate(p, pool)
	assert.Nil(t, best)
	assert.Equal(t, 0.0, score)
}

func TestSelectCandidatePicksHighest(t *testing.T) {
	p := Candidate{
		Amount:   decimal.RequireFromString("1000.00"),
		Date:     date(2024, 3, 1),
		Merchant: "Acme AS",
	}
	weak := receipt("1000.00", datePtr(2024, 2, 1), "Globex")    // 0.40
	strong := receipt("1000.00", datePtr(2024, 3, 2), "Acme AS") // 0.95
	pool := []models.Receipt{*weak, *strong}

	best, score := SelectCandidate(p, pool)
	require.NotNil(t, best)
	assert.Equal(t, strong.ID, best.ID)
	assert.Equal(t, 0.95, score)
}

func TestSelectCandidateTieBreaksOnFirst(t *testing.T) {
	p := Candidate{
		Amount:   decimal.RequireFromString("1000.00"),
		Date:     date(2024, 3, 1),
		Merchant: "Acme AS",
	}
	first := receipt("1000.00", datePtr(2024, 3, 1), "Acme AS")
	second := receipt("1000.00", datePtr(2024, 3, 1), "Acme AS")
	pool := []models.Receipt{*first, *second}

	best, score := SelectCandidate(p, pool)
	require.NotNil(t, best)
	assert.Equal(t, first.ID, best.ID)
	assert.Equal(t, 1.0, score)
}
