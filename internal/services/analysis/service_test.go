package analysis

import (
	"testing"
	"time"

	"accountant-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(txType, amount, merchant, category string) models.Transaction {
	return models.Transaction{
		ID:       uuid.New(),
		Date:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:   decimal.RequireFromString(amount),
		Type:     txType,
		Merchant: merchant,
		Category: category,
	}
}

func TestSummarizeTotals(t *testing.T) {
	transactions := []models.Transaction{
		tx(models.TransactionTypeIncome, "10000.00", "Client AS", ""),
		tx(models.TransactionTypeExpense, "-3000.00", "Landlord", "Rent"),
		tx(models.TransactionTypeExpense, "-1000.00", "Office Depot", "Office Supplies"),
		tx(models.TransactionTypeTransfer, "-500.00", "", ""),
	}

	summary := Summarize(transactions)

	assert.Equal(t, "10000", summary.TotalIncome.String())
	assert.Equal(t, "4000", summary.TotalExpenses.String())
	assert.Equal(t, "6000", summary.NetCashflow.String())
}

func TestSummarizeCategoryBreakdown(t *testing.T) {
	transactions := []models.Transaction{
		tx(models.TransactionTypeExpense, "-3000.00", "Landlord", "Rent"),
		tx(models.TransactionTypeExpense, "-500.00", "Office Depot", "Office Supplies"),
		tx(models.TransactionTypeExpense, "-500.00", "Clas Ohlson", "Office Supplies"),
		tx(models.TransactionTypeExpense, "-1000.00", "Esso", ""),
	}

	summary := Summarize(transactions)

	require.Len(t, summary.Categories, 3)
	// Sorted by amount descending.
	assert.Equal(t, "Rent", summary.Categories[0].Category)
	assert.Equal(t, 60.0, summary.Categories[0].Percentage)
	assert.Equal(t, "Office Supplies", summary.Categories[1].Category)
	assert.Equal(t, "1000", summary.Categories[1].Amount.String())
	assert.Equal(t, 20.0, summary.Categories[1].Percentage)
	assert.Equal(t, "Uncategorized", summary.Categories[2].Category)
}

func TestSummarizeTopMerchants(t *testing.T) {
	transactions := make([]models.Transaction, 0, 14)
	for i := 0; i < 12; i++ {
		amount := decimal.NewFromInt(int64(100 + i)).Neg()
		transactions = append(transactions, models.Transaction{
			ID:       uuid.New(),
			Amount:   amount,
			Type:     models.TransactionTypeExpense,
			Merchant: string(rune('A' + i)),
			Category: "Misc",
		})
	}

	summary := Summarize(transactions)

	require.Len(t, summary.TopMerchants, 10)
	// Highest spender first; the two smallest fall off the list.
	assert.Equal(t, "L", summary.TopMerchants[0].Merchant)
	assert.Equal(t, "111", summary.TopMerchants[0].Amount.String())
	assert.Equal(t, "C", summary.TopMerchants[9].Merchant)
}

func TestSummarizeTieBreaksAlphabetically(t *testing.T) {
	transactions := []models.Transaction{
		tx(models.TransactionTypeExpense, "-100.00", "Zeta", "Travel"),
		tx(models.TransactionTypeExpense, "-100.00", "Alpha", "Food"),
	}

	summary := Summarize(transactions)

	require.Len(t, summary.Categories, 2)
	assert.Equal(t, "Food", summary.Categories[0].Category)
	assert.Equal(t, "Travel", summary.Categories[1].Category)

	require.Len(t, summary.TopMerchants, 2)
	assert.Equal(t, "Alpha", summary.TopMerchants[0].Merchant)
	assert.Equal(t, "Zeta", summary.TopMerchants[1].Merchant)
}

func TestSummarizeEmptyInput(t *testing.T) {
	summary := Summarize(nil)

	assert.True(t, summary.TotalIncome.IsZero())
	assert.True(t, summary.TotalExpenses.IsZero())
	assert.True(t, summary.NetCashflow.IsZero())
	assert.Empty(t, summary.Categories)
	assert.Empty(t, summary.TopMerchants)
}
