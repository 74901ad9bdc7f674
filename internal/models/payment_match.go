package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MatchTypeExact   = "exact"
	MatchTypeFuzzy   = "fuzzy"
	MatchTypeExpense = "expense_match"
	MatchTypeManual  = "manual"
)

type PaymentMatch struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ReceiptID uuid.UUID  `gorm:"index"`
	PaymentID *uuid.UUID `gorm:"index"` // nil for expense-only matches

	MatchConfidence float64
	MatchType       string
	MatchedAmount   decimal.Decimal `gorm:"type:numeric"`

	AIMatchReasoning string

	IsManual    bool
	ManualNotes string

	CreatedAt time.Time
}
