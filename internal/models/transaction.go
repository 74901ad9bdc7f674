package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	TransactionTypeIncome   = "income"
	TransactionTypeExpense  = "expense"
	TransactionTypeTransfer = "transfer"
)

// Transaction is one imported row of account history, used by the
// spend-analysis service.
type Transaction struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Date     time.Time `gorm:"index"`
	Amount   decimal.Decimal `gorm:"type:numeric"`
	Currency string          `gorm:"size:3;default:NOK"`
	Type     string

	Description string
	Merchant    string `gorm:"index"`
	Category    string `gorm:"index"`

	Source   string
	SourceID string `gorm:"index"`

	RawData   datatypes.JSON
	CreatedAt time.Time
}
