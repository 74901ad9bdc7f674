package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EntryStatusPending = "pending"
	EntryStatusSynced  = "synced"
	EntryStatusError   = "error"
)

type AccountingEntry struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ReceiptID    uuid.UUID `gorm:"index"`
	FikenEntryID *string   `gorm:"uniqueIndex"`

	EntryDate     time.Time
	Description   string
	DebitAccount  string
	CreditAccount string
	Amount        decimal.Decimal `gorm:"type:numeric"`
	VatCode       string

	Status    string `gorm:"index"`
	SyncError string

	CreatedAt time.Time
	SyncedAt  *time.Time
}
