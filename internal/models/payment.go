package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PaymentStatusUnmatched = "unmatched"
	PaymentStatusMatched   = "matched"
)

type Payment struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	FolioPaymentID  string    `gorm:"uniqueIndex"`
	CounterpartName string    `gorm:"index"`
	AccountNumber   string
	Amount          decimal.Decimal `gorm:"type:numeric"`
	PaymentDate     time.Time
	PaymentMethod   string
	Reference       string
	Status          string `gorm:"index"`
	CreatedAt       time.Time
	SyncedAt        time.Time
}
