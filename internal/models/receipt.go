package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	ReceiptStatusPending   = "pending"
	ReceiptStatusProcessed = "processed"
	ReceiptStatusMatched   = "matched"
	ReceiptStatusError     = "error"
)

type Receipt struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Source           string    // 'email', 'manual'
	EmailID          *string   `gorm:"uniqueIndex"`
	FilePath         string
	OriginalFilename string

	// Extracted data
	VendorName    string `gorm:"index"`
	InvoiceNumber string
	InvoiceDate   *time.Time
	DueDate       *time.Time
	TotalAmount   decimal.Decimal `gorm:"type:numeric"`
	VatAmount     decimal.Decimal `gorm:"type:numeric"`
	Currency      string          `gorm:"size:3;default:NOK"`

	// AI analysis
	AIExtractedData datatypes.JSON
	AIConfidence    float64
	Category        string

	Status       string `gorm:"index"`
	ErrorMessage string

	CreatedAt   time.Time
	ProcessedAt *time.Time
}
