package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type AnalysisReport struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ReportType string    // 'monthly', 'yearly', 'custom', 'deep_analysis'
	StartDate  time.Time
	EndDate    time.Time

	AIModel string

	TotalIncome   decimal.Decimal `gorm:"type:numeric"`
	TotalExpenses decimal.Decimal `gorm:"type:numeric"`
	NetCashflow   decimal.Decimal `gorm:"type:numeric"`

	CategoryBreakdown datatypes.JSON
	MerchantBreakdown datatypes.JSON
	AIInsights        datatypes.JSON

	CreatedAt      time.Time
	ProcessingTime float64 // seconds
}
