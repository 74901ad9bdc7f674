package repository

import (
	"context"
	"time"

	"accountant-backend/internal/models"

	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// ExistsBySourceID reports whether a transaction with the given external id
// has already been imported.
func (r *TransactionRepository) ExistsBySourceID(ctx context.Context, sourceID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("source_id = ?", sourceID).
		Count(&count).Error
	return count > 0, err
}

// Between returns transactions whose date falls in [start, end], oldest first.
func (r *TransactionRepository) Between(ctx context.Context, start, end time.Time) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", start, end).
		Order("date ASC").
		Find(&txs).Error
	return txs, err
}

func (r *TransactionRepository) CreateReport(ctx context.Context, report *models.AnalysisReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *TransactionRepository) ListReports(ctx context.Context, limit int) ([]models.AnalysisReport, error) {
	var reports []models.AnalysisReport
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&reports).Error
	return reports, err
}
