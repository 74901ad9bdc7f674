package repository

import (
	"context"

	"accountant-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReceiptRepository struct {
	db *gorm.DB
}

func NewReceiptRepository(db *gorm.DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

func (r *ReceiptRepository) Create(ctx context.Context, receipt *models.Receipt) error {
	return r.db.WithContext(ctx).Create(receipt).Error
}

func (r *ReceiptRepository) Save(ctx context.Context, receipt *models.Receipt) error {
	return r.db.WithContext(ctx).Save(receipt).Error
}

func (r *ReceiptRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Receipt, error) {
	var receipt models.Receipt
	if err := r.db.WithContext(ctx).First(&receipt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &receipt, nil
}

// List returns receipts, newest first, optionally filtered by status.
func (r *ReceiptRepository) List(ctx context.Context, status string, limit int) ([]models.Receipt, error) {
	var receipts []models.Receipt
	query := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Find(&receipts).Error
	return receipts, err
}

// MatchedWithoutEntry returns receipts in matched status that have no synced
// accounting entry yet, for the accounting sync-all pass.
func (r *ReceiptRepository) MatchedWithoutEntry(ctx context.Context) ([]models.Receipt, error) {
	var receipts []models.Receipt
	err := r.db.WithContext(ctx).
		Where("status = ?", models.ReceiptStatusMatched).
		Where("id NOT IN (?)", r.db.Model(&models.AccountingEntry{}).
			Select("receipt_id").
			Where("status = ?", models.EntryStatusSynced)).
		Order("id ASC").
		Find(&receipts).Error
	return receipts, err
}

func (r *ReceiptRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&models.Receipt{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Count
	}
	return counts, nil
}
