package repository

import (
	"context"

	"accountant-backend/internal/models"

	"gorm.io/gorm"
)

type AccountingEntryRepository struct {
	db *gorm.DB
}

func NewAccountingEntryRepository(db *gorm.DB) *AccountingEntryRepository {
	return &AccountingEntryRepository{db: db}
}

func (r *AccountingEntryRepository) Create(ctx context.Context, entry *models.AccountingEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *AccountingEntryRepository) Save(ctx context.Context, entry *models.AccountingEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *AccountingEntryRepository) List(ctx context.Context, status string, limit int) ([]models.AccountingEntry, error) {
	var entries []models.AccountingEntry
	query := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Find(&entries).Error
	return entries, err
}

func (r *AccountingEntryRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&models.AccountingEntry{}).
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
