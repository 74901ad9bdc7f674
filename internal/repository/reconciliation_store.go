package repository

import (
	"context"
	"time"

	"accountant-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReconciliationStore is the persistence surface the matching engine works
// against. Candidate listings are ordered by ascending id so candidate
// selection and tie-breaking are reproducible across runs.
type ReconciliationStore struct {
	db *gorm.DB
}

func NewReconciliationStore(db *gorm.DB) *ReconciliationStore {
	return &ReconciliationStore{db: db}
}

func (s *ReconciliationStore) UnmatchedPayments(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.db.WithContext(ctx).
		Where("status = ?", models.PaymentStatusUnmatched).
		Order("id ASC").
		Find(&payments).Error
	return payments, err
}

func (s *ReconciliationStore) ProcessedReceipts(ctx context.Context) ([]models.Receipt, error) {
	var receipts []models.Receipt
	err := s.db.WithContext(ctx).
		Where("status = ?", models.ReceiptStatusProcessed).
		Order("id ASC").
		Find(&receipts).Error
	return receipts, err
}

func (s *ReconciliationStore) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *ReconciliationStore) GetReceipt(ctx context.Context, id uuid.UUID) (*models.Receipt, error) {
	var receipt models.Receipt
	if err := s.db.WithContext(ctx).First(&receipt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &receipt, nil
}

// CommitMatch writes one accepted pairing: the match row plus the receipt and
// payment status flips, all inside a single transaction. A failure rolls the
// whole pair back so a match row can never exist without its status updates.
func (s *ReconciliationStore) CommitMatch(ctx context.Context, match *models.PaymentMatch) error {
	if match.ID == uuid.Nil {
		match.ID = uuid.New()
	}
	if match.CreatedAt.IsZero() {
		match.CreatedAt = time.Now().UTC()
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(match).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Receipt{}).
			Where("id = ?", match.ReceiptID).
			Update("status", models.ReceiptStatusMatched).Error; err != nil {
			return err
		}
		if match.PaymentID != nil {
			if err := tx.Model(&models.Payment{}).
				Where("id = ?", *match.PaymentID).
				Update("status", models.PaymentStatusMatched).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ListMatches returns match rows, newest first.
func (s *ReconciliationStore) ListMatches(ctx context.Context, limit int) ([]models.PaymentMatch, error) {
	var matches []models.PaymentMatch
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&matches).Error
	return matches, err
}
