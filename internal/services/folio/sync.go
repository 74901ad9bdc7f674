package folio

import (
	"context"
	"time"

	"accountant-backend/internal/models"
	"accountant-backend/internal/repository"

	"github.com/google/uuid"
)

// Syncer imports booked activities from the bank feed: inbound activities
// become local Payment rows for reconciliation, and both directions are
// mirrored into the transaction history the analysis service reads. Dedupe is
// on the external activity id in both cases.
type Syncer struct {
	client       *Client
	payments     *repository.PaymentRepository
	transactions *repository.TransactionRepository
}

func NewSyncer(client *Client, payments *repository.PaymentRepository, transactions *repository.TransactionRepository) *Syncer {
	return &Syncer{client: client, payments: payments, transactions: transactions}
}

func (s *Syncer) SyncPayments(ctx context.Context, daysBack int) (int, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -daysBack)

	entries, err := s.client.Entries(ctx, start, end, models.LedgerInbound)
	if err != nil {
		return 0, err
	}

	synced := 0
	for _, entry := range entries {
		exists, err := s.payments.ExistsByFolioID(ctx, entry.ID)
		if err != nil {
			return synced, err
		}
		if exists {
			continue
		}

		payment := &models.Payment{
			ID:              uuid.New(),
			FolioPaymentID:  entry.ID,
			CounterpartName: entry.Merchant,
			AccountNumber:   entry.Account,
			Amount:          entry.Amount,
			PaymentDate:     entry.Date,
			PaymentMethod:   "bank_transfer",
			Reference:       entry.Description,
			Status:          models.PaymentStatusUnmatched,
			CreatedAt:       time.Now().UTC(),
			SyncedAt:        time.Now().UTC(),
		}
		if err := s.payments.Create(ctx, payment); err != nil {
			s.client.logger.Error("failed to store synced payment",
				"folio_payment_id", entry.ID, "error", err)
			continue
		}
		synced++
	}

	s.client.logger.Info("synced payments from folio", "count", synced)
	return synced, nil
}

// SyncTransactions mirrors booked activities of both directions into the
// transaction history used by spend analysis.
func (s *Syncer) SyncTransactions(ctx context.Context, daysBack int) (int, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -daysBack)

	imported := 0
	for _, pass := range []struct {
		direction models.LedgerDirection
		txType    string
	}{
		{models.LedgerInbound, models.TransactionTypeIncome},
		{models.LedgerOutbound, models.TransactionTypeExpense},
	} {
		entries, err := s.client.Entries(ctx, start, end, pass.direction)
		if err != nil {
			return imported, err
		}

		for _, entry := range entries {
			exists, err := s.transactions.ExistsBySourceID(ctx, entry.ID)
			if err != nil {
				return imported, err
			}
			if exists {
				continue
			}

			tx := &models.Transaction{
				ID:          uuid.New(),
				Date:        entry.Date,
				Amount:      entry.Amount,
				Currency:    "NOK",
				Type:        pass.txType,
				Description: entry.Description,
				Merchant:    entry.Merchant,
				Category:    entry.Category,
				Source:      "folio",
				SourceID:    entry.ID,
				CreatedAt:   time.Now().UTC(),
			}
			if err := s.transactions.Create(ctx, tx); err != nil {
				s.client.logger.Error("failed to store synced transaction",
					"activity_id", entry.ID, "error", err)
				continue
			}
			imported++
		}
	}

	s.client.logger.Info("synced transactions from folio", "count", imported)
	return imported, nil
}
