package fiken

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"accountant-backend/internal/models"
	"accountant-backend/internal/repository"

	"github.com/google/uuid"
)

// Category to expense-account mapping for the standard Norwegian chart of
// accounts; unknown categories land on the misc cost account.
var categoryAccounts = map[string]string{
	"Office Supplies":          "6800",
	"Rent":                     "6300",
	"Utilities":                "6340",
	"Travel & Transportation":  "7140",
	"Meals & Entertainment":    "7350",
	"Professional Services":    "6700",
	"Software & Subscriptions": "6810",
	"Marketing & Advertising":  "7320",
	"Equipment":                "6540",
}

const (
	defaultExpenseAccount = "7790"
	bankAccount           = "1920"
)

// Service syncs matched receipts into the accounting ledger.
type Service struct {
	client   *Client
	receipts *repository.ReceiptRepository
	entries  *repository.AccountingEntryRepository
	logger   *slog.Logger
}

func NewService(client *Client, receipts *repository.ReceiptRepository, entries *repository.AccountingEntryRepository, logger *slog.Logger) *Service {
	return &Service{client: client, receipts: receipts, entries: entries, logger: logger}
}

// SyncReceipt posts one matched receipt as a journal entry and records the
// outcome as an AccountingEntry row.
func (s *Service) SyncReceipt(ctx context.Context, receiptID uuid.UUID) error {
	receipt, err := s.receipts.GetByID(ctx, receiptID)
	if err != nil {
		return fmt.Errorf("receipt %s not found: %w", receiptID, err)
	}

	entryDate := time.Now().UTC()
	if receipt.InvoiceDate != nil {
		entryDate = *receipt.InvoiceDate
	}
	debitAccount := categoryAccounts[receipt.Category]
	if debitAccount == "" {
		debitAccount = defaultExpenseAccount
	}
	description := fmt.Sprintf("%s %s", receipt.VendorName, receipt.InvoiceNumber)

	entry := &models.AccountingEntry{
		ID:            uuid.New(),
		ReceiptID:     receipt.ID,
		EntryDate:     entryDate,
		Description:   description,
		DebitAccount:  debitAccount,
		CreditAccount: bankAccount,
		Amount:        receipt.TotalAmount,
		Status:        models.EntryStatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to create accounting entry: %w", err)
	}

	fikenID, err := s.client.CreateJournalEntry(ctx, entryDate, description, []JournalLine{
		{
			Amount:        receipt.TotalAmount,
			DebitAccount:  debitAccount,
			CreditAccount: bankAccount,
		},
	})
	if err != nil {
		entry.Status = models.EntryStatusError
		entry.SyncError = err.Error()
		if saveErr := s.entries.Save(ctx, entry); saveErr != nil {
			return saveErr
		}
		s.logger.Error("fiken sync failed", "receipt_id", receiptID, "error", err)
		return err
	}

	now := time.Now().UTC()
	entry.Status = models.EntryStatusSynced
	entry.SyncedAt = &now
	if fikenID != "" {
		entry.FikenEntryID = &fikenID
	}
	if err := s.entries.Save(ctx, entry); err != nil {
		return err
	}

	s.logger.Info("synced receipt to fiken", "receipt_id", receiptID, "fiken_entry_id", fikenID)
	return nil
}

// SyncAllMatched posts every matched receipt that has no synced entry yet.
// Per-receipt failures are logged and do not stop the pass.
func (s *Service) SyncAllMatched(ctx context.Context) (int, error) {
	receipts, err := s.receipts.MatchedWithoutEntry(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list matched receipts: %w", err)
	}

	synced := 0
	for _, receipt := range receipts {
		if err := s.SyncReceipt(ctx, receipt.ID); err != nil {
			continue
		}
		synced++
	}
	return synced, nil
}
