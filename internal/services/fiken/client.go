// Package fiken posts matched receipts to the Fiken accounting ledger and
// tracks the resulting accounting entries. Only the entry lifecycle lives
// here; the posting payload is kept to the minimum Fiken accepts.
package fiken

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

type Client struct {
	apiURL     string
	token      string
	companyID  string
	httpClient *http.Client
}

func NewClient(apiURL, token, companyID string) *Client {
	return &Client{
		apiURL:    apiURL,
		token:     token,
		companyID: companyID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// JournalLine is one debit/credit pair in a journal entry.
type JournalLine struct {
	Amount        decimal.Decimal `json:"amount"`
	DebitAccount  string          `json:"debitAccount"`
	CreditAccount string          `json:"creditAccount"`
	VatCode       string          `json:"debitVatCode,omitempty"`
}

// CreateJournalEntry posts one entry and returns the ledger's id for it.
func (c *Client) CreateJournalEntry(ctx context.Context, date time.Time, description string, lines []JournalLine) (string, error) {
	payload := map[string]any{
		"description": description,
		"journalEntries": []map[string]any{
			{
				"description": description,
				"date":        date.Format("2006-01-02"),
				"lines":       lines,
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal journal entry: %w", err)
	}

	url := fmt.Sprintf("%s/companies/%s/generalJournalEntries", c.apiURL, c.companyID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fiken request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read fiken response: %w", err)
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fiken API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	// Fiken returns the created entry's location; fall back to the body id.
	if location := resp.Header.Get("Location"); location != "" {
		return location, nil
	}
	var created struct {
		GeneralJournalEntryID int64 `json:"generalJournalEntryId"`
	}
	if err := json.Unmarshal(respBody, &created); err == nil && created.GeneralJournalEntryID != 0 {
		return fmt.Sprintf("%d", created.GeneralJournalEntryID), nil
	}
	return "", nil
}

// TestConnection verifies the token by fetching the company resource.
func (c *Client) TestConnection(ctx context.Context) bool {
	url := fmt.Sprintf("%s/companies/%s", c.apiURL, c.companyID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}
