// Package folio integrates with the Folio.no GraphQL API, a Norwegian
// business banking service. Booked activities carry their amount on either
// the paidTo side (money in) or the paidFrom side (money out); direction is
// resolved from whichever side is populated.
package folio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"accountant-backend/internal/models"

	"github.com/shopspring/decimal"
)

type Client struct {
	baseURL       string
	sessionCookie string
	orgNumber     string
	httpClient    *http.Client
	logger        *slog.Logger
}

func NewClient(baseURL, sessionCookie, orgNumber string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:       baseURL,
		sessionCookie: sessionCookie,
		orgNumber:     orgNumber,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

const bookedActivitiesQuery = `
query GetBookedActivities($startDate: Date!, $endDate: Date!) {
    bookedActivities(
        bookedBetween: {startDate: $startDate, endDate: $endDate}
    ) {
        items {
            id
            startedAt
            bookedAt
            accountingCategoryInfo {
                category { title }
            }
            merchant { name }
            strings { description }
            paidFrom {
                account { accountNumber }
                nokAmount { asNumericString }
            }
            paidTo {
                account { accountNumber }
                nokAmount { asNumericString }
            }
        }
    }
}`

type activity struct {
	ID                     string `json:"id"`
	StartedAt              string `json:"startedAt"`
	BookedAt               string `json:"bookedAt"`
	AccountingCategoryInfo *struct {
		Category *struct {
			Title string `json:"title"`
		} `json:"category"`
	} `json:"accountingCategoryInfo"`
	Merchant *struct {
		Name string `json:"name"`
	} `json:"merchant"`
	Strings *struct {
		Description string `json:"description"`
	} `json:"strings"`
	PaidFrom *activitySide `json:"paidFrom"`
	PaidTo   *activitySide `json:"paidTo"`
}

type activitySide struct {
	Account *struct {
		AccountNumber string `json:"accountNumber"`
	} `json:"account"`
	NokAmount *struct {
		AsNumericString string `json:"asNumericString"`
	} `json:"nokAmount"`
}

// Entries fetches booked activities in [start, end] and keeps only those in
// the requested direction. Implements the reconciliation engine's LedgerFeed.
func (c *Client) Entries(ctx context.Context, start, end time.Time, direction models.LedgerDirection) ([]models.LedgerEntry, error) {
	activities, err := c.bookedActivities(ctx, start, end)
	if err != nil {
		return nil, err
	}

	entries := make([]models.LedgerEntry, 0, len(activities))
	for _, act := range activities {
		side := act.PaidTo
		if direction == models.LedgerOutbound {
			side = act.PaidFrom
		}
		if side == nil || side.NokAmount == nil {
			continue
		}

		amount, err := decimal.NewFromString(side.NokAmount.AsNumericString)
		if err != nil {
			c.logger.Warn("skipping activity with unparseable amount",
				"activity_id", act.ID, "amount", side.NokAmount.AsNumericString)
			continue
		}

		entry := models.LedgerEntry{
			ID:       act.ID,
			Date:     c.parseDate(firstNonEmpty(act.BookedAt, act.StartedAt)),
			Amount:   amount,
			Merchant: "Unknown",
		}
		if act.Merchant != nil && act.Merchant.Name != "" {
			entry.Merchant = act.Merchant.Name
		}
		if act.Strings != nil {
			entry.Description = act.Strings.Description
		}
		if side.Account != nil {
			entry.Account = side.Account.AccountNumber
		}
		if info := act.AccountingCategoryInfo; info != nil && info.Category != nil {
			entry.Category = info.Category.Title
		}
		entries = append(entries, entry)
	}

	c.logger.Info("retrieved ledger entries from folio",
		"count", len(entries), "direction", string(direction))
	return entries, nil
}

func (c *Client) bookedActivities(ctx context.Context, start, end time.Time) ([]activity, error) {
	payload := map[string]any{
		"query": bookedActivitiesQuery,
		"variables": map[string]string{
			"startDate": start.Format("2006-01-02"),
			"endDate":   end.Format("2006-01-02"),
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cookie", "folioSession="+c.sessionCookie)
	req.Header.Set("folio-org-number", c.orgNumber)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("folio request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read folio response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("folio API returned status %d", resp.StatusCode)
	}

	var result struct {
		Data *struct {
			BookedActivities struct {
				Items []activity `json:"items"`
			} `json:"bookedActivities"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse folio response: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("folio GraphQL error: %s", result.Errors[0].Message)
	}
	if result.Data == nil {
		return nil, fmt.Errorf("folio response missing data")
	}
	return result.Data.BookedActivities.Items, nil
}

// TestConnection runs a one-day query to verify credentials.
func (c *Client) TestConnection(ctx context.Context) bool {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := c.bookedActivities(ctx, day, day)
	if err != nil {
		c.logger.Error("folio connection test failed", "error", err)
		return false
	}
	return true
}

var dateFormats = []string{
	"2006-01-02T15:04:05.000Z",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (c *Client) parseDate(s string) time.Time {
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	c.logger.Warn("could not parse folio date", "value", s)
	return time.Now().UTC()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
