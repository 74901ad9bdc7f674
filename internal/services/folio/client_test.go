package folio

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"accountant-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const activitiesResponse = `{
  "data": {
    "bookedActivities": {
      "items": [
        {
          "id": "act-in-1",
          "bookedAt": "2024-03-01T10:30:00.000Z",
          "merchant": {"name": "Acme AS"},
          "strings": {"description": "Invoice payment"},
          "accountingCategoryInfo": {"category": {"title": "Sales"}},
          "paidTo": {
            "account": {"accountNumber": "1234.56.78901"},
            "nokAmount": {"asNumericString": "1000.00"}
          }
        },
        {
          "id": "act-out-1",
          "bookedAt": "2024-03-02",
          "merchant": {"name": "Globex"},
          "strings": {"description": "Card purchase"},
          "paidFrom": {
            "account": {"accountNumber": "1234.56.78901"},
            "nokAmount": {"asNumericString": "250.50"}
          }
        },
        {
          "id": "act-bad-amount",
          "bookedAt": "2024-03-03",
          "paidFrom": {
            "nokAmount": {"asNumericString": "not-a-number"}
          }
        }
      ]
    }
  }
}`

func TestEntriesInboundDirection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "folioSession=cookie-value", r.Header.Get("Cookie"))
		assert.Equal(t, "987654321", r.Header.Get("folio-org-number"))

		var payload struct {
			Variables map[string]string `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "2024-03-01", payload.Variables["startDate"])
		assert.Equal(t, "2024-03-31", payload.Variables["endDate"])

		_, _ = w.Write([]byte(activitiesResponse))
	}))
	defer server.Close()

	client := NewClient(server.URL, "cookie-value", "987654321", testLogger())
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	entries, err := client.Entries(context.Background(), start, end, models.LedgerInbound)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "act-in-1", entry.ID)
	assert.Equal(t, "Acme AS", entry.Merchant)
	assert.Equal(t, "Invoice payment", entry.Description)
	assert.Equal(t, "1234.56.78901", entry.Account)
	assert.Equal(t, "Sales", entry.Category)
	assert.Equal(t, "1000", entry.Amount.String())
	assert.Equal(t, time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), entry.Date)
}

func TestEntriesOutboundSkipsUnparseableAmount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(activitiesResponse))
	}))
	defer server.Close()

	client := NewClient(server.URL, "cookie", "org", testLogger())
	entries, err := client.Entries(context.Background(), time.Now().AddDate(0, -1, 0), time.Now(), models.LedgerOutbound)
	require.NoError(t, err)

	// act-bad-amount is dropped; act-in-1 has no paidFrom side.
	require.Len(t, entries, 1)
	assert.Equal(t, "act-out-1", entries[0].ID)
	assert.Equal(t, "250.5", entries[0].Amount.String())
	assert.Equal(t, "Globex", entries[0].Merchant)
}

func TestEntriesGraphQLError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"errors": [{"message": "not authenticated"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "expired", "org", testLogger())
	entries, err := client.Entries(context.Background(), time.Now(), time.Now(), models.LedgerInbound)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not authenticated")
	assert.Nil(t, entries)
}

func TestEntriesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "cookie", "org", testLogger())
	_, err := client.Entries(context.Background(), time.Now(), time.Now(), models.LedgerInbound)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestEntriesMissingMerchantDefaultsToUnknown(t *testing.T) {
	response := `{"data": {"bookedActivities": {"items": [
		{"id": "act-1", "bookedAt": "2024-03-01",
		 "paidTo": {"nokAmount": {"asNumericString": "10.00"}}}
	]}}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(response))
	}))
	defer server.Close()

	client := NewClient(server.URL, "cookie", "org", testLogger())
	entries, err := client.Entries(context.Background(), time.Now(), time.Now(), models.LedgerInbound)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Unknown", entries[0].Merchant)
}

func TestTestConnection(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data": {"bookedActivities": {"items": []}}}`))
	}))
	defer healthy.Close()
	assert.True(t, NewClient(healthy.URL, "cookie", "org", testLogger()).TestConnection(context.Background()))

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer broken.Close()
	assert.False(t, NewClient(broken.URL, "cookie", "org", testLogger()).TestConnection(context.Background()))
}
