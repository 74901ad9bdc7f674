package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerDirection selects which side of a booked activity carries the amount.
type LedgerDirection string

const (
	LedgerInbound  LedgerDirection = "inbound"
	LedgerOutbound LedgerDirection = "outbound"
)

// LedgerEntry is one booked activity from the external bank feed after
// direction resolution. It is not persisted; expense matching consumes it
// directly and payment sync converts inbound entries into Payment rows.
type LedgerEntry struct {
	ID          string
	Date        time.Time
	Amount      decimal.Decimal
	Merchant    string
	Description string
	Account     string
	Category    string
}
