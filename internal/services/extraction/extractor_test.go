package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractionConfidence(t *testing.T) {
	tests := []struct {
		name   string
		fields extractedFields
		want   float64
	}{
		{
			name: "everything extracted",
			fields: extractedFields{
				VendorName:    "Acme AS",
				InvoiceNumber: "INV-42",
				InvoiceDate:   "2024-03-01",
				Currency:      "NOK",
				VatAmount:     250.0,
				TotalAmount:   1250.0,
				Items:         []any{map[string]any{"description": "widget"}},
			},
			want: 1.0,
		},
		{
			name: "required fields only",
			fields: extractedFields{
				VendorName:  "Acme AS",
				InvoiceDate: "2024-03-01",
				TotalAmount: "1250.00",
			},
			want: 0.6,
		},
		{
			name:   "nothing extracted",
			fields: extractedFields{},
			want:   0.0,
		},
		{
			name: "unparseable date does not count",
			fields: extractedFields{
				VendorName:  "Acme AS",
				InvoiceDate: "March 1st",
				TotalAmount: 100.0,
			},
			want: 0.4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, extractionConfidence(&tt.fields), 1e-9)
		})
	}
}

func TestParseISODate(t *testing.T) {
	parsed := parseISODate("2024-03-01")
	require.NotNil(t, parsed)
	assert.Equal(t, 2024, parsed.Year())

	assert.Nil(t, parseISODate(""))
	assert.Nil(t, parseISODate("null"))
	assert.Nil(t, parseISODate("01.03.2024"))
	assert.Nil(t, parseISODate("not a date"))
}

func TestCoerceDecimal(t *testing.T) {
	assert.Equal(t, "1250.5", coerceDecimal(1250.5).String())
	assert.Equal(t, "1250.5", coerceDecimal("1250.50").String())
	assert.Equal(t, "99", coerceDecimal(" 99 ").String())
	assert.True(t, coerceDecimal("kr 100").IsZero())
	assert.True(t, coerceDecimal(nil).IsZero())
	assert.True(t, coerceDecimal([]any{}).IsZero())
}
