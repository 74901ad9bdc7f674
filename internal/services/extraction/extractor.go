// Package extraction turns uploaded receipt documents into structured
// Receipt fields using the vision model.
package extraction

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"accountant-backend/internal/models"
	"accountant-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// VisionCompleter is the slice of the LLM client the extractor needs.
type VisionCompleter interface {
	Complete(ctx context.Context, system, user string) (string, error)
	CompleteVision(ctx context.Context, system, prompt, imageB64 string) (string, error)
}

type Processor struct {
	llm      VisionCompleter
	receipts *repository.ReceiptRepository
	logger   *slog.Logger
}

func NewProcessor(llm VisionCompleter, receipts *repository.ReceiptRepository, logger *slog.Logger) *Processor {
	return &Processor{llm: llm, receipts: receipts, logger: logger}
}

const extractionSystemPrompt = "You are an expert accountant analyzing receipts and invoices. " +
	"Extract all relevant information and return it in the specified JSON format."

const extractionPrompt = `Analyze this receipt/invoice and extract the following information.
Return the data as a JSON object with these fields:

{
    "vendor_name": "Company/vendor name",
    "invoice_number": "Invoice/receipt number",
    "invoice_date": "Date in YYYY-MM-DD format",
    "due_date": "Due date in YYYY-MM-DD format (null if not present)",
    "currency": "Currency code (NOK, USD, EUR, etc.)",
    "vat_amount": "VAT/tax amount",
    "total_amount": "Total amount including tax",
    "items": [
        {
            "description": "Item description",
            "quantity": "Quantity",
            "unit_price": "Price per unit",
            "total": "Line total"
        }
    ],
    "category": "Suggested category (e.g., Office Supplies, Rent, Utilities, Travel, etc.)"
}

Important:
- Extract amounts as numbers only (no currency symbols)
- For Norwegian receipts, identify MVA (VAT) information
- If any field is not visible or unclear, use null
- Dates should be in YYYY-MM-DD format
- Be especially careful with Norwegian receipts (kvittering/faktura)`

// extractedFields mirrors the model's JSON output. Numeric fields arrive as
// numbers or strings depending on the model's mood, so they are coerced at
// the boundary.
type extractedFields struct {
	VendorName    string `json:"vendor_name"`
	InvoiceNumber string `json:"invoice_number"`
	InvoiceDate   string `json:"invoice_date"`
	DueDate       string `json:"due_date"`
	Currency      string `json:"currency"`
	VatAmount     any    `json:"vat_amount"`
	TotalAmount   any    `json:"total_amount"`
	Items         []any  `json:"items"`
	Category      string `json:"category"`
}

// ProcessReceipt analyzes one pending receipt and moves it to processed (or
// error) status with its extracted fields filled in.
func (p *Processor) ProcessReceipt(ctx context.Context, receiptID uuid.UUID) error {
	receipt, err := p.receipts.GetByID(ctx, receiptID)
	if err != nil {
		return fmt.Errorf("receipt %s not found: %w", receiptID, err)
	}

	fields, rawJSON, err := p.analyze(ctx, receipt.FilePath)
	if err != nil {
		receipt.Status = models.ReceiptStatusError
		receipt.ErrorMessage = err.Error()
		if saveErr := p.receipts.Save(ctx, receipt); saveErr != nil {
			return saveErr
		}
		p.logger.Error("receipt analysis failed", "receipt_id", receiptID, "error", err)
		return err
	}

	receipt.VendorName = fields.VendorName
	receipt.InvoiceNumber = fields.InvoiceNumber
	receipt.InvoiceDate = parseISODate(fields.InvoiceDate)
	receipt.DueDate = parseISODate(fields.DueDate)
	receipt.TotalAmount = coerceDecimal(fields.TotalAmount)
	receipt.VatAmount = coerceDecimal(fields.VatAmount)
	if fields.Currency != "" {
		receipt.Currency = fields.Currency
	}
	receipt.AIExtractedData = datatypes.JSON(rawJSON)
	receipt.AIConfidence = extractionConfidence(fields)
	receipt.Category = p.categorize(ctx, fields)
	receipt.Status = models.ReceiptStatusProcessed
	now := time.Now().UTC()
	receipt.ProcessedAt = &now
	receipt.ErrorMessage = ""

	if err := p.receipts.Save(ctx, receipt); err != nil {
		return fmt.Errorf("failed to save processed receipt: %w", err)
	}

	p.logger.Info("processed receipt",
		"receipt_id", receiptID, "vendor", receipt.VendorName,
		"amount", receipt.TotalAmount, "confidence", receipt.AIConfidence)
	return nil
}

func (p *Processor) analyze(ctx context.Context, filePath string) (*extractedFields, []byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read receipt file: %w", err)
	}
	imageB64 := base64.StdEncoding.EncodeToString(data)

	raw, err := p.llm.CompleteVision(ctx, extractionSystemPrompt, extractionPrompt, imageB64)
	if err != nil {
		return nil, nil, fmt.Errorf("vision analysis failed: %w", err)
	}

	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")

	var fields extractedFields
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return nil, nil, fmt.Errorf("unparseable extraction output: %w", err)
	}
	return &fields, []byte(cleaned), nil
}

func (p *Processor) categorize(ctx context.Context, fields *extractedFields) string {
	if fields.Category != "" {
		return fields.Category
	}

	prompt := fmt.Sprintf(`Based on this receipt data, suggest the most appropriate accounting category:

Vendor: %s
Amount: %s %s

Common categories: Office Supplies, Rent, Utilities, Travel & Transportation,
Meals & Entertainment, Professional Services, Software & Subscriptions,
Marketing & Advertising, Equipment, Other.

Return only the category name.`,
		fields.VendorName, coerceDecimal(fields.TotalAmount), fields.Currency)

	category, err := p.llm.Complete(ctx, "You are an accountant categorizing business expenses.", prompt)
	if err != nil {
		p.logger.Warn("categorization failed, using fallback", "error", err)
		return "Other"
	}
	return strings.TrimSpace(category)
}

// extractionConfidence scores how complete the extraction is: 0.2 per
// required field, 0.1 per important field, 0.1 for line items.
func extractionConfidence(fields *extractedFields) float64 {
	score := 0.0
	if fields.VendorName != "" {
		score += 0.2
	}
	if parseISODate(fields.InvoiceDate) != nil {
		score += 0.2
	}
	if !coerceDecimal(fields.TotalAmount).IsZero() {
		score += 0.2
	}
	if fields.InvoiceNumber != "" {
		score += 0.1
	}
	if !coerceDecimal(fields.VatAmount).IsZero() {
		score += 0.1
	}
	if fields.Currency != "" {
		score += 0.1
	}
	if len(fields.Items) > 0 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func parseISODate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

func coerceDecimal(v any) decimal.Decimal {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n)
	case string:
		if _, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err != nil {
			return decimal.Zero
		}
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}
