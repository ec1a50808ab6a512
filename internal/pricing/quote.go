package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one priced row of a quote. Waived lines carry a zero Amount
// and keep the catalog price in ListPrice.
type LineItem struct {
	Code         string          `json:"code"`
	Label        string          `json:"label"`
	Category     FeeCategory     `json:"category"`
	Reference    string          `json:"reference,omitempty"`
	ListPrice    decimal.Decimal `json:"listPrice"`
	Amount       decimal.Decimal `json:"amount"`
	Waived       bool            `json:"waived,omitempty"`
	PromotionKey string          `json:"promotionKey,omitempty"`
}

// Quote is an itemized price for an application against one catalog version.
type Quote struct {
	ID             string          `json:"id"`
	ApplicationID  string          `json:"applicationId"`
	CatalogID      string          `json:"catalogId"`
	CatalogVersion int             `json:"catalogVersion"`
	Currency       string          `json:"currency"`
	LineItems      []LineItem      `json:"lineItems"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	VATRate        decimal.Decimal `json:"vatRate"`
	VATAmount      decimal.Decimal `json:"vatAmount"`
	Total          decimal.Decimal `json:"total"`
	Warnings       []string        `json:"warnings"`
	QuotedAt       time.Time       `json:"quotedAt"`
}

// LinesFor returns the line items carrying code.
func (q *Quote) LinesFor(code string) []LineItem {
	var out []LineItem
	for _, li := range q.LineItems {
		if li.Code == code {
			out = append(out, li)
		}
	}
	return out
}

// WaivedTotal sums the list price of waived lines.
func (q *Quote) WaivedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, li := range q.LineItems {
		if li.Waived {
			total = total.Add(li.ListPrice)
		}
	}
	return total
}
