// internal/workers/pricing/compute-quote/models.go
package computequote

import (
	"time"

	"formation-engine/internal/pricing"

	"github.com/shopspring/decimal"
)

type Input struct {
	ApplicationID string `json:"applicationId"`
	AsOf          string `json:"asOf,omitempty"` // RFC 3339 or YYYY-MM-DD; defaults to now
}

type Output struct {
	QuoteID        string             `json:"quoteId"`
	ApplicationID  string             `json:"applicationId"`
	FreezoneID     string             `json:"freezoneId"`
	CatalogID      string             `json:"catalogId"`
	CatalogVersion int                `json:"catalogVersion"`
	Currency       string             `json:"currency"`
	LineItems      []pricing.LineItem `json:"lineItems"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	VATRate        decimal.Decimal    `json:"vatRate"`
	VATAmount      decimal.Decimal    `json:"vatAmount"`
	Total          decimal.Decimal    `json:"total"`
	WaivedTotal    decimal.Decimal    `json:"waivedTotal"`
	Warnings       []string           `json:"warnings"`
	QuotedAt       time.Time          `json:"quotedAt"`
}

func newOutput(freezoneID string, q *pricing.Quote) *Output {
	return &Output{
		QuoteID:        q.ID,
		ApplicationID:  q.ApplicationID,
		FreezoneID:     freezoneID,
		CatalogID:      q.CatalogID,
		CatalogVersion: q.CatalogVersion,
		Currency:       q.Currency,
		LineItems:      q.LineItems,
		Subtotal:       q.Subtotal,
		VATRate:        q.VATRate,
		VATAmount:      q.VATAmount,
		Total:          q.Total,
		WaivedTotal:    q.WaivedTotal(),
		Warnings:       q.Warnings,
		QuotedAt:       q.QuotedAt,
	}
}
