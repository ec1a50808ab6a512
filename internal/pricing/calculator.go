package pricing

import (
	"fmt"
	"strings"
	"time"

	"formation-engine/internal/models"
	"formation-engine/internal/validators"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Config holds the calculator thresholds.
type Config struct {
	// Minimum share capital per partner visa. Zero disables the warning.
	PartnerVisaCapital decimal.Decimal
}

// QuoteContext is the per-invocation input that does not live on the
// application or catalog.
type QuoteContext struct {
	AsOf time.Time
	// RenewalCyclesConsumed maps promotion key to renewals already waived.
	RenewalCyclesConsumed map[string]int
}

// Calculator prices applications against a fee catalog. It is stateless and
// safe for concurrent use.
type Calculator struct {
	partnerVisaCapital decimal.Decimal
	newID              func() string
}

func NewCalculator(cfg Config) *Calculator {
	return &Calculator{
		partnerVisaCapital: cfg.PartnerVisaCapital,
		newID:              uuid.NewString,
	}
}

// Quote computes the itemized quote for app. Configuration problems in the
// catalog are returned as errors and never priced as zero.
func (c *Calculator) Quote(app *models.Application, catalog *FeeCatalog, qc QuoteContext) (*Quote, error) {
	if app == nil {
		panic("pricing: nil application")
	}
	if qc.AsOf.IsZero() {
		qc.AsOf = time.Now()
	}
	if catalog == nil {
		return nil, fmt.Errorf("%w: freezone %s", ErrCatalogNotActive, app.FreezoneID)
	}
	if !catalog.InForceAt(qc.AsOf) {
		return nil, fmt.Errorf("%w: catalog %s v%d for freezone %s at %s",
			ErrCatalogNotActive, catalog.ID, catalog.Version, catalog.FreezoneID, qc.AsOf.Format(time.RFC3339))
	}

	b := &quoteBuilder{catalog: catalog, qc: qc}

	pkg, err := b.license(app)
	if err != nil {
		return nil, err
	}
	for _, step := range []func(*models.Application) error{
		b.activities,
		b.shareholding,
		b.government,
		b.services,
	} {
		if err := step(app); err != nil {
			return nil, err
		}
	}

	subtotal := decimal.Zero
	for _, li := range b.lines {
		subtotal = subtotal.Add(li.Amount)
	}
	vat := subtotal.Mul(pkg.VATRate).Round(2)

	q := &Quote{
		ID:             c.newID(),
		ApplicationID:  app.ID,
		CatalogID:      catalog.ID,
		CatalogVersion: catalog.Version,
		Currency:       catalog.Currency,
		LineItems:      b.lines,
		Subtotal:       subtotal,
		VATRate:        pkg.VATRate,
		VATAmount:      vat,
		Total:          subtotal.Add(vat),
		Warnings:       c.warnings(app),
		QuotedAt:       qc.AsOf.UTC(),
	}
	return q, nil
}

func (c *Calculator) warnings(app *models.Application) []string {
	warnings := []string{}
	if msg, short := validators.PartnerVisaCapitalShortfall(app, c.partnerVisaCapital); short {
		warnings = append(warnings, msg)
	}
	return warnings
}

// GovernmentFeeType selects the establishment card fee for the
// application's stage.
func GovernmentFeeType(app *models.Application) FeeType {
	switch {
	case app.IsRenewal():
		return FeeTypeRenewal
	case app.AmendmentRequested:
		return FeeTypeAmendment
	default:
		return FeeTypeInitial
	}
}

type quoteBuilder struct {
	catalog *FeeCatalog
	qc      QuoteContext
	lines   []LineItem
}

// add appends a line for fee, zeroed when a waiver covers it.
func (b *quoteBuilder) add(fee Fee, reference string) {
	li := LineItem{
		Code:      fee.Code,
		Label:     fee.Label,
		Category:  fee.Category,
		Reference: reference,
		ListPrice: fee.Price,
		Amount:    fee.Price,
	}
	if promo, ok := findWaiver(b.catalog.Promotions, b.qc, fee.Category, fee.Code, reference); ok {
		li.Amount = decimal.Zero
		li.Waived = true
		li.PromotionKey = promo.Key
	}
	b.lines = append(b.lines, li)
}

func (b *quoteBuilder) requireFee(category FeeCategory, code string, feeType FeeType) (Fee, error) {
	fee, ok := b.catalog.FindFee(category, code, feeType)
	if !ok {
		if feeType != "" {
			return Fee{}, fmt.Errorf("%w: %s (%s) in catalog %s", ErrFeeNotConfigured, code, feeType, b.catalog.ID)
		}
		return Fee{}, fmt.Errorf("%w: %s in catalog %s", ErrFeeNotConfigured, code, b.catalog.ID)
	}
	return fee, nil
}

func (b *quoteBuilder) license(app *models.Application) (LicensePackage, error) {
	lc := app.License
	p, ok := b.catalog.FindLicensePackage(lc.PackageType, lc.TradeLicenseValidity, lc.VisaPackage)
	if ok {
		b.add(Fee{
			Category: CategoryLicense,
			Code:     FeeCodeLicense,
			Label:    fmt.Sprintf("%s license, %d year(s), %d visa(s)", p.PackageType, p.DurationYears, p.VisasIncluded),
			Price:    p.PriceVATInclusive,
		}, "")
		return p, nil
	}
	return LicensePackage{}, fmt.Errorf("%w: %q for %d year(s) with %d visa(s) in catalog %s",
		ErrLicensePackageNotFound, lc.PackageType, lc.TradeLicenseValidity, lc.VisaPackage, b.catalog.ID)
}

// activities charges each distinct activity beyond the free allowance.
func (b *quoteBuilder) activities(app *models.Application) error {
	seen := make(map[string]bool, len(app.ActivityCodes))
	var codes []string
	for _, code := range app.ActivityCodes {
		code = strings.TrimSpace(code)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}

	free := b.catalog.FreeActivityCount
	if free < 0 {
		free = 0
	}
	if len(codes) <= free {
		return nil
	}
	fee, err := b.requireFee(CategoryActivity, FeeCodeActivityExtra, "")
	if err != nil {
		return err
	}
	for _, code := range codes[free:] {
		b.add(fee, code)
	}
	return nil
}

func (b *quoteBuilder) shareholding(app *models.Application) error {
	individuals := 0
	for _, sh := range app.Shareholders {
		code := FeeCodeIndividualExtra
		if sh.IsCorporate() {
			code = FeeCodeCorporate
		} else {
			individuals++
			if individuals == 1 {
				continue
			}
		}
		fee, err := b.requireFee(CategoryShareholding, code, "")
		if err != nil {
			return err
		}
		b.add(fee, sh.DisplayName())
	}
	return nil
}

func (b *quoteBuilder) government(app *models.Application) error {
	if !app.License.EstablishmentCard {
		return nil
	}
	fee, err := b.requireFee(CategoryGovernment, FeeCodeEstablishmentCard, GovernmentFeeType(app))
	if err != nil {
		return err
	}
	b.add(fee, "")
	return nil
}

// services adds the formation service fees the catalog defines. A freezone
// that does not charge a service fee omits the row.
func (b *quoteBuilder) services(app *models.Application) error {
	if app.IsRenewal() {
		return nil
	}
	for _, code := range []string{FeeCodeNameReservation, FeeCodeLicenseDownPayment} {
		if fee, ok := b.catalog.FindFee(CategoryService, code, ""); ok {
			b.add(fee, "")
		}
	}
	return nil
}
