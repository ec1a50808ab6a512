// Package pricing computes formation quotes from a versioned fee catalog.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrCatalogNotActive       = errors.New("CATALOG_NOT_ACTIVE")
	ErrCatalogAmbiguous       = errors.New("CATALOG_AMBIGUOUS")
	ErrCatalogInvalid         = errors.New("CATALOG_INVALID")
	ErrLicensePackageNotFound = errors.New("LICENSE_PACKAGE_NOT_FOUND")
	ErrFeeNotConfigured       = errors.New("FEE_NOT_CONFIGURED")
)

type FeeCategory string

const (
	CategoryLicense      FeeCategory = "license"
	CategoryActivity     FeeCategory = "activity"
	CategoryShareholding FeeCategory = "shareholding"
	CategoryGovernment   FeeCategory = "government"
	CategoryService      FeeCategory = "service"
)

const (
	FeeCodeLicense            = "license.package"
	FeeCodeActivityExtra      = "activity.extra"
	FeeCodeIndividualExtra    = "shareholder.individual_extra"
	FeeCodeCorporate          = "shareholder.corporate"
	FeeCodeEstablishmentCard  = "government.establishment_card"
	FeeCodeNameReservation    = "service.name_reservation"
	FeeCodeLicenseDownPayment = "service.license_down_payment"
)

// FeeType distinguishes government fees by application stage.
type FeeType string

const (
	FeeTypeInitial   FeeType = "initial"
	FeeTypeRenewal   FeeType = "renewal"
	FeeTypeAmendment FeeType = "amendment"
)

// LicensePackage is keyed by (PackageType, DurationYears, VisasIncluded).
type LicensePackage struct {
	PackageType       string          `json:"packageType"`
	DurationYears     int             `json:"durationYears"`
	VisasIncluded     int             `json:"visasIncluded"`
	PriceVATInclusive decimal.Decimal `json:"priceVatInclusive"`
	VATRate           decimal.Decimal `json:"vatRate"`
}

// Fee is a single priced catalog entry.
type Fee struct {
	Category FeeCategory     `json:"category"`
	Code     string          `json:"code"`
	Label    string          `json:"label"`
	Price    decimal.Decimal `json:"price"`
	FeeType  FeeType         `json:"feeType,omitempty"`
}

// FeeCatalog is an immutable snapshot of one catalog version.
type FeeCatalog struct {
	ID                string             `json:"id"`
	FreezoneID        string             `json:"freezoneId"`
	Version           int                `json:"version"`
	Currency          string             `json:"currency"`
	EffectiveFrom     time.Time          `json:"effectiveFrom"`
	Active            bool               `json:"active"`
	FreeActivityCount int                `json:"freeActivityCount"`
	LicensePackages   []LicensePackage   `json:"licensePackages"`
	Fees              []Fee              `json:"fees"`
	Promotions        []PricingPromotion `json:"promotions"`
}

// CatalogSource resolves the catalog in force for a freezone at a moment.
type CatalogSource interface {
	ActiveCatalogFor(ctx context.Context, freezoneID string, asOf time.Time) (*FeeCatalog, error)
}

// FindLicensePackage returns the exact package match. Package types compare
// case-insensitively.
func (c *FeeCatalog) FindLicensePackage(packageType string, years, visas int) (LicensePackage, bool) {
	for _, p := range c.LicensePackages {
		if strings.EqualFold(p.PackageType, packageType) && p.DurationYears == years && p.VisasIncluded == visas {
			return p, true
		}
	}
	return LicensePackage{}, false
}

// FindFee returns the fee for code. An empty feeType matches fees without a
// type; otherwise the type must match exactly.
func (c *FeeCatalog) FindFee(category FeeCategory, code string, feeType FeeType) (Fee, bool) {
	for _, f := range c.Fees {
		if f.Category == category && f.Code == code && f.FeeType == feeType {
			return f, true
		}
	}
	return Fee{}, false
}

// InForceAt reports whether the catalog may price a quote dated asOf.
func (c *FeeCatalog) InForceAt(asOf time.Time) bool {
	return c.Active && !c.EffectiveFrom.After(asOf)
}

// Validate checks the snapshot for duplicate keys and negative amounts.
func (c *FeeCatalog) Validate() error {
	if c.Currency == "" {
		return fmt.Errorf("%w: catalog %s has no currency", ErrCatalogInvalid, c.ID)
	}
	if c.FreeActivityCount < 0 {
		return fmt.Errorf("%w: catalog %s has negative free activity count", ErrCatalogInvalid, c.ID)
	}

	type pkgKey struct {
		packageType string
		years       int
		visas       int
	}
	pkgs := make(map[pkgKey]bool, len(c.LicensePackages))
	for _, p := range c.LicensePackages {
		k := pkgKey{strings.ToLower(p.PackageType), p.DurationYears, p.VisasIncluded}
		if pkgs[k] {
			return fmt.Errorf("%w: duplicate license package %s/%dy/%d visas", ErrCatalogInvalid, p.PackageType, p.DurationYears, p.VisasIncluded)
		}
		pkgs[k] = true
		if p.PriceVATInclusive.IsNegative() || p.VATRate.IsNegative() {
			return fmt.Errorf("%w: negative amount on license package %s", ErrCatalogInvalid, p.PackageType)
		}
	}

	type feeKey struct {
		cat  FeeCategory
		code string
		ft   FeeType
	}
	fees := make(map[feeKey]bool, len(c.Fees))
	for _, f := range c.Fees {
		k := feeKey{f.Category, f.Code, f.FeeType}
		if fees[k] {
			return fmt.Errorf("%w: duplicate fee %s (%s)", ErrCatalogInvalid, f.Code, f.FeeType)
		}
		fees[k] = true
		if f.Price.IsNegative() {
			return fmt.Errorf("%w: negative price on fee %s", ErrCatalogInvalid, f.Code)
		}
	}

	keys := make(map[string]bool, len(c.Promotions))
	for _, p := range c.Promotions {
		if keys[p.Key] {
			return fmt.Errorf("%w: duplicate promotion %s", ErrCatalogInvalid, p.Key)
		}
		keys[p.Key] = true
	}
	return nil
}
