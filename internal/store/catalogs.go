package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"formation-engine/internal/common/database"
	"formation-engine/internal/pricing"
)

const (
	// Two rows are fetched so a tie on effective_from can be reported.
	selectActiveCatalogQuery = `SELECT id, freezone_id, version, currency, effective_from, free_activity_count
FROM fee_catalogs
WHERE freezone_id = $1 AND active AND effective_from <= $2
ORDER BY effective_from DESC, version DESC
LIMIT 2`

	selectLicensePackagesQuery = `SELECT package_type, duration_years, visas_included, price_vat_inclusive, vat_rate
FROM license_packages WHERE catalog_id = $1 ORDER BY package_type, duration_years, visas_included`

	selectFeesQuery = `SELECT category, code, label, price, fee_type
FROM catalog_fees WHERE catalog_id = $1 ORDER BY category, code, fee_type`

	selectPromotionsQuery = `SELECT key, applies_to, promotion_type, valid_from, valid_until, lifetime_benefit, conditions
FROM pricing_promotions WHERE catalog_id = $1 ORDER BY key`
)

// CatalogRepository resolves fee catalogs from Postgres.
type CatalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ActiveCatalogFor returns the active catalog with the latest effective_from
// not after asOf. The whole catalog is read in one snapshot transaction.
func (r *CatalogRepository) ActiveCatalogFor(ctx context.Context, freezoneID string, asOf time.Time) (*pricing.FeeCatalog, error) {
	var cat *pricing.FeeCatalog
	err := database.InTx(ctx, r.db, database.SnapshotTx, func(tx *sql.Tx) error {
		var err error
		cat, err = loadActiveCatalog(ctx, tx, freezoneID, asOf)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}

func loadActiveCatalog(ctx context.Context, q querier, freezoneID string, asOf time.Time) (*pricing.FeeCatalog, error) {
	rows, err := q.QueryContext(ctx, selectActiveCatalogQuery, freezoneID, asOf)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve catalog for %s: %v", ErrQueryFailed, freezoneID, err)
	}
	var candidates []pricing.FeeCatalog
	for rows.Next() {
		var c pricing.FeeCatalog
		if err := rows.Scan(&c.ID, &c.FreezoneID, &c.Version, &c.Currency, &c.EffectiveFrom, &c.FreeActivityCount); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%w: scan catalog: %v", ErrQueryFailed, err)
		}
		c.Active = true
		candidates = append(candidates, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: resolve catalog for %s: %v", ErrQueryFailed, freezoneID, err)
	}

	switch {
	case len(candidates) == 0:
		return nil, fmt.Errorf("%w: freezone %s at %s", pricing.ErrCatalogNotActive, freezoneID, asOf.Format(time.RFC3339))
	case len(candidates) > 1 && candidates[0].EffectiveFrom.Equal(candidates[1].EffectiveFrom):
		return nil, fmt.Errorf("%w: freezone %s has catalogs %s and %s effective from %s",
			pricing.ErrCatalogAmbiguous, freezoneID, candidates[0].ID, candidates[1].ID,
			candidates[0].EffectiveFrom.Format(time.RFC3339))
	}

	cat := candidates[0]
	if cat.LicensePackages, err = loadLicensePackages(ctx, q, cat.ID); err != nil {
		return nil, err
	}
	if cat.Fees, err = loadFees(ctx, q, cat.ID); err != nil {
		return nil, err
	}
	if cat.Promotions, err = loadPromotions(ctx, q, cat.ID); err != nil {
		return nil, err
	}
	return &cat, nil
}

func loadLicensePackages(ctx context.Context, q querier, catalogID string) ([]pricing.LicensePackage, error) {
	rows, err := q.QueryContext(ctx, selectLicensePackagesQuery, catalogID)
	if err != nil {
		return nil, fmt.Errorf("%w: load license packages: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	var out []pricing.LicensePackage
	for rows.Next() {
		var p pricing.LicensePackage
		if err := rows.Scan(&p.PackageType, &p.DurationYears, &p.VisasIncluded, &p.PriceVATInclusive, &p.VATRate); err != nil {
			return nil, fmt.Errorf("%w: scan license package: %v", ErrQueryFailed, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: load license packages: %v", ErrQueryFailed, err)
	}
	return out, nil
}

func loadFees(ctx context.Context, q querier, catalogID string) ([]pricing.Fee, error) {
	rows, err := q.QueryContext(ctx, selectFeesQuery, catalogID)
	if err != nil {
		return nil, fmt.Errorf("%w: load fees: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	var out []pricing.Fee
	for rows.Next() {
		var (
			f       pricing.Fee
			feeType sql.NullString
		)
		if err := rows.Scan(&f.Category, &f.Code, &f.Label, &f.Price, &feeType); err != nil {
			return nil, fmt.Errorf("%w: scan fee: %v", ErrQueryFailed, err)
		}
		f.FeeType = pricing.FeeType(feeType.String)
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: load fees: %v", ErrQueryFailed, err)
	}
	return out, nil
}

func loadPromotions(ctx context.Context, q querier, catalogID string) ([]pricing.PricingPromotion, error) {
	rows, err := q.QueryContext(ctx, selectPromotionsQuery, catalogID)
	if err != nil {
		return nil, fmt.Errorf("%w: load promotions: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	var out []pricing.PricingPromotion
	for rows.Next() {
		var (
			p          pricing.PricingPromotion
			appliesTo  sql.NullString
			validFrom  sql.NullTime
			validUntil sql.NullTime
			conditions []byte
		)
		if err := rows.Scan(&p.Key, &appliesTo, &p.PromotionType, &validFrom, &validUntil, &p.LifetimeBenefit, &conditions); err != nil {
			return nil, fmt.Errorf("%w: scan promotion: %v", ErrQueryFailed, err)
		}
		p.AppliesTo = pricing.FeeCategory(appliesTo.String)
		if validFrom.Valid {
			t := validFrom.Time
			p.ValidFrom = &t
		}
		if validUntil.Valid {
			t := validUntil.Time
			p.ValidUntil = &t
		}
		if len(conditions) > 0 {
			if err := json.Unmarshal(conditions, &p.Conditions); err != nil {
				return nil, fmt.Errorf("%w: promotion %s conditions: %v", pricing.ErrCatalogInvalid, p.Key, err)
			}
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: load promotions: %v", ErrQueryFailed, err)
	}
	return out, nil
}
