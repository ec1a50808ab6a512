// internal/workers/pricing/compute-quote/handler_test.go
package computequote

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	apperrors "formation-engine/internal/common/errors"
	"formation-engine/internal/common/logger"
	"formation-engine/internal/common/observability"
	"formation-engine/internal/models"
	"formation-engine/internal/pricing"
	"formation-engine/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeApplications struct {
	app *models.Application
	err error
}

func (f *fakeApplications) GetApplication(_ context.Context, _ string) (*models.Application, error) {
	if f.err != nil {
		return nil, f.err
	}
	app := *f.app
	return &app, nil
}

type fakeUsage struct {
	cycles map[string]int
	err    error
}

func (f *fakeUsage) CyclesConsumed(_ context.Context, _ string) (map[string]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.cycles, nil
}

type fakeCatalogs struct {
	mu        sync.Mutex
	catalog   *pricing.FeeCatalog
	err       error
	freezone  string
	requested time.Time
}

func (f *fakeCatalogs) ActiveCatalogFor(_ context.Context, freezoneID string, asOf time.Time) (*pricing.FeeCatalog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.freezone = freezoneID
	f.requested = asOf
	return f.catalog, f.err
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func createTestConfig() *Config {
	return LoadConfig()
}

func createTestCatalog() *pricing.FeeCatalog {
	validFrom := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &pricing.FeeCatalog{
		ID:                "cat-ifza-3",
		FreezoneID:        "ifza",
		Version:           3,
		Currency:          "AED",
		EffectiveFrom:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Active:            true,
		FreeActivityCount: 1,
		LicensePackages: []pricing.LicensePackage{
			{PackageType: "Commercial", DurationYears: 2, VisasIncluded: 1, PriceVATInclusive: dec("25300"), VATRate: dec("0.05")},
		},
		Fees: []pricing.Fee{
			{Category: pricing.CategoryActivity, Code: pricing.FeeCodeActivityExtra, Label: "Additional activity", Price: dec("1000")},
			{Category: pricing.CategoryShareholding, Code: pricing.FeeCodeIndividualExtra, Label: "Additional individual shareholder", Price: dec("2000")},
			{Category: pricing.CategoryShareholding, Code: pricing.FeeCodeCorporate, Label: "Corporate shareholder", Price: dec("3000")},
		},
		Promotions: []pricing.PricingPromotion{
			{
				Key:           "extra-activity-2026",
				AppliesTo:     pricing.CategoryActivity,
				PromotionType: pricing.PromotionWaivedFee,
				ValidFrom:     &validFrom,
				Conditions: pricing.PromotionConditions{
					AppliesToCodes: []string{pricing.FeeCodeActivityExtra},
					RenewalCycles:  1,
				},
			},
		},
	}
}

func createTestApplication() *models.Application {
	return &models.Application{
		ID:            "app-1",
		FreezoneID:    "ifza",
		Status:        models.ApplicationStatusDraft,
		ActivityCodes: []string{"4690.01", "6201.00"},
		License: models.LicenseConfig{
			PackageType:          "commercial",
			TradeLicenseValidity: 2,
			VisaPackage:          1,
			InsideCountryVisas:   1,
		},
		ShareCapital: decimal.NewFromInt(50000),
		Shareholders: []models.Person{
			{Type: models.PersonTypeIndividual, Name: "Jane Doe", SharePercentage: decimal.NewFromInt(100)},
		},
	}
}

type testDeps struct {
	apps     *fakeApplications
	usage    *fakeUsage
	catalogs *fakeCatalogs
}

func createTestDeps() *testDeps {
	return &testDeps{
		apps:     &fakeApplications{app: createTestApplication()},
		usage:    &fakeUsage{cycles: map[string]int{}},
		catalogs: &fakeCatalogs{catalog: createTestCatalog()},
	}
}

func createTestHandler(t *testing.T, config *Config, deps *testDeps) *Handler {
	calc := pricing.NewCalculator(pricing.Config{PartnerVisaCapital: decimal.NewFromInt(48000)})
	h := NewHandler(config, deps.apps, deps.usage, deps.catalogs, calc, observability.NewNoop(), logger.NewTestLogger(t))
	h.now = func() time.Time { return fixedNow }
	return h
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_ComputesQuote(t *testing.T) {
	deps := createTestDeps()
	handler := createTestHandler(t, createTestConfig(), deps)

	output, err := handler.Execute(context.Background(), &Input{ApplicationID: "app-1"})
	require.NoError(t, err)

	assert.NotEmpty(t, output.QuoteID)
	assert.Equal(t, "app-1", output.ApplicationID)
	assert.Equal(t, "ifza", output.FreezoneID)
	assert.Equal(t, "cat-ifza-3", output.CatalogID)
	assert.Equal(t, 3, output.CatalogVersion)
	assert.Equal(t, "AED", output.Currency)

	// license plus one extra activity waived by the promotion
	require.Len(t, output.LineItems, 2)
	extra := output.LineItems[1]
	assert.Equal(t, pricing.FeeCodeActivityExtra, extra.Code)
	assert.True(t, extra.Waived)
	assert.Equal(t, "extra-activity-2026", extra.PromotionKey)

	assert.Equal(t, "25300", output.Subtotal.String())
	assert.Equal(t, "1265", output.VATAmount.String())
	assert.Equal(t, "26565", output.Total.String())
	assert.Equal(t, "1000", output.WaivedTotal.String())
	assert.Empty(t, output.Warnings)
	assert.Equal(t, fixedNow, output.QuotedAt)

	assert.Equal(t, "ifza", deps.catalogs.freezone)
	assert.Equal(t, fixedNow, deps.catalogs.requested)
}

func TestHandler_Execute_ConsumedRenewalCyclesEndWaiver(t *testing.T) {
	deps := createTestDeps()
	deps.usage.cycles = map[string]int{"extra-activity-2026": 1}
	handler := createTestHandler(t, createTestConfig(), deps)

	output, err := handler.Execute(context.Background(), &Input{ApplicationID: "app-1"})
	require.NoError(t, err)

	require.Len(t, output.LineItems, 2)
	assert.False(t, output.LineItems[1].Waived)
	assert.Equal(t, "26300", output.Subtotal.String())
	assert.True(t, output.WaivedTotal.IsZero())
}

func TestHandler_Execute_PartnerVisaWarning(t *testing.T) {
	deps := createTestDeps()
	deps.apps.app.License.PartnerVisaCount = 2
	handler := createTestHandler(t, createTestConfig(), deps)

	output, err := handler.Execute(context.Background(), &Input{ApplicationID: "app-1"})
	require.NoError(t, err)

	require.Len(t, output.Warnings, 1)
	assert.Equal(t, "26565", output.Total.String())
}

func TestHandler_Execute_AsOf(t *testing.T) {
	dubai, err := time.LoadLocation("Asia/Dubai")
	require.NoError(t, err)

	tests := []struct {
		name string
		asOf string
		want time.Time
	}{
		{
			name: "timestamp",
			asOf: "2026-02-10T08:30:00Z",
			want: time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC),
		},
		{
			name: "calendar date in configured location",
			asOf: "2026-02-10",
			want: time.Date(2026, 2, 10, 0, 0, 0, 0, dubai),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := createTestDeps()
			config := createTestConfig()
			config.Location = dubai
			handler := createTestHandler(t, config, deps)

			output, err := handler.Execute(context.Background(), &Input{ApplicationID: "app-1", AsOf: tt.asOf})
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(deps.catalogs.requested))
			assert.True(t, tt.want.Equal(output.QuotedAt))
		})
	}
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name      string
		input     *Input
		setup     func(d *testDeps)
		wantCode  apperrors.ErrorCode
		retryable bool
	}{
		{
			name:     "missing application id",
			input:    &Input{},
			wantCode: apperrors.ErrCodeInvalidInput,
		},
		{
			name:     "unparseable asOf",
			input:    &Input{ApplicationID: "app-1", AsOf: "next tuesday"},
			wantCode: apperrors.ErrCodeInvalidInput,
		},
		{
			name:  "application not found",
			input: &Input{ApplicationID: "app-1"},
			setup: func(d *testDeps) {
				d.apps.err = fmt.Errorf("%w: app-1", store.ErrApplicationNotFound)
			},
			wantCode: apperrors.ErrCodeApplicationNotFound,
		},
		{
			name:  "promotion usage query failure",
			input: &Input{ApplicationID: "app-1"},
			setup: func(d *testDeps) {
				d.usage.err = fmt.Errorf("%w: connection refused", store.ErrQueryFailed)
			},
			wantCode:  apperrors.ErrCodeQueryExecutionFailed,
			retryable: true,
		},
		{
			name:  "no active catalog",
			input: &Input{ApplicationID: "app-1"},
			setup: func(d *testDeps) {
				d.catalogs.catalog = nil
				d.catalogs.err = fmt.Errorf("%w: freezone ifza", pricing.ErrCatalogNotActive)
			},
			wantCode: apperrors.ErrCodeCatalogNotActive,
		},
		{
			name:  "ambiguous catalog",
			input: &Input{ApplicationID: "app-1"},
			setup: func(d *testDeps) {
				d.catalogs.catalog = nil
				d.catalogs.err = fmt.Errorf("%w: freezone ifza", pricing.ErrCatalogAmbiguous)
			},
			wantCode: apperrors.ErrCodeCatalogAmbiguous,
		},
		{
			name:     "catalog not yet in force",
			input:    &Input{ApplicationID: "app-1", AsOf: "2025-12-31T12:00:00Z"},
			wantCode: apperrors.ErrCodeCatalogNotActive,
		},
		{
			name:  "no matching license package",
			input: &Input{ApplicationID: "app-1"},
			setup: func(d *testDeps) {
				d.apps.app.License.TradeLicenseValidity = 3
			},
			wantCode: apperrors.ErrCodeLicensePackageNotFound,
		},
		{
			name:  "required fee missing",
			input: &Input{ApplicationID: "app-1"},
			setup: func(d *testDeps) {
				d.apps.app.Shareholders = append(d.apps.app.Shareholders, models.Person{
					Type:      models.PersonTypeCorporate,
					LegalName: "Acme Holdings",
				})
				d.catalogs.catalog.Fees = d.catalogs.catalog.Fees[:2]
			},
			wantCode: apperrors.ErrCodeFeeNotConfigured,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := createTestDeps()
			if tt.setup != nil {
				tt.setup(deps)
			}
			handler := createTestHandler(t, createTestConfig(), deps)

			output, err := handler.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.Nil(t, output)

			stdErr := classify(err)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Equal(t, tt.retryable, stdErr.Retryable)
		})
	}
}
