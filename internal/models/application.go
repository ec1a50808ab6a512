// internal/models/application.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ApplicationStatus string

const (
	ApplicationStatusDraft     ApplicationStatus = "draft"
	ApplicationStatusSubmitted ApplicationStatus = "submitted"
	ApplicationStatusReviewing ApplicationStatus = "reviewing"
	ApplicationStatusApproved  ApplicationStatus = "approved"
	ApplicationStatusIssued    ApplicationStatus = "issued"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
	ApplicationStatusCancelled ApplicationStatus = "cancelled"
)

// Application is the business-formation aggregate root.
type Application struct {
	ID                   string            `json:"id"`
	OwnerID              string            `json:"ownerId"`
	FreezoneID           string            `json:"freezoneId"`
	Status               ApplicationStatus `json:"status"`
	FormationStep        StepType          `json:"formationStep"`
	CompletionPercentage int               `json:"completionPercentage"`

	CompanyName     string   `json:"companyName"`
	NameOptions     []string `json:"nameOptions"`
	ActivityCodes   []string `json:"activityCodes"`
	GMSignatoryName string   `json:"gmSignatoryName"`

	License      LicenseConfig   `json:"license"`
	ShareCapital decimal.Decimal `json:"shareCapital"`
	ShareValue   decimal.Decimal `json:"shareValue"`

	Shareholders []Person `json:"shareholders"`
	Directors    []Person `json:"directors"`

	TermsAccepted       bool `json:"termsAccepted"`
	DeclarationAccepted bool `json:"declarationAccepted"`
	AmendmentRequested  bool `json:"amendmentRequested"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LicenseConfig is the license and visa selection of an application.
type LicenseConfig struct {
	PackageType          string `json:"packageType"`
	TradeLicenseValidity int    `json:"tradeLicenseValidity"` // years
	VisaPackage          int    `json:"visaPackage"`
	PartnerVisaCount     int    `json:"partnerVisaCount"`
	InsideCountryVisas   int    `json:"insideCountryVisas"`
	OutsideCountryVisas  int    `json:"outsideCountryVisas"`
	EstablishmentCard    bool   `json:"establishmentCard"`
}

type ShareholdingComposition string

const (
	ShareholdingNone       ShareholdingComposition = ""
	ShareholdingIndividual ShareholdingComposition = "individual"
	ShareholdingCorporate  ShareholdingComposition = "corporate"
	ShareholdingMixed      ShareholdingComposition = "mixed"
)

// Composition derives the shareholding type from the shareholders.
func (a *Application) Composition() ShareholdingComposition {
	var individuals, corporates int
	for _, sh := range a.Shareholders {
		if sh.IsCorporate() {
			corporates++
		} else {
			individuals++
		}
	}
	switch {
	case individuals > 0 && corporates > 0:
		return ShareholdingMixed
	case corporates > 0:
		return ShareholdingCorporate
	case individuals > 0:
		return ShareholdingIndividual
	}
	return ShareholdingNone
}

// TotalShares sums shareholder percentages.
func (a *Application) TotalShares() decimal.Decimal {
	total := decimal.Zero
	for _, sh := range a.Shareholders {
		total = total.Add(sh.SharePercentage)
	}
	return total
}

// UBOShareholders returns corporate shareholders holding at least the UBO threshold.
func (a *Application) UBOShareholders() []Person {
	var out []Person
	for _, sh := range a.Shareholders {
		if sh.IsUBO() {
			out = append(out, sh)
		}
	}
	return out
}

// IsRenewal reports whether pricing should treat the application as a renewal.
func (a *Application) IsRenewal() bool {
	return a.Status == ApplicationStatusIssued
}
