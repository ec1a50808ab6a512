package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

type PersonType string

const (
	PersonTypeIndividual PersonType = "Individual"
	PersonTypeCorporate  PersonType = "Corporate"
)

// UBOThreshold is the share percentage at which a corporate shareholder
// must declare its ultimate beneficial owners.
var UBOThreshold = decimal.NewFromInt(25)

// Person is a shareholder, director or declared beneficial owner.
type Person struct {
	ID                 string          `json:"id,omitempty"`
	Type               PersonType      `json:"type"`
	Name               string          `json:"name,omitempty"`
	LegalName          string          `json:"legalName,omitempty"`
	Nationality        string          `json:"nationality"`
	PassportNumber     string          `json:"passportNumber,omitempty"`
	RegistrationNumber string          `json:"registrationNumber,omitempty"`
	SharePercentage    decimal.Decimal `json:"sharePercentage"`
	BeneficialOwners   []Person        `json:"beneficialOwners,omitempty"`
}

func (p Person) IsCorporate() bool {
	return p.Type == PersonTypeCorporate
}

// IsUBO is derived, never stored.
func (p Person) IsUBO() bool {
	return p.IsCorporate() && p.SharePercentage.GreaterThanOrEqual(UBOThreshold)
}

// DisplayName is the name used in user-facing messages.
func (p Person) DisplayName() string {
	name := strings.TrimSpace(p.Name)
	if p.IsCorporate() {
		name = strings.TrimSpace(p.LegalName)
	}
	if name == "" {
		return "(unnamed)"
	}
	return name
}

// IdentityNumber is the passport for individuals and the registration
// number for corporates.
func (p Person) IdentityNumber() string {
	if p.IsCorporate() {
		return p.RegistrationNumber
	}
	return p.PassportNumber
}
