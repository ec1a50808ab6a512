package pricing

import (
	"time"
)

type PromotionType string

const (
	PromotionWaivedFee PromotionType = "waived_fee"
)

// PromotionConditions narrows which lines a promotion covers.
type PromotionConditions struct {
	AppliesToCodes []string `json:"applies_to_codes,omitempty"`
	// RenewalCycles caps how many renewals the waiver survives. Zero means
	// no cap.
	RenewalCycles int `json:"renewal_cycles,omitempty"`
}

// PricingPromotion is a time-scoped rule evaluated at quote time.
type PricingPromotion struct {
	Key             string              `json:"key"`
	AppliesTo       FeeCategory         `json:"appliesTo,omitempty"`
	PromotionType   PromotionType       `json:"promotionType"`
	ValidFrom       *time.Time          `json:"validFrom,omitempty"`
	ValidUntil      *time.Time          `json:"validUntil,omitempty"`
	LifetimeBenefit bool                `json:"lifetimeBenefit"`
	Conditions      PromotionConditions `json:"conditions"`
}

// ActiveAt reports whether asOf falls inside the validity window. Both
// bounds are inclusive and ValidUntil covers its whole calendar day. A
// missing ValidUntil leaves the window open-ended; a promotion without
// ValidFrom is active only as a lifetime benefit.
func (p PricingPromotion) ActiveAt(asOf time.Time) bool {
	if p.LifetimeBenefit {
		return true
	}
	if p.ValidFrom == nil || asOf.Before(*p.ValidFrom) {
		return false
	}
	if p.ValidUntil != nil && asOf.After(endOfDay(*p.ValidUntil)) {
		return false
	}
	return true
}

// Covers reports whether the promotion scope matches a line. A line is
// covered only when one of refs is listed in AppliesToCodes, so a promotion
// without codes covers nothing. A set AppliesTo also restricts the category.
// License lines are never covered.
func (p PricingPromotion) Covers(category FeeCategory, refs ...string) bool {
	if category == CategoryLicense {
		return false
	}
	if p.AppliesTo != "" && p.AppliesTo != category {
		return false
	}
	for _, code := range p.Conditions.AppliesToCodes {
		for _, ref := range refs {
			if ref != "" && code == ref {
				return true
			}
		}
	}
	return false
}

// withinRenewalCycles checks the caller-tracked renewal count.
func (p PricingPromotion) withinRenewalCycles(consumed int) bool {
	return p.Conditions.RenewalCycles <= 0 || consumed < p.Conditions.RenewalCycles
}

// findWaiver returns the first waiver promotion covering a line, in catalog
// order. No match is not an error.
func findWaiver(promos []PricingPromotion, qc QuoteContext, category FeeCategory, refs ...string) (PricingPromotion, bool) {
	for _, p := range promos {
		if p.PromotionType != PromotionWaivedFee {
			continue
		}
		if !p.ActiveAt(qc.AsOf) || !p.Covers(category, refs...) {
			continue
		}
		if !p.withinRenewalCycles(qc.RenewalCyclesConsumed[p.Key]) {
			continue
		}
		return p, true
	}
	return PricingPromotion{}, false
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location()).Add(-time.Nanosecond)
}
