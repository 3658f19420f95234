// Package config – product policy constants.
//
// This file is the single source of truth for the credit economy's fixed
// tables: per-operation credit costs, tier entitlements, and event awards.
// The values were previously duplicated across callers; keeping them here
// means services, handlers, and tests all read the same numbers.
package config

import "github.com/tbourn/go-forum-backend/internal/domain"

const (
	// DefaultOperationCost applies to any AI operation not listed in the
	// cost table.
	DefaultOperationCost = 1

	// FreeDocumentLimit caps stored documents for FREE-tier accounts.
	FreeDocumentLimit = 10

	// UnlimitedBalance is the sentinel reported as "remaining balance" for
	// paid tiers, which are never charged.
	UnlimitedBalance = -1

	// AcceptedAnswerAward is the fixed credit award to an answer's author
	// when the doubt author accepts the answer.
	AcceptedAnswerAward = 2

	// DoubtCreatedAward and AnswerCreatedAward are the participation awards
	// granted by the posting workflows.
	DoubtCreatedAward  = 1
	AnswerCreatedAward = 1
)

// operationCosts is the fixed per-operation credit cost table.
var operationCosts = map[string]int{
	"mindmap":   5,
	"flowchart": 5,
	"quiz":      3,
	"flashcard": 3,
	"chat":      1,
}

// OperationCost returns the credit cost of the named AI operation.
// Unlisted operations cost DefaultOperationCost.
func OperationCost(operation string) int {
	if c, ok := operationCosts[operation]; ok {
		return c
	}
	return DefaultOperationCost
}

// Entitlements describes what a subscription tier is allowed.
type Entitlements struct {
	// DocumentLimit is the maximum stored documents; < 0 means unlimited.
	DocumentLimit int
	// CreditGrant is the one-time credit award applied on every tier set
	// that lands on this tier.
	CreditGrant int
}

// Unlimited reports whether the tier has no document cap.
func (e Entitlements) Unlimited() bool { return e.DocumentLimit < 0 }

// tierEntitlements maps each tier to its entitlements.
var tierEntitlements = map[domain.Tier]Entitlements{
	domain.TierFree:       {DocumentLimit: FreeDocumentLimit, CreditGrant: 0},
	domain.TierStudentPro: {DocumentLimit: -1, CreditGrant: 500},
	domain.TierPremium:    {DocumentLimit: -1, CreditGrant: 2000},
}

// EntitlementsFor returns the entitlements for the given tier. Unknown tiers
// fall back to FREE entitlements, the most restrictive policy.
func EntitlementsFor(tier domain.Tier) Entitlements {
	if e, ok := tierEntitlements[tier]; ok {
		return e
	}
	return tierEntitlements[domain.TierFree]
}
