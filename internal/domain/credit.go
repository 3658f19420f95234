// Package domain – credit ledger types.
//
// The ledger is the source of truth for every balance change. Entries are
// append-only and immutable once written; corrections are modeled as new
// offsetting entries, never as updates or deletes.
package domain

import "time"

// Tier is a named subscription level determining quota and spend policy.
type Tier string

const (
	TierFree       Tier = "FREE"
	TierStudentPro Tier = "STUDENT_PRO"
	TierPremium    Tier = "PREMIUM"
)

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierStudentPro, TierPremium:
		return true
	}
	return false
}

// Paid reports whether t is exempt from credit and document quotas.
func (t Tier) Paid() bool { return t == TierStudentPro || t == TierPremium }

// EventType is the business reason recorded on a ledger entry.
type EventType string

const (
	EventDoubtCreated      EventType = "DOUBT_CREATED"
	EventAnswerCreated     EventType = "ANSWER_CREATED"
	EventAnswerAccepted    EventType = "ANSWER_ACCEPTED"
	EventAIChatMessage     EventType = "AI_CHAT_MESSAGE"
	EventAIToolUse         EventType = "AI_TOOL_USE"
	EventSubscriptionGrant EventType = "SUBSCRIPTION_GRANT"
	EventManualAdjust      EventType = "MANUAL_ADJUST"
)

// VoteType is the stored direction of an active vote. "No vote" is
// represented by row absence in storage and by VoteNone at the API surface.
type VoteType string

const (
	VoteUp   VoteType = "UP"
	VoteDown VoteType = "DOWN"
	// VoteNone is never persisted; it is the API-level tag for "no row".
	VoteNone VoteType = "NONE"
)

// LedgerEntry is one immutable, timestamped record of a balance change.
// Positive points are awards, negative points are spends.
//
// There is deliberately no UpdatedAt or DeletedAt: ledger rows are never
// touched after insert.
type LedgerEntry struct {
	ID              string    `json:"id"                          gorm:"type:char(36);primaryKey"`
	AccountID       string    `json:"account_id"                  gorm:"type:varchar(64);not null;index:idx_ledger_account,priority:1"`
	EventType       EventType `json:"event_type"                  gorm:"type:varchar(32);not null"`
	Points          int       `json:"points"                      gorm:"not null"`
	Description     string    `json:"description,omitempty"       gorm:"type:varchar(255)"`
	RelatedEntityID *string   `json:"related_entity_id,omitempty" gorm:"type:char(36)"`
	CreatedAt       time.Time `json:"created_at"                  gorm:"index:idx_ledger_account,priority:2"`
}

// TableName returns the database table name for LedgerEntry.
func (LedgerEntry) TableName() string { return "ledger_entries" }
