// Package domain defines the persistence models for accounts, the credit
// ledger, doubts, answers, and votes. These types are mapped with GORM and
// form the core data layer of the forum backend.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Account is the per-user credit and quota state. The ID is the stable
// identity key supplied by the external identity provider; accounts are
// created lazily on the first gateway operation for that identity.
//
// Balance is a denormalized cache of the signed sum of the account's ledger
// entries. It is only ever adjusted in the same transaction as the ledger
// append that explains the change, so the two can never permanently diverge.
//
// Fields:
//   - ID: external identity key (primary key).
//   - Tier: subscription tier (FREE, STUDENT_PRO, PREMIUM).
//   - Balance: current spendable credits; never negative for FREE accounts.
//   - DocumentCount: number of documents the user currently has stored.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker (accounts are never hard-deleted).
type Account struct {
	ID            string         `json:"id"             gorm:"type:varchar(64);primaryKey"`
	Tier          Tier           `json:"tier"           gorm:"type:varchar(16);not null;default:'FREE';check:tier IN ('FREE','STUDENT_PRO','PREMIUM')"`
	Balance       int            `json:"balance"        gorm:"not null;default:0"`
	DocumentCount int            `json:"document_count" gorm:"not null;default:0;check:document_count >= 0"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-"              gorm:"index"`
}

// TableName returns the database table name for Account.
func (Account) TableName() string { return "accounts" }

// Doubt is a question posted by a user. Only the fields the credit/vote core
// needs are modeled here: authorship for the acceptance rule and the
// denormalized vote aggregate. Content management lives outside this service.
//
// Upvotes, Downvotes, and Score are recomputed by a full count over the
// doubt_votes rows after every vote mutation, never patched incrementally.
type Doubt struct {
	ID        string         `json:"id"        gorm:"type:char(36);primaryKey"`
	AuthorID  string         `json:"author_id" gorm:"type:varchar(64);not null;index:idx_doubt_author"`
	Title     string         `json:"title"     gorm:"type:varchar(255);not null"`
	Upvotes   int            `json:"upvotes"   gorm:"not null;default:0;check:upvotes >= 0"`
	Downvotes int            `json:"downvotes" gorm:"not null;default:0;check:downvotes >= 0"`
	Score     int            `json:"score"     gorm:"not null;default:0"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"         gorm:"index"`
}

// TableName returns the database table name for Doubt.
func (Doubt) TableName() string { return "doubts" }

// Answer is a reply to a doubt. Accepted is set exactly once, by the doubt's
// author, and triggers the fixed acceptance credit award to the answer author.
type Answer struct {
	ID        string         `json:"id"        gorm:"type:char(36);primaryKey"`
	DoubtID   string         `json:"doubt_id"  gorm:"type:char(36);not null;index:idx_answer_doubt"`
	AuthorID  string         `json:"author_id" gorm:"type:varchar(64);not null;index:idx_answer_author"`
	Accepted  bool           `json:"accepted"  gorm:"not null;default:false"`
	Upvotes   int            `json:"upvotes"   gorm:"not null;default:0;check:upvotes >= 0"`
	Downvotes int            `json:"downvotes" gorm:"not null;default:0;check:downvotes >= 0"`
	Score     int            `json:"score"     gorm:"not null;default:0"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"         gorm:"index"`

	// Doubt is the parent question. Answers are cascade-deleted if the
	// doubt is removed.
	Doubt Doubt `json:"-" gorm:"foreignKey:DoubtID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Answer.
func (Answer) TableName() string { return "answers" }

// DoubtVote is a single user's active vote on a doubt. At most one row exists
// per (voter_id, doubt_id) pair; the absence of a row means "no vote".
// Re-casting the same type deletes the row (toggle-off), casting the opposite
// type updates it in place.
type DoubtVote struct {
	ID        string    `json:"id"       gorm:"type:char(36);primaryKey"`
	VoterID   string    `json:"voter_id" gorm:"type:varchar(64);not null;index;uniqueIndex:ux_doubt_vote"`
	DoubtID   string    `json:"doubt_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_doubt_vote"`
	Type      VoteType  `json:"type"     gorm:"type:varchar(8);not null;check:type IN ('UP','DOWN')"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Doubt Doubt `json:"-" gorm:"foreignKey:DoubtID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for DoubtVote.
func (DoubtVote) TableName() string { return "doubt_votes" }

// AnswerVote mirrors DoubtVote for answer targets. The two tables are kept
// separate so the unique constraint and FK cascade stay simple.
type AnswerVote struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	VoterID   string    `json:"voter_id"  gorm:"type:varchar(64);not null;index;uniqueIndex:ux_answer_vote"`
	AnswerID  string    `json:"answer_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_answer_vote"`
	Type      VoteType  `json:"type"      gorm:"type:varchar(8);not null;check:type IN ('UP','DOWN')"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Answer Answer `json:"-" gorm:"foreignKey:AnswerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for AnswerVote.
func (AnswerVote) TableName() string { return "answer_votes" }
