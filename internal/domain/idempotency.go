// Package domain defines the core persistence models for the application.
// These types are used by GORM for database schema mapping and are shared
// across the repository and service layers.
package domain

import "time"

// Idempotency represents a recorded result of a previously processed request,
// keyed by (user_id, scope, key). It enables safe retries for spend-type
// operations (credit charges, document reservations) by returning the
// originally produced outcome without re-executing the side effect.
//
// Scope names the guarded operation (e.g. "charge:quiz" or "document:reserve")
// so one key cannot replay across unrelated endpoints.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	UserID    string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_scope_key,priority:1"`
	Scope     string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_scope_key,priority:2"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_scope_key,priority:3"`
	RefID     string    `gorm:"type:TEXT NOT NULL"` // ledger entry id (or "" for reservations)
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	// ResultValue snapshots the numeric outcome replayed to retried clients:
	// remaining balance for charges, document count for reservations.
	ResultValue int       `gorm:"type:INTEGER NOT NULL;default:0"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
