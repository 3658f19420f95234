// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// primarily for conditional responses (e.g., ETag generation) in the HTTP
// layer. Each function is context-aware and safe to call from services or
// handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-forum-backend/internal/domain"
)

// LedgerStats returns aggregate metadata for an account's ledger: the total
// number of entries and the maximum CreatedAt timestamp among them. Because
// the ledger is append-only, (count, maxCreatedAt) changes iff the history
// changed, which makes the pair a sound ETag input.
//
// When the account has no entries, the returned count is 0 and maxCreatedAt
// is nil.
//
// Return values:
//   - count:        total ledger entries for accountID
//   - maxCreatedAt: pointer to the greatest CreatedAt, or nil if no rows
//   - err:          database error, if any
func LedgerStats(ctx context.Context, db *gorm.DB, accountID string) (count int64, maxCreatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.LedgerEntry{}).Where("account_id = ?", accountID)

	// Count
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}
