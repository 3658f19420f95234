// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Account
// model, including the conditional balance and document-count updates the
// quota logic relies on.
//
// The repository follows a "thin" approach: it performs persistence and simple
// query composition, leaving business rules to the services package. The one
// deliberate exception is that the guarded updates below fold the
// check-and-mutate into a single conditional UPDATE so that two concurrent
// spends against a stale read can never both succeed.
//
// Error semantics:
//   - When an account is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - Guarded updates report "condition not met" through their boolean result,
//     not as an error; the service layer decides what a denial means.
//   - On other DB errors (connectivity, constraints), the raw gorm error is
//     propagated.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-forum-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// EnsureAccount fetches the account for id, creating a FREE-tier row with
// zero balance on first touch. FirstOrCreate is a read followed by an insert,
// so two concurrent first touches can race: both miss the read and one insert
// loses on the primary key. The loser re-reads the row the winner created so
// that concurrent first requests converge instead of surfacing the conflict.
func EnsureAccount(ctx context.Context, db *gorm.DB, id string) (*domain.Account, error) {
	acct := &domain.Account{ID: id, Tier: domain.TierFree, CreatedAt: time.Now().UTC()}
	err := db.WithContext(ctx).
		Where("id = ?", id).
		FirstOrCreate(acct).Error
	if err != nil {
		var existing domain.Account
		if err2 := db.WithContext(ctx).Where("id = ?", id).First(&existing).Error; err2 == nil {
			return &existing, nil
		}
		return nil, err
	}
	return acct, nil
}

// GetAccount fetches an account by id or returns ErrNotFound.
func GetAccount(ctx context.Context, db *gorm.DB, id string) (*domain.Account, error) {
	var a domain.Account
	if err := db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// DebitBalanceIfSufficient atomically decrements the account balance by cost,
// but only when the current balance covers it. It returns true when the
// decrement was applied, false when the balance was insufficient (or the
// account does not exist). The condition and the write execute as one UPDATE,
// so concurrent spends serialize on the row instead of racing a stale read.
func DebitBalanceIfSufficient(ctx context.Context, db *gorm.DB, id string, cost int) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("id = ? AND balance >= ?", id, cost).
		UpdateColumn("balance", gorm.Expr("balance - ?", cost))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CreditBalance increments the account balance by amount. It returns
// ErrNotFound when no row was touched.
func CreditBalance(ctx context.Context, db *gorm.DB, id string, amount int) error {
	res := db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("id = ?", id).
		UpdateColumn("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementDocumentCount unconditionally bumps document_count (paid tiers
// keep counting for display but are never capped).
func IncrementDocumentCount(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("id = ?", id).
		UpdateColumn("document_count", gorm.Expr("document_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementDocumentCountIfBelow bumps document_count only while it is below
// limit, reporting whether a slot was taken. Same conditional-UPDATE
// discipline as DebitBalanceIfSufficient: N concurrent calls can take at most
// limit-current slots between them.
func IncrementDocumentCountIfBelow(ctx context.Context, db *gorm.DB, id string, limit int) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("id = ? AND document_count < ?", id, limit).
		UpdateColumn("document_count", gorm.Expr("document_count + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DecrementDocumentCount lowers document_count by one, floored at zero.
// Releasing below zero is a no-op, never an error.
func DecrementDocumentCount(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("id = ? AND document_count > 0", id).
		UpdateColumn("document_count", gorm.Expr("document_count - 1")).Error
}

// SetTier updates the subscription tier of an account. Returns ErrNotFound
// when the account does not exist.
func SetTier(ctx context.Context, db *gorm.DB, id string, tier domain.Tier) error {
	res := db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("id = ?", id).
		Update("tier", tier)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
