// Package services – CreditService
//
// This file implements the CreditService, the public composition surface of
// the credit economy. It gates spend operations against tier entitlements,
// appends immutable ledger entries, and keeps the denormalized account balance
// in step with the ledger inside a single transaction per call.
//
// Denials are structured results, not errors: an insufficient balance returns
// ChargeResult{Allowed: false, NeedsUpgrade: true} so callers can present an
// upgrade prompt, while storage failures surface as plain errors.
package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-forum-backend/internal/config"
	"github.com/tbourn/go-forum-backend/internal/domain"
	"github.com/tbourn/go-forum-backend/internal/repo"
)

// ChargeResult is the outcome of a spend attempt. Allowed=false is a normal
// business outcome carrying the data an upgrade prompt needs, never an error.
type ChargeResult struct {
	// Allowed reports whether the operation may proceed.
	Allowed bool
	// Cost is the looked-up credit cost of the operation.
	Cost int
	// RemainingBalance is the balance after the spend, or
	// config.UnlimitedBalance for paid tiers.
	RemainingBalance int
	// NeedsUpgrade is set when the denial would be lifted by a paid tier.
	NeedsUpgrade bool
	// LedgerEntryID identifies the spend entry when one was written.
	LedgerEntryID string
}

// ReserveResult is the outcome of a document slot reservation.
type ReserveResult struct {
	Allowed  bool
	NewCount int
}

// CreditService implements the credit gateway use-cases: balance reads,
// charged operations, awards, document slot accounting, and ledger history.
// Accounts are provisioned lazily on first touch with FREE-tier defaults.
type CreditService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// GetBalance returns the current denormalized balance for accountID,
// provisioning the account on first touch.
func (s *CreditService) GetBalance(ctx context.Context, accountID string) (int, error) {
	if strings.TrimSpace(accountID) == "" {
		return 0, ErrUnauthenticated
	}
	acct, err := repo.EnsureAccount(ctx, s.DB, accountID)
	if err != nil {
		return 0, err
	}
	return acct.Balance, nil
}

// GetAccount returns the account row for accountID, provisioning it on first
// touch. Used for summary reads that need tier and document count alongside
// the balance.
func (s *CreditService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, ErrUnauthenticated
	}
	return repo.EnsureAccount(ctx, s.DB, accountID)
}

// ChargeForOperation looks up the cost of operation from the fixed cost table
// (unlisted operations cost the default) and attempts the spend.
//
// Semantics:
//   - Paid tiers are always allowed. The balance is not decremented and no
//     ledger entry is written; RemainingBalance is the unlimited sentinel.
//   - FREE tier: the balance check and decrement are a single conditional
//     update, so two concurrent spends against a low balance cannot both
//     succeed. On success a negative ledger entry is appended in the same
//     transaction. On denial nothing is mutated and NeedsUpgrade is set.
func (s *CreditService) ChargeForOperation(ctx context.Context, accountID, operation string) (*ChargeResult, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, ErrUnauthenticated
	}
	cost := config.OperationCost(operation)

	var out *ChargeResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		acct, err := repo.EnsureAccount(ctx, tx, accountID)
		if err != nil {
			return err
		}

		if acct.Tier.Paid() {
			out = &ChargeResult{
				Allowed:          true,
				Cost:             cost,
				RemainingBalance: config.UnlimitedBalance,
			}
			return nil
		}

		ok, err := repo.DebitBalanceIfSufficient(ctx, tx, accountID, cost)
		if err != nil {
			return err
		}
		if !ok {
			out = &ChargeResult{
				Allowed:          false,
				Cost:             cost,
				RemainingBalance: acct.Balance,
				NeedsUpgrade:     true,
			}
			return nil
		}

		entry, err := repo.AppendLedgerEntry(ctx, tx, accountID,
			spendEvent(operation), -cost, fmt.Sprintf("%s operation", operation), nil)
		if err != nil {
			return err
		}

		after, err := repo.GetAccount(ctx, tx, accountID)
		if err != nil {
			return err
		}
		out = &ChargeResult{
			Allowed:          true,
			Cost:             cost,
			RemainingBalance: after.Balance,
			LedgerEntryID:    entry.ID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AwardCredits appends a positive ledger entry and adjusts the balance
// atomically, returning the new balance. Amount must be non-negative; spend
// events never travel through this path.
func (s *CreditService) AwardCredits(ctx context.Context, accountID string, event domain.EventType, amount int, description string, relatedEntityID *string) (int, error) {
	if strings.TrimSpace(accountID) == "" {
		return 0, ErrUnauthenticated
	}
	if amount < 0 {
		return 0, ErrNegativeAward
	}

	var newBalance int
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.EnsureAccount(ctx, tx, accountID); err != nil {
			return err
		}
		b, err := awardInTx(ctx, tx, accountID, event, amount, description, relatedEntityID)
		if err != nil {
			return err
		}
		newBalance = b
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// ReserveDocumentUpload reserves one document slot for accountID.
//
// Paid tiers are always allowed; the count is still incremented for display.
// FREE-tier accounts are capped: the check and increment are one conditional
// update, and a full account returns ErrQuotaExceeded with nothing mutated.
func (s *CreditService) ReserveDocumentUpload(ctx context.Context, accountID string) (*ReserveResult, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, ErrUnauthenticated
	}

	var out *ReserveResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		acct, err := repo.EnsureAccount(ctx, tx, accountID)
		if err != nil {
			return err
		}

		ents := config.EntitlementsFor(acct.Tier)
		if ents.Unlimited() {
			if err := repo.IncrementDocumentCount(ctx, tx, accountID); err != nil {
				return err
			}
		} else {
			ok, err := repo.IncrementDocumentCountIfBelow(ctx, tx, accountID, ents.DocumentLimit)
			if err != nil {
				return err
			}
			if !ok {
				return ErrQuotaExceeded
			}
		}

		after, err := repo.GetAccount(ctx, tx, accountID)
		if err != nil {
			return err
		}
		out = &ReserveResult{Allowed: true, NewCount: after.DocumentCount}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReleaseDocumentUpload returns a document slot, flooring the count at zero.
// It never fails for business reasons and returns the new count.
func (s *CreditService) ReleaseDocumentUpload(ctx context.Context, accountID string) (int, error) {
	if strings.TrimSpace(accountID) == "" {
		return 0, ErrUnauthenticated
	}

	var newCount int
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.EnsureAccount(ctx, tx, accountID); err != nil {
			return err
		}
		if err := repo.DecrementDocumentCount(ctx, tx, accountID); err != nil {
			return err
		}
		after, err := repo.GetAccount(ctx, tx, accountID)
		if err != nil {
			return err
		}
		newCount = after.DocumentCount
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newCount, nil
}

// GetHistory returns a page of the account's ledger, most recent first,
// along with the total entry count. It applies defaults for invalid
// page/pageSize values.
func (s *CreditService) GetHistory(ctx context.Context, accountID string, page, pageSize int) ([]domain.LedgerEntry, int64, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, 0, ErrUnauthenticated
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountLedgerEntries(ctx, s.DB, accountID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.LedgerEntry{}, 0, nil
	}

	items, err := repo.ListLedgerPage(ctx, s.DB, accountID, offset, pageSize)
	return items, total, err
}

// awardInTx appends a positive ledger entry and credits the balance using the
// caller's transaction handle. The two writes commit or roll back together;
// the ledger sum and the denormalized balance stay equal at every transaction
// boundary.
func awardInTx(ctx context.Context, tx *gorm.DB, accountID string, event domain.EventType, amount int, description string, relatedEntityID *string) (int, error) {
	if _, err := repo.AppendLedgerEntry(ctx, tx, accountID, event, amount, description, relatedEntityID); err != nil {
		return 0, err
	}
	if err := repo.CreditBalance(ctx, tx, accountID, amount); err != nil {
		if isNotFound(err) {
			return 0, ErrAccountNotFound
		}
		return 0, err
	}
	acct, err := repo.GetAccount(ctx, tx, accountID)
	if err != nil {
		return 0, err
	}
	return acct.Balance, nil
}

// spendEvent maps an operation name to its ledger event type.
func spendEvent(operation string) domain.EventType {
	if operation == "chat" {
		return domain.EventAIChatMessage
	}
	return domain.EventAIToolUse
}
