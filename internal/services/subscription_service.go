// Package services – SubscriptionService
//
// This file implements the SubscriptionService, the only path that changes an
// account's tier. Setting a paid tier appends a SUBSCRIPTION_GRANT ledger
// entry and credits the grant in the same transaction. Every tier-set call is
// its own grant event: changing to STUDENT_PRO twice awards the grant twice.
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

// SubscriptionService applies tier changes and their upgrade grants.
type SubscriptionService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// ChangeTier sets the account's tier to newTier, provisioning the account on
// first touch, and credits the tier's grant when it is non-zero. It returns
// the account as persisted after the change.
func (s *SubscriptionService) ChangeTier(ctx context.Context, accountID string, newTier domain.Tier) (*domain.Account, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, ErrUnauthenticated
	}
	if !newTier.Valid() {
		return nil, ErrInvalidTier
	}

	var out *domain.Account
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.EnsureAccount(ctx, tx, accountID); err != nil {
			return err
		}
		if err := repo.SetTier(ctx, tx, accountID, newTier); err != nil {
			if isNotFound(err) {
				return ErrAccountNotFound
			}
			return err
		}

		if grant := config.EntitlementsFor(newTier).CreditGrant; grant > 0 {
			if _, err := awardInTx(ctx, tx, accountID, domain.EventSubscriptionGrant,
				grant, fmt.Sprintf("subscription grant for %s", newTier), nil); err != nil {
				return err
			}
		}

		acct, err := repo.GetAccount(ctx, tx, accountID)
		if err != nil {
			return err
		}
		out = acct
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
