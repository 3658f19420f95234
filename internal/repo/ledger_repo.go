// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the append-only
// credit ledger.
//
// Ledger rows are immutable: this file intentionally exposes no update or
// delete helpers. Corrections are new offsetting entries appended by the
// service layer.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-forum-backend/internal/domain"
)

// AppendLedgerEntry inserts a new immutable ledger row for accountID.
// Points is signed: positive for awards, negative for spends. relatedEntityID
// may be nil when the entry is not tied to a forum entity.
//
// On success, it returns the persisted entry. On failure, it returns a DB error.
func AppendLedgerEntry(ctx context.Context, db *gorm.DB, accountID string, event domain.EventType, points int, description string, relatedEntityID *string) (*domain.LedgerEntry, error) {
	e := &domain.LedgerEntry{
		ID:              uuid.NewString(),
		AccountID:       accountID,
		EventType:       event,
		Points:          points,
		Description:     description,
		RelatedEntityID: relatedEntityID,
		CreatedAt:       time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

// GetLedgerEntry fetches a single ledger row by id or returns ErrNotFound.
func GetLedgerEntry(ctx context.Context, db *gorm.DB, id string) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	if err := db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// ListLedgerPage returns a page of ledger entries for accountID, most recent
// first, ordered deterministically (CreatedAt DESC, ID DESC).
func ListLedgerPage(ctx context.Context, db *gorm.DB, accountID string, offset, limit int) ([]domain.LedgerEntry, error) {
	var out []domain.LedgerEntry
	err := db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountLedgerEntries returns the total number of ledger rows for accountID.
func CountLedgerEntries(ctx context.Context, db *gorm.DB, accountID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.LedgerEntry{}).
		Where("account_id = ?", accountID).
		Count(&total).Error
	return total, err
}

// SumLedgerPoints returns the signed sum of all ledger points for accountID.
// Used for reconciliation against the denormalized account balance; the two
// must agree at every transaction boundary.
func SumLedgerPoints(ctx context.Context, db *gorm.DB, accountID string) (int, error) {
	var row struct {
		Total *int
	}
	err := db.WithContext(ctx).
		Model(&domain.LedgerEntry{}).
		Select("SUM(points) AS total").
		Where("account_id = ?", accountID).
		Scan(&row).Error
	if err != nil {
		return 0, err
	}
	if row.Total == nil {
		return 0, nil // no entries yet
	}
	return *row.Total, nil
}
