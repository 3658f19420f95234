package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/go-forum-backend/internal/domain"
)

func TestAppendLedgerEntry_Error_NoTable(t *testing.T) {
	db := newTestDB(t /* no migrations */)
	e, err := AppendLedgerEntry(context.Background(), db, "u1", domain.EventManualAdjust, 1, "", nil)
	if err == nil || e != nil {
		t.Fatalf("expected error appending without table, got entry=%v err=%v", e, err)
	}
}

func TestAppendLedgerEntry_Success_PersistsAndSetsFields(t *testing.T) {
	db := newTestDB(t, &domain.LedgerEntry{})
	ctx := context.Background()

	start := time.Now().UTC().Add(-time.Minute)
	related := "doubt-1"
	e, err := AppendLedgerEntry(ctx, db, "u1", domain.EventAnswerAccepted, 2, "answer accepted", &related)
	if err != nil {
		t.Fatalf("AppendLedgerEntry: %v", err)
	}
	if e.ID == "" || e.AccountID != "u1" || e.EventType != domain.EventAnswerAccepted || e.Points != 2 {
		t.Fatalf("unexpected entry fields: %+v", e)
	}
	if e.RelatedEntityID == nil || *e.RelatedEntityID != "doubt-1" {
		t.Fatalf("related entity not persisted: %+v", e.RelatedEntityID)
	}
	if e.CreatedAt.Before(start) {
		t.Fatalf("CreatedAt seems unset/really old: %v", e.CreatedAt)
	}

	// round-trip
	var got domain.LedgerEntry
	if err := db.First(&got, "id = ?", e.ID).Error; err != nil {
		t.Fatalf("load created entry: %v", err)
	}
	if got.Points != 2 || got.Description != "answer accepted" {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestListLedgerPage_OrderAndPaging(t *testing.T) {
	db := newTestDB(t, &domain.LedgerEntry{})
	ctx := context.Background()

	// Seed with known CreatedAt so order is deterministic.
	t0 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	for i, pts := range []int{5, -3, 2} {
		e := domain.LedgerEntry{
			ID:        string(rune('a' + i)),
			AccountID: "u1",
			EventType: domain.EventManualAdjust,
			Points:    pts,
			CreatedAt: t0.Add(time.Duration(i) * time.Hour),
		}
		if err := db.Create(&e).Error; err != nil {
			t.Fatalf("seed entry %d: %v", i, err)
		}
	}
	// An entry for another account must not leak in.
	if err := db.Create(&domain.LedgerEntry{ID: "x", AccountID: "u2", EventType: domain.EventManualAdjust, Points: 9, CreatedAt: t0}).Error; err != nil {
		t.Fatalf("seed other account: %v", err)
	}

	out, err := ListLedgerPage(ctx, db, "u1", 0, 2)
	if err != nil {
		t.Fatalf("ListLedgerPage: %v", err)
	}
	if len(out) != 2 || out[0].Points != 2 || out[1].Points != -3 {
		t.Fatalf("expected most-recent-first page [2,-3], got %+v", out)
	}

	out, err = ListLedgerPage(ctx, db, "u1", 2, 2)
	if err != nil || len(out) != 1 || out[0].Points != 5 {
		t.Fatalf("expected last page [5], got %+v err=%v", out, err)
	}

	total, err := CountLedgerEntries(ctx, db, "u1")
	if err != nil || total != 3 {
		t.Fatalf("CountLedgerEntries = %d, %v; want 3", total, err)
	}
}

func TestSumLedgerPoints(t *testing.T) {
	db := newTestDB(t, &domain.LedgerEntry{})
	ctx := context.Background()

	// No rows: a NULL SUM must read back as zero.
	sum, err := SumLedgerPoints(ctx, db, "u1")
	if err != nil || sum != 0 {
		t.Fatalf("empty sum = %d, %v; want 0", sum, err)
	}

	for i, pts := range []int{10, -4, -1} {
		e := domain.LedgerEntry{ID: string(rune('a' + i)), AccountID: "u1", EventType: domain.EventAIToolUse, Points: pts, CreatedAt: time.Now().UTC()}
		if err := db.Create(&e).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	sum, err = SumLedgerPoints(ctx, db, "u1")
	if err != nil || sum != 5 {
		t.Fatalf("sum = %d, %v; want 5", sum, err)
	}
}
