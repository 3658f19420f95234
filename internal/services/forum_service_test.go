package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tbourn/go-forum-backend/internal/config"
	"github.com/tbourn/go-forum-backend/internal/domain"
	"github.com/tbourn/go-forum-backend/internal/repo"
)

func TestCreateDoubt_AwardsAuthor(t *testing.T) {
	db := newTestDB(t)
	svc := NewForumService(db)
	ctx := context.Background()

	d, err := svc.CreateDoubt(ctx, "author", "  how   do    goroutines leak?  ")
	if err != nil {
		t.Fatalf("CreateDoubt: %v", err)
	}
	if d.Title != "how do goroutines leak?" {
		t.Fatalf("title not normalized: %q", d.Title)
	}

	acct, err := repo.GetAccount(ctx, db, "author")
	if err != nil || acct.Balance != config.DoubtCreatedAward {
		t.Fatalf("author balance = %d, %v; want %d", acct.Balance, err, config.DoubtCreatedAward)
	}
	entries, total, err := (&CreditService{DB: db}).GetHistory(ctx, "author", 1, 10)
	if err != nil || total != 1 {
		t.Fatalf("history total = %d, %v", total, err)
	}
	e := entries[0]
	if e.EventType != domain.EventDoubtCreated || e.Points != config.DoubtCreatedAward {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.RelatedEntityID == nil || *e.RelatedEntityID != d.ID {
		t.Fatalf("entry not linked to doubt: %+v", e)
	}
	reconcile(t, db, "author")
}

func TestCreateDoubt_TitleRules(t *testing.T) {
	db := newTestDB(t)
	svc := NewForumService(db)
	ctx := context.Background()

	if _, err := svc.CreateDoubt(ctx, "author", "   "); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("blank title: %v", err)
	}
	if _, err := svc.CreateDoubt(ctx, "", "ok"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("blank author: %v", err)
	}

	long := strings.Repeat("x", 500)
	d, err := svc.CreateDoubt(ctx, "author", long)
	if err != nil {
		t.Fatalf("long title: %v", err)
	}
	if len(d.Title) != svc.TitleMaxLen {
		t.Fatalf("title not clipped: len=%d", len(d.Title))
	}
}

func TestCreateAnswer_AwardsAuthor(t *testing.T) {
	db := newTestDB(t)
	svc := NewForumService(db)
	ctx := context.Background()

	d, err := svc.CreateDoubt(ctx, "asker", "q")
	if err != nil {
		t.Fatalf("CreateDoubt: %v", err)
	}
	a, err := svc.CreateAnswer(ctx, "helper", d.ID)
	if err != nil {
		t.Fatalf("CreateAnswer: %v", err)
	}
	if a.DoubtID != d.ID || a.Accepted {
		t.Fatalf("unexpected answer: %+v", a)
	}

	acct, err := repo.GetAccount(ctx, db, "helper")
	if err != nil || acct.Balance != config.AnswerCreatedAward {
		t.Fatalf("helper balance = %d, %v", acct.Balance, err)
	}
	reconcile(t, db, "helper")

	if _, err := svc.CreateAnswer(ctx, "helper", "missing"); !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("missing doubt: %v", err)
	}
}

func TestAcceptAnswer_AwardsAnswerAuthor(t *testing.T) {
	db := newTestDB(t)
	svc := NewForumService(db)
	ctx := context.Background()

	d, err := svc.CreateDoubt(ctx, "asker", "q")
	if err != nil {
		t.Fatalf("CreateDoubt: %v", err)
	}
	a, err := svc.CreateAnswer(ctx, "helper", d.ID)
	if err != nil {
		t.Fatalf("CreateAnswer: %v", err)
	}
	before, _ := repo.GetAccount(ctx, db, "helper")

	if err := svc.AcceptAnswer(ctx, "asker", a.ID); err != nil {
		t.Fatalf("AcceptAnswer: %v", err)
	}

	after, err := repo.GetAccount(ctx, db, "helper")
	if err != nil || after.Balance != before.Balance+config.AcceptedAnswerAward {
		t.Fatalf("helper balance = %d, %v; want %d", after.Balance, err, before.Balance+config.AcceptedAnswerAward)
	}

	// Exactly one acceptance entry of the fixed size.
	var accepted []domain.LedgerEntry
	if err := db.Where("account_id = ? AND event_type = ?", "helper", domain.EventAnswerAccepted).Find(&accepted).Error; err != nil {
		t.Fatalf("load entries: %v", err)
	}
	if len(accepted) != 1 || accepted[0].Points != config.AcceptedAnswerAward {
		t.Fatalf("acceptance entries: %+v", accepted)
	}
	reconcile(t, db, "helper")

	got, _ := repo.GetAnswer(ctx, db, a.ID)
	if !got.Accepted {
		t.Fatalf("answer not flagged accepted")
	}
}

func TestAcceptAnswer_Guards(t *testing.T) {
	db := newTestDB(t)
	svc := NewForumService(db)
	ctx := context.Background()

	d, err := svc.CreateDoubt(ctx, "asker", "q")
	if err != nil {
		t.Fatalf("CreateDoubt: %v", err)
	}
	a, err := svc.CreateAnswer(ctx, "helper", d.ID)
	if err != nil {
		t.Fatalf("CreateAnswer: %v", err)
	}

	if err := svc.AcceptAnswer(ctx, "", a.ID); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("blank caller: %v", err)
	}
	if err := svc.AcceptAnswer(ctx, "stranger", a.ID); !errors.Is(err, ErrNotDoubtAuthor) {
		t.Fatalf("non-author accept: %v", err)
	}
	if err := svc.AcceptAnswer(ctx, "asker", "missing"); !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("missing answer: %v", err)
	}

	if err := svc.AcceptAnswer(ctx, "asker", a.ID); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	if err := svc.AcceptAnswer(ctx, "asker", a.ID); !errors.Is(err, ErrAlreadyAccepted) {
		t.Fatalf("second accept: %v", err)
	}

	// The repeat paid nothing.
	acct, _ := repo.GetAccount(ctx, db, "helper")
	if acct.Balance != config.AnswerCreatedAward+config.AcceptedAnswerAward {
		t.Fatalf("helper balance after repeat accept = %d", acct.Balance)
	}
}
