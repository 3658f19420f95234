// Package services – ForumService
//
// This file implements the ForumService, which handles the posting workflows
// that touch the credit economy: creating doubts and answers (each pays a
// small participation award to the author) and accepting an answer (the doubt
// author's action, which pays a fixed award to the answer's author). Each
// workflow is one transaction so the forum row and its ledger entry commit
// together.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/tbourn/go-forum-backend/internal/config"
	"github.com/tbourn/go-forum-backend/internal/domain"
	"github.com/tbourn/go-forum-backend/internal/repo"
)

// ForumService provides doubt/answer posting and answer acceptance.
type ForumService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// TitleMaxLen caps stored doubt titles by rune length.
	TitleMaxLen int
}

// NewForumService constructs a ForumService with sane defaults for title
// handling.
func NewForumService(db *gorm.DB) *ForumService {
	return &ForumService{DB: db, TitleMaxLen: 120}
}

// CreateDoubt inserts a new doubt authored by authorID and awards the
// participation credit to the author in the same transaction. Titles are
// normalized, trimmed, and clipped; a blank title is rejected with
// ErrEmptyTitle.
func (s *ForumService) CreateDoubt(ctx context.Context, authorID, title string) (*domain.Doubt, error) {
	if strings.TrimSpace(authorID) == "" {
		return nil, ErrUnauthenticated
	}
	title = normalizeTitle(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	title = s.clip(title)

	var out *domain.Doubt
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.EnsureAccount(ctx, tx, authorID); err != nil {
			return err
		}
		d, err := repo.CreateDoubt(ctx, tx, authorID, title)
		if err != nil {
			return err
		}
		if _, err := awardInTx(ctx, tx, authorID, domain.EventDoubtCreated,
			config.DoubtCreatedAward, "posted a doubt", &d.ID); err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAnswer inserts a new answer on doubtID authored by authorID and
// awards the participation credit to the author in the same transaction.
// Answering a missing doubt returns ErrTargetNotFound.
func (s *ForumService) CreateAnswer(ctx context.Context, authorID, doubtID string) (*domain.Answer, error) {
	if strings.TrimSpace(authorID) == "" {
		return nil, ErrUnauthenticated
	}

	var out *domain.Answer
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetDoubt(ctx, tx, doubtID); err != nil {
			if repo.IsNotFound(err) {
				return ErrTargetNotFound
			}
			return err
		}
		if _, err := repo.EnsureAccount(ctx, tx, authorID); err != nil {
			return err
		}
		a, err := repo.CreateAnswer(ctx, tx, doubtID, authorID)
		if err != nil {
			return err
		}
		if _, err := awardInTx(ctx, tx, authorID, domain.EventAnswerCreated,
			config.AnswerCreatedAward, "posted an answer", &a.ID); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AcceptAnswer marks answerID as the accepted answer of its doubt and pays
// the fixed acceptance award to the answer's author.
//
// Rules:
//   - Only the doubt's author may accept; others get ErrNotDoubtAuthor.
//   - An answer is accepted at most once; a repeat returns ErrAlreadyAccepted
//     and pays nothing. The flag flip is a conditional update, so concurrent
//     accepts cannot double-pay.
func (s *ForumService) AcceptAnswer(ctx context.Context, callerID, answerID string) error {
	if strings.TrimSpace(callerID) == "" {
		return ErrUnauthenticated
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ans, err := repo.GetAnswer(ctx, tx, answerID)
		if err != nil {
			if repo.IsNotFound(err) {
				return ErrTargetNotFound
			}
			return err
		}
		doubt, err := repo.GetDoubt(ctx, tx, ans.DoubtID)
		if err != nil {
			return err
		}
		if doubt.AuthorID != callerID {
			return ErrNotDoubtAuthor
		}

		ok, err := repo.MarkAnswerAccepted(ctx, tx, answerID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAlreadyAccepted
		}

		if _, err := repo.EnsureAccount(ctx, tx, ans.AuthorID); err != nil {
			return err
		}
		_, err = awardInTx(ctx, tx, ans.AuthorID, domain.EventAnswerAccepted,
			config.AcceptedAnswerAward, "answer accepted", &ans.ID)
		return err
	})
}

// clip truncates a doubt title to the configured maximum rune length.
func (s *ForumService) clip(title string) string {
	if s.TitleMaxLen > 0 && utf8.RuneCountInString(title) > s.TitleMaxLen {
		return string([]rune(title)[:s.TitleMaxLen])
	}
	return title
}

// normalizeTitle trims whitespace and collapses multiple spaces to one.
func normalizeTitle(s string) string {
	return whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
}

// whitespaceRE collapses consecutive whitespace to a single space.
var whitespaceRE = regexp.MustCompile(`\s+`)

// isNotFound treats repo-level not found sentinels as "not found" in a
// driver-agnostic way. It also checks gorm.ErrRecordNotFound for safety.
func isNotFound(err error) bool {
	if errors.Is(err, repo.ErrNotFound) {
		return true
	}
	return errors.Is(err, gorm.ErrRecordNotFound)
}
