// Package services – VoteService
//
// This file implements the VoteService, which enforces single-vote-per-user
// on doubts and answers and keeps the denormalized aggregates exact. Each
// cast runs the three-state transition (NONE, UP, DOWN) and then recounts
// the target's vote rows in full inside the same transaction; the counters
// are never patched incrementally.
package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-forum-backend/internal/domain"
	"github.com/tbourn/go-forum-backend/internal/repo"
)

// VoteOutcome reports the voter's resulting state and the fresh aggregate
// after a cast.
type VoteOutcome struct {
	// State is the voter's vote on the target after the transition.
	// VoteNone means the cast toggled an existing vote off.
	State     domain.VoteType
	Upvotes   int
	Downvotes int
	Score     int
}

// VoteService implements vote casting and vote-state reads for doubts and
// answers. One vote row per (voter, target) pair is held as a schema-level
// unique constraint; the service only moves between the three states.
type VoteService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// CastDoubtVote applies requested to the voter's vote on a doubt.
//
// Transitions:
//   - no existing vote: insert a row of the requested type
//   - existing vote of the same type: delete the row (toggle-off, silent)
//   - existing vote of the opposite type: update the row in place
//
// The doubt's counters are recomputed from the surviving rows before commit.
// Voting on a missing doubt returns ErrTargetNotFound.
func (s *VoteService) CastDoubtVote(ctx context.Context, voterID, doubtID string, requested domain.VoteType) (*VoteOutcome, error) {
	if strings.TrimSpace(voterID) == "" {
		return nil, ErrUnauthenticated
	}
	if requested != domain.VoteUp && requested != domain.VoteDown {
		return nil, ErrInvalidVoteType
	}

	var out *VoteOutcome
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetDoubt(ctx, tx, doubtID); err != nil {
			if repo.IsNotFound(err) {
				return ErrTargetNotFound
			}
			return err
		}

		state := requested
		existing, err := repo.GetDoubtVote(ctx, tx, voterID, doubtID)
		switch {
		case repo.IsNotFound(err):
			if err := repo.CreateDoubtVote(ctx, tx, voterID, doubtID, requested); err != nil {
				return err
			}
		case err != nil:
			return err
		case existing.Type == requested:
			if err := repo.DeleteDoubtVote(ctx, tx, existing.ID); err != nil {
				return err
			}
			state = domain.VoteNone
		default:
			if err := repo.UpdateDoubtVoteType(ctx, tx, existing.ID, requested); err != nil {
				return err
			}
		}

		up, down, err := repo.RecountDoubtVotes(ctx, tx, doubtID)
		if err != nil {
			return err
		}
		out = &VoteOutcome{State: state, Upvotes: up, Downvotes: down, Score: up - down}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CastAnswerVote mirrors CastDoubtVote for answer targets.
func (s *VoteService) CastAnswerVote(ctx context.Context, voterID, answerID string, requested domain.VoteType) (*VoteOutcome, error) {
	if strings.TrimSpace(voterID) == "" {
		return nil, ErrUnauthenticated
	}
	if requested != domain.VoteUp && requested != domain.VoteDown {
		return nil, ErrInvalidVoteType
	}

	var out *VoteOutcome
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetAnswer(ctx, tx, answerID); err != nil {
			if repo.IsNotFound(err) {
				return ErrTargetNotFound
			}
			return err
		}

		state := requested
		existing, err := repo.GetAnswerVote(ctx, tx, voterID, answerID)
		switch {
		case repo.IsNotFound(err):
			if err := repo.CreateAnswerVote(ctx, tx, voterID, answerID, requested); err != nil {
				return err
			}
		case err != nil:
			return err
		case existing.Type == requested:
			if err := repo.DeleteAnswerVote(ctx, tx, existing.ID); err != nil {
				return err
			}
			state = domain.VoteNone
		default:
			if err := repo.UpdateAnswerVoteType(ctx, tx, existing.ID, requested); err != nil {
				return err
			}
		}

		up, down, err := repo.RecountAnswerVotes(ctx, tx, answerID)
		if err != nil {
			return err
		}
		out = &VoteOutcome{State: state, Upvotes: up, Downvotes: down, Score: up - down}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetDoubtVoteState returns the voter's current vote on a doubt for UI
// hydration. Absence of a vote row is the NONE state, not an error; a
// missing doubt returns ErrTargetNotFound.
func (s *VoteService) GetDoubtVoteState(ctx context.Context, voterID, doubtID string) (domain.VoteType, error) {
	if strings.TrimSpace(voterID) == "" {
		return domain.VoteNone, ErrUnauthenticated
	}
	if _, err := repo.GetDoubt(ctx, s.DB, doubtID); err != nil {
		if repo.IsNotFound(err) {
			return domain.VoteNone, ErrTargetNotFound
		}
		return domain.VoteNone, err
	}
	v, err := repo.GetDoubtVote(ctx, s.DB, voterID, doubtID)
	if repo.IsNotFound(err) {
		return domain.VoteNone, nil
	}
	if err != nil {
		return domain.VoteNone, err
	}
	return v.Type, nil
}

// GetAnswerVoteState mirrors GetDoubtVoteState for answer targets.
func (s *VoteService) GetAnswerVoteState(ctx context.Context, voterID, answerID string) (domain.VoteType, error) {
	if strings.TrimSpace(voterID) == "" {
		return domain.VoteNone, ErrUnauthenticated
	}
	if _, err := repo.GetAnswer(ctx, s.DB, answerID); err != nil {
		if repo.IsNotFound(err) {
			return domain.VoteNone, ErrTargetNotFound
		}
		return domain.VoteNone, err
	}
	v, err := repo.GetAnswerVote(ctx, s.DB, voterID, answerID)
	if repo.IsNotFound(err) {
		return domain.VoteNone, nil
	}
	if err != nil {
		return domain.VoteNone, err
	}
	return v.Type, nil
}
