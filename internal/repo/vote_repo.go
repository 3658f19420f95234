// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the two vote
// tables and the full-recount aggregation that keeps the denormalized
// counters on doubts and answers exact.
//
// The aggregate is always recomputed by counting the current vote rows for
// the target, never patched incrementally: a recount after each mutation is
// self-healing under concurrent toggles, where incremental counters drift.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-forum-backend/internal/domain"
)

// GetDoubtVote returns the voter's active vote row on a doubt, or ErrNotFound
// when the voter has no vote (the NONE state).
func GetDoubtVote(ctx context.Context, db *gorm.DB, voterID, doubtID string) (*domain.DoubtVote, error) {
	var v domain.DoubtVote
	err := db.WithContext(ctx).
		Where("voter_id = ? AND doubt_id = ?", voterID, doubtID).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// CreateDoubtVote inserts a vote row. The (voter_id, doubt_id) pair is unique
// by schema; the service layer only calls this from the NONE state.
func CreateDoubtVote(ctx context.Context, db *gorm.DB, voterID, doubtID string, t domain.VoteType) error {
	v := &domain.DoubtVote{
		ID:        uuid.NewString(),
		VoterID:   voterID,
		DoubtID:   doubtID,
		Type:      t,
		CreatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(v).Error
}

// UpdateDoubtVoteType switches an existing vote row to the opposite type.
func UpdateDoubtVoteType(ctx context.Context, db *gorm.DB, id string, t domain.VoteType) error {
	return db.WithContext(ctx).
		Model(&domain.DoubtVote{}).
		Where("id = ?", id).
		Update("type", t).Error
}

// DeleteDoubtVote removes a vote row (the toggle-off transition).
func DeleteDoubtVote(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Delete(&domain.DoubtVote{}, "id = ?", id).Error
}

// RecountDoubtVotes recomputes the aggregate for a doubt by a full count over
// its current vote rows and writes the counters back onto the doubt row.
// It returns the fresh aggregate.
func RecountDoubtVotes(ctx context.Context, db *gorm.DB, doubtID string) (up, down int, err error) {
	var upCount, downCount int64
	if err = db.WithContext(ctx).
		Model(&domain.DoubtVote{}).
		Where("doubt_id = ? AND type = ?", doubtID, domain.VoteUp).
		Count(&upCount).Error; err != nil {
		return 0, 0, err
	}
	if err = db.WithContext(ctx).
		Model(&domain.DoubtVote{}).
		Where("doubt_id = ? AND type = ?", doubtID, domain.VoteDown).
		Count(&downCount).Error; err != nil {
		return 0, 0, err
	}
	up, down = int(upCount), int(downCount)
	err = db.WithContext(ctx).
		Model(&domain.Doubt{}).
		Where("id = ?", doubtID).
		Updates(map[string]any{
			"upvotes":   up,
			"downvotes": down,
			"score":     up - down,
		}).Error
	return up, down, err
}

// GetAnswerVote returns the voter's active vote row on an answer, or
// ErrNotFound when the voter has no vote.
func GetAnswerVote(ctx context.Context, db *gorm.DB, voterID, answerID string) (*domain.AnswerVote, error) {
	var v domain.AnswerVote
	err := db.WithContext(ctx).
		Where("voter_id = ? AND answer_id = ?", voterID, answerID).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// CreateAnswerVote inserts a vote row for an answer.
func CreateAnswerVote(ctx context.Context, db *gorm.DB, voterID, answerID string, t domain.VoteType) error {
	v := &domain.AnswerVote{
		ID:        uuid.NewString(),
		VoterID:   voterID,
		AnswerID:  answerID,
		Type:      t,
		CreatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(v).Error
}

// UpdateAnswerVoteType switches an existing answer vote to the opposite type.
func UpdateAnswerVoteType(ctx context.Context, db *gorm.DB, id string, t domain.VoteType) error {
	return db.WithContext(ctx).
		Model(&domain.AnswerVote{}).
		Where("id = ?", id).
		Update("type", t).Error
}

// DeleteAnswerVote removes an answer vote row (toggle-off).
func DeleteAnswerVote(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Delete(&domain.AnswerVote{}, "id = ?", id).Error
}

// RecountAnswerVotes mirrors RecountDoubtVotes for answer targets.
func RecountAnswerVotes(ctx context.Context, db *gorm.DB, answerID string) (up, down int, err error) {
	var upCount, downCount int64
	if err = db.WithContext(ctx).
		Model(&domain.AnswerVote{}).
		Where("answer_id = ? AND type = ?", answerID, domain.VoteUp).
		Count(&upCount).Error; err != nil {
		return 0, 0, err
	}
	if err = db.WithContext(ctx).
		Model(&domain.AnswerVote{}).
		Where("answer_id = ? AND type = ?", answerID, domain.VoteDown).
		Count(&downCount).Error; err != nil {
		return 0, 0, err
	}
	up, down = int(upCount), int(downCount)
	err = db.WithContext(ctx).
		Model(&domain.Answer{}).
		Where("id = ?", answerID).
		Updates(map[string]any{
			"upvotes":   up,
			"downvotes": down,
			"score":     up - down,
		}).Error
	return up, down, err
}

// IsNotFound reports whether err is the repo-level "no row" condition.
func IsNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }
