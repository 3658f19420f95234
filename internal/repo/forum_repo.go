// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for doubts and
// answers as vote targets and acceptance subjects. Full content management
// of doubts and answers lives outside this service; the posting workflows
// only need rows to exist here.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-forum-backend/internal/domain"
)

// CreateDoubt inserts a new doubt row authored by authorID.
func CreateDoubt(ctx context.Context, db *gorm.DB, authorID, title string) (*domain.Doubt, error) {
	d := &domain.Doubt{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

// CreateAnswer inserts a new answer row for doubtID authored by authorID.
func CreateAnswer(ctx context.Context, db *gorm.DB, doubtID, authorID string) (*domain.Answer, error) {
	a := &domain.Answer{
		ID:        uuid.NewString(),
		DoubtID:   doubtID,
		AuthorID:  authorID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// GetDoubt fetches a doubt by id or returns ErrNotFound.
func GetDoubt(ctx context.Context, db *gorm.DB, id string) (*domain.Doubt, error) {
	var d domain.Doubt
	if err := db.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// GetAnswer fetches an answer by id or returns ErrNotFound.
func GetAnswer(ctx context.Context, db *gorm.DB, id string) (*domain.Answer, error) {
	var a domain.Answer
	if err := db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// MarkAnswerAccepted flips the accepted flag on an answer, but only when it
// is not already set. Returns false when the answer was already accepted (or
// missing); the caller distinguishes the two with a prior GetAnswer.
func MarkAnswerAccepted(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Answer{}).
		Where("id = ? AND accepted = ?", id, false).
		Update("accepted", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
