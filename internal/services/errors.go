// Package services defines the business logic for the credit economy, voting,
// and subscriptions. This file centralizes common service-level error values so
// that they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

// Identity and account errors.
var (
	// ErrUnauthenticated indicates that no resolvable account identity was
	// supplied. Every gateway entry point fails hard on this.
	ErrUnauthenticated = errors.New("no authenticated account identity")

	// ErrAccountNotFound indicates that the referenced account row does not
	// exist. Entry points that provision accounts lazily never return it.
	ErrAccountNotFound = errors.New("account not found")
)

// Credit and quota errors.
var (
	// ErrNegativeAward is returned when an award-type call carries a negative
	// amount. Spends go through the charge path, never through awards.
	ErrNegativeAward = errors.New("award amount must be non-negative")

	// ErrQuotaExceeded is returned when a FREE-tier account tries to reserve
	// a document slot past its cap. This is a hard stop, unlike a credit
	// denial, because the upstream storage side effect must not proceed.
	ErrQuotaExceeded = errors.New("document quota exceeded")

	// ErrInvalidTier is returned when a tier change names an unknown tier.
	ErrInvalidTier = errors.New("unknown subscription tier")
)

// Forum and voting errors.
var (
	// ErrTargetNotFound indicates that the referenced doubt or answer does
	// not exist.
	ErrTargetNotFound = errors.New("vote target not found")

	// ErrInvalidVoteType is returned when a cast request is neither UP nor
	// DOWN. NONE is a derived state, never a request.
	ErrInvalidVoteType = errors.New("vote type must be UP or DOWN")

	// ErrEmptyTitle is returned when a doubt is posted with a blank title.
	ErrEmptyTitle = errors.New("title is empty")

	// ErrNotDoubtAuthor is returned when someone other than the doubt's
	// author tries to accept an answer.
	ErrNotDoubtAuthor = errors.New("only the doubt author can accept an answer")

	// ErrAlreadyAccepted is returned when an answer has already been
	// accepted. The acceptance award is paid at most once per answer.
	ErrAlreadyAccepted = errors.New("answer already accepted")
)
