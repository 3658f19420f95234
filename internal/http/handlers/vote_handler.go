// Vote HTTP handlers.
//
// This file exposes REST endpoints for voting on doubts and answers:
//   - POST /doubts/{id}/votes    (cast/toggle a vote on a doubt)
//   - GET  /doubts/{id}/votes    (read the caller's vote state)
//   - POST /answers/{id}/votes   (cast/toggle a vote on an answer)
//   - GET  /answers/{id}/votes   (read the caller's vote state)
//
// A cast of the caller's current type toggles the vote off; a cast of the
// opposite type switches it in place. The response always carries the fresh
// aggregate recomputed inside the mutating transaction.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-forum-backend/internal/domain"
	"github.com/tbourn/go-forum-backend/internal/services"
)

// CastVoteRequest is the JSON payload for casting a vote.
type CastVoteRequest struct {
	// Type is the requested vote direction. Casting the current direction
	// again removes the vote.
	Type string `json:"type" binding:"required,oneof=UP DOWN" example:"UP"`
}

// VoteStateResponse reports the caller's vote state and the target's
// aggregate counters.
type VoteStateResponse struct {
	State     string `json:"state" example:"UP"`
	Upvotes   int    `json:"upvotes" example:"12"`
	Downvotes int    `json:"downvotes" example:"2"`
	Score     int    `json:"score" example:"10"`
}

// castVote runs the shared transport flow for both target kinds.
func (h *Handlers) castVote(c *gin.Context, cast func(voterID, targetID string, t domain.VoteType) (*services.VoteOutcome, error)) {
	uid, okUser := requireUser(c)
	if !okUser {
		return
	}

	var req CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "type must be UP or DOWN")
		return
	}

	out, err := cast(uid, c.Param("id"), domain.VoteType(req.Type))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTargetNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "vote target not found")
		case errors.Is(err, services.ErrInvalidVoteType):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "type must be UP or DOWN")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeVoteFailed, err.Error())
		}
		return
	}

	ok(c, http.StatusOK, VoteStateResponse{
		State:     string(out.State),
		Upvotes:   out.Upvotes,
		Downvotes: out.Downvotes,
		Score:     out.Score,
	})
}

// getVoteState runs the shared read flow for both target kinds.
func (h *Handlers) getVoteState(c *gin.Context, read func(voterID, targetID string) (domain.VoteType, error)) {
	uid, okUser := requireUser(c)
	if !okUser {
		return
	}

	state, err := read(uid, c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrTargetNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "vote target not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"state": string(state)})
}

// CastDoubtVote godoc
// @ID          castDoubtVote
// @Summary     Cast or toggle a vote on a doubt
// @Description Casts UP or DOWN on the doubt. Repeating the current direction removes the vote; the opposite direction switches it in place.
// @Tags        Votes
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "Account ID"       example(user123)
// @Param       id         path    string  true  "Doubt ID (UUID)"  format(uuid)
// @Param       body       body    handlers.CastVoteRequest  true  "Vote payload"
//
// @Success     200  {object}  handlers.VoteStateResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid payload"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing identity"
// @Failure     404  {object}  handlers.ErrorResponse  "Doubt not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /doubts/{id}/votes [post]
func (h *Handlers) CastDoubtVote(c *gin.Context) {
	h.castVote(c, func(voterID, targetID string, t domain.VoteType) (*services.VoteOutcome, error) {
		return h.voteSvc.CastDoubtVote(c.Request.Context(), voterID, targetID, t)
	})
}

// GetDoubtVoteState godoc
// @ID          getDoubtVoteState
// @Summary     Read the caller's vote on a doubt
// @Description Returns UP, DOWN, or NONE for UI hydration.
// @Tags        Votes
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "Account ID"       example(user123)
// @Param       id         path    string  true  "Doubt ID (UUID)"  format(uuid)
//
// @Success     200  {object}  map[string]string
// @Failure     401  {object}  handlers.ErrorResponse  "Missing identity"
// @Failure     404  {object}  handlers.ErrorResponse  "Doubt not found"
// @Router      /doubts/{id}/votes [get]
func (h *Handlers) GetDoubtVoteState(c *gin.Context) {
	h.getVoteState(c, func(voterID, targetID string) (domain.VoteType, error) {
		return h.voteSvc.GetDoubtVoteState(c.Request.Context(), voterID, targetID)
	})
}

// CastAnswerVote godoc
// @ID          castAnswerVote
// @Summary     Cast or toggle a vote on an answer
// @Description Casts UP or DOWN on the answer with the same toggle semantics as doubt votes.
// @Tags        Votes
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "Account ID"        example(user123)
// @Param       id         path    string  true  "Answer ID (UUID)"  format(uuid)
// @Param       body       body    handlers.CastVoteRequest  true  "Vote payload"
//
// @Success     200  {object}  handlers.VoteStateResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid payload"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing identity"
// @Failure     404  {object}  handlers.ErrorResponse  "Answer not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /answers/{id}/votes [post]
func (h *Handlers) CastAnswerVote(c *gin.Context) {
	h.castVote(c, func(voterID, targetID string, t domain.VoteType) (*services.VoteOutcome, error) {
		return h.voteSvc.CastAnswerVote(c.Request.Context(), voterID, targetID, t)
	})
}

// GetAnswerVoteState godoc
// @ID          getAnswerVoteState
// @Summary     Read the caller's vote on an answer
// @Description Returns UP, DOWN, or NONE for UI hydration.
// @Tags        Votes
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "Account ID"        example(user123)
// @Param       id         path    string  true  "Answer ID (UUID)"  format(uuid)
//
// @Success     200  {object}  map[string]string
// @Failure     401  {object}  handlers.ErrorResponse  "Missing identity"
// @Failure     404  {object}  handlers.ErrorResponse  "Answer not found"
// @Router      /answers/{id}/votes [get]
func (h *Handlers) GetAnswerVoteState(c *gin.Context) {
	h.getVoteState(c, func(voterID, targetID string) (domain.VoteType, error) {
		return h.voteSvc.GetAnswerVoteState(c.Request.Context(), voterID, targetID)
	})
}

// AcceptAnswer godoc
// @ID          acceptAnswer
// @Summary     Accept an answer
// @Description Marks the answer as accepted and awards the acceptance credit to its author. Only the doubt's author may accept, and only once.
// @Tags        Votes
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "Account ID (must be the doubt author)"  example(user123)
// @Param       id         path    string  true  "Answer ID (UUID)"  format(uuid)
//
// @Success     204  {string}  string  "No Content"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing identity"
// @Failure     403  {object}  handlers.ErrorResponse  "Caller is not the doubt author"
// @Failure     404  {object}  handlers.ErrorResponse  "Answer not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Answer already accepted"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /answers/{id}/accept [post]
func (h *Handlers) AcceptAnswer(c *gin.Context) {
	uid, okUser := requireUser(c)
	if !okUser {
		return
	}

	if err := h.forumSvc.AcceptAnswer(c.Request.Context(), uid, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, services.ErrTargetNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "answer not found")
		case errors.Is(err, services.ErrNotDoubtAuthor):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "only the doubt author can accept an answer")
		case errors.Is(err, services.ErrAlreadyAccepted):
			fail(c, http.StatusConflict, ErrCodeConflict, "answer already accepted")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	noContent(c)
}
