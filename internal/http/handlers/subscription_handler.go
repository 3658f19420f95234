// Subscription HTTP handlers.
//
// This file exposes the REST endpoint for tier changes:
//   - PUT /subscription  (set the caller's tier, applying the tier's grant)
//
// Every tier-set call is its own grant event; repeating an upgrade grants
// again. Downgrades to FREE carry no grant.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-forum-backend/internal/domain"
	"github.com/tbourn/go-forum-backend/internal/services"
)

// ChangeTierRequest is the JSON payload for setting the caller's tier.
type ChangeTierRequest struct {
	// Tier is the target subscription tier.
	Tier string `json:"tier" binding:"required,oneof=FREE STUDENT_PRO PREMIUM" example:"STUDENT_PRO"`
}

// ChangeTierResponse reports the account state after the change.
type ChangeTierResponse struct {
	AccountID string `json:"account_id" example:"user123"`
	Tier      string `json:"tier" example:"STUDENT_PRO"`
	Balance   int    `json:"balance" example:"500"`
}

// ChangeTier godoc
// @ID          changeTier
// @Summary     Change subscription tier
// @Description Sets the caller's tier and credits the tier's one-time grant in the same transaction.
// @Tags        Subscription
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "Account ID"  example(user123)
// @Param       body       body    handlers.ChangeTierRequest  true  "Tier payload"
//
// @Success     200  {object}  handlers.ChangeTierResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid tier"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing identity"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /subscription [put]
func (h *Handlers) ChangeTier(c *gin.Context) {
	uid, okUser := requireUser(c)
	if !okUser {
		return
	}

	var req ChangeTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "tier must be FREE, STUDENT_PRO, or PREMIUM")
		return
	}

	acct, err := h.subSvc.ChangeTier(c.Request.Context(), uid, domain.Tier(req.Tier))
	if err != nil {
		if errors.Is(err, services.ErrInvalidTier) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "tier must be FREE, STUDENT_PRO, or PREMIUM")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ChangeTierResponse{
		AccountID: acct.ID,
		Tier:      string(acct.Tier),
		Balance:   acct.Balance,
	})
}
