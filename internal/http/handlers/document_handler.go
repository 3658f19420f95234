// Document reservation HTTP handlers.
//
// This file exposes REST endpoints for document slot accounting:
//   - POST   /documents/reservations  (reserve a slot against the tier cap)
//   - DELETE /documents/reservations  (release a slot, floored at zero)
//
// The reservation is a hard gate: a FREE-tier account at its cap gets a 409
// so the upstream storage side effect never happens. Paid tiers are always
// allowed; their count is tracked for display only.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-forum-backend/internal/repo"
	"github.com/tbourn/go-forum-backend/internal/services"
)

// ReservationResponse reports the document count after a reserve or release.
type ReservationResponse struct {
	Allowed       bool `json:"allowed" example:"true"`
	DocumentCount int  `json:"document_count" example:"4"`
}

// ReserveScope is the idempotency scope for document reservations, shared
// with the router's replay lookup.
const ReserveScope = "document:reserve"

// ReserveDocument godoc
// @ID          reserveDocument
// @Summary     Reserve a document slot
// @Description Reserves one document slot for the caller. FREE-tier accounts at their cap get 409 quota_exceeded with nothing mutated.
// @Description Supports idempotency via the Idempotency-Key header.
// @Tags        Documents
// @Produce     json
//
// @Param       X-User-ID        header  string  true  "Account ID"  example(user123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"
//
// @Success     201  {object}  handlers.ReservationResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Missing identity"
// @Failure     409  {object}  handlers.ErrorResponse  "Document quota exceeded"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /documents/reservations [post]
func (h *Handlers) ReserveDocument(c *gin.Context) {
	ctx := c.Request.Context()
	uid, okUser := requireUser(c)
	if !okUser {
		return
	}

	// Idempotency (replay path) – a retried reservation must not consume a
	// second slot; the count comes from the record snapshot.
	idemKey := idempotencyKey(c)
	if idemKey != "" {
		if db := h.gatewayDB(); db != nil {
			if rec, err := repo.GetIdempotency(ctx, db, uid, ReserveScope, idemKey, time.Now().UTC()); err == nil && rec != nil {
				c.Header("Idempotency-Replayed", "true")
				ok(c, http.StatusCreated, ReservationResponse{Allowed: true, DocumentCount: rec.ResultValue})
				return
			}
		}
	}

	res, err := h.creditSvc.ReserveDocumentUpload(ctx, uid)
	if err != nil {
		if errors.Is(err, services.ErrQuotaExceeded) {
			fail(c, http.StatusConflict, ErrCodeQuotaExceeded, "document quota exceeded")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	if idemKey != "" {
		if db := h.gatewayDB(); db != nil {
			ttl := 24 * time.Hour
			_, _ = repo.CreateIdempotency(ctx, db, uid, ReserveScope, idemKey, "", http.StatusCreated, res.NewCount, ttl)
		}
	}

	ok(c, http.StatusCreated, ReservationResponse{Allowed: res.Allowed, DocumentCount: res.NewCount})
}

// ReleaseDocument godoc
// @ID          releaseDocument
// @Summary     Release a document slot
// @Description Returns one document slot to the caller, flooring the count at zero. Never fails for business reasons.
// @Tags        Documents
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "Account ID"  example(user123)
//
// @Success     200  {object}  handlers.ReservationResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Missing identity"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /documents/reservations [delete]
func (h *Handlers) ReleaseDocument(c *gin.Context) {
	uid, okUser := requireUser(c)
	if !okUser {
		return
	}

	n, err := h.creditSvc.ReleaseDocumentUpload(c.Request.Context(), uid)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ReservationResponse{Allowed: true, DocumentCount: n})
}
