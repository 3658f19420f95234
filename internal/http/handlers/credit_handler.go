// Credit HTTP handlers.
//
// This file exposes REST endpoints for the credit economy:
//   - GET  /credits/balance   (account summary: tier, balance, document count)
//   - POST /credits/charge    (charge an operation against the balance)
//   - GET  /credits/history   (paginated ledger, ETag support)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous successful
// charge exists for (user, operation scope, key), the handler replays the
// recorded outcome and sets `Idempotency-Replayed: true` instead of spending
// again.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-forum-backend/internal/domain"
	"github.com/tbourn/go-forum-backend/internal/repo"
	"github.com/tbourn/go-forum-backend/internal/services"
	"github.com/tbourn/go-forum-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// CreditService defines the credit gateway operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type CreditService interface {
	// GetAccount returns the account summary, provisioning on first touch.
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)
	// ChargeForOperation attempts a spend; denial is a structured result.
	ChargeForOperation(ctx context.Context, accountID, operation string) (*services.ChargeResult, error)
	// ReserveDocumentUpload reserves a document slot against the tier cap.
	ReserveDocumentUpload(ctx context.Context, accountID string) (*services.ReserveResult, error)
	// ReleaseDocumentUpload returns a document slot, floored at zero.
	ReleaseDocumentUpload(ctx context.Context, accountID string) (int, error)
	// GetHistory returns a page of ledger entries and the total count.
	GetHistory(ctx context.Context, accountID string, page, pageSize int) ([]domain.LedgerEntry, int64, error)
}

// VoteService defines vote casting and vote-state reads.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type VoteService interface {
	CastDoubtVote(ctx context.Context, voterID, doubtID string, requested domain.VoteType) (*services.VoteOutcome, error)
	CastAnswerVote(ctx context.Context, voterID, answerID string, requested domain.VoteType) (*services.VoteOutcome, error)
	GetDoubtVoteState(ctx context.Context, voterID, doubtID string) (domain.VoteType, error)
	GetAnswerVoteState(ctx context.Context, voterID, answerID string) (domain.VoteType, error)
}

// SubscriptionService defines tier changes consumed by HTTP handlers.
type SubscriptionService interface {
	// ChangeTier sets the tier and applies the tier's credit grant.
	ChangeTier(ctx context.Context, accountID string, newTier domain.Tier) (*domain.Account, error)
}

// ForumService defines the answer-acceptance workflow consumed by HTTP
// handlers.
type ForumService interface {
	// AcceptAnswer marks an answer accepted and awards its author.
	AcceptAnswer(ctx context.Context, callerID, answerID string) error
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for credits, votes, documents, and
// subscriptions. It depends on abstract service interfaces to keep transport
// concerns separate from business logic.
type Handlers struct {
	creditSvc CreditService
	voteSvc   VoteService
	subSvc    SubscriptionService
	forumSvc  ForumService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(creditSvc CreditService, voteSvc VoteService, subSvc SubscriptionService, forumSvc ForumService) *Handlers {
	return &Handlers{creditSvc: creditSvc, voteSvc: voteSvc, subSvc: subSvc, forumSvc: forumSvc}
}

// userID extracts the authenticated account id from Gin context (set by
// upstream middleware), falling back to the "X-User-ID" header. An empty
// return means the request carries no identity; every endpoint rejects that
// with 401 rather than inventing a caller.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return ""
}

// requireUser resolves the caller identity or aborts with 401.
func requireUser(c *gin.Context) (string, bool) {
	uid := userID(c)
	if uid == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthenticated, "authenticated identity required")
		return "", false
	}
	return uid, true
}

//
// DTOs
//

// BalanceResponse is the account summary returned by GET /credits/balance.
type BalanceResponse struct {
	AccountID     string `json:"account_id" example:"user123"`
	Tier          string `json:"tier" example:"FREE"`
	Balance       int    `json:"balance" example:"42"`
	DocumentCount int    `json:"document_count" example:"3"`
}

// ChargeRequest is the JSON payload for charging an operation.
type ChargeRequest struct {
	// Operation names the action being paid for (e.g. quiz, mindmap, chat).
	// Unlisted operations are charged the default cost.
	Operation string `json:"operation" binding:"required,min=1" example:"quiz"`
}

// ChargeResponse reports the spend outcome. Allowed=false with
// NeedsUpgrade=true is a normal business outcome, not an error.
type ChargeResponse struct {
	Allowed          bool   `json:"allowed" example:"true"`
	Cost             int    `json:"cost" example:"3"`
	RemainingBalance int    `json:"remaining_balance" example:"7"`
	NeedsUpgrade     bool   `json:"needs_upgrade" example:"false"`
	LedgerEntryID    string `json:"ledger_entry_id,omitempty"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// HistoryResponse wraps a page of ledger entries and pagination information.
type HistoryResponse struct {
	Entries    []domain.LedgerEntry `json:"entries"`
	Pagination Pagination           `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// gatewayDB discovers the concrete service's DB handle for best-effort
// transport concerns (ETag stats, idempotency records). Returns nil when the
// service is a test double.
func (h *Handlers) gatewayDB() *gorm.DB {
	if svc, ok := h.creditSvc.(*services.CreditService); ok {
		return svc.DB
	}
	return nil
}

// idempotencyKey reads a client-supplied Idempotency-Key header, if any.
func idempotencyKey(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader("Idempotency-Key"))
}

// ChargeScope names the idempotency scope for a charge of the given
// (lowercased) operation. The router's replay lookup must derive the same
// scope the handler stores under, so the convention lives here.
func ChargeScope(operation string) string {
	return "charge:" + operation
}

//
// Handlers
//

// GetBalance godoc
// @ID          getBalance
// @Summary     Get account summary
// @Description Returns the caller's tier, credit balance, and document count. Accounts are provisioned on first touch.
// @Tags        Credits
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "Account ID"  example(user123)
//
// @Success     200  {object}  handlers.BalanceResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Missing identity"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /credits/balance [get]
func (h *Handlers) GetBalance(c *gin.Context) {
	uid, okUser := requireUser(c)
	if !okUser {
		return
	}

	acct, err := h.creditSvc.GetAccount(c.Request.Context(), uid)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, BalanceResponse{
		AccountID:     acct.ID,
		Tier:          string(acct.Tier),
		Balance:       acct.Balance,
		DocumentCount: acct.DocumentCount,
	})
}

// Charge godoc
// @ID          chargeForOperation
// @Summary     Charge an operation against the balance
// @Description Looks up the operation's cost and attempts the spend. Paid tiers are always allowed; FREE-tier denials return allowed=false with needs_upgrade=true and mutate nothing.
// @Description Supports idempotency via the Idempotency-Key header (same key → recorded outcome replayed).
// @Tags        Credits
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  true  "Account ID"  example(user123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"
// @Param       body             body    handlers.ChargeRequest  true  "Charge payload"
//
// @Success     200  {object}  handlers.ChargeResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid payload"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing identity"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /credits/charge [post]
func (h *Handlers) Charge(c *gin.Context) {
	ctx := c.Request.Context()
	uid, okUser := requireUser(c)
	if !okUser {
		return
	}

	var req ChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "operation required")
		return
	}
	operation := strings.ToLower(strings.TrimSpace(req.Operation))
	if operation == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "operation required")
		return
	}
	scope := ChargeScope(operation)

	// Idempotency (replay path) – return the recorded spend, do not re-spend.
	// The cost comes from the original ledger entry and the remaining balance
	// from the record snapshot, so a retried request sees the original body.
	idemKey := idempotencyKey(c)
	if idemKey != "" {
		if db := h.gatewayDB(); db != nil {
			if rec, err := repo.GetIdempotency(ctx, db, uid, scope, idemKey, time.Now().UTC()); err == nil && rec != nil {
				entry, err2 := repo.GetLedgerEntry(ctx, db, rec.RefID)
				if err2 != nil {
					fail(c, http.StatusInternalServerError, ErrCodeInternal, err2.Error())
					return
				}
				c.Header("Idempotency-Replayed", "true")
				ok(c, http.StatusOK, ChargeResponse{
					Allowed:          true,
					Cost:             -entry.Points,
					RemainingBalance: rec.ResultValue,
					LedgerEntryID:    rec.RefID,
				})
				return
			}
		}
	}

	res, err := h.creditSvc.ChargeForOperation(ctx, uid, operation)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeChargeFailed, err.Error())
		return
	}

	// Idempotency (store path) – only spends that wrote a ledger entry are
	// worth replaying; denials and unlimited-tier charges are side-effect free.
	if idemKey != "" && res.Allowed && res.LedgerEntryID != "" {
		if db := h.gatewayDB(); db != nil {
			ttl := 24 * time.Hour
			_, _ = repo.CreateIdempotency(ctx, db, uid, scope, idemKey, res.LedgerEntryID, http.StatusOK, res.RemainingBalance, ttl)
		}
	}

	ok(c, http.StatusOK, ChargeResponse{
		Allowed:          res.Allowed,
		Cost:             res.Cost,
		RemainingBalance: res.RemainingBalance,
		NeedsUpgrade:     res.NeedsUpgrade,
		LedgerEntryID:    res.LedgerEntryID,
	})
}

// GetHistory godoc
// @ID          getCreditHistory
// @Summary     List credit ledger entries (paginated)
// @Description Returns a page of the caller's ledger, most recent first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Credits
// @Produce     json
//
// @Param       X-User-ID      header  string  true  "Account ID"                  example(user123)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.HistoryResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     401  {object} handlers.ErrorResponse "Missing identity"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /credits/history [get]
func (h *Handlers) GetHistory(c *gin.Context) {
	ctx := c.Request.Context()
	uid, okUser := requireUser(c)
	if !okUser {
		return
	}
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort). The ledger is append-only, so
	// (count, max created_at) pins the result set exactly.
	if db := h.gatewayDB(); db != nil {
		count, maxTS, err := repo.LedgerStats(ctx, db, uid)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"ledger:%s:%d:%d"`, uid, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.creditSvc.GetHistory(ctx, uid, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, HistoryResponse{
		Entries: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}
