package handlers

import (
	"net/http"
	"testing"

	"github.com/tbourn/go-forum-backend/internal/domain"
)

func TestChangeTier_UpgradeGrantsCredits(t *testing.T) {
	r, db := newTestEnv(t)

	w := doJSON(t, r, http.MethodPut, "/subscription", "u1", `{"tier":"STUDENT_PRO"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	resp := decode[ChangeTierResponse](t, w)
	if resp.Tier != "STUDENT_PRO" || resp.Balance != 500 {
		t.Fatalf("body: %+v", resp)
	}

	var entries []domain.LedgerEntry
	db.Where("account_id = ?", "u1").Find(&entries)
	if len(entries) != 1 || entries[0].EventType != domain.EventSubscriptionGrant {
		t.Fatalf("ledger: %+v", entries)
	}
}

func TestChangeTier_Validation(t *testing.T) {
	r, _ := newTestEnv(t)

	w := doJSON(t, r, http.MethodPut, "/subscription", "u1", `{"tier":"GOLD"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown tier status = %d", w.Code)
	}
	w = doJSON(t, r, http.MethodPut, "/subscription", "", `{"tier":"PREMIUM"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no identity status = %d", w.Code)
	}
}
