package handlers

import (
	"net/http"
	"testing"

	"github.com/tbourn/go-forum-backend/internal/config"
	"github.com/tbourn/go-forum-backend/internal/domain"
)

func TestReserveDocument_FreeCap(t *testing.T) {
	r, db := newTestEnv(t)
	db.Create(&domain.Account{ID: "u1", Tier: domain.TierFree, DocumentCount: config.FreeDocumentLimit - 1})

	w := doJSON(t, r, http.MethodPost, "/documents/reservations", "u1", "", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	resp := decode[ReservationResponse](t, w)
	if !resp.Allowed || resp.DocumentCount != config.FreeDocumentLimit {
		t.Fatalf("reserve: %+v", resp)
	}

	// At the cap the reservation is a hard stop.
	w = doJSON(t, r, http.MethodPost, "/documents/reservations", "u1", "", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("status at cap = %d, want 409", w.Code)
	}
	er := decode[ErrorResponse](t, w)
	if er.Code != ErrCodeQuotaExceeded {
		t.Fatalf("code = %q", er.Code)
	}

	var acct domain.Account
	db.First(&acct, "id = ?", "u1")
	if acct.DocumentCount != config.FreeDocumentLimit {
		t.Fatalf("count after denial = %d", acct.DocumentCount)
	}
}

func TestReserveDocument_PaidUnlimited(t *testing.T) {
	r, db := newTestEnv(t)
	db.Create(&domain.Account{ID: "u1", Tier: domain.TierPremium, DocumentCount: 50})

	w := doJSON(t, r, http.MethodPost, "/documents/reservations", "u1", "", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode[ReservationResponse](t, w)
	if resp.DocumentCount != 51 {
		t.Fatalf("count = %d, want 51", resp.DocumentCount)
	}
}

func TestReserveDocument_IdempotentReplay(t *testing.T) {
	r, db := newTestEnv(t)
	db.Create(&domain.Account{ID: "u1", Tier: domain.TierFree, DocumentCount: 0})
	hdr := map[string]string{"Idempotency-Key": "k-1"}

	w := doJSON(t, r, http.MethodPost, "/documents/reservations", "u1", "", hdr)
	if w.Code != http.StatusCreated {
		t.Fatalf("first reserve: %d", w.Code)
	}

	// An unrelated reservation moves the live count to 2.
	if w := doJSON(t, r, http.MethodPost, "/documents/reservations", "u1", "", nil); w.Code != http.StatusCreated {
		t.Fatalf("interleaved reserve: %d", w.Code)
	}

	// The retry must not consume a third slot and reports the count recorded
	// at reserve time, not the live one.
	w = doJSON(t, r, http.MethodPost, "/documents/reservations", "u1", "", hdr)
	if w.Code != http.StatusCreated || w.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("replay: status=%d header=%q", w.Code, w.Header().Get("Idempotency-Replayed"))
	}
	resp := decode[ReservationResponse](t, w)
	if resp.DocumentCount != 1 {
		t.Fatalf("count after replay = %d, want 1", resp.DocumentCount)
	}

	var acct domain.Account
	db.First(&acct, "id = ?", "u1")
	if acct.DocumentCount != 2 {
		t.Fatalf("live count = %d, want 2", acct.DocumentCount)
	}
}

func TestReleaseDocument_Floor(t *testing.T) {
	r, db := newTestEnv(t)
	db.Create(&domain.Account{ID: "u1", Tier: domain.TierFree, DocumentCount: 1})

	w := doJSON(t, r, http.MethodDelete, "/documents/reservations", "u1", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if resp := decode[ReservationResponse](t, w); resp.DocumentCount != 0 {
		t.Fatalf("count = %d, want 0", resp.DocumentCount)
	}

	// Releasing at zero stays at zero.
	w = doJSON(t, r, http.MethodDelete, "/documents/reservations", "u1", "", nil)
	if resp := decode[ReservationResponse](t, w); resp.DocumentCount != 0 {
		t.Fatalf("count at floor = %d, want 0", resp.DocumentCount)
	}
}
