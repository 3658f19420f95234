package handlers

import (
	"net/http"
	"testing"

	"github.com/tbourn/go-forum-backend/internal/domain"
)

func TestCastDoubtVote_Flow(t *testing.T) {
	r, db := newTestEnv(t)
	db.Create(&domain.Doubt{ID: "d1", AuthorID: "asker", Title: "q"})

	w := doJSON(t, r, http.MethodPost, "/doubts/d1/votes", "v1", `{"type":"UP"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("cast status = %d: %s", w.Code, w.Body.String())
	}
	resp := decode[VoteStateResponse](t, w)
	if resp.State != "UP" || resp.Upvotes != 1 || resp.Score != 1 {
		t.Fatalf("after UP: %+v", resp)
	}

	// Switching direction updates in place.
	w = doJSON(t, r, http.MethodPost, "/doubts/d1/votes", "v1", `{"type":"DOWN"}`, nil)
	resp = decode[VoteStateResponse](t, w)
	if resp.State != "DOWN" || resp.Upvotes != 0 || resp.Downvotes != 1 || resp.Score != -1 {
		t.Fatalf("after switch: %+v", resp)
	}

	// Repeating the direction toggles the vote off.
	w = doJSON(t, r, http.MethodPost, "/doubts/d1/votes", "v1", `{"type":"DOWN"}`, nil)
	resp = decode[VoteStateResponse](t, w)
	if resp.State != "NONE" || resp.Upvotes != 0 || resp.Downvotes != 0 {
		t.Fatalf("after toggle-off: %+v", resp)
	}

	w = doJSON(t, r, http.MethodGet, "/doubts/d1/votes", "v1", "", nil)
	if body := decode[map[string]string](t, w); body["state"] != "NONE" {
		t.Fatalf("state read: %v", body)
	}
}

func TestCastVote_Errors(t *testing.T) {
	r, db := newTestEnv(t)
	db.Create(&domain.Doubt{ID: "d1", AuthorID: "asker", Title: "q"})

	w := doJSON(t, r, http.MethodPost, "/doubts/missing/votes", "v1", `{"type":"UP"}`, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing target status = %d", w.Code)
	}
	w = doJSON(t, r, http.MethodPost, "/doubts/d1/votes", "v1", `{"type":"SIDEWAYS"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad type status = %d", w.Code)
	}
	w = doJSON(t, r, http.MethodPost, "/doubts/d1/votes", "", `{"type":"UP"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no identity status = %d", w.Code)
	}
}

func TestCastAnswerVote_Flow(t *testing.T) {
	r, db := newTestEnv(t)
	db.Create(&domain.Doubt{ID: "d1", AuthorID: "asker", Title: "q"})
	db.Create(&domain.Answer{ID: "a1", DoubtID: "d1", AuthorID: "helper"})

	w := doJSON(t, r, http.MethodPost, "/answers/a1/votes", "v1", `{"type":"UP"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("cast status = %d", w.Code)
	}
	resp := decode[VoteStateResponse](t, w)
	if resp.State != "UP" || resp.Upvotes != 1 {
		t.Fatalf("after UP: %+v", resp)
	}

	w = doJSON(t, r, http.MethodGet, "/answers/a1/votes", "v1", "", nil)
	if body := decode[map[string]string](t, w); body["state"] != "UP" {
		t.Fatalf("state read: %v", body)
	}
}

func TestAcceptAnswer_Flow(t *testing.T) {
	r, db := newTestEnv(t)
	db.Create(&domain.Doubt{ID: "d1", AuthorID: "asker", Title: "q"})
	db.Create(&domain.Answer{ID: "a1", DoubtID: "d1", AuthorID: "helper"})

	// Only the doubt author may accept.
	w := doJSON(t, r, http.MethodPost, "/answers/a1/accept", "stranger", "", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("stranger accept status = %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/answers/a1/accept", "asker", "", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("accept status = %d: %s", w.Code, w.Body.String())
	}

	// The answer author received the fixed award.
	var acct domain.Account
	if err := db.First(&acct, "id = ?", "helper").Error; err != nil {
		t.Fatalf("load helper account: %v", err)
	}
	if acct.Balance != 2 {
		t.Fatalf("helper balance = %d, want 2", acct.Balance)
	}

	// Accepting twice is a conflict and pays nothing more.
	w = doJSON(t, r, http.MethodPost, "/answers/a1/accept", "asker", "", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("second accept status = %d", w.Code)
	}
	db.First(&acct, "id = ?", "helper")
	if acct.Balance != 2 {
		t.Fatalf("helper balance after repeat = %d", acct.Balance)
	}

	w = doJSON(t, r, http.MethodPost, "/answers/missing/accept", "asker", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing answer status = %d", w.Code)
	}
}
