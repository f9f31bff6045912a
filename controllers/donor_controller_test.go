package controllers_test

import (
	"net/http"
	"testing"

	"github.com/bloodconnect/bloodconnect-server/config"
	"github.com/bloodconnect/bloodconnect-server/models"
)

func TestAcceptFlow(t *testing.T) {
	r := setupTestServer(t)

	_, requesterToken := createUser(t, "requester", "")
	_, d1Token := createUser(t, "donor1", "O-")
	_, d2Token := createUser(t, "donor2", "A+")

	shortID := createRequestFor(t, r, requesterToken, "O-", models.UrgencyEmergency)

	// compatible donor accepts
	roomID, w := acceptRequest(t, r, d1Token, shortID)
	if w.Code != http.StatusCreated {
		t.Fatalf("accept by O- donor returned %d: %s", w.Code, w.Body.String())
	}
	if roomID == "" {
		t.Fatalf("accept response has no room id")
	}

	var entry models.AcceptedDonor
	if err := config.DB.Where("unique_id = ?", roomID).First(&entry).Error; err != nil {
		t.Fatalf("ledger entry not persisted: %v", err)
	}
	if entry.Status != models.DonorPending {
		t.Fatalf("new ledger entry status = %q, want Pending", entry.Status)
	}

	// only O- can give to O-: the A+ donor is rejected
	_, w = acceptRequest(t, r, d2Token, shortID)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("accept by incompatible donor returned %d, want 400", w.Code)
	}

	// second accept from the same donor hits the unique index
	_, w = acceptRequest(t, r, d1Token, shortID)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate accept returned %d, want 409", w.Code)
	}
	var count int64
	config.DB.Model(&models.AcceptedDonor{}).Where("unique_id = ?", roomID).Count(&count)
	if count != 1 {
		t.Fatalf("ledger holds %d entries for the pair, want exactly 1", count)
	}
}

func TestAcceptOwnRequestForbidden(t *testing.T) {
	r := setupTestServer(t)

	// the requester is also a registered, compatible donor — still forbidden
	_, token := createUser(t, "selfish", "O-")
	shortID := createRequestFor(t, r, token, "O-", models.UrgencyNotUrgent)

	_, w := acceptRequest(t, r, token, shortID)
	if w.Code != http.StatusForbidden {
		t.Fatalf("self-accept returned %d, want 403", w.Code)
	}
}

func TestAcceptWithoutBloodGroup(t *testing.T) {
	r := setupTestServer(t)

	_, requesterToken := createUser(t, "requester", "")
	_, noProfileToken := createUser(t, "lurker", "")

	shortID := createRequestFor(t, r, requesterToken, "AB+", models.UrgencyEmergency)

	_, w := acceptRequest(t, r, noProfileToken, shortID)
	if w.Code != http.StatusForbidden {
		t.Fatalf("accept without donor profile returned %d, want 403", w.Code)
	}
}

func TestAcceptUnknownRequest(t *testing.T) {
	r := setupTestServer(t)

	_, token := createUser(t, "donor", "O-")
	_, w := acceptRequest(t, r, token, "nope")
	if w.Code != http.StatusNotFound {
		t.Fatalf("accept of unknown request returned %d, want 404", w.Code)
	}
}

func TestFinalizeFlow(t *testing.T) {
	r := setupTestServer(t)

	_, requesterToken := createUser(t, "requester", "")
	_, d1Token := createUser(t, "donor1", "O-")
	donor2, d2Token := createUser(t, "donor2", "O-")

	shortID := createRequestFor(t, r, requesterToken, "A+", models.UrgencyEmergency)

	room1, w := acceptRequest(t, r, d1Token, shortID)
	if w.Code != http.StatusCreated {
		t.Fatalf("accept 1 failed: %d %s", w.Code, w.Body.String())
	}
	room2, w := acceptRequest(t, r, d2Token, shortID)
	if w.Code != http.StatusCreated {
		t.Fatalf("accept 2 failed: %d %s", w.Code, w.Body.String())
	}

	// a donor cannot finalize
	w = doJSON(t, r, http.MethodPost, "/api/donors/"+room1+"/finalize", d1Token, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("finalize by non-requester returned %d, want 403", w.Code)
	}

	// requester picks donor1
	w = doJSON(t, r, http.MethodPost, "/api/donors/"+room1+"/finalize", requesterToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("finalize returned %d: %s", w.Code, w.Body.String())
	}

	// the three mutations landed together
	var req models.Request
	if err := config.DB.Where("short_id = ?", shortID).First(&req).Error; err != nil {
		t.Fatalf("request lookup failed: %v", err)
	}
	if req.Status != models.RequestSuccess {
		t.Fatalf("request status = %q, want Success", req.Status)
	}

	var chosen, sibling models.AcceptedDonor
	if err := config.DB.Where("unique_id = ?", room1).First(&chosen).Error; err != nil {
		t.Fatalf("chosen entry lookup failed: %v", err)
	}
	if chosen.Status != models.DonorFinalized {
		t.Fatalf("chosen entry status = %q, want Finalized", chosen.Status)
	}
	if err := config.DB.Where("unique_id = ?", room2).First(&sibling).Error; err != nil {
		t.Fatalf("sibling entry lookup failed: %v", err)
	}
	if sibling.Status != models.DonorRejected {
		t.Fatalf("sibling entry status = %q, want Rejected (no separate call)", sibling.Status)
	}
	if sibling.DonorID != donor2.ID || chosen.DonorID == donor2.ID {
		t.Fatalf("entries attributed to the wrong donors")
	}

	// second finalize loses with AlreadyFinalized
	w = doJSON(t, r, http.MethodPost, "/api/donors/"+room2+"/finalize", requesterToken, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("second finalize returned %d, want 409", w.Code)
	}

	var finalized int64
	config.DB.Model(&models.AcceptedDonor{}).
		Where("request_id = ? AND status = ?", chosen.RequestID, models.DonorFinalized).
		Count(&finalized)
	if finalized != 1 {
		t.Fatalf("ledger shows %d Finalized entries, want exactly 1", finalized)
	}

	// accepting a closed request fails
	_, d3Token := createUser(t, "donor3", "O-")
	_, w = acceptRequest(t, r, d3Token, shortID)
	if w.Code != http.StatusConflict {
		t.Fatalf("accept after finalize returned %d, want 409", w.Code)
	}

	// pending-donor list is now empty
	w = doJSON(t, r, http.MethodGet, "/api/requests/"+shortID+"/donors", requesterToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("donors list returned %d: %s", w.Code, w.Body.String())
	}
	var donors []map[string]interface{}
	decodeBody(t, w, &donors)
	if len(donors) != 0 {
		t.Fatalf("pending donors after finalize = %d, want 0", len(donors))
	}
}

func TestListAcceptedDonorsRequesterOnly(t *testing.T) {
	r := setupTestServer(t)

	_, requesterToken := createUser(t, "requester", "")
	_, donorToken := createUser(t, "donor1", "O-")

	shortID := createRequestFor(t, r, requesterToken, "B+", models.UrgencyNotUrgent)
	if _, w := acceptRequest(t, r, donorToken, shortID); w.Code != http.StatusCreated {
		t.Fatalf("accept failed: %d", w.Code)
	}

	// the donor is not the requester
	w := doJSON(t, r, http.MethodGet, "/api/requests/"+shortID+"/donors", donorToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("donors list for non-requester returned %d, want 403", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/requests/"+shortID+"/donors", requesterToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("donors list returned %d: %s", w.Code, w.Body.String())
	}
	var donors []struct {
		DonorName string `json:"donor_name"`
		Status    string `json:"status"`
	}
	decodeBody(t, w, &donors)
	if len(donors) != 1 || donors[0].DonorName != "donor1" || donors[0].Status != models.DonorPending {
		t.Fatalf("unexpected donors list: %s", w.Body.String())
	}
}

func TestFinalizeUnknownEntry(t *testing.T) {
	r := setupTestServer(t)

	_, token := createUser(t, "requester", "")
	w := doJSON(t, r, http.MethodPost, "/api/donors/missing/finalize", token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("finalize of unknown entry returned %d, want 404", w.Code)
	}
}
