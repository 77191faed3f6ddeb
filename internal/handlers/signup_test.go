package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSignup_CreatesAndReturnsKey_OK(t *testing.T) {
	mc := &fakeKeyStore{}
	h := NewSignupHandler(mc)
	body, _ := json.Marshal(map[string]any{"owner": "user1", "email": "u@example.com"})
	req := httptest.NewRequest(http.MethodPost, "/public/signup", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK { t.Fatalf("status=%d", rec.Code) }
	if mc.calls != 1 { t.Fatalf("Create calls=%d", mc.calls) }
	if mc.last.Key == "" { t.Fatalf("expected random key generated") }
	if !mc.last.Active { t.Fatalf("expected active=true") }
	if mc.last.Owner != "user1" || mc.last.Email != "u@example.com" { t.Fatalf("key=%+v", mc.last) }
}

func TestSignup_MethodNotAllowed(t *testing.T) {
	h := NewSignupHandler(&fakeKeyStore{})
	req := httptest.NewRequest(http.MethodGet, "/public/signup", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed { t.Fatalf("status=%d", rec.Code) }
}

func TestSignup_BadJSON(t *testing.T) {
	h := NewSignupHandler(&fakeKeyStore{})
	req := httptest.NewRequest(http.MethodPost, "/public/signup", bytes.NewReader([]byte("{bad")))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest { t.Fatalf("status=%d", rec.Code) }
}

func TestSignup_StoreError(t *testing.T) {
	h := NewSignupHandler(&fakeKeyStore{fail: true})
	body, _ := json.Marshal(map[string]any{"owner": "user1"})
	req := httptest.NewRequest(http.MethodPost, "/public/signup", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError { t.Fatalf("status=%d", rec.Code) }
}
