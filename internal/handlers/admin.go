package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/example/calcapi/internal/auth"
	"github.com/example/calcapi/internal/types"
	"github.com/example/calcapi/pkg/jsonutil"
)

// AdminStore is what the admin endpoints need from the key store.
type AdminStore interface {
	auth.KeyIssuer
	auth.KeyRevoker
}

// AdminHandler serves the admin-only key endpoints, guarded by X-Admin-Token.
type AdminHandler struct {
	Store      AdminStore
	AdminToken string
}

func NewAdminHandler(store AdminStore, adminToken string) *AdminHandler {
	return &AdminHandler{Store: store, AdminToken: adminToken}
}

// createKeyRequest creates Key, or a random key when Key is empty.
type createKeyRequest struct {
	Key   string `json:"key"`
	Owner string `json:"owner"`
	Email string `json:"email"`
}

type keyResponse struct {
	Key     string `json:"key"`
	Active  bool   `json:"active"`
	Owner   string `json:"owner,omitempty"`
	Email   string `json:"email,omitempty"`
	Created string `json:"created_at"`
}

type revokeKeyRequest struct {
	Key string `json:"key"`
}

func (h *AdminHandler) authorized(r *http.Request) bool {
	got := r.Header.Get("X-Admin-Token")
	return h.AdminToken != "" && subtle.ConstantTimeCompare([]byte(got), []byte(h.AdminToken)) == 1
}

// guard rejects anything that is not an authorized POST.
func (h *AdminHandler) guard(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		jsonutil.Error(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	if !h.authorized(r) {
		jsonutil.Error(w, http.StatusUnauthorized, "unauthorized")
		return false
	}
	return true
}

// CreateKey handles POST /admin/create-key.
func (h *AdminHandler) CreateKey(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, r) {
		return
	}
	var req createKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, "bad request")
		return
	}
	key := req.Key
	if key == "" {
		var err error
		if key, err = auth.NewKey(); err != nil {
			jsonutil.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	if err := h.Store.Create(r.Context(), auth.Key{Key: key, Owner: req.Owner, Email: req.Email, Active: true}); err != nil {
		jsonutil.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	zerolog.Ctx(r.Context()).Info().Str("event", "key_created").Str("key", auth.HashPrefix(key)).Str("owner", req.Owner).Msg("")
	jsonutil.JSON(w, http.StatusOK, keyResponse{
		Key:     key,
		Active:  true,
		Owner:   req.Owner,
		Email:   req.Email,
		Created: types.NowRFC3339(),
	})
}

// RevokeKey handles POST /admin/revoke-key.
func (h *AdminHandler) RevokeKey(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, r) {
		return
	}
	var req revokeKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" {
		jsonutil.Error(w, http.StatusBadRequest, "bad request")
		return
	}
	found, err := h.Store.Revoke(r.Context(), req.Key)
	if err != nil {
		jsonutil.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		jsonutil.Error(w, http.StatusNotFound, "unknown key")
		return
	}
	zerolog.Ctx(r.Context()).Info().Str("event", "key_revoked").Str("key", auth.HashPrefix(req.Key)).Msg("")
	jsonutil.JSON(w, http.StatusOK, map[string]any{"key": req.Key, "active": false})
}
