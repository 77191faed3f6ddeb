package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/example/calcapi/internal/auth"
	"github.com/example/calcapi/internal/types"
	"github.com/example/calcapi/pkg/jsonutil"
)

// SignupHandler issues an API key without admin auth. For testing only.
type SignupHandler struct {
	Store auth.KeyIssuer
}

func NewSignupHandler(store auth.KeyIssuer) *SignupHandler {
	return &SignupHandler{Store: store}
}

type signupRequest struct {
	Owner string `json:"owner"`
	Email string `json:"email"`
}

func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonutil.Error(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, "bad request")
		return
	}
	key, err := auth.NewKey()
	if err != nil {
		jsonutil.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.Store.Create(r.Context(), auth.Key{Key: key, Owner: req.Owner, Email: req.Email, Active: true}); err != nil {
		jsonutil.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	zerolog.Ctx(r.Context()).Info().Str("event", "signup").Str("key", auth.HashPrefix(key)).Msg("")
	jsonutil.JSON(w, http.StatusOK, keyResponse{
		Key:     key,
		Active:  true,
		Owner:   req.Owner,
		Email:   req.Email,
		Created: types.NowRFC3339(),
	})
}
