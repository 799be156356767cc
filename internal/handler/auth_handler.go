package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"cloud-auth/internal/middleware"
	"cloud-auth/internal/model"
	"cloud-auth/internal/service"
	"cloud-auth/pkg/apierror"
)

type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	user, err := h.service.Register(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, user, nil)
}

// Login accepts the OAuth2 password grant form fields: username (which may
// also be an email), password, an optional space-separated scope list, and an
// optional remember_me flag selecting the long session lifetime.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	if err := r.ParseForm(); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid form body", "", http.StatusBadRequest))
		return
	}

	identifier := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	if identifier == "" || password == "" {
		writeError(w, apierror.New("BAD_REQUEST", "username and password are required", "", http.StatusBadRequest))
		return
	}

	scopes := strings.Fields(r.PostFormValue("scope"))
	remember := r.PostFormValue("remember_me") == "true"

	token, err := h.service.Login(r.Context(), identifier, password, scopes, remember)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, token, nil)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("UNAUTHORIZED", "authentication required", "", http.StatusUnauthorized))
		return
	}

	writeSuccess(w, http.StatusOK, user, nil)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("UNAUTHORIZED", "authentication required", "", http.StatusUnauthorized))
		return
	}

	token, err := h.service.Refresh(user)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, token, nil)
}
