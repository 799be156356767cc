package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cloud-auth/internal/middleware"
	"cloud-auth/internal/model"
	"cloud-auth/internal/service"
	"cloud-auth/pkg/apierror"
)

type UserHandler struct {
	service *service.AuthService
}

func NewUserHandler(service *service.AuthService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("UNAUTHORIZED", "authentication required", "", http.StatusUnauthorized))
		return
	}

	var payload model.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), user, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, updated, nil)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, users, nil)
}

func (h *UserHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	id, err := strconv.ParseInt(chi.URLParam(r, "user_id"), 10, 64)
	if err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "user_id must be numeric", "", http.StatusBadRequest))
		return
	}

	var payload model.SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	user, err := h.service.SetUserActive(r.Context(), id, payload.IsActive)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, nil)
}
