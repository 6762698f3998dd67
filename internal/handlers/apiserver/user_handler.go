package apiserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"friendly/internal/middleware"
	"friendly/internal/services"
)

// UserHandler exposes the session user's profile over HTTP.
type UserHandler struct {
	userService services.UserService
}

// NewUserHandler creates a new UserHandler instance.
func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UpdateProfileRequest mirrors services.ProfileUpdate; absent fields are
// left untouched.
type UpdateProfileRequest struct {
	FirstName    *string `json:"firstName"`
	LastName     *string `json:"lastName"`
	Hobbies      *string `json:"hobbies"`
	Interests    *string `json:"interests"`
	Zipcode      *string `json:"zipcode"`
	FriendRadius *int    `json:"friendRadius"`
}

// GetMe returns the session user's own profile.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsernameFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	user, err := h.userService.Profile(r.Context(), username)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeJSONError(w, "user not found", http.StatusNotFound)
		} else {
			writeJSONError(w, "failed to load profile", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusOK, user)
}

// UpdateMe applies a partial update to the session user's profile.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsernameFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	update := services.ProfileUpdate{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Hobbies:      req.Hobbies,
		Interests:    req.Interests,
		Zipcode:      req.Zipcode,
		FriendRadius: req.FriendRadius,
	}

	user, err := h.userService.UpdateProfile(r.Context(), username, update)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrUserNotFound):
			writeJSONError(w, "user not found", http.StatusNotFound)
		default:
			writeJSONError(w, "failed to update profile", http.StatusInternalServerError)
		}
		return
	}
	writeJSONResponse(w, http.StatusOK, user)
}
