package apiserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"friendly/internal/config"
	"friendly/internal/middleware"
	"friendly/internal/models"
	"friendly/internal/services"
)

const defaultMaxMemory = 32 << 20 // max in-memory size for multipart forms

// AuthHandler exposes signup, login and logout over HTTP.
type AuthHandler struct {
	authService services.AuthService
	storageCfg  config.StorageConfig
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(authService services.AuthService, storageCfg config.StorageConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		storageCfg:  storageCfg,
	}
}

// LoginRequest is the body of a login request.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login. The CSRF token must be
// echoed back in the X-CSRF-Token header on mutating requests.
type LoginResponse struct {
	Token     string       `json:"token"`
	CSRFToken string       `json:"csrfToken"`
	User      *models.User `json:"user"`
}

// Register handles signup. The request is a multipart form so the profile
// photo can ride along with the fields.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	maxUploadSize := h.storageCfg.MaxFileSizeMB << 20
	if maxUploadSize <= 0 {
		maxUploadSize = defaultMaxMemory
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(defaultMaxMemory); err != nil {
		writeJSONError(w, "invalid form data", http.StatusBadRequest)
		return
	}

	radius := 0
	if v := r.FormValue("friendRadius"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeJSONError(w, "friendRadius must be a number", http.StatusBadRequest)
			return
		}
		radius = parsed
	}

	input := services.SignupInput{
		Username:     r.FormValue("username"),
		Email:        r.FormValue("email"),
		Password:     r.FormValue("password"),
		FirstName:    r.FormValue("firstName"),
		LastName:     r.FormValue("lastName"),
		Hobbies:      r.FormValue("hobbies"),
		Interests:    r.FormValue("interests"),
		Zipcode:      r.FormValue("zipcode"),
		FriendRadius: radius,
	}

	var photo *services.PhotoUpload
	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		photo = &services.PhotoUpload{
			Reader:   file,
			Size:     header.Size,
			FileName: header.Filename,
			MimeType: header.Header.Get("Content-Type"),
		}
	} else if !errors.Is(err, http.ErrMissingFile) {
		writeJSONError(w, "failed to read photo", http.StatusBadRequest)
		return
	}

	user, err := h.authService.Signup(r.Context(), input, photo)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrUserAlreadyExists):
			writeJSONError(w, err.Error(), http.StatusConflict)
		default:
			writeJSONError(w, "registration failed", http.StatusInternalServerError)
		}
		return
	}

	writeJSONResponse(w, http.StatusCreated, user)
}

// Login handles credential verification and session issuance.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.Username == "" || req.Password == "" {
		writeJSONError(w, "username and password are required", http.StatusBadRequest)
		return
	}

	token, csrfToken, user, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeJSONError(w, "invalid username or password", http.StatusUnauthorized)
		} else {
			writeJSONError(w, "login failed", http.StatusInternalServerError)
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, LoginResponse{Token: token, CSRFToken: csrfToken, User: user})
}

// Logout blacklists the current session token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaimsFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		writeJSONError(w, "token cannot be revoked", http.StatusInternalServerError)
		return
	}

	if err := h.authService.Logout(r.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		writeJSONError(w, "logout failed", http.StatusInternalServerError)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}
