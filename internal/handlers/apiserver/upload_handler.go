package apiserver

import (
	"errors"
	"fmt"
	"net/http"

	"friendly/internal/apptypes"
	"friendly/internal/config"
	"friendly/internal/middleware"
	"friendly/internal/services"
)

// UploadHandler lets a logged-in user replace their profile photo.
type UploadHandler struct {
	storageService apptypes.StorageService
	userService    services.UserService
	cfg            config.StorageConfig
}

// NewUploadHandler creates a new UploadHandler instance.
func NewUploadHandler(storageService apptypes.StorageService, userService services.UserService, cfg config.StorageConfig) *UploadHandler {
	return &UploadHandler{
		storageService: storageService,
		userService:    userService,
		cfg:            cfg,
	}
}

// UploadPhoto stores the uploaded file and points the session user's
// profile at it.
func (h *UploadHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsernameFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	maxUploadSize := h.cfg.MaxFileSizeMB << 20
	if maxUploadSize <= 0 {
		maxUploadSize = defaultMaxMemory
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(defaultMaxMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeJSONError(w, fmt.Sprintf("file too large, max %d MB", maxUploadSize>>20), http.StatusRequestEntityTooLarge)
		} else {
			writeJSONError(w, "invalid form data", http.StatusBadRequest)
		}
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			writeJSONError(w, "missing 'file' field", http.StatusBadRequest)
		} else {
			writeJSONError(w, "failed to read file", http.StatusBadRequest)
		}
		return
	}
	defer file.Close()

	info, err := h.storageService.UploadFile(r.Context(), file, header.Size, username, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		writeJSONError(w, "failed to store file", http.StatusInternalServerError)
		return
	}

	if _, err := h.userService.UpdateProfile(r.Context(), username, services.ProfileUpdate{ImageURL: &info.URL}); err != nil {
		writeJSONError(w, "failed to update profile photo", http.StatusInternalServerError)
		return
	}

	writeJSONResponse(w, http.StatusOK, info)
}
