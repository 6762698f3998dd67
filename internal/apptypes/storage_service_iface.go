package apptypes

import (
	"context"
	"io"
)

// StorageService defines the interface for profile-photo storage.
// The interface lives in apptypes to break the cycle between storage and
// services.
type StorageService interface {
	// UploadFile stores the reader's content under a key derived from the
	// owner's username and returns the stored file's info, including the
	// publicly reachable URL.
	UploadFile(ctx context.Context, reader io.Reader, fileSize int64, owner, fileName, mimeType string) (*FileInfo, error)
}
