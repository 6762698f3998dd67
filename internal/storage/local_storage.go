package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"friendly/internal/apptypes"
	"friendly/internal/config"
)

// LocalStorageService implements apptypes.StorageService on the local
// filesystem. Profile photos are written under basePath and served back
// under baseURL by the static file route.
type LocalStorageService struct {
	basePath string
	baseURL  string
}

// NewLocalStorageService creates a LocalStorageService rooted at the
// configured local path, creating the directory if needed.
func NewLocalStorageService(cfg config.StorageConfig, baseURL string) (apptypes.StorageService, error) {
	if err := os.MkdirAll(cfg.LocalPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create local storage directory '%s': %w", cfg.LocalPath, err)
	}
	return &LocalStorageService{
		basePath: cfg.LocalPath,
		baseURL:  baseURL,
	}, nil
}

// UploadFile saves the file under a key of the form "{owner}-{uuid}{ext}"
// so a user's photos are traceable to them without name collisions.
func (s *LocalStorageService) UploadFile(ctx context.Context, reader io.Reader, fileSize int64, owner, fileName, mimeType string) (*apptypes.FileInfo, error) {
	ext := filepath.Ext(fileName)
	if ext == "" {
		// No extension on the original name, infer one from the MIME type.
		extensions, _ := mime.ExtensionsByType(mimeType)
		if len(extensions) > 0 {
			ext = extensions[0]
		}
	}
	storedName := owner + "-" + uuid.New().String() + ext

	dstPath := filepath.Join(s.basePath, storedName)

	dst, err := os.Create(dstPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination file '%s': %w", dstPath, err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, reader)
	if err != nil {
		os.Remove(dstPath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if written != fileSize {
		os.Remove(dstPath)
		return nil, fmt.Errorf("file size mismatch: expected %d, wrote %d", fileSize, written)
	}

	fileURL := strings.TrimSuffix(s.baseURL, "/") + "/" + url.PathEscape(storedName)

	return &apptypes.FileInfo{
		URL:      fileURL,
		Path:     dstPath,
		Size:     fileSize,
		MimeType: mimeType,
		FileName: fileName,
	}, nil
}
