package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/klassenhub/klassenhub/internal/pkg/logger"
)

// LocalStorage saves uploaded source documents to the local filesystem.
// Stored filenames are randomized; the original name survives only in the
// extension and in the exam title derived by the caller.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new LocalStorage instance rooted at basePath.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}

	return &LocalStorage{basePath: basePath}, nil
}

// SaveFile stores an uploaded file under the given subdirectory and returns
// the path relative to the storage root.
func (ls *LocalStorage) SaveFile(fileHeader *multipart.FileHeader, subPath string) (string, error) {
	if fileHeader == nil {
		return "", nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	dir := ls.basePath
	if subPath != "" {
		dir = filepath.Join(ls.basePath, subPath)
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return "", fmt.Errorf("failed to create subdirectory: %w", err)
		}
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	storedName := uuid.New().String() + ext
	fullPath := filepath.Join(dir, storedName)

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("failed to write uploaded file: %w", err)
	}

	relPath := storedName
	if subPath != "" {
		relPath = filepath.Join(subPath, storedName)
	}

	logger.Debug().Str("path", relPath).Str("original", fileHeader.Filename).Msg("Stored uploaded file")
	return relPath, nil
}

// DeleteFile removes a stored file by its relative path. A missing file is
// not an error.
func (ls *LocalStorage) DeleteFile(relPath string) error {
	if relPath == "" {
		return nil
	}

	err := os.Remove(filepath.Join(ls.basePath, relPath))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", relPath, err)
	}
	return nil
}

// GetFullPath returns the absolute filesystem path for a stored file.
func (ls *LocalStorage) GetFullPath(relPath string) string {
	return filepath.Join(ls.basePath, relPath)
}
