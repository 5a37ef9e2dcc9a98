package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if basePath == "" {
		basePath = "./uploads"
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("storage: failed to create base directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

func (ls *LocalStorage) Save(ctx context.Context, meetingID uuid.UUID, filename string, content io.Reader, contentType string) (string, error) {
	key := objectKey(meetingID, filename)

	fullPath, err := ls.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("storage: failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("storage: failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("storage: failed to write file: %w", err)
	}

	return key, nil
}

func (ls *LocalStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := ls.resolve(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("storage: failed to open file: %w", err)
	}
	return file, nil
}

func (ls *LocalStorage) Remove(ctx context.Context, key string) error {
	fullPath, err := ls.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: failed to delete file: %w", err)
	}
	return nil
}

// SignedURL returns the path a file server route serves the file under; local
// files need no expiry.
func (ls *LocalStorage) SignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	return fmt.Sprintf("/files/%s", key), nil
}

// resolve joins the key onto the base path and rejects keys that escape it.
func (ls *LocalStorage) resolve(key string) (string, error) {
	absBase, err := filepath.Abs(ls.basePath)
	if err != nil {
		return "", fmt.Errorf("storage: failed to resolve base path: %w", err)
	}

	absPath, err := filepath.Abs(filepath.Join(ls.basePath, key))
	if err != nil {
		return "", fmt.Errorf("storage: failed to resolve file path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: invalid key %q", key)
	}
	return absPath, nil
}
