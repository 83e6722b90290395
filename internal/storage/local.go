package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStorage implements ProofStorage on the local filesystem. Keys are
// random and never derived from member input, so a crafted filename cannot
// escape the uploads directory.
type LocalStorage struct {
	baseURL   string // Server URL (e.g., "http://localhost:8080")
	proofsDir string
}

func NewLocalStorage(baseURL, uploadsDir string) (*LocalStorage, error) {
	proofsDir := filepath.Join(uploadsDir, "proofs")
	if err := os.MkdirAll(proofsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create proofs directory: %w", err)
	}
	return &LocalStorage{
		baseURL:   baseURL,
		proofsDir: proofsDir,
	}, nil
}

func (s *LocalStorage) Save(ctx context.Context, originalName string, reader io.Reader) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	key := uuid.New().String() + ext

	fullPath := filepath.Join(s.proofsDir, key)
	file, err := os.Create(fullPath)
	if err != nil {
		return "", "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		os.Remove(fullPath)
		return "", "", fmt.Errorf("failed to write file: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/files/%s", s.baseURL, key)
	return key, url, nil
}

func (s *LocalStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	file, err := os.Open(filepath.Join(s.proofsDir, filepath.Base(key)))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, int64, error) {
	info, err := os.Stat(filepath.Join(s.proofsDir, filepath.Base(key)))
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, info.Size(), nil
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	err := os.Remove(filepath.Join(s.proofsDir, filepath.Base(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
