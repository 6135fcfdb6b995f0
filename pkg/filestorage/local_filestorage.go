package filestorage

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

type LocalFileStorage struct {
	basePath  string
	publicURL string
}

// NewLocalFileStorage: publicURL - префикс, под которым echo раздаёт basePath.
func NewLocalFileStorage(basePath, publicURL string) (FileStorageInterface, error) {
	if _, err := os.Stat(basePath); os.IsNotExist(err) {
		if err := os.MkdirAll(basePath, 0o755); err != nil {
			return nil, fmt.Errorf("не удалось создать директорию: %w", err)
		}
	}
	return &LocalFileStorage{basePath: basePath, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (s *LocalFileStorage) Save(_ context.Context, file io.Reader, originalFileName, prefix, _ string) (string, error) {
	key := objectKey(originalFileName, prefix, time.Now())
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", err
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		return "", err
	}
	return key, nil
}

func (s *LocalFileStorage) URL(_ context.Context, key string) (string, error) {
	return s.publicURL + "/" + key, nil
}

func (s *LocalFileStorage) Delete(_ context.Context, key string) error {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(strings.TrimPrefix(key, "/")))
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(fullPath)
}

// objectKey: prefix/2006/01/02/2006-01-02-<uuid>.<ext>
func objectKey(originalFileName, prefix string, now time.Time) string {
	ext := filepath.Ext(originalFileName)
	uniqueFileName := fmt.Sprintf("%s-%s%s", now.Format("2006-01-02"), uuid.New().String(), ext)
	datePath := now.Format("2006/01/02")
	return filepath.ToSlash(filepath.Join(prefix, datePath, uniqueFileName))
}
