package filestorage

import (
	"context"
	"io"
)

// FileStorageInterface - хранилище архивов выгрузок (локальный диск или S3).
type FileStorageInterface interface {
	// Save сохраняет файл и возвращает его ключ (относительный путь).
	Save(ctx context.Context, file io.Reader, originalFileName, prefix, contentType string) (key string, err error)
	// URL возвращает ссылку для скачивания сохранённого файла.
	URL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}
