package util

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sync"
	"time"
)

// S3Uploader : асинхронная загрузка файлов по pre-signed PUT URL
type S3Uploader struct {
	client *http.Client
	wg     sync.WaitGroup
	errors chan error
}

func NewS3Uploader() *S3Uploader {
	return &S3Uploader{
		client: &http.Client{
			Timeout: 60 * time.Minute, // Для очень больших файлов
		},
		errors: make(chan error, 10),
	}
}

// UploadAsync : загружает данные в фоне, результат приходит в Errors()
func (u *S3Uploader) UploadAsync(presignedURL string, data []byte, contentType string) {
	u.wg.Add(1)

	go func() {
		defer u.wg.Done()

		if err := u.upload(presignedURL, data, contentType); err != nil {
			u.errors <- fmt.Errorf("ошибка загрузки: %w", err)
		} else {
			u.errors <- nil
		}
	}()
}

func (u *S3Uploader) upload(presignedURL string, data []byte, contentType string) error {
	req, err := http.NewRequest(http.MethodPut, presignedURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.ContentLength = int64(len(data))
	req.Header.Set("Content-Type", contentType)

	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ошибка загрузки: статус %d, ответ: %s", resp.StatusCode, string(body))
	}

	return nil
}

// Wait : ожидание завершения всех загрузок, возвращает первую ошибку
func (u *S3Uploader) Wait() error {
	u.wg.Wait()
	close(u.errors)

	for err := range u.errors {
		if err != nil {
			return err
		}
	}
	return nil
}

// Errors возвращает канал с результатами загрузок
func (u *S3Uploader) Errors() <-chan error {
	return u.errors
}

// S3Fetcher : скачивание объекта по короткоживущему pre-signed GET URL.
// Таймаут клиента заведомо меньше срока жизни самой ссылки.
type S3Fetcher struct {
	client *http.Client
}

func NewS3Fetcher(timeout time.Duration) *S3Fetcher {
	return &S3Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

func (f *S3Fetcher) Fetch(ctx context.Context, presignedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, presignedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ошибка скачивания: статус %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// GetContentType определяет MIME type файла по расширению
func GetContentType(filename string) string {
	ext := filepath.Ext(filename)
	switch ext {
	case ".txt":
		return "text/plain"
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".zip":
		return "application/zip"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}
