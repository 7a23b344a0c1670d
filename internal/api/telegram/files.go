package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxDownloadBytes = 20 << 20

type fileURLGetter interface {
	GetFileDirectURL(fileID string) (string, error)
}

// FileDownloader fetches files users sent to the bot.
type FileDownloader struct {
	api    fileURLGetter
	client *http.Client
}

func NewFileDownloader(api fileURLGetter, timeout time.Duration) *FileDownloader {
	return &FileDownloader{api: api, client: &http.Client{Timeout: timeout}}
}

func (d *FileDownloader) Fetch(ctx context.Context, fileID string) ([]byte, string, error) {
	url, err := d.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, "", fmt.Errorf("resolve file %s: %w", fileID, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download file %s: status %d", fileID, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read file %s: %w", fileID, err)
	}
	if len(data) > maxDownloadBytes {
		return nil, "", fmt.Errorf("file %s exceeds %d bytes", fileID, maxDownloadBytes)
	}

	// Telegram serves files as octet-stream.
	mime := resp.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}
	return data, mime, nil
}
