package footage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"adstudio/internal/domain"
)

// Downloader fetches resolved footage links to local files.
type Downloader struct {
	client *http.Client
}

// NewDownloader returns a Downloader; a nil client gets a generous timeout
// suited to HD clips.
func NewDownloader(client *http.Client) *Downloader {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Downloader{client: client}
}

// Download streams link into dest. A partial file is removed on failure.
func (d *Downloader) Download(ctx context.Context, link, dest string) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return fmt.Errorf("%w: footage request: %v", domain.ErrProviderCall, err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: footage download: %v", domain.ErrProviderCall, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: footage download status %d", domain.ErrProviderCall, resp.StatusCode)
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(dest)
		}
	}()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("%w: footage download: %v", domain.ErrProviderCall, err)
	}
	return nil
}
