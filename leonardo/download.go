package leonardo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DownloadImages fetches every URL concurrently and writes the files into dir
// as <generationID>_<index><ext>. Returned paths follow URL order. The first
// failed download cancels the rest and fails the whole operation.
func (c *Client) DownloadImages(ctx context.Context, generationID string, urls []string, dir string) ([]string, error) {
	if len(urls) == 0 {
		return nil, &Error{Code: ErrInvalidRequest, Message: "leonardo: no image URLs to download"}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("leonardo: creating download dir: %w", err)
	}

	paths := make([]string, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	for i, imageURL := range urls {
		g.Go(func() error {
			p, err := c.downloadOne(gctx, generationID, imageURL, dir, i)
			if err != nil {
				return err
			}
			paths[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.logger.Info("images downloaded",
		zap.String("generation_id", generationID),
		zap.Int("count", len(paths)),
		zap.String("dir", dir))
	return paths, nil
}

func (c *Client) downloadOne(ctx context.Context, generationID, imageURL, dir string, index int) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	// Image URLs are pre-signed CDN links; the bearer header stays off them.
	httpReq, _ := http.NewRequestWithContext(callCtx, http.MethodGet, imageURL, nil)

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.recordCall(opDownloadImage, 0, time.Since(start))
		return "", fmt.Errorf("leonardo: downloading image %d: %w", index, err)
	}
	defer resp.Body.Close()
	c.recordCall(opDownloadImage, resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 400 {
		return "", mapHTTPError(opDownloadImage, resp.StatusCode, readErrMsg(resp.Body))
	}

	name := fmt.Sprintf("%s_%d%s", generationID, index, imageExt(imageURL))
	target := filepath.Join(dir, name)
	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("leonardo: creating %s: %w", target, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return "", fmt.Errorf("leonardo: writing %s: %w", target, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("leonardo: closing %s: %w", target, err)
	}
	return target, nil
}

// imageExt picks the file extension from the URL path, defaulting to .jpg.
func imageExt(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ".jpg"
	}
	if ext := path.Ext(u.Path); ext != "" {
		return ext
	}
	return ".jpg"
}
