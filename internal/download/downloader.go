// Package download fetches result content (covers, audio) to local files.
package download

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// defaultTimeout bounds a single content fetch. Audio files are larger
	// than the API payloads, so this is looser than the parser client timeout.
	defaultTimeout = 60 * time.Second
	// maxFetchSize caps a single download.
	maxFetchSize = 200 << 20 // 200 MiB
	// defaultConcurrency bounds parallel fetches in FetchAll.
	defaultConcurrency = 3
)

// Downloader saves remote content below a base directory.
type Downloader struct {
	client      *http.Client
	dir         string
	concurrency int
	logger      *zap.Logger
}

// NewDownloader creates a downloader writing into dir, creating it if needed.
func NewDownloader(dir string, concurrency int, logger *zap.Logger) (*Downloader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	return &Downloader{
		client:      &http.Client{Timeout: defaultTimeout},
		dir:         dir,
		concurrency: concurrency,
		logger:      logger,
	}, nil
}

// Fetch downloads one URL and returns the local file path. The filename is
// derived from the URL path plus a short hash of the full URL.
func (d *Downloader) Fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return "", err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download of %s returned status %d", rawURL, resp.StatusCode)
	}

	dest := filepath.Join(d.dir, fileName(rawURL))
	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer func() {
		_ = out.Close()
	}()

	n, err := io.Copy(out, io.LimitReader(resp.Body, maxFetchSize))
	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", dest, err)
	}

	d.logger.Debug("downloaded content",
		zap.String("url", rawURL),
		zap.String("path", dest),
		zap.Int64("bytes", n))

	return dest, nil
}

// FetchAll downloads the given URLs with bounded concurrency and returns the
// local paths in input order. The first failure cancels the remaining fetches.
func (d *Downloader) FetchAll(ctx context.Context, urls []string) ([]string, error) {
	paths := make([]string, len(urls))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			p, err := d.Fetch(gCtx, u)
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

	return paths, nil
}

// fileName derives a local filename from a URL, dropping query noise. A short
// hash of the full URL keeps distinct sources that share a basename (every NCM
// cover is served as the same file name) from overwriting each other.
func fileName(rawURL string) string {
	sum := fnv.New32a()
	_, _ = io.WriteString(sum, rawURL)
	tag := fmt.Sprintf("%08x", sum.Sum32())

	u, err := url.Parse(rawURL)
	if err != nil || path.Base(u.Path) == "/" || path.Base(u.Path) == "." {
		return "content_" + tag
	}

	base := path.Base(u.Path)
	ext := path.Ext(base)
	return strings.TrimSuffix(base, ext) + "_" + tag + ext
}
