// internal/document/image.go
package document

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// ImageLoader acquires and decodes the bitmap referenced by an image entry
type ImageLoader interface {
	Load(ctx context.Context, source string) (image.Image, error)
}

// ImageLoaderFunc adapts a function to ImageLoader
type ImageLoaderFunc func(ctx context.Context, source string) (image.Image, error)

func (f ImageLoaderFunc) Load(ctx context.Context, source string) (image.Image, error) {
	return f(ctx, source)
}

// SourceLoader loads http(s) URLs, base64 data URIs and, when AllowFiles is
// set, local file paths
type SourceLoader struct {
	Client     *http.Client
	MaxBytes   int64
	AllowFiles bool
}

// NewSourceLoader creates a loader with a bounded HTTP client
func NewSourceLoader(timeout time.Duration, maxBytes int64, allowFiles bool) *SourceLoader {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxBytes <= 0 {
		maxBytes = 8 << 20
	}
	return &SourceLoader{
		Client:     &http.Client{Timeout: timeout},
		MaxBytes:   maxBytes,
		AllowFiles: allowFiles,
	}
}

// Load fetches and decodes source
func (l *SourceLoader) Load(ctx context.Context, source string) (image.Image, error) {
	data, err := l.fetch(ctx, source)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func (l *SourceLoader) fetch(ctx context.Context, source string) ([]byte, error) {
	switch {
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return l.fetchHTTP(ctx, source)
	case strings.HasPrefix(source, "data:"):
		return decodeDataURI(source)
	case l.AllowFiles:
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open image: %w", err)
		}
		defer f.Close()
		return l.readLimited(f)
	default:
		return nil, fmt.Errorf("unsupported image source %q", source)
	}
}

func (l *SourceLoader) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create image request: %w", err)
	}

	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}
	return l.readLimited(resp.Body)
}

func (l *SourceLoader) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > l.MaxBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", l.MaxBytes)
	}
	return data, nil
}

func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.IndexByte(uri, ',')
	if comma < 0 || !strings.HasSuffix(uri[:comma], ";base64") {
		return nil, fmt.Errorf("unsupported data URI")
	}
	data, err := base64.StdEncoding.DecodeString(uri[comma+1:])
	if err != nil {
		return nil, fmt.Errorf("failed to decode data URI: %w", err)
	}
	return data, nil
}
