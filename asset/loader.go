package asset

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxBytes bounds the size of a single encoded image.
const DefaultMaxBytes = 64 << 20

// Loader loads images from data URIs, http(s) URLs and files.
// The zero value is ready to use.
type Loader struct {
	// Client is used for http(s) sources. Nil means http.DefaultClient.
	Client *http.Client

	// BaseURL resolves relative sources when set; otherwise relative sources
	// are files under Dir.
	BaseURL string

	// Dir is the directory relative file paths are resolved against.
	Dir string

	// MaxBytes limits encoded image size. Zero means DefaultMaxBytes.
	MaxBytes int64
}

// LoadImage reads and decodes the image at src.
func (l *Loader) LoadImage(ctx context.Context, src string) (*image.RGBA, error) {
	data, err := l.Read(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to load image %q: %w", abbreviate(src), err)
	}
	img, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load image %q: %w", abbreviate(src), err)
	}
	return img, nil
}

// Read returns the raw bytes behind src.
func (l *Loader) Read(ctx context.Context, src string) ([]byte, error) {
	if l == nil {
		l = &Loader{}
	}
	switch {
	case src == "":
		return nil, errors.New("empty source")
	case strings.HasPrefix(src, "data:"):
		return parseDataURI(src)
	case isHTTP(src):
		return l.fetch(ctx, src)
	case l.BaseURL != "" && !filepath.IsAbs(src):
		base, err := url.Parse(l.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("parse base URL: %w", err)
		}
		ref, err := url.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parse source: %w", err)
		}
		return l.fetch(ctx, base.ResolveReference(ref).String())
	}
	return l.readFile(src)
}

func isHTTP(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

func (l *Loader) maxBytes() int64 {
	if l.MaxBytes > 0 {
		return l.MaxBytes
	}
	return DefaultMaxBytes
}

func (l *Loader) fetch(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", u, resp.Status)
	}
	return readLimited(resp.Body, l.maxBytes())
}

func (l *Loader) readFile(src string) ([]byte, error) {
	path := src
	if !filepath.IsAbs(path) && l.Dir != "" {
		path = filepath.Join(l.Dir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLimited(f, l.maxBytes())
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("image exceeds %d bytes", limit)
	}
	return data, nil
}

// parseDataURI decodes an RFC 2397 data URI, base64 or percent-encoded.
func parseDataURI(src string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data URI: missing comma")
	}
	if strings.HasSuffix(header, ";base64") {
		payload = strings.Map(func(r rune) rune {
			if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
				return -1
			}
			return r
		}, payload)
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return nil, fmt.Errorf("malformed data URI: %w", err)
		}
		return data, nil
	}
	data, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("malformed data URI: %w", err)
	}
	return []byte(data), nil
}

// abbreviate shortens long sources, typically data URIs, for messages.
func abbreviate(src string) string {
	const limit = 64
	if len(src) <= limit {
		return src
	}
	return src[:limit] + "..."
}
