package blob

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Local writes images under a directory that the HTTP server exposes at
// BaseURL.
type Local struct {
	Dir     string
	BaseURL string
	Now     func() time.Time
}

func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Local{Dir: dir, BaseURL: baseURL, Now: time.Now}, nil
}

func (l *Local) Upload(ctx context.Context, data []byte, owner string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	_, ext, err := Sniff(data)
	if err != nil {
		return "", err
	}
	name := objectName(owner, ext, l.Now())
	dst := filepath.Join(l.Dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	return l.BaseURL + name, nil
}

// resolve maps a URL produced by Upload back to a file path.
func (l *Local) resolve(url string) (string, error) {
	rel, ok := strings.CutPrefix(url, l.BaseURL)
	if !ok || rel == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, url)
	}
	clean := path.Clean(rel)
	if clean != rel || strings.HasPrefix(clean, "../") || strings.HasPrefix(clean, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, url)
	}
	return filepath.Join(l.Dir, filepath.FromSlash(clean)), nil
}

func (l *Local) Download(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	p, err := l.resolve(url)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	return b, nil
}

// Delete removes every image stored for owner.
func (l *Local) Delete(ctx context.Context, owner string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}
	if err := os.RemoveAll(filepath.Join(l.Dir, sanitize(owner))); err != nil {
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}
	return nil
}
