package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// Bucket stores images in a Cloud Storage bucket, normally the Firebase
// project's default bucket.
type Bucket struct {
	handle *storage.BucketHandle
	name   string
	Now    func() time.Time
}

func NewBucket(handle *storage.BucketHandle, name string) *Bucket {
	return &Bucket{handle: handle, name: name, Now: time.Now}
}

func (b *Bucket) urlPrefix() string {
	return "https://storage.googleapis.com/" + b.name + "/"
}

func (b *Bucket) Upload(ctx context.Context, data []byte, owner string) (string, error) {
	ctype, ext, err := Sniff(data)
	if err != nil {
		return "", err
	}
	name := objectName(owner, ext, b.Now())
	w := b.handle.Object(name).NewWriter(ctx)
	w.ContentType = ctype
	w.CacheControl = "public, max-age=31536000"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	return b.urlPrefix() + name, nil
}

func (b *Bucket) Download(ctx context.Context, url string) ([]byte, error) {
	name, ok := strings.CutPrefix(url, b.urlPrefix())
	if !ok || name == "" || strings.Contains(name, "..") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, url)
	}
	r, err := b.handle.Object(name).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	defer r.Close()
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	return data, nil
}

// Delete removes every object under the owner's prefix.
func (b *Bucket) Delete(ctx context.Context, owner string) error {
	it := b.handle.Objects(ctx, &storage.Query{Prefix: sanitize(owner) + "/"})
	var errs []error
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
		}
		if err := b.handle.Object(attrs.Name).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}
	return nil
}
