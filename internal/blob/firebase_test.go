package blob

import (
	"context"
	"os"
	"strings"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestBucketRejectsForeignURLs(t *testing.T) {
	t.Parallel()
	b := NewBucket(nil, "oshi-test.appspot.com")

	for _, url := range []string{
		"https://storage.googleapis.com/other-bucket/a.png",
		"https://storage.googleapis.com/oshi-test.appspot.com/",
		"https://storage.googleapis.com/oshi-test.appspot.com/../x.png",
		"/uploads/a.png",
	} {
		_, err := b.Download(context.Background(), url)
		assert.ErrorIs(t, err, ErrInvalidURL, url)
	}

	_, err := b.Upload(context.Background(), []byte("plain"), "posts")
	assert.ErrorIs(t, err, ErrImageEncoding)
}

// TestBucketAgainstEmulator runs against a GCS emulator such as
// fake-gcs-server when STORAGE_EMULATOR_HOST is set.
func TestBucketAgainstEmulator(t *testing.T) {
	if os.Getenv("STORAGE_EMULATOR_HOST") == "" {
		t.Skip("STORAGE_EMULATOR_HOST not set")
	}
	ctx := context.Background()
	client, err := storage.NewClient(ctx, option.WithoutAuthentication())
	require.NoError(t, err)
	defer client.Close()

	const name = "oshi-test.appspot.com"
	handle := client.Bucket(name)
	if err := handle.Create(ctx, "demo-oshi", nil); err != nil {
		t.Logf("create bucket: %v", err)
	}
	b := NewBucket(handle, name)

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	url, err := b.Upload(ctx, png, "c1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://storage.googleapis.com/"+name+"/c1/"), url)

	got, err := b.Download(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, png, got)

	require.NoError(t, b.Delete(ctx, "c1"))
	_, err = b.Download(ctx, url)
	assert.ErrorIs(t, err, ErrDownloadFailed)
}
