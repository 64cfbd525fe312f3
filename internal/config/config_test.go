package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Parallel()
	c, err := FromMap(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "8088", c.Port)
	assert.Equal(t, "info", c.LogLevel)
	assert.False(t, c.NoAuth)
	assert.Equal(t, "u_me", c.UserID)
	assert.Equal(t, "Me", c.UserName)
	assert.Equal(t, 30*time.Minute, c.AutoPostInterval)
	assert.Equal(t, 15*time.Minute, c.ProactiveInterval)
	assert.Equal(t, 5*time.Minute, c.SnapshotInterval)
	assert.Zero(t, c.RandomSeed)
	assert.False(t, c.UseFirebase())
	assert.Empty(t, c.LLM.Provider())
}

func TestFromMap(t *testing.T) {
	t.Parallel()
	c, err := FromMap(map[string]string{
		"PORT":                    "9000",
		"NO_AUTH":                 "1",
		"USER_ID":                 "u_42",
		"FIREBASE_PROJECT_ID":     "oshi-dev",
		"FIREBASE_STORAGE_BUCKET": "oshi-dev.appspot.com",
		"OPENAI_API_KEY":          "sk-test",
		"AUTO_POST_INTERVAL":      "90s",
		"RANDOM_SEED":             "7",
	})
	require.NoError(t, err)

	assert.Equal(t, "9000", c.Port)
	assert.True(t, c.NoAuth)
	assert.Equal(t, "u_42", c.UserID)
	assert.True(t, c.UseFirebase())
	assert.Equal(t, "oshi-dev.appspot.com", c.Firebase.StorageBucket)
	assert.Equal(t, "openai", c.LLM.Provider())
	assert.Equal(t, 90*time.Second, c.AutoPostInterval)
	assert.Equal(t, int64(7), c.RandomSeed)
}

func TestProviderPrefersGemini(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "gemini", LLM{GeminiAPIKey: "g", OpenAIAPIKey: "o"}.Provider())
}

func TestInvalidSettings(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		name string
		env  map[string]string
		want error
	}{
		{name: "zero interval", env: map[string]string{"SNAPSHOT_INTERVAL": "0s"}, want: ErrInvalidInterval},
		{name: "negative interval", env: map[string]string{"PROACTIVE_INTERVAL": "-1m"}, want: ErrInvalidInterval},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := FromMap(tc.env)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := FromMap(map[string]string{"NO_AUTH": "maybe"})
	assert.Error(t, err)
}

func TestPaths(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	p := Config{DataDir: dir}.Paths()

	assert.Equal(t, filepath.Join(dir, "uploads"), p.UploadsDir)
	assert.Equal(t, filepath.Join(dir, "store"), p.StoreDir)
	assert.Equal(t, filepath.Join(dir, "cache.db"), p.CacheFile)

	require.NoError(t, p.Ensure())
	for _, d := range []string{p.UploadsDir, p.StoreDir} {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	file := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(file, []byte("USER_NAME=Aki\n"), 0o600))
	t.Setenv("USER_NAME", "")
	require.NoError(t, os.Unsetenv("USER_NAME"))

	c, err := Load(file, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "Aki", c.UserName)
}

func TestNewFirebaseAppNeedsProject(t *testing.T) {
	t.Parallel()
	_, err := Config{}.NewFirebaseApp(context.Background())
	assert.ErrorIs(t, err, ErrFirebaseNotConfigured)

	_, err = Config{Firebase: Firebase{ProjectID: "p"}}.NewFirebaseApp(context.Background())
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = Config{Firebase: Firebase{ProjectID: "p", CredentialsFile: "/nonexistent/sa.json"}}.NewFirebaseApp(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
