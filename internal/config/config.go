// Package config reads process settings from the environment (and an
// optional .env file) and bootstraps the Firebase app.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

var (
	ErrFirebaseNotConfigured = errors.New("FIREBASE_PROJECT_ID not set")
	ErrMissingCredentials    = errors.New("missing Firebase credentials: set FIREBASE_SERVICE_ACCOUNT_JSON or GOOGLE_APPLICATION_CREDENTIALS, or use NO_AUTH=1")
	ErrInvalidInterval       = errors.New("tick interval must be positive")
)

type Config struct {
	Port     string `env:"PORT" envDefault:"8088"`
	DataDir  string `env:"DATA_DIR"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	// NoAuth skips Firebase token checks; requests act as UserID.
	NoAuth   bool   `env:"NO_AUTH"`
	UserID   string `env:"USER_ID" envDefault:"u_me"`
	UserName string `env:"USER_NAME" envDefault:"Me"`

	Firebase Firebase
	LLM      LLM

	AutoPostInterval  time.Duration `env:"AUTO_POST_INTERVAL" envDefault:"30m"`
	ProactiveInterval time.Duration `env:"PROACTIVE_INTERVAL" envDefault:"15m"`
	SnapshotInterval  time.Duration `env:"SNAPSHOT_INTERVAL" envDefault:"5m"`
	// RandomSeed fixes the engine's randomness when non-zero.
	RandomSeed int64 `env:"RANDOM_SEED"`
}

type Firebase struct {
	ProjectID          string `env:"FIREBASE_PROJECT_ID"`
	StorageBucket      string `env:"FIREBASE_STORAGE_BUCKET"`
	ServiceAccountJSON string `env:"FIREBASE_SERVICE_ACCOUNT_JSON"`
	CredentialsFile    string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	AuthEmulatorHost   string `env:"FIREBASE_AUTH_EMULATOR_HOST"`
	FirestoreEmulator  string `env:"FIRESTORE_EMULATOR_HOST"`
}

type LLM struct {
	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiModel   string `env:"GEMINI_MODEL"`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OpenAIModel   string `env:"OPENAI_MODEL"`
}

// Provider names the configured text-generation backend, Gemini first.
// It is empty when no key is set.
func (l LLM) Provider() string {
	switch {
	case l.GeminiAPIKey != "":
		return "gemini"
	case l.OpenAIAPIKey != "":
		return "openai"
	}
	return ""
}

// Load reads the given .env files (missing ones are ignored) and then the
// process environment. Variables already set win over the files.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return parse(env.Options{})
}

// FromMap parses settings from m instead of the process environment.
func FromMap(m map[string]string) (Config, error) {
	return parse(env.Options{Environment: m})
}

func parse(opts env.Options) (Config, error) {
	var c Config
	if err := env.ParseWithOptions(&c, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	for name, d := range map[string]time.Duration{
		"AUTO_POST_INTERVAL": c.AutoPostInterval,
		"PROACTIVE_INTERVAL": c.ProactiveInterval,
		"SNAPSHOT_INTERVAL":  c.SnapshotInterval,
	} {
		if d <= 0 {
			return Config{}, fmt.Errorf("%w: %s=%s", ErrInvalidInterval, name, d)
		}
	}
	return c, nil
}

type Paths struct {
	DataDir    string
	UploadsDir string
	// StoreDir holds the JSON files of the local store.
	StoreDir  string
	CacheFile string
}

// Paths lays out the data directory. Without DATA_DIR it uses /data when
// that exists and ./data otherwise.
func (c Config) Paths() Paths {
	dataDir := c.DataDir
	if dataDir == "" {
		dataDir = "/data"
		if _, err := os.Stat(dataDir); err != nil {
			dataDir = filepath.Join(".", "data")
		}
	}
	return Paths{
		DataDir:    dataDir,
		UploadsDir: filepath.Join(dataDir, "uploads"),
		StoreDir:   filepath.Join(dataDir, "store"),
		CacheFile:  filepath.Join(dataDir, "cache.db"),
	}
}

func (p Paths) Ensure() error {
	for _, d := range []string{p.DataDir, p.UploadsDir, p.StoreDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", d, err)
		}
	}
	return nil
}

// UseFirebase reports whether a Firebase project is configured.
func (c Config) UseFirebase() bool { return c.Firebase.ProjectID != "" }

func (f Firebase) clientOptions() ([]option.ClientOption, error) {
	switch {
	case f.ServiceAccountJSON != "":
		return []option.ClientOption{option.WithCredentialsJSON([]byte(f.ServiceAccountJSON))}, nil
	case f.CredentialsFile != "":
		if _, err := os.Stat(f.CredentialsFile); err != nil {
			return nil, fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS %q not readable: %w", f.CredentialsFile, err)
		}
		return []option.ClientOption{option.WithCredentialsFile(f.CredentialsFile)}, nil
	case f.AuthEmulatorHost != "" || f.FirestoreEmulator != "":
		return nil, nil
	}
	return nil, ErrMissingCredentials
}

// NewFirebaseApp initializes the Firebase app used for auth, Firestore and
// Storage.
func (c Config) NewFirebaseApp(ctx context.Context) (*firebase.App, error) {
	if !c.UseFirebase() {
		return nil, ErrFirebaseNotConfigured
	}
	opts, err := c.Firebase.clientOptions()
	if err != nil {
		return nil, err
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     c.Firebase.ProjectID,
		StorageBucket: c.Firebase.StorageBucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase init: %w", err)
	}
	return app, nil
}
