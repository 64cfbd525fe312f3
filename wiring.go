package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"firebase.google.com/go/v4/auth"

	"local.dev/oshi-engine/internal/blob"
	"local.dev/oshi-engine/internal/cache"
	"local.dev/oshi-engine/internal/config"
	"local.dev/oshi-engine/internal/engine"
	"local.dev/oshi-engine/internal/generator"
	"local.dev/oshi-engine/internal/llm"
	"local.dev/oshi-engine/internal/logging"
	"local.dev/oshi-engine/internal/random"
	"local.dev/oshi-engine/internal/store"
)

var errAuthNeedsFirebase = errors.New("token auth needs FIREBASE_PROJECT_ID; set NO_AUTH=1 for local use")

// runtime is everything a command needs, built from the environment.
type runtime struct {
	cfg    config.Config
	paths  config.Paths
	logger *slog.Logger
	engine *engine.Engine
	auth   *auth.Client

	closers []func() error
}

func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			rt.logger.Warn("close failed", "error", err)
		}
	}
}

func setup(ctx context.Context, envFiles []string) (*runtime, error) {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, err
	}
	logger, err := logging.Init(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	paths := cfg.Paths()
	if err := paths.Ensure(); err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, paths: paths, logger: logger}

	st, bl, err := rt.backends(ctx)
	if err != nil {
		rt.Close()
		return nil, err
	}

	kv, err := cache.Open(paths.CacheFile)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.closers = append(rt.closers, kv.Close)

	completer, err := newCompleter(ctx, cfg.LLM)
	if err != nil {
		rt.Close()
		return nil, err
	}
	if c, ok := completer.(interface{ Close() error }); ok {
		rt.closers = append(rt.closers, c.Close)
	}

	rng := random.New(cfg.RandomSeed)
	gen := generator.NewRemote(completer, generator.NewRuleBased(random.New(rng.Int63()|1)), logger)
	rt.engine, err = engine.New(engine.Options{
		Store:     st,
		Blob:      bl,
		Cache:     kv,
		Generator: gen,
		Rand:      rng,
		Logger:    logger,
		UserName:  cfg.UserName,
	})
	if err != nil {
		rt.Close()
		return nil, err
	}
	logger.Info("engine ready",
		"store", fmt.Sprintf("%T", st),
		"blob", fmt.Sprintf("%T", bl),
		"llm", cfg.LLM.Provider(),
	)
	return rt, nil
}

// backends picks Firestore and Firebase Storage when a project is set, the
// data directory otherwise.
func (rt *runtime) backends(ctx context.Context) (engine.Store, engine.Blob, error) {
	var (
		st engine.Store
		bl engine.Blob
	)
	if rt.cfg.UseFirebase() {
		app, err := rt.cfg.NewFirebaseApp(ctx)
		if err != nil {
			return nil, nil, err
		}
		fsClient, err := app.Firestore(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("firestore: %w", err)
		}
		rt.closers = append(rt.closers, fsClient.Close)
		st = store.NewFirestore(fsClient, rt.cfg.UserID, rt.logger)

		if name := rt.cfg.Firebase.StorageBucket; name != "" {
			sc, err := app.Storage(ctx)
			if err != nil {
				return nil, nil, fmt.Errorf("storage: %w", err)
			}
			handle, err := sc.DefaultBucket()
			if err != nil {
				return nil, nil, fmt.Errorf("storage bucket: %w", err)
			}
			bl = blob.NewBucket(handle, name)
		}
		if !rt.cfg.NoAuth {
			if rt.auth, err = app.Auth(ctx); err != nil {
				return nil, nil, fmt.Errorf("firebase auth: %w", err)
			}
		}
	} else {
		if !rt.cfg.NoAuth {
			return nil, nil, errAuthNeedsFirebase
		}
		fs, err := store.NewFileStore(rt.paths.StoreDir, rt.logger)
		if err != nil {
			return nil, nil, err
		}
		st = fs
	}

	if bl == nil {
		local, err := blob.NewLocal(rt.paths.UploadsDir, "/uploads/")
		if err != nil {
			return nil, nil, err
		}
		bl = local
	}
	return st, bl, nil
}

// newCompleter returns the configured LLM client, or llm.Unconfigured so
// that generation falls back to rule-based text.
func newCompleter(ctx context.Context, cfg config.LLM) (llm.Completer, error) {
	switch cfg.Provider() {
	case "gemini":
		return llm.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case "openai":
		return llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	}
	return llm.Unconfigured{}, nil
}

// boot restores the local snapshot and then reloads from the store. A
// snapshot that fails to restore is dropped. A failed reload is tolerated
// when a snapshot was restored.
func (rt *runtime) boot(ctx context.Context) error {
	restored, err := rt.engine.RestoreSnapshot(ctx)
	if err != nil {
		rt.logger.Warn("snapshot restore failed, clearing it", "error", err)
		if cerr := rt.engine.ClearSnapshot(ctx); cerr != nil {
			rt.logger.Warn("snapshot clear failed", "error", cerr)
		}
	}
	if err := rt.engine.Load(ctx); err != nil {
		if !restored {
			return err
		}
		rt.logger.Warn("store load failed, running from snapshot", "error", err)
	}
	return nil
}
