package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/lembar/internal/assessmentgen"
	"github.com/abhisek/lembar/internal/blobstore"
	"github.com/abhisek/lembar/internal/config"
	"github.com/abhisek/lembar/internal/illustration"
	"github.com/abhisek/lembar/internal/llm"
	"github.com/abhisek/lembar/internal/logging"
	"github.com/abhisek/lembar/internal/metrics"
	"github.com/abhisek/lembar/internal/orchestrator"
	"github.com/abhisek/lembar/internal/store"
)

// env is what every command shares: settings, logger and the event log.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
}

// loadEnv reads configuration, applies the persistent flags and opens the
// event log. console controls whether logs go to stderr.
func loadEnv(cmd *cobra.Command, console bool) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(cfg.Logging(console))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug("event log opened", zap.String("path", dbPath))

	return &env{cfg: cfg, logger: logger, store: st}, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then db.path from config, then LEMBAR_DB or the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.DB.Path != "" {
		return cfg.DB.Path, store.EnsureDir(cfg.DB.Path)
	}
	return store.DefaultDBPath()
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.logger.Warn("close store", zap.Error(err))
	}
	_ = e.logger.Sync()
}

// blobs opens the illustration store selected by storage.type.
func (e *env) blobs(ctx context.Context) (blobstore.Store, error) {
	if e.cfg.Storage.Type == "minio" {
		s, err := blobstore.NewMinIOStore(ctx, e.cfg.Storage.MinIO)
		if err != nil {
			return nil, fmt.Errorf("open minio store: %w", err)
		}
		return s, nil
	}
	return blobstore.NewMemoryStore(), nil
}

// orchestrator wires providers, generator, illustrator and blob store.
func (e *env) orchestrator(ctx context.Context, blobs blobstore.Store, rec metrics.Recorder) (*orchestrator.Orchestrator, error) {
	pc := e.cfg.ProviderConfig()
	if err := pc.Validate(); err != nil {
		return nil, errors.Join(errors.New("LLM provider not configured"), err)
	}

	repo := e.store.EventRepo()
	provider, err := llm.NewProvider(ctx, pc, repo, e.logger)
	if err != nil {
		return nil, err
	}
	images, err := llm.NewImageProvider(ctx, pc, repo, e.logger)
	if err != nil {
		return nil, err
	}

	gen := assessmentgen.New(provider, e.cfg.GeneratorConfig(), e.logger)
	return orchestrator.New(gen, illustration.NewRequester(images), blobs, orchestrator.Options{
		Logger:  e.logger,
		Metrics: rec,
	}), nil
}
