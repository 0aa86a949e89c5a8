package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/notepilot/internal/config"
	"github.com/abhisek/notepilot/internal/gateway"
	"github.com/abhisek/notepilot/internal/llm"
	"github.com/abhisek/notepilot/internal/logger"
	"github.com/abhisek/notepilot/internal/orchestrator"
	"github.com/abhisek/notepilot/internal/session"
	"github.com/abhisek/notepilot/internal/store"
	"github.com/abhisek/notepilot/internal/studypack"
	"github.com/abhisek/notepilot/internal/telemetry"
)

// deps is everything a command needs, built from config and flags.
type deps struct {
	cfg    *config.Config
	llmCfg llm.Config
	log    *logger.Logger

	st       *store.Store
	backend  store.Backend
	packs    *store.PackRepo
	sessions *store.SessionRepo
	session  *session.Context
	gateway  *gateway.Gateway

	closers []func()
}

// buildDeps opens the stores and builds the providers. Missing model
// credentials are not an error here: the gateway reports them per call.
func buildDeps(cmd *cobra.Command) (*deps, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if b, _ := cmd.Flags().GetString("store"); b != "" {
		cfg.Store.Backend = b
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	d := &deps{cfg: cfg, llmCfg: cfg.LLMConfig()}

	logPath := cfg.Log.File
	if logPath == "" {
		dir, err := store.DataDir()
		if err != nil {
			return nil, err
		}
		logPath = filepath.Join(dir, "notepilot.log")
	}
	if err := store.EnsureDir(logPath); err != nil {
		return nil, err
	}
	log, err := logger.New(logger.Options{Mode: cfg.Log.Mode, OutputPath: logPath})
	if err != nil {
		return nil, err
	}
	d.log = log
	d.closers = append(d.closers, log.Sync)

	if err := d.initTracing(); err != nil {
		d.Close()
		return nil, err
	}

	dbPath, err := resolveDBPath(cmd, cfg.Store.DB)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	d.st = st
	d.closers = append(d.closers, func() { st.Close() })

	switch cfg.Store.Backend {
	case "redis":
		rb, err := store.OpenRedis(ctx, cfg.Store.RedisAddr)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.backend = rb
		d.closers = append(d.closers, func() { rb.Close() })
	default:
		d.backend = st.Partitions()
	}

	d.packs = store.NewPackRepo(d.backend, log)
	d.sessions = store.NewSessionRepo(d.backend, log)
	d.session = session.New(d.sessions, log)

	events := st.EventRepo()
	var text llm.Provider
	if p, err := llm.NewProvider(ctx, d.llmCfg, events, log); err != nil {
		log.Warn("text provider unavailable", "provider", d.llmCfg.Provider, "error", err)
	} else {
		text = p
	}
	var images llm.ImageProvider
	if p, err := llm.NewImageProvider(ctx, d.llmCfg, events, log); err != nil {
		log.Info("image provider unavailable", "error", err)
	} else {
		images = p
	}
	d.gateway = gateway.New(text, images, gateway.ConfigFrom(d.llmCfg), log)

	log.Debug("dependencies ready", "db", dbPath, "backend", cfg.Store.Backend, "provider", d.llmCfg.Provider)
	return d, nil
}

func (d *deps) initTracing() error {
	if d.cfg.Trace == "" {
		return nil
	}
	dir, err := store.DataDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "traces.json")
	if err := store.EnsureDir(path); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open trace file: %w", err)
	}
	shutdown, err := telemetry.Init(telemetry.Options{Exporter: d.cfg.Trace, Writer: f, Version: version}, d.log)
	if err != nil {
		f.Close()
		return err
	}
	d.closers = append(d.closers, func() {
		_ = shutdown(context.Background())
		f.Close()
	})
	return nil
}

// orchestrator builds the application state machine on top of d.
func (d *deps) orchestrator() *orchestrator.Orchestrator {
	return orchestrator.New(orchestrator.Deps{
		Gateway: d.gateway,
		Packs:   d.packs,
		Session: d.session,
		ImageFactory: func(ctx context.Context, apiKey string) (llm.ImageProvider, error) {
			cfg := d.llmCfg
			cfg.Gemini.APIKey = apiKey
			if cfg.Provider == "mock" {
				cfg.Provider = "gemini"
			}
			return llm.NewImageProvider(ctx, cfg, d.st.EventRepo(), d.log)
		},
		Log: d.log,
	})
}

// Close releases resources in reverse order of acquisition.
func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.closers = nil
}

// identity returns the email for commands that act on one identity: the
// --email flag when set, otherwise the signed-in identity.
func (d *deps) identity(ctx context.Context, cmd *cobra.Command) (string, error) {
	if e, _ := cmd.Flags().GetString("email"); e != "" {
		return studypack.PartitionKey(e), nil
	}
	id, ok := d.session.Restore(ctx)
	if !ok {
		return "", fmt.Errorf("not signed in: run 'notepilot login' or pass --email")
	}
	return id.Email, nil
}
