package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/abhisek/fluentz/internal/advisor"
	"github.com/abhisek/fluentz/internal/config"
	"github.com/abhisek/fluentz/internal/emotion"
	"github.com/abhisek/fluentz/internal/export"
	"github.com/abhisek/fluentz/internal/llm"
	"github.com/abhisek/fluentz/internal/practice"
	"github.com/abhisek/fluentz/internal/session"
	"github.com/abhisek/fluentz/internal/speech"
	"github.com/abhisek/fluentz/internal/store"
	"github.com/abhisek/fluentz/internal/transcript"
)

// Deps holds the components shared by the TUI, the headless runner and
// the API server. Optional services are nil when not configured.
type Deps struct {
	Config *config.Config
	Store  *store.Store
	Log    *slog.Logger

	Catalog     practice.Catalog
	Provider    llm.Provider
	Speech      *speech.Client
	Signals     emotion.SignalService
	Advisor     session.Advisor
	Sink        session.Sink
	Transcriber transcript.Transcriber
}

// Build wires the configured services around an open store. A provider
// that fails to initialize is logged and left out; the app works without
// LLM features.
func Build(ctx context.Context, cfg *config.Config, st *store.Store, log *slog.Logger) (*Deps, error) {
	if log == nil {
		log = slog.Default()
	}
	d := &Deps{Config: cfg, Store: st, Log: log}

	switch cfg.Catalog.Source {
	case "http":
		d.Catalog = practice.NewHTTPCatalog(cfg.Catalog.BaseURL, cfg.Catalog.Timeout)
	case "builtin":
		d.Catalog = practice.NewMemoryCatalog(practice.SeedItems()...)
	default:
		d.Catalog = st.PracticeRepo()
	}

	llmCfg, err := cfg.ToLLM()
	if err != nil {
		return nil, fmt.Errorf("llm config: %w", err)
	}
	if llmCfg.Enabled() {
		provider, err := llm.NewProvider(ctx, llmCfg, st.EventRepo(), log)
		switch {
		case err == nil:
			d.Provider = provider
			log.Info("llm provider ready", "provider", llmCfg.Provider, "model", provider.ModelID())
		case errors.Is(err, llm.ErrDisabled):
		default:
			log.Warn("llm provider not configured, AI features unavailable", "error", err)
		}
	}

	if cfg.Speech.BaseURL != "" {
		d.Speech = speech.NewClient(cfg.Speech.BaseURL, cfg.Speech.Timeout, log)
		d.Transcriber = d.Speech
	}

	d.Signals = d.signals(cfg.Session.EmotionService)
	d.Advisor = d.advisor(cfg.Session.Advisor)

	var sink session.Sink = st.SessionRepo()
	if cfg.Export.OnFinish && cfg.Export.Dir != "" {
		sink = export.MultiSink{sink, &export.DirSink{Dir: cfg.Export.Dir, Format: cfg.Export.Format}}
	}
	d.Sink = sink

	return d, nil
}

func (d *Deps) signals(mode string) emotion.SignalService {
	switch mode {
	case "speech":
		if d.Speech != nil {
			return d.Speech
		}
	case "llm":
		if d.Provider != nil {
			return emotion.NewLLMLabeler(d.Provider, emotion.DefaultLabelerConfig())
		}
	case "auto":
		if d.Speech != nil {
			return d.Speech
		}
		if d.Provider != nil {
			return emotion.NewLLMLabeler(d.Provider, emotion.DefaultLabelerConfig())
		}
	}
	return nil
}

func (d *Deps) advisor(mode string) session.Advisor {
	switch mode {
	case "rules":
		return advisor.NewRuleAdvisor(d.Catalog, nil)
	case "llm":
		if d.Provider != nil {
			return advisor.New(d.Provider, d.Catalog, advisor.DefaultConfig(), nil)
		}
		d.Log.Warn("llm advisor requested without a provider, advisory disabled")
	case "catalog":
		if hc, ok := d.Catalog.(*practice.HTTPCatalog); ok {
			return hc
		}
	}
	return nil
}

// NewController creates a session controller from the wired services. An
// empty participant falls back to the configured one.
func (d *Deps) NewController(participant string) *session.Controller {
	cfg := d.Config.Session
	for _, p := range []string{participant, cfg.Participant, os.Getenv("USER"), "anonymous"} {
		if p != "" {
			participant = p
			break
		}
	}
	return session.New(session.Options{
		Catalog:        d.Catalog,
		Signals:        d.Signals,
		Advisor:        d.Advisor,
		Sink:           d.Sink,
		Participant:    participant,
		FetchTimeout:   cfg.FetchTimeout,
		EmotionTimeout: cfg.EmotionTimeout,
		AdviceTimeout:  cfg.AdviceTimeout,
		Logger:         d.Log,
	})
}

// SaveSnapshot persists the controller's session so it can be resumed.
// A finished and archived session clears the saved snapshot instead.
func (d *Deps) SaveSnapshot(ctx context.Context, c *session.Controller) error {
	repo := d.Store.SnapshotRepo()
	st, err := c.State()
	if err != nil {
		return err
	}
	if st.Phase == session.PhaseFinished && st.Archived {
		return repo.Clear(ctx)
	}
	snap, err := c.Snapshot()
	if err != nil {
		return err
	}
	if err := repo.Save(ctx, snap); err != nil {
		return err
	}
	return repo.Prune(ctx, 5)
}

// LatestSnapshot returns the saved in-progress session, or nil.
func (d *Deps) LatestSnapshot(ctx context.Context) (*session.Snapshot, error) {
	return d.Store.SnapshotRepo().Latest(ctx)
}
