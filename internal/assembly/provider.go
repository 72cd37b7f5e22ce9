package assembly

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"clipcast/internal/config"
	"clipcast/internal/deps"
	"clipcast/internal/logging"
	"clipcast/internal/services"
)

// versionProbeTimeout bounds the one-time binary verification run.
const versionProbeTimeout = 15 * time.Second

// Provider owns the lazily-initialized media engine. The first Acquire kicks
// off initialization; concurrent callers join the same in-flight attempt
// instead of starting their own. A failed attempt is forgotten so a later
// call can retry.
type Provider struct {
	cfg    *config.Config
	logger *slog.Logger
	runner Runner

	mu  sync.Mutex
	fut *engineFuture
}

type engineFuture struct {
	done   chan struct{}
	engine *Engine
	err    error
}

// NewProvider builds a Provider that executes the real ffmpeg binary.
func NewProvider(cfg *config.Config, logger *slog.Logger) *Provider {
	return NewProviderWithRunner(cfg, logger, ExecRunner{})
}

// NewProviderWithRunner is intended for tests that script engine behavior.
func NewProviderWithRunner(cfg *config.Config, logger *slog.Logger, runner Runner) *Provider {
	return &Provider{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "assembly"),
		runner: runner,
	}
}

// Acquire returns the shared engine, initializing it on first use. It blocks
// until initialization settles or ctx is done.
func (p *Provider) Acquire(ctx context.Context) (*Engine, error) {
	p.mu.Lock()
	fut := p.fut
	if fut == nil {
		fut = &engineFuture{done: make(chan struct{})}
		p.fut = fut
		go p.initialize(fut)
	}
	p.mu.Unlock()

	select {
	case <-fut.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if fut.err != nil {
		p.mu.Lock()
		if p.fut == fut {
			p.fut = nil
		}
		p.mu.Unlock()
		return nil, fut.err
	}
	return fut.engine, nil
}

func (p *Provider) initialize(fut *engineFuture) {
	defer close(fut.done)

	status := deps.ResolveFFmpeg(p.cfg.Video.FFmpegBinary)
	if !status.Available {
		fut.err = services.Wrap(services.ErrExternalTool, "assembly", "init", status.Detail, nil)
		return
	}

	engine, err := newEngine(status.Command, p.cfg.Paths.ScratchDir, p.runner, p.logger)
	if err != nil {
		fut.err = err
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), versionProbeTimeout)
	defer cancel()
	if err := engine.Run(ctx, "-version"); err != nil {
		engine.Close()
		fut.err = services.Wrap(services.ErrExternalTool, "assembly", "init", "ffmpeg version probe failed", err)
		return
	}

	p.logger.Info("media engine ready", logging.Args(logging.String("binary", status.Command))...)
	fut.engine = engine
}

// Close releases the engine if one was initialized.
func (p *Provider) Close() error {
	p.mu.Lock()
	fut := p.fut
	p.mu.Unlock()
	if fut == nil {
		return nil
	}
	<-fut.done
	if fut.engine != nil {
		return fut.engine.Close()
	}
	return nil
}
