// Package engine wires the three per-kind runtime managers together behind
// a single confRoot, the shared stats store, and one fsnotify watcher —
// the composition root cmd/localbridged delegates to.
package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/williamray70/localbridge/internal/channel/inbound"
	"github.com/williamray70/localbridge/internal/channel/outbound"
	"github.com/williamray70/localbridge/internal/channel/translate"
	"github.com/williamray70/localbridge/internal/config"
	"github.com/williamray70/localbridge/internal/runtime"
	"github.com/williamray70/localbridge/internal/stats"
)

// reloadDebounce coalesces bursts of filesystem events into a single
// reload.
const reloadDebounce = 250 * time.Millisecond

// Engine owns the stats store and the three per-kind managers.
type Engine struct {
	confRoot string
	log      zerolog.Logger

	Stats      *stats.Store
	Translate  *runtime.Manager[*config.TranslateConfig]
	Inbound    *runtime.Manager[*config.InboundConfig]
	Outbound   *runtime.Manager[*config.OutboundConfig]
}

// New builds an Engine rooted at confRoot, opening the stats file at
// confRoot/channel-stats.json (the file is created on the first counter
// update).
func New(confRoot string, log zerolog.Logger) *Engine {
	st := stats.Open(filepath.Join(confRoot, config.StatsFile))

	e := &Engine{confRoot: confRoot, log: log, Stats: st}

	e.Translate = runtime.NewManager[*config.TranslateConfig]("translate", st, log, func(cfg *config.TranslateConfig) (runtime.Runnable, error) {
		yamlDir := filepath.Join(confRoot, filepath.Dir(config.TranslateGlob))
		return translate.New(*cfg, confRoot, yamlDir, st, log)
	})
	e.Inbound = runtime.NewManager[*config.InboundConfig]("inbound", st, log, func(cfg *config.InboundConfig) (runtime.Runnable, error) {
		return inbound.New(*cfg, st, log)
	})
	e.Outbound = runtime.NewManager[*config.OutboundConfig]("outbound", st, log, func(cfg *config.OutboundConfig) (runtime.Runnable, error) {
		return outbound.New(*cfg, st, log)
	})

	return e
}

// LoadConfigs reads every YAML config under confRoot and returns the
// decode/validate errors for each kind separately, without starting
// anything — used by `localbridged validate`.
func (e *Engine) LoadConfigs() (translateErrs, inboundErrs, outboundErrs []error) {
	_, translateErrs = config.LoadTranslateConfigs(e.confRoot)
	_, inboundErrs = config.LoadInboundConfigs(e.confRoot)
	_, outboundErrs = config.LoadOutboundConfigs(e.confRoot)
	return
}

// Start loads every channel kind's configs and starts the enabled ones.
func (e *Engine) Start() error {
	tcfgs, terrs := config.LoadTranslateConfigs(e.confRoot)
	for _, err := range terrs {
		e.log.Error().Err(err).Msg("translate config error")
	}
	icfgs, ierrs := config.LoadInboundConfigs(e.confRoot)
	for _, err := range ierrs {
		e.log.Error().Err(err).Msg("inbound config error")
	}
	ocfgs, oerrs := config.LoadOutboundConfigs(e.confRoot)
	for _, err := range oerrs {
		e.log.Error().Err(err).Msg("outbound config error")
	}

	e.Translate.LoadAndStart(tcfgs)
	e.Inbound.LoadAndStart(icfgs)
	e.Outbound.LoadAndStart(ocfgs)
	return nil
}

// StopAll stops every running channel across all three kinds.
func (e *Engine) StopAll() {
	e.Translate.StopAll()
	e.Inbound.StopAll()
	e.Outbound.StopAll()
}

// WatchAndReload watches confRoot/channels for edits and calls Start again
// on settled changes, debounced by reloadDebounce, until ctx is canceled.
func (e *Engine) WatchAndReload(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting config watcher: %w", err)
	}
	defer watcher.Close()

	root := filepath.Join(e.confRoot, "channels")
	if err := watcher.Add(root); err != nil {
		return fmt.Errorf("watching %s: %w", root, err)
	}
	for _, sub := range []string{"Inbound", "Outbound"} {
		_ = watcher.Add(filepath.Join(root, sub)) // optional: may not exist yet
	}

	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if timer == nil {
				timer = time.AfterFunc(reloadDebounce, func() {
					e.log.Info().Msg("config changed, reloading channels")
					if err := e.Start(); err != nil {
						e.log.Error().Err(err).Msg("reload failed")
					}
				})
			} else {
				timer.Reset(reloadDebounce)
			}
			e.log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("config watcher event")
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.log.Warn().Err(err).Msg("config watcher error")
		}
	}
}
