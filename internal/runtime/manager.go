// Package runtime implements the per-kind channel lifecycle manager: a
// singleton keyed by channel name holding configsByName and
// runningByName, serializing all state-mutating operations behind a
// single manager-wide lock, with sentinel errors for not-found and
// already-running conditions.
package runtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/williamray70/localbridge/internal/errs"
	"github.com/williamray70/localbridge/internal/stats"
)

// Named is satisfied by all three config record types.
type Named interface {
	ChannelName() string
	IsEnabled() bool
}

// Runnable is one live channel instance. Run blocks until ctx is canceled
// or the channel hits a fatal condition; it must return promptly once ctx
// is done.
type Runnable interface {
	Run(ctx context.Context) error
}

// GracePeriod bounds how long StopAll waits for workers to observe
// cancellation before moving on.
const GracePeriod = 5 * time.Second

type runningEntry struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager is the per-kind runtime manager.
type Manager[Cfg Named] struct {
	kind string
	log  zerolog.Logger
	st   *stats.Store

	newChannel func(Cfg) (Runnable, error)

	mu      sync.Mutex
	configs map[string]Cfg
	running map[string]*runningEntry
}

// NewManager constructs a Manager for one channel kind ("inbound",
// "translate", "outbound"). newChannel builds a fresh Runnable from a
// config record; it is called once per StartChannel.
func NewManager[Cfg Named](kind string, st *stats.Store, log zerolog.Logger, newChannel func(Cfg) (Runnable, error)) *Manager[Cfg] {
	return &Manager[Cfg]{
		kind:       kind,
		log:        log.With().Str("kind", kind).Logger(),
		st:         st,
		newChannel: newChannel,
		configs:    make(map[string]Cfg),
		running:    make(map[string]*runningEntry),
	}
}

// LoadAndStart stops every running channel of this kind, replaces the
// config set, then starts every enabled channel. A failure starting one
// channel is isolated and logged; the others proceed.
func (m *Manager[Cfg]) LoadAndStart(cfgs []Cfg) {
	m.StopAll()

	m.mu.Lock()
	m.configs = make(map[string]Cfg, len(cfgs))
	for _, c := range cfgs {
		m.configs[c.ChannelName()] = c
	}
	m.mu.Unlock()

	for _, c := range cfgs {
		if !c.IsEnabled() {
			continue
		}
		if err := m.StartChannel(c.ChannelName()); err != nil {
			m.log.Error().Err(err).Str("channel", c.ChannelName()).Msg("failed to start channel")
		}
	}
}

// StartChannel starts the named channel. Idempotent: starting a running
// channel is a no-op. Starting a disabled or unknown channel is an error.
func (m *Manager[Cfg]) StartChannel(name string) error {
	m.mu.Lock()
	if _, ok := m.running[name]; ok {
		m.mu.Unlock()
		return nil
	}
	cfg, ok := m.configs[name]
	if !ok {
		m.mu.Unlock()
		return errs.ErrChannelNotFound
	}
	m.mu.Unlock()
	if !cfg.IsEnabled() {
		return fmt.Errorf("channel %q is disabled", name)
	}

	ch, err := m.newChannel(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	m.mu.Lock()
	m.running[name] = &runningEntry{cancel: cancel, done: done}
	m.mu.Unlock()

	go func() {
		defer close(done)
		if err := ch.Run(ctx); err != nil {
			m.log.Error().Err(err).Str("channel", name).Msg("channel stopped")
		}
	}()
	return nil
}

// StopChannel stops the named channel and waits up to GracePeriod for it
// to exit. Stopping an unknown or already-stopped channel is a no-op.
func (m *Manager[Cfg]) StopChannel(name string) error {
	m.mu.Lock()
	rc, ok := m.running[name]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	delete(m.running, name)
	m.mu.Unlock()

	rc.cancel()
	select {
	case <-rc.done:
	case <-time.After(GracePeriod):
		m.log.Warn().Str("channel", name).Msg("channel did not stop within grace period")
	}
	return nil
}

// StopAll stops every running channel of this kind. Best-effort: errors
// are swallowed and logged. Guaranteed to leave runningByName empty.
func (m *Manager[Cfg]) StopAll() {
	m.mu.Lock()
	names := make([]string, 0, len(m.running))
	for name := range m.running {
		names = append(names, name)
	}
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, name := range names {
		name := name
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.StopChannel(name); err != nil {
				m.log.Warn().Err(err).Str("channel", name).Msg("error stopping channel")
			}
		}()
	}
	wg.Wait()
}

// GetRunningNames returns the names of all currently running channels.
func (m *Manager[Cfg]) GetRunningNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.running))
	for name := range m.running {
		out = append(out, name)
	}
	return out
}

// GetAllNames returns the names of all known (loaded) channels.
func (m *Manager[Cfg]) GetAllNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.configs))
	for name := range m.configs {
		out = append(out, name)
	}
	return out
}

// IsRunning reports whether name is currently running.
func (m *Manager[Cfg]) IsRunning(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.running[name]
	return ok
}

// GetProcessed returns name's processed counter from the shared stats store.
func (m *Manager[Cfg]) GetProcessed(name string) uint64 { return m.st.Get(name).Processed }

// GetErrors returns name's error counter from the shared stats store.
func (m *Manager[Cfg]) GetErrors(name string) uint64 { return m.st.Get(name).Errors }
