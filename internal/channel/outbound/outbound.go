// Package outbound implements the Outbound channel engine: poll a source
// directory, connect to a remote MLLP endpoint, send each file, optionally
// wait for its ACK, then archive or delete the input.
// Poll/worker-pool shape grounded on the Translate channel engine in this
// same module, generalized to a fixed pool of concurrent senders instead of
// one goroutine per poll tick.
package outbound

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/williamray70/localbridge/internal/archive"
	"github.com/williamray70/localbridge/internal/config"
	"github.com/williamray70/localbridge/internal/hl7codec"
	"github.com/williamray70/localbridge/internal/ids"
	"github.com/williamray70/localbridge/internal/stats"
	"github.com/williamray70/localbridge/mllp"
)

// Channel is one running Outbound channel instance.
type Channel struct {
	cfg     config.OutboundConfig
	codec   *hl7codec.Codec
	st      *stats.Store
	log     zerolog.Logger
	limiter *rate.Limiter
}

// New builds a Channel. There is no load-time fallibility beyond config
// validation, already performed when the YAML was decoded. When
// cfg.MaxSendsPerSecond is 0 the channel sends as fast as its worker pool
// allows.
func New(cfg config.OutboundConfig, st *stats.Store, log zerolog.Logger) (*Channel, error) {
	var limiter *rate.Limiter
	if cfg.MaxSendsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.MaxSendsPerSecond), 1)
	}
	return &Channel{
		cfg:     cfg,
		codec:   hl7codec.New(),
		st:      st,
		log:     log.With().Str("channel", cfg.Name).Str("kind", "outbound").Logger(),
		limiter: limiter,
	}, nil
}

// Run polls sourceDir until ctx is canceled, distributing each tick's files
// across a fixed pool of concurrentSends workers.
func (c *Channel) Run(ctx context.Context) error {
	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < c.cfg.ConcurrentSends; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.worker(ctx, jobs)
		}()
	}
	defer func() {
		close(jobs)
		wg.Wait()
	}()

	interval := time.Duration(c.cfg.PollIntervalMs) * time.Millisecond
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}

		files, err := c.listBatch()
		if err != nil {
			c.log.Error().Err(err).Msg("listing source directory failed")
			continue
		}
		for _, f := range files {
			select {
			case jobs <- f:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func (c *Channel) worker(ctx context.Context, jobs <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-jobs:
			if !ok {
				return
			}
			c.processOne(ctx, f)
		}
	}
}

func (c *Channel) listBatch() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(c.cfg.SourceDir, c.cfg.Pattern))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

func (c *Channel) processOne(ctx context.Context, path string) {
	corrID := ids.New()
	log := c.log.With().Str("file", filepath.Base(path)).Str("trace", corrID).Logger()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		c.disposeError(path, fmt.Errorf("reading source file: %w", err), log)
		return
	}
	if len(data) == 0 {
		c.disposeError(path, fmt.Errorf("empty HL7 file"), log)
		return
	}

	msg, err := c.codec.Parse(data)
	if err != nil {
		c.disposeError(path, fmt.Errorf("parsing: %w", err), log)
		return
	}

	timeout := time.Duration(c.cfg.ConnectTimeoutMs+c.cfg.ReadTimeoutMs) * time.Millisecond
	client, err := mllp.Dial(
		fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port),
		mllp.WithTimeout(timeout),
	)
	if err != nil {
		c.disposeError(path, fmt.Errorf("connecting: %w", err), log)
		return
	}
	defer client.Close()

	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if bool(c.cfg.WaitForAck) {
		if _, err := client.Send(sendCtx, msg); err != nil {
			c.disposeError(path, fmt.Errorf("send: %w", err), log)
			return
		}
	} else if err := client.SendAsync(sendCtx, msg); err != nil {
		c.disposeError(path, fmt.Errorf("send: %w", err), log)
		return
	}

	name := filepath.Base(path)
	if bool(c.cfg.Archive.Enabled) && c.cfg.ArchiveDir != "" {
		if err := archive.Store(path, c.cfg.ArchiveDir, name, bool(c.cfg.Archive.Compress)); err != nil {
			log.Error().Err(err).Msg("archiving sent file failed")
		}
	} else if err := os.Remove(path); err != nil {
		log.Error().Err(err).Msg("removing sent file failed")
	}

	if err := c.st.IncProcessed(c.cfg.Name); err != nil {
		log.Warn().Err(err).Msg("stats flush failed")
	}
	log.Info().Msg("file sent")
}

// disposeError writes the sidecar and moves path to errorDir (or just logs
// and leaves the file if errorDir is unset).
func (c *Channel) disposeError(path string, cause error, log zerolog.Logger) {
	if err := c.st.IncErrors(c.cfg.Name); err != nil {
		log.Warn().Err(err).Msg("stats flush failed")
	}
	log.Error().Err(cause).Msg("send failed")

	if c.cfg.ErrorDir == "" {
		log.Warn().Msg("no errorDir configured, leaving file in place")
		return
	}
	if err := os.MkdirAll(c.cfg.ErrorDir, 0o755); err != nil {
		log.Error().Err(err).Msg("failed to create errorDir")
		return
	}

	name := filepath.Base(path)
	sidecar := filepath.Join(c.cfg.ErrorDir, name+".error.txt")
	body := fmt.Sprintf("channel: %s\nfile: %s\ntimestamp: %s\nexception: %T\nmessage: %s\n",
		c.cfg.Name, name, time.Now().Format(time.RFC3339), cause, cause.Error())
	if err := os.WriteFile(sidecar, []byte(body), 0o644); err != nil {
		log.Error().Err(err).Msg("failed to write error sidecar")
	}

	target := filepath.Join(c.cfg.ErrorDir, name)
	_ = os.Remove(target)
	if err := os.Rename(path, target); err != nil {
		log.Error().Err(err).Msg("failed to move source file to errorDir")
	}
}
