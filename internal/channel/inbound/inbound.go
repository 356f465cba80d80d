// Package inbound implements the Inbound channel: accept MLLP connections
// on a TCP port, persist each received frame before attempting to parse
// it, and reply with an ACK (real or fallback) so a sender is never left
// without a response. The accept loop and connection lifecycle are
// mllp.Server's; this package supplies the raw-frame persistence hook,
// the fallback-ACK builder, and the Handler that turns a parsed message
// into an accept ACK.
package inbound

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/williamray70/localbridge/hl7"
	"github.com/williamray70/localbridge/mllp"

	"github.com/williamray70/localbridge/internal/config"
	"github.com/williamray70/localbridge/internal/errs"
	"github.com/williamray70/localbridge/internal/hl7codec"
	"github.com/williamray70/localbridge/internal/ids"
	"github.com/williamray70/localbridge/internal/stats"
)

// readDeadline bounds how long a connection may sit idle between frames.
const readDeadline = mllp.DefaultReadTimeout

// shutdownGrace bounds how long Run waits for in-flight connections to
// drain once ctx is canceled before forcing them closed.
const shutdownGrace = 5 * time.Second

// Channel is one running Inbound channel instance.
type Channel struct {
	cfg   config.InboundConfig
	codec *hl7codec.Codec
	st    *stats.Store
	log   zerolog.Logger

	collisionSeq int64
}

// New builds a Channel and ensures saveDir exists, auto-creating it.
// Failure to create it is a ConfigError, fatal for this channel.
func New(cfg config.InboundConfig, st *stats.Store, log zerolog.Logger) (*Channel, error) {
	if err := os.MkdirAll(cfg.SaveDir, 0o755); err != nil {
		return nil, &errs.ConfigError{Channel: cfg.Name, Reason: "creating saveDir", Cause: err}
	}
	return &Channel{
		cfg:   cfg,
		codec: hl7codec.New(),
		st:    st,
		log:   log.With().Str("channel", cfg.Name).Str("kind", "inbound").Logger(),
	}, nil
}

// Run binds the listener and serves MLLP connections until ctx is
// canceled, at which point it stops accepting and drains in-flight
// connections for up to shutdownGrace before returning.
func (c *Channel) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", c.cfg.Port))
	if err != nil {
		return &errs.BindError{Channel: c.cfg.Name, Port: c.cfg.Port, Cause: err}
	}

	srv := mllp.NewServer(
		mllp.WithHandler(mllp.HandlerFunc(c.handleMessage)),
		mllp.WithReadTimeout(readDeadline),
		mllp.WithWriteTimeout(readDeadline),
		mllp.WithLogger(c.log),
		mllp.WithRawFrameHook(c.persistRaw),
		mllp.WithFallbackACK(func(controlID, reason string) []byte {
			// A fallback ACK still answers the sender, so it counts as a
			// processed message the same way a real ACK does.
			if err := c.st.IncProcessed(c.cfg.Name); err != nil {
				c.log.Warn().Err(err).Msg("stats flush failed")
			}
			return hl7codec.FallbackACK(controlID, reason, time.Now())
		}),
	)

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(listener) }()

	select {
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			c.log.Warn().Err(err).Msg("shutdown did not drain cleanly")
		}
		<-serveErr
		return nil
	case err := <-serveErr:
		if errors.Is(err, mllp.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// persistRaw saves a raw frame to saveDir before parsing is attempted, so
// a parse failure never loses the original bytes. It is installed as the
// server's raw-frame hook.
func (c *Channel) persistRaw(data []byte) (string, error) {
	path, err := c.saveRaw(data)
	if err != nil {
		if ierr := c.st.IncErrors(c.cfg.Name); ierr != nil {
			c.log.Warn().Err(ierr).Msg("stats flush failed")
		}
		c.log.Error().Err(err).Msg("persisting inbound message failed")
		return "", err
	}
	c.log.Info().Str("file", filepath.Base(path)).Msg("inbound message saved")
	return path, nil
}

// handleMessage is the mllp.Server Handler: it builds an accept ACK for
// every successfully parsed message and records the channel's processed
// count. Parse, handler, and encode failures are answered by the
// server's fallback ACK instead of this function.
func (c *Channel) handleMessage(_ context.Context, msg hl7.Message) (hl7.Message, error) {
	hdr := c.codec.HeaderSummary(msg)
	log := c.log.With().
		Str("trace", ids.New()).
		Str("sendingApp", hdr.SendingApplication).
		Str("sendingFacility", hdr.SendingFacility).
		Str("patientId", hdr.PatientID).
		Logger()

	ackMsg, err := c.codec.GenerateAck(msg)
	if err != nil {
		log.Error().Err(err).Msg("generating ACK failed")
		return nil, err
	}

	if err := c.st.IncProcessed(c.cfg.Name); err != nil {
		log.Warn().Err(err).Msg("stats flush failed")
	}
	log.Info().Str("controlId", msg.ControlID()).Msg("inbound message processed")
	return ackMsg, nil
}

// saveRaw persists data to <saveDir>/<filePrefix><timestamp><fileSuffix>,
// appending a monotonic suffix on collision.
func (c *Channel) saveRaw(data []byte) (string, error) {
	ts := time.Now().Format("20060102_150405")
	ts = fmt.Sprintf("%s_%03d", ts, time.Now().Nanosecond()/1_000_000)

	base := c.cfg.FilePrefix + ts + c.cfg.FileSuffix
	path := filepath.Join(c.cfg.SaveDir, base)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	for errors.Is(err, os.ErrExist) {
		n := atomic.AddInt64(&c.collisionSeq, 1)
		altBase := fmt.Sprintf("%s%s_%d%s", c.cfg.FilePrefix, ts, n, c.cfg.FileSuffix)
		path = filepath.Join(c.cfg.SaveDir, altBase)
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	}
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return "", err
	}
	return path, nil
}
