package mllp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/williamray70/localbridge/encode"
	"github.com/williamray70/localbridge/parse"
)

// Server defines the interface for an MLLP server.
//
// A Server listens for incoming TCP connections, reads MLLP-framed HL7
// messages, passes them to a handler, and sends back the response. A
// connection stays open across multiple messages until the peer closes it,
// the read deadline lapses, or Shutdown is called.
type Server interface {
	// Serve accepts incoming connections on the listener and handles them.
	// This method blocks until the listener is closed or Shutdown is called.
	// Returns ErrServerClosed after graceful shutdown.
	Serve(listener net.Listener) error

	// Shutdown gracefully shuts down the server.
	// It stops accepting new connections and waits for existing connections
	// to complete or for the context to be canceled.
	Shutdown(ctx context.Context) error
}

// server is the concrete implementation of the Server interface.
type server struct {
	config       serverConfig
	encoder      encode.Encoder
	parser       parse.Parser
	listener     net.Listener
	connections  map[net.Conn]struct{}
	connMu       sync.Mutex
	activeConns  atomic.Int32
	shutdown     atomic.Bool
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	wg           sync.WaitGroup
}

// NewServer creates a new MLLP server with the provided options.
//
// At minimum, a handler must be configured using WithHandler.
func NewServer(opts ...ServerOption) Server {
	config := defaultServerConfig()
	for _, opt := range opts {
		opt(&config)
	}

	return &server{
		config:       config,
		encoder:      encode.New(),
		parser:       parse.New(),
		connections:  make(map[net.Conn]struct{}),
		shutdownChan: make(chan struct{}),
	}
}

// Serve accepts incoming connections and handles them.
func (s *server) Serve(listener net.Listener) error {
	if s.config.handler == nil {
		return ErrNoHandler
	}

	if s.config.tlsConfig != nil {
		listener = tls.NewListener(listener, s.config.tlsConfig)
	}

	s.listener = listener

	for {
		if s.shutdown.Load() {
			return ErrServerClosed
		}

		conn, err := listener.Accept()
		if err != nil {
			if s.shutdown.Load() {
				return ErrServerClosed
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return fmt.Errorf("mllp: accept error: %w", err)
		}

		if s.activeConns.Load() >= int32(s.config.maxConnections) {
			_ = conn.Close()
			continue
		}

		s.wg.Add(1)
		s.activeConns.Add(1)

		s.connMu.Lock()
		s.connections[conn] = struct{}{}
		s.connMu.Unlock()

		go s.handleConnection(conn)
	}
}

// handleConnection processes messages from a single client connection.
//
// With config.fallbackACK set, every frame gets exactly one response: a
// real ACK/NAK from the handler when the frame parses and the handler
// succeeds, or a fallback response built by config.fallbackACK otherwise
// (empty frame, raw-frame hook failure, parse failure, handler failure, or
// encode failure). Without a fallback those failures get no reply, and a
// handler that returns a nil response gets none either. This is stricter than the
// original library shape, which silently dropped unparseable frames; a
// broker that never answers a sender's frame stalls that sender's queue.
func (s *server) handleConnection(conn net.Conn) {
	log := s.config.log.With().Str("remote", conn.RemoteAddr().String()).Logger()

	defer func() {
		s.connMu.Lock()
		delete(s.connections, conn)
		s.connMu.Unlock()

		s.activeConns.Add(-1)
		_ = conn.Close()
		s.wg.Done()
	}()

	reader := NewReader(conn, MaxMessageSize)
	writer := NewWriter(conn)

	for {
		if s.shutdown.Load() {
			return
		}

		if s.config.readTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.config.readTimeout))
		}

		data, err := reader.ReadMessage()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, ErrConnectionClosed) {
				return
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return
			}
			log.Error().Err(err).Msg("mllp: frame read failed")
			return
		}

		if len(data) == 0 {
			s.respondFallback(writer, "", "EMPTY", log)
			continue
		}

		if s.config.onRawFrame != nil {
			if _, ferr := s.config.onRawFrame(data); ferr != nil {
				log.Error().Err(ferr).Msg("mllp: raw frame hook failed")
				s.respondFallback(writer, "", "PARSEFAIL", log)
				continue
			}
		}

		msg, err := s.parser.Parse(data)
		if err != nil {
			log.Warn().Err(err).Msg("mllp: parse failed")
			s.respondFallback(writer, "", "PARSEFAIL", log)
			continue
		}

		ctx, cancel := context.WithCancel(context.Background())
		resp, err := s.config.handler.HandleMessage(ctx, msg)
		cancel()

		if err != nil {
			log.Warn().Err(err).Msg("mllp: handler failed")
			s.respondFallback(writer, msg.ControlID(), "HANDLERFAIL", log)
			continue
		}
		if resp == nil {
			continue
		}

		if s.config.writeTimeout > 0 {
			_ = conn.SetWriteDeadline(time.Now().Add(s.config.writeTimeout))
		}

		respData, err := s.encoder.Encode(resp)
		if err != nil {
			log.Warn().Err(err).Msg("mllp: response encode failed")
			s.respondFallback(writer, msg.ControlID(), "ENCODEFAIL", log)
			continue
		}

		if err := writer.WriteMessage(respData); err != nil {
			log.Error().Err(err).Msg("mllp: response write failed")
			return
		}
	}
}

// respondFallback writes config.fallbackACK's response, if one is
// configured. A server with no fallback configured stays quiet on
// failure, matching plain request/response use where the caller has no
// use for a synthetic ACK.
func (s *server) respondFallback(writer *Writer, controlID, reason string, log zerolog.Logger) {
	if s.config.fallbackACK == nil {
		return
	}
	if err := writer.WriteMessage(s.config.fallbackACK(controlID, reason)); err != nil {
		log.Error().Err(err).Msg("mllp: fallback response write failed")
	}
}

// Shutdown gracefully shuts down the server.
func (s *server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		s.shutdown.Store(true)
		close(s.shutdownChan)

		if s.listener != nil {
			_ = s.listener.Close()
		}
	})

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.connMu.Lock()
		for conn := range s.connections {
			_ = conn.Close()
		}
		s.connMu.Unlock()

		select {
		case <-done:
		case <-time.After(100 * time.Millisecond):
		}

		return ctx.Err()
	}
}

// ActiveConnections returns the number of active client connections.
func (s *server) ActiveConnections() int {
	return int(s.activeConns.Load())
}

// Ensure server implements Server at compile time.
var _ Server = (*server)(nil)
