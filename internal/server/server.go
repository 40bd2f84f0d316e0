// Package server runs the TCP listener. Each connection carries exactly
// one request and one response; the connection is closed after the
// response is written.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/mikkelsonm/bitboxing/internal/dispatch"
	"github.com/mikkelsonm/bitboxing/internal/protocol"
)

// Config holds configuration for the TCP server
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns sensible defaults for server configuration
func DefaultConfig() Config {
	return Config{
		Addr:            ":9999",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Server wraps the TCP listener with graceful shutdown support
type Server struct {
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
	config     Config

	mu       sync.Mutex
	listener net.Listener
	closed   bool
	wg       sync.WaitGroup
}

// New creates a new server
func New(dispatcher *dispatch.Dispatcher, config Config, logger *slog.Logger) *Server {
	return &Server{
		dispatcher: dispatcher,
		logger:     logger,
		config:     config,
	}
}

// Listen binds the configured address. It is separate from Serve so
// callers can learn the bound address before serving, which matters
// when the configured port is 0.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listen error: %w", err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("listening", slog.String("addr", ln.Addr().String()))
	return nil
}

// Serve accepts connections until Shutdown closes the listener. Each
// connection is handled on its own goroutine.
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return errors.New("serve called before listen")
	}

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			return fmt.Errorf("accept error: %w", err)
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// Start binds and serves in one call
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Shutdown stops accepting connections and waits for in-flight
// requests up to the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	s.mu.Lock()
	s.closed = true
	ln := s.listener
	s.mu.Unlock()

	if ln != nil {
		if err := ln.Close(); err != nil {
			return fmt.Errorf("close error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("server stopped")
		return nil
	case <-shutdownCtx.Done():
		return fmt.Errorf("shutdown error: %w", shutdownCtx.Err())
	}
}

// Addr returns the bound listen address, or the configured address if
// the server is not listening yet.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Addr
}

// handleConn runs one request/response exchange. Reads and writes are
// single bounded operations; a request that does not fit in one read
// is treated as whatever its first bytes decode to.
func (s *Server) handleConn(conn net.Conn) {
	defer func() { _ = conn.Close() }()

	if err := conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout)); err != nil {
		s.logger.Warn("set read deadline", slog.String("error", err.Error()))
		return
	}

	buf := make([]byte, protocol.MaxMessageSize)
	n, err := conn.Read(buf)
	if err != nil && n == 0 {
		s.logger.Warn("read failed",
			slog.String("remote", conn.RemoteAddr().String()),
			slog.String("error", err.Error()),
		)
		return
	}

	resp := s.dispatcher.Handle(context.Background(), string(buf[:n]))
	if len(resp) > protocol.MaxMessageSize {
		resp = resp[:protocol.MaxMessageSize]
	}

	if err := conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout)); err != nil {
		s.logger.Warn("set write deadline", slog.String("error", err.Error()))
		return
	}
	if _, err := conn.Write([]byte(resp)); err != nil {
		s.logger.Warn("write failed",
			slog.String("remote", conn.RemoteAddr().String()),
			slog.String("error", err.Error()),
		)
	}
}
