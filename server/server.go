// Package server runs the accept loop and per-connection dispatcher: it
// owns the listening socket and hands each accepted connection off to a
// goroutine that drives one of the protocol engines to completion.
package server

import (
	"errors"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/duskbyte/filedrop/internal/defaults"
	"github.com/duskbyte/filedrop/observability"
	"github.com/duskbyte/filedrop/protocol"
	"github.com/duskbyte/filedrop/registry"
	"github.com/duskbyte/filedrop/wire"
)

// Config controls the accept loop and per-connection behavior.
type Config struct {
	ReadTimeout time.Duration          // Per-read deadline extension; 0 disables it.
	Logger      *log.Logger            // Connection lifecycle logger; nil disables logging.
	Observer    observability.Observer // Metrics observer; nil uses the no-op observer.
}

// DefaultConfig returns the server's default runtime configuration.
func DefaultConfig() Config {
	return Config{
		ReadTimeout: defaults.ReadTimeout,
		Observer:    observability.NoopObserver,
	}
}

// Stats is a point-in-time snapshot of server activity.
type Stats struct {
	ActiveConns   int64
	TotalAccepted int64
	Users         int
}

// Server accepts connections and dispatches each to the Register,
// Reconnect, and SendFile protocol engines in turn.
type Server struct {
	cfg Config
	reg *registry.Registry

	activeConns   int64
	totalAccepted int64

	stopOnce sync.Once
	stopCh   chan struct{}
}

// New builds a Server over reg, substituting the no-op observer for a nil
// Config.Observer. A zero ReadTimeout is kept as is and disables the
// per-read deadline; DefaultConfig supplies the default timeout.
func New(reg *registry.Registry, cfg Config) *Server {
	if cfg.Observer == nil {
		cfg.Observer = observability.NoopObserver
	}
	return &Server{cfg: cfg, reg: reg, stopCh: make(chan struct{})}
}

// Stats returns a snapshot of current connection and user counts.
func (s *Server) Stats() Stats {
	return Stats{
		ActiveConns:   atomic.LoadInt64(&s.activeConns),
		TotalAccepted: atomic.LoadInt64(&s.totalAccepted),
		Users:         s.reg.Counts(),
	}
}

// Close stops the accept loop started by Serve.
func (s *Server) Close() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Serve accepts connections on ln until Close is called, running each on
// its own goroutine. It blocks until the listener closes or Close runs.
func (s *Server) Serve(ln net.Listener) error {
	go func() {
		<-s.stopCh
		_ = ln.Close()
	}()
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
				return nil
			default:
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return err
		}
		go s.handleConn(conn)
	}
}

// handleConn runs one connection end to end: Register or Reconnect,
// optionally chaining into SendFile on success, always closing the
// socket on return.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	atomic.AddInt64(&s.totalAccepted, 1)
	atomic.AddInt64(&s.activeConns, 1)
	defer atomic.AddInt64(&s.activeConns, -1)

	s.cfg.Observer.ConnOpened()
	defer s.cfg.Observer.ConnClosed()

	sess := &protocol.Session{
		Reg:         s.reg,
		Conn:        conn,
		Log:         s.cfg.Logger,
		ReadTimeout: s.cfg.ReadTimeout,
		Obs:         s.cfg.Observer,
	}

	header, err := sess.ReadHeader()
	if err != nil {
		return
	}

	var uuid [16]byte
	var ok bool
	switch header.Code {
	case wire.ReqRegister:
		uuid, ok, err = sess.RunRegister(header)
		if err == nil {
			s.cfg.Observer.Registered(ok)
		}
	case wire.ReqReconnect:
		uuid, ok, err = sess.RunReconnect(header)
		if err == nil {
			s.cfg.Observer.Reconnected(ok)
		}
	default:
		_ = sess.RespondGeneralError()
		return
	}
	if err != nil || !ok {
		return
	}

	next, err := sess.ReadHeader()
	if err != nil {
		return
	}
	if next.Code != wire.ReqSendFile {
		_ = sess.RespondGeneralError()
		return
	}
	if err := sess.RunSendFile(uuid, next); err != nil {
		return
	}
	s.cfg.Observer.Uploaded()
}
