// Package protocol implements the per-connection state machines driven
// off one inbound connection: Register, Reconnect, SendFile, and the
// CRC-confirmation sub-dialog that follows a completed upload.
//
// Each engine is a free function over a shared *Session rather than a
// polymorphic base-class hierarchy: the dispatcher knows statically
// which engine a connection needs, so no runtime dispatch is required.
package protocol

import (
	"errors"
	"io"
	"log"
	"time"

	"github.com/duskbyte/filedrop/ferrors"
	"github.com/duskbyte/filedrop/observability"
	"github.com/duskbyte/filedrop/registry"
	"github.com/duskbyte/filedrop/wire"
)

// ErrProtocolSequenceViolation marks a request that arrived with the
// wrong code or a mismatched client_id at a checkpoint.
var ErrProtocolSequenceViolation = errors.New("protocol: sequence violation")

// ErrBadConfirmationCode marks a CRC-confirmation request whose code is
// not one of 900 (CRC-OK), 901 (CRC-bad), or 902 (CRC-bad-final).
var ErrBadConfirmationCode = errors.New("protocol: bad confirmation code")

// ErrUnknownUser marks a SendFile request whose client_id is not in the
// registry.
var ErrUnknownUser = errors.New("protocol: unknown user")

// Conn is the full-duplex byte stream an engine needs. *net.TCPConn and
// any net.Conn satisfy it; test doubles can implement SetReadDeadline as
// a no-op.
type Conn interface {
	io.Reader
	io.Writer
	SetReadDeadline(t time.Time) error
}

// Session is one connection's protocol context: the registry it reads
// and writes, the socket it speaks over, a logger for lifecycle events
// (mirroring the original implementation's stdout prints), and the
// per-read deadline extension described alongside the wire contract.
type Session struct {
	Reg         *registry.Registry
	Conn        Conn
	Log         *log.Logger
	ReadTimeout time.Duration
	Obs         observability.Observer
}

func (s *Session) logf(format string, args ...any) {
	if s.Log != nil {
		s.Log.Printf(format, args...)
	}
}

func (s *Session) observer() observability.Observer {
	if s.Obs != nil {
		return s.Obs
	}
	return observability.NoopObserver
}

func (s *Session) extendDeadline() {
	if s.ReadTimeout > 0 {
		_ = s.Conn.SetReadDeadline(time.Now().Add(s.ReadTimeout))
	}
}

// readHeader reads and decodes the next request header from the connection.
func (s *Session) readHeader() (wire.RequestHeader, error) {
	s.extendDeadline()
	return wire.ReadRequestHeader(s.Conn)
}

// ReadHeader is the dispatcher-facing form of readHeader: it reads the
// very first frame of a connection, before any engine has been chosen.
func (s *Session) ReadHeader() (wire.RequestHeader, error) {
	return s.readHeader()
}

// RespondGeneralError is the dispatcher-facing form of respondError, for
// frames that don't match any known request code.
func (s *Session) RespondGeneralError() error {
	return s.respondError()
}

// readPayload reads exactly size bytes of payload.
func (s *Session) readPayload(size uint32) ([]byte, error) {
	s.extendDeadline()
	return wire.ReadPayload(s.Conn, size)
}

// respond writes a response header and payload in one frame.
func (s *Session) respond(code wire.ResponseCode, payload []byte) error {
	h := wire.NewResponseHeader(code, uint32(len(payload)))
	return wire.WriteResponse(s.Conn, h, payload)
}

// respondError writes a GeneralError response (empty payload), used by
// every engine boundary error per the error-handling design.
func (s *Session) respondError() error {
	return s.respond(wire.RespGeneralError, nil)
}

func wrap(stage ferrors.Stage, code ferrors.Code, err error) error {
	return ferrors.Wrap(stage, code, err)
}
