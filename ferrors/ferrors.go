// Package ferrors provides a structured error type for classifying
// protocol-engine failures by stage and code, so the dispatcher and
// observability layer can react to a failure reason without
// string-matching error messages.
package ferrors

import "fmt"

// Stage identifies which part of the connection lifecycle failed.
type Stage string

const (
	StageCodec     Stage = "codec"
	StageRegister  Stage = "register"
	StageReconnect Stage = "reconnect"
	StageSendFile  Stage = "send_file"
	StageCRC       Stage = "crc"
	StageTransport Stage = "transport"
)

// Code is a stable, programmatic error identifier, matching the error
// kinds enumerated in the protocol's error-handling design.
type Code string

const (
	CodeMalformedFrame            Code = "malformed_frame"
	CodeAlreadyRegistered         Code = "already_registered"
	CodeUnknownUser               Code = "unknown_user"
	CodeProtocolSequenceViolation Code = "protocol_sequence_violation"
	CodeBadPadding                Code = "bad_padding"
	CodeIncompletePacketSet       Code = "incomplete_packet_set"
	CodeBadConfirmationCode       Code = "bad_confirmation_code"
	CodeTransportIO               Code = "transport_io"
	CodeTimeout                   Code = "timeout"
	CodeCanceled                  Code = "canceled"
)

// Error is a structured, programmatically identifiable error for one
// protocol-engine failure.
type Error struct {
	Stage Stage
	Code  Code
	Err   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.Stage, e.Code, e.Err)
	}
	return fmt.Sprintf("%s (%s)", e.Stage, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap builds an *Error tagging err with the given stage and code.
func Wrap(stage Stage, code Code, err error) error {
	return &Error{Stage: stage, Code: code, Err: err}
}
