package protocol

import (
	"github.com/duskbyte/filedrop/ferrors"
	"github.com/duskbyte/filedrop/observability"
	"github.com/duskbyte/filedrop/wire"
)

// runCRCConfirm executes the three-way CRC-confirmation sub-dialog that
// follows a completed upload: the client reports back whether its own
// CRC-32 matched (900), mismatched and will retry on a new connection
// (901), or mismatched on a final attempt and is giving up (902).
func (s *Session) runCRCConfirm(uuid [16]byte, fileName string) error {
	header, err := s.readHeader()
	if err != nil {
		return wrap(ferrors.StageCRC, ferrors.CodeTransportIO, err)
	}
	if header.ClientID != uuid {
		_ = s.respondError()
		return wrap(ferrors.StageCRC, ferrors.CodeProtocolSequenceViolation, ErrProtocolSequenceViolation)
	}
	if header.PayloadSize != wire.CRCConfirmPayloadSize {
		_ = s.respondError()
		return wrap(ferrors.StageCRC, ferrors.CodeMalformedFrame, wire.ErrMalformedFrame)
	}

	payload, err := s.readPayload(header.PayloadSize)
	if err != nil {
		return wrap(ferrors.StageCRC, ferrors.CodeTransportIO, err)
	}
	req, err := wire.UnpackCRCConfirmRequest(payload)
	if err != nil {
		_ = s.respondError()
		return wrap(ferrors.StageCRC, ferrors.CodeMalformedFrame, err)
	}
	if req.FileName != fileName {
		s.Reg.ClearFile(uuid)
		_ = s.respondError()
		return wrap(ferrors.StageCRC, ferrors.CodeProtocolSequenceViolation, ErrProtocolSequenceViolation)
	}

	switch header.Code {
	case wire.ReqCRCOK:
		s.logf("crc: %x confirmed %q ok", uuid, fileName)
		s.observer().CRCResult(observability.CRCOutcomeConfirmed)
		return s.respondThanks(uuid)

	case wire.ReqCRCBad:
		// Mismatch on a non-final attempt: the client will retry the
		// whole upload on a new connection. Nothing to acknowledge.
		s.logf("crc: %x reported bad crc for %q, awaiting retry", uuid, fileName)
		s.observer().CRCResult(observability.CRCOutcomeRetrying)
		return nil

	case wire.ReqCRCBadFinal:
		s.logf("crc: %x abandoned %q after repeated bad crc", uuid, fileName)
		s.Reg.ClearFile(uuid)
		s.observer().CRCResult(observability.CRCOutcomeAbandoned)
		return s.respondThanks(uuid)

	default:
		s.Reg.ClearFile(uuid)
		_ = s.respondError()
		s.observer().CRCResult(observability.CRCOutcomeInvalid)
		return wrap(ferrors.StageCRC, ferrors.CodeBadConfirmationCode, ErrBadConfirmationCode)
	}
}

func (s *Session) respondThanks(uuid [16]byte) error {
	if err := s.respond(wire.RespThanks, wire.PackThanksResponse(uuid)); err != nil {
		return wrap(ferrors.StageCRC, ferrors.CodeTransportIO, err)
	}
	return nil
}
