package protocol

import (
	"github.com/duskbyte/filedrop/ferrors"
	"github.com/duskbyte/filedrop/wire"
)

// RunSendFile executes SendFileRequestProtocol for the connection already
// identified by uuid (via a prior Register or Reconnect). It loops over
// inbound packets — rather than recursing per packet — until the packet
// set is complete, then finalizes the file and runs the CRC-confirmation
// sub-dialog.
//
// firstHeader is the 828 header that triggered the call; subsequent
// packets are read directly off the connection.
func (s *Session) RunSendFile(uuid [16]byte, firstHeader wire.RequestHeader) error {
	if _, ok := s.Reg.FindByUUID(uuid); !ok {
		_ = s.respondError()
		return wrap(ferrors.StageSendFile, ferrors.CodeUnknownUser, ErrUnknownUser)
	}

	header := firstHeader
	for {
		if header.ClientID != uuid || header.Code != wire.ReqSendFile {
			_ = s.respondError()
			return wrap(ferrors.StageSendFile, ferrors.CodeProtocolSequenceViolation, ErrProtocolSequenceViolation)
		}
		if header.PayloadSize != wire.SendFilePayloadSize {
			_ = s.respondError()
			return wrap(ferrors.StageSendFile, ferrors.CodeMalformedFrame, wire.ErrMalformedFrame)
		}

		payload, err := s.readPayload(header.PayloadSize)
		if err != nil {
			return wrap(ferrors.StageSendFile, ferrors.CodeTransportIO, err)
		}
		req, err := wire.UnpackSendFileRequest(payload)
		if err != nil {
			_ = s.respondError()
			return wrap(ferrors.StageSendFile, ferrors.CodeMalformedFrame, err)
		}

		if !s.Reg.SavePacket(uuid, req.FileName, req.TotalPackets, req.ContentSize, req.PacketNumber, req.Chunk[:]) {
			_ = s.respondError()
			return wrap(ferrors.StageSendFile, ferrors.CodeUnknownUser, ErrUnknownUser)
		}

		if s.Reg.FileComplete(uuid) {
			break
		}

		header, err = s.readHeader()
		if err != nil {
			return wrap(ferrors.StageSendFile, ferrors.CodeTransportIO, err)
		}
	}

	fileName, encSize, crc, err := s.Reg.FinalizeFile(uuid)
	if err != nil {
		_ = s.respondError()
		return wrap(ferrors.StageSendFile, ferrors.ClassifyFinalizeCode(err), err)
	}

	s.logf("sendfile: %x delivered %q (%d bytes, crc %08x)", uuid, fileName, encSize, crc)
	if err := s.respond(wire.RespFileReceivedCRC, wire.PackFileReceivedResponse(uuid, encSize, fileName, crc)); err != nil {
		return wrap(ferrors.StageSendFile, ferrors.CodeTransportIO, err)
	}

	return s.runCRCConfirm(uuid, fileName)
}
