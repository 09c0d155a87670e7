package protocol

import (
	"github.com/duskbyte/filedrop/cryptoutil"
	"github.com/duskbyte/filedrop/ferrors"
	"github.com/duskbyte/filedrop/registry"
	"github.com/duskbyte/filedrop/wire"
)

// RunRegister executes RegisterRequestProtocol: read the requested name,
// reject a collision with RegisterFail, or register the user and run
// the SendPublicKey key-exchange sub-step. ok reports whether the
// engine finished successfully and the connection may chain into
// SendFile; a false ok (or non-nil err) means the dispatcher should
// close the connection.
func (s *Session) RunRegister(header wire.RequestHeader) (uuid [16]byte, ok bool, err error) {
	if header.PayloadSize != wire.RegisterPayloadSize {
		_ = s.respondError()
		return uuid, false, wrap(ferrors.StageRegister, ferrors.CodeMalformedFrame, wire.ErrMalformedFrame)
	}
	payload, err := s.readPayload(header.PayloadSize)
	if err != nil {
		return uuid, false, wrap(ferrors.StageRegister, ferrors.CodeTransportIO, err)
	}
	req, err := wire.UnpackRegisterRequest(payload)
	if err != nil {
		_ = s.respondError()
		return uuid, false, wrap(ferrors.StageRegister, ferrors.CodeMalformedFrame, err)
	}

	uuid, regErr := s.Reg.Register(req.Name)
	if regErr == registry.ErrAlreadyRegistered {
		s.logf("register: %q already registered, rejecting", req.Name)
		_ = s.respond(wire.RespRegisterFail, nil)
		return uuid, false, nil
	}
	if regErr != nil {
		_ = s.respondError()
		return uuid, false, wrap(ferrors.StageRegister, ferrors.CodeTransportIO, regErr)
	}
	s.logf("register: %q -> %x", req.Name, uuid)
	if err := s.respond(wire.RespRegisterOK, wire.PackUUIDResponse(uuid)); err != nil {
		return uuid, false, wrap(ferrors.StageRegister, ferrors.CodeTransportIO, err)
	}

	if err := s.runKeyExchange(uuid, req.Name); err != nil {
		return uuid, false, err
	}
	return uuid, true, nil
}

// runKeyExchange implements RegisterRequestProtocol steps 4-6: expect a
// SendPublicKey request for the just-registered uuid/name, store the
// public key (rotating the AES key), and reply with the wrapped key.
// Shared verbatim by the reconnect-rejected fallback path.
func (s *Session) runKeyExchange(uuid [16]byte, name string) error {
	header, err := s.readHeader()
	if err != nil {
		return wrap(ferrors.StageRegister, ferrors.CodeTransportIO, err)
	}
	if header.Code != wire.ReqSendPublicKey || header.ClientID != uuid {
		// Consume a SendPublicKey-sized payload first, so the error reply
		// is not written while the client is still sending its request.
		if header.PayloadSize == wire.SendPublicKeyPayloadSize {
			_, _ = s.readPayload(header.PayloadSize)
		}
		_ = s.respondError()
		return wrap(ferrors.StageRegister, ferrors.CodeProtocolSequenceViolation, ErrProtocolSequenceViolation)
	}
	if header.PayloadSize != wire.SendPublicKeyPayloadSize {
		_ = s.respondError()
		return wrap(ferrors.StageRegister, ferrors.CodeMalformedFrame, wire.ErrMalformedFrame)
	}

	payload, err := s.readPayload(header.PayloadSize)
	if err != nil {
		return wrap(ferrors.StageRegister, ferrors.CodeTransportIO, err)
	}
	req, err := wire.UnpackSendPublicKeyRequest(payload)
	if err != nil {
		_ = s.respondError()
		return wrap(ferrors.StageRegister, ferrors.CodeMalformedFrame, err)
	}
	if req.Name != name {
		_ = s.respondError()
		return wrap(ferrors.StageRegister, ferrors.CodeProtocolSequenceViolation, ErrProtocolSequenceViolation)
	}

	pub, err := cryptoutil.ParseRSAPublicKey(req.PublicKey)
	if err != nil {
		_ = s.respondError()
		return wrap(ferrors.StageRegister, ferrors.CodeMalformedFrame, err)
	}

	aesKey, err := s.Reg.SetPublicKey(name, pub)
	if err != nil {
		_ = s.respondError()
		return wrap(ferrors.StageRegister, ferrors.CodeTransportIO, err)
	}
	wrapped, err := cryptoutil.WrapAESKey(aesKey, pub)
	if err != nil {
		_ = s.respondError()
		return wrap(ferrors.StageRegister, ferrors.CodeTransportIO, err)
	}

	s.logf("register: %q key accepted, aes wrapped for %x", name, uuid)
	if err := s.respond(wire.RespKeyAccepted, wire.PackKeyResponse(uuid, wrapped)); err != nil {
		return wrap(ferrors.StageRegister, ferrors.CodeTransportIO, err)
	}
	return nil
}
