package protocol

import (
	"crypto/rsa"

	"github.com/duskbyte/filedrop/cryptoutil"
	"github.com/duskbyte/filedrop/ferrors"
	"github.com/duskbyte/filedrop/wire"
)

// RunReconnect executes ReconnectionRequestProtocol. Acceptance requires
// both that the requested name is already registered and that the user
// identified by the request's client_id has a public key on file;
// otherwise the connection degrades to an inline re-registration using
// Register's key-exchange steps 4-6.
//
// ok reports whether the engine finished successfully and the
// connection may chain into SendFile.
func (s *Session) RunReconnect(header wire.RequestHeader) (uuid [16]byte, ok bool, err error) {
	if header.PayloadSize != wire.ReconnectPayloadSize {
		_ = s.respondError()
		return uuid, false, wrap(ferrors.StageReconnect, ferrors.CodeMalformedFrame, wire.ErrMalformedFrame)
	}
	payload, err := s.readPayload(header.PayloadSize)
	if err != nil {
		return uuid, false, wrap(ferrors.StageReconnect, ferrors.CodeTransportIO, err)
	}
	req, err := wire.UnpackReconnectRequest(payload)
	if err != nil {
		_ = s.respondError()
		return uuid, false, wrap(ferrors.StageReconnect, ferrors.CodeMalformedFrame, err)
	}

	// Acceptance per spec §4.5 step 3 (preserving the original's literal
	// check, §9): the requested name must already be registered, and
	// the user found by client_id — not necessarily the same user as
	// the one named — must have a public key on file.
	_, nameKnown := s.Reg.FindByName(req.Name)
	byUUID, uuidKnown := s.Reg.FindByUUID(header.ClientID)
	accepted := nameKnown && uuidKnown && byUUID.PublicKey != nil

	if accepted {
		return s.acceptReconnect(header.ClientID, byUUID.PublicKey)
	}
	return s.rejectReconnect(req.Name, header.ClientID)
}

// acceptReconnect implements the accepted path: a fresh AES key,
// clearing any partially-received packets (the UserFile itself is
// kept), wrapped under the user's existing public key.
func (s *Session) acceptReconnect(uuid [16]byte, pub *rsa.PublicKey) ([16]byte, bool, error) {
	aesKey, err := s.Reg.RotateAESKey(uuid)
	if err != nil {
		_ = s.respondError()
		return uuid, false, wrap(ferrors.StageReconnect, ferrors.CodeTransportIO, err)
	}
	s.Reg.ClearFilePackets(uuid)

	wrapped, err := cryptoutil.WrapAESKey(aesKey, pub)
	if err != nil {
		_ = s.respondError()
		return uuid, false, wrap(ferrors.StageReconnect, ferrors.CodeTransportIO, err)
	}

	s.logf("reconnect: %x accepted, aes rotated", uuid)
	if err := s.respond(wire.RespReconnectOK, wire.PackKeyResponse(uuid, wrapped)); err != nil {
		return uuid, false, wrap(ferrors.StageReconnect, ferrors.CodeTransportIO, err)
	}
	return uuid, true, nil
}

// rejectReconnect implements the rejected path: remove any user matching
// (name, client_id), mint a new UUID, respond ReconnectRejected with the
// newly minted UUID (not the client-supplied one — this is the
// specified, preserved behavior even though it looks backwards), then
// run Register's key-exchange steps 4-6 under the new identity.
func (s *Session) rejectReconnect(name string, clientID [16]byte) (uuid [16]byte, ok bool, err error) {
	s.Reg.RemoveIfMatches(name, clientID)

	newUUID, regErr := s.Reg.Register(name)
	if regErr != nil {
		_ = s.respondError()
		return uuid, false, wrap(ferrors.StageReconnect, ferrors.CodeTransportIO, regErr)
	}

	s.logf("reconnect: %q rejected for %x, re-registered as %x", name, clientID, newUUID)
	if err := s.respond(wire.RespReconnectRejected, wire.PackUUIDResponse(newUUID)); err != nil {
		return newUUID, false, wrap(ferrors.StageReconnect, ferrors.CodeTransportIO, err)
	}

	if err := s.runKeyExchange(newUUID, name); err != nil {
		return newUUID, false, err
	}
	return newUUID, true, nil
}
