package wire

// RegisterRequest carries the name a client wants to register.
type RegisterRequest struct {
	Name string
}

// UnpackRegisterRequest decodes a 255-byte Register request payload.
func UnpackRegisterRequest(b []byte) (RegisterRequest, error) {
	if len(b) != RegisterPayloadSize {
		return RegisterRequest{}, ErrMalformedFrame
	}
	return RegisterRequest{Name: TrimmedString(b[:NameFieldSize])}, nil
}

// PackRegisterRequest encodes a Register request payload (used by test clients).
func PackRegisterRequest(name string) []byte {
	b := make([]byte, RegisterPayloadSize)
	PutString(b[:NameFieldSize], name)
	return b
}

// SendPublicKeyRequest carries the name being confirmed and the client's RSA public key.
type SendPublicKeyRequest struct {
	Name      string
	PublicKey []byte // raw RSA public key bytes, width RSAPubFieldSize
}

// UnpackSendPublicKeyRequest decodes a 415-byte SendPublicKey request payload.
func UnpackSendPublicKeyRequest(b []byte) (SendPublicKeyRequest, error) {
	if len(b) != SendPublicKeyPayloadSize {
		return SendPublicKeyRequest{}, ErrMalformedFrame
	}
	pub := make([]byte, RSAPubFieldSize)
	copy(pub, b[NameFieldSize:NameFieldSize+RSAPubFieldSize])
	return SendPublicKeyRequest{
		Name:      TrimmedString(b[:NameFieldSize]),
		PublicKey: pub,
	}, nil
}

// PackSendPublicKeyRequest encodes a SendPublicKey request payload.
func PackSendPublicKeyRequest(name string, pub []byte) []byte {
	b := make([]byte, SendPublicKeyPayloadSize)
	PutString(b[:NameFieldSize], name)
	copy(b[NameFieldSize:NameFieldSize+RSAPubFieldSize], pub)
	return b
}

// ReconnectRequest carries the name a returning client is reconnecting as.
type ReconnectRequest struct {
	Name string
}

// UnpackReconnectRequest decodes a 255-byte Reconnect request payload.
func UnpackReconnectRequest(b []byte) (ReconnectRequest, error) {
	if len(b) != ReconnectPayloadSize {
		return ReconnectRequest{}, ErrMalformedFrame
	}
	return ReconnectRequest{Name: TrimmedString(b[:NameFieldSize])}, nil
}

// PackReconnectRequest encodes a Reconnect request payload.
func PackReconnectRequest(name string) []byte {
	b := make([]byte, ReconnectPayloadSize)
	PutString(b[:NameFieldSize], name)
	return b
}

// SendFileRequest carries one packet of a fragmented, encrypted upload.
type SendFileRequest struct {
	ContentSize  uint32 // total ciphertext length declared by the first packet
	OrigSize     uint32 // original (plaintext) file size, informational
	PacketNumber uint16
	TotalPackets uint16
	FileName     string
	Chunk        [ChunkSize]byte // always ChunkSize wide on the wire; tail beyond ContentSize is padding
}

// UnpackSendFileRequest decodes a 1291-byte SendFile request payload.
func UnpackSendFileRequest(b []byte) (SendFileRequest, error) {
	if len(b) != SendFilePayloadSize {
		return SendFileRequest{}, ErrMalformedFrame
	}
	var r SendFileRequest
	r.ContentSize = U32(b[0:4])
	r.OrigSize = U32(b[4:8])
	r.PacketNumber = U16(b[8:10])
	r.TotalPackets = U16(b[10:12])
	nameOff := 12
	chunkOff := nameOff + NameFieldSize
	r.FileName = TrimmedString(b[nameOff:chunkOff])
	copy(r.Chunk[:], b[chunkOff:chunkOff+ChunkSize])
	return r, nil
}

// PackSendFileRequest encodes a SendFile request payload.
func PackSendFileRequest(r SendFileRequest) []byte {
	b := make([]byte, SendFilePayloadSize)
	PutU32(b[0:4], r.ContentSize)
	PutU32(b[4:8], r.OrigSize)
	PutU16(b[8:10], r.PacketNumber)
	PutU16(b[10:12], r.TotalPackets)
	nameOff := 12
	chunkOff := nameOff + NameFieldSize
	PutString(b[nameOff:chunkOff], r.FileName)
	copy(b[chunkOff:chunkOff+ChunkSize], r.Chunk[:])
	return b
}

// CRCConfirmRequest carries the file name the CRC confirmation applies to.
type CRCConfirmRequest struct {
	FileName string
}

// UnpackCRCConfirmRequest decodes a 255-byte CRC-confirmation request payload.
func UnpackCRCConfirmRequest(b []byte) (CRCConfirmRequest, error) {
	if len(b) != CRCConfirmPayloadSize {
		return CRCConfirmRequest{}, ErrMalformedFrame
	}
	return CRCConfirmRequest{FileName: TrimmedString(b[:NameFieldSize])}, nil
}

// PackCRCConfirmRequest encodes a CRC-confirmation request payload.
func PackCRCConfirmRequest(fileName string) []byte {
	b := make([]byte, CRCConfirmPayloadSize)
	PutString(b[:NameFieldSize], fileName)
	return b
}

// PackUUIDResponse encodes a 16-byte uuid-only response payload
// (used by RegisterOK and ReconnectRejected).
func PackUUIDResponse(uuid [16]byte) []byte {
	b := make([]byte, UUIDRespPayloadSize)
	copy(b, uuid[:])
	return b
}

// UnpackUUIDResponse decodes a 16-byte uuid-only response payload.
func UnpackUUIDResponse(b []byte) (uuid [16]byte, err error) {
	if len(b) != UUIDRespPayloadSize {
		return uuid, ErrMalformedFrame
	}
	copy(uuid[:], b)
	return uuid, nil
}

// PackKeyResponse encodes the uuid ‖ wrapped_aes response payload
// (used by KeyAccepted and ReconnectOK).
func PackKeyResponse(uuid [16]byte, wrappedAES []byte) []byte {
	b := make([]byte, KeyRespPayloadSize)
	copy(b[:16], uuid[:])
	copy(b[16:16+WrappedAESSize], wrappedAES)
	return b
}

// UnpackKeyResponse decodes the uuid ‖ wrapped_aes response payload.
func UnpackKeyResponse(b []byte) (uuid [16]byte, wrappedAES []byte, err error) {
	if len(b) != KeyRespPayloadSize {
		return uuid, nil, ErrMalformedFrame
	}
	copy(uuid[:], b[:16])
	wrappedAES = make([]byte, WrappedAESSize)
	copy(wrappedAES, b[16:16+WrappedAESSize])
	return uuid, wrappedAES, nil
}

// PackFileReceivedResponse encodes the FileReceivedWithCRC payload.
func PackFileReceivedResponse(uuid [16]byte, encContentSize uint32, fileName string, crc uint32) []byte {
	b := make([]byte, FileReceivedPayloadSize)
	copy(b[:16], uuid[:])
	PutU32(b[16:20], encContentSize)
	nameOff := 20
	crcOff := nameOff + NameFieldSize
	PutString(b[nameOff:crcOff], fileName)
	PutU32(b[crcOff:crcOff+4], crc)
	return b
}

// UnpackFileReceivedResponse decodes the FileReceivedWithCRC payload.
func UnpackFileReceivedResponse(b []byte) (uuid [16]byte, encContentSize uint32, fileName string, crc uint32, err error) {
	if len(b) != FileReceivedPayloadSize {
		return uuid, 0, "", 0, ErrMalformedFrame
	}
	copy(uuid[:], b[:16])
	encContentSize = U32(b[16:20])
	nameOff := 20
	crcOff := nameOff + NameFieldSize
	fileName = TrimmedString(b[nameOff:crcOff])
	crc = U32(b[crcOff : crcOff+4])
	return uuid, encContentSize, fileName, crc, nil
}

// PackThanksResponse encodes the Thanks payload: uuid ‖ zero-pad to ThanksPayloadSize.
func PackThanksResponse(uuid [16]byte) []byte {
	b := make([]byte, ThanksPayloadSize)
	copy(b[:16], uuid[:])
	return b
}

// UnpackThanksResponse decodes the Thanks payload.
func UnpackThanksResponse(b []byte) (uuid [16]byte, err error) {
	if len(b) != ThanksPayloadSize {
		return uuid, ErrMalformedFrame
	}
	copy(uuid[:], b[:16])
	return uuid, nil
}
