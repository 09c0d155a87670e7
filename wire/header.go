package wire

// RequestHeader is the 23-byte, little-endian frame header every client
// request opens with: client_id(16) ‖ client_version(1) ‖ code(2) ‖ payload_size(4).
type RequestHeader struct {
	ClientID      [16]byte
	ClientVersion uint8
	Code          RequestCode
	PayloadSize   uint32
}

// UnpackRequestHeader decodes a RequestHeader from exactly RequestHeaderSize bytes.
func UnpackRequestHeader(b []byte) (RequestHeader, error) {
	if len(b) != RequestHeaderSize {
		return RequestHeader{}, ErrMalformedFrame
	}
	var h RequestHeader
	copy(h.ClientID[:], b[0:16])
	h.ClientVersion = b[16]
	h.Code = RequestCode(U16(b[17:19]))
	h.PayloadSize = U32(b[19:23])
	return h, nil
}

// Pack encodes h into RequestHeaderSize bytes (used by tests and tooling
// that drive the protocol as a client would).
func (h RequestHeader) Pack() []byte {
	b := make([]byte, RequestHeaderSize)
	copy(b[0:16], h.ClientID[:])
	b[16] = h.ClientVersion
	PutU16(b[17:19], uint16(h.Code))
	PutU32(b[19:23], h.PayloadSize)
	return b
}

// ResponseHeader is the 7-byte, little-endian frame header every server
// response opens with: server_version(1) ‖ response_code(2) ‖ payload_size(4).
type ResponseHeader struct {
	ServerVersion uint8
	Code          ResponseCode
	PayloadSize   uint32
}

// Pack encodes h into ResponseHeaderSize bytes.
func (h ResponseHeader) Pack() []byte {
	b := make([]byte, ResponseHeaderSize)
	b[0] = h.ServerVersion
	PutU16(b[1:3], uint16(h.Code))
	PutU32(b[3:7], h.PayloadSize)
	return b
}

// UnpackResponseHeader decodes a ResponseHeader from exactly ResponseHeaderSize bytes.
// Provided for symmetry and for test clients that read server frames.
func UnpackResponseHeader(b []byte) (ResponseHeader, error) {
	if len(b) != ResponseHeaderSize {
		return ResponseHeader{}, ErrMalformedFrame
	}
	return ResponseHeader{
		ServerVersion: b[0],
		Code:          ResponseCode(U16(b[1:3])),
		PayloadSize:   U32(b[3:7]),
	}, nil
}

// NewResponseHeader builds a response header stamped with the constant server version.
func NewResponseHeader(code ResponseCode, payloadSize uint32) ResponseHeader {
	return ResponseHeader{ServerVersion: ServerVersion, Code: code, PayloadSize: payloadSize}
}
