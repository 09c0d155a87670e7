package wire

import (
	"bytes"
	"testing"
)

func TestRequestHeaderRoundTrip(t *testing.T) {
	h := RequestHeader{
		ClientID:      [16]byte{1, 2, 3},
		ClientVersion: 3,
		Code:          ReqRegister,
		PayloadSize:   RegisterPayloadSize,
	}
	got, err := UnpackRequestHeader(h.Pack())
	if err != nil {
		t.Fatalf("UnpackRequestHeader: %v", err)
	}
	if got != h {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, h)
	}
}

func TestRequestHeaderWrongSize(t *testing.T) {
	if _, err := UnpackRequestHeader(make([]byte, RequestHeaderSize-1)); err != ErrMalformedFrame {
		t.Fatalf("expected ErrMalformedFrame, got %v", err)
	}
}

func TestResponseHeaderLittleEndian(t *testing.T) {
	h := NewResponseHeader(RespRegisterOK, 16)
	b := h.Pack()
	want := []byte{ServerVersion, 0x40, 0x06, 0x10, 0x00, 0x00, 0x00} // 1600 = 0x0640, LE
	if !bytes.Equal(b, want) {
		t.Fatalf("got % x, want % x", b, want)
	}
	got, err := UnpackResponseHeader(b)
	if err != nil {
		t.Fatalf("UnpackResponseHeader: %v", err)
	}
	if got != h {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, h)
	}
}
