package wire

import "testing"

func TestRegisterRequestRoundTrip(t *testing.T) {
	b := PackRegisterRequest("alice")
	if len(b) != RegisterPayloadSize {
		t.Fatalf("got len %d, want %d", len(b), RegisterPayloadSize)
	}
	got, err := UnpackRegisterRequest(b)
	if err != nil {
		t.Fatalf("UnpackRegisterRequest: %v", err)
	}
	if got.Name != "alice" {
		t.Fatalf("got name %q, want alice", got.Name)
	}
}

func TestSendPublicKeyRequestRoundTrip(t *testing.T) {
	pub := make([]byte, RSAPubFieldSize)
	for i := range pub {
		pub[i] = byte(i)
	}
	b := PackSendPublicKeyRequest("bob", pub)
	if len(b) != SendPublicKeyPayloadSize {
		t.Fatalf("got len %d, want %d", len(b), SendPublicKeyPayloadSize)
	}
	got, err := UnpackSendPublicKeyRequest(b)
	if err != nil {
		t.Fatalf("UnpackSendPublicKeyRequest: %v", err)
	}
	if got.Name != "bob" {
		t.Fatalf("got name %q, want bob", got.Name)
	}
	if string(got.PublicKey) != string(pub) {
		t.Fatalf("public key mismatch")
	}
}

func TestSendFileRequestRoundTrip(t *testing.T) {
	var chunk [ChunkSize]byte
	copy(chunk[:], "ciphertext-bytes")
	req := SendFileRequest{
		ContentSize:  16,
		OrigSize:     5,
		PacketNumber: 0,
		TotalPackets: 1,
		FileName:     "hello.txt",
		Chunk:        chunk,
	}
	b := PackSendFileRequest(req)
	if len(b) != SendFilePayloadSize {
		t.Fatalf("got len %d, want %d", len(b), SendFilePayloadSize)
	}
	got, err := UnpackSendFileRequest(b)
	if err != nil {
		t.Fatalf("UnpackSendFileRequest: %v", err)
	}
	if got != req {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, req)
	}
}

func TestMalformedPayloadSizes(t *testing.T) {
	if _, err := UnpackRegisterRequest(make([]byte, RegisterPayloadSize-1)); err != ErrMalformedFrame {
		t.Fatalf("expected ErrMalformedFrame for short Register payload")
	}
	if _, err := UnpackSendFileRequest(make([]byte, SendFilePayloadSize+1)); err != ErrMalformedFrame {
		t.Fatalf("expected ErrMalformedFrame for oversized SendFile payload")
	}
	if _, _, _, _, err := UnpackFileReceivedResponse(make([]byte, FileReceivedPayloadSize-1)); err != ErrMalformedFrame {
		t.Fatalf("expected ErrMalformedFrame for short FileReceived payload")
	}
}

func TestNameFieldTrimsTrailingNULsOnly(t *testing.T) {
	b := make([]byte, NameFieldSize)
	copy(b, "carol")
	b[10] = 0x41 // stray non-zero byte after the logical end; NUL-trim from the tail stops at it
	b[11] = 0
	// Only trailing NULs are trimmed, so a non-zero byte embedded before trailing NULs
	// is part of the decoded string by spec (trim strips trailing NUL only).
	got := TrimmedString(b)
	if got[:5] != "carol" {
		t.Fatalf("got %q, want prefix carol", got)
	}
}
