package cryptoutil

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/duskbyte/filedrop/wire"
)

func TestNewAESKeyLength(t *testing.T) {
	k, err := NewAESKey()
	if err != nil {
		t.Fatalf("NewAESKey: %v", err)
	}
	if len(k) != wire.AESKeySize {
		t.Fatalf("got len %d, want %d", len(k), wire.AESKeySize)
	}
}

func TestNewUUIDUnique(t *testing.T) {
	a, err := NewUUID()
	if err != nil {
		t.Fatalf("NewUUID: %v", err)
	}
	b, err := NewUUID()
	if err != nil {
		t.Fatalf("NewUUID: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct uuids")
	}
}

func TestRSAPublicKeyRoundTrip(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	raw, err := MarshalRSAPublicKey(&priv.PublicKey)
	if err != nil {
		t.Fatalf("MarshalRSAPublicKey: %v", err)
	}
	if len(raw) != wire.RSAPubFieldSize {
		t.Fatalf("got len %d, want %d", len(raw), wire.RSAPubFieldSize)
	}
	got, err := ParseRSAPublicKey(raw)
	if err != nil {
		t.Fatalf("ParseRSAPublicKey: %v", err)
	}
	if got.E != priv.PublicKey.E || got.N.Cmp(priv.PublicKey.N) != 0 {
		t.Fatalf("round trip mismatch")
	}
}

func TestWrapUnwrapAESKey(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	key, err := NewAESKey()
	if err != nil {
		t.Fatalf("NewAESKey: %v", err)
	}
	wrapped, err := WrapAESKey(key, &priv.PublicKey)
	if err != nil {
		t.Fatalf("WrapAESKey: %v", err)
	}
	if len(wrapped) != wire.WrappedAESSize {
		t.Fatalf("got wrapped len %d, want %d", len(wrapped), wire.WrappedAESSize)
	}
	got, err := UnwrapAESKey(wrapped, priv)
	if err != nil {
		t.Fatalf("UnwrapAESKey: %v", err)
	}
	if got != key {
		t.Fatalf("unwrap mismatch")
	}
}

func TestDecryptCBCZeroIVRoundTrip(t *testing.T) {
	key, err := NewAESKey()
	if err != nil {
		t.Fatalf("NewAESKey: %v", err)
	}
	plaintext := []byte("hello, file transfer protocol")
	ct, err := EncryptCBCZeroIV(plaintext, key[:])
	if err != nil {
		t.Fatalf("EncryptCBCZeroIV: %v", err)
	}
	got, err := DecryptCBCZeroIV(ct, key[:])
	if err != nil {
		t.Fatalf("DecryptCBCZeroIV: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("got %q, want %q", got, plaintext)
	}
}

func TestDecryptCBCZeroIVBadPadding(t *testing.T) {
	key, err := NewAESKey()
	if err != nil {
		t.Fatalf("NewAESKey: %v", err)
	}
	garbage := bytes.Repeat([]byte{0xFF}, 32)
	if _, err := DecryptCBCZeroIV(garbage, key[:]); err == nil {
		t.Fatalf("expected padding error")
	}
}

func TestCRC32Deterministic(t *testing.T) {
	if CRC32([]byte("hello")) != CRC32([]byte("hello")) {
		t.Fatalf("expected deterministic checksum")
	}
	if CRC32([]byte("hello")) == CRC32([]byte("world")) {
		t.Fatalf("expected different checksums for different input")
	}
}
