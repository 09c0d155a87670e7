// Package cryptoutil adapts the hybrid RSA/AES primitives the wire protocol
// relies on: symmetric key generation, RSA-OAEP wrap/unwrap, zero-IV
// AES-CBC decryption, CRC-32 checksums, and UUID minting.
package cryptoutil

import (
	"crypto/rand"

	"github.com/duskbyte/filedrop/wire"
	"github.com/google/uuid"
)

// NewAESKey returns wire.AESKeySize cryptographically random bytes.
func NewAESKey() ([wire.AESKeySize]byte, error) {
	var key [wire.AESKeySize]byte
	if _, err := rand.Read(key[:]); err != nil {
		return key, err
	}
	return key, nil
}

// NewUUID mints a random UUIDv4 as a 16-byte array, matching the on-wire
// client_id field width.
func NewUUID() ([16]byte, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return [16]byte{}, err
	}
	var out [16]byte
	copy(out[:], id[:])
	return out, nil
}
