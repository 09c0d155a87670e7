package cryptoutil

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"errors"
	"math/big"

	"github.com/duskbyte/filedrop/wire"
)

// ErrInvalidPublicKey signals a malformed rsa_pub wire field.
var ErrInvalidPublicKey = errors.New("invalid rsa public key")

const (
	rsaModulusBytes  = 128 // 1024-bit modulus
	rsaExponentBytes = 4
)

// ParseRSAPublicKey decodes the fixed-width rsa_pub wire field
// (exponent[4] big-endian ‖ modulus[128] big-endian ‖ reserved) into an
// *rsa.PublicKey. The reserved tail pads the field to RSAPubFieldSize and
// is otherwise unused.
func ParseRSAPublicKey(raw []byte) (*rsa.PublicKey, error) {
	if len(raw) != wire.RSAPubFieldSize {
		return nil, ErrInvalidPublicKey
	}
	e := new(big.Int).SetBytes(raw[:rsaExponentBytes])
	if !e.IsInt64() || e.Int64() <= 0 {
		return nil, ErrInvalidPublicKey
	}
	n := new(big.Int).SetBytes(raw[rsaExponentBytes : rsaExponentBytes+rsaModulusBytes])
	if n.Sign() <= 0 {
		return nil, ErrInvalidPublicKey
	}
	return &rsa.PublicKey{N: n, E: int(e.Int64())}, nil
}

// MarshalRSAPublicKey encodes pub into the fixed-width rsa_pub wire field.
func MarshalRSAPublicKey(pub *rsa.PublicKey) ([]byte, error) {
	nBytes := pub.N.Bytes()
	if len(nBytes) > rsaModulusBytes {
		return nil, ErrInvalidPublicKey
	}
	out := make([]byte, wire.RSAPubFieldSize)
	eBig := big.NewInt(int64(pub.E))
	eBytes := eBig.Bytes()
	if len(eBytes) > rsaExponentBytes {
		return nil, ErrInvalidPublicKey
	}
	copy(out[rsaExponentBytes-len(eBytes):rsaExponentBytes], eBytes)
	copy(out[rsaExponentBytes+rsaModulusBytes-len(nBytes):rsaExponentBytes+rsaModulusBytes], nBytes)
	return out, nil
}

// WrapAESKey encrypts aesKey under pub using RSA-OAEP with the default
// SHA-1 MGF hash, matching the reference client's PKCS1_OAEP default.
// The output is exactly one RSA-modulus-size block (wire.WrappedAESSize
// for a 1024-bit key).
func WrapAESKey(aesKey [wire.AESKeySize]byte, pub *rsa.PublicKey) ([]byte, error) {
	return rsa.EncryptOAEP(sha1.New(), rand.Reader, pub, aesKey[:], nil)
}

// UnwrapAESKey decrypts a wrapped AES key with the matching private key.
// Exposed for the keygen/test tooling; the server itself never unwraps
// (only wraps for the client).
func UnwrapAESKey(wrapped []byte, priv *rsa.PrivateKey) ([wire.AESKeySize]byte, error) {
	var out [wire.AESKeySize]byte
	plain, err := rsa.DecryptOAEP(sha1.New(), rand.Reader, priv, wrapped, nil)
	if err != nil {
		return out, err
	}
	if len(plain) != wire.AESKeySize {
		return out, ErrInvalidPublicKey
	}
	copy(out[:], plain)
	return out, nil
}
