package cryptoutil

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"errors"
)

// ErrBadPadding is returned when the final PKCS#7 block cannot be stripped.
var ErrBadPadding = errors.New("bad padding")

var zeroIV [aes.BlockSize]byte

// DecryptCBCZeroIV decrypts ciphertext with AES-CBC under a fixed
// all-zero 16-byte IV and strips PKCS#7 padding. This zero-IV policy is a
// deliberate compatibility constraint with the existing client and must
// not be "improved" by deriving or randomizing the IV.
func DecryptCBCZeroIV(ciphertext []byte, key []byte) ([]byte, error) {
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, ErrBadPadding
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	mode := cipher.NewCBCDecrypter(block, zeroIV[:])
	plain := make([]byte, len(ciphertext))
	mode.CryptBlocks(plain, ciphertext)
	return unpadPKCS7(plain)
}

// EncryptCBCZeroIV encrypts plaintext with AES-CBC under a fixed all-zero
// IV, applying PKCS#7 padding. Used by test clients that exercise the
// server's decrypt path; the server itself never encrypts.
func EncryptCBCZeroIV(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	padded := padPKCS7(plaintext, aes.BlockSize)
	out := make([]byte, len(padded))
	mode := cipher.NewCBCEncrypter(block, zeroIV[:])
	mode.CryptBlocks(out, padded)
	return out, nil
}

func padPKCS7(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padding := bytes.Repeat([]byte{byte(padLen)}, padLen)
	return append(append([]byte{}, data...), padding...)
}

func unpadPKCS7(data []byte) ([]byte, error) {
	n := len(data)
	if n == 0 {
		return nil, ErrBadPadding
	}
	padLen := int(data[n-1])
	if padLen == 0 || padLen > aes.BlockSize || padLen > n {
		return nil, ErrBadPadding
	}
	for _, b := range data[n-padLen:] {
		if int(b) != padLen {
			return nil, ErrBadPadding
		}
	}
	return data[:n-padLen], nil
}
