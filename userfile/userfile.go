// Package userfile implements the packet reassembly buffer for a single
// in-flight upload: chunked ciphertext accumulates under a packet index
// until every index is present, at which point Finalize decrypts and
// persists the plaintext in one shot.
package userfile

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/duskbyte/filedrop/cryptoutil"
	"github.com/duskbyte/filedrop/internal/securefile"
	"github.com/duskbyte/filedrop/wire"
)

// ErrBadPadding is surfaced when AES decryption rejects the final block.
var ErrBadPadding = errors.New("userfile: bad padding")

// IncompletePacketSetError reports a gap in the packet index at the
// given position, discovered during Finalize.
type IncompletePacketSetError struct {
	Index uint16
}

func (e *IncompletePacketSetError) Error() string {
	return fmt.Sprintf("userfile: missing packet %d", e.Index)
}

// UserFile accumulates the 1024-byte ciphertext chunks of one upload and
// finalizes them into decrypted plaintext on disk.
type UserFile struct {
	FileName             string
	TotalPackets         uint16
	EncryptedContentSize uint32
	FilePath             string
	Packets              map[uint16][]byte
	CRC                  uint32
}

// New creates a UserFile capturing the metadata of the first SendFile
// packet received for an upload.
func New(fileName string, totalPackets uint16, encryptedContentSize uint32, filePath string) *UserFile {
	return &UserFile{
		FileName:             fileName,
		TotalPackets:         totalPackets,
		EncryptedContentSize: encryptedContentSize,
		FilePath:             filePath,
		Packets:              make(map[uint16][]byte),
	}
}

// AddPacket records data under packet index n, always wire.ChunkSize bytes
// on the wire (the final packet is zero-padded by the sender).
func (f *UserFile) AddPacket(n uint16, data []byte) {
	buf := make([]byte, len(data))
	copy(buf, data)
	f.Packets[n] = buf
}

// Complete reports whether every packet in [0, TotalPackets) has arrived.
func (f *UserFile) Complete() bool {
	return uint16(len(f.Packets)) == f.TotalPackets
}

// Clear empties the packet buffer, leaving the UserFile's metadata intact.
func (f *UserFile) Clear() {
	f.Packets = make(map[uint16][]byte)
}

// Finalize concatenates the packets in order, trims each to its declared
// ciphertext length, decrypts under aesKey, persists the plaintext to
// FilePath, and records the CRC-32 of the plaintext.
func (f *UserFile) Finalize(aesKey [wire.AESKeySize]byte) error {
	ciphertext := make([]byte, 0, f.EncryptedContentSize)
	for i := uint16(0); i < f.TotalPackets; i++ {
		chunk, ok := f.Packets[i]
		if !ok {
			return &IncompletePacketSetError{Index: i}
		}
		remaining := int(f.EncryptedContentSize) - int(i)*wire.ChunkSize
		n := wire.ChunkSize
		if remaining < n {
			n = remaining
		}
		if n < 0 {
			n = 0
		}
		if n > len(chunk) {
			n = len(chunk)
		}
		ciphertext = append(ciphertext, chunk[:n]...)
	}

	plaintext, err := cryptoutil.DecryptCBCZeroIV(ciphertext, aesKey[:])
	if err != nil {
		return ErrBadPadding
	}

	if err := securefile.MkdirAllOwnerOnly(filepath.Dir(f.FilePath)); err != nil {
		return err
	}
	if err := securefile.WriteFileAtomic(f.FilePath, plaintext, 0o600); err != nil {
		return err
	}

	f.CRC = cryptoutil.CRC32(plaintext)
	return nil
}
