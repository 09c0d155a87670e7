package userfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/duskbyte/filedrop/cryptoutil"
	"github.com/duskbyte/filedrop/wire"
)

func TestCompleteReportsMissingPackets(t *testing.T) {
	f := New("report.pdf", 3, 2500, "/tmp/irrelevant")
	if f.Complete() {
		t.Fatalf("expected incomplete with no packets")
	}
	f.AddPacket(0, make([]byte, wire.ChunkSize))
	f.AddPacket(1, make([]byte, wire.ChunkSize))
	if f.Complete() {
		t.Fatalf("expected incomplete with one packet missing")
	}
	f.AddPacket(2, make([]byte, wire.ChunkSize))
	if !f.Complete() {
		t.Fatalf("expected complete once all packets arrive")
	}
}

func TestClearEmptiesPackets(t *testing.T) {
	f := New("a.bin", 1, 10, "/tmp/irrelevant")
	f.AddPacket(0, make([]byte, wire.ChunkSize))
	f.Clear()
	if f.Complete() {
		t.Fatalf("expected incomplete after clear")
	}
	if len(f.Packets) != 0 {
		t.Fatalf("expected empty packet map after clear")
	}
}

func TestFinalizeMissingPacketFails(t *testing.T) {
	f := New("a.bin", 2, 2048, filepath.Join(t.TempDir(), "a.bin"))
	f.AddPacket(0, make([]byte, wire.ChunkSize))
	key, _ := cryptoutil.NewAESKey()
	err := f.Finalize(key)
	if _, ok := err.(*IncompletePacketSetError); !ok {
		t.Fatalf("expected IncompletePacketSetError, got %v", err)
	}
}

func TestFinalizeDecryptsAndPersists(t *testing.T) {
	key, err := cryptoutil.NewAESKey()
	if err != nil {
		t.Fatalf("NewAESKey: %v", err)
	}
	plaintext := []byte("the quick brown fox jumps over the lazy dog")
	ciphertext, err := cryptoutil.EncryptCBCZeroIV(plaintext, key[:])
	if err != nil {
		t.Fatalf("EncryptCBCZeroIV: %v", err)
	}

	dir := t.TempDir()
	dest := filepath.Join(dir, "sub", "fox.txt")
	f := New("fox.txt", 1, uint32(len(ciphertext)), dest)

	chunk := make([]byte, wire.ChunkSize)
	copy(chunk, ciphertext)
	f.AddPacket(0, chunk)

	if err := f.Finalize(key); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != string(plaintext) {
		t.Fatalf("got %q, want %q", got, plaintext)
	}
	if f.CRC != cryptoutil.CRC32(plaintext) {
		t.Fatalf("CRC mismatch")
	}
}

func TestFinalizeMultiplePacketsTrimsLast(t *testing.T) {
	key, err := cryptoutil.NewAESKey()
	if err != nil {
		t.Fatalf("NewAESKey: %v", err)
	}
	plaintext := make([]byte, wire.ChunkSize+100)
	for i := range plaintext {
		plaintext[i] = byte(i)
	}
	ciphertext, err := cryptoutil.EncryptCBCZeroIV(plaintext, key[:])
	if err != nil {
		t.Fatalf("EncryptCBCZeroIV: %v", err)
	}

	dest := filepath.Join(t.TempDir(), "big.bin")
	f := New("big.bin", 2, uint32(len(ciphertext)), dest)

	first := make([]byte, wire.ChunkSize)
	copy(first, ciphertext[:wire.ChunkSize])
	f.AddPacket(0, first)

	second := make([]byte, wire.ChunkSize)
	copy(second, ciphertext[wire.ChunkSize:])
	f.AddPacket(1, second)

	if err := f.Finalize(key); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != string(plaintext) {
		t.Fatalf("plaintext mismatch after multi-packet reassembly")
	}
}

func TestFinalizeBadPaddingFails(t *testing.T) {
	key, err := cryptoutil.NewAESKey()
	if err != nil {
		t.Fatalf("NewAESKey: %v", err)
	}
	garbage := make([]byte, wire.ChunkSize)
	for i := range garbage {
		garbage[i] = 0xAB
	}
	dest := filepath.Join(t.TempDir(), "bad.bin")
	f := New("bad.bin", 1, wire.ChunkSize, dest)
	f.AddPacket(0, garbage)

	if err := f.Finalize(key); err != ErrBadPadding {
		t.Fatalf("expected ErrBadPadding, got %v", err)
	}
}
