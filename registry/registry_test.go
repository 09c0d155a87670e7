package registry

import (
	"crypto/rand"
	"crypto/rsa"
	"path/filepath"
	"testing"

	"github.com/duskbyte/filedrop/wire"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "users"))
}

func TestRegisterRejectsDuplicateName(t *testing.T) {
	r := testRegistry(t)
	if _, err := r.Register("alice"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := r.Register("alice"); err != ErrAlreadyRegistered {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestSetPublicKeyRotatesAESKey(t *testing.T) {
	r := testRegistry(t)
	uuid, err := r.Register("bob")
	if err != nil {
		t.Fatal(err)
	}
	before, _ := r.FindByUUID(uuid)

	priv, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatal(err)
	}
	key, err := r.SetPublicKey("bob", &priv.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	after, _ := r.FindByUUID(uuid)

	if after.AESKey == before.AESKey {
		t.Fatal("expected AES key to rotate at SetPublicKey")
	}
	if key != after.AESKey {
		t.Fatal("expected SetPublicKey's return to match the stored key")
	}
}

func TestRotateAESKeyChangesKeyOnReconnect(t *testing.T) {
	r := testRegistry(t)
	uuid, _ := r.Register("carol")
	priv, _ := rsa.GenerateKey(rand.Reader, 1024)
	first, _ := r.SetPublicKey("carol", &priv.PublicKey)

	second, err := r.RotateAESKey(uuid)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatal("expected a freshly rotated AES key")
	}
}

func TestRemoveIfMatchesRequiresBothFields(t *testing.T) {
	r := testRegistry(t)
	uuid, _ := r.Register("dave")

	r.RemoveIfMatches("dave", [16]byte{0xff})
	if _, ok := r.FindByName("dave"); !ok {
		t.Fatal("mismatched uuid should not remove the user")
	}

	r.RemoveIfMatches("dave", uuid)
	if _, ok := r.FindByName("dave"); ok {
		t.Fatal("matching name+uuid should remove the user")
	}
}

func TestSavePacketLazyCreatesFileAndIsIdempotentPerIndex(t *testing.T) {
	r := testRegistry(t)
	uuid, _ := r.Register("erin")
	_, _ = r.SetPublicKey("erin", mustKey(t))

	if !r.SavePacket(uuid, "f.bin", 2, 2000, 0, make([]byte, wire.ChunkSize)) {
		t.Fatal("expected known uuid to accept packet")
	}
	if r.FileComplete(uuid) {
		t.Fatal("file should not be complete after one of two packets")
	}
	// Redelivering packet 0 must not require a second packet to complete.
	if !r.SavePacket(uuid, "f.bin", 2, 2000, 0, make([]byte, wire.ChunkSize)) {
		t.Fatal("redelivery of packet 0 should still succeed")
	}
	if !r.SavePacket(uuid, "f.bin", 2, 2000, 1, make([]byte, wire.ChunkSize)) {
		t.Fatal("expected packet 1 to be accepted")
	}
	if !r.FileComplete(uuid) {
		t.Fatal("file should be complete once both indices are present")
	}
}

func TestSavePacketRejectsUnknownUUID(t *testing.T) {
	r := testRegistry(t)
	if r.SavePacket([16]byte{1}, "f.bin", 1, 10, 0, make([]byte, wire.ChunkSize)) {
		t.Fatal("expected unknown uuid to be rejected")
	}
}

func mustKey(t *testing.T) *rsa.PublicKey {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatal(err)
	}
	return &priv.PublicKey
}
