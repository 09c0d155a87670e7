package portconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadValidPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "port.info")
	if err := os.WriteFile(path, []byte("8443\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := Read(path); got != 8443 {
		t.Fatalf("got %d, want 8443", got)
	}
}

func TestReadMissingFileFallsBack(t *testing.T) {
	if got := Read(filepath.Join(t.TempDir(), "missing.info")); got != DefaultPort {
		t.Fatalf("got %d, want %d", got, DefaultPort)
	}
}

func TestReadGarbageFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "port.info")
	if err := os.WriteFile(path, []byte("not-a-port\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := Read(path); got != DefaultPort {
		t.Fatalf("got %d, want %d", got, DefaultPort)
	}
}

func TestReadOutOfRangeFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "port.info")
	if err := os.WriteFile(path, []byte("99999\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := Read(path); got != DefaultPort {
		t.Fatalf("got %d, want %d", got, DefaultPort)
	}
}
