// Command filedrop-keygen generates a 1024-bit RSA keypair for test and
// development clients of the protocol: a PEM private key for the client
// to hold, and the raw RSAPubFieldSize-wide public-key wire field the
// client embeds in its SendPublicKey request.
package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/duskbyte/filedrop/cryptoutil"
	"github.com/duskbyte/filedrop/internal/cmdutil"
	"github.com/duskbyte/filedrop/internal/securefile"
	"github.com/duskbyte/filedrop/internal/version"
)

var (
	buildVersion = "dev"
	commit       = "unknown"
	date         = "unknown"
)

type ready struct {
	Version        string `json:"version"`
	Commit         string `json:"commit"`
	Date           string `json:"date"`
	Bits           int    `json:"bits"`
	PrivateKeyFile string `json:"private_key_file"`
	PublicKeyFile  string `json:"public_key_file"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout io.Writer, stderr io.Writer) int {
	bits := 1024 // matches the wire format's 128-byte modulus (wire.WrappedAESSize).
	outDir := cmdutil.EnvString("FILEDROP_KEYGEN_OUT_DIR", ".")
	privFile := cmdutil.EnvString("FILEDROP_KEYGEN_PRIVATE_KEY_FILE", "")
	pubFile := cmdutil.EnvString("FILEDROP_KEYGEN_PUBLIC_KEY_FILE", "")
	var overwrite bool
	showVersion := false

	fs := flag.NewFlagSet("filedrop-keygen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&showVersion, "version", false, "print version and exit")
	fs.IntVar(&bits, "bits", bits, "RSA modulus size in bits (must be 1024 to match the wire format)")
	fs.StringVar(&outDir, "out-dir", outDir, "output directory for generated files (env: FILEDROP_KEYGEN_OUT_DIR)")
	fs.StringVar(&privFile, "private-key-file", privFile, "output file for the PEM private key (default: <out-dir>/client_key.pem) (env: FILEDROP_KEYGEN_PRIVATE_KEY_FILE)")
	fs.StringVar(&pubFile, "public-key-file", pubFile, "output file for the raw rsa_pub wire field (default: <out-dir>/client_key.pub) (env: FILEDROP_KEYGEN_PUBLIC_KEY_FILE)")
	fs.BoolVar(&overwrite, "overwrite", false, "overwrite existing files")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if showVersion {
		_, _ = fmt.Fprintln(stdout, version.String(buildVersion, commit, date))
		return 0
	}

	if bits != 1024 {
		fmt.Fprintln(stderr, "--bits must be 1024: the wire format's rsa_pub and wrapped_aes fields are sized for a 1024-bit modulus")
		return 2
	}

	outDir = strings.TrimSpace(outDir)
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if privFile == "" {
		privFile = filepath.Join(outDir, "client_key.pem")
	} else if !filepath.IsAbs(privFile) {
		privFile = filepath.Join(outDir, privFile)
	}
	if pubFile == "" {
		pubFile = filepath.Join(outDir, "client_key.pub")
	} else if !filepath.IsAbs(pubFile) {
		pubFile = filepath.Join(outDir, pubFile)
	}

	if err := cmdutil.RefuseOverwrite(privFile, overwrite); err != nil {
		return usageOrRuntime(stderr, err)
	}
	if err := cmdutil.RefuseOverwrite(pubFile, overwrite); err != nil {
		return usageOrRuntime(stderr, err)
	}

	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(priv),
	})
	pubWire, err := cryptoutil.MarshalRSAPublicKey(&priv.PublicKey)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if err := securefile.WriteFileAtomic(privFile, privPEM, 0o600); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := securefile.WriteFileAtomic(pubFile, pubWire, 0o644); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	_ = json.NewEncoder(stdout).Encode(ready{
		Version:        buildVersion,
		Commit:         commit,
		Date:           date,
		Bits:           bits,
		PrivateKeyFile: absOr(privFile),
		PublicKeyFile:  absOr(pubFile),
	})
	return 0
}

func usageOrRuntime(stderr io.Writer, err error) int {
	fmt.Fprintln(stderr, err)
	if cmdutil.IsUsage(err) {
		return 2
	}
	return 1
}

func absOr(path string) string {
	a, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return a
}
