// Package registry owns the in-memory user table: the mapping of UUID
// and username to a User record, symmetric-key lifecycle, and the
// per-user packet-reassembly buffer. It is the single shared mutable
// resource across connections (every mutating operation below is one
// critical section guarded by a process-wide mutex).
package registry

import (
	"crypto/rsa"
	"errors"
	"path/filepath"
	"sync"

	"github.com/duskbyte/filedrop/cryptoutil"
	"github.com/duskbyte/filedrop/internal/securefile"
	"github.com/duskbyte/filedrop/userfile"
	"github.com/duskbyte/filedrop/wire"
	"github.com/google/uuid"
)

// ErrAlreadyRegistered is returned by Register when the requested name
// collides with an existing user.
var ErrAlreadyRegistered = errors.New("registry: name already registered")

// User is one registered client: its identity, keys, upload directory,
// and at most one in-flight UserFile.
type User struct {
	UUID          [16]byte
	Name          string
	PublicKey     *rsa.PublicKey
	AESKey        [wire.AESKeySize]byte
	DirectoryPath string
	File          *userfile.UserFile
}

// HasPublicKey reports whether a public key has been set for this user.
func (u *User) HasPublicKey() bool {
	return u.PublicKey != nil
}

// Registry is the process-wide user table.
type Registry struct {
	mu        sync.Mutex
	byUUID    map[[16]byte]*User
	byName    map[string]*User
	baseDir   string // "users/" — per-user directories are created beneath this.
	newUUID   func() ([16]byte, error)
	newAESKey func() ([wire.AESKeySize]byte, error)
}

// New creates an empty registry rooted at baseDir (created by the caller
// before accepting connections).
func New(baseDir string) *Registry {
	return &Registry{
		byUUID:    make(map[[16]byte]*User),
		byName:    make(map[string]*User),
		baseDir:   baseDir,
		newUUID:   cryptoutil.NewUUID,
		newAESKey: cryptoutil.NewAESKey,
	}
}

// Register inserts a fresh user under name, returning its newly minted
// UUID. It rejects with ErrAlreadyRegistered when name collides.
//
// The AES key is left zero-valued here: per the protocol contract it is
// rotated (and first actually used) at SetPublicKey, so there is no
// observable difference from generating one now and discarding it.
func (r *Registry) Register(name string) ([16]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[name]; exists {
		return [16]byte{}, ErrAlreadyRegistered
	}

	uuid, err := r.uniqueUUIDLocked()
	if err != nil {
		return [16]byte{}, err
	}
	dir := filepath.Join(r.baseDir, uuidString(uuid))
	if err := securefile.MkdirAllOwnerOnly(dir); err != nil {
		return [16]byte{}, err
	}

	u := &User{UUID: uuid, Name: name, DirectoryPath: dir}
	r.byUUID[uuid] = u
	r.byName[name] = u
	return uuid, nil
}

// uniqueUUIDLocked mints a UUID, retrying on the (expected-zero) chance
// of a collision. Must be called with mu held.
func (r *Registry) uniqueUUIDLocked() ([16]byte, error) {
	for {
		id, err := r.newUUID()
		if err != nil {
			return [16]byte{}, err
		}
		if _, exists := r.byUUID[id]; !exists {
			return id, nil
		}
	}
}

// SetPublicKey stores pub on the user named name and rotates its AES
// key. The co-rotation is a protocol contract: the key wrapped and
// delivered after SendPublicKey is the one generated here, never the
// one (not) generated at Register.
func (r *Registry) SetPublicKey(name string, pub *rsa.PublicKey) ([wire.AESKeySize]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byName[name]
	if !ok {
		return [wire.AESKeySize]byte{}, errors.New("registry: unknown user")
	}
	key, err := r.newAESKey()
	if err != nil {
		return [wire.AESKeySize]byte{}, err
	}
	u.PublicKey = pub
	u.AESKey = key
	return key, nil
}

// RotateAESKey generates and stores a fresh AES key on the user
// identified by uuid (used on successful Reconnect).
func (r *Registry) RotateAESKey(uuid [16]byte) ([wire.AESKeySize]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byUUID[uuid]
	if !ok {
		return [wire.AESKeySize]byte{}, errors.New("registry: unknown user")
	}
	key, err := r.newAESKey()
	if err != nil {
		return [wire.AESKeySize]byte{}, err
	}
	u.AESKey = key
	return key, nil
}

// ClearFilePackets empties the packet buffer of uuid's in-flight
// UserFile, if any, leaving its metadata (and the UserFile itself)
// intact. A no-op when the user has no file or is unknown.
func (r *Registry) ClearFilePackets(uuid [16]byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byUUID[uuid]
	if !ok || u.File == nil {
		return
	}
	u.File.Clear()
}

// ClearFile drops uuid's in-flight UserFile entirely (used when the
// client reports a final bad CRC and the upload is abandoned).
func (r *Registry) ClearFile(uuid [16]byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byUUID[uuid]
	if !ok {
		return
	}
	u.File = nil
}

// UserView is a read-only copy of the fields callers need outside the lock.
type UserView struct {
	UUID          [16]byte
	Name          string
	PublicKey     *rsa.PublicKey
	AESKey        [wire.AESKeySize]byte
	DirectoryPath string
	HasFile       bool
}

func UserViewOf(u *User) UserView {
	return UserView{
		UUID:          u.UUID,
		Name:          u.Name,
		PublicKey:     u.PublicKey,
		AESKey:        u.AESKey,
		DirectoryPath: u.DirectoryPath,
		HasFile:       u.File != nil,
	}
}

// FindByName returns a UserView of the user named name, if any.
func (r *Registry) FindByName(name string) (UserView, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byName[name]
	if !ok {
		return UserView{}, false
	}
	return UserViewOf(u), true
}

// FindByUUID returns a UserView of the user identified by uuid, if any.
func (r *Registry) FindByUUID(uuid [16]byte) (UserView, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byUUID[uuid]
	if !ok {
		return UserView{}, false
	}
	return UserViewOf(u), true
}

// SavePacket lazy-creates uuid's UserFile on the first packet (capturing
// fileName/totalPackets/encryptedContentSize from it), then records
// data under packetNumber. Returns false if uuid is unknown.
func (r *Registry) SavePacket(uuid [16]byte, fileName string, totalPackets uint16, encryptedContentSize uint32, packetNumber uint16, data []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byUUID[uuid]
	if !ok {
		return false
	}
	if u.File == nil {
		filePath := filepath.Join(u.DirectoryPath, fileName)
		u.File = userfile.New(fileName, totalPackets, encryptedContentSize, filePath)
	}
	u.File.AddPacket(packetNumber, data)
	return true
}

// FileComplete reports whether uuid's in-flight file has every packet.
func (r *Registry) FileComplete(uuid [16]byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byUUID[uuid]
	if !ok || u.File == nil {
		return false
	}
	return u.File.Complete()
}

// FinalizeFile decrypts, persists, and checksums uuid's in-flight file
// under its currently stored AES key, returning the resulting metadata.
func (r *Registry) FinalizeFile(uuid [16]byte) (fileName string, encSize uint32, crc uint32, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byUUID[uuid]
	if !ok || u.File == nil {
		return "", 0, 0, errors.New("registry: no in-flight file")
	}
	file := u.File
	if err := file.Finalize(u.AESKey); err != nil {
		return "", 0, 0, err
	}
	return file.FileName, file.EncryptedContentSize, file.CRC, nil
}

// RemoveIfMatches erases the user with the given name iff its uuid also
// matches; otherwise it is a no-op.
func (r *Registry) RemoveIfMatches(name string, uuid [16]byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byName[name]
	if !ok || u.UUID != uuid {
		return
	}
	delete(r.byName, name)
	delete(r.byUUID, uuid)
}

// Counts returns the current number of registered users, for stats/metrics.
func (r *Registry) Counts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byUUID)
}

// uuidString renders a raw 16-byte identifier in standard dashed form
// for use as a per-user directory name.
func uuidString(id [16]byte) string {
	return uuid.UUID(id).String()
}
