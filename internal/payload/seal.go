package payload

import (
	"bytes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// Sealed file layout: magic, 24-byte nonce, XChaCha20-Poly1305 ciphertext of
// the JSON envelope. The content key derives from the deployment's master
// key via HKDF-SHA256. Like the original build step's packing, this is a
// deterrence wrapper against casual tampering and answer-key scraping, not a
// security boundary: the key ships with the deployment that opens it.

const (
	magic   = "TMPK1"
	keyInfo = "typemetry/payload/v1"
)

// ErrBadSeal covers every way an opened file can fail: wrong key, truncated
// data, flipped bytes. Callers get one error; the distinction is not
// actionable.
var ErrBadSeal = errors.New("payload: seal verification failed")

// IsSealed reports whether data carries the sealed-file magic.
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, []byte(magic))
}

// Seal encrypts an envelope under the master key.
func Seal(env *Envelope, masterKey string) ([]byte, error) {
	plain, err := env.Encode()
	if err != nil {
		return nil, err
	}
	aead, err := newAEAD(masterKey)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("payload: nonce: %w", err)
	}
	out := make([]byte, 0, len(magic)+len(nonce)+len(plain)+aead.Overhead())
	out = append(out, magic...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plain, nil), nil
}

// Open decrypts and parses a sealed file.
func Open(data []byte, masterKey string) (*Envelope, error) {
	if !IsSealed(data) {
		return nil, fmt.Errorf("payload: missing seal magic")
	}
	body := data[len(magic):]
	if len(body) < chacha20poly1305.NonceSizeX+chacha20poly1305.Overhead {
		return nil, ErrBadSeal
	}
	aead, err := newAEAD(masterKey)
	if err != nil {
		return nil, err
	}
	nonce := body[:chacha20poly1305.NonceSizeX]
	plain, err := aead.Open(nil, nonce, body[chacha20poly1305.NonceSizeX:], nil)
	if err != nil {
		return nil, ErrBadSeal
	}
	return Parse(plain)
}

// Decode accepts either form: sealed files open under the key, anything
// else parses as plain JSON. Authoring workflows keep envelopes unsealed
// until the pack step.
func Decode(data []byte, masterKey string) (*Envelope, error) {
	if IsSealed(data) {
		return Open(data, masterKey)
	}
	return Parse(data)
}

func newAEAD(masterKey string) (cipher.AEAD, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, []byte(masterKey), nil, []byte(keyInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("payload: derive key: %w", err)
	}
	return chacha20poly1305.NewX(key)
}
