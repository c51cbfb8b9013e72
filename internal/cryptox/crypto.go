// Package cryptox implements the encrypted envelope the migration importer
// uses for its pre-import backup of the legacy credential file. The key is
// derived from an operator passphrase with Argon2id and the payload is
// sealed with AES-256-GCM.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	saltSize  = 16
	nonceSize = 12
	keySize   = 32
)

var ErrMalformedEnvelope = errors.New("malformed backup envelope")

// DeriveBackupKey derives a 256-bit AES key from the passphrase and salt.
func DeriveBackupKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, keySize)
}

// EncryptBackup seals plaintext under a key derived from passphrase.
// The returned envelope is salt || nonce || ciphertext; a fresh salt and
// nonce are generated on every call.
func EncryptBackup(plaintext []byte, passphrase []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(DeriveBackupKey(passphrase, salt))
	if err != nil {
		return nil, err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, saltSize+nonceSize+len(plaintext)+aesgcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = aesgcm.Seal(out, nonce, plaintext, nil)
	return out, nil
}

// DecryptBackup opens an envelope produced by EncryptBackup.
func DecryptBackup(envelope []byte, passphrase []byte) ([]byte, error) {
	if len(envelope) < saltSize+nonceSize {
		return nil, ErrMalformedEnvelope
	}

	salt := envelope[:saltSize]
	nonce := envelope[saltSize : saltSize+nonceSize]
	ciphertext := envelope[saltSize+nonceSize:]

	block, err := aes.NewCipher(DeriveBackupKey(passphrase, salt))
	if err != nil {
		return nil, err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("open backup envelope: %w", err)
	}
	return plaintext, nil
}
