// Package vault provides the symmetric cipher for the store's at-rest
// encryption.
//
// The wire format is "<ivHex>:<cipherHex>": a fresh random 16-byte IV per
// write, followed by AES-256-CBC ciphertext with PKCS#7 padding. The 256-bit
// key is the SHA-256 digest of the configured key string, so any passphrase
// length works.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DecryptError reports ciphertext that could not be decrypted: a malformed
// payload, a wrong key, or tampered data. The store treats it as a decode
// failure.
type DecryptError struct {
	Reason string
}

// Error implements the error interface.
func (e *DecryptError) Error() string {
	return fmt.Sprintf("decrypt failed: %s", e.Reason)
}

// IsDecryptError returns true if the error is a DecryptError.
// Uses errors.As to handle wrapped errors.
func IsDecryptError(err error) bool {
	var de *DecryptError
	return errors.As(err, &de)
}

// keyDigest derives the 32-byte AES key from the configured key string.
func keyDigest(key string) []byte {
	sum := sha256.Sum256([]byte(key))
	return sum[:]
}

// Encrypt seals plaintext under the given key string and returns the
// "<ivHex>:<cipherHex>" payload.
func Encrypt(plaintext []byte, key string) (string, error) {
	block, err := aes.NewCipher(keyDigest(key))
	if err != nil {
		return "", err
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	padded := pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext), nil
}

// Decrypt opens a "<ivHex>:<cipherHex>" payload with the given key string.
func Decrypt(payload string, key string) ([]byte, error) {
	ivHex, cipherHex, found := strings.Cut(payload, ":")
	if !found {
		return nil, &DecryptError{Reason: "missing iv separator"}
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != aes.BlockSize {
		return nil, &DecryptError{Reason: "malformed iv"}
	}
	ciphertext, err := hex.DecodeString(cipherHex)
	if err != nil || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, &DecryptError{Reason: "malformed ciphertext"}
	}

	block, err := aes.NewCipher(keyDigest(key))
	if err != nil {
		return nil, err
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, ok := unpad(plaintext, aes.BlockSize)
	if !ok {
		return nil, &DecryptError{Reason: "bad padding (wrong key or tampered data)"}
	}
	return unpadded, nil
}

// pad appends PKCS#7 padding up to the block size.
func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+n)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

// unpad strips and validates PKCS#7 padding.
func unpad(data []byte, blockSize int) ([]byte, bool) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, false
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, false
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, false
		}
	}
	return data[:len(data)-n], true
}
