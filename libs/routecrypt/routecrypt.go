// Package routecrypt turns plaintext route segment names into opaque,
// URL-safe tokens and back. Encoding is randomized (a fresh nonce per call),
// so two encodings of the same plaintext differ; only the round trip is
// stable. Callers that need a shared token for link generation must encode
// once and reuse the result.
package routecrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Standard base64 emits three characters that are unsafe in a path segment.
var urlSafeReplacer = strings.NewReplacer("+", "-", "/", "_", "=", "~")
var urlSafeRestorer = strings.NewReplacer("-", "+", "_", "/", "~", "=")

// Cipher encrypts and decrypts route segments under a shared secret.
type Cipher struct {
	aead cipher.AEAD
}

// New derives an AES-256-GCM cipher from the shared secret.
func New(secret string) (*Cipher, error) {
	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create AEAD: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Encode encrypts plaintext into an opaque URL-safe token.
func (c *Cipher) Encode(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return urlSafeReplacer.Replace(base64.StdEncoding.EncodeToString(sealed)), nil
}

// Decode inverts Encode. It reports ok=false for anything Encode did not
// produce: wrong alphabet, truncated input, a token sealed under a different
// secret, or a result that is not valid UTF-8. It never panics; the router
// treats ok=false as an unrecognized route.
func (c *Cipher) Decode(token string) (plaintext string, ok bool) {
	if token == "" {
		return "", false
	}
	raw, err := base64.StdEncoding.DecodeString(urlSafeRestorer.Replace(token))
	if err != nil {
		return "", false
	}
	if len(raw) < c.aead.NonceSize() {
		return "", false
	}
	nonce, sealed := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	opened, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", false
	}
	if !utf8.Valid(opened) {
		return "", false
	}
	return string(opened), true
}
