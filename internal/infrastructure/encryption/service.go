package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"store-generator/internal/ports"
)

var ErrMalformedCiphertext = errors.New("malformed ciphertext")

// Service encrypts secrets with AES-256-GCM. Ciphertexts are base64(nonce || sealed).
type Service struct {
	aead cipher.AEAD
}

var _ ports.EncryptionService = (*Service)(nil)

// NewService builds the service from ENCRYPTION_KEY. A 64-char hex key is used as is;
// any other non-empty value is hashed to 32 bytes.
func NewService(key string) (*Service, error) {
	if key == "" {
		return nil, fmt.Errorf("encryption key is required")
	}
	raw, err := hex.DecodeString(key)
	if err != nil || len(raw) != 32 {
		sum := sha256.Sum256([]byte(key))
		raw = sum[:]
	}
	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcm: %w", err)
	}
	return &Service{aead: aead}, nil
}

func (s *Service) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (s *Service) Decrypt(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	n := s.aead.NonceSize()
	if len(data) < n {
		return "", ErrMalformedCiphertext
	}
	plain, err := s.aead.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}
	return string(plain), nil
}
