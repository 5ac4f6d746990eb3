package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"strings"

	"github.com/go-faster/errors"
)

const encryptionVersion = "v1"

// Cipher encrypts secret values at rest with AES-256-GCM.
type Cipher struct {
	key []byte
}

// NewCipher builds a Cipher from a base64-encoded 32-byte key.
func NewCipher(encoded string) (*Cipher, error) {
	if encoded == "" {
		return nil, errors.New("encryption key is required")
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Wrap(err, "decode encryption key")
	}
	if len(key) != 32 {
		return nil, errors.Errorf("encryption key must be 32 bytes base64-encoded (got %d bytes)", len(key))
	}
	return &Cipher{key: key}, nil
}

// Encrypt seals plaintext and returns "v1:" + base64(nonce || ciphertext || tag).
func (c *Cipher) Encrypt(plaintext []byte) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nonce, nonce, plaintext, nil)
	return encryptionVersion + ":" + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a versioned ciphertext string produced by Encrypt.
func (c *Cipher) Decrypt(ciphertext string) ([]byte, error) {
	data := ciphertext
	if strings.HasPrefix(ciphertext, encryptionVersion+":") {
		data = ciphertext[len(encryptionVersion)+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(raw) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}
	return gcm.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
}
