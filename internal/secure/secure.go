package secure

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"

	"github.com/vertis-systems/orderchain/internal/apierror"
)

// Crypter encrypts documents with AES-GCM before they leave the system for
// the content-addressed blob store. The sealed form is nonce||ciphertext;
// there is no framing beyond that, the blob hash is the only handle.
type Crypter struct {
	key []byte
}

// NewCrypter creates a crypter from a raw AES key (16, 24 or 32 bytes).
func NewCrypter(key []byte) (*Crypter, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, apierror.NewAPIError(apierror.ErrEncryptionFailure, "invalid encryption key length", nil)
	}
	return &Crypter{key: key}, nil
}

// Encrypt seals plaintext with a fresh random nonce.
//
// Parameters:
// - plaintext []byte: The document bytes to seal.
//
// Returns:
// - []byte: nonce||ciphertext.
// - error: An error if the cipher cannot be constructed or the nonce cannot be drawn.
func (c *Crypter) Encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrEncryptionFailure, "unable to initialize cipher", err.Error())
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrEncryptionFailure, "unable to initialize cipher", err.Error())
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrEncryptionFailure, "unable to generate nonce", err.Error())
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a sealed document. A wrong key or corrupted blob surfaces as
// an ENCRYPTION_FAILURE; the error text never includes key material.
func (c *Crypter) Decrypt(sealed []byte) ([]byte, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrEncryptionFailure, "unable to initialize cipher", err.Error())
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrEncryptionFailure, "unable to initialize cipher", err.Error())
	}

	nonceSize := gcm.NonceSize()
	if len(sealed) < nonceSize {
		return nil, apierror.NewAPIError(apierror.ErrEncryptionFailure, "sealed document too short", nil)
	}

	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		// Wrong key and corrupted data are indistinguishable here.
		return nil, apierror.NewAPIError(apierror.ErrEncryptionFailure, "unable to decrypt document", nil)
	}

	return plaintext, nil
}
