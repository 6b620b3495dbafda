package fenris

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// hkdfSalt and hkdfInfoLabel are fixed per §4.2; the context suffix
// lets call sites (currently only the handshake) bind the derived key
// to a purpose without changing the salt.
const (
	hkdfSalt      = "fenris-salt"
	hkdfInfoLabel = "AES-Key"
)

// SealAESGCM encrypts plain under key (16, 24 or 32 bytes) and iv (12
// bytes), returning ciphertext with the 16-byte GCM tag appended. An
// empty plaintext is a permitted no-op: the returned ciphertext is just
// the tag.
//
// Grounded on original_source/include/common/crypto.hpp's
// encrypt_data_aes_gcm contract; the teacher has no crypto of its own
// (9P has none), so this is built directly from the spec and the C++
// original rather than adapted from teacher code.
func SealAESGCM(plain, key, iv []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != gcmIVSize {
		return nil, perror("invalid iv size")
	}
	return gcm.Seal(nil, iv, plain, nil), nil
}

// OpenAESGCM decrypts cipher under key and iv, returning ErrAuthFailed
// on any authentication tag mismatch -- the adversary-detectable
// integrity failure mode §4.2 requires. Underlying library failures
// (the teacher's "exception-using crypto library" note, §9) are
// converted at this boundary and never propagate further.
func OpenAESGCM(cipherText, key, iv []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != gcmIVSize {
		return nil, perror("invalid iv size")
	}
	plain, err := gcm.Open(nil, iv, cipherText, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return plain, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, perror("invalid key size")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, perror("invalid aes key")
	}
	return cipher.NewGCM(block)
}

// RandomIV returns a fresh cryptographically-strong 12-byte IV. Callers
// must never reuse an IV under the same key (§4.2).
func RandomIV() ([]byte, error) {
	iv := make([]byte, gcmIVSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, perror("random source failed")
	}
	return iv, nil
}

// ECDHKeyPair is a generated P-256 (secp256r1) keypair: Public is the
// 65-byte uncompressed SEC1 encoding (leading 0x04), Private is the
// raw 32-byte scalar.
type ECDHKeyPair struct {
	Private []byte
	Public  []byte

	priv *ecdh.PrivateKey
}

// GenerateECDHKeyPair creates a fresh P-256 keypair. crypto/ecdh is
// used directly rather than a third-party curve library: it is the
// constant-time, side-channel-hardened implementation the Go team
// ships specifically to replace ad-hoc elliptic-curve code, and no
// pack dependency (cloudflare/circl targets X25519/post-quantum, not
// NIST P-256) offers an equivalent -- see DESIGN.md.
func GenerateECDHKeyPair() (*ECDHKeyPair, error) {
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, perror("key generation failed")
	}
	return &ECDHKeyPair{
		Private: priv.Bytes(),
		Public:  priv.PublicKey().Bytes(),
		priv:    priv,
	}, nil
}

// Agree computes the 32-byte X-coordinate shared secret between kp's
// private key and peerPublic (a 65-byte uncompressed SEC1 point).
func (kp *ECDHKeyPair) Agree(peerPublic []byte) ([]byte, error) {
	if len(peerPublic) != ecdhPublicKeySize {
		return nil, ErrBadPublicKey
	}

	priv := kp.priv
	if priv == nil {
		p, err := ecdh.P256().NewPrivateKey(kp.Private)
		if err != nil {
			return nil, perror("invalid private key")
		}
		priv = p
	}

	peer, err := ecdh.P256().NewPublicKey(peerPublic)
	if err != nil {
		return nil, ErrBadPublicKey
	}

	shared, err := priv.ECDH(peer)
	if err != nil {
		return nil, perror("key agreement failed")
	}
	return shared, nil
}

// DeriveKey runs HKDF-SHA256 over shared with the fixed Fenris salt and
// an info string of "AES-Key" + context, producing a key of outLen
// bytes (16, 24 or 32). Grounded on original_source's
// derive_key_from_shared_secret.
func DeriveKey(shared []byte, outLen int, context string) ([]byte, error) {
	switch outLen {
	case 16, 24, 32:
	default:
		return nil, perror("invalid derived key size")
	}

	info := append([]byte(hkdfInfoLabel), []byte(context)...)
	reader := hkdf.New(sha256.New, shared, []byte(hkdfSalt), info)

	key := make([]byte, outLen)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, ErrKeyDerivation
	}
	return key, nil
}
