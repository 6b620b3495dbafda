package fenris

import (
	"bytes"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	iv, err := RandomIV()
	if err != nil {
		t.Fatalf("random iv: %v", err)
	}

	plain := []byte("the quick fox jumps")
	sealed, err := SealAESGCM(plain, key, iv)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	opened, err := OpenAESGCM(sealed, key, iv)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(opened, plain) {
		t.Fatalf("expected %q, got %q", plain, opened)
	}
}

func TestOpenFailsOnTamperedCiphertext(t *testing.T) {
	key := bytes.Repeat([]byte{0x11}, 32)
	iv, _ := RandomIV()

	sealed, err := SealAESGCM([]byte("secret"), key, iv)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	sealed[0] ^= 0xFF

	if _, err := OpenAESGCM(sealed, key, iv); err != ErrAuthFailed {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
}

func TestECDHAgreementMatches(t *testing.T) {
	a, err := GenerateECDHKeyPair()
	if err != nil {
		t.Fatalf("generate a: %v", err)
	}
	b, err := GenerateECDHKeyPair()
	if err != nil {
		t.Fatalf("generate b: %v", err)
	}

	sharedA, err := a.Agree(b.Public)
	if err != nil {
		t.Fatalf("agree a: %v", err)
	}
	sharedB, err := b.Agree(a.Public)
	if err != nil {
		t.Fatalf("agree b: %v", err)
	}
	if !bytes.Equal(sharedA, sharedB) {
		t.Fatalf("shared secrets differ")
	}
}

func TestDeriveKeyIsDeterministic(t *testing.T) {
	shared := bytes.Repeat([]byte{0x07}, 32)

	k1, err := DeriveKey(shared, 32, "handshake")
	if err != nil {
		t.Fatalf("derive 1: %v", err)
	}
	k2, err := DeriveKey(shared, 32, "handshake")
	if err != nil {
		t.Fatalf("derive 2: %v", err)
	}
	if !bytes.Equal(k1, k2) {
		t.Fatalf("expected deterministic derivation")
	}

	k3, err := DeriveKey(shared, 32, "other-context")
	if err != nil {
		t.Fatalf("derive 3: %v", err)
	}
	if bytes.Equal(k1, k3) {
		t.Fatalf("expected different contexts to diverge")
	}
}

func TestAgreeRejectsBadPublicKey(t *testing.T) {
	a, _ := GenerateECDHKeyPair()
	if _, err := a.Agree([]byte("too short")); err != ErrBadPublicKey {
		t.Fatalf("expected ErrBadPublicKey, got %v", err)
	}
}
