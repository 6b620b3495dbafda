package fenris

import "io"

// ServerHandshake performs the server side of §4.3's one-round ECDH
// exchange over rw (already-accepted connection, pre-encryption) and
// returns the derived 32-byte AES-GCM session key. The client is
// expected to have already sent its public key frame; ordering is
// fixed by the caller (the party that initiated the TCP connection
// sends first).
//
// Any failure here is fatal for the connection: per §7, handshake
// failures are never surfaced as protocol-level ERROR responses
// because the channel key was never established.
func ServerHandshake(rw io.ReadWriter, maxFrame uint32) ([]byte, error) {
	framer := NewFramer(rw, maxFrame)

	clientPub, err := framer.Receive()
	if err != nil {
		return nil, err
	}
	if len(clientPub) != ecdhPublicKeySize {
		return nil, ErrBadPublicKey
	}

	kp, err := GenerateECDHKeyPair()
	if err != nil {
		return nil, err
	}

	if err := framer.Send(kp.Public); err != nil {
		return nil, err
	}

	shared, err := kp.Agree(clientPub)
	if err != nil {
		return nil, err
	}
	return DeriveKey(shared, aesKeySize, "handshake")
}

// ClientHandshake performs the client side of §4.3: it sends its public
// key first (the connection initiator sends first), reads the server's
// public key, and derives the same session key.
func ClientHandshake(rw io.ReadWriter, maxFrame uint32) ([]byte, error) {
	framer := NewFramer(rw, maxFrame)

	kp, err := GenerateECDHKeyPair()
	if err != nil {
		return nil, err
	}
	if err := framer.Send(kp.Public); err != nil {
		return nil, err
	}

	serverPub, err := framer.Receive()
	if err != nil {
		return nil, err
	}
	if len(serverPub) != ecdhPublicKeySize {
		return nil, ErrBadPublicKey
	}

	shared, err := kp.Agree(serverPub)
	if err != nil {
		return nil, err
	}
	return DeriveKey(shared, aesKeySize, "handshake")
}

// SecureChannel wraps a Framer with a fixed AES-GCM session key,
// implementing the "every subsequent frame is IV(12) || AEAD(...)"
// rule from §4.3/§6. It is the single seam both session.go (server
// side) and client.Client (client side) send/receive through after the
// handshake completes.
type SecureChannel struct {
	framer *Framer
	key    []byte
}

// NewSecureChannel builds a channel bound to key over rw.
func NewSecureChannel(rw io.ReadWriter, key []byte, maxFrame uint32) *SecureChannel {
	return &SecureChannel{framer: NewFramer(rw, maxFrame), key: key}
}

// SendMessage seals plaintext under a fresh random IV and writes
// IV || ciphertext as one frame.
func (c *SecureChannel) SendMessage(plaintext []byte) error {
	iv, err := RandomIV()
	if err != nil {
		return err
	}
	sealed, err := SealAESGCM(plaintext, c.key, iv)
	if err != nil {
		return err
	}

	frame := make([]byte, 0, len(iv)+len(sealed))
	frame = append(frame, iv...)
	frame = append(frame, sealed...)
	return c.framer.Send(frame)
}

// ReceiveMessage reads one frame and decrypts it, splitting off the
// leading 12-byte IV before calling OpenAESGCM.
func (c *SecureChannel) ReceiveMessage() ([]byte, error) {
	frame, err := c.framer.Receive()
	if err != nil {
		return nil, err
	}
	if len(frame) < gcmIVSize+gcmTagSize {
		return nil, perror("frame too short for iv+tag")
	}

	iv := frame[:gcmIVSize]
	cipherText := frame[gcmIVSize:]
	return OpenAESGCM(cipherText, c.key, iv)
}
