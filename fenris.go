/*
Package fenris implements a networked remote-filesystem service: a
server exposes a rooted directory tree and a small set of file and
directory operations over an encrypted, framed TCP channel.

Many clients connect concurrently, perform a one-round ECDH handshake
to derive a per-connection AES-GCM session key, and then issue
request/response commands (PING, CREATE_FILE, READ_FILE, WRITE_FILE,
APPEND_FILE, DELETE_FILE, INFO_FILE, CREATE_DIR, LIST_DIR, CHANGE_DIR,
DELETE_DIR, TERMINATE). The server maintains an in-memory tree that
shadows a fixed root directory on disk, serializing conflicting
operations with per-node mutexes and access counters, and fronts file
reads with a bounded LRU cache.

References:
  the Fenris wire protocol (§6, abstract schema)
  RFC 5869 (HKDF)
  FIPS 186-4 (P-256 / secp256r1)
  NIST SP 800-38D (AES-GCM)
*/
package fenris

const (
	// DefaultRootDir is the fixed server root directory all paths
	// resolve under, absent configuration.
	DefaultRootDir = "/fenris_server"

	// DefaultMaxFrameSize bounds a single frame payload before any
	// bytes are allocated (§4.1).
	DefaultMaxFrameSize = 10 * 1024 * 1024

	// DefaultCacheEntries bounds the file-content LRU (§4.6).
	DefaultCacheEntries = 256

	// aesKeySize is the AES-GCM key length this protocol always
	// derives (§4.2 permits {16,24,32}; Fenris standardizes on 32).
	aesKeySize = 32

	// gcmIVSize and gcmTagSize are AES-GCM's fixed IV and tag sizes.
	gcmIVSize  = 12
	gcmTagSize = 16

	// ecdhPublicKeySize is the uncompressed SEC1 encoding of a P-256
	// public key: 0x04 prefix plus two 32-byte coordinates.
	ecdhPublicKeySize = 65
)
