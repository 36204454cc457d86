// Package adaptive provides authenticated encryption for stored payloads.
//
// Supported algorithms, both with a 256-bit key and a 96-bit nonce:
//
//   - AES-256-GCM: preferred when hardware AES support is available
//   - ChaCha20-Poly1305: fallback for systems without AES instructions
//
// Every Encrypt call draws a fresh random nonce and prefixes it to the
// output, so equal plaintexts never produce equal ciphertexts. Seal and
// Open wrap a cipher for arbitrary JSON-serializable values and produce
// URL-safe base64 text:
//
//	c, err := adaptive.New(key)
//	blob, err := adaptive.Seal(c, msg)
//	err = adaptive.Open(c, blob, &msg)
package adaptive
