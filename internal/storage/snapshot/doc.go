// Package snapshot persists the whole store state as one self-describing
// blob and loads it back.
//
// Blob layout:
//
//	[magic:8 "PETYSNAP"]
//	[HeaderLen:4][HeaderJSON:HeaderLen]
//	[DataLen:4][Data:DataLen]
//	[checksum:32 SHA-256 of all bytes above]
//
// Data is the state encoded with the header's codec (json or cbor), then
// optionally compressed (zstd), then optionally sealed with an AEAD cipher
// keyed by Argon2id over a passphrase and the per-blob salt stored in the
// header.
//
// A Store writes blobs through a Backend: a single file on local disk,
// a key in an embedded Badger database, or an object in S3. Every backend
// replaces the previous snapshot atomically, so a reader sees either the
// old blob or the new one.
//
// Load distinguishes "no snapshot yet" (ErrNoSnapshot) from a blob that
// exists but cannot be read (ErrCorrupt, ErrPassphraseRequired,
// ErrDecryptionFailed); callers start empty on the former and must refuse
// to start on the latter.
package snapshot
