// Package token generates opaque session tokens and raw key material.
//
// Token format: canonical UUID text (8-4-4-4-12 hex) built from 122 bits
// of crypto/rand output. Tokens carry no claims; the server-side token
// table is the only source of the token-to-user binding.
package token
