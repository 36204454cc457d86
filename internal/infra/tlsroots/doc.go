// Package tlsroots manages the server certificate.
//
//   - selfsigned.go: ECDSA P-256 self-signed certificate bootstrap
//   - watcher.go: hot reload of the key pair via fsnotify
package tlsroots
