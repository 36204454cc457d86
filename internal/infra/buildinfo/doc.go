// Package buildinfo exposes version information injected with ldflags:
//
//	go build -ldflags "-X github.com/yndnr/petyard-go/internal/infra/buildinfo.Version=v1.0.0"
//
// Unset values fall back to what the Go toolchain embedded in the binary.
package buildinfo
