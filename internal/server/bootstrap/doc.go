// Package bootstrap assembles the components that petyard-server and
// petyard-cli build from the same ServerConfig.
//
//   - storage.go: snapshot backend selection and the snapshot Store
//   - engine.go: repository and storage engine
//   - messaging.go: the direct-message cipher and its key material
package bootstrap
