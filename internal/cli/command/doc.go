// Package command defines the petyard-cli commands.
//
// The CLI works offline: it reads the server configuration, opens the
// configured snapshot backend directly and, for maintenance commands,
// rewrites the snapshot. Run it while petyard-server is stopped; the
// badger backend refuses a second opener, the file and s3 backends do not.
//
//   - root.go: App, global flags, shared helpers
//   - snapshot.go: snapshot inspect and export
//   - list.go: users, pets and yards listings
//   - maintain.go: tokens purge and sweep run
//   - config.go: config show and validate
//   - misc.go: keygen and version
package command
