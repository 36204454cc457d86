// Package main provides the entry point for petyard-server.
//
// The server loads its configuration, recovers the last snapshot and
// serves the PetYard HTTP API until SIGINT or SIGTERM, when it writes a
// final snapshot.
//
// Usage:
//
//	petyard-server [flags]
//	petyard-server --config /etc/petyard/config.yaml
//
// Every setting may also come from PETYARD_ environment variables, with
// "__" separating sections: PETYARD_SWEEP__NEGLECT_AFTER=48h.
package main
