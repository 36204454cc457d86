// Package httpserver provides the HTTP/HTTPS server for PetYard.
//
// It is built on net/http: a Go 1.22 pattern ServeMux carries the routes
// from the handler package, and each route gets its own middleware chain
// (request id, panic recovery, audit logging and metrics, per-IP rate
// limiting, X-Auth-Key authentication, and the post-request snapshot write).
package httpserver
