// Package handler provides the HTTP request handlers for PetYard.
//
// Handlers are grouped by resource:
//
//   - auth.go: signup, login, logout, token refresh and verify
//   - users.go: the caller's own account
//   - pets.go: pets, feeding and play
//   - yards.go: pet yards, members and yard pets
//   - messages.go: sealed direct messages
//   - public.go: unauthenticated views
//   - health.go: liveness and readiness
//
// Every handler follows the same pattern: decode and validate the request,
// run repository operations through the storage gate, and write the
// standard response envelope. Token checks for the X-Auth-Key header live
// in the httpserver middleware; handlers only enforce ownership.
package handler
