// Package domain defines the core domain models for PetYard.
//
// Domain models are plain value objects without IO dependencies. This
// package contains:
//
//   - User: account record with password digest and owned/joined sets
//   - Pet: owned creature with progression and care timestamps
//   - PetYard: group of pets and member users under one owner
//   - UserToken: opaque session token bound to a user
//   - State: the four entity maps that make up the whole store
//   - Errors: domain error codes shared by every layer
//
// Entities reference each other only by id. Cascades that keep those
// references consistent live in the service package.
package domain
