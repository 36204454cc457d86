// Package service holds the PetYard state engine's business logic.
//
// This package contains:
//
//   - TokenAuthority: opaque session token issue, validation, refresh, revoke
//   - Repository: the four entity maps and every structural mutation,
//     including the cascades that keep id references consistent
//
// Neither type is safe for concurrent use. The storage engine serializes
// all access through a single guard and owns persistence; this package
// knows nothing about either.
package service
