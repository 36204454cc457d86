// Package storage provides the storage engine for PetYard.
//
// The engine is the single concurrency gate in front of the entity
// repository. Every read and write runs under one mutex, so each request
// sees and produces a consistent state. Durability comes from whole-state
// snapshots (package snapshot) written after each mutating request and by
// the background neglect sweep.
//
// Persistence is two-phase: the state is serialized while the gate is held
// and the encoded bytes are stored after it is released. A persist mutex
// and a generation counter keep an older encoding from overwriting a newer
// one.
package storage
