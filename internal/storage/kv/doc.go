// Package kv provides an embedded key-value engine used as one of the
// snapshot backends.
//
// The Engine interface is deliberately small: the snapshot store only
// needs whole-value reads and writes under a fixed key. BadgerEngine
// implements it on top of Badger v3 and runs value-log GC in the
// background.
package kv
