// Package logger builds the structured slog loggers used by PetYard.
//
// Loggers created by New share one runtime-adjustable level, mask
// attributes whose keys look like credentials, and pick the request and
// user ids out of the context passed to the *Context logging methods.
package logger
