// Package shutdown runs registered cleanup hooks when the process receives
// SIGINT or SIGTERM, in reverse registration order and under one deadline.
package shutdown
