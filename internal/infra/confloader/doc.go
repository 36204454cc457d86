// Package confloader loads PetYard configuration with koanf.
//
// Sources, lowest priority first:
//
//  1. Defaults already present in the target struct
//  2. YAML configuration file
//  3. Environment variables (PETYARD_ prefix)
//
// Watcher reports changes to the configuration file so the server can
// re-read it and apply settings that are safe to change at runtime.
package confloader
