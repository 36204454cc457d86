// Package output renders petyard-cli results.
//
//   - formatter.go: Formatter interface and format selection
//   - table.go: aligned tables built from tagged structs
//   - json.go, yaml.go: machine-readable output
//   - spinner.go: activity indicator for slow snapshot writes
package output
