// Package benchmark provides performance benchmarks for petyard.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/...
//
// Run only the snapshot benchmarks:
//
//	go test -bench=BenchmarkSnapshot -benchmem -benchtime=10s ./internal/tests/benchmark/...
//
// Compare results:
//
//	benchstat old.txt new.txt
package benchmark
