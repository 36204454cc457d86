// Package cmap provides a sharded concurrent map with string keys.
//
// Keys are spread over a power-of-two number of shards by their murmur3
// hash; each shard has its own RWMutex. The HTTP rate limiter keeps one
// token bucket per client in a Map and evicts idle buckets with DeleteFunc.
//
//	m := cmap.New[string, *bucket]()
//	b, _ := m.GetOrCreate(ip, newBucket)
package cmap
