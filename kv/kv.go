// Package kv provides the small concurrent key-value stores the parser
// uses as in-memory caches between scan passes.
package kv

type KVS[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
	Range(func(key K, value V) bool)
	Len() int
}
