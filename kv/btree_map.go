package kv

import (
	"sync"

	"github.com/google/btree"
	"golang.org/x/exp/constraints"
)

// BTreeMap is an ordered KVS; Range walks keys in ascending order, which
// keeps passes over the way cache deterministic.
type BTreeMap[K constraints.Ordered, V any] struct {
	mu sync.RWMutex
	t  *btree.BTreeG[btreeItem[K, V]]
}

type btreeItem[K constraints.Ordered, V any] struct {
	key   K
	value V
}

func NewBTreeMap[K constraints.Ordered, V any]() *BTreeMap[K, V] {
	return &BTreeMap[K, V]{
		t: btree.NewG(32, func(a, b btreeItem[K, V]) bool {
			return a.key < b.key
		}),
	}
}

var _ KVS[string, any] = (*BTreeMap[string, any])(nil)

// Get implements KVS
func (m *BTreeMap[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.t.Get(btreeItem[K, V]{key: key})
	return item.value, ok
}

// Set implements KVS
func (m *BTreeMap[K, V]) Set(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.t.ReplaceOrInsert(btreeItem[K, V]{key: key, value: value})
}

func (m *BTreeMap[K, V]) Range(f func(key K, value V) bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	m.t.Ascend(func(item btreeItem[K, V]) bool {
		return f(item.key, item.value)
	})
}

func (m *BTreeMap[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.t.Len()
}
