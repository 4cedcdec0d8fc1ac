package utils

import (
	"sync"
)

// Map 并发安全容器，零值可直接使用
type Map[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]V
}

// 延迟初始化，第一次写入时才创建底层 map
func (m *Map[K, V]) init() {
	if m.m == nil {
		m.m = make(map[K]V)
	}
}

func (m *Map[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.m[key]
	return v, ok
}

func (m *Map[K, V]) Set(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	m.m[key] = value
}

// TestAndSet stores value only when key is absent. It returns the existing
// value and true if the key was already present.
func (m *Map[K, V]) TestAndSet(key K, value V) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	if v, ok := m.m[key]; ok {
		return v, true
	}
	m.m[key] = value
	var zero V
	return zero, false
}

func (m *Map[K, V]) Del(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.m, key)
}

func (m *Map[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.m)
}

// RLockRange 遍历时只加读锁；f 返回 false 停止遍历
func (m *Map[K, V]) RLockRange(f func(K, V) bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for k, v := range m.m {
		if !f(k, v) {
			return
		}
	}
}

// DeleteFunc 加写锁遍历，删除 f 返回 true 的元素
func (m *Map[K, V]) DeleteFunc(f func(K, V) bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, v := range m.m {
		if f(k, v) {
			delete(m.m, k)
			n++
		}
	}
	return n
}
