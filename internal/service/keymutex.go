package service

import (
	"sync"
)

// keyMutex serializes mutations per alert key while letting distinct keys
// proceed in parallel. LockAll takes the whole table, which is what the bulk
// clear needs to observe a stable set of active alerts.
//
// The per-key entries are never evicted. The key space is the set of alert
// keys a home produces, which is small and effectively static.
type keyMutex struct {
	global sync.RWMutex

	mu   sync.Mutex
	keys map[string]*sync.Mutex
}

func newKeyMutex() *keyMutex {
	return &keyMutex{
		keys: make(map[string]*sync.Mutex),
	}
}

// LockKey acquires the lock for one alert key. The returned func releases it.
func (k *keyMutex) LockKey(key string) func() {
	k.global.RLock()

	k.mu.Lock()
	lock, ok := k.keys[key]
	if !ok {
		lock = &sync.Mutex{}
		k.keys[key] = lock
	}
	k.mu.Unlock()

	lock.Lock()

	return func() {
		lock.Unlock()
		k.global.RUnlock()
	}
}

// LockAll excludes every per-key holder until the returned func is called.
func (k *keyMutex) LockAll() func() {
	k.global.Lock()
	return k.global.Unlock
}
