/*
keylock.go - Per-key mutual exclusion for capacity writes

PURPOSE:

	The capacity check and the booking insert are a check-then-act sequence.
	Without serialization, two concurrent requests can both observe enough
	remaining seats and both insert, overselling the trip. keyMutex holds a
	mutex per (package, trip date) key across the whole sequence; requests
	for different packages or dates never contend.

	The store transaction re-validates the seat sum as well, so even a
	second process bypassing this lock cannot oversell - the lock exists to
	avoid burning transactions on conflicts, the re-validation to make the
	invariant unconditional.
*/
package booking

import "sync"

type keyMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLockEntry
}

type keyLockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyMutex() *keyMutex {
	return &keyMutex{locks: make(map[string]*keyLockEntry)}
}

// Lock acquires the mutex for key, creating it on first use.
func (k *keyMutex) Lock(key string) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &keyLockEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the mutex for key and frees it once nobody is waiting.
func (k *keyMutex) Unlock(key string) {
	k.mu.Lock()
	e := k.locks[key]
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()

	e.mu.Unlock()
}
