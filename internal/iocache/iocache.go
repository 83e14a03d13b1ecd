// Package iocache is the durable key/value storage behind offline mode.
package iocache

import (
	"sync"

	"github.com/huangsam/bizcache/internal/contract"
)

// StoreManager manages the shared EntityStore instance.
type StoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	entities     contract.KVStore
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// GetEntityStore returns the entity KVStore.
func (mgr *StoreManager) GetEntityStore() contract.KVStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.entities
}
