package iocache

import (
	"github.com/huangsam/bizcache/internal/contract"
	"github.com/huangsam/bizcache/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetEntityStore implements the StoreManager interface.
func (m *MockStoreManager) GetEntityStore() contract.KVStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.KVStore)
	return store
}

// MockKVStore is a mock implementation of KVStore for testing.
type MockKVStore struct {
	mock.Mock
}

var _ contract.KVStore = &MockKVStore{} // Compile-time check

// Get implements the KVStore interface.
func (m *MockKVStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	data, _ := args.Get(0).([]byte)
	return data, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the KVStore interface.
func (m *MockKVStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// Close implements the KVStore interface.
func (m *MockKVStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the KVStore interface.
func (m *MockKVStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}
