package store

import (
	"context"
	"sync"
)

// Memory is a map backed store. FailWrites makes every Put return the given
// error, which is how tests reach the save failure path.
type Memory struct {
	mu        sync.Mutex
	data      map[string][]byte
	failWrite error
	closed    bool
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// FailWrites sets the error returned by Put; nil restores normal writes.
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrite = err
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := validKey(key); err != nil {
		return nil, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, false, ErrClosed
	}
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.failWrite != nil {
		return m.failWrite
	}
	m.data[key] = append([]byte{}, value...)
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
