package store

// Backend persists opaque values under string keys, one record per key.
type Backend interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	Delete(key string) error
}

// MemoryBackend keeps records in a map. Nothing survives the process.
type MemoryBackend struct {
	records map[string][]byte
	// failPut, when set, is returned by Put. Tests use it to simulate a
	// storage write failure.
	failPut error
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{records: make(map[string][]byte)}
}

// Get returns a copy of the record stored under key.
func (m *MemoryBackend) Get(key string) ([]byte, bool, error) {
	v, ok := m.records[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Put stores a copy of value under key.
func (m *MemoryBackend) Put(key string, value []byte) error {
	if m.failPut != nil {
		return m.failPut
	}
	m.records[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes key. Missing keys are not an error.
func (m *MemoryBackend) Delete(key string) error {
	delete(m.records, key)
	return nil
}
