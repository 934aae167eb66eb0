package secrets

import (
	"context"
	"sync"
)

// MemoryStore keeps secrets in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	values map[Key]string
	// fail, when set, is returned by every call; used to simulate a broken
	// backend.
	fail error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[Key]string)}
}

// FailWith makes every subsequent call return err. A nil err restores
// normal behaviour.
func (s *MemoryStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

func (s *MemoryStore) Save(ctx context.Context, key Key, value string) error {
	return s.Apply(ctx, Put(key, value))
}

func (s *MemoryStore) Load(ctx context.Context, key Key) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return "", s.fail
	}
	v, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key Key) error {
	return s.Apply(ctx, Remove(key))
}

func (s *MemoryStore) Apply(ctx context.Context, muts ...Mutation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return s.fail
	}
	for _, m := range muts {
		if m.Delete {
			delete(s.values, m.Key)
			continue
		}
		s.values[m.Key] = m.Value
	}
	return nil
}

// Snapshot returns a copy of the stored values.
func (s *MemoryStore) Snapshot() map[Key]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[Key]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
