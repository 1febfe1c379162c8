package config

import (
	"encoding/json"
	"sync"
)

// Configuration shared between the listener setup and every connection.
//
// Readers serialize or copy under the read lock and release it before doing
// any I/O. Writers hold the write lock only for the mutation itself.
type Shared struct {
	mu  sync.RWMutex
	cfg *Config
}

// Creates a shared handle owning a private copy of cfg.
func NewShared(cfg *Config) *Shared {
	return &Shared{cfg: cfg.Clone()}
}

// Returns a deep copy of the current configuration.
func (s *Shared) Snapshot() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// Serializes the current configuration as JSON.
func (s *Shared) MarshalJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(s.cfg)
}

// Applies fn to the configuration under the write lock.
func (s *Shared) Update(fn func(*Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.cfg)
}
