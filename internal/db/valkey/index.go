package valkey

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/agenda/internal/db"
)

// CreateIndex validates and records the definition. Nothing is sent to the
// server: the schema is only needed to evaluate listings locally.
func (s *Store) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return fmt.Errorf("invalid index: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.indexes[def.Name]; ok {
		return db.ErrIndexExists
	}
	cp := *def
	cp.Prefixes = append([]string(nil), def.Prefixes...)
	cp.Fields = append([]db.IndexField(nil), def.Fields...)
	s.indexes[def.Name] = &cp
	return nil
}

// IndexExists reports whether a definition was recorded under name.
func (s *Store) IndexExists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.indexes[name]
	return ok, nil
}

func (s *Store) definition(name string) (*db.IndexDefinition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.indexes[name]
	return def, ok
}
