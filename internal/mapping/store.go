package mapping

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// Store publishes the active Registry. Readers take a snapshot with Current
// and keep using it for the duration of a batch; reloads build a new Registry
// and publish it with a single atomic write.
type Store struct {
	current atomic.Pointer[Registry]
	logger  *zap.Logger
}

// NewStore returns a Store publishing r. A nil r publishes Empty().
//
// Precondition: logger must be non-nil.
func NewStore(r *Registry, logger *zap.Logger) *Store {
	if r == nil {
		r = Empty()
	}
	s := &Store{logger: logger}
	s.current.Store(r)
	return s
}

// Current returns the published Registry snapshot.
//
// Postcondition: never returns nil.
func (s *Store) Current() *Registry {
	return s.current.Load()
}

// Swap publishes r and returns the previously published Registry.
//
// Precondition: r must be non-nil.
func (s *Store) Swap(r *Registry) *Registry {
	return s.current.Swap(r)
}

// ReloadFile rebuilds the Registry from path and publishes it. When the file
// cannot be read the current Registry stays published.
func (s *Store) ReloadFile(path string) (*Registry, error) {
	r, err := LoadFile(path, s.logger)
	if err != nil {
		s.logger.Warn("mapping reload failed; keeping current mappings",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	s.Swap(r)
	s.logger.Info("mappings reloaded", zap.String("path", path))
	return r, nil
}
