// Package favorites keeps the user's favorite coin ids in the durable store.
// When the store is unavailable the list lives in memory for the process lifetime.
package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"coin-dashboard/internal/domain/entity"
	"coin-dashboard/internal/infra/cache"
	"coin-dashboard/internal/observability/logging"
)

// StorageKey is the durable key holding the JSON array of favorite ids.
const StorageKey = "favoriteCoinIds"

// Service manages favorites. The zero value is not usable; use NewService.
type Service struct {
	store cache.Store

	mu     sync.Mutex
	ids    []string
	loaded bool
}

// NewService returns a Service over store. A nil store keeps favorites in memory.
func NewService(store cache.Store) *Service {
	return &Service{store: store}
}

// List returns the favorite ids in the order they were added.
func (s *Service) List(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)
	return slices.Clone(s.ids)
}

// IsFavorite reports whether id is a favorite.
func (s *Service) IsFavorite(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)
	return slices.Contains(s.ids, id)
}

// Toggle adds id when absent and removes it when present. It reports whether
// id is a favorite afterwards.
func (s *Service) Toggle(ctx context.Context, id string) (bool, error) {
	if err := entity.ValidateCoinID(id); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(ctx)

	favorite := true
	if i := slices.Index(s.ids, id); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
		favorite = false
	} else {
		s.ids = append(s.ids, id)
	}
	s.save(ctx)
	return favorite, nil
}

// load reads the stored list once. Callers hold mu.
func (s *Service) load(ctx context.Context) {
	if s.loaded {
		return
	}
	s.loaded = true
	s.ids = []string{}
	if s.store == nil {
		return
	}

	raw, err := s.store.Get(ctx, StorageKey)
	if errors.Is(err, cache.ErrNotFound) {
		return
	}
	if err != nil {
		logging.FromContext(ctx).Warn("favorites unavailable, starting empty", slog.Any("error", err))
		return
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		logging.FromContext(ctx).Warn("stored favorites unreadable, starting empty", slog.Any("error", err))
		return
	}
	for _, id := range ids {
		if entity.ValidateCoinID(id) == nil && !slices.Contains(s.ids, id) {
			s.ids = append(s.ids, id)
		}
	}
}

// save writes the list. Failures keep the in-memory state. Callers hold mu.
func (s *Service) save(ctx context.Context) {
	if s.store == nil {
		return
	}
	raw, err := json.Marshal(s.ids)
	if err != nil {
		return
	}
	if err := s.store.Set(ctx, StorageKey, raw); err != nil {
		logging.FromContext(ctx).Warn("favorites not persisted", slog.Any("error", err))
	}
}
