package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

// CacheOptions sizes the read-through cache. Size 0 disables caching.
type CacheOptions struct {
	Size int
	TTL  time.Duration
}

// Service is the single profile context shared by every agent.
type Service struct {
	store  *Store
	cache  *expirable.LRU[string, *Profile]
	state  string
	logger *zap.Logger
}

// NewService creates a Service. state is the operating state used in
// rendered context and scheme eligibility.
func NewService(store *Store, state string, cache CacheOptions, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if state == "" {
		state = DefaultState
	}
	s := &Service{store: store, state: state, logger: logger}
	if cache.Size > 0 {
		s.cache = expirable.NewLRU[string, *Profile](cache.Size, nil, cache.TTL)
	}
	return s
}

// State returns the operating state.
func (s *Service) State() string {
	return s.state
}

// Fetch looks up uid. Absence is found=false with a nil error.
func (s *Service) Fetch(ctx context.Context, uid string) (*Profile, bool, error) {
	if s.cache != nil {
		if p, ok := s.cache.Get(uid); ok {
			return p.Clone(), true, nil
		}
	}
	p, found, err := s.store.Get(ctx, uid)
	if err != nil || !found {
		return nil, found, err
	}
	if s.cache != nil {
		s.cache.Add(uid, p.Clone())
	}
	return p, true, nil
}

// Require is Fetch with absence turned into ErrNotFound.
func (s *Service) Require(ctx context.Context, uid string) (*Profile, error) {
	p, found, err := s.Fetch(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("uid %s: %w", uid, ErrNotFound)
	}
	return p, nil
}

// Render formats p for the configured operating state.
func (s *Service) Render(p *Profile) string {
	return RenderIn(p, s.state)
}

// Save writes p, keeping the original creation time when the profile exists.
func (s *Service) Save(ctx context.Context, p *Profile) (*Profile, error) {
	existing, found, err := s.store.Get(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if found {
		p.CreatedAt = existing.CreatedAt
	}
	if err := s.store.Put(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(p.UserID)
	s.logger.Info("profile saved", zap.String("uid", p.UserID), zap.Bool("created", !found))
	return p, nil
}

// Create builds a profile from loosely-typed registration data and saves it.
func (s *Service) Create(ctx context.Context, uid string, data map[string]any) (*Profile, error) {
	return s.Save(ctx, FromRegistration(uid, data))
}

// Update merges patch into the stored profile.
func (s *Service) Update(ctx context.Context, uid string, patch Patch) (*Profile, error) {
	p, err := s.store.Update(ctx, uid, patch)
	if err != nil {
		return nil, err
	}
	s.invalidate(uid)
	return p, nil
}

// DailySummarySubscribers lists profiles that want the daily summary.
func (s *Service) DailySummarySubscribers(ctx context.Context) ([]Profile, error) {
	return s.store.ListDailySummarySubscribers(ctx)
}

func (s *Service) invalidate(uid string) {
	if s.cache != nil {
		s.cache.Remove(uid)
	}
}
