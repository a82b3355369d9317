package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
	"github.com/aliskhannn/tilawah-daily-bot/internal/storage/kv"
)

var (
	ErrUnknownReciter     = errors.New("unknown reciter")
	ErrUnknownTranslation = errors.New("unknown translation")
	ErrPremiumRequired    = errors.New("premium subscription required")
)

// Catalog lists the reciters and translations a user may pick.
type Catalog interface {
	Reciter(id string) (entities.Reciter, bool)
	Translation(id string) (entities.Translation, bool)
}

// AuthListener is notified with the new auth state of a user after every change.
type AuthListener func(ctx context.Context, userID string, state entities.AuthState)

// PreferenceStore owns the persisted user record, which carries the
// sign-in state and the reading preferences of one identity.
type PreferenceStore struct {
	records *projection[entities.AuthState]
	catalog Catalog
	clock   Clock
	logger  *zap.Logger

	listenersMu sync.RWMutex
	listeners   []AuthListener
}

func NewPreferenceStore(
	store *kv.SafeStore,
	writer *kv.AsyncWriter,
	catalog Catalog,
	clock Clock,
	logger *zap.Logger,
) *PreferenceStore {
	return &PreferenceStore{
		records: newProjection(store, writer, kv.UserKey, func() entities.AuthState {
			return entities.AuthState{}
		}),
		catalog: catalog,
		clock:   clock,
		logger:  logger,
	}
}

// Subscribe registers fn for auth state changes.
func (s *PreferenceStore) Subscribe(fn AuthListener) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *PreferenceStore) notify(ctx context.Context, userID string, state entities.AuthState) {
	s.listenersMu.RLock()
	listeners := append([]AuthListener(nil), s.listeners...)
	s.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn(ctx, userID, state)
	}
}

// AuthState returns the persisted sign-in state of userID.
func (s *PreferenceStore) AuthState(ctx context.Context, userID string) entities.AuthState {
	s.records.mu.Lock()
	defer s.records.mu.Unlock()
	return cloneAuthState(*s.records.load(ctx, userID))
}

// User returns the stored user, or nil when there is none.
func (s *PreferenceStore) User(ctx context.Context, userID string) *entities.User {
	return s.AuthState(ctx, userID).User
}

// SaveAuthState replaces the sign-in state of userID.
func (s *PreferenceStore) SaveAuthState(ctx context.Context, userID string, state entities.AuthState) {
	s.records.mu.Lock()
	env := s.records.load(ctx, userID)
	*env = cloneAuthState(state)
	s.records.save(userID, env)
	snapshot := cloneAuthState(*env)
	s.records.mu.Unlock()

	s.notify(ctx, userID, snapshot)
}

// ClearAuthState signs userID out and drops the stored user.
func (s *PreferenceStore) ClearAuthState(ctx context.Context, userID string) {
	s.SaveAuthState(ctx, userID, entities.AuthState{})
}

// EnsureUser returns the stored user, creating a signed-in one with default
// preferences when the identity is new.
func (s *PreferenceStore) EnsureUser(ctx context.Context, userID, email, name string) *entities.User {
	s.records.mu.Lock()
	env := s.records.load(ctx, userID)
	if env.User != nil {
		u := *env.User
		s.records.mu.Unlock()
		return &u
	}

	env.User = entities.NewUser(userID, email, name, s.clock.Now().UTC())
	env.IsAuthenticated = true
	s.records.save(userID, env)
	snapshot := cloneAuthState(*env)
	s.records.mu.Unlock()

	s.logger.Info("user created", zap.String("user_id", userID))
	s.notify(ctx, userID, snapshot)

	return snapshot.User
}

// UpdateProfile changes the display name and avatar of a stored user.
func (s *PreferenceStore) UpdateProfile(ctx context.Context, userID, name, avatar string) (*entities.User, error) {
	return s.mutateUser(ctx, userID, func(u *entities.User) error {
		if name != "" {
			u.Name = name
		}
		if avatar != "" {
			u.Avatar = avatar
		}
		return nil
	})
}

// SetSubscription stores plan on the user and derives the tier from it.
// A nil or inactive plan leaves the user on the free tier.
func (s *PreferenceStore) SetSubscription(ctx context.Context, userID string, plan *entities.Subscription) (*entities.User, error) {
	return s.mutateUser(ctx, userID, func(u *entities.User) error {
		u.Plan = plan
		u.Subscription = entities.TierFree
		if plan != nil && plan.IsActive {
			u.Subscription = plan.Tier
		}
		return nil
	})
}

// Users lists the identities with a persisted user record.
func (s *PreferenceStore) Users(ctx context.Context) []string {
	var ids []string
	for _, key := range s.records.store.Keys(ctx, "user/") {
		if id, name, ok := kv.ParseKey(key); ok && name == kv.UserKey {
			ids = append(ids, id)
		}
	}
	return ids
}

// Get returns the preferences of userID, defaults when there is no user.
func (s *PreferenceStore) Get(ctx context.Context, userID string) entities.UserPreferences {
	if u := s.User(ctx, userID); u != nil {
		return u.Preferences
	}
	return entities.DefaultPreferences()
}

// Location implements LocationSource.
func (s *PreferenceStore) Location(ctx context.Context, userID string) *time.Location {
	return entities.LocationOrUTC(s.Get(ctx, userID).Timezone)
}

// Update applies patch to the preferences of userID. Nothing is stored when
// the merged preferences are invalid.
func (s *PreferenceStore) Update(ctx context.Context, userID string, patch entities.PreferencesPatch) (entities.UserPreferences, error) {
	u, err := s.mutateUser(ctx, userID, func(u *entities.User) error {
		next := u.Preferences.Merge(patch)
		if err := next.Validate(); err != nil {
			return err
		}
		if err := s.checkCatalog(u, next); err != nil {
			return err
		}
		u.Preferences = next
		return nil
	})
	if err != nil {
		return s.Get(ctx, userID), err
	}
	return u.Preferences, nil
}

func (s *PreferenceStore) SetDailyGoal(ctx context.Context, userID string, goal entities.DailyGoal) (entities.UserPreferences, error) {
	return s.Update(ctx, userID, entities.PreferencesPatch{DailyGoal: &goal})
}

func (s *PreferenceStore) SetReciter(ctx context.Context, userID, reciterID string) (entities.UserPreferences, error) {
	return s.Update(ctx, userID, entities.PreferencesPatch{PreferredReciter: &reciterID})
}

func (s *PreferenceStore) SetTranslation(ctx context.Context, userID, translationID string) (entities.UserPreferences, error) {
	return s.Update(ctx, userID, entities.PreferencesPatch{PreferredTranslation: &translationID})
}

func (s *PreferenceStore) SetFontSize(ctx context.Context, userID string, size entities.FontSize) (entities.UserPreferences, error) {
	return s.Update(ctx, userID, entities.PreferencesPatch{FontSize: &size})
}

func (s *PreferenceStore) SetTimezone(ctx context.Context, userID, tz string) (entities.UserPreferences, error) {
	return s.Update(ctx, userID, entities.PreferencesPatch{Timezone: &tz})
}

// SetReminder sets the daily reminder time ("HH:MM") and whether it is on.
func (s *PreferenceStore) SetReminder(ctx context.Context, userID, at string, enabled bool) (entities.UserPreferences, error) {
	return s.Update(ctx, userID, entities.PreferencesPatch{
		ReminderTime:    &at,
		ReminderEnabled: &enabled,
	})
}

// mutateUser runs fn on a copy of the stored user, creating a default one
// for unknown identities, and stores the result when fn succeeds.
func (s *PreferenceStore) mutateUser(ctx context.Context, userID string, fn func(u *entities.User) error) (*entities.User, error) {
	s.records.mu.Lock()
	env := s.records.load(ctx, userID)

	var u entities.User
	if env.User != nil {
		u = *env.User
	} else {
		u = *entities.NewUser(userID, "", "", s.clock.Now().UTC())
	}

	if err := fn(&u); err != nil {
		s.records.mu.Unlock()
		return nil, err
	}

	if env.User == nil {
		env.IsAuthenticated = true
	}
	env.User = &u
	s.records.save(userID, env)
	snapshot := cloneAuthState(*env)
	s.records.mu.Unlock()

	s.notify(ctx, userID, snapshot)

	return snapshot.User, nil
}

func (s *PreferenceStore) checkCatalog(u *entities.User, p entities.UserPreferences) error {
	if s.catalog == nil {
		return nil
	}

	premium := u.IsPremiumAt(s.clock.Now())

	r, ok := s.catalog.Reciter(p.PreferredReciter)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownReciter, p.PreferredReciter)
	}
	if r.IsPremium && !premium && p.PreferredReciter != u.Preferences.PreferredReciter {
		return fmt.Errorf("reciter %q: %w", r.ID, ErrPremiumRequired)
	}

	t, ok := s.catalog.Translation(p.PreferredTranslation)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTranslation, p.PreferredTranslation)
	}
	if t.IsPremium && !premium && p.PreferredTranslation != u.Preferences.PreferredTranslation {
		return fmt.Errorf("translation %q: %w", t.ID, ErrPremiumRequired)
	}

	return nil
}

func cloneAuthState(s entities.AuthState) entities.AuthState {
	if s.User != nil {
		u := *s.User
		if u.Plan != nil {
			plan := *u.Plan
			u.Plan = &plan
		}
		s.User = &u
	}
	return s
}
