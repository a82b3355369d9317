package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aliskhannn/tilawah-daily-bot/internal/domain/entities"
)

var ErrUnknownPlan = errors.New("unknown subscription plan")

// Plan is a purchasable subscription product.
type Plan string

const (
	PlanMonthly Plan = "monthly"
	PlanYearly  Plan = "yearly"
)

var planDays = map[Plan]int{
	PlanMonthly: 30,
	PlanYearly:  365,
}

// Subscriptions gates premium features on the stored plan of a user.
type Subscriptions struct {
	preferences *PreferenceStore
	clock       Clock
	logger      *zap.Logger
}

func NewSubscriptions(preferences *PreferenceStore, clock Clock, logger *zap.Logger) *Subscriptions {
	return &Subscriptions{
		preferences: preferences,
		clock:       clock,
		logger:      logger,
	}
}

// Purchase grants premium to userID for the plan period, replacing any
// current plan. Payment verification happens outside this service.
func (s *Subscriptions) Purchase(ctx context.Context, userID string, plan Plan, platform string) (entities.Subscription, error) {
	days, ok := planDays[plan]
	if !ok {
		return entities.Subscription{}, fmt.Errorf("%w: %q", ErrUnknownPlan, plan)
	}

	now := s.clock.Now().UTC()
	sub := entities.Subscription{
		ID:         uuid.NewString(),
		UserID:     userID,
		Tier:       entities.TierPremium,
		StartDate:  now,
		ExpiryDate: now.AddDate(0, 0, days),
		Platform:   platform,
		IsActive:   true,
	}

	if _, err := s.preferences.SetSubscription(ctx, userID, &sub); err != nil {
		return entities.Subscription{}, fmt.Errorf("set subscription: %w", err)
	}

	s.logger.Info("subscription purchased",
		zap.String("user_id", userID),
		zap.String("plan", string(plan)),
		zap.Time("expiry", sub.ExpiryDate),
	)

	return sub, nil
}

// Cancel deactivates the plan of userID and moves it back to the free tier.
func (s *Subscriptions) Cancel(ctx context.Context, userID string) error {
	var plan *entities.Subscription
	if u := s.preferences.User(ctx, userID); u != nil && u.Plan != nil {
		cancelled := *u.Plan
		cancelled.IsActive = false
		plan = &cancelled
	}

	if _, err := s.preferences.SetSubscription(ctx, userID, plan); err != nil {
		return fmt.Errorf("set subscription: %w", err)
	}
	return nil
}

// Restore returns the last purchased plan of userID, if any. Only one plan
// is kept per user.
func (s *Subscriptions) Restore(ctx context.Context, userID string) []entities.Subscription {
	u := s.preferences.User(ctx, userID)
	if u == nil || u.Plan == nil {
		return []entities.Subscription{}
	}
	return []entities.Subscription{*u.Plan}
}

// HasPremium reports whether userID has a premium plan that has not
// expired.
func (s *Subscriptions) HasPremium(ctx context.Context, userID string) bool {
	return s.preferences.User(ctx, userID).IsPremiumAt(s.clock.Now())
}

// IsFeatureAvailable reports whether userID may use feature. Features not
// gated behind premium are always available.
func (s *Subscriptions) IsFeatureAvailable(ctx context.Context, userID, feature string) bool {
	if !entities.IsPremiumFeature(feature) {
		return true
	}
	return s.HasPremium(ctx, userID)
}
