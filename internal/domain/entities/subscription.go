package entities

import (
	"math"
	"slices"
	"time"
)

// SubscriptionTier is the freemium level of a user.
type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierPremium SubscriptionTier = "premium"
)

// Premium feature identifiers.
const (
	FeatureAdvancedAnalytics      = "advanced_analytics"
	FeatureAdditionalReciters     = "additional_reciters"
	FeatureAdditionalTranslations = "additional_translations"
	FeatureStreakGrace            = "streak_grace"
	FeatureSideBySideView         = "side_by_side_view"
	FeatureOfflineDownloads       = "offline_downloads"
)

var premiumFeatures = []string{
	FeatureAdvancedAnalytics,
	FeatureAdditionalReciters,
	FeatureAdditionalTranslations,
	FeatureStreakGrace,
	FeatureSideBySideView,
	FeatureOfflineDownloads,
}

// IsPremiumFeature reports whether feature is gated behind premium.
func IsPremiumFeature(feature string) bool {
	return slices.Contains(premiumFeatures, feature)
}

// Plan prices in USD.
const (
	PriceMonthly = 4.99
	PriceYearly  = 39.99
)

// YearlySavings returns how much a yearly plan saves over twelve monthly ones.
func YearlySavings() (amount float64, percentage int) {
	monthly := PriceMonthly * 12
	amount = monthly - PriceYearly
	percentage = int(math.Round(amount / monthly * 100))
	return amount, percentage
}

// Subscription is a purchased plan.
type Subscription struct {
	ID         string           `json:"id"`
	UserID     string           `json:"userId"`
	Tier       SubscriptionTier `json:"tier"`
	StartDate  time.Time        `json:"startDate"`
	ExpiryDate time.Time        `json:"expiryDate"`
	Platform   string           `json:"platform"`
	IsActive   bool             `json:"isActive"`
}

// ActiveAt reports whether the subscription grants premium at t.
func (s *Subscription) ActiveAt(t time.Time) bool {
	return s != nil && s.IsActive && s.Tier == TierPremium && t.Before(s.ExpiryDate)
}
