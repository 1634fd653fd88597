package models

import (
	"time"

	"gorm.io/gorm"
)

// Subscription plans and statuses
const (
	PlanFree = "free"
	PlanPro  = "pro"

	StatusActive    = "active"
	StatusCancelled = "cancelled"
)

// Subscription tracks a user's billing state. At most one row exists per
// user; rows are upserted by Stripe webhook events and read to gate
// pro-only features (full history, streak tracking, CV personalization).
type Subscription struct {
	ID                   string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID               string         `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	StripeCustomerID     string         `gorm:"size:255;index" json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID string         `gorm:"size:255;index" json:"stripe_subscription_id,omitempty"`
	Plan                 string         `gorm:"size:50;not null;default:'free';check:plan IN ('free', 'pro')" json:"plan"`
	Status               string         `gorm:"size:50;not null;default:'active';check:status IN ('active', 'cancelled')" json:"status"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// IsPro reports whether the subscription currently unlocks the paid tier.
func (s *Subscription) IsPro() bool {
	return s != nil && s.Plan == PlanPro && s.Status == StatusActive
}
