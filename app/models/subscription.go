package models

import "time"

// Payment provider constants used across subscription-related models.
const (
	PaymentProviderPolar = "POLAR"
	PaymentProviderSepay = "SEPAY"
)

// Subscription status lifecycle. REVOKED and REFUNDED are terminal: a
// later event for a subscription in one of these states is recorded but
// produces no mutation and no side effect.
const (
	SubscriptionStatusPending   = "PENDING"
	SubscriptionStatusActive    = "ACTIVE"
	SubscriptionStatusCancelled = "CANCELLED"
	SubscriptionStatusRevoked   = "REVOKED"
	SubscriptionStatusRefunded  = "REFUNDED"
)

// Subscription is the entitlement record tying a member to a paid role.
// Mutated only by the entitlement state machine in response to
// normalized webhook events; terminal rows are retained for audit.
type Subscription struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	MemberID               uint       `gorm:"not null;index" json:"member_id"`
	PaidRoleID             uint       `gorm:"not null;index" json:"paid_role_id"`
	Provider               string     `gorm:"type:varchar(20);not null;index:ux_subscriptions_provider_subid,unique,priority:1" json:"provider"`
	ExternalSubscriptionID string     `gorm:"type:varchar(191);not null;index:ux_subscriptions_provider_subid,unique,priority:2" json:"external_subscription_id"`
	Status                 string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	CancelAtPeriodEnd      bool       `gorm:"default:false" json:"cancel_at_period_end"`
	MetadataJSON           string     `gorm:"type:longtext" json:"metadata_json"`
	Member                 *Member    `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	PaidRole               *PaidRole  `gorm:"foreignKey:PaidRoleID" json:"paid_role,omitempty"`
	CreatedAt              time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsTerminal reports whether the subscription reached a final state.
func (s *Subscription) IsTerminal() bool {
	return s.Status == SubscriptionStatusRevoked || s.Status == SubscriptionStatusRefunded
}
