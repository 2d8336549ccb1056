package repository

import (
	"errors"

	"github.com/mrgoonie/docobo/app/models"
	"gorm.io/gorm"
)

// ErrDuplicateEvent signals that a webhook event with the same external
// id is already recorded. Callers treat it exactly like a positive
// Seen() answer; no separate "lost the race" handling exists.
var ErrDuplicateEvent = errors.New("webhook event already recorded")

// WebhookEventRepository is the idempotency ledger over webhook_events.
type WebhookEventRepository interface {
	Seen(externalEventID string) (bool, error)
	Create(event *models.WebhookEvent) error
	Complete(externalEventID string, errorMessage string) error
	AttachSubscription(externalEventID string, subscriptionID uint) error
	ListFailed(limit int) ([]models.WebhookEvent, error)
}

// SubscriptionRepository defines the interface for subscription-related
// database operations.
type SubscriptionRepository interface {
	Create(sub *models.Subscription) error
	// GetByExternalID loads a subscription with its member, paid role
	// and guild relations by the provider-scoped external id.
	GetByExternalID(provider, externalSubscriptionID string) (*models.Subscription, error)
	// UpdateLocked re-reads the subscription under a row lock and applies
	// the mutation transactionally so racing events cannot lose updates.
	UpdateLocked(id uint, apply func(sub *models.Subscription) error) (*models.Subscription, error)
}

// MemberRepository defines the interface for member-related database
// operations.
type MemberRepository interface {
	GetOrCreate(userID string, guildID uint, username string) (*models.Member, error)
}

// PaidRoleRepository defines the interface for paid-role lookups.
type PaidRoleRepository interface {
	// GetActiveByGuildAndRole resolves an active purchasable role by the
	// external (Discord) guild and role identifiers.
	GetActiveByGuildAndRole(discordGuildID, discordRoleID string) (*models.PaidRole, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	WebhookEvent WebhookEventRepository
	Subscription SubscriptionRepository
	Member       MemberRepository
	PaidRole     PaidRoleRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		WebhookEvent: NewWebhookEventRepository(db),
		Subscription: NewSubscriptionRepository(db),
		Member:       NewMemberRepository(db),
		PaidRole:     NewPaidRoleRepository(db),
	}
}
