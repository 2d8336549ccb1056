package repository

import (
	"github.com/mrgoonie/docobo/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Create creates a new subscription in the database
func (r *subscriptionRepository) Create(sub *models.Subscription) error {
	return r.db.Create(sub).Error
}

// GetByExternalID retrieves a subscription by its provider-scoped
// external id with the relations the effector needs preloaded.
func (r *subscriptionRepository) GetByExternalID(provider, externalSubscriptionID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.
		Preload("Member").
		Preload("PaidRole").
		Preload("PaidRole.Guild").
		Where("provider = ? AND external_subscription_id = ?", provider, externalSubscriptionID).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// UpdateLocked applies a read-modify-write mutation under SELECT ... FOR
// UPDATE so two events racing on the same subscription are serialized by
// the database, not by the caller.
func (r *subscriptionRepository) UpdateLocked(id uint, apply func(sub *models.Subscription) error) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&sub, id).Error; err != nil {
			return err
		}
		if err := apply(&sub); err != nil {
			return err
		}
		return tx.Save(&sub).Error
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
