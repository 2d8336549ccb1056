package repository

import (
	"github.com/mrgoonie/docobo/app/models"
	"gorm.io/gorm"
)

// paidRoleRepository implements the PaidRoleRepository interface
type paidRoleRepository struct {
	db *gorm.DB
}

// NewPaidRoleRepository creates a new paid role repository instance
func NewPaidRoleRepository(db *gorm.DB) PaidRoleRepository {
	return &paidRoleRepository{db: db}
}

// GetActiveByGuildAndRole resolves an active paid role by the external
// Discord guild and role ids.
func (r *paidRoleRepository) GetActiveByGuildAndRole(discordGuildID, discordRoleID string) (*models.PaidRole, error) {
	var role models.PaidRole
	err := r.db.
		Preload("Guild").
		Joins("JOIN guilds ON guilds.id = paid_roles.guild_id").
		Where("guilds.guild_id = ? AND paid_roles.role_id = ? AND paid_roles.is_active = ?",
			discordGuildID, discordRoleID, true).
		First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}
