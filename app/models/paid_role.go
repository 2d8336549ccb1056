package models

import "time"

// PaidRole is a guild's purchasable entitlement: the Discord role that
// gets granted when a subscription for it becomes active. Created by the
// admin setup flow; the webhook core reads it to validate payment
// amounts and to resolve which external role to grant.
type PaidRole struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GuildID   uint      `gorm:"not null;index:ux_paid_roles_guild_role,unique,priority:1" json:"guild_id"`
	RoleID    string    `gorm:"type:varchar(32);not null;index:ux_paid_roles_guild_role,unique,priority:2" json:"role_id"`
	RoleName  string    `gorm:"type:varchar(100);not null;default:''" json:"role_name"`
	PriceUsd  float64   `gorm:"type:decimal(10,2);not null;default:0" json:"price_usd"`
	Currency  string    `gorm:"type:varchar(8);not null;default:'USD'" json:"currency"`
	IsActive  bool      `gorm:"default:true;index" json:"is_active"`
	Guild     *Guild    `gorm:"foreignKey:GuildID" json:"guild,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
