package models

import "time"

// Guild is a Discord server the bot has been set up in. Created by the
// onboarding flow; the webhook core only reads it to resolve role grants.
type Guild struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GuildID   string    `gorm:"type:varchar(32);not null;uniqueIndex:ux_guilds_guild_id" json:"guild_id"`
	Name      string    `gorm:"type:varchar(200);not null;default:''" json:"name"`
	IsActive  bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
