package models

import "time"

// Member identifies a Discord user within a guild. A member can exist
// before the user ever talked to the bot: a bank transfer may arrive
// first, in which case the SePay path creates the row lazily with a
// placeholder username.
type Member struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(32);not null;index:ux_members_user_guild,unique,priority:1" json:"user_id"`
	GuildID   uint      `gorm:"not null;index:ux_members_user_guild,unique,priority:2" json:"guild_id"`
	Username  string    `gorm:"type:varchar(100);not null;default:''" json:"username"`
	Guild     *Guild    `gorm:"foreignKey:GuildID" json:"guild,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
