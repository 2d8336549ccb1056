package repository

import (
	"errors"
	"fmt"

	"github.com/mrgoonie/docobo/app/models"
	"gorm.io/gorm"
)

// memberRepository implements the MemberRepository interface
type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository instance
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

// GetOrCreate finds a member by (userID, guildID) or lazily creates one.
// A bank transfer can arrive before the user ever interacted with the
// bot, so the username is a placeholder until they do.
func (r *memberRepository) GetOrCreate(userID string, guildID uint, username string) (*models.Member, error) {
	var member models.Member
	err := r.db.Where("user_id = ? AND guild_id = ?", userID, guildID).First(&member).Error
	if err == nil {
		return &member, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if username == "" {
		username = fmt.Sprintf("User-%s", userID)
	}
	member = models.Member{
		UserID:   userID,
		GuildID:  guildID,
		Username: username,
	}
	if err := r.db.Create(&member).Error; err != nil {
		// Another request may have created the row in between.
		var existing models.Member
		if lookupErr := r.db.Where("user_id = ? AND guild_id = ?", userID, guildID).
			First(&existing).Error; lookupErr == nil {
			return &existing, nil
		}
		return nil, err
	}
	return &member, nil
}
