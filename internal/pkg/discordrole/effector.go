package discordrole

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gofiber/fiber/v2/log"
)

const defaultCallTimeout = 10 * time.Second

// session is the slice of *discordgo.Session the effector needs.
type session interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

// Effector grants and revokes Discord roles idempotently: granting an
// already-held role and revoking an absent one are success no-ops.
// Every Discord API failure comes back as a plain error; nothing here
// panics past the caller.
type Effector struct {
	session session
	timeout time.Duration
}

// New creates an effector over an authenticated discordgo session. The
// session is used for REST calls only; no gateway connection is needed.
func New(s *discordgo.Session) *Effector {
	return &Effector{session: s, timeout: defaultCallTimeout}
}

// NewFromToken builds the underlying session from a bot token.
func NewFromToken(botToken string) (*Effector, error) {
	s, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return New(s), nil
}

// Grant adds the role to the member. The member must exist in the
// guild; a member that already holds the role is a success no-op.
func (e *Effector) Grant(ctx context.Context, guildID, userID, roleID string) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	member, err := e.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("fetch member %s in guild %s: %w", userID, guildID, err)
	}
	if hasRole(member, roleID) {
		log.Infof("member %s already has role %s", userID, roleID)
		return nil
	}

	if err := e.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("add role %s: %w", roleID, err)
	}
	return nil
}

// Revoke removes the role from the member. A member who left the guild
// or never held the role has nothing to revoke; both are success no-ops.
func (e *Effector) Revoke(ctx context.Context, guildID, userID, roleID string) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	member, err := e.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		if isUnknownEntity(err) {
			log.Infof("member %s not found in guild %s, nothing to revoke", userID, guildID)
			return nil
		}
		return fmt.Errorf("fetch member %s in guild %s: %w", userID, guildID, err)
	}
	if !hasRole(member, roleID) {
		log.Infof("member %s does not have role %s", userID, roleID)
		return nil
	}

	if err := e.session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("remove role %s: %w", roleID, err)
	}
	return nil
}

func hasRole(member *discordgo.Member, roleID string) bool {
	for _, id := range member.Roles {
		if id == roleID {
			return true
		}
	}
	return false
}

// isUnknownEntity reports whether the API said the guild or member does
// not exist (as opposed to a transport or permission failure).
func isUnknownEntity(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Message == nil {
		return false
	}
	switch restErr.Message.Code {
	case discordgo.ErrCodeUnknownMember, discordgo.ErrCodeUnknownGuild, discordgo.ErrCodeUnknownUser:
		return true
	default:
		return false
	}
}
