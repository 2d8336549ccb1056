package discordrole

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

type fakeSession struct {
	member    *discordgo.Member
	memberErr error
	addErr    error
	removeErr error

	added   []string
	removed []string
}

func (s *fakeSession) GuildMember(guildID, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	if s.memberErr != nil {
		return nil, s.memberErr
	}
	return s.member, nil
}

func (s *fakeSession) GuildMemberRoleAdd(guildID, userID, roleID string, _ ...discordgo.RequestOption) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.added = append(s.added, roleID)
	return nil
}

func (s *fakeSession) GuildMemberRoleRemove(guildID, userID, roleID string, _ ...discordgo.RequestOption) error {
	if s.removeErr != nil {
		return s.removeErr
	}
	s.removed = append(s.removed, roleID)
	return nil
}

func newTestEffector(s *fakeSession) *Effector {
	return &Effector{session: s, timeout: time.Second}
}

func unknownMemberErr() error {
	return &discordgo.RESTError{
		Message: &discordgo.APIErrorMessage{
			Code:    discordgo.ErrCodeUnknownMember,
			Message: "Unknown Member",
		},
	}
}

func TestGrant_AddsRole(t *testing.T) {
	s := &fakeSession{member: &discordgo.Member{Roles: []string{"other"}}}
	e := newTestEffector(s)

	if err := e.Grant(context.Background(), "g1", "u1", "r1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.added) != 1 || s.added[0] != "r1" {
		t.Fatalf("expected role add for r1, got %v", s.added)
	}
}

func TestGrant_AlreadyHeldIsNoop(t *testing.T) {
	s := &fakeSession{member: &discordgo.Member{Roles: []string{"r1"}}}
	e := newTestEffector(s)

	if err := e.Grant(context.Background(), "g1", "u1", "r1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.added) != 0 {
		t.Fatalf("expected no API call for a held role, got %v", s.added)
	}
}

func TestGrant_UnknownMemberFails(t *testing.T) {
	s := &fakeSession{memberErr: unknownMemberErr()}
	e := newTestEffector(s)

	if err := e.Grant(context.Background(), "g1", "u1", "r1"); err == nil {
		t.Fatal("granting to a missing member must fail")
	}
}

func TestRevoke_RemovesRole(t *testing.T) {
	s := &fakeSession{member: &discordgo.Member{Roles: []string{"r1", "other"}}}
	e := newTestEffector(s)

	if err := e.Revoke(context.Background(), "g1", "u1", "r1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.removed) != 1 || s.removed[0] != "r1" {
		t.Fatalf("expected role remove for r1, got %v", s.removed)
	}
}

func TestRevoke_AbsentRoleIsNoop(t *testing.T) {
	s := &fakeSession{member: &discordgo.Member{Roles: []string{"other"}}}
	e := newTestEffector(s)

	if err := e.Revoke(context.Background(), "g1", "u1", "r1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.removed) != 0 {
		t.Fatalf("expected no API call for an absent role, got %v", s.removed)
	}
}

func TestRevoke_UnknownMemberIsNoop(t *testing.T) {
	s := &fakeSession{memberErr: unknownMemberErr()}
	e := newTestEffector(s)

	if err := e.Revoke(context.Background(), "g1", "u1", "r1"); err != nil {
		t.Fatalf("member who left the guild has nothing to revoke: %v", err)
	}
}

func TestRevoke_TransportErrorSurfaces(t *testing.T) {
	s := &fakeSession{memberErr: errors.New("connection reset")}
	e := newTestEffector(s)

	if err := e.Revoke(context.Background(), "g1", "u1", "r1"); err == nil {
		t.Fatal("transport failures must surface")
	}
}

func TestRevoke_RemoveErrorSurfaces(t *testing.T) {
	s := &fakeSession{
		member:    &discordgo.Member{Roles: []string{"r1"}},
		removeErr: errors.New("missing permissions"),
	}
	e := newTestEffector(s)

	if err := e.Revoke(context.Background(), "g1", "u1", "r1"); err == nil {
		t.Fatal("API failures must surface")
	}
}
