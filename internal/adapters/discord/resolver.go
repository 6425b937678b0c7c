package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"quotebot/internal/domain"
)

// Resolver resolves user, role, and channel IDs embedded in stored quotes to
// current display names via the gateway's REST API. discordgo caches guild
// state, so most lookups never leave the process.
type Resolver struct {
	session *discordgo.Session
}

// NewResolver creates a Resolver backed by session.
func NewResolver(session *discordgo.Session) *Resolver {
	return &Resolver{session: session}
}

// ResolveMember returns the member's nickname, falling back to their
// username.
func (r *Resolver) ResolveMember(_ context.Context, guildID, userID string) (string, error) {
	member, err := r.session.GuildMember(guildID, userID)
	if err != nil {
		if isNotFound(err) {
			return "", domain.NewNotFoundError("member", userID)
		}

		return "", fmt.Errorf("resolving member %s: %w", userID, err)
	}

	if member.Nick != "" {
		return member.Nick, nil
	}
	if member.User != nil {
		return member.User.Username, nil
	}

	return "", domain.NewNotFoundError("member", userID)
}

// ResolveRole returns the role's name.
func (r *Resolver) ResolveRole(_ context.Context, guildID, roleID string) (string, error) {
	roles, err := r.session.GuildRoles(guildID)
	if err != nil {
		if isNotFound(err) {
			return "", domain.NewNotFoundError("role", roleID)
		}

		return "", fmt.Errorf("resolving role %s: %w", roleID, err)
	}

	for _, role := range roles {
		if role.ID == roleID {
			return role.Name, nil
		}
	}

	return "", domain.NewNotFoundError("role", roleID)
}

// ResolveChannel returns the channel's name.
func (r *Resolver) ResolveChannel(_ context.Context, _, channelID string) (string, error) {
	channel, err := r.session.Channel(channelID)
	if err != nil {
		if isNotFound(err) {
			return "", domain.NewNotFoundError("channel", channelID)
		}

		return "", fmt.Errorf("resolving channel %s: %w", channelID, err)
	}

	return channel.Name, nil
}

func isNotFound(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		return restErr.Response.StatusCode == http.StatusNotFound
	}

	return false
}
