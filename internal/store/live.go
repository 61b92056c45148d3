package store

import (
	"context"

	"guildcache/internal/domain"
	"guildcache/internal/live"
)

// WatchChatMessage streams a single message. Snapshots in which the message
// is not cached are skipped.
func (r *SocialRepo) WatchChatMessage(id string) *live.Query[*domain.ChatMessage] {
	return live.NewQuery(r.hub, func(ctx context.Context) (*domain.ChatMessage, error) {
		return r.ChatMessage(ctx, id)
	}, chatTables...).SkipWhen(live.IsNil[domain.ChatMessage])
}

func (r *SocialRepo) WatchGroupChat(groupID string) *live.Query[[]*domain.ChatMessage] {
	return live.NewQuery(r.hub, func(ctx context.Context) ([]*domain.ChatMessage, error) {
		return r.GroupChat(ctx, groupID)
	}, chatTables...)
}

func (r *SocialRepo) WatchInboxMessages(userID, partnerID string) *live.Query[[]*domain.ChatMessage] {
	return live.NewQuery(r.hub, func(ctx context.Context) ([]*domain.ChatMessage, error) {
		return r.InboxMessages(ctx, userID, partnerID)
	}, chatTables...)
}

// WatchGroupMembership streams the membership of userID in groupID. Nothing is
// emitted while the user is not a member.
func (r *SocialRepo) WatchGroupMembership(userID, groupID string) *live.Query[*domain.GroupMembership] {
	return live.NewQuery(r.hub, func(ctx context.Context) (*domain.GroupMembership, error) {
		return r.GroupMembership(ctx, userID, groupID)
	}, tableMemberships).SkipWhen(live.IsNil[domain.GroupMembership])
}

func (r *SocialRepo) WatchGroupMemberships(userID string) *live.Query[[]*domain.GroupMembership] {
	return live.NewQuery(r.hub, func(ctx context.Context) ([]*domain.GroupMembership, error) {
		return r.GroupMemberships(ctx, userID)
	}, tableMemberships)
}

func (r *SocialRepo) WatchInboxConversations(userID string) *live.Query[[]*domain.InboxConversation] {
	return live.NewQuery(r.hub, func(ctx context.Context) ([]*domain.InboxConversation, error) {
		return r.InboxConversations(ctx, userID)
	}, tableConversations)
}

// WatchGroup streams a single group, skipping snapshots where it is absent.
func (r *SocialRepo) WatchGroup(id string) *live.Query[*domain.Group] {
	return live.NewQuery(r.hub, func(ctx context.Context) (*domain.Group, error) {
		return r.Group(ctx, id)
	}, tableGroups).SkipWhen(live.IsNil[domain.Group])
}

func (r *SocialRepo) WatchGroups(groupType string) *live.Query[[]*domain.Group] {
	return live.NewQuery(r.hub, func(ctx context.Context) ([]*domain.Group, error) {
		return r.Groups(ctx, groupType)
	}, tableGroups)
}

func (r *SocialRepo) WatchPublicGuilds() *live.Query[[]*domain.Group] {
	return live.NewQuery(r.hub, r.PublicGuilds, tableGroups)
}

// WatchUserGroups refreshes on group and membership changes alike.
func (r *SocialRepo) WatchUserGroups(userID, groupType string) *live.Query[[]*domain.Group] {
	return live.NewQuery(r.hub, func(ctx context.Context) ([]*domain.Group, error) {
		return r.UserGroups(ctx, userID, groupType)
	}, tableGroups, tableMemberships)
}

func (r *SocialRepo) WatchGroupMembers(partyID string) *live.Query[[]*domain.Member] {
	return live.NewQuery(r.hub, func(ctx context.Context) ([]*domain.Member, error) {
		return r.GroupMembers(ctx, partyID)
	}, tableMembers)
}

// WatchUser streams the cached user and its invitations.
func (r *SocialRepo) WatchUser(id string) *live.Query[*domain.User] {
	return live.NewQuery(r.hub, func(ctx context.Context) (*domain.User, error) {
		return r.User(ctx, id)
	}, tableUsers, tableInvitations).SkipWhen(live.IsNil[domain.User])
}
