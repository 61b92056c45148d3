package domain

import (
	"context"
)

// SyncResult summarises one reconciliation of a cached collection.
type SyncResult struct {
	Kind     string `json:"kind"`
	Scope    string `json:"scope"`
	Upserted int    `json:"upserted"`
	Deleted  int    `json:"deleted"`
}

// ChatRepository defines persistence operations for group chat and inbox messages.
type ChatRepository interface {
	ChatMessage(ctx context.Context, id string) (*ChatMessage, error)
	GroupChat(ctx context.Context, groupID string) ([]*ChatMessage, error)
	InboxMessages(ctx context.Context, userID, partnerID string) ([]*ChatMessage, error)
	SaveChatMessages(ctx context.Context, scope Scope, msgs []*ChatMessage) (SyncResult, error)
	SaveInboxMessages(ctx context.Context, userID, partnerID string, msgs []*ChatMessage, page int) (SyncResult, error)
	DeleteMessage(ctx context.Context, id string) error
	LikeMessage(ctx context.Context, messageID, userID string, liked bool) error
}

// MembershipRepository defines persistence operations for group memberships.
type MembershipRepository interface {
	GroupMembership(ctx context.Context, userID, groupID string) (*GroupMembership, error)
	GroupMemberships(ctx context.Context, userID string) ([]*GroupMembership, error)
	UpdateMembership(ctx context.Context, userID, groupID string, isMember bool) error
	SaveGroupMemberships(ctx context.Context, scope Scope, memberships []*GroupMembership) (SyncResult, error)
}

// InboxRepository defines persistence operations for inbox conversations.
type InboxRepository interface {
	InboxConversations(ctx context.Context, userID string) ([]*InboxConversation, error)
	SaveInboxConversations(ctx context.Context, userID string, convs []*InboxConversation) (SyncResult, error)
}

// GroupRepository defines persistence operations for groups and their rosters.
type GroupRepository interface {
	Group(ctx context.Context, id string) (*Group, error)
	Groups(ctx context.Context, groupType string) ([]*Group, error)
	PublicGuilds(ctx context.Context) ([]*Group, error)
	UserGroups(ctx context.Context, userID, groupType string) ([]*Group, error)
	DoesGroupExist(ctx context.Context, id string) (bool, error)
	SaveGroups(ctx context.Context, groups []*Group) (SyncResult, error)
	RemoveQuest(ctx context.Context, partyID string) error
	SetQuestActivity(ctx context.Context, partyID string, active bool) error

	GroupMembers(ctx context.Context, partyID string) ([]*Member, error)
	SaveGroupMembers(ctx context.Context, scope Scope, members []*Member) (SyncResult, error)
}

// UserRepository defines persistence operations for the cached user profile.
type UserRepository interface {
	User(ctx context.Context, id string) (*User, error)
	SaveUser(ctx context.Context, u *User) error
	UpdateRSVPNeeded(ctx context.Context, userID string, needed bool) error
	RejectGroupInvitation(ctx context.Context, userID, groupID string) error
}

// SocialRepository is the complete local social cache.
type SocialRepository interface {
	ChatRepository
	MembershipRepository
	InboxRepository
	GroupRepository
	UserRepository
}
