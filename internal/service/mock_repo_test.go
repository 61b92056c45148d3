package service_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"guildcache/internal/domain"
)

// MockSocialRepo mocks domain.SocialRepository.
type MockSocialRepo struct {
	mock.Mock
}

var _ domain.SocialRepository = (*MockSocialRepo)(nil)

func syncResult(args mock.Arguments) (domain.SyncResult, error) {
	return args.Get(0).(domain.SyncResult), args.Error(1)
}

func (m *MockSocialRepo) ChatMessage(ctx context.Context, id string) (*domain.ChatMessage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatMessage), args.Error(1)
}

func (m *MockSocialRepo) GroupChat(ctx context.Context, groupID string) ([]*domain.ChatMessage, error) {
	args := m.Called(ctx, groupID)
	return args.Get(0).([]*domain.ChatMessage), args.Error(1)
}

func (m *MockSocialRepo) InboxMessages(ctx context.Context, userID, partnerID string) ([]*domain.ChatMessage, error) {
	args := m.Called(ctx, userID, partnerID)
	return args.Get(0).([]*domain.ChatMessage), args.Error(1)
}

func (m *MockSocialRepo) SaveChatMessages(ctx context.Context, scope domain.Scope, msgs []*domain.ChatMessage) (domain.SyncResult, error) {
	return syncResult(m.Called(ctx, scope, msgs))
}

func (m *MockSocialRepo) SaveInboxMessages(ctx context.Context, userID, partnerID string, msgs []*domain.ChatMessage, page int) (domain.SyncResult, error) {
	return syncResult(m.Called(ctx, userID, partnerID, msgs, page))
}

func (m *MockSocialRepo) DeleteMessage(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSocialRepo) LikeMessage(ctx context.Context, messageID, userID string, liked bool) error {
	return m.Called(ctx, messageID, userID, liked).Error(0)
}

func (m *MockSocialRepo) GroupMembership(ctx context.Context, userID, groupID string) (*domain.GroupMembership, error) {
	args := m.Called(ctx, userID, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GroupMembership), args.Error(1)
}

func (m *MockSocialRepo) GroupMemberships(ctx context.Context, userID string) ([]*domain.GroupMembership, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*domain.GroupMembership), args.Error(1)
}

func (m *MockSocialRepo) UpdateMembership(ctx context.Context, userID, groupID string, isMember bool) error {
	return m.Called(ctx, userID, groupID, isMember).Error(0)
}

func (m *MockSocialRepo) SaveGroupMemberships(ctx context.Context, scope domain.Scope, memberships []*domain.GroupMembership) (domain.SyncResult, error) {
	return syncResult(m.Called(ctx, scope, memberships))
}

func (m *MockSocialRepo) InboxConversations(ctx context.Context, userID string) ([]*domain.InboxConversation, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*domain.InboxConversation), args.Error(1)
}

func (m *MockSocialRepo) SaveInboxConversations(ctx context.Context, userID string, convs []*domain.InboxConversation) (domain.SyncResult, error) {
	return syncResult(m.Called(ctx, userID, convs))
}

func (m *MockSocialRepo) Group(ctx context.Context, id string) (*domain.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockSocialRepo) Groups(ctx context.Context, groupType string) ([]*domain.Group, error) {
	args := m.Called(ctx, groupType)
	return args.Get(0).([]*domain.Group), args.Error(1)
}

func (m *MockSocialRepo) PublicGuilds(ctx context.Context) ([]*domain.Group, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*domain.Group), args.Error(1)
}

func (m *MockSocialRepo) UserGroups(ctx context.Context, userID, groupType string) ([]*domain.Group, error) {
	args := m.Called(ctx, userID, groupType)
	return args.Get(0).([]*domain.Group), args.Error(1)
}

func (m *MockSocialRepo) DoesGroupExist(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockSocialRepo) SaveGroups(ctx context.Context, groups []*domain.Group) (domain.SyncResult, error) {
	return syncResult(m.Called(ctx, groups))
}

func (m *MockSocialRepo) RemoveQuest(ctx context.Context, partyID string) error {
	return m.Called(ctx, partyID).Error(0)
}

func (m *MockSocialRepo) SetQuestActivity(ctx context.Context, partyID string, active bool) error {
	return m.Called(ctx, partyID, active).Error(0)
}

func (m *MockSocialRepo) GroupMembers(ctx context.Context, partyID string) ([]*domain.Member, error) {
	args := m.Called(ctx, partyID)
	return args.Get(0).([]*domain.Member), args.Error(1)
}

func (m *MockSocialRepo) SaveGroupMembers(ctx context.Context, scope domain.Scope, members []*domain.Member) (domain.SyncResult, error) {
	return syncResult(m.Called(ctx, scope, members))
}

func (m *MockSocialRepo) User(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockSocialRepo) SaveUser(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockSocialRepo) UpdateRSVPNeeded(ctx context.Context, userID string, needed bool) error {
	return m.Called(ctx, userID, needed).Error(0)
}

func (m *MockSocialRepo) RejectGroupInvitation(ctx context.Context, userID, groupID string) error {
	return m.Called(ctx, userID, groupID).Error(0)
}
