package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"guildcache/internal/domain"
)

// SocialService answers cache reads and applies the single-field writes the
// client performs between two syncs.
type SocialService struct {
	repo domain.SocialRepository
	log  *zap.Logger
}

func NewSocialService(repo domain.SocialRepository, log *zap.Logger) *SocialService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SocialService{repo: repo, log: log}
}

func required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, pairs[i])
		}
	}
	return nil
}

func (s *SocialService) ChatMessage(ctx context.Context, id string) (*domain.ChatMessage, error) {
	msg, err := s.repo.ChatMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, domain.ErrNotFound
	}
	return msg, nil
}

func (s *SocialService) GroupChat(ctx context.Context, groupID string) ([]*domain.ChatMessage, error) {
	return s.repo.GroupChat(ctx, groupID)
}

func (s *SocialService) InboxMessages(ctx context.Context, userID, partnerID string) ([]*domain.ChatMessage, error) {
	return s.repo.InboxMessages(ctx, userID, partnerID)
}

func (s *SocialService) InboxConversations(ctx context.Context, userID string) ([]*domain.InboxConversation, error) {
	return s.repo.InboxConversations(ctx, userID)
}

func (s *SocialService) GroupMembership(ctx context.Context, userID, groupID string) (*domain.GroupMembership, error) {
	m, err := s.repo.GroupMembership(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

func (s *SocialService) GroupMemberships(ctx context.Context, userID string) ([]*domain.GroupMembership, error) {
	return s.repo.GroupMemberships(ctx, userID)
}

func (s *SocialService) Group(ctx context.Context, id string) (*domain.Group, error) {
	g, err := s.repo.Group(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, domain.ErrNotFound
	}
	return g, nil
}

// Groups lists cached groups of groupType, which must be a guild or a party.
func (s *SocialService) Groups(ctx context.Context, groupType string) ([]*domain.Group, error) {
	if groupType != domain.GroupTypeGuild && groupType != domain.GroupTypeParty {
		return nil, fmt.Errorf("%w: unknown group type %q", domain.ErrInvalidInput, groupType)
	}
	return s.repo.Groups(ctx, groupType)
}

func (s *SocialService) PublicGuilds(ctx context.Context) ([]*domain.Group, error) {
	return s.repo.PublicGuilds(ctx)
}

func (s *SocialService) UserGroups(ctx context.Context, userID, groupType string) ([]*domain.Group, error) {
	return s.repo.UserGroups(ctx, userID, groupType)
}

func (s *SocialService) DoesGroupExist(ctx context.Context, id string) (bool, error) {
	return s.repo.DoesGroupExist(ctx, id)
}

func (s *SocialService) GroupMembers(ctx context.Context, partyID string) ([]*domain.Member, error) {
	return s.repo.GroupMembers(ctx, partyID)
}

func (s *SocialService) User(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.repo.User(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (s *SocialService) UpdateMembership(ctx context.Context, userID, groupID string, isMember bool) error {
	if err := required("user id", userID, "group id", groupID); err != nil {
		return err
	}
	if err := s.repo.UpdateMembership(ctx, userID, groupID, isMember); err != nil {
		return fmt.Errorf("update membership: %w", err)
	}
	s.log.Debug("membership updated",
		zap.String("user_id", userID), zap.String("group_id", groupID), zap.Bool("member", isMember))
	return nil
}

func (s *SocialService) DeleteMessage(ctx context.Context, id string) error {
	if err := required("message id", id); err != nil {
		return err
	}
	if err := s.repo.DeleteMessage(ctx, id); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// LikeMessage sets the like of userID on a message and returns the message
// as cached afterwards.
func (s *SocialService) LikeMessage(ctx context.Context, messageID, userID string, liked bool) (*domain.ChatMessage, error) {
	if err := required("message id", messageID, "user id", userID); err != nil {
		return nil, err
	}
	if err := s.repo.LikeMessage(ctx, messageID, userID, liked); err != nil {
		return nil, fmt.Errorf("like message: %w", err)
	}
	return s.ChatMessage(ctx, messageID)
}

func (s *SocialService) UpdateRSVPNeeded(ctx context.Context, userID string, needed bool) error {
	if err := required("user id", userID); err != nil {
		return err
	}
	if err := s.repo.UpdateRSVPNeeded(ctx, userID, needed); err != nil {
		return fmt.Errorf("update rsvp needed: %w", err)
	}
	return nil
}

func (s *SocialService) RejectGroupInvitation(ctx context.Context, userID, groupID string) error {
	if err := required("user id", userID, "group id", groupID); err != nil {
		return err
	}
	if err := s.repo.RejectGroupInvitation(ctx, userID, groupID); err != nil {
		return fmt.Errorf("reject group invitation: %w", err)
	}
	return nil
}

func (s *SocialService) RemoveQuest(ctx context.Context, partyID string) error {
	if err := required("party id", partyID); err != nil {
		return err
	}
	if err := s.repo.RemoveQuest(ctx, partyID); err != nil {
		return fmt.Errorf("remove quest: %w", err)
	}
	return nil
}

func (s *SocialService) SetQuestActivity(ctx context.Context, partyID string, active bool) error {
	if err := required("party id", partyID); err != nil {
		return err
	}
	if err := s.repo.SetQuestActivity(ctx, partyID, active); err != nil {
		return fmt.Errorf("set quest activity: %w", err)
	}
	return nil
}
