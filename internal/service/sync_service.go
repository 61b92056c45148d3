package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"guildcache/internal/domain"
	"guildcache/internal/observability"
)

// SyncService feeds server snapshots into the local cache. Every call is one
// reconciliation: incoming entities are upserted and, when the call is
// scoped, cached entities of the scope that are missing from the batch are
// removed.
type SyncService struct {
	repo     domain.SocialRepository
	log      *zap.Logger
	validate *validator.Validate
}

func NewSyncService(repo domain.SocialRepository, log *zap.Logger) *SyncService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SyncService{
		repo:     repo,
		log:      log,
		validate: validator.New(),
	}
}

// scopeFor returns Scoped(key) when the batch is complete for key.
func scopeFor(key string, prune bool) domain.Scope {
	if prune {
		return domain.Scoped(key)
	}
	return domain.Unscoped()
}

// SyncGroupChat stores the chat of groupID. With prune set the batch is the
// complete chat and cached messages missing from it are dropped.
func (s *SyncService) SyncGroupChat(ctx context.Context, groupID string, prune bool, msgs []*domain.ChatMessage) (domain.SyncResult, error) {
	if err := checkBatch(s.validate, "group id", groupID, msgs); err != nil {
		return domain.SyncResult{}, err
	}
	for _, m := range msgs {
		m.GroupID = groupID
		m.IsInboxMessage = false
	}
	res, err := s.repo.SaveChatMessages(ctx, scopeFor(groupID, prune), msgs)
	return s.finish("chat_messages", res, err)
}

// SyncInboxMessages stores one page of the thread between userID and
// partnerID. Page 0 is the newest page and replaces the cached thread.
func (s *SyncService) SyncInboxMessages(ctx context.Context, userID, partnerID string, page int, msgs []*domain.ChatMessage) (domain.SyncResult, error) {
	if page < 0 {
		return domain.SyncResult{}, fmt.Errorf("%w: page must not be negative", domain.ErrInvalidInput)
	}
	if err := checkBatch(s.validate, "user id", userID, msgs); err != nil {
		return domain.SyncResult{}, err
	}
	if partnerID == "" {
		return domain.SyncResult{}, fmt.Errorf("%w: partner id is required", domain.ErrInvalidInput)
	}
	res, err := s.repo.SaveInboxMessages(ctx, userID, partnerID, msgs, page)
	return s.finish("inbox_messages", res, err)
}

// SyncInboxConversations replaces the conversation list of userID.
func (s *SyncService) SyncInboxConversations(ctx context.Context, userID string, convs []*domain.InboxConversation) (domain.SyncResult, error) {
	if err := checkBatch(s.validate, "user id", userID, convs); err != nil {
		return domain.SyncResult{}, err
	}
	res, err := s.repo.SaveInboxConversations(ctx, userID, convs)
	return s.finish("inbox_conversations", res, err)
}

// SyncMemberships stores the group memberships of userID.
func (s *SyncService) SyncMemberships(ctx context.Context, userID string, prune bool, memberships []*domain.GroupMembership) (domain.SyncResult, error) {
	if err := checkBatch(s.validate, "user id", userID, memberships); err != nil {
		return domain.SyncResult{}, err
	}
	for _, m := range memberships {
		m.UserID = userID
	}
	res, err := s.repo.SaveGroupMemberships(ctx, scopeFor(userID, prune), memberships)
	return s.finish("group_memberships", res, err)
}

// SyncGroupMembers stores the roster of partyID.
func (s *SyncService) SyncGroupMembers(ctx context.Context, partyID string, prune bool, members []*domain.Member) (domain.SyncResult, error) {
	if err := checkBatch(s.validate, "party id", partyID, members); err != nil {
		return domain.SyncResult{}, err
	}
	for _, m := range members {
		m.PartyID = partyID
	}
	res, err := s.repo.SaveGroupMembers(ctx, scopeFor(partyID, prune), members)
	return s.finish("members", res, err)
}

// SyncGroups upserts groups. Groups are never pruned.
func (s *SyncService) SyncGroups(ctx context.Context, groups []*domain.Group) (domain.SyncResult, error) {
	if err := checkEntities(s.validate, groups); err != nil {
		return domain.SyncResult{}, err
	}
	res, err := s.repo.SaveGroups(ctx, groups)
	return s.finish("groups", res, err)
}

// SaveUser stores the profile of the signed-in user.
func (s *SyncService) SaveUser(ctx context.Context, u *domain.User) error {
	if u == nil {
		return fmt.Errorf("%w: user is required", domain.ErrInvalidInput)
	}
	if err := s.validate.Struct(u); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if err := s.repo.SaveUser(ctx, u); err != nil {
		s.log.Error("save user failed", zap.String("user_id", u.ID), zap.Error(err))
		return err
	}
	return nil
}

func checkEntities[E any](v *validator.Validate, entities []E) error {
	for i, e := range entities {
		if err := v.Struct(e); err != nil {
			return fmt.Errorf("%w: entity %d: %v", domain.ErrInvalidInput, i, err)
		}
	}
	return nil
}

func checkBatch[E any](v *validator.Validate, keyName, key string, entities []E) error {
	if key == "" {
		return fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, keyName)
	}
	return checkEntities(v, entities)
}

func (s *SyncService) finish(kind string, res domain.SyncResult, err error) (domain.SyncResult, error) {
	observability.RecordSync(kind, res.Upserted, res.Deleted, err)
	if err != nil {
		s.log.Error("cache sync failed", zap.String("kind", kind), zap.String("scope", res.Scope), zap.Error(err))
		return res, err
	}
	s.log.Info("cache synced",
		zap.String("kind", kind),
		zap.String("scope", res.Scope),
		zap.Int("upserted", res.Upserted),
		zap.Int("deleted", res.Deleted),
	)
	return res, nil
}
