package store

import (
	"context"
	"database/sql"
	"fmt"

	"guildcache/internal/domain"
	"guildcache/internal/reconcile"
)

var conversationKind = reconcile.Kind[*domain.InboxConversation, string]{
	Name:     "inbox_conversations",
	Identity: func(c *domain.InboxConversation) string { return c.CombinedID() },
	Assign:   func(c *domain.InboxConversation, userID string) { c.UserID = userID },
}

type conversationTable struct {
	t *txn
}

func (c *conversationTable) Upsert(ctx context.Context, conv *domain.InboxConversation) error {
	_, err := c.t.exec(ctx, `
		INSERT INTO inbox_conversations (combined_id, user_id, uuid, username, text, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (combined_id) DO UPDATE SET
			user_id = excluded.user_id,
			uuid = excluded.uuid,
			username = excluded.username,
			text = excluded.text,
			timestamp = excluded.timestamp
	`, conv.CombinedID(), conv.UserID, conv.UUID, conv.Username, conv.Text, conv.Timestamp)
	if err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}
	return nil
}

func (c *conversationTable) InScope(ctx context.Context, userID string) ([]*domain.InboxConversation, error) {
	rows, err := c.t.query(ctx, `
		SELECT user_id, uuid, username, text, timestamp
		FROM inbox_conversations
		WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list scoped conversations: %w", err)
	}
	return scanConversations(rows)
}

func (c *conversationTable) Delete(ctx context.Context, ids []string) error {
	return inChunks(ids, func(in string, args []any) error {
		_, err := c.t.exec(ctx, `DELETE FROM inbox_conversations WHERE combined_id IN `+in, args...)
		return err
	})
}

// SaveInboxConversations replaces the cached conversation list of userID.
func (r *SocialRepo) SaveInboxConversations(ctx context.Context, userID string, convs []*domain.InboxConversation) (domain.SyncResult, error) {
	return syncCollection(ctx, r, "save inbox conversations", []string{tableConversations},
		func(t *txn) reconcile.Table[*domain.InboxConversation, string] { return &conversationTable{t: t} },
		conversationKind, domain.Scoped(userID), convs)
}

// InboxConversations returns the conversations of userID, most recent first.
func (r *SocialRepo) InboxConversations(ctx context.Context, userID string) ([]*domain.InboxConversation, error) {
	rows, err := r.query(ctx, `
		SELECT user_id, uuid, username, text, timestamp
		FROM inbox_conversations
		WHERE user_id = ?
		ORDER BY timestamp DESC, uuid ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	res, err := scanConversations(rows)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return res, nil
}

func scanConversations(rows *sql.Rows) ([]*domain.InboxConversation, error) {
	defer rows.Close()

	res := make([]*domain.InboxConversation, 0)
	for rows.Next() {
		c := &domain.InboxConversation{}
		if err := rows.Scan(&c.UserID, &c.UUID, &c.Username, &c.Text, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		res = append(res, c)
	}
	return res, rows.Err()
}
