package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"guildcache/internal/domain"
	"guildcache/internal/reconcile"
)

const messageColumns = `id, text, timestamp, group_id, uuid, user_id, username, is_inbox_message, sent, flag_count`

var groupChatKind = reconcile.Kind[*domain.ChatMessage, string]{
	Name:     "chat_messages",
	Identity: func(m *domain.ChatMessage) string { return m.ID },
	Assign: func(m *domain.ChatMessage, groupID string) {
		m.GroupID = groupID
		m.IsInboxMessage = false
	},
}

var inboxMessageKind = reconcile.Kind[*domain.ChatMessage, string]{
	Name:     "inbox_messages",
	Identity: func(m *domain.ChatMessage) string { return m.ID },
	Assign: func(m *domain.ChatMessage, threadKey string) {
		userID, partnerID, _ := domain.SplitThreadKey(threadKey)
		m.UserID = userID
		m.UUID = partnerID
		m.IsInboxMessage = true
	},
}

// messageTable stores chat messages together with their likes, styles and
// contributor info. The scope key is a group id, or a thread key when inbox
// is set.
type messageTable struct {
	t     *txn
	inbox bool
}

func (m *messageTable) Upsert(ctx context.Context, msg *domain.ChatMessage) error {
	return upsertMessage(ctx, m.t, msg)
}

func (m *messageTable) InScope(ctx context.Context, key string) ([]*domain.ChatMessage, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if m.inbox {
		userID, partnerID, ok := domain.SplitThreadKey(key)
		if !ok {
			return nil, fmt.Errorf("invalid thread key %q", key)
		}
		rows, err = m.t.query(ctx, `
			SELECT id FROM chat_messages
			WHERE is_inbox_message = ? AND user_id = ? AND uuid = ?
		`, true, userID, partnerID)
	} else {
		rows, err = m.t.query(ctx, `
			SELECT id FROM chat_messages
			WHERE group_id = ? AND is_inbox_message = ?
		`, key, false)
	}
	if err != nil {
		return nil, fmt.Errorf("list scoped messages: %w", err)
	}
	defer rows.Close()

	var res []*domain.ChatMessage
	for rows.Next() {
		msg := &domain.ChatMessage{}
		if err := rows.Scan(&msg.ID); err != nil {
			return nil, fmt.Errorf("scan message id: %w", err)
		}
		res = append(res, msg)
	}
	return res, rows.Err()
}

func (m *messageTable) Delete(ctx context.Context, ids []string) error {
	return deleteMessages(ctx, m.t, ids)
}

func upsertMessage(ctx context.Context, t *txn, msg *domain.ChatMessage) error {
	text := msg.Text
	if t.cipher != nil {
		sealed, err := t.cipher.Encrypt(text)
		if err != nil {
			return fmt.Errorf("encrypt message text: %w", err)
		}
		text = sealed
	}

	if _, err := t.exec(ctx, `
		INSERT INTO chat_messages (`+messageColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			text = excluded.text,
			timestamp = excluded.timestamp,
			group_id = excluded.group_id,
			uuid = excluded.uuid,
			user_id = excluded.user_id,
			username = excluded.username,
			is_inbox_message = excluded.is_inbox_message,
			sent = excluded.sent,
			flag_count = excluded.flag_count
	`,
		msg.ID, text, msg.Timestamp, msg.GroupID, msg.UUID, msg.UserID,
		msg.Username, msg.IsInboxMessage, msg.Sent, msg.FlagCount,
	); err != nil {
		return fmt.Errorf("upsert message: %w", err)
	}

	// Side records are replaced along with the message.
	if _, err := t.exec(ctx, `DELETE FROM chat_message_likes WHERE message_id = ?`, msg.ID); err != nil {
		return fmt.Errorf("clear likes: %w", err)
	}
	for i := range msg.Likes {
		msg.Likes[i].MessageID = msg.ID
		if _, err := t.exec(ctx, `
			INSERT INTO chat_message_likes (message_id, user_id)
			VALUES (?, ?)
			ON CONFLICT DO NOTHING
		`, msg.ID, msg.Likes[i].UserID); err != nil {
			return fmt.Errorf("insert like: %w", err)
		}
	}

	if s := msg.UserStyles; s != nil {
		s.ID = msg.ID
		if _, err := t.exec(ctx, `
			INSERT INTO user_styles (id, class, costume_active, background)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				class = excluded.class,
				costume_active = excluded.costume_active,
				background = excluded.background
		`, s.ID, s.Class, s.CostumeActive, s.Background); err != nil {
			return fmt.Errorf("upsert user styles: %w", err)
		}
	} else if _, err := t.exec(ctx, `DELETE FROM user_styles WHERE id = ?`, msg.ID); err != nil {
		return fmt.Errorf("clear user styles: %w", err)
	}

	if c := msg.ContributorInfo; c != nil {
		c.UserID = msg.ID
		if _, err := t.exec(ctx, `
			INSERT INTO contributor_info (user_id, level, admin, text)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (user_id) DO UPDATE SET
				level = excluded.level,
				admin = excluded.admin,
				text = excluded.text
		`, c.UserID, c.Level, c.Admin, c.Text); err != nil {
			return fmt.Errorf("upsert contributor info: %w", err)
		}
	} else if _, err := t.exec(ctx, `DELETE FROM contributor_info WHERE user_id = ?`, msg.ID); err != nil {
		return fmt.Errorf("clear contributor info: %w", err)
	}
	return nil
}

// deleteMessages removes messages and every side record keyed by their ids.
func deleteMessages(ctx context.Context, t *txn, ids []string) error {
	return inChunks(ids, func(in string, args []any) error {
		if _, err := t.exec(ctx, `DELETE FROM chat_messages WHERE id IN `+in, args...); err != nil {
			return fmt.Errorf("delete messages: %w", err)
		}
		if _, err := t.exec(ctx, `DELETE FROM chat_message_likes WHERE message_id IN `+in, args...); err != nil {
			return fmt.Errorf("delete likes: %w", err)
		}
		if _, err := t.exec(ctx, `DELETE FROM user_styles WHERE id IN `+in, args...); err != nil {
			return fmt.Errorf("delete user styles: %w", err)
		}
		if _, err := t.exec(ctx, `DELETE FROM contributor_info WHERE user_id IN `+in, args...); err != nil {
			return fmt.Errorf("delete contributor info: %w", err)
		}
		return nil
	})
}

// SaveChatMessages reconciles the cached chat of a group. Pruning happens only
// for a scoped call; its key is the group id.
func (r *SocialRepo) SaveChatMessages(ctx context.Context, scope domain.Scope, msgs []*domain.ChatMessage) (domain.SyncResult, error) {
	return syncCollection(ctx, r, "save chat messages", chatTables,
		func(t *txn) reconcile.Table[*domain.ChatMessage, string] { return &messageTable{t: t} },
		groupChatKind, scope, msgs)
}

// SaveInboxMessages reconciles one page of the private thread between userID
// and partnerID. Only the first page is complete enough to prune against.
func (r *SocialRepo) SaveInboxMessages(ctx context.Context, userID, partnerID string, msgs []*domain.ChatMessage, page int) (domain.SyncResult, error) {
	key := domain.ThreadKey(userID, partnerID)
	for _, m := range msgs {
		inboxMessageKind.Assign(m, key)
	}
	scope := domain.Unscoped()
	if page == 0 {
		scope = domain.Scoped(key)
	}
	return syncCollection(ctx, r, "save inbox messages", chatTables,
		func(t *txn) reconcile.Table[*domain.ChatMessage, string] { return &messageTable{t: t, inbox: true} },
		inboxMessageKind, scope, msgs)
}

// DeleteMessage removes a message and its side records. Deleting a message
// that is not cached is not an error.
func (r *SocialRepo) DeleteMessage(ctx context.Context, id string) error {
	return r.withTx(ctx, "delete message", chatTables, func(t *txn) error {
		return deleteMessages(ctx, t, []string{id})
	})
}

// LikeMessage adds or removes the like of userID. It does nothing when the
// message is already in the requested state.
func (r *SocialRepo) LikeMessage(ctx context.Context, messageID, userID string, liked bool) error {
	missing := false
	err := r.withTx(ctx, "like message", []string{tableChatLikes}, func(t *txn) error {
		var exists int
		err := t.queryRow(ctx, `SELECT 1 FROM chat_messages WHERE id = ?`, messageID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			missing = true
			return nil
		}
		if err != nil {
			return fmt.Errorf("get message: %w", err)
		}
		if liked {
			_, err = t.exec(ctx, `
				INSERT INTO chat_message_likes (message_id, user_id)
				VALUES (?, ?)
				ON CONFLICT DO NOTHING
			`, messageID, userID)
			return err
		}
		_, err = t.exec(ctx, `
			DELETE FROM chat_message_likes WHERE message_id = ? AND user_id = ?
		`, messageID, userID)
		return err
	})
	if err != nil {
		return err
	}
	if missing {
		return domain.ErrNotFound
	}
	return nil
}

// ChatMessage returns a cached message, or nil when it is not cached.
func (r *SocialRepo) ChatMessage(ctx context.Context, id string) (*domain.ChatMessage, error) {
	msgs, err := r.listMessages(ctx, `WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get chat message: %w", err)
	}
	if len(msgs) == 0 {
		return nil, nil
	}
	return msgs[0], nil
}

// GroupChat returns the cached chat of a group, newest first.
func (r *SocialRepo) GroupChat(ctx context.Context, groupID string) ([]*domain.ChatMessage, error) {
	msgs, err := r.listMessages(ctx, `
		WHERE group_id = ? AND is_inbox_message = ?
		ORDER BY timestamp DESC, id ASC
	`, groupID, false)
	if err != nil {
		return nil, fmt.Errorf("list group chat: %w", err)
	}
	return msgs, nil
}

// InboxMessages returns the cached private thread between userID and
// partnerID, newest first.
func (r *SocialRepo) InboxMessages(ctx context.Context, userID, partnerID string) ([]*domain.ChatMessage, error) {
	msgs, err := r.listMessages(ctx, `
		WHERE is_inbox_message = ? AND uuid = ? AND user_id = ?
		ORDER BY timestamp DESC, id ASC
	`, true, partnerID, userID)
	if err != nil {
		return nil, fmt.Errorf("list inbox messages: %w", err)
	}
	return msgs, nil
}

func (r *SocialRepo) listMessages(ctx context.Context, where string, args ...any) ([]*domain.ChatMessage, error) {
	rows, err := r.query(ctx, `SELECT `+messageColumns+` FROM chat_messages `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make([]*domain.ChatMessage, 0)
	for rows.Next() {
		m := &domain.ChatMessage{}
		if err := rows.Scan(
			&m.ID,
			&m.Text,
			&m.Timestamp,
			&m.GroupID,
			&m.UUID,
			&m.UserID,
			&m.Username,
			&m.IsInboxMessage,
			&m.Sent,
			&m.FlagCount,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if r.cipher != nil {
			if m.Text, err = r.cipher.Decrypt(m.Text); err != nil {
				return nil, fmt.Errorf("decrypt message %s: %w", m.ID, err)
			}
		}
		res = append(res, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachSideRecords(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// attachSideRecords loads likes, styles and contributor info of msgs.
func (r *SocialRepo) attachSideRecords(ctx context.Context, msgs []*domain.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	byID := make(map[string]*domain.ChatMessage, len(msgs))
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		byID[m.ID] = m
		ids = append(ids, m.ID)
	}

	return inChunks(ids, func(in string, args []any) error {
		rows, err := r.query(ctx, `
			SELECT message_id, user_id FROM chat_message_likes
			WHERE message_id IN `+in+`
			ORDER BY user_id ASC
		`, args...)
		if err != nil {
			return fmt.Errorf("list likes: %w", err)
		}
		for rows.Next() {
			var like domain.ChatMessageLike
			if err := rows.Scan(&like.MessageID, &like.UserID); err != nil {
				rows.Close()
				return fmt.Errorf("scan like: %w", err)
			}
			m := byID[like.MessageID]
			m.Likes = append(m.Likes, like)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		rows, err = r.query(ctx, `
			SELECT id, class, costume_active, background FROM user_styles
			WHERE id IN `+in, args...)
		if err != nil {
			return fmt.Errorf("list user styles: %w", err)
		}
		for rows.Next() {
			s := &domain.UserStyles{}
			if err := rows.Scan(&s.ID, &s.Class, &s.CostumeActive, &s.Background); err != nil {
				rows.Close()
				return fmt.Errorf("scan user styles: %w", err)
			}
			byID[s.ID].UserStyles = s
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		rows, err = r.query(ctx, `
			SELECT user_id, level, admin, text FROM contributor_info
			WHERE user_id IN `+in, args...)
		if err != nil {
			return fmt.Errorf("list contributor info: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			c := &domain.ContributorInfo{}
			if err := rows.Scan(&c.UserID, &c.Level, &c.Admin, &c.Text); err != nil {
				return fmt.Errorf("scan contributor info: %w", err)
			}
			byID[c.UserID].ContributorInfo = c
		}
		return rows.Err()
	})
}
