package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"guildcache/internal/domain"
)

// SaveUser upserts the user and replaces its pending invitations.
func (r *SocialRepo) SaveUser(ctx context.Context, u *domain.User) error {
	return r.withTx(ctx, "save user", []string{tableUsers, tableInvitations}, func(t *txn) error {
		if _, err := t.exec(ctx, `
			INSERT INTO users (id, username, party_id, quest_rsvp_needed)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				username = excluded.username,
				party_id = excluded.party_id,
				quest_rsvp_needed = excluded.quest_rsvp_needed
		`, u.ID, u.Username, u.PartyID, u.QuestRSVPNeeded); err != nil {
			return fmt.Errorf("upsert user: %w", err)
		}
		if _, err := t.exec(ctx, `DELETE FROM group_invitations WHERE user_id = ?`, u.ID); err != nil {
			return fmt.Errorf("clear invitations: %w", err)
		}
		for _, inv := range u.Invitations {
			if _, err := t.exec(ctx, `
				INSERT INTO group_invitations (user_id, group_id, name, inviter_id, is_party)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT (user_id, group_id) DO UPDATE SET
					name = excluded.name,
					inviter_id = excluded.inviter_id,
					is_party = excluded.is_party
			`, u.ID, inv.GroupID, inv.Name, inv.InviterID, inv.IsParty); err != nil {
				return fmt.Errorf("insert invitation: %w", err)
			}
		}
		return nil
	})
}

// User returns the cached user with its invitations, or nil.
func (r *SocialRepo) User(ctx context.Context, id string) (*domain.User, error) {
	u := &domain.User{}
	err := r.queryRow(ctx, `
		SELECT id, username, party_id, quest_rsvp_needed
		FROM users WHERE id = ?
	`, id).Scan(&u.ID, &u.Username, &u.PartyID, &u.QuestRSVPNeeded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	rows, err := r.query(ctx, `
		SELECT group_id, name, inviter_id, is_party
		FROM group_invitations
		WHERE user_id = ?
		ORDER BY group_id ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var inv domain.Invitation
		if err := rows.Scan(&inv.GroupID, &inv.Name, &inv.InviterID, &inv.IsParty); err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		u.Invitations = append(u.Invitations, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return u, nil
}

// UpdateRSVPNeeded sets whether the user still has to answer a quest invitation.
func (r *SocialRepo) UpdateRSVPNeeded(ctx context.Context, userID string, needed bool) error {
	return r.withTx(ctx, "update rsvp needed", []string{tableUsers}, func(t *txn) error {
		_, err := t.exec(ctx, `UPDATE users SET quest_rsvp_needed = ? WHERE id = ?`, needed, userID)
		return err
	})
}

// RejectGroupInvitation drops the invitation of userID into groupID.
func (r *SocialRepo) RejectGroupInvitation(ctx context.Context, userID, groupID string) error {
	return r.withTx(ctx, "reject group invitation", []string{tableInvitations}, func(t *txn) error {
		_, err := t.exec(ctx, `
			DELETE FROM group_invitations WHERE user_id = ? AND group_id = ?
		`, userID, groupID)
		return err
	})
}
