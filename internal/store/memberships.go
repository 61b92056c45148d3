package store

import (
	"context"
	"database/sql"
	"fmt"

	"guildcache/internal/domain"
	"guildcache/internal/reconcile"
)

var membershipKind = reconcile.Kind[*domain.GroupMembership, string]{
	Name:     "group_memberships",
	Identity: func(m *domain.GroupMembership) string { return m.CombinedID() },
	Assign:   func(m *domain.GroupMembership, userID string) { m.UserID = userID },
}

type membershipTable struct {
	t *txn
}

func (m *membershipTable) Upsert(ctx context.Context, ms *domain.GroupMembership) error {
	_, err := m.t.exec(ctx, `
		INSERT INTO group_memberships (combined_id, user_id, group_id)
		VALUES (?, ?, ?)
		ON CONFLICT (combined_id) DO UPDATE SET
			user_id = excluded.user_id,
			group_id = excluded.group_id
	`, ms.CombinedID(), ms.UserID, ms.GroupID)
	if err != nil {
		return fmt.Errorf("upsert membership: %w", err)
	}
	return nil
}

func (m *membershipTable) InScope(ctx context.Context, userID string) ([]*domain.GroupMembership, error) {
	rows, err := m.t.query(ctx, `SELECT user_id, group_id FROM group_memberships WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("list scoped memberships: %w", err)
	}
	return scanMemberships(rows)
}

func (m *membershipTable) Delete(ctx context.Context, ids []string) error {
	return inChunks(ids, func(in string, args []any) error {
		_, err := m.t.exec(ctx, `DELETE FROM group_memberships WHERE combined_id IN `+in, args...)
		return err
	})
}

// SaveGroupMemberships reconciles the memberships of a user. The scope key is
// the user id.
func (r *SocialRepo) SaveGroupMemberships(ctx context.Context, scope domain.Scope, memberships []*domain.GroupMembership) (domain.SyncResult, error) {
	return syncCollection(ctx, r, "save group memberships", []string{tableMemberships},
		func(t *txn) reconcile.Table[*domain.GroupMembership, string] { return &membershipTable{t: t} },
		membershipKind, scope, memberships)
}

// UpdateMembership records that userID joined or left groupID.
func (r *SocialRepo) UpdateMembership(ctx context.Context, userID, groupID string, isMember bool) error {
	ms := &domain.GroupMembership{UserID: userID, GroupID: groupID}
	return r.withTx(ctx, "update membership", []string{tableMemberships}, func(t *txn) error {
		if isMember {
			_, err := t.exec(ctx, `
				INSERT INTO group_memberships (combined_id, user_id, group_id)
				VALUES (?, ?, ?)
				ON CONFLICT (combined_id) DO NOTHING
			`, ms.CombinedID(), ms.UserID, ms.GroupID)
			return err
		}
		_, err := t.exec(ctx, `
			DELETE FROM group_memberships WHERE user_id = ? AND group_id = ?
		`, userID, groupID)
		return err
	})
}

// GroupMembership returns the membership of userID in groupID, or nil.
func (r *SocialRepo) GroupMembership(ctx context.Context, userID, groupID string) (*domain.GroupMembership, error) {
	rows, err := r.query(ctx, `
		SELECT user_id, group_id FROM group_memberships
		WHERE user_id = ? AND group_id = ?
	`, userID, groupID)
	if err != nil {
		return nil, fmt.Errorf("get membership: %w", err)
	}
	res, err := scanMemberships(rows)
	if err != nil {
		return nil, fmt.Errorf("get membership: %w", err)
	}
	if len(res) == 0 {
		return nil, nil
	}
	return res[0], nil
}

// GroupMemberships returns every cached membership of userID.
func (r *SocialRepo) GroupMemberships(ctx context.Context, userID string) ([]*domain.GroupMembership, error) {
	rows, err := r.query(ctx, `
		SELECT user_id, group_id FROM group_memberships
		WHERE user_id = ?
		ORDER BY group_id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	res, err := scanMemberships(rows)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	return res, nil
}

func scanMemberships(rows *sql.Rows) ([]*domain.GroupMembership, error) {
	defer rows.Close()

	res := make([]*domain.GroupMembership, 0)
	for rows.Next() {
		m := &domain.GroupMembership{}
		if err := rows.Scan(&m.UserID, &m.GroupID); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		res = append(res, m)
	}
	return res, rows.Err()
}
