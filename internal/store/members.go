package store

import (
	"context"
	"database/sql"
	"fmt"

	"guildcache/internal/domain"
	"guildcache/internal/reconcile"
)

const memberColumns = `id, username, display_name, party_id, level, class`

var memberKind = reconcile.Kind[*domain.Member, string]{
	Name:     "members",
	Identity: func(m *domain.Member) string { return m.ID },
	Assign:   func(m *domain.Member, partyID string) { m.PartyID = partyID },
}

type memberTable struct {
	t *txn
}

func (m *memberTable) Upsert(ctx context.Context, mem *domain.Member) error {
	_, err := m.t.exec(ctx, `
		INSERT INTO members (`+memberColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			username = excluded.username,
			display_name = excluded.display_name,
			party_id = excluded.party_id,
			level = excluded.level,
			class = excluded.class
	`, mem.ID, mem.Username, mem.DisplayName, mem.PartyID, mem.Level, mem.Class)
	if err != nil {
		return fmt.Errorf("upsert member: %w", err)
	}
	return nil
}

func (m *memberTable) InScope(ctx context.Context, partyID string) ([]*domain.Member, error) {
	rows, err := m.t.query(ctx, `SELECT `+memberColumns+` FROM members WHERE party_id = ?`, partyID)
	if err != nil {
		return nil, fmt.Errorf("list scoped members: %w", err)
	}
	return scanMembers(rows)
}

func (m *memberTable) Delete(ctx context.Context, ids []string) error {
	return inChunks(ids, func(in string, args []any) error {
		_, err := m.t.exec(ctx, `DELETE FROM members WHERE id IN `+in, args...)
		return err
	})
}

// SaveGroupMembers reconciles the roster of a group. The scope key is the
// party id.
func (r *SocialRepo) SaveGroupMembers(ctx context.Context, scope domain.Scope, members []*domain.Member) (domain.SyncResult, error) {
	return syncCollection(ctx, r, "save group members", []string{tableMembers},
		func(t *txn) reconcile.Table[*domain.Member, string] { return &memberTable{t: t} },
		memberKind, scope, members)
}

// GroupMembers returns the cached roster of a party.
func (r *SocialRepo) GroupMembers(ctx context.Context, partyID string) ([]*domain.Member, error) {
	rows, err := r.query(ctx, `
		SELECT `+memberColumns+` FROM members
		WHERE party_id = ?
		ORDER BY username ASC, id ASC
	`, partyID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	res, err := scanMembers(rows)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return res, nil
}

func scanMembers(rows *sql.Rows) ([]*domain.Member, error) {
	defer rows.Close()

	res := make([]*domain.Member, 0)
	for rows.Next() {
		m := &domain.Member{}
		if err := rows.Scan(&m.ID, &m.Username, &m.DisplayName, &m.PartyID, &m.Level, &m.Class); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		res = append(res, m)
	}
	return res, rows.Err()
}
