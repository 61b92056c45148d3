package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"guildcache/internal/domain"
	"guildcache/internal/reconcile"
)

const groupColumns = `id, name, type, privacy, member_count, leader_id, quest_key, quest_active, quest_leader`

// Groups are upserted only. Nothing the cache receives is a complete list of
// groups, so there is no scope to prune.
var groupKind = reconcile.Kind[*domain.Group, string]{
	Name:     "groups",
	Identity: func(g *domain.Group) string { return g.ID },
}

var errGroupsUnscoped = errors.New("groups have no sync scope")

type groupTable struct {
	t *txn
}

func (g *groupTable) Upsert(ctx context.Context, grp *domain.Group) error {
	var (
		questKey    sql.NullString
		questActive bool
		questLeader string
	)
	if q := grp.Quest; q != nil {
		questKey = sql.NullString{String: q.Key, Valid: true}
		questActive = q.Active
		questLeader = q.Leader
	}
	_, err := g.t.exec(ctx, `
		INSERT INTO social_groups (`+groupColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			privacy = excluded.privacy,
			member_count = excluded.member_count,
			leader_id = excluded.leader_id,
			quest_key = excluded.quest_key,
			quest_active = excluded.quest_active,
			quest_leader = excluded.quest_leader
	`, grp.ID, grp.Name, grp.Type, grp.Privacy, grp.MemberCount, grp.LeaderID,
		questKey, questActive, questLeader)
	if err != nil {
		return fmt.Errorf("upsert group: %w", err)
	}
	return nil
}

func (g *groupTable) InScope(context.Context, string) ([]*domain.Group, error) {
	return nil, errGroupsUnscoped
}

func (g *groupTable) Delete(context.Context, []string) error {
	return errGroupsUnscoped
}

// SaveGroups upserts groups. Groups missing from the batch are kept.
func (r *SocialRepo) SaveGroups(ctx context.Context, groups []*domain.Group) (domain.SyncResult, error) {
	return syncCollection(ctx, r, "save groups", []string{tableGroups},
		func(t *txn) reconcile.Table[*domain.Group, string] { return &groupTable{t: t} },
		groupKind, domain.Unscoped(), groups)
}

// Group returns a cached group, or nil.
func (r *SocialRepo) Group(ctx context.Context, id string) (*domain.Group, error) {
	groups, err := r.listGroups(ctx, `WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	if len(groups) == 0 {
		return nil, nil
	}
	return groups[0], nil
}

// Groups returns every cached group of the given type.
func (r *SocialRepo) Groups(ctx context.Context, groupType string) ([]*domain.Group, error) {
	groups, err := r.listGroups(ctx, `WHERE type = ? ORDER BY id ASC`, groupType)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// PublicGuilds returns public guilds other than the tavern, largest first.
func (r *SocialRepo) PublicGuilds(ctx context.Context) ([]*domain.Group, error) {
	groups, err := r.listGroups(ctx, `
		WHERE type = ? AND privacy = ? AND id <> ?
		ORDER BY member_count DESC, id ASC
	`, domain.GroupTypeGuild, domain.PrivacyPublic, domain.TavernID)
	if err != nil {
		return nil, fmt.Errorf("list public guilds: %w", err)
	}
	return groups, nil
}

// UserGroups returns the groups of groupType userID is a member of, largest
// first. An empty groupType means guilds. The tavern is never included.
func (r *SocialRepo) UserGroups(ctx context.Context, userID, groupType string) ([]*domain.Group, error) {
	if groupType == "" {
		groupType = domain.GroupTypeGuild
	}
	groups, err := r.listGroups(ctx, `
		WHERE type = ? AND id <> ?
		AND id IN (SELECT group_id FROM group_memberships WHERE user_id = ?)
		ORDER BY member_count DESC, id ASC
	`, groupType, domain.TavernID, userID)
	if err != nil {
		return nil, fmt.Errorf("list user groups: %w", err)
	}
	return groups, nil
}

// DoesGroupExist reports whether the group is cached.
func (r *SocialRepo) DoesGroupExist(ctx context.Context, id string) (bool, error) {
	var exists int
	err := r.queryRow(ctx, `SELECT COUNT(*) FROM social_groups WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("group exists: %w", err)
	}
	return exists > 0, nil
}

// RemoveQuest clears the quest of a party.
func (r *SocialRepo) RemoveQuest(ctx context.Context, partyID string) error {
	return r.withTx(ctx, "remove quest", []string{tableGroups}, func(t *txn) error {
		_, err := t.exec(ctx, `
			UPDATE social_groups
			SET quest_key = NULL, quest_active = ?, quest_leader = ''
			WHERE id = ? AND quest_key IS NOT NULL
		`, false, partyID)
		return err
	})
}

// SetQuestActivity marks the quest of a party as running or not. Parties
// without a quest are left alone.
func (r *SocialRepo) SetQuestActivity(ctx context.Context, partyID string, active bool) error {
	return r.withTx(ctx, "set quest activity", []string{tableGroups}, func(t *txn) error {
		_, err := t.exec(ctx, `
			UPDATE social_groups SET quest_active = ?
			WHERE id = ? AND quest_key IS NOT NULL
		`, active, partyID)
		return err
	})
}

func (r *SocialRepo) listGroups(ctx context.Context, where string, args ...any) ([]*domain.Group, error) {
	rows, err := r.query(ctx, `SELECT `+groupColumns+` FROM social_groups `+where, args...)
	if err != nil {
		return nil, err
	}
	return scanGroups(rows)
}

func scanGroups(rows *sql.Rows) ([]*domain.Group, error) {
	defer rows.Close()

	res := make([]*domain.Group, 0)
	for rows.Next() {
		var (
			g           = &domain.Group{}
			questKey    sql.NullString
			questActive bool
			questLeader string
		)
		if err := rows.Scan(
			&g.ID,
			&g.Name,
			&g.Type,
			&g.Privacy,
			&g.MemberCount,
			&g.LeaderID,
			&questKey,
			&questActive,
			&questLeader,
		); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		if questKey.Valid {
			g.Quest = &domain.Quest{Key: questKey.String, Active: questActive, Leader: questLeader}
		}
		res = append(res, g)
	}
	return res, rows.Err()
}
