package store

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is valid for both SQLite and PostgreSQL. Timestamps are unix
// milliseconds; absent references are stored as empty strings.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS chat_messages (
		id               TEXT    PRIMARY KEY,
		text             TEXT    NOT NULL DEFAULT '',
		timestamp        BIGINT  NOT NULL DEFAULT 0,
		group_id         TEXT    NOT NULL DEFAULT '',
		uuid             TEXT    NOT NULL DEFAULT '',
		user_id          TEXT    NOT NULL DEFAULT '',
		username         TEXT    NOT NULL DEFAULT '',
		is_inbox_message BOOLEAN NOT NULL DEFAULT FALSE,
		sent             BOOLEAN NOT NULL DEFAULT FALSE,
		flag_count       INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS chat_message_likes (
		message_id TEXT NOT NULL,
		user_id    TEXT NOT NULL,
		PRIMARY KEY (message_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS user_styles (
		id             TEXT    PRIMARY KEY,
		class          TEXT    NOT NULL DEFAULT '',
		costume_active BOOLEAN NOT NULL DEFAULT FALSE,
		background     TEXT    NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS contributor_info (
		user_id TEXT    PRIMARY KEY,
		level   INTEGER NOT NULL DEFAULT 0,
		admin   BOOLEAN NOT NULL DEFAULT FALSE,
		text    TEXT    NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS group_memberships (
		combined_id TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		group_id    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS inbox_conversations (
		combined_id TEXT   PRIMARY KEY,
		user_id     TEXT   NOT NULL,
		uuid        TEXT   NOT NULL,
		username    TEXT   NOT NULL DEFAULT '',
		text        TEXT   NOT NULL DEFAULT '',
		timestamp   BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS members (
		id           TEXT    PRIMARY KEY,
		username     TEXT    NOT NULL DEFAULT '',
		display_name TEXT    NOT NULL DEFAULT '',
		party_id     TEXT    NOT NULL DEFAULT '',
		level        INTEGER NOT NULL DEFAULT 0,
		class        TEXT    NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS social_groups (
		id           TEXT    PRIMARY KEY,
		name         TEXT    NOT NULL DEFAULT '',
		type         TEXT    NOT NULL,
		privacy      TEXT    NOT NULL DEFAULT '',
		member_count INTEGER NOT NULL DEFAULT 0,
		leader_id    TEXT    NOT NULL DEFAULT '',
		quest_key    TEXT,
		quest_active BOOLEAN NOT NULL DEFAULT FALSE,
		quest_leader TEXT    NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id                TEXT    PRIMARY KEY,
		username          TEXT    NOT NULL DEFAULT '',
		party_id          TEXT    NOT NULL DEFAULT '',
		quest_rsvp_needed BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS group_invitations (
		user_id    TEXT    NOT NULL,
		group_id   TEXT    NOT NULL,
		name       TEXT    NOT NULL DEFAULT '',
		inviter_id TEXT    NOT NULL DEFAULT '',
		is_party   BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (user_id, group_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_chat_messages_group ON chat_messages(group_id, timestamp DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_messages_thread ON chat_messages(user_id, uuid, timestamp DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_group_memberships_user ON group_memberships(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_inbox_conversations_user ON inbox_conversations(user_id, timestamp DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_members_party ON members(party_id)`,
	`CREATE INDEX IF NOT EXISTS idx_social_groups_type ON social_groups(type, member_count DESC)`,
}

// Migrate creates the cache schema. It is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
