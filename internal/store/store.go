// Package store implements the local social cache on top of database/sql.
//
// Every write runs in a single transaction. Listeners registered on the
// repository's live.Hub are woken only after a commit that changed rows.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"guildcache/internal/domain"
	"guildcache/internal/live"
)

// Dialect selects the placeholder syntax of the underlying driver.
type Dialect int

const (
	// SQLite uses "?" placeholders.
	SQLite Dialect = iota
	// Postgres uses "$1".."$n" placeholders.
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// rebind rewrites "?" placeholders for the dialect.
func (d Dialect) rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// TextCipher seals chat message text at rest.
type TextCipher interface {
	Encrypt(plain string) (string, error)
	Decrypt(stored string) (string, error)
}

// Table names, also used as live.Hub topics.
const (
	tableChatMessages    = "chat_messages"
	tableChatLikes       = "chat_message_likes"
	tableUserStyles      = "user_styles"
	tableContributorInfo = "contributor_info"
	tableMemberships     = "group_memberships"
	tableConversations   = "inbox_conversations"
	tableMembers         = "members"
	tableGroups          = "social_groups"
	tableUsers           = "users"
	tableInvitations     = "group_invitations"
)

var chatTables = []string{tableChatMessages, tableChatLikes, tableUserStyles, tableContributorInfo}

// SocialRepo is the SQL implementation of domain.SocialRepository.
type SocialRepo struct {
	db      *sql.DB
	dialect Dialect
	hub     *live.Hub
	cipher  TextCipher
	log     *zap.Logger
}

var _ domain.SocialRepository = (*SocialRepo)(nil)

// Option configures a SocialRepo.
type Option func(*SocialRepo)

// WithCipher seals chat message text with c.
func WithCipher(c TextCipher) Option {
	return func(r *SocialRepo) { r.cipher = c }
}

// WithLogger sets the logger used for write diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(r *SocialRepo) { r.log = l }
}

// WithHub shares an existing change hub instead of creating one.
func WithHub(h *live.Hub) Option {
	return func(r *SocialRepo) { r.hub = h }
}

func New(db *sql.DB, dialect Dialect, opts ...Option) *SocialRepo {
	r := &SocialRepo{db: db, dialect: dialect}
	for _, opt := range opts {
		opt(r)
	}
	if r.hub == nil {
		r.hub = live.NewHub()
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	return r
}

// Hub returns the change hub live queries subscribe to.
func (r *SocialRepo) Hub() *live.Hub {
	return r.hub
}

func (r *SocialRepo) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return r.db.QueryContext(ctx, r.dialect.rebind(query), args...)
}

func (r *SocialRepo) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return r.db.QueryRowContext(ctx, r.dialect.rebind(query), args...)
}

// txn is an open write transaction. It remembers whether any statement
// affected rows so commits that touched nothing do not wake listeners.
// Upserts always count as affected.
type txn struct {
	tx      *sql.Tx
	dialect Dialect
	cipher  TextCipher
	changed bool
}

func (t *txn) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := t.tx.ExecContext(ctx, t.dialect.rebind(query), args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		t.changed = true
	}
	return n, nil
}

func (t *txn) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, t.dialect.rebind(query), args...)
}

func (t *txn) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, t.dialect.rebind(query), args...)
}

// withTx runs fn in one transaction and publishes tables after a commit that
// changed rows. Failures wrap domain.ErrStoreWrite; nothing of a failed call
// is kept.
func (r *SocialRepo) withTx(ctx context.Context, op string, tables []string, fn func(t *txn) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w: %w", op, domain.ErrStoreWrite, err)
	}
	defer tx.Rollback()

	t := &txn{tx: tx, dialect: r.dialect, cipher: r.cipher}
	if err := fn(t); err != nil {
		r.log.Warn("write rolled back", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreWrite, err)
	}
	if err := tx.Commit(); err != nil {
		r.log.Warn("commit failed", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%s: commit: %w: %w", op, domain.ErrStoreWrite, err)
	}
	if t.changed {
		r.hub.Publish(tables...)
	}
	return nil
}

// maxInArgs bounds the number of placeholders of one IN clause.
const maxInArgs = 500

// inChunks calls fn with successive slices of ids no longer than maxInArgs,
// along with a matching "(?,?,...)" placeholder list.
func inChunks(ids []string, fn func(placeholders string, args []any) error) error {
	for start := 0; start < len(ids); start += maxInArgs {
		end := min(start+maxInArgs, len(ids))
		chunk := ids[start:end]
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}
		placeholders := "(?" + strings.Repeat(",?", len(chunk)-1) + ")"
		if err := fn(placeholders, args); err != nil {
			return err
		}
	}
	return nil
}
