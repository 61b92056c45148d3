package reconcile_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"guildcache/internal/domain"
	"guildcache/internal/reconcile"
)

type row struct {
	ID    string
	Group string
	Text  string
}

// memTable keeps rows in a map, like a table without transactions.
type memTable struct {
	rows map[string]*row
}

func newMemTable(rows ...*row) *memTable {
	t := &memTable{rows: map[string]*row{}}
	for _, r := range rows {
		cp := *r
		t.rows[r.ID] = &cp
	}
	return t
}

func (t *memTable) Upsert(_ context.Context, r *row) error {
	cp := *r
	t.rows[r.ID] = &cp
	return nil
}

func (t *memTable) InScope(_ context.Context, key string) ([]*row, error) {
	var res []*row
	for _, r := range t.rows {
		if r.Group == key {
			res = append(res, r)
		}
	}
	return res, nil
}

func (t *memTable) Delete(_ context.Context, ids []string) error {
	for _, id := range ids {
		delete(t.rows, id)
	}
	return nil
}

func (t *memTable) idsIn(group string) []string {
	var ids []string
	for _, r := range t.rows {
		if r.Group == group {
			ids = append(ids, r.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

var rowKind = reconcile.Kind[*row, string]{
	Name:     "row",
	Identity: func(r *row) string { return r.ID },
	Assign:   func(r *row, key string) { r.Group = key },
}

func TestApply(t *testing.T) {
	ctx := context.Background()

	t.Run("PrunesAndOverwrites", func(t *testing.T) {
		table := newMemTable(
			&row{ID: "a", Group: "g1", Text: "old a"},
			&row{ID: "b", Group: "g1", Text: "old b"},
			&row{ID: "c", Group: "g1", Text: "old c"},
			&row{ID: "z", Group: "g2", Text: "other group"},
		)
		incoming := []*row{
			{ID: "b", Group: "g1", Text: "new b"},
			{ID: "c", Group: "g1", Text: "new c"},
			{ID: "d", Group: "g1", Text: "new d"},
		}

		res, err := reconcile.Apply[*row, string](ctx, table, rowKind, domain.Scoped("g1"), incoming)
		require.NoError(t, err)
		assert.Equal(t, 3, res.Upserted)
		assert.Equal(t, 1, res.Deleted)
		assert.Equal(t, "row", res.Kind)

		assert.Equal(t, []string{"b", "c", "d"}, table.idsIn("g1"))
		assert.Equal(t, "new b", table.rows["b"].Text)
		assert.Equal(t, "new c", table.rows["c"].Text)
		assert.Equal(t, []string{"z"}, table.idsIn("g2"))
	})

	t.Run("EmptyScopedBatchClearsScope", func(t *testing.T) {
		table := newMemTable(&row{ID: "x", Group: "g1"})

		res, err := reconcile.Apply[*row, string](ctx, table, rowKind, domain.Scoped("g1"), nil)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Deleted)
		assert.Empty(t, table.idsIn("g1"))
	})

	t.Run("UnscopedNeverDeletes", func(t *testing.T) {
		table := newMemTable(&row{ID: "x", Group: "g1"}, &row{ID: "y", Group: "g1"})

		res, err := reconcile.Apply[*row, string](ctx, table, rowKind, domain.Unscoped(), nil)
		require.NoError(t, err)
		assert.Zero(t, res.Deleted)
		assert.Equal(t, []string{"x", "y"}, table.idsIn("g1"))

		res, err = reconcile.Apply[*row, string](ctx, table, rowKind, domain.Unscoped(), []*row{{ID: "w", Group: "g1"}})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Upserted)
		assert.Equal(t, []string{"w", "x", "y"}, table.idsIn("g1"))
	})

	t.Run("Idempotent", func(t *testing.T) {
		table := newMemTable(&row{ID: "a", Group: "g1"})
		incoming := []*row{{ID: "b", Text: "b"}, {ID: "c", Text: "c"}}

		_, err := reconcile.Apply[*row, string](ctx, table, rowKind, domain.Scoped("g1"), incoming)
		require.NoError(t, err)
		first := table.idsIn("g1")

		res, err := reconcile.Apply[*row, string](ctx, table, rowKind, domain.Scoped("g1"), incoming)
		require.NoError(t, err)
		assert.Zero(t, res.Deleted)
		assert.Equal(t, first, table.idsIn("g1"))
	})

	t.Run("AssignsScopeToIncoming", func(t *testing.T) {
		table := newMemTable()
		incoming := []*row{{ID: "a"}}

		_, err := reconcile.Apply[*row, string](ctx, table, rowKind, domain.Scoped("g9"), incoming)
		require.NoError(t, err)
		assert.Equal(t, "g9", incoming[0].Group)
		assert.Equal(t, []string{"a"}, table.idsIn("g9"))
	})
}

// MockTable mocks reconcile.Table.
type MockTable struct {
	mock.Mock
}

func (m *MockTable) Upsert(ctx context.Context, r *row) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockTable) InScope(ctx context.Context, key string) ([]*row, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*row), args.Error(1)
}

func (m *MockTable) Delete(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func TestApplyErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")

	t.Run("UpsertFailureStops", func(t *testing.T) {
		table := new(MockTable)
		table.On("Upsert", mock.Anything, mock.Anything).Return(boom).Once()

		_, err := reconcile.Apply[*row, string](ctx, table, rowKind, domain.Scoped("g1"), []*row{{ID: "a"}, {ID: "b"}})
		assert.ErrorIs(t, err, boom)
		table.AssertNotCalled(t, "InScope", mock.Anything, mock.Anything)
		table.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("DeleteFailurePropagates", func(t *testing.T) {
		table := new(MockTable)
		table.On("Upsert", mock.Anything, mock.Anything).Return(nil)
		table.On("InScope", mock.Anything, "g1").Return([]*row{{ID: "a", Group: "g1"}, {ID: "old", Group: "g1"}}, nil)
		table.On("Delete", mock.Anything, []string{"old"}).Return(boom)

		res, err := reconcile.Apply[*row, string](ctx, table, rowKind, domain.Scoped("g1"), []*row{{ID: "a"}})
		assert.ErrorIs(t, err, boom)
		assert.Zero(t, res.Deleted)
		table.AssertExpectations(t)
	})

	t.Run("NoDeleteWhenNothingStale", func(t *testing.T) {
		table := new(MockTable)
		table.On("Upsert", mock.Anything, mock.Anything).Return(nil)
		table.On("InScope", mock.Anything, "g1").Return([]*row{{ID: "a", Group: "g1"}}, nil)

		_, err := reconcile.Apply[*row, string](ctx, table, rowKind, domain.Scoped("g1"), []*row{{ID: "a"}})
		require.NoError(t, err)
		table.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestStale(t *testing.T) {
	id := func(r *row) string { return r.ID }

	persisted := []*row{{ID: "a"}, {ID: "b"}, {ID: "a"}, {ID: "c"}}
	incoming := []*row{{ID: "b"}, {ID: "d"}}

	assert.Equal(t, []string{"a", "c"}, reconcile.Stale(persisted, incoming, id))
	assert.Empty(t, reconcile.Stale(nil, incoming, id))
	assert.Equal(t, []string{"a", "b", "c"}, reconcile.Stale(persisted, nil, id))
}
