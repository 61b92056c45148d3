// Package reconcile makes a cached collection match a freshly fetched one.
//
// Apply upserts every incoming entity and, when the batch is complete for a
// scope, deletes the cached entities of that scope the batch no longer
// contains. It runs against a Table bound to an open transaction; committing
// or rolling back is up to the caller, so upserts and deletions become
// visible together or not at all.
package reconcile

import (
	"context"
	"fmt"

	"guildcache/internal/domain"
)

// Table is the storage of one entity kind inside an open transaction.
type Table[E any, K comparable] interface {
	Upsert(ctx context.Context, e E) error
	// InScope lists every cached entity of the partition identified by key.
	InScope(ctx context.Context, key string) ([]E, error)
	// Delete removes the entities with the given identities together with
	// any side records that depend on them.
	Delete(ctx context.Context, ids []K) error
}

// Kind describes how entities of one kind are identified and scoped.
type Kind[E any, K comparable] struct {
	Name     string
	Identity func(E) K
	// Assign stamps the scope key onto an incoming entity before it is
	// written. Nil leaves incoming entities untouched.
	Assign func(e E, key string)
}

// Apply reconciles the cached entities of scope with incoming.
func Apply[E any, K comparable](ctx context.Context, t Table[E, K], kind Kind[E, K], scope domain.Scope, incoming []E) (domain.SyncResult, error) {
	res := domain.SyncResult{Kind: kind.Name, Scope: scope.String()}
	key, scoped := scope.Key()

	for _, e := range incoming {
		if scoped && kind.Assign != nil {
			kind.Assign(e, key)
		}
		if err := t.Upsert(ctx, e); err != nil {
			return res, fmt.Errorf("upsert %s: %w", kind.Name, err)
		}
		res.Upserted++
	}

	if !scoped {
		return res, nil
	}

	persisted, err := t.InScope(ctx, key)
	if err != nil {
		return res, fmt.Errorf("list %s: %w", kind.Name, err)
	}
	stale := Stale(persisted, incoming, kind.Identity)
	if len(stale) == 0 {
		return res, nil
	}
	if err := t.Delete(ctx, stale); err != nil {
		return res, fmt.Errorf("delete stale %s: %w", kind.Name, err)
	}
	res.Deleted = len(stale)
	return res, nil
}

// Stale returns the identities of persisted entities that are absent from
// incoming, in persisted order and without duplicates. Only the presence of
// an identity matters; field values are not compared.
func Stale[E any, K comparable](persisted, incoming []E, identity func(E) K) []K {
	keep := make(map[K]struct{}, len(incoming))
	for _, e := range incoming {
		keep[identity(e)] = struct{}{}
	}

	var stale []K
	for _, e := range persisted {
		id := identity(e)
		if _, ok := keep[id]; ok {
			continue
		}
		keep[id] = struct{}{}
		stale = append(stale, id)
	}
	return stale
}
