package store

import (
	"context"

	"go.uber.org/zap"

	"guildcache/internal/domain"
	"guildcache/internal/reconcile"
)

// syncCollection reconciles one collection inside a single transaction.
func syncCollection[E any, K comparable](
	ctx context.Context,
	r *SocialRepo,
	op string,
	tables []string,
	open func(t *txn) reconcile.Table[E, K],
	kind reconcile.Kind[E, K],
	scope domain.Scope,
	incoming []E,
) (domain.SyncResult, error) {
	var res domain.SyncResult
	err := r.withTx(ctx, op, tables, func(t *txn) error {
		var err error
		res, err = reconcile.Apply(ctx, open(t), kind, scope, incoming)
		return err
	})
	if err != nil {
		return domain.SyncResult{Kind: kind.Name, Scope: scope.String()}, err
	}
	r.log.Debug("collection synced",
		zap.String("kind", res.Kind),
		zap.String("scope", res.Scope),
		zap.Int("upserted", res.Upserted),
		zap.Int("deleted", res.Deleted),
	)
	return res, nil
}
