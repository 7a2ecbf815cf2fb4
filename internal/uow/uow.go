package uow

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/kirinyoku/padelgo/internal/repository"
	postgresrepo "github.com/kirinyoku/padelgo/internal/repository/postgres"
)

const maxAttempts = 3

// UoW implements repository.Store on top of postgres. Repositories returned
// outside Do run on the pool; inside Do they share one serializable transaction.
type UoW struct {
	*postgresrepo.Store
}

var _ repository.Store = (*UoW)(nil)

func NewUoW(store *postgresrepo.Store) *UoW {
	return &UoW{Store: store}
}

// Do runs fn inside the transaction. After a successful commit,
// it executes all after-commit hooks. Serialization failures and deadlocks
// re-run fn from the start; hooks from failed attempts are dropped.
func (u *UoW) Do(
	ctx context.Context,
	fn func(ctx context.Context, tx repository.Repositories, after func(repository.AfterCommit)) error,
) error {
	return u.DoWithOpts(ctx, nil, fn)
}

// DoWithOpts runs fn inside the transaction with the given options.
func (u *UoW) DoWithOpts(
	ctx context.Context,
	opts *pgx.TxOptions,
	fn func(ctx context.Context, tx repository.Repositories, after func(repository.AfterCommit)) error,
) error {
	const op = "uow.Do"

	var (
		hooks []repository.AfterCommit
		err   error
	)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		hooks = hooks[:0]

		err = u.Store.RunTx(ctx, opts, func(ctx context.Context, tx postgresrepo.DB) error {
			return fn(ctx, u.Store.With(tx), func(h repository.AfterCommit) {
				hooks = append(hooks, h)
			})
		})
		if err == nil || !postgresrepo.IsRetryable(err) || ctx.Err() != nil {
			break
		}
	}
	if err != nil {
		if postgresrepo.IsRetryable(err) {
			return fmt.Errorf("%s: %w", op, err)
		}
		return err
	}

	for _, h := range hooks {
		h(ctx)
	}

	return nil
}
