package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier abstracts the pgx surface shared by *pgxpool.Pool and pgx.Tx, so
// every store runs unchanged on the pool or inside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Stores bundles the storage ports a case operation touches inside one
// atomic unit.
type Stores struct {
	Cases   CaseStore
	Ledger  LedgerStore
	Journal JournalStore
	SLA     SLAStore
	Users   UserStore
}

// TxRunner executes fn within a single transaction; either every write in
// fn persists or none do.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}

// NewStores builds the store bundle over the given querier.
func NewStores(q Querier) Stores {
	return Stores{
		Cases:   NewCaseStore(q),
		Ledger:  NewLedgerStore(q),
		Journal: NewJournalStore(q),
		SLA:     NewSLAStore(q),
		Users:   NewUserStore(q),
	}
}
