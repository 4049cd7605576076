package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aussiebroadwan/bizdesk/internal/bizdesk/store"
)

// Store is the database/sql implementation of store.Store.
type Store struct {
	db      *sql.DB
	dialect Dialect
	migrate Migrator
	conn    conn
}

var _ store.Store = (*Store)(nil)

// New wraps an open database. The caller keeps the driver specific setup
// (pool size, pragmas); Close closes db.
func New(db *sql.DB, d Dialect, m Migrator) *Store {
	return &Store{
		db:      db,
		dialect: d,
		migrate: m,
		conn:    conn{q: db, d: d},
	}
}

// DB exposes the underlying pool for tests and tooling.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Dialect() Dialect { return s.dialect }

func (s *Store) ApplyMigrations() error {
	if s.migrate == nil {
		return errors.New("sqlstore: no migrator configured")
	}
	return s.migrate(s.db)
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx, conn: conn{q: tx, d: s.dialect}}, nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	// Rollback after Commit is a harmless sql.ErrTxDone.
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Organizations() store.Organizations { return orgsRepo{s.conn} }
func (s *Store) Users() store.Users                 { return usersRepo{s.conn} }
func (s *Store) Invitations() store.Invitations     { return invitationsRepo{s.conn} }
func (s *Store) Sessions() store.Sessions           { return sessionsRepo{s.conn} }
func (s *Store) Clients() store.Clients             { return clientsRepo{s.conn} }
func (s *Store) Offerings() store.Offerings         { return offeringsRepo{s.conn} }
func (s *Store) Bookings() store.Bookings           { return bookingsRepo{s.conn} }
func (s *Store) Subscriptions() store.Subscriptions { return subscriptionsRepo{s.conn} }

type txStore struct {
	tx   *sql.Tx
	conn conn
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op; the owning Store holds the pool.
func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }

// Nested transactions are not supported.
func (t *txStore) Tx(ctx context.Context) (store.Tx, error) { return nil, sql.ErrTxDone }

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

// ApplyMigrations is a no-op; migrations run before any transaction.
func (t *txStore) ApplyMigrations() error { return nil }

func (t *txStore) Organizations() store.Organizations { return orgsRepo{t.conn} }
func (t *txStore) Users() store.Users                 { return usersRepo{t.conn} }
func (t *txStore) Invitations() store.Invitations     { return invitationsRepo{t.conn} }
func (t *txStore) Sessions() store.Sessions           { return sessionsRepo{t.conn} }
func (t *txStore) Clients() store.Clients             { return clientsRepo{t.conn} }
func (t *txStore) Offerings() store.Offerings         { return offeringsRepo{t.conn} }
func (t *txStore) Bookings() store.Bookings           { return bookingsRepo{t.conn} }
func (t *txStore) Subscriptions() store.Subscriptions { return subscriptionsRepo{t.conn} }
