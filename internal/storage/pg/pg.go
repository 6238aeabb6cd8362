package pg

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/picwall-dev/picwall/internal/config"
	"github.com/picwall-dev/picwall/internal/service"

	_ "github.com/lib/pq"
)

// Querier abstracts database operations. It is satisfied by both *sql.DB and
// *sql.Tx, so the same query logic works inside and outside a transaction.
type Querier interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

type Storage struct {
	db  *sql.DB
	cfg *config.Config
}

var (
	_ service.ImageStorage   = (*Storage)(nil)
	_ service.PictureStorage = (*Storage)(nil)
	_ service.CollageStorage = (*Storage)(nil)
	_ service.AuthStorage    = (*Storage)(nil)
	_ service.GCStorage      = (*Storage)(nil)
)

func New(cfg *config.Config) (*Storage, error) {
	log.Print("Connecting to db")
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	log.Print("Successfully connected to db")
	return &Storage{db, cfg}, nil
}

func Connect(cfg *config.Config) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Private.Pg.Host, cfg.Private.Pg.Port,
		cfg.Private.Pg.User, cfg.Private.Pg.Password,
		cfg.Private.Pg.Dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

// Ping reports database reachability, for readiness probes.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx is one open database transaction plus the callbacks to run once it
// commits. It satisfies the service-level transaction interface.
type Tx struct {
	tx          *sql.Tx
	afterCommit []func()
}

func (t *Tx) AfterCommit(fn func()) {
	t.afterCommit = append(t.afterCommit, fn)
}

// InTx runs fn inside a transaction. On a nil return the transaction is
// committed and the registered AfterCommit callbacks run, in order; on error
// it is rolled back and the callbacks are discarded.
func (s *Storage) InTx(ctx context.Context, fn func(tx service.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback() // No-op if the transaction has been committed.

	t := &Tx{tx: sqlTx}
	if err := fn(t); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	for _, hook := range t.afterCommit {
		hook()
	}
	return nil
}
