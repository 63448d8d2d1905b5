package sqlstore

import (
	"database/sql"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver, registered as "pgx"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/pliu/socialboard/internal/models"
	"github.com/pliu/socialboard/internal/store"
)

const uniqueViolation = "23505"

type SQLStore struct {
	db         *sqlx.DB
	driverName string
}

var _ store.Store = (*SQLStore)(nil)

// New opens a store on one of the sqlite3, postgres (lib/pq) or pgx drivers and
// creates the schema if it does not exist yet.
func New(driverName, dataSourceName string) (*SQLStore, error) {
	db, err := sqlx.Open(driverName, dataSourceName)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s database failed", driverName)
	}
	if strings.Contains(dataSourceName, ":memory:") {
		// Each sqlite connection to :memory: sees its own empty database.
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "pinging database failed")
	}

	s := &SQLStore{db: db, driverName: driverName}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) isPostgres() bool {
	return s.driverName == "postgres" || s.driverName == "pgx"
}

func (s *SQLStore) createTables() error {
	// No foreign keys: references are checked by the handlers at write time only.
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			photo_url TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS posts (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS comments (
			id TEXT PRIMARY KEY,
			post_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			comment TEXT NOT NULL DEFAULT '',
			seq INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS comments_post_id_idx ON comments (post_id)`,
		`CREATE TABLE IF NOT EXISTS favorites (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			post_id TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS favorites_user_id_idx ON favorites (user_id)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			from_id TEXT NOT NULL,
			to_id TEXT NOT NULL,
			message TEXT NOT NULL,
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS messages_to_id_idx ON messages (to_id)`,
	}

	for _, query := range statements {
		if s.isPostgres() {
			query = strings.ReplaceAll(query, "DATETIME", "TIMESTAMPTZ")
		}
		if _, err := s.db.Exec(query); err != nil {
			return errors.Wrap(err, "creating schema failed")
		}
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}

// notFound maps sql.ErrNoRows to store.ErrNotFound and wraps everything else.
func notFound(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errors.Wrap(store.ErrNotFound, msg)
	}
	return errors.Wrap(err, msg)
}

func checkAffected(result sql.Result, msg string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, msg)
	}
	if rows == 0 {
		return errors.Wrap(store.ErrNotFound, msg)
	}
	return nil
}

func userRef(id string, username sql.NullString) *models.UserRef {
	if !username.Valid {
		return nil
	}
	return &models.UserRef{ID: id, Username: username.String}
}
