package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"nomorebugs-admin/internal/logger"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
)

const mysqlDuplicateEntry = 1062

// MySQL is the production record store.
type MySQL struct {
	db    *sql.DB
	log   logger.Logger
	now   func() time.Time
	newID func() string
}

func NewMySQL(db *sql.DB, log logger.Logger) *MySQL {
	return &MySQL{
		db:    db,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.NewString() },
	}
}

func (s *MySQL) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func isDuplicate(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}

// execAffecting runs a write that must match an existing row. The DSN sets
// clientFoundRows so unchanged rows still count as matched.
func (s *MySQL) execAffecting(ctx context.Context, query string, args ...interface{}) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func notFoundOr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
