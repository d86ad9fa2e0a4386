package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jaevor/go-nanoid"
)

var ErrParentNotFound = errors.New("parent folder does not exist")

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type Queries struct {
	db    DBTX
	newID func() string
}

func New(db DBTX) *Queries {
	return &Queries{db: db, newID: nodeIDGenerator}
}

const nodeIDLength = 21

var nodeIDGenerator = func() func() string {
	gen, err := nanoid.Standard(nodeIDLength)
	if err != nil {
		panic(err)
	}
	return gen
}()

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
