package repository

import (
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/taskpulse/pkg/util"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// mapConstraintError translates Postgres constraint failures into the
// domain error taxonomy: unique violations become Conflict, foreign key
// violations become Conflict as well (a referenced row is still in use or
// was removed underneath us). Everything else passes through.
func mapConstraintError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return util.NewConflict("duplicate value violates a uniqueness constraint", map[string]any{
				"constraint": pgErr.ConstraintName,
			})
		case pgForeignKeyViolation:
			return util.NewConflict("operation violates a reference constraint", map[string]any{
				"constraint": pgErr.ConstraintName,
			})
		}
	}
	return err
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func joinClauses(clauses []string) string {
	return strings.Join(clauses, " AND ")
}
