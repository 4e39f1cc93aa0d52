package sqlxrepos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	return ok && pqErr.Code == uniqueViolation
}

// where collects AND-ed conditions written with "?" placeholders.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

// query appends the conditions and ordering to base and rebinds it for postgres.
func (w *where) query(base string, ordering ...string) string {
	var q strings.Builder
	q.WriteString(base)
	if len(w.conds) > 0 {
		q.WriteString(" WHERE ")
		q.WriteString(strings.Join(w.conds, " AND "))
	}
	if len(ordering) > 0 {
		q.WriteString(" ORDER BY ")
		q.WriteString(strings.Join(ordering, ", "))
	}
	return sqlx.Rebind(sqlx.DOLLAR, q.String())
}

// orderBy keeps the orderings on known columns.
func orderBy(ordering []core.DBOrdering, columns map[string]bool) []string {
	clauses := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		if columns[ord.Field] {
			clauses = append(clauses, ord.String())
		}
	}
	return clauses
}

// inTx runs fn within a transaction, committed only when fn succeeds.
func inTx(ctx context.Context, db core.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func checkAffected(res interface{ RowsAffected() (int64, error) }, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "counting affected rows")
	}
	if n == 0 {
		return notFound
	}
	return nil
}
