package sqlxrepos

import (
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/learnhub/core"
)

const (
	uniqueViolation = "23505"

	// returned by database/sql once DB.Close has been called
	errDBClosedMsg = "sql: database is closed"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// wrap annotates err with msg. Errors from a closed database ask the app to shut down.
func wrap(err error, msg string) error {
	if errors.Is(err, sql.ErrConnDone) || errors.Cause(err).Error() == errDBClosedMsg {
		return core.NewShutdownError(msg, err)
	}
	return errors.Wrap(err, msg)
}
