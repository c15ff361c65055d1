package postgres

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/errandly/errandly-backend/internal/domain"
)

// errSerialization marks a serializable-transaction conflict; WithinTx
// retries on it before surfacing a transient failure.
var errSerialization = errors.New("serialization conflict")

// storeErr classifies a driver error: serialization conflicts become
// retryable, broken connections become transient, everything else is
// wrapped with the failing operation.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%s: %v: %w", op, err, errSerialization)
		case "23503": // foreign_key_violation: a referenced record moved underneath us
			return fmt.Errorf("%s: %v: %w", op, err, domain.ErrInvalidState)
		}
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("%s: %v: %w", op, err, domain.ErrTransientStore)
	}

	return fmt.Errorf("%s: %w", op, err)
}
