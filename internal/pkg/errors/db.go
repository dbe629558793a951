package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// FromDB tags storage failures with the package sentinels so they resolve to
// a client status instead of a 500. Errors it does not recognise come back
// unchanged.
func FromDB(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict), errors.Is(err, ErrInvalidArgument):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %w", ErrConflict, err)
		case "23503", "23514": // foreign_key_violation, check_violation
			return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
		return err
	}

	// sqlite reports constraints only through the message.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint failed"):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case strings.Contains(msg, "foreign key constraint failed"), strings.Contains(msg, "check constraint failed"):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return err
}
