package services

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Validation errors.
var (
	ErrPasswordPolicy       = errors.New("password does not meet the policy")
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnknownCategory      = errors.New("unknown category")
	ErrUnknownStatus        = errors.New("unknown status")
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
)

// Authentication errors. Controllers turn them into distinct user-facing messages.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrWrongPassword = errors.New("wrong password")
)

// Authorization and lookup errors.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("not allowed")
	ErrSessionInvalid  = errors.New("session is invalid or expired")
	ErrRequestNotFound = errors.New("request not found")
	ErrHistoryNotFound = errors.New("history not found")
)

// isUniqueViolation reports whether err is a unique-constraint failure from
// either supported driver, or gorm's translated form of one.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return false
}
