package utils

import (
	"errors"
	"fmt"

	mysqlDriver "github.com/go-sql-driver/mysql"
)

var ErrorRecordNotFound = errors.New("record not found")

// ValidationError is a rejected input: a missing or invalid field.
// The request is rejected before any write happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field string, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ConflictError is a uniqueness violation on a business key. The offending
// value is named so the caller can surface it.
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("duplicate %s: %q already exists", e.Field, e.Value)
}

func NewConflictError(field string, value string) error {
	return &ConflictError{Field: field, Value: value}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsConflictError(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsDuplicateKeyError reports whether err is a MySQL duplicate-entry error
// (1062). Uniqueness is pre-checked inside write transactions, but a unique
// index can still fire under concurrent writers.
func IsDuplicateKeyError(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrorRecordNotFound)
}

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
