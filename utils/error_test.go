package utils

import (
	"fmt"
	"testing"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	validation := NewValidationError("amount", "must be greater than zero")
	assert.True(t, IsValidationError(validation))
	assert.False(t, IsConflictError(validation))
	assert.Contains(t, validation.Error(), "amount")

	conflict := NewConflictError("invoice_no", "INV-001")
	assert.True(t, IsConflictError(conflict))
	assert.False(t, IsValidationError(conflict))
	assert.Contains(t, conflict.Error(), "INV-001")

	assert.True(t, IsNotFound(ErrorRecordNotFound))
	assert.False(t, IsNotFound(validation))
}

func TestIsDuplicateKeyError(t *testing.T) {
	dup := &mysqlDriver.MySQLError{Number: 1062, Message: "Duplicate entry"}
	assert.True(t, IsDuplicateKeyError(dup))
	assert.True(t, IsDuplicateKeyError(fmt.Errorf("create failed: %w", dup)))

	syntax := &mysqlDriver.MySQLError{Number: 1064, Message: "syntax error"}
	assert.False(t, IsDuplicateKeyError(syntax))
	assert.False(t, IsDuplicateKeyError(fmt.Errorf("plain error")))
}
