package repository

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(&pgconn.PgError{Code: uniqueViolationCode}))
	assert.True(t, isDuplicateKey(fmt.Errorf("create user: %w", &pgconn.PgError{Code: uniqueViolationCode})))
	assert.True(t, isDuplicateKey(gorm.ErrDuplicatedKey))

	// foreign_key_violation is not a duplicate
	assert.False(t, isDuplicateKey(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isDuplicateKey(fmt.Errorf("connection reset")))
	assert.False(t, isDuplicateKey(nil))
}
