package util

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringToNullString(t *testing.T) {
	assert.Equal(t, sql.NullString{}, StringToNullString(""))
	assert.Equal(t, sql.NullString{String: "user-1", Valid: true}, StringToNullString("user-1"))
}

func TestFlags(t *testing.T) {
	assert.Equal(t, 1, BoolToFlag(true))
	assert.Equal(t, 0, BoolToFlag(false))
	assert.True(t, FlagToBool(1))
	assert.True(t, FlagToBool(-1))
	assert.False(t, FlagToBool(0))
}
