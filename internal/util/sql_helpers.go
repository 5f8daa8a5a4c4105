package util

import (
	"database/sql"
)

// StringToNullString converts a string to sql.NullString.
// An empty string is treated as NULL.
func StringToNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{} // Valid is false, String is ""
	}
	return sql.NullString{String: s, Valid: true}
}

// BoolToFlag converts a bool to the NUMBER(1) flag Oracle columns use.
func BoolToFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// FlagToBool is the inverse of BoolToFlag. Any non-zero flag is true.
func FlagToBool(flag int) bool {
	return flag != 0
}
