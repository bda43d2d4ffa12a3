package database

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// duplicateCodes are the SQLSTATEs PostgreSQL raises when an object being
// created is already there. 23505 shows up when two sessions race on
// CREATE ... IF NOT EXISTS and the catalog's unique index catches the loser.
var duplicateCodes = map[pq.ErrorCode]bool{
	"42P07": true, // duplicate_table
	"42701": true, // duplicate_column
	"42710": true, // duplicate_object
	"42P06": true, // duplicate_schema
	"23505": true, // unique_violation
}

// IsDuplicateObject reports whether err means "this already exists".
//
// Server errors are classified by SQLSTATE. Errors without a code fall back
// to matching the message text, which only works while the server reports
// in English.
func IsDuplicateObject(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return duplicateCodes[pqErr.Code]
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate")
}
