package errors

import (
	"errors"

	"github.com/lib/pq"
)

// Dumped carries the unwrapped error chain for structured logging.
type Dumped struct {
	Code       string
	TopMessage string
	Chain      []string

	PGCode       string
	PGConstraint string
	PGTable      string
	PGColumn     string
	PGDetail     string
	PGMessage    string
}

// Dump flattens an error chain into loggable fields. Postgres driver
// errors buried in the chain get their diagnostics lifted out so log
// lines carry the sqlstate and constraint instead of a flat string.
func Dump(err error) Dumped {
	if err == nil {
		return Dumped{}
	}

	dump := Dumped{TopMessage: err.Error()}
	if typed := As(err); typed != nil {
		dump.Code = string(typed.Code())
	}

	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		dump.Chain = append(dump.Chain, cur.Error())
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		dump.PGCode = string(pqErr.Code)
		dump.PGConstraint = pqErr.Constraint
		dump.PGTable = pqErr.Table
		dump.PGColumn = pqErr.Column
		dump.PGDetail = pqErr.Detail
		dump.PGMessage = pqErr.Message
	}

	return dump
}
