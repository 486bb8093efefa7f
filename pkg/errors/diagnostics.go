package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/angelmondragon/dentalclinic-backend/pkg/db"
)

// Diagnostics is the log-only view of a failed request. It is never
// serialized to clients.
type Diagnostics struct {
	Message string
	Code    Code
	Chain   []string
	PG      *db.PGError
}

// Diagnose walks err's wrap chain and, when a database error sits in it,
// captures the Postgres fields.
func Diagnose(err error) Diagnostics {
	if err == nil {
		return Diagnostics{}
	}
	d := Diagnostics{Message: err.Error(), Code: CodeOf(err)}
	for e := err; e != nil; e = stdErrors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	if pgErr, ok := db.AsPGError(err); ok {
		d.PG = &pgErr
	}
	return d
}

// Fields flattens the diagnostics into logger fields, omitting empty
// database attributes.
func (d Diagnostics) Fields() map[string]any {
	fields := map[string]any{
		"error":       d.Message,
		"error_code":  d.Code,
		"error_chain": d.Chain,
	}
	if d.PG == nil {
		return fields
	}
	for key, value := range map[string]string{
		"pg_code":       d.PG.Code,
		"pg_constraint": d.PG.Constraint,
		"pg_table":      d.PG.Table,
		"pg_column":     d.PG.Column,
		"pg_detail":     d.PG.Detail,
		"pg_message":    d.PG.Message,
	} {
		if value != "" {
			fields[key] = value
		}
	}
	return fields
}
