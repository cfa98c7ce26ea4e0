package state

import (
	"errors"
	"fmt"
)

// ErrSchemaViolation is the sentinel wrapped by every SchemaViolationError.
var ErrSchemaViolation = errors.New("schema violation")

// SchemaViolationError reports a partial update or initial state that
// referenced a field not declared in the schema.
type SchemaViolationError struct {
	Field string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("schema violation: field %q is not declared", e.Field)
}

func (e *SchemaViolationError) Unwrap() error {
	return ErrSchemaViolation
}
