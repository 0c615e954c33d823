package types

import (
	"errors"
	"fmt"
)

// Lookup errors.
var (
	ErrNotFound    = errors.New("entity not found")
	ErrInvalidName = errors.New("invalid name")
	ErrInvalidCast = errors.New("invalid cast kind")
	ErrInvalidRef  = errors.New("invalid reference")
)

// ErrMissingPropertyDefinition is matched by MissingPropertyDefinitionError
// through errors.Is.
var ErrMissingPropertyDefinition = errors.New("missing property definition")

// MissingPropertyDefinitionError reports a declared property that has no entry
// in the shared catalog. It is returned by Bag.Save and is not retried.
type MissingPropertyDefinitionError struct {
	Name string
}

func (e *MissingPropertyDefinitionError) Error() string {
	return fmt.Sprintf("missing %s property", e.Name)
}

// Is makes errors.Is(err, ErrMissingPropertyDefinition) succeed.
func (e *MissingPropertyDefinitionError) Is(target error) bool {
	return target == ErrMissingPropertyDefinition
}
