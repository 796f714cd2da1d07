package entity

import (
	"errors"
	"fmt"
)

// ErrUnsupportedVariant matches every UnsupportedVariantError.
var ErrUnsupportedVariant = errors.New("unsupported variant")

// UnsupportedVariantError reports a discriminant outside the known set.
type UnsupportedVariantError struct {
	Kind  string // "channel", "application command"
	Value int    // raw discriminant from the payload
}

func (e *UnsupportedVariantError) Error() string {
	return fmt.Sprintf("entity: unsupported %s type %d", e.Kind, e.Value)
}

func (e *UnsupportedVariantError) Is(target error) bool {
	return target == ErrUnsupportedVariant
}
