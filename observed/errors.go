package observed

import (
	"errors"
	"fmt"

	"github.com/delaneyj/statekit/subscriber"
)

var (
	// ErrUnsupportedDerivation is wrapped by every *DerivationError.
	ErrUnsupportedDerivation = errors.New("unsupported property derivation")
	// ErrKindMismatch is returned when a value does not fit the property kind,
	// e.g. an object handed to a primitive property.
	ErrKindMismatch = errors.New("value kind does not match property kind")
	// ErrDeleted is the panic value (wrapped) when a property is used after
	// its teardown.
	ErrDeleted = errors.New("property used after teardown")
	// ErrDuplicateSubscriber is returned when a subscriber ID is registered twice.
	ErrDuplicateSubscriber = errors.New("subscriber id already registered")
)

// DerivationError names a Link or Prop that a property kind cannot produce.
type DerivationError struct {
	From string
	Want string
}

func (e *DerivationError) Error() string {
	return fmt.Sprintf("%s: cannot create %s from %s", ErrUnsupportedDerivation, e.Want, e.From)
}

func (e *DerivationError) Unwrap() error {
	return ErrUnsupportedDerivation
}

func deletedError(info string, id subscriber.ID) error {
	return fmt.Errorf("%w: %q (id %d)", ErrDeleted, info, id)
}
